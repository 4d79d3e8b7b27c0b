package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// RawDocument is the harvest output of one pipeline: video id mapped to the
// title and the threads exactly as the API returned them. Entries keep
// insertion order when serialized.
type RawDocument struct {
	entries []RawEntry
	index   map[string]int
}

// RawEntry is one video of a RawDocument.
type RawEntry struct {
	VideoID    string
	VideoTitle string
	Threads    []CommentThread
}

func NewRawDocument() *RawDocument {
	return &RawDocument{index: make(map[string]int)}
}

// Put adds or replaces the entry for a video.
func (d *RawDocument) Put(v HarvestedVideo) {
	entry := RawEntry{VideoID: v.ID, VideoTitle: v.Title, Threads: v.Threads}
	if i, ok := d.index[v.ID]; ok {
		d.entries[i] = entry
		return
	}
	d.index[v.ID] = len(d.entries)
	d.entries = append(d.entries, entry)
}

func (d *RawDocument) Entries() []RawEntry { return d.entries }

func (d *RawDocument) Len() int { return len(d.entries) }

// MarshalJSON writes {"<id>": {"video_title": ..., "raw_threads": [...]}, ...}.
func (d *RawDocument) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range d.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.VideoID)
		if err != nil {
			return nil, err
		}
		body, err := e.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(body)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON writes the per-video object.
func (e RawEntry) MarshalJSON() ([]byte, error) {
	threads := make([]json.RawMessage, 0, len(e.Threads))
	for i := range e.Threads {
		raw, err := e.Threads[i].RawWithReplies()
		if err != nil {
			return nil, fmt.Errorf("thread %s: %w", e.Threads[i].ID, err)
		}
		threads = append(threads, raw)
	}
	return json.Marshal(struct {
		VideoTitle string            `json:"video_title"`
		RawThreads []json.RawMessage `json:"raw_threads"`
	}{e.VideoTitle, threads})
}

// RawWithReplies returns the upstream thread object, with a fetched_replies
// array appended when replies were fetched.
func (t CommentThread) RawWithReplies() (json.RawMessage, error) {
	raw := bytes.TrimSpace(t.Raw)
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	if t.Replies == nil {
		return json.RawMessage(raw), nil
	}
	if raw[len(raw)-1] != '}' {
		return nil, fmt.Errorf("raw thread is not a JSON object")
	}

	replies := make([]json.RawMessage, 0, len(t.Replies))
	for _, r := range t.Replies {
		if len(bytes.TrimSpace(r.Raw)) == 0 {
			replies = append(replies, json.RawMessage("{}"))
			continue
		}
		replies = append(replies, r.Raw)
	}
	field, err := json.Marshal(replies)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Write(raw[:len(raw)-1])
	if len(bytes.TrimSpace(raw[1:len(raw)-1])) > 0 {
		buf.WriteByte(',')
	}
	buf.WriteString(`"fetched_replies":`)
	buf.Write(field)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
