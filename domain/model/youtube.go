package model

import "encoding/json"

// VideoCandidate is a search hit that has not been checked against the
// popularity thresholds yet.
type VideoCandidate struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// VideoStatistics holds the counters returned by the batched videos lookup.
// HasStatistics is false when the API omitted the statistics part.
type VideoStatistics struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	ViewCount     uint64 `json:"view_count"`
	CommentCount  uint64 `json:"comment_count"`
	HasStatistics bool   `json:"has_statistics"`
}

// VideoRecord is a candidate that passed the stats filter.
type VideoRecord struct {
	VideoCandidate
	ViewCount    uint64 `json:"view_count"`
	CommentCount uint64 `json:"comment_count"`
}

// HarvestedVideo is a record together with its comment threads. It always
// carries at least one thread.
type HarvestedVideo struct {
	VideoRecord
	Threads []CommentThread `json:"threads"`
}

// Comment is a top-level comment or a reply. Raw keeps the upstream object
// exactly as the API serialized it.
type Comment struct {
	ID                string          `json:"id"`
	ParentID          string          `json:"parent_id,omitempty"`
	AuthorDisplayName string          `json:"author_display_name"`
	AuthorChannelID   string          `json:"author_channel_id,omitempty"`
	TextDisplay       string          `json:"text_display"`
	TextOriginal      string          `json:"text_original"`
	PublishedAt       string          `json:"published_at"`
	UpdatedAt         string          `json:"updated_at"`
	LikeCount         int64           `json:"like_count"`
	Raw               json.RawMessage `json:"-"`
}

// CommentThread is a top-level comment plus the replies fetched for it.
// Replies stays nil when TotalReplyCount is zero.
type CommentThread struct {
	ID              string          `json:"id"`
	VideoID         string          `json:"video_id"`
	TopLevelComment Comment         `json:"top_level_comment"`
	TotalReplyCount int64           `json:"total_reply_count"`
	Replies         []Comment       `json:"-"`
	Raw             json.RawMessage `json:"-"`
}

// DropReason explains why a video left the pipeline.
type DropReason string

const (
	DropAlreadySeen       DropReason = "already_seen"
	DropTitleMismatch     DropReason = "title_mismatch"
	DropBelowMinViews     DropReason = "below_min_views"
	DropBelowMinComments  DropReason = "below_min_comments"
	DropMissingStatistics DropReason = "missing_statistics"
	DropNoThreads         DropReason = "no_threads"
	DropFetchFailed       DropReason = "fetch_failed"
)

// SeenSet tracks video ids already harvested during one run.
type SeenSet map[string]struct{}

func NewSeenSet(ids ...string) SeenSet {
	s := make(SeenSet, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

func (s SeenSet) Add(id string) { s[id] = struct{}{} }

func (s SeenSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}
