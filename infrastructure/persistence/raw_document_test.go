package persistence

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"solar-pipeline/domain/model"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func sampleDocument() *model.RawDocument {
	doc := model.NewRawDocument()
	doc.Put(model.HarvestedVideo{
		VideoRecord: model.VideoRecord{VideoCandidate: model.VideoCandidate{ID: "zz9", Title: "Solar Z"}},
		Threads: []model.CommentThread{{
			ID:              "t1",
			TotalReplyCount: 1,
			Raw:             []byte(`{"kind":"youtube#commentThread","id":"t1","snippet":{"totalReplyCount":1}}`),
			Replies:         []model.Comment{{ID: "r1", Raw: []byte(`{"id":"r1","snippet":{"likeCount":2}}`)}},
		}},
	})
	doc.Put(model.HarvestedVideo{
		VideoRecord: model.VideoRecord{VideoCandidate: model.VideoCandidate{ID: "aa1", Title: "Solar A"}},
		Threads: []model.CommentThread{{
			ID:  "t2",
			Raw: []byte(`{"kind":"youtube#commentThread","id":"t2"}`),
		}},
	})
	return doc
}

func TestRawDocumentFileStore_Save(t *testing.T) {
	fs := afero.NewMemMapFs()
	dir := filepath.Join("data", "raw", "yt_comments")
	store := NewRawDocumentFileStore(fs, dir)

	require.NoError(t, store.Save(context.Background(), "matched_comments.json", sampleDocument()))

	body, err := afero.ReadFile(fs, filepath.Join(dir, "matched_comments.json"))
	require.NoError(t, err)
	text := string(body)

	assert.Less(t, strings.Index(text, `"zz9"`), strings.Index(text, `"aa1"`), "insertion order is kept")
	assert.True(t, strings.HasPrefix(text, "{\n  \"zz9\": {\n    \"video_title\": \"Solar Z\","))

	var decoded map[string]struct {
		VideoTitle string           `json:"video_title"`
		RawThreads []map[string]any `json:"raw_threads"`
	}
	require.NoError(t, json.Unmarshal(body, &decoded))
	require.Len(t, decoded["zz9"].RawThreads, 1)
	assert.Len(t, decoded["zz9"].RawThreads[0]["fetched_replies"], 1)
	assert.NotContains(t, decoded["aa1"].RawThreads[0], "fetched_replies")

	entries, err := afero.ReadDir(fs, dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp file left behind")
}

func TestRawDocumentFileStore_Overwrites(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewRawDocumentFileStore(fs, "out")

	require.NoError(t, store.Save(context.Background(), "global.json", sampleDocument()))
	require.NoError(t, store.Save(context.Background(), "global.json", model.NewRawDocument()))

	body, err := afero.ReadFile(fs, filepath.Join("out", "global.json"))
	require.NoError(t, err)
	assert.Equal(t, "{}", string(body))
}

func TestRawDocumentFileStore_ReadOnlyFs(t *testing.T) {
	store := NewRawDocumentFileStore(afero.NewReadOnlyFs(afero.NewMemMapFs()), "out")
	assert.Error(t, store.Save(context.Background(), "x.json", sampleDocument()))
}

func TestToMongoDocuments(t *testing.T) {
	at := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	docs, err := toMongoDocuments(pipelineName("matched_comments.json"), sampleDocument(), at)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	first := docs[0]
	assert.Equal(t, "matched_comments:zz9", first.ID)
	assert.Equal(t, "matched_comments", first.Pipeline)
	assert.Equal(t, "zz9", first.VideoID)
	assert.Equal(t, "Solar Z", first.VideoTitle)
	assert.Equal(t, at, first.WrittenAt)
	require.Len(t, first.RawThreads, 1)

	thread := first.RawThreads[0]
	require.Len(t, thread, 4)
	assert.Equal(t, "kind", thread[0].Key)
	assert.Equal(t, "fetched_replies", thread[3].Key)
	replies, ok := thread[3].Value.(bson.A)
	require.True(t, ok)
	assert.Len(t, replies, 1)

	assert.Equal(t, "matched_comments:aa1", docs[1].ID)
}
