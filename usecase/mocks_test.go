package usecase_test

import (
	"context"
	"time"

	"solar-pipeline/domain/dto"
	"solar-pipeline/domain/model"
	"solar-pipeline/infrastructure/retry"

	"github.com/stretchr/testify/mock"
)

// Mock implementations
type MockYouTube struct {
	mock.Mock
}

func (m *MockYouTube) ChannelIDByHandle(ctx context.Context, handle string) (string, error) {
	args := m.Called(ctx, handle)
	return args.String(0), args.Error(1)
}

func (m *MockYouTube) SearchChannelID(ctx context.Context, query string) (string, error) {
	args := m.Called(ctx, query)
	return args.String(0), args.Error(1)
}

func (m *MockYouTube) SearchVideos(ctx context.Context, req *dto.VideoSearchRequest) (*dto.VideoSearchPage, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.VideoSearchPage), args.Error(1)
}

func (m *MockYouTube) VideoStatistics(ctx context.Context, ids []string) ([]model.VideoStatistics, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.VideoStatistics), args.Error(1)
}

func (m *MockYouTube) CommentThreads(ctx context.Context, videoID, pageToken string) (*dto.CommentThreadPage, error) {
	args := m.Called(ctx, videoID, pageToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.CommentThreadPage), args.Error(1)
}

func (m *MockYouTube) CommentReplies(ctx context.Context, parentID, pageToken string) (*dto.CommentReplyPage, error) {
	args := m.Called(ctx, parentID, pageToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.CommentReplyPage), args.Error(1)
}

type MockRawDocumentStore struct {
	mock.Mock
}

func (m *MockRawDocumentStore) Save(ctx context.Context, name string, doc *model.RawDocument) error {
	args := m.Called(ctx, name, doc)
	return args.Error(0)
}

// instantTimer fires as soon as it is started.
type instantTimer struct {
	c chan time.Time
}

func (t *instantTimer) Start(time.Duration) { t.c <- time.Now() }
func (t *instantTimer) Stop()               {}
func (t *instantTimer) C() <-chan time.Time { return t.c }

func testRetrier() *retry.Retrier {
	return retry.New(retry.DefaultPolicy).WithTimer(func() retry.Timer {
		return &instantTimer{c: make(chan time.Time, 1)}
	})
}

func thread(id string, replies int64) model.CommentThread {
	return model.CommentThread{
		ID:              id,
		TotalReplyCount: replies,
		TopLevelComment: model.Comment{ID: id},
		Raw:             []byte(`{"kind":"youtube#commentThread","id":"` + id + `"}`),
	}
}

func reply(id string) model.Comment {
	return model.Comment{ID: id, Raw: []byte(`{"id":"` + id + `"}`)}
}

func stats(id string, views, comments uint64) model.VideoStatistics {
	return model.VideoStatistics{ID: id, Title: "title " + id, ViewCount: views, CommentCount: comments, HasStatistics: true}
}
