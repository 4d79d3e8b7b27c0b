package repository

import (
	"context"

	"solar-pipeline/domain/dto"
	"solar-pipeline/domain/model"
)

// IYouTube is the read-only slice of the YouTube Data API the harvester uses.
// Every method performs exactly one remote call.
type IYouTube interface {
	// ChannelIDByHandle returns "" when no channel owns the handle.
	ChannelIDByHandle(ctx context.Context, handle string) (string, error)
	// SearchChannelID returns the first channel hit for query, or "".
	SearchChannelID(ctx context.Context, query string) (string, error)
	SearchVideos(ctx context.Context, req *dto.VideoSearchRequest) (*dto.VideoSearchPage, error)
	// VideoStatistics accepts at most 50 ids.
	VideoStatistics(ctx context.Context, ids []string) ([]model.VideoStatistics, error)
	CommentThreads(ctx context.Context, videoID, pageToken string) (*dto.CommentThreadPage, error)
	CommentReplies(ctx context.Context, parentID, pageToken string) (*dto.CommentReplyPage, error)
}
