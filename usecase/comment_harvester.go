package usecase

import (
	"context"

	"solar-pipeline/domain/dto"
	"solar-pipeline/domain/model"
	"solar-pipeline/domain/repository"
	"solar-pipeline/infrastructure/logger"
	"solar-pipeline/infrastructure/retry"

	log "github.com/sirupsen/logrus"
)

// ICommentHarvester pulls every comment thread of a video, with replies.
type ICommentHarvester interface {
	// Harvest returns a drop reason instead of a video when nothing usable was fetched.
	Harvest(ctx context.Context, video model.VideoRecord) (model.HarvestedVideo, model.DropReason)
}

type CommentHarvester struct {
	youtubeRepo repository.IYouTube
	retrier     *retry.Retrier
}

func NewCommentHarvester(youtubeRepo repository.IYouTube, retrier *retry.Retrier) ICommentHarvester {
	return &CommentHarvester{youtubeRepo: youtubeRepo, retrier: retrier}
}

func (h *CommentHarvester) Harvest(ctx context.Context, video model.VideoRecord) (model.HarvestedVideo, model.DropReason) {
	entry := logger.GetLogger().WithFields(log.Fields{"videoId": video.ID, "title": video.Title})
	entry.Info("Fetching raw comments")

	var (
		threads   []model.CommentThread
		pageToken string
	)
	for {
		page, err := retry.Do(ctx, h.retrier, "commentThreads.list", func() (*dto.CommentThreadPage, error) {
			return h.youtubeRepo.CommentThreads(ctx, video.ID, pageToken)
		})
		if err != nil {
			entry.WithError(err).WithField("reason", model.DropFetchFailed).Warn("Video dropped")
			return model.HarvestedVideo{}, model.DropFetchFailed
		}

		for _, thread := range page.Items {
			if thread.TotalReplyCount > 0 {
				thread.Replies = h.replies(ctx, thread)
			}
			threads = append(threads, thread)
		}

		pageToken = page.NextPageToken
		if pageToken == "" {
			break
		}
	}

	if len(threads) == 0 {
		entry.WithField("reason", model.DropNoThreads).Info("No comments fetched, video dropped")
		return model.HarvestedVideo{}, model.DropNoThreads
	}
	entry.WithField("threads", len(threads)).Debug("Comments fetched")
	return model.HarvestedVideo{VideoRecord: video, Threads: threads}, ""
}

// replies pages through a thread's replies. On failure the replies fetched
// so far are kept. The result is never nil.
func (h *CommentHarvester) replies(ctx context.Context, thread model.CommentThread) []model.Comment {
	parentID := thread.TopLevelComment.ID
	if parentID == "" {
		parentID = thread.ID
	}

	all := make([]model.Comment, 0, thread.TotalReplyCount)
	pageToken := ""
	for {
		page, err := retry.Do(ctx, h.retrier, "comments.list", func() (*dto.CommentReplyPage, error) {
			return h.youtubeRepo.CommentReplies(ctx, parentID, pageToken)
		})
		if err != nil {
			logger.GetLogger().WithError(err).WithFields(log.Fields{
				"videoId":  thread.VideoID,
				"threadId": thread.ID,
				"fetched":  len(all),
			}).Warn("Reply page failed, keeping partial replies")
			return all
		}
		all = append(all, page.Items...)

		pageToken = page.NextPageToken
		if pageToken == "" {
			return all
		}
	}
}
