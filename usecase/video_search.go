package usecase

import (
	"context"
	"regexp"
	"time"

	"solar-pipeline/domain/dto"
	"solar-pipeline/domain/model"
	"solar-pipeline/domain/repository"
	"solar-pipeline/infrastructure/logger"
	"solar-pipeline/infrastructure/retry"

	log "github.com/sirupsen/logrus"
)

const (
	searchPageSize = 50
	// DefaultVideosPerChannel caps how many search hits are read per channel and keyword.
	DefaultVideosPerChannel = 1000
	windowLayout            = "2006-01-02T15:04:05Z"
)

// IVideoSearch produces video candidates. Both searches are read-only; a
// failed page ends pagination and keeps what was collected so far.
type IVideoSearch interface {
	SearchChannel(ctx context.Context, channelID, keyword string) []model.VideoCandidate
	SearchGlobal(ctx context.Context, req GlobalSearchRequest) []model.VideoCandidate
}

// GlobalSearchRequest describes a relevance-ordered search over all of YouTube.
type GlobalSearchRequest struct {
	Query           string
	Patterns        []*regexp.Regexp
	PublishedAfter  string
	PublishedBefore string
	// MaxVideos stops the search once that many matches are kept; 0 means no limit.
	MaxVideos int
}

type VideoSearch struct {
	youtubeRepo      repository.IYouTube
	retrier          *retry.Retrier
	videosPerChannel int
}

func NewVideoSearch(youtubeRepo repository.IYouTube, retrier *retry.Retrier, videosPerChannel int) IVideoSearch {
	if videosPerChannel <= 0 {
		videosPerChannel = DefaultVideosPerChannel
	}
	return &VideoSearch{youtubeRepo: youtubeRepo, retrier: retrier, videosPerChannel: videosPerChannel}
}

// PublishedWindow returns [now-days, now] in UTC in the wire format search.list expects.
func PublishedWindow(now time.Time, days int) (after, before string) {
	now = now.UTC()
	return now.AddDate(0, 0, -days).Format(windowLayout), now.Format(windowLayout)
}

// SearchChannel returns the newest videos of a channel whose title contains keyword as a whole word.
func (s *VideoSearch) SearchChannel(ctx context.Context, channelID, keyword string) []model.VideoCandidate {
	entry := logger.GetLogger().WithFields(log.Fields{"channelId": channelID, "keyword": keyword})
	pattern := TitlePattern(keyword)

	var (
		matched   []model.VideoCandidate
		fetched   int
		pageToken string
	)
	for fetched < s.videosPerChannel {
		req := &dto.VideoSearchRequest{
			Q:          keyword,
			ChannelID:  channelID,
			Order:      "date",
			MaxResults: int64(min(searchPageSize, s.videosPerChannel-fetched)),
			PageToken:  pageToken,
		}
		page, err := retry.Do(ctx, s.retrier, "search.list", func() (*dto.VideoSearchPage, error) {
			return s.youtubeRepo.SearchVideos(ctx, req)
		})
		if err != nil {
			entry.WithError(err).Warn("Channel search page failed, keeping collected videos")
			break
		}

		fetched += len(page.Items)
		for _, v := range page.Items {
			if pattern.MatchString(v.Title) {
				matched = append(matched, v)
			} else {
				entry.WithFields(log.Fields{"videoId": v.ID, "reason": model.DropTitleMismatch}).Debug("Video dropped")
			}
		}

		pageToken = page.NextPageToken
		if pageToken == "" || len(page.Items) == 0 {
			break
		}
	}

	entry.WithFields(log.Fields{"checked": fetched, "found": len(matched)}).Info("Channel search finished")
	return matched
}

// SearchGlobal keeps candidates whose title matches every pattern.
func (s *VideoSearch) SearchGlobal(ctx context.Context, req GlobalSearchRequest) []model.VideoCandidate {
	entry := logger.GetLogger().WithFields(log.Fields{
		"keyword":         req.Query,
		"publishedAfter":  req.PublishedAfter,
		"publishedBefore": req.PublishedBefore,
	})
	entry.Info("Searching globally")

	var (
		matched   []model.VideoCandidate
		checked   int
		pageToken string
	)
pages:
	for {
		call := &dto.VideoSearchRequest{
			Q:               req.Query,
			Order:           "relevance",
			MaxResults:      searchPageSize,
			PageToken:       pageToken,
			PublishedAfter:  req.PublishedAfter,
			PublishedBefore: req.PublishedBefore,
		}
		page, err := retry.Do(ctx, s.retrier, "search.list", func() (*dto.VideoSearchPage, error) {
			return s.youtubeRepo.SearchVideos(ctx, call)
		})
		if err != nil {
			entry.WithError(err).Warn("Global search page failed, keeping collected videos")
			break
		}

		for _, v := range page.Items {
			checked++
			if !matchesAll(v.Title, req.Patterns) {
				continue
			}
			matched = append(matched, v)
			entry.WithFields(log.Fields{"videoId": v.ID, "title": v.Title}).Info("Matched video")
			if req.MaxVideos > 0 && len(matched) >= req.MaxVideos {
				break pages
			}
		}

		pageToken = page.NextPageToken
		if pageToken == "" {
			break
		}
	}

	entry.WithFields(log.Fields{"checked": checked, "found": len(matched)}).Info("Global search finished")
	return matched
}

func matchesAll(title string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if !p.MatchString(title) {
			return false
		}
	}
	return true
}
