package usecase

import (
	"context"

	"solar-pipeline/domain/model"
	"solar-pipeline/domain/repository"
	"solar-pipeline/infrastructure/logger"
	"solar-pipeline/infrastructure/retry"

	log "github.com/sirupsen/logrus"
)

const statsBatchSize = 50

// Thresholds are inclusive lower bounds.
type Thresholds struct {
	MinViews    uint64
	MinComments uint64
}

var DefaultThresholds = Thresholds{MinViews: 100, MinComments: 1}

// IStatsFilter keeps the candidates popular enough to harvest.
type IStatsFilter interface {
	Filter(ctx context.Context, candidates []model.VideoCandidate, t Thresholds) []model.VideoRecord
}

type StatsFilter struct {
	youtubeRepo repository.IYouTube
	retrier     *retry.Retrier
}

func NewStatsFilter(youtubeRepo repository.IYouTube, retrier *retry.Retrier) IStatsFilter {
	return &StatsFilter{youtubeRepo: youtubeRepo, retrier: retrier}
}

// Filter looks candidates up in batches of 50. Output follows response
// order; a failed batch is skipped.
func (f *StatsFilter) Filter(ctx context.Context, candidates []model.VideoCandidate, t Thresholds) []model.VideoRecord {
	var kept []model.VideoRecord

	for start := 0; start < len(candidates); start += statsBatchSize {
		batch := candidates[start:min(start+statsBatchSize, len(candidates))]
		ids := make([]string, len(batch))
		titles := make(map[string]string, len(batch))
		for i, c := range batch {
			ids[i] = c.ID
			titles[c.ID] = c.Title
		}

		stats, err := retry.Do(ctx, f.retrier, "videos.list", func() ([]model.VideoStatistics, error) {
			return f.youtubeRepo.VideoStatistics(ctx, ids)
		})
		if err != nil {
			logger.GetLogger().WithError(err).WithField("batchSize", len(ids)).Warn("Statistics batch failed, skipping")
			continue
		}

		answered := make(map[string]bool, len(stats))
		for _, s := range stats {
			answered[s.ID] = true
			record, reason := evaluate(s, titles[s.ID], t)
			if reason != "" {
				logDrop(s, reason)
				continue
			}
			kept = append(kept, record)
		}
		for _, id := range ids {
			if !answered[id] {
				logger.GetLogger().WithFields(log.Fields{"videoId": id, "reason": model.DropMissingStatistics}).Info("Video dropped")
			}
		}
	}
	return kept
}

func evaluate(s model.VideoStatistics, title string, t Thresholds) (model.VideoRecord, model.DropReason) {
	if !s.HasStatistics {
		return model.VideoRecord{}, model.DropMissingStatistics
	}
	if s.ViewCount < t.MinViews {
		return model.VideoRecord{}, model.DropBelowMinViews
	}
	if s.CommentCount < t.MinComments {
		return model.VideoRecord{}, model.DropBelowMinComments
	}
	if title == "" {
		title = s.Title
	}
	return model.VideoRecord{
		VideoCandidate: model.VideoCandidate{ID: s.ID, Title: title},
		ViewCount:      s.ViewCount,
		CommentCount:   s.CommentCount,
	}, ""
}

func logDrop(s model.VideoStatistics, reason model.DropReason) {
	logger.GetLogger().WithFields(log.Fields{
		"videoId":  s.ID,
		"views":    s.ViewCount,
		"comments": s.CommentCount,
		"reason":   reason,
	}).Info("Video dropped")
}
