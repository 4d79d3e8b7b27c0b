package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"solar-pipeline/domain/model"
	"solar-pipeline/domain/repository"
	"solar-pipeline/infrastructure/logger"

	log "github.com/sirupsen/logrus"
)

const (
	ChannelDocument = "matched_comments.json"
	GlobalDocument  = "global_pakistan_solar_comments.json"
)

// HarvestSettings drives both pipelines.
type HarvestSettings struct {
	Channels   []string
	Keywords   []string
	Thresholds Thresholds

	GlobalQuery         string
	GlobalTitleKeywords []string
	TimeframeDays       int
	MaxVideos           int
}

// PipelineReport summarizes one pipeline run.
type PipelineReport struct {
	Document   string
	Candidates int
	Filtered   int
	Harvested  int
	Dropped    map[model.DropReason]int
	// Err is set when the document was not written.
	Err error
}

func newPipelineReport(document string) PipelineReport {
	return PipelineReport{Document: document, Dropped: make(map[model.DropReason]int)}
}

type HarvestReport struct {
	Channel PipelineReport
	Global  PipelineReport
}

// Err joins the write errors of both pipelines.
func (r HarvestReport) Err() error {
	return errors.Join(r.Channel.Err, r.Global.Err)
}

// IHarvestUseCase runs the channel-scoped pipeline and then the global one.
type IHarvestUseCase interface {
	Run(ctx context.Context) HarvestReport
	RunChannelPipeline(ctx context.Context, seen model.SeenSet) PipelineReport
	RunGlobalPipeline(ctx context.Context) PipelineReport
}

type HarvestUseCase struct {
	resolver  IChannelResolver
	search    IVideoSearch
	filter    IStatsFilter
	harvester ICommentHarvester
	store     repository.IRawDocumentStore
	mirror    repository.IRawDocumentStore // optional
	settings  HarvestSettings
	now       func() time.Time
}

func NewHarvestUseCase(
	resolver IChannelResolver,
	search IVideoSearch,
	filter IStatsFilter,
	harvester ICommentHarvester,
	store repository.IRawDocumentStore,
	settings HarvestSettings,
) *HarvestUseCase {
	return &HarvestUseCase{
		resolver:  resolver,
		search:    search,
		filter:    filter,
		harvester: harvester,
		store:     store,
		settings:  settings,
		now:       time.Now,
	}
}

// WithMirror copies every written document to a second store. Mirror
// failures are logged only.
func (u *HarvestUseCase) WithMirror(mirror repository.IRawDocumentStore) *HarvestUseCase {
	u.mirror = mirror
	return u
}

// WithClock replaces time.Now for the global search window.
func (u *HarvestUseCase) WithClock(now func() time.Time) *HarvestUseCase {
	u.now = now
	return u
}

func (u *HarvestUseCase) Run(ctx context.Context) HarvestReport {
	var report HarvestReport
	report.Channel = u.RunChannelPipeline(ctx, model.NewSeenSet())
	report.Global = u.RunGlobalPipeline(ctx)
	return report
}

// RunChannelPipeline harvests the configured channels keyword by keyword.
// A video id present in seen, or collected for an earlier keyword, is not
// harvested again.
func (u *HarvestUseCase) RunChannelPipeline(ctx context.Context, seen model.SeenSet) PipelineReport {
	report := newPipelineReport(ChannelDocument)
	if seen == nil {
		seen = model.NewSeenSet()
	}

	channelIDs := make([]string, 0, len(u.settings.Channels))
	for _, channelURL := range u.settings.Channels {
		if id, ok := u.resolver.Resolve(ctx, channelURL); ok {
			channelIDs = append(channelIDs, id)
		}
	}
	logger.GetLogger().WithFields(log.Fields{
		"configured": len(u.settings.Channels),
		"resolved":   len(channelIDs),
	}).Info("Channels resolved")

	var collected []model.VideoRecord
	for _, keyword := range u.settings.Keywords {
		if ctx.Err() != nil {
			break
		}
		entry := logger.GetLogger().WithField("keyword", keyword)
		entry.Info("Searching channel videos")

		var fresh []model.VideoCandidate
		batch := model.NewSeenSet()
		for _, id := range channelIDs {
			for _, c := range u.search.SearchChannel(ctx, id, keyword) {
				if seen.Has(c.ID) || batch.Has(c.ID) {
					report.Dropped[model.DropAlreadySeen]++
					entry.WithFields(log.Fields{"videoId": c.ID, "reason": model.DropAlreadySeen}).Debug("Video dropped")
					continue
				}
				batch.Add(c.ID)
				fresh = append(fresh, c)
			}
		}
		if len(fresh) == 0 {
			entry.Info("No new videos found for keyword")
			continue
		}
		report.Candidates += len(fresh)

		filtered := u.filter.Filter(ctx, fresh, u.settings.Thresholds)
		entry.WithFields(log.Fields{"passed": len(filtered), "candidates": len(fresh)}).Info("Videos passed thresholds")
		for _, v := range filtered {
			seen.Add(v.ID)
			collected = append(collected, v)
		}
	}
	report.Filtered = len(collected)

	u.harvestAndSave(ctx, collected, &report)
	return report
}

// RunGlobalPipeline runs the single global query over the configured window.
func (u *HarvestUseCase) RunGlobalPipeline(ctx context.Context) PipelineReport {
	report := newPipelineReport(GlobalDocument)

	patterns := make([]*regexp.Regexp, 0, len(u.settings.GlobalTitleKeywords))
	for _, kw := range u.settings.GlobalTitleKeywords {
		patterns = append(patterns, TitlePattern(kw))
	}
	after, before := PublishedWindow(u.now(), u.settings.TimeframeDays)

	matched := u.search.SearchGlobal(ctx, GlobalSearchRequest{
		Query:           u.settings.GlobalQuery,
		Patterns:        patterns,
		PublishedAfter:  after,
		PublishedBefore: before,
		MaxVideos:       u.settings.MaxVideos,
	})
	report.Candidates = len(matched)

	var filtered []model.VideoRecord
	if len(matched) == 0 {
		logger.GetLogger().WithField("keyword", u.settings.GlobalQuery).Info("No matching videos found")
	} else {
		filtered = u.filter.Filter(ctx, matched, u.settings.Thresholds)
		logger.GetLogger().WithFields(log.Fields{
			"remaining":   len(filtered),
			"minViews":    u.settings.Thresholds.MinViews,
			"minComments": u.settings.Thresholds.MinComments,
		}).Info("Videos remain after filtering")
	}
	report.Filtered = len(filtered)

	u.harvestAndSave(ctx, filtered, &report)
	return report
}

func (u *HarvestUseCase) harvestAndSave(ctx context.Context, videos []model.VideoRecord, report *PipelineReport) {
	doc := model.NewRawDocument()
	for _, v := range videos {
		if ctx.Err() != nil {
			break
		}
		harvested, reason := u.harvester.Harvest(ctx, v)
		if reason != "" {
			report.Dropped[reason]++
			continue
		}
		doc.Put(harvested)
	}
	report.Harvested = doc.Len()

	entry := logger.GetLogger().WithFields(log.Fields{"document": report.Document, "videos": doc.Len()})
	if err := ctx.Err(); err != nil {
		report.Err = fmt.Errorf("harvest of %s interrupted: %w", report.Document, err)
		entry.WithError(err).Warn("Run cancelled, document not written")
		return
	}
	if err := u.store.Save(ctx, report.Document, doc); err != nil {
		report.Err = fmt.Errorf("failed to save %s: %w", report.Document, err)
		entry.WithError(err).Error("Failed to write raw document")
		return
	}
	entry.Info("Raw document saved")

	if u.mirror != nil {
		if err := u.mirror.Save(ctx, report.Document, doc); err != nil {
			entry.WithError(err).Warn("Failed to mirror raw document")
		}
	}
}
