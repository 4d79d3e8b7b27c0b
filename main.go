package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"solar-pipeline/domain/repository"
	"solar-pipeline/infrastructure/clients/kaggle"
	"solar-pipeline/infrastructure/clients/pbs"
	"solar-pipeline/infrastructure/clients/yahoo"
	youtubeclient "solar-pipeline/infrastructure/clients/youtube"
	"solar-pipeline/infrastructure/configuration"
	"solar-pipeline/infrastructure/filecsv"
	"solar-pipeline/infrastructure/logger"
	"solar-pipeline/infrastructure/persistence"
	"solar-pipeline/infrastructure/retry"
	"solar-pipeline/usecase"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	exitOK           = 0
	exitConfig       = 1
	exitWriteFailure = 2
	exitPanic        = 3
)

var allSteps = []string{"pbs", "stocks", "kaggle", "youtube"}

func recoverPanic(code *int) {
	if err := recover(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Application panic recovered")
		*code = exitPanic
	}
}

func main() {
	os.Exit(run())
}

func run() (code int) {
	defer recoverPanic(&code)

	steps := pflag.StringSlice("steps", allSteps, "extraction steps to run: "+strings.Join(allSteps, ","))
	dataDir := pflag.String("data-dir", "", "base directory holding data/{raw,processed,cleaned}")
	pflag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load env from files (non-destructive; OS env still has precedence)
	configuration.LoadEnvFromFile("config.env", ".env")

	v := viper.New()
	if *dataDir != "" {
		v.Set("paths.baseDir", *dataDir)
	}
	cfg, err := configuration.Load(v)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Failed to load configuration")
		return exitConfig
	}
	if err := cfg.Validate(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Missing mandatory configuration, refusing to start")
		return exitConfig
	}
	logger.Configure(logger.Options{
		Format: cfg.Logger.Format,
		Level:  cfg.Logger.Level,
		ToFile: cfg.Logger.ToFile,
		Env:    cfg.Env,
	})

	for _, s := range *steps {
		if !slices.Contains(allSteps, s) {
			logger.GetLogger().WithField("step", s).Error("Unknown step")
			return exitConfig
		}
	}

	fs := afero.NewOsFs()
	if err := cfg.EnsureDirectories(fs); err != nil {
		logger.GetLogger().WithField("error", err).Error("Failed to create data directories")
		return exitWriteFailure
	}
	logger.GetLogger().WithField("path", cfg.Paths.BaseDir).WithField("steps", *steps).Info("Starting extraction")

	var failures []error
	extract := usecase.NewExtractUseCase(
		pbs.NewClient(fs),
		yahoo.NewClient(cfg.Stocks.BaseURL),
		kaggle.NewClient(ctx, cfg.Kaggle.BaseURL, cfg.Kaggle.APIToken, fs),
		filecsv.NewWriter(fs),
		usecase.ExtractSettings{
			RawDir:       cfg.Paths.RawDir,
			ProcessedDir: cfg.Paths.ProcessedDir,
			PDFURL:       cfg.PBS.PDFURL,
			PDFFileName:  cfg.PBS.FileName,
			Tickers:      cfg.Stocks.Tickers,
			Start:        cfg.Stocks.Start,
			End:          cfg.Stocks.End,
			Interval:     cfg.Stocks.Interval,
			Datasets:     cfg.Kaggle.Datasets,
		},
	)

	if slices.Contains(*steps, "pbs") {
		if result, err := extract.ExtractPBS(ctx); err != nil {
			failures = append(failures, err)
		} else if len(result.Errors) > 0 {
			failures = append(failures, fmt.Errorf("%d PBS templates not written", len(result.Errors)))
		}
	}
	if slices.Contains(*steps, "stocks") {
		result, err := extract.ExtractStocks(ctx)
		if err != nil {
			logger.GetLogger().WithField("error", err).Error("Stock extraction skipped")
		}
		logger.GetLogger().WithField("files", len(result.Files)).WithField("errors", result.Errors).Info("Stock extraction finished")
	}
	if slices.Contains(*steps, "kaggle") {
		result := extract.ExtractKaggle(ctx)
		logger.GetLogger().WithField("files", len(result.Files)).WithField("errors", result.Errors).Info("Kaggle extraction finished")
	}
	if slices.Contains(*steps, "youtube") {
		if err := runHarvest(ctx, cfg, fs); err != nil {
			failures = append(failures, err)
		}
	}

	if err := errors.Join(failures...); err != nil {
		logger.GetLogger().WithField("error", err).Error("Extraction finished with write failures")
		return exitWriteFailure
	}
	logger.GetLogger().Info("Extraction finished")
	return exitOK
}

func runHarvest(ctx context.Context, cfg *configuration.Config, fs afero.Fs) error {
	youtubeClient, err := youtubeclient.NewYouTubeClient(ctx, &youtubeclient.Config{
		APIKey:            cfg.YouTube.APIKey,
		ClientID:          cfg.YouTube.ClientID,
		ClientSecret:      cfg.YouTube.ClientSecret,
		AccessToken:       cfg.YouTube.AccessToken,
		RefreshToken:      cfg.YouTube.RefreshToken,
		RequestsPerSecond: cfg.YouTube.RequestsPerSecond,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize YouTube client: %w", err)
	}

	retrier := retry.New(retry.Policy{
		BaseDelay:   cfg.Harvest.Retry.BaseDelay,
		Multiplier:  cfg.Harvest.Retry.Multiplier,
		MaxAttempts: cfg.Harvest.Retry.MaxAttempts,
	})

	var store repository.IRawDocumentStore = persistence.NewRawDocumentFileStore(fs, cfg.YouTubeCommentsDir())
	harvest := usecase.NewHarvestUseCase(
		usecase.NewChannelResolver(youtubeClient, retrier),
		usecase.NewVideoSearch(youtubeClient, retrier, cfg.Harvest.VideosPerChannel),
		usecase.NewStatsFilter(youtubeClient, retrier),
		usecase.NewCommentHarvester(youtubeClient, retrier),
		store,
		usecase.HarvestSettings{
			Channels: cfg.Harvest.Channels,
			Keywords: cfg.Harvest.Keywords,
			Thresholds: usecase.Thresholds{
				MinViews:    cfg.Harvest.MinViews,
				MinComments: cfg.Harvest.MinComments,
			},
			GlobalQuery:         cfg.Harvest.Global.Query,
			GlobalTitleKeywords: cfg.Harvest.Global.TitleKeywords,
			TimeframeDays:       cfg.Harvest.Global.TimeframeDays,
			MaxVideos:           cfg.Harvest.Global.MaxVideos,
		},
	)

	if cfg.Mongo.URI != "" {
		mongoDb, err := persistence.NewMongoDb(ctx, cfg.Mongo.URI)
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("MongoDB not available - continuing without mirror")
		} else {
			defer func() {
				if err := mongoDb.Disconnect(context.Background()); err != nil {
					logger.GetLogger().WithField("error", err).Warn("Error while disconnecting MongoDB")
				}
			}()
			logger.GetLogger().Info("MongoDB connected successfully")
			harvest.WithMirror(persistence.NewRawDocumentMongoStore(mongoDb, cfg.Mongo.Database, cfg.Mongo.Collection))
		}
	}

	report := harvest.Run(ctx)
	for _, p := range []usecase.PipelineReport{report.Channel, report.Global} {
		logger.GetLogger().WithFields(map[string]interface{}{
			"document":   p.Document,
			"candidates": p.Candidates,
			"filtered":   p.Filtered,
			"harvested":  p.Harvested,
			"dropped":    p.Dropped,
		}).Info("YouTube pipeline summary")
	}
	return report.Err()
}
