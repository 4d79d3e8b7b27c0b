package repository

import (
	"context"
	"time"

	"solar-pipeline/domain/model"
)

// IReportDownloader fetches the PBS electricity report.
type IReportDownloader interface {
	// EnsureReport downloads url to path unless path already exists.
	EnsureReport(ctx context.Context, url, path string) error
}

// IPriceHistory serves daily price bars for a ticker. end is exclusive.
type IPriceHistory interface {
	DailyBars(ctx context.Context, ticker string, start, end time.Time, interval string) ([]model.PriceBar, error)
}

// IDatasetMirror copies a remote dataset archive into a local directory.
type IDatasetMirror interface {
	// Download replaces dir with the extracted contents of dataset "owner/slug"
	// and returns the written file paths.
	Download(ctx context.Context, dataset, dir string) ([]string, error)
}
