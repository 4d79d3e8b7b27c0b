package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"solar-pipeline/domain/model"
	"solar-pipeline/domain/repository"
	"solar-pipeline/infrastructure/filecsv"
	"solar-pipeline/infrastructure/logger"

	log "github.com/sirupsen/logrus"
)

const dateLayout = "2006-01-02"

var stockHeader = []string{"Date", "Open", "High", "Low", "Close", "Adj Close", "Volume"}

// ExtractSettings locates inputs and outputs of the non-YouTube extraction steps.
type ExtractSettings struct {
	RawDir       string
	ProcessedDir string

	PDFURL      string
	PDFFileName string

	Tickers  []string
	Start    string
	End      string
	Interval string

	// Datasets maps the local directory name to the Kaggle "owner/slug".
	Datasets map[string]string
}

// IExtractUseCase drives the PBS, stock and dataset steps. Each step is
// independent; per-item failures end up in the returned result.
type IExtractUseCase interface {
	ExtractPBS(ctx context.Context) (model.ExtractResult, error)
	ExtractStocks(ctx context.Context) (model.ExtractResult, error)
	ExtractKaggle(ctx context.Context) model.ExtractResult
}

type ExtractUseCase struct {
	reports  repository.IReportDownloader
	prices   repository.IPriceHistory
	datasets repository.IDatasetMirror
	csv      *filecsv.Writer
	settings ExtractSettings
}

func NewExtractUseCase(
	reports repository.IReportDownloader,
	prices repository.IPriceHistory,
	datasets repository.IDatasetMirror,
	csv *filecsv.Writer,
	settings ExtractSettings,
) IExtractUseCase {
	return &ExtractUseCase{reports: reports, prices: prices, datasets: datasets, csv: csv, settings: settings}
}

// ExtractPBS makes sure the PBS report is on disk and lays out the CSV
// templates its tables are transcribed into.
func (u *ExtractUseCase) ExtractPBS(ctx context.Context) (model.ExtractResult, error) {
	result := model.NewExtractResult()
	pdfPath := filepath.Join(u.settings.RawDir, u.settings.PDFFileName)

	if err := u.reports.EnsureReport(ctx, u.settings.PDFURL, pdfPath); err != nil {
		logger.GetLogger().WithError(err).WithField("path", pdfPath).Error("CRITICAL FAILURE: could not obtain the PBS report")
		return result, fmt.Errorf("failed to obtain PBS report: %w", err)
	}

	outDir := filepath.Join(u.settings.ProcessedDir, "PBS")
	created, failed := u.csv.WriteTemplates(outDir, filecsv.PBSTemplates)
	result.Files = created
	for name, err := range failed {
		result.Errors[name] = err.Error()
	}
	logger.GetLogger().WithFields(log.Fields{"path": outDir, "created": len(created), "failed": len(failed)}).
		Info("CSV templates ready, extract the report tables manually")
	return result, nil
}

// ExtractStocks writes one CSV of daily bars per ticker into <raw>/yahoo_finance.
func (u *ExtractUseCase) ExtractStocks(ctx context.Context) (model.ExtractResult, error) {
	result := model.NewExtractResult()
	start, err := time.Parse(dateLayout, u.settings.Start)
	if err != nil {
		return result, fmt.Errorf("invalid stocks start date %q: %w", u.settings.Start, err)
	}
	end, err := time.Parse(dateLayout, u.settings.End)
	if err != nil {
		return result, fmt.Errorf("invalid stocks end date %q: %w", u.settings.End, err)
	}
	interval := u.settings.Interval
	if interval == "" {
		interval = "1d"
	}
	outDir := filepath.Join(u.settings.RawDir, "yahoo_finance")

	for _, ticker := range u.settings.Tickers {
		if ctx.Err() != nil {
			result.Errors[ticker] = ctx.Err().Error()
			continue
		}
		entry := logger.GetLogger().WithField("ticker", ticker)
		entry.WithFields(log.Fields{"start": u.settings.Start, "end": u.settings.End}).Info("Downloading price history")

		bars, err := u.prices.DailyBars(ctx, ticker, start, end, interval)
		if err != nil {
			entry.WithError(err).Warn("Failed to download price history")
			result.Errors[ticker] = err.Error()
			continue
		}
		if len(bars) == 0 {
			entry.Warn("No data for ticker")
			result.Errors[ticker] = "no data"
			continue
		}

		path := filepath.Join(outDir, fmt.Sprintf("stock_%s_%s_to_%s.csv", ticker, u.settings.Start, u.settings.End))
		if err := u.csv.Write(path, stockHeader, barRows(bars)); err != nil {
			entry.WithError(err).Error("Failed to write price history")
			result.Errors[ticker] = err.Error()
			continue
		}
		entry.WithField("path", path).Info("Saved raw payload")
		result.Files = append(result.Files, path)
	}
	return result, nil
}

// ExtractKaggle mirrors every configured dataset into <raw>/<name>.
func (u *ExtractUseCase) ExtractKaggle(ctx context.Context) model.ExtractResult {
	result := model.NewExtractResult()

	names := make([]string, 0, len(u.settings.Datasets))
	for name := range u.settings.Datasets {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		ref := u.settings.Datasets[name]
		if ref == "" {
			continue
		}
		entry := logger.GetLogger().WithFields(log.Fields{"dataset": ref, "name": name})
		entry.Info("Downloading dataset")

		files, err := u.datasets.Download(ctx, ref, filepath.Join(u.settings.RawDir, name))
		if err != nil {
			entry.WithError(err).Error("Error downloading dataset")
			result.Errors[name] = err.Error()
			continue
		}
		result.Files = append(result.Files, files...)
	}
	return result
}

func barRows(bars []model.PriceBar) [][]string {
	rows := make([][]string, 0, len(bars))
	for _, b := range bars {
		rows = append(rows, []string{
			b.Date.Format(dateLayout),
			formatPrice(b.Open),
			formatPrice(b.High),
			formatPrice(b.Low),
			formatPrice(b.Close),
			formatPrice(b.AdjClose),
			strconv.FormatInt(b.Volume, 10),
		})
	}
	return rows
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
