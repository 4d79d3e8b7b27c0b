package usecase_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"solar-pipeline/domain/model"
	"solar-pipeline/infrastructure/filecsv"
	"solar-pipeline/usecase"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockReportDownloader struct {
	mock.Mock
}

func (m *MockReportDownloader) EnsureReport(ctx context.Context, url, path string) error {
	args := m.Called(ctx, url, path)
	return args.Error(0)
}

type MockPriceHistory struct {
	mock.Mock
}

func (m *MockPriceHistory) DailyBars(ctx context.Context, ticker string, start, end time.Time, interval string) ([]model.PriceBar, error) {
	args := m.Called(ctx, ticker, start, end, interval)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PriceBar), args.Error(1)
}

type MockDatasetMirror struct {
	mock.Mock
}

func (m *MockDatasetMirror) Download(ctx context.Context, dataset, dir string) ([]string, error) {
	args := m.Called(ctx, dataset, dir)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func newExtractUseCase(fs afero.Fs, reports *MockReportDownloader, prices *MockPriceHistory, datasets *MockDatasetMirror) usecase.IExtractUseCase {
	return usecase.NewExtractUseCase(reports, prices, datasets, filecsv.NewWriter(fs), usecase.ExtractSettings{
		RawDir:       filepath.Join("data", "raw"),
		ProcessedDir: filepath.Join("data", "processed"),
		PDFURL:       "https://example.org/report.pdf",
		PDFFileName:  "report.pdf",
		Tickers:      []string{"HUBC.KA", "PSO.KA", "MARI.KA"},
		Start:        "2018-01-01",
		End:          "2024-06-30",
		Interval:     "1d",
		Datasets: map[string]string{
			"solar-generation": "owner/solar-generation",
			"solar-radiation":  "owner/solar-radiation",
		},
	})
}

func TestExtractPBS(t *testing.T) {
	fs := afero.NewMemMapFs()
	reports := new(MockReportDownloader)
	reports.On("EnsureReport", mock.Anything, "https://example.org/report.pdf", filepath.Join("data", "raw", "report.pdf")).Return(nil)

	result, err := newExtractUseCase(fs, reports, nil, nil).ExtractPBS(context.Background())

	require.NoError(t, err)
	assert.Len(t, result.Files, len(filecsv.PBSTemplates))
	assert.Empty(t, result.Errors)
	ok, _ := afero.Exists(fs, filepath.Join("data", "processed", "PBS", "table_5_4_electricity_generation_2020-21_by_establishment.csv"))
	assert.True(t, ok)
}

func TestExtractPBS_DownloadFailureStopsStep(t *testing.T) {
	fs := afero.NewMemMapFs()
	reports := new(MockReportDownloader)
	reports.On("EnsureReport", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("timeout"))

	_, err := newExtractUseCase(fs, reports, nil, nil).ExtractPBS(context.Background())

	require.Error(t, err)
	ok, _ := afero.DirExists(fs, filepath.Join("data", "processed", "PBS"))
	assert.False(t, ok)
}

func TestExtractStocks(t *testing.T) {
	fs := afero.NewMemMapFs()
	start := time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

	prices := new(MockPriceHistory)
	prices.On("DailyBars", mock.Anything, "HUBC.KA", start, end, "1d").Return([]model.PriceBar{
		{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Open: 100.5, High: 102, Low: 99, Close: 101.5, AdjClose: 95.1, Volume: 150000},
	}, nil)
	prices.On("DailyBars", mock.Anything, "PSO.KA", start, end, "1d").Return([]model.PriceBar{}, nil)
	prices.On("DailyBars", mock.Anything, "MARI.KA", start, end, "1d").Return(nil, errors.New("symbol may be delisted"))

	result, err := newExtractUseCase(fs, nil, prices, nil).ExtractStocks(context.Background())
	require.NoError(t, err)

	path := filepath.Join("data", "raw", "yahoo_finance", "stock_HUBC.KA_2018-01-01_to_2024-06-30.csv")
	assert.Equal(t, []string{path}, result.Files)
	assert.Equal(t, map[string]string{"PSO.KA": "no data", "MARI.KA": "symbol may be delisted"}, result.Errors)

	body, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	assert.Equal(t, []string{
		"Date,Open,High,Low,Close,Adj Close,Volume",
		"2024-01-02,100.5,102,99,101.5,95.1,150000",
	}, lines)
}

func TestExtractStocks_InvalidDate(t *testing.T) {
	uc := usecase.NewExtractUseCase(nil, new(MockPriceHistory), nil, filecsv.NewWriter(afero.NewMemMapFs()), usecase.ExtractSettings{Start: "01/01/2018", End: "2024-01-01"})

	_, err := uc.ExtractStocks(context.Background())
	assert.Error(t, err)
}

func TestExtractKaggle_ContinuesAfterFailure(t *testing.T) {
	datasets := new(MockDatasetMirror)
	datasets.On("Download", mock.Anything, "owner/solar-generation", filepath.Join("data", "raw", "solar-generation")).
		Return(nil, errors.New("unexpected status 403"))
	datasets.On("Download", mock.Anything, "owner/solar-radiation", filepath.Join("data", "raw", "solar-radiation")).
		Return([]string{"data/raw/solar-radiation/radiation.csv"}, nil)

	result := newExtractUseCase(afero.NewMemMapFs(), nil, nil, datasets).ExtractKaggle(context.Background())

	assert.Equal(t, []string{"data/raw/solar-radiation/radiation.csv"}, result.Files)
	assert.Equal(t, map[string]string{"solar-generation": "unexpected status 403"}, result.Errors)
	datasets.AssertExpectations(t)
}
