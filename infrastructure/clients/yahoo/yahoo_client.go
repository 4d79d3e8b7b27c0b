package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"solar-pipeline/domain/model"
	"solar-pipeline/domain/repository"

	"github.com/google/go-querystring/query"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0 Safari/537.36"

// Client reads price history from the Yahoo Finance chart endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient(baseURL string) repository.IPriceHistory {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

type chartQuery struct {
	Period1              int64  `url:"period1"`
	Period2              int64  `url:"period2"`
	Interval             string `url:"interval"`
	Events               string `url:"events"`
	IncludeAdjustedClose bool   `url:"includeAdjustedClose"`
}

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type chartResult struct {
	Meta struct {
		Symbol    string `json:"symbol"`
		GMTOffset int64  `json:"gmtoffset"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open   []*float64 `json:"open"`
			High   []*float64 `json:"high"`
			Low    []*float64 `json:"low"`
			Close  []*float64 `json:"close"`
			Volume []*int64   `json:"volume"`
		} `json:"quote"`
		AdjClose []struct {
			AdjClose []*float64 `json:"adjclose"`
		} `json:"adjclose"`
	} `json:"indicators"`
}

// DailyBars returns the bars in [start, end). Rows with missing prices are skipped.
func (c *Client) DailyBars(ctx context.Context, ticker string, start, end time.Time, interval string) ([]model.PriceBar, error) {
	values, err := query.Values(chartQuery{
		Period1:              start.Unix(),
		Period2:              end.Unix(),
		Interval:             interval,
		Events:               "history",
		IncludeAdjustedClose: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode chart query: %w", err)
	}
	endpoint := fmt.Sprintf("%s/%s?%s", c.baseURL, url.PathEscape(ticker), values.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", ticker, err)
	}
	defer resp.Body.Close()

	var body chartResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&body)
	if body.Chart.Error != nil {
		return nil, fmt.Errorf("chart API error for %s: %s: %s", ticker, body.Chart.Error.Code, body.Chart.Error.Description)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: unexpected status %d", ticker, resp.StatusCode)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("failed to decode chart for %s: %w", ticker, decodeErr)
	}
	if len(body.Chart.Result) == 0 {
		return nil, nil
	}
	return toBars(body.Chart.Result[0]), nil
}

func toBars(r chartResult) []model.PriceBar {
	if len(r.Indicators.Quote) == 0 {
		return nil
	}
	q := r.Indicators.Quote[0]
	var adj []*float64
	if len(r.Indicators.AdjClose) > 0 {
		adj = r.Indicators.AdjClose[0].AdjClose
	}

	bars := make([]model.PriceBar, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		open, high, low, closePrice := at(q.Open, i), at(q.High, i), at(q.Low, i), at(q.Close, i)
		if open == nil || high == nil || low == nil || closePrice == nil {
			continue
		}
		bar := model.PriceBar{
			Date:     time.Unix(ts+r.Meta.GMTOffset, 0).UTC().Truncate(24 * time.Hour),
			Open:     *open,
			High:     *high,
			Low:      *low,
			Close:    *closePrice,
			AdjClose: *closePrice,
		}
		if a := at(adj, i); a != nil {
			bar.AdjClose = *a
		}
		if i < len(q.Volume) && q.Volume[i] != nil {
			bar.Volume = *q.Volume[i]
		}
		bars = append(bars, bar)
	}
	return bars
}

func at(values []*float64, i int) *float64 {
	if i >= len(values) {
		return nil
	}
	return values[i]
}
