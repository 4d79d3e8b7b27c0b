package model

import "time"

// PriceBar is one OHLCV row of a ticker's history.
type PriceBar struct {
	Date     time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	AdjClose float64
	Volume   int64
}

// ExtractResult lists the files a collaborator wrote and, per item, why an
// item was skipped.
type ExtractResult struct {
	Files  []string          `json:"files"`
	Errors map[string]string `json:"errors"`
}

func NewExtractResult() ExtractResult {
	return ExtractResult{Errors: make(map[string]string)}
}
