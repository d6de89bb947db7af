package models

import "time"

// SentimentSummary rolls per-article sentiment into one distribution.
// Score is in [-100, 100]; Label buckets it at the ±20 thresholds.
type SentimentSummary struct {
	Positive int     `json:"positive"`
	Negative int     `json:"negative"`
	Neutral  int     `json:"neutral"`
	Score    float64 `json:"score"`
	Label    string  `json:"label"`
}

// Candle is one chart history point.
type Candle struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume,omitempty"`
}

// Analysis is the unified response consumed by the dashboard: quote,
// classification, fundamentals, ranked news, sentiment, earnings, chart.
type Analysis struct {
	Symbol       string           `json:"symbol"`
	AssetType    AssetType        `json:"assetType"`
	Quote        Quote            `json:"quote"`
	Fundamentals Fundamentals     `json:"fundamentals"`
	News         []Article        `json:"news"`
	Sentiment    SentimentSummary `json:"sentiment"`
	Earnings     Earnings         `json:"earnings"`
	Chart        []Candle         `json:"chart,omitempty"`
	Timestamp    time.Time        `json:"timestamp"`
}
