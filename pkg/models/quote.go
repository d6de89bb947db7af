package models

import (
	"time"

	"github.com/Vijfie/marketlens/pkg/validation"
)

// Quote is the normalized price snapshot returned by all quote providers.
// ChangePercent is nil when PreviousClose is zero or absent: the percentage
// is undefined there and must be treated as missing, not divide-by-zero.
type Quote struct {
	Symbol        string    `json:"symbol" validate:"required,symbol"`
	Name          string    `json:"name,omitempty"`
	Price         float64   `json:"price" validate:"required"`
	PreviousClose float64   `json:"previousClose"`
	Change        float64   `json:"change"`
	ChangePercent *float64  `json:"changePercent,omitempty"`
	Volume        int64     `json:"volume,omitempty"`
	MarketCap     float64   `json:"marketCap,omitempty"`
	Currency      string    `json:"currency,omitempty"`
	Exchange      string    `json:"exchange,omitempty"`
	Source        string    `json:"source"`
	Timestamp     time.Time `json:"timestamp"`
}

// Derive fills Change and ChangePercent from Price and PreviousClose.
func (q *Quote) Derive() {
	q.Change = q.Price - q.PreviousClose
	if q.PreviousClose > 0 {
		pct := q.Change / q.PreviousClose * 100
		q.ChangePercent = &pct
	} else {
		q.ChangePercent = nil
	}
}

// Sanitize normalizes the symbol and backfills the timestamp.
func (q *Quote) Sanitize() {
	q.Symbol = validation.SanitizeSymbol(q.Symbol)
	if q.Timestamp.IsZero() {
		q.Timestamp = time.Now().UTC()
	}
}

// Validate validates the Quote struct
func (q Quote) Validate() error {
	if errors := validation.ValidateStruct(q); len(errors) > 0 {
		return errors
	}
	return nil
}
