// Package provider defines the capability contracts implemented by each
// upstream adapter. Every adapter normalizes one provider's responses or
// reports unavailability; none lets an upstream failure escape its boundary,
// none retries.
package provider

import (
	"context"
	"errors"
	"time"

	"github.com/Vijfie/marketlens/pkg/metrics"
	"github.com/Vijfie/marketlens/pkg/models"
)

// ErrUnavailable means the adapter cannot serve the capability at all,
// typically because no credential is configured. Callers log it at info
// level and move on; it is never surfaced as a request error.
var ErrUnavailable = errors.New("provider unavailable")

// ErrNoData means the provider answered but had nothing for the symbol.
var ErrNoData = errors.New("no data for symbol")

// NewsOptions shapes a news fetch.
type NewsOptions struct {
	Limit int
	// From bounds the lookback window; zero means provider default.
	From time.Time
}

// CryptoMetrics is the normalized supply/dominance record for a crypto asset.
type CryptoMetrics struct {
	CirculatingSupply float64
	TotalSupply       float64
	MaxSupply         float64
	MarketCapRank     int
	Dominance         *float64
	AllTimeHigh       *float64
	AllTimeLow        *float64
	Source            string
}

// Profile is the company profile used to build stock fundamentals.
type Profile struct {
	Name              string
	Sector            string
	Industry          string
	Exchange          string
	MarketCap         float64
	SharesOutstanding float64
	PERatio           *float64
	EPS               *float64
	Beta              *float64
	DividendYield     *float64
	FiftyTwoWeekHigh  *float64
	FiftyTwoWeekLow   *float64
	Source            string
}

type QuoteProvider interface {
	Name() string
	FetchQuote(ctx context.Context, symbol string) (models.Quote, error)
}

type ProfileProvider interface {
	Name() string
	FetchProfile(ctx context.Context, symbol string) (Profile, error)
}

type NewsProvider interface {
	Name() string
	FetchNews(ctx context.Context, symbol string, opts NewsOptions) ([]models.Article, error)
}

type EarningsProvider interface {
	Name() string
	FetchEarnings(ctx context.Context, symbol string, quarters int) (models.Earnings, error)
}

type CryptoMetricsProvider interface {
	Name() string
	FetchCryptoMetrics(ctx context.Context, symbol string) (CryptoMetrics, error)
}

type ChartProvider interface {
	Name() string
	FetchChart(ctx context.Context, symbol string, days int) ([]models.Candle, error)
}

// Observe records a provider call's duration and outcome.
func Observe(name, capability string, start time.Time, err error) {
	status := "success"
	switch {
	case errors.Is(err, ErrUnavailable):
		status = "unavailable"
		metrics.ProviderUnavailable.WithLabelValues(name, capability).Inc()
	case err != nil:
		status = "error"
		metrics.ProviderErrors.WithLabelValues(name, capability).Inc()
	}
	metrics.ProviderRequestDuration.WithLabelValues(name, capability, status).
		Observe(time.Since(start).Seconds())
}
