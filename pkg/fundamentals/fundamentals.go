// Package fundamentals assembles the fundamentals record for an asset,
// preferring authoritative provider data and degrading to defaults. It never
// fails the request: lookup failures are logged and absorbed.
package fundamentals

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Vijfie/marketlens/pkg/logger"
	"github.com/Vijfie/marketlens/pkg/models"
	"github.com/Vijfie/marketlens/pkg/provider"
)

// Synthesizer builds the fundamentals variant selected by asset class.
type Synthesizer struct {
	Crypto        provider.CryptoMetricsProvider
	CryptoTimeout time.Duration
}

// ForStock prefers the profile-provider result, falls back to the overlap the
// quote carries, and finally to an empty estimated record. Metrics with no
// integrated source stay nil.
func (s Synthesizer) ForStock(kind models.AssetType, profile *provider.Profile, q models.Quote) models.Fundamentals {
	if profile != nil {
		return models.Fundamentals{
			Kind:   kind,
			Source: profile.Source,
			Stock: &models.StockFundamentals{
				Sector:            profile.Sector,
				Industry:          profile.Industry,
				MarketCap:         profile.MarketCap,
				SharesOutstanding: profile.SharesOutstanding,
				PERatio:           profile.PERatio,
				EPS:               profile.EPS,
				Beta:              profile.Beta,
				DividendYield:     profile.DividendYield,
				FiftyTwoWeekHigh:  profile.FiftyTwoWeekHigh,
				FiftyTwoWeekLow:   profile.FiftyTwoWeekLow,
			},
		}
	}
	if q.MarketCap > 0 {
		return models.Fundamentals{
			Kind:      kind,
			Source:    q.Source,
			Estimated: true,
			Stock:     &models.StockFundamentals{MarketCap: q.MarketCap},
		}
	}
	return models.Fundamentals{
		Kind:      kind,
		Source:    "none",
		Estimated: true,
		Stock:     &models.StockFundamentals{},
	}
}

// ForCrypto attempts the metrics provider under its own timeout and falls
// back to static per-symbol defaults. Volatility, whale activity and network
// health have no live source and stay unknown either way.
func (s Synthesizer) ForCrypto(ctx context.Context, symbol string, q models.Quote) models.Fundamentals {
	if s.Crypto != nil {
		m, err := s.fetchMetrics(ctx, symbol)
		if err == nil {
			return models.Fundamentals{
				Kind:   models.AssetCrypto,
				Source: m.Source,
				Crypto: &models.CryptoFundamentals{
					CirculatingSupply: m.CirculatingSupply,
					TotalSupply:       m.TotalSupply,
					MaxSupply:         m.MaxSupply,
					MarketCapRank:     m.MarketCapRank,
					Dominance:         m.Dominance,
					AllTimeHigh:       m.AllTimeHigh,
					AllTimeLow:        m.AllTimeLow,
				},
			}
		}
		if errors.Is(err, provider.ErrUnavailable) {
			logger.Log.Info("crypto metrics provider not configured",
				zap.String("symbol", symbol))
		} else {
			logger.Log.Warn("crypto metrics lookup failed, using defaults",
				zap.String("symbol", symbol), zap.Error(err))
		}
	}
	return cryptoDefaults(symbol)
}

func (s Synthesizer) fetchMetrics(ctx context.Context, symbol string) (provider.CryptoMetrics, error) {
	if s.CryptoTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.CryptoTimeout)
		defer cancel()
	}
	start := time.Now()
	m, err := s.Crypto.FetchCryptoMetrics(ctx, symbol)
	provider.Observe(s.Crypto.Name(), "crypto_metrics", start, err)
	return m, err
}

// knownSupplies are fallback supply figures for the majors, used when the
// metrics provider is down. Approximate by nature; the record is marked
// estimated.
var knownSupplies = map[string]models.CryptoFundamentals{
	"BTC": {CirculatingSupply: 19_700_000, MaxSupply: 21_000_000, MarketCapRank: 1},
	"ETH": {CirculatingSupply: 120_000_000, MarketCapRank: 2},
	"BNB": {CirculatingSupply: 150_000_000, MaxSupply: 200_000_000, MarketCapRank: 4},
	"XRP": {CirculatingSupply: 55_000_000_000, MaxSupply: 100_000_000_000, MarketCapRank: 6},
	"ADA": {CirculatingSupply: 35_000_000_000, MaxSupply: 45_000_000_000, MarketCapRank: 9},
	"SOL": {CirculatingSupply: 460_000_000, MarketCapRank: 5},
	"DOGE": {CirculatingSupply: 144_000_000_000, MarketCapRank: 8},
}

func cryptoDefaults(symbol string) models.Fundamentals {
	f := models.Fundamentals{
		Kind:      models.AssetCrypto,
		Source:    "Defaults",
		Estimated: true,
	}
	if known, ok := knownSupplies[strings.ToUpper(symbol)]; ok {
		cp := known
		f.Crypto = &cp
	} else {
		f.Crypto = &models.CryptoFundamentals{}
	}
	return f
}
