package models

import (
	"encoding/json"
	"fmt"
)

// StockFundamentals carries valuation ratios and growth rates for equities.
// Metrics with no authoritative source integrated (dividend yield,
// debt/equity, margins, beta) are pointers: nil means unknown. The reference
// behavior filled these with random numbers; we report them as missing and
// mark the record estimated instead.
type StockFundamentals struct {
	Sector            string   `json:"sector,omitempty"`
	Industry          string   `json:"industry,omitempty"`
	MarketCap         float64  `json:"marketCap,omitempty"`
	PERatio           *float64 `json:"peRatio,omitempty"`
	EPS               *float64 `json:"eps,omitempty"`
	RevenueGrowth     *float64 `json:"revenueGrowth,omitempty"`
	ProfitMargin      *float64 `json:"profitMargin,omitempty"`
	DividendYield     *float64 `json:"dividendYield,omitempty"`
	DebtToEquity      *float64 `json:"debtToEquity,omitempty"`
	Beta              *float64 `json:"beta,omitempty"`
	FiftyTwoWeekHigh  *float64 `json:"fiftyTwoWeekHigh,omitempty"`
	FiftyTwoWeekLow   *float64 `json:"fiftyTwoWeekLow,omitempty"`
	SharesOutstanding float64  `json:"sharesOutstanding,omitempty"`
}

// CryptoFundamentals carries supply metrics, dominance and volatility for
// crypto assets. Volatility, whale activity and network health have no live
// source and stay nil.
type CryptoFundamentals struct {
	CirculatingSupply float64  `json:"circulatingSupply,omitempty"`
	TotalSupply       float64  `json:"totalSupply,omitempty"`
	MaxSupply         float64  `json:"maxSupply,omitempty"`
	MarketCapRank     int      `json:"marketCapRank,omitempty"`
	Dominance         *float64 `json:"dominance,omitempty"`
	AllTimeHigh       *float64 `json:"allTimeHigh,omitempty"`
	AllTimeLow        *float64 `json:"allTimeLow,omitempty"`
	Volatility        *float64 `json:"volatility,omitempty"`
	WhaleActivity     *float64 `json:"whaleActivity,omitempty"`
	NetworkHealth     *float64 `json:"networkHealth,omitempty"`
}

// Fundamentals is a tagged union over asset classes: exactly one variant is
// populated, selected by Kind. Source names where the figures came from
// ("Finnhub", "CoinGecko", "Defaults", ...); Estimated marks records not
// backed by any live provider.
type Fundamentals struct {
	Kind      AssetType
	Source    string
	Estimated bool
	Stock     *StockFundamentals
	Crypto    *CryptoFundamentals
}

// MarshalJSON emits the populated variant under its tag. Serialization is
// the exhaustive-match boundary for the union.
func (f Fundamentals) MarshalJSON() ([]byte, error) {
	switch f.Kind {
	case AssetCrypto:
		if f.Crypto == nil {
			return nil, fmt.Errorf("fundamentals: crypto variant not populated")
		}
		return json.Marshal(struct {
			Kind      AssetType           `json:"kind"`
			Source    string              `json:"source"`
			Estimated bool                `json:"estimated"`
			Crypto    *CryptoFundamentals `json:"crypto"`
		}{f.Kind, f.Source, f.Estimated, f.Crypto})
	case AssetStock, AssetETF, AssetIndex:
		if f.Stock == nil {
			return nil, fmt.Errorf("fundamentals: stock variant not populated")
		}
		return json.Marshal(struct {
			Kind      AssetType          `json:"kind"`
			Source    string             `json:"source"`
			Estimated bool               `json:"estimated"`
			Stock     *StockFundamentals `json:"stock"`
		}{f.Kind, f.Source, f.Estimated, f.Stock})
	default:
		return nil, fmt.Errorf("fundamentals: unknown kind %q", f.Kind)
	}
}
