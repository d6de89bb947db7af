// Package coingecko adapts the CoinGecko API for crypto quotes, supply and
// dominance metrics, and chart history. The public endpoints are keyless; a
// pro key is attached when configured.
package coingecko

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Vijfie/marketlens/pkg/httpx"
	"github.com/Vijfie/marketlens/pkg/models"
	"github.com/Vijfie/marketlens/pkg/provider"
)

const defaultBaseURL = "https://api.coingecko.com/api/v3"

// coinIDs maps tickers to CoinGecko coin ids. Unlisted symbols fall back to
// the lowercase ticker, which works for coins whose id matches their symbol.
var coinIDs = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"BNB":   "binancecoin",
	"XRP":   "ripple",
	"ADA":   "cardano",
	"SOL":   "solana",
	"DOGE":  "dogecoin",
	"DOT":   "polkadot",
	"MATIC": "matic-network",
	"AVAX":  "avalanche-2",
	"LINK":  "chainlink",
	"LTC":   "litecoin",
	"UNI":   "uniswap",
	"ATOM":  "cosmos",
	"XLM":   "stellar",
	"ALGO":  "algorand",
	"TRX":   "tron",
	"SHIB":  "shiba-inu",
	"NEAR":  "near",
	"FTM":   "fantom",
}

// CoinID resolves a ticker to its CoinGecko id.
func CoinID(symbol string) string {
	if id, ok := coinIDs[strings.ToUpper(strings.TrimSpace(symbol))]; ok {
		return id
	}
	return strings.ToLower(strings.TrimSpace(symbol))
}

type Client struct {
	apiKey  string
	baseURL string
	http    *httpx.Client
}

func New(apiKey string, http *httpx.Client) *Client {
	return &Client{apiKey: apiKey, baseURL: defaultBaseURL, http: http}
}

func NewWithBaseURL(apiKey, baseURL string, http *httpx.Client) *Client {
	return &Client{apiKey: apiKey, baseURL: baseURL, http: http}
}

func (c *Client) Name() string { return "CoinGecko" }

func (c *Client) headers() map[string]string {
	if c.apiKey == "" {
		return nil
	}
	return map[string]string{"x-cg-pro-api-key": c.apiKey}
}

type marketEntry struct {
	Symbol            string   `json:"symbol"`
	Name              string   `json:"name"`
	CurrentPrice      float64  `json:"current_price"`
	MarketCap         float64  `json:"market_cap"`
	MarketCapRank     int      `json:"market_cap_rank"`
	TotalVolume       float64  `json:"total_volume"`
	PriceChange24h    float64  `json:"price_change_24h"`
	CirculatingSupply float64  `json:"circulating_supply"`
	TotalSupply       float64  `json:"total_supply"`
	MaxSupply         *float64 `json:"max_supply"`
	ATH               float64  `json:"ath"`
	ATL               float64  `json:"atl"`
}

func (c *Client) fetchMarket(ctx context.Context, symbol string) (marketEntry, error) {
	var resp []marketEntry
	u := fmt.Sprintf("%s/coins/markets?vs_currency=usd&ids=%s",
		c.baseURL, url.QueryEscape(CoinID(symbol)))
	if err := c.http.GetJSON(ctx, u, c.headers(), &resp); err != nil {
		return marketEntry{}, fmt.Errorf("coingecko markets: %w", err)
	}
	if len(resp) == 0 {
		return marketEntry{}, provider.ErrNoData
	}
	return resp[0], nil
}

func (c *Client) FetchQuote(ctx context.Context, symbol string) (models.Quote, error) {
	e, err := c.fetchMarket(ctx, symbol)
	if err != nil {
		return models.Quote{}, err
	}
	q := models.Quote{
		Symbol:        symbol,
		Name:          e.Name,
		Price:         e.CurrentPrice,
		PreviousClose: e.CurrentPrice - e.PriceChange24h,
		Volume:        int64(e.TotalVolume),
		MarketCap:     e.MarketCap,
		Currency:      "USD",
		Exchange:      "Crypto",
		Source:        c.Name(),
	}
	q.Sanitize()
	q.Derive()
	return q, nil
}

func (c *Client) FetchCryptoMetrics(ctx context.Context, symbol string) (provider.CryptoMetrics, error) {
	e, err := c.fetchMarket(ctx, symbol)
	if err != nil {
		return provider.CryptoMetrics{}, err
	}
	m := provider.CryptoMetrics{
		CirculatingSupply: e.CirculatingSupply,
		TotalSupply:       e.TotalSupply,
		MarketCapRank:     e.MarketCapRank,
		Source:            c.Name(),
	}
	if e.MaxSupply != nil {
		m.MaxSupply = *e.MaxSupply
	}
	if e.ATH > 0 {
		ath := e.ATH
		m.AllTimeHigh = &ath
	}
	if e.ATL > 0 {
		atl := e.ATL
		m.AllTimeLow = &atl
	}
	return m, nil
}

type chartResponse struct {
	Prices       [][2]float64 `json:"prices"`
	TotalVolumes [][2]float64 `json:"total_volumes"`
}

func (c *Client) FetchChart(ctx context.Context, symbol string, days int) ([]models.Candle, error) {
	var resp chartResponse
	u := fmt.Sprintf("%s/coins/%s/market_chart?vs_currency=usd&days=%d",
		c.baseURL, url.PathEscape(CoinID(symbol)), days)
	if err := c.http.GetJSON(ctx, u, c.headers(), &resp); err != nil {
		return nil, fmt.Errorf("coingecko chart: %w", err)
	}
	if len(resp.Prices) == 0 {
		return nil, provider.ErrNoData
	}

	// market_chart gives price points, not OHLC; each point becomes a flat
	// candle so the chart consumer sees one shape for both asset classes
	candles := make([]models.Candle, 0, len(resp.Prices))
	for i, p := range resp.Prices {
		candle := models.Candle{
			Timestamp: time.UnixMilli(int64(p[0])).UTC(),
			Open:      p[1],
			High:      p[1],
			Low:       p[1],
			Close:     p[1],
		}
		if i < len(resp.TotalVolumes) {
			candle.Volume = resp.TotalVolumes[i][1]
		}
		candles = append(candles, candle)
	}
	return candles, nil
}
