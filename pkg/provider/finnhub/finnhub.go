// Package finnhub adapts the Finnhub REST API: quotes, company profiles,
// company news, EPS history and daily candles.
package finnhub

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/Vijfie/marketlens/pkg/httpx"
	"github.com/Vijfie/marketlens/pkg/models"
	"github.com/Vijfie/marketlens/pkg/provider"
	"github.com/Vijfie/marketlens/pkg/sentiment"
)

const defaultBaseURL = "https://finnhub.io/api/v1"

type Client struct {
	apiKey  string
	baseURL string
	http    *httpx.Client
}

func New(apiKey string, http *httpx.Client) *Client {
	return &Client{apiKey: apiKey, baseURL: defaultBaseURL, http: http}
}

// NewWithBaseURL is used by tests to point the adapter at a stub server.
func NewWithBaseURL(apiKey, baseURL string, http *httpx.Client) *Client {
	return &Client{apiKey: apiKey, baseURL: baseURL, http: http}
}

func (c *Client) Name() string { return "Finnhub" }

func (c *Client) available() error {
	if c.apiKey == "" {
		return provider.ErrUnavailable
	}
	return nil
}

type quoteResponse struct {
	Current       float64 `json:"c"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	Open          float64 `json:"o"`
	PreviousClose float64 `json:"pc"`
	Timestamp     int64   `json:"t"`
}

func (c *Client) FetchQuote(ctx context.Context, symbol string) (models.Quote, error) {
	if err := c.available(); err != nil {
		return models.Quote{}, err
	}
	var resp quoteResponse
	u := fmt.Sprintf("%s/quote?symbol=%s&token=%s", c.baseURL, url.QueryEscape(symbol), c.apiKey)
	if err := c.http.GetJSON(ctx, u, nil, &resp); err != nil {
		return models.Quote{}, fmt.Errorf("finnhub quote: %w", err)
	}
	// Finnhub returns zeros, not an error, for unknown symbols
	if resp.Current == 0 && resp.PreviousClose == 0 {
		return models.Quote{}, provider.ErrNoData
	}

	q := models.Quote{
		Symbol:        symbol,
		Price:         resp.Current,
		PreviousClose: resp.PreviousClose,
		Currency:      "USD",
		Source:        c.Name(),
		Timestamp:     time.Unix(resp.Timestamp, 0).UTC(),
	}
	q.Sanitize()
	q.Derive()
	return q, nil
}

type profileResponse struct {
	Name             string  `json:"name"`
	Exchange         string  `json:"exchange"`
	Industry         string  `json:"finnhubIndustry"`
	MarketCap        float64 `json:"marketCapitalization"` // millions
	ShareOutstanding float64 `json:"shareOutstanding"`     // millions
	Currency         string  `json:"currency"`
}

func (c *Client) FetchProfile(ctx context.Context, symbol string) (provider.Profile, error) {
	if err := c.available(); err != nil {
		return provider.Profile{}, err
	}
	var resp profileResponse
	u := fmt.Sprintf("%s/stock/profile2?symbol=%s&token=%s", c.baseURL, url.QueryEscape(symbol), c.apiKey)
	if err := c.http.GetJSON(ctx, u, nil, &resp); err != nil {
		return provider.Profile{}, fmt.Errorf("finnhub profile: %w", err)
	}
	if resp.Name == "" {
		return provider.Profile{}, provider.ErrNoData
	}
	return provider.Profile{
		Name:              resp.Name,
		Industry:          resp.Industry,
		Sector:            resp.Industry, // finnhub exposes a single industry label
		Exchange:          resp.Exchange,
		MarketCap:         resp.MarketCap * 1e6,
		SharesOutstanding: resp.ShareOutstanding * 1e6,
		Source:            c.Name(),
	}, nil
}

type newsItem struct {
	Headline string `json:"headline"`
	Summary  string `json:"summary"`
	Source   string `json:"source"`
	URL      string `json:"url"`
	Datetime int64  `json:"datetime"`
	Category string `json:"category"`
}

func (c *Client) FetchNews(ctx context.Context, symbol string, opts provider.NewsOptions) ([]models.Article, error) {
	if err := c.available(); err != nil {
		return nil, err
	}
	from := opts.From
	if from.IsZero() {
		from = time.Now().AddDate(0, 0, -7)
	}
	var resp []newsItem
	u := fmt.Sprintf("%s/company-news?symbol=%s&from=%s&to=%s&token=%s",
		c.baseURL, url.QueryEscape(symbol),
		from.Format("2006-01-02"), time.Now().Format("2006-01-02"), c.apiKey)
	if err := c.http.GetJSON(ctx, u, nil, &resp); err != nil {
		return nil, fmt.Errorf("finnhub news: %w", err)
	}

	limit := opts.Limit
	if limit <= 0 || limit > len(resp) {
		limit = len(resp)
	}
	articles := make([]models.Article, 0, limit)
	for _, item := range resp[:limit] {
		articles = append(articles, models.Article{
			Headline:    item.Headline,
			Summary:     item.Summary,
			Source:      item.Source,
			SourceTier:  models.TierForSource(item.Source),
			URL:         item.URL,
			PublishedAt: time.Unix(item.Datetime, 0).UTC(),
			Sentiment:   sentiment.Classify(item.Headline + " " + item.Summary),
			Category:    item.Category,
		})
	}
	return articles, nil
}

type epsEntry struct {
	Actual  *float64 `json:"actual"`
	Period  string   `json:"period"` // "2026-03-31"
	Quarter int      `json:"quarter"`
	Year    int      `json:"year"`
}

func (c *Client) FetchEarnings(ctx context.Context, symbol string, quarters int) (models.Earnings, error) {
	if err := c.available(); err != nil {
		return models.Earnings{}, err
	}
	var resp []epsEntry
	u := fmt.Sprintf("%s/stock/earnings?symbol=%s&token=%s", c.baseURL, url.QueryEscape(symbol), c.apiKey)
	if err := c.http.GetJSON(ctx, u, nil, &resp); err != nil {
		return models.Earnings{}, fmt.Errorf("finnhub earnings: %w", err)
	}
	if len(resp) == 0 {
		return models.Earnings{}, provider.ErrNoData
	}

	toQuarter := func(e epsEntry) models.Quarter {
		return models.Quarter{
			Period: fmt.Sprintf("Q%d", e.Quarter),
			Year:   e.Year,
			EPS:    e.Actual,
		}
	}

	latest := toQuarter(resp[0])
	e := models.Earnings{
		Success: true,
		Source:  c.Name(),
		Latest:  &latest,
	}
	for _, entry := range resp[1:] {
		if len(e.Historical) >= quarters {
			break
		}
		e.Historical = append(e.Historical, toQuarter(entry))
	}
	return e, nil
}

type candleResponse struct {
	Close  []float64 `json:"c"`
	High   []float64 `json:"h"`
	Low    []float64 `json:"l"`
	Open   []float64 `json:"o"`
	Volume []float64 `json:"v"`
	Times  []int64   `json:"t"`
	Status string    `json:"s"`
}

func (c *Client) FetchChart(ctx context.Context, symbol string, days int) ([]models.Candle, error) {
	if err := c.available(); err != nil {
		return nil, err
	}
	now := time.Now()
	var resp candleResponse
	u := fmt.Sprintf("%s/stock/candle?symbol=%s&resolution=D&from=%d&to=%d&token=%s",
		c.baseURL, url.QueryEscape(symbol),
		now.AddDate(0, 0, -days).Unix(), now.Unix(), c.apiKey)
	if err := c.http.GetJSON(ctx, u, nil, &resp); err != nil {
		return nil, fmt.Errorf("finnhub candles: %w", err)
	}
	if resp.Status != "ok" || len(resp.Times) == 0 {
		return nil, provider.ErrNoData
	}

	candles := make([]models.Candle, 0, len(resp.Times))
	for i := range resp.Times {
		if i >= len(resp.Close) || i >= len(resp.Open) || i >= len(resp.High) || i >= len(resp.Low) {
			break
		}
		candle := models.Candle{
			Timestamp: time.Unix(resp.Times[i], 0).UTC(),
			Open:      resp.Open[i],
			High:      resp.High[i],
			Low:       resp.Low[i],
			Close:     resp.Close[i],
		}
		if i < len(resp.Volume) {
			candle.Volume = resp.Volume[i]
		}
		candles = append(candles, candle)
	}
	return candles, nil
}
