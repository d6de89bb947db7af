// Package alphavantage adapts the Alpha Vantage NEWS_SENTIMENT and EARNINGS
// endpoints. It is the only news source carrying a provider-native sentiment
// score, bucketed at the ±0.1 thresholds.
package alphavantage

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/Vijfie/marketlens/pkg/httpx"
	"github.com/Vijfie/marketlens/pkg/models"
	"github.com/Vijfie/marketlens/pkg/provider"
	"github.com/Vijfie/marketlens/pkg/sentiment"
)

const defaultBaseURL = "https://www.alphavantage.co"

// timePublished is Alpha Vantage's timestamp layout (20260115T133000).
const timePublished = "20060102T150405"

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

func (c *Client) Name() string { return "AlphaVantage" }

func (c *Client) available() error {
	if c.apiKey == "" {
		return provider.ErrUnavailable
	}
	return nil
}

type feedItem struct {
	Title         string   `json:"title"`
	URL           string   `json:"url"`
	TimePublished string   `json:"time_published"`
	Summary       string   `json:"summary"`
	Source        string   `json:"source"`
	Sentiment     *float64 `json:"overall_sentiment_score"`
}

type newsResponse struct {
	Feed []feedItem `json:"feed"`
}

func (c *Client) FetchNews(ctx context.Context, symbol string, opts provider.NewsOptions) ([]models.Article, error) {
	if err := c.available(); err != nil {
		return nil, err
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	var resp newsResponse
	u := fmt.Sprintf("%s/query?function=NEWS_SENTIMENT&tickers=%s&limit=%d&apikey=%s",
		c.baseURL, url.QueryEscape(symbol), limit, c.apiKey)
	if err := c.http.GetJSON(ctx, u, nil, &resp); err != nil {
		return nil, fmt.Errorf("alphavantage news: %w", err)
	}

	articles := make([]models.Article, 0, len(resp.Feed))
	for _, item := range resp.Feed {
		if len(articles) >= limit {
			break
		}
		published, _ := time.Parse(timePublished, item.TimePublished)
		articles = append(articles, models.Article{
			Headline:    item.Title,
			Summary:     item.Summary,
			Source:      item.Source,
			SourceTier:  models.TierForSource(item.Source),
			URL:         item.URL,
			PublishedAt: published.UTC(),
			Sentiment:   c.sentimentFor(item),
		})
	}
	return articles, nil
}

// sentimentFor prefers the provider-native score and falls back to the
// lexical classifier when the score is absent.
func (c *Client) sentimentFor(item feedItem) string {
	if item.Sentiment != nil {
		return sentiment.FromScore(*item.Sentiment)
	}
	return sentiment.Classify(item.Title + " " + item.Summary)
}

type quarterlyEarning struct {
	FiscalDateEnding string `json:"fiscalDateEnding"` // "2026-06-30"
	ReportedEPS      string `json:"reportedEPS"`
}

type earningsResponse struct {
	QuarterlyEarnings []quarterlyEarning `json:"quarterlyEarnings"`
}

func (c *Client) FetchEarnings(ctx context.Context, symbol string, quarters int) (models.Earnings, error) {
	if err := c.available(); err != nil {
		return models.Earnings{}, err
	}
	var resp earningsResponse
	u := fmt.Sprintf("%s/query?function=EARNINGS&symbol=%s&apikey=%s",
		c.baseURL, url.QueryEscape(symbol), c.apiKey)
	if err := c.http.GetJSON(ctx, u, nil, &resp); err != nil {
		return models.Earnings{}, fmt.Errorf("alphavantage earnings: %w", err)
	}
	if len(resp.QuarterlyEarnings) == 0 {
		return models.Earnings{}, provider.ErrNoData
	}

	toQuarter := func(q quarterlyEarning) models.Quarter {
		out := models.Quarter{}
		if t, err := time.Parse("2006-01-02", q.FiscalDateEnding); err == nil {
			out.Period = fmt.Sprintf("Q%d", (int(t.Month())-1)/3+1)
			out.Year = t.Year()
		}
		if eps, err := strconv.ParseFloat(q.ReportedEPS, 64); err == nil {
			out.EPS = &eps
		}
		return out
	}

	latest := toQuarter(resp.QuarterlyEarnings[0])
	e := models.Earnings{
		Success: true,
		Source:  c.Name(),
		Latest:  &latest,
	}
	for _, q := range resp.QuarterlyEarnings[1:] {
		if len(e.Historical) >= quarters {
			break
		}
		e.Historical = append(e.Historical, toQuarter(q))
	}
	return e, nil
}
