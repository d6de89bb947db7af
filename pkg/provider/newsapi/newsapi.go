// Package newsapi adapts the NewsAPI.org everything endpoint as a
// general-press news source.
package newsapi

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

const defaultBaseURL = "https://newsapi.org/v2"

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

func (c *Client) Name() string { return "NewsAPI" }

type article struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"publishedAt"`
	Content     string    `json:"content"`
}

type everythingResponse struct {
	Status   string    `json:"status"`
	Articles []article `json:"articles"`
}

func (c *Client) FetchNews(ctx context.Context, symbol string, opts provider.NewsOptions) ([]models.Article, error) {
	if c.apiKey == "" {
		return nil, provider.ErrUnavailable
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	var resp everythingResponse
	u := fmt.Sprintf("%s/everything?q=%s&language=en&sortBy=publishedAt&pageSize=%d",
		c.baseURL, url.QueryEscape(symbol), limit)
	// NewsAPI takes the key as a header, not a query parameter
	if err := c.http.GetJSON(ctx, u, map[string]string{"X-Api-Key": c.apiKey}, &resp); err != nil {
		return nil, fmt.Errorf("newsapi: %w", err)
	}
	if resp.Status != "ok" {
		return nil, fmt.Errorf("newsapi: status %q", resp.Status)
	}

	articles := make([]models.Article, 0, len(resp.Articles))
	for _, item := range resp.Articles {
		if item.Title == "" {
			continue
		}
		articles = append(articles, models.Article{
			Headline:    item.Title,
			Summary:     item.Description,
			Source:      item.Source.Name,
			SourceTier:  models.TierForSource(item.Source.Name),
			URL:         item.URL,
			PublishedAt: item.PublishedAt.UTC(),
			Sentiment:   sentiment.Classify(item.Title + " " + item.Description),
			RawContent:  item.Content,
		})
	}
	return articles, nil
}
