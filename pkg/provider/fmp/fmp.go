// Package fmp adapts Financial Modeling Prep: company profiles and quarterly
// income statements. It is the preferred earnings source because it is the
// only one reporting revenue and net income alongside EPS.
package fmp

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/Vijfie/marketlens/pkg/httpx"
	"github.com/Vijfie/marketlens/pkg/models"
	"github.com/Vijfie/marketlens/pkg/provider"
)

const defaultBaseURL = "https://financialmodelingprep.com/api/v3"

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

func (c *Client) Name() string { return "FMP" }

func (c *Client) available() error {
	if c.apiKey == "" {
		return provider.ErrUnavailable
	}
	return nil
}

type profileEntry struct {
	CompanyName   string  `json:"companyName"`
	Sector        string  `json:"sector"`
	Industry      string  `json:"industry"`
	Exchange      string  `json:"exchangeShortName"`
	MarketCap     float64 `json:"mktCap"`
	Beta          float64 `json:"beta"`
	LastDiv       float64 `json:"lastDiv"`
	Price         float64 `json:"price"`
	PriceRange    string  `json:"range"` // "124.17-199.62"
	SharesOutCalc float64 `json:"volAvg"`
}

func (c *Client) FetchProfile(ctx context.Context, symbol string) (provider.Profile, error) {
	if err := c.available(); err != nil {
		return provider.Profile{}, err
	}
	var resp []profileEntry
	u := fmt.Sprintf("%s/profile/%s?apikey=%s", c.baseURL, url.PathEscape(symbol), c.apiKey)
	if err := c.http.GetJSON(ctx, u, nil, &resp); err != nil {
		return provider.Profile{}, fmt.Errorf("fmp profile: %w", err)
	}
	if len(resp) == 0 {
		return provider.Profile{}, provider.ErrNoData
	}
	e := resp[0]

	p := provider.Profile{
		Name:      e.CompanyName,
		Sector:    e.Sector,
		Industry:  e.Industry,
		Exchange:  e.Exchange,
		MarketCap: e.MarketCap,
		Source:    c.Name(),
	}
	if e.Beta != 0 {
		beta := e.Beta
		p.Beta = &beta
	}
	if e.LastDiv > 0 && e.Price > 0 {
		yield := e.LastDiv / e.Price * 100
		p.DividendYield = &yield
	}
	if low, high, ok := parseRange(e.PriceRange); ok {
		p.FiftyTwoWeekLow = &low
		p.FiftyTwoWeekHigh = &high
	}
	return p, nil
}

func parseRange(s string) (low, high float64, ok bool) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	if _, err := fmt.Sscanf(parts[0], "%f", &low); err != nil {
		return 0, 0, false
	}
	if _, err := fmt.Sscanf(parts[1], "%f", &high); err != nil {
		return 0, 0, false
	}
	return low, high, true
}

type incomeStatement struct {
	Period       string  `json:"period"`       // "Q2"
	CalendarYear string  `json:"calendarYear"` // "2026"
	Revenue      float64 `json:"revenue"`
	NetIncome    float64 `json:"netIncome"`
	EPS          float64 `json:"eps"`
}

func (c *Client) FetchEarnings(ctx context.Context, symbol string, quarters int) (models.Earnings, error) {
	if err := c.available(); err != nil {
		return models.Earnings{}, err
	}
	var resp []incomeStatement
	u := fmt.Sprintf("%s/income-statement/%s?period=quarter&limit=%d&apikey=%s",
		c.baseURL, url.PathEscape(symbol), quarters+2, c.apiKey)
	if err := c.http.GetJSON(ctx, u, nil, &resp); err != nil {
		return models.Earnings{}, fmt.Errorf("fmp earnings: %w", err)
	}
	if len(resp) == 0 {
		return models.Earnings{}, provider.ErrNoData
	}

	toQuarter := func(s incomeStatement) models.Quarter {
		q := models.Quarter{Period: s.Period}
		fmt.Sscanf(s.CalendarYear, "%d", &q.Year)
		if s.Revenue != 0 {
			rev := s.Revenue
			q.Revenue = &rev
		}
		if s.NetIncome != 0 {
			ni := s.NetIncome
			q.NetIncome = &ni
		}
		if s.EPS != 0 {
			eps := s.EPS
			q.EPS = &eps
		}
		return q
	}

	latest := toQuarter(resp[0])
	// growth-yoy needs the same quarter one year back
	for _, s := range resp[1:] {
		prev := toQuarter(s)
		if prev.Period == latest.Period && prev.Year == latest.Year-1 &&
			prev.Revenue != nil && latest.Revenue != nil && *prev.Revenue != 0 {
			growth := (*latest.Revenue - *prev.Revenue) / *prev.Revenue * 100
			latest.GrowthYoY = &growth
			break
		}
	}

	e := models.Earnings{
		Success: true,
		Source:  c.Name(),
		Latest:  &latest,
	}
	for _, s := range resp[1:] {
		if len(e.Historical) >= quarters {
			break
		}
		e.Historical = append(e.Historical, toQuarter(s))
	}
	return e, nil
}
