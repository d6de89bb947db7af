package aggregator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Vijfie/marketlens/pkg/config"
	"github.com/Vijfie/marketlens/pkg/earnings"
	"github.com/Vijfie/marketlens/pkg/fundamentals"
	"github.com/Vijfie/marketlens/pkg/models"
	"github.com/Vijfie/marketlens/pkg/provider"
)

type fakeQuote struct {
	name string
	q    models.Quote
	err  error
}

func (f fakeQuote) Name() string { return f.name }
func (f fakeQuote) FetchQuote(ctx context.Context, symbol string) (models.Quote, error) {
	return f.q, f.err
}

type fakeProfile struct {
	name string
	p    provider.Profile
	err  error
}

func (f fakeProfile) Name() string { return f.name }
func (f fakeProfile) FetchProfile(ctx context.Context, symbol string) (provider.Profile, error) {
	return f.p, f.err
}

type fakeNews struct {
	name     string
	articles []models.Article
	err      error
}

func (f fakeNews) Name() string { return f.name }
func (f fakeNews) FetchNews(ctx context.Context, symbol string, opts provider.NewsOptions) ([]models.Article, error) {
	return f.articles, f.err
}

type fakeEarnings struct {
	name string
	e    models.Earnings
	err  error
}

func (f fakeEarnings) Name() string { return f.name }
func (f fakeEarnings) FetchEarnings(ctx context.Context, symbol string, quarters int) (models.Earnings, error) {
	return f.e, f.err
}

type fakeChart struct {
	name    string
	candles []models.Candle
	err     error
}

func (f fakeChart) Name() string { return f.name }
func (f fakeChart) FetchChart(ctx context.Context, symbol string, days int) ([]models.Candle, error) {
	return f.candles, f.err
}

func testConfig() *config.Config {
	return &config.Config{
		Limits: config.Limits{
			MaxArticles:        25,
			PerProviderNews:    20,
			HistoricalQuarters: 4,
			DedupePrefixLen:    50,
		},
		Timeouts: config.Timeouts{
			Quote:    time.Second,
			Profile:  time.Second,
			News:     time.Second,
			Earnings: time.Second,
			Crypto:   time.Second,
			Chart:    time.Second,
		},
		CacheTTL: 30 * time.Second,
	}
}

func article(headline, source string, tier models.SourceTier) models.Article {
	return models.Article{
		Headline:    headline,
		Source:      source,
		SourceTier:  tier,
		PublishedAt: time.Now(),
	}
}

func testService(cfg *config.Config) *Service {
	good := models.Quote{Symbol: "AAPL", Price: 190, PreviousClose: 185, Source: "finnhub"}
	good.Derive()

	return &Service{
		cfg:        cfg,
		stockQuote: fakeQuote{name: "finnhub", q: good},
		cryptoQuote: fakeQuote{name: "coingecko", q: models.Quote{
			Symbol: "BTC", Price: 64000, PreviousClose: 63000, Source: "coingecko",
		}},
		profiles: []provider.ProfileProvider{fakeProfile{name: "finnhub", p: provider.Profile{
			Name: "Apple Inc", Sector: "Technology", MarketCap: 3e12, Source: "finnhub",
		}}},
		newsFeeds: []provider.NewsProvider{
			fakeNews{name: "finnhub", articles: []models.Article{
				article("AAPL earnings beat expectations", "Reuters", models.Tier1),
			}},
			fakeNews{name: "newsapi", articles: []models.Article{
				article("Apple announces partnership", "CNBC", models.Tier2),
			}},
		},
		earnings: earnings.Chain{
			Providers: []provider.EarningsProvider{fakeEarnings{name: "fmp", e: models.Earnings{
				Success: true, Source: "fmp",
			}}},
			Timeout:  time.Second,
			Quarters: 4,
		},
		stockChart:  fakeChart{name: "finnhub", candles: []models.Candle{{Close: 190}}},
		cryptoChart: fakeChart{name: "coingecko", err: provider.ErrNoData},
		synth:       fundamentals.Synthesizer{},
	}
}

func TestAnalyze_Success(t *testing.T) {
	svc := testService(testConfig())

	got, err := svc.Analyze(context.Background(), "aapl", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Symbol != "AAPL" {
		t.Errorf("symbol not sanitized: %q", got.Symbol)
	}
	if got.AssetType != models.AssetStock {
		t.Errorf("asset type = %q, want stock", got.AssetType)
	}
	if got.Quote.Price != 190 {
		t.Errorf("quote price = %v", got.Quote.Price)
	}
	if got.Fundamentals.Stock == nil || got.Fundamentals.Stock.Sector != "Technology" {
		t.Errorf("fundamentals not built from profile: %+v", got.Fundamentals)
	}
	if len(got.News) != 2 {
		t.Fatalf("got %d articles, want 2", len(got.News))
	}
	if !got.Earnings.Success || got.Earnings.Source != "fmp" {
		t.Errorf("earnings = %+v", got.Earnings)
	}
	if len(got.Chart) != 1 {
		t.Errorf("chart candles = %d, want 1", len(got.Chart))
	}
}

func TestAnalyze_QuoteFailureIsFatal(t *testing.T) {
	svc := testService(testConfig())
	svc.stockQuote = fakeQuote{name: "finnhub", err: errors.New("upstream 503")}

	_, err := svc.Analyze(context.Background(), "AAPL", Options{})
	if err == nil {
		t.Fatal("expected error when primary quote fails")
	}
	if !strings.Contains(err.Error(), "AAPL") {
		t.Errorf("error should name the symbol: %v", err)
	}
	if !strings.Contains(err.Error(), "upstream 503") {
		t.Errorf("error should name the cause: %v", err)
	}
}

func TestAnalyze_DegradedAuxiliariesStillSucceed(t *testing.T) {
	svc := testService(testConfig())
	svc.profiles = []provider.ProfileProvider{fakeProfile{name: "finnhub", err: errors.New("500")}}
	svc.newsFeeds = []provider.NewsProvider{fakeNews{name: "finnhub", err: errors.New("timeout")}}
	svc.stockChart = fakeChart{name: "finnhub", err: provider.ErrNoData}
	svc.earnings = earnings.Chain{
		Providers: []provider.EarningsProvider{fakeEarnings{name: "fmp", err: errors.New("500")}},
		Timeout:   time.Second,
		Quarters:  4,
	}

	got, err := svc.Analyze(context.Background(), "AAPL", Options{})
	if err != nil {
		t.Fatalf("auxiliary failures must not fail the request: %v", err)
	}
	if len(got.News) != 0 {
		t.Errorf("expected empty news, got %d", len(got.News))
	}
	if !got.Earnings.IsEstimated() {
		t.Errorf("expected estimated earnings, got source %q", got.Earnings.Source)
	}
	if got.Fundamentals.Stock == nil || !got.Fundamentals.Estimated {
		t.Errorf("expected estimated stock fundamentals: %+v", got.Fundamentals)
	}
	if got.Sentiment.Label != "neutral" || got.Sentiment.Score != 0 {
		t.Errorf("empty news should aggregate neutral: %+v", got.Sentiment)
	}
}

func TestAnalyze_CryptoUsesCryptoQuote(t *testing.T) {
	svc := testService(testConfig())

	got, err := svc.Analyze(context.Background(), "BTC", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.AssetType != models.AssetCrypto {
		t.Fatalf("asset type = %q, want crypto", got.AssetType)
	}
	if got.Quote.Source != "coingecko" {
		t.Errorf("crypto quote should come from coingecko, got %q", got.Quote.Source)
	}
	if got.Fundamentals.Crypto == nil {
		t.Errorf("expected crypto fundamentals variant: %+v", got.Fundamentals)
	}
}

type slowCryptoMetrics struct {
	delay time.Duration
	m     provider.CryptoMetrics
}

func (s slowCryptoMetrics) Name() string { return "coingecko" }
func (s slowCryptoMetrics) FetchCryptoMetrics(ctx context.Context, symbol string) (provider.CryptoMetrics, error) {
	time.Sleep(s.delay)
	return s.m, nil
}

type slowChart struct {
	delay time.Duration
}

func (s slowChart) Name() string { return "coingecko" }
func (s slowChart) FetchChart(ctx context.Context, symbol string, days int) ([]models.Candle, error) {
	time.Sleep(s.delay)
	return []models.Candle{{Close: 64000}}, nil
}

func TestAnalyze_CryptoMetricsRunConcurrently(t *testing.T) {
	const delay = 120 * time.Millisecond
	svc := testService(testConfig())
	svc.cryptoChart = slowChart{delay: delay}
	svc.synth = fundamentals.Synthesizer{
		Crypto: slowCryptoMetrics{delay: delay, m: provider.CryptoMetrics{
			CirculatingSupply: 19_700_000, Source: "coingecko",
		}},
		CryptoTimeout: time.Second,
	}

	start := time.Now()
	got, err := svc.Analyze(context.Background(), "BTC", Options{})
	elapsed := time.Since(start)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Fundamentals.Crypto == nil || got.Fundamentals.Crypto.CirculatingSupply != 19_700_000 {
		t.Errorf("metrics did not flow through the batch: %+v", got.Fundamentals)
	}
	if len(got.Chart) != 1 {
		t.Errorf("chart candles = %d, want 1", len(got.Chart))
	}
	// serial execution would take at least 2×delay
	if elapsed >= 2*delay {
		t.Errorf("metrics and chart ran serially: elapsed %v", elapsed)
	}
}

func TestAnalyze_InvalidSymbol(t *testing.T) {
	svc := testService(testConfig())

	if _, err := svc.Analyze(context.Background(), "", Options{}); err == nil {
		t.Error("empty symbol should be rejected")
	}
	if _, err := svc.Analyze(context.Background(), "not a symbol!!", Options{}); err == nil {
		t.Error("malformed symbol should be rejected")
	}
}

func TestAnalyze_ArticleLimitOverride(t *testing.T) {
	svc := testService(testConfig())

	got, err := svc.Analyze(context.Background(), "AAPL", Options{MaxArticles: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.News) != 1 {
		t.Errorf("got %d articles, want 1 after override", len(got.News))
	}
}

func TestAnalyze_SourceFilter(t *testing.T) {
	svc := testService(testConfig())

	got, err := svc.Analyze(context.Background(), "AAPL", Options{Sources: []string{"newsapi"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.News) != 1 || got.News[0].Source != "CNBC" {
		t.Errorf("source filter not applied: %+v", got.News)
	}
}

func TestNews_FallbackWhenEmpty(t *testing.T) {
	svc := testService(testConfig())
	svc.newsFeeds = []provider.NewsProvider{
		fakeNews{name: "finnhub", err: provider.ErrUnavailable},
		fakeNews{name: "newsapi", err: errors.New("timeout")},
	}

	articles, summary, err := svc.News(context.Background(), "AAPL", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(articles) != 1 || articles[0].Source != "mock-fallback" {
		t.Fatalf("expected single mock-fallback article, got %+v", articles)
	}
	if summary.Label != "neutral" {
		t.Errorf("fallback sentiment label = %q, want neutral", summary.Label)
	}
}

func TestCacheKey(t *testing.T) {
	svc := testService(testConfig())

	if got := svc.cacheKey("AAPL", Options{}); got != "analysis:AAPL" {
		t.Errorf("default key = %q", got)
	}
	a := svc.cacheKey("AAPL", Options{Sources: []string{"newsapi", "finnhub"}})
	b := svc.cacheKey("AAPL", Options{Sources: []string{"finnhub", "newsapi"}})
	if a != b {
		t.Errorf("source order must not change the key: %q vs %q", a, b)
	}
}
