// Package aggregator is the engine facade: one Analyze call fans out to every
// configured provider, reconciles the partial results and returns the unified
// Analysis record.
package aggregator

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Vijfie/marketlens/pkg/config"
	"github.com/Vijfie/marketlens/pkg/earnings"
	"github.com/Vijfie/marketlens/pkg/fanout"
	"github.com/Vijfie/marketlens/pkg/fundamentals"
	"github.com/Vijfie/marketlens/pkg/httpx"
	"github.com/Vijfie/marketlens/pkg/logger"
	"github.com/Vijfie/marketlens/pkg/metrics"
	"github.com/Vijfie/marketlens/pkg/models"
	"github.com/Vijfie/marketlens/pkg/news"
	"github.com/Vijfie/marketlens/pkg/provider"
	"github.com/Vijfie/marketlens/pkg/provider/alphavantage"
	"github.com/Vijfie/marketlens/pkg/provider/coingecko"
	"github.com/Vijfie/marketlens/pkg/provider/finnhub"
	"github.com/Vijfie/marketlens/pkg/provider/fmp"
	"github.com/Vijfie/marketlens/pkg/provider/newsapi"
	"github.com/Vijfie/marketlens/pkg/redisclient"
	"github.com/Vijfie/marketlens/pkg/sentiment"
	"github.com/Vijfie/marketlens/pkg/validation"
)

// chartDays is the lookback window for the chart series.
const chartDays = 30

// maxInFlight bounds concurrent upstream calls per request.
const maxInFlight = 8

// Options tune a single Analyze call.
type Options struct {
	// MaxArticles overrides the configured article cap when positive.
	MaxArticles int
	// Sources restricts news fetching to the named providers. Empty means
	// all configured providers.
	Sources []string
}

// Service wires the provider adapters behind the analysis pipeline.
type Service struct {
	cfg   *config.Config
	cache *redisclient.Client

	stockQuote  provider.QuoteProvider
	cryptoQuote provider.QuoteProvider
	profiles    []provider.ProfileProvider
	newsFeeds   []provider.NewsProvider
	earnings    earnings.Chain
	stockChart  provider.ChartProvider
	cryptoChart provider.ChartProvider
	synth       fundamentals.Synthesizer
}

// New builds the Service from configuration. cache may be nil; caching is
// then disabled.
func New(cfg *config.Config, cache *redisclient.Client) *Service {
	// ceiling above the longest per-call budget; contexts cap each call
	hc := httpx.New(20 * time.Second)

	fh := finnhub.New(cfg.Providers.FinnhubAPIKey, hc)
	av := alphavantage.New(cfg.Providers.AlphaVantageAPIKey, hc)
	fm := fmp.New(cfg.Providers.FMPAPIKey, hc)
	na := newsapi.New(cfg.Providers.NewsAPIKey, hc)
	cg := coingecko.New(cfg.Providers.CoinGeckoAPIKey, hc)

	return &Service{
		cfg:         cfg,
		cache:       cache,
		stockQuote:  fh,
		cryptoQuote: cg,
		profiles:    []provider.ProfileProvider{fh, fm},
		newsFeeds:   []provider.NewsProvider{fh, av, na},
		earnings: earnings.Chain{
			// order is the fallback contract: fmp, then finnhub, then
			// alphavantage
			Providers: []provider.EarningsProvider{fm, fh, av},
			Timeout:   cfg.Timeouts.Earnings,
			Quarters:  cfg.Limits.HistoricalQuarters,
		},
		stockChart:  fh,
		cryptoChart: cg,
		synth: fundamentals.Synthesizer{
			Crypto:        cg,
			CryptoTimeout: cfg.Timeouts.Crypto,
		},
	}
}

// Analyze runs the full pipeline for one symbol. The primary quote is the
// only fatal dependency: everything else degrades to absence.
func (s *Service) Analyze(ctx context.Context, symbol string, opts Options) (*models.Analysis, error) {
	start := time.Now()

	symbol = validation.SanitizeSymbol(symbol)
	if !validation.ValidSymbol(symbol) {
		return nil, fmt.Errorf("invalid symbol %q", symbol)
	}
	assetType := models.DetectAssetType(symbol)

	cacheKey := s.cacheKey(symbol, opts)
	var cached models.Analysis
	if hit, err := s.cache.GetJSON(ctx, cacheKey, &cached); err != nil {
		logger.Log.Warn("cache lookup failed", zap.String("symbol", symbol), zap.Error(err))
	} else if hit {
		return &cached, nil
	}

	quote, profile, err := s.fetchIdentity(ctx, symbol, assetType)
	if err != nil {
		metrics.AnalysisDuration.WithLabelValues(string(assetType), "error").
			Observe(time.Since(start).Seconds())
		return nil, fmt.Errorf("fetching quote for %s: %w", symbol, err)
	}

	analysis := s.fetchEnrichment(ctx, symbol, assetType, quote, profile, opts)
	metrics.AnalysisDuration.WithLabelValues(string(assetType), "success").
		Observe(time.Since(start).Seconds())

	if err := s.cache.SetJSON(ctx, cacheKey, analysis, s.cfg.CacheTTL); err != nil && err != redisclient.ErrDisabled {
		logger.Log.Warn("cache store failed", zap.String("symbol", symbol), zap.Error(err))
	}
	return analysis, nil
}

// fetchIdentity runs batch 1: the primary quote plus, for non-crypto assets,
// the company profile. Quote failure is fatal; profile failure is not.
func (s *Service) fetchIdentity(ctx context.Context, symbol string, assetType models.AssetType) (models.Quote, *provider.Profile, error) {
	quoteProvider := s.stockQuote
	if assetType == models.AssetCrypto {
		quoteProvider = s.cryptoQuote
	}

	tasks := []fanout.Task{{
		Name:    "quote",
		Timeout: s.cfg.Timeouts.Quote,
		Run: func(ctx context.Context) (interface{}, error) {
			t := time.Now()
			q, err := quoteProvider.FetchQuote(ctx, symbol)
			provider.Observe(quoteProvider.Name(), "quote", t, err)
			return q, err
		},
	}}
	if assetType != models.AssetCrypto {
		tasks = append(tasks, fanout.Task{
			Name:    "profile",
			Timeout: s.cfg.Timeouts.Profile,
			Run: func(ctx context.Context) (interface{}, error) {
				return s.fetchProfile(ctx, symbol)
			},
		})
	}

	settled := fanout.ByName(fanout.Batch(ctx, maxInFlight, tasks))

	qr := settled["quote"]
	if qr.Err != nil {
		return models.Quote{}, nil, qr.Err
	}
	quote := qr.Value.(models.Quote)

	var profile *provider.Profile
	if pr, ok := settled["profile"]; ok {
		if pr.Err != nil {
			s.logDegradation("profile", symbol, pr.Err)
		} else if p, ok := pr.Value.(provider.Profile); ok {
			profile = &p
		}
	}
	return quote, profile, nil
}

// fetchProfile walks the profile providers in order and returns the first
// success.
func (s *Service) fetchProfile(ctx context.Context, symbol string) (interface{}, error) {
	var lastErr error = provider.ErrUnavailable
	for _, p := range s.profiles {
		t := time.Now()
		prof, err := p.FetchProfile(ctx, symbol)
		provider.Observe(p.Name(), "profile", t, err)
		if err == nil {
			return prof, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// fetchEnrichment runs batch 2 and assembles the Analysis. Nothing here can
// fail the request.
func (s *Service) fetchEnrichment(ctx context.Context, symbol string, assetType models.AssetType, quote models.Quote, profile *provider.Profile, opts Options) *models.Analysis {
	feeds := s.selectFeeds(opts.Sources)
	tasks := make([]fanout.Task, 0, len(feeds)+2)
	for _, feed := range feeds {
		feed := feed
		tasks = append(tasks, fanout.Task{
			Name:    "news:" + feed.Name(),
			Timeout: s.cfg.Timeouts.News,
			Run: func(ctx context.Context) (interface{}, error) {
				t := time.Now()
				articles, err := feed.FetchNews(ctx, symbol, provider.NewsOptions{
					Limit: s.cfg.Limits.PerProviderNews,
				})
				provider.Observe(feed.Name(), "news", t, err)
				return articles, err
			},
		})
	}

	chart := s.stockChart
	if assetType == models.AssetCrypto {
		chart = s.cryptoChart
	}
	tasks = append(tasks, fanout.Task{
		Name:    "chart",
		Timeout: s.cfg.Timeouts.Chart,
		Run: func(ctx context.Context) (interface{}, error) {
			t := time.Now()
			candles, err := chart.FetchChart(ctx, symbol, chartDays)
			provider.Observe(chart.Name(), "chart", t, err)
			return candles, err
		},
	})
	tasks = append(tasks, fanout.Task{
		Name: "earnings",
		// the chain budgets each provider itself
		Run: func(ctx context.Context) (interface{}, error) {
			return s.earnings.Fetch(ctx, symbol), nil
		},
	})
	if assetType == models.AssetCrypto {
		tasks = append(tasks, fanout.Task{
			Name: "fundamentals",
			// the synthesizer budgets the metrics call itself and never fails
			Run: func(ctx context.Context) (interface{}, error) {
				return s.synth.ForCrypto(ctx, symbol, quote), nil
			},
		})
	}

	settled := fanout.ByName(fanout.Batch(ctx, maxInFlight, tasks))

	var lists [][]models.Article
	for _, feed := range feeds {
		r := settled["news:"+feed.Name()]
		if r.Err != nil {
			s.logDegradation("news:"+feed.Name(), symbol, r.Err)
			continue
		}
		if articles, ok := r.Value.([]models.Article); ok {
			lists = append(lists, articles)
		}
	}
	maxArticles := s.cfg.Limits.MaxArticles
	if opts.MaxArticles > 0 && opts.MaxArticles < maxArticles {
		maxArticles = opts.MaxArticles
	}
	articles := news.Reconcile(symbol, lists, news.Options{
		MaxArticles:     maxArticles,
		DedupePrefixLen: s.cfg.Limits.DedupePrefixLen,
	})

	var candles []models.Candle
	if r := settled["chart"]; r.Err != nil {
		s.logDegradation("chart", symbol, r.Err)
	} else if c, ok := r.Value.([]models.Candle); ok {
		candles = c
	}

	earn, ok := settled["earnings"].Value.(models.Earnings)
	if !ok {
		earn = earnings.Estimate(symbol, s.cfg.Limits.HistoricalQuarters)
	}

	var funds models.Fundamentals
	if assetType == models.AssetCrypto {
		if f, ok := settled["fundamentals"].Value.(models.Fundamentals); ok {
			funds = f
		} else {
			funds = s.synth.ForCrypto(ctx, symbol, quote)
		}
	} else {
		funds = s.synth.ForStock(assetType, profile, quote)
	}

	return &models.Analysis{
		Symbol:       symbol,
		AssetType:    assetType,
		Quote:        quote,
		Fundamentals: funds,
		News:         articles,
		Sentiment:    sentiment.Aggregate(articles),
		Earnings:     earn,
		Chart:        candles,
		Timestamp:    time.Now().UTC(),
	}
}

// News serves the news-only endpoint: fan out to the news providers and
// aggregate sentiment, without the quote gate.
func (s *Service) News(ctx context.Context, symbol string, opts Options) ([]models.Article, models.SentimentSummary, error) {
	symbol = validation.SanitizeSymbol(symbol)
	if !validation.ValidSymbol(symbol) {
		return nil, models.SentimentSummary{}, fmt.Errorf("invalid symbol %q", symbol)
	}

	feeds := s.selectFeeds(opts.Sources)
	tasks := make([]fanout.Task, 0, len(feeds))
	for _, feed := range feeds {
		feed := feed
		tasks = append(tasks, fanout.Task{
			Name:    feed.Name(),
			Timeout: s.cfg.Timeouts.News,
			Run: func(ctx context.Context) (interface{}, error) {
				t := time.Now()
				articles, err := feed.FetchNews(ctx, symbol, provider.NewsOptions{
					Limit: s.cfg.Limits.PerProviderNews,
				})
				provider.Observe(feed.Name(), "news", t, err)
				return articles, err
			},
		})
	}

	var lists [][]models.Article
	for _, r := range fanout.Batch(ctx, maxInFlight, tasks) {
		if r.Err != nil {
			s.logDegradation("news:"+r.Name, symbol, r.Err)
			continue
		}
		if articles, ok := r.Value.([]models.Article); ok {
			lists = append(lists, articles)
		}
	}

	maxArticles := s.cfg.Limits.MaxArticles
	if opts.MaxArticles > 0 && opts.MaxArticles < maxArticles {
		maxArticles = opts.MaxArticles
	}
	articles := news.Reconcile(symbol, lists, news.Options{
		MaxArticles:     maxArticles,
		DedupePrefixLen: s.cfg.Limits.DedupePrefixLen,
	})
	if len(articles) == 0 {
		articles = fallbackNews(symbol)
	}
	return articles, sentiment.Aggregate(articles), nil
}

// fallbackNews is the clearly-labeled placeholder served when every news
// provider came up empty.
func fallbackNews(symbol string) []models.Article {
	return []models.Article{{
		Headline:    fmt.Sprintf("No recent news available for %s", symbol),
		Summary:     "All configured news providers returned no articles.",
		Source:      "mock-fallback",
		SourceTier:  models.Tier3,
		PublishedAt: time.Now().UTC(),
		Sentiment:   sentiment.Neutral,
		Impact:      "low",
		Category:    "general",
	}}
}

// selectFeeds applies the source filter; unknown names are ignored.
func (s *Service) selectFeeds(sources []string) []provider.NewsProvider {
	if len(sources) == 0 {
		return s.newsFeeds
	}
	want := make(map[string]bool, len(sources))
	for _, src := range sources {
		want[strings.ToLower(strings.TrimSpace(src))] = true
	}
	var feeds []provider.NewsProvider
	for _, f := range s.newsFeeds {
		if want[f.Name()] {
			feeds = append(feeds, f)
		}
	}
	return feeds
}

func (s *Service) cacheKey(symbol string, opts Options) string {
	if len(opts.Sources) == 0 && opts.MaxArticles == 0 {
		return "analysis:" + symbol
	}
	srcs := append([]string(nil), opts.Sources...)
	sort.Strings(srcs)
	return fmt.Sprintf("analysis:%s:%d:%s", symbol, opts.MaxArticles, strings.Join(srcs, ","))
}

// logDegradation distinguishes unconfigured providers from genuine failures.
func (s *Service) logDegradation(task, symbol string, err error) {
	if err == provider.ErrUnavailable {
		logger.Log.Info("provider not configured",
			zap.String("task", task), zap.String("symbol", symbol))
		return
	}
	logger.Log.Warn("provider degraded",
		zap.String("task", task), zap.String("symbol", symbol), zap.Error(err))
}
