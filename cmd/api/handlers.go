package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/Vijfie/marketlens/pkg/aggregator"
	"github.com/Vijfie/marketlens/pkg/config"
	"github.com/Vijfie/marketlens/pkg/logger"
	"github.com/Vijfie/marketlens/pkg/models"
	"github.com/Vijfie/marketlens/pkg/redisclient"
	"github.com/Vijfie/marketlens/pkg/validation"
)

// analysisTimeout budgets the whole pipeline for one request.
const analysisTimeout = 30 * time.Second

// Analyzer is the aggregation surface the handlers depend on.
type Analyzer interface {
	Analyze(ctx context.Context, symbol string, opts aggregator.Options) (*models.Analysis, error)
	News(ctx context.Context, symbol string, opts aggregator.Options) ([]models.Article, models.SentimentSummary, error)
}

// Response is the standard API envelope.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Server holds the handler dependencies.
type Server struct {
	cfg   *config.Config
	svc   Analyzer
	cache *redisclient.Client
}

func NewServer(cfg *config.Config, svc Analyzer, cache *redisclient.Client) *Server {
	return &Server{cfg: cfg, svc: svc, cache: cache}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Log.Error("JSON encoding error", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, Response{Success: false, Error: message})
}

// analysisHandler serves GET /api/v1/analysis/{symbol}.
func (s *Server) analysisHandler(w http.ResponseWriter, r *http.Request) {
	symbol := validation.SanitizeSymbol(mux.Vars(r)["symbol"])
	if !validation.ValidSymbol(symbol) {
		s.writeError(w, http.StatusBadRequest, "invalid symbol")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), analysisTimeout)
	defer cancel()

	analysis, err := s.svc.Analyze(ctx, symbol, parseOptions(r))
	if err != nil {
		logger.Log.Error("analysis failed",
			zap.String("symbol", symbol), zap.Error(err))
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, Response{Success: true, Data: analysis})
}

// newsResponse is the payload of the news-only endpoint.
type newsResponse struct {
	Symbol    string                  `json:"symbol"`
	News      []models.Article        `json:"news"`
	Sentiment models.SentimentSummary `json:"sentiment"`
}

// newsHandler serves GET /api/v1/analysis/{symbol}/news. It degrades instead
// of failing: with every provider down the payload carries the labeled
// fallback article.
func (s *Server) newsHandler(w http.ResponseWriter, r *http.Request) {
	symbol := validation.SanitizeSymbol(mux.Vars(r)["symbol"])
	if !validation.ValidSymbol(symbol) {
		s.writeError(w, http.StatusBadRequest, "invalid symbol")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), analysisTimeout)
	defer cancel()

	articles, summary, err := s.svc.News(ctx, symbol, parseOptions(r))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, Response{Success: true, Data: newsResponse{
		Symbol:    symbol,
		News:      articles,
		Sentiment: summary,
	}})
}

// healthHandler reports liveness; the cache is probed only when configured.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cache := "disabled"
	if s.cache != nil {
		cache = "ok"
		if err := s.cache.Ping(ctx); err != nil && !errors.Is(err, redisclient.ErrDisabled) {
			cache = "unreachable"
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"cache":  cache,
	})
}

// parseOptions reads ?limit= and ?sources= into aggregator options. Bad
// values are ignored rather than rejected.
func parseOptions(r *http.Request) aggregator.Options {
	var opts aggregator.Options
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			opts.MaxArticles = n
		}
	}
	if raw := r.URL.Query().Get("sources"); raw != "" {
		for _, src := range strings.Split(raw, ",") {
			if src = strings.TrimSpace(src); src != "" {
				opts.Sources = append(opts.Sources, src)
			}
		}
	}
	return opts
}
