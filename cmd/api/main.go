package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/Vijfie/marketlens/pkg/aggregator"
	"github.com/Vijfie/marketlens/pkg/config"
	"github.com/Vijfie/marketlens/pkg/logger"
	"github.com/Vijfie/marketlens/pkg/metrics"
	"github.com/Vijfie/marketlens/pkg/ratelimit"
	"github.com/Vijfie/marketlens/pkg/redisclient"
)

func main() {
	if err := logger.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "logger init: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Log

	log.Info("starting marketlens API server")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	var cache *redisclient.Client
	if cfg.RedisURL != "" {
		cache, err = redisclient.New(cfg.RedisURL)
		if err != nil {
			log.Fatal("invalid REDIS_URL", zap.Error(err))
		}
		defer cache.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := cache.Ping(ctx); err != nil {
			log.Warn("redis unreachable, continuing without cache", zap.Error(err))
			cache = nil
		}
		cancel()
	} else {
		log.Info("REDIS_URL not set, analysis cache disabled")
	}

	svc := aggregator.New(cfg, cache)
	srv := NewServer(cfg, svc, cache)
	limiter := ratelimit.New(cfg.RateLimitPerMinute)

	router := mux.NewRouter()
	router.Use(loggingMiddleware)
	router.Use(corsMiddleware)
	router.Use(metricsMiddleware)

	router.HandleFunc("/health", srv.healthHandler).Methods("GET")
	router.Handle("/metrics", metrics.Handler()).Methods("GET")

	apiRouter := router.PathPrefix("/api/v1").Subrouter()
	apiRouter.Use(limiter.Middleware)
	apiRouter.HandleFunc("/analysis/{symbol}", srv.analysisHandler).Methods("GET")
	apiRouter.HandleFunc("/analysis/{symbol}/news", srv.newsHandler).Methods("GET")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("starting HTTP server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}
