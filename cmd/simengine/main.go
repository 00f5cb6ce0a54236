package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/creatorshield/simengine/internal/config"
	dbRedis "github.com/creatorshield/simengine/internal/db/redis"
	"github.com/creatorshield/simengine/internal/domain"
	logpkg "github.com/creatorshield/simengine/internal/logger"
	"github.com/creatorshield/simengine/internal/metrics"
	"github.com/creatorshield/simengine/internal/repository/embcache"
	chiTransport "github.com/creatorshield/simengine/internal/transport/chi"
	geminiBackend "github.com/creatorshield/simengine/internal/transport/gemini"
	openaiBackend "github.com/creatorshield/simengine/internal/transport/openai"
	"github.com/creatorshield/simengine/internal/usecase/audiofp"
	"github.com/creatorshield/simengine/internal/usecase/framesample"
	"github.com/creatorshield/simengine/internal/usecase/fusion"
	"github.com/creatorshield/simengine/internal/usecase/perceptual"
	"github.com/creatorshield/simengine/internal/usecase/scan"
	"github.com/creatorshield/simengine/internal/usecase/semantic"
	"github.com/creatorshield/simengine/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting simengine",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("backend", cfg.Backend.Provider),
	)

	metrics.RegisterScoringMetrics()

	ctx := context.Background()

	// Build the backend chain — composition root.
	backend, err := buildBackend(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to create backend", zap.Error(err))
	}

	// Health checks always hit the raw backend, not the cache decorator.
	var health domain.HealthChecker
	if hc, ok := backend.(domain.HealthChecker); ok {
		health = hc
	}

	if cfg.Cache.Enabled {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer store.Close()

		if err := store.WaitForReady(ctx, time.Duration(cfg.Cache.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Cache store not ready", zap.Error(err))
		}
		logger.Info("Embedding cache enabled", zap.Strings("addrs", cfg.Cache.Addrs))

		backend = embcache.New(
			backend, store, cfg.Cache.KeyPrefix,
			time.Duration(cfg.Cache.TTLSec)*time.Second,
			metrics.EmbeddingCacheTotal, logger,
		)
	}

	// Comparators and the fusion engine.
	weights := fusion.DefaultWeights()
	if cfg.Scoring.Weights != nil {
		weights = *cfg.Scoring.Weights
	}
	engine, err := fusion.New(weights)
	if err != nil {
		logger.Fatal("Invalid fusion weights", zap.Error(err))
	}

	semanticSvc := semantic.New(
		backend, cfg.Backend.Provider,
		time.Duration(cfg.Backend.TimeoutSec)*time.Second, logger,
	)
	scanSvc := scan.New(
		perceptual.New(),
		audiofp.New(audiofp.Config{
			DurationRatioLimit: cfg.Scoring.DurationRatioLimit,
			MismatchCap:        cfg.Scoring.AudioMismatchCap,
		}),
		framesample.New(cfg.Scoring.FrameToleranceSec),
		semanticSvc,
		engine,
		logger,
	)

	defaultOpts := scan.DefaultOptions()
	defaultOpts.Threshold = cfg.Scoring.Threshold
	defaultOpts.Workers = cfg.Scoring.Workers

	server := chiTransport.NewServer(scanSvc, health, defaultOpts, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(requestLogMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	r.Mount("/", server.Routes())
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", zap.Error(err))
	}
	logger.Info("Server stopped")
}

// buildBackend creates the configured embedding/classification backend.
// API keys come from config at startup; comparison logic never reads the
// environment.
func buildBackend(ctx context.Context, cfg config.Config, logger *zap.Logger) (domain.Backend, error) {
	switch cfg.Backend.Provider {
	case "gemini":
		b, err := geminiBackend.NewBackend(ctx, &geminiBackend.Config{
			APIKey:        cfg.Backend.APIKey,
			EmbedModel:    cfg.Backend.EmbedModel,
			ClassifyModel: cfg.Backend.ClassifyModel,
			Dimensions:    cfg.Backend.Dimensions,
			Logger:        logger,
		})
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return openaiBackend.NewBackend(&openaiBackend.Config{
			APIKey:        cfg.Backend.APIKey,
			BaseURL:       cfg.Backend.BaseURL,
			EmbedModel:    cfg.Backend.EmbedModel,
			ClassifyModel: cfg.Backend.ClassifyModel,
			Dimensions:    cfg.Backend.Dimensions,
			Logger:        logger,
		}), nil
	}
}

func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{"error": "internal error"})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// requestLogMiddleware emits a canonical log line per request and
// propagates X-Request-ID.
func requestLogMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
			)
		})
	}
}
