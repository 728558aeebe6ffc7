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
	"go.uber.org/zap"

	"github.com/campus-cloud/coursedex/internal/config"
	"github.com/campus-cloud/coursedex/internal/db"
	dbRedis "github.com/campus-cloud/coursedex/internal/db/redis"
	"github.com/campus-cloud/coursedex/internal/domain"
	logpkg "github.com/campus-cloud/coursedex/internal/logger"
	"github.com/campus-cloud/coursedex/internal/metrics"
	backuprepo "github.com/campus-cloud/coursedex/internal/repository/backup"
	contentrepo "github.com/campus-cloud/coursedex/internal/repository/content"
	indexrepo "github.com/campus-cloud/coursedex/internal/repository/index"
	chiTransport "github.com/campus-cloud/coursedex/internal/transport/chi"
	openaiChat "github.com/campus-cloud/coursedex/internal/transport/openai"
	assistantuc "github.com/campus-cloud/coursedex/internal/usecase/assistant"
	backupuc "github.com/campus-cloud/coursedex/internal/usecase/backup"
	contentuc "github.com/campus-cloud/coursedex/internal/usecase/content"
	healthuc "github.com/campus-cloud/coursedex/internal/usecase/health"
	searchuc "github.com/campus-cloud/coursedex/internal/usecase/search"
	"github.com/campus-cloud/coursedex/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting coursedex API server",
		zap.String("version", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	// Valkey speaks the Redis protocol; both drivers share the rueidis store.
	var store db.Store
	switch cfg.Database.Driver {
	case "redis", "valkey":
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
	default:
		logger.Fatal("Unknown database driver", zap.String("driver", cfg.Database.Driver))
	}
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register domain metrics explicitly (no init())
	metrics.RegisterOpsMetrics()

	// In-memory entity collections, optionally seeded from a fixture
	idx := indexrepo.New()
	if cfg.Search.SeedPath != "" {
		loaded, err := idx.LoadSeed(ctx, cfg.Search.SeedPath)
		if err != nil {
			logger.Fatal("Failed to load seed data", zap.Error(err))
		}
		logger.Info("Seed data loaded",
			zap.String("path", cfg.Search.SeedPath),
			zap.Int("entities", loaded),
		)
	}

	// Persistent stores
	retention := time.Duration(cfg.Backup.RetentionDays) * 24 * time.Hour
	backupStore := backuprepo.New(store, cfg.Storage.KeyPrefix, retention)
	contentStore := contentrepo.New(store, cfg.Storage.KeyPrefix)

	// Assistant provider — disabled without an API key
	var provider assistantuc.Provider
	var assistantChecker healthuc.AssistantChecker
	if cfg.Assistant.APIKey != "" {
		chat := openaiChat.NewChatProvider(&openaiChat.Config{
			APIKey:      cfg.Assistant.APIKey,
			BaseURL:     cfg.Assistant.BaseURL,
			Model:       cfg.Assistant.Model,
			Temperature: cfg.Assistant.Temperature,
			Provider:    cfg.Assistant.Provider,
			Logger:      logger,
		})
		provider = chat
		assistantChecker = chat
		logger.Info("Assistant provider configured",
			zap.String("provider", cfg.Assistant.Provider),
			zap.String("model", cfg.Assistant.Model),
		)
	} else {
		provider = disabledProvider{}
		logger.Info("Assistant provider disabled (no api key)")
	}

	// Create use case services
	searchSvc := searchuc.New(idx)
	backupSvc := backupuc.New(backupStore, idx, idx)
	assistantSvc := assistantuc.New(provider)
	contentSvc := contentuc.New(contentStore, idx, cfg.Content.MaxUploadBytes)
	healthSvc := healthuc.New(store, assistantChecker)

	// Create chi server
	server := chiTransport.NewServer(
		searchSvc, idx, backupSvc, assistantSvc, contentSvc, healthSvc, logger,
	).WithSuggestionLimit(cfg.Search.SuggestionLimit)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

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
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// disabledProvider rejects chat requests when no provider is configured.
type disabledProvider struct{}

func (disabledProvider) Chat(_ context.Context, _ []assistantuc.Message) (assistantuc.Reply, error) {
	return assistantuc.Reply{}, fmt.Errorf("assistant provider is not configured: %w",
		domain.ErrAssistantProviderError)
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
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
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
