package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/terrascribe/llm-api/internal/analytics"
	"github.com/terrascribe/llm-api/internal/config"
	"github.com/terrascribe/llm-api/internal/gateway"
	"github.com/terrascribe/llm-api/internal/identity"
	"github.com/terrascribe/llm-api/internal/llm"
	"github.com/terrascribe/llm-api/internal/platform/logger"
	"github.com/terrascribe/llm-api/internal/platform/otel"
	"github.com/terrascribe/llm-api/internal/server"
	"github.com/terrascribe/llm-api/internal/store"
	"github.com/terrascribe/llm-api/internal/store/cache"
	"github.com/terrascribe/llm-api/internal/store/sqlite"
	"github.com/terrascribe/llm-api/internal/version"
	"github.com/terrascribe/llm-api/pkg/api"
	"go.uber.org/zap"

	// Import providers to trigger init() registration
	_ "github.com/terrascribe/llm-api/internal/llm/anthropic"
	_ "github.com/terrascribe/llm-api/internal/llm/openai"
)

func main() {
	logger.Initialize(logger.DefaultConfig())
	defer logger.Sync()
	log := logger.Get()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}

	go version.CheckForUpdates(log)

	if cfg.Tracing.Enabled {
		shutdown, err := otel.InitTracer("llm-api", log, os.Stdout)
		if err != nil {
			log.Fatal("failed to init tracing", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(ctx)
		}()
	}

	var sessions cache.CacheService = cache.NewNoop()
	if cfg.Redis.Enabled {
		redis, err := cache.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Warn("redis unavailable, session caching disabled", zap.Error(err))
		} else {
			sessions = redis
		}
	}

	verifier := identity.NewClient(
		cfg.Identity.URL,
		cfg.Identity.AnonKey,
		sessions,
		cfg.Identity.CacheTTL,
		log,
	)

	var repo store.Repository
	var ingestor analytics.Ingestor = analytics.Nop{}
	var requests store.RequestRepository
	if cfg.Store.Enabled {
		repo, err = sqlite.NewSQLiteStorage(cfg.Store.DSN)
		if err != nil {
			log.Fatal("failed to open usage store", zap.Error(err))
		}
		defer func() { _ = repo.Close() }()

		requests = repo.Requests()
		ingestor = analytics.NewIngestor(log, repo)
	}

	ingestCtx, stopIngest := context.WithCancel(context.Background())
	defer stopIngest()
	ingestor.Start(ingestCtx)
	defer ingestor.Stop()

	providers := buildProviders(cfg, log)
	if len(providers) == 0 {
		log.Fatal("no provider adapters configured; set OPENAI_API_KEY or ANTHROPIC_API_KEY")
	}

	service := gateway.NewService(log, ingestor, providers...)
	srv := server.New(cfg, log, service, verifier, requests)

	httpServer := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: srv.Handler(),
	}

	go func() {
		log.Info("starting server", zap.String("port", cfg.Server.Port), zap.String("env", cfg.Server.Env))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
}

func buildProviders(cfg *config.Config, log *zap.Logger) []llm.Provider {
	var providers []llm.Provider

	// registration order fixes the aggregated listing order
	if cfg.Providers.AnthropicKey != "" {
		p, err := llm.New(api.ProviderAnthropic, llm.ProviderConfig{
			APIKey:  cfg.Providers.AnthropicKey,
			BaseURL: cfg.Providers.AnthropicBaseURL,
			Config:  map[string]string{"version": cfg.Providers.AnthropicVersion},
		})
		if err != nil {
			log.Error("failed to build anthropic adapter", zap.Error(err))
		} else {
			providers = append(providers, p)
			log.Info("registered provider", zap.String("provider", string(api.ProviderAnthropic)))
		}
	}

	if cfg.Providers.OpenAIKey != "" {
		p, err := llm.New(api.ProviderOpenAI, llm.ProviderConfig{
			APIKey:  cfg.Providers.OpenAIKey,
			BaseURL: cfg.Providers.OpenAIBaseURL,
		})
		if err != nil {
			log.Error("failed to build openai adapter", zap.Error(err))
		} else {
			providers = append(providers, p)
			log.Info("registered provider", zap.String("provider", string(api.ProviderOpenAI)))
		}
	}

	return providers
}
