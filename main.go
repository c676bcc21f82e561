package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/wizel-ai/insight-engine/pkg/adapters/clickhouse"
	"github.com/wizel-ai/insight-engine/pkg/analytics"
	"github.com/wizel-ai/insight-engine/pkg/analyzer"
	"github.com/wizel-ai/insight-engine/pkg/config"
	"github.com/wizel-ai/insight-engine/pkg/handlers"
	"github.com/wizel-ai/insight-engine/pkg/llm"
	"github.com/wizel-ai/insight-engine/pkg/logging"
	"github.com/wizel-ai/insight-engine/pkg/sanitizer"
	"github.com/wizel-ai/insight-engine/pkg/stores"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	// Optional .env for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("version", cfg.Version),
		zap.String("clickhouse", logging.SanitizeConnectionString(
			cfg.ClickHouse.Username+"@"+cfg.ClickHouse.Host+"/"+cfg.ClickHouse.Database)),
		zap.String("premium_model", cfg.LLM.PremiumModel),
		zap.String("large_context_model", cfg.LLM.LargeContextModel),
		zap.String("minimal_model", cfg.LLM.MinimalModel))

	adapter, err := clickhouse.NewAdapter(&clickhouse.Config{
		Host:           cfg.ClickHouse.Host,
		Port:           cfg.ClickHouse.Port,
		Database:       cfg.ClickHouse.Database,
		Username:       cfg.ClickHouse.Username,
		Password:       cfg.ClickHouse.Password,
		RequestTimeout: cfg.ClickHouse.RequestTimeout(),
		MaxRowsToRead:  cfg.ClickHouse.MaxRowsToRead,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to connect to ClickHouse", zap.Error(err))
	}
	defer func() { _ = adapter.Close() }()

	pingCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := adapter.Ping(pingCtx); err != nil {
		logger.Warn("ClickHouse not reachable at startup", zap.Error(err))
	}
	cancel()

	var aggregator, anthropic llm.Completer
	if cfg.LLM.APIKey != "" {
		client, err := llm.NewClient(&llm.Config{
			Endpoint: cfg.LLM.Endpoint,
			APIKey:   cfg.LLM.APIKey,
		}, logger)
		if err != nil {
			logger.Fatal("Failed to create LLM client", zap.Error(err))
		}
		aggregator = client
	}
	if cfg.LLM.AnthropicAPIKey != "" {
		client, err := llm.NewAnthropicClient(cfg.LLM.AnthropicAPIKey, logger)
		if err != nil {
			logger.Fatal("Failed to create Anthropic client", zap.Error(err))
		}
		anthropic = client
	}

	router := llm.NewRouter(llm.ModelTable{
		Premium:      cfg.LLM.PremiumModel,
		LargeContext: cfg.LLM.LargeContextModel,
		Minimal:      cfg.LLM.MinimalModel,
	}, logger)
	controller := llm.NewFallbackController(llm.NewMux(aggregator, anthropic), router, cfg.LLM.RequestTimeout(), logger)

	resolver := stores.NewResolver(logger)
	builder := analytics.NewBuilder(adapter, logger)
	perfAnalyzer := analyzer.NewAnalyzer(resolver, builder, controller, cfg.LLM.PremiumModel, logger)
	directory := stores.NewAnalyticsDirectory(adapter, logger)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewChatHandler(directory, sanitizer.New(logger), perfAnalyzer, router, controller, logger).RegisterRoutes(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("starting insight-engine", zap.String("addr", addr), zap.String("version", cfg.Version))

	// Chat responses can legitimately take two full provider timeouts, so the
	// server only bounds the request header read; per-attempt deadlines bound
	// the rest.
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := server.ListenAndServe(); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
