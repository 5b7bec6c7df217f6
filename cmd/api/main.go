package main

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"github.com/scamtrap-ai/scamtrap/internal/api/router"
	appconfig "github.com/scamtrap-ai/scamtrap/internal/config"
	"github.com/scamtrap-ai/scamtrap/internal/engage"
	"github.com/scamtrap-ai/scamtrap/internal/llm"
	"github.com/scamtrap-ai/scamtrap/internal/observability/metrics"
	"github.com/scamtrap-ai/scamtrap/internal/session"
	"github.com/scamtrap-ai/scamtrap/pkg/logging"
)

func main() {
	// Local development convenience; missing .env is not an error.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting scamtrap engagement engine",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metricsHandler, engineMetrics := setupMetrics()

	store, janitor := setupSessionStore(cfg, logger)

	pools := buildProviderTiers(ctx, cfg, logger)
	orchestrator := llm.NewOrchestrator(pools, cfg.HistoryWindow, cfg.MaxReplyTokens, cfg.Temperature, logger, engineMetrics)

	reporter := engage.NewReportDispatcher(cfg.CollectorURL, cfg.ReportTimeout, logger, engineMetrics)
	service := engage.NewService(store, orchestrator, reporter,
		cfg.LowEngagementThreshold, cfg.HighEngagementThreshold, logger, engineMetrics)

	r := router.New(&router.Config{
		Logger:             logger,
		EngageHandler:      engage.NewHandler(service, logger),
		APIKey:             cfg.APIKey,
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitPerSecond: cfg.RateLimitPerSecond,
		RateLimitBurst:     cfg.RateLimitBurst,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if janitor != nil {
		g.Go(func() error {
			janitor(gctx)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// setupMetrics builds a dedicated registry so tests and multiple instances
// never fight over the default one.
func setupMetrics() (http.Handler, *metrics.EngineMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewEngineMetrics(reg)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), m
}

// setupSessionStore picks Redis or in-process sharded memory. The returned
// janitor is non-nil only for the memory store, which needs its own sweeper.
func setupSessionStore(cfg *appconfig.Config, logger *logging.Logger) (session.Store, func(context.Context)) {
	if cfg.UseRedisSessions {
		opts := &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		client := redis.NewClient(opts)
		logger.Info("using redis session store", "addr", cfg.RedisAddr, "ttl", cfg.SessionTTL)
		return session.NewRedisStore(client, cfg.SessionTTL, otel.Tracer("scamtrap/session")), nil
	}

	store := session.NewMemoryStore(cfg.SessionTTL)
	logger.Info("using in-memory session store", "ttl", cfg.SessionTTL)
	janitor := func(ctx context.Context) {
		store.RunJanitor(ctx, 10*time.Minute)
	}
	return store, janitor
}

// buildProviderTiers assembles the ordered reply-provider tiers from
// configured credentials. Tiers with no usable credentials are skipped; an
// empty result means every reply comes from the scripted fallback.
func buildProviderTiers(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) []*llm.Pool {
	var pools []*llm.Pool

	if pool := buildGroqPool(cfg, logger); pool != nil {
		pools = append(pools, pool)
	}
	if pool := buildGeminiPool(ctx, cfg, logger); pool != nil {
		pools = append(pools, pool)
	}
	if pool := buildBedrockPool(ctx, cfg, logger); pool != nil {
		pools = append(pools, pool)
	}

	if len(pools) == 0 {
		logger.Warn("no reply providers configured, running on scripted persona only")
	}
	return pools
}

func buildGroqPool(cfg *appconfig.Config, logger *logging.Logger) *llm.Pool {
	var clients []llm.Client
	for _, key := range cfg.GroqAPIKeys {
		client, err := llm.NewGroqClient(key, cfg.GroqModel)
		if err != nil {
			logger.Error("skipping groq credential", "error", err)
			continue
		}
		clients = append(clients, client)
	}
	if len(clients) == 0 {
		return nil
	}
	logger.Info("groq tier enabled", "model", cfg.GroqModel, "credentials", len(clients))
	return llm.NewPool("groq", clients, cfg.GroqTimeout, cfg.GroqMaxAttempts, true)
}

func buildGeminiPool(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) *llm.Pool {
	var clients []llm.Client
	for _, key := range cfg.GeminiAPIKeys {
		client, err := llm.NewGeminiClient(ctx, key, cfg.GeminiModel)
		if err != nil {
			logger.Error("skipping gemini credential", "error", err)
			continue
		}
		clients = append(clients, client)
	}
	if len(clients) == 0 {
		return nil
	}
	logger.Info("gemini tier enabled", "model", cfg.GeminiModel, "credentials", len(clients))
	return llm.NewPool("gemini", clients, cfg.GeminiTimeout, cfg.GeminiMaxAttempts, false)
}

func buildBedrockPool(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) *llm.Pool {
	if cfg.BedrockModelID == "" {
		return nil
	}

	awsCfg, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("bedrock tier disabled, failed to load AWS config", "error", err)
		return nil
	}

	client := llm.NewBedrockClient(bedrockruntime.NewFromConfig(awsCfg), cfg.BedrockModelID)
	logger.Info("bedrock tier enabled", "model", cfg.BedrockModelID, "region", cfg.AWSRegion)
	return llm.NewPool("bedrock", []llm.Client{client}, cfg.BedrockTimeout, 1, true)
}

// loadAWSConfig prefers static credentials when provided and otherwise falls
// back to the default chain (instance role, env, shared config).
func loadAWSConfig(ctx context.Context, cfg *appconfig.Config) (aws.Config, error) {
	loaders := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.AWSRegion)}
	if cfg.AWSAccessKeyID != "" && cfg.AWSSecretAccessKey != "" {
		loaders = append(loaders, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}
	return awsconfig.LoadDefaultConfig(ctx, loaders...)
}
