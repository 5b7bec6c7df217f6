package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	appconfig "github.com/scamtrap-ai/scamtrap/internal/config"
	"github.com/scamtrap-ai/scamtrap/internal/session"
	"github.com/scamtrap-ai/scamtrap/pkg/logging"
)

func TestSetupMetricsExposesEngineCounters(t *testing.T) {
	handler, m := setupMetrics()
	if handler == nil || m == nil {
		t.Fatalf("expected non-nil handler and metrics")
	}

	m.ObserveMessage(true)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "scamtrap_engine_messages_total") {
		t.Fatalf("expected message counter to be exported")
	}
}

func TestSetupSessionStoreDefaultsToMemory(t *testing.T) {
	logger := logging.NewWithWriter("error", io.Discard)
	cfg := &appconfig.Config{SessionTTL: time.Hour}

	store, janitor := setupSessionStore(cfg, logger)
	if _, ok := store.(*session.MemoryStore); !ok {
		t.Fatalf("expected memory store, got %T", store)
	}
	if janitor == nil {
		t.Fatal("memory store needs a janitor")
	}
}

func TestSetupSessionStoreRedisPath(t *testing.T) {
	logger := logging.NewWithWriter("error", io.Discard)
	cfg := &appconfig.Config{
		UseRedisSessions: true,
		RedisAddr:        "localhost:6379",
		SessionTTL:       time.Hour,
	}

	store, janitor := setupSessionStore(cfg, logger)
	if _, ok := store.(*session.RedisStore); !ok {
		t.Fatalf("expected redis store, got %T", store)
	}
	if janitor != nil {
		t.Fatal("redis store must not get a local janitor, TTLs live server-side")
	}
}

func TestBuildProviderTiersWithoutCredentials(t *testing.T) {
	logger := logging.NewWithWriter("error", io.Discard)
	cfg := &appconfig.Config{}

	pools := buildProviderTiers(context.Background(), cfg, logger)
	if len(pools) != 0 {
		t.Fatalf("expected no tiers without credentials, got %d", len(pools))
	}
}

func TestBuildGroqPoolRotatesConfiguredKeys(t *testing.T) {
	logger := logging.NewWithWriter("error", io.Discard)
	cfg := &appconfig.Config{
		GroqAPIKeys:     []string{"gsk_a", "gsk_b", "gsk_c"},
		GroqModel:       "llama-3.1-8b-instant",
		GroqTimeout:     time.Second,
		GroqMaxAttempts: 3,
	}

	pool := buildGroqPool(cfg, logger)
	if pool == nil {
		t.Fatal("expected groq pool with configured keys")
	}
	if got := pool.Size(); got != 3 {
		t.Fatalf("expected 3 credential slots, got %d", got)
	}
}

func TestLoadAWSConfigStaticCredentials(t *testing.T) {
	cfg := &appconfig.Config{
		AWSRegion:          "ap-south-1",
		AWSAccessKeyID:     "test",
		AWSSecretAccessKey: "test",
	}
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")

	awsCfg, err := loadAWSConfig(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to load AWS config: %v", err)
	}
	if awsCfg.Region != "ap-south-1" {
		t.Fatalf("expected region ap-south-1, got %q", awsCfg.Region)
	}
}
