package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("VOTING_SECRET_SALT", "salt")
	cfg, err := LoadFrom(viper.New())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ServiceName != "agora" || cfg.HTTPPort != "8080" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.LifecycleSweepInterval != time.Minute || cfg.OutboxPollInterval != 2*time.Second {
		t.Fatalf("unexpected intervals: sweep=%v poll=%v", cfg.LifecycleSweepInterval, cfg.OutboxPollInterval)
	}
	if !cfg.EnableLifecycleSweep || !cfg.EnableOutboxRelay {
		t.Fatalf("workers should be enabled by default")
	}
	if cfg.PostgresMaxOpenConns != 20 || cfg.PostgresConnMaxLifetime != 30*time.Minute {
		t.Fatalf("unexpected pool defaults: %+v", cfg)
	}
	if cfg.VotingSecretSalt != "salt" {
		t.Fatalf("expected salt from env")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,,")
	t.Setenv("LIFECYCLE_SWEEP_INTERVAL", "30s")
	t.Setenv("LIFECYCLE_SWEEP_CONCURRENCY", "8")
	t.Setenv("ENABLE_OUTBOX_RELAY", "false")

	cfg, err := LoadFrom(viper.New())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPPort != "9090" {
		t.Fatalf("expected port 9090, got %q", cfg.HTTPPort)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Fatalf("unexpected brokers: %v", cfg.KafkaBrokers)
	}
	if cfg.LifecycleSweepInterval != 30*time.Second || cfg.LifecycleSweepConcurrency != 8 {
		t.Fatalf("unexpected sweep config: %+v", cfg)
	}
	if cfg.EnableOutboxRelay {
		t.Fatalf("outbox relay should be disabled")
	}
}

func TestLoadRejectsNonPositiveInterval(t *testing.T) {
	t.Setenv("OUTBOX_POLL_INTERVAL", "0s")
	if _, err := LoadFrom(viper.New()); err == nil {
		t.Fatalf("expected error for zero poll interval")
	}
}

func TestLoadDotEnvKeepsExistingVariables(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "AGORA_DOTENV_ONLY=from-file\nAGORA_DOTENV_SET=from-file\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("AGORA_DOTENV_SET", "from-env")
	t.Cleanup(func() { _ = os.Unsetenv("AGORA_DOTENV_ONLY") })

	if err := loadDotEnv(path); err != nil {
		t.Fatalf("load .env: %v", err)
	}
	if got := os.Getenv("AGORA_DOTENV_ONLY"); got != "from-file" {
		t.Fatalf("expected value from .env, got %q", got)
	}
	if got := os.Getenv("AGORA_DOTENV_SET"); got != "from-env" {
		t.Fatalf(".env must not override the environment, got %q", got)
	}
	if err := loadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("missing .env must be ignored: %v", err)
	}
}
