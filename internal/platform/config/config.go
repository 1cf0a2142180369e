package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName  string
	HTTPPort     string
	PostgresDSN  string
	KafkaBrokers []string

	PostgresMaxOpenConns    int
	PostgresMaxIdleConns    int
	PostgresConnMaxLifetime time.Duration

	// VotingSecretSalt keys the voter identity hash. Processes refuse to
	// start without it.
	VotingSecretSalt string

	LifecycleSweepInterval    time.Duration
	LifecycleSweepConcurrency int
	LifecycleSweepBatchSize   int
	OutboxPollInterval        time.Duration

	EnableLifecycleSweep bool
	EnableOutboxRelay    bool
}

// Load reads environment variables, falling back to an optional agora.yaml
// in the working directory or /etc/agora. A .env file in the working
// directory is applied first without overriding variables already set.
func Load() (Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return Config{}, err
	}
	return LoadFrom(viper.New())
}

func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// LoadFrom lets tests inject a prepared viper instance.
func LoadFrom(v *viper.Viper) (Config, error) {
	v.SetDefault("service_name", "agora")
	v.SetDefault("http_port", "8080")
	v.SetDefault("postgres_dsn", "")
	v.SetDefault("postgres_max_open_conns", 20)
	v.SetDefault("postgres_max_idle_conns", 5)
	v.SetDefault("postgres_conn_max_lifetime", "30m")
	v.SetDefault("kafka_brokers", "localhost:9092")
	v.SetDefault("voting_secret_salt", "")
	v.SetDefault("lifecycle_sweep_interval", "1m")
	v.SetDefault("lifecycle_sweep_concurrency", 4)
	v.SetDefault("lifecycle_sweep_batch_size", 500)
	v.SetDefault("outbox_poll_interval", "2s")
	v.SetDefault("enable_lifecycle_sweep", true)
	v.SetDefault("enable_outbox_relay", true)

	v.SetConfigName("agora")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/agora")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read agora config: %w", err)
		}
	}

	sweepInterval := v.GetDuration("lifecycle_sweep_interval")
	if sweepInterval <= 0 {
		return Config{}, fmt.Errorf("LIFECYCLE_SWEEP_INTERVAL must be positive")
	}
	pollInterval := v.GetDuration("outbox_poll_interval")
	if pollInterval <= 0 {
		return Config{}, fmt.Errorf("OUTBOX_POLL_INTERVAL must be positive")
	}

	return Config{
		ServiceName:  strings.TrimSpace(v.GetString("service_name")),
		HTTPPort:     strings.TrimSpace(v.GetString("http_port")),
		PostgresDSN:  strings.TrimSpace(v.GetString("postgres_dsn")),
		KafkaBrokers: splitList(v.GetString("kafka_brokers")),

		PostgresMaxOpenConns:    v.GetInt("postgres_max_open_conns"),
		PostgresMaxIdleConns:    v.GetInt("postgres_max_idle_conns"),
		PostgresConnMaxLifetime: v.GetDuration("postgres_conn_max_lifetime"),

		VotingSecretSalt: v.GetString("voting_secret_salt"),

		LifecycleSweepInterval:    sweepInterval,
		LifecycleSweepConcurrency: v.GetInt("lifecycle_sweep_concurrency"),
		LifecycleSweepBatchSize:   v.GetInt("lifecycle_sweep_batch_size"),
		OutboxPollInterval:        pollInterval,

		EnableLifecycleSweep: v.GetBool("enable_lifecycle_sweep"),
		EnableOutboxRelay:    v.GetBool("enable_outbox_relay"),
	}, nil
}

func splitList(raw string) []string {
	var items []string
	for _, value := range strings.Split(raw, ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			items = append(items, value)
		}
	}
	return items
}
