package config

import (
	"fmt"
	"log"
	"log/slog"
	"strings"
	"time"

	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/domain"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers accepted by STORE_DRIVER.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverBolt     = "bolt"
)

// Config holds application configuration.
type Config struct {
	Port          string
	IsProduction  bool
	LogLevel      slog.Level
	StoreDriver   string
	DatabaseURL   string
	EnableDBCheck bool
	// MigrationsPath is a golang-migrate source URL such as file://migrations.
	MigrationsPath string
	BoltPath       string

	// Upstream FxRates service
	FxRatesBaseURL    string
	FetchTimeout      time.Duration
	FetchMaxRetries   uint64
	FetchRetryBackoff time.Duration

	// Synchronization
	SyncInterval           time.Duration
	SyncOnStartup          bool
	CrossRateRegime        domain.Regime
	SkipDuplicateSnapshots bool

	// Kafka sync events, disabled when KafkaBrokers is empty
	KafkaBrokers   []string
	KafkaSyncTopic string

	RateLimit          string
	CORSAllowedOrigins []string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORE_DRIVER", StoreDriverPostgres)
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")
	v.SetDefault("BOLT_PATH", "fxrates.db")
	v.SetDefault("FX_RATES_BASE_URL", "https://www.lb.lt/webservices/FxRates/FxRates.asmx")
	v.SetDefault("FETCH_TIMEOUT", "30s")
	v.SetDefault("FETCH_MAX_RETRIES", 3)
	v.SetDefault("FETCH_RETRY_BACKOFF", "2s")
	v.SetDefault("SYNC_INTERVAL", "24h")
	v.SetDefault("SYNC_ON_STARTUP", true)
	v.SetDefault("CROSS_RATE_REGIME", string(domain.RegimeLocal))
	v.SetDefault("SKIP_DUPLICATE_SNAPSHOTS", false)
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_SYNC_TOPIC", "fxrates-sync-events")
	v.SetDefault("RATE_LIMIT", "100-M")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:4200")
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:                   v.GetString("PORT"),
		IsProduction:           v.GetBool("IS_PRODUCTION"),
		StoreDriver:            strings.ToLower(strings.TrimSpace(v.GetString("STORE_DRIVER"))),
		DatabaseURL:            v.GetString("PGSQL_URL"),
		EnableDBCheck:          v.GetBool("ENABLE_DB_CHECK"),
		MigrationsPath:         v.GetString("MIGRATIONS_PATH"),
		BoltPath:               v.GetString("BOLT_PATH"),
		FxRatesBaseURL:         v.GetString("FX_RATES_BASE_URL"),
		FetchTimeout:           v.GetDuration("FETCH_TIMEOUT"),
		FetchMaxRetries:        v.GetUint64("FETCH_MAX_RETRIES"),
		FetchRetryBackoff:      v.GetDuration("FETCH_RETRY_BACKOFF"),
		SyncInterval:           v.GetDuration("SYNC_INTERVAL"),
		SyncOnStartup:          v.GetBool("SYNC_ON_STARTUP"),
		SkipDuplicateSnapshots: v.GetBool("SKIP_DUPLICATE_SNAPSHOTS"),
		KafkaBrokers:           splitList(v.GetString("KAFKA_BROKERS")),
		KafkaSyncTopic:         v.GetString("KAFKA_SYNC_TOPIC"),
		RateLimit:              v.GetString("RATE_LIMIT"),
		CORSAllowedOrigins:     splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(v.GetString("LOG_LEVEL"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	switch cfg.StoreDriver {
	case StoreDriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("PGSQL_URL must be set when STORE_DRIVER is %q", StoreDriverPostgres)
		}
	case StoreDriverBolt:
		if cfg.BoltPath == "" {
			return nil, fmt.Errorf("BOLT_PATH must be set when STORE_DRIVER is %q", StoreDriverBolt)
		}
	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.StoreDriver)
	}

	regime, err := domain.ParseRegime(v.GetString("CROSS_RATE_REGIME"))
	if err != nil {
		return nil, fmt.Errorf("invalid CROSS_RATE_REGIME: %w", err)
	}
	cfg.CrossRateRegime = regime

	if cfg.SyncInterval <= 0 {
		return nil, fmt.Errorf("SYNC_INTERVAL must be positive, got %s", cfg.SyncInterval)
	}
	if cfg.FetchTimeout <= 0 {
		log.Println("Warning: FETCH_TIMEOUT not positive, upstream requests will not time out.")
	}

	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
