// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN shared with the wiki host.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// ProviderPublicURL is the identity provider's public (browser-facing) base URL. Required.
	ProviderPublicURL string `mapstructure:"PROVIDER_PUBLIC_URL"`
	// ProviderAdminURL is the identity provider's admin API base URL. Required.
	ProviderAdminURL string `mapstructure:"PROVIDER_ADMIN_URL"`
	// ProviderCookieName is the provider's session cookie name; used for Vary and cheap presence checks.
	ProviderCookieName string `mapstructure:"PROVIDER_COOKIE_NAME"`
	// ProviderUIURL is the provider's hosted account-settings UI, linked from user menus.
	ProviderUIURL string `mapstructure:"PROVIDER_UI_URL"`
	// AutoCreateAccounts enables auto-provisioning of local accounts for verified identities with no match.
	AutoCreateAccounts bool `mapstructure:"AUTO_CREATE_ACCOUNTS"`
	// EquivBatchSize is the batch size for the equivalence backfill (cmd/populate-equiv).
	EquivBatchSize int `mapstructure:"EQUIV_BATCH_SIZE"`
	// OTLPEndpoint is the OTLP gRPC collector endpoint (e.g. localhost:4317). Empty disables telemetry.
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`
	// OTLPInsecure forces plaintext OTLP export even for https endpoints.
	OTLPInsecure bool `mapstructure:"OTLP_INSECURE"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`

	// Auth events (optional). When Kafka brokers are set, the server emits auth events to Kafka.
	// KafkaBrokers is a comma-separated list of Kafka broker addresses (e.g. "localhost:9092").
	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// KafkaTopic is the Kafka topic for auth events (default wiki-auth-events).
	KafkaTopic string `mapstructure:"KAFKA_TOPIC"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("PROVIDER_PUBLIC_URL", "")
	v.SetDefault("PROVIDER_ADMIN_URL", "")
	v.SetDefault("PROVIDER_COOKIE_NAME", "ory_kratos_session")
	v.SetDefault("PROVIDER_UI_URL", "")
	v.SetDefault("AUTO_CREATE_ACCOUNTS", true)
	v.SetDefault("EQUIV_BATCH_SIZE", 100)
	v.SetDefault("OTLP_ENDPOINT", "")
	v.SetDefault("OTLP_INSECURE", false)
	v.SetDefault("APP_ENV", "")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_TOPIC", "wiki-auth-events")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}
	if cfg.ProviderPublicURL == "" {
		return nil, errors.New("config: PROVIDER_PUBLIC_URL must be set to the identity provider public URL")
	}
	if cfg.ProviderAdminURL == "" {
		return nil, errors.New("config: PROVIDER_ADMIN_URL must be set to the identity provider admin URL")
	}
	if cfg.EquivBatchSize <= 0 {
		return nil, errors.New("config: EQUIV_BATCH_SIZE must be positive")
	}

	cfg.ProviderPublicURL = strings.TrimSuffix(cfg.ProviderPublicURL, "/")
	cfg.ProviderAdminURL = strings.TrimSuffix(cfg.ProviderAdminURL, "/")

	return &cfg, nil
}

// KafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if auth events are enabled (non-empty list) and to create the producer.
func (c *Config) KafkaBrokersList() []string {
	if c == nil || c.KafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.KafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
