package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"rate-shopper/middleware"
	aws_pkg "rate-shopper/pkg/aws"
)

const (
	ProviderSendcloud = "sendcloud"
	ProviderFixture   = "fixture"

	sendcloudSecretName = "rate-shopper/SENDCLOUD_CREDENTIALS"
)

// Config holds all configuration for the rate shopper.
type Config struct {
	Port   string
	AppEnv string

	RateProvider       string
	SendcloudBaseURL   string
	SendcloudPublicKey string
	SendcloudSecretKey string
	ProviderTimeout    time.Duration
	FixtureLatency     time.Duration

	QuoteBatchSize  int
	QuoteBatchDelay time.Duration

	CORSAllowedOrigins string
	RateLimitPerMinute int
	RateLimitBurst     int
	RequestTimeout     time.Duration

	QuoteSNSTopicARN    string
	CloudWatchEnabled   bool
	CloudWatchNamespace string
	CloudWatchLogGroup  string
	UseSecrets          bool
}

// secretMapReader is satisfied by *aws_pkg.SecretsClient.
type secretMapReader interface {
	GetSecretMap(ctx context.Context, name string) (map[string]string, error)
}

// LoadConfig reads configuration from environment variables. Secrets Manager
// overrides are applied separately by applySecrets.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:                getEnv("PORT", "3001"),
		AppEnv:              getEnv("APP_ENV", "development"),
		RateProvider:        strings.ToLower(getEnv("RATE_PROVIDER", ProviderSendcloud)),
		SendcloudBaseURL:    getEnv("SENDCLOUD_BASE_URL", "https://panel.sendcloud.sc"),
		SendcloudPublicKey:  os.Getenv("SENDCLOUD_PUBLIC_KEY"),
		SendcloudSecretKey:  os.Getenv("SENDCLOUD_SECRET_KEY"),
		CORSAllowedOrigins:  getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000"),
		QuoteSNSTopicARN:    os.Getenv("QUOTE_SNS_TOPIC_ARN"),
		CloudWatchEnabled:   os.Getenv("CLOUDWATCH_ENABLED") == "true",
		CloudWatchNamespace: getEnv("CLOUDWATCH_NAMESPACE", aws_pkg.DefaultNamespace),
		CloudWatchLogGroup:  getEnv("CLOUDWATCH_LOG_GROUP", aws_pkg.DefaultLogGroup),
		UseSecrets:          os.Getenv("AWS_USE_SECRETS") == "true",
	}

	var err error
	if cfg.ProviderTimeout, err = getDuration("PROVIDER_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.FixtureLatency, err = getDuration("FIXTURE_LATENCY", 0); err != nil {
		return nil, err
	}
	if cfg.QuoteBatchDelay, err = getDuration("QUOTE_BATCH_DELAY", 100*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = getDuration("REQUEST_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.QuoteBatchSize, err = getInt("QUOTE_BATCH_SIZE", 5); err != nil {
		return nil, err
	}
	if cfg.RateLimitPerMinute, err = getInt("RATE_LIMIT_PER_MINUTE", 100); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = getInt("RATE_LIMIT_BURST", 50); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applySecrets overrides the Sendcloud credentials with the values stored in
// Secrets Manager. Missing keys leave the environment values in place.
func (c *Config) applySecrets(ctx context.Context, sm secretMapReader) error {
	m, err := sm.GetSecretMap(ctx, sendcloudSecretName)
	if err != nil {
		return err
	}
	if v := m["SENDCLOUD_PUBLIC_KEY"]; v != "" {
		c.SendcloudPublicKey = v
	}
	if v := m["SENDCLOUD_SECRET_KEY"]; v != "" {
		c.SendcloudSecretKey = v
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.RateProvider {
	case ProviderSendcloud:
		if c.SendcloudPublicKey == "" || c.SendcloudSecretKey == "" {
			return fmt.Errorf("sendcloud credentials incomplete: SENDCLOUD_PUBLIC_KEY and SENDCLOUD_SECRET_KEY are required")
		}
	case ProviderFixture:
	default:
		return fmt.Errorf("unknown RATE_PROVIDER %q (want %q or %q)", c.RateProvider, ProviderSendcloud, ProviderFixture)
	}
	if c.QuoteBatchSize < 1 {
		return fmt.Errorf("QUOTE_BATCH_SIZE must be at least 1, got %d", c.QuoteBatchSize)
	}
	if c.QuoteBatchDelay < 0 {
		return fmt.Errorf("QUOTE_BATCH_DELAY must not be negative, got %s", c.QuoteBatchDelay)
	}
	if c.RateLimitPerMinute < 1 || c.RateLimitBurst < 1 {
		return fmt.Errorf("rate limit settings must be positive")
	}
	for _, o := range middleware.SplitOrigins(c.CORSAllowedOrigins) {
		if o != "*" && !strings.HasPrefix(o, "http://") && !strings.HasPrefix(o, "https://") {
			return fmt.Errorf("invalid CORS origin %q", o)
		}
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
