package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ManuelReschke/VibesDrop/internal/pkg/env"
)

const (
	defaultHubURL      = "https://hub.pinata.cloud"
	defaultNeynarURL   = "https://api.neynar.com"
	defaultChannel     = "vibes"
	defaultBaseURL     = "http://localhost:3000"
	defaultRedisURL    = "redis://localhost:6379/0"
	defaultAdminUser   = "admin"
	defaultHTTPTimeout = 10 * time.Second
)

// Config is the typed view of the process environment.
type Config struct {
	Host          string
	Port          string
	AppEnv        string
	PublicBaseURL string

	RedisURL         string
	RedisTLSInsecure bool

	HubURL string

	NeynarAPIKey             string
	NeynarAPIURL             string
	NeynarChannel            string
	NeynarEventURL           string
	NeynarWebhookSecret      string
	NeynarMembershipFallback bool
	NeynarRateLimit          int

	AdminUsername string
	AdminPassword string

	ProfileLookupConcurrency int
	APIRateLimit             int
	HTTPTimeout              time.Duration
}

// Load reads all settings from env (.env file first, then the OS).
func Load() *Config {
	apiKey := strings.TrimSpace(env.GetEnv("NEYNAR_API_KEY", ""))

	return &Config{
		Host:          env.GetEnv("APP_HOST", "0.0.0.0"),
		Port:          env.GetEnv("APP_PORT", "3000"),
		AppEnv:        env.GetEnv("APP_ENV", "prod"),
		PublicBaseURL: strings.TrimRight(strings.TrimSpace(env.GetEnv("PUBLIC_BASE_URL", defaultBaseURL)), "/"),

		RedisURL:         strings.TrimSpace(env.GetEnv("REDIS_URL", defaultRedisURL)),
		RedisTLSInsecure: env.GetEnvBool("REDIS_TLS_INSECURE", false),

		HubURL: strings.TrimRight(strings.TrimSpace(env.GetEnv("FARCASTER_HUB_URL", defaultHubURL)), "/"),

		NeynarAPIKey:             apiKey,
		NeynarAPIURL:             strings.TrimRight(strings.TrimSpace(env.GetEnv("NEYNAR_API_URL", defaultNeynarURL)), "/"),
		NeynarChannel:            strings.TrimSpace(env.GetEnv("NEYNAR_CHANNEL", defaultChannel)),
		NeynarEventURL:           strings.TrimSpace(env.GetEnv("NEYNAR_EVENT_URL", "")),
		NeynarWebhookSecret:      strings.TrimSpace(env.GetEnv("NEYNAR_WEBHOOK_SECRET", apiKey)),
		NeynarMembershipFallback: env.GetEnvBool("NEYNAR_MEMBERSHIP_FALLBACK", false),
		NeynarRateLimit:          env.GetEnvInt("NEYNAR_RATE_LIMIT", 5),

		AdminUsername: env.GetEnv("ADMIN_USERNAME", defaultAdminUser),
		AdminPassword: env.GetEnv("ADMIN_PASSWORD", ""),

		ProfileLookupConcurrency: env.GetEnvInt("PROFILE_LOOKUP_CONCURRENCY", 8),
		APIRateLimit:             env.GetEnvInt("API_RATE_LIMIT", 120),
		HTTPTimeout:              defaultHTTPTimeout,
	}
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.RedisURL == "" {
		errs = append(errs, errors.New("REDIS_URL is required"))
	}
	if _, err := url.ParseRequestURI(c.PublicBaseURL); err != nil {
		errs = append(errs, fmt.Errorf("PUBLIC_BASE_URL is invalid: %w", err))
	}
	if _, err := url.ParseRequestURI(c.HubURL); err != nil {
		errs = append(errs, fmt.Errorf("FARCASTER_HUB_URL is invalid: %w", err))
	}
	if c.AdminPassword == "" {
		errs = append(errs, errors.New("ADMIN_PASSWORD is required"))
	}
	if c.NeynarWebhookSecret == "" {
		errs = append(errs, errors.New("NEYNAR_WEBHOOK_SECRET or NEYNAR_API_KEY is required"))
	}
	return errors.Join(errs...)
}

// Addr is the listen address for fiber.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev is true when APP_ENV=dev.
func (c *Config) IsDev() bool {
	return c.AppEnv == "dev"
}
