package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Nehra4u/Crystal-Ecommerce/internal/checkout"
	pkgconfig "github.com/Nehra4u/Crystal-Ecommerce/pkg/config"
	"github.com/Nehra4u/Crystal-Ecommerce/pkg/database"
)

// Slot backends.
const (
	SlotRedis  = "redis"
	SlotMemory = "memory"
)

// Catalog sources.
const (
	CatalogFixture  = "fixture"
	CatalogPostgres = "postgres"
	CatalogRemote   = "remote"
)

// Config holds all configuration for the storefront service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort          int      `env:"STOREFRONT_HTTP_PORT" envDefault:"8080"`
	RateLimitRPS      float64  `env:"RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst    int      `env:"RATE_LIMIT_BURST" envDefault:"40"`
	CORSAllowOrigins  []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.1/32,::1/128" envSeparator:","`

	// Persisted collections
	SlotBackend        string `env:"SLOT_BACKEND" envDefault:"redis"`
	SlotTTLHours       int    `env:"SLOT_TTL_HOURS" envDefault:"720"`
	CartSlotKey        string `env:"CART_SLOT_KEY" envDefault:"crystal-cart"`
	WishlistSlotKey    string `env:"WISHLIST_SLOT_KEY" envDefault:"crystal-wishlist"`
	SessionIdleTTLMins int    `env:"SESSION_IDLE_TTL_MINUTES" envDefault:"30"`

	// Redis
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Catalog
	CatalogSource string `env:"CATALOG_SOURCE" envDefault:"fixture"`
	CatalogURL    string `env:"CATALOG_URL" envDefault:"http://localhost:8001"`

	// PostgreSQL (CATALOG_SOURCE=postgres)
	PostgresHost          string `env:"DB_HOST" envDefault:"localhost"`
	PostgresPort          int    `env:"DB_PORT" envDefault:"5432"`
	PostgresUser          string `env:"DB_USER" envDefault:"storefront"`
	PostgresPass          string `env:"DB_PASSWORD" envDefault:"storefront_secret"`
	PostgresDB            string `env:"DB_NAME" envDefault:"catalog_db"`
	PostgresSSL           string `env:"DB_SSL_MODE" envDefault:"disable"`
	DBMaxConns            int32  `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns            int32  `env:"DB_MIN_CONNS" envDefault:"2"`
	DBMaxConnLifetimeMins int    `env:"DB_MAX_CONN_LIFETIME_MINUTES" envDefault:"60"`
	DBMaxConnIdleTimeMins int    `env:"DB_MAX_CONN_IDLE_TIME_MINUTES" envDefault:"30"`
	SlowQueryThresholdMs  int    `env:"LOG_SLOW_QUERY_MS" envDefault:"500"`

	// Kafka
	EventsEnabled bool     `env:"EVENTS_ENABLED" envDefault:"false"`
	KafkaBrokers  []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Checkout pricing
	ShippingRule string `env:"SHIPPING_RULE"`
	TaxRate      string `env:"TAX_RATE" envDefault:"0.08"`

	pricing checkout.Pricing
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants and compiles the pricing rules.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	if c.SlotTTLHours < 0 {
		return fmt.Errorf("SLOT_TTL_HOURS must not be negative, got %d", c.SlotTTLHours)
	}
	if c.SessionIdleTTLMins < 1 {
		return fmt.Errorf("SESSION_IDLE_TTL_MINUTES must be positive, got %d", c.SessionIdleTTLMins)
	}
	if c.CartSlotKey == "" || c.WishlistSlotKey == "" {
		return fmt.Errorf("CART_SLOT_KEY and WISHLIST_SLOT_KEY are required")
	}
	if c.CartSlotKey == c.WishlistSlotKey {
		return fmt.Errorf("CART_SLOT_KEY and WISHLIST_SLOT_KEY must differ")
	}

	switch c.SlotBackend {
	case SlotRedis, SlotMemory:
	default:
		return fmt.Errorf("unknown SLOT_BACKEND %q (want redis or memory)", c.SlotBackend)
	}

	switch c.CatalogSource {
	case CatalogFixture:
	case CatalogPostgres:
		if c.PostgresHost == "" || c.PostgresUser == "" {
			return fmt.Errorf("DB_HOST and DB_USER are required for the postgres catalog")
		}
	case CatalogRemote:
		u, err := url.Parse(c.CatalogURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("CATALOG_URL must be an absolute URL, got %q", c.CatalogURL)
		}
	default:
		return fmt.Errorf("unknown CATALOG_SOURCE %q (want fixture, postgres or remote)", c.CatalogSource)
	}

	if c.EventsEnabled && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when EVENTS_ENABLED is set")
	}

	rate, err := decimal.NewFromString(c.TaxRate)
	if err != nil {
		return fmt.Errorf("parse TAX_RATE: %w", err)
	}
	if rate.IsNegative() {
		return fmt.Errorf("TAX_RATE must not be negative, got %s", c.TaxRate)
	}
	src := c.ShippingRule
	if src == "" {
		src = checkout.DefaultShippingRule
	}
	rule, err := checkout.CompileShippingRule(src)
	if err != nil {
		return fmt.Errorf("SHIPPING_RULE: %w", err)
	}
	c.pricing = checkout.Pricing{Shipping: rule, TaxRate: rate}
	return nil
}

// Pricing returns the checkout pricing compiled during Load.
func (c *Config) Pricing() checkout.Pricing {
	return c.pricing
}

// SlotTTL is how long an idle collection is kept. Zero keeps it forever.
func (c *Config) SlotTTL() time.Duration {
	return time.Duration(c.SlotTTLHours) * time.Hour
}

// SessionIdleTTL is how long an unused client session stays in memory.
func (c *Config) SessionIdleTTL() time.Duration {
	return time.Duration(c.SessionIdleTTLMins) * time.Minute
}

// PostgresConfig returns the catalog database pool settings.
func (c *Config) PostgresConfig() *database.PostgresConfig {
	return &database.PostgresConfig{
		Host:            c.PostgresHost,
		Port:            c.PostgresPort,
		User:            c.PostgresUser,
		Password:        c.PostgresPass,
		DBName:          c.PostgresDB,
		SSLMode:         c.PostgresSSL,
		MaxConns:        c.DBMaxConns,
		MinConns:        c.DBMinConns,
		MaxConnLifetime: time.Duration(c.DBMaxConnLifetimeMins) * time.Minute,
		MaxConnIdleTime: time.Duration(c.DBMaxConnIdleTimeMins) * time.Minute,
	}
}
