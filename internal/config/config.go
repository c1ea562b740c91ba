package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string   `mapstructure:"PORT"`
	Env         string   `mapstructure:"ENV"`
	LogFormat   string   `mapstructure:"LOG_FORMAT"`
	LogLevel    string   `mapstructure:"LOG_LEVEL"`
	DatabaseURL string   `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32    `mapstructure:"DB_MIN_CONNS"`
	DBSchema    string   `mapstructure:"DB_SCHEMA"`
	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`

	RateLimitRPS   float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int           `mapstructure:"RATE_LIMIT_BURST"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	BodyLimit      string        `mapstructure:"BODY_LIMIT"`

	// Optional integrations. Empty URLs disable them.
	RedisURL     string `mapstructure:"REDIS_URL"`
	AMQPURL      string `mapstructure:"AMQP_URL"`
	AMQPExchange string `mapstructure:"AMQP_EXCHANGE"`

	NPIRegistryEnabled bool          `mapstructure:"NPI_REGISTRY_ENABLED"`
	NPIRegistryURL     string        `mapstructure:"NPI_REGISTRY_URL"`
	NPILookupTimeout   time.Duration `mapstructure:"NPI_LOOKUP_TIMEOUT"`
	NPIRegistryRPS     float64       `mapstructure:"NPI_REGISTRY_RPS"`
	NPICacheTTL        time.Duration `mapstructure:"NPI_CACHE_TTL"`

	CheckTimeout         time.Duration `mapstructure:"CHECK_TIMEOUT"`
	TimelyFilingWarnDays int           `mapstructure:"TIMELY_FILING_WARN_DAYS"`

	TLSEnabled  bool   `mapstructure:"TLS_ENABLED"`
	TLSCertFile string `mapstructure:"TLS_CERT_FILE"`
	TLSKeyFile  string `mapstructure:"TLS_KEY_FILE"`
}

var keys = []string{
	"PORT", "ENV", "LOG_FORMAT", "LOG_LEVEL",
	"DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS", "DB_SCHEMA", "CORS_ORIGINS",
	"RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "REQUEST_TIMEOUT", "BODY_LIMIT",
	"REDIS_URL", "AMQP_URL", "AMQP_EXCHANGE",
	"NPI_REGISTRY_ENABLED", "NPI_REGISTRY_URL", "NPI_LOOKUP_TIMEOUT", "NPI_REGISTRY_RPS", "NPI_CACHE_TTL",
	"CHECK_TIMEOUT", "TIMELY_FILING_WARN_DAYS",
	"TLS_ENABLED", "TLS_CERT_FILE", "TLS_KEY_FILE",
}

// Load reads configuration from the environment and an optional .env file.
// It does not require a database; commands that need one call
// RequireDatabase.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("DB_SCHEMA", "public")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("BODY_LIMIT", "1M")
	v.SetDefault("AMQP_EXCHANGE", "claims")
	v.SetDefault("NPI_REGISTRY_ENABLED", false)
	v.SetDefault("NPI_REGISTRY_URL", "https://npiregistry.cms.hhs.gov/api/")
	v.SetDefault("NPI_LOOKUP_TIMEOUT", "5s")
	v.SetDefault("NPI_REGISTRY_RPS", 5)
	v.SetDefault("NPI_CACHE_TTL", "24h")
	v.SetDefault("CHECK_TIMEOUT", "10s")
	v.SetDefault("TIMELY_FILING_WARN_DAYS", 30)

	// Bind env vars explicitly so Unmarshal picks them up
	for _, k := range keys {
		v.BindEnv(k)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if len(cfg.CORSOrigins) == 1 && strings.Contains(cfg.CORSOrigins[0], ",") {
		cfg.CORSOrigins = strings.Split(cfg.CORSOrigins[0], ",")
	}
	for i := range cfg.CORSOrigins {
		cfg.CORSOrigins[i] = strings.TrimSpace(cfg.CORSOrigins[i])
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// RequireDatabase fails when DATABASE_URL is unset.
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	return nil
}

// Validate checks that the configuration is safe to run.
func (c *Config) Validate() error {
	if c.TLSEnabled {
		if c.TLSCertFile == "" {
			return fmt.Errorf("TLS_CERT_FILE is required when TLS_ENABLED is true")
		}
		if c.TLSKeyFile == "" {
			return fmt.Errorf("TLS_KEY_FILE is required when TLS_ENABLED is true")
		}
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) must not exceed DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}
	if c.CheckTimeout <= 0 {
		return fmt.Errorf("CHECK_TIMEOUT must be positive")
	}
	if c.NPIRegistryEnabled && c.NPILookupTimeout <= 0 {
		return fmt.Errorf("NPI_LOOKUP_TIMEOUT must be positive when NPI_REGISTRY_ENABLED is true")
	}
	if c.NPIRegistryEnabled && c.NPILookupTimeout >= c.CheckTimeout {
		return fmt.Errorf("NPI_LOOKUP_TIMEOUT (%s) must be shorter than CHECK_TIMEOUT (%s)", c.NPILookupTimeout, c.CheckTimeout)
	}
	if c.TimelyFilingWarnDays < 0 {
		return fmt.Errorf("TIMELY_FILING_WARN_DAYS must not be negative")
	}
	return nil
}
