// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values. A local '.env' file is
honoured for development through 'joho/godotenv'; real environment variables
always win over the file.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, TokenIssuer) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/netip"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// # Store Drivers

const (
	// StoreDriverPostgres persists accounts in PostgreSQL.
	StoreDriverPostgres = "postgres"

	// StoreDriverMemory keeps accounts in process memory. Development and tests only.
	StoreDriverMemory = "memory"
)

// # Configuration Schema

// Config holds all runtime configuration for the identity API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"PORT"         envDefault:"5000"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Account store selection
	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis). Optional: when empty, rate limiting is per-process.
	RedisURL string `env:"REDIS_URL"`

	// Token signing. The two secrets must differ.
	AccessSecret  string `env:"JWT_SECRET,required"`
	RefreshSecret string `env:"JWT_REFRESH_SECRET,required"`
	JWTAlgorithm  string `env:"JWT_ALGORITHM" envDefault:"HS256"`
	JWTIssuer     string `env:"JWT_ISSUER"    envDefault:"yomira.app"`

	// Rate limiting (per client IP)
	RateLimitRequests int           `env:"RATE_LIMIT_REQUESTS" envDefault:"100"`
	RateLimitWindow   time.Duration `env:"RATE_LIMIT_WINDOW"   envDefault:"15m"`

	// Reverse proxies allowed to set X-Forwarded-For / X-Real-IP.
	// Bare addresses and CIDR ranges are accepted. Empty trusts nobody.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`

	// Cross-Origin Resource Sharing
	ExtraOrigins []string `env:"EXTRA_ORIGINS" envSeparator:","`

	trustedProxyPrefixes []netip.Prefix
}

// # Configuration Loading

// Load reads an optional .env file and parses environment variables into a [Config].
func Load() (*Config, error) {
	return LoadFiles(".env")
}

// LoadFiles is [Load] with explicit dotenv file names. Missing files are skipped.
func LoadFiles(dotenvFiles ...string) (*Config, error) {

	// godotenv.Load never overrides variables that are already set.
	for _, file := range dotenvFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: failed to read %s: %w", file, err)
		}
	}

	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// DatabaseConfig is the subset of settings the migrate command needs.
// It lets operators run migrations without provisioning token secrets.
type DatabaseConfig struct {
	DatabaseURL   string `env:"DATABASE_URL,required,notEmpty"`
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`
}

// LoadDatabase reads an optional .env file and parses only the database settings.
func LoadDatabase() (*DatabaseConfig, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: failed to read .env: %w", err)
	}

	cfg := &DatabaseConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	return cfg, nil
}

// Validate checks cross-field constraints that struct tags cannot express.
func (c *Config) Validate() error {
	if c.AccessSecret == c.RefreshSecret {
		return errors.New("config: JWT_SECRET and JWT_REFRESH_SECRET must differ")
	}

	switch c.JWTAlgorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("config: unsupported JWT_ALGORITHM %q", c.JWTAlgorithm)
	}

	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("config: DATABASE_URL is required for the postgres store")
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.StoreDriver)
	}

	if c.RateLimitRequests <= 0 || c.RateLimitWindow <= 0 {
		return errors.New("config: rate limit requests and window must be positive")
	}

	prefixes, err := ParseTrustedProxies(c.TrustedProxies)
	if err != nil {
		return err
	}
	c.trustedProxyPrefixes = prefixes

	return nil
}

// ParseTrustedProxies converts addresses and CIDR ranges into prefixes.
// A bare address becomes a single-host prefix.
func ParseTrustedProxies(values []string) ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(values))
	for _, raw := range values {
		value := strings.TrimSpace(raw)
		if value == "" {
			continue
		}

		if strings.Contains(value, "/") {
			prefix, err := netip.ParsePrefix(value)
			if err != nil {
				return nil, fmt.Errorf("config: invalid TRUSTED_PROXIES entry %q: %w", value, err)
			}
			prefixes = append(prefixes, prefix.Masked())
			continue
		}

		addr, err := netip.ParseAddr(value)
		if err != nil {
			return nil, fmt.Errorf("config: invalid TRUSTED_PROXIES entry %q: %w", value, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

// TrustedProxyPrefixes returns the proxy networks parsed by [Config.Validate].
func (c *Config) TrustedProxyPrefixes() []netip.Prefix {
	return c.trustedProxyPrefixes
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowedOrigins returns the configured extra CORS origins.
func (c *Config) AllowedOrigins() []string {
	return c.ExtraOrigins
}
