package tenancy

import (
	"sync/atomic"
	"time"
)

// Environments with distinct bypass audit behavior.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

type Config struct {
	// Environment is one of development, production or test. In production
	// successful bypasses are logged at warn level.
	Environment string `conf:"environment" yaml:"environment" json:"environment"`

	// DisableBypasses rejects every bypass operation with ScopingDisabledError.
	DisableBypasses bool `conf:"disable_bypasses" yaml:"disable_bypasses" json:"disable_bypasses"`

	// TenantColumn is the tenant foreign key column guarded entities carry.
	TenantColumn string `conf:"tenant_column" yaml:"tenant_column" json:"tenant_column"`

	// ExcludedEntities lists table names exempted from scoping entirely.
	ExcludedEntities []string `conf:"excluded_entities" yaml:"excluded_entities" json:"excluded_entities"`

	// ResolverTTL bounds how long resolved organizations are cached.
	ResolverTTL time.Duration `conf:"resolver_ttl" yaml:"resolver_ttl" json:"resolver_ttl"`
}

func (c Config) withDefaults() Config {
	if c.Environment == "" {
		c.Environment = EnvDevelopment
	}

	if c.TenantColumn == "" {
		c.TenantColumn = "organization_id"
	}

	if c.ResolverTTL <= 0 {
		c.ResolverTTL = 5 * time.Minute
	}

	return c
}

// IsProduction reports whether the production audit rules apply.
func (c Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

var config atomic.Pointer[Config]

//nolint:gochecknoinits // safe defaults until Configure runs at boot.
func init() {
	cfg := Config{}.withDefaults()
	config.Store(&cfg)
}

// Configure installs the process-wide tenancy config. Called once at boot,
// before any guard is constructed.
func Configure(cfg Config) {
	cfg = cfg.withDefaults()
	config.Store(&cfg)
}

// CurrentConfig returns the process-wide tenancy config.
func CurrentConfig() Config {
	return *config.Load()
}
