// Package conf loads the application configuration from files and the
// environment.
package conf

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"go.uber.org/fx"

	"github.com/looplj/tenanthub/internal/log"
	"github.com/looplj/tenanthub/internal/server"
	"github.com/looplj/tenanthub/internal/server/biz"
	"github.com/looplj/tenanthub/internal/server/db"
	"github.com/looplj/tenanthub/internal/server/stats"
	"github.com/looplj/tenanthub/internal/tenancy"
)

type Config struct {
	APIServer server.Config  `conf:"server" yaml:"server" json:"server"`
	DB        db.Config      `conf:"db" yaml:"db" json:"db"`
	Auth      biz.AuthConfig `conf:"auth" yaml:"auth" json:"auth"`
	Log       log.Config     `conf:"log" yaml:"log" json:"log"`
	Tenancy   tenancy.Config `conf:"tenancy" yaml:"tenancy" json:"tenancy"`
	Stats     stats.Config   `conf:"stats" yaml:"stats" json:"stats"`
}

// Load reads tenanthub.yml from the working directory, ./conf or
// /etc/tenanthub, then applies TENANTHUB_ environment overrides. A missing
// config file is not an error, the defaults and environment carry it.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName("tenanthub")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./conf")
	v.AddConfigPath("/etc/tenanthub")

	v.SetEnvPrefix("TENANTHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config

	err := v.Unmarshal(&config, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "conf"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	})
	if err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.name", "TenantHub")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.request_timeout", "60s")

	v.SetDefault("db.dialect", "sqlite")
	v.SetDefault("db.dsn", "file:tenanthub.db?cache=shared")

	v.SetDefault("auth.token_duration", "168h")

	v.SetDefault("log.name", "tenanthub")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("tenancy.environment", "production")
	v.SetDefault("tenancy.tenant_column", "organization_id")
	v.SetDefault("tenancy.resolver_ttl", "5m")

	v.SetDefault("stats.enabled", false)
	v.SetDefault("stats.cron", "0 0 * * * *")
}

// Module provides the loaded configuration and its sections, and applies
// the tenancy settings before anything opens the database.
var Module = fx.Module("conf",
	fx.Provide(Load),
	fx.Provide(func(cfg Config) server.Config { return cfg.APIServer }),
	fx.Provide(func(cfg Config) db.Config { return cfg.DB }),
	fx.Provide(func(cfg Config) biz.AuthConfig { return cfg.Auth }),
	fx.Provide(func(cfg Config) log.Config { return cfg.Log }),
	fx.Provide(func(cfg Config) tenancy.Config { return cfg.Tenancy }),
	fx.Provide(func(cfg Config) stats.Config { return cfg.Stats }),
	fx.Invoke(func(cfg Config) { tenancy.Configure(cfg.Tenancy) }),
)
