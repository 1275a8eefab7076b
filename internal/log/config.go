package log

// Config configures the global logger.
type Config struct {
	// Name is the logger name, attached to every entry.
	Name string `conf:"name" yaml:"name" json:"name"`

	// Level is the minimum level to emit: debug, info, warn or error.
	Level string `conf:"level" yaml:"level" json:"level"`

	// Format selects the encoder: json or console.
	Format string `conf:"format" yaml:"format" json:"format"`
}

func (c Config) withDefaults() Config {
	if c.Level == "" {
		c.Level = "info"
	}

	if c.Format == "" {
		c.Format = "console"
	}

	return c
}
