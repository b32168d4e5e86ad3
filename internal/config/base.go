package config

import (
	"fmt"

	"github.com/gobwas/glob"
	"github.com/mwantia/filechest/pkg/fileref"
	"github.com/spf13/viper"
)

type BaseConfig struct {
	// Debug keeps the database in the current directory instead of $HOME.
	Debug           bool   `mapstructure:"debug"            yaml:"debug"`
	ShutdownTimeout string `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`

	Log      LogConfig      `mapstructure:"log"      yaml:"log"`
	Store    StoreConfig    `mapstructure:"store"    yaml:"store"`
	Resolver ResolverConfig `mapstructure:"resolver" yaml:"resolver"`
	Listing  ListingConfig  `mapstructure:"listing"  yaml:"listing"`
}

func LoadConfig() (*BaseConfig, error) {
	cfg := &BaseConfig{}

	setDefaults()

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks the values that cannot be checked by unmarshalling alone.
func (c *BaseConfig) Validate() error {
	if _, err := fileref.ParseSymlinkPolicy(c.Resolver.Symlinks); err != nil {
		return fmt.Errorf("resolver.symlinks: %w", err)
	}

	for _, pattern := range c.Listing.Ignore {
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("listing.ignore: invalid pattern '%s': %w", pattern, err)
		}
	}

	if _, err := ParseStoreLogLevel(c.Store.LogLevel); err != nil {
		return fmt.Errorf("store.log_level: %w", err)
	}

	return nil
}
