package config

import "github.com/spf13/viper"

func GetDefault() BaseConfig {
	return BaseConfig{
		Debug:           false,
		ShutdownTimeout: "5s",

		Log: LogConfig{
			Level:      "WARN",
			TimeFormat: "2006-01-02 15:04:05",
			File:       "",
			NoColor:    false,
			JSON:       false,
			NoTerminal: false,
			Rotation: LogRotationConfig{
				MaxSize:    16,
				MaxBackups: 3,
				MaxAge:     28,
				Compress:   false,
			},
		},

		Store: StoreConfig{
			Path:     "",
			Dir:      ".filechest",
			File:     "filechest.db",
			LogLevel: "silent",
		},

		Resolver: ResolverConfig{
			Symlinks:     "nofollow",
			Canonicalize: false,
		},

		Listing: ListingConfig{
			ShowHidden: false,
			Ignore:     []string{},
		},
	}
}

func setDefaults() {
	defaults := GetDefault()

	viper.SetDefault("debug", defaults.Debug)
	viper.SetDefault("shutdown_timeout", defaults.ShutdownTimeout)

	viper.SetDefault("log.level", defaults.Log.Level)
	viper.SetDefault("log.time_format", defaults.Log.TimeFormat)
	viper.SetDefault("log.file", defaults.Log.File)
	viper.SetDefault("log.no_color", defaults.Log.NoColor)
	viper.SetDefault("log.json", defaults.Log.JSON)
	viper.SetDefault("log.no_terminal", defaults.Log.NoTerminal)
	viper.SetDefault("log.rotation.max_size", defaults.Log.Rotation.MaxSize)
	viper.SetDefault("log.rotation.max_backups", defaults.Log.Rotation.MaxBackups)
	viper.SetDefault("log.rotation.max_age", defaults.Log.Rotation.MaxAge)
	viper.SetDefault("log.rotation.compress", defaults.Log.Rotation.Compress)

	viper.SetDefault("store.path", defaults.Store.Path)
	viper.SetDefault("store.dir", defaults.Store.Dir)
	viper.SetDefault("store.file", defaults.Store.File)
	viper.SetDefault("store.log_level", defaults.Store.LogLevel)

	viper.SetDefault("resolver.symlinks", defaults.Resolver.Symlinks)
	viper.SetDefault("resolver.canonicalize", defaults.Resolver.Canonicalize)

	viper.SetDefault("listing.show_hidden", defaults.Listing.ShowHidden)
	viper.SetDefault("listing.ignore", defaults.Listing.Ignore)
}
