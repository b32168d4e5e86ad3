package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/gorm/logger"
)

// StoreConfig holds the annotation database configuration
type StoreConfig struct {
	// Path overrides the database location. When empty the database lives in
	// Dir below $HOME, or below the working directory in debug mode.
	Path     string `mapstructure:"path"      yaml:"path"`
	Dir      string `mapstructure:"dir"       yaml:"dir"`
	File     string `mapstructure:"file"      yaml:"file"`
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

// DatabasePath returns the file the annotation database is stored in.
func (c StoreConfig) DatabasePath(debug bool) (string, error) {
	if c.Path != "" {
		return c.Path, nil
	}

	base := "."
	if !debug {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to determine home directory: %w", err)
		}
		base = home
	}

	return filepath.Join(base, c.Dir, c.File), nil
}

// ParseStoreLogLevel maps a configured level onto the gorm logger levels.
func ParseStoreLogLevel(level string) (logger.LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "silent":
		return logger.Silent, nil
	case "error":
		return logger.Error, nil
	case "warn", "warning":
		return logger.Warn, nil
	case "info":
		return logger.Info, nil
	default:
		return logger.Silent, fmt.Errorf("unknown level '%s'", level)
	}
}
