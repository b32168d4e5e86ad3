package config

type ResolverConfig struct {
	Symlinks     string `mapstructure:"symlinks"     yaml:"symlinks"`
	Canonicalize bool   `mapstructure:"canonicalize" yaml:"canonicalize"`
}

type ListingConfig struct {
	ShowHidden bool     `mapstructure:"show_hidden" yaml:"show_hidden"`
	Ignore     []string `mapstructure:"ignore"      yaml:"ignore"`
}
