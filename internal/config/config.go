// Application configuration from an optional YAML file and IMGPIPE_* environment variables
package config

import (
	"fmt"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const EnvPrefix = "IMGPIPE"

type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Quantize QuantizeConfig `mapstructure:"quantize"`
	Display  DisplayConfig  `mapstructure:"display"`
	Window   WindowConfig   `mapstructure:"window"`
}

type LogConfig struct {
	Level      string `mapstructure:"level" default:"info" validate:"oneof=trace debug info warn warning error"`
	Format     string `mapstructure:"format" default:"json" validate:"oneof=json text"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" default:"10" validate:"min=1"`
	MaxBackups int    `mapstructure:"max_backups" default:"3" validate:"min=0"`
	MaxAgeDays int    `mapstructure:"max_age_days" default:"28" validate:"min=0"`
	Compress   bool   `mapstructure:"compress"`
}

type QuantizeConfig struct {
	MaxIterations int `mapstructure:"max_iterations" default:"300" validate:"min=1,max=100000"`
	// Seed pins k-means initialization; 0 leaves runs unseeded
	Seed int64 `mapstructure:"seed"`
}

type DisplayConfig struct {
	PreviewMaxWidth  int `mapstructure:"preview_max_width" default:"1024" validate:"min=16"`
	PreviewMaxHeight int `mapstructure:"preview_max_height" default:"768" validate:"min=16"`
}

type WindowConfig struct {
	Width  int `mapstructure:"width" default:"1280" validate:"min=320"`
	Height int `mapstructure:"height" default:"860" validate:"min=240"`
}

// Default returns the configuration with every default applied
func Default() (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("failed to set defaults: %w", err)
	}
	return cfg, nil
}

// Load reads path (optional) and the environment on top of the defaults
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	registerDefaults(v, cfg)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// registerDefaults makes every key known to viper so environment variables
// are honoured by Unmarshal even without a config file
func registerDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("log.file", cfg.Log.File)
	v.SetDefault("log.max_size_mb", cfg.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", cfg.Log.MaxBackups)
	v.SetDefault("log.max_age_days", cfg.Log.MaxAgeDays)
	v.SetDefault("log.compress", cfg.Log.Compress)

	v.SetDefault("quantize.max_iterations", cfg.Quantize.MaxIterations)
	v.SetDefault("quantize.seed", cfg.Quantize.Seed)

	v.SetDefault("display.preview_max_width", cfg.Display.PreviewMaxWidth)
	v.SetDefault("display.preview_max_height", cfg.Display.PreviewMaxHeight)

	v.SetDefault("window.width", cfg.Window.Width)
	v.SetDefault("window.height", cfg.Window.Height)
}
