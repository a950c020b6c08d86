// Package config loads taskstore's runtime configuration from a YAML
// file and environment overrides via github.com/spf13/viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the fully-resolved runtime configuration for one taskstore
// invocation.
type Config struct {
	// DebounceMs is how long the background exporter waits after the
	// last write before calling Sync (internal/export).
	DebounceMs int `mapstructure:"debounce_ms" yaml:"debounce_ms"`

	// AutoExport enables the background debounced exporter.
	AutoExport bool `mapstructure:"auto_export" yaml:"auto_export"`

	// StorePath is the store directory, relative to the working
	// directory unless absolute.
	StorePath string `mapstructure:"store_path" yaml:"store_path"`

	// LogLevel is one of debug/info/warn/error.
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`

	// LogFile, if set, routes logs through a rotating file sink
	// instead of stderr.
	LogFile string `mapstructure:"log_file" yaml:"log_file,omitempty"`

	// WriteMutex enables store.WithWriteMutex() as an opt-in rather
	// than a default.
	WriteMutex bool `mapstructure:"write_mutex" yaml:"write_mutex"`
}

func defaults() Config {
	return Config{
		DebounceMs: 5000,
		AutoExport: false,
		StorePath:  ".taskstore",
		LogLevel:   "info",
		WriteMutex: false,
	}
}

// Load reads taskstore.yaml from configDir (if present), applies
// TASKSTORE_*-prefixed environment overrides, and returns the merged
// configuration. A missing config file is not an error: defaults apply.
func Load(configDir string) (Config, error) {
	cfg := defaults()

	v := viper.New()
	v.SetConfigName("taskstore")
	v.SetConfigType("yaml")
	if configDir != "" {
		v.AddConfigPath(configDir)
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix("taskstore")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("debounce_ms", cfg.DebounceMs)
	v.SetDefault("auto_export", cfg.AutoExport)
	v.SetDefault("store_path", cfg.StorePath)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("log_file", cfg.LogFile)
	v.SetDefault("write_mutex", cfg.WriteMutex)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
	}

	var out Config
	if err := v.Unmarshal(&out); err != nil {
		return Config{}, err
	}
	return out, nil
}

// WriteDefault writes a commented-free taskstore.yaml with default
// values to configDir, refusing to overwrite an existing file. Unlike
// Load, which goes through viper, this marshals the struct directly
// since there is nothing to merge yet.
func WriteDefault(configDir string) error {
	path := filepath.Join(configDir, "taskstore.yaml")
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config: %s already exists", path)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("config: stat %s: %w", path, err)
	}

	data, err := yaml.Marshal(defaults())
	if err != nil {
		return fmt.Errorf("config: marshal defaults: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
