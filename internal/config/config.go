// Package config loads didi settings from flags, the environment and an
// optional .didi.yaml file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"

	didierrors "github.com/toyz/didi/internal/errors"
	"github.com/toyz/didi/internal/logging"
	"github.com/toyz/didi/internal/parser"
)

const (
	// EnvPrefix prefixes environment overrides, e.g. DIDI_OUTPUT
	EnvPrefix = "DIDI"

	// FileName is the config file looked up in the working directory
	FileName = ".didi.yaml"
)

// Config holds all configuration options for didi
type Config struct {
	Directories []string      `mapstructure:"directories"`
	Module      string        `mapstructure:"module"`
	Output      string        `mapstructure:"output"`
	Fx          bool          `mapstructure:"fx"`
	Verbose     bool          `mapstructure:"verbose"`
	Quiet       bool          `mapstructure:"quiet"`
	LogLevel    string        `mapstructure:"log_level"`
	Strict      bool          `mapstructure:"strict"`
	Debounce    time.Duration `mapstructure:"debounce"`
}

// Defaults returns the configuration used when nothing is set
func Defaults() Config {
	return Config{
		Directories: []string{"./..."},
		Output:      parser.DefaultOutputFile,
		Fx:          true,
		LogLevel:    "info",
		Debounce:    500 * time.Millisecond,
	}
}

// SetDefaults registers Defaults with v
func SetDefaults(v *viper.Viper) {
	defaults := Defaults()
	v.SetDefault("directories", defaults.Directories)
	v.SetDefault("module", defaults.Module)
	v.SetDefault("output", defaults.Output)
	v.SetDefault("fx", defaults.Fx)
	v.SetDefault("verbose", defaults.Verbose)
	v.SetDefault("quiet", defaults.Quiet)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("strict", defaults.Strict)
	v.SetDefault("debounce", defaults.Debounce)
}

// Load reads configuration into a Config. path names an explicit config
// file, which must exist; otherwise .didi.yaml is read from the working
// directory when present. Flags bound to v take precedence over both.
func Load(v *viper.Viper, path string) (Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, ".yaml"))
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			if errors.Is(err, fs.ErrNotExist) {
				return Config{}, didierrors.WrapConfigurationError(path, "find", err).
					WithSuggestions("Check the --config path")
			}
			return Config{}, didierrors.WrapConfigurationError(configName(v, path), "read", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, didierrors.WrapConfigurationError(configName(v, path), "decode", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, didierrors.WrapConfigurationError(configName(v, path), "validate", err)
	}
	return cfg, nil
}

// Validate rejects values no command can run with
func (c Config) Validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Debounce <= 0 {
		return fmt.Errorf("debounce must be positive, got %s", c.Debounce)
	}
	if c.Verbose && c.Quiet {
		return fmt.Errorf("verbose and quiet cannot both be set")
	}
	if strings.ContainsAny(c.Output, `/\`) || !strings.HasSuffix(c.Output, ".go") {
		return fmt.Errorf("output must be a .go file name, got %q", c.Output)
	}
	return nil
}

func configName(v *viper.Viper, path string) string {
	if used := v.ConfigFileUsed(); used != "" {
		return used
	}
	if path != "" {
		return path
	}
	return FileName
}
