// Package config loads scan settings from defaults, an optional YAML file,
// GPTSCAN_ environment variables and command line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ostafen/gptscan/internal/env"
	"github.com/ostafen/gptscan/internal/gpt"
	"github.com/ostafen/gptscan/pkg/util/format"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	KeyMaxPartitions         = "max-partitions"
	KeyPartitionIntersection = "partition-intersection"
	KeyAllMatch              = "all-match"
	KeySectorSize            = "sector-size"
	KeyBufferSize            = "buffer-size"
	KeyLogLevel              = "log-level"
	KeyLogFile               = "log-file"
	KeySignatures            = "signatures"
	KeyPlugins               = "plugins"
	KeyReport                = "report"
	KeyNoProgress            = "no-progress"
)

const EnvPrefix = "GPTSCAN"

type Config struct {
	MaxPartitions         uint32   `mapstructure:"max-partitions"`
	PartitionIntersection bool     `mapstructure:"partition-intersection"`
	AllMatch              bool     `mapstructure:"all-match"`
	SectorSize            uint64   `mapstructure:"sector-size"`
	BufferSize            string   `mapstructure:"buffer-size"`
	LogLevel              string   `mapstructure:"log-level"`
	LogFile               string   `mapstructure:"log-file"`
	Signatures            string   `mapstructure:"signatures"`
	Plugins               []string `mapstructure:"plugins"`
	Report                string   `mapstructure:"report"`
	NoProgress            bool     `mapstructure:"no-progress"`
}

// New returns a viper instance carrying the default settings and reading
// GPTSCAN_ prefixed environment variables, with dashes mapped to
// underscores (GPTSCAN_MAX_PARTITIONS).
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault(KeyMaxPartitions, gpt.DefaultMaxPartitions)
	v.SetDefault(KeyPartitionIntersection, false)
	v.SetDefault(KeyAllMatch, false)
	v.SetDefault(KeySectorSize, 0)
	v.SetDefault(KeyBufferSize, "1MB")
	v.SetDefault(KeyLogLevel, "INFO")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeySignatures, "")
	v.SetDefault(KeyPlugins, []string{})
	v.SetDefault(KeyReport, "")
	v.SetDefault(KeyNoProgress, false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// BindFlags makes the flags of a command override every other source.
// Flags are matched to settings by name.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	if err := v.BindPFlags(flags); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}
	return nil
}

// Load reads the configuration file, if any, and decodes the settings.
// With an empty cfgFile, gptscan.yaml is searched in the working
// directory, $HOME/.gptscan and /etc/gptscan; not finding it is not an
// error. An explicitly given file must exist.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(env.AppName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/." + env.AppName)
		v.AddConfigPath("/etc/" + env.AppName)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if _, err := c.BufferBytes(); err != nil {
		return err
	}
	if c.SectorSize != 0 && !gpt.ValidSectorSize(c.SectorSize) {
		return fmt.Errorf("invalid %s %d: must be 0 or one of %v", KeySectorSize, c.SectorSize, gpt.SectorSizes)
	}
	return nil
}

// BufferBytes parses the human readable buffer size.
func (c *Config) BufferBytes() (int, error) {
	n, err := format.ParseBytes(c.BufferSize)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", KeyBufferSize, c.BufferSize, err)
	}
	if n == 0 || n > 1<<30 {
		return 0, fmt.Errorf("invalid %s %q: must be between 1B and 1GB", KeyBufferSize, c.BufferSize)
	}
	return int(n), nil
}

// ScanOptions maps the settings to the engine options. The logger and
// tracker factory are left to the caller.
func (c *Config) ScanOptions() gpt.Options {
	return gpt.Options{
		SectorSize:          c.SectorSize,
		MaxPartitions:       c.MaxPartitions,
		DetectIntersections: c.PartitionIntersection,
		AllMatches:          c.AllMatch,
	}
}
