// Package config loads CLI configuration from flags, environment
// variables and an optional config file.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	Scenario string
	Snapshot string
	PgDSN    string
	BinStep  uint64
	MaxBins  int
	LogLevel string
}

// Load merges config file, environment variables, and flags into Config.
// Flags win over the environment, the environment wins over the file.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DLMM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("bin-step", uint64(100))
	v.SetDefault("max-bins", 4)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	return Config{
		Scenario: v.GetString("scenario"),
		Snapshot: v.GetString("snapshot"),
		PgDSN:    v.GetString("pg-dsn"),
		BinStep:  v.GetUint64("bin-step"),
		MaxBins:  v.GetInt("max-bins"),
		LogLevel: v.GetString("log-level"),
	}, nil
}
