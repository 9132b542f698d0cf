// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice PracticeConfig `toml:"practice"`
	Stats    StatsConfig    `toml:"stats"`
	Server   ServerConfig   `toml:"server"`
	Log      LogConfig      `toml:"log"`
	DBPath   *string        `toml:"db-path"`
}

// PracticeConfig maps practice-related settings.
type PracticeConfig struct {
	Duration   *int     `toml:"duration"`
	Difficulty *string  `toml:"difficulty"`
	Lang       *string  `toml:"lang"`
	Mode       *string  `toml:"mode"`
	User       *string  `toml:"user"`
	Wordlist   *string  `toml:"wordlist"`
	Notify     *bool    `toml:"notify"`
	CapsPct    *float64 `toml:"caps"`
	PunctPct   *float64 `toml:"punct"`
	PunctSet   *string  `toml:"punct-set"`
}

// StatsConfig maps progress screen settings.
type StatsConfig struct {
	Granularity *string `toml:"granularity"`
}

// ServerConfig maps HTTP API settings.
type ServerConfig struct {
	Addr           *string  `toml:"addr"`
	AllowedOrigins []string `toml:"allowed-origins"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level *string `toml:"level"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
