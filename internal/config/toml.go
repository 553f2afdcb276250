// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file. Nil fields are unset.
type FileConfig struct {
	Practice PracticeConfig `toml:"practice"`
	Serve    ServeConfig    `toml:"serve"`
	Log      LogConfig      `toml:"log"`
}

// PracticeConfig maps practice-related settings.
type PracticeConfig struct {
	Words    *int    `toml:"words"`
	Duration *int    `toml:"duration"`
	WordList *string `toml:"wordlist"`
	Seed     *int64  `toml:"seed"`
}

// ServeConfig maps settings of the websocket bridge.
type ServeConfig struct {
	Addr *string `toml:"addr"`
}

// LogConfig maps logger settings.
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
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Load reads the TOML file at path and overlays TYPESPEED_* variables from the
// environment and the dotenv file. An empty dotenv skips the file.
func Load(path, dotenv string) (FileConfig, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return FileConfig{}, err
	}
	envCfg, err := LoadEnv(dotenv)
	if err != nil {
		return FileConfig{}, err
	}
	envCfg.Overlay(&cfg)
	return cfg, nil
}
