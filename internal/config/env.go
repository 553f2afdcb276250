package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// EnvConfig holds overrides read from the environment. Zero values are unset.
type EnvConfig struct {
	Words    int    `env:"TYPESPEED_WORDS"`
	Duration int    `env:"TYPESPEED_DURATION"`
	WordList string `env:"TYPESPEED_WORDLIST"`
	Seed     int64  `env:"TYPESPEED_SEED"`
	Addr     string `env:"TYPESPEED_ADDR"`
	LogLevel string `env:"TYPESPEED_LOG_LEVEL"`
}

// LoadEnv loads the dotenv file, if present, and parses the environment.
// Variables already set in the process environment win over the file.
func LoadEnv(dotenv string) (EnvConfig, error) {
	if dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil && !os.IsNotExist(err) {
			return EnvConfig{}, fmt.Errorf("failed to load %s: %w", dotenv, err)
		}
	}
	var cfg EnvConfig
	if err := env.Parse(&cfg); err != nil {
		return EnvConfig{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

// Overlay copies every set value onto cfg.
func (e EnvConfig) Overlay(cfg *FileConfig) {
	if e.Words != 0 {
		cfg.Practice.Words = &e.Words
	}
	if e.Duration != 0 {
		cfg.Practice.Duration = &e.Duration
	}
	if e.WordList != "" {
		cfg.Practice.WordList = &e.WordList
	}
	if e.Seed != 0 {
		cfg.Practice.Seed = &e.Seed
	}
	if e.Addr != "" {
		cfg.Serve.Addr = &e.Addr
	}
	if e.LogLevel != "" {
		cfg.Log.Level = &e.LogLevel
	}
}
