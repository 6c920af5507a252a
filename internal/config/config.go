// Package config loads application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Environment names accepted in APP_ENV.
const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"
)

// DefaultEnvFile is read by Load when present. Variables already set in the
// process environment take precedence over the file.
const DefaultEnvFile = ".env"

var (
	classicTokenPattern     = regexp.MustCompile(`^gh[ops]_[A-Za-z0-9]{36}$`)
	fineGrainedTokenPattern = regexp.MustCompile(`^github_pat_[A-Za-z0-9_]{22,}$`)
)

// ErrMissingGitHubToken is returned by ValidateGitHubToken when GITHUB_TOKEN is unset.
var ErrMissingGitHubToken = errors.New("GITHUB_TOKEN is required")

// Config holds the application configuration loaded from environment variables.
type Config struct {
	GitHubToken           string `env:"GITHUB_TOKEN"`
	LogLevel              string `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv                string `env:"APP_ENV" envDefault:"development"`
	DBPath                string `env:"DB_PATH" envDefault:"reviewdigest.db"`
	GitHubWaitOnRateLimit bool   `env:"GITHUB_WAIT_ON_RATE_LIMIT" envDefault:"false"`
}

// IsDevelopment reports whether APP_ENV selects the development profile.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == EnvDevelopment
}

// Load reads configuration from DefaultEnvFile (if it exists) and the process
// environment, then validates LOG_LEVEL and APP_ENV. GITHUB_TOKEN is not
// checked here; commands that call GitHub use ValidateGitHubToken.
func Load() (*Config, error) {
	return LoadFile(DefaultEnvFile)
}

// LoadFile is Load with an explicit dotenv path. A missing file is not an error.
func LoadFile(envFile string) (*Config, error) {
	if envFile != "" {
		if err := loadDotEnv(envFile); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.AppEnv = strings.ToLower(strings.TrimSpace(cfg.AppEnv))

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func loadDotEnv(path string) error {
	vars, err := godotenv.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	for k, v := range vars {
		if _, exists := os.LookupEnv(k); !exists {
			if err := os.Setenv(k, v); err != nil {
				return fmt.Errorf("set %s from %s: %w", k, path, err)
			}
		}
	}

	return nil
}

func (c *Config) validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL has invalid value %q: want debug, info, warn or error", c.LogLevel)
	}

	switch c.AppEnv {
	case EnvDevelopment, EnvTest, EnvProduction:
	default:
		return fmt.Errorf("APP_ENV has invalid value %q: want development, test or production", c.AppEnv)
	}

	if strings.TrimSpace(c.DBPath) == "" {
		return errors.New("DB_PATH must not be empty")
	}

	return nil
}

// ValidateGitHubToken checks that GITHUB_TOKEN is set and looks like a classic
// (ghp_, gho_, ghs_) or fine-grained (github_pat_) personal access token.
func (c *Config) ValidateGitHubToken() error {
	if c.GitHubToken == "" {
		return ErrMissingGitHubToken
	}
	if classicTokenPattern.MatchString(c.GitHubToken) || fineGrainedTokenPattern.MatchString(c.GitHubToken) {
		return nil
	}
	return errors.New("GITHUB_TOKEN has an unrecognized format: want a ghp_, gho_, ghs_ or github_pat_ token")
}
