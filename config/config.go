package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/bellapacxx/bingo-sessions/utils/logger"
)

// Config holds every runtime setting of the service
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Log       LogConfig       `yaml:"log"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Game      GameConfig      `yaml:"game"`
}

type ServerConfig struct {
	Port           string   `yaml:"port" env:"PORT"`
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ORIGINS" envSeparator:","`
}

type DatabaseConfig struct {
	URL          string `yaml:"url" env:"DATABASE_URL"`
	MaxOpenConns int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
}

type LogConfig struct {
	Level    string `yaml:"level" env:"LOG_LEVEL"`
	Encoding string `yaml:"encoding" env:"LOG_ENCODING"`
}

// RateLimitConfig is applied per client IP
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps" env:"RATE_LIMIT_RPS"`
	Burst int     `yaml:"burst" env:"RATE_LIMIT_BURST"`
}

type GameConfig struct {
	WinPoints int `yaml:"win_points" env:"WIN_POINTS"`
}

// Default returns the settings used when nothing overrides them
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "4000",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Database:  DatabaseConfig{MaxOpenConns: 10},
		Log:       LogConfig{Level: "info", Encoding: "json"},
		RateLimit: RateLimitConfig{RPS: 20, Burst: 40},
		Game:      GameConfig{WinPoints: 3},
	}
}

// Load builds the configuration: defaults, then the YAML file (if any),
// then environment variables (including a .env file).
func Load(filename string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Info("[INFO] No .env file found, reading environment variables")
	}

	cfg := Default()

	if filename != "" {
		data, err := os.ReadFile(filename)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to unmarshal config: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
			logger.Infof("[INFO] Config file %s not found, using defaults and environment", filename)
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("DATABASE_URL is required in .env, environment or config file")
	}
	if c.Server.Port == "" {
		return errors.New("server port must not be empty")
	}
	if c.Game.WinPoints <= 0 {
		return fmt.Errorf("win points must be positive, got %d", c.Game.WinPoints)
	}
	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		return errors.New("rate limit rps and burst must be positive")
	}
	if c.Database.MaxOpenConns <= 0 {
		return errors.New("database max_open_conns must be positive")
	}
	return nil
}
