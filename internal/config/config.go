package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures the minimal settings required to boot the prediction service.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Model     ModelConfig     `yaml:"model"`
	Logging   LoggingConfig   `yaml:"logging"`
	Simulator SimulatorConfig `yaml:"simulator"`
}

// ServerConfig controls the HTTP listener behaviour.
type ServerConfig struct {
	Address         string        `yaml:"address"`
	MetricsAddress  string        `yaml:"metricsAddress"`
	GracefulTimeout time.Duration `yaml:"gracefulTimeout"`
	AllowedOrigins  []string      `yaml:"allowedOrigins"`
}

// ModelConfig locates the trained classifier and its feature schema.
type ModelConfig struct {
	Path         string `yaml:"path"`
	FeaturesPath string `yaml:"featuresPath"`
	Version      string `yaml:"version"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// SimulatorConfig controls the embedded live-topology simulator.
type SimulatorConfig struct {
	Enabled      bool          `yaml:"enabled"`
	TickInterval time.Duration `yaml:"tickInterval"`
}

// Load initialises Config from a YAML file and optional environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("MIRADOR_PREDICT_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	return &cfg, nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Address:         ":8080",
			MetricsAddress:  ":2112",
			GracefulTimeout: 10 * time.Second,
			AllowedOrigins:  []string{"*"},
		},
		Model: ModelConfig{
			Path:         "models/model.xgb",
			FeaturesPath: "models/features.txt",
			Version:      "xgboost_v1",
		},
		Logging: LoggingConfig{Level: "info", JSON: false},
		Simulator: SimulatorConfig{
			Enabled:      true,
			TickInterval: 2 * time.Second,
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MIRADOR_PREDICT_SERVER_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("MIRADOR_PREDICT_METRICS_ADDRESS"); v != "" {
		cfg.Server.MetricsAddress = v
	}
	if v := os.Getenv("MIRADOR_PREDICT_ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = strings.Split(v, ",")
	}
	if v := os.Getenv("MIRADOR_PREDICT_MODEL_PATH"); v != "" {
		cfg.Model.Path = v
	}
	if v := os.Getenv("MIRADOR_PREDICT_FEATURES_PATH"); v != "" {
		cfg.Model.FeaturesPath = v
	}
	if v := os.Getenv("MIRADOR_PREDICT_MODEL_VERSION"); v != "" {
		cfg.Model.Version = v
	}
	if v := os.Getenv("MIRADOR_PREDICT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("MIRADOR_PREDICT_LOG_FORMAT"); v == "json" {
		cfg.Logging.JSON = true
	}
	if v := os.Getenv("MIRADOR_PREDICT_SIMULATOR_ENABLED"); v != "" {
		cfg.Simulator.Enabled = strings.EqualFold(v, "true") || strings.EqualFold(v, "1")
	}
	if v := os.Getenv("MIRADOR_PREDICT_SIMULATOR_TICK"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Simulator.TickInterval = d
		}
	}
}
