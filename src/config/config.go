package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const configFileEnv = "CONFIG_FILE"

const (
	BackendLocal     = "local"
	BackendSageMaker = "sagemaker"
)

// Config holds process settings. Values come from an optional YAML file named by
// CONFIG_FILE and are then overridden by environment variables.
type Config struct {
	AppEnv   string     `yaml:"app_env"`
	LogLevel slog.Level `yaml:"-"`
	HTTPAddr string     `yaml:"http_addr"`

	AWSRegion        string `yaml:"aws_region"`
	DynamoDBTable    string `yaml:"dynamodb_table"`
	DynamoDBIndex    string `yaml:"dynamodb_index"`
	DynamoDBEndpoint string `yaml:"dynamodb_endpoint"`

	ScalerPath            string `yaml:"scaler_path"`
	ModelPath             string `yaml:"model_path"`
	ModelBackend          string `yaml:"model_backend"`
	SageMakerEndpointName string `yaml:"sagemaker_endpoint_name"`

	Timezone        string        `yaml:"timezone"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	logLevel string `yaml:"-"`
}

// fileConfig mirrors Config for YAML decoding; LogLevel is kept as text there.
type fileConfig struct {
	Config   `yaml:",inline"`
	LogLevel string `yaml:"log_level"`
}

func defaults() Config {
	return Config{
		AppEnv:          "dev",
		HTTPAddr:        ":8080",
		AWSRegion:       "ap-southeast-3",
		DynamoDBIndex:   "kode_pos-timestamp-index",
		ScalerPath:      "model/scaler.json",
		ModelPath:       "model/classifier.json",
		ModelBackend:    BackendLocal,
		Timezone:        "Local",
		ShutdownTimeout: 10 * time.Second,
		logLevel:        "info",
	}
}

// Load builds the Config from CONFIG_FILE (if set) and the environment.
func Load() (Config, error) {
	cfg := defaults()

	if path := strings.TrimSpace(os.Getenv(configFileEnv)); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	overrideFromEnv(&cfg)

	level, err := parseLogLevel(cfg.logLevel)
	if err != nil {
		return Config{}, err
	}
	cfg.LogLevel = level

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read file: %w", err)
	}

	fc := fileConfig{Config: *cfg, LogLevel: cfg.logLevel}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("config: decode yaml: %w", err)
	}

	*cfg = fc.Config
	cfg.logLevel = fc.LogLevel
	return nil
}

func overrideFromEnv(cfg *Config) {
	setString(&cfg.AppEnv, "APP_ENV")
	setString(&cfg.logLevel, "LOG_LEVEL")
	setString(&cfg.HTTPAddr, "HTTP_ADDR")
	setString(&cfg.AWSRegion, "AWS_REGION")
	setString(&cfg.DynamoDBTable, "DYNAMODB_TABLE")
	setString(&cfg.DynamoDBIndex, "DYNAMODB_INDEX")
	setString(&cfg.DynamoDBEndpoint, "DYNAMODB_ENDPOINT")
	setString(&cfg.ScalerPath, "SCALER_PATH")
	setString(&cfg.ModelPath, "MODEL_PATH")
	setString(&cfg.ModelBackend, "MODEL_BACKEND")
	setString(&cfg.SageMakerEndpointName, "SAGEMAKER_ENDPOINT_NAME")
	setString(&cfg.Timezone, "TIMEZONE")

	if v := strings.TrimSpace(os.Getenv("SHUTDOWN_TIMEOUT")); v != "" {
		// -1 fails validate with "invalid SHUTDOWN_TIMEOUT".
		d, err := time.ParseDuration(v)
		if err != nil {
			d = -1
		}
		cfg.ShutdownTimeout = d
	}
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func (c Config) validate() error {
	switch c.AppEnv {
	case "dev", "prod":
	default:
		return fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", c.AppEnv)
	}

	if c.DynamoDBTable == "" {
		return errors.New("DYNAMODB_TABLE is required")
	}
	if c.DynamoDBIndex == "" {
		return errors.New("DYNAMODB_INDEX must not be empty")
	}

	switch c.ModelBackend {
	case BackendLocal:
		if c.ModelPath == "" {
			return errors.New("MODEL_PATH is required for the local model backend")
		}
	case BackendSageMaker:
		if c.SageMakerEndpointName == "" {
			return errors.New("SAGEMAKER_ENDPOINT_NAME is required for the sagemaker model backend")
		}
	default:
		return fmt.Errorf("invalid MODEL_BACKEND %q (allowed: local, sagemaker)", c.ModelBackend)
	}

	if c.ScalerPath == "" {
		return errors.New("SCALER_PATH is required")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("invalid SHUTDOWN_TIMEOUT")
	}
	if _, err := c.Location(); err != nil {
		return err
	}

	return nil
}

// Location resolves Timezone; "Local" and "" mean the process local zone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
