// Package config loads memlane settings from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/poiesic/memlane/ai"
	"gopkg.in/yaml.v3"
)

// Config is the complete runtime configuration.
type Config struct {
	Database struct {
		Path     string `yaml:"path"`
		InMemory bool   `yaml:"in_memory"`
	} `yaml:"database"`
	Server struct {
		Addr            string        `yaml:"addr"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	AI struct {
		Live            bool          `yaml:"live"`
		EmbeddingHost   string        `yaml:"embedding_host"`
		GenerationHost  string        `yaml:"generation_host"`
		EmbeddingModel  string        `yaml:"embedding_model"`
		GenerationModel string        `yaml:"generation_model"`
		APIKey          string        `yaml:"api_key"`
		RequestTimeout  time.Duration `yaml:"request_timeout"`
	} `yaml:"ai"`
	Pipeline struct {
		Workers         int `yaml:"workers"`
		QueueSize       int `yaml:"queue_size"`
		QuickInputLimit int `yaml:"quick_input_limit"`
		KeywordLimit    int `yaml:"keyword_limit"`
	} `yaml:"pipeline"`
	Search struct {
		Threshold float64 `yaml:"threshold"`
	} `yaml:"search"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Environment variables read by Load. They override file values.
const (
	EnvDatabasePath    = "MEMLANE_DB"
	EnvServerAddr      = "MEMLANE_ADDR"
	EnvLive            = "MEMLANE_LIVE"
	EnvAPIKey          = "MEMLANE_API_KEY"
	EnvOpenAIAPIKey    = "OPENAI_API_KEY"
	EnvEmbeddingHost   = "MEMLANE_EMBEDDING_HOST"
	EnvGenerationHost  = "MEMLANE_GENERATION_HOST"
	EnvEmbeddingModel  = "MEMLANE_EMBEDDING_MODEL"
	EnvGenerationModel = "MEMLANE_GENERATION_MODEL"
	EnvLogLevel        = "MEMLANE_LOG_LEVEL"
)

// Default returns the built-in configuration.
func Default() *Config {
	aiDefaults := ai.DefaultConfig()

	var cfg Config
	cfg.Database.Path = "memlane.db"
	cfg.Server.Addr = ":8080"
	cfg.Server.ReadTimeout = 15 * time.Second
	cfg.Server.WriteTimeout = 30 * time.Second
	cfg.Server.ShutdownTimeout = 30 * time.Second
	cfg.AI.Live = aiDefaults.Live
	cfg.AI.EmbeddingHost = aiDefaults.EmbeddingHost
	cfg.AI.GenerationHost = aiDefaults.GenerationHost
	cfg.AI.EmbeddingModel = aiDefaults.EmbeddingModel
	cfg.AI.GenerationModel = aiDefaults.GenerationModel
	cfg.AI.RequestTimeout = aiDefaults.RequestTimeout
	cfg.Pipeline.Workers = 2
	cfg.Pipeline.QueueSize = 64
	cfg.Pipeline.QuickInputLimit = 2000
	cfg.Pipeline.KeywordLimit = 8
	cfg.Search.Threshold = 0.5
	cfg.Log.Level = "info"
	return &cfg
}

// Load builds a Config from the defaults, then the YAML file at path (skipped
// when path is empty or the file does not exist), then the environment.
// A .env file in the working directory is loaded into the environment first.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("error reading .env file", "err", err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			slog.Debug("config file not found, using defaults", "path", path)
		case err != nil:
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString(&c.Database.Path, EnvDatabasePath)
	setString(&c.Server.Addr, EnvServerAddr)
	setString(&c.AI.APIKey, EnvOpenAIAPIKey)
	setString(&c.AI.APIKey, EnvAPIKey)
	setString(&c.AI.EmbeddingHost, EnvEmbeddingHost)
	setString(&c.AI.GenerationHost, EnvGenerationHost)
	setString(&c.AI.EmbeddingModel, EnvEmbeddingModel)
	setString(&c.AI.GenerationModel, EnvGenerationModel)
	setString(&c.Log.Level, EnvLogLevel)

	if v := os.Getenv(EnvLive); v != "" {
		live, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvLive, err)
		}
		c.AI.Live = live
	}
	return nil
}

// AIConfig converts the AI section into an ai.Config.
func (c *Config) AIConfig() *ai.Config {
	return ai.NewConfig(
		ai.WithLive(c.AI.Live),
		ai.WithEmbeddingHost(c.AI.EmbeddingHost),
		ai.WithGenerationHost(c.AI.GenerationHost),
		ai.WithEmbeddingModel(c.AI.EmbeddingModel),
		ai.WithGenerationModel(c.AI.GenerationModel),
		ai.WithAPIKey(c.AI.APIKey),
		ai.WithRequestTimeout(c.AI.RequestTimeout),
	)
}

// LogLevel parses the configured log level, defaulting to info.
func (c *Config) LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}
