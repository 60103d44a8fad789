// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type QueueConfig struct {
	Stream string `yaml:"stream"`
	Group  string `yaml:"group"`
}

type AIConfig struct {
	Provider        string        `yaml:"provider"` // gemini | openai
	GeminiKey       string        `yaml:"gemini_key"`
	GeminiURL       string        `yaml:"gemini_url"`
	OpenAIKey       string        `yaml:"openai_key"`
	ExtractModel    string        `yaml:"extract_model"`
	SummaryModel    string        `yaml:"summary_model"`
	RequestTimeout  time.Duration `yaml:"request_timeout"` // model_request_timeout
	InputTokenLimit int           `yaml:"input_token_limit"`
}

type WorkerConfig struct {
	PoolSize                int           `yaml:"pool_size"`
	ClaimBlockTimeout       time.Duration `yaml:"claim_block_timeout"`
	RedeliveryIdleThreshold time.Duration `yaml:"redelivery_idle_threshold"`
	ExtractionRetryBudget   int           `yaml:"extraction_retry_budget"`
	SummarizeRetryBudget    int           `yaml:"summarize_retry_budget"`
}

type UploadConfig struct {
	MaxSizeBytes  int64  `yaml:"max_size_bytes"`
	DefaultParser string `yaml:"default_parser"`
}

type Config struct {
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
	Redis  RedisConfig  `yaml:"redis"`
	Queue  QueueConfig  `yaml:"queue"`
	AI     AIConfig     `yaml:"ai"`
	Worker WorkerConfig `yaml:"worker"`
	Upload UploadConfig `yaml:"upload"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Queue.Stream == "" {
		cfg.Queue.Stream = "documents:pending"
	}
	if cfg.Queue.Group == "" {
		cfg.Queue.Group = "document-workers"
	}
	if cfg.AI.Provider == "" {
		cfg.AI.Provider = "gemini"
	}
	if cfg.AI.ExtractModel == "" {
		cfg.AI.ExtractModel = "gemini-2.0-flash"
	}
	if cfg.AI.SummaryModel == "" {
		cfg.AI.SummaryModel = cfg.AI.ExtractModel
	}
	if cfg.AI.RequestTimeout <= 0 {
		cfg.AI.RequestTimeout = 60 * time.Second
	}
	if cfg.AI.InputTokenLimit <= 0 {
		cfg.AI.InputTokenLimit = 100_000
	}
	if cfg.Worker.PoolSize <= 0 {
		cfg.Worker.PoolSize = 4
	}
	if cfg.Worker.ClaimBlockTimeout <= 0 {
		cfg.Worker.ClaimBlockTimeout = 5 * time.Second
	}
	if cfg.Worker.RedeliveryIdleThreshold <= 0 {
		cfg.Worker.RedeliveryIdleThreshold = time.Minute
	}
	if cfg.Worker.ExtractionRetryBudget <= 0 {
		cfg.Worker.ExtractionRetryBudget = 3
	}
	if cfg.Worker.SummarizeRetryBudget <= 0 {
		cfg.Worker.SummarizeRetryBudget = 3
	}
	if cfg.Upload.MaxSizeBytes <= 0 {
		cfg.Upload.MaxSizeBytes = 32 << 20 // 32 MiB
	}
	if cfg.Upload.DefaultParser == "" {
		cfg.Upload.DefaultParser = "gemini"
	}

	// Minimal validation. Redis is optional only in dev mode, where the
	// in-memory queue and store take over.
	if cfg.Redis.URL == "" && !dev {
		return nil, errors.New("redis.url is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
