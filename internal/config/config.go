package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type AdminConfig struct {
	Password     string        `yaml:"password"`
	JWTSecret    string        `yaml:"jwt_secret"`
	SessionTTL   time.Duration `yaml:"session_ttl"`
	SecureCookie bool          `yaml:"secure_cookie"`
	CookieDomain string        `yaml:"cookie_domain"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int    `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"` // reply cache TTL
}

type AIConfig struct {
	OpenAIKey       string `yaml:"openai_key"`
	GeminiKey       string `yaml:"gemini_key"`
	DefaultModel    string `yaml:"default_model"`
	ConcurrentLimit int    `yaml:"concurrent_limit"` // max concurrent AI calls
	SystemPrompt    string `yaml:"system_prompt"`
	HistoryTurns    int    `yaml:"history_turns"`
	MaxPromptTokens int    `yaml:"max_prompt_tokens"`
}

type NotifyConfig struct {
	Mode            string        `yaml:"mode"` // telegram | webhook | noop
	TelegramToken   string        `yaml:"telegram_token"`
	TelegramChatID  int64         `yaml:"telegram_chat_id"`
	WebhookURL      string        `yaml:"webhook_url"`
	DispatchTimeout time.Duration `yaml:"dispatch_timeout"`
	RetryInterval   time.Duration `yaml:"retry_interval"`
	RetryBatch      int           `yaml:"retry_batch"`
}

type FlowConfig struct {
	StateTTL       time.Duration `yaml:"state_ttl"`       // conversation state expiry
	RetentionDays  int           `yaml:"retention_days"`  // chat turn retention
	ReaperInterval time.Duration `yaml:"reaper_interval"` // how often old turns are pruned
	EventWorkers   int           `yaml:"event_workers"`   // async analytics writers
}

type SecurityConfig struct {
	EncryptionKey string `yaml:"encryption_key"` // 16/24/32 bytes; empty disables at-rest encryption
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Admin    AdminConfig    `yaml:"admin"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	AI       AIConfig       `yaml:"ai"`
	Notify   NotifyConfig   `yaml:"notify"`
	Flow     FlowConfig     `yaml:"flow"`
	Security SecurityConfig `yaml:"security"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig() (*Config, error) {
	var configPath string
	var dev bool
	flag.StringVar(&configPath, "config", "config.yaml", "path to config yaml")
	flag.BoolVar(&dev, "dev", false, "development mode")
	flag.Parse()

	b, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.Admin.Password != "" && cfg.Admin.JWTSecret == "" {
		return nil, errors.New("admin.jwt_secret is required when admin.password is set")
	}
	switch cfg.Notify.Mode {
	case "telegram":
		if cfg.Notify.TelegramToken == "" || cfg.Notify.TelegramChatID == 0 {
			return nil, errors.New("notify.telegram_token and notify.telegram_chat_id are required in telegram mode")
		}
	case "webhook":
		if cfg.Notify.WebhookURL == "" {
			return nil, errors.New("notify.webhook_url is required in webhook mode")
		}
	case "", "noop":
		// ok
	default:
		return nil, fmt.Errorf("notify.mode %q is not one of telegram|webhook|noop", cfg.Notify.Mode)
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = 10 * time.Second
	}
	if cfg.Server.WriteTimeout <= 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		cfg.Server.ShutdownTimeout = 15 * time.Second
	}
	if cfg.Admin.SessionTTL <= 0 {
		cfg.Admin.SessionTTL = 30 * time.Minute
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.Redis.TTL <= 0 {
		cfg.Redis.TTL = time.Hour
	}
	if cfg.AI.DefaultModel == "" {
		cfg.AI.DefaultModel = "gpt-4o-mini"
	}
	if cfg.AI.ConcurrentLimit <= 0 {
		cfg.AI.ConcurrentLimit = 8
	}
	if cfg.AI.HistoryTurns <= 0 {
		cfg.AI.HistoryTurns = 12
	}
	if cfg.AI.MaxPromptTokens <= 0 {
		cfg.AI.MaxPromptTokens = 3000
	}
	if cfg.Notify.DispatchTimeout <= 0 {
		cfg.Notify.DispatchTimeout = 10 * time.Second
	}
	if cfg.Notify.RetryInterval <= 0 {
		cfg.Notify.RetryInterval = 5 * time.Minute
	}
	if cfg.Notify.RetryBatch <= 0 {
		cfg.Notify.RetryBatch = 20
	}
	if cfg.Flow.StateTTL <= 0 {
		cfg.Flow.StateTTL = 15 * time.Minute
	}
	if cfg.Flow.RetentionDays <= 0 {
		cfg.Flow.RetentionDays = 90
	}
	if cfg.Flow.ReaperInterval <= 0 {
		cfg.Flow.ReaperInterval = 6 * time.Hour
	}
	if cfg.Flow.EventWorkers <= 0 {
		cfg.Flow.EventWorkers = 4
	}
}
