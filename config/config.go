package config

import (
	"fmt"
	"os"
	"time"

	"sprintcoach/pkg/circuitbreaker"
	"sprintcoach/pkg/config"
)

// Config is the application configuration shared by the api, worker and admin binaries.
type Config struct {
	Env    string              `yaml:"env"`
	Log    LogConfig           `yaml:"log"`
	DB     config.DBConfig     `yaml:"db"`
	MQ     config.MQConfig     `yaml:"mq"`
	Redis  config.RedisConfig  `yaml:"redis"`
	JWT    config.JWTConfig    `yaml:"jwt"`
	Server config.ServerConfig `yaml:"server"`
	Otel   config.OtelConfig   `yaml:"otel"`

	Score     ScoreConfig     `yaml:"score"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Auth      AuthConfig      `yaml:"auth"`
	Draft     DraftConfig     `yaml:"draft"`
	Worker    WorkerConfig    `yaml:"worker"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type ScoreConfig struct {
	StreakThreshold int `yaml:"streak_threshold"`
	LookbackDays    int `yaml:"lookback_days"`
}

type DashboardConfig struct {
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

type AuthConfig struct {
	MaxLoginAttempts int           `yaml:"max_login_attempts"`
	LockoutWindow    time.Duration `yaml:"lockout_window"`
}

type DraftConfig struct {
	AgentURL       string                `yaml:"agent_url"`
	Timeout        time.Duration         `yaml:"timeout"`
	CircuitBreaker circuitbreaker.Config `yaml:"circuit_breaker"`
}

type WorkerConfig struct {
	OutboxInterval   time.Duration `yaml:"outbox_interval"`
	OutboxBatchSize  int           `yaml:"outbox_batch_size"`
	OutboxMaxRetries int           `yaml:"outbox_max_retries"`
	FollowupInterval time.Duration `yaml:"followup_interval"`
	ConsumerRetries  int64         `yaml:"consumer_retries"`
	DedupTTL         time.Duration `yaml:"dedup_ttl"`
	// OpsPort serves /healthz, /readyz and /metrics for the worker.
	OpsPort string `yaml:"ops_port"`
}

// Load reads config/<CONFIG_ENV>.yaml on top of config/base.yaml and applies env overrides.
func Load() (*Config, error) {
	env := config.GetConfigEnv()
	dir := config.GetEnv("CONFIG_DIR", "config")
	return LoadFrom(env, dir)
}

func LoadFrom(env, dir string) (*Config, error) {
	cfg := Default()
	if err := config.LoadInto(env, dir, cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.Env = env

	config.OverrideDBFromEnv(&cfg.DB)
	config.OverrideMQFromEnv(&cfg.MQ)
	config.OverrideRedisFromEnv(&cfg.Redis)
	config.OverrideJWTFromEnv(&cfg.JWT)
	config.OverrideServerFromEnv(&cfg.Server)
	config.OverrideOtelFromEnv(&cfg.Otel)
	if url := os.Getenv("DRAFT_AGENT_URL"); url != "" {
		cfg.Draft.AgentURL = url
	}
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		cfg.Log.Level = lvl
	}

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt.secret must be set")
	}
	return cfg, nil
}

// Default returns the values used when a key is absent from every config layer.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info"},
		DB: config.DBConfig{
			Host:               "localhost",
			Port:               5432,
			SSLMode:            "disable",
			SlowQueryThreshold: 100 * time.Millisecond,
		},
		Redis: config.RedisConfig{Addr: "localhost:6379"},
		JWT:   config.JWTConfig{TTL: 24 * time.Hour},
		Server: config.ServerConfig{
			Port:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Score:     ScoreConfig{StreakThreshold: 70, LookbackDays: 366},
		Dashboard: DashboardConfig{CacheTTL: time.Minute},
		Auth:      AuthConfig{MaxLoginAttempts: 5, LockoutWindow: 15 * time.Minute},
		Draft: DraftConfig{
			Timeout:        10 * time.Second,
			CircuitBreaker: circuitbreaker.DefaultConfig(),
		},
		Worker: WorkerConfig{
			OutboxInterval:   time.Second,
			OutboxBatchSize:  100,
			OutboxMaxRetries: 5,
			FollowupInterval: time.Hour,
			ConsumerRetries:  3,
			DedupTTL:         24 * time.Hour,
			OpsPort:          ":9091",
		},
	}
}
