package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultTipsPrompt = "You are a supportive and knowledgeable health and wellness advisor. " +
	"Interpret the calculator result in the context of the calculator type and the user data, then give short, actionable, encouraging tips. " +
	"For BMI suggest gradual diet and activity changes when outside the normal range, or maintaining habits when normal. " +
	"For calorie intake suggest portion control or healthier swaps relative to the estimate. " +
	"For target heart rate suggest exercises that fit the zone such as brisk walking, jogging or cycling. " +
	"For body fat suggest strength training and a balanced diet for high categories. " +
	"For ideal weight frame the range as a guideline and avoid rapid loss or gain. " +
	"For WHR explain the risk and suggest core exercise and diet for moderate or high risk. " +
	"For water intake suggest carrying a bottle, reminders and water-rich foods. " +
	"Stay positive and non-judgmental and always include a disclaimer that the tips are informational and not medical advice."

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	LLM     LLMConfig     `yaml:"llm"`
	Tips    TipsConfig    `yaml:"tips"`
	Cache   CacheConfig   `yaml:"cache"`
	History HistoryConfig `yaml:"history"`
	Events  EventsConfig  `yaml:"events"`
	Session SessionConfig `yaml:"session"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// LLMConfig contains ChatGPT/OpenAI settings.
type LLMConfig struct {
	APIKey      string        `yaml:"apiKey"`
	BaseURL     string        `yaml:"baseUrl"`
	Model       string        `yaml:"model"`
	Temperature float32       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
	Breaker     BreakerConfig `yaml:"breaker"`
}

// BreakerConfig tunes the circuit breaker around the LLM backend.
type BreakerConfig struct {
	MaxRequests         uint32        `yaml:"maxRequests"`
	Interval            time.Duration `yaml:"interval"`
	Timeout             time.Duration `yaml:"timeout"`
	ConsecutiveFailures uint32        `yaml:"consecutiveFailures"`
}

// TipsConfig controls the tip generation domain.
type TipsConfig struct {
	Prompt         string        `yaml:"prompt"`
	MaxTips        int           `yaml:"maxTips"`
	CacheTTL       time.Duration `yaml:"cacheTtl"`
	TopCalculators int           `yaml:"topCalculators"`
}

// CacheConfig selects the tip cache backend.
type CacheConfig struct {
	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig contains connection information for cache storage.
type RedisConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Prefix  string `yaml:"prefix"`
}

// HistoryConfig controls calculation history storage.
type HistoryConfig struct {
	Postgres      PostgresConfig `yaml:"postgres"`
	ListLimit     int            `yaml:"listLimit"`
	MemoryRecords int            `yaml:"memoryRecords"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// EventsConfig controls calculation event publishing.
type EventsConfig struct {
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
}

// RabbitMQConfig contains broker connection settings.
type RabbitMQConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Queue   string `yaml:"queue"`
}

// SessionConfig controls interactive sessions.
type SessionConfig struct {
	TTL        time.Duration `yaml:"ttl"`
	TipTimeout time.Duration `yaml:"tipTimeout"`
}

// Load reads configuration from a YAML file and environment variables.
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.Temperature = float32(parsed)
		}
	}
	if v := os.Getenv("LLM_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.LLM.Timeout = parsed
		}
	}
	if v := os.Getenv("LLM_BREAKER_FAILURES"); v != "" {
		if parsed, err := strconv.ParseUint(v, 10, 32); err == nil {
			cfg.LLM.Breaker.ConsecutiveFailures = uint32(parsed)
		}
	}
	if v := os.Getenv("LLM_BREAKER_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.LLM.Breaker.Timeout = parsed
		}
	}
	if v := os.Getenv("TIPS_PROMPT"); v != "" {
		cfg.Tips.Prompt = v
	}
	if v := os.Getenv("TIPS_MAX"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Tips.MaxTips = parsed
		}
	}
	if v := os.Getenv("TIPS_CACHE_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Tips.CacheTTL = parsed
		}
	}
	if v := os.Getenv("CACHE_REDIS_ENABLED"); v != "" {
		cfg.Cache.Redis.Enabled = parseBool(v)
	}
	if v := os.Getenv("CACHE_REDIS_ADDR"); v != "" {
		cfg.Cache.Redis.Addr = v
	}
	if v := os.Getenv("HISTORY_POSTGRES_DSN"); v != "" {
		cfg.History.Postgres.DSN = v
	}
	if v := os.Getenv("HISTORY_POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.History.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("HISTORY_POSTGRES_MIN_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.History.Postgres.MinConns = int32(parsed)
		}
	}
	if v := os.Getenv("EVENTS_RABBITMQ_ENABLED"); v != "" {
		cfg.Events.RabbitMQ.Enabled = parseBool(v)
	}
	if v := os.Getenv("EVENTS_RABBITMQ_URL"); v != "" {
		cfg.Events.RabbitMQ.URL = v
	}
	if v := os.Getenv("EVENTS_RABBITMQ_QUEUE"); v != "" {
		cfg.Events.RabbitMQ.Queue = v
	}
	if v := os.Getenv("SESSION_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Session.TTL = parsed
		}
	}
}

func parseBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 45 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
			AllowedOrigins: []string{"http://localhost:3000", "http://localhost:9002"},
		},
		LLM: LLMConfig{
			Model:       "gpt-4o-mini",
			Temperature: 0.4,
			Timeout:     30 * time.Second,
			Breaker: BreakerConfig{
				MaxRequests:         5,
				Interval:            60 * time.Second,
				Timeout:             30 * time.Second,
				ConsecutiveFailures: 5,
			},
		},
		Tips: TipsConfig{
			Prompt:         defaultTipsPrompt,
			MaxTips:        5,
			CacheTTL:       6 * time.Hour,
			TopCalculators: 7,
		},
		Cache: CacheConfig{
			Redis: RedisConfig{Prefix: "healthcalc"},
		},
		History: HistoryConfig{
			Postgres: PostgresConfig{
				MaxConns: 4,
			},
			ListLimit:     20,
			MemoryRecords: 100,
		},
		Events: EventsConfig{
			RabbitMQ: RabbitMQConfig{Queue: "healthcalc.calculations"},
		},
		Session: SessionConfig{
			TTL:        30 * time.Minute,
			TipTimeout: 40 * time.Second,
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		return errors.New("llm.model cannot be empty")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return errors.New("llm.temperature must be between 0 and 2")
	}
	if c.LLM.Timeout < 0 {
		return errors.New("llm.timeout cannot be negative")
	}
	if strings.TrimSpace(c.Tips.Prompt) == "" {
		return errors.New("tips.prompt cannot be empty")
	}
	if c.Tips.MaxTips <= 0 {
		return errors.New("tips.maxTips must be positive")
	}
	if c.Tips.CacheTTL < 0 {
		return errors.New("tips.cacheTtl cannot be negative")
	}
	if c.Tips.TopCalculators < 0 {
		return errors.New("tips.topCalculators cannot be negative")
	}
	if c.Cache.Redis.Enabled && strings.TrimSpace(c.Cache.Redis.Addr) == "" {
		return errors.New("cache.redis.addr cannot be empty when redis cache is enabled")
	}
	if c.History.ListLimit <= 0 {
		return errors.New("history.listLimit must be positive")
	}
	if c.History.Postgres.MinConns > c.History.Postgres.MaxConns && c.History.Postgres.MaxConns > 0 {
		return errors.New("history.postgres.minConns cannot exceed maxConns")
	}
	if c.Events.RabbitMQ.Enabled && strings.TrimSpace(c.Events.RabbitMQ.URL) == "" {
		return errors.New("events.rabbitmq.url cannot be empty when publishing is enabled")
	}
	if c.Session.TTL <= 0 {
		return errors.New("session.ttl must be positive")
	}
	return nil
}
