package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Port           string  `yaml:"port"`
	GinMode        string  `yaml:"gin_mode"`
	CORSOrigin     string  `yaml:"cors_origin"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // mysql, postgres, sqlite
	DSN    string `yaml:"dsn"`
}

// RedisConfig: Addr kosong berarti cache tagihan dimatikan
type RedisConfig struct {
	Addr    string        `yaml:"addr"`
	BillTTL time.Duration `yaml:"bill_ttl"`
}

// RabbitMQConfig: URL kosong berarti event tidak dikirim ke broker
type RabbitMQConfig struct {
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "8080",
			GinMode:        "debug",
			CORSOrigin:     "*",
			RateLimitRPS:   50,
			RateLimitBurst: 100,
		},
		Database: DatabaseConfig{
			Driver: "mysql",
		},
		Redis: RedisConfig{
			BillTTL: 5 * time.Minute,
		},
		RabbitMQ: RabbitMQConfig{
			Exchange: "restaurant_events",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load membaca file YAML (opsional, path boleh kosong) lalu menimpa nilainya
// dengan environment variable.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse yaml: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Server.Port, "PORT")
	setString(&cfg.Server.GinMode, "GIN_MODE")
	setString(&cfg.Server.CORSOrigin, "CORS_ORIGIN")
	setString(&cfg.Database.Driver, "DB_DRIVER")
	setString(&cfg.Database.DSN, "DB_DSN")
	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.RabbitMQ.URL, "AMQP_URL")
	setString(&cfg.RabbitMQ.Exchange, "AMQP_EXCHANGE")
	setString(&cfg.Log.Level, "LOG_LEVEL")

	if v := os.Getenv("BILL_CACHE_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid BILL_CACHE_TTL %q: %w", v, err)
		}
		cfg.Redis.BillTTL = ttl
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT_RPS %q: %w", v, err)
		}
		cfg.Server.RateLimitRPS = rps
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		burst, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT_BURST %q: %w", v, err)
		}
		cfg.Server.RateLimitBurst = burst
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func (c *Config) Validate() error {
	switch strings.ToLower(c.Database.Driver) {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database dsn is required")
	}
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.RateLimitRPS <= 0 || c.Server.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit must be positive, got %g rps burst %d", c.Server.RateLimitRPS, c.Server.RateLimitBurst)
	}
	if c.Redis.BillTTL <= 0 {
		return fmt.Errorf("bill cache ttl must be positive")
	}
	return nil
}
