package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"CapitolPulse/pkg/util"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Aggregator struct {
		BaseURL      string        `yaml:"base_url"`
		Timeout      time.Duration `yaml:"timeout"`
		RateCapacity float64       `yaml:"rate_capacity"`
		RatePerSec   float64       `yaml:"rate_per_sec"`
	} `yaml:"aggregator"`
	Cache struct {
		Staleness     time.Duration `yaml:"staleness"`
		EvictionGrace time.Duration `yaml:"eviction_grace"`
		SweepInterval time.Duration `yaml:"sweep_interval"`
		SnapshotTTL   time.Duration `yaml:"snapshot_ttl"`
		MemoryMaxSize int           `yaml:"memory_max_size"`
		Redis         struct {
			Enabled  bool   `yaml:"enabled"`
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Kafka struct {
		Enabled    bool          `yaml:"enabled"`
		Brokers    []string      `yaml:"brokers"`
		Topic      string        `yaml:"topic"`
		GroupID    string        `yaml:"group_id"`
		Workers    int           `yaml:"workers"`
		BufferSize int           `yaml:"buffer_size"`
		RetryMax   int           `yaml:"retry_max"`
		BackoffMin time.Duration `yaml:"backoff_min"`
		BackoffMax time.Duration `yaml:"backoff_max"`
		MinBytes   int           `yaml:"min_bytes"`
		MaxBytes   int           `yaml:"max_bytes"`
	} `yaml:"kafka"`
}

// DefaultAggregatorURL is the local development origin used when no base URL
// is configured.
const DefaultAggregatorURL = "http://localhost:8000"

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("AGGREGATOR_BASE_URL"); v != "" {
		c.Aggregator.BaseURL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		host, port := splitHostPort(v)
		c.Cache.Redis.Host = host
		if port > 0 {
			c.Cache.Redis.Port = port
		}
		c.Cache.Redis.Enabled = true
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Log.Output == "" {
		c.Log.Output = "stdout"
	}
	if c.Aggregator.BaseURL == "" {
		c.Aggregator.BaseURL = DefaultAggregatorURL
	}
	if c.Aggregator.Timeout == 0 {
		c.Aggregator.Timeout = 10 * time.Second
	}
	if c.Aggregator.RateCapacity == 0 {
		c.Aggregator.RateCapacity = 20
	}
	if c.Aggregator.RatePerSec == 0 {
		c.Aggregator.RatePerSec = 10
	}
	if c.Cache.Staleness == 0 {
		c.Cache.Staleness = 60 * time.Second
	}
	if c.Cache.EvictionGrace == 0 {
		c.Cache.EvictionGrace = 5 * time.Minute
	}
	if c.Cache.SweepInterval == 0 {
		c.Cache.SweepInterval = time.Minute
	}
	if c.Cache.SnapshotTTL == 0 {
		c.Cache.SnapshotTTL = 30 * time.Minute
	}
	if c.Cache.MemoryMaxSize == 0 {
		c.Cache.MemoryMaxSize = 1000
	}
	if c.Cache.Redis.Port == 0 {
		c.Cache.Redis.Port = 6379
	}
	if c.Cache.Redis.Prefix == "" {
		c.Cache.Redis.Prefix = "capitolpulse"
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "capitolpulse-dashboard"
	}
	if c.Kafka.Workers == 0 {
		c.Kafka.Workers = 1
	}
	if c.Kafka.BufferSize == 0 {
		c.Kafka.BufferSize = 64
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if !strings.HasPrefix(c.Aggregator.BaseURL, "http://") && !strings.HasPrefix(c.Aggregator.BaseURL, "https://") {
		return fmt.Errorf("aggregator.base_url must be an http(s) origin, got '%s'", c.Aggregator.BaseURL)
	}
	if c.Cache.Staleness < 0 || c.Cache.EvictionGrace < 0 {
		return fmt.Errorf("cache durations must be non-negative")
	}
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
		}
		if c.Kafka.Topic == "" {
			return fmt.Errorf("kafka.topic is required when kafka is enabled")
		}
	}
	if c.Cache.Redis.Enabled && c.Cache.Redis.Host == "" {
		return fmt.Errorf("cache.redis.host is required when redis is enabled")
	}
	return nil
}

func splitHostPort(addr string) (string, int) {
	if i := strings.LastIndex(addr, ":"); i > 0 {
		return addr[:i], util.ParseIntDefault(addr[i+1:], 0)
	}
	return addr, 0
}
