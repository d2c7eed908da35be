// Package config loads the service configuration from a YAML file with
// environment overrides.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/infigaming-com/gold-monitor/cache"
	"github.com/joho/godotenv"
)

type Config struct {
	Log     LogConfig     `yaml:"log"`
	Server  ServerConfig  `yaml:"server"`
	Feed    FeedConfig    `yaml:"feed"`
	Hub     HubConfig     `yaml:"hub"`
	Cache   CacheConfig   `yaml:"cache"`
	Metrics MetricsConfig `yaml:"metrics"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

type ServerConfig struct {
	Port int64  `yaml:"port" env:"PORT" env-default:"8000"`
	Mode string `yaml:"mode" env:"GIN_MODE" env-default:"release"`

	// AllowedOrigins restricts websocket origins. Empty accepts any origin.
	AllowedOrigins []string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" env-separator:","`
	ReportTitle    string   `yaml:"report_title" env:"REPORT_TITLE" env-default:"Harga Emas Treasury"`
}

type FeedConfig struct {
	URL        string        `yaml:"url" env:"FEED_URL" env-default:"https://api.treasury.id/api/v1/antigrvty/gold/rate"`
	Method     string        `yaml:"method" env:"FEED_METHOD" env-default:"POST"`
	Timeout    time.Duration `yaml:"timeout" env:"FEED_TIMEOUT" env-default:"10s"`
	Interval   time.Duration `yaml:"interval" env:"FEED_INTERVAL" env-default:"500ms"`
	RetryDelay time.Duration `yaml:"retry_delay" env:"FEED_RETRY_DELAY" env-default:"1s"`

	// MaxRetryDelay above RetryDelay doubles the delay after each consecutive
	// failure; otherwise every retry waits RetryDelay.
	MaxRetryDelay time.Duration     `yaml:"max_retry_delay" env:"FEED_MAX_RETRY_DELAY" env-default:"1s"`
	SlowThreshold time.Duration     `yaml:"slow_threshold" env:"FEED_SLOW_THRESHOLD" env-default:"5s"`
	Headers       map[string]string `yaml:"headers" env:"FEED_HEADERS" env-separator:","`
}

type HubConfig struct {
	KeepAlive    time.Duration `yaml:"keep_alive" env:"HUB_KEEP_ALIVE" env-default:"30s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"HUB_WRITE_TIMEOUT" env-default:"10s"`
}

type CacheConfig struct {
	Driver        string        `yaml:"driver" env:"CACHE_DRIVER" env-default:"freecache"`
	Size          int           `yaml:"size" env:"CACHE_SIZE" env-default:"1048576"`
	TTL           time.Duration `yaml:"ttl" env:"CACHE_TTL" env-default:"0s"`
	RedisAddr     string        `yaml:"redis_addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	RedisPassword string        `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int           `yaml:"redis_db" env:"REDIS_DB" env-default:"0"`
}

type MetricsConfig struct {
	Enabled          bool   `yaml:"enabled" env:"METRICS_ENABLED" env-default:"false"`
	OTLPEndpoint     string `yaml:"otlp_endpoint" env:"OTLP_ENDPOINT"`
	OTLPGRPCEndpoint string `yaml:"otlp_grpc_endpoint" env:"OTLP_GRPC_ENDPOINT"`
	ServiceName      string `yaml:"service_name" env:"SERVICE_NAME" env-default:"gold-monitor"`
	Environment      string `yaml:"environment" env:"ENVIRONMENT" env-default:"development"`
}

// Load reads an optional .env file, then path (if it exists) and finally the
// environment. An empty path means environment only.
func Load(path string, envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load env file %s: %w", f, err)
		}
	}

	var cfg Config
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, &cfg); err != nil {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
			return &cfg, cfg.validate()
		}
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read config from env: %w", err)
	}
	return &cfg, cfg.validate()
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Feed.URL == "" {
		return fmt.Errorf("feed url is required")
	}
	c.Cache.Driver = strings.ToLower(strings.TrimSpace(c.Cache.Driver))
	switch c.Cache.Driver {
	case cache.DriverFreeCache, cache.DriverRedis:
	default:
		return fmt.Errorf("unknown cache driver %q", c.Cache.Driver)
	}
	return nil
}
