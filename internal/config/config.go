package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Store drivers.
const (
	StoreBadger = "badger"
	StoreRedis  = "redis"
)

// Preview renderers.
const (
	RendererRaster  = "raster"
	RendererBrowser = "browser"
)

// Config holds all configuration for the application.
// Values are read by viper from a config file or environment variables.
type Config struct {
	BaseURL          string        `mapstructure:"BASE_URL"`
	ServerAddr       string        `mapstructure:"SERVER_ADDR"`
	StoreDriver      string        `mapstructure:"STORE_DRIVER"`
	BadgerDBPath     string        `mapstructure:"BADGERDB_PATH"`
	BadgerGCInterval time.Duration `mapstructure:"BADGER_GC_INTERVAL"`
	RedisURL         string        `mapstructure:"REDIS_URL"`
	LogLevel         string        `mapstructure:"LOG_LEVEL"`
	PreviewRenderer  string        `mapstructure:"PREVIEW_RENDERER"`
	RateLimitRPS     float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst   int           `mapstructure:"RATE_LIMIT_BURST"`
	CORSOrigins      []string      `mapstructure:"CORS_ORIGINS"`
	TelegramBotToken string        `mapstructure:"TELEGRAM_BOT_TOKEN"`

	// TrustProxyHeaders takes the client address from X-Forwarded-For and
	// X-Real-IP. Enable only behind a proxy that overwrites them.
	TrustProxyHeaders bool `mapstructure:"TRUST_PROXY_HEADERS"`
}

var defaults = map[string]any{
	"BASE_URL":           "http://localhost:3000",
	"SERVER_ADDR":        ":3000",
	"STORE_DRIVER":       StoreBadger,
	"BADGERDB_PATH":      "./badger_data",
	"BADGER_GC_INTERVAL": "5m",
	"REDIS_URL":          "redis://localhost:6379",
	"LOG_LEVEL":          "info",
	"PREVIEW_RENDERER":   RendererRaster,
	"RATE_LIMIT_RPS":     2.0,
	"RATE_LIMIT_BURST":   10,
	"CORS_ORIGINS":       []string{"*"},
	"TELEGRAM_BOT_TOKEN": "",

	"TRUST_PROXY_HEADERS": false,
}

// LoadConfig reads configuration from a .env file, the config file in path
// and environment variables, in increasing order of precedence.
func LoadConfig(path string) (Config, error) {
	// A missing .env file is normal outside development.
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unable to decode into struct: %w", err)
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("BASE_URL %q is not an absolute http(s) URL", c.BaseURL)
	}
	switch c.StoreDriver {
	case StoreBadger:
		if c.BadgerDBPath == "" {
			return errors.New("BADGERDB_PATH is not set")
		}
		if c.BadgerGCInterval <= 0 {
			return fmt.Errorf("BADGER_GC_INTERVAL must be positive, got %s", c.BadgerGCInterval)
		}
	case StoreRedis:
		if c.RedisURL == "" {
			return errors.New("REDIS_URL is not set")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	switch c.PreviewRenderer {
	case RendererRaster, RendererBrowser:
	default:
		return fmt.Errorf("unknown PREVIEW_RENDERER %q", c.PreviewRenderer)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst < 1 {
		return fmt.Errorf("invalid rate limit %v/s burst %d", c.RateLimitRPS, c.RateLimitBurst)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	return nil
}
