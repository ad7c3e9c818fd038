package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Supported news providers.
const (
	ProviderPlaceholder = "placeholder"
	ProviderNewsAPI     = "newsapi"
	ProviderAlpaca      = "alpaca"
	ProviderGoogle      = "google"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Database struct {
		URL        string `yaml:"url"`
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Import struct {
		Source       string `yaml:"source"`
		Cron         string `yaml:"cron"`
		NasdaqAPIKey string `yaml:"nasdaq_api_key"`
	} `yaml:"import"`
	News   News `yaml:"news"`
	Client struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"client"`
}

// News configures the provider behind /api/news.
type News struct {
	Provider     string        `yaml:"provider"`
	Limit        int           `yaml:"limit"`
	NewsAPIKey   string        `yaml:"newsapi_key"`
	AlpacaKey    string        `yaml:"alpaca_key"`
	AlpacaSecret string        `yaml:"alpaca_secret"`
	RedisURL     string        `yaml:"redis_url"`
	CacheTTL     time.Duration `yaml:"cache_ttl"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return cfg, nil
}

func (c *Config) applyEnv() error {
	overrides := map[string]*string{
		"PORT":                &c.Server.Port,
		"LOG_LEVEL":           &c.Log.Level,
		"DATABASE_URL":        &c.Database.URL,
		"SQLITE_PATH":         &c.Database.SQLitePath,
		"COMPANIES_SOURCE":    &c.Import.Source,
		"IMPORT_CRON":         &c.Import.Cron,
		"NASDAQ_API_KEY":      &c.Import.NasdaqAPIKey,
		"NEWS_PROVIDER":       &c.News.Provider,
		"NEWSAPI_KEY":         &c.News.NewsAPIKey,
		"APCA_API_KEY_ID":     &c.News.AlpacaKey,
		"APCA_API_SECRET_KEY": &c.News.AlpacaSecret,
		"REDIS_URL":           &c.News.RedisURL,
		"RADAR_URL":           &c.Client.BaseURL,
	}
	for env, field := range overrides {
		if v := os.Getenv(env); v != "" {
			*field = v
		}
	}

	if v := os.Getenv("NEWS_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("NEWS_LIMIT: %w", err)
		}
		c.News.Limit = n
	}
	if v := os.Getenv("NEWS_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("NEWS_CACHE_TTL: %w", err)
		}
		c.News.CacheTTL = d
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.News.Provider == "" {
		c.News.Provider = ProviderPlaceholder
	}
	if c.News.Limit == 0 {
		c.News.Limit = 5
	}
	if c.News.CacheTTL == 0 {
		c.News.CacheTTL = 10 * time.Minute
	}
	if c.Client.BaseURL == "" {
		c.Client.BaseURL = "http://localhost:" + c.Server.Port
	}
}

// Validate checks the settings the server cannot run without.
func (c *Config) Validate() error {
	if c.News.Limit < 1 {
		return fmt.Errorf("news.limit must be positive, got %d", c.News.Limit)
	}
	switch c.News.Provider {
	case ProviderPlaceholder, ProviderGoogle:
	case ProviderNewsAPI:
		if c.News.NewsAPIKey == "" {
			return fmt.Errorf("news provider %q requires NEWSAPI_KEY", c.News.Provider)
		}
	case ProviderAlpaca:
		if c.News.AlpacaKey == "" || c.News.AlpacaSecret == "" {
			return fmt.Errorf("news provider %q requires APCA_API_KEY_ID and APCA_API_SECRET_KEY", c.News.Provider)
		}
	default:
		return fmt.Errorf("unknown news provider %q", c.News.Provider)
	}
	return nil
}
