package store

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Addr            string `yaml:"addr"`
		ShutdownSeconds int    `yaml:"shutdown_seconds"`
	} `yaml:"server"`
	MarketData struct {
		BaseURL        string `yaml:"base_url"`
		APIKeyEnv      string `yaml:"api_key_env"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"market_data"`
	News struct {
		BaseURL         string `yaml:"base_url"`
		APIKeyEnv       string `yaml:"api_key_env"`
		Limit           int    `yaml:"limit"`
		TimeoutSeconds  int    `yaml:"timeout_seconds"`
		ScrapeFallback  bool   `yaml:"scrape_fallback"`
		ScrapeUserAgent string `yaml:"scrape_user_agent"`
	} `yaml:"news"`
	Indicators struct {
		RSIPeriod int `yaml:"rsi_period"`
	} `yaml:"indicators"`
	Orchestrator struct {
		ToolTimeoutSeconds    int     `yaml:"tool_timeout_seconds"`
		RequestTimeoutSeconds int     `yaml:"request_timeout_seconds"`
		MaxRetries            int     `yaml:"max_retries"`
		InitialBackoffMS      int     `yaml:"initial_backoff_ms"`
		MaxBackoffMS          int     `yaml:"max_backoff_ms"`
		BackoffFactor         float64 `yaml:"backoff_factor"`
	} `yaml:"orchestrator"`
}

func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr cannot be empty")
	}
	if c.MarketData.BaseURL == "" {
		return fmt.Errorf("market_data.base_url cannot be empty")
	}
	if c.News.BaseURL == "" {
		return fmt.Errorf("news.base_url cannot be empty")
	}
	if c.Indicators.RSIPeriod < 2 {
		return fmt.Errorf("indicators.rsi_period must be at least 2, got %d", c.Indicators.RSIPeriod)
	}
	if c.Orchestrator.MaxRetries < 0 {
		return fmt.Errorf("orchestrator.max_retries cannot be negative, got %d", c.Orchestrator.MaxRetries)
	}
	if c.Orchestrator.ToolTimeoutSeconds <= 0 {
		return fmt.Errorf("orchestrator.tool_timeout_seconds must be positive, got %d", c.Orchestrator.ToolTimeoutSeconds)
	}
	if c.Orchestrator.RequestTimeoutSeconds < c.Orchestrator.ToolTimeoutSeconds {
		return fmt.Errorf("orchestrator.request_timeout_seconds (%d) must not be below tool_timeout_seconds (%d)",
			c.Orchestrator.RequestTimeoutSeconds, c.Orchestrator.ToolTimeoutSeconds)
	}
	if c.Orchestrator.BackoffFactor < 1.0 {
		return fmt.Errorf("orchestrator.backoff_factor must be at least 1.0, got %.2f", c.Orchestrator.BackoffFactor)
	}
	return nil
}

// MarketDataAPIKey resolves the market data API key from the configured
// environment variable. Keys never live in the YAML file itself.
func (c *Config) MarketDataAPIKey() string {
	return os.Getenv(c.MarketData.APIKeyEnv)
}

// NewsAPIKey resolves the news API key from the configured environment
// variable.
func (c *Config) NewsAPIKey() string {
	return os.Getenv(c.News.APIKeyEnv)
}

func (c *Config) ToolTimeout() time.Duration {
	return time.Duration(c.Orchestrator.ToolTimeoutSeconds) * time.Second
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Orchestrator.RequestTimeoutSeconds) * time.Second
}

func (c *Config) InitialBackoff() time.Duration {
	return time.Duration(c.Orchestrator.InitialBackoffMS) * time.Millisecond
}

func (c *Config) MaxBackoff() time.Duration {
	return time.Duration(c.Orchestrator.MaxBackoffMS) * time.Millisecond
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	applyDefaults(&c)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}

func applyDefaults(c *Config) {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ShutdownSeconds == 0 {
		c.Server.ShutdownSeconds = 10
	}
	if c.MarketData.BaseURL == "" {
		c.MarketData.BaseURL = "https://www.alphavantage.co/query"
	}
	if c.MarketData.APIKeyEnv == "" {
		c.MarketData.APIKeyEnv = "ALPHA_VANTAGE_API_KEY"
	}
	if c.MarketData.TimeoutSeconds == 0 {
		c.MarketData.TimeoutSeconds = 10
	}
	if c.News.BaseURL == "" {
		c.News.BaseURL = "https://www.alphavantage.co/query"
	}
	if c.News.APIKeyEnv == "" {
		c.News.APIKeyEnv = "ALPHA_VANTAGE_API_KEY"
	}
	if c.News.Limit == 0 {
		c.News.Limit = 50
	}
	if c.News.TimeoutSeconds == 0 {
		c.News.TimeoutSeconds = 15
	}
	if c.Indicators.RSIPeriod == 0 {
		c.Indicators.RSIPeriod = 14
	}
	if c.Orchestrator.ToolTimeoutSeconds == 0 {
		c.Orchestrator.ToolTimeoutSeconds = 20
	}
	if c.Orchestrator.RequestTimeoutSeconds == 0 {
		c.Orchestrator.RequestTimeoutSeconds = 45
	}
	if c.Orchestrator.InitialBackoffMS == 0 {
		c.Orchestrator.InitialBackoffMS = 1000
	}
	if c.Orchestrator.MaxBackoffMS == 0 {
		c.Orchestrator.MaxBackoffMS = 10000
	}
	if c.Orchestrator.BackoffFactor == 0 {
		c.Orchestrator.BackoffFactor = 2.0
	}
}
