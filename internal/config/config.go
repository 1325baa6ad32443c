// Package config loads and validates collector configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/transportlab/transport-data-collector/internal/apiclient"
	"github.com/transportlab/transport-data-collector/internal/crawler"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Scraper  ScraperConfig  `mapstructure:"scraper"`
	Sources  SourcesConfig  `mapstructure:"sources"`
	API      APIConfig      `mapstructure:"api"`
	Output   OutputConfig   `mapstructure:"output"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
}

// ScraperConfig governs the crawl engine, fetcher, and extractor.
type ScraperConfig struct {
	UserAgents        []string `mapstructure:"user_agents"`
	AcceptHeader      string   `mapstructure:"accept_header"`
	AcceptLanguage    string   `mapstructure:"accept_language"`
	RespectRobots     bool     `mapstructure:"respect_robots"`
	DelayMinMs        int      `mapstructure:"delay_min_ms"`
	DelayMaxMs        int      `mapstructure:"delay_max_ms"`
	TimeoutSeconds    int      `mapstructure:"timeout_seconds"`
	MaxRetries        int      `mapstructure:"max_retries"`
	BackoffBaseMs     int      `mapstructure:"backoff_base_ms"`
	BackoffMaxMs      int      `mapstructure:"backoff_max_ms"`
	RequestsPerSecond float64  `mapstructure:"requests_per_second"`
	MaxDepth          int      `mapstructure:"max_depth"`
	MaxWorkers        int      `mapstructure:"max_workers"`
	MinContentLength  int      `mapstructure:"min_content_length"`
	DateFormats       []string `mapstructure:"date_formats"`
	InclusionPatterns []string `mapstructure:"inclusion_patterns"`
	ExclusionPatterns []string `mapstructure:"exclusion_patterns"`
	BlockIndicators   []string `mapstructure:"block_indicators"`
}

// SourcesConfig lists the sites to collect from, grouped by category.
type SourcesConfig struct {
	IncludeMicrosites bool             `mapstructure:"include_microsites"`
	Categories        []CategoryConfig `mapstructure:"categories"`
}

// CategoryConfig groups sites under a research category.
type CategoryConfig struct {
	Name  string       `mapstructure:"name"`
	Sites []SiteConfig `mapstructure:"sites"`
}

// SiteConfig describes one site entry.
type SiteConfig struct {
	URL      string `mapstructure:"url"`
	Name     string `mapstructure:"name"`
	Priority int    `mapstructure:"priority"`
}

// APIConfig configures the optional transport data API source.
type APIConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BaseURL        string `mapstructure:"base_url"`
	APIKey         string `mapstructure:"api_key"`
	RecordsPath    string `mapstructure:"records_path"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	RetryAttempts  int    `mapstructure:"retry_attempts"`
}

// OutputConfig sets where the record table lands.
type OutputConfig struct {
	Dir            string `mapstructure:"dir"`
	FilenamePrefix string `mapstructure:"filename_prefix"`
}

// MetricsConfig controls the optional Prometheus listener.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// ScheduleConfig holds the cron expression for repeated runs.
type ScheduleConfig struct {
	Cron string `mapstructure:"cron"`
}

// Load builds a Config from disk and environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TRANSPORT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("scraper.user_agents", []string{
		"TransportResearchBot/1.0 (+https://transportlab.org/bot)",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
	})
	v.SetDefault("scraper.accept_header", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	v.SetDefault("scraper.accept_language", "en-US,en;q=0.5")
	v.SetDefault("scraper.respect_robots", true)
	v.SetDefault("scraper.delay_min_ms", 1000)
	v.SetDefault("scraper.delay_max_ms", 3000)
	v.SetDefault("scraper.timeout_seconds", 30)
	v.SetDefault("scraper.max_retries", 3)
	v.SetDefault("scraper.backoff_base_ms", 500)
	v.SetDefault("scraper.backoff_max_ms", 8000)
	v.SetDefault("scraper.requests_per_second", 2.0)
	v.SetDefault("scraper.max_depth", 2)
	v.SetDefault("scraper.max_workers", 3)
	v.SetDefault("scraper.min_content_length", 20)
	v.SetDefault("sources.include_microsites", true)
	v.SetDefault("api.enabled", false)
	v.SetDefault("api.records_path", "/v1/records")
	v.SetDefault("api.timeout_seconds", 30)
	v.SetDefault("api.retry_attempts", 3)
	v.SetDefault("output.dir", "data/processed")
	v.SetDefault("output.filename_prefix", "transport_data")
	v.SetDefault("logging.development", true)
	v.SetDefault("schedule.cron", "0 6 * * *")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Scraper.MaxWorkers <= 0 {
		return fmt.Errorf("scraper.max_workers must be > 0")
	}
	if c.Scraper.MaxDepth < 0 {
		return fmt.Errorf("scraper.max_depth must be >= 0")
	}
	if c.Scraper.TimeoutSeconds <= 0 {
		return fmt.Errorf("scraper.timeout_seconds must be > 0")
	}
	if c.Scraper.MaxRetries < 0 {
		return fmt.Errorf("scraper.max_retries must be >= 0")
	}
	if c.Scraper.DelayMaxMs < c.Scraper.DelayMinMs {
		return fmt.Errorf("scraper.delay_max_ms must be >= scraper.delay_min_ms")
	}
	if c.Scraper.MinContentLength <= 0 {
		return fmt.Errorf("scraper.min_content_length must be > 0")
	}
	if len(c.Scraper.UserAgents) == 0 {
		return fmt.Errorf("scraper.user_agents must not be empty")
	}
	if c.API.Enabled && c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url must be set when the api source is enabled")
	}
	return nil
}

// CrawlerConfig converts the scraper section into the engine's own config.
func (c Config) CrawlerConfig() crawler.Config {
	return crawler.Config{
		UserAgents:        c.Scraper.UserAgents,
		AcceptHeader:      c.Scraper.AcceptHeader,
		AcceptLanguage:    c.Scraper.AcceptLanguage,
		RespectRobots:     c.Scraper.RespectRobots,
		Timeout:           time.Duration(c.Scraper.TimeoutSeconds) * time.Second,
		DelayMin:          time.Duration(c.Scraper.DelayMinMs) * time.Millisecond,
		DelayMax:          time.Duration(c.Scraper.DelayMaxMs) * time.Millisecond,
		MaxRetries:        c.Scraper.MaxRetries,
		BackoffBase:       time.Duration(c.Scraper.BackoffBaseMs) * time.Millisecond,
		BackoffMax:        time.Duration(c.Scraper.BackoffMaxMs) * time.Millisecond,
		RequestsPerSecond: c.Scraper.RequestsPerSecond,
		MaxDepth:          c.Scraper.MaxDepth,
		MaxWorkers:        c.Scraper.MaxWorkers,
		DateFormats:       c.Scraper.DateFormats,
		InclusionPatterns: c.Scraper.InclusionPatterns,
		ExclusionPatterns: c.Scraper.ExclusionPatterns,
		BlockIndicators:   c.Scraper.BlockIndicators,
	}
}

// APIClientConfig converts the api section into the client's config.
func (c Config) APIClientConfig() apiclient.Config {
	return apiclient.Config{
		BaseURL:       c.API.BaseURL,
		APIKey:        c.API.APIKey,
		Timeout:       time.Duration(c.API.TimeoutSeconds) * time.Second,
		RetryAttempts: c.API.RetryAttempts,
	}
}

// Targets flattens the sources config into crawl targets.
func (c Config) Targets() []crawler.CrawlTarget {
	var targets []crawler.CrawlTarget
	for _, category := range c.Sources.Categories {
		for _, site := range category.Sites {
			priority := site.Priority
			if priority == 0 {
				priority = 2
			}
			targets = append(targets, crawler.CrawlTarget{
				BaseURL:           site.URL,
				Name:              site.Name,
				Category:          category.Name,
				Priority:          priority,
				IncludeMicrosites: c.Sources.IncludeMicrosites,
			})
		}
	}
	return targets
}
