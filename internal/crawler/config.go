package crawler

import (
	"fmt"
	"time"
)

// Config captures every knob that influences a crawl run. It is decoupled
// from Viper so the engine and its collaborators can be constructed and
// tested independently of the config loader.
type Config struct {
	UserAgents        []string
	AcceptHeader      string
	AcceptLanguage    string
	RespectRobots     bool
	Timeout           time.Duration
	DelayMin          time.Duration
	DelayMax          time.Duration
	MaxRetries        int
	BackoffBase       time.Duration
	BackoffMax        time.Duration
	RequestsPerSecond float64
	MaxDepth          int
	MaxWorkers        int
	DateFormats       []string
	InclusionPatterns []string
	ExclusionPatterns []string
	BlockIndicators   []string
}

// Validate checks for obviously bad configuration combinations.
func (c Config) Validate() error {
	if len(c.UserAgents) == 0 {
		return fmt.Errorf("at least one user agent must be configured")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0")
	}
	if c.DelayMin < 0 || c.DelayMax < c.DelayMin {
		return fmt.Errorf("delay range [%s, %s] is invalid", c.DelayMin, c.DelayMax)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be >= 0")
	}
	if c.BackoffBase <= 0 {
		return fmt.Errorf("backoff_base must be > 0")
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must be >= 0")
	}
	if c.MaxWorkers <= 0 {
		return fmt.Errorf("max_workers must be > 0")
	}
	return nil
}
