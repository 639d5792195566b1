package config

import (
	"fmt"
	"time"

	"contact-scraper/pkg/utils"
)

// Validate checks AppConfig fields and applies sensible defaults.
// Returns collected warnings and any fatal error.
// Modifies receiver in place to apply defaults.
func (c *AppConfig) Validate() (warnings []string, err error) {
	// MaxDepth
	if c.MaxDepth <= 0 {
		warnings = append(warnings, "max_depth should be > 0, defaulting to 5")
		c.MaxDepth = 5
	}

	// MaxPages
	if c.MaxPages <= 0 {
		warnings = append(warnings, "max_pages should be > 0, defaulting to 1000")
		c.MaxPages = 1000
	}

	// BatchSize (concurrent pages per wave batch)
	if c.BatchSize <= 0 {
		c.BatchSize = 20
	}
	if c.BatchSize > 20 {
		warnings = append(warnings, fmt.Sprintf(
			"batch_size %d exceeds the in-flight page ceiling, capping at 20", c.BatchSize))
		c.BatchSize = 20
	}

	// MaxConcurrentSites
	if c.MaxConcurrentSites <= 0 {
		c.MaxConcurrentSites = 3
	}
	if c.MaxConcurrentSites > 3 {
		warnings = append(warnings, fmt.Sprintf(
			"max_concurrent_sites %d exceeds the site-crawl ceiling, capping at 3", c.MaxConcurrentSites))
		c.MaxConcurrentSites = 3
	}

	// MaxRequests
	if c.MaxRequests <= 0 {
		warnings = append(warnings, "max_requests should be > 0, defaulting to 10")
		c.MaxRequests = 10
	}

	// MaxRequestsPerHost
	if c.MaxRequestsPerHost <= 0 {
		warnings = append(warnings, "max_requests_per_host should be > 0, defaulting to 2")
		c.MaxRequestsPerHost = 2
	}

	// MaxPageParam (pagination guard)
	if c.MaxPageParam <= 0 {
		c.MaxPageParam = 100
	}

	// OutputDir
	if c.OutputDir == "" {
		warnings = append(warnings, "output_dir is empty, defaulting to './results'")
		c.OutputDir = "./results"
	}

	// OutputFormat
	switch c.OutputFormat {
	case "":
		c.OutputFormat = "csv"
	case "csv", "json", "excel":
		// valid
	default:
		return warnings, fmt.Errorf("%w: unknown output_format '%s' (supported: csv, json, excel)",
			utils.ErrConfigValidation, c.OutputFormat)
	}

	// StateDir (only needed when runs are persisted)
	if c.PersistRuns && c.StateDir == "" {
		warnings = append(warnings, "persist_runs is true but state_dir is empty, defaulting to './crawler_state'")
		c.StateDir = "./crawler_state"
	}

	// MaxRetries
	if c.MaxRetries < 0 {
		warnings = append(warnings, "max_retries cannot be negative, setting to 0")
		c.MaxRetries = 0
	}
	if c.MaxRetries == 0 && c.InitialRetryDelay == 0 {
		c.MaxRetries = 3
	}

	// Retry delays (only if retries enabled)
	if c.MaxRetries > 0 {
		if c.InitialRetryDelay <= 0 {
			c.InitialRetryDelay = 1 * time.Second
		}
		if c.MaxRetryDelay <= 0 {
			c.MaxRetryDelay = 30 * time.Second
		}
	}

	// InitialRetryDelay > MaxRetryDelay check
	if c.InitialRetryDelay > c.MaxRetryDelay && c.MaxRetryDelay > 0 {
		warnings = append(warnings, fmt.Sprintf(
			"initial_retry_delay (%v) > max_retry_delay (%v), using max_retry_delay for initial",
			c.InitialRetryDelay, c.MaxRetryDelay))
		c.InitialRetryDelay = c.MaxRetryDelay
	}

	// SemaphoreAcquireTimeout
	if c.SemaphoreAcquireTimeout <= 0 {
		c.SemaphoreAcquireTimeout = 30 * time.Second
	}

	// GlobalCrawlTimeout
	if c.GlobalCrawlTimeout < 0 {
		warnings = append(warnings, "global_crawl_timeout cannot be negative, disabling timeout")
		c.GlobalCrawlTimeout = 0
	}

	// PerPageTimeout
	if c.PerPageTimeout < 0 {
		warnings = append(warnings, "per_page_timeout cannot be negative, disabling timeout")
		c.PerPageTimeout = 0
	}

	// DefaultDelayPerHost
	if c.DefaultDelayPerHost <= 0 {
		c.DefaultDelayPerHost = 1 * time.Second
	}

	// DefaultUserAgent
	if c.DefaultUserAgent == "" {
		c.DefaultUserAgent = "contact-scraper/1.0"
	}

	// ExcludedExtensions
	if c.ExcludedExtensions == nil {
		c.ExcludedExtensions = []string{".pdf", ".doc", ".docx", ".zip", ".rar"}
	}

	// ContextWindow
	if c.ContextWindow <= 0 {
		c.ContextWindow = 300
	}

	// NERProvider
	switch c.NERProvider {
	case "":
		c.NERProvider = "regex"
	case "regex", "llm":
		// valid
	default:
		warnings = append(warnings, fmt.Sprintf(
			"unknown ner_provider '%s', falling back to 'regex'", c.NERProvider))
		c.NERProvider = "regex"
	}

	// HTTPClientSettings defaults
	c.validateHTTPClientSettings()

	return warnings, nil
}

// validateHTTPClientSettings applies defaults to HTTP client settings.
func (c *AppConfig) validateHTTPClientSettings() {
	h := &c.HTTPClientSettings
	if h.Timeout <= 0 {
		h.Timeout = 45 * time.Second
	}
	if h.MaxIdleConns <= 0 {
		h.MaxIdleConns = 100
	}
	if h.MaxIdleConnsPerHost <= 0 {
		h.MaxIdleConnsPerHost = 2
	}
	if h.IdleConnTimeout <= 0 {
		h.IdleConnTimeout = 90 * time.Second
	}
	if h.TLSHandshakeTimeout <= 0 {
		h.TLSHandshakeTimeout = 10 * time.Second
	}
	if h.ExpectContinueTimeout <= 0 {
		h.ExpectContinueTimeout = 1 * time.Second
	}
	if h.DialerTimeout <= 0 {
		h.DialerTimeout = 15 * time.Second
	}
	if h.DialerKeepAlive <= 0 {
		h.DialerKeepAlive = 30 * time.Second
	}
}

// Validate checks SiteConfig fields and applies defaults.
// Returns collected warnings and any fatal error.
func (c *SiteConfig) Validate() (warnings []string, err error) {
	// Required: StartURLs
	if len(c.StartURLs) == 0 {
		return nil, fmt.Errorf("%w: site has no start_urls", utils.ErrConfigValidation)
	}

	// Required: AllowedDomain
	if c.AllowedDomain == "" {
		return nil, fmt.Errorf("%w: site needs allowed_domain", utils.ErrConfigValidation)
	}

	// MaxDepth override
	if c.MaxDepth != nil && *c.MaxDepth <= 0 {
		warnings = append(warnings, "Site max_depth must be > 0, ignoring override")
		c.MaxDepth = nil
	}

	// MaxPages override
	if c.MaxPages != nil && *c.MaxPages <= 0 {
		warnings = append(warnings, "Site max_pages must be > 0, ignoring override")
		c.MaxPages = nil
	}

	return warnings, nil
}
