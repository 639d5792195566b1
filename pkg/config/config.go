package config

import "time"

// SiteConfig holds configuration specific to a single site crawl. Pointer
// fields are tri-state: nil means "inherit the app-level setting".
type SiteConfig struct {
	StartURLs          []string      `yaml:"start_urls"`
	AllowedDomain      string        `yaml:"allowed_domain"`
	AllowedDomains     []string      `yaml:"allowed_domains,omitempty"`     // Restricts the crawl to these hosts within the base domain; never admits outside hosts
	ExcludedDomains    []string      `yaml:"excluded_domains,omitempty"`    // Hosts rejected by admission
	ExcludedExtensions []string      `yaml:"excluded_extensions,omitempty"` // Overrides app-level list when non-nil
	UserAgent          string        `yaml:"user_agent,omitempty"`
	DelayPerHost       time.Duration `yaml:"delay_per_host,omitempty"`
	MaxDepth           *int          `yaml:"max_depth,omitempty"`
	MaxPages           *int          `yaml:"max_pages,omitempty"`
	ValidateEmails     *bool         `yaml:"validate_emails,omitempty"`
	UseJavaScript      *bool         `yaml:"use_javascript,omitempty"`
	ExtractSocial      *bool         `yaml:"extract_social,omitempty"`
	OCREmails          *bool         `yaml:"ocr_emails,omitempty"`
	RespectNofollow    bool          `yaml:"respect_nofollow,omitempty"`
}

// AppConfig holds the global application configuration
type AppConfig struct {
	DefaultUserAgent    string        `yaml:"default_user_agent"`
	DefaultDelayPerHost time.Duration `yaml:"default_delay_per_host"`

	MaxDepth           int `yaml:"max_depth"`            // Depth budget per crawl (default 5)
	MaxPages           int `yaml:"max_pages"`            // Page budget per crawl (default 1000)
	BatchSize          int `yaml:"batch_size,omitempty"` // Concurrent in-flight pages per wave batch (default 20)
	MaxConcurrentSites int `yaml:"max_concurrent_sites,omitempty"`
	MaxRequests        int `yaml:"max_requests"`          // Global concurrent request bound
	MaxRequestsPerHost int `yaml:"max_requests_per_host"` // Per-host concurrent request bound
	MaxPageParam       int `yaml:"max_page_param,omitempty"` // Pagination guard: reject links whose 'page' query value exceeds this

	OutputDir    string `yaml:"output_dir"`
	OutputFormat string `yaml:"output_format,omitempty"` // csv, json or excel
	StateDir     string `yaml:"state_dir,omitempty"`
	PersistRuns  bool   `yaml:"persist_runs,omitempty"` // Store run summaries and contacts in the state DB

	MaxRetries        int           `yaml:"max_retries,omitempty"`
	InitialRetryDelay time.Duration `yaml:"initial_retry_delay,omitempty"`
	MaxRetryDelay     time.Duration `yaml:"max_retry_delay,omitempty"`

	SemaphoreAcquireTimeout time.Duration `yaml:"semaphore_acquire_timeout,omitempty"`
	GlobalCrawlTimeout      time.Duration `yaml:"global_crawl_timeout,omitempty"`
	PerPageTimeout          time.Duration `yaml:"per_page_timeout,omitempty"` // Timeout for processing a single page (0 = no timeout)

	ValidateEmails  bool `yaml:"validate_emails,omitempty"`  // Re-validate and re-clean contacts in post-processing
	UseJavaScript   bool `yaml:"use_javascript,omitempty"`   // Fetch via headless renderer when one is available
	ExtractSocial   bool `yaml:"extract_social,omitempty"`   // Collect social profile links per contact
	OCREmails       bool `yaml:"ocr_emails,omitempty"`       // Run image text extraction when a reader is available
	EnhanceContacts bool `yaml:"enhance_contacts,omitempty"` // Post-extraction name/company/title inference
	IgnoreRobots    bool `yaml:"ignore_robots,omitempty"`

	AllowedDomains     []string `yaml:"allowed_domains,omitempty"`
	ExcludedDomains    []string `yaml:"excluded_domains,omitempty"`
	ExcludedExtensions []string `yaml:"excluded_extensions,omitempty"`

	ContextWindow int    `yaml:"context_window,omitempty"` // Max chars of context kept per candidate
	NERProvider   string `yaml:"ner_provider,omitempty"`   // "regex" (default) or "llm"

	HTTPClientSettings HTTPClientConfig       `yaml:"http_client_settings,omitempty"`
	Sites              map[string]*SiteConfig `yaml:"sites,omitempty"`
}

// HTTPClientConfig holds settings for the shared HTTP client
type HTTPClientConfig struct {
	Timeout               time.Duration `yaml:"timeout,omitempty"`                 // Overall request timeout
	MaxIdleConns          int           `yaml:"max_idle_conns,omitempty"`          // Max total idle connections
	MaxIdleConnsPerHost   int           `yaml:"max_idle_conns_per_host,omitempty"` // Max idle connections per host
	IdleConnTimeout       time.Duration `yaml:"idle_conn_timeout,omitempty"`       // Timeout for idle connections
	TLSHandshakeTimeout   time.Duration `yaml:"tls_handshake_timeout,omitempty"`   // Timeout for TLS handshake
	ExpectContinueTimeout time.Duration `yaml:"expect_continue_timeout,omitempty"` // Timeout for 100-continue
	ForceAttemptHTTP2     *bool         `yaml:"force_attempt_http2,omitempty"`     // Pointer for tri-state: nil=default, true=force, false=disable
	DialerTimeout         time.Duration `yaml:"dialer_timeout,omitempty"`          // Connection dial timeout
	DialerKeepAlive       time.Duration `yaml:"dialer_keep_alive,omitempty"`       // TCP keep-alive interval
}

// GetEffectiveMaxDepth determines the effective depth budget for a site
func GetEffectiveMaxDepth(siteCfg *SiteConfig, appCfg *AppConfig) int {
	if siteCfg != nil && siteCfg.MaxDepth != nil {
		return *siteCfg.MaxDepth
	}
	return appCfg.MaxDepth
}

// GetEffectiveMaxPages determines the effective page budget for a site
func GetEffectiveMaxPages(siteCfg *SiteConfig, appCfg *AppConfig) int {
	if siteCfg != nil && siteCfg.MaxPages != nil {
		return *siteCfg.MaxPages
	}
	return appCfg.MaxPages
}

// GetEffectiveUserAgent determines the effective user agent for a site
func GetEffectiveUserAgent(siteCfg *SiteConfig, appCfg *AppConfig) string {
	if siteCfg != nil && siteCfg.UserAgent != "" {
		return siteCfg.UserAgent
	}
	return appCfg.DefaultUserAgent
}

// GetEffectiveDelay determines the effective per-host politeness delay
func GetEffectiveDelay(siteCfg *SiteConfig, appCfg *AppConfig) time.Duration {
	if siteCfg != nil && siteCfg.DelayPerHost > 0 {
		return siteCfg.DelayPerHost
	}
	return appCfg.DefaultDelayPerHost
}

// GetEffectiveValidateEmails determines whether post-processing re-validates contacts
func GetEffectiveValidateEmails(siteCfg *SiteConfig, appCfg *AppConfig) bool {
	if siteCfg != nil && siteCfg.ValidateEmails != nil {
		return *siteCfg.ValidateEmails
	}
	return appCfg.ValidateEmails
}

// GetEffectiveUseJavaScript determines whether pages fetch through the renderer
func GetEffectiveUseJavaScript(siteCfg *SiteConfig, appCfg *AppConfig) bool {
	if siteCfg != nil && siteCfg.UseJavaScript != nil {
		return *siteCfg.UseJavaScript
	}
	return appCfg.UseJavaScript
}

// GetEffectiveExtractSocial determines whether social profiles are collected
func GetEffectiveExtractSocial(siteCfg *SiteConfig, appCfg *AppConfig) bool {
	if siteCfg != nil && siteCfg.ExtractSocial != nil {
		return *siteCfg.ExtractSocial
	}
	return appCfg.ExtractSocial
}

// GetEffectiveOCREmails determines whether the OCR path runs
func GetEffectiveOCREmails(siteCfg *SiteConfig, appCfg *AppConfig) bool {
	if siteCfg != nil && siteCfg.OCREmails != nil {
		return *siteCfg.OCREmails
	}
	return appCfg.OCREmails
}

// GetEffectiveExcludedExtensions determines the effective extension blocklist
func GetEffectiveExcludedExtensions(siteCfg *SiteConfig, appCfg *AppConfig) []string {
	if siteCfg != nil && siteCfg.ExcludedExtensions != nil {
		return siteCfg.ExcludedExtensions
	}
	return appCfg.ExcludedExtensions
}

// GetEffectiveAllowedDomains prefers the site allowlist over the app allowlist
func GetEffectiveAllowedDomains(siteCfg *SiteConfig, appCfg *AppConfig) []string {
	if siteCfg != nil && len(siteCfg.AllowedDomains) > 0 {
		return siteCfg.AllowedDomains
	}
	return appCfg.AllowedDomains
}

// GetEffectiveExcludedDomains determines the effective domain blocklist
func GetEffectiveExcludedDomains(siteCfg *SiteConfig, appCfg *AppConfig) []string {
	if siteCfg != nil && len(siteCfg.ExcludedDomains) > 0 {
		return siteCfg.ExcludedDomains
	}
	return appCfg.ExcludedDomains
}
