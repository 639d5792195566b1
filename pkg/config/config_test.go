package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func boolPtr(b bool) *bool {
	return &b
}

func intPtr(i int) *int {
	return &i
}

func TestGetEffectiveMaxDepth(t *testing.T) {
	tests := []struct {
		name     string
		siteCfg  *SiteConfig
		appCfg   AppConfig
		expected int
	}{
		{
			name:     "site override wins",
			siteCfg:  &SiteConfig{MaxDepth: intPtr(2)},
			appCfg:   AppConfig{MaxDepth: 5},
			expected: 2,
		},
		{
			name:     "nil site override uses global",
			siteCfg:  &SiteConfig{},
			appCfg:   AppConfig{MaxDepth: 5},
			expected: 5,
		},
		{
			name:     "nil site config uses global",
			siteCfg:  nil,
			appCfg:   AppConfig{MaxDepth: 5},
			expected: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetEffectiveMaxDepth(tt.siteCfg, &tt.appCfg))
		})
	}
}

func TestGetEffectiveMaxPages(t *testing.T) {
	appCfg := AppConfig{MaxPages: 1000}

	assert.Equal(t, 50, GetEffectiveMaxPages(&SiteConfig{MaxPages: intPtr(50)}, &appCfg))
	assert.Equal(t, 1000, GetEffectiveMaxPages(&SiteConfig{}, &appCfg))
	assert.Equal(t, 1000, GetEffectiveMaxPages(nil, &appCfg))
}

func TestGetEffectiveUseJavaScript(t *testing.T) {
	tests := []struct {
		name     string
		siteCfg  *SiteConfig
		appCfg   AppConfig
		expected bool
	}{
		{
			name:     "site enabled overrides global disabled",
			siteCfg:  &SiteConfig{UseJavaScript: boolPtr(true)},
			appCfg:   AppConfig{UseJavaScript: false},
			expected: true,
		},
		{
			name:     "site disabled overrides global enabled",
			siteCfg:  &SiteConfig{UseJavaScript: boolPtr(false)},
			appCfg:   AppConfig{UseJavaScript: true},
			expected: false,
		},
		{
			name:     "site nil uses global",
			siteCfg:  &SiteConfig{},
			appCfg:   AppConfig{UseJavaScript: true},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetEffectiveUseJavaScript(tt.siteCfg, &tt.appCfg))
		})
	}
}

func TestGetEffectiveValidateEmails(t *testing.T) {
	appCfg := AppConfig{ValidateEmails: true}

	assert.False(t, GetEffectiveValidateEmails(&SiteConfig{ValidateEmails: boolPtr(false)}, &appCfg))
	assert.True(t, GetEffectiveValidateEmails(&SiteConfig{}, &appCfg))
}

func TestGetEffectiveExtractSocialAndOCR(t *testing.T) {
	appCfg := AppConfig{ExtractSocial: false, OCREmails: false}

	assert.True(t, GetEffectiveExtractSocial(&SiteConfig{ExtractSocial: boolPtr(true)}, &appCfg))
	assert.False(t, GetEffectiveExtractSocial(&SiteConfig{}, &appCfg))
	assert.True(t, GetEffectiveOCREmails(&SiteConfig{OCREmails: boolPtr(true)}, &appCfg))
	assert.False(t, GetEffectiveOCREmails(&SiteConfig{}, &appCfg))
}

func TestGetEffectiveUserAgentAndDelay(t *testing.T) {
	appCfg := AppConfig{
		DefaultUserAgent:    "contact-scraper/1.0",
		DefaultDelayPerHost: time.Second,
	}

	assert.Equal(t, "custom-bot/2.0", GetEffectiveUserAgent(&SiteConfig{UserAgent: "custom-bot/2.0"}, &appCfg))
	assert.Equal(t, "contact-scraper/1.0", GetEffectiveUserAgent(&SiteConfig{}, &appCfg))

	assert.Equal(t, 3*time.Second, GetEffectiveDelay(&SiteConfig{DelayPerHost: 3 * time.Second}, &appCfg))
	assert.Equal(t, time.Second, GetEffectiveDelay(&SiteConfig{}, &appCfg))
}

func TestGetEffectiveDomainLists(t *testing.T) {
	appCfg := AppConfig{
		AllowedDomains:     []string{"global-allowed.com"},
		ExcludedDomains:    []string{"global-excluded.com"},
		ExcludedExtensions: []string{".pdf"},
	}

	// Non-empty site lists override
	siteCfg := &SiteConfig{
		AllowedDomains:     []string{"site-allowed.com"},
		ExcludedDomains:    []string{"site-excluded.com"},
		ExcludedExtensions: []string{".zip"},
	}
	assert.Equal(t, []string{"site-allowed.com"}, GetEffectiveAllowedDomains(siteCfg, &appCfg))
	assert.Equal(t, []string{"site-excluded.com"}, GetEffectiveExcludedDomains(siteCfg, &appCfg))
	assert.Equal(t, []string{".zip"}, GetEffectiveExcludedExtensions(siteCfg, &appCfg))

	// Empty site falls back
	assert.Equal(t, []string{"global-allowed.com"}, GetEffectiveAllowedDomains(&SiteConfig{}, &appCfg))
	assert.Equal(t, []string{"global-excluded.com"}, GetEffectiveExcludedDomains(&SiteConfig{}, &appCfg))
	assert.Equal(t, []string{".pdf"}, GetEffectiveExcludedExtensions(&SiteConfig{}, &appCfg))

	// Explicit empty (non-nil) extension list overrides the global one
	assert.Equal(t, []string{}, GetEffectiveExcludedExtensions(&SiteConfig{ExcludedExtensions: []string{}}, &appCfg))
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("CONTACT_SCRAPER_MAX_DEPTH", "7")
	t.Setenv("CONTACT_SCRAPER_MAX_PAGES", "250")
	t.Setenv("CONTACT_SCRAPER_DELAY", "2.5")
	t.Setenv("CONTACT_SCRAPER_OUTPUT_FORMAT", "json")
	t.Setenv("CONTACT_SCRAPER_VALIDATE_EMAILS", "false")
	t.Setenv("CONTACT_SCRAPER_IGNORE_ROBOTS", "yes")

	cfg := AppConfig{
		MaxDepth:       3,
		MaxPages:       100,
		OutputFormat:   "csv",
		ValidateEmails: true,
	}
	cfg.ApplyEnvOverrides()

	assert.Equal(t, 7, cfg.MaxDepth)
	assert.Equal(t, 250, cfg.MaxPages)
	assert.Equal(t, 2500*time.Millisecond, cfg.DefaultDelayPerHost)
	assert.Equal(t, "json", cfg.OutputFormat)
	assert.False(t, cfg.ValidateEmails)
	assert.True(t, cfg.IgnoreRobots)
}

func TestApplyEnvOverrides_MalformedValuesIgnored(t *testing.T) {
	t.Setenv("CONTACT_SCRAPER_MAX_DEPTH", "not-a-number")
	t.Setenv("CONTACT_SCRAPER_VALIDATE_EMAILS", "maybe")

	cfg := AppConfig{MaxDepth: 3, ValidateEmails: true}
	cfg.ApplyEnvOverrides()

	assert.Equal(t, 3, cfg.MaxDepth)
	assert.True(t, cfg.ValidateEmails)
}

func TestApplyEnvOverrides_DurationString(t *testing.T) {
	t.Setenv("CONTACT_SCRAPER_DELAY", "1500ms")

	cfg := AppConfig{}
	cfg.ApplyEnvOverrides()

	assert.Equal(t, 1500*time.Millisecond, cfg.DefaultDelayPerHost)
}
