package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// envPrefix is prepended to every recognized override variable, e.g.
// CONTACT_SCRAPER_MAX_DEPTH=3.
const envPrefix = "CONTACT_SCRAPER_"

// ApplyEnvOverrides overlays environment variables onto an already-loaded
// AppConfig. Environment wins over the YAML file; unset or malformed values
// leave the config untouched. Call before Validate so defaults still apply.
func (c *AppConfig) ApplyEnvOverrides() {
	if v, ok := envInt("MAX_DEPTH"); ok {
		c.MaxDepth = v
	}
	if v, ok := envInt("MAX_PAGES"); ok {
		c.MaxPages = v
	}
	if v, ok := envInt("MAX_PAGE_PARAM"); ok {
		c.MaxPageParam = v
	}
	if v, ok := envDuration("DELAY"); ok {
		c.DefaultDelayPerHost = v
	}
	if v, ok := envString("USER_AGENT"); ok {
		c.DefaultUserAgent = v
	}
	if v, ok := envString("OUTPUT_FORMAT"); ok {
		c.OutputFormat = v
	}
	if v, ok := envString("OUTPUT_DIR"); ok {
		c.OutputDir = v
	}
	if v, ok := envBool("VALIDATE_EMAILS"); ok {
		c.ValidateEmails = v
	}
	if v, ok := envBool("USE_JAVASCRIPT"); ok {
		c.UseJavaScript = v
	}
	if v, ok := envBool("EXTRACT_SOCIAL"); ok {
		c.ExtractSocial = v
	}
	if v, ok := envBool("OCR_EMAILS"); ok {
		c.OCREmails = v
	}
	if v, ok := envBool("IGNORE_ROBOTS"); ok {
		c.IgnoreRobots = v
	}
	if v, ok := envString("NER_PROVIDER"); ok {
		c.NERProvider = v
	}
}

func envString(name string) (string, bool) {
	v := os.Getenv(envPrefix + name)
	if v == "" {
		return "", false
	}
	return v, true
}

func envInt(name string) (int, bool) {
	raw, ok := envString(name)
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func envBool(name string) (bool, bool) {
	raw, ok := envString(name)
	if !ok {
		return false, false
	}
	switch strings.ToLower(raw) {
	case "true", "1", "yes":
		return true, true
	case "false", "0", "no":
		return false, true
	}
	return false, false
}

// envDuration accepts either a Go duration string ("1.5s") or a bare number
// of seconds ("1.5"), matching how the delay setting is usually written.
func envDuration(name string) (time.Duration, bool) {
	raw, ok := envString(name)
	if !ok {
		return 0, false
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d, true
	}
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), true
	}
	return 0, false
}
