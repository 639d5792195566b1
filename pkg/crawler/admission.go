package crawler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"contact-scraper/pkg/fetch"
	"contact-scraper/pkg/parse"
	"contact-scraper/pkg/utils"
)

// admission decides whether a discovered URL may enter the frontier. Scope
// and policy live here; the frontier's visited/queued checks stay with the
// crawl loop. Checks that need a parsed URL fail open on malformed input so
// a broken link never kills a crawl.
type admission struct {
	baseDomain      string
	allowedDomains  []string // Narrows the crawl within the base domain; never expands it
	excludedDomains []string
	excludedExts    []string
	maxDepth        int
	maxPageParam    int
	userAgent       string
	ignoreRobots    bool
	robots          *fetch.RobotsHandler
	log             *logrus.Entry
}

// admit validates a candidate URL at the given depth. On success it returns
// the normalized frontier key; on rejection the error wraps the matching
// policy sentinel.
func (a *admission) admit(ctx context.Context, rawURL string, depth int) (string, error) {
	if a.maxDepth > 0 && depth >= a.maxDepth {
		return "", fmt.Errorf("%w: depth %d >= %d", utils.ErrMaxDepthExceeded, depth, a.maxDepth)
	}

	normalized, parsed, err := parse.ParseAndNormalize(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: unparsable URL '%s': %w", utils.ErrScopeViolation, rawURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("%w: scheme '%s'", utils.ErrScopeViolation, parsed.Scheme)
	}

	host := strings.ToLower(parsed.Hostname())
	if !a.domainAllowed(host) {
		return "", fmt.Errorf("%w: host '%s' outside crawl domain '%s'", utils.ErrScopeViolation, host, a.baseDomain)
	}

	if ext := lowerExtension(parsed.Path); ext != "" {
		for _, excluded := range a.excludedExts {
			if ext == excluded {
				return "", fmt.Errorf("%w: excluded extension '%s'", utils.ErrScopeViolation, ext)
			}
		}
	}

	if a.maxPageParam > 0 {
		if pageVal := parsed.Query().Get("page"); pageVal != "" {
			if page, convErr := strconv.Atoi(pageVal); convErr == nil && page > a.maxPageParam {
				return "", fmt.Errorf("%w: page=%d > %d", utils.ErrPaginationGuard, page, a.maxPageParam)
			}
		}
	}

	if !a.ignoreRobots && !a.robots.TestAgent(parsed, a.userAgent, ctx) {
		return "", fmt.Errorf("%w: %s", utils.ErrRobotsDisallowed, normalized)
	}

	return normalized, nil
}

// domainAllowed confines the crawl to the base domain and its subdomains.
// This is a single-domain crawl: the allowlist and blocklist only narrow
// scope further, they never admit a host outside the base domain.
func (a *admission) domainAllowed(host string) bool {
	for _, excluded := range a.excludedDomains {
		if hostMatches(host, excluded) {
			return false
		}
	}
	if !hostMatches(host, a.baseDomain) {
		return false
	}
	if len(a.allowedDomains) == 0 {
		return true
	}
	for _, allowed := range a.allowedDomains {
		if hostMatches(host, allowed) {
			return true
		}
	}
	return false
}

// hostMatches reports whether host is domain or a subdomain of it.
func hostMatches(host, domain string) bool {
	domain = strings.ToLower(domain)
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// lowerExtension returns the lowercased path extension including the dot, or
// "".
func lowerExtension(path string) string {
	idx := strings.LastIndex(path, ".")
	if idx < 0 || idx < strings.LastIndex(path, "/") {
		return ""
	}
	return strings.ToLower(path[idx:])
}
