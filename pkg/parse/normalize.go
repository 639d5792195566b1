// Package parse holds URL normalization used for frontier identity. Two URLs
// normalizing to the same string are the same page to the crawler.
package parse

import (
	"net"
	"net/url"
	"strings"
)

// NormalizeURL standardizes a URL for comparison and storage: lowercased
// scheme and host, default ports removed, trailing path slash removed (root
// "/" stays), empty path becomes "/", fragment dropped, query keys sorted.
// The query string is kept because paginated listings ("?page=3") are
// distinct pages to a contact crawl. Does not modify the input.
func NormalizeURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	normalized := *u

	normalized.Scheme = strings.ToLower(normalized.Scheme)
	normalized.Host = strings.ToLower(normalized.Host)

	host, port, err := net.SplitHostPort(normalized.Host)
	if err == nil {
		if (normalized.Scheme == "http" && port == "80") ||
			(normalized.Scheme == "https" && port == "443") {
			normalized.Host = host
		}
	}

	if normalized.Path == "" {
		normalized.Path = "/"
	} else if len(normalized.Path) > 1 && strings.HasSuffix(normalized.Path, "/") {
		normalized.Path = normalized.Path[:len(normalized.Path)-1]
	}

	normalized.Fragment = ""
	if normalized.RawQuery != "" {
		// Sorted encoding gives a stable key regardless of param order
		normalized.RawQuery = normalized.Query().Encode()
	}

	return normalized.String()
}

// ParseAndNormalize parses a URL string with the stricter url.ParseRequestURI
// (a scheme is required) and normalizes it. Returns the normalized string,
// the parsed URL, and any parse error.
func ParseAndNormalize(urlStr string) (string, *url.URL, error) {
	parsed, err := url.ParseRequestURI(urlStr)
	if err != nil {
		return "", nil, err
	}
	return NormalizeURL(parsed), parsed, nil
}
