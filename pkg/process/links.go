// Package process holds the per-page link harvest and the cross-page
// post-processing that turns raw page results into the final contact list.
package process

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
)

// LinkExtractor harvests outbound link candidates from a fetched page. It
// applies only page-local filters (scheme, nofollow); admission policy
// (scope, depth, robots, budgets) belongs to the crawl orchestrator, which is
// the only component allowed to grow the frontier.
type LinkExtractor struct {
	respectNofollow bool
	log             *logrus.Logger
}

// NewLinkExtractor creates a LinkExtractor.
func NewLinkExtractor(respectNofollow bool, log *logrus.Logger) *LinkExtractor {
	return &LinkExtractor{respectNofollow: respectNofollow, log: log}
}

// Links returns the page's unique absolute http(s) links, resolved against
// finalURL (the post-redirect page URL). Order follows document order.
func (le *LinkExtractor) Links(doc *goquery.Document, finalURL *url.URL, taskLog *logrus.Entry) []string {
	var links []string
	seen := make(map[string]struct{})

	doc.Find("a[href]").Each(func(_ int, element *goquery.Selection) {
		href, exists := element.Attr("href")
		if !exists || href == "" {
			return
		}

		if le.respectNofollow {
			if rel, _ := element.Attr("rel"); strings.Contains(strings.ToLower(rel), "nofollow") {
				return
			}
		}

		linkURL, parseErr := finalURL.Parse(href)
		if parseErr != nil {
			taskLog.Debugf("Skipping invalid link href '%s': %v", href, parseErr)
			return
		}
		if linkURL.Scheme != "http" && linkURL.Scheme != "https" {
			return // mailto:, tel:, javascript: and friends
		}

		absolute := linkURL.String()
		if _, dup := seen[absolute]; dup {
			return
		}
		seen[absolute] = struct{}{}
		links = append(links, absolute)
	})

	taskLog.Debugf("Harvested %d candidate links", len(links))
	return links
}
