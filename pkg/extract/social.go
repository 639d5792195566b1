package extract

import (
	"github.com/PuerkitoBio/goquery"

	"contact-scraper/pkg/patterns"
)

// collectSocialProfiles scans anchor hrefs for known social-platform profile
// URLs. The first profile per platform wins; pages rarely link more than one
// account per platform outside of footers, and footer links come last.
func collectSocialProfiles(doc *goquery.Document) map[string]string {
	profiles := make(map[string]string)
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || href == "" {
			return
		}
		for platform, re := range patterns.SocialProfilePatterns {
			if _, taken := profiles[platform]; taken {
				continue
			}
			if match := re.FindString(href); match != "" {
				profiles[platform] = match
			}
		}
	})
	if len(profiles) == 0 {
		return nil
	}
	return profiles
}
