package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"contact-scraper/pkg/models"
	"contact-scraper/pkg/patterns"
	"contact-scraper/pkg/validate"
)

// extractMailto scans anchor hrefs for mailto targets. The scheme is matched
// case-insensitively anywhere in the attribute, not just at the start,
// because malformed markup ("http://mailto:x@y.com") is common in the wild.
// Multi-recipient links split on commas; query strings are stripped first.
func (e *Extractor) extractMailto(doc *goquery.Document, sourceURL string, pool *candidatePool) {
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || href == "" {
			return
		}

		idx := strings.Index(strings.ToLower(href), "mailto:")
		if idx < 0 {
			return
		}

		method := models.MethodMailto
		confidence := e.opts.MailtoConfidence
		if idx > 0 {
			// Scheme buried mid-attribute: still usable, slightly less trusted
			method = models.MethodMailtoEnhanced
			confidence = e.opts.MailtoEnhancedConfidence
		}

		raw := href[idx+len("mailto:"):]
		if q := strings.Index(raw, "?"); q >= 0 {
			raw = raw[:q] // Drop subject/body parameters
		}
		if decoded, err := url.QueryUnescape(raw); err == nil {
			raw = decoded
		}

		context := validate.TruncateContext(validate.CleanText(sel.Text()), e.opts.ContextWindow)

		for _, part := range strings.Split(raw, ",") {
			email := validate.CanonicalizeEmail(part)
			if !validate.IsValidEmail(email) {
				continue
			}
			pool.add(models.EmailCandidate{
				Email:      email,
				Method:     method,
				Confidence: confidence,
				Context:    context,
				SourceURL:  sourceURL,
			})
		}
	})

	// Enhanced variant: onclick handlers that assemble or open mailto links
	doc.Find("[onclick]").Each(func(_ int, sel *goquery.Selection) {
		onclick, _ := sel.Attr("onclick")
		if onclick == "" || !strings.Contains(strings.ToLower(onclick), "mail") {
			return
		}
		context := validate.TruncateContext(validate.CleanText(sel.Text()), e.opts.ContextWindow)
		for _, match := range patterns.EmailTextVariants[0].Re.FindAllString(onclick, -1) {
			email := validate.CanonicalizeEmail(match)
			if !validate.IsValidEmail(email) {
				continue
			}
			pool.add(models.EmailCandidate{
				Email:      email,
				Method:     models.MethodMailtoEnhanced,
				Confidence: e.opts.MailtoEnhancedConfidence,
				Context:    context,
				SourceURL:  sourceURL,
			})
		}
	})
}
