package extract

import (
	"encoding/base64"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"contact-scraper/pkg/models"
	"contact-scraper/pkg/patterns"
	"contact-scraper/pkg/validate"
)

// hiddenSelectors target elements hidden from rendering but present in the
// markup, a common anti-scraping spot that still leaks addresses.
const hiddenSelectors = `[style*="display:none"], [style*="display: none"], [style*="visibility:hidden"], [style*="visibility: hidden"], .hidden, .visually-hidden, .sr-only`

// extractCSSHidden scans the text of CSS-hidden elements. Lowest-but-one
// confidence: hidden text is also where honeypot addresses live.
func (e *Extractor) extractCSSHidden(doc *goquery.Document, sourceURL string, pool *candidatePool) {
	doc.Find(hiddenSelectors).Each(func(_ int, sel *goquery.Selection) {
		text := sel.Text()
		if !strings.Contains(text, "@") {
			return
		}
		context := validate.TruncateContext(validate.CleanText(text), e.opts.ContextWindow)
		for _, match := range patterns.EmailTextVariants[0].Re.FindAllString(text, -1) {
			email := validate.CanonicalizeEmail(match)
			if !validate.IsValidEmail(email) {
				continue
			}
			pool.add(models.EmailCandidate{
				Email:      email,
				Method:     models.MethodCSSHidden,
				Confidence: e.opts.CSSHiddenConfidence,
				Context:    context,
				SourceURL:  sourceURL,
			})
		}
	})
}

// extractDataAttributes scans every data-* attribute value, with one nested
// base64-decode attempt for values that decode into something @-shaped.
func (e *Extractor) extractDataAttributes(doc *goquery.Document, sourceURL string, pool *candidatePool) {
	doc.Find("*").Each(func(_ int, sel *goquery.Selection) {
		if len(sel.Nodes) == 0 {
			return
		}
		for _, attr := range sel.Nodes[0].Attr {
			if !strings.HasPrefix(attr.Key, "data-") || attr.Val == "" {
				continue
			}

			values := []string{attr.Val}
			// One nested decode attempt: data attributes sometimes carry
			// base64-wrapped addresses
			if decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(attr.Val)); err == nil {
				if s := string(decoded); strings.Contains(s, "@") {
					values = append(values, s)
				}
			}

			for _, value := range values {
				for _, match := range patterns.EmailTextVariants[0].Re.FindAllString(value, -1) {
					email := validate.CanonicalizeEmail(match)
					if !validate.IsValidEmail(email) {
						continue
					}
					pool.add(models.EmailCandidate{
						Email:      email,
						Method:     models.MethodDataAttribute,
						Confidence: e.opts.DataAttributeConfidence,
						Context:    validate.TruncateContext(validate.CleanText(sel.Text()), e.opts.ContextWindow),
						SourceURL:  sourceURL,
					})
				}
			}
		}
	})
}

// extractJSConcat recognizes string-concatenation address construction in
// inline script bodies ("user" + "@" + "example.com").
func (e *Extractor) extractJSConcat(doc *goquery.Document, sourceURL string, pool *candidatePool) {
	doc.Find("script").Each(func(_ int, sel *goquery.Selection) {
		script := sel.Text()
		if script == "" || !strings.Contains(script, "+") {
			return
		}
		for _, re := range patterns.JSConcatPatterns {
			for _, m := range re.FindAllStringSubmatch(script, -1) {
				email := validate.CanonicalizeEmail(m[1] + "@" + m[2])
				if !validate.IsValidEmail(email) {
					continue
				}
				pool.add(models.EmailCandidate{
					Email:      email,
					Method:     models.MethodJavaScript,
					Confidence: e.opts.JSConcatConfidence,
					Context:    "", // Script bodies make useless human context
					SourceURL:  sourceURL,
				})
			}
		}
	})
}
