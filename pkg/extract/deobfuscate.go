package extract

import (
	"fmt"
	"strings"

	"contact-scraper/pkg/models"
	"contact-scraper/pkg/patterns"
	"contact-scraper/pkg/validate"
)

// extractDeobfuscated recognizes addresses written without a literal "@"
// ("user [at] example [dot] com" and friends), reassembles them into
// canonical form and re-validates before pooling.
func (e *Extractor) extractDeobfuscated(pageText, sourceURL string, pool *candidatePool) {
	for _, form := range patterns.ObfuscationForms {
		for _, loc := range form.Re.FindAllStringSubmatchIndex(pageText, -1) {
			local := submatch(pageText, loc, 1)
			domain := submatch(pageText, loc, 2)
			tld := submatch(pageText, loc, 3)
			if local == "" || domain == "" || tld == "" {
				continue
			}

			email := validate.CanonicalizeEmail(fmt.Sprintf("%s@%s.%s",
				strings.TrimSpace(local), strings.TrimSpace(domain), strings.TrimSpace(tld)))
			if !validate.IsValidEmail(email) {
				continue
			}
			pool.add(models.EmailCandidate{
				Email:      email,
				Method:     models.MethodDeobfuscation,
				Confidence: e.opts.DeobfuscationConfidence,
				Context:    e.contextAround(pageText, loc[0], loc[1]),
				SourceURL:  sourceURL,
			})
		}
	}
}

// submatch extracts capture group g from a FindAllStringSubmatchIndex entry.
func submatch(text string, loc []int, g int) string {
	start, end := loc[2*g], loc[2*g+1]
	if start < 0 || end < 0 {
		return ""
	}
	return text[start:end]
}
