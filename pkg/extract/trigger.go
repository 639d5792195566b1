package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"contact-scraper/pkg/models"
	"contact-scraper/pkg/patterns"
	"contact-scraper/pkg/validate"
)

// maxTriggerAscent bounds how far up from a trigger element the surrounding
// text is searched for an address.
const maxTriggerAscent = 2

// extractContactTriggers looks at anchors, buttons and labels whose visible
// text matches a "send email"/"contact" phrase (multilingual) and harvests
// addresses from the element itself or from its immediate surroundings.
func (e *Extractor) extractContactTriggers(doc *goquery.Document, sourceURL string, pool *candidatePool) {
	doc.Find("a, button, label, span").Each(func(_ int, sel *goquery.Selection) {
		text := strings.ToLower(validate.CleanText(sel.Text()))
		if text == "" || len(text) > 60 {
			return
		}
		if !matchesTriggerPhrase(text) {
			return
		}

		context := validate.TruncateContext(validate.CleanText(sel.Text()), e.opts.ContextWindow)

		// The trigger's own attributes are the strongest signal
		for _, attrKey := range []string{"href", "data-href", "title"} {
			if val, ok := sel.Attr(attrKey); ok {
				for _, match := range patterns.EmailTextVariants[0].Re.FindAllString(val, -1) {
					email := validate.CanonicalizeEmail(match)
					if !validate.IsValidEmail(email) {
						continue
					}
					pool.add(models.EmailCandidate{
						Email:      email,
						Method:     models.MethodContactTrigger,
						Confidence: e.opts.TriggerHrefConfidence,
						Context:    context,
						SourceURL:  sourceURL,
					})
				}
			}
		}

		// Then the text around the trigger, ascending a bounded number of
		// levels
		parent := sel
		for level := 0; level < maxTriggerAscent; level++ {
			parent = parent.Parent()
			if parent.Length() == 0 {
				break
			}
		}
		if parent.Length() == 0 {
			return
		}
		surrounding := parent.Text()
		for _, match := range patterns.EmailTextVariants[0].Re.FindAllString(surrounding, -1) {
			email := validate.CanonicalizeEmail(match)
			if !validate.IsValidEmail(email) {
				continue
			}
			pool.add(models.EmailCandidate{
				Email:      email,
				Method:     models.MethodContactTrigger,
				Confidence: e.opts.TriggerTextConfidence,
				Context:    validate.TruncateContext(validate.CleanText(surrounding), e.opts.ContextWindow),
				SourceURL:  sourceURL,
			})
		}
	})
}

func matchesTriggerPhrase(text string) bool {
	for _, phrase := range patterns.ContactTriggerPhrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}
