package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"contact-scraper/pkg/models"
	"contact-scraper/pkg/patterns"
	"contact-scraper/pkg/validate"
)

var whitespaceInEmail = regexp.MustCompile(`\s+`)

// VisibleText walks the parsed tree and collects the text a reader would
// see. Style and noscript bodies are dropped; script bodies are dropped too
// UNLESS they contain an "@", since such scripts may hold JS-constructed
// addresses the text variants can still catch. The document itself is never
// mutated: the same parse serves the matcher and link discovery afterwards.
func VisibleText(doc *goquery.Document) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "style", "noscript":
				return
			case "script":
				text := nodeText(n)
				if strings.Contains(text, "@") {
					b.WriteString(" ")
					b.WriteString(text)
				}
				return
			}
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range doc.Nodes {
		walk(n)
	}
	return b.String()
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}

// extractTextPatterns applies the regex variants of decreasing strictness
// over the page's visible text. Confidence depends on the variant that made
// the match; the pool keeps the first (strictest) hit per address.
func (e *Extractor) extractTextPatterns(pageText, sourceURL string, pool *candidatePool) {
	for _, variant := range patterns.EmailTextVariants {
		confidence := e.opts.TextOtherConfidence
		if variant.Name == "basic" {
			confidence = e.opts.TextBasicConfidence
		}

		for _, loc := range variant.Re.FindAllStringSubmatchIndex(pageText, -1) {
			gStart, gEnd := loc[2*variant.Group], loc[2*variant.Group+1]
			if gStart < 0 {
				continue
			}
			raw := pageText[gStart:gEnd]
			// The relaxed variant tolerates spaces around '@'; collapse them
			email := validate.CanonicalizeEmail(whitespaceInEmail.ReplaceAllString(raw, ""))
			if !validate.IsValidEmail(email) {
				continue
			}
			pool.add(models.EmailCandidate{
				Email:      email,
				Method:     models.MethodTextPattern,
				Confidence: confidence,
				Context:    e.contextAround(pageText, loc[0], loc[1]),
				SourceURL:  sourceURL,
			})
		}
	}
}

// contextAround returns a cleaned, bounded window of text surrounding the
// match at [start,end).
func (e *Extractor) contextAround(text string, start, end int) string {
	window := e.opts.ContextWindow / 2
	lo := start - window
	if lo < 0 {
		lo = 0
	}
	hi := end + window
	if hi > len(text) {
		hi = len(text)
	}
	// Back off to rune boundaries so multi-byte characters never split
	for lo > 0 && lo < len(text) && !isRuneStart(text[lo]) {
		lo--
	}
	for hi < len(text) && !isRuneStart(text[hi]) {
		hi++
	}
	return validate.TruncateContext(validate.CleanText(text[lo:hi]), e.opts.ContextWindow)
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }
