package extract

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"contact-scraper/pkg/models"
	"contact-scraper/pkg/patterns"
	"contact-scraper/pkg/validate"
)

// maxOCRImagesPerPage bounds how many images one page may send through the
// reader; OCR is the slowest and least reliable strategy.
const maxOCRImagesPerPage = 10

// extractOCR harvests candidate image URLs (alt text or filename suggesting
// contact content) and runs them through the configured image reader. OCR
// output feeds both the plain regex and the deobfuscation forms at the
// lowest confidence of all methods.
func (e *Extractor) extractOCR(ctx context.Context, doc *goquery.Document, sourceURL string, pool *candidatePool) {
	base, err := url.Parse(sourceURL)
	if err != nil {
		base = nil
	}
	images := harvestContactImages(doc, base)

	for _, imgURL := range images {
		if ctx.Err() != nil {
			return
		}
		text, err := e.ocrReader.Text(ctx, imgURL)
		if err != nil {
			e.log.WithField("image", imgURL).Debugf("OCR read failed: %v", err)
			continue
		}

		for _, match := range patterns.EmailTextVariants[0].Re.FindAllString(text, -1) {
			email := validate.CanonicalizeEmail(match)
			if !validate.IsValidEmail(email) {
				continue
			}
			pool.add(models.EmailCandidate{
				Email:      email,
				Method:     models.MethodOCR,
				Confidence: e.opts.OCRConfidence,
				Context:    validate.TruncateContext(validate.CleanText(text), e.opts.ContextWindow),
				SourceURL:  sourceURL,
			})
		}

		// Images obfuscate too: "user [at] example [dot] com" as a PNG
		for _, form := range patterns.ObfuscationForms {
			for _, m := range form.Re.FindAllStringSubmatch(text, -1) {
				email := validate.CanonicalizeEmail(m[1] + "@" + m[2] + "." + m[3])
				if !validate.IsValidEmail(email) {
					continue
				}
				pool.add(models.EmailCandidate{
					Email:      email,
					Method:     models.MethodOCR,
					Confidence: e.opts.OCRConfidence,
					Context:    validate.TruncateContext(validate.CleanText(text), e.opts.ContextWindow),
					SourceURL:  sourceURL,
				})
			}
		}
	}
}

// harvestContactImages picks image URLs whose alt text, filename or
// surrounding container hints at contact content. Relative srcs are resolved
// against base so the reader always gets a fetchable URL.
func harvestContactImages(doc *goquery.Document, base *url.URL) []string {
	var images []string
	seen := make(map[string]struct{})

	doc.Find("img[src]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		src, ok := sel.Attr("src")
		if !ok || src == "" || strings.HasPrefix(src, "data:") {
			return true
		}

		alt, _ := sel.Attr("alt")
		hint := strings.ToLower(src + " " + alt)
		interesting := strings.Contains(hint, "email") || strings.Contains(hint, "contact") ||
			strings.Contains(hint, "mail") || strings.Contains(hint, "staff")

		if !interesting {
			// An image inside a card-like container is still worth reading
			if class, _ := sel.Parent().Attr("class"); !patterns.CardContainerClasses.MatchString(class) {
				return true
			}
		}

		if base != nil {
			if ref, err := url.Parse(src); err == nil {
				src = base.ResolveReference(ref).String()
			}
		}

		if _, dup := seen[src]; dup {
			return true
		}
		seen[src] = struct{}{}
		images = append(images, src)
		return len(images) < maxOCRImagesPerPage
	})

	return images
}
