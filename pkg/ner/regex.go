package ner

import (
	"context"
	"regexp"

	"contact-scraper/pkg/patterns"
	"contact-scraper/pkg/validate"
)

// orgSpan captures a capitalized span ending in an organizational indicator,
// e.g. "Stanford University" or "Acme Corporation".
var orgSpan = regexp.MustCompile(`\b([A-Z][A-Za-z&.'-]*(?:\s+[A-Z][A-Za-z&.'-]*){0,5}\s+(?:University|College|Institute|Corporation|Company|Inc\.?|Ltd\.?|LLC))\b`)

// RegexRecognizer is the fallback Recognizer built on the shared pattern
// library. It never errors.
type RegexRecognizer struct{}

// NewRegexRecognizer returns the pattern-based recognizer.
func NewRegexRecognizer() *RegexRecognizer {
	return &RegexRecognizer{}
}

// Name implements Recognizer.
func (r *RegexRecognizer) Name() string { return "regex" }

// Entities implements Recognizer. Person spans come from the title-name and
// capitalized-name patterns, filtered through the strict name gate; org
// spans from the organizational-indicator pattern.
func (r *RegexRecognizer) Entities(_ context.Context, text string) ([]Entity, error) {
	var entities []Entity
	seen := make(map[string]struct{})

	add := func(span, label string) {
		span = validate.CleanText(span)
		if span == "" {
			return
		}
		key := label + "\x00" + span
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		entities = append(entities, Entity{Text: span, Label: label})
	}

	// "Title Name" spans carry the strongest person signal
	for _, m := range patterns.TitleName.FindAllStringSubmatch(text, -1) {
		if validate.IsPlausibleName(m[2]) {
			add(m[2], LabelPerson)
		}
	}

	// Bare capitalized-name spans, gated strictly
	for _, m := range patterns.CapitalizedName.FindAllStringSubmatch(text, -1) {
		if validate.IsPlausibleName(m[1]) {
			add(m[1], LabelPerson)
		}
	}

	for _, m := range orgSpan.FindAllStringSubmatch(text, -1) {
		add(m[1], LabelOrg)
	}

	return entities, nil
}
