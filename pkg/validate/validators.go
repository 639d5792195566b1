// Package validate holds the pure acceptance gates applied before any value
// enters a contact record. Every gate prefers leaving a field empty over
// accepting a low-confidence guess.
package validate

import (
	"strings"
	"unicode"

	"github.com/nyaruka/phonenumbers"

	"contact-scraper/pkg/patterns"
)

const (
	minEmailLength  = 5
	maxEmailLength  = 254
	maxLocalLength  = 64
	maxDomainLength = 255
	minNameLength   = 3
	minPhoneDigits  = 10
)

// CanonicalizeEmail lowercases and trims an address for use as a dedup key.
// It does not validate; run IsValidEmail on the result.
func CanonicalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsValidEmail applies the strict syntactic gate used everywhere a raw match
// becomes a candidate. The gate is idempotent: an accepted address always
// re-validates.
func IsValidEmail(email string) bool {
	if len(email) < minEmailLength || len(email) > maxEmailLength {
		return false
	}
	if strings.Count(email, "@") != 1 {
		return false
	}

	at := strings.Index(email, "@")
	local, domain := email[:at], email[at+1:]
	if local == "" || domain == "" {
		return false
	}
	if len(local) > maxLocalLength || len(domain) > maxDomainLength {
		return false
	}

	// Domain needs at least one dot and a >=2 alphabetic-char final label
	lastDot := strings.LastIndex(domain, ".")
	if lastDot < 0 {
		return false
	}
	tld := domain[lastDot+1:]
	if len(tld) < 2 {
		return false
	}
	for _, r := range tld {
		if !unicode.IsLetter(r) {
			return false
		}
	}

	// Dot placement rules
	if strings.Contains(email, "..") {
		return false
	}
	if strings.HasPrefix(email, ".") || strings.HasSuffix(email, ".") {
		return false
	}
	if strings.HasSuffix(local, ".") || strings.HasPrefix(domain, ".") {
		return false
	}

	// No leading/trailing hyphen or underscore on the whole string
	switch email[0] {
	case '-', '_':
		return false
	}
	switch email[len(email)-1] {
	case '-', '_':
		return false
	}

	return true
}

// IsPlausibleName gates a person-name span: 2-4 space-separated tokens, each
// alphabetic and capitalized, total length >= 3, and none of the tokens a
// known non-name indicator.
func IsPlausibleName(name string) bool {
	name = strings.TrimSpace(name)
	if len(name) < minNameLength {
		return false
	}

	tokens := strings.Fields(name)
	if len(tokens) < 2 || len(tokens) > 4 {
		return false
	}

	for _, tok := range tokens {
		runes := []rune(tok)
		if !unicode.IsUpper(runes[0]) {
			return false
		}
		for _, r := range runes {
			if !unicode.IsLetter(r) {
				return false
			}
		}
		if _, bad := patterns.NonNameIndicators[strings.ToLower(tok)]; bad {
			return false
		}
	}
	return true
}

// RecognizeTitle gates a job-title span against the closed set of accepted
// titles and returns the canonical display form.
func RecognizeTitle(title string) (string, bool) {
	canonical, ok := patterns.CanonicalTitles[strings.ToLower(strings.TrimSpace(title))]
	return canonical, ok
}

// IsPlausibleCompany gates a company span: it must contain at least one
// organizational indicator token.
func IsPlausibleCompany(company string) bool {
	lower := strings.ToLower(company)
	for _, indicator := range patterns.OrgIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

// CompletePhone gates a phone span (>= 10 digits, i.e. a complete number,
// not a fragment) and returns it normalized. Normalization goes through the
// phone-number library when the span parses as a valid number; otherwise the
// whitespace-cleaned span is kept as matched.
func CompletePhone(span string) (string, bool) {
	digits := 0
	for _, r := range span {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	if digits < minPhoneDigits {
		return "", false
	}

	cleaned := CleanText(span)
	region := "US"
	if strings.HasPrefix(strings.TrimSpace(span), "+") {
		region = ""
	}
	if num, err := phonenumbers.Parse(cleaned, region); err == nil && phonenumbers.IsValidNumber(num) {
		return phonenumbers.Format(num, phonenumbers.INTERNATIONAL), true
	}
	return cleaned, true
}

// CleanText collapses all interior whitespace to single spaces and trims.
func CleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// TruncateContext bounds a context snippet to max runes, appending an
// ellipsis when truncated.
func TruncateContext(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

// LetterRatio returns the fraction of letters among non-space runes. Used to
// reject decorative spans when cleaning free-text company values.
func LetterRatio(s string) float64 {
	letters, total := 0, 0
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if unicode.IsLetter(r) {
			letters++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(letters) / float64(total)
}
