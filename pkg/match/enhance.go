package match

import (
	"strings"

	"contact-scraper/pkg/models"
	"contact-scraper/pkg/patterns"
	"contact-scraper/pkg/validate"
)

// enhancementBonus is added to confidence when a contact carries both a name
// and a recognized title after enhancement.
const enhancementBonus = 0.2

// Enhance fills inferable gaps in a matched contact and rewards records that
// end up with both a name and a title. Inference is conservative: a field
// already filled by matching is never overwritten.
func Enhance(c *models.Contact) {
	if c.Name == "" {
		if name := inferNameFromLocalPart(c.Email); name != "" {
			c.Name = name
		}
	}
	if c.Company == "" {
		if company := inferCompanyFromDomain(c.Email); company != "" {
			c.Company = company
		}
	}
	if c.Title != "" {
		if canonical, ok := validate.RecognizeTitle(c.Title); ok {
			c.Title = canonical
		}
	}

	if c.Name != "" && c.Title != "" {
		c.Confidence += enhancementBonus
		if c.Confidence > 1.0 {
			c.Confidence = 1.0
		}
	}
}

// inferNameFromLocalPart recovers a person name from common address shapes:
// first.last and first_last become "First Last", a short initial+surname
// local part (jsmith) becomes "J. Smith". Ambiguous shapes yield nothing.
func inferNameFromLocalPart(email string) string {
	at := strings.Index(email, "@")
	if at <= 0 {
		return ""
	}
	local := email[:at]

	for _, sep := range []string{".", "_", "-"} {
		parts := strings.Split(local, sep)
		if len(parts) != 2 {
			continue
		}
		first, last := titleToken(parts[0]), titleToken(parts[1])
		if first == "" || last == "" {
			continue
		}
		name := first + " " + last
		if validate.IsPlausibleName(name) {
			return name
		}
	}

	// jsmith-style: single short alphabetic token, initial plus surname
	if len(local) >= 4 && len(local) <= 8 && isAlphabetic(local) {
		if _, role := patterns.NonNameIndicators[strings.ToLower(local)]; !role {
			return strings.ToUpper(local[:1]) + ". " + titleToken(local[1:])
		}
	}
	return ""
}

// inferCompanyFromDomain maps an .edu address to "<Label> University".
func inferCompanyFromDomain(email string) string {
	at := strings.Index(email, "@")
	if at < 0 {
		return ""
	}
	domain := email[at+1:]
	labels := strings.Split(domain, ".")
	if len(labels) < 2 || labels[len(labels)-1] != "edu" {
		return ""
	}
	base := titleToken(labels[len(labels)-2])
	if base == "" {
		return ""
	}
	return base + " University"
}

func titleToken(tok string) string {
	if tok == "" || !isAlphabetic(tok) {
		return ""
	}
	return strings.ToUpper(tok[:1]) + strings.ToLower(tok[1:])
}

func isAlphabetic(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			if r < 'A' || r > 'Z' {
				return false
			}
		}
	}
	return s != ""
}
