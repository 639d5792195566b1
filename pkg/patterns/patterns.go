// Package patterns holds the static, read-only collection of regular
// expressions and token sets shared by every extraction strategy. Nothing in
// this package mutates state after init.
package patterns

import "regexp"

// TextVariant is one email regex of a known strictness, applied to visible
// page text. Variants run in declaration order; the first match for an
// address wins, so stricter variants come first.
type TextVariant struct {
	Name  string
	Re    *regexp.Regexp
	Group int // Capture group holding the address (0 = whole match)
}

// EmailTextVariants are the text-scan regexes in decreasing strictness.
var EmailTextVariants = []TextVariant{
	{Name: "basic", Re: regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), Group: 0},
	{Name: "relaxed", Re: regexp.MustCompile(`[A-Za-z0-9._%+-]+\s*@\s*[A-Za-z0-9][A-Za-z0-9.-]*\.[A-Za-z]{2,}`), Group: 0},
	{Name: "with_context", Re: regexp.MustCompile(`(?i)(?:e-?mail|contact|reach|write)\D{0,10}?([A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,})`), Group: 1},
	{Name: "quoted", Re: regexp.MustCompile(`["']([A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,})["']`), Group: 1},
}

// ObfuscationForm recognizes one way of writing an address without a literal
// "@". All forms expose exactly three capture groups: local part, domain
// (without TLD), TLD. Reassembly is local@domain.tld.
type ObfuscationForm struct {
	Name string
	Re   *regexp.Regexp
}

// ObfuscationForms are the recognized obfuscation spellings.
var ObfuscationForms = []ObfuscationForm{
	{Name: "bracket", Re: regexp.MustCompile(`(?i)([a-z0-9._%+-]+)\s*\[\s*at\s*\]\s*([a-z0-9.-]+)\s*\[\s*dot\s*\]\s*([a-z]{2,})`)},
	{Name: "paren", Re: regexp.MustCompile(`(?i)([a-z0-9._%+-]+)\s*\(\s*at\s*\)\s*([a-z0-9.-]+)\s*\(\s*dot\s*\)\s*([a-z]{2,})`)},
	{Name: "word", Re: regexp.MustCompile(`(?i)\b([a-z0-9._%+-]+)\s+at\s+([a-z0-9.-]+)\s+dot\s+([a-z]{2,})\b`)},
	{Name: "spaced", Re: regexp.MustCompile(`([A-Za-z0-9._%+-]+)\s+@\s+([A-Za-z0-9.-]+)\s*\.\s*([A-Za-z]{2,})`)},
	{Name: "entity", Re: regexp.MustCompile(`([A-Za-z0-9._%+-]+)&#0?64;([A-Za-z0-9.-]+)&#0?46;([A-Za-z]{2,})`)},
	{Name: "fullwidth", Re: regexp.MustCompile(`([A-Za-z0-9._%+-]+)＠([A-Za-z0-9.-]+)．([A-Za-z]{2,})`)},
}

// JSConcatPatterns recognize string-concatenation email construction inside
// inline scripts, e.g. "user" + "@" + "example.com". Two capture groups:
// everything before and after the joined "@".
var JSConcatPatterns = []*regexp.Regexp{
	regexp.MustCompile(`['"]([A-Za-z0-9._%+-]+)['"]\s*\+\s*['"]@['"]\s*\+\s*['"]([A-Za-z0-9.-]+\.[A-Za-z]{2,})['"]`),
	regexp.MustCompile(`['"]([A-Za-z0-9._%+-]+)@['"]\s*\+\s*['"]([A-Za-z0-9.-]+\.[A-Za-z]{2,})['"]`),
	regexp.MustCompile(`['"]([A-Za-z0-9._%+-]+)['"]\s*\+\s*['"]@([A-Za-z0-9.-]+\.[A-Za-z]{2,})['"]`),
}

// Phone matches North-American and general international number shapes. The
// digit-count gate in pkg/validate decides whether a match is complete.
var Phone = regexp.MustCompile(`(?:\+?\d{1,3}[-.\s]?)?\(?\d{2,4}\)?[-.\s]?\d{3,4}[-.\s]?\d{3,4}`)

// CanonicalTitles maps every accepted title spelling (lowercase) to its
// display form. Membership in this map IS the title gate: free-form titles
// are never accepted.
var CanonicalTitles = map[string]string{
	"professor":           "Professor",
	"prof":                "Professor",
	"prof.":               "Professor",
	"associate professor": "Associate Professor",
	"assistant professor": "Assistant Professor",
	"dr":                  "Dr.",
	"dr.":                 "Dr.",
	"director":            "Director",
	"manager":             "Manager",
	"head":                "Head",
	"dean":                "Dean",
	"chair":               "Chair",
	"lecturer":            "Lecturer",
}

// TitleName captures a "Title Firstname Lastname" span, used by the
// structural ancestor walk. Group 1 = title, group 2 = name.
var TitleName = regexp.MustCompile(`\b(Professor|Prof\.?|Dr\.?|Director|Manager|Head|Dean|Chair|Lecturer)\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+){1,3})\b`)

// CapitalizedName captures 2-4 capitalized words that look like a person
// name. The name gate in pkg/validate applies the stricter token checks.
var CapitalizedName = regexp.MustCompile(`\b([A-Z][a-z]+(?:\s+[A-Z][a-z]+){1,3})\b`)

// NonNameIndicators are lowercase tokens that disqualify a span from being a
// person name (role, department and boilerplate words).
var NonNameIndicators = map[string]struct{}{
	"email": {}, "mail": {}, "contact": {}, "info": {}, "office": {},
	"department": {}, "admin": {}, "support": {}, "sales": {}, "marketing": {},
	"phone": {}, "fax": {}, "address": {}, "website": {}, "home": {},
	"page": {}, "staff": {}, "team": {}, "faculty": {}, "service": {},
	"general": {}, "welcome": {}, "about": {}, "news": {}, "events": {},
	"university": {}, "college": {}, "institute": {}, "school": {},
	"center": {}, "centre": {}, "group": {}, "lab": {}, "laboratory": {},
}

// OrgIndicators are the tokens at least one of which must appear in an
// accepted company value.
var OrgIndicators = []string{
	"university", "college", "institute", "corporation", "company",
	"inc", "ltd", "llc",
}

// Label patterns recognize "Label: value" lines common on contact pages.
// Group 1 holds the value. Full-width colons included for CJK pages.
var (
	LabelName    = regexp.MustCompile(`(?i)\bname\s*[:：]\s*([^\n|,;<]{2,60})`)
	LabelTitle   = regexp.MustCompile(`(?i)\b(?:title|position|role)\s*[:：]\s*([^\n|,;<]{2,60})`)
	LabelPhone   = regexp.MustCompile(`(?i)\b(?:phone|tel|telephone|mobile)\s*[:：]\s*([^\n|,;<]{5,40})`)
	LabelCompany = regexp.MustCompile(`(?i)\b(?:company|organization|organisation|employer|affiliation)\s*[:：]\s*([^\n|,;<]{2,80})`)
)

// ContactTriggerPhrases are lowercase anchor/button texts that suggest a
// nearby element carries an email (multilingual).
var ContactTriggerPhrases = []string{
	"email", "e-mail", "mail", "send email", "send a message", "get in touch",
	"contact", "contact us", "write to us", "reach out",
	"correo", "correo electrónico", "contacto",
	"courriel", "contactez-nous",
	"kontakt", "e-post", "contatti",
	"メール", "邮箱", "联系",
}

// CardContainerClasses matches class/id values of card-like containers that
// typically present one person (staff directories, team grids).
var CardContainerClasses = regexp.MustCompile(`(?i)\b(staff|team|member|profile|person|people|faculty|employee|contact-card|card)\b`)

// SocialProfilePatterns map a platform key to a regex matching a profile URL
// on that platform. Group 0 is the full profile URL.
var SocialProfilePatterns = map[string]*regexp.Regexp{
	"linkedin":  regexp.MustCompile(`https?://(?:[a-z]{2,3}\.)?linkedin\.com/(?:in|company)/[A-Za-z0-9_%-]+/?`),
	"twitter":   regexp.MustCompile(`https?://(?:www\.)?(?:twitter|x)\.com/[A-Za-z0-9_]{1,15}/?`),
	"facebook":  regexp.MustCompile(`https?://(?:www\.)?facebook\.com/[A-Za-z0-9.]+/?`),
	"instagram": regexp.MustCompile(`https?://(?:www\.)?instagram\.com/[A-Za-z0-9_.]+/?`),
	"github":    regexp.MustCompile(`https?://(?:www\.)?github\.com/[A-Za-z0-9-]+/?`),
}
