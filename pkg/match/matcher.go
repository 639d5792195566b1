// Package match turns email candidates into contact records by walking the
// page structure around each address and attaching only field values that
// pass the strict acceptance gates. An empty field always beats a guess.
package match

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"

	"contact-scraper/pkg/models"
	"contact-scraper/pkg/ner"
	"contact-scraper/pkg/patterns"
	"contact-scraper/pkg/validate"
)

// Structural bounds for context discovery around a candidate's element.
const (
	maxAncestorLevels  = 5   // Levels walked up looking for attribution text
	maxExpansionLevels = 3   // Levels walked up building the free-text window
	maxExpansionChars  = 500 // Cap on the free-text window handed to NER
)

// Confidence defaults for structural reclassification. A candidate found
// inside one of these containers inherits the container's confidence when it
// beats the candidate's own.
const (
	DefaultTableConfidence = 0.9
	DefaultListConfidence  = 0.85
	DefaultCardConfidence  = 0.75
)

// Options tunes the matcher. Zero values mean "use default".
type Options struct {
	TableConfidence float64
	ListConfidence  float64
	CardConfidence  float64
	ContextWindow   int
}

func (o *Options) fillDefaults() {
	if o.TableConfidence == 0 {
		o.TableConfidence = DefaultTableConfidence
	}
	if o.ListConfidence == 0 {
		o.ListConfidence = DefaultListConfidence
	}
	if o.CardConfidence == 0 {
		o.CardConfidence = DefaultCardConfidence
	}
	if o.ContextWindow <= 0 {
		o.ContextWindow = 300
	}
}

// Matcher attaches contextual fields (name, title, company, phone) to email
// candidates found on a page.
type Matcher struct {
	recognizer ner.Recognizer
	opts       Options
	log        *logrus.Entry
}

// NewMatcher creates a Matcher. The recognizer must not be nil; pass the
// regex recognizer when nothing better is configured.
func NewMatcher(recognizer ner.Recognizer, opts Options, log *logrus.Entry) *Matcher {
	opts.fillDefaults()
	return &Matcher{recognizer: recognizer, opts: opts, log: log}
}

// Contacts builds one contact per candidate. The social profile map, when
// present, is attached to every contact from the page.
func (m *Matcher) Contacts(ctx context.Context, doc *goquery.Document, candidates []models.EmailCandidate, socials map[string]string) []models.Contact {
	contacts := make([]models.Contact, 0, len(candidates))
	for _, cand := range candidates {
		contact := m.matchOne(ctx, doc, cand)
		if len(socials) > 0 {
			contact.SocialProfiles = socials
		}
		contacts = append(contacts, contact)
	}
	return contacts
}

func (m *Matcher) matchOne(ctx context.Context, doc *goquery.Document, cand models.EmailCandidate) models.Contact {
	contact := models.Contact{
		Email:            cand.Email,
		SourceURL:        cand.SourceURL,
		ExtractionMethod: cand.Method,
		Confidence:       cand.Confidence,
		Context:          cand.Context,
	}

	anchor := findCandidateNode(doc, cand.Email)
	if anchor == nil {
		// Invisible sources (scripts, data attributes, OCR) have no element
		// to walk from; the candidate's own context is all there is.
		m.fillFromFreeText(ctx, cand.Context, cand.Email, &contact)
		return contact
	}

	// Explicit person markup is the most precise source and short-circuits
	// the heuristics.
	if m.fillFromStructuredMarkup(anchor, &contact) {
		return contact
	}

	if row := anchor.Closest("tr"); row.Length() > 0 {
		m.fillFromContainer(row, &contact)
		m.reclassify(&contact, models.MethodTable, m.opts.TableConfidence)
		return contact
	}
	if item := anchor.Closest("li"); item.Length() > 0 {
		m.fillFromContainer(item, &contact)
		m.reclassify(&contact, models.MethodList, m.opts.ListConfidence)
		return contact
	}
	if card := closestCard(anchor); card != nil {
		// Card grids repeat decorative text across entries; attribution from
		// them mislabels neighbors, so cards contribute the address only.
		m.reclassify(&contact, models.MethodCard, m.opts.CardConfidence)
		return contact
	}

	m.fillFromAncestors(anchor, &contact)
	if contact.Name == "" {
		m.fillFromFreeText(ctx, expandedText(anchor), cand.Email, &contact)
	}
	return contact
}

// reclassify applies a structural method to a contact unless the candidate's
// own method was already more trusted. Structure refines weak detections, it
// never degrades strong ones.
func (m *Matcher) reclassify(c *models.Contact, method models.ExtractionMethod, confidence float64) {
	if confidence > c.Confidence {
		c.ExtractionMethod = method
		c.Confidence = confidence
	}
}

// fillFromStructuredMarkup harvests schema.org microdata and hCard classes
// from the candidate's ancestor chain. Returns true when a name was found,
// which ends matching for the candidate.
func (m *Matcher) fillFromStructuredMarkup(anchor *goquery.Selection, c *models.Contact) bool {
	container := anchor
	for level := 0; level < maxAncestorLevels && container.Length() > 0; level++ {
		if sel := container.Find(`[itemprop="name"]`).First(); sel.Length() > 0 {
			m.acceptName(c, sel.Text())
		}
		if class, _ := container.Attr("class"); strings.Contains(class, "vcard") || strings.Contains(class, "hcard") {
			if sel := container.Find(".fn").First(); sel.Length() > 0 {
				m.acceptName(c, sel.Text())
			}
			if sel := container.Find(".org").First(); sel.Length() > 0 {
				m.acceptCompany(c, sel.Text())
			}
			if sel := container.Find(".tel").First(); sel.Length() > 0 {
				m.acceptPhone(c, sel.Text())
			}
		}
		if c.Name != "" {
			if sel := container.Find(`[itemprop="jobTitle"]`).First(); sel.Length() > 0 {
				m.acceptTitle(c, sel.Text())
			}
			if sel := container.Find(`[itemprop="telephone"]`).First(); sel.Length() > 0 {
				m.acceptPhone(c, sel.Text())
			}
			if sel := container.Find(`[itemprop="worksFor"]`).First(); sel.Length() > 0 {
				m.acceptCompany(c, sel.Text())
			}
			return true
		}
		container = container.Parent()
	}
	return false
}

// fillFromContainer scans a table row or list item for attribution fields.
func (m *Matcher) fillFromContainer(container *goquery.Selection, c *models.Contact) {
	text := validate.CleanText(container.Text())
	m.fillFromText(text, c)
	if c.Context == "" {
		c.Context = validate.TruncateContext(text, m.opts.ContextWindow)
	}
}

// fillFromAncestors walks up from the candidate's element, scanning each
// level's text for labels, title+name spans and phone numbers. Stops early
// when every field is filled.
func (m *Matcher) fillFromAncestors(anchor *goquery.Selection, c *models.Contact) {
	level := anchor
	for i := 0; i < maxAncestorLevels && level.Length() > 0; i++ {
		m.fillFromText(validate.CleanText(level.Text()), c)
		if c.Name != "" && c.Title != "" && c.Phone != "" && c.Company != "" {
			return
		}
		level = level.Parent()
	}
}

// fillFromText applies the pattern-based field harvest to one text span.
// Explicit "Label: value" lines win over positional spans.
func (m *Matcher) fillFromText(text string, c *models.Contact) {
	if text == "" {
		return
	}

	if c.Name == "" {
		if lm := patterns.LabelName.FindStringSubmatch(text); lm != nil {
			m.acceptName(c, lm[1])
		}
	}
	if c.Title == "" {
		if lm := patterns.LabelTitle.FindStringSubmatch(text); lm != nil {
			m.acceptTitle(c, lm[1])
		}
	}
	if c.Phone == "" {
		if lm := patterns.LabelPhone.FindStringSubmatch(text); lm != nil {
			m.acceptPhone(c, lm[1])
		}
	}
	if c.Company == "" {
		if lm := patterns.LabelCompany.FindStringSubmatch(text); lm != nil {
			m.acceptCompany(c, lm[1])
		}
	}

	if c.Name == "" || c.Title == "" {
		if tn := patterns.TitleName.FindStringSubmatch(text); tn != nil {
			if c.Title == "" {
				m.acceptTitle(c, tn[1])
			}
			if c.Name == "" {
				m.acceptName(c, tn[2])
			}
		}
	}
	if c.Name == "" {
		for _, span := range patterns.CapitalizedName.FindAllString(text, -1) {
			if m.acceptName(c, span) {
				break
			}
		}
	}
	if c.Phone == "" {
		for _, span := range patterns.Phone.FindAllString(text, -1) {
			if m.acceptPhone(c, span) {
				break
			}
		}
	}
	if c.Company == "" {
		// Whole-span acceptance only works for short, mostly-alphabetic text
		// ("Example University"); acceptCompany rejects anything longer.
		m.acceptCompany(c, text)
	}
}

// fillFromFreeText asks the entity recognizer about a bounded text window. A
// person span is only accepted when it correlates with the address local
// part, which keeps neighbors' names off the contact.
func (m *Matcher) fillFromFreeText(ctx context.Context, text, email string, c *models.Contact) {
	text = validate.TruncateContext(validate.CleanText(text), maxExpansionChars)
	if text == "" {
		return
	}

	entities, err := m.recognizer.Entities(ctx, text)
	if err != nil {
		m.log.WithField("recognizer", m.recognizer.Name()).Debugf("Entity recognition failed: %v", err)
		return
	}

	for _, ent := range entities {
		switch ent.Label {
		case ner.LabelPerson:
			if c.Name == "" && nameMatchesLocalPart(ent.Text, email) {
				m.acceptName(c, ent.Text)
			}
		case ner.LabelOrg:
			if c.Company == "" {
				m.acceptCompany(c, ent.Text)
			}
		}
	}
}

// Acceptance helpers: each runs the field's gate and fills only on pass.

func (m *Matcher) acceptName(c *models.Contact, span string) bool {
	span = validate.CleanText(span)
	if c.Name != "" || !validate.IsPlausibleName(span) {
		return false
	}
	c.Name = span
	return true
}

func (m *Matcher) acceptTitle(c *models.Contact, span string) bool {
	canonical, ok := validate.RecognizeTitle(span)
	if c.Title != "" || !ok {
		return false
	}
	c.Title = canonical
	return true
}

func (m *Matcher) acceptPhone(c *models.Contact, span string) bool {
	normalized, ok := validate.CompletePhone(span)
	if c.Phone != "" || !ok {
		return false
	}
	c.Phone = normalized
	return true
}

func (m *Matcher) acceptCompany(c *models.Contact, span string) bool {
	span = validate.CleanText(span)
	if c.Company != "" || !validate.IsPlausibleCompany(span) {
		return false
	}
	if len(span) > 80 || validate.LetterRatio(span) < 0.7 {
		return false
	}
	c.Company = span
	return true
}

// nameMatchesLocalPart reports whether a recognized person name shares a
// token with the address local part ("jane.smith@" matches "Jane Smith") or
// spells out its initials ("jds@" matches "Jane D. Smith").
func nameMatchesLocalPart(name, email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 {
		return false
	}
	local := strings.ToLower(email[:at])

	tokens := strings.Fields(strings.ToLower(name))
	var initials strings.Builder
	for _, tok := range tokens {
		r, _ := utf8.DecodeRuneInString(tok)
		if unicode.IsLetter(r) {
			initials.WriteRune(r)
		}
		if len(tok) < 3 {
			continue
		}
		if strings.Contains(local, tok) {
			return true
		}
	}

	// Initials-style addresses keep only letters in order: "j.d.s" -> "jds"
	if initials.Len() < 2 {
		return false
	}
	var compact strings.Builder
	for _, r := range local {
		if unicode.IsLetter(r) {
			compact.WriteRune(r)
		}
	}
	return compact.String() == initials.String()
}

// closestCard returns the nearest card-like ancestor, or nil.
func closestCard(anchor *goquery.Selection) *goquery.Selection {
	level := anchor
	for i := 0; i < maxAncestorLevels && level.Length() > 0; i++ {
		class, _ := level.Attr("class")
		id, _ := level.Attr("id")
		if patterns.CardContainerClasses.MatchString(class) || patterns.CardContainerClasses.MatchString(id) {
			return level
		}
		level = level.Parent()
	}
	return nil
}

// expandedText builds the free-text window around an element by walking up a
// bounded number of levels.
func expandedText(anchor *goquery.Selection) string {
	level := anchor
	text := validate.CleanText(anchor.Text())
	for i := 0; i < maxExpansionLevels; i++ {
		parent := level.Parent()
		if parent.Length() == 0 {
			break
		}
		expanded := validate.CleanText(parent.Text())
		if len(expanded) > maxExpansionChars {
			break
		}
		text = expanded
		level = parent
	}
	return text
}

// findCandidateNode locates the element that carries the address: a mailto
// anchor when one exists, otherwise the deepest element whose own text nodes
// contain it. Returns nil for addresses with no visible element.
func findCandidateNode(doc *goquery.Document, email string) *goquery.Selection {
	var found *goquery.Selection

	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		if strings.Contains(strings.ToLower(href), email) {
			found = sel
			return false
		}
		return true
	})
	if found != nil {
		return found
	}

	doc.Find("*").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if strings.Contains(strings.ToLower(ownText(sel)), email) {
			found = sel
			return false
		}
		return true
	})
	return found
}

// ownText concatenates the element's direct text-node children, excluding
// descendant elements.
func ownText(sel *goquery.Selection) string {
	if len(sel.Nodes) == 0 {
		return ""
	}
	var b strings.Builder
	for child := sel.Nodes[0].FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.TextNode {
			b.WriteString(child.Data)
		}
	}
	return b.String()
}
