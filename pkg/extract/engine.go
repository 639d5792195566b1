// Package extract turns one page's parsed markup into a deduplicated list of
// email candidates. Strategies run independently and union into a single
// pool keyed by lowercase address; the first strategy to find an address
// wins, so strategy order encodes trust.
package extract

import (
	"context"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"contact-scraper/pkg/models"
	"contact-scraper/pkg/ocr"
)

// Method confidence defaults. Empirically chosen in tuning, kept as Options
// defaults rather than fixed truths.
const (
	DefaultMailtoConfidence         = 0.95
	DefaultMailtoEnhancedConfidence = 0.9
	DefaultTextBasicConfidence      = 0.9
	DefaultTextOtherConfidence      = 0.8
	DefaultDeobfuscationConfidence  = 0.85
	DefaultDataAttributeConfidence  = 0.85
	DefaultCSSHiddenConfidence      = 0.7
	DefaultJSConcatConfidence       = 0.75
	DefaultTriggerHrefConfidence    = 0.9
	DefaultTriggerTextConfidence    = 0.85
	DefaultOCRConfidence            = 0.6
)

// Options tunes the extraction engine. Zero values mean "use default".
type Options struct {
	MailtoConfidence         float64
	MailtoEnhancedConfidence float64
	TextBasicConfidence      float64
	TextOtherConfidence      float64
	DeobfuscationConfidence  float64
	DataAttributeConfidence  float64
	CSSHiddenConfidence      float64
	JSConcatConfidence       float64
	TriggerHrefConfidence    float64
	TriggerTextConfidence    float64
	OCRConfidence            float64

	ContextWindow int  // Max chars of surrounding text kept per candidate
	ExtractSocial bool // Collect social profile links for the page
	OCREnabled    bool // Run the OCR strategy when a reader is available
}

// DefaultOptions returns the tuned defaults.
func DefaultOptions() Options {
	return Options{
		MailtoConfidence:         DefaultMailtoConfidence,
		MailtoEnhancedConfidence: DefaultMailtoEnhancedConfidence,
		TextBasicConfidence:      DefaultTextBasicConfidence,
		TextOtherConfidence:      DefaultTextOtherConfidence,
		DeobfuscationConfidence:  DefaultDeobfuscationConfidence,
		DataAttributeConfidence:  DefaultDataAttributeConfidence,
		CSSHiddenConfidence:      DefaultCSSHiddenConfidence,
		JSConcatConfidence:       DefaultJSConcatConfidence,
		TriggerHrefConfidence:    DefaultTriggerHrefConfidence,
		TriggerTextConfidence:    DefaultTriggerTextConfidence,
		OCRConfidence:            DefaultOCRConfidence,
		ContextWindow:            300,
	}
}

// fillDefaults replaces zero confidences with the tuned defaults.
func (o *Options) fillDefaults() {
	def := DefaultOptions()
	if o.MailtoConfidence == 0 {
		o.MailtoConfidence = def.MailtoConfidence
	}
	if o.MailtoEnhancedConfidence == 0 {
		o.MailtoEnhancedConfidence = def.MailtoEnhancedConfidence
	}
	if o.TextBasicConfidence == 0 {
		o.TextBasicConfidence = def.TextBasicConfidence
	}
	if o.TextOtherConfidence == 0 {
		o.TextOtherConfidence = def.TextOtherConfidence
	}
	if o.DeobfuscationConfidence == 0 {
		o.DeobfuscationConfidence = def.DeobfuscationConfidence
	}
	if o.DataAttributeConfidence == 0 {
		o.DataAttributeConfidence = def.DataAttributeConfidence
	}
	if o.CSSHiddenConfidence == 0 {
		o.CSSHiddenConfidence = def.CSSHiddenConfidence
	}
	if o.JSConcatConfidence == 0 {
		o.JSConcatConfidence = def.JSConcatConfidence
	}
	if o.TriggerHrefConfidence == 0 {
		o.TriggerHrefConfidence = def.TriggerHrefConfidence
	}
	if o.TriggerTextConfidence == 0 {
		o.TriggerTextConfidence = def.TriggerTextConfidence
	}
	if o.OCRConfidence == 0 {
		o.OCRConfidence = def.OCRConfidence
	}
	if o.ContextWindow <= 0 {
		o.ContextWindow = def.ContextWindow
	}
}

// Extractor runs the strategy cascade over parsed pages. Safe for concurrent
// use by page workers.
type Extractor struct {
	opts          Options
	ocrReader     ocr.ImageTextReader
	log           *logrus.Entry
	warnNoOCROnce sync.Once
}

// NewExtractor creates an Extractor. ocrReader may be the ocr.Unavailable
// null object; the OCR strategy then skips with a single warning.
func NewExtractor(opts Options, ocrReader ocr.ImageTextReader, log *logrus.Entry) *Extractor {
	opts.fillDefaults()
	if ocrReader == nil {
		ocrReader = ocr.NewUnavailable()
	}
	return &Extractor{opts: opts, ocrReader: ocrReader, log: log}
}

// ExtractEmails runs all strategies over doc and returns the deduplicated
// candidate list (insertion order) plus the page's social profile links when
// that collection is enabled. A failure inside one strategy is isolated:
// remaining strategies still run and the page contributes whatever
// candidates succeeded.
func (e *Extractor) ExtractEmails(ctx context.Context, doc *goquery.Document, sourceURL string) ([]models.EmailCandidate, map[string]string) {
	pool := newCandidatePool()

	// Trusted strategies first: their confidence wins on duplicate addresses
	e.safeRun("mailto", func() { e.extractMailto(doc, sourceURL, pool) })

	pageText := VisibleText(doc)
	e.safeRun("text_pattern", func() { e.extractTextPatterns(pageText, sourceURL, pool) })
	e.safeRun("deobfuscation", func() { e.extractDeobfuscated(pageText, sourceURL, pool) })

	// Augmenting sources
	e.safeRun("data_attribute", func() { e.extractDataAttributes(doc, sourceURL, pool) })
	e.safeRun("css_hidden", func() { e.extractCSSHidden(doc, sourceURL, pool) })
	e.safeRun("javascript", func() { e.extractJSConcat(doc, sourceURL, pool) })
	e.safeRun("contact_form_trigger", func() { e.extractContactTriggers(doc, sourceURL, pool) })

	if e.opts.OCREnabled {
		if e.ocrReader.Available() {
			e.safeRun("ocr", func() { e.extractOCR(ctx, doc, sourceURL, pool) })
		} else {
			e.warnNoOCROnce.Do(func() {
				e.log.Warn("OCR extraction requested but no image reader is available, skipping")
			})
		}
	}

	var socials map[string]string
	if e.opts.ExtractSocial {
		e.safeRun("social", func() { socials = collectSocialProfiles(doc) })
	}

	return pool.candidates(), socials
}

// safeRun isolates a strategy: a panic inside one strategy must not cost the
// page the candidates other strategies found.
func (e *Extractor) safeRun(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			e.log.WithField("strategy", name).Warnf("Extraction strategy failed: %v", r)
		}
	}()
	fn()
}

// candidatePool deduplicates candidates by lowercase address while keeping
// insertion order.
type candidatePool struct {
	order []models.EmailCandidate
	seen  map[string]struct{}
}

func newCandidatePool() *candidatePool {
	return &candidatePool{seen: make(map[string]struct{})}
}

// add accepts a candidate unless its address was already claimed by an
// earlier strategy. Returns true when the candidate was added.
func (p *candidatePool) add(c models.EmailCandidate) bool {
	if _, dup := p.seen[c.Email]; dup {
		return false
	}
	p.seen[c.Email] = struct{}{}
	p.order = append(p.order, c)
	return true
}

func (p *candidatePool) candidates() []models.EmailCandidate {
	return p.order
}
