package process

import (
	"time"

	"github.com/sirupsen/logrus"

	"contact-scraper/pkg/models"
	"contact-scraper/pkg/validate"
)

// Validation score weights. The base rewards a gated address on its own;
// each populated attribution field adds its weight before the method
// confidence scales the total.
const (
	scoreBase    = 0.3
	scoreName    = 0.2
	scorePhone   = 0.2
	scoreTitle   = 0.15
	scoreCompany = 0.15
)

// PostProcessor turns the per-page results of a finished crawl into the
// final, deduplicated, scored contact list.
type PostProcessor struct {
	revalidate bool // Re-run field gates before scoring
	log        *logrus.Entry
}

// NewPostProcessor creates a PostProcessor. revalidate re-applies the email
// and field gates across the aggregate, dropping records that no longer
// pass.
func NewPostProcessor(revalidate bool, log *logrus.Entry) *PostProcessor {
	return &PostProcessor{revalidate: revalidate, log: log}
}

// Process flattens page results into one contact list: stamps extraction
// time, optionally re-validates, computes validation scores and collapses
// cross-page duplicates keeping the highest-scoring record per address
// (first seen wins ties).
func (pp *PostProcessor) Process(pages []models.PageResult) []models.Contact {
	now := time.Now().UTC()
	var all []models.Contact

	for _, page := range pages {
		for _, c := range page.Contacts {
			if c.ExtractedAt.IsZero() {
				c.ExtractedAt = now
			}
			if pp.revalidate && !pp.clean(&c) {
				continue
			}
			c.ValidationScore = Score(&c)
			all = append(all, c)
		}
	}

	deduped := dedupeByScore(all)
	pp.log.WithFields(logrus.Fields{
		"raw":    len(all),
		"unique": len(deduped),
	}).Info("Post-processing complete")
	return deduped
}

// Score computes the contact's validation score: base plus per-field weights,
// scaled by the method confidence, capped at 1.0.
func Score(c *models.Contact) float64 {
	score := scoreBase
	if c.Name != "" {
		score += scoreName
	}
	if c.Phone != "" {
		score += scorePhone
	}
	if c.Title != "" {
		score += scoreTitle
	}
	if c.Company != "" {
		score += scoreCompany
	}
	score *= c.Confidence
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// clean re-applies the acceptance gates to a contact. A failing email drops
// the record; a failing optional field is emptied, never kept.
func (pp *PostProcessor) clean(c *models.Contact) bool {
	email := validate.CanonicalizeEmail(c.Email)
	if !validate.IsValidEmail(email) {
		pp.log.WithField("email", c.Email).Debug("Dropping contact failing re-validation")
		return false
	}
	c.Email = email

	if c.Name != "" && !validate.IsPlausibleName(c.Name) {
		c.Name = ""
	}
	if c.Title != "" {
		if canonical, ok := validate.RecognizeTitle(c.Title); ok {
			c.Title = canonical
		} else {
			c.Title = ""
		}
	}
	if c.Company != "" && !validate.IsPlausibleCompany(c.Company) {
		c.Company = ""
	}
	if c.Phone != "" {
		if normalized, ok := validate.CompletePhone(c.Phone); ok {
			c.Phone = normalized
		} else {
			c.Phone = ""
		}
	}
	return true
}

// dedupeByScore keeps one contact per address across pages: the highest
// validation score wins, the earlier record wins ties.
func dedupeByScore(contacts []models.Contact) []models.Contact {
	index := make(map[string]int, len(contacts))
	out := make([]models.Contact, 0, len(contacts))

	for _, c := range contacts {
		idx, seen := index[c.Email]
		if !seen {
			index[c.Email] = len(out)
			out = append(out, c)
			continue
		}
		if c.ValidationScore > out[idx].ValidationScore {
			out[idx] = c
		}
	}
	return out
}
