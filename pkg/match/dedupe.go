package match

import "contact-scraper/pkg/models"

// RemoveDuplicates collapses contacts sharing an address within one page,
// keeping the record with more filled attribution fields. On a tie the
// first-seen record wins, preserving strategy trust order.
func RemoveDuplicates(contacts []models.Contact) []models.Contact {
	best := make(map[string]int, len(contacts))
	out := make([]models.Contact, 0, len(contacts))

	for _, c := range contacts {
		idx, seen := best[c.Email]
		if !seen {
			best[c.Email] = len(out)
			out = append(out, c)
			continue
		}
		if c.FilledFieldCount() > out[idx].FilledFieldCount() {
			out[idx] = c
		}
	}
	return out
}
