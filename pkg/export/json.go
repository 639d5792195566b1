package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"contact-scraper/pkg/models"
	"contact-scraper/pkg/utils"
)

// JSONExporter wraps the contact list in a metadata envelope so consumers
// get the run context alongside the records.
type JSONExporter struct{}

func (*JSONExporter) Extension() string { return ".json" }

// jsonEnvelope is the exported document shape.
type jsonEnvelope struct {
	ExportedAt   time.Time            `json:"exported_at"`
	ContactCount int                  `json:"contact_count"`
	Summary      *models.CrawlSummary `json:"summary,omitempty"`
	Contacts     []models.Contact     `json:"contacts"`
}

func (*JSONExporter) Export(contacts []models.Contact, summary *models.CrawlSummary, w io.Writer) error {
	if contacts == nil {
		contacts = []models.Contact{}
	}
	envelope := jsonEnvelope{
		ExportedAt:   time.Now().UTC(),
		ContactCount: len(contacts),
		Summary:      summary,
		Contacts:     contacts,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(envelope); err != nil {
		return fmt.Errorf("%w: encoding JSON: %w", utils.ErrExport, err)
	}
	return nil
}
