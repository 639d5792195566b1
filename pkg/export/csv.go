package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"contact-scraper/pkg/models"
	"contact-scraper/pkg/utils"
)

// CSVExporter writes one header row followed by one row per contact.
type CSVExporter struct{}

func (*CSVExporter) Extension() string { return ".csv" }

func (*CSVExporter) Export(contacts []models.Contact, _ *models.CrawlSummary, w io.Writer) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(columns); err != nil {
		return fmt.Errorf("%w: writing CSV header: %w", utils.ErrExport, err)
	}
	for i := range contacts {
		if err := writer.Write(row(&contacts[i])); err != nil {
			return fmt.Errorf("%w: writing CSV row for '%s': %w", utils.ErrExport, contacts[i].Email, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("%w: flushing CSV: %w", utils.ErrExport, err)
	}
	return nil
}
