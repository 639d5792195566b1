// Package export writes finished contact lists to CSV, JSON or Excel files.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"contact-scraper/pkg/models"
	"contact-scraper/pkg/utils"
)

// columns is the fixed output column order shared by every format.
var columns = []string{
	"email", "name", "title", "company", "phone",
	"source_url", "extraction_method", "confidence", "validation_score", "context",
}

// Exporter renders a contact list in one output format.
type Exporter interface {
	// Export writes the contacts and their run summary to w.
	Export(contacts []models.Contact, summary *models.CrawlSummary, w io.Writer) error

	// Extension returns the filename extension including the dot.
	Extension() string
}

// ForFormat returns the exporter for a configured output format.
func ForFormat(format string) (Exporter, error) {
	switch format {
	case "csv":
		return &CSVExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	case "excel":
		return &ExcelExporter{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown output format '%s'", utils.ErrExport, format)
	}
}

// WriteFile exports to a timestamped file under dir, named after the run's
// domain, and returns the written path.
func WriteFile(dir, format string, contacts []models.Contact, summary *models.CrawlSummary) (string, error) {
	exporter, err := ForFormat(format)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("%w: creating output directory '%s': %w", utils.ErrFilesystem, dir, err)
	}

	base := "contacts"
	if summary != nil && summary.Domain != "" {
		base = utils.SanitizeFilename(summary.Domain)
	}
	filename := fmt.Sprintf("%s_contacts_%s%s", base, time.Now().Format("20060102_150405"), exporter.Extension())
	path := filepath.Join(dir, filename)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("%w: creating '%s': %w", utils.ErrFilesystem, path, err)
	}
	defer file.Close()

	if err := exporter.Export(contacts, summary, file); err != nil {
		return "", err
	}
	if err := file.Sync(); err != nil {
		return "", fmt.Errorf("%w: syncing '%s': %w", utils.ErrFilesystem, path, err)
	}
	return path, nil
}

// row renders one contact in column order.
func row(c *models.Contact) []string {
	return []string{
		c.Email,
		c.Name,
		c.Title,
		c.Company,
		c.Phone,
		c.SourceURL,
		c.ExtractionMethod.String(),
		fmt.Sprintf("%.2f", c.Confidence),
		fmt.Sprintf("%.2f", c.ValidationScore),
		c.Context,
	}
}
