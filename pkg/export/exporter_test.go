package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contact-scraper/pkg/models"
	"contact-scraper/pkg/utils"
)

func sampleContacts() []models.Contact {
	return []models.Contact{
		{
			Email:            "jane.doe@example.edu",
			Name:             "Jane Doe",
			Title:            "Professor",
			Company:          "Example University",
			Phone:            "+1 555-123-4567",
			SourceURL:        "https://example.edu/faculty",
			ExtractionMethod: models.MethodMailto,
			Confidence:       0.95,
			ValidationScore:  0.9,
			Context:          "Jane Doe, Professor",
		},
		{
			Email:            "info@example.com",
			SourceURL:        "https://example.com/contact",
			ExtractionMethod: models.MethodTextPattern,
			Confidence:       0.8,
			ValidationScore:  0.24,
		},
	}
}

func sampleSummary() *models.CrawlSummary {
	return &models.CrawlSummary{
		RunID:         "run-1",
		StartURL:      "https://example.edu/",
		Domain:        "example.edu",
		PagesCrawled:  12,
		PagesFailed:   1,
		ContactsFound: 2,
	}
}

func TestForFormat(t *testing.T) {
	for _, format := range []string{"csv", "json", "excel"} {
		exporter, err := ForFormat(format)
		require.NoError(t, err, format)
		assert.NotNil(t, exporter)
	}

	_, err := ForFormat("parquet")
	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrExport)
}

func TestCSVExporter(t *testing.T) {
	var buf bytes.Buffer
	exporter := &CSVExporter{}

	require.NoError(t, exporter.Export(sampleContacts(), sampleSummary(), &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{
		"email", "name", "title", "company", "phone",
		"source_url", "extraction_method", "confidence", "validation_score", "context",
	}, records[0])

	assert.Equal(t, []string{
		"jane.doe@example.edu", "Jane Doe", "Professor", "Example University", "+1 555-123-4567",
		"https://example.edu/faculty", "mailto", "0.95", "0.90", "Jane Doe, Professor",
	}, records[1])

	assert.Equal(t, "info@example.com", records[2][0])
	assert.Equal(t, "", records[2][1], "empty fields stay empty")
	assert.Equal(t, "text_pattern", records[2][6])
}

func TestCSVExporter_HeaderOnlyWhenEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&CSVExporter{}).Export(nil, nil, &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestJSONExporter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSONExporter{}).Export(sampleContacts(), sampleSummary(), &buf))

	var envelope struct {
		ExportedAt   string               `json:"exported_at"`
		ContactCount int                  `json:"contact_count"`
		Summary      *models.CrawlSummary `json:"summary"`
		Contacts     []models.Contact     `json:"contacts"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &envelope))

	assert.NotEmpty(t, envelope.ExportedAt)
	assert.Equal(t, 2, envelope.ContactCount)
	require.NotNil(t, envelope.Summary)
	assert.Equal(t, "run-1", envelope.Summary.RunID)
	require.Len(t, envelope.Contacts, 2)
	assert.Equal(t, "jane.doe@example.edu", envelope.Contacts[0].Email)
}

func TestJSONExporter_EmptyListIsArrayNotNull(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSONExporter{}).Export(nil, nil, &buf))

	assert.Contains(t, buf.String(), `"contacts": []`)
	assert.NotContains(t, buf.String(), `"contacts": null`)
}

func TestExcelExporter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&ExcelExporter{}).Export(sampleContacts(), sampleSummary(), &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"Contacts", "Summary", "Statistics"}, f.GetSheetList())

	rows, err := f.GetRows("Contacts")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "email", rows[0][0])
	assert.Equal(t, "jane.doe@example.edu", rows[1][0])

	summaryRows, err := f.GetRows("Summary")
	require.NoError(t, err)
	assert.Equal(t, []string{"run_id", "run-1"}, summaryRows[0])
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteFile(dir, "csv", sampleContacts(), sampleSummary())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(filepath.Base(path), "example.edu_contacts_"))
	assert.True(t, strings.HasSuffix(path, ".csv"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "jane.doe@example.edu")
}

func TestWriteFile_NoSummaryUsesDefaultBase(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteFile(dir, "json", nil, nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(path), "contacts_contacts_"))
	assert.True(t, strings.HasSuffix(path, ".json"))
}

func TestWriteFile_UnknownFormat(t *testing.T) {
	_, err := WriteFile(t.TempDir(), "parquet", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrExport)
}
