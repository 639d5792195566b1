package export

import (
	"fmt"
	"io"
	"sort"

	"github.com/xuri/excelize/v2"

	"contact-scraper/pkg/models"
	"contact-scraper/pkg/utils"
)

// Sheet names in the workbook.
const (
	sheetContacts   = "Contacts"
	sheetSummary    = "Summary"
	sheetStatistics = "Statistics"
)

// ExcelExporter writes a three-sheet workbook: the contact table, the run
// summary, and per-method statistics.
type ExcelExporter struct{}

func (*ExcelExporter) Extension() string { return ".xlsx" }

func (*ExcelExporter) Export(contacts []models.Contact, summary *models.CrawlSummary, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeContactsSheet(f, contacts); err != nil {
		return err
	}
	if err := writeSummarySheet(f, summary); err != nil {
		return err
	}
	if err := writeStatisticsSheet(f, contacts); err != nil {
		return err
	}

	// Drop the default sheet and present Contacts first
	f.DeleteSheet("Sheet1")
	if idx, err := f.GetSheetIndex(sheetContacts); err == nil {
		f.SetActiveSheet(idx)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("%w: writing workbook: %w", utils.ErrExport, err)
	}
	return nil
}

func writeContactsSheet(f *excelize.File, contacts []models.Contact) error {
	if _, err := f.NewSheet(sheetContacts); err != nil {
		return fmt.Errorf("%w: creating sheet '%s': %w", utils.ErrExport, sheetContacts, err)
	}

	if err := setRow(f, sheetContacts, 1, columns); err != nil {
		return err
	}
	for i := range contacts {
		if err := setRow(f, sheetContacts, i+2, row(&contacts[i])); err != nil {
			return err
		}
	}
	return nil
}

func writeSummarySheet(f *excelize.File, summary *models.CrawlSummary) error {
	if _, err := f.NewSheet(sheetSummary); err != nil {
		return fmt.Errorf("%w: creating sheet '%s': %w", utils.ErrExport, sheetSummary, err)
	}
	if summary == nil {
		return nil
	}

	rows := [][]string{
		{"run_id", summary.RunID},
		{"start_url", summary.StartURL},
		{"domain", summary.Domain},
		{"start_time", summary.StartTime.Format("2006-01-02 15:04:05")},
		{"end_time", summary.EndTime.Format("2006-01-02 15:04:05")},
		{"pages_crawled", fmt.Sprintf("%d", summary.PagesCrawled)},
		{"pages_failed", fmt.Sprintf("%d", summary.PagesFailed)},
		{"contacts_found", fmt.Sprintf("%d", summary.ContactsFound)},
		{"max_depth_seen", fmt.Sprintf("%d", summary.MaxDepthSeen)},
	}
	for i, r := range rows {
		if err := setRow(f, sheetSummary, i+1, r); err != nil {
			return err
		}
	}
	return nil
}

func writeStatisticsSheet(f *excelize.File, contacts []models.Contact) error {
	if _, err := f.NewSheet(sheetStatistics); err != nil {
		return fmt.Errorf("%w: creating sheet '%s': %w", utils.ErrExport, sheetStatistics, err)
	}

	byMethod := make(map[string]int)
	withName, withPhone := 0, 0
	for i := range contacts {
		byMethod[contacts[i].ExtractionMethod.String()]++
		if contacts[i].Name != "" {
			withName++
		}
		if contacts[i].Phone != "" {
			withPhone++
		}
	}

	methods := make([]string, 0, len(byMethod))
	for m := range byMethod {
		methods = append(methods, m)
	}
	sort.Strings(methods)

	if err := setRow(f, sheetStatistics, 1, []string{"metric", "value"}); err != nil {
		return err
	}
	rowNum := 2
	for _, m := range methods {
		if err := setRow(f, sheetStatistics, rowNum, []string{"method_" + m, fmt.Sprintf("%d", byMethod[m])}); err != nil {
			return err
		}
		rowNum++
	}
	for _, r := range [][]string{
		{"total_contacts", fmt.Sprintf("%d", len(contacts))},
		{"with_name", fmt.Sprintf("%d", withName)},
		{"with_phone", fmt.Sprintf("%d", withPhone)},
	} {
		if err := setRow(f, sheetStatistics, rowNum, r); err != nil {
			return err
		}
		rowNum++
	}
	return nil
}

// setRow writes a string slice as one sheet row.
func setRow(f *excelize.File, sheet string, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("%w: row coordinates: %w", utils.ErrExport, err)
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("%w: writing row %d on '%s': %w", utils.ErrExport, rowNum, sheet, err)
	}
	return nil
}
