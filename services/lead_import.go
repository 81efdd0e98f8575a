package services

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"visa_crm_go/models"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

var ErrUnsupportedImport = errors.New("unsupported import file type")

// LeadImportColumns are the recognised header names, matched case-insensitively
var LeadImportColumns = []string{"name", "company", "email", "phone"}

// ImportResult summarises a lead import. Every data row is counted once, as
// imported or skipped; Notes explain skipped rows that had data in them.
type ImportResult struct {
	TotalProcessed int      `json:"total_processed"`
	SuccessCount   int      `json:"success_count"`
	SkippedCount   int      `json:"skipped_count"`
	Notes          []string `json:"notes"`
	LeadIDs        []string `json:"lead_ids"`
}

// ImportRow is one data row keyed by recognised column name. Line is the
// 1-based line or sheet row it came from.
type ImportRow struct {
	Line   int
	Fields map[string]string
}

// Blank reports whether every recognised column is empty
func (r ImportRow) Blank() bool {
	for _, v := range r.Fields {
		if v != "" {
			return false
		}
	}
	return true
}

// ReadImportRows parses a .csv or .xlsx file with a header row. Blank rows are
// returned too so callers can count them.
func ReadImportRows(filename string, r io.Reader) ([]ImportRow, error) {
	var records [][]string
	var lines []int
	var err error

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		records, lines, err = readCSV(r)
	case ".xlsx":
		records, lines, err = readXLSX(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedImport, filepath.Ext(filename))
	}
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, NewValidationError("file", "is empty")
	}

	columns := map[int]string{}
	for i, header := range records[0] {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(header, "\ufeff")))
		for _, known := range LeadImportColumns {
			if key == known {
				columns[i] = known
			}
		}
	}
	if !hasColumn(columns, "name") || !hasColumn(columns, "email") {
		return nil, NewValidationError("file", "header row must include name and email columns")
	}

	rows := make([]ImportRow, 0, len(records)-1)
	for n, record := range records[1:] {
		row := ImportRow{Line: lines[n+1], Fields: map[string]string{}}
		for i, value := range record {
			if col, ok := columns[i]; ok {
				row.Fields[col] = strings.TrimSpace(value)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func hasColumn(columns map[int]string, name string) bool {
	for _, c := range columns {
		if c == name {
			return true
		}
	}
	return false
}

// readCSV returns the records and the line each one starts on. Empty lines
// produce no record, so line numbers can skip.
func readCSV(r io.Reader) ([][]string, []int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var records [][]string
	var lines []int
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, NewValidationError("file", "could not be parsed as CSV: "+err.Error())
		}
		line, _ := reader.FieldPos(0)
		records = append(records, record)
		lines = append(lines, line)
	}
	return records, lines, nil
}

func readXLSX(r io.Reader) ([][]string, []int, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, NewValidationError("file", "could not be opened as XLSX")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, NewValidationError("file", "has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	lines := make([]int, len(rows))
	for i := range rows {
		lines[i] = i + 1
	}
	return rows, lines, nil
}

// ImportLeads creates one lead per valid row with status New, source Import, owned by the importer.
// Blank rows and rows missing a name or an email are skipped silently. Rows whose
// values do not validate are skipped too, with a note naming the line.
func ImportLeads(db *gorm.DB, workspaceID string, owner *models.User, filename string, r io.Reader) (*ImportResult, error) {
	rows, err := ReadImportRows(filename, r)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Notes: []string{}, LeadIDs: []string{}}
	err = db.Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			result.TotalProcessed++
			if row.Blank() || row.Fields["name"] == "" || row.Fields["email"] == "" {
				result.SkippedCount++
				continue
			}

			in := LeadInput{
				Name:    row.Fields["name"],
				Company: row.Fields["company"],
				Email:   row.Fields["email"],
				Phone:   row.Fields["phone"],
				Source:  models.LeadSourceImport,
			}
			if err := in.Validate(); err != nil {
				result.SkippedCount++
				result.Notes = append(result.Notes, fmt.Sprintf("row %d: %v", row.Line, err))
				continue
			}

			lead := &models.Lead{
				WorkspaceID: workspaceID,
				Name:        in.Name,
				Company:     strings.TrimSpace(in.Company),
				Email:       in.Email,
				Phone:       strings.TrimSpace(in.Phone),
				Status:      models.LeadStatusNew,
				Source:      models.LeadSourceImport,
			}
			if owner != nil {
				lead.OwnerID = &owner.ID
			}
			if err := tx.Create(lead).Error; err != nil {
				return fmt.Errorf("failed to create lead on row %d: %w", row.Line, err)
			}
			if _, err := RecordLeadActivity(tx, lead, owner, models.ActivityTypeNote, "Imported from "+filepath.Base(filename)); err != nil {
				return err
			}
			result.SuccessCount++
			result.LeadIDs = append(result.LeadIDs, lead.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GenerateLeadImportTemplate builds an XLSX with the expected header and one example row
func GenerateLeadImportTemplate() (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Leads"
	f.SetSheetName("Sheet1", sheet)
	for i, header := range LeadImportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}
	f.SetSheetRow(sheet, "A2", &[]interface{}{"Jane Doe", "Acme Corp", "jane@example.com", "+1 416 555 0100"})

	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	f.SetCellStyle(sheet, "A1", "D1", headerStyle)
	f.SetColWidth(sheet, "A", "D", 24)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write excel buffer: %w", err)
	}
	return buf, nil
}

// ExportLeadsXLSX writes leads to a spreadsheet whose first four columns re-import cleanly
func ExportLeadsXLSX(leads []models.Lead) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Leads"
	f.SetSheetName("Sheet1", sheet)
	headers := []interface{}{"name", "company", "email", "phone", "status", "source", "owner", "created_at"}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return nil, err
	}

	for i, lead := range leads {
		owner := ""
		if lead.Owner != nil {
			owner = lead.Owner.Name
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{
			lead.Name, lead.Company, lead.Email, lead.Phone,
			lead.Status, lead.Source, owner, lead.CreatedAt.Format("2006-01-02"),
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	f.SetCellStyle(sheet, "A1", "H1", headerStyle)
	f.SetColWidth(sheet, "A", "H", 20)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write excel buffer: %w", err)
	}
	return buf, nil
}
