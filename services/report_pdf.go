package services

import (
	"bytes"
	"fmt"
	"time"

	"visa_crm_go/models"

	"github.com/jung-kurt/gofpdf"
	"gorm.io/gorm"
)

// PipelineReport is the data behind the lead pipeline PDF
type PipelineReport struct {
	WorkspaceName string
	GeneratedAt   time.Time
	StatusCounts  map[string]int64
	Leads         []models.Lead
}

// BuildPipelineReport loads lead counts and the lead list for a workspace
func BuildPipelineReport(db *gorm.DB, workspaceID string, now time.Time) (PipelineReport, error) {
	var workspace models.Workspace
	if err := db.First(&workspace, "id = ?", workspaceID).Error; err != nil {
		return PipelineReport{}, fmt.Errorf("failed to load workspace: %w", err)
	}
	counts, err := CountLeadsByStatus(db, workspaceID, "")
	if err != nil {
		return PipelineReport{}, err
	}
	leads, err := ListLeads(db, workspaceID, LeadFilter{})
	if err != nil {
		return PipelineReport{}, err
	}
	return PipelineReport{
		WorkspaceName: workspace.Name,
		GeneratedAt:   now,
		StatusCounts:  counts,
		Leads:         leads,
	}, nil
}

// RenderPipelineReportPDF draws the pipeline summary and lead table on A4 pages
func RenderPipelineReportPDF(report PipelineReport) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Lead pipeline", true)
	pdf.SetAuthor(report.WorkspaceName, true)
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 6, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, tr("Lead pipeline"), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, tr(fmt.Sprintf("%s  |  %s", report.WorkspaceName, report.GeneratedAt.Format("January 2, 2006"))), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Summary", "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	var total int64
	for _, status := range leadStatusOrder {
		count := report.StatusCounts[status]
		total += count
		pdf.CellFormat(60, 7, status, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, fmt.Sprintf("%d", count), "", 1, "L", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(60, 7, "Total", "T", 0, "L", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("%d", total), "T", 1, "L", false, 0, "")
	pdf.Ln(6)

	widths := []float64{50, 45, 55, 30}
	headers := []string{"Name", "Company", "Email", "Status"}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(235, 235, 235)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, lead := range report.Leads {
		cells := []string{lead.Name, lead.Company, lead.Email, lead.Status}
		for i, v := range cells {
			pdf.CellFormat(widths[i], 7, tr(truncate(v, 32)), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	if len(report.Leads) == 0 {
		pdf.CellFormat(0, 8, "No leads yet.", "1", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pipeline report: %w", err)
	}
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
