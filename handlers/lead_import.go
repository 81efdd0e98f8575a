package handlers

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"visa_crm_go/db"
	"visa_crm_go/middleware"
	"visa_crm_go/models"
	"visa_crm_go/services"

	"github.com/labstack/echo/v4"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ImportLeadsHandler creates leads from an uploaded .csv or .xlsx file.
// The upload is archived to storage before it is parsed.
func ImportLeadsHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	workspaceID := middleware.GetWorkspaceID(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return middleware.RespondError(c, http.StatusBadRequest, "toast.error.validation", "file: is required")
	}
	if err := services.ValidateImportUpload(fileHeader); err != nil {
		return respondServiceError(c, err)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return respondServiceError(c, err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, services.MaxImportSize+1))
	if err != nil {
		return respondServiceError(c, err)
	}

	if services.Storage != nil {
		key := services.ImportArchiveKey(workspaceID, fileHeader.Filename)
		if _, err := services.Storage.Put(c.Request().Context(), bytes.NewReader(data), key, fileHeader.Header.Get("Content-Type"), int64(len(data))); err != nil {
			log.Printf("[IMPORT] Failed to archive %s: %v", fileHeader.Filename, err)
		}
	}

	result, err := services.ImportLeads(db.DB, workspaceID, user, fileHeader.Filename, bytes.NewReader(data))
	if err != nil {
		return respondServiceError(c, err)
	}

	log.Printf("[IMPORT] %s imported %s: %d ok, %d skipped",
		user.Email, fileHeader.Filename, result.SuccessCount, result.SkippedCount)
	middleware.RecordLeadImport(result.SuccessCount, result.SkippedCount)
	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), models.AuditActionImport, "Lead", "", fileHeader.Filename,
		fmt.Sprintf("Imported %d leads", result.SuccessCount), nil, result)
	if result.SuccessCount > 0 {
		services.PublishEvent(services.EventLeadsImported, workspaceID, user.ID, result)
	}

	return respondWithToast(c, http.StatusOK, result, "toast.lead.imported", "toast.lead.imported_description",
		map[string]interface{}{
			"success": result.SuccessCount,
			"skipped": result.SkippedCount,
		})
}

// LeadImportTemplateHandler downloads an empty spreadsheet with the import headers
func LeadImportTemplateHandler(c echo.Context) error {
	buf, err := services.GenerateLeadImportTemplate()
	if err != nil {
		return respondServiceError(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="lead_import_template.xlsx"`)
	return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ExportLeadsHandler downloads the filtered lead list as a spreadsheet
func ExportLeadsHandler(c echo.Context) error {
	filter := services.LeadFilter{
		Status:  c.QueryParam("status"),
		OwnerID: c.QueryParam("owner_id"),
		Search:  c.QueryParam("q"),
	}
	leads, err := services.ListLeads(db.DB, middleware.GetWorkspaceID(c), filter)
	if err != nil {
		return respondServiceError(c, err)
	}

	buf, err := services.ExportLeadsXLSX(leads)
	if err != nil {
		return respondServiceError(c, err)
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), models.AuditActionExport, "Lead", "", "",
		fmt.Sprintf("Exported %d leads", len(leads)), nil, nil)

	filename := fmt.Sprintf("leads_%s.xlsx", time.Now().Format("2006-01-02"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}

// LeadPipelineReportHandler renders the pipeline summary as a PDF
func LeadPipelineReportHandler(c echo.Context) error {
	report, err := services.BuildPipelineReport(db.DB, middleware.GetWorkspaceID(c), time.Now())
	if err != nil {
		return respondServiceError(c, err)
	}
	pdf, err := services.RenderPipelineReportPDF(report)
	if err != nil {
		return respondServiceError(c, err)
	}

	filename := fmt.Sprintf("pipeline_%s.pdf", report.GeneratedAt.Format("2006-01-02"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`inline; filename="%s"`, filename))
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}
