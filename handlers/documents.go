package handlers

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/http"

	"visa_crm_go/db"
	"visa_crm_go/middleware"
	"visa_crm_go/models"
	"visa_crm_go/services"
	"visa_crm_go/services/ai"

	"github.com/labstack/echo/v4"
)

// maxSummarizeSize caps the file sent to the summarizer flow
const maxSummarizeSize = 4 << 20

func loadClientDocument(c echo.Context) (*models.Client, *models.Document, error) {
	client, err := services.GetClient(db.DB, middleware.GetWorkspaceID(c), c.Param("id"))
	if err != nil {
		return nil, nil, err
	}
	doc, err := services.GetDocument(db.DB, client.ID, c.Param("docId"))
	if err != nil {
		return nil, nil, err
	}
	return client, doc, nil
}

// ListDocumentsHandler returns the client's document checklist
func ListDocumentsHandler(c echo.Context) error {
	client, err := services.GetClient(db.DB, middleware.GetWorkspaceID(c), c.Param("id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	docs, err := services.ListDocuments(db.DB, client.ID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, docs)
}

// RequestDocumentHandler adds a Requested document to the checklist
func RequestDocumentHandler(c echo.Context) error {
	client, err := services.GetClient(db.DB, middleware.GetWorkspaceID(c), c.Param("id"))
	if err != nil {
		return respondServiceError(c, err)
	}

	var in services.DocumentInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c)
	}
	doc, err := services.CreateDocumentRequest(db.DB, client, middleware.GetCurrentUser(c), in)
	if err != nil {
		return respondServiceError(c, err)
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), models.AuditActionCreate, "Document", doc.ID, doc.Title, "Document requested from "+client.Name, nil, doc)
	return respondWithToast(c, http.StatusCreated, doc, "toast.document.requested", "")
}

// UploadDocumentHandler attaches a file to a document request
func UploadDocumentHandler(c echo.Context) error {
	client, doc, err := loadClientDocument(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return middleware.RespondError(c, http.StatusBadRequest, "toast.error.validation", "file: is required")
	}
	user := middleware.GetCurrentUser(c)
	if err := services.AttachDocumentFile(c.Request().Context(), db.DB, doc, user, fileHeader); err != nil {
		return respondServiceError(c, err)
	}
	if _, err := services.RecordClientActivity(db.DB, client, user, models.ActivityTypeDocument, "Document uploaded: "+doc.Title); err != nil {
		return respondServiceError(c, err)
	}

	doc, err = services.GetDocument(db.DB, client.ID, doc.ID)
	if err != nil {
		return respondServiceError(c, err)
	}
	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), models.AuditActionUpdate, "Document", doc.ID, doc.Title, "File uploaded: "+doc.FileOriginalName, nil, doc)
	return respondWithToast(c, http.StatusOK, doc, "toast.document.uploaded", "")
}

// UpdateDocumentStatusHandler moves a document through review
func UpdateDocumentStatusHandler(c echo.Context) error {
	client, doc, err := loadClientDocument(c)
	if err != nil {
		return respondServiceError(c, err)
	}
	from := doc.Status

	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c)
	}
	if err := services.UpdateDocumentStatus(db.DB, doc, req.Status); err != nil {
		return respondServiceError(c, err)
	}

	doc, err = services.GetDocument(db.DB, client.ID, doc.ID)
	if err != nil {
		return respondServiceError(c, err)
	}
	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), models.AuditActionUpdate, "Document", doc.ID, doc.Title,
		"Status changed from "+from+" to "+doc.Status,
		map[string]string{"status": from}, map[string]string{"status": doc.Status})
	return respondWithToast(c, http.StatusOK, doc, "toast.document.updated", "")
}

// DownloadDocumentHandler streams the stored file
func DownloadDocumentHandler(c echo.Context) error {
	_, doc, err := loadClientDocument(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	reader, contentType, err := services.OpenDocumentFile(c.Request().Context(), doc)
	if err != nil {
		return respondServiceError(c, err)
	}
	defer reader.Close()

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), models.AuditActionDownload, "Document", doc.ID, doc.Title, "Document downloaded", nil, nil)

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, doc.FileOriginalName))
	return c.Stream(http.StatusOK, contentType, reader)
}

// DeleteDocumentHandler removes a document and its file
func DeleteDocumentHandler(c echo.Context) error {
	_, doc, err := loadClientDocument(c)
	if err != nil {
		return respondServiceError(c, err)
	}
	if err := services.DeleteDocument(c.Request().Context(), db.DB, doc); err != nil {
		return respondServiceError(c, err)
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), models.AuditActionDelete, "Document", doc.ID, doc.Title, "Document deleted", doc, nil)
	return middleware.RespondToast(c, http.StatusOK, middleware.ToastDefault, "toast.document.deleted", "")
}

// SummarizeDocumentHandler sends the uploaded file to the document-summarizer flow
// and stores the returned summary on the document
func SummarizeDocumentHandler(c echo.Context) error {
	client, doc, err := loadClientDocument(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	ctx := c.Request().Context()
	reader, contentType, err := services.OpenDocumentFile(ctx, doc)
	if err != nil {
		return respondServiceError(c, err)
	}
	data, err := io.ReadAll(io.LimitReader(reader, maxSummarizeSize))
	reader.Close()
	if err != nil {
		return respondServiceError(c, err)
	}

	in := ai.DocumentSummarizerInput{
		Title:    doc.Title,
		Language: middleware.GetLocale(c),
	}
	if contentType == "text/plain" {
		in.Content = string(data)
	} else {
		in.DataURI = "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
	}

	result, err := AIClient.DocumentSummarizer(ctx, in)
	middleware.RecordAIFlow(ai.FlowDocumentSummarizer, err == nil)
	if err != nil {
		return respondServiceError(c, err)
	}
	if err := services.SaveDocumentSummary(db.DB, doc, result.Summary); err != nil {
		return respondServiceError(c, err)
	}

	doc, err = services.GetDocument(db.DB, client.ID, doc.ID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, doc)
}
