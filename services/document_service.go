package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"visa_crm_go/models"

	"gorm.io/gorm"
)

var ErrDocumentNotFound = errors.New("document not found")

// DocumentInput requests a document from a client
type DocumentInput struct {
	Title    string `json:"title"`
	Category string `json:"category"`
}

// CreateDocumentRequest adds a document in status Requested
func CreateDocumentRequest(db *gorm.DB, client *models.Client, actor *models.User, in DocumentInput) (*models.Document, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := requireField("title", in.Title); err != nil {
		return nil, err
	}
	if in.Category == "" {
		in.Category = models.DocumentCategoryOther
	}
	if !models.IsValidDocumentCategory(in.Category) {
		return nil, NewValidationError("category", "is not a valid document category")
	}

	doc := &models.Document{
		WorkspaceID: client.WorkspaceID,
		ClientID:    client.ID,
		Title:       in.Title,
		Category:    in.Category,
		Status:      models.DocumentStatusRequested,
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(doc).Error; err != nil {
			return fmt.Errorf("failed to create document: %w", err)
		}
		_, err := RecordClientActivity(tx, client, actor, models.ActivityTypeDocument, "Document requested: "+doc.Title)
		return err
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// GetDocument loads a client's document
func GetDocument(db *gorm.DB, clientID, documentID string) (*models.Document, error) {
	var doc models.Document
	if err := db.Where("client_id = ?", clientID).First(&doc, "id = ?", documentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// ListDocuments returns a client's documents, newest first
func ListDocuments(db *gorm.DB, clientID string) ([]models.Document, error) {
	var docs []models.Document
	err := db.Where("client_id = ?", clientID).Order("created_at DESC").Find(&docs).Error
	return docs, err
}

// AttachDocumentFile stores the upload and moves the document to Uploaded.
// A previously stored file is replaced.
func AttachDocumentFile(ctx context.Context, db *gorm.DB, doc *models.Document, actor *models.User, fileHeader *multipart.FileHeader) error {
	if err := ValidateDocumentUpload(fileHeader); err != nil {
		return err
	}
	src, err := fileHeader.Open()
	if err != nil {
		return fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := ClientDocumentKey(doc.WorkspaceID, doc.ClientID, fileHeader.Filename)
	stored, err := Storage.Put(ctx, src, key, contentType, fileHeader.Size)
	if err != nil {
		return err
	}

	previous := doc.FilePath
	now := time.Now()
	updates := map[string]interface{}{
		"file_name":          stored.FileName,
		"file_original_name": filepath.Base(fileHeader.Filename),
		"file_path":          stored.Key,
		"file_size":          stored.FileSize,
		"mime_type":          stored.MimeType,
		"status":             models.DocumentStatusUploaded,
		"uploaded_at":        now,
	}
	if actor != nil {
		updates["uploaded_by_id"] = actor.ID
	}
	if err := db.Model(doc).Updates(updates).Error; err != nil {
		_ = Storage.Delete(ctx, stored.Key)
		return fmt.Errorf("failed to update document: %w", err)
	}
	if previous != "" && previous != stored.Key {
		_ = Storage.Delete(ctx, previous)
	}
	return nil
}

// UpdateDocumentStatus moves a document through review
func UpdateDocumentStatus(db *gorm.DB, doc *models.Document, status string) error {
	if !models.IsValidDocumentStatus(status) {
		return NewValidationError("status", "is not a valid document status")
	}
	updates := map[string]interface{}{"status": status}
	if status == models.DocumentStatusApproved || status == models.DocumentStatusRejected {
		updates["reviewed_at"] = time.Now()
	}
	return db.Model(doc).Updates(updates).Error
}

// SaveDocumentSummary stores an AI-generated summary
func SaveDocumentSummary(db *gorm.DB, doc *models.Document, summary string) error {
	return db.Model(doc).Update("summary", SanitizeHTML(summary)).Error
}

// OpenDocumentFile streams the stored file
func OpenDocumentFile(ctx context.Context, doc *models.Document) (io.ReadCloser, string, error) {
	if !doc.HasFile() {
		return nil, "", ErrDocumentNotFound
	}
	return Storage.Get(ctx, doc.FilePath)
}

// DeleteDocument removes the record and its stored file
func DeleteDocument(ctx context.Context, db *gorm.DB, doc *models.Document) error {
	if err := db.Delete(doc).Error; err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if doc.HasFile() {
		_ = Storage.Delete(ctx, doc.FilePath)
	}
	return nil
}
