package services

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
)

const (
	MaxDocumentSize = 10 << 20 // 10MB
	MaxImportSize   = 5 << 20  // 5MB
)

// uploadRule bounds what a multipart upload may contain
type uploadRule struct {
	maxSize    int64
	extensions []string
	formats    string
}

var (
	documentUploadRule = uploadRule{
		maxSize:    MaxDocumentSize,
		extensions: []string{".pdf", ".doc", ".docx", ".txt", ".jpg", ".jpeg", ".png"},
		formats:    "PDF, DOC, DOCX, TXT, JPG, PNG",
	}
	importUploadRule = uploadRule{
		maxSize:    MaxImportSize,
		extensions: []string{".csv", ".xlsx"},
		formats:    "CSV, XLSX",
	}
)

func (r uploadRule) check(fileHeader *multipart.FileHeader) error {
	if fileHeader.Size > r.maxSize {
		return NewValidationError("file", fmt.Sprintf("must be %d MB or smaller", r.maxSize>>20))
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	for _, allowed := range r.extensions {
		if ext == allowed {
			return nil
		}
	}
	return NewValidationError("file", "type not allowed. Accepted formats: "+r.formats)
}

// ValidateDocumentUpload checks a client document against the size limit and accepted formats
func ValidateDocumentUpload(fileHeader *multipart.FileHeader) error {
	return documentUploadRule.check(fileHeader)
}

// ValidateImportUpload checks a lead import spreadsheet
func ValidateImportUpload(fileHeader *multipart.FileHeader) error {
	return importUploadRule.check(fileHeader)
}
