package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Document categories
const (
	DocumentCategoryIdentity    = "Identity"
	DocumentCategoryEducation   = "Education"
	DocumentCategoryEmployment  = "Employment"
	DocumentCategoryFinancial   = "Financial"
	DocumentCategoryImmigration = "Immigration"
	DocumentCategoryOther       = "Other"
)

// Document statuses
const (
	DocumentStatusRequested   = "Requested"
	DocumentStatusUploaded    = "Uploaded"
	DocumentStatusUnderReview = "Under Review"
	DocumentStatusApproved    = "Approved"
	DocumentStatusRejected    = "Rejected"
)

// Document is a client document request, optionally with the uploaded file
type Document struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	WorkspaceID string `gorm:"type:uuid;not null;index" json:"workspace_id"`
	ClientID    string `gorm:"type:uuid;not null;index" json:"client_id"`

	Title    string `gorm:"not null" json:"title"`
	Category string `gorm:"not null;default:Other" json:"category"`
	Status   string `gorm:"not null;default:Requested" json:"status"`

	// File metadata, empty until uploaded
	FileName         string `json:"file_name,omitempty"`
	FileOriginalName string `json:"file_original_name,omitempty"`
	FilePath         string `json:"-"`
	FileSize         int64  `json:"file_size,omitempty"`
	MimeType         string `json:"mime_type,omitempty"`

	UploadedAt   *time.Time `json:"uploaded_at,omitempty"`
	UploadedByID *string    `gorm:"type:uuid" json:"uploaded_by_id,omitempty"`
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty"`

	// Filled by the document-summarizer flow
	Summary string `gorm:"type:text" json:"summary,omitempty"`
}

// BeforeCreate hook to generate UUID
func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for Document model
func (Document) TableName() string {
	return "documents"
}

// HasFile reports whether a file has been uploaded
func (d *Document) HasFile() bool {
	return d.FilePath != ""
}

// GetDownloadURL returns the download URL for this document
func (d *Document) GetDownloadURL() string {
	if !d.HasFile() {
		return ""
	}
	return "/api/clients/" + d.ClientID + "/documents/" + d.ID + "/download"
}

func IsValidDocumentCategory(c string) bool {
	switch c {
	case DocumentCategoryIdentity, DocumentCategoryEducation, DocumentCategoryEmployment,
		DocumentCategoryFinancial, DocumentCategoryImmigration, DocumentCategoryOther:
		return true
	}
	return false
}

func IsValidDocumentStatus(s string) bool {
	switch s {
	case DocumentStatusRequested, DocumentStatusUploaded, DocumentStatusUnderReview,
		DocumentStatusApproved, DocumentStatusRejected:
		return true
	}
	return false
}
