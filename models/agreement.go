package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Agreement categories
const (
	AgreementCategoryRetainer = "Retainer"
	AgreementCategoryService  = "Service"
	AgreementCategoryConsent  = "Consent"
	AgreementCategoryOther    = "Other"
)

// Agreement statuses
const (
	AgreementStatusDraft     = "Draft"
	AgreementStatusSent      = "Sent"
	AgreementStatusSigned    = "Signed"
	AgreementStatusCancelled = "Cancelled"
)

type Agreement struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	WorkspaceID string `gorm:"type:uuid;not null;index" json:"workspace_id"`
	ClientID    string `gorm:"type:uuid;not null;index" json:"client_id"`

	Title    string `gorm:"not null" json:"title"`
	Category string `gorm:"not null;default:Retainer" json:"category"`
	Status   string `gorm:"not null;default:Draft" json:"status"`

	FeeCents int64  `gorm:"not null;default:0" json:"fee_cents"`
	Currency string `gorm:"not null;default:CAD" json:"currency"`

	Body string `gorm:"type:text" json:"body"` // sanitised HTML

	SentAt      *time.Time `json:"sent_at,omitempty"`
	SignedAt    *time.Time `json:"signed_at,omitempty"`
	CreatedByID *string    `gorm:"type:uuid" json:"created_by_id,omitempty"`
}

// BeforeCreate hook to generate UUID
func (a *Agreement) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for Agreement model
func (Agreement) TableName() string {
	return "agreements"
}

// FeeAmount returns the fee in currency units
func (a *Agreement) FeeAmount() float64 {
	return float64(a.FeeCents) / 100
}

func IsValidAgreementCategory(c string) bool {
	switch c {
	case AgreementCategoryRetainer, AgreementCategoryService, AgreementCategoryConsent, AgreementCategoryOther:
		return true
	}
	return false
}

func IsValidAgreementStatus(s string) bool {
	switch s {
	case AgreementStatusDraft, AgreementStatusSent, AgreementStatusSigned, AgreementStatusCancelled:
		return true
	}
	return false
}
