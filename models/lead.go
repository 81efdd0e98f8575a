package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Lead statuses
const (
	LeadStatusNew         = "New"
	LeadStatusContacted   = "Contacted"
	LeadStatusQualified   = "Qualified"
	LeadStatusUnqualified = "Unqualified"
)

// Lead sources
const (
	LeadSourceManual   = "Manual"
	LeadSourceImport   = "Import"
	LeadSourceWebsite  = "Website"
	LeadSourceReferral = "Referral"
	LeadSourceOther    = "Other"
)

// Lead intake progress
const (
	IntakeStatusNotStarted = "Not Started"
	IntakeStatusPending    = "Pending"
	IntakeStatusCompleted  = "Completed"
)

// LeadIntake is the pre-qualification summary kept on a lead
type LeadIntake struct {
	Status  string `gorm:"not null;default:Not Started" json:"status"`
	Score   *int   `json:"score,omitempty"`
	Summary string `gorm:"type:text" json:"summary,omitempty"`
}

// Lead is a prospective client still being qualified
type Lead struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	WorkspaceID string `gorm:"type:uuid;not null;index" json:"workspace_id"`

	Name      string `gorm:"not null" json:"name"`
	Company   string `json:"company,omitempty"`
	Email     string `gorm:"not null;index" json:"email"`
	Phone     string `json:"phone,omitempty"`
	AvatarURL string `json:"avatar,omitempty"`

	Status string `gorm:"not null;default:New;index" json:"status"`
	Source string `gorm:"not null;default:Manual" json:"source"`

	OwnerID *string `gorm:"type:uuid;index" json:"owner_id,omitempty"`
	Owner   *User   `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`

	Intake LeadIntake `gorm:"embedded;embeddedPrefix:intake_" json:"intake"`

	Activity []Activity `gorm:"foreignKey:LeadID" json:"activity,omitempty"`
	Tasks    []Task     `gorm:"foreignKey:LeadID" json:"tasks,omitempty"`
}

// BeforeCreate hook to generate UUID
func (l *Lead) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	if l.Status == "" {
		l.Status = LeadStatusNew
	}
	if l.Source == "" {
		l.Source = LeadSourceManual
	}
	if l.Intake.Status == "" {
		l.Intake.Status = IntakeStatusNotStarted
	}
	return nil
}

// TableName specifies the table name for Lead model
func (Lead) TableName() string {
	return "leads"
}

// CanConvert reports whether the lead is ready to become a client
func (l *Lead) CanConvert() bool {
	return l.Status == LeadStatusQualified
}

func IsValidLeadStatus(status string) bool {
	switch status {
	case LeadStatusNew, LeadStatusContacted, LeadStatusQualified, LeadStatusUnqualified:
		return true
	}
	return false
}

func IsValidLeadSource(source string) bool {
	switch source {
	case LeadSourceManual, LeadSourceImport, LeadSourceWebsite, LeadSourceReferral, LeadSourceOther:
		return true
	}
	return false
}

func IsValidLeadIntakeStatus(status string) bool {
	return status == IntakeStatusNotStarted || status == IntakeStatusPending || status == IntakeStatusCompleted
}
