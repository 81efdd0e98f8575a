package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Client statuses
const (
	ClientStatusActive  = "Active"
	ClientStatusOnHold  = "On Hold"
	ClientStatusClosed  = "Closed"
	ClientStatusBlocked = "Blocked"
)

// Case types. New clients start Unassigned until a lawyer picks a program.
const (
	CaseTypeUnassigned      = "Unassigned"
	CaseTypeExpressEntry    = "Express Entry"
	CaseTypeStudyPermit     = "Study Permit"
	CaseTypeWorkPermit      = "Work Permit"
	CaseTypeFamilySponsor   = "Family Sponsorship"
	CaseTypeVisitorVisa     = "Visitor Visa"
	CaseTypeCitizenship     = "Citizenship"
	CaseTypeRefugeeClaim    = "Refugee Claim"
	CaseTypeProvincialNomin = "Provincial Nominee"
)

// Placeholder case summary for freshly converted clients
const (
	DefaultSummaryCurrentStatus = "Client onboarded. Awaiting case assessment."
	DefaultSummaryNextSteps     = "Schedule initial consultation and collect documents."
	DefaultSummaryNotes         = "No notes yet."
)

// CaseSummary is the lawyer-maintained overview shown on the client profile
type CaseSummary struct {
	CurrentStatus string `gorm:"type:text" json:"current_status"`
	NextSteps     string `gorm:"type:text" json:"next_steps"`
	Notes         string `gorm:"type:text" json:"notes"`
}

// DefaultCaseSummary returns the placeholder summary
func DefaultCaseSummary() CaseSummary {
	return CaseSummary{
		CurrentStatus: DefaultSummaryCurrentStatus,
		NextSteps:     DefaultSummaryNextSteps,
		Notes:         DefaultSummaryNotes,
	}
}

// Client is an engaged customer. Clients are never hard-deleted; closing one is a status change.
type Client struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	WorkspaceID string `gorm:"type:uuid;not null;index" json:"workspace_id"`

	Name      string `gorm:"not null" json:"name"`
	Email     string `gorm:"not null;index" json:"email"`
	Phone     string `json:"phone,omitempty"`
	AvatarURL string `json:"avatar,omitempty"`

	Status          string     `gorm:"not null;default:Active;index" json:"status"`
	StatusChangedAt *time.Time `json:"status_changed_at,omitempty"`
	CaseType        string     `gorm:"not null;default:Unassigned" json:"case_type"`

	CaseSummary CaseSummary `gorm:"embedded;embeddedPrefix:summary_" json:"case_summary"`

	OwnerID      *string `gorm:"type:uuid;index" json:"owner_id,omitempty"`
	Owner        *User   `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	SourceLeadID *string `gorm:"type:uuid;index" json:"source_lead_id,omitempty"`

	Activity   []Activity  `gorm:"foreignKey:ClientID" json:"activity,omitempty"`
	Tasks      []Task      `gorm:"foreignKey:ClientID" json:"tasks,omitempty"`
	Documents  []Document  `gorm:"foreignKey:ClientID" json:"documents,omitempty"`
	Agreements []Agreement `gorm:"foreignKey:ClientID" json:"agreements,omitempty"`
}

// BeforeCreate hook to generate UUID
func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Status == "" {
		c.Status = ClientStatusActive
	}
	if c.CaseType == "" {
		c.CaseType = CaseTypeUnassigned
	}
	return nil
}

// TableName specifies the table name for Client model
func (Client) TableName() string {
	return "clients"
}

func IsValidClientStatus(status string) bool {
	switch status {
	case ClientStatusActive, ClientStatusOnHold, ClientStatusClosed, ClientStatusBlocked:
		return true
	}
	return false
}

func IsValidCaseType(caseType string) bool {
	switch caseType {
	case CaseTypeUnassigned, CaseTypeExpressEntry, CaseTypeStudyPermit, CaseTypeWorkPermit,
		CaseTypeFamilySponsor, CaseTypeVisitorVisa, CaseTypeCitizenship, CaseTypeRefugeeClaim,
		CaseTypeProvincialNomin:
		return true
	}
	return false
}
