package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Intake form statuses
const (
	IntakeFormStatusNotStarted = "Not Started"
	IntakeFormStatusInProgress = "In Progress"
	IntakeFormStatusSubmitted  = "Submitted"
	IntakeFormStatusAnalyzed   = "Analyzed"
)

// IntakeStepKeys lists the questionnaire steps in order
var IntakeStepKeys = []string{
	"personal",
	"education",
	"employment",
	"language",
	"family",
	"history",
}

// IntakeAnswers maps step key to field answers
type IntakeAnswers map[string]map[string]string

// IntakeForm is a client's multi-step immigration questionnaire
type IntakeForm struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	WorkspaceID string `gorm:"type:uuid;not null;index" json:"workspace_id"`
	ClientID    string `gorm:"type:uuid;not null;uniqueIndex" json:"client_id"`

	Status      string `gorm:"not null;default:Not Started" json:"status"`
	CurrentStep int    `gorm:"not null;default:0" json:"current_step"`
	StepsJSON   string `gorm:"type:text" json:"-"`

	SubmittedAt     *time.Time `json:"submitted_at,omitempty"`
	Score           *int       `json:"score,omitempty"`
	AnalysisSummary string     `gorm:"type:text" json:"analysis_summary,omitempty"`
	AnalyzedAt      *time.Time `json:"analyzed_at,omitempty"`
}

// BeforeCreate hook to generate UUID
func (f *IntakeForm) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	if f.Status == "" {
		f.Status = IntakeFormStatusNotStarted
	}
	return nil
}

// TableName specifies the table name for IntakeForm model
func (IntakeForm) TableName() string {
	return "intake_forms"
}

// Answers decodes the stored steps
func (f *IntakeForm) Answers() (IntakeAnswers, error) {
	answers := IntakeAnswers{}
	if f.StepsJSON == "" {
		return answers, nil
	}
	if err := json.Unmarshal([]byte(f.StepsJSON), &answers); err != nil {
		return nil, fmt.Errorf("failed to decode intake answers: %w", err)
	}
	return answers, nil
}

// SetAnswers encodes the steps back onto the form
func (f *IntakeForm) SetAnswers(answers IntakeAnswers) error {
	data, err := json.Marshal(answers)
	if err != nil {
		return fmt.Errorf("failed to encode intake answers: %w", err)
	}
	f.StepsJSON = string(data)
	return nil
}

// MarshalJSON exposes the decoded answers alongside the form fields
func (f IntakeForm) MarshalJSON() ([]byte, error) {
	type alias IntakeForm
	answers, _ := f.Answers()
	return json.Marshal(struct {
		alias
		Steps IntakeAnswers `json:"steps"`
	}{alias: alias(f), Steps: answers})
}

func IsValidIntakeStep(key string) bool {
	for _, k := range IntakeStepKeys {
		if k == key {
			return true
		}
	}
	return false
}
