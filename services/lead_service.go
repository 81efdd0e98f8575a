package services

import (
	"errors"
	"fmt"
	"strings"

	"visa_crm_go/models"

	"gorm.io/gorm"
)

var (
	ErrLeadNotFound          = errors.New("lead not found")
	ErrInvalidLeadTransition = errors.New("invalid lead status transition")
	ErrInvalidLeadStatus     = errors.New("invalid lead status")
)

// leadTransitions lists the allowed target statuses for each status.
// Same-state updates are not in the table and are rejected.
var leadTransitions = map[string]map[string]bool{
	models.LeadStatusNew: {
		models.LeadStatusContacted:   true,
		models.LeadStatusQualified:   true,
		models.LeadStatusUnqualified: true,
	},
	models.LeadStatusContacted: {
		models.LeadStatusQualified:   true,
		models.LeadStatusUnqualified: true,
		models.LeadStatusNew:         true,
	},
	models.LeadStatusQualified: {
		models.LeadStatusContacted:   true,
		models.LeadStatusUnqualified: true,
	},
	models.LeadStatusUnqualified: {
		models.LeadStatusNew:       true,
		models.LeadStatusContacted: true,
	},
}

var leadStatusOrder = []string{
	models.LeadStatusNew,
	models.LeadStatusContacted,
	models.LeadStatusQualified,
	models.LeadStatusUnqualified,
}

// CanTransitionLead reports whether a lead may move from one status to another
func CanTransitionLead(from, to string) bool {
	return leadTransitions[from][to]
}

// AllowedLeadTransitions returns the reachable statuses in display order
func AllowedLeadTransitions(from string) []string {
	var out []string
	for _, status := range leadStatusOrder {
		if CanTransitionLead(from, status) {
			out = append(out, status)
		}
	}
	return out
}

// LeadInput carries the editable lead fields
type LeadInput struct {
	Name      string  `json:"name"`
	Company   string  `json:"company"`
	Email     string  `json:"email"`
	Phone     string  `json:"phone"`
	AvatarURL string  `json:"avatar"`
	Source    string  `json:"source"`
	OwnerID   *string `json:"owner_id"`
}

// Validate checks required fields and the source enum
func (in *LeadInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if err := requireField("name", in.Name); err != nil {
		return err
	}
	if err := validateEmail(in.Email); err != nil {
		return err
	}
	if in.Source != "" && !models.IsValidLeadSource(in.Source) {
		return NewValidationError("source", "is not a valid lead source")
	}
	return nil
}

// LeadFilter narrows ListLeads
type LeadFilter struct {
	Status  string
	OwnerID string
	Search  string
}

// CreateLead creates a lead in status New and records its first activity entry
func CreateLead(db *gorm.DB, workspaceID string, actor *models.User, in LeadInput) (*models.Lead, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	lead := &models.Lead{
		WorkspaceID: workspaceID,
		Name:        in.Name,
		Company:     strings.TrimSpace(in.Company),
		Email:       in.Email,
		Phone:       strings.TrimSpace(in.Phone),
		AvatarURL:   in.AvatarURL,
		Status:      models.LeadStatusNew,
		Source:      in.Source,
		OwnerID:     in.OwnerID,
	}
	if lead.OwnerID == nil && actor != nil {
		lead.OwnerID = &actor.ID
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(lead).Error; err != nil {
			return fmt.Errorf("failed to create lead: %w", err)
		}
		_, err := RecordLeadActivity(tx, lead, actor, models.ActivityTypeNote, "Lead created")
		return err
	})
	if err != nil {
		return nil, err
	}
	return lead, nil
}

// GetLead loads a workspace lead with its owner, tasks, and activity (newest first)
func GetLead(db *gorm.DB, workspaceID, leadID string) (*models.Lead, error) {
	var lead models.Lead
	err := db.Where("workspace_id = ?", workspaceID).
		Preload("Owner").
		Preload("Tasks").
		Preload("Activity", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		First(&lead, "id = ?", leadID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, err
	}
	return &lead, nil
}

// ListLeads returns workspace leads, newest first
func ListLeads(db *gorm.DB, workspaceID string, filter LeadFilter) ([]models.Lead, error) {
	query := db.Where("workspace_id = ?", workspaceID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.OwnerID != "" {
		query = query.Where("owner_id = ?", filter.OwnerID)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(company) LIKE ?", like, like, like)
	}

	var leads []models.Lead
	err := query.Preload("Owner").Order("created_at DESC").Find(&leads).Error
	return leads, err
}

// UpdateLead replaces the editable fields. Status changes go through UpdateLeadStatus.
func UpdateLead(db *gorm.DB, lead *models.Lead, in LeadInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	updates := map[string]interface{}{
		"name":       in.Name,
		"company":    strings.TrimSpace(in.Company),
		"email":      in.Email,
		"phone":      strings.TrimSpace(in.Phone),
		"avatar_url": in.AvatarURL,
	}
	if in.Source != "" {
		updates["source"] = in.Source
	}
	if in.OwnerID != nil {
		updates["owner_id"] = *in.OwnerID
	}
	if err := db.Model(lead).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update lead: %w", err)
	}
	return nil
}

// UpdateLeadStatus applies a transition and appends an activity entry.
// Disallowed transitions, including same-state updates, return ErrInvalidLeadTransition.
func UpdateLeadStatus(db *gorm.DB, lead *models.Lead, newStatus string, actor *models.User) error {
	if !models.IsValidLeadStatus(newStatus) {
		return fmt.Errorf("%w: %q", ErrInvalidLeadStatus, newStatus)
	}
	if !CanTransitionLead(lead.Status, newStatus) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidLeadTransition, lead.Status, newStatus)
	}

	oldStatus := lead.Status
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(lead).Update("status", newStatus).Error; err != nil {
			return fmt.Errorf("failed to update lead status: %w", err)
		}
		description := fmt.Sprintf("Status changed from %s to %s", oldStatus, newStatus)
		_, err := RecordLeadActivity(tx, lead, actor, models.ActivityTypeStatusChange, description)
		return err
	})
	if err != nil {
		lead.Status = oldStatus
		return err
	}
	lead.Status = newStatus
	return nil
}

// DeleteLead soft-deletes a lead
func DeleteLead(db *gorm.DB, lead *models.Lead) error {
	if err := db.Delete(lead).Error; err != nil {
		return fmt.Errorf("failed to delete lead: %w", err)
	}
	return nil
}

// UpdateLeadIntake stores the pre-qualification result on a lead
func UpdateLeadIntake(db *gorm.DB, lead *models.Lead, intake models.LeadIntake) error {
	return db.Model(lead).Updates(map[string]interface{}{
		"intake_status":  intake.Status,
		"intake_score":   intake.Score,
		"intake_summary": SanitizeHTML(intake.Summary),
	}).Error
}

// CountLeadsByStatus returns lead counts keyed by status, optionally for one owner
func CountLeadsByStatus(db *gorm.DB, workspaceID, ownerID string) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var rows []statusCount

	query := db.Model(&models.Lead{}).Where("workspace_id = ?", workspaceID)
	if ownerID != "" {
		query = query.Where("owner_id = ?", ownerID)
	}
	if err := query.Select("status, COUNT(*) as count").Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(leadStatusOrder))
	for _, status := range leadStatusOrder {
		counts[status] = 0
	}
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}
