package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"visa_crm_go/models"

	"gorm.io/gorm"
)

var ErrClientNotFound = errors.New("client not found")

// ClientInput carries the editable client identity fields
type ClientInput struct {
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Phone     string  `json:"phone"`
	AvatarURL string  `json:"avatar"`
	CaseType  string  `json:"case_type"`
	OwnerID   *string `json:"owner_id"`
}

func (in *ClientInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if err := requireField("name", in.Name); err != nil {
		return err
	}
	if err := validateEmail(in.Email); err != nil {
		return err
	}
	if in.CaseType != "" && !models.IsValidCaseType(in.CaseType) {
		return NewValidationError("case_type", "is not a valid case type")
	}
	return nil
}

// ClientFilter narrows ListClients
type ClientFilter struct {
	Status   string
	CaseType string
	OwnerID  string
	Search   string
}

// CreateClient adds a client directly, without a source lead
func CreateClient(db *gorm.DB, workspaceID string, actor *models.User, in ClientInput) (*models.Client, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	client := &models.Client{
		WorkspaceID: workspaceID,
		Name:        in.Name,
		Email:       in.Email,
		Phone:       strings.TrimSpace(in.Phone),
		AvatarURL:   in.AvatarURL,
		Status:      models.ClientStatusActive,
		CaseType:    in.CaseType,
		CaseSummary: models.DefaultCaseSummary(),
		OwnerID:     in.OwnerID,
	}
	if client.OwnerID == nil && actor != nil {
		client.OwnerID = &actor.ID
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(client).Error; err != nil {
			return fmt.Errorf("failed to create client: %w", err)
		}
		_, err := RecordClientActivity(tx, client, actor, models.ActivityTypeNote, "Client created")
		return err
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

// GetClient loads a client with everything its profile shows
func GetClient(db *gorm.DB, workspaceID, clientID string) (*models.Client, error) {
	var client models.Client
	err := db.Where("workspace_id = ?", workspaceID).
		Preload("Owner").
		Preload("Tasks").
		Preload("Documents").
		Preload("Agreements").
		Preload("Activity", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		First(&client, "id = ?", clientID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	return &client, nil
}

// ListClients returns workspace clients, newest first
func ListClients(db *gorm.DB, workspaceID string, filter ClientFilter) ([]models.Client, error) {
	query := db.Where("workspace_id = ?", workspaceID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CaseType != "" {
		query = query.Where("case_type = ?", filter.CaseType)
	}
	if filter.OwnerID != "" {
		query = query.Where("owner_id = ?", filter.OwnerID)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}

	var clients []models.Client
	err := query.Preload("Owner").Order("created_at DESC").Find(&clients).Error
	return clients, err
}

// UpdateClient replaces identity and case metadata
func UpdateClient(db *gorm.DB, client *models.Client, in ClientInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	updates := map[string]interface{}{
		"name":       in.Name,
		"email":      in.Email,
		"phone":      strings.TrimSpace(in.Phone),
		"avatar_url": in.AvatarURL,
	}
	if in.CaseType != "" {
		updates["case_type"] = in.CaseType
	}
	if in.OwnerID != nil {
		updates["owner_id"] = *in.OwnerID
	}
	if err := db.Model(client).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}
	return nil
}

// UpdateClientStatus changes the client status. Closing or blocking is the only way to retire a client.
func UpdateClientStatus(db *gorm.DB, client *models.Client, status string, actor *models.User) error {
	if !models.IsValidClientStatus(status) {
		return NewValidationError("status", "is not a valid client status")
	}
	if client.Status == status {
		return nil
	}

	oldStatus := client.Status
	now := time.Now()
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(client).Updates(map[string]interface{}{
			"status":            status,
			"status_changed_at": now,
		}).Error; err != nil {
			return fmt.Errorf("failed to update client status: %w", err)
		}
		description := fmt.Sprintf("Status changed from %s to %s", oldStatus, status)
		_, err := RecordClientActivity(tx, client, actor, models.ActivityTypeStatusChange, description)
		return err
	})
}

// UpdateCaseSummary sanitises and stores the case summary
func UpdateCaseSummary(db *gorm.DB, client *models.Client, summary models.CaseSummary) error {
	clean := models.CaseSummary{
		CurrentStatus: SanitizeHTML(summary.CurrentStatus),
		NextSteps:     SanitizeHTML(summary.NextSteps),
		Notes:         SanitizeHTML(summary.Notes),
	}
	err := db.Model(client).Updates(map[string]interface{}{
		"summary_current_status": clean.CurrentStatus,
		"summary_next_steps":     clean.NextSteps,
		"summary_notes":          clean.Notes,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to update case summary: %w", err)
	}
	client.CaseSummary = clean
	return nil
}

// CountClientsByStatus returns client counts keyed by status, optionally for one owner
func CountClientsByStatus(db *gorm.DB, workspaceID, ownerID string) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var rows []statusCount

	query := db.Model(&models.Client{}).Where("workspace_id = ?", workspaceID)
	if ownerID != "" {
		query = query.Where("owner_id = ?", ownerID)
	}
	if err := query.Select("status, COUNT(*) as count").Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := map[string]int64{
		models.ClientStatusActive:  0,
		models.ClientStatusOnHold:  0,
		models.ClientStatusClosed:  0,
		models.ClientStatusBlocked: 0,
	}
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}
