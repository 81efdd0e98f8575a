package services

import (
	"fmt"

	"visa_crm_go/models"

	"gorm.io/gorm"
)

func newActivity(workspaceID string, actor *models.User, activityType, description string) models.Activity {
	entry := models.Activity{
		WorkspaceID: workspaceID,
		Type:        activityType,
		Description: description,
	}
	if actor != nil {
		entry.ActorID = &actor.ID
		entry.ActorName = actor.Name
	}
	return entry
}

// RecordLeadActivity appends an entry to a lead's activity log
func RecordLeadActivity(db *gorm.DB, lead *models.Lead, actor *models.User, activityType, description string) (*models.Activity, error) {
	entry := newActivity(lead.WorkspaceID, actor, activityType, description)
	entry.LeadID = &lead.ID
	if err := db.Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("failed to record lead activity: %w", err)
	}
	return &entry, nil
}

// RecordClientActivity appends an entry to a client's activity log
func RecordClientActivity(db *gorm.DB, client *models.Client, actor *models.User, activityType, description string) (*models.Activity, error) {
	entry := newActivity(client.WorkspaceID, actor, activityType, description)
	entry.ClientID = &client.ID
	if err := db.Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("failed to record client activity: %w", err)
	}
	return &entry, nil
}

// ListRecentActivity returns the newest entries across the workspace
func ListRecentActivity(db *gorm.DB, workspaceID string, limit int) ([]models.Activity, error) {
	var entries []models.Activity
	err := db.Where("workspace_id = ?", workspaceID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}
