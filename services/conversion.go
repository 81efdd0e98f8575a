package services

import (
	"fmt"

	"visa_crm_go/models"

	"gorm.io/gorm"
)

// ConvertLeadToClient creates a client seeded from the lead. The lead itself is
// left as it is, so converting twice yields two clients.
func ConvertLeadToClient(db *gorm.DB, lead *models.Lead, actor *models.User) (*models.Client, error) {
	client := &models.Client{
		WorkspaceID:  lead.WorkspaceID,
		Name:         lead.Name,
		Email:        lead.Email,
		Phone:        lead.Phone,
		AvatarURL:    lead.AvatarURL,
		Status:       models.ClientStatusActive,
		CaseType:     models.CaseTypeUnassigned,
		CaseSummary:  models.DefaultCaseSummary(),
		OwnerID:      lead.OwnerID,
		SourceLeadID: &lead.ID,
	}
	if client.OwnerID == nil && actor != nil {
		client.OwnerID = &actor.ID
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(client).Error; err != nil {
			return fmt.Errorf("failed to create client: %w", err)
		}
		description := fmt.Sprintf("Converted from lead %s (%s)", lead.Name, lead.ID)
		_, err := RecordClientActivity(tx, client, actor, models.ActivityTypeConversion, description)
		return err
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}
