package services

import (
	"errors"
	"fmt"

	"visa_crm_go/models"

	"gorm.io/gorm"
)

var ErrInvalidPartyType = errors.New("invalid party type")

// GetParty loads a client or a lead by type and wraps it as a Party
func GetParty(db *gorm.DB, workspaceID, partyType, partyID string) (models.Party, error) {
	switch partyType {
	case models.PartyTypeClient:
		client, err := GetClient(db, workspaceID, partyID)
		if err != nil {
			return models.Party{}, err
		}
		return models.ClientParty(client), nil
	case models.PartyTypeLead:
		lead, err := GetLead(db, workspaceID, partyID)
		if err != nil {
			return models.Party{}, err
		}
		return models.LeadParty(lead), nil
	}
	return models.Party{}, fmt.Errorf("%w: %q", ErrInvalidPartyType, partyType)
}

// GetPartyTimeline returns the party's activity newest first
func GetPartyTimeline(db *gorm.DB, workspaceID, partyType, partyID string) ([]models.Activity, error) {
	party, err := GetParty(db, workspaceID, partyType, partyID)
	if err != nil {
		return nil, err
	}
	return party.Timeline(), nil
}

// AddPartyNote appends a manual activity entry to a client or a lead
func AddPartyNote(db *gorm.DB, party models.Party, actor *models.User, activityType, description string) (*models.Activity, error) {
	description = StripHTML(description)
	if err := requireField("description", description); err != nil {
		return nil, err
	}
	if activityType == "" {
		activityType = models.ActivityTypeNote
	}
	switch {
	case party.IsClient():
		return RecordClientActivity(db, party.Client, actor, activityType, description)
	case party.IsLead():
		return RecordLeadActivity(db, party.Lead, actor, activityType, description)
	}
	return nil, ErrInvalidPartyType
}
