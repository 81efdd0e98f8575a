package services

import (
	"errors"
	"testing"

	"visa_crm_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransitionLead(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{models.LeadStatusNew, models.LeadStatusContacted, true},
		{models.LeadStatusNew, models.LeadStatusQualified, true},
		{models.LeadStatusNew, models.LeadStatusUnqualified, true},
		{models.LeadStatusContacted, models.LeadStatusNew, true},
		{models.LeadStatusQualified, models.LeadStatusContacted, true},
		{models.LeadStatusQualified, models.LeadStatusNew, false},
		{models.LeadStatusUnqualified, models.LeadStatusNew, true},
		{models.LeadStatusUnqualified, models.LeadStatusQualified, false},
		{models.LeadStatusNew, models.LeadStatusNew, false},
		{models.LeadStatusQualified, models.LeadStatusQualified, false},
		{"Archived", models.LeadStatusNew, false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransitionLead(tt.from, tt.to))
		})
	}
}

func TestAllowedLeadTransitions(t *testing.T) {
	assert.Equal(t, []string{models.LeadStatusContacted, models.LeadStatusQualified, models.LeadStatusUnqualified},
		AllowedLeadTransitions(models.LeadStatusNew))
	assert.Equal(t, []string{models.LeadStatusContacted, models.LeadStatusUnqualified},
		AllowedLeadTransitions(models.LeadStatusQualified))
	assert.Empty(t, AllowedLeadTransitions("Archived"))
}

func TestCreateLead(t *testing.T) {
	db := setupTestDB(t)
	ws := createTestWorkspace(t, db)
	owner := createTestUser(t, db, ws, models.AuthRoleLawyer, models.AccessLevelMember)

	t.Run("defaults to New and the acting owner", func(t *testing.T) {
		lead, err := CreateLead(db, ws.ID, owner, LeadInput{Name: "  Amara Okafor ", Email: "AMARA@Example.com"})
		require.NoError(t, err)

		assert.Equal(t, "Amara Okafor", lead.Name)
		assert.Equal(t, "amara@example.com", lead.Email)
		assert.Equal(t, models.LeadStatusNew, lead.Status)
		assert.Equal(t, models.LeadSourceManual, lead.Source)
		require.NotNil(t, lead.OwnerID)
		assert.Equal(t, owner.ID, *lead.OwnerID)

		loaded, err := GetLead(db, ws.ID, lead.ID)
		require.NoError(t, err)
		require.Len(t, loaded.Activity, 1)
		assert.Equal(t, "Lead created", loaded.Activity[0].Description)
		assert.Equal(t, owner.Name, loaded.Activity[0].ActorName)
	})

	t.Run("rejects a missing name", func(t *testing.T) {
		_, err := CreateLead(db, ws.ID, owner, LeadInput{Email: "nobody@example.com"})
		assert.True(t, IsValidationError(err))
	})

	t.Run("rejects a malformed email", func(t *testing.T) {
		_, err := CreateLead(db, ws.ID, owner, LeadInput{Name: "Li Wei", Email: "not-an-email"})
		assert.True(t, IsValidationError(err))
	})

	t.Run("rejects an unknown source", func(t *testing.T) {
		_, err := CreateLead(db, ws.ID, owner, LeadInput{Name: "Li Wei", Email: "li@example.com", Source: "Billboard"})
		assert.True(t, IsValidationError(err))
	})
}

func TestGetLeadIsWorkspaceScoped(t *testing.T) {
	db := setupTestDB(t)
	ws := createTestWorkspace(t, db)
	other := createTestWorkspace(t, db)
	owner := createTestUser(t, db, ws, models.AuthRoleLawyer, models.AccessLevelMember)
	lead := createTestLead(t, db, ws, owner, "Priya Sharma")

	_, err := GetLead(db, other.ID, lead.ID)
	assert.ErrorIs(t, err, ErrLeadNotFound)
}

func TestListLeadsFilters(t *testing.T) {
	db := setupTestDB(t)
	ws := createTestWorkspace(t, db)
	alice := createTestUser(t, db, ws, models.AuthRoleLawyer, models.AccessLevelMember)
	bob := createTestUser(t, db, ws, models.AuthRoleLawyer, models.AccessLevelMember)

	first := createTestLead(t, db, ws, alice, "Carlos Mendez")
	createTestLead(t, db, ws, alice, "Fatima Zahra")
	createTestLead(t, db, ws, bob, "Carla Rossi")
	require.NoError(t, UpdateLeadStatus(db, first, models.LeadStatusContacted, alice))

	all, err := ListLeads(db, ws.ID, LeadFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	contacted, err := ListLeads(db, ws.ID, LeadFilter{Status: models.LeadStatusContacted})
	require.NoError(t, err)
	require.Len(t, contacted, 1)
	assert.Equal(t, first.ID, contacted[0].ID)

	bobs, err := ListLeads(db, ws.ID, LeadFilter{OwnerID: bob.ID})
	require.NoError(t, err)
	require.Len(t, bobs, 1)
	assert.Equal(t, "Carla Rossi", bobs[0].Name)

	search, err := ListLeads(db, ws.ID, LeadFilter{Search: "CAR"})
	require.NoError(t, err)
	assert.Len(t, search, 2)
}

func TestUpdateLeadStatus(t *testing.T) {
	db := setupTestDB(t)
	ws := createTestWorkspace(t, db)
	owner := createTestUser(t, db, ws, models.AuthRoleLawyer, models.AccessLevelMember)

	t.Run("valid transition records activity", func(t *testing.T) {
		lead := createTestLead(t, db, ws, owner, "Ngozi Adichie")
		require.NoError(t, UpdateLeadStatus(db, lead, models.LeadStatusQualified, owner))
		assert.Equal(t, models.LeadStatusQualified, lead.Status)

		loaded, err := GetLead(db, ws.ID, lead.ID)
		require.NoError(t, err)
		assert.Equal(t, models.LeadStatusQualified, loaded.Status)
		require.Len(t, loaded.Activity, 2)
		assert.Equal(t, models.ActivityTypeStatusChange, loaded.Activity[0].Type)
		assert.Equal(t, "Status changed from New to Qualified", loaded.Activity[0].Description)
	})

	t.Run("disallowed transition leaves the lead unchanged", func(t *testing.T) {
		lead := createTestLead(t, db, ws, owner, "Tomás Silva")
		require.NoError(t, UpdateLeadStatus(db, lead, models.LeadStatusQualified, owner))

		err := UpdateLeadStatus(db, lead, models.LeadStatusNew, owner)
		assert.ErrorIs(t, err, ErrInvalidLeadTransition)
		assert.Equal(t, models.LeadStatusQualified, lead.Status)

		loaded, err := GetLead(db, ws.ID, lead.ID)
		require.NoError(t, err)
		assert.Len(t, loaded.Activity, 2)
	})

	t.Run("same status is rejected", func(t *testing.T) {
		lead := createTestLead(t, db, ws, owner, "Olga Petrova")
		err := UpdateLeadStatus(db, lead, models.LeadStatusNew, owner)
		assert.ErrorIs(t, err, ErrInvalidLeadTransition)
	})

	t.Run("unknown status", func(t *testing.T) {
		lead := createTestLead(t, db, ws, owner, "Hiro Tanaka")
		err := UpdateLeadStatus(db, lead, "Won", owner)
		assert.ErrorIs(t, err, ErrInvalidLeadStatus)
		assert.False(t, errors.Is(err, ErrInvalidLeadTransition))
	})
}

func TestDeleteLead(t *testing.T) {
	db := setupTestDB(t)
	ws := createTestWorkspace(t, db)
	owner := createTestUser(t, db, ws, models.AuthRoleLawyer, models.AccessLevelMember)
	lead := createTestLead(t, db, ws, owner, "Sven Larsen")

	require.NoError(t, DeleteLead(db, lead))

	_, err := GetLead(db, ws.ID, lead.ID)
	assert.ErrorIs(t, err, ErrLeadNotFound)
}

func TestCountLeadsByStatus(t *testing.T) {
	db := setupTestDB(t)
	ws := createTestWorkspace(t, db)
	owner := createTestUser(t, db, ws, models.AuthRoleLawyer, models.AccessLevelMember)

	lead := createTestLead(t, db, ws, owner, "Aiko Mori")
	createTestLead(t, db, ws, owner, "Ben Carter")
	require.NoError(t, UpdateLeadStatus(db, lead, models.LeadStatusUnqualified, owner))

	counts, err := CountLeadsByStatus(db, ws.ID, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[models.LeadStatusNew])
	assert.Equal(t, int64(1), counts[models.LeadStatusUnqualified])
	assert.Equal(t, int64(0), counts[models.LeadStatusQualified])
}

func TestConvertLeadToClient(t *testing.T) {
	db := setupTestDB(t)
	ws := createTestWorkspace(t, db)
	owner := createTestUser(t, db, ws, models.AuthRoleLawyer, models.AccessLevelMember)
	lead := createTestLead(t, db, ws, owner, "Mei Chen")

	client, err := ConvertLeadToClient(db, lead, owner)
	require.NoError(t, err)

	assert.Equal(t, lead.Name, client.Name)
	assert.Equal(t, lead.Email, client.Email)
	assert.Equal(t, models.ClientStatusActive, client.Status)
	assert.Equal(t, models.CaseTypeUnassigned, client.CaseType)
	assert.Equal(t, models.DefaultCaseSummary(), client.CaseSummary)
	require.NotNil(t, client.SourceLeadID)
	assert.Equal(t, lead.ID, *client.SourceLeadID)

	loaded, err := GetClient(db, ws.ID, client.ID)
	require.NoError(t, err)
	require.NotEmpty(t, loaded.Activity)
	assert.Equal(t, models.ActivityTypeConversion, loaded.Activity[0].Type)

	// the lead is untouched and a second conversion creates another client
	stillThere, err := GetLead(db, ws.ID, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LeadStatusNew, stillThere.Status)

	again, err := ConvertLeadToClient(db, lead, owner)
	require.NoError(t, err)
	assert.NotEqual(t, client.ID, again.ID)
}
