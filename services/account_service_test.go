package services

import (
	"testing"

	"visa_crm_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAccount(t *testing.T) {
	db := setupTestDB(t)

	ws, owner, err := CreateAccount(db, NewAccountInput{
		WorkspaceName: "Northern Visa Law",
		OwnerName:     "Grace Liu",
		OwnerEmail:    "grace@northern.test",
		Password:      testPassword,
		Plan:          models.PlanProfessional,
	})
	require.NoError(t, err)

	assert.Equal(t, "Northern Visa Law", ws.Name)
	require.NotNil(t, ws.OwnerID)
	assert.Equal(t, owner.ID, *ws.OwnerID)
	assert.Equal(t, models.AuthRoleAdmin, owner.AuthRole)
	assert.Equal(t, models.AccessLevelAdmin, owner.AccessLevel)
	require.NotNil(t, owner.Plan)
	assert.Equal(t, models.PlanProfessional, *owner.Plan)

	t.Run("invalid plan", func(t *testing.T) {
		_, _, err := CreateAccount(db, NewAccountInput{WorkspaceName: "X", OwnerName: "Y", OwnerEmail: "y@x.test", Password: testPassword, Plan: "Gold"})
		assert.True(t, IsValidationError(err))
	})

	t.Run("failed owner rolls back the workspace", func(t *testing.T) {
		_, _, err := CreateAccount(db, NewAccountInput{WorkspaceName: "Dup Firm", OwnerName: "Dup", OwnerEmail: "grace@northern.test", Password: testPassword})
		assert.ErrorIs(t, err, ErrEmailTaken)

		var count int64
		db.Model(&models.Workspace{}).Where("name = ?", "Dup Firm").Count(&count)
		assert.Equal(t, int64(0), count)
	})
}

func TestCreateSuperAdmin(t *testing.T) {
	db := setupTestDB(t)

	user, err := CreateSuperAdmin(db, "Ops", "ops@platform.test", testPassword)
	require.NoError(t, err)
	assert.True(t, user.IsSuperAdmin())
	assert.Nil(t, user.WorkspaceID)
}

func TestListAndUpdateAccounts(t *testing.T) {
	db := setupTestDB(t)

	ws1, owner1, err := CreateAccount(db, NewAccountInput{WorkspaceName: "Firm One", OwnerName: "One", OwnerEmail: "one@firm.test", Password: testPassword})
	require.NoError(t, err)
	_, _, err = CreateAccount(db, NewAccountInput{WorkspaceName: "Firm Two", OwnerName: "Two", OwnerEmail: "two@firm.test", Password: testPassword, Plan: models.PlanEnterprise})
	require.NoError(t, err)
	createTestClient(t, db, ws1, owner1, "Client of One")

	accounts, err := ListAccounts(db, "", "")
	require.NoError(t, err)
	assert.Len(t, accounts, 2)

	enterprise, err := ListAccounts(db, models.PlanEnterprise, "")
	require.NoError(t, err)
	require.Len(t, enterprise, 1)
	assert.Equal(t, "Firm Two", enterprise[0].Workspace.Name)

	starter, err := ListAccounts(db, models.PlanStarter, "")
	require.NoError(t, err)
	require.Len(t, starter, 1)
	assert.Equal(t, int64(1), starter[0].MemberCount)
	assert.Equal(t, int64(1), starter[0].ClientCount)

	t.Run("suspension ends workspace sessions", func(t *testing.T) {
		_, err := CreateSession(db, owner1, "127.0.0.1", "test")
		require.NoError(t, err)

		updated, err := UpdateAccount(db, owner1.ID, AccountUpdate{AccountStatus: models.AccountStatusSuspended})
		require.NoError(t, err)
		assert.True(t, updated.IsSuspended())

		var sessions int64
		db.Model(&models.Session{}).Where("workspace_id = ?", ws1.ID).Count(&sessions)
		assert.Equal(t, int64(0), sessions)

		suspended, err := IsWorkspaceSuspended(db, ws1.ID)
		require.NoError(t, err)
		assert.True(t, suspended)

		listed, err := ListAccounts(db, "", models.AccountStatusSuspended)
		require.NoError(t, err)
		assert.Len(t, listed, 1)
	})

	t.Run("validation", func(t *testing.T) {
		_, err := UpdateAccount(db, owner1.ID, AccountUpdate{Plan: "Gold"})
		assert.True(t, IsValidationError(err))
		_, err = UpdateAccount(db, owner1.ID, AccountUpdate{AccountStatus: "Banned"})
		assert.True(t, IsValidationError(err))
	})

	t.Run("unknown or super-admin owner", func(t *testing.T) {
		_, err := UpdateAccount(db, "missing", AccountUpdate{Plan: models.PlanStarter})
		assert.ErrorIs(t, err, ErrAccountNotFound)

		ops, err := CreateSuperAdmin(db, "Ops", "ops@platform.test", testPassword)
		require.NoError(t, err)
		_, err = UpdateAccount(db, ops.ID, AccountUpdate{Plan: models.PlanStarter})
		assert.ErrorIs(t, err, ErrAccountNotFound)
	})
}
