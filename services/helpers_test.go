package services

import (
	"testing"

	"visa_crm_go/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testPassword = "Sup3r-Secret-Pass!"

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:mem_"+uuid.New().String()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func createTestWorkspace(t *testing.T, db *gorm.DB) *models.Workspace {
	ws := &models.Workspace{Name: "Maple Immigration " + uuid.New().String()[:6]}
	require.NoError(t, db.Create(ws).Error)
	return ws
}

func createTestUser(t *testing.T, db *gorm.DB, ws *models.Workspace, authRole, accessLevel string) *models.User {
	hashed, err := HashPassword(testPassword)
	require.NoError(t, err)

	user := &models.User{
		Name:        "Jane " + uuid.New().String()[:4],
		Email:       uuid.New().String()[:8] + "@maple.test",
		Password:    hashed,
		AuthRole:    authRole,
		AccessLevel: accessLevel,
		IsActive:    true,
	}
	if ws != nil {
		user.WorkspaceID = &ws.ID
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestLead(t *testing.T, db *gorm.DB, ws *models.Workspace, owner *models.User, name string) *models.Lead {
	lead, err := CreateLead(db, ws.ID, owner, LeadInput{Name: name, Email: uuid.New().String()[:8] + "@applicant.test", Phone: "+1 416 555 0100"})
	require.NoError(t, err)
	return lead
}

func createTestClient(t *testing.T, db *gorm.DB, ws *models.Workspace, owner *models.User, name string) *models.Client {
	client, err := CreateClient(db, ws.ID, owner, ClientInput{Name: name, Email: uuid.New().String()[:8] + "@applicant.test"})
	require.NoError(t, err)
	return client
}
