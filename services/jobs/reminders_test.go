package jobs

import (
	"testing"
	"time"

	"visa_crm_go/config"
	"visa_crm_go/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupRemindersTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:mem_"+uuid.New().String()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func TestSendTaskReminders(t *testing.T) {
	db := setupRemindersTestDB(t)
	cfg := &config.Config{
		AppURL:        "http://test.com",
		EmailTestMode: true,
	}

	ws := models.Workspace{Name: "Maple Immigration"}
	require.NoError(t, db.Create(&ws).Error)

	lawyer := models.User{Name: "Jane Lawyer", Email: "jane@maple.test", Password: "x", WorkspaceID: &ws.ID, AuthRole: models.AuthRoleLawyer}
	require.NoError(t, db.Create(&lawyer).Error)

	client := models.Client{WorkspaceID: ws.ID, Name: "Li Wei", Email: "li@example.com"}
	require.NoError(t, db.Create(&client).Error)

	now := time.Now().UTC()
	soon := now.Add(3 * time.Hour)
	later := now.Add(72 * time.Hour)

	dueSoon := models.Task{WorkspaceID: ws.ID, Title: "Book biometrics", DueDate: &soon, AssigneeID: &lawyer.ID, ClientID: &client.ID}
	dueLater := models.Task{WorkspaceID: ws.ID, Title: "Renew study permit", DueDate: &later, AssigneeID: &lawyer.ID}
	done := models.Task{WorkspaceID: ws.ID, Title: "Sign retainer", DueDate: &soon, AssigneeID: &lawyer.ID, Status: models.TaskStatusCompleted}
	unassigned := models.Task{WorkspaceID: ws.ID, Title: "Unassigned", DueDate: &soon}
	for _, task := range []*models.Task{&dueSoon, &dueLater, &done, &unassigned} {
		require.NoError(t, db.Create(task).Error)
	}

	t.Run("reminds only open assigned tasks inside the window", func(t *testing.T) {
		sent := SendTaskReminders(db, cfg, now)
		assert.Equal(t, 1, sent)

		var notifications []models.Notification
		require.NoError(t, db.Find(&notifications).Error)
		require.Len(t, notifications, 1)
		assert.Equal(t, models.NotificationTypeTaskDue, notifications[0].Type)
		assert.Equal(t, dueSoon.ID, *notifications[0].TaskID)
		assert.Equal(t, lawyer.ID, *notifications[0].UserID)
		assert.Equal(t, client.ID, *notifications[0].ClientID)

		var reloaded models.Task
		require.NoError(t, db.First(&reloaded, "id = ?", dueSoon.ID).Error)
		assert.NotNil(t, reloaded.ReminderSentAt)
	})

	t.Run("does not remind twice", func(t *testing.T) {
		sent := SendTaskReminders(db, cfg, now)
		assert.Equal(t, 0, sent)

		var count int64
		db.Model(&models.Notification{}).Count(&count)
		assert.Equal(t, int64(1), count)
	})
}
