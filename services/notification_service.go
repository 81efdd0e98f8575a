package services

import (
	"errors"
	"time"

	"visa_crm_go/models"

	"gorm.io/gorm"
)

type NotificationService struct {
	DB *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{DB: db}
}

// visibleTo scopes notifications to a user: their own plus workspace-wide ones
func (s *NotificationService) visibleTo(workspaceID, userID string) *gorm.DB {
	return s.DB.Model(&models.Notification{}).
		Where("workspace_id = ? AND (user_id IS NULL OR user_id = ?)", workspaceID, userID)
}

func (s *NotificationService) ListNotifications(workspaceID, userID string, unreadOnly bool, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query := s.visibleTo(workspaceID, userID)
	if unreadOnly {
		query = query.Where("read_at IS NULL")
	}
	var notifications []models.Notification
	err := query.Order("created_at DESC").Limit(limit).Find(&notifications).Error
	return notifications, err
}

// MarkAsRead keeps the first read time. Notifications the user cannot see are ignored.
func (s *NotificationService) MarkAsRead(notificationID, userID, workspaceID string) error {
	var notification models.Notification
	err := s.visibleTo(workspaceID, userID).Where("id = ?", notificationID).First(&notification).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if notification.IsRead() {
		return nil
	}
	return s.DB.Model(&notification).Update("read_at", time.Now()).Error
}

func (s *NotificationService) MarkAllAsRead(workspaceID, userID string) error {
	now := time.Now()
	return s.visibleTo(workspaceID, userID).
		Where("read_at IS NULL").
		Update("read_at", now).Error
}

func (s *NotificationService) GetUnreadCount(workspaceID, userID string) (int64, error) {
	var count int64
	err := s.visibleTo(workspaceID, userID).
		Where("read_at IS NULL").
		Count(&count).Error
	return count, err
}

func (s *NotificationService) CreateNotification(notification *models.Notification) error {
	return s.DB.Create(notification).Error
}

// NotifyTaskDue creates a reminder addressed to the task's assignee
func (s *NotificationService) NotifyTaskDue(task *models.Task) (*models.Notification, error) {
	n := &models.Notification{
		WorkspaceID: task.WorkspaceID,
		UserID:      task.AssigneeID,
		TaskID:      &task.ID,
		ClientID:    task.ClientID,
		LeadID:      task.LeadID,
		Type:        models.NotificationTypeTaskDue,
		Title:       "Task due soon",
		Message:     task.Title,
		LinkURL:     "/tasks/" + task.ID,
	}
	if err := s.CreateNotification(n); err != nil {
		return nil, err
	}
	return n, nil
}

// NotifyIntakeSubmitted tells the client's owner the questionnaire is in
func (s *NotificationService) NotifyIntakeSubmitted(client *models.Client) error {
	return s.CreateNotification(&models.Notification{
		WorkspaceID: client.WorkspaceID,
		UserID:      client.OwnerID,
		ClientID:    &client.ID,
		Type:        models.NotificationTypeIntake,
		Title:       "Intake submitted",
		Message:     client.Name + " completed the intake questionnaire",
		LinkURL:     "/clients/" + client.ID,
	})
}
