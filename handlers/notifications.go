package handlers

import (
	"net/http"

	"visa_crm_go/db"
	"visa_crm_go/middleware"
	"visa_crm_go/services"

	"github.com/labstack/echo/v4"
)

// ListNotificationsHandler returns the caller's notifications with the unread count
func ListNotificationsHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	workspaceID := middleware.GetWorkspaceID(c)
	service := services.NewNotificationService(db.DB)

	notifications, err := service.ListNotifications(workspaceID, user.ID, c.QueryParam("unread") == "true", queryInt(c, "limit", 20))
	if err != nil {
		return respondServiceError(c, err)
	}
	unread, err := service.GetUnreadCount(workspaceID, user.ID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"items":        notifications,
		"unread_count": unread,
	})
}

func MarkNotificationReadHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	service := services.NewNotificationService(db.DB)
	if err := service.MarkAsRead(c.Param("id"), user.ID, middleware.GetWorkspaceID(c)); err != nil {
		return respondServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func MarkAllNotificationsReadHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	service := services.NewNotificationService(db.DB)
	if err := service.MarkAllAsRead(middleware.GetWorkspaceID(c), user.ID); err != nil {
		return respondServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
