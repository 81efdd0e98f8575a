package handlers

import (
	"net/http"
	"time"

	"visa_crm_go/db"
	"visa_crm_go/middleware"
	"visa_crm_go/models"
	"visa_crm_go/services"

	"github.com/labstack/echo/v4"
)

// DashboardHandler returns the stats for the caller's auth role
func DashboardHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	stats, err := services.BuildDashboardStats(db.DB, user, middleware.GetPermissions(c), time.Now())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

func layoutKey(c echo.Context) string {
	if key := c.QueryParam("key"); key != "" {
		return key
	}
	return models.DefaultLayoutKey
}

// GetDashboardLayoutHandler returns the saved layout or the role default
func GetDashboardLayoutHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	widgets, err := services.GetDashboardLayout(db.DB, user.ID, layoutKey(c), services.DefaultDashboardLayout(user.AuthRole))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, widgets)
}

// SaveDashboardLayoutHandler replaces the caller's layout
func SaveDashboardLayoutHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)

	var widgets []models.DashboardWidget
	if err := c.Bind(&widgets); err != nil {
		return badRequest(c)
	}
	if err := services.SaveDashboardLayout(db.DB, user.ID, layoutKey(c), widgets); err != nil {
		return respondServiceError(c, err)
	}
	return respondWithToast(c, http.StatusOK, widgets, "toast.dashboard.layout_saved", "")
}

// AddDashboardWidgetHandler appends a widget to the layout
func AddDashboardWidgetHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)

	var widget models.DashboardWidget
	if err := c.Bind(&widget); err != nil {
		return badRequest(c)
	}
	widgets, err := services.AddDashboardWidget(db.DB, user.ID, layoutKey(c), widget, services.DefaultDashboardLayout(user.AuthRole))
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondWithToast(c, http.StatusCreated, widgets, "toast.dashboard.widget_added", "")
}

// RemoveDashboardWidgetHandler drops a widget from the layout
func RemoveDashboardWidgetHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	widgets, err := services.RemoveDashboardWidget(db.DB, user.ID, layoutKey(c), c.Param("id"), services.DefaultDashboardLayout(user.AuthRole))
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondWithToast(c, http.StatusOK, widgets, "toast.dashboard.widget_removed", "")
}
