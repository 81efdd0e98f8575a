package services

import (
	"encoding/json"
	"errors"
	"fmt"

	"visa_crm_go/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrWidgetNotFound = errors.New("widget not found")

const layoutKeyPrefix = "layout:"

// DefaultDashboardLayout is what a user sees before saving any change
func DefaultDashboardLayout(authRole string) []models.DashboardWidget {
	layout := []models.DashboardWidget{
		{ID: "stats", Type: models.WidgetTypeStats, X: 0, Y: 0, W: 12, H: 2},
		{ID: "pipeline", Type: models.WidgetTypeLeadsPipeline, X: 0, Y: 2, W: 8, H: 4},
		{ID: "tasks", Type: models.WidgetTypeTasks, X: 8, Y: 2, W: 4, H: 4},
		{ID: "recent-clients", Type: models.WidgetTypeRecentClients, X: 0, Y: 6, W: 6, H: 4},
		{ID: "activity", Type: models.WidgetTypeActivity, X: 6, Y: 6, W: 6, H: 4},
	}
	if authRole == models.AuthRoleAdmin || authRole == models.AuthRoleSuperAdmin {
		layout = append(layout,
			models.DashboardWidget{ID: "financials", Type: models.WidgetTypeFinancials, X: 0, Y: 10, W: 6, H: 3},
			models.DashboardWidget{ID: "team", Type: models.WidgetTypeTeam, X: 6, Y: 10, W: 6, H: 3},
		)
	}
	return layout
}

// ValidateLayout checks widget ids are unique and geometry is sane
func ValidateLayout(widgets []models.DashboardWidget) error {
	seen := make(map[string]bool, len(widgets))
	for _, w := range widgets {
		if w.ID == "" {
			return NewValidationError("widgets", "every widget needs an id")
		}
		if seen[w.ID] {
			return NewValidationError("widgets", fmt.Sprintf("duplicate widget id %q", w.ID))
		}
		seen[w.ID] = true
		if !models.IsValidWidgetType(w.Type) {
			return NewValidationError("widgets", fmt.Sprintf("unknown widget type %q", w.Type))
		}
		if w.X < 0 || w.Y < 0 || w.W <= 0 || w.H <= 0 || w.X+w.W > 12 {
			return NewValidationError("widgets", fmt.Sprintf("widget %q is outside the 12-column grid", w.ID))
		}
	}
	return nil
}

// GetUserSetting reads a raw value; found is false when nothing is stored
func GetUserSetting(db *gorm.DB, userID, key string) (value string, found bool, err error) {
	var setting models.UserSetting
	err = db.Where("user_id = ? AND setting_key = ?", userID, key).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return setting.Value, true, nil
}

// PutUserSetting upserts a raw value
func PutUserSetting(db *gorm.DB, userID, key, value string) error {
	setting := models.UserSetting{UserID: userID, Key: key, Value: value}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "setting_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error
}

// GetDashboardLayout returns the saved layout, or defaults when none is saved
func GetDashboardLayout(db *gorm.DB, userID, layoutKey string, defaults []models.DashboardWidget) ([]models.DashboardWidget, error) {
	raw, found, err := GetUserSetting(db, userID, layoutKeyPrefix+layoutKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load layout: %w", err)
	}
	if !found {
		return defaults, nil
	}
	var widgets []models.DashboardWidget
	if err := json.Unmarshal([]byte(raw), &widgets); err != nil {
		return defaults, nil
	}
	return widgets, nil
}

// SaveDashboardLayout replaces the stored layout
func SaveDashboardLayout(db *gorm.DB, userID, layoutKey string, widgets []models.DashboardWidget) error {
	if widgets == nil {
		widgets = []models.DashboardWidget{}
	}
	if err := ValidateLayout(widgets); err != nil {
		return err
	}
	data, err := json.Marshal(widgets)
	if err != nil {
		return err
	}
	if err := PutUserSetting(db, userID, layoutKeyPrefix+layoutKey, string(data)); err != nil {
		return fmt.Errorf("failed to save layout: %w", err)
	}
	return nil
}

// AddDashboardWidget appends a widget below the current layout and saves
func AddDashboardWidget(db *gorm.DB, userID, layoutKey string, widget models.DashboardWidget, defaults []models.DashboardWidget) ([]models.DashboardWidget, error) {
	widgets, err := GetDashboardLayout(db, userID, layoutKey, defaults)
	if err != nil {
		return nil, err
	}
	if widget.ID == "" {
		widget.ID = widget.Type + "-" + uuid.New().String()[:8]
	}
	if widget.W == 0 {
		widget.W = 4
	}
	if widget.H == 0 {
		widget.H = 3
	}
	if widget.Y == 0 && widget.X == 0 {
		for _, w := range widgets {
			if bottom := w.Y + w.H; bottom > widget.Y {
				widget.Y = bottom
			}
		}
	}

	updated := append(append([]models.DashboardWidget{}, widgets...), widget)
	if err := SaveDashboardLayout(db, userID, layoutKey, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// RemoveDashboardWidget drops a widget by id and saves
func RemoveDashboardWidget(db *gorm.DB, userID, layoutKey, widgetID string, defaults []models.DashboardWidget) ([]models.DashboardWidget, error) {
	widgets, err := GetDashboardLayout(db, userID, layoutKey, defaults)
	if err != nil {
		return nil, err
	}
	updated := make([]models.DashboardWidget, 0, len(widgets))
	for _, w := range widgets {
		if w.ID != widgetID {
			updated = append(updated, w)
		}
	}
	if len(updated) == len(widgets) {
		return nil, ErrWidgetNotFound
	}
	if err := SaveDashboardLayout(db, userID, layoutKey, updated); err != nil {
		return nil, err
	}
	return updated, nil
}
