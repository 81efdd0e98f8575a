package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"visa_crm_go/config"
	"visa_crm_go/models"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

var ErrInvalidPermissionTable = errors.New("invalid permission table")

var (
	defaultPermissionsOnce sync.Once
	defaultPermissions     models.PermissionTable
)

// ParsePermissionTable decodes a YAML (or JSON) permission table and validates it
func ParsePermissionTable(data []byte) (models.PermissionTable, error) {
	var raw map[string]map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPermissionTable, err)
	}
	return permissionTableFromRaw(raw)
}

func permissionTableFromRaw(raw map[string]map[string]interface{}) (models.PermissionTable, error) {
	table := make(models.PermissionTable, len(raw))
	for level, row := range raw {
		if !models.IsValidAccessLevel(level) {
			return nil, fmt.Errorf("%w: unknown access level %q", ErrInvalidPermissionTable, level)
		}
		values := make(map[models.Capability]models.PermissionValue, len(row))
		for name, rawValue := range row {
			value, err := models.ParsePermissionValue(rawValue)
			if err != nil {
				return nil, fmt.Errorf("%w: %s.%s: %v", ErrInvalidPermissionTable, level, name, err)
			}
			values[models.Capability(name)] = value
		}
		table[level] = values
	}
	return normalizePermissionTable(table)
}

// normalizePermissionTable canonicalizes level keys and validates the result
func normalizePermissionTable(table models.PermissionTable) (models.PermissionTable, error) {
	normalized, err := table.Normalize()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPermissionTable, err)
	}
	if err := normalized.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPermissionTable, err)
	}
	return normalized, nil
}

// DefaultPermissions returns a copy of the embedded default permission table
func DefaultPermissions() models.PermissionTable {
	defaultPermissionsOnce.Do(func() {
		table, err := ParsePermissionTable(config.DefaultPermissionsYAML)
		if err != nil {
			log.Printf("[SECURITY] Failed to parse default permissions, denying everything: %v", err)
			table = models.PermissionTable{}
		}
		defaultPermissions = table
	})
	return defaultPermissions.Clone()
}

// GetWorkspacePermissions returns the workspace override laid over the defaults,
// or the defaults when none is saved
func GetWorkspacePermissions(db *gorm.DB, workspaceID string) (models.PermissionTable, error) {
	var override models.WorkspacePermission
	err := db.Where("workspace_id = ?", workspaceID).First(&override).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return DefaultPermissions(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load workspace permissions: %w", err)
	}
	table, err := override.Table()
	if err != nil {
		return nil, err
	}
	normalized, err := table.Normalize()
	if err != nil {
		log.Printf("[SECURITY] Stored permission table for workspace %s is invalid, using defaults: %v", workspaceID, err)
		return DefaultPermissions(), nil
	}
	return normalized.Merge(DefaultPermissions()), nil
}

// SaveWorkspacePermissions validates and stores a replacement permission table.
// Level keys are canonicalized and anything the table leaves out keeps its default,
// so the stored table always covers every level and capability. Admins keep
// highLevelSettings so the workspace cannot lock itself out of this screen.
func SaveWorkspacePermissions(db *gorm.DB, workspaceID, updatedByID string, table models.PermissionTable) (models.PermissionTable, error) {
	normalized, err := normalizePermissionTable(table)
	if err != nil {
		return nil, err
	}
	complete := normalized.Merge(DefaultPermissions())
	if !complete.Lookup(models.AccessLevelAdmin, models.CapHighLevelSettings).Full() {
		return nil, fmt.Errorf("%w: Admin must keep highLevelSettings", ErrInvalidPermissionTable)
	}

	data, err := json.Marshal(complete)
	if err != nil {
		return nil, fmt.Errorf("failed to encode permission table: %w", err)
	}

	var override models.WorkspacePermission
	err = db.Where("workspace_id = ?", workspaceID).First(&override).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		override = models.WorkspacePermission{WorkspaceID: workspaceID}
	case err != nil:
		return nil, fmt.Errorf("failed to load workspace permissions: %w", err)
	}

	override.TableJSON = string(data)
	override.UpdatedByID = ptrIfNotEmpty(updatedByID)
	if err := db.Save(&override).Error; err != nil {
		return nil, fmt.Errorf("failed to save workspace permissions: %w", err)
	}
	return complete, nil
}

// ResetWorkspacePermissions drops the override so the defaults apply again
func ResetWorkspacePermissions(db *gorm.DB, workspaceID string) error {
	return db.Where("workspace_id = ?", workspaceID).Delete(&models.WorkspacePermission{}).Error
}

// Permissions is the resolved capability set for one user. Resolution is a pure
// lookup and never mutates the table.
type Permissions struct {
	AuthRole    string
	AccessLevel string
	table       models.PermissionTable
}

// ResolvePermissions binds a user to a workspace permission table
func ResolvePermissions(user *models.User, table models.PermissionTable) Permissions {
	if user == nil {
		return Permissions{table: table}
	}
	return Permissions{
		AuthRole:    user.AuthRole,
		AccessLevel: models.NormalizeAccessLevel(user.AccessLevel),
		table:       table,
	}
}

// PermissionsForUser loads the user's workspace table and resolves it
func PermissionsForUser(db *gorm.DB, user *models.User) (Permissions, error) {
	if user.IsSuperAdmin() || !user.HasWorkspace() {
		return ResolvePermissions(user, DefaultPermissions()), nil
	}
	table, err := GetWorkspacePermissions(db, *user.WorkspaceID)
	if err != nil {
		return Permissions{}, err
	}
	return ResolvePermissions(user, table), nil
}

// HasPermission returns the raw value, which may be view-only for viewManageTeam
func (p Permissions) HasPermission(capability models.Capability) models.PermissionValue {
	if !models.IsValidCapability(capability) {
		return models.PermissionDenied
	}
	if p.AuthRole == models.AuthRoleSuperAdmin {
		return models.PermissionAllowed
	}
	return p.table.Lookup(p.AccessLevel, capability)
}

// Can is true for any value other than false
func (p Permissions) Can(capability models.Capability) bool {
	return p.HasPermission(capability) != models.PermissionDenied
}

// Map returns every capability with its resolved value
func (p Permissions) Map() map[models.Capability]models.PermissionValue {
	out := make(map[models.Capability]models.PermissionValue, len(models.AllCapabilities))
	for _, capability := range models.AllCapabilities {
		out[capability] = p.HasPermission(capability)
	}
	return out
}
