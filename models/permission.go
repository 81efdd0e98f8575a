package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Capability names a gated surface or action
type Capability string

const (
	CapFinancials        Capability = "financials"
	CapHighLevelSettings Capability = "highLevelSettings"
	CapViewManageTeam    Capability = "viewManageTeam"
	CapDeleteExport      Capability = "deleteExport"
	CapEditData          Capability = "editData"
	CapViewData          Capability = "viewData"
)

// AllCapabilities in display order
var AllCapabilities = []Capability{
	CapFinancials,
	CapHighLevelSettings,
	CapViewManageTeam,
	CapDeleteExport,
	CapEditData,
	CapViewData,
}

func IsValidCapability(c Capability) bool {
	for _, known := range AllCapabilities {
		if known == c {
			return true
		}
	}
	return false
}

// PermissionValue is true, false, or "view-only". Only viewManageTeam may be view-only.
type PermissionValue string

const (
	PermissionAllowed  PermissionValue = "true"
	PermissionDenied   PermissionValue = "false"
	PermissionViewOnly PermissionValue = "view-only"
)

// Granted reports whether the surface is visible at all (view-only counts)
func (v PermissionValue) Granted() bool {
	return v == PermissionAllowed || v == PermissionViewOnly
}

// Full reports whether the capability is granted without restriction
func (v PermissionValue) Full() bool {
	return v == PermissionAllowed
}

// MarshalJSON renders booleans as JSON booleans and view-only as a string
func (v PermissionValue) MarshalJSON() ([]byte, error) {
	switch v {
	case PermissionAllowed:
		return []byte("true"), nil
	case PermissionViewOnly:
		return json.Marshal(string(PermissionViewOnly))
	default:
		return []byte("false"), nil
	}
}

func (v *PermissionValue) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParsePermissionValue(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// ParsePermissionValue accepts a bool or one of "true", "false", "view-only"
func ParsePermissionValue(raw interface{}) (PermissionValue, error) {
	switch val := raw.(type) {
	case bool:
		if val {
			return PermissionAllowed, nil
		}
		return PermissionDenied, nil
	case string:
		switch PermissionValue(val) {
		case PermissionAllowed, PermissionDenied, PermissionViewOnly:
			return PermissionValue(val), nil
		}
	case PermissionValue:
		return ParsePermissionValue(string(val))
	}
	return PermissionDenied, fmt.Errorf("invalid permission value %v", raw)
}

// PermissionTable maps access level to capability values
type PermissionTable map[string]map[Capability]PermissionValue

// Lookup returns the value for a level/capability pair, denying anything unknown
func (t PermissionTable) Lookup(accessLevel string, capability Capability) PermissionValue {
	row, ok := t[NormalizeAccessLevel(accessLevel)]
	if !ok {
		return PermissionDenied
	}
	value, ok := row[capability]
	if !ok {
		return PermissionDenied
	}
	return value
}

// Validate checks levels, capabilities, and that only viewManageTeam is view-only.
// Level keys must already be canonical; see Normalize.
func (t PermissionTable) Validate() error {
	for level, row := range t {
		if !IsValidAccessLevel(level) {
			return fmt.Errorf("unknown access level %q", level)
		}
		if NormalizeAccessLevel(level) != level {
			return fmt.Errorf("access level %q is not normalized", level)
		}
		for capability, value := range row {
			if !IsValidCapability(capability) {
				return fmt.Errorf("unknown capability %q", capability)
			}
			if value == PermissionViewOnly && capability != CapViewManageTeam {
				return fmt.Errorf("capability %q cannot be view-only", capability)
			}
			if _, err := ParsePermissionValue(string(value)); err != nil {
				return err
			}
		}
	}
	return nil
}

// Normalize returns a copy keyed by canonical access level names ("admin" and
// "Standard User" become Admin and Member). Two keys naming the same level are an error.
func (t PermissionTable) Normalize() (PermissionTable, error) {
	out := make(PermissionTable, len(t))
	for level, row := range t {
		canonical := NormalizeAccessLevel(level)
		if _, dup := out[canonical]; dup {
			return nil, fmt.Errorf("access level %q is given more than once", canonical)
		}
		copied := make(map[Capability]PermissionValue, len(row))
		for k, v := range row {
			copied[k] = v
		}
		out[canonical] = copied
	}
	return out, nil
}

// Merge overlays t on base. Levels and capabilities t leaves out keep base's values.
func (t PermissionTable) Merge(base PermissionTable) PermissionTable {
	out := base.Clone()
	for level, row := range t {
		if out[level] == nil {
			out[level] = make(map[Capability]PermissionValue, len(row))
		}
		for k, v := range row {
			out[level][k] = v
		}
	}
	return out
}

// Clone returns a deep copy
func (t PermissionTable) Clone() PermissionTable {
	out := make(PermissionTable, len(t))
	for level, row := range t {
		copied := make(map[Capability]PermissionValue, len(row))
		for k, v := range row {
			copied[k] = v
		}
		out[level] = copied
	}
	return out
}

// WorkspacePermission stores a workspace's override of the default permission table
type WorkspacePermission struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	WorkspaceID string  `gorm:"type:uuid;not null;uniqueIndex" json:"workspace_id"`
	TableJSON   string  `gorm:"type:text;not null" json:"-"`
	UpdatedByID *string `gorm:"type:uuid" json:"updated_by_id,omitempty"`
}

// BeforeCreate hook to generate UUID
func (p *WorkspacePermission) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// Table decodes the stored override
func (p *WorkspacePermission) Table() (PermissionTable, error) {
	var table PermissionTable
	if err := json.Unmarshal([]byte(p.TableJSON), &table); err != nil {
		return nil, fmt.Errorf("failed to decode permission table: %w", err)
	}
	return table, nil
}

// TableName specifies the table name for WorkspacePermission model
func (WorkspacePermission) TableName() string {
	return "workspace_permissions"
}
