package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Auth roles decide which dashboard a user lands on
const (
	AuthRoleSuperAdmin = "super-admin"
	AuthRoleAdmin      = "admin"
	AuthRoleLawyer     = "lawyer"
)

// Access levels index the workspace permission table
const (
	AccessLevelAdmin  = "Admin"
	AccessLevelMember = "Member"
	AccessLevelViewer = "Viewer"
)

// Team member types
const (
	MemberTypeLegal   = "legal"
	MemberTypeSales   = "sales"
	MemberTypeAdvisor = "advisor"
)

// Plans for lawyer-firm accounts
const (
	PlanStarter      = "Starter"
	PlanProfessional = "Professional"
	PlanEnterprise   = "Enterprise"
)

// Account status for lawyer-firm accounts
const (
	AccountStatusActive    = "Active"
	AccountStatusSuspended = "Suspended"
)

// User is an internal team member. Clients and leads are not users.
type User struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name        string  `gorm:"not null" json:"name"`
	Email       string  `gorm:"uniqueIndex;not null" json:"email"`
	Password    string  `gorm:"not null" json:"-"`
	Phone       string  `json:"phone,omitempty"`
	AvatarURL   string  `json:"avatar,omitempty"`
	WorkspaceID *string `gorm:"type:uuid;index" json:"workspace_id"` // nil for super-admins
	Language    string  `gorm:"not null;default:en" json:"language"`

	AuthRole    string `gorm:"not null;default:lawyer" json:"auth_role"`
	AccessLevel string `gorm:"not null;default:Member" json:"access_level"`
	MemberType  string `gorm:"not null;default:legal" json:"type"`

	// Set on workspace owners only
	Plan          *string `json:"plan,omitempty"`
	AccountStatus string  `gorm:"not null;default:Active" json:"account_status"`

	IsActive            bool       `gorm:"not null;default:true" json:"is_active"`
	LastLoginAt         *time.Time `json:"last_login_at"`
	FailedLoginAttempts int        `gorm:"not null;default:0" json:"-"`
	LockoutUntil        *time.Time `json:"-"`

	Workspace *Workspace `gorm:"foreignKey:WorkspaceID" json:"workspace,omitempty"`
}

// BeforeCreate hook to generate UUID and normalise the access level
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.AccessLevel != "" {
		u.AccessLevel = NormalizeAccessLevel(u.AccessLevel)
	}
	return nil
}

// HasWorkspace checks if the user belongs to a workspace
func (u *User) HasWorkspace() bool {
	return u.WorkspaceID != nil && *u.WorkspaceID != ""
}

func (u *User) IsSuperAdmin() bool {
	return u.AuthRole == AuthRoleSuperAdmin
}

// IsSuspended reports whether the lawyer-firm account has been suspended by a super-admin
func (u *User) IsSuspended() bool {
	return u.AccountStatus == AccountStatusSuspended
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}

// NormalizeAccessLevel maps UI spellings onto the canonical access level.
// "Standard User" is the label older workspaces use for Member.
func NormalizeAccessLevel(level string) string {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "admin":
		return AccessLevelAdmin
	case "member", "standard user", "standard":
		return AccessLevelMember
	case "viewer":
		return AccessLevelViewer
	}
	return level
}

func IsValidAuthRole(role string) bool {
	return role == AuthRoleSuperAdmin || role == AuthRoleAdmin || role == AuthRoleLawyer
}

func IsValidAccessLevel(level string) bool {
	switch NormalizeAccessLevel(level) {
	case AccessLevelAdmin, AccessLevelMember, AccessLevelViewer:
		return true
	}
	return false
}

func IsValidMemberType(t string) bool {
	return t == MemberTypeLegal || t == MemberTypeSales || t == MemberTypeAdvisor
}

func IsValidPlan(plan string) bool {
	return plan == PlanStarter || plan == PlanProfessional || plan == PlanEnterprise
}

func IsValidAccountStatus(status string) bool {
	return status == AccountStatusActive || status == AccountStatusSuspended
}
