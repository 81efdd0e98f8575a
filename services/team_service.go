package services

import (
	"errors"
	"fmt"
	"strings"

	"visa_crm_go/models"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailTaken       = errors.New("email already in use")
	ErrCannotRemoveSelf = errors.New("cannot remove your own account")
	ErrLastAdmin        = errors.New("workspace must keep at least one admin")
)

// TeamMemberInput carries the fields a workspace admin may set on a team member
type TeamMemberInput struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Phone       string `json:"phone"`
	AccessLevel string `json:"access_level"`
	MemberType  string `json:"type"`
	AuthRole    string `json:"auth_role"`
}

func (in *TeamMemberInput) validate(creating bool) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if err := requireField("name", in.Name); err != nil {
		return err
	}
	if err := validateEmail(in.Email); err != nil {
		return err
	}
	if creating || in.Password != "" {
		if err := ValidatePassword(in.Password); err != nil {
			return err
		}
	}
	if in.AccessLevel != "" {
		if !models.IsValidAccessLevel(in.AccessLevel) {
			return NewValidationError("access_level", "must be Admin, Member or Viewer")
		}
		in.AccessLevel = models.NormalizeAccessLevel(in.AccessLevel)
	}
	if in.MemberType != "" && !models.IsValidMemberType(in.MemberType) {
		return NewValidationError("type", "must be legal, sales or advisor")
	}
	// super-admins are provisioned from the CLI only
	if in.AuthRole != "" && (!models.IsValidAuthRole(in.AuthRole) || in.AuthRole == models.AuthRoleSuperAdmin) {
		return NewValidationError("auth_role", "must be admin or lawyer")
	}
	return nil
}

// ListTeamMembers returns the workspace's team ordered by name
func ListTeamMembers(db *gorm.DB, workspaceID string) ([]models.User, error) {
	var users []models.User
	err := db.Where("workspace_id = ?", workspaceID).Order("name ASC").Find(&users).Error
	return users, err
}

// GetTeamMember loads a workspace user
func GetTeamMember(db *gorm.DB, workspaceID, userID string) (*models.User, error) {
	var user models.User
	err := db.Where("workspace_id = ?", workspaceID).First(&user, "id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// CreateTeamMember adds a user to the workspace
func CreateTeamMember(db *gorm.DB, workspaceID string, in TeamMemberInput) (*models.User, error) {
	if err := in.validate(true); err != nil {
		return nil, err
	}

	var count int64
	db.Model(&models.User{}).Where("email = ?", in.Email).Count(&count)
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hashed, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:          in.Name,
		Email:         in.Email,
		Password:      hashed,
		Phone:         strings.TrimSpace(in.Phone),
		WorkspaceID:   &workspaceID,
		AuthRole:      in.AuthRole,
		AccessLevel:   in.AccessLevel,
		MemberType:    in.MemberType,
		AccountStatus: models.AccountStatusActive,
		IsActive:      true,
	}
	if user.AuthRole == "" {
		user.AuthRole = models.AuthRoleLawyer
	}
	if user.AccessLevel == "" {
		user.AccessLevel = models.AccessLevelMember
	}
	if user.MemberType == "" {
		user.MemberType = models.MemberTypeLegal
	}

	if err := db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create team member: %w", err)
	}
	return user, nil
}

// UpdateTeamMember applies admin edits to a team member
func UpdateTeamMember(db *gorm.DB, user *models.User, in TeamMemberInput) error {
	if err := in.validate(false); err != nil {
		return err
	}

	if in.Email != user.Email {
		var count int64
		db.Model(&models.User{}).Where("email = ? AND id <> ?", in.Email, user.ID).Count(&count)
		if count > 0 {
			return ErrEmailTaken
		}
	}

	if user.AccessLevel == models.AccessLevelAdmin && in.AccessLevel != "" && in.AccessLevel != models.AccessLevelAdmin {
		if err := ensureAnotherAdmin(db, user); err != nil {
			return err
		}
	}

	updates := map[string]interface{}{
		"name":  in.Name,
		"email": in.Email,
		"phone": strings.TrimSpace(in.Phone),
	}
	if in.AccessLevel != "" {
		updates["access_level"] = in.AccessLevel
	}
	if in.MemberType != "" {
		updates["member_type"] = in.MemberType
	}
	if in.AuthRole != "" {
		updates["auth_role"] = in.AuthRole
	}
	if in.Password != "" {
		hashed, err := HashPassword(in.Password)
		if err != nil {
			return err
		}
		updates["password"] = hashed
	}

	if err := db.Model(user).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update team member: %w", err)
	}
	if in.Password != "" {
		return DeleteAllUserSessions(db, user.ID)
	}
	return nil
}

// RemoveTeamMember soft-deletes a user and ends their sessions
func RemoveTeamMember(db *gorm.DB, actor, user *models.User) error {
	if actor.ID == user.ID {
		return ErrCannotRemoveSelf
	}
	if user.AccessLevel == models.AccessLevelAdmin {
		if err := ensureAnotherAdmin(db, user); err != nil {
			return err
		}
	}
	if err := db.Delete(user).Error; err != nil {
		return fmt.Errorf("failed to remove team member: %w", err)
	}
	return DeleteAllUserSessions(db, user.ID)
}

func ensureAnotherAdmin(db *gorm.DB, user *models.User) error {
	var admins int64
	db.Model(&models.User{}).
		Where("workspace_id = ? AND access_level = ? AND id <> ?", user.WorkspaceID, models.AccessLevelAdmin, user.ID).
		Count(&admins)
	if admins == 0 {
		return ErrLastAdmin
	}
	return nil
}
