package services

import (
	"errors"
	"fmt"
	"strings"

	"visa_crm_go/models"

	"gorm.io/gorm"
)

var ErrAccountNotFound = errors.New("account not found")

// Account is a lawyer-firm owner with their workspace, as listed for super-admins
type Account struct {
	Owner       models.User      `json:"owner"`
	Workspace   models.Workspace `json:"workspace"`
	MemberCount int64            `json:"member_count"`
	ClientCount int64            `json:"client_count"`
}

// NewAccountInput provisions a workspace and its first admin
type NewAccountInput struct {
	WorkspaceName string
	OwnerName     string
	OwnerEmail    string
	Password      string
	Plan          string
}

// CreateAccount creates a workspace with an owner holding admin rights
func CreateAccount(db *gorm.DB, in NewAccountInput) (*models.Workspace, *models.User, error) {
	if err := requireField("workspace_name", in.WorkspaceName); err != nil {
		return nil, nil, err
	}
	if in.Plan == "" {
		in.Plan = models.PlanStarter
	}
	if !models.IsValidPlan(in.Plan) {
		return nil, nil, NewValidationError("plan", "must be Starter, Professional or Enterprise")
	}

	var workspace *models.Workspace
	var owner *models.User
	err := db.Transaction(func(tx *gorm.DB) error {
		workspace = &models.Workspace{
			Name:         strings.TrimSpace(in.WorkspaceName),
			BillingEmail: normalizeEmail(in.OwnerEmail),
		}
		if err := tx.Create(workspace).Error; err != nil {
			return fmt.Errorf("failed to create workspace: %w", err)
		}

		var err error
		owner, err = CreateTeamMember(tx, workspace.ID, TeamMemberInput{
			Name:        in.OwnerName,
			Email:       in.OwnerEmail,
			Password:    in.Password,
			AccessLevel: models.AccessLevelAdmin,
			AuthRole:    models.AuthRoleAdmin,
		})
		if err != nil {
			return err
		}

		plan := in.Plan
		owner.Plan = &plan
		if err := tx.Model(owner).Update("plan", plan).Error; err != nil {
			return err
		}
		return tx.Model(workspace).Update("owner_id", owner.ID).Error
	})
	if err != nil {
		return nil, nil, err
	}
	workspace.OwnerID = &owner.ID
	return workspace, owner, nil
}

// CreateSuperAdmin provisions a platform operator without a workspace
func CreateSuperAdmin(db *gorm.DB, name, email, password string) (*models.User, error) {
	in := TeamMemberInput{Name: name, Email: email, Password: password}
	if err := in.validate(true); err != nil {
		return nil, err
	}
	hashed, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Name:          in.Name,
		Email:         in.Email,
		Password:      hashed,
		AuthRole:      models.AuthRoleSuperAdmin,
		AccessLevel:   models.AccessLevelAdmin,
		AccountStatus: models.AccountStatusActive,
		IsActive:      true,
	}
	if err := db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create super admin: %w", err)
	}
	return user, nil
}

// ListAccounts returns every lawyer-firm owner, optionally filtered by plan or status
func ListAccounts(db *gorm.DB, plan, status string) ([]Account, error) {
	query := db.Model(&models.Workspace{}).Where("owner_id IS NOT NULL")
	var workspaces []models.Workspace
	if err := query.Order("created_at DESC").Find(&workspaces).Error; err != nil {
		return nil, err
	}

	accounts := make([]Account, 0, len(workspaces))
	for _, ws := range workspaces {
		var owner models.User
		if err := db.First(&owner, "id = ?", *ws.OwnerID).Error; err != nil {
			continue
		}
		if plan != "" && (owner.Plan == nil || *owner.Plan != plan) {
			continue
		}
		if status != "" && owner.AccountStatus != status {
			continue
		}
		account := Account{Owner: owner, Workspace: ws}
		db.Model(&models.User{}).Where("workspace_id = ?", ws.ID).Count(&account.MemberCount)
		db.Model(&models.Client{}).Where("workspace_id = ?", ws.ID).Count(&account.ClientCount)
		accounts = append(accounts, account)
	}
	return accounts, nil
}

// AccountUpdate changes an owner's plan or account status
type AccountUpdate struct {
	Plan          string `json:"plan"`
	AccountStatus string `json:"account_status"`
}

// UpdateAccount applies a super-admin change. Suspending ends every session in the workspace.
func UpdateAccount(db *gorm.DB, ownerID string, in AccountUpdate) (*models.User, error) {
	var owner models.User
	if err := db.First(&owner, "id = ? AND auth_role <> ?", ownerID, models.AuthRoleSuperAdmin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Plan != "" {
		if !models.IsValidPlan(in.Plan) {
			return nil, NewValidationError("plan", "must be Starter, Professional or Enterprise")
		}
		updates["plan"] = in.Plan
	}
	if in.AccountStatus != "" {
		if !models.IsValidAccountStatus(in.AccountStatus) {
			return nil, NewValidationError("account_status", "must be Active or Suspended")
		}
		updates["account_status"] = in.AccountStatus
	}
	if len(updates) == 0 {
		return &owner, nil
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&owner).Updates(updates).Error; err != nil {
			return err
		}
		if in.AccountStatus == models.AccountStatusSuspended && owner.WorkspaceID != nil {
			return tx.Where("workspace_id = ?", *owner.WorkspaceID).Delete(&models.Session{}).Error
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	return &owner, nil
}

// IsWorkspaceSuspended reports whether the workspace owner's account is suspended
func IsWorkspaceSuspended(db *gorm.DB, workspaceID string) (bool, error) {
	var ws models.Workspace
	if err := db.First(&ws, "id = ?", workspaceID).Error; err != nil {
		return false, err
	}
	if ws.OwnerID == nil {
		return false, nil
	}
	var owner models.User
	if err := db.Select("account_status").First(&owner, "id = ?", *ws.OwnerID).Error; err != nil {
		return false, err
	}
	return owner.IsSuspended(), nil
}
