package services

import (
	"time"

	"visa_crm_go/models"

	"gorm.io/gorm"
)

// FinancialSummary totals agreement fees by currency
type FinancialSummary struct {
	Signed  map[string]int64 `json:"signed"`
	Pending map[string]int64 `json:"pending"` // sent, not yet signed
}

// WorkspaceStats are the counts shown on lawyer and admin dashboards
type WorkspaceStats struct {
	Clients         int64             `json:"clients"`
	ClientsByStatus map[string]int64  `json:"clients_by_status"`
	LeadsByStatus   map[string]int64  `json:"leads_by_status"`
	OpenTasks       int64             `json:"open_tasks"`
	OverdueTasks    int64             `json:"overdue_tasks"`
	UpcomingTasks   []models.Task     `json:"upcoming_tasks"`
	RecentClients   []models.Client   `json:"recent_clients"`
	RecentActivity  []models.Activity `json:"recent_activity"`
	TeamSize        int64             `json:"team_size,omitempty"`
	Financials      *FinancialSummary `json:"financials,omitempty"`
}

// PlatformStats are shown to super-admins
type PlatformStats struct {
	Workspaces       int64            `json:"workspaces"`
	AccountsByPlan   map[string]int64 `json:"accounts_by_plan"`
	AccountsByStatus map[string]int64 `json:"accounts_by_status"`
}

// DashboardStats holds whichever scope applies to the user's auth role
type DashboardStats struct {
	Scope     string          `json:"scope"` // "own", "workspace" or "platform"
	Workspace *WorkspaceStats `json:"workspace,omitempty"`
	Platform  *PlatformStats  `json:"platform,omitempty"`
}

// BuildDashboardStats scopes the dashboard by auth role. Lawyers see their own
// book of business; admins see the workspace, plus financials when permitted.
func BuildDashboardStats(db *gorm.DB, user *models.User, perms Permissions, now time.Time) (*DashboardStats, error) {
	if user.IsSuperAdmin() {
		platform, err := buildPlatformStats(db)
		if err != nil {
			return nil, err
		}
		return &DashboardStats{Scope: "platform", Platform: platform}, nil
	}

	workspaceID := ""
	if user.WorkspaceID != nil {
		workspaceID = *user.WorkspaceID
	}

	ownerID := user.ID
	scope := "own"
	if user.AuthRole == models.AuthRoleAdmin {
		ownerID = ""
		scope = "workspace"
	}

	stats, err := buildWorkspaceStats(db, workspaceID, ownerID, now)
	if err != nil {
		return nil, err
	}

	if scope == "workspace" {
		db.Model(&models.User{}).Where("workspace_id = ?", workspaceID).Count(&stats.TeamSize)
		if perms.Can(models.CapFinancials) {
			signed, err := SumAgreementFees(db, workspaceID, models.AgreementStatusSigned)
			if err != nil {
				return nil, err
			}
			pending, err := SumAgreementFees(db, workspaceID, models.AgreementStatusSent)
			if err != nil {
				return nil, err
			}
			stats.Financials = &FinancialSummary{Signed: signed, Pending: pending}
		}
	}
	return &DashboardStats{Scope: scope, Workspace: stats}, nil
}

func buildWorkspaceStats(db *gorm.DB, workspaceID, ownerID string, now time.Time) (*WorkspaceStats, error) {
	stats := &WorkspaceStats{}
	var err error

	if stats.ClientsByStatus, err = CountClientsByStatus(db, workspaceID, ownerID); err != nil {
		return nil, err
	}
	for _, n := range stats.ClientsByStatus {
		stats.Clients += n
	}
	if stats.LeadsByStatus, err = CountLeadsByStatus(db, workspaceID, ownerID); err != nil {
		return nil, err
	}
	if stats.OpenTasks, err = CountOpenTasks(db, workspaceID, ownerID); err != nil {
		return nil, err
	}

	overdue := db.Model(&models.Task{}).
		Where("workspace_id = ? AND status <> ? AND due_date < ?", workspaceID, models.TaskStatusCompleted, now)
	if ownerID != "" {
		overdue = overdue.Where("assignee_id = ?", ownerID)
	}
	overdue.Count(&stats.OverdueTasks)

	upcoming := db.Where("workspace_id = ? AND status <> ? AND due_date >= ?", workspaceID, models.TaskStatusCompleted, now)
	if ownerID != "" {
		upcoming = upcoming.Where("assignee_id = ?", ownerID)
	}
	if err := upcoming.Order("due_date ASC").Limit(5).Find(&stats.UpcomingTasks).Error; err != nil {
		return nil, err
	}

	recent := db.Where("workspace_id = ?", workspaceID)
	if ownerID != "" {
		recent = recent.Where("owner_id = ?", ownerID)
	}
	if err := recent.Order("created_at DESC").Limit(5).Find(&stats.RecentClients).Error; err != nil {
		return nil, err
	}

	if stats.RecentActivity, err = ListRecentActivity(db, workspaceID, 10); err != nil {
		return nil, err
	}
	return stats, nil
}

func buildPlatformStats(db *gorm.DB) (*PlatformStats, error) {
	stats := &PlatformStats{
		AccountsByPlan: map[string]int64{
			models.PlanStarter:      0,
			models.PlanProfessional: 0,
			models.PlanEnterprise:   0,
		},
		AccountsByStatus: map[string]int64{
			models.AccountStatusActive:    0,
			models.AccountStatusSuspended: 0,
		},
	}
	db.Model(&models.Workspace{}).Count(&stats.Workspaces)

	var owners []models.User
	err := db.Where("id IN (?)", db.Model(&models.Workspace{}).Select("owner_id").Where("owner_id IS NOT NULL")).
		Find(&owners).Error
	if err != nil {
		return nil, err
	}
	for _, o := range owners {
		if o.Plan != nil {
			stats.AccountsByPlan[*o.Plan]++
		}
		stats.AccountsByStatus[o.AccountStatus]++
	}
	return stats, nil
}
