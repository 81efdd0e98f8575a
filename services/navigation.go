package services

import "visa_crm_go/models"

// NavItem is one sidebar entry. Capability and AuthRoles are optional gates.
type NavItem struct {
	Key        string            `json:"key"`
	Label      string            `json:"label"`
	Href       string            `json:"href"`
	Icon       string            `json:"icon"`
	Capability models.Capability `json:"-"`
	AuthRoles  []string          `json:"-"`
	ViewOnly   bool              `json:"view_only,omitempty"`
}

var navigationItems = []NavItem{
	{Key: "dashboard", Label: "nav.dashboard", Href: "/dashboard", Icon: "layout-dashboard"},
	{Key: "leads", Label: "nav.leads", Href: "/leads", Icon: "user-plus", Capability: models.CapViewData},
	{Key: "clients", Label: "nav.clients", Href: "/clients", Icon: "users", Capability: models.CapViewData},
	{Key: "tasks", Label: "nav.tasks", Href: "/tasks", Icon: "check-square", Capability: models.CapViewData},
	{Key: "ai-tools", Label: "nav.ai_tools", Href: "/ai-tools", Icon: "sparkles", Capability: models.CapEditData},
	{Key: "financials", Label: "nav.financials", Href: "/financials", Icon: "dollar-sign", Capability: models.CapFinancials},
	{Key: "team", Label: "nav.team", Href: "/team", Icon: "user-cog", Capability: models.CapViewManageTeam},
	{Key: "settings", Label: "nav.settings", Href: "/settings", Icon: "settings", Capability: models.CapHighLevelSettings},
	{Key: "accounts", Label: "nav.accounts", Href: "/admin/accounts", Icon: "briefcase", AuthRoles: []string{models.AuthRoleSuperAdmin}},
}

// VisibleNavigation returns the sidebar items the user may see, in declaration order
func VisibleNavigation(user *models.User, perms Permissions) []NavItem {
	visible := make([]NavItem, 0, len(navigationItems))
	for _, item := range navigationItems {
		if len(item.AuthRoles) > 0 && (user == nil || !containsString(item.AuthRoles, user.AuthRole)) {
			continue
		}
		if item.Capability != "" {
			value := perms.HasPermission(item.Capability)
			if !value.Granted() {
				continue
			}
			item.ViewOnly = value == models.PermissionViewOnly
		}
		visible = append(visible, item)
	}
	return visible
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
