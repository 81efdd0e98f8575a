package middleware

import (
	"net/http"

	"visa_crm_go/db"
	"visa_crm_go/services"

	"github.com/labstack/echo/v4"
)

// RequireActiveAccount blocks members of a suspended lawyer-firm account
func RequireActiveAccount() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := GetCurrentUser(c)
			if user == nil || user.IsSuperAdmin() || !user.HasWorkspace() {
				return next(c)
			}

			suspended, err := services.IsWorkspaceSuspended(db.DB, *user.WorkspaceID)
			if err != nil {
				return RespondError(c, http.StatusInternalServerError, "toast.error.request_failed", "toast.error.request_failed_description")
			}
			if suspended {
				services.LogSecurityEvent("SUSPENDED_ACCESS", user.ID, "workspace "+*user.WorkspaceID)
				return RespondError(c, http.StatusForbidden, "toast.error.account_suspended", "")
			}
			return next(c)
		}
	}
}
