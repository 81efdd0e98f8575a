package middleware

import (
	"log"
	"net/http"

	"visa_crm_go/db"
	"visa_crm_go/models"
	"visa_crm_go/services"

	"github.com/labstack/echo/v4"
)

const ContextKeyPermissions = "permissions"

// LoadPermissions resolves the current user's permissions once per request
func LoadPermissions() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := GetCurrentUser(c)
			if user == nil {
				return next(c)
			}
			perms, err := services.PermissionsForUser(db.DB, user)
			if err != nil {
				log.Printf("[SECURITY] Failed to load permissions for user %s: %v", user.ID, err)
				return RespondError(c, http.StatusInternalServerError, "toast.error.request_failed", "toast.error.request_failed_description")
			}
			c.Set(ContextKeyPermissions, perms)
			return next(c)
		}
	}
}

// GetPermissions returns the resolved permissions, resolving against defaults when
// LoadPermissions did not run
func GetPermissions(c echo.Context) services.Permissions {
	if perms, ok := c.Get(ContextKeyPermissions).(services.Permissions); ok {
		return perms
	}
	return services.ResolvePermissions(GetCurrentUser(c), services.DefaultPermissions())
}

// RequirePermission rejects requests unless the capability is granted in full.
// view-only does not satisfy it.
func RequirePermission(capability models.Capability) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !GetPermissions(c).HasPermission(capability).Full() {
				return forbidden(c, capability)
			}
			return next(c)
		}
	}
}

// RequireCapability accepts any grant, including view-only
func RequireCapability(capability models.Capability) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !GetPermissions(c).Can(capability) {
				return forbidden(c, capability)
			}
			return next(c)
		}
	}
}

func forbidden(c echo.Context, capability models.Capability) error {
	userID := ""
	if user := GetCurrentUser(c); user != nil {
		userID = user.ID
	}
	services.LogSecurityEvent("PERMISSION_DENIED", userID, string(capability)+" "+c.Request().Method+" "+c.Path())
	return RespondError(c, http.StatusForbidden, "toast.error.forbidden", "")
}
