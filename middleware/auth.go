package middleware

import (
	"net/http"

	"visa_crm_go/config"
	"visa_crm_go/db"
	"visa_crm_go/models"
	"visa_crm_go/services"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

const (
	// SessionCookieName is the name of the session cookie
	SessionCookieName = "visa_crm_session"
	// ContextKeyUser is the context key for the authenticated user
	ContextKeyUser = "user"
	// ContextKeyWorkspace is the context key for the user's workspace
	ContextKeyWorkspace = "workspace"
	// ContextKeySession is the context key for the session
	ContextKeySession = "session"
)

func unauthorized(c echo.Context) error {
	clearSessionCookie(c)
	return RespondError(c, http.StatusUnauthorized, "toast.error.unauthorized", "")
}

// RequireAuth resolves the session cookie into the current user
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				return RespondError(c, http.StatusUnauthorized, "toast.error.unauthorized", "")
			}

			session, err := services.ValidateSession(db.DB, cookie.Value)
			if err != nil {
				return unauthorized(c)
			}

			if !session.User.IsActive {
				return unauthorized(c)
			}

			c.Set(ContextKeyUser, &session.User)
			if session.Workspace != nil {
				c.Set(ContextKeyWorkspace, session.Workspace)
			}
			c.Set(ContextKeySession, session)

			return next(c)
		}
	}
}

// RequireAuthRole restricts a route to the given auth roles
func RequireAuthRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := GetCurrentUser(c)
			if user == nil {
				return RespondError(c, http.StatusUnauthorized, "toast.error.unauthorized", "")
			}

			for _, role := range roles {
				if user.AuthRole == role {
					return next(c)
				}
			}
			return RespondError(c, http.StatusForbidden, "toast.error.forbidden", "")
		}
	}
}

// RequireWorkspace rejects users without a workspace (super-admins) on workspace routes
func RequireWorkspace() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := GetCurrentUser(c)
			if user == nil {
				return RespondError(c, http.StatusUnauthorized, "toast.error.unauthorized", "")
			}
			if !user.HasWorkspace() {
				return RespondError(c, http.StatusForbidden, "toast.error.forbidden", "")
			}
			return next(c)
		}
	}
}

// GetCurrentUser retrieves the current user from context
func GetCurrentUser(c echo.Context) *models.User {
	user, ok := c.Get(ContextKeyUser).(*models.User)
	if !ok {
		return nil
	}
	return user
}

// GetCurrentWorkspace retrieves the current user's workspace from context
func GetCurrentWorkspace(c echo.Context) *models.Workspace {
	ws, ok := c.Get(ContextKeyWorkspace).(*models.Workspace)
	if !ok {
		return nil
	}
	return ws
}

// GetWorkspaceID returns the current user's workspace id, or "" for super-admins
func GetWorkspaceID(c echo.Context) string {
	user := GetCurrentUser(c)
	if user == nil || user.WorkspaceID == nil {
		return ""
	}
	return *user.WorkspaceID
}

// GetWorkspaceScopedQuery returns a GORM query scoped to the current user's workspace
func GetWorkspaceScopedQuery(c echo.Context, database *gorm.DB) *gorm.DB {
	workspaceID := GetWorkspaceID(c)
	if workspaceID == "" {
		return database.Where("1 = 0")
	}
	return database.Where("workspace_id = ?", workspaceID)
}

// SetSessionCookie writes the session cookie for a fresh login
func SetSessionCookie(c echo.Context, session *models.Session) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   isProduction(c),
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie
func ClearSessionCookie(c echo.Context) {
	clearSessionCookie(c)
}

func clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   isProduction(c),
		SameSite: http.SameSiteLaxMode,
	})
}

func isProduction(c echo.Context) bool {
	cfg, ok := c.Get("config").(*config.Config)
	return ok && cfg.Environment == "production"
}
