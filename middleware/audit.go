package middleware

import (
	"visa_crm_go/services"

	"github.com/labstack/echo/v4"
)

const ContextKeyAuditContext = "audit_context"

// AuditContext is middleware that extracts user info for audit logging
func AuditContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := services.NewAuditContext(GetCurrentUser(c), c.RealIP(), c.Request().UserAgent())
			if ws := GetCurrentWorkspace(c); ws != nil {
				ctx.WorkspaceID = ws.ID
				ctx.WorkspaceName = ws.Name
			}
			c.Set(ContextKeyAuditContext, ctx)
			return next(c)
		}
	}
}

// GetAuditContext retrieves the audit context from the request
func GetAuditContext(c echo.Context) services.AuditContext {
	if ctx, ok := c.Get(ContextKeyAuditContext).(services.AuditContext); ok {
		return ctx
	}
	return services.NewAuditContext(GetCurrentUser(c), c.RealIP(), c.Request().UserAgent())
}
