package handlers

import (
	"net/http"

	"visa_crm_go/db"
	"visa_crm_go/middleware"
	"visa_crm_go/models"
	"visa_crm_go/services"

	"github.com/labstack/echo/v4"
)

// ListTeamHandler returns the workspace team. View-only access is enough.
func ListTeamHandler(c echo.Context) error {
	users, err := services.ListTeamMembers(db.DB, middleware.GetWorkspaceID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

// CreateTeamMemberHandler adds a team member and emails them a welcome note
func CreateTeamMemberHandler(c echo.Context) error {
	var in services.TeamMemberInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c)
	}

	user, err := services.CreateTeamMember(db.DB, middleware.GetWorkspaceID(c), in)
	if err != nil {
		return respondServiceError(c, err)
	}

	cfg := getConfig(c)
	workspaceName := ""
	if ws := middleware.GetCurrentWorkspace(c); ws != nil {
		workspaceName = ws.Name
	}
	services.SendEmailAsync(cfg, services.BuildWelcomeEmail(user.Email, user.Language, services.WelcomeEmailData{
		UserName:      user.Name,
		WorkspaceName: workspaceName,
		LoginURL:      cfg.AppURL + "/login",
	}))

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), models.AuditActionCreate, "User", user.ID, user.Name, "Team member added", nil, user)
	return respondWithToast(c, http.StatusCreated, user, "toast.team.created", "")
}

// UpdateTeamMemberHandler edits a team member. A new password ends their sessions.
func UpdateTeamMemberHandler(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	user, err := services.GetTeamMember(db.DB, workspaceID, c.Param("id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	before := *user

	var in services.TeamMemberInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c)
	}
	if err := services.UpdateTeamMember(db.DB, user, in); err != nil {
		return respondServiceError(c, err)
	}

	user, err = services.GetTeamMember(db.DB, workspaceID, user.ID)
	if err != nil {
		return respondServiceError(c, err)
	}
	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), models.AuditActionUpdate, "User", user.ID, user.Name, "Team member updated", before, user)
	return respondWithToast(c, http.StatusOK, user, "toast.team.updated", "")
}

// RemoveTeamMemberHandler removes a team member, keeping at least one admin
func RemoveTeamMemberHandler(c echo.Context) error {
	user, err := services.GetTeamMember(db.DB, middleware.GetWorkspaceID(c), c.Param("id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	if err := services.RemoveTeamMember(db.DB, middleware.GetCurrentUser(c), user); err != nil {
		return respondServiceError(c, err)
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), models.AuditActionDelete, "User", user.ID, user.Name, "Team member removed", user, nil)
	return middleware.RespondToast(c, http.StatusOK, middleware.ToastDefault, "toast.team.removed", "")
}
