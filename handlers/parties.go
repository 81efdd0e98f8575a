package handlers

import (
	"net/http"

	"visa_crm_go/db"
	"visa_crm_go/middleware"
	"visa_crm_go/services"

	"github.com/labstack/echo/v4"
)

// GetPartyHandler returns the unified profile of a client or a lead
func GetPartyHandler(c echo.Context) error {
	party, err := services.GetParty(db.DB, middleware.GetWorkspaceID(c), c.Param("type"), c.Param("id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	if party.IsClient() {
		redactClientFinancials(c, party.Client)
	}

	profile := party.Profile()
	profile.Client = party.Client
	profile.Lead = party.Lead
	return c.JSON(http.StatusOK, profile)
}

// GetPartyTimelineHandler returns the party's activity, newest first
func GetPartyTimelineHandler(c echo.Context) error {
	activity, err := services.GetPartyTimeline(db.DB, middleware.GetWorkspaceID(c), c.Param("type"), c.Param("id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, activity)
}
