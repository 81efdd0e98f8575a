package handlers

import (
	"net/http"

	"visa_crm_go/db"
	"visa_crm_go/middleware"
	"visa_crm_go/models"
	"visa_crm_go/services"

	"github.com/labstack/echo/v4"
)

// redactClientFinancials hides agreement fees from users without the financials capability
func redactClientFinancials(c echo.Context, client *models.Client) {
	if middleware.GetPermissions(c).Can(models.CapFinancials) {
		return
	}
	redactAgreements(client.Agreements)
}

func redactAgreements(agreements []models.Agreement) {
	for i := range agreements {
		agreements[i].FeeCents = 0
		agreements[i].Currency = ""
	}
}

// ListClientsHandler returns workspace clients
func ListClientsHandler(c echo.Context) error {
	filter := services.ClientFilter{
		Status:   c.QueryParam("status"),
		CaseType: c.QueryParam("case_type"),
		OwnerID:  c.QueryParam("owner_id"),
		Search:   c.QueryParam("q"),
	}
	clients, err := services.ListClients(db.DB, middleware.GetWorkspaceID(c), filter)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, clients)
}

// CreateClientHandler adds a client without going through a lead
func CreateClientHandler(c echo.Context) error {
	var in services.ClientInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c)
	}

	client, err := services.CreateClient(db.DB, middleware.GetWorkspaceID(c), middleware.GetCurrentUser(c), in)
	if err != nil {
		return respondServiceError(c, err)
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), models.AuditActionCreate, "Client", client.ID, client.Name, "Client created", nil, client)
	return respondWithToast(c, http.StatusCreated, client, "toast.client.created", "")
}

// GetClientHandler returns the full client profile
func GetClientHandler(c echo.Context) error {
	client, err := services.GetClient(db.DB, middleware.GetWorkspaceID(c), c.Param("id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	redactClientFinancials(c, client)
	return c.JSON(http.StatusOK, client)
}

// UpdateClientHandler edits identity and case type
func UpdateClientHandler(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	client, err := services.GetClient(db.DB, workspaceID, c.Param("id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	before := *client

	var in services.ClientInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c)
	}
	if err := services.UpdateClient(db.DB, client, in); err != nil {
		return respondServiceError(c, err)
	}

	client, err = services.GetClient(db.DB, workspaceID, client.ID)
	if err != nil {
		return respondServiceError(c, err)
	}
	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), models.AuditActionUpdate, "Client", client.ID, client.Name, "Client updated", before, client)

	redactClientFinancials(c, client)
	return respondWithToast(c, http.StatusOK, client, "toast.client.updated", "")
}

// UpdateClientStatusHandler sets Active, On Hold, Closed or Blocked
func UpdateClientStatusHandler(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	client, err := services.GetClient(db.DB, workspaceID, c.Param("id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	from := client.Status

	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c)
	}
	if err := services.UpdateClientStatus(db.DB, client, req.Status, middleware.GetCurrentUser(c)); err != nil {
		return respondServiceError(c, err)
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), models.AuditActionUpdate, "Client", client.ID, client.Name,
		"Status changed from "+from+" to "+req.Status,
		map[string]string{"status": from}, map[string]string{"status": req.Status})

	client, err = services.GetClient(db.DB, workspaceID, client.ID)
	if err != nil {
		return respondServiceError(c, err)
	}
	redactClientFinancials(c, client)
	return respondWithToast(c, http.StatusOK, client, "toast.client.status_changed", "",
		map[string]interface{}{"status": client.Status})
}

// UpdateCaseSummaryHandler stores the lawyer's case overview
func UpdateCaseSummaryHandler(c echo.Context) error {
	client, err := services.GetClient(db.DB, middleware.GetWorkspaceID(c), c.Param("id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	before := client.CaseSummary

	var summary models.CaseSummary
	if err := c.Bind(&summary); err != nil {
		return badRequest(c)
	}
	if err := services.UpdateCaseSummary(db.DB, client, summary); err != nil {
		return respondServiceError(c, err)
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), models.AuditActionUpdate, "Client", client.ID, client.Name, "Case summary updated", before, client.CaseSummary)
	return respondWithToast(c, http.StatusOK, client.CaseSummary, "toast.client.summary_saved", "")
}

// AddClientActivityHandler logs a note, call or email against a client
func AddClientActivityHandler(c echo.Context) error {
	client, err := services.GetClient(db.DB, middleware.GetWorkspaceID(c), c.Param("id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return addPartyActivity(c, models.ClientParty(client))
}
