package handlers

import (
	"errors"
	"net/http"

	"visa_crm_go/db"
	"visa_crm_go/middleware"
	"visa_crm_go/models"
	"visa_crm_go/services"

	"github.com/labstack/echo/v4"
)

// leadResponse adds the statuses the lead can move to next
type leadResponse struct {
	*models.Lead
	AllowedTransitions []string `json:"allowed_transitions"`
}

func newLeadResponse(lead *models.Lead) leadResponse {
	return leadResponse{Lead: lead, AllowedTransitions: services.AllowedLeadTransitions(lead.Status)}
}

// ListLeadsHandler returns workspace leads filtered by status, owner and search text
func ListLeadsHandler(c echo.Context) error {
	filter := services.LeadFilter{
		Status:  c.QueryParam("status"),
		OwnerID: c.QueryParam("owner_id"),
		Search:  c.QueryParam("q"),
	}
	leads, err := services.ListLeads(db.DB, middleware.GetWorkspaceID(c), filter)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, leads)
}

// CreateLeadHandler creates a lead in status New
func CreateLeadHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)

	var in services.LeadInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c)
	}

	lead, err := services.CreateLead(db.DB, middleware.GetWorkspaceID(c), user, in)
	if err != nil {
		return respondServiceError(c, err)
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), models.AuditActionCreate, "Lead", lead.ID, lead.Name, "Lead created", nil, lead)
	services.PublishEvent(services.EventLeadCreated, lead.WorkspaceID, user.ID, lead)

	return respondWithToast(c, http.StatusCreated, newLeadResponse(lead), "toast.lead.created", "")
}

// GetLeadHandler returns a lead with its tasks and activity
func GetLeadHandler(c echo.Context) error {
	lead, err := services.GetLead(db.DB, middleware.GetWorkspaceID(c), c.Param("id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, newLeadResponse(lead))
}

// UpdateLeadHandler edits the lead's contact fields
func UpdateLeadHandler(c echo.Context) error {
	lead, err := services.GetLead(db.DB, middleware.GetWorkspaceID(c), c.Param("id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	before := *lead

	var in services.LeadInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c)
	}
	if err := services.UpdateLead(db.DB, lead, in); err != nil {
		return respondServiceError(c, err)
	}

	lead, err = services.GetLead(db.DB, lead.WorkspaceID, lead.ID)
	if err != nil {
		return respondServiceError(c, err)
	}
	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), models.AuditActionUpdate, "Lead", lead.ID, lead.Name, "Lead updated", before, lead)

	return respondWithToast(c, http.StatusOK, newLeadResponse(lead), "toast.lead.updated", "")
}

// DeleteLeadHandler soft-deletes a lead
func DeleteLeadHandler(c echo.Context) error {
	lead, err := services.GetLead(db.DB, middleware.GetWorkspaceID(c), c.Param("id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	if err := services.DeleteLead(db.DB, lead); err != nil {
		return respondServiceError(c, err)
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), models.AuditActionDelete, "Lead", lead.ID, lead.Name, "Lead deleted", lead, nil)
	return middleware.RespondToast(c, http.StatusOK, middleware.ToastDefault, "toast.lead.deleted", "")
}

type statusRequest struct {
	Status string `json:"status" form:"status"`
}

// UpdateLeadStatusHandler moves a lead through the status state machine
func UpdateLeadStatusHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	lead, err := services.GetLead(db.DB, middleware.GetWorkspaceID(c), c.Param("id"))
	if err != nil {
		return respondServiceError(c, err)
	}

	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c)
	}

	from := lead.Status
	if err := services.UpdateLeadStatus(db.DB, lead, req.Status, user); err != nil {
		if errors.Is(err, services.ErrInvalidLeadTransition) {
			return middleware.RespondError(c, http.StatusUnprocessableEntity, "toast.lead.invalid_transition", "",
				map[string]interface{}{"from": from, "to": req.Status})
		}
		return respondServiceError(c, err)
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), models.AuditActionUpdate, "Lead", lead.ID, lead.Name,
		"Status changed from "+from+" to "+lead.Status,
		map[string]string{"status": from}, map[string]string{"status": lead.Status})

	return respondWithToast(c, http.StatusOK, newLeadResponse(lead), "toast.lead.status_changed", "",
		map[string]interface{}{"status": lead.Status})
}

// ConvertLeadHandler creates a client from the lead. The lead is kept as is.
func ConvertLeadHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	lead, err := services.GetLead(db.DB, middleware.GetWorkspaceID(c), c.Param("id"))
	if err != nil {
		return respondServiceError(c, err)
	}

	client, err := services.ConvertLeadToClient(db.DB, lead, user)
	if err != nil {
		return respondServiceError(c, err)
	}

	middleware.RecordLeadConverted()
	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), models.AuditActionConvert, "Lead", lead.ID, lead.Name,
		"Lead converted to client "+client.ID, nil, client)
	services.PublishEvent(services.EventLeadConverted, lead.WorkspaceID, user.ID, map[string]string{
		"lead_id":   lead.ID,
		"client_id": client.ID,
	})

	return respondWithToast(c, http.StatusCreated, client, "toast.lead.converted", "toast.lead.converted_description",
		map[string]interface{}{"name": client.Name})
}

type activityRequest struct {
	Type        string `json:"type" form:"type"`
	Description string `json:"description" form:"description"`
}

// manualActivityTypes are the entry types a user may log by hand
var manualActivityTypes = map[string]bool{
	models.ActivityTypeNote:  true,
	models.ActivityTypeEmail: true,
	models.ActivityTypeCall:  true,
}

// AddLeadActivityHandler logs a note, call or email against a lead
func AddLeadActivityHandler(c echo.Context) error {
	lead, err := services.GetLead(db.DB, middleware.GetWorkspaceID(c), c.Param("id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return addPartyActivity(c, models.LeadParty(lead))
}

func addPartyActivity(c echo.Context, party models.Party) error {
	var req activityRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c)
	}
	if req.Type != "" && !manualActivityTypes[req.Type] {
		return middleware.RespondError(c, http.StatusBadRequest, "toast.error.validation", "type: must be note, email or call")
	}

	activity, err := services.AddPartyNote(db.DB, party, middleware.GetCurrentUser(c), req.Type, req.Description)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, activity)
}

// UpdateLeadIntakeHandler stores the pre-qualification score and summary on a lead
func UpdateLeadIntakeHandler(c echo.Context) error {
	lead, err := services.GetLead(db.DB, middleware.GetWorkspaceID(c), c.Param("id"))
	if err != nil {
		return respondServiceError(c, err)
	}

	var intake models.LeadIntake
	if err := c.Bind(&intake); err != nil {
		return badRequest(c)
	}
	if !models.IsValidLeadIntakeStatus(intake.Status) {
		return middleware.RespondError(c, http.StatusBadRequest, "toast.error.validation", "status: is not a valid intake status")
	}
	if intake.Score != nil && (*intake.Score < 0 || *intake.Score > 100) {
		return middleware.RespondError(c, http.StatusBadRequest, "toast.error.validation", "score: must be between 0 and 100")
	}
	if err := services.UpdateLeadIntake(db.DB, lead, intake); err != nil {
		return respondServiceError(c, err)
	}

	lead, err = services.GetLead(db.DB, lead.WorkspaceID, lead.ID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondWithToast(c, http.StatusOK, newLeadResponse(lead), "toast.lead.updated", "")
}
