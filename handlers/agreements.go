package handlers

import (
	"fmt"
	"net/http"

	"visa_crm_go/db"
	"visa_crm_go/middleware"
	"visa_crm_go/models"
	"visa_crm_go/services"

	"github.com/labstack/echo/v4"
)

func loadClientAgreement(c echo.Context) (*models.Client, *models.Agreement, error) {
	client, err := services.GetClient(db.DB, middleware.GetWorkspaceID(c), c.Param("id"))
	if err != nil {
		return nil, nil, err
	}
	agreement, err := services.GetAgreement(db.DB, client.ID, c.Param("aid"))
	if err != nil {
		return nil, nil, err
	}
	return client, agreement, nil
}

func respondAgreement(c echo.Context, status int, agreement *models.Agreement, titleKey string) error {
	if !middleware.GetPermissions(c).Can(models.CapFinancials) {
		agreement.FeeCents = 0
		agreement.Currency = ""
	}
	if titleKey == "" {
		return c.JSON(status, agreement)
	}
	return respondWithToast(c, status, agreement, titleKey, "")
}

// ListAgreementsHandler returns the client's agreements. Fees are hidden without the financials capability.
func ListAgreementsHandler(c echo.Context) error {
	client, err := services.GetClient(db.DB, middleware.GetWorkspaceID(c), c.Param("id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	agreements, err := services.ListAgreements(db.DB, client.ID)
	if err != nil {
		return respondServiceError(c, err)
	}
	if !middleware.GetPermissions(c).Can(models.CapFinancials) {
		redactAgreements(agreements)
	}
	return c.JSON(http.StatusOK, agreements)
}

// CreateAgreementHandler drafts an agreement for the client
func CreateAgreementHandler(c echo.Context) error {
	client, err := services.GetClient(db.DB, middleware.GetWorkspaceID(c), c.Param("id"))
	if err != nil {
		return respondServiceError(c, err)
	}

	var in services.AgreementInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c)
	}
	if !middleware.GetPermissions(c).Can(models.CapFinancials) {
		in.FeeCents = 0
		in.Currency = ""
	}

	agreement, err := services.CreateAgreement(db.DB, client, middleware.GetCurrentUser(c), in)
	if err != nil {
		return respondServiceError(c, err)
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), models.AuditActionCreate, "Agreement", agreement.ID, agreement.Title, "Agreement drafted for "+client.Name, nil, agreement)
	return respondAgreement(c, http.StatusCreated, agreement, "toast.agreement.created")
}

// GetAgreementHandler returns one agreement
func GetAgreementHandler(c echo.Context) error {
	_, agreement, err := loadClientAgreement(c)
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondAgreement(c, http.StatusOK, agreement, "")
}

// UpdateAgreementHandler edits a draft. Users without financials keep the stored fee.
func UpdateAgreementHandler(c echo.Context) error {
	client, agreement, err := loadClientAgreement(c)
	if err != nil {
		return respondServiceError(c, err)
	}
	before := *agreement

	var in services.AgreementInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c)
	}
	if !middleware.GetPermissions(c).Can(models.CapFinancials) {
		in.FeeCents = agreement.FeeCents
		in.Currency = agreement.Currency
	}
	if err := services.UpdateAgreement(db.DB, agreement, in); err != nil {
		return respondServiceError(c, err)
	}

	agreement, err = services.GetAgreement(db.DB, client.ID, agreement.ID)
	if err != nil {
		return respondServiceError(c, err)
	}
	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), models.AuditActionUpdate, "Agreement", agreement.ID, agreement.Title, "Agreement updated", before, agreement)
	return respondAgreement(c, http.StatusOK, agreement, "toast.agreement.updated")
}

// UpdateAgreementStatusHandler sends, signs or cancels an agreement
func UpdateAgreementStatusHandler(c echo.Context) error {
	client, agreement, err := loadClientAgreement(c)
	if err != nil {
		return respondServiceError(c, err)
	}
	from := agreement.Status

	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c)
	}
	if err := services.UpdateAgreementStatus(db.DB, client, agreement, req.Status, middleware.GetCurrentUser(c)); err != nil {
		if services.IsValidationError(err) && models.IsValidAgreementStatus(req.Status) {
			return middleware.RespondError(c, http.StatusUnprocessableEntity, "toast.agreement.invalid_transition", "",
				map[string]interface{}{"from": from, "to": req.Status})
		}
		return respondServiceError(c, err)
	}

	agreement, err = services.GetAgreement(db.DB, client.ID, agreement.ID)
	if err != nil {
		return respondServiceError(c, err)
	}
	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), models.AuditActionUpdate, "Agreement", agreement.ID, agreement.Title,
		"Status changed from "+from+" to "+agreement.Status,
		map[string]string{"status": from}, map[string]string{"status": agreement.Status})
	return respondAgreement(c, http.StatusOK, agreement, "toast.agreement.updated")
}

// AgreementPDFHandler prints the agreement with placeholders filled in. The fee is left
// blank for users without the financials capability.
func AgreementPDFHandler(c echo.Context) error {
	client, agreement, err := loadClientAgreement(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	lawyer := middleware.GetCurrentUser(c)
	if client.Owner != nil {
		lawyer = client.Owner
	}
	showFees := middleware.GetPermissions(c).Can(models.CapFinancials)
	pdf, err := services.RenderAgreementPDF(c.Request().Context(), db.DB, agreement, client, lawyer, showFees, getConfig(c).ChromePath)
	if err != nil {
		return respondServiceError(c, err)
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), models.AuditActionDownload, "Agreement", agreement.ID, agreement.Title, "Agreement PDF generated", nil, nil)

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`inline; filename="agreement_%s.pdf"`, agreement.ID))
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}
