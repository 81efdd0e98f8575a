package handlers

import (
	"net/http"

	"visa_crm_go/db"
	"visa_crm_go/middleware"
	"visa_crm_go/models"
	"visa_crm_go/services"

	"github.com/labstack/echo/v4"
)

type createAccountRequest struct {
	WorkspaceName string `json:"workspace_name"`
	OwnerName     string `json:"owner_name"`
	OwnerEmail    string `json:"owner_email"`
	Password      string `json:"password"`
	Plan          string `json:"plan"`
}

// ListAccountsHandler lists lawyer-firm accounts for super-admins
func ListAccountsHandler(c echo.Context) error {
	accounts, err := services.ListAccounts(db.DB, c.QueryParam("plan"), c.QueryParam("status"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, accounts)
}

// CreateAccountHandler provisions a workspace and its owner
func CreateAccountHandler(c echo.Context) error {
	var req createAccountRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c)
	}

	workspace, owner, err := services.CreateAccount(db.DB, services.NewAccountInput{
		WorkspaceName: req.WorkspaceName,
		OwnerName:     req.OwnerName,
		OwnerEmail:    req.OwnerEmail,
		Password:      req.Password,
		Plan:          req.Plan,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	cfg := getConfig(c)
	services.SendEmailAsync(cfg, services.BuildWelcomeEmail(owner.Email, owner.Language, services.WelcomeEmailData{
		UserName:      owner.Name,
		WorkspaceName: workspace.Name,
		LoginURL:      cfg.AppURL + "/login",
	}))
	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), models.AuditActionCreate, "Account", owner.ID, workspace.Name, "Lawyer account created", nil, owner)

	return respondWithToast(c, http.StatusCreated, services.Account{Owner: *owner, Workspace: *workspace, MemberCount: 1}, "toast.account.created", "")
}

// UpdateAccountHandler changes an account's plan or suspends it
func UpdateAccountHandler(c echo.Context) error {
	var in services.AccountUpdate
	if err := c.Bind(&in); err != nil {
		return badRequest(c)
	}

	owner, err := services.UpdateAccount(db.DB, c.Param("id"), in)
	if err != nil {
		return respondServiceError(c, err)
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), models.AuditActionUpdate, "Account", owner.ID, owner.Name, "Account updated", nil, in)
	return respondWithToast(c, http.StatusOK, owner, "toast.account.updated", "")
}
