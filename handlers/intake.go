package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"visa_crm_go/config"
	"visa_crm_go/db"
	"visa_crm_go/middleware"
	"visa_crm_go/models"
	"visa_crm_go/services"
	"visa_crm_go/services/ai"

	"github.com/labstack/echo/v4"
)

type intakeLinkResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
	Emailed   bool      `json:"emailed"`
}

type intakeStepRequest struct {
	Step    string            `json:"step"`
	Answers map[string]string `json:"answers"`
	Submit  bool              `json:"submit"`
}

type publicIntakeResponse struct {
	ClientName    string             `json:"client_name"`
	WorkspaceName string             `json:"workspace_name"`
	Steps         []string           `json:"steps"`
	Form          *models.IntakeForm `json:"form"`
}

func intakeTTL(cfg *config.Config) time.Duration {
	hours := cfg.IntakeLinkTTLHours
	if hours <= 0 {
		hours = 72
	}
	return time.Duration(hours) * time.Hour
}

// CreateIntakeLinkHandler issues a signed questionnaire link for the client.
// With ?send=true the link is also emailed to the client.
func CreateIntakeLinkHandler(c echo.Context) error {
	cfg := getConfig(c)
	client, err := services.GetClient(db.DB, middleware.GetWorkspaceID(c), c.Param("id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	if _, err := services.GetOrCreateIntakeForm(db.DB, client); err != nil {
		return respondServiceError(c, err)
	}

	now := time.Now()
	ttl := intakeTTL(cfg)
	token, err := services.IssueIntakeToken([]byte(cfg.SessionSecret), client.WorkspaceID, client.ID, ttl, now)
	if err != nil {
		return respondServiceError(c, err)
	}

	resp := intakeLinkResponse{
		URL:       cfg.AppURL + "/intake/" + token,
		ExpiresAt: now.Add(ttl),
	}

	if c.QueryParam("send") == "true" {
		workspaceName := ""
		if ws := middleware.GetCurrentWorkspace(c); ws != nil {
			workspaceName = ws.Name
		}
		email := services.BuildIntakeLinkEmail(client.Email, middleware.GetLocale(c), services.IntakeLinkEmailData{
			ClientName:    client.Name,
			WorkspaceName: workspaceName,
			IntakeURL:     resp.URL,
			ExpiresAt:     services.FormatEmailDate(resp.ExpiresAt),
		})
		services.SendEmailAsync(cfg, email)
		resp.Emailed = true
		if _, err := services.RecordClientActivity(db.DB, client, middleware.GetCurrentUser(c), models.ActivityTypeEmail, "Intake link sent to "+client.Email); err != nil {
			log.Printf("[INTAKE] Failed to record activity for client %s: %v", client.ID, err)
		}
	}

	return respondWithToast(c, http.StatusCreated, resp, "toast.client.intake_link", "")
}

// GetClientIntakeHandler returns the client's questionnaire for staff
func GetClientIntakeHandler(c echo.Context) error {
	client, err := services.GetClient(db.DB, middleware.GetWorkspaceID(c), c.Param("id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	form, err := services.GetOrCreateIntakeForm(db.DB, client)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, form)
}

// UpdateClientIntakeHandler lets staff fill in a step on the client's behalf
func UpdateClientIntakeHandler(c echo.Context) error {
	client, err := services.GetClient(db.DB, middleware.GetWorkspaceID(c), c.Param("id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	form, err := services.GetOrCreateIntakeForm(db.DB, client)
	if err != nil {
		return respondServiceError(c, err)
	}

	var req intakeStepRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c)
	}
	if err := services.SaveIntakeStep(db.DB, form, req.Step, req.Answers); err != nil {
		return respondServiceError(c, err)
	}
	return respondWithToast(c, http.StatusOK, form, "toast.intake.saved", "")
}

// loadIntakeFromToken resolves a public intake token to the client and its form
func loadIntakeFromToken(c echo.Context) (*models.Client, *models.IntakeForm, error) {
	claims, err := services.ParseIntakeToken([]byte(getConfig(c).SessionSecret), c.Param("token"))
	if err != nil {
		return nil, nil, err
	}
	client, err := services.GetClient(db.DB, claims.WorkspaceID, claims.ClientID)
	if err != nil {
		return nil, nil, services.ErrInvalidIntakeToken
	}
	form, err := services.GetOrCreateIntakeForm(db.DB, client)
	if err != nil {
		return nil, nil, err
	}
	return client, form, nil
}

// PublicIntakeHandler returns the questionnaire for a signed link
func PublicIntakeHandler(c echo.Context) error {
	client, form, err := loadIntakeFromToken(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	var workspace models.Workspace
	if err := db.DB.First(&workspace, "id = ?", client.WorkspaceID).Error; err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(http.StatusOK, publicIntakeResponse{
		ClientName:    client.Name,
		WorkspaceName: workspace.Name,
		Steps:         models.IntakeStepKeys,
		Form:          form,
	})
}

// PublicIntakeSubmitHandler saves a step and, when submit is set, locks the
// questionnaire and queues the intake analysis
func PublicIntakeSubmitHandler(c echo.Context) error {
	client, form, err := loadIntakeFromToken(c)
	if err != nil {
		return respondServiceError(c, err)
	}
	if form.Status == models.IntakeFormStatusSubmitted || form.Status == models.IntakeFormStatusAnalyzed {
		return respondServiceError(c, services.ErrIntakeAlreadySubmitted)
	}

	var req intakeStepRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c)
	}
	if req.Step != "" {
		if err := services.SaveIntakeStep(db.DB, form, req.Step, req.Answers); err != nil {
			return respondServiceError(c, err)
		}
	}
	if !req.Submit {
		return respondWithToast(c, http.StatusOK, form, "toast.intake.saved", "")
	}

	if err := services.SubmitIntakeForm(db.DB, form, client); err != nil {
		return respondServiceError(c, err)
	}

	if err := services.NewNotificationService(db.DB).NotifyIntakeSubmitted(client); err != nil {
		log.Printf("[INTAKE] Failed to notify owner of client %s: %v", client.ID, err)
	}
	services.PublishEvent(services.EventIntakeSubmit, client.WorkspaceID, "", map[string]string{
		"client_id": client.ID,
		"form_id":   form.ID,
	})
	go analyzeIntake(getConfig(c), client, form)

	return respondWithToast(c, http.StatusOK, form, "toast.intake.submitted", "")
}

// analyzeIntake runs the intake-analyzer flow and stores its score. Failures are logged;
// the form stays Submitted and can be analyzed again from the AI tools.
func analyzeIntake(cfg *config.Config, client *models.Client, form *models.IntakeForm) {
	if AIClient == nil {
		return
	}
	answers, err := form.Answers()
	if err != nil {
		log.Printf("[INTAKE] Failed to read answers for form %s: %v", form.ID, err)
		return
	}

	timeout := time.Duration(cfg.AITimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = time.Minute
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	result, err := AIClient.IntakeAnalyzer(ctx, ai.IntakeAnalyzerInput{
		ClientName: client.Name,
		CaseType:   client.CaseType,
		Answers:    answers,
	})
	middleware.RecordAIFlow(ai.FlowIntakeAnalyzer, err == nil)
	if err != nil {
		log.Printf("[INTAKE] Analysis failed for client %s: %v", client.ID, err)
		return
	}
	if err := services.SaveIntakeAnalysis(db.DB, form, result.Score, result.Summary); err != nil {
		log.Printf("[INTAKE] Failed to save analysis for client %s: %v", client.ID, err)
	}
}
