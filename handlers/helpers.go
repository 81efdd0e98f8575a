package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"visa_crm_go/config"
	"visa_crm_go/middleware"
	"visa_crm_go/services"
	"visa_crm_go/services/ai"
	"visa_crm_go/services/i18n"

	"github.com/labstack/echo/v4"
)

// respondServiceError maps a service error to a toast response.
// Unknown errors are logged and reported as a generic failure.
func respondServiceError(c echo.Context, err error) error {
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		// untranslated keys are passed through, so the message reaches the client as is
		return middleware.RespondError(c, http.StatusBadRequest, "toast.error.validation", validationErr.Error())
	}

	switch {
	case errors.Is(err, services.ErrLeadNotFound),
		errors.Is(err, services.ErrClientNotFound),
		errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrDocumentNotFound),
		errors.Is(err, services.ErrAgreementNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrAccountNotFound),
		errors.Is(err, services.ErrWidgetNotFound),
		errors.Is(err, ai.ErrUnknownFlow):
		return middleware.RespondError(c, http.StatusNotFound, "toast.error.not_found", "")

	case errors.Is(err, services.ErrInvalidLeadTransition):
		return middleware.RespondError(c, http.StatusUnprocessableEntity, "toast.error.validation", err.Error())
	case errors.Is(err, services.ErrUnsupportedImport):
		return middleware.RespondError(c, http.StatusBadRequest, "toast.lead.unsupported_import", "")
	case errors.Is(err, services.ErrInvalidLeadStatus),
		errors.Is(err, services.ErrInvalidPermissionTable),
		errors.Is(err, services.ErrInvalidPartyType):
		return middleware.RespondError(c, http.StatusBadRequest, "toast.error.validation", err.Error())

	case errors.Is(err, services.ErrCannotRemoveSelf):
		return middleware.RespondError(c, http.StatusBadRequest, "toast.team.cannot_remove_self", "")
	case errors.Is(err, services.ErrEmailTaken):
		return middleware.RespondError(c, http.StatusConflict, "toast.team.email_taken", "")
	case errors.Is(err, services.ErrLastAdmin):
		return middleware.RespondError(c, http.StatusConflict, "toast.team.last_admin", "")
	case errors.Is(err, services.ErrIntakeAlreadySubmitted):
		return middleware.RespondError(c, http.StatusConflict, "toast.intake.already_submitted", "")
	case errors.Is(err, services.ErrInvalidIntakeToken):
		return middleware.RespondError(c, http.StatusUnauthorized, "toast.intake.invalid_link", "")

	case errors.Is(err, services.ErrInvalidCredentials):
		return middleware.RespondError(c, http.StatusUnauthorized, "toast.auth.invalid_credentials", "")
	case errors.Is(err, services.ErrAccountLocked):
		return middleware.RespondError(c, http.StatusLocked, "toast.auth.locked", "")
	case errors.Is(err, services.ErrAccountInactive):
		return middleware.RespondError(c, http.StatusUnauthorized, "toast.auth.inactive", "")

	case errors.Is(err, ai.ErrFlowFailed), errors.Is(err, ai.ErrNotConfigured):
		return middleware.RespondError(c, http.StatusBadGateway, "toast.ai.failed", "")
	}

	log.Printf("[ERROR] %s %s: %v", c.Request().Method, c.Path(), err)
	return middleware.RespondError(c, http.StatusInternalServerError, "toast.error.request_failed", "toast.error.request_failed_description")
}

// badRequest answers an unbindable request body
func badRequest(c echo.Context) error {
	return middleware.RespondError(c, http.StatusBadRequest, "toast.error.validation", "Malformed request body")
}

// payloadWithToast carries a resource together with a confirmation toast
type payloadWithToast struct {
	Data  interface{}      `json:"data"`
	Toast middleware.Toast `json:"toast"`
}

func respondWithToast(c echo.Context, status int, data interface{}, titleKey, descriptionKey string, args ...map[string]interface{}) error {
	lang := middleware.GetLocale(c)
	toast := middleware.Toast{Title: i18n.Translate(lang, titleKey, args...), Variant: middleware.ToastDefault}
	if descriptionKey != "" {
		toast.Description = i18n.Translate(lang, descriptionKey, args...)
	}
	return c.JSON(status, payloadWithToast{Data: data, Toast: toast})
}

func getConfig(c echo.Context) *config.Config {
	if cfg, ok := c.Get("config").(*config.Config); ok {
		return cfg
	}
	return &config.Config{}
}

func queryInt(c echo.Context, name string, fallback int) int {
	v, err := strconv.Atoi(c.QueryParam(name))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
