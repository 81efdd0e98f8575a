package middleware

import (
	"visa_crm_go/services/i18n"

	"github.com/labstack/echo/v4"
)

// Toast variants
const (
	ToastDefault     = "default"
	ToastDestructive = "destructive"
)

// Toast is the user-facing notification attached to responses
type Toast struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Variant     string `json:"variant"`
}

// ToastResponse is the envelope for errors and confirmations without a payload
type ToastResponse struct {
	Toast Toast `json:"toast"`
}

// RespondToast writes {"toast": {...}} with translated title and description keys.
// Keys missing from the locale files are sent as given.
func RespondToast(c echo.Context, status int, variant, titleKey, descriptionKey string, args ...map[string]interface{}) error {
	lang := GetLocale(c)
	toast := Toast{
		Title:   i18n.Translate(lang, titleKey, args...),
		Variant: variant,
	}
	if descriptionKey != "" {
		toast.Description = i18n.Translate(lang, descriptionKey, args...)
	}
	return c.JSON(status, ToastResponse{Toast: toast})
}

// RespondError is a destructive toast
func RespondError(c echo.Context, status int, titleKey, descriptionKey string, args ...map[string]interface{}) error {
	return RespondToast(c, status, ToastDestructive, titleKey, descriptionKey, args...)
}
