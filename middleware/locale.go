package middleware

import (
	"net/http"
	"time"

	"visa_crm_go/config"
	"visa_crm_go/services/i18n"

	"github.com/labstack/echo/v4"
)

// Locale picks the response language.
// Priority: ?lang= (persisted to a cookie), lang cookie, the user's saved language, Accept-Language.
func Locale(cfg *config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			lang := c.QueryParam("lang")
			if lang != "" {
				if !i18n.IsSupported(lang) {
					lang = "en"
				}
				SetLanguageCookie(c, lang)
			} else if cookie, err := c.Cookie("lang"); err == nil && i18n.IsSupported(cookie.Value) {
				lang = cookie.Value
			}

			if lang == "" {
				if user := GetCurrentUser(c); user != nil && i18n.IsSupported(user.Language) {
					lang = user.Language
				}
			}

			if lang == "" {
				lang = i18n.Match(c.Request().Header.Get("Accept-Language"))
			}

			c.Set("locale", lang)
			c.SetRequest(c.Request().WithContext(i18n.WithLocale(c.Request().Context(), lang)))

			return next(c)
		}
	}
}

// SetLanguageCookie sets the language cookie
func SetLanguageCookie(c echo.Context, lang string) {
	c.SetCookie(&http.Cookie{
		Name:     "lang",
		Value:    lang,
		Expires:  time.Now().Add(24 * 365 * time.Hour),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   isProduction(c),
	})
}

// GetLocale returns the current locale from context
func GetLocale(c echo.Context) string {
	if lang, ok := c.Get("locale").(string); ok && lang != "" {
		return lang
	}
	return "en"
}
