package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"visa_crm_go/config"
	"visa_crm_go/models"
	"visa_crm_go/services/i18n"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func runLocale(req *http.Request, user *models.User) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if user != nil {
		c.Set(ContextKeyUser, user)
	}
	handler := Locale(&config.Config{Environment: "development"})(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	_ = handler(c)
	return c, rec
}

func TestLocale(t *testing.T) {
	t.Run("QueryParamSetsCookie", func(t *testing.T) {
		c, rec := runLocale(httptest.NewRequest(http.MethodGet, "/?lang=fr", nil), nil)
		assert.Equal(t, "fr", GetLocale(c))
		assert.Equal(t, "fr", i18n.GetLocale(c.Request().Context()))

		found := false
		for _, cookie := range rec.Result().Cookies() {
			if cookie.Name == "lang" {
				assert.Equal(t, "fr", cookie.Value)
				found = true
			}
		}
		assert.True(t, found)
	})

	t.Run("UnsupportedQueryParam", func(t *testing.T) {
		c, _ := runLocale(httptest.NewRequest(http.MethodGet, "/?lang=xx", nil), nil)
		assert.Equal(t, "en", GetLocale(c))
	})

	t.Run("Cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "lang", Value: "fr"})
		c, _ := runLocale(req, nil)
		assert.Equal(t, "fr", GetLocale(c))
	})

	t.Run("UserLanguage", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept-Language", "en-US")
		c, _ := runLocale(req, &models.User{Language: "fr"})
		assert.Equal(t, "fr", GetLocale(c))
	})

	t.Run("AcceptLanguage", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept-Language", "fr-CA,fr;q=0.9")
		c, _ := runLocale(req, nil)
		assert.Equal(t, "fr", GetLocale(c))
	})

	t.Run("Default", func(t *testing.T) {
		c, _ := runLocale(httptest.NewRequest(http.MethodGet, "/", nil), nil)
		assert.Equal(t, "en", GetLocale(c))
	})
}
