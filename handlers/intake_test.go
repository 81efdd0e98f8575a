package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"visa_crm_go/models"
	"visa_crm_go/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntakeFlow(t *testing.T) {
	database := setupTestDB(t)
	AIClient = nil
	ws := createWorkspace(t, database, "Intake Firm")
	lawyer := createUser(t, database, ws, models.AuthRoleLawyer, models.AccessLevelMember)
	client, err := services.CreateClient(database, ws.ID, lawyer, services.ClientInput{Name: "Mateo Garcia", Email: "mateo@example.com"})
	require.NoError(t, err)

	var token string

	t.Run("Create link", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodPost, "/api/clients/"+client.ID+"/intake-link", nil)
		c.SetParamNames("id")
		c.SetParamValues(client.ID)
		asUser(c, lawyer, ws)

		assert.NoError(t, CreateIntakeLinkHandler(c))
		assert.Equal(t, http.StatusCreated, rec.Code)

		var resp struct {
			Data intakeLinkResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, strings.HasPrefix(resp.Data.URL, "http://localhost:8080/intake/"))
		assert.False(t, resp.Data.Emailed)
		assert.WithinDuration(t, time.Now().Add(72*time.Hour), resp.Data.ExpiresAt, time.Minute)
		token = strings.TrimPrefix(resp.Data.URL, "http://localhost:8080/intake/")
	})

	public := func(method, body string) (int, []byte) {
		var reader io.Reader
		if body != "" {
			reader = strings.NewReader(body)
		}
		_, c, rec := setupEcho(method, "/intake/"+token, reader)
		c.SetParamNames("token")
		c.SetParamValues(token)
		if method == http.MethodGet {
			require.NoError(t, PublicIntakeHandler(c))
		} else {
			require.NoError(t, PublicIntakeSubmitHandler(c))
		}
		return rec.Code, rec.Body.Bytes()
	}

	t.Run("Public view", func(t *testing.T) {
		code, body := public(http.MethodGet, "")
		assert.Equal(t, http.StatusOK, code)

		var resp publicIntakeResponse
		require.NoError(t, json.Unmarshal(body, &resp))
		assert.Equal(t, "Mateo Garcia", resp.ClientName)
		assert.Equal(t, "Intake Firm", resp.WorkspaceName)
		assert.Equal(t, models.IntakeStepKeys, resp.Steps)
	})

	t.Run("Submit without personal details", func(t *testing.T) {
		code, _ := public(http.MethodPost, `{"submit":true}`)
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("Save step then submit", func(t *testing.T) {
		code, _ := public(http.MethodPost, `{"step":"personal","answers":{"full_name":"Mateo Garcia","dob":"1990-04-02"}}`)
		assert.Equal(t, http.StatusOK, code)

		code, _ = public(http.MethodPost, `{"step":"language","answers":{"ielts":"8.0"},"submit":true}`)
		assert.Equal(t, http.StatusOK, code)

		form, err := services.GetOrCreateIntakeForm(database, client)
		require.NoError(t, err)
		assert.Equal(t, models.IntakeFormStatusSubmitted, form.Status)

		var notifications int64
		database.Model(&models.Notification{}).Where("user_id = ?", lawyer.ID).Count(&notifications)
		assert.Equal(t, int64(1), notifications)
	})

	t.Run("Already submitted", func(t *testing.T) {
		code, _ := public(http.MethodPost, `{"step":"family","answers":{"spouse":"no"}}`)
		assert.Equal(t, http.StatusConflict, code)
	})

	t.Run("Invalid token", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/intake/bogus", nil)
		c.SetParamNames("token")
		c.SetParamValues("bogus")

		assert.NoError(t, PublicIntakeHandler(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
