package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"visa_crm_go/models"
	"visa_crm_go/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type leadEnvelope struct {
	Data struct {
		models.Lead
		AllowedTransitions []string `json:"allowed_transitions"`
	} `json:"data"`
}

func TestCreateLeadHandler(t *testing.T) {
	database := setupTestDB(t)
	ws := createWorkspace(t, database, "Lead Firm")
	user := createUser(t, database, ws, models.AuthRoleLawyer, models.AccessLevelMember)

	t.Run("Created", func(t *testing.T) {
		body := `{"name":"Zainab Bello","email":"zainab@example.com","company":"Bello Ltd"}`
		_, c, rec := setupEcho(http.MethodPost, "/api/leads", strings.NewReader(body))
		asUser(c, user, ws)

		err := CreateLeadHandler(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusCreated, rec.Code)

		var resp leadEnvelope
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, models.LeadStatusNew, resp.Data.Status)
		assert.Equal(t, ws.ID, resp.Data.WorkspaceID)
		assert.Equal(t, []string{models.LeadStatusContacted, models.LeadStatusQualified, models.LeadStatusUnqualified}, resp.Data.AllowedTransitions)
	})

	t.Run("Validation error", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodPost, "/api/leads", strings.NewReader(`{"name":"","email":"x"}`))
		asUser(c, user, ws)

		err := CreateLeadHandler(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "destructive", decodeToast(t, rec).Variant)
	})
}

func TestGetLeadHandlerWorkspaceIsolation(t *testing.T) {
	database := setupTestDB(t)
	ws := createWorkspace(t, database, "Firm A")
	other := createWorkspace(t, database, "Firm B")
	user := createUser(t, database, ws, models.AuthRoleLawyer, models.AccessLevelMember)
	outsider := createUser(t, database, other, models.AuthRoleLawyer, models.AccessLevelMember)

	lead, err := services.CreateLead(database, ws.ID, user, services.LeadInput{Name: "Ivan Horvat", Email: "ivan@example.com"})
	require.NoError(t, err)

	t.Run("Own workspace", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/leads/"+lead.ID, nil)
		c.SetParamNames("id")
		c.SetParamValues(lead.ID)
		asUser(c, user, ws)

		assert.NoError(t, GetLeadHandler(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Other workspace", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/leads/"+lead.ID, nil)
		c.SetParamNames("id")
		c.SetParamValues(lead.ID)
		asUser(c, outsider, other)

		assert.NoError(t, GetLeadHandler(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestUpdateLeadStatusHandler(t *testing.T) {
	database := setupTestDB(t)
	ws := createWorkspace(t, database, "Status Firm")
	user := createUser(t, database, ws, models.AuthRoleLawyer, models.AccessLevelMember)

	lead, err := services.CreateLead(database, ws.ID, user, services.LeadInput{Name: "Chloe Martin", Email: "chloe@example.com"})
	require.NoError(t, err)

	run := func(status string) (int, []byte) {
		_, c, rec := setupEcho(http.MethodPut, "/api/leads/"+lead.ID+"/status", strings.NewReader(`{"status":"`+status+`"}`))
		c.SetParamNames("id")
		c.SetParamValues(lead.ID)
		asUser(c, user, ws)
		require.NoError(t, UpdateLeadStatusHandler(c))
		return rec.Code, rec.Body.Bytes()
	}

	t.Run("Allowed transition", func(t *testing.T) {
		code, body := run(models.LeadStatusQualified)
		assert.Equal(t, http.StatusOK, code)

		var resp leadEnvelope
		require.NoError(t, json.Unmarshal(body, &resp))
		assert.Equal(t, models.LeadStatusQualified, resp.Data.Status)
	})

	t.Run("Disallowed transition", func(t *testing.T) {
		code, _ := run(models.LeadStatusNew)
		assert.Equal(t, http.StatusUnprocessableEntity, code)

		reloaded, err := services.GetLead(database, ws.ID, lead.ID)
		require.NoError(t, err)
		assert.Equal(t, models.LeadStatusQualified, reloaded.Status)
	})

	t.Run("Unknown status", func(t *testing.T) {
		code, _ := run("Won")
		assert.Equal(t, http.StatusBadRequest, code)
	})
}

func TestConvertLeadHandler(t *testing.T) {
	database := setupTestDB(t)
	ws := createWorkspace(t, database, "Convert Firm")
	user := createUser(t, database, ws, models.AuthRoleLawyer, models.AccessLevelMember)

	lead, err := services.CreateLead(database, ws.ID, user, services.LeadInput{Name: "Arjun Nair", Email: "arjun@example.com"})
	require.NoError(t, err)

	_, c, rec := setupEcho(http.MethodPost, "/api/leads/"+lead.ID+"/convert", nil)
	c.SetParamNames("id")
	c.SetParamValues(lead.ID)
	asUser(c, user, ws)

	assert.NoError(t, ConvertLeadHandler(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Data models.Client `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Arjun Nair", resp.Data.Name)
	require.NotNil(t, resp.Data.SourceLeadID)
	assert.Equal(t, lead.ID, *resp.Data.SourceLeadID)
	assert.Equal(t, models.DefaultSummaryCurrentStatus, resp.Data.CaseSummary.CurrentStatus)
}

func TestUpdateLeadIntakeHandler(t *testing.T) {
	database := setupTestDB(t)
	ws := createWorkspace(t, database, "Intake Firm")
	user := createUser(t, database, ws, models.AuthRoleLawyer, models.AccessLevelMember)

	lead, err := services.CreateLead(database, ws.ID, user, services.LeadInput{Name: "Sara Lind", Email: "sara@example.com"})
	require.NoError(t, err)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"Completed with score", `{"status":"Completed","score":74,"summary":"Eligible for CEC"}`, http.StatusOK},
		{"Unknown status", `{"status":"Submitted"}`, http.StatusBadRequest},
		{"Score out of range", `{"status":"Pending","score":140}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, c, rec := setupEcho(http.MethodPut, "/api/leads/"+lead.ID+"/intake", strings.NewReader(tt.body))
			c.SetParamNames("id")
			c.SetParamValues(lead.ID)
			asUser(c, user, ws)

			assert.NoError(t, UpdateLeadIntakeHandler(c))
			assert.Equal(t, tt.want, rec.Code)
		})
	}

	reloaded, err := services.GetLead(database, ws.ID, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, models.IntakeStatusCompleted, reloaded.Intake.Status)
	require.NotNil(t, reloaded.Intake.Score)
	assert.Equal(t, 74, *reloaded.Intake.Score)
}
