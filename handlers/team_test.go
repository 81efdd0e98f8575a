package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"visa_crm_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListTeamHandler(t *testing.T) {
	database := setupTestDB(t)
	ws := createWorkspace(t, database, "Team Firm")
	admin := createUser(t, database, ws, models.AuthRoleAdmin, models.AccessLevelAdmin)
	createUser(t, database, ws, models.AuthRoleLawyer, models.AccessLevelViewer)
	createUser(t, database, createWorkspace(t, database, "Other Firm"), models.AuthRoleLawyer, models.AccessLevelMember)

	_, c, rec := setupEcho(http.MethodGet, "/api/team", nil)
	asUser(c, admin, ws)

	assert.NoError(t, ListTeamHandler(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var users []models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	assert.Len(t, users, 2)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestCreateTeamMemberHandler(t *testing.T) {
	database := setupTestDB(t)
	ws := createWorkspace(t, database, "Hiring Firm")
	admin := createUser(t, database, ws, models.AuthRoleAdmin, models.AccessLevelAdmin)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"Valid creation", `{"name":"Noor Khan","email":"noor@firm.test","password":"` + testPassword + `","access_level":"Viewer","type":"sales"}`, http.StatusCreated},
		{"Duplicate email", `{"name":"Noor Again","email":"noor@firm.test","password":"` + testPassword + `"}`, http.StatusConflict},
		{"Weak password", `{"name":"Weak","email":"weak@firm.test","password":"abc"}`, http.StatusBadRequest},
		{"Bad access level", `{"name":"Odd","email":"odd@firm.test","password":"` + testPassword + `","access_level":"Owner"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, c, rec := setupEcho(http.MethodPost, "/api/team", strings.NewReader(tt.body))
			asUser(c, admin, ws)

			assert.NoError(t, CreateTeamMemberHandler(c))
			assert.Equal(t, tt.want, rec.Code)
		})
	}

	var created models.User
	require.NoError(t, database.Where("email = ?", "noor@firm.test").First(&created).Error)
	assert.Equal(t, models.AccessLevelViewer, created.AccessLevel)
	assert.Equal(t, models.MemberTypeSales, created.MemberType)
	assert.Equal(t, ws.ID, *created.WorkspaceID)
}

func TestRemoveTeamMemberHandler(t *testing.T) {
	database := setupTestDB(t)
	ws := createWorkspace(t, database, "Shrinking Firm")
	admin := createUser(t, database, ws, models.AuthRoleAdmin, models.AccessLevelAdmin)
	member := createUser(t, database, ws, models.AuthRoleLawyer, models.AccessLevelMember)

	remove := func(actor *models.User, targetID string) int {
		_, c, rec := setupEcho(http.MethodDelete, "/api/team/"+targetID, nil)
		c.SetParamNames("id")
		c.SetParamValues(targetID)
		asUser(c, actor, ws)
		require.NoError(t, RemoveTeamMemberHandler(c))
		return rec.Code
	}

	assert.Equal(t, http.StatusBadRequest, remove(admin, admin.ID))
	assert.Equal(t, http.StatusNotFound, remove(admin, "missing"))
	assert.Equal(t, http.StatusOK, remove(admin, member.ID))
}
