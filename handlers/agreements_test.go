package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"visa_crm_go/models"
	"visa_crm_go/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgreementFeesFollowFinancials(t *testing.T) {
	database := setupTestDB(t)
	ws := createWorkspace(t, database, "Fee Firm")
	admin := createUser(t, database, ws, models.AuthRoleAdmin, models.AccessLevelAdmin)
	member := createUser(t, database, ws, models.AuthRoleLawyer, models.AccessLevelMember)
	viewer := createUser(t, database, ws, models.AuthRoleLawyer, models.AccessLevelViewer)

	client, err := services.CreateClient(database, ws.ID, admin, services.ClientInput{Name: "Omar Farouk", Email: "omar@example.com"})
	require.NoError(t, err)
	agreement, err := services.CreateAgreement(database, client, admin, services.AgreementInput{
		Title:    "Retainer",
		Body:     "<p>Fee: {{agreement.fee}}</p>",
		FeeCents: 350000,
		Currency: "CAD",
	})
	require.NoError(t, err)

	var printed string
	previous := services.RenderHTMLToPDF
	services.RenderHTMLToPDF = func(ctx context.Context, html string, opts services.PDFOptions) ([]byte, error) {
		printed = html
		return []byte("%PDF-1.4"), nil
	}
	defer func() { services.RenderHTMLToPDF = previous }()

	tests := []struct {
		name     string
		user     *models.User
		showsFee bool
	}{
		{"Admin", admin, true},
		{"Member", member, false},
		{"Viewer", viewer, false},
	}

	for _, tt := range tests {
		t.Run(tt.name+" PDF", func(t *testing.T) {
			printed = ""
			_, c, rec := setupEcho(http.MethodGet, "/api/clients/"+client.ID+"/agreements/"+agreement.ID+"/pdf", nil)
			c.SetParamNames("id", "aid")
			c.SetParamValues(client.ID, agreement.ID)
			asUser(c, tt.user, ws)

			assert.NoError(t, AgreementPDFHandler(c))
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))

			if tt.showsFee {
				assert.Contains(t, printed, "<p>Fee: 3,500.00 CAD</p>")
			} else {
				assert.Contains(t, printed, "<p>Fee: </p>")
				assert.NotContains(t, printed, "3,500.00")
				assert.NotContains(t, printed, "CAD")
			}
		})

		t.Run(tt.name+" JSON", func(t *testing.T) {
			_, c, rec := setupEcho(http.MethodGet, "/api/clients/"+client.ID+"/agreements/"+agreement.ID, nil)
			c.SetParamNames("id", "aid")
			c.SetParamValues(client.ID, agreement.ID)
			asUser(c, tt.user, ws)

			assert.NoError(t, GetAgreementHandler(c))
			assert.Equal(t, http.StatusOK, rec.Code)

			var got models.Agreement
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			if tt.showsFee {
				assert.Equal(t, int64(350000), got.FeeCents)
			} else {
				assert.Zero(t, got.FeeCents)
				assert.Empty(t, got.Currency)
			}
		})
	}
}
