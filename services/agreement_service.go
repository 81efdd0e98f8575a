package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"visa_crm_go/models"

	"gorm.io/gorm"
)

var ErrAgreementNotFound = errors.New("agreement not found")

// agreementTransitions lists the allowed status moves. Signed and Cancelled are final.
var agreementTransitions = map[string]map[string]bool{
	models.AgreementStatusDraft: {models.AgreementStatusSent: true, models.AgreementStatusCancelled: true},
	models.AgreementStatusSent:  {models.AgreementStatusSigned: true, models.AgreementStatusCancelled: true, models.AgreementStatusDraft: true},
}

// AgreementInput carries the editable agreement fields
type AgreementInput struct {
	Title    string `json:"title"`
	Category string `json:"category"`
	FeeCents int64  `json:"fee_cents"`
	Currency string `json:"currency"`
	Body     string `json:"body"`
}

func (in *AgreementInput) Validate() error {
	in.Title = strings.TrimSpace(in.Title)
	if err := requireField("title", in.Title); err != nil {
		return err
	}
	if in.Category == "" {
		in.Category = models.AgreementCategoryRetainer
	}
	if !models.IsValidAgreementCategory(in.Category) {
		return NewValidationError("category", "is not a valid agreement category")
	}
	if in.FeeCents < 0 {
		return NewValidationError("fee_cents", "cannot be negative")
	}
	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	if in.Currency == "" {
		in.Currency = "CAD"
	}
	return nil
}

// CreateAgreement adds a draft agreement to the client
func CreateAgreement(db *gorm.DB, client *models.Client, actor *models.User, in AgreementInput) (*models.Agreement, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	agreement := &models.Agreement{
		WorkspaceID: client.WorkspaceID,
		ClientID:    client.ID,
		Title:       in.Title,
		Category:    in.Category,
		Status:      models.AgreementStatusDraft,
		FeeCents:    in.FeeCents,
		Currency:    in.Currency,
		Body:        SanitizeHTML(in.Body),
	}
	if actor != nil {
		agreement.CreatedByID = &actor.ID
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(agreement).Error; err != nil {
			return fmt.Errorf("failed to create agreement: %w", err)
		}
		_, err := RecordClientActivity(tx, client, actor, models.ActivityTypeAgreement, "Agreement drafted: "+agreement.Title)
		return err
	})
	if err != nil {
		return nil, err
	}
	return agreement, nil
}

// GetAgreement loads a client's agreement
func GetAgreement(db *gorm.DB, clientID, agreementID string) (*models.Agreement, error) {
	var agreement models.Agreement
	if err := db.Where("client_id = ?", clientID).First(&agreement, "id = ?", agreementID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAgreementNotFound
		}
		return nil, err
	}
	return &agreement, nil
}

// ListAgreements returns a client's agreements, newest first
func ListAgreements(db *gorm.DB, clientID string) ([]models.Agreement, error) {
	var agreements []models.Agreement
	err := db.Where("client_id = ?", clientID).Order("created_at DESC").Find(&agreements).Error
	return agreements, err
}

// UpdateAgreement edits a draft. Sent or final agreements cannot be edited.
func UpdateAgreement(db *gorm.DB, agreement *models.Agreement, in AgreementInput) error {
	if agreement.Status != models.AgreementStatusDraft {
		return NewValidationError("status", "only draft agreements can be edited")
	}
	if err := in.Validate(); err != nil {
		return err
	}
	return db.Model(agreement).Updates(map[string]interface{}{
		"title":     in.Title,
		"category":  in.Category,
		"fee_cents": in.FeeCents,
		"currency":  in.Currency,
		"body":      SanitizeHTML(in.Body),
	}).Error
}

// UpdateAgreementStatus moves an agreement along Draft -> Sent -> Signed, or cancels it
func UpdateAgreementStatus(db *gorm.DB, client *models.Client, agreement *models.Agreement, status string, actor *models.User) error {
	if !models.IsValidAgreementStatus(status) {
		return NewValidationError("status", "is not a valid agreement status")
	}
	if !agreementTransitions[agreement.Status][status] {
		return NewValidationError("status", fmt.Sprintf("cannot move from %s to %s", agreement.Status, status))
	}

	now := time.Now()
	updates := map[string]interface{}{"status": status}
	switch status {
	case models.AgreementStatusSent:
		updates["sent_at"] = now
	case models.AgreementStatusSigned:
		updates["signed_at"] = now
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(agreement).Updates(updates).Error; err != nil {
			return err
		}
		agreement.Status = status
		_, err := RecordClientActivity(tx, client, actor, models.ActivityTypeAgreement,
			fmt.Sprintf("Agreement %s: %s", strings.ToLower(status), agreement.Title))
		return err
	})
}

// RenderHTMLToPDF prints HTML to PDF. Tests replace it to avoid launching Chrome.
var RenderHTMLToPDF = GeneratePDF

// RenderAgreementHTML fills placeholders and wraps the body in a printable page
func RenderAgreementHTML(db *gorm.DB, agreement *models.Agreement, client *models.Client, lawyer *models.User, showFees bool, now time.Time) (string, error) {
	var workspace models.Workspace
	if err := db.First(&workspace, "id = ?", agreement.WorkspaceID).Error; err != nil {
		return "", fmt.Errorf("failed to load workspace: %w", err)
	}
	data := BuildAgreementTemplateData(agreement, client, &workspace, lawyer, showFees, now)
	return WrapHTMLForPDF(agreement.Title, RenderAgreementBody(agreement.Body, data)), nil
}

// RenderAgreementPDF fills placeholders and prints the agreement
func RenderAgreementPDF(ctx context.Context, db *gorm.DB, agreement *models.Agreement, client *models.Client, lawyer *models.User, showFees bool, chromePath string) ([]byte, error) {
	doc, err := RenderAgreementHTML(db, agreement, client, lawyer, showFees, time.Now())
	if err != nil {
		return nil, err
	}

	opts := DefaultPDFOptions()
	opts.ChromePath = chromePath
	return RenderHTMLToPDF(ctx, doc, opts)
}

// SumAgreementFees totals signed agreement fees per currency for the workspace
func SumAgreementFees(db *gorm.DB, workspaceID, status string) (map[string]int64, error) {
	type row struct {
		Currency string
		Total    int64
	}
	var rows []row
	err := db.Model(&models.Agreement{}).
		Where("workspace_id = ? AND status = ?", workspaceID, status).
		Select("currency, COALESCE(SUM(fee_cents), 0) as total").
		Group("currency").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	totals := make(map[string]int64, len(rows))
	for _, r := range rows {
		totals[r.Currency] = r.Total
	}
	return totals, nil
}
