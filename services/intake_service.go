package services

import (
	"errors"
	"fmt"
	"time"

	"visa_crm_go/models"

	"gorm.io/gorm"
)

var ErrIntakeAlreadySubmitted = errors.New("intake form already submitted")

// GetOrCreateIntakeForm returns the client's questionnaire, creating an empty one on first use
func GetOrCreateIntakeForm(db *gorm.DB, client *models.Client) (*models.IntakeForm, error) {
	var form models.IntakeForm
	err := db.Where("client_id = ?", client.ID).First(&form).Error
	if err == nil {
		return &form, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	form = models.IntakeForm{
		WorkspaceID: client.WorkspaceID,
		ClientID:    client.ID,
		Status:      models.IntakeFormStatusNotStarted,
	}
	if err := db.Create(&form).Error; err != nil {
		return nil, fmt.Errorf("failed to create intake form: %w", err)
	}
	return &form, nil
}

// SaveIntakeStep stores answers for one step and advances the current step
func SaveIntakeStep(db *gorm.DB, form *models.IntakeForm, step string, answers map[string]string) error {
	if !models.IsValidIntakeStep(step) {
		return NewValidationError("step", fmt.Sprintf("unknown intake step %q", step))
	}
	if form.Status == models.IntakeFormStatusSubmitted || form.Status == models.IntakeFormStatusAnalyzed {
		return ErrIntakeAlreadySubmitted
	}

	all, err := form.Answers()
	if err != nil {
		return err
	}
	clean := make(map[string]string, len(answers))
	for k, v := range answers {
		clean[k] = StripHTML(v)
	}
	all[step] = clean
	if err := form.SetAnswers(all); err != nil {
		return err
	}

	for i, key := range models.IntakeStepKeys {
		if key == step && i+1 > form.CurrentStep {
			form.CurrentStep = i + 1
		}
	}
	form.Status = models.IntakeFormStatusInProgress

	return db.Model(form).Updates(map[string]interface{}{
		"steps_json":   form.StepsJSON,
		"current_step": form.CurrentStep,
		"status":       form.Status,
	}).Error
}

// SubmitIntakeForm locks the questionnaire and records the submission on the client
func SubmitIntakeForm(db *gorm.DB, form *models.IntakeForm, client *models.Client) error {
	if form.Status == models.IntakeFormStatusSubmitted || form.Status == models.IntakeFormStatusAnalyzed {
		return ErrIntakeAlreadySubmitted
	}
	answers, err := form.Answers()
	if err != nil {
		return err
	}
	if len(answers["personal"]) == 0 {
		return NewValidationError("personal", "personal details are required before submitting")
	}

	now := time.Now()
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(form).Updates(map[string]interface{}{
			"status":       models.IntakeFormStatusSubmitted,
			"submitted_at": now,
		}).Error; err != nil {
			return err
		}
		form.Status = models.IntakeFormStatusSubmitted
		form.SubmittedAt = &now
		_, err := RecordClientActivity(tx, client, nil, models.ActivityTypeIntake, "Intake questionnaire submitted")
		return err
	})
}

// SaveIntakeAnalysis stores the analyzer's score and summary
func SaveIntakeAnalysis(db *gorm.DB, form *models.IntakeForm, score int, summary string) error {
	now := time.Now()
	clean := SanitizeHTML(summary)
	err := db.Model(form).Updates(map[string]interface{}{
		"status":           models.IntakeFormStatusAnalyzed,
		"score":            score,
		"analysis_summary": clean,
		"analyzed_at":      now,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to save intake analysis: %w", err)
	}
	form.Status = models.IntakeFormStatusAnalyzed
	form.Score = &score
	form.AnalysisSummary = clean
	form.AnalyzedAt = &now
	return nil
}
