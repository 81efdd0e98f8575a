package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"visa_crm_go/config"
	"visa_crm_go/db"
	"visa_crm_go/middleware"
	"visa_crm_go/models"
	"visa_crm_go/services"
	"visa_crm_go/services/ai"

	"github.com/labstack/echo/v4"
)

// maxAIRequestSize caps the JSON accepted by the flow endpoint
const maxAIRequestSize = 8 << 20

// AIClient is the shared flow client, set by InitializeAI
var AIClient *ai.Client

// InitializeAI builds the flow client from configuration
func InitializeAI(cfg *config.Config) {
	AIClient = ai.NewClient(cfg.AIFlowsURL, cfg.AIFlowsAPIKey, time.Duration(cfg.AITimeoutSeconds)*time.Second)
}

// callFlow decodes the request into the flow's input type and runs it
func callFlow[In any, Out any](ctx context.Context, body []byte, run func(context.Context, In) (Out, error)) (Out, error) {
	var in In
	if err := json.Unmarshal(body, &in); err != nil {
		var zero Out
		return zero, services.NewValidationError("body", "does not match the flow input")
	}
	return run(ctx, in)
}

// RunAIFlowHandler runs the named flow with the request body as its input and
// returns the flow's typed result. Generated drafts are sanitised before they are returned.
func RunAIFlowHandler(c echo.Context) error {
	flow := c.Param("flow")
	if !ai.IsKnownFlow(flow) {
		return middleware.RespondError(c, http.StatusNotFound, "toast.ai.unknown_flow", "")
	}
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxAIRequestSize))
	if err != nil || !json.Valid(body) {
		return badRequest(c)
	}

	ctx := c.Request().Context()
	var result interface{}
	switch flow {
	case ai.FlowApplicationChecker:
		result, err = callFlow(ctx, body, AIClient.ApplicationChecker)
	case ai.FlowDocumentSummarizer:
		var res *ai.DocumentSummarizerResult
		if res, err = callFlow(ctx, body, AIClient.DocumentSummarizer); err == nil {
			res.Summary = services.SanitizeHTML(res.Summary)
		}
		result = res
	case ai.FlowResumeBuilder:
		var res *ai.ResumeBuilderResult
		if res, err = callFlow(ctx, body, AIClient.ResumeBuilder); err == nil {
			res.Resume = services.SanitizeHTML(res.Resume)
		}
		result = res
	case ai.FlowCoverLetterBuilder:
		var res *ai.CoverLetterBuilderResult
		if res, err = callFlow(ctx, body, AIClient.CoverLetterBuilder); err == nil {
			res.CoverLetter = services.SanitizeHTML(res.CoverLetter)
		}
		result = res
	case ai.FlowCRSCalculator:
		result, err = callFlow(ctx, body, AIClient.CRSCalculator)
	case ai.FlowIntakeAnalyzer:
		var res *ai.IntakeAnalyzerResult
		if res, err = callFlow(ctx, body, AIClient.IntakeAnalyzer); err == nil {
			res.Summary = services.SanitizeHTML(res.Summary)
		}
		result = res
	}

	if services.IsValidationError(err) {
		return respondServiceError(c, err)
	}
	middleware.RecordAIFlow(flow, err == nil)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// AnalyzeClientIntakeHandler runs the intake analyzer on a submitted questionnaire
func AnalyzeClientIntakeHandler(c echo.Context) error {
	client, err := services.GetClient(db.DB, middleware.GetWorkspaceID(c), c.Param("id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	form, err := services.GetOrCreateIntakeForm(db.DB, client)
	if err != nil {
		return respondServiceError(c, err)
	}
	if form.Status != models.IntakeFormStatusSubmitted && form.Status != models.IntakeFormStatusAnalyzed {
		return middleware.RespondError(c, http.StatusBadRequest, "toast.error.validation", "intake: must be submitted before analysis")
	}
	answers, err := form.Answers()
	if err != nil {
		return respondServiceError(c, err)
	}

	result, err := AIClient.IntakeAnalyzer(c.Request().Context(), ai.IntakeAnalyzerInput{
		ClientName: client.Name,
		CaseType:   client.CaseType,
		Answers:    answers,
	})
	middleware.RecordAIFlow(ai.FlowIntakeAnalyzer, err == nil)
	if err != nil {
		return respondServiceError(c, err)
	}
	if err := services.SaveIntakeAnalysis(db.DB, form, result.Score, result.Summary); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"form":     form,
		"analysis": result,
	})
}
