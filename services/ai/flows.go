package ai

import "context"

// Flow names as exposed by the remote service
const (
	FlowApplicationChecker = "application-checker"
	FlowDocumentSummarizer = "document-summarizer"
	FlowResumeBuilder      = "resume-builder"
	FlowCoverLetterBuilder = "cover-letter-builder"
	FlowCRSCalculator      = "crs-calculator"
	FlowIntakeAnalyzer     = "intake-analyzer"
)

var Flows = []string{
	FlowApplicationChecker,
	FlowDocumentSummarizer,
	FlowResumeBuilder,
	FlowCoverLetterBuilder,
	FlowCRSCalculator,
	FlowIntakeAnalyzer,
}

func IsKnownFlow(flow string) bool {
	for _, f := range Flows {
		if f == flow {
			return true
		}
	}
	return false
}

type ApplicationCheckerInput struct {
	ApplicationType string            `json:"applicationType"`
	ApplicantName   string            `json:"applicantName,omitempty"`
	Fields          map[string]string `json:"fields"`
	Documents       []string          `json:"documents,omitempty"`
}

type ApplicationCheckerResult struct {
	Summary            string   `json:"summary"`
	Errors             []string `json:"errors"`
	MissingInformation []string `json:"missingInformation"`
	Inconsistencies    []string `json:"inconsistencies"`
}

func (c *Client) ApplicationChecker(ctx context.Context, in ApplicationCheckerInput) (*ApplicationCheckerResult, error) {
	var out ApplicationCheckerResult
	if err := c.Run(ctx, FlowApplicationChecker, in, &out); err != nil {
		return nil, err
	}
	out.Errors = nonNil(out.Errors)
	out.MissingInformation = nonNil(out.MissingInformation)
	out.Inconsistencies = nonNil(out.Inconsistencies)
	return &out, nil
}

type DocumentSummarizerInput struct {
	Title    string `json:"title,omitempty"`
	Content  string `json:"content,omitempty"`
	DataURI  string `json:"documentDataUri,omitempty"`
	Language string `json:"language,omitempty"`
}

type DocumentSummarizerResult struct {
	Summary   string   `json:"summary"`
	KeyPoints []string `json:"keyPoints"`
}

func (c *Client) DocumentSummarizer(ctx context.Context, in DocumentSummarizerInput) (*DocumentSummarizerResult, error) {
	var out DocumentSummarizerResult
	if err := c.Run(ctx, FlowDocumentSummarizer, in, &out); err != nil {
		return nil, err
	}
	out.KeyPoints = nonNil(out.KeyPoints)
	return &out, nil
}

type ResumeBuilderInput struct {
	FullName      string   `json:"fullName"`
	TargetRole    string   `json:"targetRole,omitempty"`
	TargetCountry string   `json:"targetCountry,omitempty"`
	Experience    string   `json:"experience"`
	Education     string   `json:"education,omitempty"`
	Skills        []string `json:"skills,omitempty"`
}

type ResumeBuilderResult struct {
	Resume string `json:"resume"`
}

func (c *Client) ResumeBuilder(ctx context.Context, in ResumeBuilderInput) (*ResumeBuilderResult, error) {
	var out ResumeBuilderResult
	if err := c.Run(ctx, FlowResumeBuilder, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type CoverLetterBuilderInput struct {
	FullName   string `json:"fullName"`
	Purpose    string `json:"purpose"`
	Program    string `json:"program,omitempty"`
	Background string `json:"background,omitempty"`
	Recipient  string `json:"recipient,omitempty"`
}

type CoverLetterBuilderResult struct {
	CoverLetter string `json:"coverLetter"`
}

func (c *Client) CoverLetterBuilder(ctx context.Context, in CoverLetterBuilderInput) (*CoverLetterBuilderResult, error) {
	var out CoverLetterBuilderResult
	if err := c.Run(ctx, FlowCoverLetterBuilder, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type CRSCalculatorInput struct {
	Age                  int    `json:"age"`
	MaritalStatus        string `json:"maritalStatus"`
	EducationLevel       string `json:"educationLevel"`
	CanadianEducation    string `json:"canadianEducation,omitempty"`
	FirstLanguageScores  string `json:"firstLanguageScores"`
	SecondLanguage       string `json:"secondLanguageScores,omitempty"`
	CanadianWorkYears    int    `json:"canadianWorkYears"`
	ForeignWorkYears     int    `json:"foreignWorkYears"`
	ProvincialNomination bool   `json:"provincialNomination"`
	SiblingInCanada      bool   `json:"siblingInCanada"`
}

type CRSCalculatorResult struct {
	Score     int            `json:"score"`
	Breakdown map[string]int `json:"breakdown"`
	Notes     string         `json:"notes,omitempty"`
}

func (c *Client) CRSCalculator(ctx context.Context, in CRSCalculatorInput) (*CRSCalculatorResult, error) {
	var out CRSCalculatorResult
	if err := c.Run(ctx, FlowCRSCalculator, in, &out); err != nil {
		return nil, err
	}
	if out.Breakdown == nil {
		out.Breakdown = map[string]int{}
	}
	return &out, nil
}

type IntakeAnalyzerInput struct {
	ClientName string                       `json:"clientName"`
	CaseType   string                       `json:"caseType,omitempty"`
	Answers    map[string]map[string]string `json:"answers"`
}

type IntakeAnalyzerResult struct {
	Score               int      `json:"score"`
	Summary             string   `json:"summary"`
	RecommendedPrograms []string `json:"recommendedPrograms"`
	RedFlags            []string `json:"redFlags"`
}

func (c *Client) IntakeAnalyzer(ctx context.Context, in IntakeAnalyzerInput) (*IntakeAnalyzerResult, error) {
	var out IntakeAnalyzerResult
	if err := c.Run(ctx, FlowIntakeAnalyzer, in, &out); err != nil {
		return nil, err
	}
	out.RecommendedPrograms = nonNil(out.RecommendedPrograms)
	out.RedFlags = nonNil(out.RedFlags)
	return &out, nil
}

// nonNil keeps list fields encoding as [] rather than null
func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
