package services

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"visa_crm_go/models"
)

// placeholderRegex matches {{category.field}} placeholders in agreement bodies
var placeholderRegex = regexp.MustCompile(`\{\{([a-zA-Z0-9_.]+)\}\}`)

// AgreementTemplateData holds the values agreement placeholders resolve to
type AgreementTemplateData struct {
	Client    map[string]string
	Agreement map[string]string
	Workspace map[string]string
	Lawyer    map[string]string
	Today     map[string]string
}

// BuildAgreementTemplateData collects placeholder values for an agreement.
// Without showFees the fee and currency placeholders render empty.
func BuildAgreementTemplateData(agreement *models.Agreement, client *models.Client, workspace *models.Workspace, lawyer *models.User, showFees bool, now time.Time) AgreementTemplateData {
	data := AgreementTemplateData{
		Client: map[string]string{
			"name":      client.Name,
			"email":     client.Email,
			"phone":     client.Phone,
			"case_type": client.CaseType,
		},
		Agreement: map[string]string{
			"title":    agreement.Title,
			"category": agreement.Category,
			"fee":      FormatMoney(agreement.FeeCents, agreement.Currency),
			"currency": agreement.Currency,
		},
		Workspace: map[string]string{},
		Lawyer:    map[string]string{},
		Today: map[string]string{
			"date":      now.Format("2006-01-02"),
			"date_long": now.Format("January 2, 2006"),
			"year":      now.Format("2006"),
		},
	}
	if !showFees {
		data.Agreement["fee"] = ""
		data.Agreement["currency"] = ""
	}
	if workspace != nil {
		data.Workspace["name"] = workspace.Name
		data.Workspace["billing_email"] = workspace.BillingEmail
	}
	if lawyer != nil {
		data.Lawyer["name"] = lawyer.Name
		data.Lawyer["email"] = lawyer.Email
		data.Lawyer["phone"] = lawyer.Phone
	}
	return data
}

// RenderAgreementBody replaces placeholders with escaped values. Unknown placeholders are left as-is.
func RenderAgreementBody(content string, data AgreementTemplateData) string {
	return placeholderRegex.ReplaceAllStringFunc(content, func(match string) string {
		key := strings.TrimSuffix(strings.TrimPrefix(match, "{{"), "}}")
		parts := strings.SplitN(key, ".", 2)
		if len(parts) != 2 {
			return match
		}

		var values map[string]string
		switch parts[0] {
		case "client":
			values = data.Client
		case "agreement":
			values = data.Agreement
		case "workspace":
			values = data.Workspace
		case "lawyer":
			values = data.Lawyer
		case "today":
			values = data.Today
		}
		if v, ok := values[parts[1]]; ok && v != "" {
			return html.EscapeString(v)
		}
		return match
	})
}

// FormatMoney renders cents as "1,234.50 CAD"
func FormatMoney(cents int64, currency string) string {
	negative := cents < 0
	if negative {
		cents = -cents
	}
	whole := fmt.Sprintf("%d", cents/100)
	var grouped strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(r)
	}
	out := fmt.Sprintf("%s.%02d", grouped.String(), cents%100)
	if negative {
		out = "-" + out
	}
	if currency != "" {
		out += " " + currency
	}
	return out
}

// WrapHTMLForPDF wraps agreement HTML with print styles
func WrapHTMLForPDF(title, content string) string {
	return `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>` + html.EscapeString(title) + `</title>
    <style>
        @page { margin: 1in; }
        body { font-family: "Helvetica Neue", Arial, sans-serif; font-size: 11pt; line-height: 1.5; color: #111; }
        h1 { font-size: 18pt; text-align: center; margin-bottom: 24pt; }
        h2 { font-size: 14pt; margin-top: 18pt; }
        p { margin-bottom: 10pt; }
        ul, ol { margin-left: 0.4in; }
        table { width: 100%; border-collapse: collapse; margin-bottom: 12pt; }
        th, td { border: 1px solid #444; padding: 6pt; text-align: left; }
        .signature-line { border-top: 1px solid #000; width: 3in; margin-top: 40pt; padding-top: 6pt; }
    </style>
</head>
<body>
<h1>` + html.EscapeString(title) + `</h1>
` + content + `
</body>
</html>`
}
