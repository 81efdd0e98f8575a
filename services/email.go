package services

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"log"
	"path"
	"strings"
	texttemplate "text/template"
	"time"

	"visa_crm_go/config"
	"visa_crm_go/services/i18n"

	"github.com/resend/resend-go/v2"
	"gopkg.in/gomail.v2"
)

//go:embed emails/*
var emailTemplates embed.FS

var ErrEmailNotConfigured = errors.New("no email transport configured")

// Email represents an email message
type Email struct {
	To       []string
	Subject  string
	HTMLBody string
	TextBody string
}

// loadTemplate renders emails/<name>_<lang>.html/.txt, falling back to emails/<name>.html/.txt
func loadTemplate(name, lang string, data interface{}) (string, string, error) {
	readLocalized := func(ext string) (string, []byte, error) {
		localized := path.Join("emails", fmt.Sprintf("%s_%s%s", name, lang, ext))
		if content, err := emailTemplates.ReadFile(localized); err == nil {
			return localized, content, nil
		}
		base := path.Join("emails", name+ext)
		content, err := emailTemplates.ReadFile(base)
		if err != nil {
			return "", nil, fmt.Errorf("failed to read template %s: %w", base, err)
		}
		return base, content, nil
	}

	htmlPath, htmlSrc, err := readLocalized(".html")
	if err != nil {
		return "", "", err
	}
	htmlTmpl, err := htmltemplate.New(path.Base(htmlPath)).Parse(string(htmlSrc))
	if err != nil {
		return "", "", fmt.Errorf("failed to parse template %s: %w", htmlPath, err)
	}
	var htmlBuf bytes.Buffer
	if err := htmlTmpl.Execute(&htmlBuf, data); err != nil {
		return "", "", fmt.Errorf("failed to execute template %s: %w", htmlPath, err)
	}

	textPath, textSrc, err := readLocalized(".txt")
	if err != nil {
		return "", "", err
	}
	textTmpl, err := texttemplate.New(path.Base(textPath)).Parse(string(textSrc))
	if err != nil {
		return "", "", fmt.Errorf("failed to parse template %s: %w", textPath, err)
	}
	var textBuf bytes.Buffer
	if err := textTmpl.Execute(&textBuf, data); err != nil {
		return "", "", fmt.Errorf("failed to execute template %s: %w", textPath, err)
	}

	return htmlBuf.String(), textBuf.String(), nil
}

func buildEmail(name, lang string, data interface{}, to string) *Email {
	htmlBody, textBody, err := loadTemplate(name, lang, data)
	if err != nil {
		log.Printf("Error loading %s email template for lang %s: %v", name, lang, err)
	}
	return &Email{To: []string{to}, HTMLBody: htmlBody, TextBody: textBody}
}

// SendEmail delivers through Resend when an API key is set, otherwise through SMTP.
// In test mode the message is only logged.
func SendEmail(cfg *config.Config, email *Email) error {
	if email.HTMLBody == "" && email.TextBody == "" {
		return fmt.Errorf("email must have either HTMLBody or TextBody")
	}

	if cfg.EmailTestMode {
		logEmailToConsole(email)
		return nil
	}

	switch {
	case cfg.ResendAPIKey != "":
		return sendViaResend(cfg, email)
	case cfg.SMTPHost != "":
		return sendViaSMTP(cfg, email)
	default:
		return ErrEmailNotConfigured
	}
}

func fromAddress(cfg *config.Config) string {
	return fmt.Sprintf("%s <%s>", cfg.EmailFromName, cfg.EmailFrom)
}

func sendViaResend(cfg *config.Config, email *Email) error {
	client := resend.NewClient(cfg.ResendAPIKey)
	params := &resend.SendEmailRequest{
		From:    fromAddress(cfg),
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTMLBody,
		Text:    email.TextBody,
	}

	sent, err := client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send email via Resend: %w", err)
	}
	log.Printf("Email sent via Resend (ID: %s) to: %v", sent.Id, email.To)
	return nil
}

func sendViaSMTP(cfg *config.Config, email *Email) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", cfg.EmailFrom, cfg.EmailFromName)
	m.SetHeader("To", email.To...)
	m.SetHeader("Subject", email.Subject)
	if email.TextBody != "" {
		m.SetBody("text/plain", email.TextBody)
		if email.HTMLBody != "" {
			m.AddAlternative("text/html", email.HTMLBody)
		}
	} else {
		m.SetBody("text/html", email.HTMLBody)
	}

	d := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email via SMTP: %w", err)
	}
	log.Printf("Email sent via SMTP to: %v", email.To)
	return nil
}

func logEmailToConsole(email *Email) {
	separator := strings.Repeat("=", 80)
	log.Printf("\n%s\nEMAIL (test mode, not sent)\n%s", separator, separator)
	log.Printf("To: %v", email.To)
	log.Printf("Subject: %s", email.Subject)
	log.Printf("\n--- TEXT BODY ---\n%s", email.TextBody)
	log.Printf("\n--- HTML BODY (first 500 chars) ---\n%s", truncate(email.HTMLBody, 500))
	log.Printf("%s\n", separator)
}

// SendEmailAsync sends a copy of email in a goroutine
func SendEmailAsync(cfg *config.Config, email *Email) {
	emailCopy := &Email{
		To:       append([]string{}, email.To...),
		Subject:  email.Subject,
		HTMLBody: email.HTMLBody,
		TextBody: email.TextBody,
	}

	go func() {
		if err := SendEmail(cfg, emailCopy); err != nil {
			log.Printf("Error sending async email: %v", err)
		}
	}()
}

type WelcomeEmailData struct {
	UserName      string
	WorkspaceName string
	LoginURL      string
}

// BuildWelcomeEmail greets a newly added team member
func BuildWelcomeEmail(to, lang string, data WelcomeEmailData) *Email {
	email := buildEmail("welcome", lang, data, to)
	email.Subject = i18n.Translate(lang, "email.subject.welcome", map[string]interface{}{"workspace": data.WorkspaceName})
	return email
}

type TaskReminderEmailData struct {
	AssigneeName string
	TaskTitle    string
	DueDate      string
	Priority     string
	PartyName    string
	TaskURL      string
}

func BuildTaskReminderEmail(to, lang string, data TaskReminderEmailData) *Email {
	email := buildEmail("task_reminder", lang, data, to)
	email.Subject = i18n.Translate(lang, "email.subject.task_reminder", map[string]interface{}{"task": data.TaskTitle})
	return email
}

type IntakeLinkEmailData struct {
	ClientName    string
	WorkspaceName string
	IntakeURL     string
	ExpiresAt     string
}

// BuildIntakeLinkEmail sends an applicant their signed questionnaire link
func BuildIntakeLinkEmail(to, lang string, data IntakeLinkEmailData) *Email {
	email := buildEmail("intake_link", lang, data, to)
	email.Subject = i18n.Translate(lang, "email.subject.intake_link", map[string]interface{}{"workspace": data.WorkspaceName})
	return email
}

// FormatEmailDate renders a date the way reminder emails show it
func FormatEmailDate(t time.Time) string {
	return t.Format("Mon, Jan 2 2006 15:04")
}
