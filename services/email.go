package services

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"log"
	"strings"
	texttemplate "text/template"

	"github.com/orelvisrguez/assistravel/config"
	"github.com/orelvisrguez/assistravel/services/i18n"

	"github.com/resend/resend-go/v2"
)

//go:embed emails/*
var emailTemplates embed.FS

// Email represents an email message
type Email struct {
	To       []string
	Subject  string
	HTMLBody string
	TextBody string
}

// Mailer delivers an email. SendEmail is the production implementation.
type Mailer func(cfg *config.Config, email *Email) error

// loadTemplate renders emails/<name>_<lang>.html and .txt, falling back to the
// default language when the localized pair is missing.
func loadTemplate(templateName, lang string, data interface{}) (string, string, error) {
	render := func(lang string) (string, string, error) {
		base := fmt.Sprintf("emails/%s_%s", templateName, lang)

		htmlSrc, err := emailTemplates.ReadFile(base + ".html")
		if err != nil {
			return "", "", fmt.Errorf("failed to read template %s.html: %w", base, err)
		}
		textSrc, err := emailTemplates.ReadFile(base + ".txt")
		if err != nil {
			return "", "", fmt.Errorf("failed to read template %s.txt: %w", base, err)
		}

		htmlTmpl, err := htmltemplate.New(base).Parse(string(htmlSrc))
		if err != nil {
			return "", "", fmt.Errorf("failed to parse template %s.html: %w", base, err)
		}
		textTmpl, err := texttemplate.New(base).Parse(string(textSrc))
		if err != nil {
			return "", "", fmt.Errorf("failed to parse template %s.txt: %w", base, err)
		}

		var htmlBuf, textBuf bytes.Buffer
		if err := htmlTmpl.Execute(&htmlBuf, data); err != nil {
			return "", "", fmt.Errorf("failed to execute template %s.html: %w", base, err)
		}
		if err := textTmpl.Execute(&textBuf, data); err != nil {
			return "", "", fmt.Errorf("failed to execute template %s.txt: %w", base, err)
		}
		return htmlBuf.String(), textBuf.String(), nil
	}

	html, text, err := render(lang)
	if err != nil && lang != i18n.DefaultLanguage() {
		log.Printf("[WARNING] Email template %s missing for %s, using default language: %v", templateName, lang, err)
		return render(i18n.DefaultLanguage())
	}
	return html, text, err
}

// SendEmail sends an email using Resend API
func SendEmail(cfg *config.Config, email *Email) error {
	if cfg.EmailTestMode {
		logEmailToConsole(email)
		return nil
	}

	if cfg.ResendAPIKey == "" {
		return fmt.Errorf("RESEND_API_KEY not configured")
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", cfg.EmailFromName, cfg.EmailFrom),
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTMLBody,
		Text:    email.TextBody,
	}
	if params.Html == "" && params.Text == "" {
		return fmt.Errorf("email must have either HTMLBody or TextBody")
	}

	client := resend.NewClient(cfg.ResendAPIKey)
	sent, err := client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send email via Resend: %w", err)
	}

	log.Printf("Email sent via Resend (ID: %s) to: %v", sent.Id, email.To)
	return nil
}

// logEmailToConsole logs email details to console in development mode
func logEmailToConsole(email *Email) {
	separator := strings.Repeat("=", 80)
	log.Printf("\n%s\nEMAIL (test mode, not sent)\n%s", separator, separator)
	log.Printf("To: %v", email.To)
	log.Printf("Subject: %s", email.Subject)
	log.Printf("\n--- TEXT BODY ---\n%s", email.TextBody)
	log.Printf("%s\n", separator)
}

// SendEmailAsync sends a copy of email in a goroutine so handlers don't block
func SendEmailAsync(cfg *config.Config, email *Email, send Mailer) {
	if send == nil {
		send = SendEmail
	}
	emailCopy := &Email{
		To:       append([]string{}, email.To...),
		Subject:  email.Subject,
		HTMLBody: email.HTMLBody,
		TextBody: email.TextBody,
	}

	go func() {
		if err := send(cfg, emailCopy); err != nil {
			log.Printf("Error sending async email: %v", err)
		}
	}()
}

// ConfirmationEmailData contains data for the sign-up confirmation template
type ConfirmationEmailData struct {
	Email       string
	ConfirmLink string
	ExpiresIn   string
}

// BuildConfirmationEmail creates the sign-up confirmation email
func BuildConfirmationEmail(userEmail, confirmLink, lang string) (*Email, error) {
	data := ConfirmationEmailData{
		Email:       userEmail,
		ConfirmLink: confirmLink,
		ExpiresIn:   "24h",
	}

	html, text, err := loadTemplate("confirm_signup", lang, data)
	if err != nil {
		return nil, err
	}

	return &Email{
		To:       []string{userEmail},
		Subject:  i18n.Translate(lang, "email.subject.confirm_signup"),
		HTMLBody: html,
		TextBody: text,
	}, nil
}
