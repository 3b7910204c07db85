package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/rajatch15/backend-cloud-functions/internal/config"
)

//go:embed templates/*.html
var templateFS embed.FS

const maxRetries = 3

// Attachment is a file sent along with an email.
type Attachment struct {
	FileName    string
	ContentType string
	Content     []byte
}

// ReportEmail fills the report notification template.
type ReportEmail struct {
	Report    string
	Office    string
	Period    string
	Employees int
}

// EmailService defines the interface for sending emails
type EmailService interface {
	SendReport(ctx context.Context, to []string, data ReportEmail, attachments ...Attachment) error
}

type emailServiceImpl struct {
	cfg       config.SMTPConfig
	templates *template.Template
	send      func(m *gomail.Message) error
	backoff   time.Duration
}

// NewEmailService creates a new email service instance
func NewEmailService(cfg config.SMTPConfig) (EmailService, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return &emailServiceImpl{
		cfg:       cfg,
		templates: tmpl,
		send:      func(m *gomail.Message) error { return dialer.DialAndSend(m) },
		backoff:   time.Second,
	}, nil
}

// SendReport mails report artifacts to the recipients
func (s *emailServiceImpl) SendReport(ctx context.Context, to []string, data ReportEmail, attachments ...Attachment) error {
	if len(to) == 0 {
		return fmt.Errorf("no recipients for the %s report of %s", data.Report, data.Office)
	}

	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, "report.html", data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.cfg.From, s.cfg.FromName)
	m.SetHeader("To", to...)
	m.SetHeader("Subject", fmt.Sprintf("%s Report_%s_%s", data.Report, data.Office, data.Period))
	m.SetBody("text/html", body.String())
	for _, a := range attachments {
		m.Attach(a.FileName,
			gomail.SetHeader(map[string][]string{"Content-Type": {a.ContentType}}),
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(a.Content)
				return err
			}),
		)
	}

	return s.deliver(ctx, m, to)
}

func (s *emailServiceImpl) deliver(ctx context.Context, m *gomail.Message, to []string) error {
	subject := m.GetHeader("Subject")

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err := s.send(m)
		if err == nil {
			slog.Info("Email sent successfully", "to", to, "subject", subject, "attempt", attempt)
			return nil
		}

		lastErr = err
		slog.Error("Failed to send email",
			"to", to,
			"subject", subject,
			"attempt", attempt,
			"max_retries", maxRetries,
			"error", err,
		)

		// Wait before retrying (exponential backoff: 1s, 2s, 4s)
		if attempt < maxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.backoff * time.Duration(1<<(attempt-1))):
			}
		}
	}

	return fmt.Errorf("failed to send email after %d attempts: %w", maxRetries, lastErr)
}
