package email

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/rajatch15/backend-cloud-functions/internal/config"
)

func newTestService(t *testing.T, send func(*gomail.Message) error) *emailServiceImpl {
	t.Helper()
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	require.NoError(t, err)
	return &emailServiceImpl{
		cfg:       config.SMTPConfig{From: "reports@acme.test", FromName: "Acme"},
		templates: tmpl,
		send:      send,
	}
}

var report = ReportEmail{Report: "Payroll", Office: "Acme", Period: "01-Mar-2024", Employees: 3}

var artifact = Attachment{FileName: "Payroll Report_Acme_01-Mar-2024.csv", ContentType: "text/csv", Content: []byte("Employee Name\n")}

func TestSendReport(t *testing.T) {
	var sent *gomail.Message
	svc := newTestService(t, func(m *gomail.Message) error {
		sent = m
		return nil
	})

	err := svc.SendReport(context.Background(), []string{"hr@acme.test"}, report, artifact)

	require.NoError(t, err)
	require.NotNil(t, sent)
	assert.Equal(t, []string{"hr@acme.test"}, sent.GetHeader("To"))
	assert.Equal(t, []string{"Payroll Report_Acme_01-Mar-2024"}, sent.GetHeader("Subject"))

	var raw bytes.Buffer
	_, err = sent.WriteTo(&raw)
	require.NoError(t, err)
	assert.Contains(t, raw.String(), "Payroll Report_Acme_01-Mar-2024.csv")
	assert.Contains(t, raw.String(), "3 employee(s)")
}

func TestSendReport_Retries(t *testing.T) {
	calls := 0
	svc := newTestService(t, func(m *gomail.Message) error {
		calls++
		if calls < 3 {
			return errors.New("connection reset")
		}
		return nil
	})

	require.NoError(t, svc.SendReport(context.Background(), []string{"hr@acme.test"}, report, artifact))
	assert.Equal(t, 3, calls)
}

func TestSendReport_GivesUp(t *testing.T) {
	calls := 0
	svc := newTestService(t, func(m *gomail.Message) error {
		calls++
		return errors.New("auth failed")
	})

	err := svc.SendReport(context.Background(), []string{"hr@acme.test"}, report, artifact)

	assert.ErrorContains(t, err, "after 3 attempts")
	assert.Equal(t, maxRetries, calls)
}

func TestSendReport_NoRecipients(t *testing.T) {
	svc := newTestService(t, func(m *gomail.Message) error { return nil })

	assert.Error(t, svc.SendReport(context.Background(), nil, report, artifact))
}
