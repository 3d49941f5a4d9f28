package handler

import (
	"context"
	"testing"

	"github.com/meridian-erp/automation/model"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	recipients []string
	subject    string
	body       string
	err        error
}

func (m *fakeMailer) Send(ctx context.Context, recipients []string, subject string, body string) error {
	m.recipients = recipients
	m.subject = subject
	m.body = body
	return m.err
}

func TestEmailHandler(t *testing.T) {
	for scenario, fn := range map[string]func(t *testing.T){
		"test validate rejects missing fields": testEmailValidate,
		"test send resolves placeholders":      testEmailSend,
		"test delivery failure propagated":     testEmailDeliveryFailure,
	} {
		t.Run(scenario, fn)
	}
}

func testEmailValidate(t *testing.T) {
	h := NewEmailHandler(&fakeMailer{})

	require.Error(t, h.Validate(map[string]any{"subject": "s", "body": "b"}))
	require.Error(t, h.Validate(map[string]any{"recipients": []string{}, "subject": "s", "body": "b"}))
	require.Error(t, h.Validate(map[string]any{"recipients": []string{"a@x.com"}, "body": "b"}))
	require.Error(t, h.Validate(map[string]any{"recipients": []string{"a@x.com"}, "subject": "s"}))
	require.NoError(t, h.Validate(map[string]any{
		"recipients": []string{"a@x.com"},
		"subject":    "s",
		"body":       "b",
	}))
	// list decoded from json arrives as []any
	require.NoError(t, h.Validate(map[string]any{
		"recipients": []any{"a@x.com"},
		"subject":    "s",
		"body":       "b",
	}))
}

func testEmailSend(t *testing.T) {
	mailer := &fakeMailer{}
	h := NewEmailHandler(mailer)
	ec := model.NewExecutionContext("wf-1", map[string]any{
		"approver_email": "boss@example.com",
		"customer_name":  "Acme",
	}, "")

	out, err := h.Execute(context.Background(), ec, map[string]any{
		"recipients": []string{"{{approver_email}}"},
		"subject":    "{{customer_name}}",
		"body":       "order needs review",
	})
	require.NoError(t, err)
	require.Equal(t, []string{"boss@example.com"}, mailer.recipients)
	require.Equal(t, "Acme", mailer.subject)
	require.Equal(t, true, out["sent"])
}

func testEmailDeliveryFailure(t *testing.T) {
	h := NewEmailHandler(&fakeMailer{err: errors.New("smtp refused")})
	ec := model.NewExecutionContext("wf-1", nil, "")

	_, err := h.Execute(context.Background(), ec, map[string]any{
		"recipients": []string{"a@x.com"},
		"subject":    "s",
		"body":       "b",
	})
	require.Error(t, err)
}
