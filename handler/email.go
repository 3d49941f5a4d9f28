package handler

import (
	"context"

	"github.com/meridian-erp/automation/model"
	"github.com/meridian-erp/automation/util"
	"github.com/pkg/errors"
)

// Mailer is the external mail gateway. Delivery mechanics are out of scope
// for the engine.
type Mailer interface {
	Send(ctx context.Context, recipients []string, subject string, body string) error
}

type EmailHandler struct {
	mailer Mailer
}

func NewEmailHandler(mailer Mailer) *EmailHandler {
	return &EmailHandler{mailer: mailer}
}

func (h *EmailHandler) Type() string {
	return "email"
}

func (h *EmailHandler) Validate(config map[string]any) error {
	if _, ok := stringList(config, "recipients"); !ok {
		return errors.New("recipients must be a non-empty list")
	}
	if _, ok := stringValue(config, "subject"); !ok {
		return errors.New("subject is required")
	}
	if _, ok := stringValue(config, "body"); !ok {
		return errors.New("body is required")
	}
	return nil
}

func (h *EmailHandler) Execute(ctx context.Context, ec *model.ExecutionContext, config map[string]any) (map[string]any, error) {
	resolved := util.ResolveConfig(config, ec.Variables)
	recipients, _ := stringList(resolved, "recipients")
	subject, _ := stringValue(resolved, "subject")
	body, _ := stringValue(resolved, "body")
	if err := h.mailer.Send(ctx, recipients, subject, body); err != nil {
		return nil, errors.Wrap(err, "email delivery failed")
	}
	return map[string]any{
		"sent":       true,
		"recipients": recipients,
	}, nil
}
