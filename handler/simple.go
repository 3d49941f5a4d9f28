package handler

import (
	"context"

	"github.com/meridian-erp/automation/model"
	"github.com/meridian-erp/automation/util"
	"github.com/pkg/errors"
)

// Notifier delivers an in-app or channel notification.
type Notifier interface {
	Notify(ctx context.Context, channel string, recipient string, message string) error
}

type NotificationHandler struct {
	notifier Notifier
}

func NewNotificationHandler(notifier Notifier) *NotificationHandler {
	return &NotificationHandler{notifier: notifier}
}

func (h *NotificationHandler) Type() string {
	return "notification"
}

func (h *NotificationHandler) Validate(config map[string]any) error {
	if _, ok := stringValue(config, "recipient"); !ok {
		return errors.New("recipient is required")
	}
	if _, ok := stringValue(config, "message"); !ok {
		return errors.New("message is required")
	}
	return nil
}

func (h *NotificationHandler) Execute(ctx context.Context, ec *model.ExecutionContext, config map[string]any) (map[string]any, error) {
	resolved := util.ResolveConfig(config, ec.Variables)
	channel, ok := stringValue(resolved, "channel")
	if !ok {
		channel = "inapp"
	}
	recipient, _ := stringValue(resolved, "recipient")
	message, _ := stringValue(resolved, "message")
	if err := h.notifier.Notify(ctx, channel, recipient, message); err != nil {
		return nil, errors.Wrap(err, "notification delivery failed")
	}
	return map[string]any{
		"notified": recipient,
		"channel":  channel,
	}, nil
}

// Approvals opens approval requests with the ERP's approval collaborator.
type Approvals interface {
	RequestApproval(ctx context.Context, approver string, subject string, payload map[string]any) (string, error)
}

type ApprovalHandler struct {
	approvals Approvals
}

func NewApprovalHandler(approvals Approvals) *ApprovalHandler {
	return &ApprovalHandler{approvals: approvals}
}

func (h *ApprovalHandler) Type() string {
	return "approval"
}

func (h *ApprovalHandler) Validate(config map[string]any) error {
	if _, ok := stringValue(config, "approver"); !ok {
		return errors.New("approver is required")
	}
	return nil
}

func (h *ApprovalHandler) Execute(ctx context.Context, ec *model.ExecutionContext, config map[string]any) (map[string]any, error) {
	resolved := util.ResolveConfig(config, ec.Variables)
	approver, _ := stringValue(resolved, "approver")
	subject, _ := stringValue(resolved, "subject")
	payload, _ := mapValue(resolved, "payload")
	approvalId, err := h.approvals.RequestApproval(ctx, approver, subject, payload)
	if err != nil {
		return nil, errors.Wrap(err, "approval request failed")
	}
	return map[string]any{
		"approvalId": approvalId,
		"status":     "pending",
	}, nil
}

// Assigner assigns an ERP entity to a user.
type Assigner interface {
	Assign(ctx context.Context, entity string, entityId string, assignee string) error
}

type AssignHandler struct {
	assigner Assigner
}

func NewAssignHandler(assigner Assigner) *AssignHandler {
	return &AssignHandler{assigner: assigner}
}

func (h *AssignHandler) Type() string {
	return "assign"
}

func (h *AssignHandler) Validate(config map[string]any) error {
	if _, ok := stringValue(config, "entity"); !ok {
		return errors.New("entity is required")
	}
	if _, ok := stringValue(config, "entityId"); !ok {
		return errors.New("entityId is required")
	}
	if _, ok := stringValue(config, "assignee"); !ok {
		return errors.New("assignee is required")
	}
	return nil
}

func (h *AssignHandler) Execute(ctx context.Context, ec *model.ExecutionContext, config map[string]any) (map[string]any, error) {
	resolved := util.ResolveConfig(config, ec.Variables)
	entity, _ := stringValue(resolved, "entity")
	entityId, _ := stringValue(resolved, "entityId")
	assignee, _ := stringValue(resolved, "assignee")
	if err := h.assigner.Assign(ctx, entity, entityId, assignee); err != nil {
		return nil, errors.Wrap(err, "assignment failed")
	}
	return map[string]any{
		"entity":   entity,
		"entityId": entityId,
		"assignee": assignee,
	}, nil
}
