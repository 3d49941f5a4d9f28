package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/meridian-erp/automation/logger"
	"go.uber.org/zap"
)

// Logging delegates let the engine run without the ERP's real collaborators
// wired in. Each records the would-be side effect to the structured log.

type LogMailer struct{}

func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

func (LogMailer) Send(ctx context.Context, recipients []string, subject string, body string) error {
	logger.Info("email dispatched", zap.Strings("recipients", recipients), zap.String("subject", subject))
	return nil
}

type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (LogNotifier) Notify(ctx context.Context, channel string, recipient string, message string) error {
	logger.Info("notification dispatched", zap.String("channel", channel), zap.String("recipient", recipient))
	return nil
}

type LogApprovals struct{}

func NewLogApprovals() *LogApprovals {
	return &LogApprovals{}
}

func (LogApprovals) RequestApproval(ctx context.Context, approver string, subject string, payload map[string]any) (string, error) {
	approvalId := uuid.New().String()
	logger.Info("approval requested", zap.String("approver", approver), zap.String("approvalId", approvalId))
	return approvalId, nil
}

type LogAssigner struct{}

func NewLogAssigner() *LogAssigner {
	return &LogAssigner{}
}

func (LogAssigner) Assign(ctx context.Context, entity string, entityId string, assignee string) error {
	logger.Info("entity assigned", zap.String("entity", entity), zap.String("entityId", entityId), zap.String("assignee", assignee))
	return nil
}

type LogEntityStore struct{}

func NewLogEntityStore() *LogEntityStore {
	return &LogEntityStore{}
}

func (LogEntityStore) Update(ctx context.Context, entity string, filter map[string]any, update map[string]any) (int64, error) {
	logger.Info("entity update dispatched", zap.String("entity", entity), zap.Any("filter", filter))
	return 0, nil
}
