package event

import (
	"time"

	"github.com/meridian-erp/automation/logger"
	"go.uber.org/zap"
)

const WORKFLOW_STARTED = "workflow_started"
const WORKFLOW_COMPLETED = "workflow_completed"
const WORKFLOW_FAILED = "workflow_failed"
const ACTION_FAILED = "action_failed"

type Event struct {
	Type             string
	WorkflowId       string
	ExecutionId      string
	ActionId         string
	State            string
	Duration         time.Duration
	CompletedActions int
	FailedActions    int
}

// Sink receives engine lifecycle events for observability. Implementations
// must be safe for concurrent use.
type Sink interface {
	Emit(evt Event)
}

// LogSink writes events to the structured log.
type LogSink struct{}

func NewLogSink() *LogSink {
	return &LogSink{}
}

func (s *LogSink) Emit(evt Event) {
	logger.Info("workflow event",
		zap.String("type", evt.Type),
		zap.String("workflow", evt.WorkflowId),
		zap.String("execution", evt.ExecutionId),
		zap.String("action", evt.ActionId),
		zap.String("state", evt.State),
		zap.Duration("duration", evt.Duration),
		zap.Int("completed", evt.CompletedActions),
		zap.Int("failed", evt.FailedActions),
	)
}

// NopSink discards events.
type NopSink struct{}

func (NopSink) Emit(Event) {}
