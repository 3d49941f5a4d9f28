package model

import (
	"time"

	"github.com/google/uuid"
)

type ExecutionState string

const EXECUTION_STATE_PENDING ExecutionState = "PENDING"
const EXECUTION_STATE_RUNNING ExecutionState = "RUNNING"
const EXECUTION_STATE_COMPLETED ExecutionState = "COMPLETED"
const EXECUTION_STATE_ABORTED ExecutionState = "ABORTED"
const EXECUTION_STATE_CONDITIONS_NOT_MET ExecutionState = "CONDITIONS_NOT_MET"

type ExecutionError struct {
	ActionId  string    `json:"actionId,omitempty"`
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

// ExecutionContext is the mutable, run-scoped record of one workflow
// invocation. It is owned by a single run and never shared between runs.
type ExecutionContext struct {
	WorkflowId         string                    `json:"workflowId"`
	ExecutionId        string                    `json:"executionId"`
	State              ExecutionState            `json:"state"`
	TriggerData        map[string]any            `json:"triggerData,omitempty"`
	Variables          map[string]any            `json:"variables"`
	CurrentActionIndex int                       `json:"currentActionIndex"`
	CompletedActions   []string                  `json:"completedActions,omitempty"`
	FailedActions      []string                  `json:"failedActions,omitempty"`
	Results            map[string]map[string]any `json:"results,omitempty"`
	Errors             []ExecutionError          `json:"errors,omitempty"`
	UserId             string                    `json:"userId,omitempty"`
	StartedAt          time.Time                 `json:"startedAt"`
	CompletedAt        *time.Time                `json:"completedAt,omitempty"`
}

// NewExecutionContext creates the run record for one trigger. Variables are
// seeded from a copy of the trigger data so later mutation never leaks back
// into the caller's map.
func NewExecutionContext(workflowId string, triggerData map[string]any, userId string) *ExecutionContext {
	variables := make(map[string]any, len(triggerData))
	for k, v := range triggerData {
		variables[k] = v
	}
	return &ExecutionContext{
		WorkflowId:  workflowId,
		ExecutionId: uuid.New().String(),
		State:       EXECUTION_STATE_PENDING,
		TriggerData: triggerData,
		Variables:   variables,
		Results:     make(map[string]map[string]any),
		UserId:      userId,
		StartedAt:   time.Now(),
	}
}

func (ec *ExecutionContext) RecordError(actionId string, err error) {
	ec.Errors = append(ec.Errors, ExecutionError{
		ActionId:  actionId,
		Error:     err.Error(),
		Timestamp: time.Now(),
	})
}

// MergeResult stores a successful action result and folds it into the run's
// variables so later actions can reference it.
func (ec *ExecutionContext) MergeResult(actionId string, result map[string]any) {
	ec.Results[actionId] = result
	for k, v := range result {
		ec.Variables[k] = v
	}
}

// Complete moves the run into a terminal state. CompletedAt is set exactly
// once; a second call is a no-op.
func (ec *ExecutionContext) Complete(state ExecutionState) {
	if ec.CompletedAt != nil {
		return
	}
	now := time.Now()
	ec.CompletedAt = &now
	ec.State = state
}

func (ec *ExecutionContext) Duration() time.Duration {
	if ec.CompletedAt == nil {
		return time.Since(ec.StartedAt)
	}
	return ec.CompletedAt.Sub(ec.StartedAt)
}
