package model

import (
	"fmt"
	"time"
)

type WorkflowNotFoundError struct {
	WorkflowId string
}

func (e WorkflowNotFoundError) Error() string {
	return fmt.Sprintf("workflow %s not found", e.WorkflowId)
}

type WorkflowNotActiveError struct {
	WorkflowId string
	Status     WorkflowStatus
}

func (e WorkflowNotActiveError) Error() string {
	return fmt.Sprintf("workflow %s is not active, status is %s", e.WorkflowId, e.Status)
}

// ActionValidationError means the action config is malformed. It is raised
// before the handler executes, so no side effect has occurred.
type ActionValidationError struct {
	ActionId string
	Reason   string
}

func (e ActionValidationError) Error() string {
	return fmt.Sprintf("action %s config invalid: %s", e.ActionId, e.Reason)
}

type ConditionEvaluationError struct {
	Field    string
	Operator Operator
	Reason   string
}

func (e ConditionEvaluationError) Error() string {
	return fmt.Sprintf("condition on field %q (%s): %s", e.Field, e.Operator, e.Reason)
}

// ActionExecutionError is a handler failure that survived all retries.
type ActionExecutionError struct {
	ActionId string
	Cause    error
}

func (e ActionExecutionError) Error() string {
	return fmt.Sprintf("action %s failed: %v", e.ActionId, e.Cause)
}

func (e ActionExecutionError) Unwrap() error {
	return e.Cause
}

// ActionTimeoutError marks an attempt that exceeded the action's timeout.
// It counts as a retryable failure like any other.
type ActionTimeoutError struct {
	ActionId string
	Timeout  time.Duration
}

func (e ActionTimeoutError) Error() string {
	return fmt.Sprintf("action %s timed out after %s", e.ActionId, e.Timeout)
}

type SchedulerCronError struct {
	WorkflowId string
	Schedule   string
	Cause      error
}

func (e SchedulerCronError) Error() string {
	return fmt.Sprintf("workflow %s has unparsable schedule %q: %v", e.WorkflowId, e.Schedule, e.Cause)
}

func (e SchedulerCronError) Unwrap() error {
	return e.Cause
}

type HandlerNotFoundError struct {
	ActionType string
}

func (e HandlerNotFoundError) Error() string {
	return fmt.Sprintf("no handler for type %s", e.ActionType)
}
