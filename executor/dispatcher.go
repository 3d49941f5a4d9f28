package executor

import (
	"context"
	"errors"

	"github.com/meridian-erp/automation/condition"
	"github.com/meridian-erp/automation/handler"
	"github.com/meridian-erp/automation/logger"
	"github.com/meridian-erp/automation/model"
	"go.uber.org/zap"
)

type Outcome string

const OUTCOME_COMPLETED Outcome = "completed"
const OUTCOME_SKIPPED Outcome = "skipped"
const OUTCOME_FAILED Outcome = "failed"

// ActionResult is what one dispatched action produced. Abort tells the
// engine to stop the remaining action sequence.
type ActionResult struct {
	Outcome Outcome
	Output  map[string]any
	Err     error
	Abort   bool
}

// Dispatcher resolves an action to its handler, applies the action's own
// conditions and runs the handler under the retry controller.
type Dispatcher struct {
	registry  *handler.Registry
	evaluator *condition.Evaluator
	retry     *RetryController
}

func NewDispatcher(registry *handler.Registry, evaluator *condition.Evaluator, retry *RetryController) *Dispatcher {
	return &Dispatcher{
		registry:  registry,
		evaluator: evaluator,
		retry:     retry,
	}
}

func (d *Dispatcher) ExecuteAction(ctx context.Context, action model.ActionConfig, ec *model.ExecutionContext) ActionResult {
	h, err := d.registry.Resolve(action.Type)
	if err != nil {
		return d.fail(action, ec, err)
	}
	if err := h.Validate(action.Config); err != nil {
		return d.fail(action, ec, model.ActionValidationError{ActionId: action.Id, Reason: err.Error()})
	}
	if len(action.Conditions) > 0 {
		ok, err := d.evaluator.Evaluate(action.Conditions, ec.Variables)
		if err != nil {
			return d.fail(action, ec, err)
		}
		if !ok {
			logger.Debug("action conditions not met, skipping",
				zap.String("workflow", ec.WorkflowId),
				zap.String("execution", ec.ExecutionId),
				zap.String("action", action.Id))
			return ActionResult{Outcome: OUTCOME_SKIPPED}
		}
	}
	result, err := d.retry.Run(ctx, action, func(ctx context.Context) (map[string]any, error) {
		return h.Execute(ctx, ec, action.Config)
	})
	if err != nil {
		var timeoutErr model.ActionTimeoutError
		if !errors.As(err, &timeoutErr) {
			err = model.ActionExecutionError{ActionId: action.Id, Cause: err}
		}
		return d.fail(action, ec, err)
	}
	ec.CompletedActions = append(ec.CompletedActions, action.Id)
	ec.MergeResult(action.Id, result)
	return ActionResult{Outcome: OUTCOME_COMPLETED, Output: result}
}

func (d *Dispatcher) fail(action model.ActionConfig, ec *model.ExecutionContext, err error) ActionResult {
	ec.FailedActions = append(ec.FailedActions, action.Id)
	ec.RecordError(action.Id, err)
	logger.Error("action failed",
		zap.String("workflow", ec.WorkflowId),
		zap.String("execution", ec.ExecutionId),
		zap.String("action", action.Id),
		zap.Error(err))
	return ActionResult{Outcome: OUTCOME_FAILED, Err: err, Abort: !action.ContinueOnError}
}
