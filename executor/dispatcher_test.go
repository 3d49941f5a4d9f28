package executor

import (
	"context"
	"testing"

	"github.com/meridian-erp/automation/condition"
	"github.com/meridian-erp/automation/handler"
	"github.com/meridian-erp/automation/model"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type stubHandler struct {
	actionType  string
	validateErr error
	output      map[string]any
	execErr     error
	calls       int
}

func (h *stubHandler) Type() string {
	return h.actionType
}

func (h *stubHandler) Validate(config map[string]any) error {
	return h.validateErr
}

func (h *stubHandler) Execute(ctx context.Context, ec *model.ExecutionContext, config map[string]any) (map[string]any, error) {
	h.calls++
	return h.output, h.execErr
}

func newTestDispatcher(handlers ...handler.Handler) *Dispatcher {
	registry := handler.NewRegistry()
	for _, h := range handlers {
		registry.Register(h)
	}
	return NewDispatcher(registry, condition.NewEvaluator(), NewRetryController())
}

func TestDispatcher(t *testing.T) {
	for scenario, fn := range map[string]func(t *testing.T){
		"test completed action merges results": testCompletedAction,
		"test unknown action type fails":       testUnknownType,
		"test invalid config fails":            testInvalidConfig,
		"test conditions skip action":          testConditionsSkip,
		"test failure aborts by default":       testFailureAborts,
		"test continue on error":               testContinueOnError,
	} {
		t.Run(scenario, fn)
	}
}

func testCompletedAction(t *testing.T) {
	stub := &stubHandler{actionType: "email", output: map[string]any{"sent": true}}
	d := newTestDispatcher(stub)
	ec := model.NewExecutionContext("wf-1", map[string]any{"amount": 100.0}, "")

	result := d.ExecuteAction(context.Background(), model.ActionConfig{Id: "a1", Type: "email", RetryCount: 1}, ec)
	require.Equal(t, OUTCOME_COMPLETED, result.Outcome)
	require.Equal(t, []string{"a1"}, ec.CompletedActions)
	require.Equal(t, map[string]any{"sent": true}, ec.Results["a1"])
	require.Equal(t, true, ec.Variables["sent"])
}

func testUnknownType(t *testing.T) {
	d := newTestDispatcher()
	ec := model.NewExecutionContext("wf-1", nil, "")

	result := d.ExecuteAction(context.Background(), model.ActionConfig{Id: "a1", Type: "nosuch", RetryCount: 1}, ec)
	require.Equal(t, OUTCOME_FAILED, result.Outcome)
	require.True(t, result.Abort)
	var notFound model.HandlerNotFoundError
	require.ErrorAs(t, result.Err, &notFound)
	require.Equal(t, []string{"a1"}, ec.FailedActions)
	require.Len(t, ec.Errors, 1)
}

func testInvalidConfig(t *testing.T) {
	stub := &stubHandler{actionType: "email", validateErr: errors.New("recipients must be a non-empty list")}
	d := newTestDispatcher(stub)
	ec := model.NewExecutionContext("wf-1", nil, "")

	result := d.ExecuteAction(context.Background(), model.ActionConfig{Id: "a1", Type: "email", RetryCount: 1}, ec)
	require.Equal(t, OUTCOME_FAILED, result.Outcome)
	var validationErr model.ActionValidationError
	require.ErrorAs(t, result.Err, &validationErr)
	require.Equal(t, 0, stub.calls)
}

func testConditionsSkip(t *testing.T) {
	stub := &stubHandler{actionType: "email", output: map[string]any{"sent": true}}
	d := newTestDispatcher(stub)
	ec := model.NewExecutionContext("wf-1", map[string]any{"priority": "low"}, "")

	action := model.ActionConfig{
		Id: "a1", Type: "email", RetryCount: 1,
		Conditions: []model.Condition{
			{Field: "priority", Operator: model.OPERATOR_EQ, Value: "high"},
		},
	}
	result := d.ExecuteAction(context.Background(), action, ec)
	require.Equal(t, OUTCOME_SKIPPED, result.Outcome)
	require.Equal(t, 0, stub.calls)
	require.Empty(t, ec.CompletedActions)
	require.Empty(t, ec.FailedActions)
	require.Empty(t, ec.Results)
}

func testFailureAborts(t *testing.T) {
	stub := &stubHandler{actionType: "email", execErr: errors.New("smtp unreachable")}
	d := newTestDispatcher(stub)
	ec := model.NewExecutionContext("wf-1", nil, "")

	result := d.ExecuteAction(context.Background(), model.ActionConfig{Id: "a1", Type: "email", RetryCount: 1}, ec)
	require.Equal(t, OUTCOME_FAILED, result.Outcome)
	require.True(t, result.Abort)
	var execErr model.ActionExecutionError
	require.ErrorAs(t, result.Err, &execErr)
	require.Equal(t, "a1", execErr.ActionId)
}

func testContinueOnError(t *testing.T) {
	stub := &stubHandler{actionType: "email", execErr: errors.New("smtp unreachable")}
	d := newTestDispatcher(stub)
	ec := model.NewExecutionContext("wf-1", nil, "")

	action := model.ActionConfig{Id: "a1", Type: "email", RetryCount: 1, ContinueOnError: true}
	result := d.ExecuteAction(context.Background(), action, ec)
	require.Equal(t, OUTCOME_FAILED, result.Outcome)
	require.False(t, result.Abort)
	require.Equal(t, []string{"a1"}, ec.FailedActions)
}
