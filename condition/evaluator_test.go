package condition

import (
	"testing"

	"github.com/meridian-erp/automation/model"
	"github.com/stretchr/testify/require"
)

func TestEvaluator(t *testing.T) {
	for scenario, fn := range map[string]func(t *testing.T, ev *Evaluator){
		"test equality operators":        testEqualityOperators,
		"test ordering operators":        testOrderingOperators,
		"test membership and contains":   testMembershipContains,
		"test combinator short circuit":  testCombinators,
		"test missing field":             testMissingField,
		"test unknown operator rejected": testUnknownOperator,
	} {
		t.Run(scenario, func(t *testing.T) {
			fn(t, NewEvaluator())
		})
	}
}

func testEqualityOperators(t *testing.T, ev *Evaluator) {
	vars := map[string]any{"amount": float64(100), "status": "open"}

	ok, err := ev.Evaluate([]model.Condition{
		{Field: "amount", Operator: model.OPERATOR_EQ, Value: 100},
	}, vars)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = ev.Evaluate([]model.Condition{
		{Field: "status", Operator: model.OPERATOR_NE, Value: "closed"},
	}, vars)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = ev.Evaluate([]model.Condition{
		{Field: "status", Operator: model.OPERATOR_EQ, Value: "closed"},
	}, vars)
	require.NoError(t, err)
	require.False(t, ok)
}

func testOrderingOperators(t *testing.T, ev *Evaluator) {
	vars := map[string]any{"total": 1500.0, "name": "beta"}

	ok, err := ev.Evaluate([]model.Condition{
		{Field: "total", Operator: model.OPERATOR_GT, Value: 1000},
		{Field: "total", Operator: model.OPERATOR_LTE, Value: 1500},
	}, vars)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = ev.Evaluate([]model.Condition{
		{Field: "name", Operator: model.OPERATOR_LT, Value: "gamma"},
	}, vars)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = ev.Evaluate([]model.Condition{
		{Field: "total", Operator: model.OPERATOR_GT, Value: "abc"},
	}, vars)
	require.Error(t, err)
	_, isEvalErr := err.(model.ConditionEvaluationError)
	require.True(t, isEvalErr)
}

func testMembershipContains(t *testing.T, ev *Evaluator) {
	vars := map[string]any{"region": "emea", "notes": "urgent escalation"}

	ok, err := ev.Evaluate([]model.Condition{
		{Field: "region", Operator: model.OPERATOR_IN, Value: []any{"emea", "apac"}},
	}, vars)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = ev.Evaluate([]model.Condition{
		{Field: "region", Operator: model.OPERATOR_IN, Value: []string{"amer"}},
	}, vars)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = ev.Evaluate([]model.Condition{
		{Field: "region", Operator: model.OPERATOR_IN, Value: "emea"},
	}, vars)
	require.Error(t, err)

	ok, err = ev.Evaluate([]model.Condition{
		{Field: "notes", Operator: model.OPERATOR_CONTAINS, Value: "urgent"},
	}, vars)
	require.NoError(t, err)
	require.True(t, ok)
}

func testCombinators(t *testing.T, ev *Evaluator) {
	vars := map[string]any{"priority": "low", "amount": 5000.0}

	// first condition joined with "or" holds, the rest never runs
	ok, err := ev.Evaluate([]model.Condition{
		{Field: "amount", Operator: model.OPERATOR_GT, Value: 1000, Combinator: model.COMBINATOR_OR},
		{Field: "priority", Operator: model.OPERATOR_EQ, Value: "high"},
	}, vars)
	require.NoError(t, err)
	require.True(t, ok)

	// "and" condition fails, list short-circuits to false
	ok, err = ev.Evaluate([]model.Condition{
		{Field: "priority", Operator: model.OPERATOR_EQ, Value: "high", Combinator: model.COMBINATOR_AND},
		{Field: "amount", Operator: model.OPERATOR_GT, Value: 1000},
	}, vars)
	require.NoError(t, err)
	require.False(t, ok)

	// a failed "or" falls through; an exhausted list is true
	ok, err = ev.Evaluate([]model.Condition{
		{Field: "priority", Operator: model.OPERATOR_EQ, Value: "high", Combinator: model.COMBINATOR_OR},
	}, vars)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = ev.Evaluate(nil, vars)
	require.NoError(t, err)
	require.True(t, ok)
}

func testMissingField(t *testing.T, ev *Evaluator) {
	vars := map[string]any{}

	// equality against an absent field compares against nil
	ok, err := ev.Evaluate([]model.Condition{
		{Field: "missing", Operator: model.OPERATOR_EQ, Value: "x"},
	}, vars)
	require.NoError(t, err)
	require.False(t, ok)

	// ordering against an absent field is an error
	_, err = ev.Evaluate([]model.Condition{
		{Field: "missing", Operator: model.OPERATOR_GT, Value: 10},
	}, vars)
	require.Error(t, err)
	_, isEvalErr := err.(model.ConditionEvaluationError)
	require.True(t, isEvalErr)
}

func testUnknownOperator(t *testing.T, ev *Evaluator) {
	_, err := ev.Evaluate([]model.Condition{
		{Field: "x", Operator: model.Operator("regex"), Value: ".*"},
	}, map[string]any{"x": "y"})
	require.Error(t, err)
	_, isEvalErr := err.(model.ConditionEvaluationError)
	require.True(t, isEvalErr)
}
