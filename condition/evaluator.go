package condition

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/meridian-erp/automation/model"
)

// Evaluator applies an ordered condition list to a run's variables.
type Evaluator struct{}

func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Evaluate walks the conditions left to right. A condition joined with "or"
// short-circuits the whole list to true when it holds; a condition joined
// with "and" (the default) short-circuits to false when it does not. A list
// that runs out without short-circuiting is true.
func (e *Evaluator) Evaluate(conditions []model.Condition, vars map[string]any) (bool, error) {
	for _, cond := range conditions {
		fieldValue, present := vars[cond.Field]
		result, err := e.apply(cond, fieldValue, present)
		if err != nil {
			return false, err
		}
		if cond.Combinator == model.COMBINATOR_OR {
			if result {
				return true, nil
			}
		} else if !result {
			return false, nil
		}
	}
	return true, nil
}

func (e *Evaluator) apply(cond model.Condition, fieldValue any, present bool) (bool, error) {
	switch cond.Operator {
	case model.OPERATOR_EQ:
		return equals(fieldValue, cond.Value), nil
	case model.OPERATOR_NE:
		return !equals(fieldValue, cond.Value), nil
	case model.OPERATOR_GT, model.OPERATOR_GTE, model.OPERATOR_LT, model.OPERATOR_LTE:
		if !present || fieldValue == nil {
			return false, model.ConditionEvaluationError{
				Field:    cond.Field,
				Operator: cond.Operator,
				Reason:   "ordered comparison against missing value",
			}
		}
		cmp, err := compare(fieldValue, cond.Value)
		if err != nil {
			return false, model.ConditionEvaluationError{
				Field:    cond.Field,
				Operator: cond.Operator,
				Reason:   err.Error(),
			}
		}
		switch cond.Operator {
		case model.OPERATOR_GT:
			return cmp > 0, nil
		case model.OPERATOR_GTE:
			return cmp >= 0, nil
		case model.OPERATOR_LT:
			return cmp < 0, nil
		default:
			return cmp <= 0, nil
		}
	case model.OPERATOR_IN:
		seq, ok := asSequence(cond.Value)
		if !ok {
			return false, model.ConditionEvaluationError{
				Field:    cond.Field,
				Operator: cond.Operator,
				Reason:   fmt.Sprintf("operator requires a sequence value, got %T", cond.Value),
			}
		}
		for _, item := range seq {
			if equals(fieldValue, item) {
				return true, nil
			}
		}
		return false, nil
	case model.OPERATOR_CONTAINS:
		return strings.Contains(fmt.Sprint(fieldValue), fmt.Sprint(cond.Value)), nil
	default:
		return false, model.ConditionEvaluationError{
			Field:    cond.Field,
			Operator: cond.Operator,
			Reason:   "unknown operator",
		}
	}
}

// equals compares numbers by value regardless of Go numeric type, everything
// else by deep equality.
func equals(a, b any) bool {
	fa, aok := toFloat(a)
	fb, bok := toFloat(b)
	if aok && bok {
		return fa == fb
	}
	return reflect.DeepEqual(a, b)
}

func compare(a, b any) (int, error) {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		if !ok {
			return 0, fmt.Errorf("cannot compare number with %T", b)
		}
		switch {
		case fa < fb:
			return -1, nil
		case fa > fb:
			return 1, nil
		default:
			return 0, nil
		}
	}
	if sa, ok := a.(string); ok {
		sb, ok := b.(string)
		if !ok {
			return 0, fmt.Errorf("cannot compare string with %T", b)
		}
		return strings.Compare(sa, sb), nil
	}
	return 0, fmt.Errorf("type %T is not orderable", a)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func asSequence(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []string:
		out := make([]any, 0, len(s))
		for _, item := range s {
			out = append(out, item)
		}
		return out, true
	default:
		return nil, false
	}
}
