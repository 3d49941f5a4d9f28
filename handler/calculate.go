package handler

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dop251/goja"
	"github.com/meridian-erp/automation/model"
	"github.com/pkg/errors"
)

// CalculateHandler evaluates a javascript expression against the run's
// variables, bound to $, and stores the value under resultVar.
type CalculateHandler struct{}

func NewCalculateHandler() *CalculateHandler {
	return &CalculateHandler{}
}

func (h *CalculateHandler) Type() string {
	return "calculate"
}

func (h *CalculateHandler) Validate(config map[string]any) error {
	expression, ok := stringValue(config, "expression")
	if !ok || len(expression) == 0 {
		return errors.New("expression can not be empty")
	}
	return nil
}

func (h *CalculateHandler) Execute(ctx context.Context, ec *model.ExecutionContext, config map[string]any) (map[string]any, error) {
	expression, _ := stringValue(config, "expression")
	resultVar, ok := stringValue(config, "resultVar")
	if !ok {
		resultVar = "result"
	}
	data, err := json.Marshal(ec.Variables)
	if err != nil {
		return nil, err
	}
	script := fmt.Sprintf("var $ = %s;\n%s", data, expression)
	vm := goja.New()
	val, err := vm.RunString(script)
	if err != nil {
		return nil, errors.Wrap(err, "error evaluating expression")
	}
	return map[string]any{resultVar: val.Export()}, nil
}
