package handler

import (
	"context"
	"fmt"

	"github.com/meridian-erp/automation/model"
	"github.com/oliveagle/jsonpath"
	"github.com/pkg/errors"
)

// TransformHandler maps values out of the run's variables into new ones.
// Each mapping is output key -> jsonpath expression over the variables.
type TransformHandler struct{}

func NewTransformHandler() *TransformHandler {
	return &TransformHandler{}
}

func (h *TransformHandler) Type() string {
	return "transform"
}

func (h *TransformHandler) Validate(config map[string]any) error {
	mappings, ok := mapValue(config, "mappings")
	if !ok || len(mappings) == 0 {
		return errors.New("mappings must be a non-empty map")
	}
	for key, v := range mappings {
		if _, ok := v.(string); !ok {
			return errors.Errorf("mapping %s must be a jsonpath string, got %T", key, v)
		}
	}
	return nil
}

func (h *TransformHandler) Execute(ctx context.Context, ec *model.ExecutionContext, config map[string]any) (map[string]any, error) {
	mappings, _ := mapValue(config, "mappings")
	out := make(map[string]any, len(mappings))
	for key, v := range mappings {
		path := fmt.Sprint(v)
		value, err := jsonpath.JsonPathLookup(ec.Variables, path)
		if err != nil {
			return nil, errors.Wrapf(err, "mapping %s", key)
		}
		out[key] = value
	}
	return out, nil
}
