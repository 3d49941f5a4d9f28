package handler

import (
	"context"

	"github.com/meridian-erp/automation/model"
	"github.com/meridian-erp/automation/util"
	"github.com/pkg/errors"
)

// EntityStore is the ERP's entity persistence collaborator. The engine only
// dispatches resolved filter and update maps to it.
type EntityStore interface {
	Update(ctx context.Context, entity string, filter map[string]any, update map[string]any) (int64, error)
}

type DatabaseUpdateHandler struct {
	store EntityStore
}

func NewDatabaseUpdateHandler(store EntityStore) *DatabaseUpdateHandler {
	return &DatabaseUpdateHandler{store: store}
}

func (h *DatabaseUpdateHandler) Type() string {
	return "database_update"
}

func (h *DatabaseUpdateHandler) Validate(config map[string]any) error {
	if _, ok := stringValue(config, "entity"); !ok {
		return errors.New("entity is required")
	}
	if _, ok := mapValue(config, "filter"); !ok {
		return errors.New("filter must be a map")
	}
	update, ok := mapValue(config, "update")
	if !ok || len(update) == 0 {
		return errors.New("update must be a non-empty map")
	}
	return nil
}

func (h *DatabaseUpdateHandler) Execute(ctx context.Context, ec *model.ExecutionContext, config map[string]any) (map[string]any, error) {
	resolved := util.ResolveConfig(config, ec.Variables)
	entity, _ := stringValue(resolved, "entity")
	filter, _ := mapValue(resolved, "filter")
	update, _ := mapValue(resolved, "update")
	count, err := h.store.Update(ctx, entity, filter, update)
	if err != nil {
		return nil, errors.Wrapf(err, "update of %s failed", entity)
	}
	return map[string]any{
		"entity":  entity,
		"updated": count,
	}, nil
}
