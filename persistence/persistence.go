package persistence

import (
	"context"

	"github.com/meridian-erp/automation/model"
)

// WorkflowRepository is the read side of the external definition store.
// Load returns model.WorkflowNotFoundError for unknown ids.
type WorkflowRepository interface {
	Load(ctx context.Context, id string) (*model.WorkflowDefinition, error)
	ListActive(ctx context.Context) ([]string, error)
}

// ExecutionLogStore persists finished execution records. Saves are
// best-effort from the engine's point of view; a failure never fails the
// triggering call.
type ExecutionLogStore interface {
	Save(ctx context.Context, ec *model.ExecutionContext) error
}
