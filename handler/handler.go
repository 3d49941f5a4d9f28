package handler

import (
	"context"
	"sync"

	"github.com/meridian-erp/automation/model"
)

// Handler executes one action type. Validate inspects the config only and
// performs no I/O; Execute runs the side effect against the run's context.
type Handler interface {
	Type() string
	Validate(config map[string]any) error
	Execute(ctx context.Context, ec *model.ExecutionContext, config map[string]any) (map[string]any, error)
}

// Registry maps action types to handlers. New types register at engine
// start.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
	}
}

func (r *Registry) Register(h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[h.Type()] = h
}

func (r *Registry) Resolve(actionType string) (Handler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[actionType]
	if !ok {
		return nil, model.HandlerNotFoundError{ActionType: actionType}
	}
	return h, nil
}
