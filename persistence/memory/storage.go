package memory

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/meridian-erp/automation/model"
)

// WorkflowRepository is a map-backed definition store used in development and
// tests, standing in for the ERP's relational store.
type WorkflowRepository struct {
	mu        sync.RWMutex
	workflows map[string]*model.WorkflowDefinition
}

func NewWorkflowRepository() *WorkflowRepository {
	return &WorkflowRepository{
		workflows: make(map[string]*model.WorkflowDefinition),
	}
}

// Put stores a definition, standing in for the external authoring
// collaborator. Definitions are stored as-is; placeholders in action configs
// are resolved only at execution time.
func (r *WorkflowRepository) Put(wf *model.WorkflowDefinition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.workflows[wf.Id] = wf
}

func (r *WorkflowRepository) Load(ctx context.Context, id string) (*model.WorkflowDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	wf, ok := r.workflows[id]
	if !ok {
		return nil, model.WorkflowNotFoundError{WorkflowId: id}
	}
	return copyDefinition(wf)
}

func (r *WorkflowRepository) ListActive(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var ids []string
	for id, wf := range r.workflows {
		if wf.Status == model.WORKFLOW_STATUS_ACTIVE {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func copyDefinition(wf *model.WorkflowDefinition) (*model.WorkflowDefinition, error) {
	data, err := json.Marshal(wf)
	if err != nil {
		return nil, err
	}
	var out model.WorkflowDefinition
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExecutionLogStore keeps finished execution records in memory, keyed by
// execution id.
type ExecutionLogStore struct {
	mu      sync.RWMutex
	records map[string]*model.ExecutionContext
}

func NewExecutionLogStore() *ExecutionLogStore {
	return &ExecutionLogStore{
		records: make(map[string]*model.ExecutionContext),
	}
}

func (s *ExecutionLogStore) Save(ctx context.Context, ec *model.ExecutionContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[ec.ExecutionId] = ec
	return nil
}

func (s *ExecutionLogStore) Get(executionId string) (*model.ExecutionContext, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ec, ok := s.records[executionId]
	return ec, ok
}

func (s *ExecutionLogStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
