package redis

import (
	"context"
	"encoding/json"

	rd "github.com/go-redis/redis/v9"
	"github.com/meridian-erp/automation/model"
)

const workflowKeyPrefix = "workflow"
const activeSetKey = "workflow-active"

// WorkflowRepository reads workflow definitions from redis. Definitions are
// stored as JSON under <namespace>:workflow:<id>; active ids are mirrored in
// a set so ListActive stays a single round trip.
type WorkflowRepository struct {
	*baseDao
}

func NewWorkflowRepository(conf Config) *WorkflowRepository {
	return &WorkflowRepository{baseDao: newBaseDao(conf)}
}

// Save writes a definition and keeps the active-id set in sync. It exists
// for the authoring collaborator and for tests; the engine only reads.
func (r *WorkflowRepository) Save(ctx context.Context, wf *model.WorkflowDefinition) error {
	data, err := json.Marshal(wf)
	if err != nil {
		return err
	}
	key := r.getNamespaceKey(workflowKeyPrefix, wf.Id)
	if err := r.redisClient.Set(ctx, key, data, 0).Err(); err != nil {
		return err
	}
	activeKey := r.getNamespaceKey(activeSetKey)
	if wf.Status == model.WORKFLOW_STATUS_ACTIVE {
		return r.redisClient.SAdd(ctx, activeKey, wf.Id).Err()
	}
	return r.redisClient.SRem(ctx, activeKey, wf.Id).Err()
}

func (r *WorkflowRepository) Load(ctx context.Context, id string) (*model.WorkflowDefinition, error) {
	key := r.getNamespaceKey(workflowKeyPrefix, id)
	data, err := r.redisClient.Get(ctx, key).Result()
	if err == rd.Nil {
		return nil, model.WorkflowNotFoundError{WorkflowId: id}
	}
	if err != nil {
		return nil, err
	}
	var wf model.WorkflowDefinition
	if err := json.Unmarshal([]byte(data), &wf); err != nil {
		return nil, err
	}
	return &wf, nil
}

func (r *WorkflowRepository) ListActive(ctx context.Context) ([]string, error) {
	return r.redisClient.SMembers(ctx, r.getNamespaceKey(activeSetKey)).Result()
}
