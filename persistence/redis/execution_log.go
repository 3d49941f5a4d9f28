package redis

import (
	"context"
	"encoding/json"

	"github.com/meridian-erp/automation/model"
)

const executionKeyPrefix = "execution"
const executionListPrefix = "executions"

// ExecutionLogStore persists finished execution records as JSON, with a
// per-workflow list of execution ids for later inspection.
type ExecutionLogStore struct {
	*baseDao
}

func NewExecutionLogStore(conf Config) *ExecutionLogStore {
	return &ExecutionLogStore{baseDao: newBaseDao(conf)}
}

func (s *ExecutionLogStore) Save(ctx context.Context, ec *model.ExecutionContext) error {
	data, err := json.Marshal(ec)
	if err != nil {
		return err
	}
	key := s.getNamespaceKey(executionKeyPrefix, ec.ExecutionId)
	if err := s.redisClient.Set(ctx, key, data, 0).Err(); err != nil {
		return err
	}
	listKey := s.getNamespaceKey(executionListPrefix, ec.WorkflowId)
	return s.redisClient.RPush(ctx, listKey, ec.ExecutionId).Err()
}
