package cache

import (
	"time"

	"github.com/meridian-erp/automation/model"
	c "github.com/patrickmn/go-cache"
)

// DefinitionCache is the short-TTL cache in front of the workflow
// repository, keyed by workflow id.
type DefinitionCache interface {
	Get(id string) (*model.WorkflowDefinition, bool)
	Set(id string, wf *model.WorkflowDefinition, ttl time.Duration)
	Invalidate(id string)
}

type definitionCache struct {
	cache *c.Cache
}

func NewDefinitionCache(defaultTTL time.Duration) DefinitionCache {
	return &definitionCache{
		cache: c.New(defaultTTL, 10*time.Minute),
	}
}

func (ch *definitionCache) Get(id string) (*model.WorkflowDefinition, bool) {
	v, found := ch.cache.Get(id)
	if !found {
		return nil, false
	}
	wf, ok := v.(*model.WorkflowDefinition)
	return wf, ok
}

func (ch *definitionCache) Set(id string, wf *model.WorkflowDefinition, ttl time.Duration) {
	ch.cache.Set(id, wf, ttl)
}

func (ch *definitionCache) Invalidate(id string) {
	ch.cache.Delete(id)
}
