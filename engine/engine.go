package engine

import (
	"context"
	"sync"
	"time"

	"github.com/meridian-erp/automation/cache"
	"github.com/meridian-erp/automation/condition"
	"github.com/meridian-erp/automation/event"
	"github.com/meridian-erp/automation/executor"
	"github.com/meridian-erp/automation/handler"
	"github.com/meridian-erp/automation/logger"
	"github.com/meridian-erp/automation/model"
	"github.com/meridian-erp/automation/persistence"
	"github.com/meridian-erp/automation/scheduler"
	"go.uber.org/zap"
)

type Config struct {
	Repository        persistence.WorkflowRepository
	LogStore          persistence.ExecutionLogStore
	Cache             cache.DefinitionCache
	Registry          *handler.Registry
	Sink              event.Sink
	CacheTTL          time.Duration
	PollInterval      time.Duration
	ScheduleTolerance time.Duration
}

// Engine is the composition root of the automation subsystem: the trigger
// entry point, the workflow-level condition gate, the sequential action loop
// and the scheduler lifecycle.
type Engine struct {
	repository persistence.WorkflowRepository
	logStore   persistence.ExecutionLogStore
	cache      cache.DefinitionCache
	dispatcher *executor.Dispatcher
	evaluator  *condition.Evaluator
	sink       event.Sink
	scheduler  *scheduler.Scheduler
	cacheTTL   time.Duration
	mu         sync.RWMutex
	activeIds  map[string]struct{}
	wg         *sync.WaitGroup
}

func New(conf Config, wg *sync.WaitGroup) *Engine {
	if conf.CacheTTL <= 0 {
		conf.CacheTTL = 5 * time.Minute
	}
	if conf.Sink == nil {
		conf.Sink = event.NopSink{}
	}
	evaluator := condition.NewEvaluator()
	e := &Engine{
		repository: conf.Repository,
		logStore:   conf.LogStore,
		cache:      conf.Cache,
		dispatcher: executor.NewDispatcher(conf.Registry, evaluator, executor.NewRetryController()),
		evaluator:  evaluator,
		sink:       conf.Sink,
		cacheTTL:   conf.CacheTTL,
		activeIds:  make(map[string]struct{}),
		wg:         wg,
	}
	e.scheduler = scheduler.New(scheduler.Config{
		PollInterval: conf.PollInterval,
		Tolerance:    conf.ScheduleTolerance,
	}, e, e, wg)
	return e
}

// Start preloads the active workflow id set and starts the schedule poller.
func (e *Engine) Start(ctx context.Context) error {
	ids, err := e.repository.ListActive(ctx)
	if err != nil {
		return err
	}
	e.setActiveIds(ids)
	e.scheduler.Start()
	logger.Info("workflow engine started", zap.Int("activeWorkflows", len(ids)))
	return nil
}

// Stop cancels the schedule poller. In-flight triggered executions run to
// completion; the agent's wait group drains them on shutdown.
func (e *Engine) Stop() error {
	e.scheduler.Stop()
	logger.Info("workflow engine stopped")
	return nil
}

func (e *Engine) setActiveIds(ids []string) {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	e.mu.Lock()
	e.activeIds = set
	e.mu.Unlock()
}

func (e *Engine) IsActive(workflowId string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.activeIds[workflowId]
	return ok
}

func (e *Engine) loadDefinition(ctx context.Context, id string) (*model.WorkflowDefinition, error) {
	if wf, ok := e.cache.Get(id); ok {
		return wf, nil
	}
	wf, err := e.repository.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	wf.Normalize()
	e.cache.Set(id, wf, e.cacheTTL)
	return wf, nil
}

// ListActiveDefinitions loads every active definition through the cache. A
// workflow whose definition fails to load is skipped, not fatal.
func (e *Engine) ListActiveDefinitions(ctx context.Context) ([]*model.WorkflowDefinition, error) {
	ids, err := e.repository.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	e.setActiveIds(ids)
	defs := make([]*model.WorkflowDefinition, 0, len(ids))
	for _, id := range ids {
		wf, err := e.loadDefinition(ctx, id)
		if err != nil {
			logger.Error("error loading active workflow", zap.String("workflow", id), zap.Error(err))
			continue
		}
		defs = append(defs, wf)
	}
	return defs, nil
}

// TriggerWorkflow starts one run and drives it to a terminal state. It fails
// before any mutation when the workflow is unknown or not active.
func (e *Engine) TriggerWorkflow(ctx context.Context, workflowId string, triggerData map[string]any, userId string) (*model.ExecutionContext, error) {
	wf, err := e.loadDefinition(ctx, workflowId)
	if err != nil {
		return nil, err
	}
	if wf.Status != model.WORKFLOW_STATUS_ACTIVE {
		return nil, model.WorkflowNotActiveError{WorkflowId: workflowId, Status: wf.Status}
	}
	ec := model.NewExecutionContext(workflowId, triggerData, userId)
	logger.Info("workflow triggered",
		zap.String("workflow", workflowId),
		zap.String("execution", ec.ExecutionId))
	e.sink.Emit(event.Event{
		Type:        event.WORKFLOW_STARTED,
		WorkflowId:  workflowId,
		ExecutionId: ec.ExecutionId,
	})
	e.run(ctx, wf, ec)
	return ec, nil
}

// TriggerEvent fans an ERP event out to every active workflow whose trigger
// listens for it. Runs execute asynchronously; the fired workflow ids are
// returned.
func (e *Engine) TriggerEvent(ctx context.Context, eventName string, data map[string]any) ([]string, error) {
	defs, err := e.ListActiveDefinitions(ctx)
	if err != nil {
		return nil, err
	}
	var fired []string
	for _, wf := range defs {
		if wf.Trigger.Type != model.TRIGGER_TYPE_EVENT || wf.Trigger.EventName != eventName {
			continue
		}
		triggerData := map[string]any{"trigger": "event", "event": eventName}
		for k, v := range data {
			triggerData[k] = v
		}
		workflowId := wf.Id
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			if _, err := e.TriggerWorkflow(context.Background(), workflowId, triggerData, ""); err != nil {
				logger.Error("event-triggered workflow failed", zap.String("workflow", workflowId), zap.Error(err))
			}
		}()
		fired = append(fired, workflowId)
	}
	return fired, nil
}

func (e *Engine) run(ctx context.Context, wf *model.WorkflowDefinition, ec *model.ExecutionContext) {
	if len(wf.Conditions) > 0 {
		ok, err := e.evaluator.Evaluate(wf.Conditions, ec.Variables)
		if err != nil {
			ec.RecordError("", err)
			e.finish(ctx, ec, model.EXECUTION_STATE_ABORTED, event.WORKFLOW_FAILED)
			return
		}
		if !ok {
			e.finish(ctx, ec, model.EXECUTION_STATE_CONDITIONS_NOT_MET, event.WORKFLOW_COMPLETED)
			return
		}
	}
	ec.State = model.EXECUTION_STATE_RUNNING
	for i, action := range wf.Actions {
		ec.CurrentActionIndex = i
		result := e.dispatcher.ExecuteAction(ctx, action, ec)
		if result.Outcome != executor.OUTCOME_FAILED {
			continue
		}
		e.sink.Emit(event.Event{
			Type:        event.ACTION_FAILED,
			WorkflowId:  ec.WorkflowId,
			ExecutionId: ec.ExecutionId,
			ActionId:    action.Id,
		})
		if result.Abort {
			e.finish(ctx, ec, model.EXECUTION_STATE_ABORTED, event.WORKFLOW_FAILED)
			return
		}
	}
	e.finish(ctx, ec, model.EXECUTION_STATE_COMPLETED, event.WORKFLOW_COMPLETED)
}

// finish moves the run into its terminal state, persists the record and
// emits the terminal event. Persistence failures are logged, never
// propagated to the triggering caller.
func (e *Engine) finish(ctx context.Context, ec *model.ExecutionContext, state model.ExecutionState, eventType string) {
	ec.Complete(state)
	if err := e.logStore.Save(ctx, ec); err != nil {
		logger.Error("error persisting execution record",
			zap.String("workflow", ec.WorkflowId),
			zap.String("execution", ec.ExecutionId),
			zap.Error(err))
	}
	e.sink.Emit(event.Event{
		Type:             eventType,
		WorkflowId:       ec.WorkflowId,
		ExecutionId:      ec.ExecutionId,
		State:            string(state),
		Duration:         ec.Duration(),
		CompletedActions: len(ec.CompletedActions),
		FailedActions:    len(ec.FailedActions),
	})
	logger.Info("workflow finished",
		zap.String("workflow", ec.WorkflowId),
		zap.String("execution", ec.ExecutionId),
		zap.String("state", string(state)),
		zap.Duration("duration", ec.Duration()))
}
