package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/meridian-erp/automation/logger"
	"github.com/meridian-erp/automation/model"
	"github.com/meridian-erp/automation/util"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Runner triggers one workflow run. Errors are logged and swallowed here so
// one workflow's failure never stops the polling loop.
type Runner interface {
	TriggerWorkflow(ctx context.Context, workflowId string, triggerData map[string]any, userId string) (*model.ExecutionContext, error)
}

// DefinitionSource yields the active workflow definitions to poll.
type DefinitionSource interface {
	ListActiveDefinitions(ctx context.Context) ([]*model.WorkflowDefinition, error)
}

type Config struct {
	PollInterval time.Duration
	Tolerance    time.Duration
}

// Scheduler polls active schedule-triggered workflows and fires the ones
// whose next cron occurrence falls inside the tolerance window.
type Scheduler struct {
	conf      Config
	source    DefinitionSource
	runner    Runner
	wg        *sync.WaitGroup
	worker    *util.TickWorker
	parser    cron.Parser
	mu        sync.Mutex
	lastFired map[string]time.Time
	now       func() time.Time
}

func New(conf Config, source DefinitionSource, runner Runner, wg *sync.WaitGroup) *Scheduler {
	if conf.PollInterval <= 0 {
		conf.PollInterval = 60 * time.Second
	}
	if conf.Tolerance <= 0 {
		conf.Tolerance = 30 * time.Second
	}
	s := &Scheduler{
		conf:      conf,
		source:    source,
		runner:    runner,
		wg:        wg,
		parser:    cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow),
		lastFired: make(map[string]time.Time),
		now:       time.Now,
	}
	s.worker = util.NewTickWorker("schedule-poller", conf.PollInterval, s.tick, wg)
	return s
}

func (s *Scheduler) Start() {
	s.worker.Start()
}

func (s *Scheduler) Stop() {
	s.worker.Stop()
}

func (s *Scheduler) tick() {
	ctx := context.Background()
	defs, err := s.source.ListActiveDefinitions(ctx)
	if err != nil {
		logger.Error("error listing active workflows", zap.Error(err))
		return
	}
	now := s.now()
	scheduled := make(map[string]struct{})
	for _, wf := range defs {
		if wf.Trigger.Type != model.TRIGGER_TYPE_SCHEDULE || len(wf.Trigger.Schedule) == 0 {
			continue
		}
		scheduled[wf.Id] = struct{}{}
		s.evaluate(wf, now)
	}
	s.prune(scheduled)
}

// prune drops firing memory for workflows no longer actively scheduled so
// the map cannot grow without bound as workflows come and go.
func (s *Scheduler) prune(scheduled map[string]struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.lastFired {
		if _, ok := scheduled[id]; !ok {
			delete(s.lastFired, id)
		}
	}
}

func (s *Scheduler) evaluate(wf *model.WorkflowDefinition, now time.Time) {
	next, err := s.nextFireAfter(wf.Trigger.Schedule, now)
	if err != nil {
		cronErr := model.SchedulerCronError{WorkflowId: wf.Id, Schedule: wf.Trigger.Schedule, Cause: err}
		logger.Error("skipping workflow for this tick", zap.Error(cronErr))
		return
	}
	if next.Sub(now) > s.conf.Tolerance {
		return
	}
	if !s.markFired(wf.Id, next) {
		return
	}
	s.fire(wf)
}

func (s *Scheduler) nextFireAfter(schedule string, ref time.Time) (time.Time, error) {
	sched, err := s.parser.Parse(schedule)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(ref), nil
}

// markFired remembers the cron occurrence being fired so overlapping
// poll/tolerance windows cannot fire the same occurrence twice.
func (s *Scheduler) markFired(workflowId string, fireAt time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.lastFired[workflowId]; ok && !fireAt.After(prev) {
		return false
	}
	s.lastFired[workflowId] = fireAt
	return true
}

func (s *Scheduler) fire(wf *model.WorkflowDefinition) {
	triggerData := map[string]any{
		"trigger":  "scheduled",
		"schedule": wf.Trigger.Schedule,
	}
	logger.Info("firing scheduled workflow", zap.String("workflow", wf.Id), zap.String("schedule", wf.Trigger.Schedule))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if _, err := s.runner.TriggerWorkflow(context.Background(), wf.Id, triggerData, ""); err != nil {
			logger.Error("scheduled workflow trigger failed", zap.String("workflow", wf.Id), zap.Error(err))
		}
	}()
}
