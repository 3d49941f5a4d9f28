package agent

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/meridian-erp/automation/cache"
	"github.com/meridian-erp/automation/config"
	"github.com/meridian-erp/automation/engine"
	"github.com/meridian-erp/automation/event"
	"github.com/meridian-erp/automation/handler"
	"github.com/meridian-erp/automation/logger"
	"github.com/meridian-erp/automation/persistence"
	"github.com/meridian-erp/automation/persistence/memory"
	"github.com/meridian-erp/automation/persistence/redis"
	"github.com/meridian-erp/automation/rest"
)

// Agent wires storage, the handler registry, the engine and the http server
// together and owns their lifecycle.
type Agent struct {
	Config       config.Config
	repository   persistence.WorkflowRepository
	logStore     persistence.ExecutionLogStore
	registry     *handler.Registry
	engine       *engine.Engine
	httpServer   *rest.Server
	shutdown     bool
	shutdowns    chan struct{}
	shutdownLock sync.Mutex
	wg           sync.WaitGroup
}

func New(config config.Config) (*Agent, error) {
	a := &Agent{
		Config:    config,
		shutdowns: make(chan struct{}),
	}
	setup := []func() error{
		a.setupStorage,
		a.setupHandlerRegistry,
		a.setupEngine,
		a.setupHttpServer,
	}
	for _, fn := range setup {
		if err := fn(); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (a *Agent) setupStorage() error {
	switch a.Config.StorageType {
	case config.STORAGE_TYPE_REDIS:
		rdConf := redis.Config{
			Addrs:     a.Config.RedisConfig.Addrs,
			Namespace: a.Config.RedisConfig.Namespace,
		}
		a.repository = redis.NewWorkflowRepository(rdConf)
		a.logStore = redis.NewExecutionLogStore(rdConf)
	case config.STORAGE_TYPE_INMEM:
		a.repository = memory.NewWorkflowRepository()
		a.logStore = memory.NewExecutionLogStore()
	default:
		return fmt.Errorf("unsupported storage type %s", a.Config.StorageType)
	}
	return nil
}

func (a *Agent) setupHandlerRegistry() error {
	a.registry = handler.NewRegistry()
	handlers := []handler.Handler{
		handler.NewEmailHandler(handler.NewLogMailer()),
		handler.NewNotificationHandler(handler.NewLogNotifier()),
		handler.NewWebhookHandler(),
		handler.NewDatabaseUpdateHandler(handler.NewLogEntityStore()),
		handler.NewApprovalHandler(handler.NewLogApprovals()),
		handler.NewAssignHandler(handler.NewLogAssigner()),
		handler.NewCalculateHandler(),
		handler.NewTransformHandler(),
	}
	for _, h := range handlers {
		a.registry.Register(h)
	}
	return nil
}

func (a *Agent) setupEngine() error {
	a.engine = engine.New(engine.Config{
		Repository:        a.repository,
		LogStore:          a.logStore,
		Cache:             cache.NewDefinitionCache(a.Config.CacheTTL),
		Registry:          a.registry,
		Sink:              event.NewLogSink(),
		CacheTTL:          a.Config.CacheTTL,
		PollInterval:      a.Config.PollInterval,
		ScheduleTolerance: a.Config.ScheduleTolerance,
	}, &a.wg)
	return nil
}

func (a *Agent) setupHttpServer() error {
	var err error
	a.httpServer, err = rest.NewServer(a.Config.HttpPort, a.engine)
	if err != nil {
		return err
	}
	return nil
}

func (a *Agent) Start() error {
	if err := a.engine.Start(context.Background()); err != nil {
		return err
	}
	go func() {
		if err := a.httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			_ = a.Shutdown()
			panic(err)
		}
	}()
	return nil
}

func (a *Agent) Shutdown() error {
	logger.Info("shutting down server")
	a.shutdownLock.Lock()
	defer a.shutdownLock.Unlock()
	if a.shutdown {
		return nil
	}
	a.shutdown = true
	close(a.shutdowns)

	shutdown := []func() error{
		a.engine.Stop,
		a.httpServer.Stop,
	}
	for _, fn := range shutdown {
		if err := fn(); err != nil {
			return err
		}
	}
	a.wg.Wait()
	return nil
}
