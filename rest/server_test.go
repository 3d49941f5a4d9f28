package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/meridian-erp/automation/cache"
	"github.com/meridian-erp/automation/engine"
	"github.com/meridian-erp/automation/event"
	"github.com/meridian-erp/automation/handler"
	"github.com/meridian-erp/automation/model"
	"github.com/meridian-erp/automation/persistence/memory"
	"github.com/stretchr/testify/require"
)

type echoHandler struct{}

func (echoHandler) Type() string                         { return "echo" }
func (echoHandler) Validate(config map[string]any) error { return nil }
func (echoHandler) Execute(ctx context.Context, ec *model.ExecutionContext, config map[string]any) (map[string]any, error) {
	return map[string]any{"echoed": true}, nil
}

func newTestServer(t *testing.T) (*Server, *memory.WorkflowRepository) {
	t.Helper()
	registry := handler.NewRegistry()
	registry.Register(echoHandler{})
	repository := memory.NewWorkflowRepository()
	var wg sync.WaitGroup
	eng := engine.New(engine.Config{
		Repository: repository,
		LogStore:   memory.NewExecutionLogStore(),
		Cache:      cache.NewDefinitionCache(5 * time.Minute),
		Registry:   registry,
		Sink:       event.NopSink{},
	}, &wg)
	srv, err := NewServer(0, eng)
	require.NoError(t, err)
	return srv, repository
}

func TestServer(t *testing.T) {
	for scenario, fn := range map[string]func(t *testing.T, srv *Server, repo *memory.WorkflowRepository){
		"test trigger workflow":     testTriggerEndpoint,
		"test trigger unknown 404":  testTriggerUnknown,
		"test trigger inactive 409": testTriggerInactive,
		"test webhook trigger":      testWebhookEndpoint,
		"test health":               testHealthEndpoint,
	} {
		t.Run(scenario, func(t *testing.T) {
			srv, repo := newTestServer(t)
			fn(t, srv, repo)
		})
	}
}

func putWorkflow(repo *memory.WorkflowRepository, id string, status model.WorkflowStatus) {
	repo.Put(&model.WorkflowDefinition{
		Id:     id,
		Status: status,
		Actions: []model.ActionConfig{
			{Id: "a1", Type: "echo", RetryCount: 1},
		},
	})
}

func testTriggerEndpoint(t *testing.T, srv *Server, repo *memory.WorkflowRepository) {
	putWorkflow(repo, "wf-1", model.WORKFLOW_STATUS_ACTIVE)

	body, _ := json.Marshal(map[string]any{
		"triggerData": map[string]any{"total": 100},
		"userId":      "u-1",
	})
	req := httptest.NewRequest(http.MethodPost, "/workflow/wf-1/trigger", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var ec model.ExecutionContext
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ec))
	require.Equal(t, model.EXECUTION_STATE_COMPLETED, ec.State)
	require.Equal(t, "u-1", ec.UserId)
	require.Equal(t, []string{"a1"}, ec.CompletedActions)
}

func testTriggerUnknown(t *testing.T, srv *Server, repo *memory.WorkflowRepository) {
	req := httptest.NewRequest(http.MethodPost, "/workflow/nope/trigger", bytes.NewReader([]byte("{}")))
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func testTriggerInactive(t *testing.T, srv *Server, repo *memory.WorkflowRepository) {
	putWorkflow(repo, "wf-paused", model.WORKFLOW_STATUS_PAUSED)

	req := httptest.NewRequest(http.MethodPost, "/workflow/wf-paused/trigger", bytes.NewReader([]byte("{}")))
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusConflict, rec.Code)
}

func testWebhookEndpoint(t *testing.T, srv *Server, repo *memory.WorkflowRepository) {
	putWorkflow(repo, "wf-hook", model.WORKFLOW_STATUS_ACTIVE)

	body := []byte(`{"invoiceId":"inv-9"}`)
	req := httptest.NewRequest(http.MethodPost, "/webhook/wf-hook", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, string(model.EXECUTION_STATE_COMPLETED), resp["state"])
	require.NotEmpty(t, resp["executionId"])
}

func testHealthEndpoint(t *testing.T, srv *Server, repo *memory.WorkflowRepository) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
