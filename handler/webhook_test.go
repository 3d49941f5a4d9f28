package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/meridian-erp/automation/model"
	"github.com/stretchr/testify/require"
)

func TestWebhookHandler(t *testing.T) {
	for scenario, fn := range map[string]func(t *testing.T){
		"test validate url and method": testWebhookValidate,
		"test validate authentication": testWebhookValidateAuth,
		"test post with bearer token":  testWebhookPost,
		"test error status propagated": testWebhookErrorStatus,
	} {
		t.Run(scenario, fn)
	}
}

func testWebhookValidate(t *testing.T) {
	h := NewWebhookHandler()
	require.Error(t, h.Validate(map[string]any{}))
	require.Error(t, h.Validate(map[string]any{"url": "http://x", "method": "TRACE"}))
	require.NoError(t, h.Validate(map[string]any{"url": "http://x"}))
	require.NoError(t, h.Validate(map[string]any{"url": "http://x", "method": "put"}))
}

func testWebhookValidateAuth(t *testing.T) {
	h := NewWebhookHandler()
	require.Error(t, h.Validate(map[string]any{
		"url":            "http://x",
		"authentication": map[string]any{"type": "bearer"},
	}))
	require.Error(t, h.Validate(map[string]any{
		"url":            "http://x",
		"authentication": map[string]any{"type": "digest"},
	}))
	require.NoError(t, h.Validate(map[string]any{
		"url":            "http://x",
		"authentication": map[string]any{"type": "basic", "username": "u", "password": "p"},
	}))
}

func testWebhookPost(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"accepted": true})
	}))
	defer srv.Close()

	h := NewWebhookHandler()
	ec := model.NewExecutionContext("wf-1", map[string]any{"order_id": "o-42"}, "")
	out, err := h.Execute(context.Background(), ec, map[string]any{
		"url":     srv.URL,
		"payload": map[string]any{"orderId": "{{order_id}}"},
		"authentication": map[string]any{
			"type":  "bearer",
			"token": "secret-token",
		},
	})
	require.NoError(t, err)
	require.Equal(t, "Bearer secret-token", gotAuth)
	require.Equal(t, map[string]any{"orderId": "o-42"}, gotBody)
	require.Equal(t, http.StatusOK, out["statusCode"])
	require.Equal(t, map[string]any{"accepted": true}, out["body"])
}

func testWebhookErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	h := NewWebhookHandler()
	ec := model.NewExecutionContext("wf-1", nil, "")
	_, err := h.Execute(context.Background(), ec, map[string]any{"url": srv.URL})
	require.Error(t, err)
}
