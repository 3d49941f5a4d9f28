package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/meridian-erp/automation/logger"
	"github.com/meridian-erp/automation/model"
	"go.uber.org/zap"
)

type triggerRequest struct {
	TriggerData map[string]any `json:"triggerData"`
	UserId      string         `json:"userId"`
}

func (s *Server) HandleTriggerWorkflow(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	workflowId := vars["id"]
	var req triggerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	defer r.Body.Close()
	ec, err := s.engine.TriggerWorkflow(r.Context(), workflowId, req.TriggerData, req.UserId)
	if err != nil {
		logger.Error("error triggering workflow", zap.String("workflow", workflowId), zap.Error(err))
		var notFound model.WorkflowNotFoundError
		var notActive model.WorkflowNotActiveError
		switch {
		case errors.As(err, &notFound):
			respondWithError(w, http.StatusNotFound, err.Error())
		case errors.As(err, &notActive):
			respondWithError(w, http.StatusConflict, err.Error())
		default:
			respondWithError(w, http.StatusInternalServerError, "error triggering workflow")
		}
		return
	}
	respondWithJSON(w, http.StatusOK, ec)
}

// HandleWebhook runs a workflow from an inbound webhook call. The raw JSON
// body becomes the trigger data.
func (s *Server) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	workflowId := vars["id"]
	payload := make(map[string]any)
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid webhook payload")
			return
		}
		defer r.Body.Close()
	}
	payload["trigger"] = "webhook"
	ec, err := s.engine.TriggerWorkflow(r.Context(), workflowId, payload, "")
	if err != nil {
		logger.Error("error handling webhook", zap.String("workflow", workflowId), zap.Error(err))
		var notFound model.WorkflowNotFoundError
		if errors.As(err, &notFound) {
			respondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		respondWithError(w, http.StatusBadRequest, "error handling webhook")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{
		"executionId": ec.ExecutionId,
		"state":       ec.State,
	})
}

func (s *Server) HandleEvent(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	eventName := vars["name"]
	payload := make(map[string]any)
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid event payload")
			return
		}
		defer r.Body.Close()
	}
	fired, err := s.engine.TriggerEvent(r.Context(), eventName, payload)
	if err != nil {
		logger.Error("error publishing event", zap.String("event", eventName), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "error publishing event")
		return
	}
	respondWithJSON(w, http.StatusAccepted, map[string]any{"workflows": fired})
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "up"})
}
