package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rajatch15/backend-cloud-functions/internal/domain/propagation"
	"github.com/rajatch15/backend-cloud-functions/internal/handler/http/response"
)

type PropagationHandler interface {
	Purge(w http.ResponseWriter, r *http.Request)
	Propagate(w http.ResponseWriter, r *http.Request)
}

type propagationHandlerImpl struct {
	propagationService propagation.Service
	queue              propagation.Queue
}

func NewPropagationHandler(propagationService propagation.Service, queue propagation.Queue) PropagationHandler {
	return &propagationHandlerImpl{
		propagationService: propagationService,
		queue:              queue,
	}
}

// Purge implements PropagationHandler.
func (h *propagationHandlerImpl) Purge(w http.ResponseWriter, r *http.Request) {
	var req propagation.PurgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Purge decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.UID = chi.URLParam(r, "uid")

	before, err := req.Validate()
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.propagationService.PurgeAddendum(r.Context(), req.UID, before)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// Propagate implements PropagationHandler. The template is queued and pushed in the
// background.
func (h *propagationHandlerImpl) Propagate(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !h.queue.Enqueue(name) {
		response.HandleError(w, propagation.ErrQueueStopped)
		return
	}
	response.Accepted(w, "Propagation queued", map[string]string{"template": name})
}
