package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/rajatch15/backend-cloud-functions/internal/domain/activity"
	"github.com/rajatch15/backend-cloud-functions/internal/handler/http/middleware"
	"github.com/rajatch15/backend-cloud-functions/internal/handler/http/response"
	"github.com/rajatch15/backend-cloud-functions/internal/pkg/apperror"
)

type ActivityHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Single(w http.ResponseWriter, r *http.Request)
	Unassign(w http.ResponseWriter, r *http.Request)
}

type activityHandlerImpl struct {
	activityService activity.Service
}

func NewActivityHandler(activityService activity.Service) ActivityHandler {
	return &activityHandlerImpl{
		activityService: activityService,
	}
}

// Create implements ActivityHandler.
func (h *activityHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		response.HandleError(w, apperror.MethodNotAllowed("%s is not allowed for the /create endpoint. Use POST.", r.Method))
		return
	}
	requester, ok := middleware.RequesterFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	var req activity.CreateActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Activity create decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.activityService.Create(r.Context(), req, requester)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Activity created", result)
}

// Single implements ActivityHandler.
func (h *activityHandlerImpl) Single(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		response.HandleError(w, apperror.MethodNotAllowed("%s is not allowed. Use 'POST'", r.Method))
		return
	}
	requester, ok := middleware.RequesterFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	var req activity.SingleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Activity single decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.activityService.Dispatch(r.Context(), req, requester)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if req.ActivityID == "" {
		response.Created(w, "Activity created", result)
		return
	}
	response.SuccessWithMessage(w, "Activity updated", result)
}

// Unassign implements ActivityHandler.
func (h *activityHandlerImpl) Unassign(w http.ResponseWriter, r *http.Request) {
	requester, ok := middleware.RequesterFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	var req activity.UnassignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Activity unassign decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.activityService.Unassign(r.Context(), req, requester)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Assignees removed", result)
}
