package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rajatch15/backend-cloud-functions/internal/domain/template"
	"github.com/rajatch15/backend-cloud-functions/internal/handler/http/response"
)

type TemplateHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
}

type templateHandlerImpl struct {
	templateService template.Service
}

func NewTemplateHandler(templateService template.Service) TemplateHandler {
	return &templateHandlerImpl{
		templateService: templateService,
	}
}

// Create implements TemplateHandler.
func (h *templateHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req template.CreateTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Template create decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	t, err := h.templateService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Template created", t)
}

// Update implements TemplateHandler.
func (h *templateHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req template.UpdateTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Template update decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	t, err := h.templateService.Update(r.Context(), name, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Template updated", t)
}

// Get implements TemplateHandler.
func (h *templateHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.templateService.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, t)
}
