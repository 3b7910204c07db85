package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/rajatch15/backend-cloud-functions/internal/domain/payroll"
	"github.com/rajatch15/backend-cloud-functions/internal/handler/http/response"
)

type PayrollHandler interface {
	Download(w http.ResponseWriter, r *http.Request)
	Send(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.Service
}

func NewPayrollHandler(payrollService payroll.Service) PayrollHandler {
	return &payrollHandlerImpl{
		payrollService: payrollService,
	}
}

// Download implements PayrollHandler.
func (h *payrollHandlerImpl) Download(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := payroll.BuildReportRequest{
		OfficeID:   query.Get("officeId"),
		CycleStart: query.Get("start"),
		CycleEnd:   query.Get("end"),
		Format:     query.Get("format"),
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	report, err := h.payrollService.BuildReport(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	render := h.payrollService.RenderXLSX
	if req.Format == payroll.FormatCSV {
		render = h.payrollService.RenderCSV
	}
	artifact, err := render(report)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Attachment(w, artifact.FileName, artifact.ContentType, artifact.Content)
}

// Send implements PayrollHandler.
func (h *payrollHandlerImpl) Send(w http.ResponseWriter, r *http.Request) {
	var req payroll.SendReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Payroll send decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	report, err := h.payrollService.BuildReport(r.Context(), req.BuildReportRequest)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if err := h.payrollService.Deliver(r.Context(), report, req.To); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Report sent", map[string]any{
		"office":    report.Office,
		"employees": len(report.Rows),
		"to":        req.To,
	})
}
