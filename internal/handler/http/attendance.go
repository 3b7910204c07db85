package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/rajatch15/backend-cloud-functions/internal/domain/attendance"
	"github.com/rajatch15/backend-cloud-functions/internal/handler/http/response"
)

type AttendanceHandler interface {
	Rollup(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.Service
	now               func() time.Time
}

func NewAttendanceHandler(attendanceService attendance.Service) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
		now:               time.Now,
	}
}

// Rollup implements AttendanceHandler.
func (h *attendanceHandlerImpl) Rollup(w http.ResponseWriter, r *http.Request) {
	var req attendance.RollupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Rollup decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.ComputeDailyStatus(r.Context(), req.OfficeID, req.Reference(h.now()))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}
