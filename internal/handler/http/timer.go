package http

import (
	"net/http"
	"time"

	"github.com/rajatch15/backend-cloud-functions/internal/domain/timer"
	"github.com/rajatch15/backend-cloud-functions/internal/handler/http/response"
)

type TimerHandler interface {
	Fire(w http.ResponseWriter, r *http.Request)
}

type timerHandlerImpl struct {
	timerService timer.Service
	now          func() time.Time
}

func NewTimerHandler(timerService timer.Service) TimerHandler {
	return &timerHandlerImpl{
		timerService: timerService,
		now:          time.Now,
	}
}

// Fire implements TimerHandler.
func (h *timerHandlerImpl) Fire(w http.ResponseWriter, r *http.Request) {
	result, err := h.timerService.Fire(r.Context(), h.now())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if result.AlreadySent {
		response.SuccessWithMessage(w, "Timer already fired today", result)
		return
	}
	response.Success(w, result)
}
