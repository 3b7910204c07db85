package cron

import (
	"context"
	"time"

	"github.com/rajatch15/backend-cloud-functions/internal/domain/timer"
)

// TimerJobs fires the nightly report pipeline.
type TimerJobs struct {
	timerService timer.Service
	hour         int
	loc          *time.Location
}

func NewTimerJobs(timerService timer.Service, hour int, loc *time.Location) *TimerJobs {
	return &TimerJobs{
		timerService: timerService,
		hour:         hour,
		loc:          loc,
	}
}

func (j *TimerJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("nightly_timer", DailyAt(j.hour, j.loc), j.FireNightly)
}

// FireNightly rolls up yesterday and mails the payroll reports. The timer document makes
// repeated runs on one day no-ops.
func (j *TimerJobs) FireNightly(ctx context.Context) error {
	_, err := j.timerService.Fire(ctx, time.Now())
	return err
}
