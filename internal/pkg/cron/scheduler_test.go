package cron

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rajatch15/backend-cloud-functions/internal/domain/timer"
)

func TestDailyAt(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	schedule := DailyAt(1, loc)

	before := time.Date(2024, 3, 10, 0, 30, 0, 0, loc)
	assert.Equal(t, time.Date(2024, 3, 10, 1, 0, 0, 0, loc), schedule(before))

	at := time.Date(2024, 3, 10, 1, 0, 0, 0, loc)
	assert.Equal(t, time.Date(2024, 3, 11, 1, 0, 0, 0, loc), schedule(at))

	endOfMonth := time.Date(2024, 3, 31, 23, 0, 0, 0, loc)
	assert.Equal(t, time.Date(2024, 4, 1, 1, 0, 0, 0, loc), schedule(endOfMonth))
}

func TestScheduler_RunsUntilStopped(t *testing.T) {
	s := NewScheduler()
	var runs atomic.Int32
	s.AddJob("tick", Every(5*time.Millisecond), func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})

	s.Start()
	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, time.Second, 5*time.Millisecond)
	s.Stop()

	stopped := runs.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, runs.Load())
}

type countingTimer struct {
	fired atomic.Int32
}

func (c *countingTimer) Fire(ctx context.Context, now time.Time) (*timer.FireResult, error) {
	c.fired.Add(1)
	return &timer.FireResult{}, nil
}

func TestTimerJobs_RegisterJobs(t *testing.T) {
	s := NewScheduler()
	svc := &countingTimer{}
	NewTimerJobs(svc, 1, time.UTC).RegisterJobs(s)

	s.RunOnce(context.Background())
	assert.Equal(t, int32(1), svc.fired.Load())
}
