package timer

import (
	"context"
	"time"
)

type Service interface {
	// Fire runs the nightly pipeline once per day.
	Fire(ctx context.Context, now time.Time) (*FireResult, error)
}
