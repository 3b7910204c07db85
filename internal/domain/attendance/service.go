package attendance

import (
	"context"
	"time"
)

type Service interface {
	// ComputeDailyStatus rolls up the day before reference in the office timezone.
	ComputeDailyStatus(ctx context.Context, officeID string, reference time.Time) (*RollupResult, error)
}
