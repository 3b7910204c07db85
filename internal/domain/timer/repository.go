package timer

import "context"

type Repository interface {
	// Claim sets the sent flag of the timer and reports whether it was already set.
	Claim(ctx context.Context, id string, timestamp int64) (alreadySent bool, err error)
	Complete(ctx context.Context, id string, timestamp int64) error
	SaveDailyStatus(ctx context.Context, status DailyStatus) error
}
