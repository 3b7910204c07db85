package attendance

import (
	"context"
	"time"
)

type Repository interface {
	// GetMonthly returns nil when the aggregate does not exist.
	GetMonthly(ctx context.Context, officeID, phone string, year, month int) (*MonthlyAggregate, error)
	ListMonthly(ctx context.Context, officeID string, year, month int) ([]MonthlyAggregate, error)

	// ListCheckIns returns check-ins of phone in [from, to) ordered by timestamp.
	ListCheckIns(ctx context.Context, officeID, phone string, from, to time.Time, accurateOnly bool) ([]CheckIn, error)

	// SaveDays merges entries into their aggregates and deletes the listed aggregates in
	// sequential batches. It returns the number of batches committed.
	SaveDays(ctx context.Context, officeID string, entries []Entry, deletes []MonthKey) (int, error)
}
