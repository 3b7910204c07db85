package document

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rajatch15/backend-cloud-functions/internal/domain/attendance"
	"github.com/rajatch15/backend-cloud-functions/internal/domain/template"
	"github.com/rajatch15/backend-cloud-functions/internal/pkg/docstore"
)

type attendanceRepositoryImpl struct {
	store docstore.Store
}

func NewAttendanceRepository(store docstore.Store) attendance.Repository {
	return &attendanceRepositoryImpl{store: store}
}

func monthlyRef(officeID, phone string, year, month int) docstore.Ref {
	return docstore.NewRef(OfficeCollection(officeID, Monthly), attendance.MonthlyID(phone, year, month))
}

// GetMonthly implements attendance.Repository.
func (r *attendanceRepositoryImpl) GetMonthly(ctx context.Context, officeID, phone string, year, month int) (*attendance.MonthlyAggregate, error) {
	snap, err := r.store.Get(ctx, monthlyRef(officeID, phone, year, month))
	if err != nil {
		return nil, fmt.Errorf("failed to get monthly aggregate: %w", err)
	}
	m, err := decode[attendance.MonthlyAggregate](snap)
	if err != nil || m == nil {
		return nil, err
	}
	m.ID = snap.Ref.ID
	return m, nil
}

// ListMonthly implements attendance.Repository.
func (r *attendanceRepositoryImpl) ListMonthly(ctx context.Context, officeID string, year, month int) ([]attendance.MonthlyAggregate, error) {
	q := docstore.From(OfficeCollection(officeID, Monthly)).
		Where("year", docstore.OpEqual, year).
		Where("month", docstore.OpEqual, month)
	snaps, err := r.store.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list monthly aggregates: %w", err)
	}
	out := make([]attendance.MonthlyAggregate, 0, len(snaps))
	for _, snap := range snaps {
		m, err := decode[attendance.MonthlyAggregate](snap)
		if err != nil {
			return nil, err
		}
		m.ID = snap.Ref.ID
		out = append(out, *m)
	}
	return out, nil
}

// ListCheckIns implements attendance.Repository.
func (r *attendanceRepositoryImpl) ListCheckIns(ctx context.Context, officeID, phone string, from, to time.Time, accurateOnly bool) ([]attendance.CheckIn, error) {
	q := docstore.From(OfficeCollection(officeID, Addendum)).
		Where("template", docstore.OpEqual, template.NameCheckIn).
		Where("user", docstore.OpEqual, phone).
		Where("timestamp", docstore.OpGreaterOrEqual, from.UnixMilli()).
		Where("timestamp", docstore.OpLess, to.UnixMilli())
	if accurateOnly {
		q = q.Where("distanceAccurate", docstore.OpEqual, true)
	}
	q = q.OrderBy("timestamp", docstore.Asc)

	snaps, err := r.store.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list check-ins: %w", err)
	}
	out := make([]attendance.CheckIn, 0, len(snaps))
	for _, snap := range snaps {
		ts, _ := snap.Float("timestamp")
		out = append(out, attendance.CheckIn{Timestamp: int64(ts), DistanceAccurate: snap.Bool("distanceAccurate")})
	}
	return out, nil
}

// SaveDays implements attendance.Repository.
func (r *attendanceRepositoryImpl) SaveDays(ctx context.Context, officeID string, entries []attendance.Entry, deletes []attendance.MonthKey) (int, error) {
	b := docstore.NewBatch()
	for _, e := range entries {
		status, err := encode(e.Status)
		if err != nil {
			return 0, err
		}
		b.Merge(monthlyRef(officeID, e.PhoneNumber, e.Year, e.Month), docstore.Data{
			"phoneNumber":  e.PhoneNumber,
			"month":        e.Month,
			"year":         e.Year,
			"statusObject": map[string]any{strconv.Itoa(e.Day): status},
		})
	}
	for _, k := range deletes {
		b.Delete(monthlyRef(officeID, k.PhoneNumber, k.Year, k.Month))
	}

	batches, err := docstore.CommitChunked(ctx, r.store, b.Mutations(), docstore.MaxBatchSize)
	if err != nil {
		return batches, fmt.Errorf("failed to save daily status: %w", err)
	}
	return batches, nil
}
