package document

import (
	"context"
	"fmt"

	"github.com/rajatch15/backend-cloud-functions/internal/domain/timer"
	"github.com/rajatch15/backend-cloud-functions/internal/pkg/docstore"
)

type timerRepositoryImpl struct {
	store docstore.Store
}

func NewTimerRepository(store docstore.Store) timer.Repository {
	return &timerRepositoryImpl{store: store}
}

// Claim implements timer.Repository.
func (r *timerRepositoryImpl) Claim(ctx context.Context, id string, timestamp int64) (bool, error) {
	ref := docstore.NewRef(Timers, id)
	snap, err := r.store.Get(ctx, ref)
	if err != nil {
		return false, fmt.Errorf("failed to get timer: %w", err)
	}
	if snap.Bool("sent") {
		return true, nil
	}
	b := docstore.NewBatch()
	b.Merge(ref, docstore.Data{"sent": true, "timestamp": timestamp})
	if err := r.store.Commit(ctx, b); err != nil {
		return false, fmt.Errorf("failed to claim timer: %w", err)
	}
	return false, nil
}

// Complete implements timer.Repository.
func (r *timerRepositoryImpl) Complete(ctx context.Context, id string, timestamp int64) error {
	b := docstore.NewBatch()
	b.Merge(docstore.NewRef(Timers, id), docstore.Data{"done": true, "completedAt": timestamp})
	if err := r.store.Commit(ctx, b); err != nil {
		return fmt.Errorf("failed to complete timer: %w", err)
	}
	return nil
}

// SaveDailyStatus implements timer.Repository.
func (r *timerRepositoryImpl) SaveDailyStatus(ctx context.Context, status timer.DailyStatus) error {
	data, err := encode(status)
	if err != nil {
		return err
	}
	b := docstore.NewBatch()
	b.Merge(docstore.NewRef(Inits, status.ID), data)
	if err := r.store.Commit(ctx, b); err != nil {
		return fmt.Errorf("failed to save daily status: %w", err)
	}
	return nil
}
