package document

import (
	"context"
	"fmt"

	"github.com/rajatch15/backend-cloud-functions/internal/domain/payroll"
	"github.com/rajatch15/backend-cloud-functions/internal/pkg/docstore"
)

type payrollRepositoryImpl struct {
	store docstore.Store
}

func NewPayrollRepository(store docstore.Store) payroll.Repository {
	return &payrollRepositoryImpl{store: store}
}

// GetInit implements payroll.Repository.
func (r *payrollRepositoryImpl) GetInit(ctx context.Context, officeID string, year, month int) (*payroll.Init, error) {
	id := payroll.InitID(officeID, year, month)
	snap, err := r.store.Get(ctx, docstore.NewRef(Inits, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get payroll init: %w", err)
	}
	init, err := decode[payroll.Init](snap)
	if err != nil || init == nil {
		return nil, err
	}
	init.ID = id
	return init, nil
}

// MergeLabels implements payroll.Repository.
func (r *payrollRepositoryImpl) MergeLabels(ctx context.Context, officeName, officeID string, year, month int, labels map[string]map[int]string) error {
	data, err := encode(&payroll.Init{
		Report:        payroll.ReportPayroll,
		Office:        officeName,
		OfficeID:      officeID,
		Month:         month,
		Year:          year,
		PayrollObject: labels,
	})
	if err != nil {
		return err
	}
	b := docstore.NewBatch()
	b.Merge(docstore.NewRef(Inits, payroll.InitID(officeID, year, month)), data)
	if err := r.store.Commit(ctx, b); err != nil {
		return fmt.Errorf("failed to merge payroll labels: %w", err)
	}
	return nil
}

// ListRecipients implements payroll.Repository.
func (r *payrollRepositoryImpl) ListRecipients(ctx context.Context, report string) ([]payroll.Recipient, error) {
	snaps, err := r.store.Query(ctx, docstore.From(Recipients).Where("report", docstore.OpEqual, report))
	if err != nil {
		return nil, fmt.Errorf("failed to list recipients: %w", err)
	}
	out := make([]payroll.Recipient, 0, len(snaps))
	for _, snap := range snaps {
		rec, err := decode[payroll.Recipient](snap)
		if err != nil {
			return nil, err
		}
		rec.ID = snap.Ref.ID
		out = append(out, *rec)
	}
	return out, nil
}
