package document

import (
	"context"
	"fmt"

	"github.com/rajatch15/backend-cloud-functions/internal/domain/activity"
	"github.com/rajatch15/backend-cloud-functions/internal/domain/office"
	"github.com/rajatch15/backend-cloud-functions/internal/domain/template"
	"github.com/rajatch15/backend-cloud-functions/internal/pkg/docstore"
)

const pageSize = docstore.MaxBatchSize

type officeRepositoryImpl struct {
	store docstore.Store
}

func NewOfficeRepository(store docstore.Store) office.Repository {
	return &officeRepositoryImpl{store: store}
}

func toOffice(snap *docstore.Snapshot) (*office.Office, error) {
	o, err := decode[office.Office](snap)
	if err != nil || o == nil {
		return nil, err
	}
	o.ID = snap.Ref.ID
	return o, nil
}

// GetByID implements office.Repository.
func (r *officeRepositoryImpl) GetByID(ctx context.Context, id string) (*office.Office, error) {
	snap, err := r.store.Get(ctx, OfficeRef(id))
	if err != nil {
		return nil, fmt.Errorf("failed to get office: %w", err)
	}
	o, err := toOffice(snap)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, office.ErrOfficeNotFound
	}
	return o, nil
}

// GetByName implements office.Repository.
func (r *officeRepositoryImpl) GetByName(ctx context.Context, name string) (*office.Office, error) {
	q := docstore.From(Offices).Where(attachmentValue("Name"), docstore.OpEqual, name)
	snap, err := docstore.First(ctx, r.store, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query office by name: %w", err)
	}
	if snap == nil {
		return nil, office.ErrOfficeNotFound
	}
	return toOffice(snap)
}

// ListActive implements office.Repository.
func (r *officeRepositoryImpl) ListActive(ctx context.Context) ([]*office.Office, error) {
	var offices []*office.Office
	q := docstore.From(Offices).OrderBy(docstore.DocumentID, docstore.Asc).Limit(pageSize)
	for {
		page, err := r.store.Query(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("failed to list offices: %w", err)
		}
		for _, snap := range page {
			o, err := toOffice(snap)
			if err != nil {
				return nil, err
			}
			if !o.Cancelled() {
				offices = append(offices, o)
			}
		}
		if len(page) < pageSize {
			return offices, nil
		}
		q = q.StartAfter(page[len(page)-1])
	}
}

// ListBranches implements office.Repository.
func (r *officeRepositoryImpl) ListBranches(ctx context.Context, officeID string) ([]office.Branch, error) {
	q := docstore.From(OfficeCollection(officeID, Activities)).
		Where("template", docstore.OpEqual, template.NameBranch)
	snaps, err := r.store.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}

	branches := make([]office.Branch, 0, len(snaps))
	for _, snap := range snaps {
		a, err := decode[activity.Activity](snap)
		if err != nil {
			return nil, err
		}
		if a.Status == template.StatusCancelled {
			continue
		}
		b := office.Branch{Name: a.Attachment.String("Name")}
		for _, s := range a.Schedule {
			if !s.Set() {
				continue
			}
			b.Holidays = append(b.Holidays, office.Period{Name: s.Name, Start: s.StartTime.Time(), End: s.EndTime.Time()})
		}
		branches = append(branches, b)
	}
	return branches, nil
}
