package timer

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajatch15/backend-cloud-functions/internal/domain/attendance"
	"github.com/rajatch15/backend-cloud-functions/internal/domain/payroll"
	"github.com/rajatch15/backend-cloud-functions/internal/pkg/docstore"
	"github.com/rajatch15/backend-cloud-functions/internal/repository/document"
)

type fakeRollup struct {
	offices []string
	errs    map[string]error
}

func (f *fakeRollup) ComputeDailyStatus(ctx context.Context, officeID string, reference time.Time) (*attendance.RollupResult, error) {
	f.offices = append(f.offices, officeID)
	if err := f.errs[officeID]; err != nil {
		return nil, err
	}
	return &attendance.RollupResult{OfficeID: officeID}, nil
}

type delivery struct {
	office string
	to     []string
}

type fakeReports struct {
	delivered []delivery
	buildErr  map[string]error
}

func (f *fakeReports) BuildReport(ctx context.Context, req payroll.BuildReportRequest) (*payroll.Report, error) {
	if err := f.buildErr[req.OfficeID]; err != nil {
		return nil, err
	}
	return &payroll.Report{OfficeID: req.OfficeID}, nil
}

func (f *fakeReports) RenderXLSX(report *payroll.Report) (*payroll.Artifact, error) {
	return &payroll.Artifact{}, nil
}

func (f *fakeReports) RenderCSV(report *payroll.Report) (*payroll.Artifact, error) {
	return &payroll.Artifact{}, nil
}

func (f *fakeReports) Deliver(ctx context.Context, report *payroll.Report, to []string) error {
	f.delivered = append(f.delivered, delivery{office: report.OfficeID, to: to})
	return nil
}

func seed(t *testing.T) *docstore.MemoryStore {
	t.Helper()
	store := docstore.NewMemoryStore()
	docs := map[string]docstore.Data{
		"Offices/o1": {"office": "Acme", "status": "CONFIRMED"},
		"Offices/o2": {"office": "Globex", "status": "CONFIRMED"},
		"Offices/o3": {"office": "Initech", "status": "CONFIRMED"},
		"Offices/o4": {"office": "Closed", "status": "CANCELLED"},

		"Recipients/r1": {"report": "payroll", "officeId": "o1", "office": "Acme", "include": []any{"hr@acme.test"}},
		"Recipients/r2": {"report": "payroll", "officeId": "o2", "office": "Globex"},
		"Recipients/r3": {"report": "payroll", "officeId": "o3", "office": "Initech", "status": "CANCELLED"},
		"Recipients/r4": {"report": "footprints", "officeId": "o1"},
	}
	b := docstore.NewBatch()
	for path, data := range docs {
		ref, err := docstore.ParsePath(path)
		require.NoError(t, err)
		b.Set(ref, data)
	}
	require.NoError(t, store.Commit(context.Background(), b))
	return store
}

func newTestService(store docstore.Store, rollup attendance.Service, reports payroll.Service) *TimerServiceImpl {
	return NewTimerService(
		document.NewTimerRepository(store),
		document.NewOfficeRepository(store),
		document.NewPayrollRepository(store),
		rollup,
		reports,
		Config{DefaultTimezone: "UTC", Recipients: []string{"payroll@corp.test"}},
	).(*TimerServiceImpl)
}

func get(t *testing.T, store docstore.Store, path string) *docstore.Snapshot {
	t.Helper()
	ref, err := docstore.ParsePath(path)
	require.NoError(t, err)
	snap, err := store.Get(context.Background(), ref)
	require.NoError(t, err)
	return snap
}

func TestFire(t *testing.T) {
	store := seed(t)
	rollup := &fakeRollup{errs: map[string]error{
		"o2": fmt.Errorf("%w: Globex", attendance.ErrNoRoster),
		"o3": errors.New("store unavailable"),
	}}
	reports := &fakeReports{}
	svc := newTestService(store, rollup, reports)
	now := time.Date(2024, 3, 10, 1, 0, 0, 0, time.UTC)

	result, err := svc.Fire(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, []string{"o1", "o2", "o3"}, rollup.offices, "cancelled offices are not rolled up")
	assert.Equal(t, 1, result.Offices)
	assert.Equal(t, []string{"o3"}, result.FailedOffices)
	assert.Equal(t, 2, result.Reports)
	assert.Equal(t, []delivery{
		{office: "o1", to: []string{"hr@acme.test"}},
		{office: "o2", to: []string{"payroll@corp.test"}},
	}, reports.delivered)

	timerDoc := get(t, store, "Timers/10-03-2024")
	assert.True(t, timerDoc.Bool("sent"))
	assert.True(t, timerDoc.Bool("done"))

	status := get(t, store, "Inits/daily-status-2024-03-10")
	assert.Equal(t, "daily status report", status.String("report"))
	assert.Equal(t, 2.0, status.Get("expectedRecipientTriggersCount"))
	assert.Equal(t, 2.0, status.Get("recipientsTriggeredToday"))
}

func TestFire_OncePerDay(t *testing.T) {
	store := seed(t)
	rollup := &fakeRollup{}
	svc := newTestService(store, rollup, &fakeReports{})
	now := time.Date(2024, 3, 10, 1, 0, 0, 0, time.UTC)

	_, err := svc.Fire(context.Background(), now)
	require.NoError(t, err)

	result, err := svc.Fire(context.Background(), now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.True(t, result.AlreadySent)
	assert.Len(t, rollup.offices, 3)
}

func TestFire_ReportFailureIsRecorded(t *testing.T) {
	store := seed(t)
	reports := &fakeReports{buildErr: map[string]error{"o1": payroll.ErrEmptyReport}}
	svc := newTestService(store, &fakeRollup{}, reports)

	result, err := svc.Fire(context.Background(), time.Date(2024, 3, 10, 1, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, []string{"o1"}, result.FailedReports)
	assert.Equal(t, 1, result.Reports)
	assert.Equal(t, 1.0, get(t, store, "Inits/daily-status-2024-03-10").Get("recipientsTriggeredToday"))
}
