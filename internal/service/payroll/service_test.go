package payroll

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/rajatch15/backend-cloud-functions/internal/domain/payroll"
	"github.com/rajatch15/backend-cloud-functions/internal/pkg/apperror"
	"github.com/rajatch15/backend-cloud-functions/internal/pkg/docstore"
	"github.com/rajatch15/backend-cloud-functions/internal/pkg/email"
	"github.com/rajatch15/backend-cloud-functions/internal/pkg/storage"
	"github.com/rajatch15/backend-cloud-functions/internal/repository/document"
)

type sentReport struct {
	to          []string
	data        email.ReportEmail
	attachments []email.Attachment
}

type recordingMailer struct {
	sent []sentReport
	err  error
}

func (m *recordingMailer) SendReport(ctx context.Context, to []string, data email.ReportEmail, attachments ...email.Attachment) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentReport{to: to, data: data, attachments: attachments})
	return nil
}

func status(first, last string, checkIns int, value float64) docstore.Data {
	return docstore.Data{"firstCheckIn": first, "lastCheckIn": last, "numberOfCheckIns": checkIns, "statusForDay": value}
}

func seedPayroll(t *testing.T) *docstore.MemoryStore {
	t.Helper()
	store := docstore.NewMemoryStore()
	docs := map[string]docstore.Data{
		"Offices/o1": {
			"office": "Acme",
			"status": "CONFIRMED",
			"attachment": docstore.Data{
				"First Day Of Monthly Cycle": docstore.Data{"type": "number", "value": 26},
			},
			"employeesData": docstore.Data{
				"+911": docstore.Data{
					"Name":             "Asha",
					"Employee Code":    "E1",
					"Department":       "Sales",
					"Base Location":    "HQ",
					"Daily Start Time": "09:00",
					"createTime":       time.Date(2023, 7, 14, 8, 0, 0, 0, time.UTC).UnixMilli(),
				},
				"+912": docstore.Data{"Name": "bala", "Department": "Ops"},
				"+913": docstore.Data{"Name": "Chitra"},
			},
		},
		"Offices/o2": {"office": "Empty Co", "status": "CONFIRMED"},
		"Offices/o1/Monthly/+911-2024-2": {
			"phoneNumber": "+911", "month": 2, "year": 2024,
			"statusObject": docstore.Data{
				"28": status("09:00", "18:00", 4, 1),
				"29": status("10:00", "18:30", 3, 1),
			},
		},
		"Offices/o1/Monthly/+911-2024-3": {
			"phoneNumber": "+911", "month": 3, "year": 2024,
			"statusObject": docstore.Data{
				"1": docstore.Data{"weeklyOff": true, "statusForDay": 1},
				"2": status("09:00", "14:00", 2, 0.5),
			},
		},
		"Offices/o1/Monthly/+912-2024-2": {
			"phoneNumber": "+912", "month": 2, "year": 2024,
			"statusObject": docstore.Data{
				"28": docstore.Data{"holiday": true, "statusForDay": 1},
				"29": docstore.Data{"blank": true},
			},
		},
		"Offices/o1/Monthly/+912-2024-3": {
			"phoneNumber": "+912", "month": 3, "year": 2024,
			"statusObject": docstore.Data{
				"1": docstore.Data{"onAr": true, "statusForDay": 1},
				"2": status("09:00", "10:00", 2, 0.25),
			},
		},
		"Inits/payroll-o1-2024-3": {
			"report":        "payroll",
			"officeId":      "o1",
			"payrollObject": docstore.Data{"+912": docstore.Data{"2": "LEAVE - sick"}},
		},
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

func newTestService(t *testing.T, store docstore.Store, mailer email.EmailService) (*PayrollServiceImpl, storage.FileStorage) {
	t.Helper()
	files, err := storage.NewLocalStorage(t.TempDir(), "http://localhost/reports")
	require.NoError(t, err)
	svc := NewPayrollService(
		document.NewOfficeRepository(store),
		document.NewAttendanceRepository(store),
		document.NewPayrollRepository(store),
		files,
		mailer,
		Config{DefaultTimezone: "UTC"},
	).(*PayrollServiceImpl)
	svc.now = func() time.Time { return time.Date(2024, 3, 3, 9, 0, 0, 0, time.UTC) }
	return svc, files
}

func buildCycle(t *testing.T, svc *PayrollServiceImpl) *payroll.Report {
	t.Helper()
	report, err := svc.BuildReport(context.Background(), payroll.BuildReportRequest{
		OfficeID:   "o1",
		CycleStart: "2024-02-28",
		CycleEnd:   "2024-03-02",
	})
	require.NoError(t, err)
	return report
}

func TestBuildReport(t *testing.T) {
	svc, _ := newTestService(t, seedPayroll(t), &recordingMailer{})
	report := buildCycle(t, svc)

	headers := make([]string, 0, len(report.Days))
	for _, d := range report.Days {
		headers = append(headers, d.Header())
	}
	assert.Equal(t, []string{"28-Feb", "29-Feb", "1-Mar", "2-Mar"}, headers)
	require.Len(t, report.Rows, 3)

	asha := report.Rows[0]
	assert.Equal(t, "Asha", asha.Name)
	assert.Equal(t, "14-Jul-2023", asha.LiveSince)
	assert.Equal(t, "Employee Contact:  | Department: Sales | Base Location: HQ", asha.Details)
	assert.Equal(t, []float64{1, 1, 1, 0.5}, asha.PayDay)
	assert.Equal(t, []string{"09:00 to 18:00, 4", "10:00 to 18:30, 3", "WEEKLY OFF", "09:00 to 14:00, 2"}, asha.Timings)
	assert.Equal(t, []string{"FULL DAY", "LATE", "WEEKLY OFF", "HALF DAY"}, asha.Labels)
	assert.Equal(t, 3.5, asha.TotalPayableDays)
	assert.Equal(t, payroll.Counts{FullDay: 1, HalfDay: 1, Late: 1, WeeklyOff: 1}, asha.Counts)

	bala := report.Rows[1]
	assert.Equal(t, "bala", bala.Name, "names are ordered without regard to case")
	assert.Equal(t, []float64{1, 0, 1, 1}, bala.PayDay)
	assert.Equal(t, []string{"HOLIDAY", "-- to --, 0", "ON DUTY", "ON LEAVE"}, bala.Timings)
	assert.Equal(t, []string{"HOLIDAY", "BLANK", "ON DUTY", "LEAVE - sick"}, bala.Labels)
	assert.Equal(t, 3.0, bala.TotalPayableDays)

	chitra := report.Rows[2]
	assert.Equal(t, []float64{0, 0, 0, 0}, chitra.PayDay)
	assert.Equal(t, 4, chitra.Counts.Blank)
	assert.Empty(t, chitra.LiveSince)
}

func TestBuildReport_MergesLabels(t *testing.T) {
	store := seedPayroll(t)
	svc, _ := newTestService(t, store, &recordingMailer{})
	buildCycle(t, svc)

	repo := document.NewPayrollRepository(store)
	ctx := context.Background()

	feb, err := repo.GetInit(ctx, "o1", 2024, 2)
	require.NoError(t, err)
	require.NotNil(t, feb)
	assert.Equal(t, "FULL DAY", feb.Label("+911", 28))
	assert.Equal(t, "BLANK", feb.Label("+913", 29))

	mar, err := repo.GetInit(ctx, "o1", 2024, 3)
	require.NoError(t, err)
	assert.Equal(t, "LEAVE - sick", mar.Label("+912", 2))
	assert.Equal(t, "HALF DAY", mar.Label("+911", 2))
	assert.Equal(t, "o1", mar.OfficeID)

	// Building again reads back its own labels and gives the same report
	again := buildCycle(t, svc)
	assert.Equal(t, []string{"HOLIDAY", "BLANK", "ON DUTY", "LEAVE - sick"}, again.Rows[1].Labels)
}

func TestBuildReport_DefaultCycle(t *testing.T) {
	svc, _ := newTestService(t, seedPayroll(t), &recordingMailer{})

	report, err := svc.BuildReport(context.Background(), payroll.BuildReportRequest{OfficeID: "o1"})
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 2, 26, 0, 0, 0, 0, time.UTC), report.CycleStart)
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), report.CycleEnd)
	assert.Len(t, report.Days, 6)
}

func TestBuildReport_Errors(t *testing.T) {
	svc, _ := newTestService(t, seedPayroll(t), &recordingMailer{})
	ctx := context.Background()

	_, err := svc.BuildReport(ctx, payroll.BuildReportRequest{OfficeID: "missing"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = svc.BuildReport(ctx, payroll.BuildReportRequest{OfficeID: "o2"})
	assert.ErrorIs(t, err, payroll.ErrEmptyReport)

	_, err = svc.BuildReport(ctx, payroll.BuildReportRequest{OfficeID: "o1", CycleStart: "2024-03-05"})
	assert.ErrorIs(t, err, apperror.ErrBadRequest, "start after the default end")

	_, err = svc.BuildReport(ctx, payroll.BuildReportRequest{OfficeID: "o1", CycleStart: "03/01/2024"})
	assert.Error(t, err)
}

func TestRenderXLSX(t *testing.T) {
	svc, _ := newTestService(t, seedPayroll(t), &recordingMailer{})
	report := buildCycle(t, svc)

	artifact, err := svc.RenderXLSX(report)
	require.NoError(t, err)
	assert.Equal(t, "Payroll Report_Acme_02-Mar-2024.xlsx", artifact.FileName)

	f, err := excelize.OpenReader(bytes.NewReader(artifact.Content))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{"PayDay", "PayDay Timings"}, f.GetSheetList())

	rows, err := f.GetRows("PayDay")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Employee Name", "Employee Code", "Live Since", "28-Feb", "29-Feb", "1-Mar", "2-Mar", "Total Payable Days", "Employee Details"}, rows[0])
	assert.Equal(t, []string{"Asha", "E1", "14-Jul-2023", "1", "1", "1", "0.5", "3.5"}, rows[1][:8])

	timings, err := f.GetRows("PayDay Timings")
	require.NoError(t, err)
	assert.Equal(t, []string{"bala", "HOLIDAY", "-- to --, 0", "ON DUTY", "ON LEAVE"}, timings[2])
}

func TestRenderCSV(t *testing.T) {
	svc, _ := newTestService(t, seedPayroll(t), &recordingMailer{})
	report := buildCycle(t, svc)

	artifact, err := svc.RenderCSV(report)
	require.NoError(t, err)
	assert.Equal(t, "Payroll Report_Acme_02-Mar-2024.csv", artifact.FileName)

	records, err := csv.NewReader(bytes.NewReader(artifact.Content)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, []string{
		"Employee Name", "Employee Contact", "Department", "Base Location", "Live Since",
		"28-Feb", "29-Feb", "1-Mar", "2-Mar",
		"FULL DAY", "HALF DAY", "LEAVE", "HOLIDAY", "BLANK", "LATE", "ON DUTY", "WEEKLY OFF", "TOTAL",
	}, records[0])
	assert.Equal(t, []string{
		"Asha", "+911", "Sales", "HQ", "14-Jul-2023",
		"FULL DAY", "LATE", "WEEKLY OFF", "HALF DAY",
		"1", "1", "0", "0", "0", "1", "0", "1", "3.5",
	}, records[1])
}

func TestDeliver(t *testing.T) {
	mailer := &recordingMailer{}
	svc, files := newTestService(t, seedPayroll(t), mailer)
	report := buildCycle(t, svc)
	ctx := context.Background()

	require.NoError(t, svc.Deliver(ctx, report, []string{"hr@acme.test"}))

	require.Len(t, mailer.sent, 1)
	sent := mailer.sent[0]
	assert.Equal(t, []string{"hr@acme.test"}, sent.to)
	assert.Equal(t, email.ReportEmail{Report: "Payroll", Office: "Acme", Period: "02-Mar-2024", Employees: 3}, sent.data)
	require.Len(t, sent.attachments, 2)
	assert.Equal(t, "Payroll Report_Acme_02-Mar-2024.xlsx", sent.attachments[0].FileName)
	assert.Equal(t, "Payroll Report_Acme_02-Mar-2024.csv", sent.attachments[1].FileName)

	for _, a := range sent.attachments {
		ok, err := files.Exists(ctx, "payroll/o1/"+a.FileName)
		require.NoError(t, err)
		assert.True(t, ok, a.FileName)
	}
}

func TestDeliver_Failures(t *testing.T) {
	mailer := &recordingMailer{err: errors.New("smtp down")}
	svc, _ := newTestService(t, seedPayroll(t), mailer)
	report := buildCycle(t, svc)

	assert.ErrorIs(t, svc.Deliver(context.Background(), report, nil), payroll.ErrNoRecipients)
	assert.ErrorContains(t, svc.Deliver(context.Background(), report, []string{"hr@acme.test"}), "smtp down")
}
