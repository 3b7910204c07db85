package payroll

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/rajatch15/backend-cloud-functions/internal/domain/attendance"
	"github.com/rajatch15/backend-cloud-functions/internal/domain/office"
	"github.com/rajatch15/backend-cloud-functions/internal/domain/payroll"
	"github.com/rajatch15/backend-cloud-functions/internal/pkg/apperror"
	"github.com/rajatch15/backend-cloud-functions/internal/pkg/email"
	"github.com/rajatch15/backend-cloud-functions/internal/pkg/storage"
)

const (
	reportDateLayout = "02-Jan-2006"
	maxCycleDays     = 62
	artifactPrefix   = "payroll"
)

type Config struct {
	DefaultTimezone string
}

type PayrollServiceImpl struct {
	offices    office.Repository
	attendance attendance.Repository
	payrolls   payroll.Repository
	storage    storage.FileStorage
	mailer     email.EmailService
	config     Config
	now        func() time.Time
}

func NewPayrollService(
	offices office.Repository,
	attendanceRepo attendance.Repository,
	payrolls payroll.Repository,
	fileStorage storage.FileStorage,
	mailer email.EmailService,
	config Config,
) payroll.Service {
	return &PayrollServiceImpl{
		offices:    offices,
		attendance: attendanceRepo,
		payrolls:   payrolls,
		storage:    fileStorage,
		mailer:     mailer,
		config:     config,
		now:        time.Now,
	}
}

type monthKey struct {
	year  int
	month time.Month
}

// monthData holds what one calendar month of the cycle contributes to the report.
type monthData struct {
	key        monthKey
	aggregates map[string]*attendance.MonthlyAggregate
	init       *payroll.Init
	labels     map[string]map[int]string
}

// BuildReport implements payroll.Service.
func (s *PayrollServiceImpl) BuildReport(ctx context.Context, req payroll.BuildReportRequest) (*payroll.Report, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	o, err := s.offices.GetByID(ctx, req.OfficeID)
	if errors.Is(err, office.ErrOfficeNotFound) {
		return nil, apperror.NotFound("No office found with the id: '%s'", req.OfficeID)
	}
	if err != nil {
		return nil, err
	}
	if len(o.EmployeesData) == 0 {
		return nil, fmt.Errorf("%w: %s", payroll.ErrEmptyReport, o.Name)
	}

	loc := o.Location(s.config.DefaultTimezone)
	start, end, err := s.cycle(req, o, loc)
	if err != nil {
		return nil, err
	}

	report := &payroll.Report{
		OfficeID:    o.ID,
		Office:      o.Name,
		CycleStart:  start,
		CycleEnd:    end,
		GeneratedAt: s.now().UTC(),
	}
	var months []*monthData
	index := make(map[monthKey]*monthData)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		report.Days = append(report.Days, payroll.Day{Date: d})
		key := monthKey{year: d.Year(), month: d.Month()}
		if _, ok := index[key]; !ok {
			m := &monthData{key: key, labels: make(map[string]map[int]string)}
			index[key] = m
			months = append(months, m)
		}
	}

	// Fetch aggregates and stored labels of every month the cycle touches
	g, gctx := errgroup.WithContext(ctx)
	for _, m := range months {
		g.Go(func() error {
			aggregates, err := s.attendance.ListMonthly(gctx, o.ID, m.key.year, int(m.key.month))
			if err != nil {
				return err
			}
			m.aggregates = make(map[string]*attendance.MonthlyAggregate, len(aggregates))
			for i := range aggregates {
				m.aggregates[aggregates[i].PhoneNumber] = &aggregates[i]
			}
			return nil
		})
		g.Go(func() error {
			init, err := s.payrolls.GetInit(gctx, o.ID, m.key.year, int(m.key.month))
			m.init = init
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to fetch payroll inputs: %w", err)
	}

	for _, phone := range orderedPhones(o.EmployeesData) {
		e := o.EmployeesData[phone]
		row := payroll.Row{
			PhoneNumber:  phone,
			Name:         e.Name,
			EmployeeCode: e.EmployeeCode,
			Department:   e.Department,
			BaseLocation: e.BaseLocation,
			LiveSince:    liveSince(e.CreateTime, loc),
			Details:      details(e),
		}
		for _, d := range report.Days {
			m := index[monthKey{year: d.Date.Year(), month: d.Date.Month()}]
			day := d.Date.Day()

			var status attendance.DayStatus
			if agg := m.aggregates[phone]; agg != nil {
				status = agg.StatusObject[day]
			}
			cell := classify(e, status, m.init.Label(phone, day))

			row.PayDay = append(row.PayDay, cell.payDay)
			row.Timings = append(row.Timings, cell.timing)
			row.Labels = append(row.Labels, cell.label)
			row.Counts.Add(cell.label)
			row.TotalPayableDays += cell.payDay

			if m.labels[phone] == nil {
				m.labels[phone] = make(map[int]string)
			}
			m.labels[phone][day] = cell.label
		}
		report.Rows = append(report.Rows, row)
	}

	for _, m := range months {
		if err := s.payrolls.MergeLabels(ctx, o.Name, o.ID, m.key.year, int(m.key.month), m.labels); err != nil {
			return nil, err
		}
	}

	slog.Info("Payroll: report built",
		"office_id", o.ID,
		"start", start.Format(time.DateOnly),
		"end", end.Format(time.DateOnly),
		"employees", len(report.Rows),
	)
	return report, nil
}

// cycle resolves the reported days. Without an explicit end the cycle closes yesterday
// and without an explicit start it opens on the office's first day of the monthly cycle.
func (s *PayrollServiceImpl) cycle(req payroll.BuildReportRequest, o *office.Office, loc *time.Location) (time.Time, time.Time, error) {
	now := s.now().In(loc)
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, -1)
	if req.CycleEnd != "" {
		d, err := time.ParseInLocation(time.DateOnly, req.CycleEnd, loc)
		if err != nil {
			return time.Time{}, time.Time{}, apperror.BadRequest("Invalid cycle end '%s'", req.CycleEnd)
		}
		end = d
	}

	start := attendance.CycleStart(end, o.FirstDayOfMonthlyCycle())
	if req.CycleStart != "" {
		d, err := time.ParseInLocation(time.DateOnly, req.CycleStart, loc)
		if err != nil {
			return time.Time{}, time.Time{}, apperror.BadRequest("Invalid cycle start '%s'", req.CycleStart)
		}
		start = d
	}

	if start.After(end) {
		return time.Time{}, time.Time{}, apperror.BadRequest("The cycle start %s is after its end %s",
			start.Format(time.DateOnly), end.Format(time.DateOnly))
	}
	if end.Sub(start) > maxCycleDays*24*time.Hour {
		return time.Time{}, time.Time{}, apperror.BadRequest("A payroll cycle cannot be longer than %d days", maxCycleDays)
	}
	return start, end, nil
}

// orderedPhones sorts the roster by employee name in English collation, then by phone.
func orderedPhones(roster map[string]office.Employee) []string {
	c := collate.New(language.English, collate.IgnoreCase)
	phones := make([]string, 0, len(roster))
	for phone := range roster {
		phones = append(phones, phone)
	}
	slices.SortFunc(phones, func(a, b string) int {
		if n := c.CompareString(roster[a].Name, roster[b].Name); n != 0 {
			return n
		}
		return strings.Compare(a, b)
	})
	return phones
}

// Deliver implements payroll.Service.
func (s *PayrollServiceImpl) Deliver(ctx context.Context, report *payroll.Report, to []string) error {
	if len(to) == 0 {
		return fmt.Errorf("%w: %s", payroll.ErrNoRecipients, report.Office)
	}

	attachments := make([]email.Attachment, 0, 2)
	for _, render := range []func(*payroll.Report) (*payroll.Artifact, error){s.RenderXLSX, s.RenderCSV} {
		artifact, err := render(report)
		if err != nil {
			return err
		}

		key := path.Join(artifactPrefix, report.OfficeID, artifact.FileName)
		if _, err := s.storage.Upload(ctx, bytes.NewReader(artifact.Content), key, artifact.ContentType); err != nil {
			return fmt.Errorf("failed to store %s: %w", artifact.FileName, err)
		}
		attachments = append(attachments, email.Attachment{
			FileName:    artifact.FileName,
			ContentType: artifact.ContentType,
			Content:     artifact.Content,
		})
	}

	data := email.ReportEmail{
		Report:    "Payroll",
		Office:    report.Office,
		Period:    report.CycleEnd.Format(reportDateLayout),
		Employees: len(report.Rows),
	}
	if err := s.mailer.SendReport(ctx, to, data, attachments...); err != nil {
		return fmt.Errorf("failed to mail payroll report: %w", err)
	}

	slog.Info("Payroll: report delivered", "office_id", report.OfficeID, "recipients", len(to))
	return nil
}
