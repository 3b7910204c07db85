package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rajatch15/backend-cloud-functions/internal/domain/attendance"
	"github.com/rajatch15/backend-cloud-functions/internal/domain/office"
	"github.com/rajatch15/backend-cloud-functions/internal/domain/payroll"
	"github.com/rajatch15/backend-cloud-functions/internal/pkg/apperror"
)

// Days after the cycle start on which aggregates of former employees are deleted.
const purgeOffsetDays = 5

// Config tunes the rollup. Workers bounds the concurrent check-in lookups of one office.
type Config struct {
	DefaultTimezone string
	Workers         int
}

type AttendanceServiceImpl struct {
	offices    office.Repository
	attendance attendance.Repository
	payrolls   payroll.Repository
	config     Config
}

func NewAttendanceService(offices office.Repository, attendanceRepo attendance.Repository, payrolls payroll.Repository, config Config) attendance.Service {
	if config.Workers <= 0 {
		config.Workers = 8
	}
	return &AttendanceServiceImpl{
		offices:    offices,
		attendance: attendanceRepo,
		payrolls:   payrolls,
		config:     config,
	}
}

// ComputeDailyStatus implements attendance.Service.
func (s *AttendanceServiceImpl) ComputeDailyStatus(ctx context.Context, officeID string, reference time.Time) (*attendance.RollupResult, error) {
	o, err := s.offices.GetByID(ctx, officeID)
	if errors.Is(err, office.ErrOfficeNotFound) {
		return nil, apperror.NotFound("No office found with the id: '%s'", officeID)
	}
	if err != nil {
		return nil, err
	}
	if o.Cancelled() {
		return nil, fmt.Errorf("%w: %s", attendance.ErrOfficeCancelled, o.Name)
	}
	if len(o.EmployeesData) == 0 {
		return nil, fmt.Errorf("%w: %s", attendance.ErrNoRoster, o.Name)
	}

	loc := o.Location(s.config.DefaultTimezone)
	local := reference.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	target := today.AddDate(0, 0, -1)
	year, month, day := target.Year(), int(target.Month()), target.Day()

	// Fetch branches and the payroll labels of the month
	var (
		branches []office.Branch
		init     *payroll.Init
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		branches, err = s.offices.ListBranches(gctx, officeID)
		return err
	})
	g.Go(func() error {
		var err error
		init, err = s.payrolls.GetInit(gctx, officeID, year, month)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to fetch rollup inputs: %w", err)
	}

	holidays := make(map[string]bool, len(branches))
	for _, b := range branches {
		if b.HolidayOn(target, today) {
			holidays[b.Name] = true
		}
	}

	phones := make([]string, 0, len(o.EmployeesData))
	for phone := range o.EmployeesData {
		phones = append(phones, phone)
	}
	slices.Sort(phones)

	// Fetch check-ins of employees whose day is not decided by the calendar
	from := time.Date(year, target.Month(), day, 5, 30, 0, 0, loc)
	to := from.AddDate(0, 0, 1)
	statuses := make([]attendance.DayStatus, len(phones))
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(s.config.Workers)
	for i, phone := range phones {
		e := o.EmployeesData[phone]
		facts := dayFacts{
			holiday: e.BaseLocation != "" && holidays[e.BaseLocation],
			weekday: target.Weekday(),
			label:   init.Label(phone, day),
		}
		if status, ok := presetStatus(e, facts); ok {
			statuses[i] = status
			continue
		}
		g.Go(func() error {
			checkIns, err := s.attendance.ListCheckIns(gctx, officeID, phone, from, to, bool(e.LocationValidationCheck))
			if err != nil {
				return err
			}
			statuses[i] = checkInStatus(e, checkIns, loc)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to fetch check-ins: %w", err)
	}

	result := &attendance.RollupResult{
		OfficeID:  officeID,
		Office:    o.Name,
		Date:      target.Format(time.DateOnly),
		Employees: len(phones),
		Statuses:  make(map[string]attendance.DayStatus, len(phones)),
	}
	entries := make([]attendance.Entry, len(phones))
	for i, phone := range phones {
		entries[i] = attendance.Entry{PhoneNumber: phone, Year: year, Month: month, Day: day, Status: statuses[i]}
		result.Statuses[phone] = statuses[i]
	}

	deletes, err := s.formerEmployees(ctx, o, target)
	if err != nil {
		return nil, err
	}
	result.Deleted = len(deletes)

	batches, err := s.attendance.SaveDays(ctx, officeID, entries, deletes)
	result.Batches = batches
	if err != nil {
		return nil, err
	}

	slog.Info("Attendance: rollup complete",
		"office_id", officeID,
		"date", result.Date,
		"employees", result.Employees,
		"batches", result.Batches,
		"deleted", result.Deleted,
	)
	return result, nil
}

// formerEmployees lists the aggregates of the current cycle whose employee left the
// roster. It returns nothing except on the purge day of the cycle.
func (s *AttendanceServiceImpl) formerEmployees(ctx context.Context, o *office.Office, target time.Time) ([]attendance.MonthKey, error) {
	start := attendance.CycleStart(target, o.FirstDayOfMonthlyCycle())
	if !start.AddDate(0, 0, purgeOffsetDays).Equal(target) {
		return nil, nil
	}

	months := []time.Time{start}
	if start.Month() != target.Month() {
		months = append(months, target)
	}
	var deletes []attendance.MonthKey
	for _, m := range months {
		aggregates, err := s.attendance.ListMonthly(ctx, o.ID, m.Year(), int(m.Month()))
		if err != nil {
			return nil, fmt.Errorf("failed to list monthly aggregates: %w", err)
		}
		for _, a := range aggregates {
			if _, ok := o.EmployeesData[a.PhoneNumber]; ok {
				continue
			}
			deletes = append(deletes, attendance.MonthKey{PhoneNumber: a.PhoneNumber, Year: a.Year, Month: a.Month})
		}
	}
	return deletes, nil
}
