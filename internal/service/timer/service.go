package timer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rajatch15/backend-cloud-functions/internal/domain/attendance"
	"github.com/rajatch15/backend-cloud-functions/internal/domain/office"
	"github.com/rajatch15/backend-cloud-functions/internal/domain/payroll"
	"github.com/rajatch15/backend-cloud-functions/internal/domain/template"
	"github.com/rajatch15/backend-cloud-functions/internal/domain/timer"
)

type Config struct {
	DefaultTimezone string
	// Recipients receive reports whose recipient list is empty.
	Recipients []string
}

type TimerServiceImpl struct {
	timers   timer.Repository
	offices  office.Repository
	payrolls payroll.Repository
	rollup   attendance.Service
	reports  payroll.Service
	config   Config
}

func NewTimerService(
	timers timer.Repository,
	offices office.Repository,
	payrolls payroll.Repository,
	rollup attendance.Service,
	reports payroll.Service,
	config Config,
) timer.Service {
	return &TimerServiceImpl{
		timers:   timers,
		offices:  offices,
		payrolls: payrolls,
		rollup:   rollup,
		reports:  reports,
		config:   config,
	}
}

// Fire implements timer.Service.
func (s *TimerServiceImpl) Fire(ctx context.Context, now time.Time) (*timer.FireResult, error) {
	loc := time.UTC
	if l, err := time.LoadLocation(s.config.DefaultTimezone); err == nil {
		loc = l
	}
	day := now.In(loc)
	id := timer.TimerID(day)
	result := &timer.FireResult{Date: day.Format(time.DateOnly)}

	alreadySent, err := s.timers.Claim(ctx, id, now.UnixMilli())
	if err != nil {
		return nil, err
	}
	if alreadySent {
		slog.Info("Timer: already sent", "timer_id", id)
		result.AlreadySent = true
		return result, nil
	}

	// Roll up yesterday for every office, one at a time
	offices, err := s.offices.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	for _, o := range offices {
		if _, err := s.rollup.ComputeDailyStatus(ctx, o.ID, now); err != nil {
			if errors.Is(err, attendance.ErrNoRoster) {
				continue
			}
			slog.Error("Timer: rollup failed", "office_id", o.ID, "error", err)
			result.FailedOffices = append(result.FailedOffices, o.ID)
			continue
		}
		result.Offices++
	}

	recipients, err := s.payrolls.ListRecipients(ctx, payroll.ReportPayroll)
	if err != nil {
		return nil, err
	}
	active := recipients[:0]
	for _, r := range recipients {
		if r.Status != string(template.StatusCancelled) {
			active = append(active, r)
		}
	}

	status := timer.DailyStatus{
		ID:                             timer.DailyStatusID(day),
		Report:                         timer.ReportDailyStatus,
		Date:                           day.Day(),
		Month:                          int(day.Month()),
		Year:                           day.Year(),
		ExpectedRecipientTriggersCount: len(active),
	}
	if err := s.timers.SaveDailyStatus(ctx, status); err != nil {
		return nil, err
	}

	for _, r := range active {
		if err := s.deliver(ctx, r); err != nil {
			slog.Error("Timer: payroll report failed", "office_id", r.OfficeID, "recipient_id", r.ID, "error", err)
			result.FailedReports = append(result.FailedReports, r.OfficeID)
			continue
		}
		result.Reports++
	}

	status.RecipientsTriggeredToday = result.Reports
	if err := s.timers.SaveDailyStatus(ctx, status); err != nil {
		return nil, err
	}
	if err := s.timers.Complete(ctx, id, time.Now().UnixMilli()); err != nil {
		return nil, err
	}

	slog.Info("Timer: nightly run complete",
		"timer_id", id,
		"offices", result.Offices,
		"failed_offices", len(result.FailedOffices),
		"reports", result.Reports,
		"failed_reports", len(result.FailedReports),
	)
	return result, nil
}

func (s *TimerServiceImpl) deliver(ctx context.Context, r payroll.Recipient) error {
	to := r.Include
	if len(to) == 0 {
		to = s.config.Recipients
	}

	report, err := s.reports.BuildReport(ctx, payroll.BuildReportRequest{OfficeID: r.OfficeID})
	if err != nil {
		return fmt.Errorf("failed to build payroll report: %w", err)
	}
	return s.reports.Deliver(ctx, report, to)
}
