package activity

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"github.com/rajatch15/backend-cloud-functions/internal/domain/activity"
	"github.com/rajatch15/backend-cloud-functions/internal/domain/payroll"
	"github.com/rajatch15/backend-cloud-functions/internal/domain/template"
	"github.com/rajatch15/backend-cloud-functions/internal/pkg/apperror"
	"github.com/rajatch15/backend-cloud-functions/internal/pkg/utils"
)

const msPerDay = 24 * 60 * 60 * 1000

// maxPayrollScheduleDays bounds a leave or tour plan so that marking payroll reads at
// most a year of Init documents.
const maxPayrollScheduleDays = 366

type leaveBalance struct {
	entitled  float64
	remaining float64
	taken     float64
}

func numberValue(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case string:
		f, _ := strconv.ParseFloat(t, 64)
		return f
	}
	return 0
}

func firstWindow(schedules []activity.Schedule) (activity.Schedule, bool) {
	for _, s := range schedules {
		if s.Set() {
			return s, true
		}
	}
	return activity.Schedule{}, false
}

// computeLeaveBalance deducts the requested days from the requester's balance for the
// leave type. A carried balance that would go negative resets to the annual limit, and
// a request that leaves the balance at the annual limit grants nothing and is cancelled.
func (s *ActivityServiceImpl) computeLeaveBalance(ctx context.Context, p *pipeline) error {
	if p.req.Template != template.NameLeave {
		return nil
	}
	leaveType := p.req.Attachment.String("Leave Type")
	if leaveType == "" {
		return nil
	}
	window, ok := firstWindow(p.schedule)
	if !ok {
		return nil
	}
	taken := math.Ceil(math.Abs(float64(window.EndTime-window.StartTime))/msPerDay) + 1

	// Fetch the annual limit of the leave type
	leaveTypeActivity, err := s.activities.FindByAttachment(ctx, p.officeID, template.NameLeaveType, "Name", leaveType)
	if err != nil {
		return fmt.Errorf("failed to get leave type: %w", err)
	}
	var annualLimit float64
	if leaveTypeActivity != nil {
		annualLimit = numberValue(leaveTypeActivity.Attachment["Annual Limit"].Value)
	}

	// Fetch the balance left by the previous leave of the same type this year
	last, err := s.activities.LastLeaveAddendum(ctx, p.officeID, p.requester.PhoneNumber, leaveType, p.now.In(p.loc).Year())
	if err != nil {
		return fmt.Errorf("failed to get last leave: %w", err)
	}
	carried := last != nil
	previous := annualLimit
	if carried && last.TotalLeavesRemaining != nil {
		previous = *last.TotalLeavesRemaining
	}

	remaining := previous - taken
	if remaining < 0 {
		if s.config.LeaveResetPolicy == LeavePolicyReject {
			return apperror.BadRequest("Cannot take %s day(s) of '%s'. Only %s day(s) remaining",
				strconv.FormatFloat(taken, 'f', -1, 64), leaveType, strconv.FormatFloat(previous, 'f', -1, 64))
		}
		// The first leave of a type keeps its deficit. Only a carried balance is regranted.
		if carried {
			remaining = annualLimit
		}
	}
	if remaining == annualLimit {
		p.cancel()
	}

	p.leave = &leaveBalance{entitled: annualLimit, remaining: remaining, taken: taken}
	return nil
}

// checkDistance compares the requester's position with the check-in venue. A check-in
// that is too far away is kept but cancelled.
func (s *ActivityServiceImpl) checkDistance(ctx context.Context, p *pipeline) error {
	if p.req.Template != template.NameCheckIn || p.req.Geopoint == nil {
		return nil
	}
	var venue *activity.Geopoint
	for _, v := range p.venue {
		if v.Geopoint != nil {
			venue = v.Geopoint
			break
		}
	}
	if venue == nil {
		return nil
	}

	threshold := 1.0
	if acc := p.req.Geopoint.Accuracy; acc != nil && *acc < 0.35 {
		threshold = 0.5
	}
	distance := utils.HaversineKm(p.req.Geopoint.Latitude, p.req.Geopoint.Longitude, venue.Latitude, venue.Longitude)
	accurate := distance < threshold
	p.distanceAccurate = &accurate

	if !accurate {
		slog.Info("Activity: check-in outside venue radius",
			"requester", p.requester.PhoneNumber,
			"distance_km", distance,
			"threshold_km", threshold,
		)
		p.cancel()
	}
	return nil
}

type monthKey struct {
	year  int
	month int
}

// markPayroll records leave and tour plan days in the payroll Init documents of every
// month the schedule touches. A day already marked as leave or on duty cancels the request.
func (s *ActivityServiceImpl) markPayroll(ctx context.Context, p *pipeline) error {
	var label string
	switch p.req.Template {
	case template.NameLeave:
		label = payroll.LeaveLabel(p.req.Attachment.String("Leave Type"))
	case template.NameTourPlan:
		label = payroll.LabelOnDuty
	default:
		return nil
	}
	for _, sch := range p.schedule {
		if sch.Set() && sch.EndTime-sch.StartTime > maxPayrollScheduleDays*msPerDay {
			return apperror.BadRequest("The schedule '%s' cannot span more than %d days", sch.Name, maxPayrollScheduleDays)
		}
	}
	if p.status == template.StatusCancelled {
		return nil
	}

	var months []monthKey
	days := make(map[monthKey][]int)
	for _, sch := range p.schedule {
		for _, d := range sch.Days(p.loc) {
			key := monthKey{year: d.Year(), month: int(d.Month())}
			if _, ok := days[key]; !ok {
				months = append(months, key)
			}
			days[key] = append(days[key], d.Day())
		}
	}

	phone := p.requester.PhoneNumber
	inits := make([]*payroll.Init, 0, len(months))
	for _, key := range months {
		existing, err := s.payrolls.GetInit(ctx, p.officeID, key.year, key.month)
		if err != nil {
			return fmt.Errorf("failed to get payroll init: %w", err)
		}

		labels := make(map[int]string, len(days[key]))
		for _, day := range days[key] {
			if payroll.Blocks(existing.Label(phone, day)) {
				p.cancel()
				return nil
			}
			labels[day] = label
		}
		inits = append(inits, &payroll.Init{
			Report:        payroll.ReportPayroll,
			Office:        p.req.Office,
			OfficeID:      p.officeID,
			Month:         key.month,
			Year:          key.year,
			PayrollObject: map[string]map[int]string{phone: labels},
		})
	}
	p.payroll = inits
	return nil
}
