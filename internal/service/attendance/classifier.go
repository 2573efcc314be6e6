package attendance

import (
	"time"

	"github.com/staffhq/wfm-backend-go/internal/domain/attendance"
	"github.com/staffhq/wfm-backend-go/internal/domain/leave"
	"github.com/staffhq/wfm-backend-go/internal/domain/schedule"
)

// ClassifierInput bundles everything the day classifier needs for one staff
// member and date range. Callers fetch the slices however they like (single
// staff lookups or tenant-wide batches sliced per staff).
type ClassifierInput struct {
	From     time.Time
	To       time.Time
	Today    time.Time
	Records  []attendance.Record
	Leaves   []leave.Request
	OffRules []schedule.WeeklyOffRule
	Holidays []schedule.Holiday
}

// ClassifyRange assigns each day of the range exactly one category.
//
// Precedence per day, first match wins:
//  1. explicit record status (a leave record splits paid/unpaid via the
//     request date sets)
//  2. configured holiday, then weekly off
//  3. approved leave request span, paid/unpaid per the request's allocation
//  4. absent, unless the day is after today
//
// Days after Today with no explicit record get no verdict at all, so counts
// only partition the full month once the month has elapsed.
func ClassifyRange(in ClassifierInput) attendance.Classification {
	recordsByDay := make(map[string]attendance.Record, len(in.Records))
	overtimeMinutes := 0
	for _, rec := range in.Records {
		recordsByDay[rec.Date.Format(attendance.DateKey)] = rec
		overtimeMinutes += rec.OvertimeMinutes
	}

	paidSet, unpaidSet := buildLeaveDaySets(in.Leaves)

	holidaySet := make(map[string]struct{}, len(in.Holidays))
	for _, h := range in.Holidays {
		if h.IsActive {
			holidaySet[h.Date.Format(attendance.DateKey)] = struct{}{}
		}
	}

	result := attendance.Classification{
		Days:            make(map[string]attendance.DayCategory),
		OvertimeMinutes: overtimeMinutes,
	}

	today := truncateToDay(in.Today)
	for day := truncateToDay(in.From); !day.After(in.To); day = day.AddDate(0, 0, 1) {
		key := day.Format(attendance.DateKey)

		if rec, ok := recordsByDay[key]; ok {
			result.Days[key] = categoryForRecord(rec, key, paidSet, unpaidSet)
			continue
		}
		if _, ok := holidaySet[key]; ok {
			result.Days[key] = attendance.DayHoliday
			continue
		}
		if isWeeklyOff(day, in.OffRules) {
			result.Days[key] = attendance.DayWeeklyOff
			continue
		}
		if _, ok := paidSet[key]; ok {
			result.Days[key] = attendance.DayPaidLeave
			continue
		}
		if _, ok := unpaidSet[key]; ok {
			result.Days[key] = attendance.DayUnpaidLeave
			continue
		}
		if day.After(today) {
			// No verdict yet for days that have not happened.
			continue
		}
		result.Days[key] = attendance.DayAbsent
	}

	for _, cat := range result.Days {
		switch cat {
		case attendance.DayPresent:
			result.Counts.Present++
		case attendance.DayHalf:
			result.Counts.HalfDay++
		case attendance.DayPaidLeave:
			result.Counts.PaidLeave++
		case attendance.DayUnpaidLeave:
			result.Counts.UnpaidLeave++
		case attendance.DayAbsent:
			result.Counts.Absent++
		case attendance.DayWeeklyOff:
			result.Counts.WeeklyOff++
		case attendance.DayHoliday:
			result.Counts.Holiday++
		}
	}

	return result
}

func categoryForRecord(rec attendance.Record, key string, paidSet, unpaidSet map[string]struct{}) attendance.DayCategory {
	switch rec.Status {
	case attendance.StatusPresent:
		return attendance.DayPresent
	case attendance.StatusHalfDay:
		return attendance.DayHalf
	case attendance.StatusAbsent:
		return attendance.DayAbsent
	case attendance.StatusLeave:
		if _, ok := unpaidSet[key]; ok {
			if _, alsoPaid := paidSet[key]; !alsoPaid {
				return attendance.DayUnpaidLeave
			}
		}
		// Paid when the day is in the paid set or in neither set.
		return attendance.DayPaidLeave
	default:
		return attendance.DayPresent
	}
}

// buildLeaveDaySets walks each approved request's span in order, consuming
// paidDays first, then unpaidDays. A day past both counters still counts as
// paid rather than being dropped.
func buildLeaveDaySets(requests []leave.Request) (paid, unpaid map[string]struct{}) {
	paid = make(map[string]struct{})
	unpaid = make(map[string]struct{})

	for _, req := range requests {
		if req.Status != leave.RequestStatusApproved {
			continue
		}
		paidRemaining := req.PaidDays
		unpaidRemaining := req.UnpaidDays
		for day := truncateToDay(req.StartDate); !day.After(req.EndDate); day = day.AddDate(0, 0, 1) {
			key := day.Format(attendance.DateKey)
			switch {
			case paidRemaining > 0:
				paid[key] = struct{}{}
				paidRemaining--
			case unpaidRemaining > 0:
				unpaid[key] = struct{}{}
				unpaidRemaining--
			default:
				paid[key] = struct{}{}
			}
		}
	}
	return paid, unpaid
}

func isWeeklyOff(day time.Time, rules []schedule.WeeklyOffRule) bool {
	for _, rule := range rules {
		if rule.AppliesTo(day) {
			return true
		}
	}
	return false
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
