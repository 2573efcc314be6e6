package payroll

import (
	"github.com/shopspring/decimal"
	"github.com/staffhq/wfm-backend-go/internal/domain/attendance"
	"github.com/staffhq/wfm-backend-go/internal/domain/payroll"
)

var (
	minutesPerHour  = decimal.NewFromInt(60)
	workHoursPerDay = decimal.NewFromInt(8)
)

// ProrationRatio converts day counts into the payable fraction of the month:
// present + half*0.5 + weekly off + holiday + paid leave over days in month,
// clamped to [0, 1]. Unpaid leave and absence reduce pay by omission.
func ProrationRatio(counts attendance.DayCounts, daysInMonth int) decimal.Decimal {
	if daysInMonth <= 0 {
		return decimal.Zero
	}

	payable := decimal.NewFromInt(int64(counts.Present)).
		Add(decimal.NewFromInt(int64(counts.HalfDay)).Div(decimal.NewFromInt(2))).
		Add(decimal.NewFromInt(int64(counts.WeeklyOff))).
		Add(decimal.NewFromInt(int64(counts.Holiday))).
		Add(decimal.NewFromInt(int64(counts.PaidLeave)))

	ratio := payable.Div(decimal.NewFromInt(int64(daysInMonth)))
	if ratio.LessThan(decimal.Zero) {
		return decimal.Zero
	}
	if ratio.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.NewFromInt(1)
	}
	return ratio
}

// OvertimePay prices accumulated overtime at an hourly rate derived from
// (basic + da) over the month's standard working hours. Overtime is measured
// time, so it is never prorated.
func OvertimePay(basic, da decimal.Decimal, daysInMonth, overtimeMinutes int) decimal.Decimal {
	if overtimeMinutes <= 0 || daysInMonth <= 0 {
		return decimal.Zero
	}

	hourlyRate := basic.Add(da).Div(decimal.NewFromInt(int64(daysInMonth)).Mul(workHoursPerDay))
	hours := decimal.NewFromInt(int64(overtimeMinutes)).Div(minutesPerHour)
	return hourlyRate.Mul(hours).Round(0)
}

// ComputeTotals prorates the evaluated subtotals by the attendance ratio and
// layers unprorated overtime on top of earnings.
func ComputeTotals(eval EvaluationResult, counts attendance.DayCounts, daysInMonth, overtimeMinutes int) payroll.Totals {
	ratio := ProrationRatio(counts, daysInMonth)

	earnings := eval.EarningsTotal.Mul(ratio).Round(0)
	incentives := eval.IncentivesTotal.Mul(ratio).Round(0)
	deductions := eval.DeductionsTotal.Mul(ratio).Round(0)

	overtime := OvertimePay(eval.Basic, eval.DA, daysInMonth, overtimeMinutes)
	earnings = earnings.Add(overtime)

	gross := earnings.Add(incentives)
	net := gross.Sub(deductions)

	return payroll.Totals{
		Earnings:       earnings,
		Incentives:     incentives,
		Deductions:     deductions,
		OvertimePay:    overtime,
		Gross:          gross,
		Net:            net,
		ProrationRatio: ratio.Round(4),
	}
}
