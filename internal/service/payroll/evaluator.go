package payroll

import (
	"github.com/shopspring/decimal"
	"github.com/staffhq/wfm-backend-go/internal/domain/payroll"
)

// EvaluationResult holds the per-item amounts and running subtotals produced
// by one pass over a compensation profile.
type EvaluationResult struct {
	Earnings   map[string]decimal.Decimal
	Incentives map[string]decimal.Decimal
	Deductions map[string]decimal.Decimal

	EarningsTotal   decimal.Decimal
	IncentivesTotal decimal.Decimal
	DeductionsTotal decimal.Decimal

	// Basic and DA feed the overtime hourly rate.
	Basic decimal.Decimal
	DA    decimal.Decimal
}

// Evaluate computes every item of the profile in declaration order: earnings,
// then incentives, then deductions. Percent items resolve their basis against
// values computed earlier in the pass; an unresolvable basis evaluates to
// zero so one misconfigured item cannot sink the whole line.
func Evaluate(profile payroll.CompensationProfile) EvaluationResult {
	res := EvaluationResult{
		Earnings:   make(map[string]decimal.Decimal, len(profile.Earnings)),
		Incentives: make(map[string]decimal.Decimal, len(profile.Incentives)),
		Deductions: make(map[string]decimal.Decimal, len(profile.Deductions)),
	}

	values := make(map[string]decimal.Decimal)

	for _, item := range profile.Earnings {
		amount := evaluateItem(item, values, res)
		res.Earnings[item.Key] = amount
		res.EarningsTotal = res.EarningsTotal.Add(amount)
		values[item.Key] = amount
	}
	for _, item := range profile.Incentives {
		amount := evaluateItem(item, values, res)
		res.Incentives[item.Key] = amount
		res.IncentivesTotal = res.IncentivesTotal.Add(amount)
		values[item.Key] = amount
	}
	for _, item := range profile.Deductions {
		amount := evaluateItem(item, values, res)
		res.Deductions[item.Key] = amount
		res.DeductionsTotal = res.DeductionsTotal.Add(amount)
		values[item.Key] = amount
	}

	res.Basic = resolveBasic(profile, values)
	if da, ok := values["da"]; ok {
		res.DA = da
	}

	return res
}

func evaluateItem(item payroll.CompensationItem, values map[string]decimal.Decimal, res EvaluationResult) decimal.Decimal {
	var amount decimal.Decimal

	switch item.AmountType {
	case payroll.AmountPercent:
		basis := resolveBasis(item, values, res)
		amount = basis.Mul(item.Value).Div(decimal.NewFromInt(100))
	default:
		amount = item.Value
	}

	if item.Cap != nil && amount.GreaterThan(*item.Cap) {
		amount = *item.Cap
	}
	if item.Floor != nil && amount.LessThan(*item.Floor) {
		amount = *item.Floor
	}

	return applyRounding(amount, roundingFor(item))
}

// roundingFor defaults percent items to round so fractional percentages do
// not leak sub-unit amounts into totals.
func roundingFor(item payroll.CompensationItem) payroll.Rounding {
	if item.Rounding == "" {
		if item.AmountType == payroll.AmountPercent {
			return payroll.RoundingRound
		}
		return payroll.RoundingNone
	}
	return item.Rounding
}

func applyRounding(amount decimal.Decimal, mode payroll.Rounding) decimal.Decimal {
	switch mode {
	case payroll.RoundingRound:
		return amount.Round(0)
	case payroll.RoundingFloor:
		return amount.Floor()
	case payroll.RoundingCeil:
		return amount.Ceil()
	default:
		return amount
	}
}

// resolveBasis maps an item's basis to a value computed earlier in the pass.
// Unknown or not-yet-computed bases resolve to zero.
func resolveBasis(item payroll.CompensationItem, values map[string]decimal.Decimal, res EvaluationResult) decimal.Decimal {
	if item.Basis == nil {
		return decimal.Zero
	}
	switch *item.Basis {
	case payroll.BasisBasic:
		if v, ok := values["basic"]; ok {
			return v
		}
		return res.EarningsTotal
	case payroll.BasisEarningsSubtotal:
		return res.EarningsTotal
	case payroll.BasisGross, payroll.BasisGrossSalary:
		return res.EarningsTotal.Add(res.IncentivesTotal)
	default:
		if v, ok := values[*item.Basis]; ok {
			return v
		}
		return decimal.Zero
	}
}

// resolveBasic picks the amount the overtime rate is derived from: the item
// keyed "basic" when present, else the first earnings item.
func resolveBasic(profile payroll.CompensationProfile, values map[string]decimal.Decimal) decimal.Decimal {
	if v, ok := values["basic"]; ok {
		return v
	}
	if len(profile.Earnings) > 0 {
		if v, ok := values[profile.Earnings[0].Key]; ok {
			return v
		}
	}
	return decimal.Zero
}
