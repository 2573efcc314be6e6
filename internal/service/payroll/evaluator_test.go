package payroll

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/staffhq/wfm-backend-go/internal/domain/payroll"
	"github.com/stretchr/testify/assert"
)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func decPtr(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func strPtr(s string) *string {
	return &s
}

func TestEvaluate_FixedAndPercentOfPriorItem(t *testing.T) {
	t.Parallel()

	profile := payroll.CompensationProfile{
		StaffID: "s1",
		Earnings: []payroll.CompensationItem{
			{Key: "basic_salary", AmountType: payroll.AmountFixed, Value: dec("15000")},
			{Key: "hra", AmountType: payroll.AmountPercent, Value: dec("40"), Basis: strPtr("basic_salary")},
		},
	}

	res := Evaluate(profile)

	assert.True(t, res.Earnings["basic_salary"].Equal(dec("15000")))
	assert.True(t, res.Earnings["hra"].Equal(dec("6000")))
	assert.True(t, res.EarningsTotal.Equal(dec("21000")))
}

func TestEvaluate_DeductionPercentOfGross(t *testing.T) {
	t.Parallel()

	profile := payroll.CompensationProfile{
		StaffID: "s1",
		Earnings: []payroll.CompensationItem{
			{Key: "basic", AmountType: payroll.AmountFixed, Value: dec("20000")},
		},
		Incentives: []payroll.CompensationItem{
			{Key: "sales_bonus", AmountType: payroll.AmountFixed, Value: dec("5000")},
		},
		Deductions: []payroll.CompensationItem{
			{Key: "tds", AmountType: payroll.AmountPercent, Value: dec("5"), Basis: strPtr("gross_salary")},
		},
	}

	res := Evaluate(profile)

	assert.True(t, res.Deductions["tds"].Equal(dec("1250")))
	assert.True(t, res.DeductionsTotal.Equal(dec("1250")))
}

func TestEvaluate_UnresolvableBasisIsZero(t *testing.T) {
	t.Parallel()

	profile := payroll.CompensationProfile{
		StaffID: "s1",
		Earnings: []payroll.CompensationItem{
			// Forward reference: hra is declared after this item.
			{Key: "special", AmountType: payroll.AmountPercent, Value: dec("10"), Basis: strPtr("hra")},
			{Key: "hra", AmountType: payroll.AmountFixed, Value: dec("4000")},
			{Key: "ghost", AmountType: payroll.AmountPercent, Value: dec("10"), Basis: strPtr("no_such_key")},
		},
	}

	res := Evaluate(profile)

	assert.True(t, res.Earnings["special"].IsZero())
	assert.True(t, res.Earnings["ghost"].IsZero())
	assert.True(t, res.EarningsTotal.Equal(dec("4000")))
}

func TestEvaluate_CapFloorAndRounding(t *testing.T) {
	t.Parallel()

	profile := payroll.CompensationProfile{
		StaffID: "s1",
		Earnings: []payroll.CompensationItem{
			{Key: "basic", AmountType: payroll.AmountFixed, Value: dec("10000")},
			{Key: "capped", AmountType: payroll.AmountPercent, Value: dec("50"), Basis: strPtr("basic"), Cap: decPtr("3000")},
			{Key: "floored", AmountType: payroll.AmountPercent, Value: dec("1"), Basis: strPtr("basic"), Floor: decPtr("500")},
			{Key: "ceiled", AmountType: payroll.AmountPercent, Value: dec("0.125"), Basis: strPtr("basic"), Rounding: payroll.RoundingCeil},
			{Key: "floored_mode", AmountType: payroll.AmountPercent, Value: dec("0.125"), Basis: strPtr("basic"), Rounding: payroll.RoundingFloor},
		},
	}

	res := Evaluate(profile)

	assert.True(t, res.Earnings["capped"].Equal(dec("3000")))
	assert.True(t, res.Earnings["floored"].Equal(dec("500")))
	// 0.125% of 10000 = 12.5
	assert.True(t, res.Earnings["ceiled"].Equal(dec("13")))
	assert.True(t, res.Earnings["floored_mode"].Equal(dec("12")))
}

func TestEvaluate_PercentDefaultsToRound(t *testing.T) {
	t.Parallel()

	profile := payroll.CompensationProfile{
		StaffID: "s1",
		Earnings: []payroll.CompensationItem{
			{Key: "basic", AmountType: payroll.AmountFixed, Value: dec("10000")},
			{Key: "frac", AmountType: payroll.AmountPercent, Value: dec("0.125"), Basis: strPtr("basic")},
		},
	}

	res := Evaluate(profile)

	// 12.5 rounds half away from zero to 13.
	assert.True(t, res.Earnings["frac"].Equal(dec("13")))
}

func TestEvaluate_BasicAndDAResolved(t *testing.T) {
	t.Parallel()

	profile := payroll.CompensationProfile{
		StaffID: "s1",
		Earnings: []payroll.CompensationItem{
			{Key: "basic", AmountType: payroll.AmountFixed, Value: dec("12000")},
			{Key: "da", AmountType: payroll.AmountPercent, Value: dec("10"), Basis: strPtr("basic")},
		},
	}

	res := Evaluate(profile)

	assert.True(t, res.Basic.Equal(dec("12000")))
	assert.True(t, res.DA.Equal(dec("1200")))
}

func TestEvaluate_BasicFallsBackToFirstEarning(t *testing.T) {
	t.Parallel()

	profile := payroll.CompensationProfile{
		StaffID: "s1",
		Earnings: []payroll.CompensationItem{
			{Key: "base_pay", AmountType: payroll.AmountFixed, Value: dec("18000")},
			{Key: "hra", AmountType: payroll.AmountFixed, Value: dec("2000")},
		},
	}

	res := Evaluate(profile)

	assert.True(t, res.Basic.Equal(dec("18000")))
	assert.True(t, res.DA.IsZero())
}

func TestEvaluate_EmptyProfile(t *testing.T) {
	t.Parallel()

	res := Evaluate(payroll.CompensationProfile{StaffID: "s1"})

	assert.Empty(t, res.Earnings)
	assert.True(t, res.EarningsTotal.IsZero())
	assert.True(t, res.Basic.IsZero())
}
