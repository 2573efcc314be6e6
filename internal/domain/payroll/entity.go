package payroll

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/staffhq/wfm-backend-go/internal/domain/attendance"
)

// AmountType enum
type AmountType string

const (
	AmountFixed   AmountType = "fixed"
	AmountPercent AmountType = "percent"
)

// Rounding enum
type Rounding string

const (
	RoundingNone  Rounding = "none"
	RoundingRound Rounding = "round"
	RoundingFloor Rounding = "floor"
	RoundingCeil  Rounding = "ceil"
)

// Well-known basis names a percent item may reference in addition to a prior
// item key.
const (
	BasisBasic            = "basic"
	BasisEarningsSubtotal = "earnings_subtotal"
	BasisGross            = "gross"
	BasisGrossSalary      = "gross_salary"
)

// CompensationItem is one entry of a template's earnings, incentives or
// deductions list. Percent items resolve Basis against values computed
// earlier in declaration order; an unresolvable basis evaluates to zero.
type CompensationItem struct {
	Key        string           `json:"key"`
	Label      string           `json:"label"`
	AmountType AmountType       `json:"amount_type"`
	Value      decimal.Decimal  `json:"value"`
	Basis      *string          `json:"basis,omitempty"`
	Cap        *decimal.Decimal `json:"cap,omitempty"`
	Floor      *decimal.Decimal `json:"floor,omitempty"`
	Rounding   Rounding         `json:"rounding,omitempty"`
}

// CompensationProfile is a staff member's resolved compensation for a month:
// the template's three ordered item lists, template-level or per-staff
// overridden.
type CompensationProfile struct {
	StaffID    string             `json:"staff_id"`
	Earnings   []CompensationItem `json:"earnings"`
	Incentives []CompensationItem `json:"incentives"`
	Deductions []CompensationItem `json:"deductions"`
}

// CycleStatus enum
type CycleStatus string

const (
	CycleStatusDraft  CycleStatus = "draft"
	CycleStatusLocked CycleStatus = "locked"
	CycleStatusPaid   CycleStatus = "paid"
)

// PayrollCycle is one month's payroll lifecycle for a tenant. Exactly one
// cycle exists per (tenant, monthKey); first access auto-creates it as draft.
type PayrollCycle struct {
	ID        string
	TenantID  string
	MonthKey  string
	Status    CycleStatus
	LockedAt  *time.Time
	PaidAt    *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Adjustment is an ad-hoc add (positive) or deduct (negative) entry applied
// to a line after computation.
type Adjustment struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

// Totals are the final prorated amounts for a line.
type Totals struct {
	Earnings       decimal.Decimal `json:"earnings"`
	Incentives     decimal.Decimal `json:"incentives"`
	Deductions     decimal.Decimal `json:"deductions"`
	OvertimePay    decimal.Decimal `json:"overtime_pay"`
	Gross          decimal.Decimal `json:"gross"`
	Net            decimal.Decimal `json:"net"`
	ProrationRatio decimal.Decimal `json:"proration_ratio"`
}

// AttendanceSummary is the per-category day breakdown a line was computed
// from, plus overtime stats.
type AttendanceSummary struct {
	Counts          attendance.DayCounts `json:"counts"`
	DaysInMonth     int                  `json:"days_in_month"`
	OvertimeMinutes int                  `json:"overtime_minutes"`
}

// PayrollLine is one staff member's computed salary within a cycle. At most
// one line exists per (cycle, staff); recomputation before lock overwrites it
// in place.
type PayrollLine struct {
	ID                string
	CycleID           string
	StaffID           string
	Earnings          map[string]decimal.Decimal
	Incentives        map[string]decimal.Decimal
	Deductions        map[string]decimal.Decimal
	AttendanceSummary AttendanceSummary
	Totals            Totals
	Adjustments       []Adjustment
	Remarks           *string
	PaidAt            *time.Time
	PaidAmount        *decimal.Decimal
	PaidMode          *string
	PaidRef           *string
	CreatedAt         time.Time
	UpdatedAt         time.Time

	// Joined fields
	StaffName *string
	StaffCode *string
}

// Paid reports whether the line's monetary fields are read-only.
func (l PayrollLine) Paid() bool {
	return l.PaidAt != nil
}

// NetWithAdjustments returns the line net after applying ad-hoc adjustments.
func (l PayrollLine) NetWithAdjustments() decimal.Decimal {
	net := l.Totals.Net
	for _, adj := range l.Adjustments {
		net = net.Add(adj.Amount)
	}
	return net
}
