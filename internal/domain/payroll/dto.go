package payroll

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/staffhq/wfm-backend-go/internal/pkg/validator"
)

type ComputeCycleRequest struct {
	MonthKey string `json:"month_key"`
}

func (r *ComputeCycleRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidMonthKey(r.MonthKey) {
		errs = append(errs, validator.ValidationError{Field: "month_key", Message: "must be YYYY-MM"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UpdateLineRequest patches a draft line. Nil fields are left unchanged;
// non-nil maps replace the corresponding item amounts wholesale.
type UpdateLineRequest struct {
	LineID      string                     `json:"-"`
	CycleID     string                     `json:"-"`
	Earnings    map[string]decimal.Decimal `json:"earnings,omitempty"`
	Incentives  map[string]decimal.Decimal `json:"incentives,omitempty"`
	Deductions  map[string]decimal.Decimal `json:"deductions,omitempty"`
	Adjustments []Adjustment               `json:"adjustments,omitempty"`
	Remarks     *string                    `json:"remarks,omitempty"`
}

func (r *UpdateLineRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.LineID) {
		errs = append(errs, validator.ValidationError{Field: "line_id", Message: "is required"})
	}
	if validator.IsEmpty(r.CycleID) {
		errs = append(errs, validator.ValidationError{Field: "cycle_id", Message: "is required"})
	}
	for _, adj := range r.Adjustments {
		if validator.IsEmpty(adj.Label) {
			errs = append(errs, validator.ValidationError{Field: "adjustments", Message: "label is required"})
			break
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// PaymentDetails carries the payment metadata stamped onto lines when a cycle
// (or subset of its lines) is marked paid.
type PaymentDetails struct {
	PaidMode   *string          `json:"paid_mode,omitempty"`
	PaidRef    *string          `json:"paid_ref,omitempty"`
	PaidAmount *decimal.Decimal `json:"paid_amount,omitempty"`
	PaidAt     time.Time        `json:"-"`
}

type MarkPaidRequest struct {
	LineIDs    []string         `json:"line_ids,omitempty"`
	PaidMode   *string          `json:"paid_mode,omitempty"`
	PaidRef    *string          `json:"paid_ref,omitempty"`
	PaidAmount *decimal.Decimal `json:"paid_amount,omitempty"`
}

func (r *MarkPaidRequest) Validate() error {
	var errs validator.ValidationErrors

	for _, id := range r.LineIDs {
		if validator.IsEmpty(id) {
			errs = append(errs, validator.ValidationError{Field: "line_ids", Message: "must not contain empty ids"})
			break
		}
	}
	if r.PaidAmount != nil && r.PaidAmount.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "paid_amount", Message: "must be non-negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CycleResponse struct {
	ID       string  `json:"id"`
	MonthKey string  `json:"month_key"`
	Status   string  `json:"status"`
	LockedAt *string `json:"locked_at,omitempty"`
	PaidAt   *string `json:"paid_at,omitempty"`
}

type LineResponse struct {
	ID                string                     `json:"id"`
	CycleID           string                     `json:"cycle_id"`
	StaffID           string                     `json:"staff_id"`
	StaffName         *string                    `json:"staff_name,omitempty"`
	StaffCode         *string                    `json:"staff_code,omitempty"`
	Earnings          map[string]decimal.Decimal `json:"earnings"`
	Incentives        map[string]decimal.Decimal `json:"incentives"`
	Deductions        map[string]decimal.Decimal `json:"deductions"`
	AttendanceSummary AttendanceSummary          `json:"attendance_summary"`
	Totals            Totals                     `json:"totals"`
	Adjustments       []Adjustment               `json:"adjustments,omitempty"`
	NetPayable        decimal.Decimal            `json:"net_payable"`
	Remarks           *string                    `json:"remarks,omitempty"`
	PaidAt            *string                    `json:"paid_at,omitempty"`
	PaidAmount        *decimal.Decimal           `json:"paid_amount,omitempty"`
	PaidMode          *string                    `json:"paid_mode,omitempty"`
	PaidRef           *string                    `json:"paid_ref,omitempty"`
}

// StaffComputeError reports one staff member whose line could not be
// computed; the rest of the cycle is unaffected.
type StaffComputeError struct {
	StaffID string `json:"staff_id"`
	Message string `json:"message"`
}

type ComputeResult struct {
	Cycle         CycleResponse       `json:"cycle"`
	Lines         []LineResponse      `json:"lines"`
	ComputedCount int                 `json:"computed_count"`
	Errors        []StaffComputeError `json:"errors,omitempty"`
}
