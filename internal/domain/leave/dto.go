package leave

import (
	"github.com/staffhq/wfm-backend-go/internal/pkg/validator"
)

type ApplyRequest struct {
	StaffID    string  `json:"staff_id"`
	CategoryID *string `json:"category_id,omitempty"`
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
	PaidDays   int     `json:"paid_days"`
	UnpaidDays int     `json:"unpaid_days"`
	Reason     *string `json:"reason,omitempty"`
}

func (r *ApplyRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.StaffID) {
		errs = append(errs, validator.ValidationError{Field: "staff_id", Message: "is required"})
	}
	start, startOK := validator.IsValidDate(r.StartDate)
	if !startOK {
		errs = append(errs, validator.ValidationError{Field: "start_date", Message: "must be YYYY-MM-DD"})
	}
	end, endOK := validator.IsValidDate(r.EndDate)
	if !endOK {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "must be YYYY-MM-DD"})
	}
	if startOK && endOK && end.Before(start) {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "must not be before start_date"})
	}
	if r.PaidDays < 0 {
		errs = append(errs, validator.ValidationError{Field: "paid_days", Message: "must be non-negative"})
	}
	if r.UnpaidDays < 0 {
		errs = append(errs, validator.ValidationError{Field: "unpaid_days", Message: "must be non-negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RequestResponse struct {
	ID         string  `json:"id"`
	StaffID    string  `json:"staff_id"`
	CategoryID *string `json:"category_id,omitempty"`
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
	PaidDays   int     `json:"paid_days"`
	UnpaidDays int     `json:"unpaid_days"`
	Reason     *string `json:"reason,omitempty"`
	Status     string  `json:"status"`
	DecidedBy  *string `json:"decided_by,omitempty"`
	DecidedAt  *string `json:"decided_at,omitempty"`
}

type AllocateRequest struct {
	ReferenceDate string `json:"reference_date"`
}

func (r *AllocateRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, ok := validator.IsValidDate(r.ReferenceDate); !ok {
		errs = append(errs, validator.ValidationError{Field: "reference_date", Message: "must be YYYY-MM-DD"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// AllocationError reports one staff/category pair the allocator could not
// process; the rest of the batch is unaffected.
type AllocationError struct {
	StaffID    string `json:"staff_id"`
	CategoryID string `json:"category_id"`
	Message    string `json:"message"`
}

type AllocationResult struct {
	AllocatedCount int               `json:"allocated_count"`
	SkippedCount   int               `json:"skipped_count"`
	Errors         []AllocationError `json:"errors,omitempty"`
}

type BalanceResponse struct {
	ID             string  `json:"id"`
	StaffID        string  `json:"staff_id"`
	CategoryID     string  `json:"category_id"`
	CategoryName   *string `json:"category_name,omitempty"`
	CycleStart     string  `json:"cycle_start"`
	CycleEnd       string  `json:"cycle_end"`
	Allocated      float64 `json:"allocated"`
	CarriedForward float64 `json:"carried_forward"`
	Used           float64 `json:"used"`
	Encashed       float64 `json:"encashed"`
	Remaining      float64 `json:"remaining"`
}
