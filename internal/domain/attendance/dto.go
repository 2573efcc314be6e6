package attendance

import (
	"github.com/staffhq/wfm-backend-go/internal/pkg/validator"
)

type PunchInRequest struct {
	StaffID string `json:"staff_id"`
}

func (r *PunchInRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.StaffID) {
		errs = append(errs, validator.ValidationError{Field: "staff_id", Message: "is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PunchOutRequest struct {
	StaffID string `json:"staff_id"`
}

func (r *PunchOutRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.StaffID) {
		errs = append(errs, validator.ValidationError{Field: "staff_id", Message: "is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type BreakToggleRequest struct {
	StaffID string `json:"staff_id"`
}

func (r *BreakToggleRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.StaffID) {
		errs = append(errs, validator.ValidationError{Field: "staff_id", Message: "is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// AdminUpsertRequest is an admin correction for one staff member and date.
// The explicit status short-circuits all other classification rules. Punch
// timestamps are RFC3339 and override whatever the punch flow recorded.
type AdminUpsertRequest struct {
	StaffID         string  `json:"staff_id"`
	Date            string  `json:"date"`
	Status          string  `json:"status"`
	PunchIn         *string `json:"punch_in,omitempty"`
	PunchOut        *string `json:"punch_out,omitempty"`
	OvertimeMinutes *int    `json:"overtime_minutes,omitempty"`
	Remarks         *string `json:"remarks,omitempty"`
}

func (r *AdminUpsertRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.StaffID) {
		errs = append(errs, validator.ValidationError{Field: "staff_id", Message: "is required"})
	}
	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "must be YYYY-MM-DD"})
	}
	validStatuses := []string{
		string(StatusPresent), string(StatusHalfDay), string(StatusLeave), string(StatusAbsent),
	}
	if !validator.IsInSlice(r.Status, validStatuses) {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "must be one of present, half_day, leave, absent"})
	}
	if r.PunchIn != nil {
		if _, ok := validator.IsValidDateTime(*r.PunchIn); !ok {
			errs = append(errs, validator.ValidationError{Field: "punch_in", Message: "must be an RFC3339 timestamp"})
		}
	}
	if r.PunchOut != nil {
		if _, ok := validator.IsValidDateTime(*r.PunchOut); !ok {
			errs = append(errs, validator.ValidationError{Field: "punch_out", Message: "must be an RFC3339 timestamp"})
		}
	}
	if r.OvertimeMinutes != nil && *r.OvertimeMinutes < 0 {
		errs = append(errs, validator.ValidationError{Field: "overtime_minutes", Message: "must be non-negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RecordResponse struct {
	ID              string  `json:"id"`
	StaffID         string  `json:"staff_id"`
	Date            string  `json:"date"`
	PunchIn         *string `json:"punch_in,omitempty"`
	PunchOut        *string `json:"punch_out,omitempty"`
	BreakSeconds    int     `json:"break_seconds"`
	OnBreak         bool    `json:"on_break"`
	OvertimeMinutes int     `json:"overtime_minutes"`
	Status          string  `json:"status"`
	Remarks         *string `json:"remarks,omitempty"`
}

type ClassificationResponse struct {
	StaffID        string         `json:"staff_id"`
	MonthKey       string         `json:"month_key"`
	Classification Classification `json:"classification"`
}
