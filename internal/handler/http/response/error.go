package response

import (
	"errors"
	"net/http"

	"github.com/staffhq/wfm-backend-go/internal/domain/attendance"
	"github.com/staffhq/wfm-backend-go/internal/domain/leave"
	"github.com/staffhq/wfm-backend-go/internal/domain/payroll"
	"github.com/staffhq/wfm-backend-go/internal/domain/staff"
	"github.com/staffhq/wfm-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Staff domain errors
	case errors.Is(err, staff.ErrStaffNotFound):
		NotFound(w, "Staff not found")

	// Attendance domain errors
	case errors.Is(err, attendance.ErrRecordNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrAlreadyPunchedIn):
		Conflict(w, "Already punched in today")
	case errors.Is(err, attendance.ErrNotPunchedIn):
		BadRequest(w, "No open attendance record for today", nil)
	case errors.Is(err, attendance.ErrMonthNotOpen):
		Conflict(w, "Payroll cycle for this month is locked or paid")

	// Leave domain errors
	case errors.Is(err, leave.ErrRequestNotFound):
		NotFound(w, "Leave request not found")
	case errors.Is(err, leave.ErrRequestAlreadyProcessed):
		Conflict(w, "Leave request already processed")
	case errors.Is(err, leave.ErrInvalidDateRange):
		BadRequest(w, "Invalid leave date range", nil)
	case errors.Is(err, leave.ErrAssignmentNotFound):
		NotFound(w, "Leave template assignment not found")
	case errors.Is(err, leave.ErrBalanceNotFound):
		NotFound(w, "Leave balance not found")
	case errors.Is(err, leave.ErrBalanceAlreadyAllocated):
		Conflict(w, "Leave balance already allocated for this cycle")

	// Payroll domain errors
	case errors.Is(err, payroll.ErrCycleNotFound):
		NotFound(w, "Payroll cycle not found")
	case errors.Is(err, payroll.ErrLineNotFound):
		NotFound(w, "Payroll line not found")
	case errors.Is(err, payroll.ErrCycleNotDraft):
		Conflict(w, "Payroll cycle is not in draft state")
	case errors.Is(err, payroll.ErrCycleNotLocked):
		Conflict(w, "Payroll cycle must be locked first")
	case errors.Is(err, payroll.ErrCyclePaid):
		Conflict(w, "Payroll cycle is already paid")
	case errors.Is(err, payroll.ErrLinePaid):
		Conflict(w, "Payroll line is already paid")
	case errors.Is(err, payroll.ErrInvalidTransition):
		Conflict(w, "Invalid payroll cycle state transition")
	case errors.Is(err, payroll.ErrInvalidMonthKey):
		BadRequest(w, "Invalid month key", nil)
	case errors.Is(err, payroll.ErrProfileNotFound):
		NotFound(w, "Compensation profile not found")
	case errors.Is(err, payroll.ErrMalformedProfile):
		BadRequest(w, "Compensation profile is malformed", nil)
	case errors.Is(err, payroll.ErrNoLinesSelected):
		BadRequest(w, "No payroll lines selected", nil)

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
