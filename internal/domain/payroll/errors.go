package payroll

import "errors"

var (
	ErrCycleNotFound     = errors.New("payroll cycle not found")
	ErrLineNotFound      = errors.New("payroll line not found")
	ErrCycleNotDraft     = errors.New("payroll cycle is not in draft state")
	ErrCycleNotLocked    = errors.New("payroll cycle is not locked")
	ErrCyclePaid         = errors.New("payroll cycle already paid, cannot modify")
	ErrLinePaid          = errors.New("payroll line already paid, cannot modify")
	ErrInvalidMonthKey   = errors.New("invalid month key")
	ErrProfileNotFound   = errors.New("compensation profile not found")
	ErrMalformedProfile  = errors.New("compensation profile is malformed")
	ErrNoLinesSelected   = errors.New("no payroll lines selected")
	ErrInvalidTransition = errors.New("invalid payroll cycle state transition")
)
