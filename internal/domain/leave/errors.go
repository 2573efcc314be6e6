package leave

import "errors"

var (
	ErrRequestNotFound         = errors.New("leave request not found")
	ErrRequestAlreadyProcessed = errors.New("leave request already processed")
	ErrInvalidDateRange        = errors.New("leave request date range is invalid")
	ErrAssignmentNotFound      = errors.New("leave template assignment not found")
	ErrBalanceNotFound         = errors.New("leave balance not found")
	ErrBalanceAlreadyAllocated = errors.New("leave balance already allocated for this cycle window")
)
