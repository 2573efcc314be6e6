package attendance

import "errors"

var (
	ErrRecordNotFound   = errors.New("attendance record not found")
	ErrAlreadyPunchedIn = errors.New("already punched in for this date")
	ErrNotPunchedIn     = errors.New("no open punch-in for this date")
	ErrMonthNotOpen     = errors.New("attendance month belongs to a locked or paid payroll cycle")
)
