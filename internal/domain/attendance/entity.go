package attendance

import (
	"time"
)

// Status is the explicit persisted status of an attendance record. An admin
// or the punch flow sets it; day classification treats it as authoritative.
type Status string

const (
	StatusPresent Status = "present"
	StatusHalfDay Status = "half_day"
	StatusLeave   Status = "leave"
	StatusAbsent  Status = "absent"
)

// Record is one staff member's attendance row for one calendar date.
type Record struct {
	ID              string
	TenantID        string
	StaffID         string
	Date            time.Time
	PunchIn         *time.Time
	PunchOut        *time.Time
	BreakSeconds    int
	BreakStartedAt  *time.Time
	OvertimeMinutes int
	Status          Status
	Remarks         *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// DayCategory is the single verdict assigned to each day of a classified range.
type DayCategory string

const (
	DayPresent     DayCategory = "present"
	DayHalf        DayCategory = "half_day"
	DayPaidLeave   DayCategory = "paid_leave"
	DayUnpaidLeave DayCategory = "unpaid_leave"
	DayAbsent      DayCategory = "absent"
	DayWeeklyOff   DayCategory = "weekly_off"
	DayHoliday     DayCategory = "holiday"
)

// DayCounts aggregates a classified range by category.
type DayCounts struct {
	Present     int `json:"present"`
	HalfDay     int `json:"half_day"`
	PaidLeave   int `json:"paid_leave"`
	UnpaidLeave int `json:"unpaid_leave"`
	Absent      int `json:"absent"`
	WeeklyOff   int `json:"weekly_off"`
	Holiday     int `json:"holiday"`
}

// Leave returns the combined paid and unpaid leave day count.
func (c DayCounts) Leave() int {
	return c.PaidLeave + c.UnpaidLeave
}

// Total returns the number of classified days.
func (c DayCounts) Total() int {
	return c.Present + c.HalfDay + c.PaidLeave + c.UnpaidLeave + c.Absent + c.WeeklyOff + c.Holiday
}

// Classification is the classifier output for one staff member and range:
// one category per classified day plus the aggregate counts. Future days
// with no record carry no verdict and appear in neither.
type Classification struct {
	Days            map[string]DayCategory `json:"days"`
	Counts          DayCounts              `json:"counts"`
	OvertimeMinutes int                    `json:"overtime_minutes"`
}

// DateKey is the map key format used for day verdicts.
const DateKey = "2006-01-02"
