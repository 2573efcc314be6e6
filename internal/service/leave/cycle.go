package leave

import (
	"time"

	"github.com/staffhq/wfm-backend-go/internal/domain/leave"
)

// CycleWindow is an inclusive-start, inclusive-end calendar span.
type CycleWindow struct {
	Start time.Time
	End   time.Time
}

// WindowFor returns the calendar-aligned cycle window containing the
// reference date: the month, quarter or year it falls in.
func WindowFor(cycleType leave.CycleType, ref time.Time) CycleWindow {
	y, m, _ := ref.Date()

	switch cycleType {
	case leave.CycleQuarterly:
		quarterStart := time.Month(((int(m)-1)/3)*3 + 1)
		start := time.Date(y, quarterStart, 1, 0, 0, 0, 0, time.UTC)
		return CycleWindow{Start: start, End: start.AddDate(0, 3, -1)}
	case leave.CycleYearly:
		start := time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
		return CycleWindow{Start: start, End: start.AddDate(1, 0, -1)}
	default:
		start := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
		return CycleWindow{Start: start, End: start.AddDate(0, 1, -1)}
	}
}

// PreviousWindow returns the window immediately before the one containing
// the reference date.
func PreviousWindow(cycleType leave.CycleType, ref time.Time) CycleWindow {
	current := WindowFor(cycleType, ref)
	return WindowFor(cycleType, current.Start.AddDate(0, 0, -1))
}
