package schedule

import "time"

// WeeklyOffRule marks a weekday as a staff member's weekly off. Weeks narrows
// the rule to specific occurrences of that weekday within the month (1..5);
// empty means every week.
type WeeklyOffRule struct {
	ID            string
	TenantID      string
	StaffID       string
	DayOfWeek     time.Weekday
	Weeks         []int
	EffectiveFrom time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// AppliesTo reports whether the rule makes the given date a weekly off.
func (r WeeklyOffRule) AppliesTo(date time.Time) bool {
	if date.Weekday() != r.DayOfWeek {
		return false
	}
	if date.Before(r.EffectiveFrom) {
		return false
	}
	if len(r.Weeks) == 0 {
		return true
	}
	occurrence := (date.Day()-1)/7 + 1
	for _, w := range r.Weeks {
		if w == occurrence {
			return true
		}
	}
	return false
}

type Holiday struct {
	ID        string
	TenantID  string
	Date      time.Time
	Name      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
