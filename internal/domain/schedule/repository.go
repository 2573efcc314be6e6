package schedule

import (
	"context"
	"time"
)

type ScheduleRepository interface {
	ListWeeklyOffByStaff(ctx context.Context, staffID string) ([]WeeklyOffRule, error)
	ListWeeklyOffByTenant(ctx context.Context, tenantID string) ([]WeeklyOffRule, error)
	// ListHolidaysByTenantAndRange returns active holidays only.
	ListHolidaysByTenantAndRange(ctx context.Context, tenantID string, from, to time.Time) ([]Holiday, error)
}
