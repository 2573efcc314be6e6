package attendance

import (
	"context"
	"time"
)

type AttendanceRepository interface {
	GetByStaffAndDate(ctx context.Context, staffID string, date time.Time) (Record, error)
	Create(ctx context.Context, record Record) (Record, error)
	Update(ctx context.Context, record Record) (Record, error)
	ListByStaffAndRange(ctx context.Context, staffID string, from, to time.Time) ([]Record, error)
	// ListByTenantAndRange is the batch fetch the payroll engine uses so a
	// compute pass does not issue one range query per staff member.
	ListByTenantAndRange(ctx context.Context, tenantID string, from, to time.Time) ([]Record, error)
}
