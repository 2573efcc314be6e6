package attendance

import "context"

type Service interface {
	PunchIn(ctx context.Context, req PunchInRequest) (RecordResponse, error)
	PunchOut(ctx context.Context, req PunchOutRequest) (RecordResponse, error)
	ToggleBreak(ctx context.Context, req BreakToggleRequest) (RecordResponse, error)
	AdminUpsert(ctx context.Context, req AdminUpsertRequest) (RecordResponse, error)
	ClassifyMonth(ctx context.Context, staffID string, monthKey string) (ClassificationResponse, error)
}

// CycleGuard answers whether a month is still editable. The payroll service
// implements it; attendance edits are rejected once the month's cycle is
// locked or paid.
type CycleGuard interface {
	IsMonthOpen(ctx context.Context, tenantID string, monthKey string) (bool, error)
}
