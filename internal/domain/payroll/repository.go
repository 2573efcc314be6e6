package payroll

import "context"

// PayrollRepository defines data access methods for payroll cycles, lines
// and compensation profiles. All methods include tenantID to prevent
// cross-tenant data access. Idempotent upserts rely on unique indexes over
// (tenant_id, month_key) and (cycle_id, staff_id), not on check-then-insert.
type PayrollRepository interface {
	// Cycles
	GetOrCreateCycle(ctx context.Context, tenantID string, monthKey string) (PayrollCycle, error)
	GetCycleByID(ctx context.Context, id string, tenantID string) (PayrollCycle, error)
	GetCycleByMonthKey(ctx context.Context, tenantID string, monthKey string) (PayrollCycle, error)
	ListCycles(ctx context.Context, tenantID string) ([]PayrollCycle, error)
	// TransitionCycle moves a cycle from one status to another and fails with
	// ErrInvalidTransition if the cycle is not currently in `from`.
	TransitionCycle(ctx context.Context, id string, tenantID string, from, to CycleStatus) (PayrollCycle, error)

	// Lines
	UpsertLine(ctx context.Context, tenantID string, line PayrollLine) (PayrollLine, error)
	GetLineByID(ctx context.Context, id string, cycleID string, tenantID string) (PayrollLine, error)
	ListLinesByCycle(ctx context.Context, cycleID string, tenantID string) ([]PayrollLine, error)
	UpdateLine(ctx context.Context, tenantID string, req UpdateLineRequest) (PayrollLine, error)
	// MarkLinesPaid stamps payment fields on the given lines (all lines of the
	// cycle when lineIDs is empty), defaulting paid_amount to the line net.
	// Already-paid lines are left untouched. Returns the number updated.
	MarkLinesPaid(ctx context.Context, cycleID string, tenantID string, lineIDs []string, details PaymentDetails) (int, error)

	// Profiles
	GetCompensationProfile(ctx context.Context, staffID string, monthKey string) (CompensationProfile, error)
}
