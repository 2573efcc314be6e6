package payroll

import "context"

type PayrollService interface {
	// ComputeCycle computes or recomputes every active staff member's line
	// for the month. The cycle must be in draft.
	ComputeCycle(ctx context.Context, req ComputeCycleRequest) (ComputeResult, error)
	GetCycle(ctx context.Context, cycleID string) (CycleResponse, []LineResponse, error)
	ListCycles(ctx context.Context) ([]CycleResponse, error)

	LockCycle(ctx context.Context, cycleID string) (CycleResponse, error)
	UnlockCycle(ctx context.Context, cycleID string) (CycleResponse, error)
	MarkCyclePaid(ctx context.Context, cycleID string, req MarkPaidRequest) (CycleResponse, error)
	MarkLinesPaid(ctx context.Context, cycleID string, req MarkPaidRequest) (int, error)

	UpdateLine(ctx context.Context, req UpdateLineRequest) (LineResponse, error)
	ExportCycleCSV(ctx context.Context, cycleID string) ([]byte, error)
}
