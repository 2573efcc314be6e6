package leave

import (
	"context"
	"time"
)

type RequestRepository interface {
	Create(ctx context.Context, request Request) (Request, error)
	GetByID(ctx context.Context, id string, tenantID string) (Request, error)
	UpdateStatus(ctx context.Context, id string, tenantID string, from, to RequestStatus, decidedBy string) (Request, error)
	ListApprovedByStaffAndRange(ctx context.Context, staffID string, from, to time.Time) ([]Request, error)
	// ListApprovedByTenantAndRange is the batch fetch used by payroll compute.
	ListApprovedByTenantAndRange(ctx context.Context, tenantID string, from, to time.Time) ([]Request, error)
}

type TemplateRepository interface {
	// ListAssignmentsActiveOn returns assignments whose effective window
	// covers onDate, with templates and categories populated. An empty
	// tenantID means all tenants (used by the scheduled allocation job).
	ListAssignmentsActiveOn(ctx context.Context, onDate time.Time, tenantID string) ([]Assignment, error)
}

type BalanceRepository interface {
	// Create relies on the unique index over (staff_id, category_id,
	// cycle_start) and returns ErrBalanceAlreadyAllocated on conflict.
	Create(ctx context.Context, balance Balance) (Balance, error)
	GetByCycleStart(ctx context.Context, staffID, categoryID string, cycleStart time.Time) (Balance, error)
	ListByStaff(ctx context.Context, staffID string, tenantID string) ([]Balance, error)
	// ApplyUsage adds days to Used and subtracts them from Remaining for the
	// balance whose window contains onDate.
	ApplyUsage(ctx context.Context, staffID, categoryID string, onDate time.Time, days float64) error
}
