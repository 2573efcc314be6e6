package leave

import (
	"context"
	"time"
)

type RequestService interface {
	Apply(ctx context.Context, req ApplyRequest) (RequestResponse, error)
	Approve(ctx context.Context, id string) (RequestResponse, error)
	Reject(ctx context.Context, id string) (RequestResponse, error)
}

type AllocatorService interface {
	// AllocateBalances allocates cycle balances for every assignment active
	// on the reference date. An empty tenantID allocates across all tenants.
	AllocateBalances(ctx context.Context, tenantID string, referenceDate time.Time) (AllocationResult, error)
	ListBalances(ctx context.Context, staffID string) ([]BalanceResponse, error)
}
