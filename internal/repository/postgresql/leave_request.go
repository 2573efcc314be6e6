package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/staffhq/wfm-backend-go/internal/domain/leave"
	"github.com/staffhq/wfm-backend-go/internal/pkg/database"
)

type leaveRequestRepository struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.RequestRepository {
	return &leaveRequestRepository{db: db}
}

const leaveRequestColumns = `id, tenant_id, staff_id, category_id, start_date, end_date,
		paid_days, unpaid_days, reason, status, decided_by, decided_at, created_at, updated_at`

func scanLeaveRequest(row pgx.Row) (leave.Request, error) {
	var req leave.Request
	err := row.Scan(
		&req.ID, &req.TenantID, &req.StaffID, &req.CategoryID, &req.StartDate, &req.EndDate,
		&req.PaidDays, &req.UnpaidDays, &req.Reason, &req.Status, &req.DecidedBy, &req.DecidedAt,
		&req.CreatedAt, &req.UpdatedAt,
	)
	return req, err
}

func (r *leaveRequestRepository) Create(ctx context.Context, request leave.Request) (leave.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_requests (
			id, tenant_id, staff_id, category_id, start_date, end_date,
			paid_days, unpaid_days, reason, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + leaveRequestColumns + `
	`

	created, err := scanLeaveRequest(q.QueryRow(ctx, query,
		uuid.Must(uuid.NewV7()).String(),
		request.TenantID, request.StaffID, request.CategoryID, request.StartDate, request.EndDate,
		request.PaidDays, request.UnpaidDays, request.Reason, request.Status,
	))
	if err != nil {
		return leave.Request{}, fmt.Errorf("failed to create leave request: %w", err)
	}

	return created, nil
}

func (r *leaveRequestRepository) GetByID(ctx context.Context, id string, tenantID string) (leave.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + leaveRequestColumns + `
		FROM leave_requests
		WHERE id = $1 AND tenant_id = $2
	`

	req, err := scanLeaveRequest(q.QueryRow(ctx, query, id, tenantID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return leave.Request{}, leave.ErrRequestNotFound
		}
		return leave.Request{}, fmt.Errorf("failed to get leave request: %w", err)
	}

	return req, nil
}

// UpdateStatus transitions a request and fails when it is no longer in the
// expected state, so approve/reject cannot race each other.
func (r *leaveRequestRepository) UpdateStatus(ctx context.Context, id string, tenantID string, from, to leave.RequestStatus, decidedBy string) (leave.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests SET
			status = $1, decided_by = $2, decided_at = NOW(), updated_at = NOW()
		WHERE id = $3 AND tenant_id = $4 AND status = $5
		RETURNING ` + leaveRequestColumns + `
	`

	updated, err := scanLeaveRequest(q.QueryRow(ctx, query, to, decidedBy, id, tenantID, from))
	if err != nil {
		if err == pgx.ErrNoRows {
			if _, getErr := r.GetByID(ctx, id, tenantID); getErr != nil {
				return leave.Request{}, getErr
			}
			return leave.Request{}, leave.ErrRequestAlreadyProcessed
		}
		return leave.Request{}, fmt.Errorf("failed to update leave request status: %w", err)
	}

	return updated, nil
}

func (r *leaveRequestRepository) listApproved(ctx context.Context, query string, arg string, from, to time.Time) ([]leave.Request, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, arg, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave requests: %w", err)
	}
	defer rows.Close()

	var result []leave.Request
	for rows.Next() {
		req, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave request: %w", err)
		}
		result = append(result, req)
	}

	return result, rows.Err()
}

func (r *leaveRequestRepository) ListApprovedByStaffAndRange(ctx context.Context, staffID string, from, to time.Time) ([]leave.Request, error) {
	query := `
		SELECT ` + leaveRequestColumns + `
		FROM leave_requests
		WHERE staff_id = $1 AND status = 'approved'
			AND start_date <= $3 AND end_date >= $2
		ORDER BY start_date
	`
	return r.listApproved(ctx, query, staffID, from, to)
}

func (r *leaveRequestRepository) ListApprovedByTenantAndRange(ctx context.Context, tenantID string, from, to time.Time) ([]leave.Request, error) {
	query := `
		SELECT ` + leaveRequestColumns + `
		FROM leave_requests
		WHERE tenant_id = $1 AND status = 'approved'
			AND start_date <= $3 AND end_date >= $2
		ORDER BY staff_id, start_date
	`
	return r.listApproved(ctx, query, tenantID, from, to)
}
