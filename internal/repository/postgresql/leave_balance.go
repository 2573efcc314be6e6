package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/staffhq/wfm-backend-go/internal/domain/leave"
	"github.com/staffhq/wfm-backend-go/internal/pkg/database"
)

type leaveBalanceRepository struct {
	db *database.DB
}

func NewLeaveBalanceRepository(db *database.DB) leave.BalanceRepository {
	return &leaveBalanceRepository{db: db}
}

const leaveBalanceColumns = `id, tenant_id, staff_id, category_id, cycle_start, cycle_end,
		allocated, carried_forward, used, encashed, remaining, created_at, updated_at`

func scanLeaveBalance(row pgx.Row) (leave.Balance, error) {
	var b leave.Balance
	err := row.Scan(
		&b.ID, &b.TenantID, &b.StaffID, &b.CategoryID, &b.CycleStart, &b.CycleEnd,
		&b.Allocated, &b.CarriedForward, &b.Used, &b.Encashed, &b.Remaining,
		&b.CreatedAt, &b.UpdatedAt,
	)
	return b, err
}

func (r *leaveBalanceRepository) Create(ctx context.Context, balance leave.Balance) (leave.Balance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_balances (
			id, tenant_id, staff_id, category_id, cycle_start, cycle_end,
			allocated, carried_forward, used, encashed, remaining
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + leaveBalanceColumns + `
	`

	created, err := scanLeaveBalance(q.QueryRow(ctx, query,
		uuid.Must(uuid.NewV7()).String(),
		balance.TenantID, balance.StaffID, balance.CategoryID, balance.CycleStart, balance.CycleEnd,
		balance.Allocated, balance.CarriedForward, balance.Used, balance.Encashed, balance.Remaining,
	))
	if err != nil {
		if strings.Contains(err.Error(), "uk_leave_balance_staff_category_cycle") {
			return leave.Balance{}, leave.ErrBalanceAlreadyAllocated
		}
		return leave.Balance{}, fmt.Errorf("failed to create leave balance: %w", err)
	}

	return created, nil
}

func (r *leaveBalanceRepository) GetByCycleStart(ctx context.Context, staffID, categoryID string, cycleStart time.Time) (leave.Balance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + leaveBalanceColumns + `
		FROM leave_balances
		WHERE staff_id = $1 AND category_id = $2 AND cycle_start = $3
	`

	b, err := scanLeaveBalance(q.QueryRow(ctx, query, staffID, categoryID, cycleStart))
	if err != nil {
		if err == pgx.ErrNoRows {
			return leave.Balance{}, leave.ErrBalanceNotFound
		}
		return leave.Balance{}, fmt.Errorf("failed to get leave balance: %w", err)
	}

	return b, nil
}

func (r *leaveBalanceRepository) ListByStaff(ctx context.Context, staffID string, tenantID string) ([]leave.Balance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT b.id, b.tenant_id, b.staff_id, b.category_id, b.cycle_start, b.cycle_end,
			   b.allocated, b.carried_forward, b.used, b.encashed, b.remaining,
			   b.created_at, b.updated_at, c.name
		FROM leave_balances b
		JOIN leave_categories c ON c.id = b.category_id
		WHERE b.staff_id = $1 AND b.tenant_id = $2
		ORDER BY b.cycle_start DESC, c.name
	`

	rows, err := q.Query(ctx, query, staffID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave balances: %w", err)
	}
	defer rows.Close()

	var result []leave.Balance
	for rows.Next() {
		var b leave.Balance
		err := rows.Scan(
			&b.ID, &b.TenantID, &b.StaffID, &b.CategoryID, &b.CycleStart, &b.CycleEnd,
			&b.Allocated, &b.CarriedForward, &b.Used, &b.Encashed, &b.Remaining,
			&b.CreatedAt, &b.UpdatedAt, &b.CategoryName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave balance: %w", err)
		}
		result = append(result, b)
	}

	return result, rows.Err()
}

func (r *leaveBalanceRepository) ApplyUsage(ctx context.Context, staffID, categoryID string, onDate time.Time, days float64) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_balances SET
			used = used + $1, remaining = remaining - $1, updated_at = NOW()
		WHERE staff_id = $2 AND category_id = $3 AND cycle_start <= $4 AND cycle_end >= $4
	`

	tag, err := q.Exec(ctx, query, days, staffID, categoryID, onDate)
	if err != nil {
		return fmt.Errorf("failed to apply leave usage: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return leave.ErrBalanceNotFound
	}

	return nil
}
