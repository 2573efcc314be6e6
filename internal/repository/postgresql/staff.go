package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/staffhq/wfm-backend-go/internal/domain/staff"
	"github.com/staffhq/wfm-backend-go/internal/pkg/database"
)

type staffRepository struct {
	db *database.DB
}

func NewStaffRepository(db *database.DB) staff.StaffRepository {
	return &staffRepository{db: db}
}

func (r *staffRepository) GetByID(ctx context.Context, id string, tenantID string) (staff.Staff, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, tenant_id, staff_code, full_name, employment_status, joined_at, created_at, updated_at
		FROM staff
		WHERE id = $1 AND tenant_id = $2
	`

	var s staff.Staff
	err := q.QueryRow(ctx, query, id, tenantID).Scan(
		&s.ID, &s.TenantID, &s.StaffCode, &s.FullName, &s.EmploymentStatus, &s.JoinedAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return staff.Staff{}, staff.ErrStaffNotFound
		}
		return staff.Staff{}, fmt.Errorf("failed to get staff: %w", err)
	}

	return s, nil
}

func (r *staffRepository) GetActiveByTenantID(ctx context.Context, tenantID string) ([]staff.Staff, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, tenant_id, staff_code, full_name, employment_status, joined_at, created_at, updated_at
		FROM staff
		WHERE tenant_id = $1 AND employment_status = $2
		ORDER BY staff_code
	`

	rows, err := q.Query(ctx, query, tenantID, staff.EmploymentStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list active staff: %w", err)
	}
	defer rows.Close()

	var result []staff.Staff
	for rows.Next() {
		var s staff.Staff
		err := rows.Scan(
			&s.ID, &s.TenantID, &s.StaffCode, &s.FullName, &s.EmploymentStatus, &s.JoinedAt, &s.CreatedAt, &s.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan staff: %w", err)
		}
		result = append(result, s)
	}

	return result, rows.Err()
}
