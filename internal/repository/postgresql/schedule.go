package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/staffhq/wfm-backend-go/internal/domain/schedule"
	"github.com/staffhq/wfm-backend-go/internal/pkg/database"
)

type scheduleRepository struct {
	db *database.DB
}

func NewScheduleRepository(db *database.DB) schedule.ScheduleRepository {
	return &scheduleRepository{db: db}
}

func (r *scheduleRepository) listWeeklyOff(ctx context.Context, query string, arg string) ([]schedule.WeeklyOffRule, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list weekly off rules: %w", err)
	}
	defer rows.Close()

	var result []schedule.WeeklyOffRule
	for rows.Next() {
		var rule schedule.WeeklyOffRule
		var dayOfWeek int
		err := rows.Scan(
			&rule.ID, &rule.TenantID, &rule.StaffID, &dayOfWeek, &rule.Weeks,
			&rule.EffectiveFrom, &rule.CreatedAt, &rule.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan weekly off rule: %w", err)
		}
		rule.DayOfWeek = time.Weekday(dayOfWeek)
		result = append(result, rule)
	}

	return result, rows.Err()
}

func (r *scheduleRepository) ListWeeklyOffByStaff(ctx context.Context, staffID string) ([]schedule.WeeklyOffRule, error) {
	query := `
		SELECT id, tenant_id, staff_id, day_of_week, weeks, effective_from, created_at, updated_at
		FROM weekly_off_rules
		WHERE staff_id = $1
	`
	return r.listWeeklyOff(ctx, query, staffID)
}

func (r *scheduleRepository) ListWeeklyOffByTenant(ctx context.Context, tenantID string) ([]schedule.WeeklyOffRule, error) {
	query := `
		SELECT id, tenant_id, staff_id, day_of_week, weeks, effective_from, created_at, updated_at
		FROM weekly_off_rules
		WHERE tenant_id = $1
	`
	return r.listWeeklyOff(ctx, query, tenantID)
}

func (r *scheduleRepository) ListHolidaysByTenantAndRange(ctx context.Context, tenantID string, from, to time.Time) ([]schedule.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, tenant_id, date, name, is_active, created_at, updated_at
		FROM holidays
		WHERE tenant_id = $1 AND date BETWEEN $2 AND $3 AND is_active = TRUE
		ORDER BY date
	`

	rows, err := q.Query(ctx, query, tenantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	defer rows.Close()

	var result []schedule.Holiday
	for rows.Next() {
		var h schedule.Holiday
		err := rows.Scan(&h.ID, &h.TenantID, &h.Date, &h.Name, &h.IsActive, &h.CreatedAt, &h.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holiday: %w", err)
		}
		result = append(result, h)
	}

	return result, rows.Err()
}
