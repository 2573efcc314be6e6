package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/staffhq/wfm-backend-go/internal/domain/leave"
	"github.com/staffhq/wfm-backend-go/internal/pkg/database"
)

type leaveTemplateRepository struct {
	db *database.DB
}

func NewLeaveTemplateRepository(db *database.DB) leave.TemplateRepository {
	return &leaveTemplateRepository{db: db}
}

// ListAssignmentsActiveOn loads active assignments with their templates, then
// attaches categories with a single follow-up query over the template ids.
func (r *leaveTemplateRepository) ListAssignmentsActiveOn(ctx context.Context, onDate time.Time, tenantID string) ([]leave.Assignment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT a.id, a.tenant_id, a.staff_id, a.template_id, a.effective_from, a.effective_to,
			   t.id, t.tenant_id, t.name, t.cycle_type, t.created_at, t.updated_at
		FROM leave_template_assignments a
		JOIN leave_templates t ON t.id = a.template_id
		WHERE a.effective_from <= $1
			AND (a.effective_to IS NULL OR a.effective_to >= $1)
			AND ($2 = '' OR a.tenant_id = $2)
		ORDER BY a.staff_id
	`

	rows, err := q.Query(ctx, query, onDate, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	defer rows.Close()

	var assignments []leave.Assignment
	templateIDs := make(map[string]struct{})
	for rows.Next() {
		var a leave.Assignment
		err := rows.Scan(
			&a.ID, &a.TenantID, &a.StaffID, &a.TemplateID, &a.EffectiveFrom, &a.EffectiveTo,
			&a.Template.ID, &a.Template.TenantID, &a.Template.Name, &a.Template.CycleType,
			&a.Template.CreatedAt, &a.Template.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		assignments = append(assignments, a)
		templateIDs[a.TemplateID] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(assignments) == 0 {
		return assignments, nil
	}

	ids := make([]string, 0, len(templateIDs))
	for id := range templateIDs {
		ids = append(ids, id)
	}

	categories, err := r.listCategories(ctx, ids)
	if err != nil {
		return nil, err
	}

	for i := range assignments {
		assignments[i].Template.Categories = categories[assignments[i].TemplateID]
	}
	return assignments, nil
}

func (r *leaveTemplateRepository) listCategories(ctx context.Context, templateIDs []string) (map[string][]leave.Category, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, template_id, name, leave_count, unused_rule, carry_limit_days, encash_limit_days
		FROM leave_categories
		WHERE template_id = ANY($1)
		ORDER BY template_id, name
	`

	rows, err := q.Query(ctx, query, templateIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]leave.Category)
	for rows.Next() {
		var c leave.Category
		err := rows.Scan(&c.ID, &c.TemplateID, &c.Name, &c.LeaveCount, &c.UnusedRule, &c.CarryLimitDays, &c.EncashLimitDays)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		result[c.TemplateID] = append(result[c.TemplateID], c)
	}

	return result, rows.Err()
}
