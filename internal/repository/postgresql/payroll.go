package postgresql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/staffhq/wfm-backend-go/internal/domain/payroll"
	"github.com/staffhq/wfm-backend-go/internal/pkg/database"
	"github.com/staffhq/wfm-backend-go/internal/pkg/validator"
)

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

// ========== CYCLES ==========

const cycleColumns = `id, tenant_id, month_key, status, locked_at, paid_at, created_at, updated_at`

func scanCycle(row pgx.Row) (payroll.PayrollCycle, error) {
	var c payroll.PayrollCycle
	err := row.Scan(
		&c.ID, &c.TenantID, &c.MonthKey, &c.Status, &c.LockedAt, &c.PaidAt, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

// GetOrCreateCycle inserts a draft cycle for the month when none exists. The
// unique index on (tenant_id, month_key) makes concurrent first access safe;
// the loser of the race reads the winner's row.
func (r *payrollRepository) GetOrCreateCycle(ctx context.Context, tenantID string, monthKey string) (payroll.PayrollCycle, error) {
	q := GetQuerier(ctx, r.db)

	insert := `
		INSERT INTO payroll_cycles (id, tenant_id, month_key, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (tenant_id, month_key) DO NOTHING
		RETURNING ` + cycleColumns + `
	`

	c, err := scanCycle(q.QueryRow(ctx, insert, uuid.Must(uuid.NewV7()).String(), tenantID, monthKey, payroll.CycleStatusDraft))
	if err == nil {
		return c, nil
	}
	if err != pgx.ErrNoRows {
		return payroll.PayrollCycle{}, fmt.Errorf("failed to create payroll cycle: %w", err)
	}

	return r.GetCycleByMonthKey(ctx, tenantID, monthKey)
}

func (r *payrollRepository) GetCycleByID(ctx context.Context, id string, tenantID string) (payroll.PayrollCycle, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + cycleColumns + `
		FROM payroll_cycles
		WHERE id = $1 AND tenant_id = $2
	`

	c, err := scanCycle(q.QueryRow(ctx, query, id, tenantID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayrollCycle{}, payroll.ErrCycleNotFound
		}
		return payroll.PayrollCycle{}, fmt.Errorf("failed to get payroll cycle: %w", err)
	}

	return c, nil
}

func (r *payrollRepository) GetCycleByMonthKey(ctx context.Context, tenantID string, monthKey string) (payroll.PayrollCycle, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + cycleColumns + `
		FROM payroll_cycles
		WHERE tenant_id = $1 AND month_key = $2
	`

	c, err := scanCycle(q.QueryRow(ctx, query, tenantID, monthKey))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayrollCycle{}, payroll.ErrCycleNotFound
		}
		return payroll.PayrollCycle{}, fmt.Errorf("failed to get payroll cycle: %w", err)
	}

	return c, nil
}

func (r *payrollRepository) ListCycles(ctx context.Context, tenantID string) ([]payroll.PayrollCycle, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + cycleColumns + `
		FROM payroll_cycles
		WHERE tenant_id = $1
		ORDER BY month_key DESC
	`

	rows, err := q.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll cycles: %w", err)
	}
	defer rows.Close()

	var result []payroll.PayrollCycle
	for rows.Next() {
		c, err := scanCycle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll cycle: %w", err)
		}
		result = append(result, c)
	}

	return result, rows.Err()
}

// TransitionCycle is an optimistic state-machine step: the WHERE clause on
// the current status means a concurrent transition wins and this one fails.
func (r *payrollRepository) TransitionCycle(ctx context.Context, id string, tenantID string, from, to payroll.CycleStatus) (payroll.PayrollCycle, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_cycles SET
			status = $1,
			locked_at = CASE WHEN $1 = 'locked' THEN NOW() WHEN $1 = 'draft' THEN NULL ELSE locked_at END,
			paid_at = CASE WHEN $1 = 'paid' THEN NOW() ELSE paid_at END,
			updated_at = NOW()
		WHERE id = $2 AND tenant_id = $3 AND status = $4
		RETURNING ` + cycleColumns + `
	`

	c, err := scanCycle(q.QueryRow(ctx, query, to, id, tenantID, from))
	if err != nil {
		if err == pgx.ErrNoRows {
			if _, getErr := r.GetCycleByID(ctx, id, tenantID); getErr != nil {
				return payroll.PayrollCycle{}, getErr
			}
			return payroll.PayrollCycle{}, payroll.ErrInvalidTransition
		}
		return payroll.PayrollCycle{}, fmt.Errorf("failed to transition payroll cycle: %w", err)
	}

	return c, nil
}

// ========== LINES ==========

type lineScanner interface {
	Scan(dest ...any) error
}

func scanLine(row lineScanner) (payroll.PayrollLine, error) {
	var l payroll.PayrollLine
	var earnings, incentives, deductions, summary, totals, adjustments []byte

	err := row.Scan(
		&l.ID, &l.CycleID, &l.StaffID,
		&earnings, &incentives, &deductions, &summary, &totals, &adjustments,
		&l.Remarks, &l.PaidAt, &l.PaidAmount, &l.PaidMode, &l.PaidRef,
		&l.CreatedAt, &l.UpdatedAt, &l.StaffName, &l.StaffCode,
	)
	if err != nil {
		return payroll.PayrollLine{}, err
	}

	for _, pair := range []struct {
		raw  []byte
		dest any
	}{
		{earnings, &l.Earnings},
		{incentives, &l.Incentives},
		{deductions, &l.Deductions},
		{summary, &l.AttendanceSummary},
		{totals, &l.Totals},
		{adjustments, &l.Adjustments},
	} {
		if len(pair.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(pair.raw, pair.dest); err != nil {
			return payroll.PayrollLine{}, fmt.Errorf("failed to decode payroll line field: %w", err)
		}
	}

	return l, nil
}

const lineSelect = `
		SELECT l.id, l.cycle_id, l.staff_id,
			   l.earnings, l.incentives, l.deductions, l.attendance_summary, l.totals, l.adjustments,
			   l.remarks, l.paid_at, l.paid_amount, l.paid_mode, l.paid_ref,
			   l.created_at, l.updated_at, s.full_name, s.staff_code
		FROM payroll_lines l
		JOIN staff s ON s.id = l.staff_id`

func marshalLineFields(line payroll.PayrollLine) (earnings, incentives, deductions, summary, totals []byte, err error) {
	if earnings, err = json.Marshal(line.Earnings); err != nil {
		return
	}
	if incentives, err = json.Marshal(line.Incentives); err != nil {
		return
	}
	if deductions, err = json.Marshal(line.Deductions); err != nil {
		return
	}
	if summary, err = json.Marshal(line.AttendanceSummary); err != nil {
		return
	}
	totals, err = json.Marshal(line.Totals)
	return
}

// UpsertLine writes the computed fields of a line, keyed by the unique index
// on (cycle_id, staff_id). Manual fields set after computation (adjustments,
// remarks, payment stamps) survive a recompute.
func (r *payrollRepository) UpsertLine(ctx context.Context, tenantID string, line payroll.PayrollLine) (payroll.PayrollLine, error) {
	q := GetQuerier(ctx, r.db)

	earnings, incentives, deductions, summary, totals, err := marshalLineFields(line)
	if err != nil {
		return payroll.PayrollLine{}, fmt.Errorf("failed to encode payroll line: %w", err)
	}

	query := `
		INSERT INTO payroll_lines (
			id, cycle_id, staff_id, earnings, incentives, deductions,
			attendance_summary, totals, adjustments
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, '[]')
		ON CONFLICT (cycle_id, staff_id) DO UPDATE SET
			earnings = EXCLUDED.earnings,
			incentives = EXCLUDED.incentives,
			deductions = EXCLUDED.deductions,
			attendance_summary = EXCLUDED.attendance_summary,
			totals = EXCLUDED.totals,
			updated_at = NOW()
		RETURNING id
	`

	var id string
	err = q.QueryRow(ctx, query,
		uuid.Must(uuid.NewV7()).String(),
		line.CycleID, line.StaffID, earnings, incentives, deductions, summary, totals,
	).Scan(&id)
	if err != nil {
		return payroll.PayrollLine{}, fmt.Errorf("failed to upsert payroll line: %w", err)
	}

	return r.GetLineByID(ctx, id, line.CycleID, tenantID)
}

func (r *payrollRepository) GetLineByID(ctx context.Context, id string, cycleID string, tenantID string) (payroll.PayrollLine, error) {
	q := GetQuerier(ctx, r.db)

	query := lineSelect + `
		WHERE l.id = $1 AND l.cycle_id = $2 AND s.tenant_id = $3
	`

	l, err := scanLine(q.QueryRow(ctx, query, id, cycleID, tenantID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayrollLine{}, payroll.ErrLineNotFound
		}
		return payroll.PayrollLine{}, fmt.Errorf("failed to get payroll line: %w", err)
	}

	return l, nil
}

func (r *payrollRepository) ListLinesByCycle(ctx context.Context, cycleID string, tenantID string) ([]payroll.PayrollLine, error) {
	q := GetQuerier(ctx, r.db)

	query := lineSelect + `
		WHERE l.cycle_id = $1 AND s.tenant_id = $2
		ORDER BY s.staff_code
	`

	rows, err := q.Query(ctx, query, cycleID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll lines: %w", err)
	}
	defer rows.Close()

	var result []payroll.PayrollLine
	for rows.Next() {
		l, err := scanLine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll line: %w", err)
		}
		result = append(result, l)
	}

	return result, rows.Err()
}

func (r *payrollRepository) UpdateLine(ctx context.Context, tenantID string, req payroll.UpdateLineRequest) (payroll.PayrollLine, error) {
	var updated payroll.PayrollLine

	err := WithTransaction(ctx, r.db, func(ctx context.Context) error {
		current, err := r.GetLineByID(ctx, req.LineID, req.CycleID, tenantID)
		if err != nil {
			return err
		}

		if req.Earnings != nil {
			current.Earnings = req.Earnings
		}
		if req.Incentives != nil {
			current.Incentives = req.Incentives
		}
		if req.Deductions != nil {
			current.Deductions = req.Deductions
		}
		if req.Adjustments != nil {
			current.Adjustments = req.Adjustments
		}
		if req.Remarks != nil {
			current.Remarks = req.Remarks
		}

		earnings, incentives, deductions, _, _, err := marshalLineFields(current)
		if err != nil {
			return fmt.Errorf("failed to encode payroll line: %w", err)
		}
		adjustments, err := json.Marshal(current.Adjustments)
		if err != nil {
			return fmt.Errorf("failed to encode adjustments: %w", err)
		}

		query := `
			UPDATE payroll_lines SET
				earnings = $1, incentives = $2, deductions = $3,
				adjustments = $4, remarks = $5, updated_at = NOW()
			WHERE id = $6 AND cycle_id = $7
		`

		q := GetQuerier(ctx, r.db)
		tag, err := q.Exec(ctx, query, earnings, incentives, deductions, adjustments, current.Remarks, req.LineID, req.CycleID)
		if err != nil {
			return fmt.Errorf("failed to update payroll line: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return payroll.ErrLineNotFound
		}

		updated, err = r.GetLineByID(ctx, req.LineID, req.CycleID, tenantID)
		return err
	})
	if err != nil {
		return payroll.PayrollLine{}, err
	}

	return updated, nil
}

// MarkLinesPaid stamps unpaid lines, defaulting paid_amount to the line net
// plus adjustments when the caller does not supply one.
func (r *payrollRepository) MarkLinesPaid(ctx context.Context, cycleID string, tenantID string, lineIDs []string, details payroll.PaymentDetails) (int, error) {
	selected := make(map[string]bool, len(lineIDs))
	for _, id := range lineIDs {
		selected[id] = true
	}

	count := 0
	err := WithTransaction(ctx, r.db, func(ctx context.Context) error {
		lines, err := r.ListLinesByCycle(ctx, cycleID, tenantID)
		if err != nil {
			return err
		}

		q := GetQuerier(ctx, r.db)
		query := `
			UPDATE payroll_lines SET
				paid_at = $1, paid_amount = $2, paid_mode = $3, paid_ref = $4, updated_at = NOW()
			WHERE id = $5 AND paid_at IS NULL
		`

		for _, line := range lines {
			if len(lineIDs) > 0 && !selected[line.ID] {
				continue
			}
			if line.Paid() {
				continue
			}

			amount := details.PaidAmount
			if amount == nil {
				net := line.NetWithAdjustments()
				amount = &net
			}

			tag, err := q.Exec(ctx, query, details.PaidAt, amount, details.PaidMode, details.PaidRef, line.ID)
			if err != nil {
				return fmt.Errorf("failed to mark payroll line paid: %w", err)
			}
			count += int(tag.RowsAffected())
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return count, nil
}

// ========== COMPENSATION PROFILES ==========

// GetCompensationProfile resolves the profile effective for the month: the
// newest row whose effective_from is on or before the month start. Broken
// JSON surfaces as ErrMalformedProfile so the caller can skip the staff
// member instead of failing the batch.
func (r *payrollRepository) GetCompensationProfile(ctx context.Context, staffID string, monthKey string) (payroll.CompensationProfile, error) {
	q := GetQuerier(ctx, r.db)

	monthStart, ok := validator.ParseMonthKey(monthKey)
	if !ok {
		return payroll.CompensationProfile{}, payroll.ErrInvalidMonthKey
	}

	query := `
		SELECT earnings, incentives, deductions
		FROM compensation_profiles
		WHERE staff_id = $1 AND effective_from <= $2
		ORDER BY effective_from DESC
		LIMIT 1
	`

	var earnings, incentives, deductions []byte
	err := q.QueryRow(ctx, query, staffID, monthStart).Scan(&earnings, &incentives, &deductions)
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.CompensationProfile{}, payroll.ErrProfileNotFound
		}
		return payroll.CompensationProfile{}, fmt.Errorf("failed to get compensation profile: %w", err)
	}

	profile := payroll.CompensationProfile{StaffID: staffID}
	for _, pair := range []struct {
		raw  []byte
		dest *[]payroll.CompensationItem
	}{
		{earnings, &profile.Earnings},
		{incentives, &profile.Incentives},
		{deductions, &profile.Deductions},
	} {
		if len(pair.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(pair.raw, pair.dest); err != nil {
			return payroll.CompensationProfile{}, fmt.Errorf("%w: %v", payroll.ErrMalformedProfile, err)
		}
	}

	for _, item := range append(append(profile.Earnings, profile.Incentives...), profile.Deductions...) {
		if item.Key == "" {
			return payroll.CompensationProfile{}, payroll.ErrMalformedProfile
		}
		if item.AmountType != payroll.AmountFixed && item.AmountType != payroll.AmountPercent {
			return payroll.CompensationProfile{}, payroll.ErrMalformedProfile
		}
	}

	return profile, nil
}
