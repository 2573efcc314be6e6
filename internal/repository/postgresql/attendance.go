package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/staffhq/wfm-backend-go/internal/domain/attendance"
	"github.com/staffhq/wfm-backend-go/internal/pkg/database"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

const attendanceColumns = `id, tenant_id, staff_id, date, punch_in, punch_out,
		break_seconds, break_started_at, overtime_minutes, status, remarks, created_at, updated_at`

func scanAttendanceRecord(row pgx.Row) (attendance.Record, error) {
	var rec attendance.Record
	err := row.Scan(
		&rec.ID, &rec.TenantID, &rec.StaffID, &rec.Date, &rec.PunchIn, &rec.PunchOut,
		&rec.BreakSeconds, &rec.BreakStartedAt, &rec.OvertimeMinutes, &rec.Status, &rec.Remarks,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	return rec, err
}

func (r *attendanceRepository) GetByStaffAndDate(ctx context.Context, staffID string, date time.Time) (attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendance_records
		WHERE staff_id = $1 AND date = $2
	`

	rec, err := scanAttendanceRecord(q.QueryRow(ctx, query, staffID, date))
	if err != nil {
		if err == pgx.ErrNoRows {
			return attendance.Record{}, attendance.ErrRecordNotFound
		}
		return attendance.Record{}, fmt.Errorf("failed to get attendance record: %w", err)
	}

	return rec, nil
}

func (r *attendanceRepository) Create(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance_records (
			id, tenant_id, staff_id, date, punch_in, punch_out,
			break_seconds, break_started_at, overtime_minutes, status, remarks
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + attendanceColumns + `
	`

	rec, err := scanAttendanceRecord(q.QueryRow(ctx, query,
		uuid.Must(uuid.NewV7()).String(),
		record.TenantID, record.StaffID, record.Date, record.PunchIn, record.PunchOut,
		record.BreakSeconds, record.BreakStartedAt, record.OvertimeMinutes, record.Status, record.Remarks,
	))
	if err != nil {
		if strings.Contains(err.Error(), "uk_attendance_staff_date") {
			return attendance.Record{}, attendance.ErrAlreadyPunchedIn
		}
		return attendance.Record{}, fmt.Errorf("failed to create attendance record: %w", err)
	}

	return rec, nil
}

func (r *attendanceRepository) Update(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendance_records SET
			punch_in = $1, punch_out = $2, break_seconds = $3, break_started_at = $4,
			overtime_minutes = $5, status = $6, remarks = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING ` + attendanceColumns + `
	`

	rec, err := scanAttendanceRecord(q.QueryRow(ctx, query,
		record.PunchIn, record.PunchOut, record.BreakSeconds, record.BreakStartedAt,
		record.OvertimeMinutes, record.Status, record.Remarks, record.ID,
	))
	if err != nil {
		if err == pgx.ErrNoRows {
			return attendance.Record{}, attendance.ErrRecordNotFound
		}
		return attendance.Record{}, fmt.Errorf("failed to update attendance record: %w", err)
	}

	return rec, nil
}

func (r *attendanceRepository) listByRange(ctx context.Context, query string, arg string, from, to time.Time) ([]attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, arg, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}
	defer rows.Close()

	var result []attendance.Record
	for rows.Next() {
		rec, err := scanAttendanceRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		result = append(result, rec)
	}

	return result, rows.Err()
}

func (r *attendanceRepository) ListByStaffAndRange(ctx context.Context, staffID string, from, to time.Time) ([]attendance.Record, error) {
	query := `
		SELECT ` + attendanceColumns + `
		FROM attendance_records
		WHERE staff_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date
	`
	return r.listByRange(ctx, query, staffID, from, to)
}

func (r *attendanceRepository) ListByTenantAndRange(ctx context.Context, tenantID string, from, to time.Time) ([]attendance.Record, error) {
	query := `
		SELECT ` + attendanceColumns + `
		FROM attendance_records
		WHERE tenant_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY staff_id, date
	`
	return r.listByRange(ctx, query, tenantID, from, to)
}
