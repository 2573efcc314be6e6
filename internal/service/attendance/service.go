package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/staffhq/wfm-backend-go/internal/domain/attendance"
	"github.com/staffhq/wfm-backend-go/internal/domain/leave"
	"github.com/staffhq/wfm-backend-go/internal/domain/schedule"
	"github.com/staffhq/wfm-backend-go/internal/domain/staff"
	"github.com/staffhq/wfm-backend-go/internal/pkg/jwt"
	"github.com/staffhq/wfm-backend-go/internal/pkg/validator"
)

const (
	standardWorkMinutes = 8 * 60
	halfDayThreshold    = 4 * time.Hour
)

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	staff.StaffRepository
	leave.RequestRepository
	schedule.ScheduleRepository
	cycleGuard attendance.CycleGuard
	now        func() time.Time
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	staffRepo staff.StaffRepository,
	leaveRepo leave.RequestRepository,
	scheduleRepo schedule.ScheduleRepository,
	cycleGuard attendance.CycleGuard,
) attendance.Service {
	return &AttendanceServiceImpl{
		AttendanceRepository: attendanceRepo,
		StaffRepository:      staffRepo,
		RequestRepository:    leaveRepo,
		ScheduleRepository:   scheduleRepo,
		cycleGuard:           cycleGuard,
		now:                  func() time.Time { return time.Now().UTC() },
	}
}

func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	format := t.Format("2006-01-02 15:04:05")
	return &format
}

func toRecordResponse(rec attendance.Record) attendance.RecordResponse {
	return attendance.RecordResponse{
		ID:              rec.ID,
		StaffID:         rec.StaffID,
		Date:            rec.Date.Format(attendance.DateKey),
		PunchIn:         timePtrToString(rec.PunchIn),
		PunchOut:        timePtrToString(rec.PunchOut),
		BreakSeconds:    rec.BreakSeconds,
		OnBreak:         rec.BreakStartedAt != nil,
		OvertimeMinutes: rec.OvertimeMinutes,
		Status:          string(rec.Status),
		Remarks:         rec.Remarks,
	}
}

// PunchIn implements attendance.Service.
func (s *AttendanceServiceImpl) PunchIn(ctx context.Context, req attendance.PunchInRequest) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}

	tenantID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return attendance.RecordResponse{}, err
	}
	if _, err := s.StaffRepository.GetByID(ctx, req.StaffID, tenantID); err != nil {
		return attendance.RecordResponse{}, err
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	existing, err := s.AttendanceRepository.GetByStaffAndDate(ctx, req.StaffID, today)
	if err == nil && existing.PunchIn != nil {
		return attendance.RecordResponse{}, attendance.ErrAlreadyPunchedIn
	}
	if err != nil && !errors.Is(err, attendance.ErrRecordNotFound) {
		return attendance.RecordResponse{}, fmt.Errorf("failed to look up attendance record: %w", err)
	}

	if err == nil {
		existing.PunchIn = &now
		existing.Status = attendance.StatusPresent
		updated, err := s.AttendanceRepository.Update(ctx, existing)
		if err != nil {
			return attendance.RecordResponse{}, fmt.Errorf("failed to update attendance record: %w", err)
		}
		return toRecordResponse(updated), nil
	}

	created, err := s.AttendanceRepository.Create(ctx, attendance.Record{
		TenantID: tenantID,
		StaffID:  req.StaffID,
		Date:     today,
		PunchIn:  &now,
		Status:   attendance.StatusPresent,
	})
	if err != nil {
		return attendance.RecordResponse{}, fmt.Errorf("failed to create attendance record: %w", err)
	}
	return toRecordResponse(created), nil
}

// PunchOut implements attendance.Service. Working under four hours marks the
// day half_day; time past the standard eight-hour day accrues as overtime.
func (s *AttendanceServiceImpl) PunchOut(ctx context.Context, req attendance.PunchOutRequest) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}

	tenantID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return attendance.RecordResponse{}, err
	}
	if _, err := s.StaffRepository.GetByID(ctx, req.StaffID, tenantID); err != nil {
		return attendance.RecordResponse{}, err
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	rec, err := s.AttendanceRepository.GetByStaffAndDate(ctx, req.StaffID, today)
	if err != nil {
		if errors.Is(err, attendance.ErrRecordNotFound) {
			return attendance.RecordResponse{}, attendance.ErrNotPunchedIn
		}
		return attendance.RecordResponse{}, fmt.Errorf("failed to look up attendance record: %w", err)
	}
	if rec.PunchIn == nil {
		return attendance.RecordResponse{}, attendance.ErrNotPunchedIn
	}

	// Close a dangling break before computing worked time.
	if rec.BreakStartedAt != nil {
		rec.BreakSeconds += int(now.Sub(*rec.BreakStartedAt).Seconds())
		rec.BreakStartedAt = nil
	}

	rec.PunchOut = &now
	worked := now.Sub(*rec.PunchIn) - time.Duration(rec.BreakSeconds)*time.Second
	if worked < 0 {
		worked = 0
	}
	if worked < halfDayThreshold {
		rec.Status = attendance.StatusHalfDay
	} else {
		rec.Status = attendance.StatusPresent
	}
	if workedMinutes := int(worked.Minutes()); workedMinutes > standardWorkMinutes {
		rec.OvertimeMinutes = workedMinutes - standardWorkMinutes
	}

	updated, err := s.AttendanceRepository.Update(ctx, rec)
	if err != nil {
		return attendance.RecordResponse{}, fmt.Errorf("failed to update attendance record: %w", err)
	}
	return toRecordResponse(updated), nil
}

// ToggleBreak implements attendance.Service. The first call starts a break;
// the next call ends it and folds the elapsed time into BreakSeconds.
func (s *AttendanceServiceImpl) ToggleBreak(ctx context.Context, req attendance.BreakToggleRequest) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}

	if _, _, err := jwt.ClaimsFromContext(ctx); err != nil {
		return attendance.RecordResponse{}, err
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	rec, err := s.AttendanceRepository.GetByStaffAndDate(ctx, req.StaffID, today)
	if err != nil {
		if errors.Is(err, attendance.ErrRecordNotFound) {
			return attendance.RecordResponse{}, attendance.ErrNotPunchedIn
		}
		return attendance.RecordResponse{}, fmt.Errorf("failed to look up attendance record: %w", err)
	}
	if rec.PunchIn == nil || rec.PunchOut != nil {
		return attendance.RecordResponse{}, attendance.ErrNotPunchedIn
	}

	if rec.BreakStartedAt == nil {
		rec.BreakStartedAt = &now
	} else {
		rec.BreakSeconds += int(now.Sub(*rec.BreakStartedAt).Seconds())
		rec.BreakStartedAt = nil
	}

	updated, err := s.AttendanceRepository.Update(ctx, rec)
	if err != nil {
		return attendance.RecordResponse{}, fmt.Errorf("failed to update attendance record: %w", err)
	}
	return toRecordResponse(updated), nil
}

// AdminUpsert implements attendance.Service. Corrections are rejected once
// the month's payroll cycle is locked or paid.
func (s *AttendanceServiceImpl) AdminUpsert(ctx context.Context, req attendance.AdminUpsertRequest) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}

	tenantID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return attendance.RecordResponse{}, err
	}
	if _, err := s.StaffRepository.GetByID(ctx, req.StaffID, tenantID); err != nil {
		return attendance.RecordResponse{}, err
	}

	date, _ := validator.IsValidDate(req.Date)
	open, err := s.cycleGuard.IsMonthOpen(ctx, tenantID, date.Format("2006-01"))
	if err != nil {
		return attendance.RecordResponse{}, fmt.Errorf("failed to check payroll cycle state: %w", err)
	}
	if !open {
		return attendance.RecordResponse{}, attendance.ErrMonthNotOpen
	}

	rec, err := s.AttendanceRepository.GetByStaffAndDate(ctx, req.StaffID, date)
	if err != nil && !errors.Is(err, attendance.ErrRecordNotFound) {
		return attendance.RecordResponse{}, fmt.Errorf("failed to look up attendance record: %w", err)
	}

	if errors.Is(err, attendance.ErrRecordNotFound) {
		rec = attendance.Record{
			TenantID: tenantID,
			StaffID:  req.StaffID,
			Date:     date,
		}
		rec = applyAdminPatch(rec, req)
		created, err := s.AttendanceRepository.Create(ctx, rec)
		if err != nil {
			return attendance.RecordResponse{}, fmt.Errorf("failed to create attendance record: %w", err)
		}
		return toRecordResponse(created), nil
	}

	rec = applyAdminPatch(rec, req)
	updated, err := s.AttendanceRepository.Update(ctx, rec)
	if err != nil {
		return attendance.RecordResponse{}, fmt.Errorf("failed to update attendance record: %w", err)
	}
	return toRecordResponse(updated), nil
}

func applyAdminPatch(rec attendance.Record, req attendance.AdminUpsertRequest) attendance.Record {
	rec.Status = attendance.Status(req.Status)
	if req.PunchIn != nil {
		if t, ok := validator.IsValidDateTime(*req.PunchIn); ok {
			rec.PunchIn = &t
		}
	}
	if req.PunchOut != nil {
		if t, ok := validator.IsValidDateTime(*req.PunchOut); ok {
			rec.PunchOut = &t
		}
	}
	if req.OvertimeMinutes != nil {
		rec.OvertimeMinutes = *req.OvertimeMinutes
	}
	if req.Remarks != nil {
		rec.Remarks = req.Remarks
	}
	return rec
}

// ClassifyMonth implements attendance.Service.
func (s *AttendanceServiceImpl) ClassifyMonth(ctx context.Context, staffID string, monthKey string) (attendance.ClassificationResponse, error) {
	tenantID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return attendance.ClassificationResponse{}, err
	}
	if _, err := s.StaffRepository.GetByID(ctx, staffID, tenantID); err != nil {
		return attendance.ClassificationResponse{}, err
	}

	from, ok := validator.ParseMonthKey(monthKey)
	if !ok {
		return attendance.ClassificationResponse{}, validator.ValidationErrors{
			{Field: "month", Message: "must be YYYY-MM"},
		}
	}
	to := from.AddDate(0, 1, -1)

	records, err := s.AttendanceRepository.ListByStaffAndRange(ctx, staffID, from, to)
	if err != nil {
		return attendance.ClassificationResponse{}, fmt.Errorf("failed to list attendance records: %w", err)
	}
	leaves, err := s.RequestRepository.ListApprovedByStaffAndRange(ctx, staffID, from, to)
	if err != nil {
		return attendance.ClassificationResponse{}, fmt.Errorf("failed to list leave requests: %w", err)
	}
	offRules, err := s.ScheduleRepository.ListWeeklyOffByStaff(ctx, staffID)
	if err != nil {
		return attendance.ClassificationResponse{}, fmt.Errorf("failed to list weekly off rules: %w", err)
	}
	holidays, err := s.ScheduleRepository.ListHolidaysByTenantAndRange(ctx, tenantID, from, to)
	if err != nil {
		return attendance.ClassificationResponse{}, fmt.Errorf("failed to list holidays: %w", err)
	}

	classification := ClassifyRange(ClassifierInput{
		From:     from,
		To:       to,
		Today:    s.now(),
		Records:  records,
		Leaves:   leaves,
		OffRules: offRules,
		Holidays: holidays,
	})

	return attendance.ClassificationResponse{
		StaffID:        staffID,
		MonthKey:       monthKey,
		Classification: classification,
	}, nil
}
