package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	attendancesvc "github.com/staffhq/wfm-backend-go/internal/service/attendance"

	"github.com/staffhq/wfm-backend-go/internal/domain/attendance"
	"github.com/staffhq/wfm-backend-go/internal/domain/leave"
	"github.com/staffhq/wfm-backend-go/internal/domain/payroll"
	"github.com/staffhq/wfm-backend-go/internal/domain/schedule"
	"github.com/staffhq/wfm-backend-go/internal/domain/staff"
	"github.com/staffhq/wfm-backend-go/internal/pkg/jwt"
	"github.com/staffhq/wfm-backend-go/internal/pkg/validator"
)

type PayrollServiceImpl struct {
	payroll.PayrollRepository
	staff.StaffRepository
	attendance.AttendanceRepository
	leave.RequestRepository
	schedule.ScheduleRepository
	logger *slog.Logger
	now    func() time.Time
}

func NewPayrollService(
	payrollRepo payroll.PayrollRepository,
	staffRepo staff.StaffRepository,
	attendanceRepo attendance.AttendanceRepository,
	leaveRepo leave.RequestRepository,
	scheduleRepo schedule.ScheduleRepository,
	logger *slog.Logger,
) *PayrollServiceImpl {
	return &PayrollServiceImpl{
		PayrollRepository:    payrollRepo,
		StaffRepository:      staffRepo,
		AttendanceRepository: attendanceRepo,
		RequestRepository:    leaveRepo,
		ScheduleRepository:   scheduleRepo,
		logger:               logger,
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

func toCycleResponse(c payroll.PayrollCycle) payroll.CycleResponse {
	return payroll.CycleResponse{
		ID:       c.ID,
		MonthKey: c.MonthKey,
		Status:   string(c.Status),
		LockedAt: timePtrToString(c.LockedAt),
		PaidAt:   timePtrToString(c.PaidAt),
	}
}

func toLineResponse(l payroll.PayrollLine) payroll.LineResponse {
	return payroll.LineResponse{
		ID:                l.ID,
		CycleID:           l.CycleID,
		StaffID:           l.StaffID,
		StaffName:         l.StaffName,
		StaffCode:         l.StaffCode,
		Earnings:          l.Earnings,
		Incentives:        l.Incentives,
		Deductions:        l.Deductions,
		AttendanceSummary: l.AttendanceSummary,
		Totals:            l.Totals,
		Adjustments:       l.Adjustments,
		NetPayable:        l.NetWithAdjustments(),
		Remarks:           l.Remarks,
		PaidAt:            timePtrToString(l.PaidAt),
		PaidAmount:        l.PaidAmount,
		PaidMode:          l.PaidMode,
		PaidRef:           l.PaidRef,
	}
}

// ComputeCycle implements payroll.PayrollService. Recomputing a draft cycle
// with unchanged inputs overwrites each line in place with identical totals.
// One staff member's bad compensation data skips that staff, not the batch;
// a persistence failure aborts the whole pass.
func (s *PayrollServiceImpl) ComputeCycle(ctx context.Context, req payroll.ComputeCycleRequest) (payroll.ComputeResult, error) {
	if err := req.Validate(); err != nil {
		return payroll.ComputeResult{}, err
	}

	tenantID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payroll.ComputeResult{}, err
	}

	from, ok := validator.ParseMonthKey(req.MonthKey)
	if !ok {
		return payroll.ComputeResult{}, payroll.ErrInvalidMonthKey
	}
	to := from.AddDate(0, 1, -1)
	daysInMonth := to.Day()

	cycle, err := s.PayrollRepository.GetOrCreateCycle(ctx, tenantID, req.MonthKey)
	if err != nil {
		return payroll.ComputeResult{}, fmt.Errorf("failed to get or create cycle: %w", err)
	}
	if cycle.Status != payroll.CycleStatusDraft {
		return payroll.ComputeResult{}, payroll.ErrCycleNotDraft
	}

	staffList, err := s.StaffRepository.GetActiveByTenantID(ctx, tenantID)
	if err != nil {
		return payroll.ComputeResult{}, fmt.Errorf("failed to list active staff: %w", err)
	}

	// One range query per concern for the whole tenant, sliced per staff in
	// memory, instead of four queries per staff member.
	records, err := s.AttendanceRepository.ListByTenantAndRange(ctx, tenantID, from, to)
	if err != nil {
		return payroll.ComputeResult{}, fmt.Errorf("failed to list attendance records: %w", err)
	}
	leaves, err := s.RequestRepository.ListApprovedByTenantAndRange(ctx, tenantID, from, to)
	if err != nil {
		return payroll.ComputeResult{}, fmt.Errorf("failed to list leave requests: %w", err)
	}
	offRules, err := s.ScheduleRepository.ListWeeklyOffByTenant(ctx, tenantID)
	if err != nil {
		return payroll.ComputeResult{}, fmt.Errorf("failed to list weekly off rules: %w", err)
	}
	holidays, err := s.ScheduleRepository.ListHolidaysByTenantAndRange(ctx, tenantID, from, to)
	if err != nil {
		return payroll.ComputeResult{}, fmt.Errorf("failed to list holidays: %w", err)
	}

	recordsByStaff := make(map[string][]attendance.Record)
	for _, r := range records {
		recordsByStaff[r.StaffID] = append(recordsByStaff[r.StaffID], r)
	}
	leavesByStaff := make(map[string][]leave.Request)
	for _, l := range leaves {
		leavesByStaff[l.StaffID] = append(leavesByStaff[l.StaffID], l)
	}
	offRulesByStaff := make(map[string][]schedule.WeeklyOffRule)
	for _, r := range offRules {
		offRulesByStaff[r.StaffID] = append(offRulesByStaff[r.StaffID], r)
	}

	result := payroll.ComputeResult{Cycle: toCycleResponse(cycle)}
	today := s.now()

	for _, member := range staffList {
		profile, err := s.PayrollRepository.GetCompensationProfile(ctx, member.ID, req.MonthKey)
		if err != nil {
			if errors.Is(err, payroll.ErrProfileNotFound) || errors.Is(err, payroll.ErrMalformedProfile) {
				s.logger.Warn("skipping staff with unusable compensation profile",
					"staff_id", member.ID, "month_key", req.MonthKey, "error", err)
				result.Errors = append(result.Errors, payroll.StaffComputeError{
					StaffID: member.ID,
					Message: err.Error(),
				})
				continue
			}
			return payroll.ComputeResult{}, fmt.Errorf("failed to load compensation profile: %w", err)
		}

		classification := attendancesvc.ClassifyRange(attendancesvc.ClassifierInput{
			From:     from,
			To:       to,
			Today:    today,
			Records:  recordsByStaff[member.ID],
			Leaves:   leavesByStaff[member.ID],
			OffRules: offRulesByStaff[member.ID],
			Holidays: holidays,
		})

		eval := Evaluate(profile)
		totals := ComputeTotals(eval, classification.Counts, daysInMonth, classification.OvertimeMinutes)

		line, err := s.PayrollRepository.UpsertLine(ctx, tenantID, payroll.PayrollLine{
			CycleID:    cycle.ID,
			StaffID:    member.ID,
			Earnings:   eval.Earnings,
			Incentives: eval.Incentives,
			Deductions: eval.Deductions,
			AttendanceSummary: payroll.AttendanceSummary{
				Counts:          classification.Counts,
				DaysInMonth:     daysInMonth,
				OvertimeMinutes: classification.OvertimeMinutes,
			},
			Totals: totals,
		})
		if err != nil {
			return payroll.ComputeResult{}, fmt.Errorf("failed to upsert payroll line: %w", err)
		}

		result.Lines = append(result.Lines, toLineResponse(line))
		result.ComputedCount++
	}

	return result, nil
}

// GetCycle implements payroll.PayrollService.
func (s *PayrollServiceImpl) GetCycle(ctx context.Context, cycleID string) (payroll.CycleResponse, []payroll.LineResponse, error) {
	tenantID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payroll.CycleResponse{}, nil, err
	}

	cycle, err := s.PayrollRepository.GetCycleByID(ctx, cycleID, tenantID)
	if err != nil {
		return payroll.CycleResponse{}, nil, err
	}
	lines, err := s.PayrollRepository.ListLinesByCycle(ctx, cycleID, tenantID)
	if err != nil {
		return payroll.CycleResponse{}, nil, fmt.Errorf("failed to list payroll lines: %w", err)
	}

	responses := make([]payroll.LineResponse, 0, len(lines))
	for _, l := range lines {
		responses = append(responses, toLineResponse(l))
	}
	return toCycleResponse(cycle), responses, nil
}

// ListCycles implements payroll.PayrollService.
func (s *PayrollServiceImpl) ListCycles(ctx context.Context) ([]payroll.CycleResponse, error) {
	tenantID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	cycles, err := s.PayrollRepository.ListCycles(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cycles: %w", err)
	}

	responses := make([]payroll.CycleResponse, 0, len(cycles))
	for _, c := range cycles {
		responses = append(responses, toCycleResponse(c))
	}
	return responses, nil
}

// LockCycle implements payroll.PayrollService.
func (s *PayrollServiceImpl) LockCycle(ctx context.Context, cycleID string) (payroll.CycleResponse, error) {
	tenantID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payroll.CycleResponse{}, err
	}

	cycle, err := s.PayrollRepository.TransitionCycle(ctx, cycleID, tenantID, payroll.CycleStatusDraft, payroll.CycleStatusLocked)
	if err != nil {
		return payroll.CycleResponse{}, err
	}
	return toCycleResponse(cycle), nil
}

// UnlockCycle implements payroll.PayrollService. Paid cycles stay paid.
func (s *PayrollServiceImpl) UnlockCycle(ctx context.Context, cycleID string) (payroll.CycleResponse, error) {
	tenantID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payroll.CycleResponse{}, err
	}

	cycle, err := s.PayrollRepository.TransitionCycle(ctx, cycleID, tenantID, payroll.CycleStatusLocked, payroll.CycleStatusDraft)
	if err != nil {
		return payroll.CycleResponse{}, err
	}
	return toCycleResponse(cycle), nil
}

// MarkCyclePaid implements payroll.PayrollService. Stamps every unpaid line
// in the cycle, then transitions the cycle to paid.
func (s *PayrollServiceImpl) MarkCyclePaid(ctx context.Context, cycleID string, req payroll.MarkPaidRequest) (payroll.CycleResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.CycleResponse{}, err
	}

	tenantID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payroll.CycleResponse{}, err
	}

	cycle, err := s.PayrollRepository.GetCycleByID(ctx, cycleID, tenantID)
	if err != nil {
		return payroll.CycleResponse{}, err
	}
	if cycle.Status == payroll.CycleStatusPaid {
		return payroll.CycleResponse{}, payroll.ErrCyclePaid
	}
	if cycle.Status != payroll.CycleStatusLocked {
		return payroll.CycleResponse{}, payroll.ErrCycleNotLocked
	}

	_, err = s.PayrollRepository.MarkLinesPaid(ctx, cycleID, tenantID, nil, payroll.PaymentDetails{
		PaidMode:   req.PaidMode,
		PaidRef:    req.PaidRef,
		PaidAmount: req.PaidAmount,
		PaidAt:     s.now(),
	})
	if err != nil {
		return payroll.CycleResponse{}, fmt.Errorf("failed to mark lines paid: %w", err)
	}

	updated, err := s.PayrollRepository.TransitionCycle(ctx, cycleID, tenantID, payroll.CycleStatusLocked, payroll.CycleStatusPaid)
	if err != nil {
		return payroll.CycleResponse{}, err
	}
	return toCycleResponse(updated), nil
}

// MarkLinesPaid implements payroll.PayrollService. Pays a subset of lines
// without transitioning the cycle.
func (s *PayrollServiceImpl) MarkLinesPaid(ctx context.Context, cycleID string, req payroll.MarkPaidRequest) (int, error) {
	if err := req.Validate(); err != nil {
		return 0, err
	}
	if len(req.LineIDs) == 0 {
		return 0, payroll.ErrNoLinesSelected
	}

	tenantID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return 0, err
	}

	cycle, err := s.PayrollRepository.GetCycleByID(ctx, cycleID, tenantID)
	if err != nil {
		return 0, err
	}
	if cycle.Status == payroll.CycleStatusDraft {
		return 0, payroll.ErrCycleNotLocked
	}

	count, err := s.PayrollRepository.MarkLinesPaid(ctx, cycleID, tenantID, req.LineIDs, payroll.PaymentDetails{
		PaidMode:   req.PaidMode,
		PaidRef:    req.PaidRef,
		PaidAmount: req.PaidAmount,
		PaidAt:     s.now(),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to mark lines paid: %w", err)
	}
	return count, nil
}

// UpdateLine implements payroll.PayrollService. Rejected once the cycle or
// the line is paid.
func (s *PayrollServiceImpl) UpdateLine(ctx context.Context, req payroll.UpdateLineRequest) (payroll.LineResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.LineResponse{}, err
	}

	tenantID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payroll.LineResponse{}, err
	}

	cycle, err := s.PayrollRepository.GetCycleByID(ctx, req.CycleID, tenantID)
	if err != nil {
		return payroll.LineResponse{}, err
	}
	if cycle.Status == payroll.CycleStatusPaid {
		return payroll.LineResponse{}, payroll.ErrCyclePaid
	}

	line, err := s.PayrollRepository.GetLineByID(ctx, req.LineID, req.CycleID, tenantID)
	if err != nil {
		return payroll.LineResponse{}, err
	}
	if line.Paid() {
		return payroll.LineResponse{}, payroll.ErrLinePaid
	}

	updated, err := s.PayrollRepository.UpdateLine(ctx, tenantID, req)
	if err != nil {
		return payroll.LineResponse{}, err
	}
	return toLineResponse(updated), nil
}

// IsMonthOpen implements attendance.CycleGuard. A month with no cycle yet is
// open; otherwise only a draft cycle accepts attendance edits.
func (s *PayrollServiceImpl) IsMonthOpen(ctx context.Context, tenantID string, monthKey string) (bool, error) {
	cycle, err := s.PayrollRepository.GetCycleByMonthKey(ctx, tenantID, monthKey)
	if err != nil {
		if errors.Is(err, payroll.ErrCycleNotFound) {
			return true, nil
		}
		return false, err
	}
	return cycle.Status == payroll.CycleStatusDraft, nil
}
