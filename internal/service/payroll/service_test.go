package payroll

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/shopspring/decimal"
	"github.com/staffhq/wfm-backend-go/internal/domain/attendance"
	"github.com/staffhq/wfm-backend-go/internal/domain/leave"
	"github.com/staffhq/wfm-backend-go/internal/domain/payroll"
	"github.com/staffhq/wfm-backend-go/internal/domain/schedule"
	"github.com/staffhq/wfm-backend-go/internal/domain/staff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ===== test context with claims =====

func authedContext(t *testing.T, tenantID string) context.Context {
	t.Helper()
	tokenAuth := jwtauth.New("HS256", []byte("test-secret"), nil)
	token, _, err := tokenAuth.Encode(map[string]interface{}{
		"tenant_id": tenantID,
		"user_id":   "admin-1",
	})
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

// ===== in-memory fakes =====

type fakePayrollRepo struct {
	cycles   map[string]payroll.PayrollCycle
	lines    map[string]payroll.PayrollLine
	profiles map[string]payroll.CompensationProfile
	badStaff map[string]bool
	seq      int
}

func newFakePayrollRepo() *fakePayrollRepo {
	return &fakePayrollRepo{
		cycles:   make(map[string]payroll.PayrollCycle),
		lines:    make(map[string]payroll.PayrollLine),
		profiles: make(map[string]payroll.CompensationProfile),
		badStaff: make(map[string]bool),
	}
}

func (f *fakePayrollRepo) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func (f *fakePayrollRepo) GetOrCreateCycle(ctx context.Context, tenantID, monthKey string) (payroll.PayrollCycle, error) {
	for _, c := range f.cycles {
		if c.TenantID == tenantID && c.MonthKey == monthKey {
			return c, nil
		}
	}
	c := payroll.PayrollCycle{
		ID:       f.nextID("cycle"),
		TenantID: tenantID,
		MonthKey: monthKey,
		Status:   payroll.CycleStatusDraft,
	}
	f.cycles[c.ID] = c
	return c, nil
}

func (f *fakePayrollRepo) GetCycleByID(ctx context.Context, id, tenantID string) (payroll.PayrollCycle, error) {
	c, ok := f.cycles[id]
	if !ok || c.TenantID != tenantID {
		return payroll.PayrollCycle{}, payroll.ErrCycleNotFound
	}
	return c, nil
}

func (f *fakePayrollRepo) GetCycleByMonthKey(ctx context.Context, tenantID, monthKey string) (payroll.PayrollCycle, error) {
	for _, c := range f.cycles {
		if c.TenantID == tenantID && c.MonthKey == monthKey {
			return c, nil
		}
	}
	return payroll.PayrollCycle{}, payroll.ErrCycleNotFound
}

func (f *fakePayrollRepo) ListCycles(ctx context.Context, tenantID string) ([]payroll.PayrollCycle, error) {
	var out []payroll.PayrollCycle
	for _, c := range f.cycles {
		if c.TenantID == tenantID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakePayrollRepo) TransitionCycle(ctx context.Context, id, tenantID string, from, to payroll.CycleStatus) (payroll.PayrollCycle, error) {
	c, ok := f.cycles[id]
	if !ok || c.TenantID != tenantID {
		return payroll.PayrollCycle{}, payroll.ErrCycleNotFound
	}
	if c.Status != from {
		return payroll.PayrollCycle{}, payroll.ErrInvalidTransition
	}
	c.Status = to
	now := time.Now()
	switch to {
	case payroll.CycleStatusLocked:
		c.LockedAt = &now
	case payroll.CycleStatusPaid:
		c.PaidAt = &now
	}
	f.cycles[id] = c
	return c, nil
}

func lineKey(cycleID, staffID string) string {
	return cycleID + "/" + staffID
}

func (f *fakePayrollRepo) UpsertLine(ctx context.Context, tenantID string, line payroll.PayrollLine) (payroll.PayrollLine, error) {
	k := lineKey(line.CycleID, line.StaffID)
	if existing, ok := f.lines[k]; ok {
		line.ID = existing.ID
		line.Adjustments = existing.Adjustments
		line.Remarks = existing.Remarks
	} else {
		line.ID = f.nextID("line")
	}
	f.lines[k] = line
	return line, nil
}

func (f *fakePayrollRepo) GetLineByID(ctx context.Context, id, cycleID, tenantID string) (payroll.PayrollLine, error) {
	for _, l := range f.lines {
		if l.ID == id && l.CycleID == cycleID {
			return l, nil
		}
	}
	return payroll.PayrollLine{}, payroll.ErrLineNotFound
}

func (f *fakePayrollRepo) ListLinesByCycle(ctx context.Context, cycleID, tenantID string) ([]payroll.PayrollLine, error) {
	var out []payroll.PayrollLine
	for _, l := range f.lines {
		if l.CycleID == cycleID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakePayrollRepo) UpdateLine(ctx context.Context, tenantID string, req payroll.UpdateLineRequest) (payroll.PayrollLine, error) {
	for k, l := range f.lines {
		if l.ID == req.LineID && l.CycleID == req.CycleID {
			if req.Adjustments != nil {
				l.Adjustments = req.Adjustments
			}
			if req.Remarks != nil {
				l.Remarks = req.Remarks
			}
			f.lines[k] = l
			return l, nil
		}
	}
	return payroll.PayrollLine{}, payroll.ErrLineNotFound
}

func (f *fakePayrollRepo) MarkLinesPaid(ctx context.Context, cycleID, tenantID string, lineIDs []string, details payroll.PaymentDetails) (int, error) {
	selected := func(l payroll.PayrollLine) bool {
		if len(lineIDs) == 0 {
			return true
		}
		for _, id := range lineIDs {
			if l.ID == id {
				return true
			}
		}
		return false
	}

	count := 0
	for k, l := range f.lines {
		if l.CycleID != cycleID || !selected(l) || l.Paid() {
			continue
		}
		paidAt := details.PaidAt
		l.PaidAt = &paidAt
		l.PaidMode = details.PaidMode
		l.PaidRef = details.PaidRef
		if details.PaidAmount != nil {
			l.PaidAmount = details.PaidAmount
		} else {
			net := l.NetWithAdjustments()
			l.PaidAmount = &net
		}
		f.lines[k] = l
		count++
	}
	return count, nil
}

func (f *fakePayrollRepo) GetCompensationProfile(ctx context.Context, staffID, monthKey string) (payroll.CompensationProfile, error) {
	if f.badStaff[staffID] {
		return payroll.CompensationProfile{}, payroll.ErrMalformedProfile
	}
	p, ok := f.profiles[staffID]
	if !ok {
		return payroll.CompensationProfile{}, payroll.ErrProfileNotFound
	}
	return p, nil
}

type fakeStaffRepo struct {
	active []staff.Staff
}

func (f *fakeStaffRepo) GetByID(ctx context.Context, id, tenantID string) (staff.Staff, error) {
	for _, s := range f.active {
		if s.ID == id {
			return s, nil
		}
	}
	return staff.Staff{}, staff.ErrStaffNotFound
}

func (f *fakeStaffRepo) GetActiveByTenantID(ctx context.Context, tenantID string) ([]staff.Staff, error) {
	return f.active, nil
}

type fakeAttendanceRepo struct {
	records []attendance.Record
}

func (f *fakeAttendanceRepo) GetByStaffAndDate(ctx context.Context, staffID string, date time.Time) (attendance.Record, error) {
	return attendance.Record{}, attendance.ErrRecordNotFound
}

func (f *fakeAttendanceRepo) Create(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	return record, nil
}

func (f *fakeAttendanceRepo) Update(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	return record, nil
}

func (f *fakeAttendanceRepo) ListByStaffAndRange(ctx context.Context, staffID string, from, to time.Time) ([]attendance.Record, error) {
	var out []attendance.Record
	for _, r := range f.records {
		if r.StaffID == staffID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeAttendanceRepo) ListByTenantAndRange(ctx context.Context, tenantID string, from, to time.Time) ([]attendance.Record, error) {
	return f.records, nil
}

type fakeLeaveRepo struct {
	requests []leave.Request
}

func (f *fakeLeaveRepo) Create(ctx context.Context, request leave.Request) (leave.Request, error) {
	return request, nil
}

func (f *fakeLeaveRepo) GetByID(ctx context.Context, id, tenantID string) (leave.Request, error) {
	return leave.Request{}, leave.ErrRequestNotFound
}

func (f *fakeLeaveRepo) UpdateStatus(ctx context.Context, id, tenantID string, from, to leave.RequestStatus, decidedBy string) (leave.Request, error) {
	return leave.Request{}, leave.ErrRequestNotFound
}

func (f *fakeLeaveRepo) ListApprovedByStaffAndRange(ctx context.Context, staffID string, from, to time.Time) ([]leave.Request, error) {
	return nil, nil
}

func (f *fakeLeaveRepo) ListApprovedByTenantAndRange(ctx context.Context, tenantID string, from, to time.Time) ([]leave.Request, error) {
	return f.requests, nil
}

type fakeScheduleRepo struct {
	offRules []schedule.WeeklyOffRule
	holidays []schedule.Holiday
}

func (f *fakeScheduleRepo) ListWeeklyOffByStaff(ctx context.Context, staffID string) ([]schedule.WeeklyOffRule, error) {
	return f.offRules, nil
}

func (f *fakeScheduleRepo) ListWeeklyOffByTenant(ctx context.Context, tenantID string) ([]schedule.WeeklyOffRule, error) {
	return f.offRules, nil
}

func (f *fakeScheduleRepo) ListHolidaysByTenantAndRange(ctx context.Context, tenantID string, from, to time.Time) ([]schedule.Holiday, error) {
	return f.holidays, nil
}

// ===== helpers =====

func newTestService(repo *fakePayrollRepo, staffRepo *fakeStaffRepo) *PayrollServiceImpl {
	svc := NewPayrollService(
		repo,
		staffRepo,
		&fakeAttendanceRepo{},
		&fakeLeaveRepo{},
		&fakeScheduleRepo{},
		slog.New(slog.DiscardHandler),
	)
	// Pin "today" past the computed month so every day gets a verdict.
	svc.now = func() time.Time { return time.Date(2026, time.July, 15, 0, 0, 0, 0, time.UTC) }
	return svc
}

func simpleProfile(staffID string) payroll.CompensationProfile {
	basis := "basic_salary"
	return payroll.CompensationProfile{
		StaffID: staffID,
		Earnings: []payroll.CompensationItem{
			{Key: "basic_salary", AmountType: payroll.AmountFixed, Value: decimal.NewFromInt(15000)},
			{Key: "hra", AmountType: payroll.AmountPercent, Value: decimal.NewFromInt(40), Basis: &basis},
		},
	}
}

// ===== tests =====

func TestComputeCycle_IdempotentRecompute(t *testing.T) {
	t.Parallel()
	ctx := authedContext(t, "t1")

	repo := newFakePayrollRepo()
	repo.profiles["s1"] = simpleProfile("s1")
	staffRepo := &fakeStaffRepo{active: []staff.Staff{{ID: "s1", TenantID: "t1"}}}
	svc := newTestService(repo, staffRepo)

	first, err := svc.ComputeCycle(ctx, payroll.ComputeCycleRequest{MonthKey: "2026-06"})
	require.NoError(t, err)
	require.Equal(t, 1, first.ComputedCount)

	second, err := svc.ComputeCycle(ctx, payroll.ComputeCycleRequest{MonthKey: "2026-06"})
	require.NoError(t, err)
	require.Equal(t, 1, second.ComputedCount)

	assert.Equal(t, first.Cycle.ID, second.Cycle.ID)
	assert.Equal(t, first.Lines[0].ID, second.Lines[0].ID)
	assert.Equal(t, first.Lines[0].Totals, second.Lines[0].Totals)
	assert.Len(t, repo.lines, 1)
}

func TestComputeCycle_BadProfileSkipsStaffOnly(t *testing.T) {
	t.Parallel()
	ctx := authedContext(t, "t1")

	repo := newFakePayrollRepo()
	repo.profiles["s1"] = simpleProfile("s1")
	repo.badStaff["s2"] = true
	staffRepo := &fakeStaffRepo{active: []staff.Staff{
		{ID: "s1", TenantID: "t1"},
		{ID: "s2", TenantID: "t1"},
	}}
	svc := newTestService(repo, staffRepo)

	result, err := svc.ComputeCycle(ctx, payroll.ComputeCycleRequest{MonthKey: "2026-06"})
	require.NoError(t, err)

	assert.Equal(t, 1, result.ComputedCount)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "s2", result.Errors[0].StaffID)
}

func TestComputeCycle_RejectedWhenLocked(t *testing.T) {
	t.Parallel()
	ctx := authedContext(t, "t1")

	repo := newFakePayrollRepo()
	repo.profiles["s1"] = simpleProfile("s1")
	staffRepo := &fakeStaffRepo{active: []staff.Staff{{ID: "s1", TenantID: "t1"}}}
	svc := newTestService(repo, staffRepo)

	first, err := svc.ComputeCycle(ctx, payroll.ComputeCycleRequest{MonthKey: "2026-06"})
	require.NoError(t, err)

	_, err = svc.LockCycle(ctx, first.Cycle.ID)
	require.NoError(t, err)

	_, err = svc.ComputeCycle(ctx, payroll.ComputeCycleRequest{MonthKey: "2026-06"})
	assert.ErrorIs(t, err, payroll.ErrCycleNotDraft)
}

func TestLifecycle_LockPayAndEditConflicts(t *testing.T) {
	t.Parallel()
	ctx := authedContext(t, "t1")

	repo := newFakePayrollRepo()
	repo.profiles["s1"] = simpleProfile("s1")
	staffRepo := &fakeStaffRepo{active: []staff.Staff{{ID: "s1", TenantID: "t1"}}}
	svc := newTestService(repo, staffRepo)

	computed, err := svc.ComputeCycle(ctx, payroll.ComputeCycleRequest{MonthKey: "2026-06"})
	require.NoError(t, err)
	cycleID := computed.Cycle.ID
	lineID := computed.Lines[0].ID

	// Cannot pay a draft cycle.
	_, err = svc.MarkCyclePaid(ctx, cycleID, payroll.MarkPaidRequest{})
	assert.ErrorIs(t, err, payroll.ErrCycleNotLocked)

	_, err = svc.LockCycle(ctx, cycleID)
	require.NoError(t, err)

	// Line edits stay allowed while locked.
	remarks := "manual correction"
	_, err = svc.UpdateLine(ctx, payroll.UpdateLineRequest{LineID: lineID, CycleID: cycleID, Remarks: &remarks})
	require.NoError(t, err)

	paid, err := svc.MarkCyclePaid(ctx, cycleID, payroll.MarkPaidRequest{})
	require.NoError(t, err)
	assert.Equal(t, string(payroll.CycleStatusPaid), paid.Status)

	// Paid amount defaults to the line net.
	lines, err := repo.ListLinesByCycle(ctx, cycleID, "t1")
	require.NoError(t, err)
	require.NotNil(t, lines[0].PaidAmount)
	assert.True(t, lines[0].PaidAmount.Equal(lines[0].NetWithAdjustments()))

	// Edits after paid are conflicts and leave totals unchanged.
	before := lines[0].Totals
	_, err = svc.UpdateLine(ctx, payroll.UpdateLineRequest{LineID: lineID, CycleID: cycleID, Remarks: &remarks})
	assert.ErrorIs(t, err, payroll.ErrCyclePaid)

	after, err := repo.ListLinesByCycle(ctx, cycleID, "t1")
	require.NoError(t, err)
	assert.Equal(t, before, after[0].Totals)

	// Unlock is only valid from locked.
	_, err = svc.UnlockCycle(ctx, cycleID)
	assert.ErrorIs(t, err, payroll.ErrInvalidTransition)
}

func TestMarkLinesPaid_Subset(t *testing.T) {
	t.Parallel()
	ctx := authedContext(t, "t1")

	repo := newFakePayrollRepo()
	repo.profiles["s1"] = simpleProfile("s1")
	repo.profiles["s2"] = simpleProfile("s2")
	staffRepo := &fakeStaffRepo{active: []staff.Staff{
		{ID: "s1", TenantID: "t1"},
		{ID: "s2", TenantID: "t1"},
	}}
	svc := newTestService(repo, staffRepo)

	computed, err := svc.ComputeCycle(ctx, payroll.ComputeCycleRequest{MonthKey: "2026-06"})
	require.NoError(t, err)
	cycleID := computed.Cycle.ID

	_, err = svc.MarkLinesPaid(ctx, cycleID, payroll.MarkPaidRequest{LineIDs: []string{computed.Lines[0].ID}})
	assert.ErrorIs(t, err, payroll.ErrCycleNotLocked)

	_, err = svc.LockCycle(ctx, cycleID)
	require.NoError(t, err)

	count, err := svc.MarkLinesPaid(ctx, cycleID, payroll.MarkPaidRequest{LineIDs: []string{computed.Lines[0].ID}})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// The cycle itself stays locked.
	cycle, err := repo.GetCycleByID(ctx, cycleID, "t1")
	require.NoError(t, err)
	assert.Equal(t, payroll.CycleStatusLocked, cycle.Status)

	_, err = svc.MarkLinesPaid(ctx, cycleID, payroll.MarkPaidRequest{})
	assert.ErrorIs(t, err, payroll.ErrNoLinesSelected)
}

func TestIsMonthOpen(t *testing.T) {
	t.Parallel()
	ctx := authedContext(t, "t1")

	repo := newFakePayrollRepo()
	repo.profiles["s1"] = simpleProfile("s1")
	staffRepo := &fakeStaffRepo{active: []staff.Staff{{ID: "s1", TenantID: "t1"}}}
	svc := newTestService(repo, staffRepo)

	open, err := svc.IsMonthOpen(ctx, "t1", "2026-06")
	require.NoError(t, err)
	assert.True(t, open)

	computed, err := svc.ComputeCycle(ctx, payroll.ComputeCycleRequest{MonthKey: "2026-06"})
	require.NoError(t, err)

	open, err = svc.IsMonthOpen(ctx, "t1", "2026-06")
	require.NoError(t, err)
	assert.True(t, open)

	_, err = svc.LockCycle(ctx, computed.Cycle.ID)
	require.NoError(t, err)

	open, err = svc.IsMonthOpen(ctx, "t1", "2026-06")
	require.NoError(t, err)
	assert.False(t, open)
}

func TestExportCycleCSV(t *testing.T) {
	t.Parallel()
	ctx := authedContext(t, "t1")

	repo := newFakePayrollRepo()
	repo.profiles["s1"] = simpleProfile("s1")
	staffRepo := &fakeStaffRepo{active: []staff.Staff{{ID: "s1", TenantID: "t1"}}}
	svc := newTestService(repo, staffRepo)

	computed, err := svc.ComputeCycle(ctx, payroll.ComputeCycleRequest{MonthKey: "2026-06"})
	require.NoError(t, err)

	out, err := svc.ExportCycleCSV(ctx, computed.Cycle.ID)
	require.NoError(t, err)

	csvText := string(out)
	lines := strings.Split(strings.TrimSpace(csvText), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "staff_code,staff_name,month_key"))
	assert.Contains(t, lines[0], "unpaid_leave,leave,absent")
	assert.Contains(t, lines[1], "2026-06")
}
