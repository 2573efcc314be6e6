package leave

import (
	"context"
	"testing"
	"time"

	"github.com/staffhq/wfm-backend-go/internal/domain/leave"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTemplateRepo struct {
	assignments []leave.Assignment
}

func (f *fakeTemplateRepo) ListAssignmentsActiveOn(ctx context.Context, onDate time.Time, tenantID string) ([]leave.Assignment, error) {
	var out []leave.Assignment
	for _, a := range f.assignments {
		if onDate.Before(a.EffectiveFrom) {
			continue
		}
		if a.EffectiveTo != nil && onDate.After(*a.EffectiveTo) {
			continue
		}
		if tenantID != "" && a.TenantID != tenantID {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

type balanceKey struct {
	staffID    string
	categoryID string
	cycleStart string
}

type fakeBalanceRepo struct {
	balances map[balanceKey]leave.Balance
}

func newFakeBalanceRepo() *fakeBalanceRepo {
	return &fakeBalanceRepo{balances: make(map[balanceKey]leave.Balance)}
}

func (f *fakeBalanceRepo) key(staffID, categoryID string, cycleStart time.Time) balanceKey {
	return balanceKey{staffID: staffID, categoryID: categoryID, cycleStart: cycleStart.Format("2006-01-02")}
}

func (f *fakeBalanceRepo) Create(ctx context.Context, balance leave.Balance) (leave.Balance, error) {
	k := f.key(balance.StaffID, balance.CategoryID, balance.CycleStart)
	if _, exists := f.balances[k]; exists {
		return leave.Balance{}, leave.ErrBalanceAlreadyAllocated
	}
	balance.ID = k.staffID + "/" + k.categoryID + "/" + k.cycleStart
	f.balances[k] = balance
	return balance, nil
}

func (f *fakeBalanceRepo) GetByCycleStart(ctx context.Context, staffID, categoryID string, cycleStart time.Time) (leave.Balance, error) {
	b, ok := f.balances[f.key(staffID, categoryID, cycleStart)]
	if !ok {
		return leave.Balance{}, leave.ErrBalanceNotFound
	}
	return b, nil
}

func (f *fakeBalanceRepo) ListByStaff(ctx context.Context, staffID string, tenantID string) ([]leave.Balance, error) {
	var out []leave.Balance
	for _, b := range f.balances {
		if b.StaffID == staffID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBalanceRepo) ApplyUsage(ctx context.Context, staffID, categoryID string, onDate time.Time, days float64) error {
	for k, b := range f.balances {
		if b.StaffID == staffID && b.CategoryID == categoryID &&
			!onDate.Before(b.CycleStart) && !onDate.After(b.CycleEnd) {
			b.Used += days
			b.Remaining -= days
			f.balances[k] = b
			return nil
		}
	}
	return leave.ErrBalanceNotFound
}

func floatPtr(v float64) *float64 { return &v }

func assignment(staffID string, cycleType leave.CycleType, categories ...leave.Category) leave.Assignment {
	return leave.Assignment{
		ID:            "a-" + staffID,
		TenantID:      "t1",
		StaffID:       staffID,
		TemplateID:    "tpl1",
		EffectiveFrom: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		Template: leave.Template{
			ID:         "tpl1",
			TenantID:   "t1",
			CycleType:  cycleType,
			Categories: categories,
		},
	}
}

func TestAllocateBalances_FreshAllocation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	templates := &fakeTemplateRepo{assignments: []leave.Assignment{
		assignment("s1", leave.CycleMonthly,
			leave.Category{ID: "c1", Name: "Casual", LeaveCount: 2, UnusedRule: leave.UnusedLapse},
			leave.Category{ID: "c2", Name: "Sick", LeaveCount: 1, UnusedRule: leave.UnusedLapse},
		),
	}}
	balances := newFakeBalanceRepo()
	svc := NewAllocatorService(templates, balances)

	result, err := svc.AllocateBalances(ctx, "t1", time.Date(2026, time.June, 10, 0, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	assert.Equal(t, 2, result.AllocatedCount)
	assert.Equal(t, 0, result.SkippedCount)
	assert.Empty(t, result.Errors)

	b, err := balances.GetByCycleStart(ctx, "s1", "c1", time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 2.0, b.Allocated)
	assert.Equal(t, 2.0, b.Remaining)
	assert.Equal(t, time.Date(2026, time.June, 30, 0, 0, 0, 0, time.UTC), b.CycleEnd)
}

func TestAllocateBalances_SecondRunAllocatesNothing(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	templates := &fakeTemplateRepo{assignments: []leave.Assignment{
		assignment("s1", leave.CycleMonthly,
			leave.Category{ID: "c1", Name: "Casual", LeaveCount: 2, UnusedRule: leave.UnusedLapse},
		),
	}}
	balances := newFakeBalanceRepo()
	svc := NewAllocatorService(templates, balances)

	ref := time.Date(2026, time.June, 10, 0, 0, 0, 0, time.UTC)
	first, err := svc.AllocateBalances(ctx, "t1", ref)
	require.NoError(t, err)
	require.Equal(t, 1, first.AllocatedCount)

	// Different date, same window.
	second, err := svc.AllocateBalances(ctx, "t1", time.Date(2026, time.June, 25, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 0, second.AllocatedCount)
	assert.Equal(t, 1, second.SkippedCount)
}

func TestAllocateBalances_CarryForwardLimited(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	templates := &fakeTemplateRepo{assignments: []leave.Assignment{
		assignment("s1", leave.CycleMonthly,
			leave.Category{ID: "c1", Name: "Earned", LeaveCount: 2, UnusedRule: leave.UnusedCarryForward, CarryLimitDays: floatPtr(5)},
		),
	}}
	balances := newFakeBalanceRepo()
	// Previous cycle (May 2026) ended with 8 days remaining.
	_, err := balances.Create(ctx, leave.Balance{
		TenantID:   "t1",
		StaffID:    "s1",
		CategoryID: "c1",
		CycleStart: time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC),
		CycleEnd:   time.Date(2026, time.May, 31, 0, 0, 0, 0, time.UTC),
		Allocated:  10,
		Used:       2,
		Remaining:  8,
	})
	require.NoError(t, err)

	svc := NewAllocatorService(templates, balances)
	result, err := svc.AllocateBalances(ctx, "t1", time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	require.Equal(t, 1, result.AllocatedCount)

	b, err := balances.GetByCycleStart(ctx, "s1", "c1", time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 5.0, b.CarriedForward)
	assert.Equal(t, 7.0, b.Allocated)
	assert.Equal(t, 7.0, b.Remaining)
}

func TestAllocateBalances_EncashLimited(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	templates := &fakeTemplateRepo{assignments: []leave.Assignment{
		assignment("s1", leave.CycleYearly,
			leave.Category{ID: "c1", Name: "Earned", LeaveCount: 12, UnusedRule: leave.UnusedEncash, EncashLimitDays: floatPtr(6)},
		),
	}}
	balances := newFakeBalanceRepo()
	_, err := balances.Create(ctx, leave.Balance{
		TenantID:   "t1",
		StaffID:    "s1",
		CategoryID: "c1",
		CycleStart: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		CycleEnd:   time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC),
		Allocated:  12,
		Remaining:  9,
	})
	require.NoError(t, err)

	svc := NewAllocatorService(templates, balances)
	result, err := svc.AllocateBalances(ctx, "t1", time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	require.Equal(t, 1, result.AllocatedCount)

	b, err := balances.GetByCycleStart(ctx, "s1", "c1", time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 6.0, b.Encashed)
	assert.Equal(t, 0.0, b.CarriedForward)
	assert.Equal(t, 12.0, b.Allocated)
}

func TestAllocateBalances_BeforeEffectiveFrom(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	a := assignment("s1", leave.CycleMonthly,
		leave.Category{ID: "c1", Name: "Casual", LeaveCount: 2, UnusedRule: leave.UnusedLapse},
	)
	a.EffectiveFrom = time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
	templates := &fakeTemplateRepo{assignments: []leave.Assignment{a}}
	svc := NewAllocatorService(templates, newFakeBalanceRepo())

	result, err := svc.AllocateBalances(ctx, "t1", time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	assert.Equal(t, 0, result.AllocatedCount)
	assert.Empty(t, result.Errors)
}

func TestWindowFor_QuarterlyAndYearly(t *testing.T) {
	t.Parallel()

	q := WindowFor(leave.CycleQuarterly, time.Date(2026, time.August, 20, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC), q.Start)
	assert.Equal(t, time.Date(2026, time.September, 30, 0, 0, 0, 0, time.UTC), q.End)

	y := WindowFor(leave.CycleYearly, time.Date(2026, time.August, 20, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC), y.Start)
	assert.Equal(t, time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC), y.End)

	prev := PreviousWindow(leave.CycleQuarterly, time.Date(2026, time.August, 20, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC), prev.Start)
	assert.Equal(t, time.Date(2026, time.June, 30, 0, 0, 0, 0, time.UTC), prev.End)
}
