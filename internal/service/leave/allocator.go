package leave

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/staffhq/wfm-backend-go/internal/domain/leave"
	"github.com/staffhq/wfm-backend-go/internal/pkg/jwt"
)

type AllocatorServiceImpl struct {
	leave.TemplateRepository
	leave.BalanceRepository
}

func NewAllocatorService(
	templateRepo leave.TemplateRepository,
	balanceRepo leave.BalanceRepository,
) leave.AllocatorService {
	return &AllocatorServiceImpl{
		TemplateRepository: templateRepo,
		BalanceRepository:  balanceRepo,
	}
}

// AllocateBalances implements leave.AllocatorService. For every assignment
// active on the reference date it allocates one balance per template
// category, unless one already exists for the cycle window. Re-running for
// the same date never double-allocates; the unique index on (staff, category,
// cycle start) backstops concurrent runs.
func (s *AllocatorServiceImpl) AllocateBalances(ctx context.Context, tenantID string, referenceDate time.Time) (leave.AllocationResult, error) {
	var result leave.AllocationResult

	assignments, err := s.TemplateRepository.ListAssignmentsActiveOn(ctx, referenceDate, tenantID)
	if err != nil {
		return result, fmt.Errorf("failed to list leave template assignments: %w", err)
	}

	for _, assignment := range assignments {
		window := WindowFor(assignment.Template.CycleType, referenceDate)
		previous := PreviousWindow(assignment.Template.CycleType, referenceDate)

		for _, category := range assignment.Template.Categories {
			created, err := s.allocateOne(ctx, assignment, category, window, previous)
			switch {
			case err == nil && created:
				result.AllocatedCount++
			case err == nil:
				result.SkippedCount++
			default:
				result.Errors = append(result.Errors, leave.AllocationError{
					StaffID:    assignment.StaffID,
					CategoryID: category.ID,
					Message:    err.Error(),
				})
			}
		}
	}

	return result, nil
}

func (s *AllocatorServiceImpl) allocateOne(
	ctx context.Context,
	assignment leave.Assignment,
	category leave.Category,
	window, previous CycleWindow,
) (bool, error) {
	_, err := s.BalanceRepository.GetByCycleStart(ctx, assignment.StaffID, category.ID, window.Start)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, leave.ErrBalanceNotFound) {
		return false, fmt.Errorf("failed to look up balance: %w", err)
	}

	carried, encashed, err := s.rollOver(ctx, assignment.StaffID, category, previous)
	if err != nil {
		return false, err
	}

	allocated := category.LeaveCount + carried
	_, err = s.BalanceRepository.Create(ctx, leave.Balance{
		TenantID:       assignment.TenantID,
		StaffID:        assignment.StaffID,
		CategoryID:     category.ID,
		CycleStart:     window.Start,
		CycleEnd:       window.End,
		Allocated:      allocated,
		CarriedForward: carried,
		Used:           0,
		Encashed:       encashed,
		Remaining:      allocated,
	})
	if err != nil {
		if errors.Is(err, leave.ErrBalanceAlreadyAllocated) {
			// Lost a race with a concurrent allocation run.
			return false, nil
		}
		return false, fmt.Errorf("failed to create balance: %w", err)
	}
	return true, nil
}

// rollOver applies the category's unused rule to the previous window's
// remainder. Returns the days carried into the new cycle and the days
// encashed out of the old one.
func (s *AllocatorServiceImpl) rollOver(ctx context.Context, staffID string, category leave.Category, previous CycleWindow) (carried, encashed float64, err error) {
	prev, err := s.BalanceRepository.GetByCycleStart(ctx, staffID, category.ID, previous.Start)
	if err != nil {
		if errors.Is(err, leave.ErrBalanceNotFound) {
			return 0, 0, nil
		}
		return 0, 0, fmt.Errorf("failed to look up previous balance: %w", err)
	}

	remaining := prev.Remaining
	if remaining <= 0 {
		return 0, 0, nil
	}

	switch category.UnusedRule {
	case leave.UnusedCarryForward:
		carried = remaining
		if category.CarryLimitDays != nil && carried > *category.CarryLimitDays {
			carried = *category.CarryLimitDays
		}
		return carried, 0, nil
	case leave.UnusedEncash:
		encashed = remaining
		if category.EncashLimitDays != nil && encashed > *category.EncashLimitDays {
			encashed = *category.EncashLimitDays
		}
		return 0, encashed, nil
	default:
		// lapse
		return 0, 0, nil
	}
}

// ListBalances implements leave.AllocatorService.
func (s *AllocatorServiceImpl) ListBalances(ctx context.Context, staffID string) ([]leave.BalanceResponse, error) {
	tenantID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	balances, err := s.BalanceRepository.ListByStaff(ctx, staffID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list balances: %w", err)
	}

	responses := make([]leave.BalanceResponse, 0, len(balances))
	for _, b := range balances {
		responses = append(responses, leave.BalanceResponse{
			ID:             b.ID,
			StaffID:        b.StaffID,
			CategoryID:     b.CategoryID,
			CategoryName:   b.CategoryName,
			CycleStart:     b.CycleStart.Format("2006-01-02"),
			CycleEnd:       b.CycleEnd.Format("2006-01-02"),
			Allocated:      b.Allocated,
			CarriedForward: b.CarriedForward,
			Used:           b.Used,
			Encashed:       b.Encashed,
			Remaining:      b.Remaining,
		})
	}
	return responses, nil
}
