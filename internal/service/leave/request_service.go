package leave

import (
	"context"
	"errors"
	"fmt"

	"github.com/staffhq/wfm-backend-go/internal/domain/leave"
	"github.com/staffhq/wfm-backend-go/internal/domain/staff"
	"github.com/staffhq/wfm-backend-go/internal/pkg/jwt"
	"github.com/staffhq/wfm-backend-go/internal/pkg/validator"
)

type RequestServiceImpl struct {
	leave.RequestRepository
	leave.BalanceRepository
	staff.StaffRepository
}

func NewRequestService(
	requestRepo leave.RequestRepository,
	balanceRepo leave.BalanceRepository,
	staffRepo staff.StaffRepository,
) leave.RequestService {
	return &RequestServiceImpl{
		RequestRepository: requestRepo,
		BalanceRepository: balanceRepo,
		StaffRepository:   staffRepo,
	}
}

func timeToDatePtr(t *leave.Request) (decidedAt *string) {
	if t.DecidedAt != nil {
		s := t.DecidedAt.Format("2006-01-02 15:04:05")
		decidedAt = &s
	}
	return decidedAt
}

func toRequestResponse(req leave.Request) leave.RequestResponse {
	return leave.RequestResponse{
		ID:         req.ID,
		StaffID:    req.StaffID,
		CategoryID: req.CategoryID,
		StartDate:  req.StartDate.Format("2006-01-02"),
		EndDate:    req.EndDate.Format("2006-01-02"),
		PaidDays:   req.PaidDays,
		UnpaidDays: req.UnpaidDays,
		Reason:     req.Reason,
		Status:     string(req.Status),
		DecidedBy:  req.DecidedBy,
		DecidedAt:  timeToDatePtr(&req),
	}
}

// Apply implements leave.RequestService.
func (s *RequestServiceImpl) Apply(ctx context.Context, req leave.ApplyRequest) (leave.RequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.RequestResponse{}, err
	}

	tenantID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return leave.RequestResponse{}, err
	}
	if _, err := s.StaffRepository.GetByID(ctx, req.StaffID, tenantID); err != nil {
		return leave.RequestResponse{}, err
	}

	start, _ := validator.IsValidDate(req.StartDate)
	end, _ := validator.IsValidDate(req.EndDate)

	created, err := s.RequestRepository.Create(ctx, leave.Request{
		TenantID:   tenantID,
		StaffID:    req.StaffID,
		CategoryID: req.CategoryID,
		StartDate:  start,
		EndDate:    end,
		PaidDays:   req.PaidDays,
		UnpaidDays: req.UnpaidDays,
		Reason:     req.Reason,
		Status:     leave.RequestStatusPending,
	})
	if err != nil {
		return leave.RequestResponse{}, fmt.Errorf("failed to create leave request: %w", err)
	}
	return toRequestResponse(created), nil
}

// Approve implements leave.RequestService. Only pending requests can be
// approved; paid days are debited from the staff member's balance when the
// request names a category.
func (s *RequestServiceImpl) Approve(ctx context.Context, id string) (leave.RequestResponse, error) {
	tenantID, userID, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return leave.RequestResponse{}, err
	}

	updated, err := s.RequestRepository.UpdateStatus(ctx, id, tenantID, leave.RequestStatusPending, leave.RequestStatusApproved, userID)
	if err != nil {
		return leave.RequestResponse{}, err
	}

	if updated.CategoryID != nil && updated.PaidDays > 0 {
		err := s.BalanceRepository.ApplyUsage(ctx, updated.StaffID, *updated.CategoryID, updated.StartDate, float64(updated.PaidDays))
		if err != nil && !errors.Is(err, leave.ErrBalanceNotFound) {
			return leave.RequestResponse{}, fmt.Errorf("failed to debit leave balance: %w", err)
		}
	}

	return toRequestResponse(updated), nil
}

// Reject implements leave.RequestService.
func (s *RequestServiceImpl) Reject(ctx context.Context, id string) (leave.RequestResponse, error) {
	tenantID, userID, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return leave.RequestResponse{}, err
	}

	updated, err := s.RequestRepository.UpdateStatus(ctx, id, tenantID, leave.RequestStatusPending, leave.RequestStatusRejected, userID)
	if err != nil {
		return leave.RequestResponse{}, err
	}
	return toRequestResponse(updated), nil
}
