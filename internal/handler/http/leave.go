package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/staffhq/wfm-backend-go/internal/domain/leave"
	"github.com/staffhq/wfm-backend-go/internal/handler/http/response"
	"github.com/staffhq/wfm-backend-go/internal/pkg/jwt"
	"github.com/staffhq/wfm-backend-go/internal/pkg/validator"
)

type LeaveHandler interface {
	Apply(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
	AllocateBalances(w http.ResponseWriter, r *http.Request)
	ListBalances(w http.ResponseWriter, r *http.Request)
}

type leaveHandlerImpl struct {
	requestService   leave.RequestService
	allocatorService leave.AllocatorService
}

func NewLeaveHandler(requestService leave.RequestService, allocatorService leave.AllocatorService) LeaveHandler {
	return &leaveHandlerImpl{
		requestService:   requestService,
		allocatorService: allocatorService,
	}
}

func (h *leaveHandlerImpl) Apply(w http.ResponseWriter, r *http.Request) {
	var req leave.ApplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.requestService.Apply(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave request submitted", result)
}

func (h *leaveHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Request ID is required", nil)
		return
	}

	result, err := h.requestService.Approve(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request approved", result)
}

func (h *leaveHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Request ID is required", nil)
		return
	}

	result, err := h.requestService.Reject(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request rejected", result)
}

func (h *leaveHandlerImpl) AllocateBalances(w http.ResponseWriter, r *http.Request) {
	var req leave.AllocateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	tenantID, _, err := jwt.ClaimsFromContext(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	referenceDate, _ := validator.IsValidDate(req.ReferenceDate)
	result, err := h.allocatorService.AllocateBalances(r.Context(), tenantID, referenceDate)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave balances allocated", result)
}

func (h *leaveHandlerImpl) ListBalances(w http.ResponseWriter, r *http.Request) {
	staffID := chi.URLParam(r, "staffId")
	if staffID == "" {
		response.BadRequest(w, "Staff ID is required", nil)
		return
	}

	result, err := h.allocatorService.ListBalances(r.Context(), staffID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
