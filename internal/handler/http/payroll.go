package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/staffhq/wfm-backend-go/internal/domain/payroll"
	"github.com/staffhq/wfm-backend-go/internal/handler/http/response"
)

type PayrollHandler interface {
	// Cycles
	ComputeCycle(w http.ResponseWriter, r *http.Request)
	GetCycle(w http.ResponseWriter, r *http.Request)
	ListCycles(w http.ResponseWriter, r *http.Request)
	LockCycle(w http.ResponseWriter, r *http.Request)
	UnlockCycle(w http.ResponseWriter, r *http.Request)
	MarkCyclePaid(w http.ResponseWriter, r *http.Request)
	ExportCycleCSV(w http.ResponseWriter, r *http.Request)

	// Lines
	MarkLinesPaid(w http.ResponseWriter, r *http.Request)
	UpdateLine(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{payrollService: payrollService}
}

// ========== CYCLES ==========

func (h *payrollHandlerImpl) ComputeCycle(w http.ResponseWriter, r *http.Request) {
	var req payroll.ComputeCycleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.ComputeCycle(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll cycle computed", result)
}

func (h *payrollHandlerImpl) GetCycle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Cycle ID is required", nil)
		return
	}

	cycle, lines, err := h.payrollService.GetCycle(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, map[string]interface{}{
		"cycle": cycle,
		"lines": lines,
	})
}

func (h *payrollHandlerImpl) ListCycles(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.ListCycles(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) LockCycle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Cycle ID is required", nil)
		return
	}

	result, err := h.payrollService.LockCycle(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll cycle locked", result)
}

func (h *payrollHandlerImpl) UnlockCycle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Cycle ID is required", nil)
		return
	}

	result, err := h.payrollService.UnlockCycle(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll cycle unlocked", result)
}

func (h *payrollHandlerImpl) MarkCyclePaid(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Cycle ID is required", nil)
		return
	}

	var req payroll.MarkPaidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.MarkCyclePaid(r.Context(), id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll cycle marked paid", result)
}

func (h *payrollHandlerImpl) ExportCycleCSV(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Cycle ID is required", nil)
		return
	}

	data, err := h.payrollService.ExportCycleCSV(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="payroll-cycle.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// ========== LINES ==========

func (h *payrollHandlerImpl) MarkLinesPaid(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Cycle ID is required", nil)
		return
	}

	var req payroll.MarkPaidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	count, err := h.payrollService.MarkLinesPaid(r.Context(), id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll lines marked paid", map[string]int{"paid_count": count})
}

func (h *payrollHandlerImpl) UpdateLine(w http.ResponseWriter, r *http.Request) {
	cycleID := chi.URLParam(r, "id")
	lineID := chi.URLParam(r, "lineId")
	if cycleID == "" || lineID == "" {
		response.BadRequest(w, "Cycle ID and line ID are required", nil)
		return
	}

	var req payroll.UpdateLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.CycleID = cycleID
	req.LineID = lineID

	result, err := h.payrollService.UpdateLine(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll line updated", result)
}
