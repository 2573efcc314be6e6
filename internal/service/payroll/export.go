package payroll

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/staffhq/wfm-backend-go/internal/domain/payroll"
	"github.com/staffhq/wfm-backend-go/internal/pkg/jwt"
)

var exportHeader = []string{
	"staff_code", "staff_name", "month_key",
	"present", "half_day", "paid_leave", "unpaid_leave", "leave", "absent", "weekly_off", "holiday",
	"overtime_minutes", "proration_ratio",
	"earnings", "incentives", "deductions", "overtime_pay", "gross", "net", "net_payable",
	"paid_at", "paid_amount", "paid_mode", "paid_ref",
}

// ExportCycleCSV implements payroll.PayrollService. One row per line with
// staff identity, attendance summary and totals. Document rendering beyond
// plain CSV belongs to downstream consumers.
func (s *PayrollServiceImpl) ExportCycleCSV(ctx context.Context, cycleID string) ([]byte, error) {
	tenantID, _, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	cycle, err := s.PayrollRepository.GetCycleByID(ctx, cycleID, tenantID)
	if err != nil {
		return nil, err
	}
	lines, err := s.PayrollRepository.ListLinesByCycle(ctx, cycleID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll lines: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, line := range lines {
		if err := w.Write(exportRow(cycle, line)); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func exportRow(cycle payroll.PayrollCycle, line payroll.PayrollLine) []string {
	derefOr := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}

	counts := line.AttendanceSummary.Counts
	totals := line.Totals

	paidAt := ""
	if line.PaidAt != nil {
		paidAt = line.PaidAt.Format("2006-01-02 15:04:05")
	}
	paidAmount := ""
	if line.PaidAmount != nil {
		paidAmount = line.PaidAmount.String()
	}

	return []string{
		derefOr(line.StaffCode),
		derefOr(line.StaffName),
		cycle.MonthKey,
		strconv.Itoa(counts.Present),
		strconv.Itoa(counts.HalfDay),
		strconv.Itoa(counts.PaidLeave),
		strconv.Itoa(counts.UnpaidLeave),
		strconv.Itoa(counts.Leave()),
		strconv.Itoa(counts.Absent),
		strconv.Itoa(counts.WeeklyOff),
		strconv.Itoa(counts.Holiday),
		strconv.Itoa(line.AttendanceSummary.OvertimeMinutes),
		totals.ProrationRatio.String(),
		totals.Earnings.String(),
		totals.Incentives.String(),
		totals.Deductions.String(),
		totals.OvertimePay.String(),
		totals.Gross.String(),
		totals.Net.String(),
		line.NetWithAdjustments().String(),
		paidAt,
		paidAmount,
		derefOr(line.PaidMode),
		derefOr(line.PaidRef),
	}
}
