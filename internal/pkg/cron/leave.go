package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/staffhq/wfm-backend-go/internal/domain/leave"
)

// LeaveJobs holds the scheduled leave-balance allocation job. The allocator
// itself is idempotent per cycle window, so running the job hourly and
// gating on midnight is safe even across restarts.
type LeaveJobs struct {
	allocator leave.AllocatorService
}

func NewLeaveJobs(allocator leave.AllocatorService) *LeaveJobs {
	return &LeaveJobs{allocator: allocator}
}

func (j *LeaveJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("allocate_leave_balances", 1*time.Hour, j.AllocateLeaveBalances)
}

// AllocateLeaveBalances allocates the current cycle's balances for every
// tenant. Only the midnight run does work; other runs return immediately.
func (j *LeaveJobs) AllocateLeaveBalances(ctx context.Context) error {
	now := time.Now().UTC()
	if now.Hour() != 0 {
		return nil
	}

	slog.Info("Cron: Starting leave balance allocation job")

	result, err := j.allocator.AllocateBalances(ctx, "", now)
	if err != nil {
		return err
	}

	slog.Info("Cron: Leave balance allocation finished",
		"allocated", result.AllocatedCount,
		"skipped", result.SkippedCount,
		"errors", len(result.Errors),
	)
	return nil
}
