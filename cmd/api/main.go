package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/staffhq/wfm-backend-go/internal/config"
	appHTTP "github.com/staffhq/wfm-backend-go/internal/handler/http"
	"github.com/staffhq/wfm-backend-go/internal/pkg/cron"
	"github.com/staffhq/wfm-backend-go/internal/pkg/database"
	"github.com/staffhq/wfm-backend-go/internal/pkg/jwt"
	"github.com/staffhq/wfm-backend-go/internal/repository/postgresql"
	attendanceService "github.com/staffhq/wfm-backend-go/internal/service/attendance"
	leaveService "github.com/staffhq/wfm-backend-go/internal/service/leave"
	payrollService "github.com/staffhq/wfm-backend-go/internal/service/payroll"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	staffRepo := postgresql.NewStaffRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	scheduleRepo := postgresql.NewScheduleRepository(db)
	leaveRequestRepo := postgresql.NewLeaveRequestRepository(db)
	leaveTemplateRepo := postgresql.NewLeaveTemplateRepository(db)
	leaveBalanceRepo := postgresql.NewLeaveBalanceRepository(db)
	payrollRepo := postgresql.NewPayrollRepository(db)

	verifier := jwt.NewVerifier(cfg.JWT.Secret)

	payrollSvc := payrollService.NewPayrollService(
		payrollRepo,
		staffRepo,
		attendanceRepo,
		leaveRequestRepo,
		scheduleRepo,
		logger,
	)
	attendanceSvc := attendanceService.NewAttendanceService(
		attendanceRepo,
		staffRepo,
		leaveRequestRepo,
		scheduleRepo,
		payrollSvc,
	)
	requestSvc := leaveService.NewRequestService(leaveRequestRepo, leaveBalanceRepo, staffRepo)
	allocatorSvc := leaveService.NewAllocatorService(leaveTemplateRepo, leaveBalanceRepo)

	payrollHandler := appHTTP.NewPayrollHandler(payrollSvc)
	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)
	leaveHandler := appHTTP.NewLeaveHandler(requestSvc, allocatorSvc)

	if cfg.Cron.LeaveAllocationEnabled {
		scheduler := cron.NewScheduler()
		cron.NewLeaveJobs(allocatorSvc).RegisterJobs(scheduler)
		scheduler.Start()
		defer scheduler.Stop()
	}

	router := appHTTP.NewRouter(
		verifier,
		payrollHandler,
		attendanceHandler,
		leaveHandler,
	)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
