package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/staffhq/wfm-backend-go/internal/handler/http/middleware"
	"github.com/staffhq/wfm-backend-go/internal/pkg/jwt"
)

func NewRouter(
	verifier *jwt.Verifier,
	payrollHandler PayrollHandler,
	attendanceHandler AttendanceHandler,
	leaveHandler LeaveHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "wfm-backend"),
		slog.String("version", "v1.0.0"),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(verifier.JWTAuth()))
			r.Use(middleware.AuthRequired(verifier.JWTAuth()))

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/punch-in", attendanceHandler.PunchIn)
				r.Post("/punch-out", attendanceHandler.PunchOut)
				r.Post("/break", attendanceHandler.ToggleBreak)
				r.Put("/records", attendanceHandler.AdminUpsert)
				r.Get("/staff/{staffId}/classification", attendanceHandler.ClassifyMonth)
			})

			r.Route("/leave", func(r chi.Router) {
				r.Post("/requests", leaveHandler.Apply)
				r.Post("/requests/{id}/approve", leaveHandler.Approve)
				r.Post("/requests/{id}/reject", leaveHandler.Reject)
				r.Post("/balances/allocate", leaveHandler.AllocateBalances)
				r.Get("/balances/staff/{staffId}", leaveHandler.ListBalances)
			})

			r.Route("/payroll", func(r chi.Router) {
				r.Route("/cycles", func(r chi.Router) {
					r.Get("/", payrollHandler.ListCycles)
					r.Post("/compute", payrollHandler.ComputeCycle)

					r.Route("/{id}", func(r chi.Router) {
						r.Get("/", payrollHandler.GetCycle)
						r.Post("/lock", payrollHandler.LockCycle)
						r.Post("/unlock", payrollHandler.UnlockCycle)
						r.Post("/mark-paid", payrollHandler.MarkCyclePaid)
						r.Post("/lines/mark-paid", payrollHandler.MarkLinesPaid)
						r.Put("/lines/{lineId}", payrollHandler.UpdateLine)
						r.Get("/export", payrollHandler.ExportCycleCSV)
					})
				})
			})
		})
	})
	return r
}
