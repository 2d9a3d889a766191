package http

import (
	"log/slog"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/hris-ledger/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/metrics"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

type RouterOptions struct {
	JWTService     jwt.Service
	Directory      employee.EmployeeDirectory
	RequestLogger  *slog.Logger
	AllowedOrigins []string
	// Redis enables Idempotency-Key replay; nil disables it.
	Redis          redis.Cmdable
	RateLimit      rate.Limit
	RateLimitBurst int
}

func NewRouter(opts RouterOptions, attendanceHandler AttendanceHandler, leaveHandler LeaveHandler, employeeHandler EmployeeHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.IdempotencyKeyHeader},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	if opts.RequestLogger != nil {
		r.Use(httplog.RequestLogger(opts.RequestLogger, &httplog.Options{
			Level:  slog.LevelInfo,
			Schema: httplog.SchemaECS,
		}))
	}

	r.Use(metrics.InstrumentHandler)
	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Handle("/metrics", metrics.Handler())

	idempotent := middleware.Idempotency(opts.Redis)

	limit := opts.RateLimit
	if limit <= 0 {
		limit = rate.Inf
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(opts.JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)
			r.Use(middleware.RateLimitByUser(limit, opts.RateLimitBurst))
			r.Use(middleware.ResolveEmployee(opts.Directory))

			r.Route("/attendance", func(r chi.Router) {
				r.With(idempotent).Post("/check-in", attendanceHandler.CheckIn)
				r.With(idempotent).Post("/check-out", attendanceHandler.CheckOut)
				r.Get("/today", attendanceHandler.Today)
				r.Get("/", attendanceHandler.History)
			})

			r.Route("/leave", func(r chi.Router) {
				r.With(idempotent).Post("/", leaveHandler.Submit)
				r.Get("/", leaveHandler.List)
				r.Get("/balance", leaveHandler.GetMyBalance)
				r.Get("/pending-count", leaveHandler.PendingCount)

				// Manager only
				r.With(middleware.RequireManager).Put("/{id}/decision", leaveHandler.Decide)
			})

			r.Route("/employees", func(r chi.Router) {
				r.Get("/me", employeeHandler.Me)

				// Manager only
				r.With(middleware.RequireManager).Get("/{id}/leave-balance", leaveHandler.GetEmployeeBalance)
			})
		})
	})
	return r
}
