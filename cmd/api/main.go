package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hris-ledger/internal/config"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/leave"
	appHTTP "github.com/cmlabs-hris/hris-ledger/internal/handler/http"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/database"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/logger"
	"github.com/cmlabs-hris/hris-ledger/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/hris-ledger/internal/service/attendance"
	employeeService "github.com/cmlabs-hris/hris-ledger/internal/service/employee"
	leaveService "github.com/cmlabs-hris/hris-ledger/internal/service/leave"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	appName    = "hris-ledger"
	appVersion = "v1.0.0"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading config: ", err)
	}

	zlog, err := logger.New(cfg.App.Env, cfg.App.LogLevel)
	if err != nil {
		log.Fatal("Error building logger: ", err)
	}
	defer zlog.Sync()
	zap.ReplaceGlobals(zlog)

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("api exited", zap.Error(err))
	}
}

func run(cfg *config.Config, zlog *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDBContext(ctx, cfg.DatabaseURL())
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	// Redis only backs Idempotency-Key replay; without it the route guards still hold.
	var rdb redis.Cmdable
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			zlog.Warn("redis unavailable, idempotency keys disabled", zap.Error(err))
		} else {
			rdb = client
		}
	}

	clk := clock.NewReal(cfg.Location())
	policy, err := attendanceService.NewPolicy(cfg.Attendance)
	if err != nil {
		return err
	}
	allowance := leave.Allowance{
		VacationDays: cfg.Leave.DefaultVacationDays,
		SickDays:     cfg.Leave.DefaultSickDays,
		PersonalDays: cfg.Leave.DefaultPersonalDays,
	}

	txManager := postgresql.NewTransactor(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	leaveBalanceRepo := postgresql.NewLeaveBalanceRepository(db)
	leaveRequestRepo := postgresql.NewLeaveRequestRepository(db)
	outboxRepo := postgresql.NewOutboxRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret)
	ledger := leaveService.NewLedgerService(txManager, leaveBalanceRepo, allowance, cfg.Leave.EnforceBalance, zlog)
	directory := employeeService.NewEmployeeDirectory(txManager, employeeRepo, ledger, clk, zlog)
	workflow := leaveService.NewWorkflowService(txManager, leaveRequestRepo, employeeRepo, ledger, outboxRepo, clk, zlog)
	attendance := attendanceService.NewAttendanceService(txManager, attendanceRepo, outboxRepo, clk, policy, zlog)

	router := appHTTP.NewRouter(appHTTP.RouterOptions{
		JWTService:     JWTService,
		Directory:      directory,
		RequestLogger:  logger.NewRequestLogger(appName, appVersion, cfg.App.Env),
		AllowedOrigins: strings.Split(cfg.App.FrontendURL, ","),
		Redis:          rdb,
		RateLimit:      rate.Limit(cfg.RateLimit.RequestsPerSecond),
		RateLimitBurst: cfg.RateLimit.Burst,
	},
		appHTTP.NewAttendanceHandler(attendance),
		appHTTP.NewLeaveHandler(workflow, clk),
		appHTTP.NewEmployeeHandler(),
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zlog.Info("HTTP server running", zap.String("addr", server.Addr), zap.String("timezone", cfg.App.Timezone))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		zlog.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	zlog.Info("server exited gracefully")
	return nil
}
