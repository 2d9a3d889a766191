package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hris-ledger/internal/config"
	"github.com/cmlabs-hris/hris-ledger/internal/messaging/kafka"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/database"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/logger"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/metrics"
	"github.com/cmlabs-hris/hris-ledger/internal/repository/postgresql"
	"github.com/cmlabs-hris/hris-ledger/internal/service/outbox"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
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

	if err := run(cfg, zlog.Named("app.worker")); err != nil {
		zlog.Fatal("worker exited", zap.Error(err))
	}
}

func run(cfg *config.Config, zlog *zap.Logger) error {
	if len(cfg.Kafka.Brokers) == 0 {
		return errors.New("KAFKA_BROKERS is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDBContext(ctx, cfg.DatabaseURL())
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	writer := kafka.NewWriter(cfg.Kafka.Brokers)
	publisher := kafka.NewPublisher(writer, cfg.Kafka.TopicPrefix)
	defer publisher.Close()

	relay := outbox.NewRelay(
		postgresql.NewTransactor(db),
		postgresql.NewOutboxRepository(db),
		publisher,
		cfg.Kafka.BatchSize,
		zlog,
	)

	scheduler := cron.NewScheduler(clockwork.NewRealClock(), zlog)
	if err := scheduler.AddJob("outbox-relay", cfg.Kafka.PollInterval, relay.Job); err != nil {
		return err
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		scheduler.Start(gCtx)
		zlog.Info("worker started",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic_prefix", cfg.Kafka.TopicPrefix),
			zap.Duration("poll_interval", cfg.Kafka.PollInterval),
		)

		<-gCtx.Done()
		zlog.Info("worker shutting down")
		scheduler.Stop()
		return nil
	})

	if cfg.Kafka.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		server := &http.Server{Addr: cfg.Kafka.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

		g.Go(func() error {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}
