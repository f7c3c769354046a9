package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"alyra/internal/platform/config"
	"alyra/internal/platform/database"
	"alyra/internal/platform/httpserver"
	"alyra/internal/platform/kafka"
	"alyra/internal/platform/logger"
	"alyra/pkg/platform/audit"
	"alyra/pkg/platform/audit/consumer"
	"alyra/pkg/platform/audit/store/sqlstore"
)

const shutdownTimeout = 10 * time.Second

// main consumes ballot events from the broker and archives them in
// DATABASE_URL. It exposes /metrics on ALYRA_ADDR.
func main() {
	if err := run(); err != nil {
		slog.Error("audit sink exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat).With("component", "auditsink")
	if len(cfg.Kafka.Brokers) == 0 {
		return errors.New("KAFKA_BROKERS is required")
	}
	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	archive := sqlstore.NewArchive(db.DB, db.Dialect)
	if err := archive.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate archive: %w", err)
	}

	m := consumer.NewMetrics()
	router := consumer.NewRouter(log, m, consumer.NewOpsHandler(archive, log, m))
	router.Register(audit.CategoryCompliance, consumer.NewComplianceHandler(archive, log, m))
	router.Register(audit.CategoryOperations, consumer.NewOpsHandler(archive, log, m))

	c, err := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.ConsumerGroup, []string{cfg.Kafka.AuditTopic},
		kafka.WithConsumerLogger(log),
	)
	if err != nil {
		return err
	}
	defer c.Close()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := httpserver.New(cfg.Addr, mux)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("consuming ballot events",
			"topic", cfg.Kafka.AuditTopic,
			"group", cfg.Kafka.ConsumerGroup,
		)
		return c.Run(gctx, router)
	})
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
