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

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	jwttoken "alyra/internal/jwt_token"
	"alyra/internal/platform/config"
	"alyra/internal/platform/database"
	"alyra/internal/platform/httpserver"
	"alyra/internal/platform/kafka"
	"alyra/internal/platform/logger"
	"alyra/internal/platform/metrics"
	"alyra/internal/platform/middleware"
	"alyra/internal/platform/ratelimit"
	redisclient "alyra/internal/platform/redis"
	"alyra/internal/voting/handler"
	votingmetrics "alyra/internal/voting/metrics"
	"alyra/internal/voting/service"
	"alyra/internal/voting/store"
	"alyra/pkg/platform/audit/publisher"
	"alyra/pkg/platform/audit/relay"
	"alyra/pkg/platform/audit/store/memory"
	"alyra/pkg/platform/audit/store/redisstore"
	"alyra/pkg/platform/audit/store/sqlstore"
	"alyra/pkg/platform/circuit"
	"alyra/pkg/platform/httputil"
	"alyra/pkg/platform/middleware/admin"
	"alyra/pkg/platform/middleware/request"
)

const (
	requestTimeout  = 30 * time.Second
	shutdownTimeout = 10 * time.Second
	startupTimeout  = 15 * time.Second
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	if err := run(); err != nil {
		slog.Error("alyra exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	if cfg.UsesDevSigningKey() {
		log.Warn("JWT_SIGNING_KEY is not set, using the development key")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()
	infra, err := buildInfra(startCtx, cfg, log)
	if err != nil {
		return err
	}
	defer infra.close(log)

	httpMetrics := metrics.New()
	votingMetrics := votingmetrics.New()

	opts := []service.Option{
		service.WithLogger(log),
		service.WithAuditPublisher(infra.auditPublisher),
		service.WithMetrics(votingMetrics),
	}
	var producer *kafka.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic,
			kafka.WithLogger(log),
			kafka.WithMetrics(httpMetrics),
		)
		if err != nil {
			return fmt.Errorf("create kafka producer: %w", err)
		}
		defer closeProducer(producer, log)
		if err := producer.EnsureTopic(startCtx, 3, 1); err != nil {
			log.Warn("could not ensure audit topic", "topic", cfg.Kafka.AuditTopic, "error", err)
		}
		// The SQL backend publishes through the outbox relay instead.
		if infra.outbox == nil {
			opts = append(opts, service.WithObserver(service.NewBrokerObserver(producer,
				service.WithBreaker(circuit.New("kafka", circuit.WithCooldown(30*time.Second))),
				service.WithBrokerLogger(log),
			)))
		}
	}
	svc := service.New(infra.ballots, opts...)

	if err := seed(startCtx, svc, cfg, log); err != nil {
		return fmt.Errorf("seed ballot: %w", err)
	}

	jwtService := jwttoken.NewJWTService(cfg.JWT.SigningKey, cfg.JWT.Issuer, cfg.JWT.Audience)
	limiter := ratelimit.New(infra.limits, cfg.Limits.Requests, cfg.Limits.Window, log,
		ratelimit.WithMetrics(httpMetrics),
	)
	router := newRouter(routerDeps{
		handler:        handler.New(svc, log),
		validator:      jwttoken.NewIdentityAdapter(jwtService),
		metrics:        httpMetrics,
		logger:         log,
		adminTokenHash: cfg.AdminTokenHash,
		health:         infra.health,
		limiter:        limiter,
	})
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting alyra", "addr", cfg.Addr, "store", string(cfg.Store))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	if infra.outbox != nil && producer != nil {
		r := relay.New(infra.outbox, producer,
			relay.WithLogger(log),
			relay.WithInterval(cfg.Outbox.PollInterval),
			relay.WithBatchSize(cfg.Outbox.BatchSize),
		)
		g.Go(func() error {
			return r.Run(gctx)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		log.Info("server stopped")
		return nil
	})
	return g.Wait()
}

// infra holds the backend-specific pieces chosen by STORE_BACKEND.
type infra struct {
	ballots        service.Store
	auditPublisher *publisher.Publisher
	outbox         relay.Outbox
	limits         ratelimit.Store
	health         func(ctx context.Context) error
	closers        []func() error
}

func (i *infra) close(log *slog.Logger) {
	i.auditPublisher.Close()
	for _, c := range i.closers {
		if err := c(); err != nil {
			log.Warn("failed to close resource", "error", err)
		}
	}
}

func buildInfra(ctx context.Context, cfg config.Server, log *slog.Logger) (*infra, error) {
	switch cfg.Store {
	case config.StoreSQL:
		db, err := database.Open(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		ballots := store.NewSQL(db.DB, db.Dialect)
		outbox := sqlstore.New(db.DB, db.Dialect)
		if err := ballots.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate ballots: %w", err)
		}
		if err := outbox.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate outbox: %w", err)
		}
		return &infra{
			ballots:        ballots,
			auditPublisher: publisher.NewPublisher(outbox, publisher.WithLogger(log)),
			outbox:         outbox,
			limits:         ratelimit.NewInMemoryStore(),
			health:         db.PingContext,
			closers:        []func() error{db.Close},
		}, nil
	case config.StoreRedis:
		client, err := redisclient.New(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return &infra{
			ballots:        store.NewRedis(client.Client),
			auditPublisher: publisher.NewPublisher(redisstore.New(client.Client), publisher.WithLogger(log)),
			limits:         ratelimit.NewRedisStore(client.Client),
			health:         client.Health,
			closers:        []func() error{client.Close},
		}, nil
	default:
		return &infra{
			ballots:        store.NewInMemory(),
			auditPublisher: publisher.NewPublisher(memory.NewInMemoryStore(), publisher.WithLogger(log)),
			limits:         ratelimit.NewInMemoryStore(),
			health:         func(context.Context) error { return nil },
		}, nil
	}
}

type routerDeps struct {
	handler        *handler.Handler
	validator      middleware.IdentityValidator
	metrics        *metrics.Metrics
	logger         *slog.Logger
	adminTokenHash string
	health         func(ctx context.Context) error
	limiter        *ratelimit.Middleware
}

func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.RequestTime)
	r.Use(request.ClientMetadata)
	r.Use(middleware.Recovery(d.logger))
	r.Use(middleware.Logger(d.logger))
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.LatencyMiddleware(d.metrics))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := d.health(r.Context()); err != nil {
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Use(admin.RequireAdminToken(d.adminTokenHash, d.logger))
		d.handler.RegisterOps(r)
	})
	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.RequireAuth(d.validator, d.logger))
		r.Use(d.limiter.Handler)
		d.handler.Register(r)
	})
	return r
}

func closeProducer(p *kafka.Producer, log *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := p.Close(ctx); err != nil {
		log.Warn("failed to flush kafka producer", "error", err)
	}
}
