package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc"

	"github.com/mladenvic/promoaffiliate/internal/adapters/cache"
	eventadapter "github.com/mladenvic/promoaffiliate/internal/adapters/events"
	grpcadapter "github.com/mladenvic/promoaffiliate/internal/adapters/grpc"
	httpadapter "github.com/mladenvic/promoaffiliate/internal/adapters/http"
	"github.com/mladenvic/promoaffiliate/internal/adapters/memory"
	"github.com/mladenvic/promoaffiliate/internal/adapters/postgres"
	"github.com/mladenvic/promoaffiliate/internal/adapters/security"
	"github.com/mladenvic/promoaffiliate/internal/application"
	"github.com/mladenvic/promoaffiliate/internal/domain"
	"github.com/mladenvic/promoaffiliate/internal/ports"
)

type Runtime struct {
	cfg        Config
	logger     *slog.Logger
	httpServer *http.Server
	grpcServer *grpc.Server
	health     *grpcadapter.HealthReporter
	outbox     *eventadapter.OutboxWorker
	consumer   *eventadapter.ConsumerWorker
	sweeper    *eventadapter.SweepWorker
	cleanupFn  func(context.Context)

	// standalone is set when no database is configured: the store lives in
	// this process only, so the api runs the relay and sweep itself.
	standalone bool
}

func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).With("service", cfg.ServiceID)
	slog.SetDefault(logger)

	var closers []io.Closer
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i].Close()
		}
	}

	deps := application.Dependencies{
		Config: application.Config{
			ServiceName:                    cfg.ServiceID,
			PublicBaseURL:                  cfg.PublicBaseURL,
			ReferralCodeBytes:              cfg.ReferralCodeBytes,
			AutoApproveAfter:               cfg.AutoApproveAfter,
			AutoApproveBatchSize:           cfg.AutoApproveBatchSize,
			SweepLockTTL:                   cfg.SweepLockTTL,
			ProductCacheTTL:                cfg.ProductCacheTTL,
			MaxPageSize:                    cfg.MaxPageSize,
			EventDedupTTL:                  cfg.EventDedupTTL,
			DefaultAffiliateCommissionRate: decimal.NewFromFloat(cfg.DefaultAffiliateCommissionRate),
			DefaultPayoutThreshold:         decimal.NewFromFloat(cfg.DefaultPayoutThreshold),
		},
		Logger: logger,
	}

	var outboxRepo ports.OutboxRepository
	if cfg.DatabaseURL != "" {
		db, err := postgres.Connect(ctx, cfg.DatabaseURL, cfg.MaxDBConns)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		closers = append(closers, sqlDB)
		if cfg.AutoMigrate {
			if err := postgres.RunMigrations(ctx, db); err != nil {
				closeAll()
				return nil, err
			}
		}
		repos := postgres.NewRepositories(db)
		deps.Products = repos.Products
		deps.Links = repos.Links
		deps.Referrals = repos.Referrals
		deps.Commissions = repos.Commissions
		deps.Affiliates = repos.Affiliates
		deps.Applications = repos.Applications
		deps.Outbox = repos.Outbox
		deps.EventDedup = repos.EventDedup
		outboxRepo = repos.Outbox
	} else {
		logger.WarnContext(ctx, "postgres not configured, using in-memory store; state is not shared between api and worker processes")
		repos := memory.NewRepositories()
		deps.Products = repos.Products
		deps.Links = repos.Links
		deps.Referrals = repos.Referrals
		deps.Commissions = repos.Commissions
		deps.Affiliates = repos.Affiliates
		deps.Applications = repos.Applications
		deps.Outbox = repos.Outbox
		deps.EventDedup = repos.EventDedup
		outboxRepo = repos.Outbox
	}

	if cfg.RedisURL != "" {
		redisClient, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			closeAll()
			return nil, err
		}
		closers = append(closers, redisClient)
		deps.Cache = cache.NewRedisCache(redisClient)
		deps.Locker = cache.NewRedisLocker(redisClient)
	} else {
		logger.WarnContext(ctx, "redis not configured, using in-process cache and sweep lock")
		memCache := cache.NewMemoryCache()
		deps.Cache = memCache
		deps.Locker = memCache
	}

	service := application.NewService(deps)

	jwtVerifier, err := security.NewJWTVerifier(cfg.JWTSecret, cfg.JWTIssuer)
	if err != nil {
		closeAll()
		return nil, err
	}
	webhooks, err := security.NewWebhookVerifier(cfg.WebhookSecret, cfg.WebhookTolerance)
	if err != nil {
		closeAll()
		return nil, err
	}

	router := httpadapter.NewRouter(httpadapter.NewHandler(service, jwtVerifier, webhooks))
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcServer := grpc.NewServer()
	healthReporter := grpcadapter.NewHealthReporter(logger, service, cfg.HealthProbeInterval)
	healthReporter.Register(grpcServer)

	publisher := ports.EventPublisher(eventadapter.NewLoggingPublisher(logger))
	consumerAdapter := eventadapter.Consumer(eventadapter.NewNoopConsumer())
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher, pubErr := eventadapter.NewKafkaPublisher(cfg.KafkaBrokers, map[string]string{
			domain.EventReferralLinkCreated: cfg.KafkaTopicReferralEvents,
			domain.EventReferralClicked:     cfg.KafkaTopicReferralEvents,
			domain.EventConversionRecorded:  cfg.KafkaTopicReferralEvents,
			domain.EventCommissionReviewed:  cfg.KafkaTopicCommissionEvents,
			domain.EventApplicationReviewed: cfg.KafkaTopicApplicationReviews,
		})
		if pubErr != nil {
			logger.WarnContext(ctx, "kafka publisher disabled, using logging publisher", "error", pubErr)
		} else {
			publisher = kafkaPublisher
			closers = append(closers, kafkaPublisher)
		}

		kafkaConsumer, conErr := eventadapter.NewKafkaConsumer(
			cfg.KafkaBrokers,
			cfg.KafkaConsumerGroup,
			[]string{cfg.KafkaTopicOrderCompleted},
		)
		if conErr != nil {
			logger.WarnContext(ctx, "kafka consumer disabled, using noop consumer", "error", conErr)
		} else {
			consumerAdapter = kafkaConsumer
			closers = append(closers, kafkaConsumer)
		}
	} else {
		logger.WarnContext(ctx, "kafka not configured, events are logged instead of published")
	}

	return &Runtime{
		cfg:        cfg,
		logger:     logger,
		httpServer: httpServer,
		grpcServer: grpcServer,
		health:     healthReporter,
		outbox:     eventadapter.NewOutboxWorker(logger, outboxRepo, publisher, cfg.OutboxPollInterval, cfg.OutboxBatchSize),
		consumer:   eventadapter.NewConsumerWorker(logger, consumerAdapter, service, cfg.ConsumerPollInterval),
		sweeper:    eventadapter.NewSweepWorker(logger, service, cfg.AutoApproveInterval),
		cleanupFn: func(context.Context) {
			closeAll()
		},
		standalone: cfg.DatabaseURL == "",
	}, nil
}

func (r *Runtime) RunAPI(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", r.cfg.GRPCPort))
	if err != nil {
		r.cleanupFn(ctx)
		return fmt.Errorf("listen grpc: %w", err)
	}
	errCh := make(chan error, 5)

	go func() {
		if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	go func() {
		if err := r.grpcServer.Serve(lis); err != nil {
			errCh <- err
		}
	}()
	go func() {
		_ = r.health.Run(ctx)
	}()
	for _, run := range r.embeddedWorkers() {
		run := run
		go func() {
			if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				errCh <- err
			}
		}()
	}
	if r.standalone {
		r.logger.InfoContext(ctx, "running outbox relay, order consumer and auto-approval sweep in the api process")
	}
	r.logger.InfoContext(ctx, "api listening", "http_port", r.cfg.HTTPPort, "grpc_port", r.cfg.GRPCPort)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		r.logger.ErrorContext(ctx, "runtime failure", "error", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = r.httpServer.Shutdown(shutdownCtx)
	r.grpcServer.GracefulStop()
	r.cleanupFn(shutdownCtx)
	return nil
}

// RunWorker drives the outbox relay, the order consumer and the auto-approval
// sweep until the process is signalled or one of them fails.
func (r *Runtime) RunWorker(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if r.standalone {
		r.logger.WarnContext(ctx, "worker is using its own in-memory store and will not see api writes; configure postgres_url to share state")
	}
	errCh := make(chan error, 3)

	for _, run := range []func(context.Context) error{r.outbox.Run, r.consumer.Run, r.sweeper.Run} {
		run := run
		go func() {
			if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				errCh <- err
			}
		}()
	}

	select {
	case <-ctx.Done():
		r.cleanupFn(context.Background())
		return nil
	case err := <-errCh:
		r.cleanupFn(context.Background())
		return err
	}
}

// embeddedWorkers lists the background loops the api process runs itself.
// With a shared database they belong to cmd/worker instead.
func (r *Runtime) embeddedWorkers() []func(context.Context) error {
	if !r.standalone {
		return nil
	}
	return []func(context.Context) error{r.outbox.Run, r.consumer.Run, r.sweeper.Run}
}
