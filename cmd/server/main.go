package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	achievementmetrics "soulbound/internal/achievement/metrics"
	achievementmodels "soulbound/internal/achievement/models"
	"soulbound/internal/achievement/outcome"
	achievementservice "soulbound/internal/achievement/service"
	"soulbound/internal/admin"
	"soulbound/internal/escrow"
	httpapi "soulbound/internal/http"
	identitymetrics "soulbound/internal/identity/metrics"
	identitymodels "soulbound/internal/identity/models"
	identityservice "soulbound/internal/identity/service"
	jwttoken "soulbound/internal/jwt_token"
	"soulbound/internal/platform/config"
	"soulbound/internal/platform/httpserver"
	"soulbound/internal/platform/kafka"
	"soulbound/internal/platform/logger"
	"soulbound/internal/platform/postgres"
	redisplatform "soulbound/internal/platform/redis"
	ratelimitmetrics "soulbound/internal/ratelimit/metrics"
	ratelimit "soulbound/internal/ratelimit/middleware"
	ratelimitmodels "soulbound/internal/ratelimit/models"
	"soulbound/internal/ratelimit/store/bucket"
	"soulbound/internal/resolution"
	resolutionmetrics "soulbound/internal/resolution/metrics"
	"soulbound/internal/statestore"
	"soulbound/pkg/domain"
	"soulbound/pkg/platform/audit"
	auditpublisher "soulbound/pkg/platform/audit/publisher"
	auditrouter "soulbound/pkg/platform/audit/router"
	auditmemory "soulbound/pkg/platform/audit/store/memory"
	auditpostgres "soulbound/pkg/platform/audit/store/postgres"
	"soulbound/pkg/platform/circuit"
)

const (
	shutdownGrace  = 10 * time.Second
	requestTimeout = 30 * time.Second
	jwtIssuer      = "soulbound"
	jwtAudience    = "soulbound"
)

// main wires the registries, the resolution transport and the HTTP router.
// Business logic lives in the internal service packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// cleanup runs registered closers in reverse order.
type cleanup []func()

func (c *cleanup) add(fn func()) { *c = append(*c, fn) }

func (c cleanup) run() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	var closers cleanup
	defer closers.run()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	redisClient, err := redisplatform.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		closers.add(func() { _ = redisClient.Close() })
	}

	blob, err := openStateBlob(ctx, cfg, redisClient, &closers)
	if err != nil {
		return err
	}
	runnerOpts := []statestore.Option{
		statestore.WithMaxRetries(cfg.State.MaxRetries),
		statestore.WithLogger(log),
	}
	identityState := statestore.NewRunner[identitymodels.State](blob, "identity", identitymodels.Codec{}, runnerOpts...)
	achievementState := statestore.NewRunner[achievementmodels.State](blob, "achievements", achievementmodels.Codec{}, runnerOpts...)

	auditTrail, auditor, err := openAuditor(ctx, cfg, log, reg, &closers)
	if err != nil {
		return err
	}

	transfers, err := openTransferrer(cfg, log, reg, &closers)
	if err != nil {
		return err
	}

	var outcomes achievementservice.OutcomeStore = outcome.NewInMemoryStore(cfg.OutcomeTTL)
	if redisClient != nil {
		outcomes = outcome.NewRedisStore(redisClient.Client, cfg.OutcomeTTL)
	}

	identity := identityservice.New(identityState, domain.AccountID(cfg.OperatorAccount),
		identityservice.WithLogger(log),
		identityservice.WithAuditor(auditor),
		identityservice.WithMetrics(identitymetrics.New(reg)),
	)

	resMetrics := resolutionmetrics.New(reg)
	resolver, err := buildResolver(cfg, identity, log, resMetrics)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	var achievements *achievementservice.Service
	newAchievements := func(transport resolution.Transport) *achievementservice.Service {
		return achievementservice.New(achievementState, transport, transfers,
			achievementservice.WithLogger(log),
			achievementservice.WithAuditor(auditor),
			achievementservice.WithMetrics(achievementmetrics.New(reg)),
			achievementservice.WithResolutionMetrics(resMetrics),
			achievementservice.WithOutcomeStore(outcomes),
		)
	}

	switch strings.ToLower(cfg.Resolution.Transport) {
	case "kafka":
		achievements, err = startKafkaTransport(gctx, g, cfg, resolver, log, resMetrics, &closers, newAchievements)
		if err != nil {
			return err
		}
	default:
		dispatcher := resolution.NewDispatcher(resolver,
			resolution.WithWorkers(cfg.Resolution.Workers),
			resolution.WithQueueSize(cfg.Resolution.QueueSize),
			resolution.WithTimeout(cfg.Resolution.Timeout),
			resolution.WithLogger(log),
			resolution.WithMetrics(resMetrics),
		)
		achievements = newAchievements(dispatcher)
		g.Go(func() error { return dispatcher.Run(gctx, achievements) })
		g.Go(func() error {
			<-gctx.Done()
			dispatcher.Close()
			return nil
		})
	}

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, jwtIssuer, jwtAudience)
	validator := jwttoken.NewJWTServiceAdapter(jwtService)

	checks := map[string]admin.HealthCheck{}
	if redisClient != nil {
		checks["redis"] = redisClient.Health
	}
	router := httpapi.NewRouter(httpapi.Config{
		Logger:         log,
		Registry:       reg,
		Validator:      validator,
		Identity:       identity,
		Achievements:   achievements,
		AuditTrail:     auditTrail,
		HealthChecks:   checks,
		AdminToken:     cfg.AdminToken,
		RateLimiter:    buildRateLimiter(cfg.RateLimit, redisClient, log, reg),
		RequestTimeout: requestTimeout,
	})

	srv := httpserver.New(cfg.Addr, router)
	g.Go(func() error {
		log.InfoContext(gctx, "starting soulbound", "addr", cfg.Addr, "transport", cfg.Resolution.Transport)
		return httpserver.Run(gctx, srv, shutdownGrace)
	})

	return g.Wait()
}

func openStateBlob(ctx context.Context, cfg config.Server, redisClient *redisplatform.Client, closers *cleanup) (statestore.Blob, error) {
	switch cfg.State.Backend {
	case config.BackendRedis:
		return statestore.NewRedisBlob(redisClient.Client), nil
	case config.BackendPostgres:
		pool, err := postgres.NewPool(ctx, cfg.State.PostgresDSN)
		if err != nil {
			return nil, err
		}
		closers.add(pool.Close)
		blob := statestore.NewPostgresBlob(pool)
		if err := blob.Migrate(ctx); err != nil {
			return nil, err
		}
		return blob, nil
	case config.BackendSQLite:
		blob, err := statestore.OpenSQLite(ctx, cfg.State.SQLitePath)
		if err != nil {
			return nil, err
		}
		closers.add(func() { _ = blob.Close() })
		return blob, nil
	default:
		return statestore.NewMemoryBlob(), nil
	}
}

// openAuditor returns the publisher serving the audit trail and the emitter
// services write to. Compliance events are persisted synchronously; the rest
// go through a bounded buffer.
func openAuditor(ctx context.Context, cfg config.Server, log *slog.Logger, reg prometheus.Registerer, closers *cleanup) (*auditpublisher.Publisher, audit.Emitter, error) {
	var store audit.Store = auditmemory.NewInMemoryStore()
	if cfg.AuditPostgresDSN != "" {
		pg, err := auditpostgres.Open(ctx, cfg.AuditPostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := pg.Migrate(ctx); err != nil {
			_ = pg.Close()
			return nil, nil, err
		}
		closers.add(func() { _ = pg.Close() })
		store = pg
	}
	compliance := auditpublisher.NewPublisher(store, auditpublisher.WithLogger(log))
	buffered := auditpublisher.NewPublisher(store,
		auditpublisher.WithAsyncBuffer(1024),
		auditpublisher.WithLogger(log),
	)
	closers.add(func() { _ = buffered.Close() })

	emitter := auditrouter.New(buffered,
		auditrouter.WithRoute(audit.CategoryCompliance, compliance),
		auditrouter.WithSampler(auditrouter.NewSampler(cfg.AuditOpsSampleRate)),
		auditrouter.WithBreaker(circuit.New("audit-ops")),
		auditrouter.WithMetrics(auditrouter.NewMetrics(reg)),
		auditrouter.WithLogger(log),
	)
	return compliance, emitter, nil
}

func openTransferrer(cfg config.Server, log *slog.Logger, reg prometheus.Registerer, closers *cleanup) (escrow.Transferrer, error) {
	var inner escrow.Transferrer = escrow.NewLedger()
	if cfg.Escrow.AMQPURL != "" {
		publisher, err := escrow.NewAMQPPublisher(cfg.Escrow.AMQPURL, cfg.Escrow.Exchange, cfg.Escrow.RoutingKey)
		if err != nil {
			return nil, err
		}
		closers.add(func() { _ = publisher.Close() })
		inner = publisher
	}
	return escrow.NewObserved(inner, log, escrow.NewMetrics(reg)), nil
}

// buildRateLimiter counts requests in Redis when available and falls back to
// process-local windows while Redis is failing.
func buildRateLimiter(cfg config.RateLimitConfig, redisClient *redisplatform.Client, log *slog.Logger, reg prometheus.Registerer) *ratelimit.Middleware {
	limits := map[ratelimitmodels.Class]ratelimitmodels.Limit{
		ratelimitmodels.ClassRead:  {RequestsPerWindow: cfg.ReadRequests, Window: cfg.Window},
		ratelimitmodels.ClassWrite: {RequestsPerWindow: cfg.WriteRequests, Window: cfg.Window},
	}
	opts := []ratelimit.Option{
		ratelimit.WithDisabled(cfg.Disabled),
		ratelimit.WithMetrics(ratelimitmetrics.New(reg)),
	}
	if redisClient == nil {
		return ratelimit.New(bucket.New(), limits, log, opts...)
	}
	opts = append(opts, ratelimit.WithFallback(bucket.New(), circuit.New("ratelimit")))
	return ratelimit.New(bucket.NewRedis(redisClient.Client), limits, log, opts...)
}

// buildResolver answers lookups from the in-process identity registry, or
// from a peer over HTTP when one is configured.
func buildResolver(cfg config.Server, identity *identityservice.Service, log *slog.Logger, m *resolutionmetrics.Metrics) (resolution.Resolver, error) {
	if cfg.Resolution.IdentityPeerURL == "" {
		return identity, nil
	}
	return resolution.NewHTTPResolver(cfg.Resolution.IdentityPeerURL,
		resolution.WithHTTPClient(&http.Client{Timeout: cfg.Resolution.Timeout}),
		resolution.WithBreaker(circuit.New("identity-peer")),
		resolution.WithHTTPLogger(log),
		resolution.WithHTTPMetrics(m),
	)
}

// startKafkaTransport publishes requests to Kafka, answers them with resolver
// and feeds results back to the achievement registry.
func startKafkaTransport(
	ctx context.Context,
	g *errgroup.Group,
	cfg config.Server,
	resolver resolution.Resolver,
	log *slog.Logger,
	m *resolutionmetrics.Metrics,
	closers *cleanup,
	newAchievements func(resolution.Transport) *achievementservice.Service,
) (*achievementservice.Service, error) {
	brokers := cfg.Resolution.KafkaBrokers

	producerClient, err := kafka.NewClient(brokers)
	if err != nil {
		return nil, err
	}
	closers.add(producerClient.Close)
	if err := kafka.EnsureTopics(ctx, producerClient, 1, resolution.RequestsTopic, resolution.ResultsTopic); err != nil {
		return nil, err
	}

	responderClient, err := kafka.NewClient(brokers, resolution.ConsumerOpts(resolution.ResponderGroup, resolution.RequestsTopic)...)
	if err != nil {
		return nil, err
	}
	closers.add(responderClient.Close)

	resultsClient, err := kafka.NewClient(brokers, resolution.ConsumerOpts(cfg.Resolution.KafkaGroup, resolution.ResultsTopic)...)
	if err != nil {
		return nil, err
	}
	closers.add(resultsClient.Close)

	achievements := newAchievements(resolution.NewKafkaProducer(producerClient))
	responder := resolution.NewResponder(responderClient, resolver, cfg.Resolution.Timeout, log, m)
	results := resolution.NewResultConsumer(resultsClient, log)

	g.Go(func() error { return responder.Run(ctx) })
	g.Go(func() error { return results.Run(ctx, achievements) })
	return achievements, nil
}
