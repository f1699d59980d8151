package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	conflictmetrics "unitgate/internal/conflict/metrics"
	conflictservice "unitgate/internal/conflict/service"
	conflictmemory "unitgate/internal/conflict/store/memory"
	conflictpostgres "unitgate/internal/conflict/store/postgres"
	"unitgate/internal/directory"
	"unitgate/internal/directory/cache"
	"unitgate/internal/directory/httpclient"
	dirmemory "unitgate/internal/directory/memory"
	dirmetrics "unitgate/internal/directory/metrics"
	dirpostgres "unitgate/internal/directory/postgres"
	invitationmetrics "unitgate/internal/invitation/metrics"
	invitationservice "unitgate/internal/invitation/service"
	invitationstore "unitgate/internal/invitation/store"
	invitationmemory "unitgate/internal/invitation/store/memory"
	invitationpostgres "unitgate/internal/invitation/store/postgres"
	invitationredis "unitgate/internal/invitation/store/redis"
	jwttoken "unitgate/internal/jwt_token"
	"unitgate/internal/membership/matcher"
	membershipmetrics "unitgate/internal/membership/metrics"
	"unitgate/internal/membership/models"
	membershipservice "unitgate/internal/membership/service"
	membershipmemory "unitgate/internal/membership/store/memory"
	membershippostgres "unitgate/internal/membership/store/postgres"
	"unitgate/internal/platform/config"
	"unitgate/internal/platform/database"
	"unitgate/internal/platform/health"
	"unitgate/internal/platform/kafka"
	"unitgate/internal/platform/kafka/consumer"
	"unitgate/internal/platform/kafka/producer"
	"unitgate/internal/platform/logger"
	redisclient "unitgate/internal/platform/redis"
	ratelimitmetrics "unitgate/internal/ratelimit/metrics"
	ratelimitmw "unitgate/internal/ratelimit/middleware"
	ratelimitmodels "unitgate/internal/ratelimit/models"
	"unitgate/internal/ratelimit/store/bucket"
	"unitgate/internal/platform/tracer"
	"unitgate/internal/seeder"
	"unitgate/pkg/platform/outbox"
	outboxmetrics "unitgate/pkg/platform/outbox/metrics"
	outboxpostgres "unitgate/pkg/platform/outbox/postgres"
	"unitgate/pkg/platform/outbox/worker"
	"unitgate/pkg/secrets"
)

const (
	shutdownTimeout    = 10 * time.Second
	poolStatsInterval  = 15 * time.Second
	healthProbeTimeout = 2 * time.Second
)

// backingServices holds the optional backing services. Nil fields mean "not configured".
type backingServices struct {
	pool  *database.Pool
	redis *redisclient.Client
}

func (i *backingServices) close(log *slog.Logger) {
	if i.redis != nil {
		if err := i.redis.Close(); err != nil {
			log.Warn("redis close failed", "error", err)
		}
	}
	if i.pool != nil {
		if err := i.pool.Close(); err != nil {
			log.Warn("database close failed", "error", err)
		}
	}
}

// directoryWiring is the Unit Directory as the services see it.
type directoryWiring struct {
	reader    directory.Directory
	bind      writerBinder
	buildings seeder.BuildingStore
	cache     *cache.Cache
}

// services bundles the three workflow services and the outbox they feed.
type services struct {
	membership *membershipservice.Service
	conflict   *conflictservice.Service
	invitation *invitationservice.Service
	outbox     outbox.Store
	tokens     *jwttoken.JWTService
}

func run(ctx context.Context, cfg config.Config, seed bool) error {
	log := logger.New(cfg.Server.LogLevel)
	log.Info("initializing unitgate",
		"addr", cfg.Server.Addr,
		"environment", cfg.Environment(),
		"directory_backend", cfg.Directory.Backend,
		"fast_path_policy", cfg.Policy.FastPath,
	)

	backing, err := openInfra(cfg)
	if err != nil {
		return err
	}
	defer backing.close(log)

	dir := buildDirectory(cfg, backing, log)
	if seed || cfg.Directory.Backend == config.DirectoryMemory {
		if dir.buildings == nil {
			log.Warn("seeding skipped: directory backend does not accept buildings", "backend", cfg.Directory.Backend)
		} else if err := seeder.New(dir.buildings, dir.reader, log).SeedAll(ctx); err != nil {
			return err
		}
	}

	svcs, err := buildServices(cfg, backing, dir, log)
	if err != nil {
		return err
	}

	publisher, err := buildPublisher(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer publisher.Close() //nolint:errcheck // flushed on shutdown

	checks := health.New(cfg.Environment())
	registerHealthChecks(checks, cfg, backing)

	limiter := buildRateLimiter(cfg, backing, log, ratelimitmw.WithMetrics(ratelimitmetrics.New()))
	router := newRouter(cfg, log, svcs, limiter, checks)
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	relay := worker.New(svcs.outbox, publisher,
		worker.WithTopic(cfg.Kafka.EventsTopic),
		worker.WithMetrics(outboxmetrics.New()),
		worker.WithLogger(log),
	)
	g.Go(func() error {
		return relay.Run(gctx)
	})

	if backing.redis != nil {
		g.Go(func() error {
			return backing.redis.RunPoolStats(gctx, poolStatsInterval)
		})
	}

	if dir.cache != nil && cfg.Kafka.Enabled() {
		invalidator, err := consumer.New(consumer.Config{
			Brokers: cfg.Kafka.Brokers,
			GroupID: cfg.Kafka.ConsumerGroup,
			Topics:  []string{cfg.Kafka.EventsTopic},
		}, cache.NewInvalidator(dir.cache), log)
		if err != nil {
			return fmt.Errorf("create cache invalidator: %w", err)
		}
		g.Go(func() error {
			defer invalidator.Close()
			return invalidator.Run(gctx)
		})
	}

	err = g.Wait()
	log.Info("server stopped")
	return err
}

func openInfra(cfg config.Config) (*backingServices, error) {
	pool, err := database.New(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	rdb, err := redisclient.New(cfg.Redis)
	if err != nil {
		if pool != nil {
			pool.Close() //nolint:errcheck // init failure
		}
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return &backingServices{pool: pool, redis: rdb}, nil
}

func buildDirectory(cfg config.Config, inf *backingServices, log *slog.Logger) directoryWiring {
	m := dirmetrics.New()

	var (
		base      directory.Directory
		buildings seeder.BuildingStore
	)
	switch cfg.Directory.Backend {
	case config.DirectoryPostgres:
		pg := dirpostgres.New(inf.pool.DB())
		base, buildings = pg, pg
	case config.DirectoryHTTP:
		base = httpclient.New(httpclient.Config{
			BaseURL: cfg.Directory.URL,
			Timeout: cfg.Directory.Timeout,
		}, httpclient.WithMetrics(m), httpclient.WithLogger(log))
	default:
		mem := dirmemory.New()
		base, buildings = mem, memoryBuildings{mem}
	}

	w := directoryWiring{reader: base, buildings: buildings}
	if inf.redis != nil {
		w.cache = cache.New(base, inf.redis, cfg.Directory.CacheTTL, cache.WithMetrics(m), cache.WithLogger(log))
		w.reader = w.cache
	}

	if cfg.Directory.Backend == config.DirectoryPostgres {
		// Writes join the caller's transaction; cached reads are dropped by
		// the invalidator when the outbox event arrives.
		w.bind = func(db database.DBTX) directory.Directory { return dirpostgres.New(db) }
	} else {
		shared := w.reader
		w.bind = func(database.DBTX) directory.Directory { return shared }
	}
	return w
}

func buildServices(cfg config.Config, inf *backingServices, dir directoryWiring, log *slog.Logger) (*services, error) {
	tokens := jwttoken.NewJWTService(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer, cfg.Server.TokenTTL)
	hasher, err := secrets.NewHasher([]byte(cfg.Invitation.FamilyCodeHashKey))
	if err != nil {
		return nil, fmt.Errorf("family code hasher: %w", err)
	}
	tr := tracer.NewOTel(otel.Tracer("unitgate"))
	timeout := cfg.Server.RequestTimeout

	var (
		requests   membershipservice.Stores
		reports    conflictservice.Stores
		invites    invitationservice.Stores
		memberTx   membershipservice.TxRunner
		conflictTx conflictservice.TxRunner
		inviteTx   invitationservice.TxRunner
		outboxes   outbox.Store
	)
	if inf.pool != nil {
		db := inf.pool.DB()
		outboxes = outboxpostgres.New(db)
		requests = membershipservice.Stores{Requests: membershippostgres.New(db), Directory: dir.reader, Outbox: outboxes}
		reports = conflictservice.Stores{Reports: conflictpostgres.New(db), Directory: dir.reader, Outbox: outboxes}
		invites = invitationservice.Stores{
			Links:     invitationpostgres.NewLinkStore(db),
			Family:    invitationpostgres.NewFamilyStore(db),
			Directory: dir.reader,
			Outbox:    outboxes,
		}
		memberTx = newMembershipPostgresTx(db, dir.bind, timeout)
		conflictTx = newConflictPostgresTx(db, dir.bind, timeout)
		inviteTx = newInvitationPostgresTx(db, dir.bind, timeout)
	} else {
		log.Warn("DATABASE_URL not set; workflow state is kept in memory")
		outboxes = outbox.NewMemoryStore()
		requests = membershipservice.Stores{Requests: membershipmemory.New(), Directory: dir.reader, Outbox: outboxes}
		reports = conflictservice.Stores{Reports: conflictmemory.New(), Directory: dir.reader, Outbox: outboxes}
		invites = invitationservice.Stores{
			Links:     invitationmemory.NewLinkStore(),
			Family:    invitationmemory.NewFamilyStore(),
			Directory: dir.reader,
			Outbox:    outboxes,
		}
		memberTx = membershipservice.NewInMemoryTx(requests)
		conflictTx = conflictservice.NewInMemoryTx(reports)
		inviteTx = invitationservice.NewInMemoryTx(invites)
	}

	var selections invitationstore.SelectionStore = invitationmemory.NewSelectionStore()
	if inf.redis != nil {
		selections = invitationredis.NewSelectionStore(inf.redis)
	}

	membership := membershipservice.New(memberTx, requests.Requests, dir.reader,
		matcher.New(dir.reader,
			matcher.GuardFunc(requests.Requests.HasApprovedInBuilding),
			matcher.GuardFunc(invites.Links.HasUsedInBuilding),
			matcher.GuardFunc(invites.Family.HasAcceptedInBuilding),
		),
		membershipservice.WithLogger(log),
		membershipservice.WithMetrics(membershipmetrics.New()),
		membershipservice.WithTracer(tr),
		membershipservice.WithFastPathPolicy(models.FastPathPolicy(string(cfg.Policy.FastPath))),
	)

	conflicts := conflictservice.New(conflictTx, reports.Reports, dir.reader,
		conflictservice.WithLogger(log),
		conflictservice.WithMetrics(conflictmetrics.New()),
		conflictservice.WithTracer(tr),
		conflictservice.WithDirectoryCorrection(cfg.Policy.ConflictDirectoryCorrection),
	)

	invitations := invitationservice.New(invitationservice.Deps{
		Tx:         inviteTx,
		Links:      invites.Links,
		Family:     invites.Family,
		Selections: selections,
		Directory:  dir.reader,
		Tokens:     tokens,
		Hasher:     hasher,
		Submitter:  membership,
	},
		invitationservice.WithLogger(log),
		invitationservice.WithMetrics(invitationmetrics.New()),
		invitationservice.WithTracer(tr),
		invitationservice.WithTTLs(cfg.Invitation.InviteLinkTTL, cfg.Invitation.FamilyInviteTTL, cfg.Invitation.SelectionTTL),
	)

	return &services{
		membership: membership,
		conflict:   conflicts,
		invitation: invitations,
		outbox:     outboxes,
		tokens:     tokens,
	}, nil
}

// buildPublisher returns the Kafka producer, or a no-op publisher that lets
// the relay mark entries processed when Kafka is not configured.
func buildPublisher(ctx context.Context, cfg config.Config, log *slog.Logger) (producer.Publisher, error) {
	if !cfg.Kafka.Enabled() {
		log.Warn("KAFKA_BROKERS not set; outbox events are dropped after commit")
		return producer.NewNoopProducer(), nil
	}
	ensureCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := kafka.EnsureTopic(ensureCtx, cfg.Kafka.Brokers, cfg.Kafka.EventsTopic, 3, -1); err != nil {
		log.Warn("could not ensure events topic", "topic", cfg.Kafka.EventsTopic, "error", err)
	}
	p, err := producer.New(producer.Config{
		Brokers: cfg.Kafka.Brokers,
		Acks:    cfg.Kafka.Acks,
		Retries: cfg.Kafka.Retries,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return p, nil
}

// buildRateLimiter keeps buckets in Redis when configured so replicas share
// budgets, otherwise in process memory.
func buildRateLimiter(cfg config.Config, inf *backingServices, log *slog.Logger, opts ...ratelimitmw.Option) *ratelimitmw.Middleware {
	var store ratelimitmw.BucketStore = bucket.NewInMemoryBucketStore()
	if inf.redis != nil {
		store = bucket.NewRedis(inf.redis)
	}
	limits := map[ratelimitmodels.EndpointClass]ratelimitmodels.Limit{
		ratelimitmodels.ClassTokenLookup: {Requests: cfg.RateLimit.TokenLookupRequests, Window: cfg.RateLimit.Window},
		ratelimitmodels.ClassCodeRedeem:  {Requests: cfg.RateLimit.CodeRedeemRequests, Window: cfg.RateLimit.Window},
	}
	return ratelimitmw.New(store, limits, log, opts...)
}

func registerHealthChecks(h *health.Handler, cfg config.Config, inf *backingServices) {
	if inf.pool != nil {
		h.RegisterCheck("database", inf.pool.Health)
	}
	if inf.redis != nil {
		h.RegisterCheck("redis", inf.redis.Health)
	}
	if cfg.Kafka.Enabled() {
		h.RegisterCheck("kafka", func(ctx context.Context) error {
			return kafka.CheckBrokers(ctx, cfg.Kafka.Brokers, healthProbeTimeout)
		})
	}
}
