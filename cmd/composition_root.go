package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"

	httpin "partnerfeed/internal/adapters/in/http"
	"partnerfeed/internal/adapters/out/envsession"
	"partnerfeed/internal/adapters/out/inmem"
	"partnerfeed/internal/adapters/out/natsbus"
	"partnerfeed/internal/adapters/out/postgres/customerrepo"
	"partnerfeed/internal/adapters/out/postgres/orderrepo"
	"partnerfeed/internal/adapters/out/postgres/partnerrepo"
	"partnerfeed/internal/adapters/out/redistrack"
	"partnerfeed/internal/adapters/out/weblauncher"
	"partnerfeed/internal/core/application/feed"
	"partnerfeed/internal/core/application/identity"
	"partnerfeed/internal/core/application/tracking"
	"partnerfeed/internal/core/application/usecases/commands"
	"partnerfeed/internal/core/application/usecases/queries"
	"partnerfeed/internal/core/domain/model/partner"
	"partnerfeed/internal/core/domain/services"
	"partnerfeed/internal/core/ports"
	"partnerfeed/internal/jobs"
)

// CompositionRoot wires the adapters and application components according to
// the configuration and owns their lifecycles.
type CompositionRoot struct {
	config Config
	logger *slog.Logger

	orders    ports.OrderRepository
	partners  ports.PartnerRepository
	customers ports.CustomerRepository
	sessions  *envsession.Provider
	source    ports.PositionSource
	launcher  ports.Launcher

	resolver     *identity.Resolver
	synchronizer *feed.Synchronizer
	tracker      *tracking.Tracker
	ranker       services.GeoRanker
	jobManager   *jobs.JobManager

	profileSub ports.Subscription
	bus        *natsbus.Bus
	redis      *redis.Client
}

// NewCompositionRoot builds the object graph for the configured storage mode.
func NewCompositionRoot(config Config) (*CompositionRoot, error) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	root := &CompositionRoot{
		config: config,
		logger: logger,
		ranker: services.NewGeoRanker(),
	}

	if err := root.buildStores(); err != nil {
		return nil, err
	}

	root.sessions = envsession.NewProvider(
		config.SessionSubject, config.SessionGroups, config.StartSignedIn)
	root.launcher = weblauncher.NewLauncher(nil, logger)

	root.resolver = identity.NewResolver(
		root.sessions, root.partners, config.RequiredGroup, logger)
	root.synchronizer = feed.NewSynchronizer(root.orders, logger)
	root.tracker = tracking.NewTracker(root.source, ports.WatchOptions{
		MinInterval:           config.MinWatchInterval,
		MinDisplacementMeters: config.MinDisplacementMeter,
	}, logger)
	root.jobManager = jobs.NewJobManager(root.synchronizer, config.FeedRefreshSchedule, logger)

	return root, nil
}

// Start brings the live components up: the resolver feeds the synchronizer,
// the tracker starts watching and the refresh job is scheduled. A refused
// position permission is downgraded to a log line; the feed runs unranked.
func (r *CompositionRoot) Start(ctx context.Context) error {
	r.profileSub = r.resolver.Subscribe(func(profile *partner.Profile) {
		r.synchronizer.SetProfile(context.Background(), profile)
	})

	if err := r.resolver.Start(ctx); err != nil {
		return fmt.Errorf("start identity resolver: %w", err)
	}

	if err := r.tracker.Start(ctx); err != nil {
		r.logger.WarnContext(ctx, "Position tracking unavailable, feed will be unranked", "error", err)
	}

	if err := r.jobManager.StartAll(); err != nil {
		return err
	}

	return nil
}

// Stop releases all subscriptions and connections in reverse start order.
func (r *CompositionRoot) Stop() {
	r.jobManager.StopAll()
	r.tracker.Stop()
	r.synchronizer.Stop()
	r.resolver.Stop()
	if r.profileSub != nil {
		r.profileSub.Unsubscribe()
	}
	if r.bus != nil {
		r.bus.Close()
	}
	if r.redis != nil {
		if err := r.redis.Close(); err != nil {
			r.logger.Warn("Closing redis client failed", "error", err)
		}
	}
}

// CreateServer builds the HTTP server over the running components.
func (r *CompositionRoot) CreateServer() *httpin.Server {
	return httpin.NewServer(
		r.resolver,
		r.synchronizer,
		r.tracker,
		r.ranker,
		r.sessions,
		commands.NewBeginTransitCommandHandler(r.orders, r.launcher),
		func(confirmed bool) commands.CompleteOrderCommandHandler {
			return commands.NewCompleteOrderCommandHandler(r.orders, staticConfirmer(confirmed))
		},
		queries.NewGetOrderDetailsQueryHandler(r.orders, r.customers, r.logger),
	)
}

func (r *CompositionRoot) buildStores() error {
	switch r.config.Storage {
	case StorageInMem:
		return r.buildInMemStores()
	case StoragePostgres:
		return r.buildPostgresStores()
	default:
		return fmt.Errorf("unknown storage mode %q", r.config.Storage)
	}
}

// buildInMemStores wires the seeded in-memory store and a disabled position
// source: demo mode always renders unranked.
func (r *CompositionRoot) buildInMemStores() error {
	store := inmem.NewStore()
	if err := inmem.Seed(store, inmem.SeedOptions{
		PartnerSubject: r.config.SessionSubject,
		PartnerName:    r.config.PartnerName,
		BaseLatitude:   r.config.BaseLatitude,
		BaseLongitude:  r.config.BaseLongitude,
		OrderCount:     r.config.SeedOrders,
	}); err != nil {
		return fmt.Errorf("seed demo store: %w", err)
	}

	r.orders = store
	r.partners = store
	r.customers = store.Customers()
	r.source = redistrack.NewSource(nil, "", false, r.logger)
	return nil
}

func (r *CompositionRoot) buildPostgresStores() error {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		r.config.DBHost, r.config.DBPort, r.config.DBUser,
		r.config.DBPassword, r.config.DBName, r.config.DBSslMode)

	db, err := gorm.Open(postgresdriver.Open(dsn), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}

	if err = db.AutoMigrate(
		&orderrepo.OrderDTO{}, &partnerrepo.PartnerDTO{}, &customerrepo.CustomerDTO{},
	); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}

	bus, err := natsbus.Connect(r.config.NatsURL, r.logger)
	if err != nil {
		return err
	}
	r.bus = bus

	r.redis = redis.NewClient(&redis.Options{
		Addr:     r.config.RedisAddr,
		Password: r.config.RedisPassword,
	})

	r.orders = orderrepo.NewGormOrderRepository(db, bus, r.logger)
	r.partners = partnerrepo.NewGormPartnerRepository(db, bus, r.logger)
	r.customers = customerrepo.NewGormCustomerRepository(db)
	r.source = redistrack.NewSource(
		r.redis, r.config.PositionChannel, r.config.TrackingEnabled, r.logger)
	return nil
}

// staticConfirmer carries a confirmation decision already made by the caller.
type staticConfirmer bool

func (c staticConfirmer) Confirm(context.Context, string) (bool, error) {
	return bool(c), nil
}
