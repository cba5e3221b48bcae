package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/tair/pos-core/internal/analytics"
	"github.com/tair/pos-core/internal/cart"
	"github.com/tair/pos-core/internal/catalog"
	"github.com/tair/pos-core/internal/config"
	grpcDelivery "github.com/tair/pos-core/internal/delivery/grpc"
	httpDelivery "github.com/tair/pos-core/internal/delivery/http"
	"github.com/tair/pos-core/internal/events"
	"github.com/tair/pos-core/internal/inventory"
	"github.com/tair/pos-core/internal/notification"
	"github.com/tair/pos-core/internal/scanner"
	"github.com/tair/pos-core/internal/staff"
	"github.com/tair/pos-core/internal/store"
	"github.com/tair/pos-core/internal/store/repository"
	"github.com/tair/pos-core/pkg/database"
	"github.com/tair/pos-core/pkg/logger"
)

// ProvideDatabase opens the postgres mirror connection. It returns nil when
// the database is disabled.
func ProvideDatabase(cfg *config.Config) (*gorm.DB, func(), error) {
	if !cfg.DB.Enabled {
		return nil, func() {}, nil
	}
	db, err := database.NewGormConnection(cfg.Database())
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	return db, cleanup, nil
}

// ProvideGormMirror returns the traced table-store mirror, or nil without a
// database
func ProvideGormMirror(db *gorm.DB) *repository.GormMirrorWithTracing {
	if db == nil {
		return nil
	}
	return repository.NewGormMirrorWithTracing(db)
}

// ProvideRedis connects to redis. It returns nil when redis is disabled.
func ProvideRedis(cfg *config.Config) (*redis.Client, func(), error) {
	if !cfg.Redis.Enabled {
		return nil, func() {}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Logger.Info().Str("addr", cfg.Redis.Addr).Msg("Connected to Redis")
	return client, func() { client.Close() }, nil
}

// ProvidePublisher creates the Kafka change-event mirror, or nil when Kafka
// is disabled
func ProvidePublisher(cfg *config.Config) (*events.Publisher, func(), error) {
	if !cfg.Kafka.Enabled {
		return nil, func() {}, nil
	}
	publisher, err := events.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.ChangesTopic)
	if err != nil {
		return nil, nil, err
	}
	return publisher, func() { publisher.Close() }, nil
}

// ProvideStore builds the record store with every enabled mirror
func ProvideStore(cfg *config.Config, table *repository.GormMirrorWithTracing, publisher *events.Publisher) (*store.Store, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	var mirrors []store.Mirror
	if table != nil {
		mirrors = append(mirrors, table)
	}
	if publisher != nil {
		mirrors = append(mirrors, publisher)
	}

	return store.New(store.Config{
		Mirrors:         mirrors,
		Location:        loc,
		BreakerFailures: cfg.Sync.BreakerFailures,
		BreakerTimeout:  cfg.Sync.BreakerTimeout,
		MaxOutbox:       cfg.Sync.MaxOutbox,
		MaxAttempts:     cfg.Sync.MaxAttempts,
	}), nil
}

// ProvideScanner returns the single capture device shared by checkout and
// receiving
func ProvideScanner() *scanner.Device {
	return scanner.NewDevice(scanner.TextFrameDecoder{})
}

func ProvideHaptics() scanner.Haptics {
	return scanner.LogHaptics{}
}

// ProvideAccounts stores operator accounts in postgres when available
func ProvideAccounts(db *gorm.DB) (staff.Repository, error) {
	if db == nil {
		return staff.NewMemoryRepository(), nil
	}
	repo := staff.NewGormRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		return nil, err
	}
	return repo, nil
}

// ProvideReadState shares read flags through redis when available
func ProvideReadState(cfg *config.Config, client *redis.Client) notification.ReadState {
	if client == nil {
		return notification.NewMemoryReadState()
	}
	return notification.NewRedisReadState(client, cfg.Redis.ReadTTL)
}

func ProvideInbox(cfg *config.Config, s *store.Store) *notification.Inbox {
	return notification.NewInbox(s, cfg.NotificationWindow)
}

func ProvideFeed(cfg *config.Config, s *store.Store, inbox *notification.Inbox, state notification.ReadState) *notification.Builder {
	return notification.NewBuilder(s, inbox, state, cfg.NotificationWindow)
}

// ProvideConsumer joins the system notice consumer group, or returns nil when
// Kafka is disabled
func ProvideConsumer(cfg *config.Config, inbox *notification.Inbox) (*events.Consumer, func(), error) {
	if !cfg.Kafka.Enabled {
		return nil, func() {}, nil
	}
	consumer, err := events.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.ConsumerGroup, cfg.Kafka.NoticesTopic, inbox)
	if err != nil {
		return nil, nil, err
	}
	return consumer, func() { consumer.Close() }, nil
}

// ProvideLimiter rate limits logins across instances through redis, or per
// process without it
func ProvideLimiter(cfg *config.Config, client *redis.Client) httpDelivery.Limiter {
	if cfg.LoginRateLimit <= 0 {
		return nil
	}
	if client == nil {
		return httpDelivery.NewMemoryLimiter(cfg.LoginRateLimit, cfg.LoginRateWindow)
	}
	return httpDelivery.NewRedisLimiter(client, "pos:ratelimit", cfg.LoginRateLimit, cfg.LoginRateWindow)
}

func ProvideCartService(s *store.Store, device *scanner.Device, haptics scanner.Haptics) *cart.Service {
	return cart.NewService(s, device, haptics)
}

func ProvideReconciler(s *store.Store, device *scanner.Device, haptics scanner.Haptics) *inventory.Reconciler {
	return inventory.NewReconciler(s, device, haptics)
}

func ProvideEngine(s *store.Store) *analytics.Engine {
	return analytics.NewEngine(s)
}

// InfrastructureSet opens the optional remote dependencies
var InfrastructureSet = wire.NewSet(
	ProvideDatabase,
	ProvideGormMirror,
	ProvideRedis,
	ProvidePublisher,
	ProvideConsumer,
)

// CoreSet builds the five core components on top of the record store
var CoreSet = wire.NewSet(
	ProvideStore,
	ProvideScanner,
	ProvideHaptics,
	ProvideCartService,
	ProvideReconciler,
	ProvideEngine,
	ProvideReadState,
	ProvideInbox,
	ProvideFeed,
	wire.Bind(new(catalog.Store), new(*store.Store)),
	catalog.ProviderSet,
)

// DeliverySet builds the HTTP and gRPC surfaces
var DeliverySet = wire.NewSet(
	ProvideAccounts,
	staff.NewLoginHandler,
	ProvideLimiter,
	wire.Bind(new(httpDelivery.Syncer), new(*store.Store)),
	httpDelivery.NewHandler,
	grpcDelivery.NewReportServer,
	grpcDelivery.NewServer,
)
