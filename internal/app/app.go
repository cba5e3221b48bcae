package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"gorm.io/gorm"

	"github.com/tair/pos-core/internal/config"
	httpDelivery "github.com/tair/pos-core/internal/delivery/http"
	"github.com/tair/pos-core/internal/events"
	"github.com/tair/pos-core/internal/staff"
	"github.com/tair/pos-core/internal/store"
	"github.com/tair/pos-core/internal/store/repository"
	"github.com/tair/pos-core/pkg/auth"
	"github.com/tair/pos-core/pkg/logger"
)

// App is the assembled service
type App struct {
	cfg       *config.Config
	store     *store.Store
	table     *repository.GormMirrorWithTracing
	accounts  staff.Repository
	consumer  *events.Consumer
	api       *httpDelivery.Handler
	rpc       *grpc.Server
	db        *gorm.DB
	redis     *redis.Client
	publisher *events.Publisher
}

// NewApp wires the health checks of every enabled dependency
func NewApp(
	cfg *config.Config,
	s *store.Store,
	table *repository.GormMirrorWithTracing,
	accounts staff.Repository,
	consumer *events.Consumer,
	api *httpDelivery.Handler,
	rpc *grpc.Server,
	db *gorm.DB,
	client *redis.Client,
	publisher *events.Publisher,
) *App {
	if db != nil {
		api.AddHealthCheck("postgres", func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		})
	}
	if client != nil {
		api.AddHealthCheck("redis", func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
	}

	return &App{
		cfg:       cfg,
		store:     s,
		table:     table,
		accounts:  accounts,
		consumer:  consumer,
		api:       api,
		rpc:       rpc,
		db:        db,
		redis:     client,
		publisher: publisher,
	}
}

// Store exposes the record store
func (a *App) Store() *store.Store { return a.store }

// Publisher returns the Kafka publisher, nil when Kafka is disabled
func (a *App) Publisher() *events.Publisher { return a.publisher }

// Prepare configures token signing, hydrates the store from the table mirror,
// seeds demo data and creates missing operator accounts
func (a *App) Prepare(ctx context.Context) error {
	auth.Configure(a.cfg.JWTSecret, a.cfg.JWTTTL)

	if a.table != nil {
		if err := a.table.AutoMigrate(); err != nil {
			return err
		}
		if a.cfg.DB.Hydrate {
			if err := a.store.Load(ctx, a.table); err != nil {
				return fmt.Errorf("failed to hydrate store: %w", err)
			}
		}
	}

	if a.cfg.SeedDemo && len(a.store.Products()) == 0 {
		a.store.Seed(store.DemoProducts(), store.DemoExpenses())
		logger.Info(ctx).Int("products", len(a.store.Products())).Msg("Seeded demo catalog")
	}

	created, err := staff.EnsureAccounts(ctx, a.accounts, staff.Defaults(a.cfg.AdminPassword, a.cfg.CashierPassword))
	if err != nil {
		return err
	}
	if created > 0 {
		logger.Info(ctx).Int("accounts", created).Msg("Created default operator accounts")
	}
	return nil
}

// Run serves HTTP and gRPC and runs the background workers until ctx is
// cancelled or one of them fails
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	httpServer := &http.Server{
		Addr:              ":" + a.cfg.HTTPPort,
		Handler:           a.api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		logger.Info(ctx).Str("port", a.cfg.HTTPPort).Msg("HTTP server starting")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve HTTP: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		lis, err := net.Listen("tcp", ":"+a.cfg.GRPCPort)
		if err != nil {
			return fmt.Errorf("failed to listen on port %s: %w", a.cfg.GRPCPort, err)
		}
		logger.Info(ctx).Str("port", a.cfg.GRPCPort).Msg("gRPC server starting")
		if err := a.rpc.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("failed to serve gRPC: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return a.store.RunSync(ctx, a.cfg.Sync.Interval)
	})

	if a.consumer != nil {
		g.Go(func() error {
			return a.consumer.Run(ctx)
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		logger.Info(context.Background()).Msg("Shutting down servers...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		a.rpc.GracefulStop()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down HTTP server: %w", err)
		}
		if _, err := a.store.Flush(shutdownCtx); err != nil {
			logger.Warn(shutdownCtx).Err(err).Msg("Pending mirror writes left undelivered")
		}
		return nil
	})

	return g.Wait()
}
