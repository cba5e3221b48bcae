package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	_ "github.com/tair/pos-core/docs"
	"github.com/tair/pos-core/internal/analytics"
	"github.com/tair/pos-core/internal/app"
	"github.com/tair/pos-core/internal/config"
	grpcDelivery "github.com/tair/pos-core/internal/delivery/grpc"
	"github.com/tair/pos-core/internal/events"
	"github.com/tair/pos-core/internal/staff"
	"github.com/tair/pos-core/internal/store/repository"
	"github.com/tair/pos-core/pkg/auth"
	"github.com/tair/pos-core/pkg/database"
	"github.com/tair/pos-core/pkg/logger"
	"github.com/tair/pos-core/pkg/tracing"
)

func main() {
	cliApp := &cli.App{
		Name:  "pos",
		Usage: "point of sale back office",
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
			reportCommand(),
			notifyCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger.Setup(logger.Options{
		Service:     cfg.ServiceName,
		Version:     cfg.Version,
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
		Console:     cfg.IsDevelopment(),
	})
	return cfg, nil
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP and gRPC servers",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if cfg.Tracing.Enabled {
				shutdown, err := tracing.Setup(tracing.Config{
					ServiceName: cfg.ServiceName,
					Version:     cfg.Version,
					Environment: cfg.Environment,
					Endpoint:    cfg.Tracing.JaegerEndpoint,
					SampleRatio: cfg.Tracing.SampleRatio,
				})
				if err != nil {
					logger.Logger.Warn().Err(err).Msg("Tracing disabled")
				} else {
					defer func() {
						shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
						defer cancel()
						if err := shutdown(shutdownCtx); err != nil {
							logger.Logger.Warn().Err(err).Msg("Failed to flush traces")
						}
					}()
				}
			}

			service, cleanup, err := app.InitializeApp(cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize service: %w", err)
			}
			defer cleanup()

			if err := service.Prepare(ctx); err != nil {
				return err
			}

			logger.Logger.Info().
				Str("http_port", cfg.HTTPPort).
				Str("grpc_port", cfg.GRPCPort).
				Bool("database", cfg.DB.Enabled).
				Bool("kafka", cfg.Kafka.Enabled).
				Bool("redis", cfg.Redis.Enabled).
				Msg("Starting pos-core")

			return service.Run(ctx)
		},
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "create or update the postgres mirror tables",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := database.NewGormConnection(cfg.Database())
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}

			if err := repository.NewGormMirror(db).AutoMigrate(); err != nil {
				return err
			}
			if err := staff.NewGormRepository(db).AutoMigrate(); err != nil {
				return err
			}
			logger.Logger.Info().Str("database", cfg.DB.Name).Msg("Migrations applied")
			return nil
		},
	}
}

func reportCommand() *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "print a report from a running server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Value: "localhost:9090", Usage: "gRPC address of the server"},
			&cli.StringFlag{Name: "date", Usage: "day YYYY-MM-DD, today when empty"},
			&cli.StringFlag{Name: "end", Usage: "last day of a range starting at --date"},
			&cli.StringFlag{Name: "calendar", Usage: "calendar mode: week, month or year"},
			&cli.IntFlag{Name: "finance", Usage: "finance summary over the last N days"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			auth.Configure(cfg.JWTSecret, cfg.JWTTTL)
			token, err := auth.GenerateToken(0, "pos-cli", staff.RoleAdmin)
			if err != nil {
				return err
			}

			client, err := grpcDelivery.NewReportClient(c.String("addr"), token)
			if err != nil {
				return err
			}
			defer client.Close()

			ctx, cancel := context.WithTimeout(c.Context, 10*time.Second)
			defer cancel()

			var report interface{}
			switch {
			case c.String("calendar") != "":
				mode, err := analytics.ParseMode(c.String("calendar"))
				if err != nil {
					return err
				}
				report, err = client.Calendar(ctx, mode, c.String("date"))
				if err != nil {
					return err
				}
			case c.Int("finance") > 0:
				report, err = client.FinanceSummary(ctx, c.Int("finance"))
			case c.String("end") != "":
				report, err = client.RangeStats(ctx, c.String("date"), c.String("end"))
			default:
				report, err = client.DailyStats(ctx, c.String("date"))
			}
			if err != nil {
				return err
			}

			enc := json.NewEncoder(c.App.Writer)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}
}

func notifyCommand() *cli.Command {
	return &cli.Command{
		Name:  "notify",
		Usage: "publish a system notice to every till",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Required: true},
			&cli.StringFlag{Name: "message", Required: true},
			&cli.StringFlag{Name: "source", Value: "pos-cli"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			publisher, err := events.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.ChangesTopic)
			if err != nil {
				return err
			}
			defer publisher.Close()
			publisher.WithNoticeTopic(cfg.Kafka.NoticesTopic)

			return publisher.PublishNotice(c.Context, events.SystemNoticeEvent{
				Title:   c.String("title"),
				Message: c.String("message"),
				Source:  c.String("source"),
			})
		},
	}
}
