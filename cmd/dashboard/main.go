package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/philgetzen/my-finance-dashboard-sub003/internal/amqp"
	"github.com/philgetzen/my-finance-dashboard-sub003/internal/cache"
	"github.com/philgetzen/my-finance-dashboard-sub003/internal/config"
	"github.com/philgetzen/my-finance-dashboard-sub003/internal/dashboard"
	"github.com/philgetzen/my-finance-dashboard-sub003/internal/export"
	apphttp "github.com/philgetzen/my-finance-dashboard-sub003/internal/http"
	applog "github.com/philgetzen/my-finance-dashboard-sub003/internal/log"
	"github.com/philgetzen/my-finance-dashboard-sub003/internal/scenario"
	"github.com/philgetzen/my-finance-dashboard-sub003/internal/scenario/localdoc"
	"github.com/philgetzen/my-finance-dashboard-sub003/internal/scenario/redisdoc"
	"github.com/philgetzen/my-finance-dashboard-sub003/internal/source"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	logger.Info("Starting dashboard")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Data source
	backend, err := source.CreateBackend(source.Config{
		Type:          source.BackendType(cfg.DataSource),
		DataDirectory: cfg.DataDirectory,
	}, logger.Logger)
	if err != nil {
		logger.Error("Failed to initialize data source", "error", err)
		os.Exit(1)
	}
	if backend.Cleanup != nil {
		defer backend.Cleanup()
	}

	// Scenario document store
	var docs scenario.DocumentStore
	switch cfg.ScenarioStore {
	case "redis":
		docs = redisdoc.New(cfg.RedisAddr, cfg.UserID)
		logger.Info("Using redis scenario store", "addr", cfg.RedisAddr, "user_id", cfg.UserID)
	default:
		docs, err = localdoc.Open(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to open scenario database", "error", err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		logger.Info("Using sqlite scenario store", "path", cfg.SQLiteDBPath)
	}

	store := scenario.NewStore(docs, scenario.Config{
		Debounce:     cfg.ScenarioDebounce,
		EchoSuppress: cfg.ScenarioEchoSuppress,
	})
	if err := store.Start(ctx); err != nil {
		logger.Error("Failed to start scenario store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	// Optional projection export
	var exporter dashboard.ProjectionExporter
	if cfg.GoogleSpreadsheetID != "" {
		cli, err := export.NewFromEnv(ctx)
		if err != nil {
			logger.Error("Failed to initialize Sheets exporter", "error", err)
			os.Exit(1)
		}
		exporter = cli
		logger.Info("Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	}

	svc := dashboard.NewService(backend.Backend, store, exporter, dashboard.Options{
		PeriodMonths:        cfg.PeriodMonths,
		ProjectionCapMonths: cfg.ProjectionCapMonths,
		GrowthCapMultiplier: int64(cfg.GrowthCapMultiplier),
	})

	srv := apphttp.NewServer(":"+cfg.Port, svc)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	g, gctx := errgroup.WithContext(ctx)

	// Periodic cache sweep
	manager := cache.NewManager()
	manager.Register(svc.Cache())
	g.Go(func() error {
		err := manager.Run(gctx, 10*time.Minute)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	// Budget refresh events invalidate cached upstream data
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer client.Close()

		g.Go(func() error {
			err := client.ConsumeBudgetRefreshed(gctx, func(msg *amqp.BudgetRefreshedMessage) error {
				svc.InvalidateUser(gctx, msg.UserID)
				return nil
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
		logger.Info("Consuming budget refresh events", "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	g.Go(func() error {
		logger.Info("Starting HTTP server", "port", cfg.Port, "data_source", cfg.DataSource)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Dashboard exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Dashboard stopped gracefully")
}
