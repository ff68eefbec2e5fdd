package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/meridian-logistics/meridian/internal/app"
	"github.com/meridian-logistics/meridian/internal/masterdata/locations"
	"github.com/meridian-logistics/meridian/internal/observability"
	"github.com/meridian-logistics/meridian/internal/report"
	reporthttp "github.com/meridian-logistics/meridian/internal/report/http"
	"github.com/meridian-logistics/meridian/internal/shared"
	"github.com/meridian-logistics/meridian/internal/shipments"
	"github.com/meridian-logistics/meridian/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := pgxpool.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	locationsRepo := locations.NewRepository(dbpool)
	locationsService := locations.NewService(locationsRepo)
	locationsHandler := locations.NewHandler(logger, locationsService)

	flowCfg, err := locationsService.FlowConfig(ctx)
	if err != nil {
		logger.Error("load location registry", slog.Any("error", err))
		os.Exit(1)
	}

	reportOpts, err := reportOptions(cfg)
	if err != nil {
		logger.Error("parse report options", slog.Any("error", err))
		os.Exit(1)
	}

	shipmentRepo := shipments.NewRepository(dbpool)
	reportRepo := report.NewRepository(dbpool)
	reportCache := report.NewCache(redisClient, cfg.CacheTTL)
	reportService := report.NewService(shipmentRepo, reportRepo, reportCache, flowCfg, reportOpts, logger)

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	reportHandler := reporthttp.NewHandler(logger, reportService, jobClient)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		ReportHandler:    reportHandler,
		LocationsHandler: locationsHandler,
		JobHandler:       jobHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

func reportOptions(cfg *app.Config) (report.Options, error) {
	opts := report.Options{
		SqmDivisor: cfg.ReportSqmDivisor,
		Precision:  cfg.ReportPrecision,
	}
	if cfg.ReportFallbackFrom != "" {
		from, err := shared.ParseMonth(cfg.ReportFallbackFrom)
		if err != nil {
			return report.Options{}, err
		}
		opts.FallbackFrom = from
	}
	if cfg.ReportFallbackTo != "" {
		to, err := shared.ParseMonth(cfg.ReportFallbackTo)
		if err != nil {
			return report.Options{}, err
		}
		opts.FallbackTo = to
	}
	return opts, nil
}
