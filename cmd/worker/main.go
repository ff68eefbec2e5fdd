package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/meridian-logistics/meridian/internal/app"
	"github.com/meridian-logistics/meridian/internal/ingest"
	"github.com/meridian-logistics/meridian/internal/masterdata/locations"
	"github.com/meridian-logistics/meridian/internal/observability"
	"github.com/meridian-logistics/meridian/internal/report"
	"github.com/meridian-logistics/meridian/internal/shared"
	"github.com/meridian-logistics/meridian/internal/shipments"
	"github.com/meridian-logistics/meridian/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	pool, err := pgxpool.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}

	metrics := observability.NewMetrics()

	locationsService := locations.NewService(locations.NewRepository(pool))
	flowCfg, err := locationsService.FlowConfig(ctx)
	if err != nil {
		logger.Error("load location registry", slog.Any("error", err))
		os.Exit(1)
	}

	shipmentRepo := shipments.NewRepository(pool)
	ingestService := ingest.NewService(flowCfg, shipmentRepo, logger)

	fallbackFrom, err := shared.ParseMonth(cfg.ReportFallbackFrom)
	if err != nil {
		logger.Error("parse fallback from", slog.Any("error", err))
		os.Exit(1)
	}
	fallbackTo, err := shared.ParseMonth(cfg.ReportFallbackTo)
	if err != nil {
		logger.Error("parse fallback to", slog.Any("error", err))
		os.Exit(1)
	}
	reportService := report.NewService(
		shipmentRepo,
		report.NewRepository(pool),
		report.NewCache(redisClient, cfg.CacheTTL),
		flowCfg,
		report.Options{
			SqmDivisor:   cfg.ReportSqmDivisor,
			Precision:    cfg.ReportPrecision,
			FallbackFrom: fallbackFrom,
			FallbackTo:   fallbackTo,
		},
		logger,
	)

	client, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	nightlyIngest, err := jobs.NewIngestFilesTask(jobs.IngestFilesPayload{Sources: []jobs.IngestSource{
		{Vendor: "HITACHI", Path: cfg.HitachiWorkbook},
		{Vendor: "SIMENSE", Path: cfg.SimenseWorkbook},
	}})
	if err != nil {
		logger.Error("build ingest task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeIngestFiles, Handler: jobs.IngestFilesHandler(ingestService, client, metrics, logger)},
			{Type: jobs.TaskTypeReportRefresh, Handler: jobs.ReportRefreshHandler(reportService, metrics, logger)},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 1 * * *", Task: nightlyIngest, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
