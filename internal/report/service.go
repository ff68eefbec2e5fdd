package report

import (
	"context"
	"log/slog"
	"time"

	"github.com/meridian-logistics/meridian/internal/flow"
	"github.com/meridian-logistics/meridian/internal/shared"
)

// RecordSource supplies annotated shipment records.
type RecordSource interface {
	ListAnnotated(ctx context.Context) ([]flow.Record, error)
}

// RepositoryPort abstracts snapshot persistence for the service.
type RepositoryPort interface {
	SaveSnapshot(ctx context.Context, snap Snapshot) (int64, error)
	LatestSnapshot(ctx context.Context) (Snapshot, error)
}

// Service coordinates report computation, persistence and caching.
type Service struct {
	records RecordSource
	repo    RepositoryPort
	cache   *Cache
	cfg     flow.Config
	opts    Options
	logger  *slog.Logger
}

// NewService builds Service.
func NewService(records RecordSource, repo RepositoryPort, cache *Cache, cfg flow.Config, opts Options, logger *slog.Logger) *Service {
	return &Service{records: records, repo: repo, cache: cache, cfg: cfg, opts: opts, logger: logger}
}

// Refresh recomputes both monthly tables over the full derived month range,
// persists a snapshot and invalidates cached tables.
func (s *Service) Refresh(ctx context.Context, batchID string) (Snapshot, error) {
	records, err := s.records.ListAnnotated(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	if len(records) == 0 {
		return Snapshot{}, ErrEmptyRecordSet
	}
	months := DetermineMonths(records, s.opts, s.logger)

	warehouse, err := AggregateWarehouseMonthly(records, months, s.cfg.Warehouses, s.opts, s.logger)
	if err != nil {
		return Snapshot{}, err
	}
	site, err := AggregateSiteMonthly(records, months, s.cfg.Sites)
	if err != nil {
		return Snapshot{}, err
	}

	unknown := 0
	for _, rec := range records {
		if rec.FlowCode == flow.CodeUnknown {
			unknown++
		}
	}
	snap := Snapshot{
		BatchID:    batchID,
		Warehouse:  warehouse,
		Site:       site,
		RecordsIn:  len(records),
		UnknownIn:  unknown,
		FinishedAt: time.Now().UTC(),
	}
	if s.repo != nil {
		id, err := s.repo.SaveSnapshot(ctx, snap)
		if err != nil {
			return Snapshot{}, err
		}
		snap.ID = id
	}
	if err := s.cache.Bump(ctx); err != nil && s.logger != nil {
		s.logger.Warn("report cache bump", slog.Any("error", err))
	}
	return snap, nil
}

// WarehouseTable computes (or serves from cache) the warehouse table for an
// explicit month range. A zero range falls back to the data-derived one.
func (s *Service) WarehouseTable(ctx context.Context, from, to shared.Month) (WarehouseTable, error) {
	months, err := s.resolveMonths(ctx, from, to)
	if err != nil {
		return WarehouseTable{}, err
	}
	key, err := s.cache.BuildKey(ctx, keyWarehouseTable(months[0].String(), months[len(months)-1].String())...)
	if err != nil {
		return WarehouseTable{}, err
	}
	var table WarehouseTable
	err = s.cache.FetchJSON(ctx, key, &table, func(ctx context.Context) (any, error) {
		records, err := s.records.ListAnnotated(ctx)
		if err != nil {
			return nil, err
		}
		return AggregateWarehouseMonthly(records, months, s.cfg.Warehouses, s.opts, s.logger)
	})
	return table, err
}

// SiteTable computes (or serves from cache) the site table for a month range.
func (s *Service) SiteTable(ctx context.Context, from, to shared.Month) (SiteTable, error) {
	months, err := s.resolveMonths(ctx, from, to)
	if err != nil {
		return SiteTable{}, err
	}
	key, err := s.cache.BuildKey(ctx, keySiteTable(months[0].String(), months[len(months)-1].String())...)
	if err != nil {
		return SiteTable{}, err
	}
	var table SiteTable
	err = s.cache.FetchJSON(ctx, key, &table, func(ctx context.Context) (any, error) {
		records, err := s.records.ListAnnotated(ctx)
		if err != nil {
			return nil, err
		}
		return AggregateSiteMonthly(records, months, s.cfg.Sites)
	})
	return table, err
}

// Latest returns the last persisted snapshot.
func (s *Service) Latest(ctx context.Context) (Snapshot, error) {
	return s.repo.LatestSnapshot(ctx)
}

func (s *Service) resolveMonths(ctx context.Context, from, to shared.Month) ([]shared.Month, error) {
	if !from.IsZero() && !to.IsZero() {
		return shared.MonthRange(from, to)
	}
	records, err := s.records.ListAnnotated(ctx)
	if err != nil {
		return nil, err
	}
	months := DetermineMonths(records, s.opts, s.logger)
	if len(months) == 0 {
		return nil, ErrNoMonths
	}
	return months, nil
}
