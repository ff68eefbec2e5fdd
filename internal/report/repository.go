package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-logistics/meridian/internal/shared"
)

// Repository persists refresh snapshots in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SaveSnapshot stores one refresh run.
func (r *Repository) SaveSnapshot(ctx context.Context, snap Snapshot) (int64, error) {
	warehouse, err := json.Marshal(snap.Warehouse)
	if err != nil {
		return 0, fmt.Errorf("report: marshal warehouse table: %w", err)
	}
	site, err := json.Marshal(snap.Site)
	if err != nil {
		return 0, fmt.Errorf("report: marshal site table: %w", err)
	}
	var id int64
	err = r.pool.QueryRow(ctx, `INSERT INTO report_snapshots (batch_id, warehouse_table, site_table, records_in, unknown_in, finished_at)
VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		snap.BatchID, warehouse, site, snap.RecordsIn, snap.UnknownIn, snap.FinishedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("report: insert snapshot: %w", err)
	}
	return id, nil
}

// LatestSnapshot returns the most recent refresh run.
func (r *Repository) LatestSnapshot(ctx context.Context) (Snapshot, error) {
	var (
		snap      Snapshot
		warehouse []byte
		site      []byte
	)
	err := r.pool.QueryRow(ctx, `SELECT id, batch_id, warehouse_table, site_table, records_in, unknown_in, finished_at
FROM report_snapshots ORDER BY finished_at DESC, id DESC LIMIT 1`).
		Scan(&snap.ID, &snap.BatchID, &warehouse, &site, &snap.RecordsIn, &snap.UnknownIn, &snap.FinishedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Snapshot{}, shared.ErrNotFound
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("report: load snapshot: %w", err)
	}
	if err := json.Unmarshal(warehouse, &snap.Warehouse); err != nil {
		return Snapshot{}, fmt.Errorf("report: decode warehouse table: %w", err)
	}
	if err := json.Unmarshal(site, &snap.Site); err != nil {
		return Snapshot{}, fmt.Errorf("report: decode site table: %w", err)
	}
	return snap, nil
}
