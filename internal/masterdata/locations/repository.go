package locations

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-logistics/meridian/internal/platform/httpx"
)

type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Location, error)
	Get(ctx context.Context, id int64) (Location, error)
	Create(ctx context.Context, loc Location) (Location, error)
	Update(ctx context.Context, id int64, loc Location) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Location, error) {
	query := `SELECT id, name, kind, priority, active, created_at, updated_at FROM locations WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.Kind != "" {
		argCount++
		query += ` AND kind = $` + strconv.Itoa(argCount)
		args = append(args, string(filters.Kind))
	}
	if filters.Search != "" {
		argCount++
		query += ` AND name ILIKE $` + strconv.Itoa(argCount)
		args = append(args, "%"+filters.Search+"%")
	}
	if filters.Active != nil {
		argCount++
		query += ` AND active = $` + strconv.Itoa(argCount)
		args = append(args, *filters.Active)
	}
	query += ` ORDER BY kind, priority, name`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("locations: list: %w", err)
	}
	defer rows.Close()

	var locs []Location
	for rows.Next() {
		var loc Location
		var kind string
		if err := rows.Scan(&loc.ID, &loc.Name, &kind, &loc.Priority, &loc.Active, &loc.CreatedAt, &loc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("locations: scan: %w", err)
		}
		loc.Kind = Kind(kind)
		locs = append(locs, loc)
	}
	return locs, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Location, error) {
	var loc Location
	var kind string
	err := r.pool.QueryRow(ctx, `SELECT id, name, kind, priority, active, created_at, updated_at
FROM locations WHERE id = $1`, id).
		Scan(&loc.ID, &loc.Name, &kind, &loc.Priority, &loc.Active, &loc.CreatedAt, &loc.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Location{}, httpx.ErrNotFound
	}
	if err != nil {
		return Location{}, fmt.Errorf("locations: get %d: %w", id, err)
	}
	loc.Kind = Kind(kind)
	return loc, nil
}

func (r *repository) Create(ctx context.Context, loc Location) (Location, error) {
	now := time.Now()
	err := r.pool.QueryRow(ctx, `INSERT INTO locations (name, kind, priority, active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $5) RETURNING id`,
		loc.Name, string(loc.Kind), loc.Priority, loc.Active, now).Scan(&loc.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return Location{}, fmt.Errorf("%w: location %q", httpx.ErrDuplicate, loc.Name)
		}
		return Location{}, fmt.Errorf("locations: create: %w", err)
	}
	loc.CreatedAt = now
	loc.UpdatedAt = now
	return loc, nil
}

func (r *repository) Update(ctx context.Context, id int64, loc Location) error {
	tag, err := r.pool.Exec(ctx, `UPDATE locations
SET name = $1, kind = $2, priority = $3, active = $4, updated_at = $5
WHERE id = $6`,
		loc.Name, string(loc.Kind), loc.Priority, loc.Active, time.Now(), id)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: location %q", httpx.ErrDuplicate, loc.Name)
		}
		return fmt.Errorf("locations: update %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM locations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("locations: delete %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
