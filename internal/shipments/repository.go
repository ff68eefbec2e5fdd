// Package shipments persists annotated shipment records between ingest runs
// and report computations.
package shipments

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-logistics/meridian/internal/flow"
	"github.com/meridian-logistics/meridian/internal/platform/db"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// storedStay is the JSON shape of a stay window.
type storedStay struct {
	In  time.Time  `json:"in"`
	Out *time.Time `json:"out,omitempty"`
}

// ReplaceVendor swaps the full record set for one vendor in a single
// transaction. Ingest always reloads a whole workbook, never individual rows.
func (r *Repository) ReplaceVendor(ctx context.Context, vendor flow.Vendor, records []flow.Record) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM shipment_records WHERE vendor = $1`, string(vendor)); err != nil {
			return fmt.Errorf("shipments: clear vendor: %w", err)
		}
		for _, rec := range records {
			warehouse, transit, site, stays, err := encodeLocations(rec)
			if err != nil {
				return err
			}
			invalid, err := json.Marshal(rec.InvalidColumns)
			if err != nil {
				return fmt.Errorf("shipments: encode invalid columns: %w", err)
			}
			_, err = tx.Exec(ctx, `INSERT INTO shipment_records
(vendor, case_no, package_qty, area_sqm, status_location, warehouse_dates, transit_dates, site_dates, invalid_columns, flow_code, flow_description, final_location, stays)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
				string(rec.Vendor), rec.CaseNo, rec.PackageQuantity, rec.AreaSqm, rec.CurrentStatusLocation,
				warehouse, transit, site, invalid,
				int(rec.FlowCode), rec.FlowDescription, rec.FinalLocation, stays)
			if err != nil {
				return fmt.Errorf("shipments: insert %s: %w", rec.CaseNo, err)
			}
		}
		return nil
	})
}

// ListAnnotated returns every persisted record across vendors.
func (r *Repository) ListAnnotated(ctx context.Context) ([]flow.Record, error) {
	rows, err := r.pool.Query(ctx, `SELECT vendor, case_no, package_qty, area_sqm, status_location,
warehouse_dates, transit_dates, site_dates, invalid_columns, flow_code, flow_description, final_location, stays
FROM shipment_records ORDER BY vendor, case_no`)
	if err != nil {
		return nil, fmt.Errorf("shipments: list: %w", err)
	}
	defer rows.Close()

	var records []flow.Record
	for rows.Next() {
		var (
			rec       flow.Record
			vendor    string
			warehouse []byte
			transit   []byte
			site      []byte
			invalid   []byte
			code      int
			stays     []byte
		)
		if err := rows.Scan(&vendor, &rec.CaseNo, &rec.PackageQuantity, &rec.AreaSqm, &rec.CurrentStatusLocation,
			&warehouse, &transit, &site, &invalid, &code, &rec.FlowDescription, &rec.FinalLocation, &stays); err != nil {
			return nil, fmt.Errorf("shipments: scan: %w", err)
		}
		rec.Vendor = flow.Vendor(vendor)
		rec.FlowCode = flow.FlowCode(code)
		if err := decodeLocations(&rec, warehouse, transit, site, invalid, stays); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("shipments: iterate: %w", err)
	}
	return records, nil
}

// CountByVendor reports how many records each vendor currently has.
func (r *Repository) CountByVendor(ctx context.Context) (map[flow.Vendor]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT vendor, COUNT(*) FROM shipment_records GROUP BY vendor`)
	if err != nil {
		return nil, fmt.Errorf("shipments: count: %w", err)
	}
	defer rows.Close()

	counts := make(map[flow.Vendor]int)
	for rows.Next() {
		var (
			vendor string
			n      int
		)
		if err := rows.Scan(&vendor, &n); err != nil {
			return nil, fmt.Errorf("shipments: scan count: %w", err)
		}
		counts[flow.Vendor(vendor)] = n
	}
	return counts, rows.Err()
}

func encodeLocations(rec flow.Record) (warehouse, transit, site, stays []byte, err error) {
	if warehouse, err = json.Marshal(rec.WarehouseDates); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("shipments: encode warehouse dates: %w", err)
	}
	if transit, err = json.Marshal(rec.TransitDates); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("shipments: encode transit dates: %w", err)
	}
	if site, err = json.Marshal(rec.SiteDates); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("shipments: encode site dates: %w", err)
	}
	stored := make(map[string]storedStay, len(rec.Stays))
	for name, stay := range rec.Stays {
		stored[name] = storedStay{In: stay.In, Out: stay.Out}
	}
	if stays, err = json.Marshal(stored); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("shipments: encode stays: %w", err)
	}
	return warehouse, transit, site, stays, nil
}

func decodeLocations(rec *flow.Record, warehouse, transit, site, invalid, stays []byte) error {
	if err := json.Unmarshal(warehouse, &rec.WarehouseDates); err != nil {
		return fmt.Errorf("shipments: decode warehouse dates: %w", err)
	}
	if err := json.Unmarshal(transit, &rec.TransitDates); err != nil {
		return fmt.Errorf("shipments: decode transit dates: %w", err)
	}
	if err := json.Unmarshal(site, &rec.SiteDates); err != nil {
		return fmt.Errorf("shipments: decode site dates: %w", err)
	}
	if err := json.Unmarshal(invalid, &rec.InvalidColumns); err != nil {
		return fmt.Errorf("shipments: decode invalid columns: %w", err)
	}
	var stored map[string]storedStay
	if err := json.Unmarshal(stays, &stored); err != nil {
		return fmt.Errorf("shipments: decode stays: %w", err)
	}
	if len(stored) > 0 {
		rec.Stays = make(map[string]flow.StayWindow, len(stored))
		for name, stay := range stored {
			rec.Stays[name] = flow.StayWindow{In: stay.In, Out: stay.Out}
		}
	}
	return nil
}
