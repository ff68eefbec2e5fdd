// Package report computes the Month × Warehouse inbound/outbound/stock table
// and the Month × Site inbound/inventory table from annotated shipment
// records.
package report

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meridian-logistics/meridian/internal/shared"
)

// ErrNoMonths indicates an aggregation call without a month range.
var ErrNoMonths = errors.New("report: month range required")

// ErrEmptyRecordSet indicates a refresh over zero records where a result is
// mandatory.
var ErrEmptyRecordSet = errors.New("report: empty record set")

// WarehouseRow is one warehouse × month line of the stock report.
// EndingStock always equals PreviousStock + Inbound - Outbound.
type WarehouseRow struct {
	Warehouse     string          `json:"warehouse"`
	Month         string          `json:"month"`
	PreviousStock int             `json:"previous_stock"`
	Inbound       int             `json:"inbound"`
	Outbound      int             `json:"outbound"`
	EndingStock   int             `json:"ending_stock"`
	OccupiedSqm   decimal.Decimal `json:"occupied_sqm"`
}

// WarehouseTable is the monthly warehouse report, warehouse-major in the
// configured display order.
type WarehouseTable struct {
	Months []string       `json:"months"`
	Rows   []WarehouseRow `json:"rows"`
}

// SiteRow is one site × month line of the site report.
type SiteRow struct {
	Site string `json:"site"`
	Month string `json:"month"`
	// Inbound counts shipments, not package units, by business rule.
	Inbound int `json:"inbound"`
	// Inventory is a snapshot count from the status location column,
	// deliberately not a rolling balance.
	Inventory int `json:"inventory"`
}

// SiteTable is the monthly site report.
type SiteTable struct {
	Months []string  `json:"months"`
	Rows   []SiteRow `json:"rows"`
}

// Snapshot is one persisted refresh run.
type Snapshot struct {
	ID         int64
	BatchID    string
	Warehouse  WarehouseTable
	Site       SiteTable
	RecordsIn  int
	UnknownIn  int
	FinishedAt time.Time
}

// Options tunes the aggregation. Zero values fall back to the documented
// defaults.
type Options struct {
	// SqmDivisor scales the occupied-area column for display. Default 1000.
	SqmDivisor int64
	// Precision is the decimal precision of OccupiedSqm. Default 2.
	Precision int32
	// FallbackFrom/FallbackTo bound the report when no record carries any
	// warehouse date. Using them is logged loudly.
	FallbackFrom shared.Month
	FallbackTo   shared.Month
}

func (o Options) normalized() Options {
	if o.SqmDivisor <= 0 {
		o.SqmDivisor = 1000
	}
	if o.Precision <= 0 {
		o.Precision = 2
	}
	if o.FallbackFrom.IsZero() || o.FallbackTo.IsZero() {
		o.FallbackFrom = shared.Month{Year: 2024, Mon: time.January}
		o.FallbackTo = shared.Month{Year: 2024, Mon: time.December}
	}
	return o
}
