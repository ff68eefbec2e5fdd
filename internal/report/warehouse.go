package report

import (
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meridian-logistics/meridian/internal/flow"
	"github.com/meridian-logistics/meridian/internal/shared"
)

// AggregateWarehouseMonthly builds the Month × Warehouse stock table.
// Inbound counts package quantity by warehouse arrival month, outbound by the
// paired out-date month, and the running balance carries month to month. A
// warehouse absent from every record still yields all-zero rows.
func AggregateWarehouseMonthly(records []flow.Record, months []shared.Month, warehouses []string, opts Options, logger *slog.Logger) (WarehouseTable, error) {
	if len(months) == 0 {
		return WarehouseTable{}, ErrNoMonths
	}
	opts = opts.normalized()

	table := WarehouseTable{Months: monthTokens(months)}
	filled := forwardFillAreas(records, logger)

	for _, warehouse := range warehouses {
		prev := openingStock(filled, warehouse, months[0])
		for _, month := range months {
			row := WarehouseRow{
				Warehouse:     warehouse,
				Month:         month.String(),
				PreviousStock: prev,
			}
			for _, rec := range filled {
				stay, ok := rec.Stays[warehouse]
				if !ok {
					continue
				}
				qty := rec.Quantity()
				if month.Contains(stay.In) {
					row.Inbound += qty
				}
				if stay.Out != nil && month.Contains(*stay.Out) {
					row.Outbound += qty
				}
			}
			row.EndingStock = row.PreviousStock + row.Inbound - row.Outbound
			if row.EndingStock < 0 && logger != nil {
				logger.Warn("negative ending stock",
					slog.String("warehouse", warehouse),
					slog.String("month", row.Month),
					slog.Int("ending", row.EndingStock))
			}
			row.OccupiedSqm = occupiedSqm(filled, warehouse, month, opts)
			table.Rows = append(table.Rows, row)
			prev = row.EndingStock
		}
	}
	return table, nil
}

// openingStock counts packages resident at a warehouse when the report range
// starts: arrived strictly before the first month, not departed before it.
func openingStock(records []flow.Record, warehouse string, first shared.Month) int {
	total := 0
	start := first.Start()
	for _, rec := range records {
		stay, ok := rec.Stays[warehouse]
		if !ok {
			continue
		}
		if !stay.In.Before(start) {
			continue
		}
		if stay.Out != nil && stay.Out.Before(start) {
			continue
		}
		total += rec.Quantity()
	}
	return total
}

// occupiedSqm sums area × quantity over packages resident at month end,
// scaled by the display divisor.
func occupiedSqm(records []flow.Record, warehouse string, month shared.Month, opts Options) decimal.Decimal {
	end := month.End()
	total := decimal.Zero
	for _, rec := range records {
		stay, ok := rec.Stays[warehouse]
		if !ok {
			continue
		}
		if !stay.In.Before(end) {
			continue
		}
		if stay.Out != nil && stay.Out.Before(end) {
			continue
		}
		if rec.AreaSqm == nil {
			continue
		}
		area := decimal.NewFromFloat(*rec.AreaSqm)
		total = total.Add(area.Mul(decimal.NewFromInt(int64(rec.Quantity()))))
	}
	return total.Div(decimal.NewFromInt(opts.SqmDivisor)).Round(opts.Precision)
}

// forwardFillAreas fills missing AreaSqm values from the most recent known
// value within the same vendor and final-location group, ordered by first
// warehouse arrival. Records with no value anywhere in their group stay
// unknown, contribute zero area and raise one data-quality warning.
func forwardFillAreas(records []flow.Record, logger *slog.Logger) []flow.Record {
	out := make([]flow.Record, len(records))
	order := make([]int, len(records))
	for i, rec := range records {
		out[i] = rec.Clone()
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ta, okA := firstArrival(out[order[a]])
		tb, okB := firstArrival(out[order[b]])
		if okA != okB {
			return okA
		}
		return ta.Before(tb)
	})

	type groupKey struct {
		vendor   flow.Vendor
		location string
	}
	lastKnown := make(map[groupKey]float64)
	missing := 0
	for _, idx := range order {
		rec := &out[idx]
		key := groupKey{vendor: rec.Vendor, location: flow.CanonicalLabel(rec.FinalLocation)}
		if rec.AreaSqm != nil {
			lastKnown[key] = *rec.AreaSqm
			continue
		}
		if area, ok := lastKnown[key]; ok {
			filled := area
			rec.AreaSqm = &filled
			continue
		}
		missing++
	}
	if missing > 0 && logger != nil {
		logger.Warn("records without any known area treated as zero sqm",
			slog.Int("count", missing))
	}
	return out
}

// firstArrival returns the earliest warehouse arrival of a record.
func firstArrival(rec flow.Record) (t time.Time, ok bool) {
	for _, stay := range rec.Stays {
		if !ok || stay.In.Before(t) {
			t, ok = stay.In, true
		}
	}
	return t, ok
}

// DetermineMonths derives the report range from the earliest and latest
// warehouse arrivals. When no record carries any warehouse date the
// configured fallback period applies; that always signals an upstream data
// problem, so it is logged loudly.
func DetermineMonths(records []flow.Record, opts Options, logger *slog.Logger) []shared.Month {
	opts = opts.normalized()
	var (
		min, max shared.Month
		found    bool
	)
	for _, rec := range records {
		for _, stay := range rec.Stays {
			m := shared.MonthOf(stay.In)
			if !found {
				min, max, found = m, m, true
				continue
			}
			if m.Before(min) {
				min = m
			}
			if max.Before(m) {
				max = m
			}
		}
	}
	if !found {
		if logger != nil {
			logger.Warn("no parseable warehouse dates in dataset, falling back to configured period",
				slog.String("from", opts.FallbackFrom.String()),
				slog.String("to", opts.FallbackTo.String()))
		}
		min, max = opts.FallbackFrom, opts.FallbackTo
	}
	months, err := shared.MonthRange(min, max)
	if err != nil {
		return nil
	}
	return months
}

func monthTokens(months []shared.Month) []string {
	out := make([]string, len(months))
	for i, m := range months {
		out[i] = m.String()
	}
	return out
}
