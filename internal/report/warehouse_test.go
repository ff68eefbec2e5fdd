package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/meridian-logistics/meridian/internal/flow"
	"github.com/meridian-logistics/meridian/internal/shared"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func months(t *testing.T, from, to string) []shared.Month {
	t.Helper()
	f, err := shared.ParseMonth(from)
	require.NoError(t, err)
	l, err := shared.ParseMonth(to)
	require.NoError(t, err)
	ms, err := shared.MonthRange(f, l)
	require.NoError(t, err)
	return ms
}

func stay(in time.Time, out *time.Time) flow.StayWindow {
	return flow.StayWindow{In: in, Out: out}
}

func ptr(t time.Time) *time.Time { return &t }

func TestAggregateQuantityWeightedInbound(t *testing.T) {
	records := []flow.Record{{
		CaseNo:          "HE-1",
		Vendor:          flow.VendorHitachi,
		PackageQuantity: 3,
		Stays:           map[string]flow.StayWindow{"DSV Indoor": stay(date(2024, 6, 1), nil)},
	}}
	table, err := AggregateWarehouseMonthly(records, months(t, "2024-06", "2024-06"), []string{"DSV Indoor"}, Options{}, nil)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	row := table.Rows[0]
	require.Equal(t, 3, row.Inbound)
	require.Equal(t, 0, row.Outbound)
	require.Equal(t, 3, row.EndingStock)
}

func TestAggregateResidencyWindow(t *testing.T) {
	// Resident 2024-01-10 through an out-date of 2024-03-05: counted in the
	// Jan and Feb ending stock, gone by March.
	records := []flow.Record{{
		CaseNo: "HE-2",
		Stays:  map[string]flow.StayWindow{"DSV Indoor": stay(date(2024, 1, 10), ptr(date(2024, 3, 5)))},
	}}
	table, err := AggregateWarehouseMonthly(records, months(t, "2024-01", "2024-03"), []string{"DSV Indoor"}, Options{}, nil)
	require.NoError(t, err)
	require.Len(t, table.Rows, 3)
	require.Equal(t, 1, table.Rows[0].EndingStock, "January")
	require.Equal(t, 1, table.Rows[1].EndingStock, "February")
	require.Equal(t, 1, table.Rows[2].Outbound, "March outbound")
	require.Equal(t, 0, table.Rows[2].EndingStock, "March")
}

func TestAggregateBalanceIdentity(t *testing.T) {
	records := []flow.Record{
		{CaseNo: "a", PackageQuantity: 2, Stays: map[string]flow.StayWindow{"DSV Al Markaz": stay(date(2024, 1, 5), ptr(date(2024, 2, 10)))}},
		{CaseNo: "b", PackageQuantity: 4, Stays: map[string]flow.StayWindow{"DSV Al Markaz": stay(date(2024, 2, 1), nil)}},
		{CaseNo: "c", Stays: map[string]flow.StayWindow{"DSV Al Markaz": stay(date(2023, 11, 20), ptr(date(2024, 3, 2)))}},
	}
	ms := months(t, "2024-01", "2024-04")
	table, err := AggregateWarehouseMonthly(records, ms, []string{"DSV Al Markaz"}, Options{}, nil)
	require.NoError(t, err)

	prev := table.Rows[0].PreviousStock
	require.Equal(t, 1, prev, "record c is resident at range start")
	for _, row := range table.Rows {
		require.Equal(t, prev, row.PreviousStock)
		require.Equal(t, row.PreviousStock+row.Inbound-row.Outbound, row.EndingStock)
		require.GreaterOrEqual(t, row.EndingStock, 0)
		prev = row.EndingStock
	}
}

func TestAggregateAbsentWarehouseYieldsZeroRows(t *testing.T) {
	records := []flow.Record{{
		CaseNo: "HE-3",
		Stays:  map[string]flow.StayWindow{"DSV Indoor": stay(date(2024, 5, 1), nil)},
	}}
	table, err := AggregateWarehouseMonthly(records, months(t, "2024-05", "2024-06"), []string{"DSV Indoor", "AAA Storage"}, Options{}, nil)
	require.NoError(t, err)
	require.Len(t, table.Rows, 4)
	for _, row := range table.Rows {
		if row.Warehouse != "AAA Storage" {
			continue
		}
		require.Zero(t, row.Inbound)
		require.Zero(t, row.Outbound)
		require.Zero(t, row.EndingStock)
		require.True(t, row.OccupiedSqm.IsZero())
	}
}

func TestAggregateRequiresMonths(t *testing.T) {
	_, err := AggregateWarehouseMonthly(nil, nil, []string{"DSV Indoor"}, Options{}, nil)
	require.ErrorIs(t, err, ErrNoMonths)
}

func TestOccupiedSqmScalingAndRounding(t *testing.T) {
	area := 125.5
	records := []flow.Record{{
		CaseNo:          "HE-4",
		PackageQuantity: 2,
		AreaSqm:         &area,
		Stays:           map[string]flow.StayWindow{"DSV Outdoor": stay(date(2024, 7, 3), nil)},
	}}
	table, err := AggregateWarehouseMonthly(records, months(t, "2024-07", "2024-07"), []string{"DSV Outdoor"}, Options{}, nil)
	require.NoError(t, err)
	// 125.5 * 2 / 1000 = 0.251 -> 0.25 at two decimals.
	require.Equal(t, "0.25", table.Rows[0].OccupiedSqm.String())
}

func TestOccupiedSqmForwardFill(t *testing.T) {
	area := 80.0
	records := []flow.Record{
		{
			CaseNo: "HE-5", Vendor: flow.VendorHitachi, FinalLocation: "DSV Indoor",
			AreaSqm: &area,
			Stays:   map[string]flow.StayWindow{"DSV Indoor": stay(date(2024, 1, 2), nil)},
		},
		{
			CaseNo: "HE-6", Vendor: flow.VendorHitachi, FinalLocation: "DSV Indoor",
			Stays: map[string]flow.StayWindow{"DSV Indoor": stay(date(2024, 1, 20), nil)},
		},
	}
	table, err := AggregateWarehouseMonthly(records, months(t, "2024-01", "2024-01"), []string{"DSV Indoor"}, Options{}, nil)
	require.NoError(t, err)
	// Both records contribute 80 sqm after forward fill: 160/1000.
	require.Equal(t, "0.16", table.Rows[0].OccupiedSqm.String())
}

func TestDetermineMonthsFallback(t *testing.T) {
	opts := Options{
		FallbackFrom: shared.Month{Year: 2024, Mon: time.March},
		FallbackTo:   shared.Month{Year: 2024, Mon: time.May},
	}
	ms := DetermineMonths(nil, opts, nil)
	require.Len(t, ms, 3)
	require.Equal(t, "2024-03", ms[0].String())
	require.Equal(t, "2024-05", ms[2].String())
}

func TestDetermineMonthsFromData(t *testing.T) {
	records := []flow.Record{
		{Stays: map[string]flow.StayWindow{"DSV Indoor": stay(date(2024, 2, 10), nil)}},
		{Stays: map[string]flow.StayWindow{"DSV MZP": stay(date(2024, 6, 1), nil)}},
	}
	ms := DetermineMonths(records, Options{}, nil)
	require.Len(t, ms, 5)
	require.Equal(t, "2024-02", ms[0].String())
	require.Equal(t, "2024-06", ms[4].String())
}
