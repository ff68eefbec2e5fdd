package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/meridian-logistics/meridian/internal/report"
)

func TestWriteWarehouseCSV(t *testing.T) {
	table := report.WarehouseTable{
		Months: []string{"2024-06"},
		Rows: []report.WarehouseRow{{
			Warehouse:     "DSV Indoor",
			Month:         "2024-06",
			PreviousStock: 2,
			Inbound:       3,
			Outbound:      1,
			EndingStock:   4,
			OccupiedSqm:   decimal.RequireFromString("0.25"),
		}},
	}
	var buf bytes.Buffer
	if err := WriteWarehouseCSV(&buf, table); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %d lines", len(lines))
	}
	if lines[1] != "DSV Indoor,2024-06,2,3,1,4,0.25" {
		t.Fatalf("unexpected row: %s", lines[1])
	}
}

func TestWriteSiteCSV(t *testing.T) {
	table := report.SiteTable{
		Months: []string{"2024-03"},
		Rows:   []report.SiteRow{{Site: "MIR", Month: "2024-03", Inbound: 1, Inventory: 7}},
	}
	var buf bytes.Buffer
	if err := WriteSiteCSV(&buf, table); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "MIR,2024-03,1,7") {
		t.Fatalf("row missing from output: %s", buf.String())
	}
}
