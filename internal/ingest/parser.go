// Package ingest loads the vendor spreadsheets and turns their rows into
// flow records. Everything here is deliberately thin: data-quality problems
// become per-row issues, never batch failures.
package ingest

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/meridian-logistics/meridian/internal/flow"
)

// Header aliases for the non-location columns, canonicalised.
var (
	caseAliases   = []string{"case no.", "case no", "case"}
	qtyAliases    = []string{"pkg", "package", "pkg q'ty", "qty"}
	sqmAliases    = []string{"sqm", "area sqm"}
	statusAliases = []string{"status_location", "current status location", "status location"}
)

// RowIssue records a degraded row that was still ingested.
type RowIssue struct {
	Row    int
	CaseNo string
	Column string
	Detail string
}

// Parser converts raw sheet rows into flow records.
type Parser struct {
	cfg flow.Config
}

// NewParser builds a Parser for the given location schema.
func NewParser(cfg flow.Config) *Parser {
	return &Parser{cfg: cfg}
}

// ParseRows converts one sheet. headers is the first sheet row; rows are the
// remaining data rows, positionally aligned with headers.
func (p *Parser) ParseRows(vendor flow.Vendor, headers []string, rows [][]string) ([]flow.Record, []RowIssue) {
	index := headerIndex(headers)
	records := make([]flow.Record, 0, len(rows))
	var issues []RowIssue

	for i, cells := range rows {
		rowNum := i + 2 // 1-based, after the header row
		rec := flow.Record{
			Vendor:         vendor,
			WarehouseDates: map[string]time.Time{},
			TransitDates:   map[string]time.Time{},
			SiteDates:      map[string]time.Time{},
		}

		rec.CaseNo = firstValue(index, cells, caseAliases)
		if !flow.IsPresent(rec.CaseNo) {
			rec.CaseNo = fmt.Sprintf("%s-ROW-%d", vendor, rowNum)
		}
		rec.PackageQuantity = parseQuantity(firstValue(index, cells, qtyAliases))
		rec.CurrentStatusLocation = strings.TrimSpace(firstValue(index, cells, statusAliases))
		if raw := firstValue(index, cells, sqmAliases); flow.IsPresent(raw) {
			if area, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil && !math.IsNaN(area) {
				rec.AreaSqm = &area
			} else {
				issues = append(issues, RowIssue{Row: rowNum, CaseNo: rec.CaseNo, Column: "sqm", Detail: "not a number"})
			}
		}

		p.parseLocationDates(&rec, index, cells, p.cfg.Warehouses, rec.WarehouseDates)
		p.parseLocationDates(&rec, index, cells, p.cfg.Transits, rec.TransitDates)
		p.parseLocationDates(&rec, index, cells, p.cfg.Sites, rec.SiteDates)

		for _, col := range rec.InvalidColumns {
			issues = append(issues, RowIssue{Row: rowNum, CaseNo: rec.CaseNo, Column: col, Detail: "unparseable date"})
		}
		records = append(records, rec)
	}
	return records, issues
}

// parseLocationDates fills one location group. A populated cell that fails
// date parsing is recorded on the record so classification sends it to review.
func (p *Parser) parseLocationDates(rec *flow.Record, index map[string]int, cells []string, names []string, dest map[string]time.Time) {
	for _, name := range names {
		raw := valueAt(index, cells, flow.CanonicalLabel(name))
		if !flow.IsPresent(raw) {
			continue
		}
		date, err := ParseDate(raw)
		if err != nil {
			rec.InvalidColumns = append(rec.InvalidColumns, name)
			continue
		}
		dest[name] = date
	}
}

// dateLayouts covers the formats seen across the two vendor files.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"02-01-2006",
	"01-02-06",
	"1/2/2006",
}

// excelEpoch is day zero of Excel serial dates.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// ParseDate parses a spreadsheet date cell: known text layouts first, then an
// Excel serial number.
func ParseDate(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.UTC(), nil
		}
	}
	if serial, err := strconv.ParseFloat(trimmed, 64); err == nil && serial > 0 && serial < 200000 {
		days := int(serial)
		frac := serial - float64(days)
		t := excelEpoch.AddDate(0, 0, days).Add(time.Duration(frac * float64(24*time.Hour)))
		return t, nil
	}
	return time.Time{}, fmt.Errorf("ingest: unparseable date %q", raw)
}

func parseQuantity(raw string) int {
	qty, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || qty < 1 {
		// Missing or invalid quantity means one package.
		return 1
	}
	return qty
}

func headerIndex(headers []string) map[string]int {
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		key := flow.CanonicalLabel(h)
		if _, exists := index[key]; !exists {
			index[key] = i
		}
	}
	return index
}

func valueAt(index map[string]int, cells []string, key string) string {
	i, ok := index[key]
	if !ok || i >= len(cells) {
		return ""
	}
	return cells[i]
}

func firstValue(index map[string]int, cells []string, aliases []string) string {
	for _, alias := range aliases {
		if v := valueAt(index, cells, alias); flow.IsPresent(v) {
			return v
		}
	}
	return ""
}
