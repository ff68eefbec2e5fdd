package flow

import (
	"fmt"
	"log/slog"
	"time"
)

// Issue describes a degraded-but-recovered condition for one record.
type Issue struct {
	CaseNo string
	Vendor Vendor
	Kind   string
	Detail string
}

// Issue kinds reported by Annotate.
const (
	IssueInvalidDate = "invalid_date"
	IssueUnknownCode = "unknown_code"
)

// Stats summarises one annotation pass.
type Stats struct {
	Total   int
	ByCode  map[FlowCode]int
	Unknown int
}

// Annotate classifies every record and derives final location and stay
// windows. It returns a new batch; the input is never mutated. A record that
// fails to classify cleanly is flagged for review and the rest of the batch
// proceeds.
func Annotate(records []Record, cfg Config, logger *slog.Logger) ([]Record, Stats, []Issue) {
	out := make([]Record, 0, len(records))
	stats := Stats{ByCode: make(map[FlowCode]int)}
	var issues []Issue

	for _, in := range records {
		rec := in.Clone()
		rec.FlowCode = Classify(rec, cfg)
		rec.FlowDescription = rec.FlowCode.Description()

		if rec.FlowCode == CodeWarehouseIn || rec.FlowCode == CodeWarehouseStocked {
			if final, ok := ChooseFinalWarehouse(rec, cfg); ok {
				clearOtherWarehouses(&rec, final)
			}
		}
		rec.FinalLocation = finalLocation(rec, cfg)
		rec.Stays = deriveStays(rec, cfg)

		stats.Total++
		stats.ByCode[rec.FlowCode]++
		switch {
		case len(rec.InvalidColumns) > 0:
			issues = append(issues, Issue{
				CaseNo: rec.CaseNo,
				Vendor: rec.Vendor,
				Kind:   IssueInvalidDate,
				Detail: fmt.Sprintf("unparseable date in %v", rec.InvalidColumns),
			})
		case rec.FlowCode == CodeUnknown:
			issues = append(issues, Issue{
				CaseNo: rec.CaseNo,
				Vendor: rec.Vendor,
				Kind:   IssueUnknownCode,
				Detail: "status location does not reconcile with dated columns",
			})
		}
		if rec.FlowCode == CodeUnknown {
			stats.Unknown++
		}
		out = append(out, rec)
	}

	if logger != nil {
		for _, issue := range issues {
			logger.Warn("record flagged for review",
				slog.String("case", issue.CaseNo),
				slog.String("vendor", string(issue.Vendor)),
				slog.String("kind", issue.Kind),
				slog.String("detail", issue.Detail))
		}
	}
	return out, stats, issues
}

// clearOtherWarehouses nulls every non-final warehouse date so aggregation
// never counts the same package as resident in two warehouses.
func clearOtherWarehouses(rec *Record, final string) {
	kept := make(map[string]time.Time, 1)
	if d, ok := rec.WarehouseDates[final]; ok {
		kept[final] = d
	}
	rec.WarehouseDates = kept
}

// finalLocation derives the single display location for an annotated record.
func finalLocation(rec Record, cfg Config) string {
	switch rec.FlowCode {
	case CodeWarehouseIn, CodeWarehouseStocked:
		if name, ok := ChooseFinalWarehouse(rec, cfg); ok {
			return name
		}
	case CodeSitePending:
		if name, _, ok := earliestSite(rec); ok {
			return name
		}
	case CodeSiteCompleted, CodeSiteDirect:
		if name, _, ok := latestSite(rec); ok {
			return name
		}
	case CodeTransit:
		if name, ok := latestTransit(rec); ok {
			return name
		}
	case CodePreArrival:
		return CodePreArrival.Description()
	}
	return CodeUnknown.Description()
}

// latestTransit picks the transit marker with the most recent date.
func latestTransit(rec Record) (string, bool) {
	var (
		bestName string
		best     time.Time
		found    bool
	)
	for name, date := range rec.TransitDates {
		if !IsPresent(date) {
			continue
		}
		if !found || date.After(best) || (date.Equal(best) && name < bestName) {
			bestName, best, found = name, date, true
		}
	}
	return bestName, found
}
