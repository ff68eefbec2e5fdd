package flow

import "github.com/meridian-logistics/meridian/internal/shared"

// Classify assigns exactly one flow code to a record. Branches are evaluated
// in fixed priority order; the first match wins.
func Classify(rec Record, cfg Config) FlowCode {
	// A populated cell that failed date parsing poisons the whole record.
	// Defaulting it to pre-arrival corrupted the code-0 count in earlier
	// revisions, so it goes to review instead.
	if len(rec.InvalidColumns) > 0 {
		return CodeUnknown
	}

	sitePresent := anyPresent(rec.SiteDates)
	finalWH, hasWarehouse := ChooseFinalWarehouse(rec, cfg)
	transitPresent := anyPresent(rec.TransitDates)

	switch {
	case sitePresent:
		return classifySited(rec, cfg, finalWH, hasWarehouse)
	case hasWarehouse:
		if SameLabel(rec.CurrentStatusLocation, finalWH) {
			return CodeWarehouseStocked
		}
		return CodeWarehouseIn
	case transitPresent:
		return CodeTransit
	case statusNamesLocation(rec, cfg):
		// The status column claims the shipment is somewhere, yet no date
		// column agrees. Review, never pre-arrival.
		return CodeUnknown
	default:
		return CodePreArrival
	}
}

// classifySited handles records with at least one site arrival.
func classifySited(rec Record, cfg Config, finalWH string, hasWarehouse bool) FlowCode {
	if !hasWarehouse {
		return CodeSiteDirect
	}
	if SameLabel(rec.CurrentStatusLocation, finalWH) {
		// Site paperwork exists but the package is still on the warehouse
		// floor according to the status column.
		return CodeWarehouseStocked
	}
	lastWHDate, ok := rec.WarehouseDates[finalWH]
	if !ok || !IsPresent(lastWHDate) {
		return CodeUnknown
	}
	_, firstSiteDate, ok := earliestSite(rec)
	if !ok {
		return CodeUnknown
	}
	statusAtSite := cfg.IsSite(rec.CurrentStatusLocation)
	if !statusAtSite && shared.TruncateToDay(firstSiteDate).After(shared.TruncateToDay(lastWHDate)) {
		return CodeSitePending
	}
	return CodeSiteCompleted
}

// statusNamesLocation reports whether the status column points at a configured
// warehouse or site.
func statusNamesLocation(rec Record, cfg Config) bool {
	if !IsPresent(rec.CurrentStatusLocation) {
		return false
	}
	return cfg.IsWarehouse(rec.CurrentStatusLocation) || cfg.IsSite(rec.CurrentStatusLocation)
}
