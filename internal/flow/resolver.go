package flow

import (
	"sort"
	"time"

	"github.com/meridian-logistics/meridian/internal/shared"
)

// ChooseFinalWarehouse picks the single warehouse a multi-dated shipment is
// attributed to: latest calendar date wins, same-day ties fall to the lowest
// priority rank. The common case is a shipment logged into DSV Indoor and
// DSV Al Markaz on the same day; Al Markaz wins by convention.
func ChooseFinalWarehouse(rec Record, cfg Config) (string, bool) {
	var (
		bestName string
		bestDate time.Time
		found    bool
	)
	for name, date := range rec.WarehouseDates {
		if !IsPresent(date) {
			continue
		}
		if !found {
			bestName, bestDate, found = name, date, true
			continue
		}
		if beats(name, date, bestName, bestDate, cfg) {
			bestName, bestDate = name, date
		}
	}
	return bestName, found
}

// beats reports whether candidate (name, date) wins over the incumbent.
func beats(name string, date time.Time, bestName string, bestDate time.Time, cfg Config) bool {
	day := shared.TruncateToDay(date)
	bestDay := shared.TruncateToDay(bestDate)
	if day.After(bestDay) {
		return true
	}
	if day.Before(bestDay) {
		return false
	}
	p, bp := cfg.PriorityFor(name), cfg.PriorityFor(bestName)
	if p != bp {
		return p < bp
	}
	// Equal priority should not happen with a well-formed table; fall back to
	// name order so the resolver stays a pure function of its inputs.
	return name < bestName
}

// warehouseVisit is one (warehouse, arrival) hop in chronological order.
type warehouseVisit struct {
	Name string
	In   time.Time
}

// visitOrder returns present warehouse hops sorted by calendar day, breaking
// same-day hops by priority so the later-priority warehouse is the later hop.
func visitOrder(rec Record, cfg Config) []warehouseVisit {
	visits := make([]warehouseVisit, 0, len(rec.WarehouseDates))
	for name, date := range rec.WarehouseDates {
		if IsPresent(date) {
			visits = append(visits, warehouseVisit{Name: name, In: date})
		}
	}
	sort.Slice(visits, func(i, j int) bool {
		di, dj := shared.TruncateToDay(visits[i].In), shared.TruncateToDay(visits[j].In)
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		pi, pj := cfg.PriorityFor(visits[i].Name), cfg.PriorityFor(visits[j].Name)
		if pi != pj {
			// The tie-break winner is the final hop of the day.
			return pi > pj
		}
		return visits[i].Name < visits[j].Name
	})
	return visits
}

// deriveStays pairs each warehouse arrival with the next recorded location's
// arrival date. Without the pairing a shipment would be counted as in-stock at
// two places at once.
func deriveStays(rec Record, cfg Config) map[string]StayWindow {
	visits := visitOrder(rec, cfg)
	if len(visits) == 0 {
		return nil
	}
	stays := make(map[string]StayWindow, len(visits))
	for i, visit := range visits {
		window := StayWindow{In: visit.In}
		if i+1 < len(visits) {
			out := visits[i+1].In
			window.Out = &out
		} else if site, ok := earliestSiteAfter(rec, visit.In); ok {
			window.Out = &site
		}
		stays[visit.Name] = window
	}
	return stays
}

// earliestSiteAfter finds the first site arrival on or after t.
func earliestSiteAfter(rec Record, t time.Time) (time.Time, bool) {
	var (
		best  time.Time
		found bool
	)
	day := shared.TruncateToDay(t)
	for _, date := range rec.SiteDates {
		if !IsPresent(date) || shared.TruncateToDay(date).Before(day) {
			continue
		}
		if !found || date.Before(best) {
			best, found = date, true
		}
	}
	return best, found
}

// earliestSite returns the chronologically first site arrival.
func earliestSite(rec Record) (string, time.Time, bool) {
	var (
		bestName string
		best     time.Time
		found    bool
	)
	for name, date := range rec.SiteDates {
		if !IsPresent(date) {
			continue
		}
		if !found || date.Before(best) || (date.Equal(best) && name < bestName) {
			bestName, best, found = name, date, true
		}
	}
	return bestName, best, found
}

// latestSite returns the chronologically last site arrival.
func latestSite(rec Record) (string, time.Time, bool) {
	var (
		bestName string
		best     time.Time
		found    bool
	)
	for name, date := range rec.SiteDates {
		if !IsPresent(date) {
			continue
		}
		if !found || date.After(best) || (date.Equal(best) && name < bestName) {
			bestName, best, found = name, date, true
		}
	}
	return bestName, best, found
}
