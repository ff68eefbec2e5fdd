package report

import (
	"time"

	"github.com/meridian-logistics/meridian/internal/flow"
	"github.com/meridian-logistics/meridian/internal/shared"
)

// AggregateSiteMonthly builds the Month × Site table. Inbound counts a
// shipment once, at its chronologically-first site arrival; inventory is a
// snapshot tally of the status location column, independent of any date.
func AggregateSiteMonthly(records []flow.Record, months []shared.Month, sites []string) (SiteTable, error) {
	if len(months) == 0 {
		return SiteTable{}, ErrNoMonths
	}
	table := SiteTable{Months: monthTokens(months)}

	for _, site := range sites {
		inventory := 0
		for _, rec := range records {
			if flow.SameLabel(rec.CurrentStatusLocation, site) {
				inventory++
			}
		}
		for _, month := range months {
			row := SiteRow{Site: site, Month: month.String(), Inventory: inventory}
			for _, rec := range records {
				arrival, ok := firstSiteArrival(rec, site)
				if ok && month.Contains(arrival) {
					row.Inbound++
				}
			}
			table.Rows = append(table.Rows, row)
		}
	}
	return table, nil
}

// firstSiteArrival reports the arrival date at site if, and only if, it is
// the record's first site arrival. A package that later moves site-to-site is
// attributed to its first site only.
func firstSiteArrival(rec flow.Record, site string) (time.Time, bool) {
	date, ok := rec.SiteDates[site]
	if !ok || !flow.IsPresent(date) {
		return time.Time{}, false
	}
	for other, otherDate := range rec.SiteDates {
		if other == site || !flow.IsPresent(otherDate) {
			continue
		}
		if !otherDate.After(date) {
			return time.Time{}, false
		}
	}
	return date, true
}
