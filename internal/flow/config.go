package flow

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// UnknownPriority is assigned to warehouses missing from the priority table.
// It must lose every tie-break.
const UnknownPriority = 99

// Config carries the location schema and tie-break rules for a dataset.
// Behaviour differences between report revisions are expressed here as data,
// never as competing classifier implementations.
type Config struct {
	// Warehouses lists warehouse column names in report display order.
	Warehouses []string
	// Sites lists final site column names.
	Sites []string
	// Transits lists offshore/shifting marker columns. Transit dates never
	// count as a warehouse stay.
	Transits []string
	// Priority maps warehouse name to its same-day tie-break rank.
	// Lower wins.
	Priority map[string]int
}

// DefaultConfig returns the schema used by the standard vendor workbooks.
func DefaultConfig() Config {
	return Config{
		Warehouses: []string{
			"DSV Al Markaz",
			"DSV Indoor",
			"DSV Outdoor",
			"DSV MZP",
			"Hauler Indoor",
			"AAA Storage",
			"Unknown",
		},
		Sites:    []string{"AGI", "DAS", "MIR", "SHU"},
		Transits: []string{"MOSB", "Shifting"},
		Priority: map[string]int{
			"DSV Al Markaz": 1,
			"DSV Indoor":    2,
			"DSV Outdoor":   3,
			"DSV MZP":       4,
			"Hauler Indoor": 5,
			"AAA Storage":   6,
			"Unknown":       UnknownPriority,
		},
	}
}

// PriorityFor returns the tie-break rank for a warehouse name.
func (c Config) PriorityFor(name string) int {
	if p, ok := c.Priority[name]; ok {
		return p
	}
	return UnknownPriority
}

// IsSite reports whether label names a configured site.
func (c Config) IsSite(label string) bool {
	return containsLabel(c.Sites, label)
}

// IsWarehouse reports whether label names a configured warehouse.
func (c Config) IsWarehouse(label string) bool {
	return containsLabel(c.Warehouses, label)
}

func containsLabel(names []string, label string) bool {
	key := CanonicalLabel(label)
	for _, n := range names {
		if CanonicalLabel(n) == key {
			return true
		}
	}
	return false
}

// CanonicalLabel normalises a location label for comparison. Vendor sheets mix
// unicode widths and stray whitespace in header and status cells.
func CanonicalLabel(s string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFKC.String(s)))
}

// SameLabel compares two location labels after canonicalisation.
func SameLabel(a, b string) bool {
	return CanonicalLabel(a) == CanonicalLabel(b)
}
