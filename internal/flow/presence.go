package flow

import (
	"math"
	"strings"
	"time"
)

// blankTokens are cell values that spreadsheets emit for missing dates.
var blankTokens = map[string]struct{}{
	"":     {},
	"nat":  {},
	"nan":  {},
	"none": {},
}

// IsPresent is the single source of truth for "does this cell carry a real
// value". Every component must use it; ad-hoc null checks made site and
// warehouse counts silently diverge in earlier revisions of these reports.
func IsPresent(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		_, blank := blankTokens[strings.ToLower(strings.TrimSpace(val))]
		return !blank
	case *string:
		return val != nil && IsPresent(*val)
	case time.Time:
		return !val.IsZero()
	case *time.Time:
		return val != nil && IsPresent(*val)
	case float64:
		return !math.IsNaN(val)
	case *float64:
		return val != nil && IsPresent(*val)
	default:
		return true
	}
}

// HasDate reports whether a location column holds a present date.
func HasDate(dates map[string]time.Time, name string) bool {
	d, ok := dates[name]
	return ok && IsPresent(d)
}

// PresentDates filters a location column map down to present entries.
func PresentDates(dates map[string]time.Time) map[string]time.Time {
	out := make(map[string]time.Time, len(dates))
	for name, d := range dates {
		if IsPresent(d) {
			out[name] = d
		}
	}
	return out
}

// anyPresent reports whether any column in the map holds a date.
func anyPresent(dates map[string]time.Time) bool {
	for _, d := range dates {
		if IsPresent(d) {
			return true
		}
	}
	return false
}
