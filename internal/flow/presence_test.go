package flow

import (
	"math"
	"testing"
	"time"
)

func TestIsPresent(t *testing.T) {
	now := time.Now()
	var nilTime *time.Time
	cases := []struct {
		name string
		in   any
		want bool
	}{
		{"nil", nil, false},
		{"empty string", "", false},
		{"whitespace", "   ", false},
		{"nat token", "NaT", false},
		{"nan token", "nan", false},
		{"none token", "None", false},
		{"real string", "DSV Indoor", true},
		{"zero time", time.Time{}, false},
		{"real time", now, true},
		{"nil time pointer", nilTime, false},
		{"time pointer", &now, true},
		{"nan float", math.NaN(), false},
		{"zero float", 0.0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsPresent(tc.in); got != tc.want {
				t.Fatalf("IsPresent(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestIsPresentIdempotent(t *testing.T) {
	// Re-normalising already-normalised data changes nothing.
	dates := PresentDates(map[string]time.Time{
		"DSV Indoor": time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		"DSV MZP":    {},
	})
	again := PresentDates(dates)
	if len(again) != len(dates) || len(again) != 1 {
		t.Fatalf("expected stable single present entry, got %d then %d", len(dates), len(again))
	}
}
