// Package locations maintains the registry of warehouses, sites and transit
// points that drives shipment classification.
package locations

import (
	"time"
)

// Kind partitions locations into the three classes the classifier cares about.
type Kind string

const (
	KindWarehouse Kind = "warehouse"
	KindSite      Kind = "site"
	KindTransit   Kind = "transit"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindWarehouse, KindSite, KindTransit:
		return true
	}
	return false
}

// Location represents one registered location.
type Location struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name" validate:"required,min=2,max=120"`
	Kind      Kind      `json:"kind" validate:"required,oneof=warehouse site transit"`
	Priority  int       `json:"priority" validate:"gte=0,lte=999"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListFilters narrows List results.
type ListFilters struct {
	Kind   Kind
	Search string
	Active *bool
}
