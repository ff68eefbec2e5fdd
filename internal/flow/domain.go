// Package flow derives a per-shipment flow code (its routing pattern through
// warehouses, offshore transit and final sites) from date-stamped location
// columns, and prepares the stay windows the monthly aggregation consumes.
package flow

import (
	"errors"
	"time"
)

// Vendor tags the source workbook a record was loaded from.
type Vendor string

const (
	// VendorHitachi marks rows from the HITACHI vendor file.
	VendorHitachi Vendor = "HITACHI"
	// VendorSimense marks rows from the SIMENSE vendor file.
	VendorSimense Vendor = "SIMENSE"
)

// FlowCode enumerates shipment lifecycle stages. Exactly one code is assigned
// per record.
type FlowCode int

const (
	// CodePreArrival means no location column carries a date yet.
	CodePreArrival FlowCode = 0
	// CodeTransit means only an offshore/shifting marker is present.
	CodeTransit FlowCode = 1
	// CodeWarehouseIn means the shipment arrived at a warehouse but the
	// status location points elsewhere.
	CodeWarehouseIn FlowCode = 2
	// CodeWarehouseStocked means the shipment is resident at its final
	// warehouse.
	CodeWarehouseStocked FlowCode = 3
	// CodeSitePending means the shipment left its warehouse for a site but
	// has not been confirmed there.
	CodeSitePending FlowCode = 4
	// CodeSiteCompleted means the warehouse-to-site movement finished.
	CodeSiteCompleted FlowCode = 5
	// CodeSiteDirect means the shipment reached a site with no warehouse stay.
	CodeSiteDirect FlowCode = 6
	// CodeUnknown flags a record that needs manual review. It must never be
	// folded into CodePreArrival.
	CodeUnknown FlowCode = 7
)

var flowDescriptions = map[FlowCode]string{
	CodePreArrival:       "Pre Arrival",
	CodeTransit:          "Port / Transit",
	CodeWarehouseIn:      "Warehouse In",
	CodeWarehouseStocked: "Warehouse Stocked",
	CodeSitePending:      "Warehouse to Site Pending",
	CodeSiteCompleted:    "Warehouse to Site Completed",
	CodeSiteDirect:       "Site Direct",
	CodeUnknown:          "Unknown / Review",
}

// Description returns the human label for the code.
func (c FlowCode) Description() string {
	if d, ok := flowDescriptions[c]; ok {
		return d
	}
	return flowDescriptions[CodeUnknown]
}

// Valid reports whether c belongs to the closed enumeration.
func (c FlowCode) Valid() bool {
	_, ok := flowDescriptions[c]
	return ok
}

// StayWindow pairs a warehouse arrival with the departure inferred from the
// next recorded location. A nil Out means the shipment is still resident.
type StayWindow struct {
	In  time.Time
	Out *time.Time
}

// Record is one spreadsheet row: a single physical package or shipment.
// Location date maps only hold parsed, present values; use IsPresent for any
// raw cell checks.
type Record struct {
	CaseNo                string
	Vendor                Vendor
	PackageQuantity       int
	AreaSqm               *float64
	CurrentStatusLocation string

	WarehouseDates map[string]time.Time
	TransitDates   map[string]time.Time
	SiteDates      map[string]time.Time

	// InvalidColumns lists populated location cells whose date failed to
	// parse. Any entry forces CodeUnknown.
	InvalidColumns []string

	// Derived by Annotate.
	FlowCode        FlowCode
	FlowDescription string
	FinalLocation   string
	Stays           map[string]StayWindow
}

// ErrNoWarehouse is returned by operations that require a warehouse stay.
var ErrNoWarehouse = errors.New("flow: record has no warehouse date")

// Quantity returns the package quantity, defaulting to one package when the
// cell was missing or invalid.
func (r Record) Quantity() int {
	if r.PackageQuantity < 1 {
		return 1
	}
	return r.PackageQuantity
}

// Clone returns a deep copy. Pipeline stages never mutate their input batch.
func (r Record) Clone() Record {
	out := r
	out.WarehouseDates = cloneDates(r.WarehouseDates)
	out.TransitDates = cloneDates(r.TransitDates)
	out.SiteDates = cloneDates(r.SiteDates)
	if r.InvalidColumns != nil {
		out.InvalidColumns = append([]string(nil), r.InvalidColumns...)
	}
	if r.AreaSqm != nil {
		area := *r.AreaSqm
		out.AreaSqm = &area
	}
	if r.Stays != nil {
		out.Stays = make(map[string]StayWindow, len(r.Stays))
		for name, stay := range r.Stays {
			if stay.Out != nil {
				o := *stay.Out
				stay.Out = &o
			}
			out.Stays[name] = stay
		}
	}
	return out
}

func cloneDates(m map[string]time.Time) map[string]time.Time {
	if m == nil {
		return nil
	}
	out := make(map[string]time.Time, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
