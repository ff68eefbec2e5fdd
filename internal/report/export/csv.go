package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/meridian-logistics/meridian/internal/report"
)

// WriteWarehouseCSV serialises the monthly warehouse stock table to CSV.
func WriteWarehouseCSV(w io.Writer, table report.WarehouseTable) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Warehouse", "Month", "Previous Stock", "Inbound", "Outbound", "Ending Stock", "Occupied Sqm"}); err != nil {
		return err
	}
	for _, row := range table.Rows {
		if err := writer.Write([]string{
			row.Warehouse,
			row.Month,
			strconv.Itoa(row.PreviousStock),
			strconv.Itoa(row.Inbound),
			strconv.Itoa(row.Outbound),
			strconv.Itoa(row.EndingStock),
			row.OccupiedSqm.String(),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteSiteCSV serialises the monthly site table to CSV.
func WriteSiteCSV(w io.Writer, table report.SiteTable) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Site", "Month", "Inbound", "Inventory"}); err != nil {
		return err
	}
	for _, row := range table.Rows {
		if err := writer.Write([]string{
			row.Site,
			row.Month,
			strconv.Itoa(row.Inbound),
			strconv.Itoa(row.Inventory),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
