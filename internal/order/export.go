package order

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"
)

var exportHeader = []string{
	"order_id", "created_at", "status", "sku", "product", "quantity", "unit_price", "license_key",
}

// ExportCSV writes the order history as CSV, one row per delivered license
// key. Lines whose keys have not been delivered yet get a single row with an
// empty license_key column.
func ExportCSV(w io.Writer, orders []Order) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("failed to write export header: %w", err)
	}

	for _, o := range orders {
		for _, line := range o.Lines {
			keys := line.LicenseKeys
			if len(keys) == 0 {
				keys = []string{""}
			}
			for _, key := range keys {
				record := []string{
					o.ID,
					o.CreatedAt.Format(time.RFC3339),
					o.Status,
					line.SKU,
					line.ProductName,
					fmt.Sprintf("%d", line.Quantity),
					line.UnitPrice.StringFixed(2),
					key,
				}
				if err := cw.Write(record); err != nil {
					return fmt.Errorf("failed to write export row: %w", err)
				}
			}
		}
	}

	cw.Flush()
	return cw.Error()
}
