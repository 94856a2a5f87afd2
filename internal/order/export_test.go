package order

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportCSV(t *testing.T) {
	createdAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	orders := []Order{
		{
			ID:        "ord-1",
			Status:    "completed",
			CreatedAt: createdAt,
			Lines: []OrderLine{
				{
					ProductID:   "P1",
					ProductName: "Office Suite",
					SKU:         "OFF-1",
					Quantity:    2,
					UnitPrice:   decimal.RequireFromString("10"),
					LicenseKeys: []string{"AAAA-BBBB", "CCCC-DDDD"},
				},
				{
					ProductID:   "P2",
					ProductName: "VPN",
					SKU:         "VPN-1",
					Quantity:    1,
					UnitPrice:   decimal.RequireFromString("5.5"),
				},
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, ExportCSV(&buf, orders))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)

	// Header + one row per key + one row for the keyless line.
	require.Len(t, records, 4)
	assert.Equal(t, exportHeader, records[0])
	assert.Equal(t, []string{"ord-1", "2026-08-01T12:00:00Z", "completed", "OFF-1", "Office Suite", "2", "10.00", "AAAA-BBBB"}, records[1])
	assert.Equal(t, "CCCC-DDDD", records[2][7])
	assert.Equal(t, "", records[3][7])
	assert.Equal(t, "5.50", records[3][6])
}

func TestExportCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportCSV(&buf, nil))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
