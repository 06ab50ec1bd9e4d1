package ingest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func writeVehicleSheet(t *testing.T, name string, records [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	header := []any{"VehId", "VehType", "Vehicle Class", "Engine", "Transmission", "Drive Wheels", "Generalized_Weight"}
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &header))
	for i, record := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &record))
	}
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path
}

func TestVehicleLoaderConcatenatesSheets(t *testing.T) {
	db := openTestDb(t)
	ctx := context.Background()

	ice := writeVehicleSheet(t, "ice.xlsx", [][]any{
		{1, "ICE", "Car", "2.0L", "Automatic", "FWD", 4000},
		{2, "HEV", "SUV", "NO DATA", "CVT", "AWD", "NO DATA"},
	})
	ev := writeVehicleSheet(t, "ev.xlsx", [][]any{
		{3, "EV", "Car", "NO DATA", "Single Speed", "RWD", 4500},
	})

	loader := NewVehicleLoader(db, zap.NewNop())
	require.NoError(t, loader.Run(ctx, []string{ice, ev}))

	vehicles, err := db.Vehicles(ctx)
	require.NoError(t, err)
	require.Len(t, vehicles, 3)

	assert.EqualValues(t, 1, vehicles[0].VehicleID)
	assert.Equal(t, "ICE", vehicles[0].VehicleType.String)
	assert.True(t, vehicles[0].Weight.Valid)

	// NO DATA becomes NULL, not the literal string.
	assert.False(t, vehicles[1].Engine.Valid)
	assert.False(t, vehicles[1].Weight.Valid)

	assert.EqualValues(t, 3, vehicles[2].VehicleID)
}

func TestVehicleLoaderSkipsWhenTableExists(t *testing.T) {
	db := openTestDb(t)
	ctx := context.Background()

	sheet := writeVehicleSheet(t, "ice.xlsx", [][]any{
		{1, "ICE", "Car", "2.0L", "Automatic", "FWD", 4000},
	})

	loader := NewVehicleLoader(db, zap.NewNop())
	require.NoError(t, loader.Run(ctx, []string{sheet}))
	require.NoError(t, loader.Run(ctx, []string{sheet}))

	vehicles, err := db.Vehicles(ctx)
	require.NoError(t, err)
	assert.Len(t, vehicles, 1)
}
