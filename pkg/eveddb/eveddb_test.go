package eveddb

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/openvehiclelab/evedb/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDb(t *testing.T) *Db {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "eved.sqlite"), 1)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return New(store)
}

// signalRow builds a full insert row with only the columns the trajectory
// stages read populated.
func signalRow(dayNum float64, vehicleID, tripID, timeStamp int64, lat, lon float64) []any {
	row := make([]any, 36)
	row[0] = dayNum
	row[1] = vehicleID
	row[2] = tripID
	row[3] = timeStamp
	row[4] = lat
	row[5] = lon
	row[26] = lat
	row[27] = lon
	return row
}

func TestCreateTrajectoriesDerivesDistinctTrips(t *testing.T) {
	db := openTestDb(t)
	ctx := context.Background()

	require.NoError(t, db.CreateSignalTable(ctx))
	require.NoError(t, db.InsertSignals(ctx, [][]any{
		signalRow(1, 10, 100, 0, 42.28, -83.74),
		signalRow(1, 10, 100, 1000, 42.29, -83.74),
		signalRow(1, 10, 200, 0, 42.30, -83.75),
		signalRow(1, 20, 100, 0, 42.31, -83.76),
	}, storage.DefaultBatchSize))
	require.NoError(t, db.CreateTrajectories(ctx))

	ids, err := db.TrajectoryIDs(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 3)

	trajectories, err := db.Trajectories(ctx)
	require.NoError(t, err)
	require.Len(t, trajectories, 3)
	assert.Equal(t, int64(10), trajectories[0].VehicleID)
	assert.Equal(t, int64(100), trajectories[0].TripID)
	assert.Equal(t, int64(200), trajectories[1].TripID)
	assert.Equal(t, int64(20), trajectories[2].VehicleID)
	assert.False(t, trajectories[0].LengthM.Valid)
}

func TestUpdateTrajectoriesAndKm(t *testing.T) {
	db := openTestDb(t)
	ctx := context.Background()

	require.NoError(t, db.CreateSignalTable(ctx))
	require.NoError(t, db.InsertSignals(ctx, [][]any{
		signalRow(1, 10, 100, 0, 42.28, -83.74),
	}, storage.DefaultBatchSize))
	require.NoError(t, db.CreateTrajectories(ctx))

	require.NoError(t, db.UpdateTrajectories(ctx, [][]any{
		{12345.6, 900.0, "2017-11-01 08:00:00", "2017-11-01 08:15:00",
			int64(631052081049769983), int64(631052081049770495), int64(1)},
	}, storage.DefaultBatchSize))

	got, err := db.Trajectory(ctx, 1)
	require.NoError(t, err)
	assert.InDelta(t, 12345.6, got.LengthM.Float64, 1e-9)
	assert.InDelta(t, 900.0, got.DurationS.Float64, 1e-9)
	assert.Equal(t, "2017-11-01 08:00:00", got.DtIni.String)
	assert.InDelta(t, 12.3, got.Km.Float64, 1e-9)

	_, err = db.Trajectory(ctx, 999)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestTracePointsDeduplicateAndOrder(t *testing.T) {
	db := openTestDb(t)
	ctx := context.Background()

	require.NoError(t, db.CreateSignalTable(ctx))
	require.NoError(t, db.InsertSignals(ctx, [][]any{
		signalRow(1, 10, 100, 0, 42.28, -83.74),
		signalRow(1, 10, 100, 1000, 42.28, -83.74), // stationary duplicate
		signalRow(1, 10, 100, 2000, 42.29, -83.75),
	}, storage.DefaultBatchSize))
	require.NoError(t, db.CreateTrajectories(ctx))

	points, err := db.TracePoints(ctx, 1)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.InDelta(t, 42.28, points[0].Lat, 1e-9)
	assert.Equal(t, int64(0), points[0].Time)
	assert.Equal(t, int64(2), points[1].Time) // milliseconds become seconds
}

func TestNodeRoundTrip(t *testing.T) {
	db := openTestDb(t)
	ctx := context.Background()

	require.NoError(t, db.CreateNodeTable(ctx))
	require.NoError(t, db.InsertNodes(ctx, []Node{
		{TrajID: 1, Lat: 42.28, Lon: -83.74, Cell: 631052081049769983},
		{TrajID: 1, Lat: 42.29, Lon: -83.75, Cell: 631052081049770495},
	}, storage.DefaultBatchSize))
	require.NoError(t, db.InsertNodeError(ctx, 2, "no suitable edges near location"))

	matched, err := db.TrajectoryNodes(ctx, 1)
	require.NoError(t, err)
	require.Len(t, matched, 2)
	assert.False(t, matched[0].MatchError.Valid)
	assert.InDelta(t, 42.28, matched[0].Lat, 1e-9)

	failed, err := db.TrajectoryNodes(ctx, 2)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.True(t, failed[0].MatchError.Valid)
	assert.Contains(t, failed[0].MatchError.String, "no suitable edges")
	assert.True(t, math.IsNaN(failed[0].Lat))

	require.NoError(t, db.TruncateNodes(ctx))
	none, err := db.TrajectoryNodes(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, none)
}
