package ingest

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/openvehiclelab/evedb/pkg/eveddb"
	"github.com/openvehiclelab/evedb/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func signalHeader() string {
	names := make([]string, len(signalColumns))
	for i, col := range signalColumns {
		names[i] = col.name
	}
	return strings.Join(names, ",")
}

// signalRow builds a CSV line with the named columns set and everything
// else empty.
func signalRow(t *testing.T, values map[string]string) string {
	t.Helper()
	fields := make([]string, len(signalColumns))
	for name := range values {
		found := false
		for i, col := range signalColumns {
			if col.name == name {
				fields[i] = values[name]
				found = true
			}
		}
		require.True(t, found, "unknown column %q", name)
	}
	return strings.Join(fields, ",")
}

func writeArchive(t *testing.T, members map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "eved.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, content := range members {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func openTestDb(t *testing.T) *eveddb.Db {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "eved.sqlite"), 2)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return eveddb.New(store)
}

func TestSignalIngestion(t *testing.T) {
	db := openTestDb(t)
	ctx := context.Background()

	rows := []string{
		signalHeader(),
		signalRow(t, map[string]string{
			"DayNum": "1.5", "VehId": "10", "Trip": "706", "Timestamp(ms)": "0",
			"Latitude[deg]": "42.2808", "Longitude[deg]": "-83.7430",
			"Matchted Latitude[deg]": "42.280826", "Matched Longitude[deg]": "-83.743303",
			"Match Type": "1",
		}),
		// Missing matched coordinate: cell must be the sentinel, row kept.
		signalRow(t, map[string]string{
			"DayNum": "1.5", "VehId": "10", "Trip": "706", "Timestamp(ms)": "1000",
			"Latitude[deg]": "42.2810", "Longitude[deg]": "-83.7432",
			"Match Type": "0",
		}),
	}
	// Stray semicolons must be stripped before parsing.
	content := strings.ReplaceAll(strings.Join(rows, "\n"), "42.2810", "42.28;10")
	archive := writeArchive(t, map[string]string{"VehId_10.csv": content})

	ing := NewSignalIngestor(db, zap.NewNop(), 100)
	require.NoError(t, ing.Run(ctx, archive))

	count, err := db.Store().QueryScalar(ctx, "SELECT COUNT(*) FROM signal")
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	cell, err := db.Store().QueryScalar(ctx, "SELECT h3_cell FROM signal WHERE time_stamp = 0")
	require.NoError(t, err)
	assert.NotEqualValues(t, 0, cell)

	cell, err = db.Store().QueryScalar(ctx, "SELECT h3_cell FROM signal WHERE time_stamp = 1000")
	require.NoError(t, err)
	assert.EqualValues(t, 0, cell)

	lat, err := db.Store().QueryScalar(ctx, "SELECT latitude FROM signal WHERE time_stamp = 1000")
	require.NoError(t, err)
	assert.InDelta(t, 42.2810, lat.(float64), 1e-9)
}

func TestSignalIngestionSkipsWhenTableExists(t *testing.T) {
	db := openTestDb(t)
	ctx := context.Background()

	content := signalHeader() + "\n" + signalRow(t, map[string]string{
		"DayNum": "1.0", "VehId": "8", "Trip": "4", "Timestamp(ms)": "0",
		"Match Type": "0",
	})
	archive := writeArchive(t, map[string]string{"VehId_8.csv": content})

	ing := NewSignalIngestor(db, zap.NewNop(), 100)
	require.NoError(t, ing.Run(ctx, archive))
	require.NoError(t, ing.Run(ctx, archive)) // second run is a no-op

	count, err := db.Store().QueryScalar(ctx, "SELECT COUNT(*) FROM signal")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestSignalIngestionTypeMismatchIsFatalForFile(t *testing.T) {
	db := openTestDb(t)
	ctx := context.Background()

	content := signalHeader() + "\n" + signalRow(t, map[string]string{
		"DayNum": "1.0", "VehId": "not-a-number", "Trip": "4", "Timestamp(ms)": "0",
		"Match Type": "0",
	})
	archive := writeArchive(t, map[string]string{"VehId_bad.csv": content})

	ing := NewSignalIngestor(db, zap.NewNop(), 100)
	err := ing.Run(ctx, archive)
	require.Error(t, err)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "VehId", parseErr.Column)
	assert.Equal(t, 2, parseErr.Line)
}

func TestSignalIngestionRejectsUnknownHeader(t *testing.T) {
	db := openTestDb(t)

	content := "foo,bar\n1,2"
	archive := writeArchive(t, map[string]string{"VehId_x.csv": content})

	ing := NewSignalIngestor(db, zap.NewNop(), 100)
	err := ing.Run(context.Background(), archive)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}
