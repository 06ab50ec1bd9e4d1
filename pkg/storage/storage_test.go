package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.sqlite"), 2)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestTableExists(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	exists, err := db.TableExists(ctx, "sample")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, db.Execute(ctx, "CREATE TABLE sample (id INTEGER PRIMARY KEY, v TEXT)"))

	exists, err = db.TableExists(ctx, "sample")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestTableHasColumn(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.Execute(ctx, "CREATE TABLE sample (id INTEGER PRIMARY KEY, v TEXT)"))

	has, err := db.TableHasColumn(ctx, "sample", "v")
	require.NoError(t, err)
	assert.True(t, has)

	has, err = db.TableHasColumn(ctx, "sample", "missing")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestExecuteManyCommitsWholeBatch(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.Execute(ctx, "CREATE TABLE sample (id INTEGER PRIMARY KEY, v TEXT)"))

	rows := make([][]any, 0, 25)
	for i := 0; i < 25; i++ {
		rows = append(rows, []any{i, "value"})
	}
	// batchSize far below len(rows) to exercise chunking inside one tx.
	require.NoError(t, db.ExecuteMany(ctx, "INSERT INTO sample (id, v) VALUES (?, ?)", rows, 10))

	count, err := db.QueryScalar(ctx, "SELECT COUNT(*) FROM sample")
	require.NoError(t, err)
	assert.EqualValues(t, 25, count)
}

func TestExecuteManyRollsBackOnFailure(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.Execute(ctx, "CREATE TABLE sample (id INTEGER PRIMARY KEY, v TEXT)"))

	rows := [][]any{
		{1, "a"},
		{2, "b"},
		{2, "duplicate key"}, // fails the primary key constraint mid-batch
		{3, "c"},
	}
	err := db.ExecuteMany(ctx, "INSERT INTO sample (id, v) VALUES (?, ?)", rows, 2)
	require.Error(t, err)

	// All-or-nothing: nothing from the failed call is visible.
	count, err := db.QueryScalar(ctx, "SELECT COUNT(*) FROM sample")
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}

func TestExecuteRollsBackOnFailure(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	err := db.Execute(ctx, "INSERT INTO missing_table VALUES (1)")
	require.Error(t, err)
}

func TestQueryMaterializesRows(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.Execute(ctx, "CREATE TABLE sample (id INTEGER PRIMARY KEY, v TEXT)"))
	require.NoError(t, db.ExecuteMany(ctx, "INSERT INTO sample (id, v) VALUES (?, ?)",
		[][]any{{1, "a"}, {2, "b"}}, 0))

	rows, err := db.Query(ctx, "SELECT id, v FROM sample ORDER BY id")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.EqualValues(t, 1, rows[0][0])
	assert.EqualValues(t, "b", rows[1][1])
}

func TestExecuteManyEmptyRowsIsNoop(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.ExecuteMany(context.Background(), "INSERT INTO nowhere VALUES (?)", nil, 0))
}
