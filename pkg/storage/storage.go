// Package storage is the transactional gateway to the local SQLite store.
// It hides connection lifecycle behind a fixed-size pool and exposes batch
// primitives; every statement runs inside a transaction that is rolled back
// whole on failure.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	_ "modernc.org/sqlite"
)

const (
	// DefaultPoolSize bounds the number of open connections. Exhaustion
	// blocks the caller until a connection is released.
	DefaultPoolSize = 5

	// DefaultBatchSize is the chunk size for batched statement execution.
	DefaultBatchSize = 1000
)

type DB struct {
	*sql.DB
	path string
}

// Open opens (creating if needed) the SQLite database at path with a
// bounded connection pool. WAL journaling and relaxed synchronous mode are
// applied per connection at creation: a hard crash may lose the most recent
// commits, which is acceptable because the dataset is re-derivable from the
// source extract.
func Open(path string, poolSize int) (*DB, error) {
	if poolSize <= 0 {
		poolSize = DefaultPoolSize
	}

	dsn := fmt.Sprintf("file:%s?%s", path, url.Values{
		"_pragma": []string{
			"journal_mode(WAL)",
			"synchronous(NORMAL)",
			"cache_size(10000)",
			"temp_store(MEMORY)",
			"busy_timeout(10000)",
		},
	}.Encode())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", path, err)
	}

	// database/sql is the pool: acquisition blocks when all connections are
	// checked out and release is guaranteed on every exit path.
	db.SetMaxOpenConns(poolSize)
	db.SetMaxIdleConns(poolSize)

	return &DB{DB: db, path: path}, nil
}

// Path returns the database file path.
func (d *DB) Path() string {
	return d.path
}

// Execute runs one statement inside its own transaction; on any failure the
// transaction is rolled back and the error returned.
func (d *DB) Execute(ctx context.Context, query string, args ...any) error {
	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: begin: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		tx.Rollback()
		return fmt.Errorf("storage: exec: %w", err)
	}
	return tx.Commit()
}

// ExecuteMany runs query once per row, all inside a single transaction: the
// whole rows set is one commit unit, and a failure anywhere rolls back every
// row of the call. Rows are executed through one prepared statement in
// chunks of batchSize.
func (d *DB) ExecuteMany(ctx context.Context, query string, rows [][]any, batchSize int) error {
	if len(rows) == 0 {
		return nil
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: begin: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("storage: prepare: %w", err)
	}
	defer stmt.Close()

	for start := 0; start < len(rows); start += batchSize {
		end := start + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		for _, row := range rows[start:end] {
			if _, err := stmt.ExecContext(ctx, row...); err != nil {
				tx.Rollback()
				return fmt.Errorf("storage: exec batch row: %w", err)
			}
		}
	}
	return tx.Commit()
}

// Query materializes the full result set as untyped rows. Read paths that
// want typed scans use QueryContext from the embedded *sql.DB directly;
// both return the connection to the pool when the rows are closed.
func (d *DB) Query(ctx context.Context, query string, args ...any) ([][]any, error) {
	rows, err := d.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var result [][]any
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		result = append(result, values)
	}
	return result, rows.Err()
}

// QueryScalar returns the first column of the first row.
func (d *DB) QueryScalar(ctx context.Context, query string, args ...any) (any, error) {
	var value any
	if err := d.QueryRowContext(ctx, query, args...).Scan(&value); err != nil {
		return nil, fmt.Errorf("storage: query scalar: %w", err)
	}
	return value, nil
}

// TableExists reports whether a table of the given name exists.
func (d *DB) TableExists(ctx context.Context, name string) (bool, error) {
	var count int
	err := d.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("storage: table_exists %s: %w", name, err)
	}
	return count > 0, nil
}

// TableHasColumn reports whether the table carries the named column.
func (d *DB) TableHasColumn(ctx context.Context, table, column string) (bool, error) {
	rows, err := d.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%q)", table))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			dfltValue  any
			primaryKey int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dfltValue, &primaryKey); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}
