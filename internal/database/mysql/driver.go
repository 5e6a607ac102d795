package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/sqlynx/sqlynx/internal/database"
)

// Driver implements the database.Driver interface for MySQL on top of
// database/sql.
type Driver struct {
	db     *sql.DB
	dbName string
}

// New creates a new MySQL driver.
func New() *Driver {
	return &Driver{}
}

// NewWithDB wraps an existing handle. Used by tests and by callers that
// manage their own pool.
func NewWithDB(db *sql.DB, dbName string) *Driver {
	return &Driver{db: db, dbName: dbName}
}

// Connect opens a connection pool to MySQL and verifies it with an eager
// ping.
func (d *Driver) Connect(ctx context.Context, dsn string) error {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(10 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("ping: %w", err)
	}

	d.db = db
	if err := db.QueryRowContext(ctx, "SELECT DATABASE()").Scan(&d.dbName); err != nil {
		d.dbName = ""
	}
	return nil
}

// Close closes the connection pool.
func (d *Driver) Close() error {
	if d.db == nil {
		return nil
	}
	err := d.db.Close()
	d.db = nil
	return err
}

// Ping checks if the connection is alive.
func (d *Driver) Ping(ctx context.Context) error {
	if d.db == nil {
		return fmt.Errorf("not connected")
	}
	return d.db.PingContext(ctx)
}

// ListTables returns all base tables in the connected database.
func (d *Driver) ListTables(ctx context.Context) ([]database.Table, error) {
	rows, err := d.db.QueryContext(ctx, queryListTables)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var tables []database.Table
	for rows.Next() {
		var t database.Table
		if err := rows.Scan(&t.Schema, &t.Name); err != nil {
			return nil, fmt.Errorf("scan table: %w", err)
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

// GetColumns returns column metadata for a table.
func (d *Driver) GetColumns(ctx context.Context, schema, table string) ([]database.Column, error) {
	rows, err := d.db.QueryContext(ctx, queryGetColumns, schema, table)
	if err != nil {
		return nil, fmt.Errorf("get columns: %w", err)
	}
	defer rows.Close()

	var columns []database.Column
	for rows.Next() {
		var col database.Column
		var nullable string
		if err := rows.Scan(&col.Name, &col.DataType, &nullable, &col.OrdinalPos, &col.IsPrimary); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		col.IsNullable = nullable == "YES"
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

// GetTableRowCount returns the approximate row count from table statistics.
func (d *Driver) GetTableRowCount(ctx context.Context, schema, table string) (int64, error) {
	var count int64
	err := d.db.QueryRowContext(ctx, queryTableRowCount, schema, table).Scan(&count)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("row count: %w", err)
	}
	return count, nil
}

// ExecuteQuery runs a SQL statement and returns the raw outcome.
func (d *Driver) ExecuteQuery(ctx context.Context, query string) (*database.RawRows, error) {
	start := time.Now()

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	var resultRows [][]any
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		resultRows = append(resultRows, values)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &database.RawRows{
		Columns:  columns,
		Rows:     resultRows,
		Duration: time.Since(start),
	}, nil
}

// DatabaseName returns the name of the connected database.
func (d *Driver) DatabaseName() string {
	return d.dbName
}
