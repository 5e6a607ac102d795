package database

import "context"

// Driver defines the interface for database operations.
//
// Connect must verify liveness eagerly: a nil error means the handle is
// immediately usable, so callers never see connection-level failures on the
// first query. Close is idempotent.
type Driver interface {
	// Connect establishes a connection to the database and pings it.
	Connect(ctx context.Context, dsn string) error

	// Close closes the database connection.
	Close() error

	// Ping checks if the connection is alive.
	Ping(ctx context.Context) error

	// ListTables returns all user tables in the current database.
	ListTables(ctx context.Context) ([]Table, error)

	// GetColumns returns all columns for a table.
	GetColumns(ctx context.Context, schema, table string) ([]Column, error)

	// GetTableRowCount returns the approximate row count for a table.
	GetTableRowCount(ctx context.Context, schema, table string) (int64, error)

	// ExecuteQuery runs a SQL statement and returns the raw outcome. The
	// caller's context passes through untouched: no deadline is added here.
	ExecuteQuery(ctx context.Context, query string) (*RawRows, error)

	// DatabaseName returns the name of the connected database.
	DatabaseName() string
}
