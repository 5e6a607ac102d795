package mysql

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

func newSQLMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func assertSQLMock(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sql expectations: %v", err)
	}
}

func TestExecuteQueryReturnsColumnsAndRows(t *testing.T) {
	db, mock := newSQLMock(t)
	d := NewWithDB(db, "sales")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT region, total FROM revenue")).
		WillReturnRows(sqlmock.NewRows([]string{"region", "total"}).
			AddRow("emea", int64(1200)).
			AddRow("apac", int64(3400)))

	raw, err := d.ExecuteQuery(context.Background(), "SELECT region, total FROM revenue")
	if err != nil {
		t.Fatalf("ExecuteQuery() error = %v", err)
	}
	if len(raw.Columns) != 2 || raw.Columns[0] != "region" || raw.Columns[1] != "total" {
		t.Fatalf("Columns = %v", raw.Columns)
	}
	if len(raw.Rows) != 2 {
		t.Fatalf("Rows = %d, want 2", len(raw.Rows))
	}
	if raw.Rows[1][0] != "apac" {
		t.Fatalf("Rows[1][0] = %v", raw.Rows[1][0])
	}
	assertSQLMock(t, mock)
}

func TestExecuteQueryPropagatesDriverError(t *testing.T) {
	db, mock := newSQLMock(t)
	d := NewWithDB(db, "sales")

	driverErr := errors.New("Unknown column 'regoin' in 'field list'")
	mock.ExpectQuery("SELECT regoin FROM revenue").WillReturnError(driverErr)

	_, err := d.ExecuteQuery(context.Background(), "SELECT regoin FROM revenue")
	if !errors.Is(err, driverErr) {
		t.Fatalf("ExecuteQuery() error = %v, want the driver error unchanged", err)
	}
	assertSQLMock(t, mock)
}

func TestExecuteQueryEmptyResult(t *testing.T) {
	db, mock := newSQLMock(t)
	d := NewWithDB(db, "sales")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM empty_table")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	raw, err := d.ExecuteQuery(context.Background(), "SELECT id FROM empty_table")
	if err != nil {
		t.Fatalf("ExecuteQuery() error = %v", err)
	}
	if len(raw.Columns) != 1 {
		t.Fatalf("Columns = %v", raw.Columns)
	}
	if len(raw.Rows) != 0 {
		t.Fatalf("Rows = %d, want 0", len(raw.Rows))
	}
	assertSQLMock(t, mock)
}

func TestListTables(t *testing.T) {
	db, mock := newSQLMock(t)
	d := NewWithDB(db, "sales")

	mock.ExpectQuery("SELECT table_schema, table_name").
		WillReturnRows(sqlmock.NewRows([]string{"table_schema", "table_name"}).
			AddRow("sales", "customers").
			AddRow("sales", "orders"))

	tables, err := d.ListTables(context.Background())
	if err != nil {
		t.Fatalf("ListTables() error = %v", err)
	}
	if len(tables) != 2 || tables[0].Name != "customers" || tables[1].Name != "orders" {
		t.Fatalf("tables = %+v", tables)
	}
	assertSQLMock(t, mock)
}

func TestGetColumns(t *testing.T) {
	db, mock := newSQLMock(t)
	d := NewWithDB(db, "sales")

	mock.ExpectQuery("SELECT").
		WithArgs("sales", "orders").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "data_type", "is_nullable", "ordinal_position", "is_primary"}).
			AddRow("id", "bigint", "NO", 1, true).
			AddRow("amount", "decimal", "YES", 2, false))

	cols, err := d.GetColumns(context.Background(), "sales", "orders")
	if err != nil {
		t.Fatalf("GetColumns() error = %v", err)
	}
	if len(cols) != 2 {
		t.Fatalf("cols = %+v", cols)
	}
	if !cols[0].IsPrimary || cols[0].IsNullable {
		t.Fatalf("cols[0] = %+v", cols[0])
	}
	if cols[1].IsPrimary || !cols[1].IsNullable {
		t.Fatalf("cols[1] = %+v", cols[1])
	}
	assertSQLMock(t, mock)
}

func TestCloseIdempotent(t *testing.T) {
	db, mock := newSQLMock(t)
	d := NewWithDB(db, "sales")
	mock.ExpectClose()

	if err := d.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	assertSQLMock(t, mock)
}
