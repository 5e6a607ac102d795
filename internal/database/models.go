package database

import "time"

// Table identifies a table within a schema.
type Table struct {
	Schema string
	Name   string
}

// Column represents a table column with its metadata.
type Column struct {
	Name       string
	DataType   string
	IsNullable bool
	IsPrimary  bool
	OrdinalPos int
}

// RawRows is the unnormalized outcome of a successful SQL execution: ordered
// column names plus one tuple per returned row, values as the driver
// produced them.
type RawRows struct {
	Columns  []string
	Rows     [][]any
	Duration time.Duration
}
