package nl2sql

import "context"

// TableContext describes one retrieved table for the prompt.
type TableContext struct {
	Schema   string   `json:"schema,omitempty"`
	Name     string   `json:"table_name"`
	Columns  []string `json:"columns"`
	RowCount int64    `json:"approx_rows,omitempty"`
}

// Request carries everything the generator needs to produce SQL.
type Request struct {
	Question string
	Dialect  string // scheme tag: mysql or postgresql
	Tables   []TableContext

	// Refinement context, set only on the Refine path.
	FailedSQL string
	DBError   string
}

// Result is the generated SQL plus provenance metadata.
type Result struct {
	SQL   string
	Model string
}

// Generator converts a natural-language question into SQL.
type Generator interface {
	// Generate produces SQL for a fresh question.
	Generate(ctx context.Context, req Request) (Result, error)

	// Refine regenerates SQL after a failed execution, given the failed
	// statement and the database's error message.
	Refine(ctx context.Context, req Request) (Result, error)
}
