// Package result shapes the heterogeneous outcome of a SQL execution into
// one canonical form, so rendering code never touches driver specifics.
package result

import (
	"fmt"
	"strconv"
	"time"

	"github.com/sqlynx/sqlynx/internal/database"
)

// Metadata describes how a result should be presented.
type Metadata struct {
	// IsVisualizable is true when the result has more than one column or
	// more than one row.
	IsVisualizable bool `json:"is_visualizable"`
	// IsSingleValue is true when exactly one column and one row came back.
	// The two flags are independent: a zero-row result is neither.
	IsSingleValue bool `json:"is_single_value"`
	// Error holds the database error message; empty on success.
	Error string `json:"error,omitempty"`
}

// QueryResult is the canonical outcome of one SQL execution. It is built
// fresh per execution and never mutated after being returned.
//
// Invariant: Error is non-empty exactly when Columns and Rows are empty and
// both flags are false.
type QueryResult struct {
	Columns  []string      `json:"columns"`
	Rows     [][]any       `json:"rows"`
	Metadata Metadata      `json:"metadata"`
	Duration time.Duration `json:"-"`
}

// Failed reports whether the result carries a database error.
func (r *QueryResult) Failed() bool {
	return r.Metadata.Error != ""
}

// Normalize converts a raw driver outcome into the canonical shape. It is a
// pure transformation: the input is not retained or modified.
func Normalize(raw *database.RawRows) *QueryResult {
	columns := make([]string, len(raw.Columns))
	copy(columns, raw.Columns)

	rows := make([][]any, len(raw.Rows))
	for i, row := range raw.Rows {
		out := make([]any, len(row))
		for j, v := range row {
			out[j] = coerceScalar(v)
		}
		rows[i] = out
	}

	return &QueryResult{
		Columns: columns,
		Rows:    rows,
		Metadata: Metadata{
			IsVisualizable: len(columns) > 1 || len(rows) > 1,
			IsSingleValue:  len(columns) == 1 && len(rows) == 1,
		},
		Duration: raw.Duration,
	}
}

// NormalizeError converts a database-reported failure into the canonical
// shape: empty columns and rows, both flags false, the driver's message in
// the error field.
func NormalizeError(err error) *QueryResult {
	return &QueryResult{
		Columns:  []string{},
		Rows:     [][]any{},
		Metadata: Metadata{Error: err.Error()},
	}
}

// coerceScalar maps a driver value onto the stable scalar set: string,
// int64 or float64. NULL becomes the string "NULL"; values outside the set
// are stringified.
func coerceScalar(v any) any {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case string:
		return x
	case []byte:
		return string(x)
	case int64:
		return x
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case int16:
		return int64(x)
	case int8:
		return int64(x)
	case uint64:
		if x > 1<<62 {
			return strconv.FormatUint(x, 10)
		}
		return int64(x)
	case uint32:
		return int64(x)
	case float64:
		return x
	case float32:
		return float64(x)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", x)
	}
}

// FormatCell renders a normalized scalar for display or export.
func FormatCell(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", x)
	}
}
