package result

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/sqlynx/sqlynx/internal/database"
)

// checkInvariant asserts that an error is only ever present alongside empty
// columns, empty rows and cleared flags.
func checkInvariant(t *testing.T, r *QueryResult) {
	t.Helper()
	if !r.Failed() {
		return
	}
	if len(r.Columns) != 0 || len(r.Rows) != 0 {
		t.Fatalf("failed result carries data: cols=%v rows=%v", r.Columns, r.Rows)
	}
	if r.Metadata.IsVisualizable || r.Metadata.IsSingleValue {
		t.Fatalf("failed result has flags set: %+v", r.Metadata)
	}
}

func rawRows(cols []string, rows ...[]any) *database.RawRows {
	return &database.RawRows{Columns: cols, Rows: rows}
}

func TestNormalizeMultiRowResultIsVisualizable(t *testing.T) {
	raw := rawRows([]string{"region", "year", "total"},
		[]any{"emea", int64(2023), 1.5},
		[]any{"emea", int64(2024), 2.5},
		[]any{"apac", int64(2023), 0.5},
		[]any{"apac", int64(2024), 1.0},
		[]any{"amer", int64(2024), 3.0},
	)

	r := Normalize(raw)
	if !r.Metadata.IsVisualizable {
		t.Fatal("IsVisualizable = false, want true for 3x5 result")
	}
	if r.Metadata.IsSingleValue {
		t.Fatal("IsSingleValue = true, want false for 3x5 result")
	}
	if len(r.Rows) != 5 || len(r.Columns) != 3 {
		t.Fatalf("shape = %dx%d", len(r.Columns), len(r.Rows))
	}
	checkInvariant(t, r)
}

func TestNormalizeSingleValue(t *testing.T) {
	r := Normalize(rawRows([]string{"count"}, []any{int64(42)}))
	if !r.Metadata.IsSingleValue {
		t.Fatal("IsSingleValue = false, want true for 1x1 result")
	}
	if r.Metadata.IsVisualizable {
		t.Fatal("IsVisualizable = true, want false for 1x1 result")
	}
	if r.Rows[0][0] != int64(42) {
		t.Fatalf("cell = %v", r.Rows[0][0])
	}
	checkInvariant(t, r)
}

func TestNormalizeZeroRowsIsNeither(t *testing.T) {
	r := Normalize(rawRows([]string{"id"}))
	if r.Metadata.IsVisualizable || r.Metadata.IsSingleValue {
		t.Fatalf("flags = %+v, want both false for 0-row result", r.Metadata)
	}
	if r.Failed() {
		t.Fatalf("error = %q, want absent", r.Metadata.Error)
	}
	checkInvariant(t, r)
}

func TestNormalizeSingleColumnManyRowsIsVisualizable(t *testing.T) {
	r := Normalize(rawRows([]string{"name"}, []any{"a"}, []any{"b"}))
	if !r.Metadata.IsVisualizable {
		t.Fatal("IsVisualizable = false, want true for 1x2 result")
	}
	if r.Metadata.IsSingleValue {
		t.Fatal("IsSingleValue = true, want false for 1x2 result")
	}
}

func TestNormalizeError(t *testing.T) {
	r := NormalizeError(errors.New(`column "regoin" does not exist`))
	if r.Metadata.Error != `column "regoin" does not exist` {
		t.Fatalf("Error = %q", r.Metadata.Error)
	}
	if len(r.Columns) != 0 || len(r.Rows) != 0 {
		t.Fatalf("columns/rows not empty: %v %v", r.Columns, r.Rows)
	}
	checkInvariant(t, r)
}

func TestNormalizeIsPure(t *testing.T) {
	raw := rawRows([]string{"a", "b"}, []any{int64(1), "x"}, []any{int64(2), "y"})

	first := Normalize(raw)
	second := Normalize(raw)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("Normalize not idempotent:\n%+v\n%+v", first, second)
	}

	// The returned value must not alias the input.
	first.Rows[0][0] = int64(99)
	first.Columns[0] = "mutated"
	if raw.Rows[0][0] != int64(1) || raw.Columns[0] != "a" {
		t.Fatal("Normalize aliases its input")
	}
}

func TestCoerceScalar(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		in   any
		want any
	}{
		{nil, "NULL"},
		{[]byte("bytes"), "bytes"},
		{int(7), int64(7)},
		{int32(7), int64(7)},
		{uint32(7), int64(7)},
		{float32(1.5), float64(1.5)},
		{true, "true"},
		{ts, "2024-05-01T12:00:00Z"},
	}
	for _, tt := range tests {
		r := Normalize(rawRows([]string{"v"}, []any{tt.in}))
		if got := r.Rows[0][0]; got != tt.want {
			t.Fatalf("coerce(%v) = %v (%T), want %v", tt.in, got, got, tt.want)
		}
	}
}

func TestFormatCell(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"x", "x"},
		{int64(42), "42"},
		{float64(1.25), "1.25"},
	}
	for _, tt := range tests {
		if got := FormatCell(tt.in); got != tt.want {
			t.Fatalf("FormatCell(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
