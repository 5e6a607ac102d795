package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sqlynx/sqlynx/internal/config"
	"github.com/sqlynx/sqlynx/internal/database"
	"github.com/sqlynx/sqlynx/internal/index"
	"github.com/sqlynx/sqlynx/internal/nl2sql"
)

// fakeDriver returns scripted outcomes per SQL statement.
type fakeDriver struct {
	database.Driver
	results  map[string]*database.RawRows
	errs     map[string]error
	executed []string
	lastCtx  context.Context
}

func (d *fakeDriver) ExecuteQuery(ctx context.Context, query string) (*database.RawRows, error) {
	d.executed = append(d.executed, query)
	d.lastCtx = ctx
	if err, ok := d.errs[query]; ok {
		return nil, err
	}
	if raw, ok := d.results[query]; ok {
		return raw, nil
	}
	return &database.RawRows{Columns: []string{"ok"}, Rows: [][]any{{int64(1)}}}, nil
}

func (d *fakeDriver) DatabaseName() string { return "sales" }

// fakeGenerator returns scripted SQL for generate and refine.
type fakeGenerator struct {
	generateSQL string
	generateErr error
	refineSQL   string
	refineErr   error
	refineReq   nl2sql.Request
	refined     int
}

func (g *fakeGenerator) Generate(_ context.Context, _ nl2sql.Request) (nl2sql.Result, error) {
	if g.generateErr != nil {
		return nl2sql.Result{}, g.generateErr
	}
	return nl2sql.Result{SQL: g.generateSQL, Model: "test"}, nil
}

func (g *fakeGenerator) Refine(_ context.Context, req nl2sql.Request) (nl2sql.Result, error) {
	g.refined++
	g.refineReq = req
	if g.refineErr != nil {
		return nl2sql.Result{}, g.refineErr
	}
	return nl2sql.Result{SQL: g.refineSQL, Model: "test"}, nil
}

// fakeRetriever serves one fixed match.
type fakeRetriever struct {
	matches []index.Match
	err     error
}

func (r *fakeRetriever) Search(context.Context, string, int) ([]index.Match, error) {
	return r.matches, r.err
}

func (r *fakeRetriever) TableNames() []string {
	names := make([]string, len(r.matches))
	for i, m := range r.matches {
		names[i] = m.Table
	}
	return names
}

func newTestService(d *fakeDriver, g *fakeGenerator) *Service {
	retr := &fakeRetriever{matches: []index.Match{
		{Document: index.Document{Schema: "public", Table: "revenue", Columns: []string{"region", "total"}}},
	}}
	return NewService(d, g, retr, config.SchemePostgreSQL, 5)
}

func TestAskSuccess(t *testing.T) {
	d := &fakeDriver{results: map[string]*database.RawRows{
		"SELECT region, total FROM revenue": {
			Columns: []string{"region", "total"},
			Rows:    [][]any{{"emea", int64(12)}, {"apac", int64(34)}},
		},
	}}
	g := &fakeGenerator{generateSQL: "SELECT region, total FROM revenue"}
	svc := newTestService(d, g)

	ans, err := svc.Ask(context.Background(), "revenue per region?")
	require.NoError(t, err)
	require.Equal(t, "SELECT region, total FROM revenue", ans.SQL)
	require.False(t, ans.Refined)
	require.False(t, ans.Result.Failed())
	require.True(t, ans.Result.Metadata.IsVisualizable)
	require.Len(t, ans.Result.Rows, 2)
	require.NotEmpty(t, ans.ID)
	require.Zero(t, g.refined)
	require.Len(t, svc.History(), 1)
}

func TestAskRefinesOnFailureAndValidatesOutcome(t *testing.T) {
	d := &fakeDriver{
		errs: map[string]error{
			"SELECT regoin FROM revenue": errors.New(`column "regoin" does not exist`),
		},
		results: map[string]*database.RawRows{
			"SELECT region FROM revenue": {
				Columns: []string{"region"},
				Rows:    [][]any{{"emea"}},
			},
		},
	}
	g := &fakeGenerator{
		generateSQL: "SELECT regoin FROM revenue",
		refineSQL:   "SELECT region FROM revenue",
	}
	svc := newTestService(d, g)

	ans, err := svc.Ask(context.Background(), "regions?")
	require.NoError(t, err)
	require.True(t, ans.Refined)
	require.Equal(t, "SELECT region FROM revenue", ans.SQL)
	require.False(t, ans.Result.Failed())
	require.True(t, ans.Result.Metadata.IsSingleValue)

	// The refine prompt must carry the failed SQL and the driver message.
	require.Equal(t, "SELECT regoin FROM revenue", g.refineReq.FailedSQL)
	require.Contains(t, g.refineReq.DBError, "regoin")
	require.Equal(t, []string{"SELECT regoin FROM revenue", "SELECT region FROM revenue"}, d.executed)
}

func TestAskFailedRefineSurfacesSecondError(t *testing.T) {
	d := &fakeDriver{errs: map[string]error{
		"SELECT regoin FROM revenue": errors.New("first error"),
		"SELECT wrong FROM revenue":  errors.New("second error"),
	}}
	g := &fakeGenerator{
		generateSQL: "SELECT regoin FROM revenue",
		refineSQL:   "SELECT wrong FROM revenue",
	}
	svc := newTestService(d, g)

	ans, err := svc.Ask(context.Background(), "regions?")
	require.NoError(t, err)
	require.True(t, ans.Refined)
	require.True(t, ans.Result.Failed())
	// Never the stale first error.
	require.Equal(t, "second error", ans.Result.Metadata.Error)
	require.Equal(t, "SELECT wrong FROM revenue", ans.SQL)
}

func TestAskRefineGenerationFailureKeepsFirstResult(t *testing.T) {
	d := &fakeDriver{errs: map[string]error{
		"SELECT regoin FROM revenue": errors.New("first error"),
	}}
	g := &fakeGenerator{
		generateSQL: "SELECT regoin FROM revenue",
		refineErr:   errors.New("model unavailable"),
	}
	svc := newTestService(d, g)

	ans, err := svc.Ask(context.Background(), "regions?")
	require.NoError(t, err)
	require.False(t, ans.Refined)
	require.True(t, ans.Result.Failed())
	require.Equal(t, "first error", ans.Result.Metadata.Error)
	require.Equal(t, 1, g.refined)
}

func TestAskGenerationFailure(t *testing.T) {
	g := &fakeGenerator{generateErr: errors.New("quota exceeded")}
	svc := newTestService(&fakeDriver{}, g)

	_, err := svc.Ask(context.Background(), "anything")
	var genErr *ErrGenerate
	require.ErrorAs(t, err, &genErr)
	require.Empty(t, svc.History())
}

func TestAskRetrieverFailure(t *testing.T) {
	svc := NewService(&fakeDriver{}, &fakeGenerator{generateSQL: "SELECT 1"},
		&fakeRetriever{err: errors.New("index corrupt")}, config.SchemeMySQL, 5)

	_, err := svc.Ask(context.Background(), "anything")
	var idxErr *ErrIndex
	require.ErrorAs(t, err, &idxErr)
}

func TestRunSQLNeverReturnsErrorAndAddsNoDeadline(t *testing.T) {
	d := &fakeDriver{errs: map[string]error{"BROKEN": errors.New("syntax error")}}
	svc := newTestService(d, &fakeGenerator{})

	ctx := context.Background()
	res := svc.RunSQL(ctx, "BROKEN")
	require.True(t, res.Failed())
	require.Equal(t, "syntax error", res.Metadata.Error)

	// The executor must pass the caller's context through untouched: no
	// internal timeout policy exists in the query path.
	require.True(t, ctx == d.lastCtx, "driver must receive the caller's context unchanged")
	_, hasDeadline := d.lastCtx.Deadline()
	require.False(t, hasDeadline)
}
