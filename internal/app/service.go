package app

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sqlynx/sqlynx/internal/config"
	"github.com/sqlynx/sqlynx/internal/database"
	"github.com/sqlynx/sqlynx/internal/index"
	"github.com/sqlynx/sqlynx/internal/nl2sql"
	"github.com/sqlynx/sqlynx/internal/result"
)

// Answer is the full outcome of one question: the SQL that was run and its
// normalized result.
type Answer struct {
	ID       string
	Question string
	SQL      string
	Result   *result.QueryResult
	// Refined is true when the returned result came from the second,
	// regenerated attempt rather than the first.
	Refined bool
	Asked   time.Time
}

// Retriever is the slice of the table index the service depends on.
type Retriever interface {
	Search(ctx context.Context, question string, topK int) ([]index.Match, error)
	TableNames() []string
}

// Service coordinates table retrieval, SQL generation, execution and
// normalization. It owns the database connection for its lifetime and is
// meant for sequential use by a single caller.
type Service struct {
	driver    database.Driver
	generator nl2sql.Generator
	retriever Retriever
	scheme    config.Scheme
	topK      int
	history   []*Answer
}

// NewService creates a new application service.
func NewService(driver database.Driver, gen nl2sql.Generator, retr Retriever, scheme config.Scheme, topK int) *Service {
	return &Service{
		driver:    driver,
		generator: gen,
		retriever: retr,
		scheme:    scheme,
		topK:      topK,
	}
}

// Connect establishes the database connection. The driver pings eagerly, so
// a nil return means the connection is usable immediately.
func (s *Service) Connect(ctx context.Context, dsn string) error {
	if err := s.driver.Connect(ctx, dsn); err != nil {
		return &ErrConnection{Cause: err}
	}
	return nil
}

// Disconnect closes the database connection.
func (s *Service) Disconnect() error {
	return s.driver.Close()
}

// DatabaseName returns the connected database name.
func (s *Service) DatabaseName() string {
	return s.driver.DatabaseName()
}

// TableNames lists the indexed tables, for editor completion.
func (s *Service) TableNames() []string {
	return s.retriever.TableNames()
}

// RunSQL executes a SQL statement and always yields a normalized result:
// database-reported failures become the result's error field, never a Go
// error. The caller's context passes through to the driver untouched.
func (s *Service) RunSQL(ctx context.Context, sql string) *result.QueryResult {
	raw, err := s.driver.ExecuteQuery(ctx, sql)
	if err != nil {
		return result.NormalizeError(err)
	}
	return result.Normalize(raw)
}

// Ask answers a natural-language question end to end: retrieve relevant
// tables, generate SQL, execute, normalize.
//
// When the first execution fails, exactly one refine attempt runs, and its
// outcome is inspected rather than trusted: a refine that also fails
// surfaces the refined attempt's own error result, never the stale first
// one. Generation failures are returned as errors; execution failures are
// data in the answer.
func (s *Service) Ask(ctx context.Context, question string) (*Answer, error) {
	matches, err := s.retriever.Search(ctx, question, s.topK)
	if err != nil {
		return nil, &ErrIndex{Cause: err}
	}

	req := nl2sql.Request{
		Question: question,
		Dialect:  string(s.scheme),
		Tables:   tableContexts(matches),
	}

	gen, err := s.generator.Generate(ctx, req)
	if err != nil {
		return nil, &ErrGenerate{Cause: err}
	}

	ans := &Answer{
		ID:       uuid.NewString(),
		Question: question,
		SQL:      gen.SQL,
		Asked:    time.Now(),
	}
	ans.Result = s.RunSQL(ctx, gen.SQL)

	if ans.Result.Failed() {
		req.FailedSQL = gen.SQL
		req.DBError = ans.Result.Metadata.Error

		refined, err := s.generator.Refine(ctx, req)
		if err == nil && strings.TrimSpace(refined.SQL) != "" {
			ans.SQL = refined.SQL
			ans.Result = s.RunSQL(ctx, refined.SQL)
			ans.Refined = true
		}
	}

	s.history = append(s.history, ans)
	return ans, nil
}

// History returns all answers of this session, oldest first.
func (s *Service) History() []*Answer {
	return s.history
}

func tableContexts(matches []index.Match) []nl2sql.TableContext {
	out := make([]nl2sql.TableContext, len(matches))
	for i, m := range matches {
		out[i] = nl2sql.TableContext{
			Schema:   m.Schema,
			Name:     m.Table,
			Columns:  m.Columns,
			RowCount: m.RowCount,
		}
	}
	return out
}
