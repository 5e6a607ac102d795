// Package index maintains a persisted vector index over the database's
// table schemas, used to retrieve the tables relevant to a question before
// SQL generation.
package index

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sqlynx/sqlynx/internal/database"
)

const indexFileName = "index.json"

// Document is one table's schema description plus its embedding.
type Document struct {
	Schema   string    `json:"schema,omitempty"`
	Table    string    `json:"table"`
	Columns  []string  `json:"columns"`
	RowCount int64     `json:"approx_rows,omitempty"`
	Text     string    `json:"text"`
	Vector   []float32 `json:"vector"`
}

// Match is a retrieved document with its similarity score.
type Match struct {
	Document
	Score float32
}

// Index is the table retrieval index. It is not safe for concurrent use.
type Index struct {
	embedder Embedder
	dir      string
	docs     []Document
}

// New creates an empty index persisted under dir.
func New(embedder Embedder, dir string) *Index {
	return &Index{embedder: embedder, dir: dir}
}

// Len returns the number of indexed tables.
func (ix *Index) Len() int {
	return len(ix.docs)
}

// TableNames lists the indexed table names.
func (ix *Index) TableNames() []string {
	names := make([]string, len(ix.docs))
	for i, d := range ix.docs {
		names[i] = d.Table
	}
	return names
}

// Load reads a previously persisted index. It returns fs.ErrNotExist (via
// errors.Is) when no index has been persisted yet.
func (ix *Index) Load() error {
	data, err := os.ReadFile(filepath.Join(ix.dir, indexFileName))
	if err != nil {
		return err
	}
	var docs []Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return fmt.Errorf("decode index: %w", err)
	}
	ix.docs = docs
	return nil
}

// Persist writes the index to disk, creating the directory if needed.
func (ix *Index) Persist() error {
	if err := os.MkdirAll(ix.dir, 0o700); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	data, err := json.Marshal(ix.docs)
	if err != nil {
		return fmt.Errorf("encode index: %w", err)
	}
	return os.WriteFile(filepath.Join(ix.dir, indexFileName), data, 0o644)
}

// Build indexes every table the driver can see: introspect, describe, embed.
func (ix *Index) Build(ctx context.Context, drv database.Driver) error {
	tables, err := drv.ListTables(ctx)
	if err != nil {
		return fmt.Errorf("list tables: %w", err)
	}

	docs := make([]Document, 0, len(tables))
	texts := make([]string, 0, len(tables))
	for _, t := range tables {
		cols, err := drv.GetColumns(ctx, t.Schema, t.Name)
		if err != nil {
			return fmt.Errorf("columns for %s.%s: %w", t.Schema, t.Name, err)
		}
		// Row count is best-effort context; a failure here should not
		// abort the build.
		count, _ := drv.GetTableRowCount(ctx, t.Schema, t.Name)

		doc := Document{
			Schema:   t.Schema,
			Table:    t.Name,
			RowCount: count,
			Columns:  make([]string, len(cols)),
		}
		for i, c := range cols {
			doc.Columns[i] = c.Name
		}
		doc.Text = describeTable(t, cols, count)
		docs = append(docs, doc)
		texts = append(texts, doc.Text)
	}

	vectors, err := ix.embedder.EmbedDocs(ctx, texts)
	if err != nil {
		return err
	}
	for i := range docs {
		docs[i].Vector = vectors[i]
	}

	ix.docs = docs
	return nil
}

// LoadOrBuild loads the persisted index, rebuilding and persisting it when
// none exists on disk.
func (ix *Index) LoadOrBuild(ctx context.Context, drv database.Driver) error {
	err := ix.Load()
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	if err := ix.Build(ctx, drv); err != nil {
		return err
	}
	return ix.Persist()
}

// Search returns the topK tables most similar to the question, best first.
func (ix *Index) Search(ctx context.Context, question string, topK int) ([]Match, error) {
	if len(ix.docs) == 0 {
		return nil, nil
	}
	if topK <= 0 {
		topK = 5
	}

	qv, err := ix.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, err
	}

	matches := make([]Match, 0, len(ix.docs))
	for _, d := range ix.docs {
		matches = append(matches, Match{Document: d, Score: cosineSimilarity(qv, d.Vector)})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// describeTable renders one table as a retrieval document.
func describeTable(t database.Table, cols []database.Column, count int64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Table %s.%s", t.Schema, t.Name)
	if count > 0 {
		fmt.Fprintf(&b, " (approx %d rows)", count)
	}
	b.WriteString(": ")
	for i, c := range cols {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(c.Name)
		if c.DataType != "" {
			b.WriteString(" ")
			b.WriteString(c.DataType)
		}
	}
	return b.String()
}

// cosineSimilarity scores two vectors; 0 when either has no magnitude or
// the dimensions disagree.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
