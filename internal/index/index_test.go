package index

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sqlynx/sqlynx/internal/database"
)

// fakeEmbedder maps known keywords to fixed unit vectors so ranking is
// deterministic.
type fakeEmbedder struct {
	vectors map[string][]float32
	calls   int
}

func (f *fakeEmbedder) vectorFor(text string) []float32 {
	for key, vec := range f.vectors {
		if strings.Contains(strings.ToLower(text), key) {
			return vec
		}
	}
	return []float32{0, 0, 1}
}

func (f *fakeEmbedder) EmbedDocs(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = f.vectorFor(t)
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	f.calls++
	return f.vectorFor(text), nil
}

// fakeDriver serves a fixed two-table schema.
type fakeDriver struct {
	database.Driver
}

func (fakeDriver) ListTables(context.Context) ([]database.Table, error) {
	return []database.Table{
		{Schema: "public", Name: "orders"},
		{Schema: "public", Name: "customers"},
	}, nil
}

func (fakeDriver) GetColumns(_ context.Context, _, table string) ([]database.Column, error) {
	if table == "orders" {
		return []database.Column{
			{Name: "id", DataType: "bigint"},
			{Name: "amount", DataType: "numeric"},
		}, nil
	}
	return []database.Column{
		{Name: "id", DataType: "bigint"},
		{Name: "email", DataType: "text"},
	}, nil
}

func (fakeDriver) GetTableRowCount(context.Context, string, string) (int64, error) {
	return 100, nil
}

func newFakeEmbedder() *fakeEmbedder {
	return &fakeEmbedder{vectors: map[string][]float32{
		"orders":    {1, 0, 0},
		"customers": {0, 1, 0},
	}}
}

func TestBuildAndSearch(t *testing.T) {
	ix := New(newFakeEmbedder(), t.TempDir())
	require.NoError(t, ix.Build(context.Background(), fakeDriver{}))
	require.Equal(t, 2, ix.Len())
	require.ElementsMatch(t, []string{"orders", "customers"}, ix.TableNames())

	matches, err := ix.Search(context.Background(), "how many orders last month?", 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.Equal(t, "orders", matches[0].Table)
	require.Equal(t, []string{"id", "amount"}, matches[0].Columns)
}

func TestSearchReturnsAtMostTopK(t *testing.T) {
	ix := New(newFakeEmbedder(), t.TempDir())
	require.NoError(t, ix.Build(context.Background(), fakeDriver{}))

	matches, err := ix.Search(context.Background(), "customers", 10)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	require.Equal(t, "customers", matches[0].Table)
}

func TestPersistLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	ix := New(newFakeEmbedder(), dir)
	require.NoError(t, ix.Build(context.Background(), fakeDriver{}))
	require.NoError(t, ix.Persist())

	loaded := New(newFakeEmbedder(), dir)
	require.NoError(t, loaded.Load())
	require.Equal(t, ix.docs, loaded.docs)
}

func TestLoadOrBuildRebuildsWhenAbsent(t *testing.T) {
	dir := t.TempDir()
	emb := newFakeEmbedder()

	ix := New(emb, dir)
	require.NoError(t, ix.LoadOrBuild(context.Background(), fakeDriver{}))
	require.Equal(t, 2, ix.Len())
	built := emb.calls
	require.Positive(t, built)

	// Second instance must load from disk without touching the embedder.
	second := New(emb, dir)
	require.NoError(t, second.LoadOrBuild(context.Background(), fakeDriver{}))
	require.Equal(t, 2, second.Len())
	require.Equal(t, built, emb.calls)
}

func TestCosineSimilarity(t *testing.T) {
	require.InDelta(t, 1.0, cosineSimilarity([]float32{1, 0}, []float32{2, 0}), 1e-6)
	require.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-6)
	require.Zero(t, cosineSimilarity([]float32{1, 0}, []float32{1, 0, 0}))
	require.Zero(t, cosineSimilarity(nil, nil))
}
