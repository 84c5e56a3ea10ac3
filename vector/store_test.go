package vector

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/recipevec/embedding"
)

func testEmbedders() (*embedding.HashEmbedder, *embedding.HashEmbedder) {
	doc := embedding.NewHashEmbedder(embedding.Profile{Name: "doc", Model: "solar-embedding-1-large-passage", Role: embedding.RoleDocument}, 16)
	query := embedding.NewHashEmbedder(embedding.Profile{Name: "query", Model: "solar-embedding-1-large-query", Role: embedding.RoleQuery}, 16)
	return doc, query
}

func recipeDocs() []Document {
	return []Document{
		{Content: "Kimchi Stew: kimchi, pork", Metadata: map[string]string{"id": "1", "title": "Kimchi Stew", "url": "http://x/1"}},
		{Content: "Bulgogi: beef, soy sauce", Metadata: map[string]string{"id": "2", "title": "Bulgogi", "url": "http://x/2"}},
		{Content: "Bibimbap: rice, vegetables", Metadata: map[string]string{"id": "3", "title": "Bibimbap", "url": "http://x/3"}},
	}
}

func TestFromDocuments_ThenOpen(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "store")
	doc, query := testEmbedders()

	built, err := FromDocuments(ctx, recipeDocs(), doc, dir)
	require.NoError(t, err)
	assert.Equal(t, dir, built.Dir())
	assert.Equal(t, 3, built.Info().Count)
	assert.Equal(t, 16, built.Info().Dimension)
	assert.Equal(t, "solar-embedding-1-large", built.Info().Family)
	require.NoError(t, built.Close())

	assert.True(t, Exists(dir))
	require.Len(t, doc.Calls(), 1, "documents are embedded in one call")
	assert.Len(t, doc.Calls()[0], 3)

	store, err := Open(ctx, dir, query)
	require.NoError(t, err)
	defer store.Close()
	assert.Same(t, query, store.Embedder())

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	matches, err := store.SimilaritySearch(ctx, "Bulgogi: beef, soy sauce", 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "Bulgogi", matches[0].Metadata["title"])
	assert.InDelta(t, 1.0, matches[0].Score, 1e-5)
	assert.GreaterOrEqual(t, matches[0].Score, matches[1].Score)

	assert.Equal(t, [][]string{{"Bulgogi: beef, soy sauce"}}, query.Calls())
	assert.Len(t, doc.Calls(), 1, "document embedder is never used for queries")
}

func TestStore_Documents(t *testing.T) {
	ctx := context.Background()
	doc, _ := testEmbedders()
	store, err := FromDocuments(ctx, recipeDocs(), doc, t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	docs, err := store.Documents(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	for i, want := range recipeDocs() {
		assert.Equal(t, want.Content, docs[i].Content)
		assert.Equal(t, want.Metadata, docs[i].Metadata)
		assert.Len(t, docs[i].Embedding, 16)
		assert.NotEmpty(t, docs[i].ID)
	}
}

func TestFromDocuments_ReplacesCollection(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	doc, query := testEmbedders()

	first, err := FromDocuments(ctx, recipeDocs(), doc, dir)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := FromDocuments(ctx, recipeDocs()[:1], doc, dir)
	require.NoError(t, err)
	require.NoError(t, second.Close())

	store, err := Open(ctx, dir, query)
	require.NoError(t, err)
	defer store.Close()
	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, store.Info().Count)
}

type failingEmbedder struct{ profile embedding.Profile }

func (f failingEmbedder) Embed(context.Context, []string) ([][]float32, error) {
	return nil, errors.New("backend down")
}

func (f failingEmbedder) Profile() embedding.Profile { return f.profile }

func TestFromDocuments_EmbedFailure(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "store")
	_, err := FromDocuments(context.Background(), recipeDocs(), failingEmbedder{embedding.Profile{Name: "x", Model: "m", Role: embedding.RoleDocument}}, dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend down")
	assert.NoDirExists(t, dir)
}

func TestOpen_Errors(t *testing.T) {
	ctx := context.Background()
	doc, query := testEmbedders()

	_, err := Open(ctx, filepath.Join(t.TempDir(), "missing"), query)
	assert.ErrorIs(t, err, ErrStoreNotFound)

	dir := t.TempDir()
	store, err := FromDocuments(ctx, recipeDocs(), doc, dir)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = Open(ctx, dir, query, WithCollection("other"))
	assert.ErrorIs(t, err, ErrCollectionNotFound)

	foreign := embedding.NewHashEmbedder(embedding.Profile{Name: "oa", Model: "text-embedding-3-small", Role: embedding.RoleQuery}, 16)
	_, err = Open(ctx, dir, foreign)
	assert.ErrorIs(t, err, ErrIncompatibleProfile)
}

func TestOpen_EmptyDatabaseFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(Path(dir), nil, 0o644))
	_, query := testEmbedders()
	_, err := Open(context.Background(), dir, query)
	assert.ErrorIs(t, err, ErrCollectionNotFound)
}

func TestOpen_RebuildsMissingIndex(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	doc, query := testEmbedders()
	store, err := FromDocuments(ctx, recipeDocs(), doc, dir)
	require.NoError(t, err)
	_, err = store.db.ExecContext(ctx, `DELETE FROM vector_storage`)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := Open(ctx, dir, query)
	require.NoError(t, err)
	defer reopened.Close()
	matches, err := reopened.SimilaritySearch(ctx, "Bibimbap: rice, vegetables", 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Bibimbap", matches[0].Metadata["title"])
}

func TestStore_SimilaritySearchWithFilter(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	doc, query := testEmbedders()
	docs := append(recipeDocs(), Document{
		Content:  "Kimchi Fried Rice: kimchi, rice",
		Metadata: map[string]string{"id": "4", "title": "Kimchi Fried Rice", "url": "http://x/2"},
	})
	built, err := FromDocuments(ctx, docs, doc, dir)
	require.NoError(t, err)
	require.NoError(t, built.Close())

	store, err := Open(ctx, dir, query)
	require.NoError(t, err)
	defer store.Close()

	matches, err := store.SimilaritySearchWithFilter(ctx, "Kimchi Fried Rice: kimchi, rice", 0, map[string]string{"url": "http://x/2"})
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "Kimchi Fried Rice", matches[0].Metadata["title"])
	assert.InDelta(t, 1.0, matches[0].Score, 1e-5)
	assert.Equal(t, "Bulgogi", matches[1].Metadata["title"])

	matches, err = store.SimilaritySearchWithFilter(ctx, "anything", 5, map[string]string{"title": "Nope"})
	require.NoError(t, err)
	assert.Empty(t, matches)

	matches, err = store.SimilaritySearchWithFilter(ctx, "anything", 2, nil)
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestFromDocuments_Empty(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	doc, query := testEmbedders()
	built, err := FromDocuments(ctx, nil, doc, dir)
	require.NoError(t, err)
	require.NoError(t, built.Close())
	assert.Empty(t, doc.Calls())

	store, err := Open(ctx, dir, query)
	require.NoError(t, err)
	defer store.Close()
	matches, err := store.SimilaritySearch(ctx, "kimchi", 3)
	require.NoError(t, err)
	assert.Empty(t, matches)
}
