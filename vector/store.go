package vector

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/viant/recipevec/embedding"
	"github.com/viant/recipevec/engine"
	"github.com/viant/recipevec/index"
	"github.com/viant/recipevec/index/bruteforce"
)

// Store is an open collection bound to one embedder. Searches are safe for
// concurrent use; the in-memory index is never modified after open.
type Store struct {
	db       *sql.DB
	dir      string
	embedder embedding.Embedder
	info     CollectionInfo
	index    index.Index
}

type options struct {
	collection string
}

// Option configures FromDocuments and Open.
type Option func(*options)

// WithCollection selects the collection name.
func WithCollection(name string) Option {
	return func(o *options) { o.collection = name }
}

func newOptions(opts []Option) *options {
	o := &options{collection: DefaultCollection}
	for _, opt := range opts {
		opt(o)
	}
	if o.collection == "" {
		o.collection = DefaultCollection
	}
	return o
}

// Path returns the store file location inside dir.
func Path(dir string) string { return filepath.Join(dir, FileName) }

// Exists reports whether dir holds a persisted store file.
func Exists(dir string) bool {
	fi, err := os.Stat(Path(dir))
	return err == nil && fi.Mode().IsRegular()
}

// FromDocuments embeds every document with embedder in a single Embed call,
// then writes them as the collection in dir, replacing any previous content
// of that collection. The directory is created only after embedding
// succeeds, and the write is one transaction, so a failure leaves any
// earlier collection intact.
func FromDocuments(ctx context.Context, docs []Document, embedder embedding.Embedder, dir string, opts ...Option) (*Store, error) {
	if embedder == nil {
		return nil, errors.New("vector: embedder is nil")
	}
	if dir == "" {
		return nil, errors.New("vector: persistence directory is empty")
	}
	o := newOptions(opts)
	profile := embedder.Profile()

	vecs, err := embedDocuments(ctx, embedder, docs)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
		if ids[i] == "" {
			ids[i] = uuid.NewString()
		}
	}
	idx := &bruteforce.Index{}
	if err := idx.Build(ids, vecs); err != nil {
		return nil, fmt.Errorf("vector: build index: %w", err)
	}
	blob, err := idx.MarshalBinary()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("vector: create %s: %w", dir, err)
	}
	db, err := engine.OpenFile(Path(dir), false)
	if err != nil {
		return nil, err
	}
	if err := EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("vector: ensure schema: %w", err)
	}

	info := CollectionInfo{
		Name:      o.collection,
		Profile:   profile.Name,
		Model:     profile.Model,
		Family:    profile.ModelFamily(),
		Dimension: idx.Dimension(),
		Count:     len(docs),
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	if err := writeCollection(ctx, db, info, ids, docs, vecs, blob); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, dir: dir, embedder: embedder, info: info, index: idx}, nil
}

func embedDocuments(ctx context.Context, embedder embedding.Embedder, docs []Document) ([][]float32, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Content
	}
	vecs, err := embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("vector: embed documents: %w", err)
	}
	if len(vecs) != len(docs) {
		return nil, fmt.Errorf("vector: embedder returned %d vectors for %d documents", len(vecs), len(docs))
	}
	return vecs, nil
}

func writeCollection(ctx context.Context, db *sql.DB, info CollectionInfo, ids []string, docs []Document, vecs [][]float32, blob []byte) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM docs WHERE collection = ?`, info.Name); err != nil {
		return fmt.Errorf("vector: clear collection: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO docs(id, collection, seq, content, meta, embedding) VALUES(?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, d := range docs {
		meta, err := encodeMetadata(d.Metadata)
		if err != nil {
			return err
		}
		emb, err := EncodeEmbedding(vecs[i])
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, ids[i], info.Name, i, d.Content, meta, emb); err != nil {
			return fmt.Errorf("vector: insert document %d: %w", i, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO vector_storage(collection, "index") VALUES(?, ?)`, info.Name, blob); err != nil {
		return fmt.Errorf("vector: persist index: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO collections(name, profile, model, family, dimension, doc_count, created_at)
		VALUES(?, ?, ?, ?, ?, ?, ?)`,
		info.Name, info.Profile, info.Model, info.Family, info.Dimension, info.Count, info.CreatedAt.Format(time.RFC3339)); err != nil {
		return fmt.Errorf("vector: write collection: %w", err)
	}
	return tx.Commit()
}

// Open reopens the collection persisted in dir, bound to embedder. The
// database is opened read-only; Open never writes.
func Open(ctx context.Context, dir string, embedder embedding.Embedder, opts ...Option) (*Store, error) {
	if embedder == nil {
		return nil, errors.New("vector: embedder is nil")
	}
	if !Exists(dir) {
		return nil, fmt.Errorf("%w: %s", ErrStoreNotFound, dir)
	}
	o := newOptions(opts)
	db, err := engine.OpenFile(Path(dir), true)
	if err != nil {
		return nil, err
	}
	s, err := openCollection(ctx, db, o.collection, embedder)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s.dir = dir
	return s, nil
}

func openCollection(ctx context.Context, db *sql.DB, name string, embedder embedding.Embedder) (*Store, error) {
	info := CollectionInfo{Name: name}
	var created string
	err := db.QueryRowContext(ctx, `SELECT profile, model, family, dimension, doc_count, created_at FROM collections WHERE name = ?`, name).
		Scan(&info.Profile, &info.Model, &info.Family, &info.Dimension, &info.Count, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || strings.Contains(err.Error(), "no such table") {
			return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
		}
		return nil, fmt.Errorf("vector: read collection %s: %w", name, err)
	}
	info.CreatedAt, _ = time.Parse(time.RFC3339, created)

	profile := embedder.Profile()
	if profile.ModelFamily() != info.Family {
		return nil, fmt.Errorf("%w: collection %s was built with %s (family %s), got %s (family %s)",
			ErrIncompatibleProfile, name, info.Model, info.Family, profile.Model, profile.ModelFamily())
	}

	idx, err := loadIndex(ctx, db, name)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, embedder: embedder, info: info, index: idx}, nil
}

// loadIndex decodes the persisted index, rebuilding it in memory from the
// stored embeddings when the blob is missing.
func loadIndex(ctx context.Context, db *sql.DB, collection string) (index.Index, error) {
	idx := &bruteforce.Index{}
	var blob []byte
	err := db.QueryRowContext(ctx, `SELECT "index" FROM vector_storage WHERE collection = ?`, collection).Scan(&blob)
	switch {
	case err == nil && len(blob) > 0:
		if err := idx.UnmarshalBinary(blob); err != nil {
			return nil, fmt.Errorf("vector: decode index: %w", err)
		}
		return idx, nil
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("vector: load index: %w", err)
	}

	rows, err := db.QueryContext(ctx, `SELECT id, embedding FROM docs WHERE collection = ? ORDER BY seq`, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	var vecs [][]float32
	for rows.Next() {
		var id string
		var emb []byte
		if err := rows.Scan(&id, &emb); err != nil {
			return nil, err
		}
		v, err := DecodeEmbedding(emb)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
		vecs = append(vecs, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := idx.Build(ids, vecs); err != nil {
		return nil, fmt.Errorf("vector: rebuild index: %w", err)
	}
	return idx, nil
}

// Info describes the open collection.
func (s *Store) Info() CollectionInfo { return s.info }

// Dir returns the persistence directory.
func (s *Store) Dir() string { return s.dir }

// Embedder returns the embedder the store was opened with.
func (s *Store) Embedder() embedding.Embedder { return s.embedder }

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// Count returns the number of documents in the collection.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM docs WHERE collection = ?`, s.info.Name).Scan(&n)
	return n, err
}

// Documents returns every document of the collection in insertion order.
func (s *Store) Documents(ctx context.Context) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, content, meta, embedding FROM docs WHERE collection = ? ORDER BY seq`, s.info.Name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Document
	for rows.Next() {
		var d Document
		var meta string
		var emb []byte
		if err := rows.Scan(&d.ID, &d.Content, &meta, &emb); err != nil {
			return nil, err
		}
		if d.Metadata, err = decodeMetadata(meta); err != nil {
			return nil, err
		}
		if d.Embedding, err = DecodeEmbedding(emb); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// SimilaritySearch embeds query with the store's embedder and returns up to k
// documents ordered by decreasing cosine similarity. k <= 0 returns all.
func (s *Store) SimilaritySearch(ctx context.Context, query string, k int) ([]Match, error) {
	vec, err := embedding.EmbedQuery(ctx, s.embedder, query)
	if err != nil {
		return nil, fmt.Errorf("vector: embed query: %w", err)
	}
	return s.SimilaritySearchByVector(ctx, vec, k)
}

// SimilaritySearchByVector runs the kNN search for an already embedded query.
func (s *Store) SimilaritySearchByVector(ctx context.Context, vec []float32, k int) ([]Match, error) {
	hits, err := s.index.Query(vec, k)
	if err != nil {
		return nil, err
	}
	out := make([]Match, 0, len(hits))
	for _, h := range hits {
		var content, meta string
		err := s.db.QueryRowContext(ctx, `SELECT content, meta FROM docs WHERE id = ? AND collection = ?`, h.ID, s.info.Name).Scan(&content, &meta)
		if err != nil {
			return nil, fmt.Errorf("vector: load document %s: %w", h.ID, err)
		}
		md, err := decodeMetadata(meta)
		if err != nil {
			return nil, err
		}
		out = append(out, Match{Document: Document{ID: h.ID, Content: content, Metadata: md}, Score: h.Score})
	}
	return out, nil
}

// SimilaritySearchWithFilter is SimilaritySearch restricted to documents whose
// metadata equals every key/value in where. Scoring runs in SQLite through
// vec_cosine.
func (s *Store) SimilaritySearchWithFilter(ctx context.Context, query string, k int, where map[string]string) ([]Match, error) {
	vec, err := embedding.EmbedQuery(ctx, s.embedder, query)
	if err != nil {
		return nil, fmt.Errorf("vector: embed query: %w", err)
	}
	qBlob, err := EncodeEmbedding(vec)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString(`SELECT id, content, meta, vec_cosine(embedding, ?) AS score FROM docs WHERE collection = ?`)
	args := []any{qBlob, s.info.Name}
	keys := make([]string, 0, len(where))
	for key := range where {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		sb.WriteString(` AND json_extract(meta, ?) = ?`)
		args = append(args, metadataPath(key), where[key])
	}
	sb.WriteString(` ORDER BY score DESC, seq LIMIT ?`)
	if k <= 0 {
		k = -1
	}
	args = append(args, k)

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("vector: filtered search: %w", err)
	}
	defer rows.Close()
	var out []Match
	for rows.Next() {
		var m Match
		var meta string
		var score sql.NullFloat64
		if err := rows.Scan(&m.ID, &m.Content, &meta, &score); err != nil {
			return nil, err
		}
		if m.Metadata, err = decodeMetadata(meta); err != nil {
			return nil, err
		}
		m.Score = score.Float64
		out = append(out, m)
	}
	return out, rows.Err()
}

func metadataPath(key string) string {
	return `$."` + strings.ReplaceAll(key, `"`, `\"`) + `"`
}

func encodeMetadata(md map[string]string) (string, error) {
	if md == nil {
		return "{}", nil
	}
	b, err := json.Marshal(md)
	if err != nil {
		return "", fmt.Errorf("vector: encode metadata: %w", err)
	}
	return string(b), nil
}

func decodeMetadata(s string) (map[string]string, error) {
	md := map[string]string{}
	if s == "" {
		return md, nil
	}
	if err := json.Unmarshal([]byte(s), &md); err != nil {
		return nil, fmt.Errorf("vector: decode metadata: %w", err)
	}
	return md, nil
}
