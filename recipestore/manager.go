package recipestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/viant/recipevec/embedding"
	"github.com/viant/recipevec/vector"
)

// Manager builds and reopens the recipe vector store in one persistence
// directory. It is not safe for concurrent Build calls on the same directory.
type Manager struct {
	persistDir string
	sourcePath string
	collection string
	profiles   embedding.Profiles
	logger     *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithSourcePath sets the JSON file Build reads when called with an empty path.
func WithSourcePath(path string) Option {
	return func(m *Manager) { m.sourcePath = path }
}

// WithCollection selects the store collection.
func WithCollection(name string) Option {
	return func(m *Manager) { m.collection = name }
}

// New returns a Manager for persistDir. The document profile is used only by
// Build and the query profile only by Load.
func New(persistDir string, profiles embedding.Profiles, opts ...Option) (*Manager, error) {
	if persistDir == "" {
		return nil, errors.New("recipestore: persistence directory is empty")
	}
	if err := profiles.Validate(); err != nil {
		return nil, err
	}
	m := &Manager{
		persistDir: persistDir,
		collection: vector.DefaultCollection,
		profiles:   profiles,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	return m, nil
}

// PersistDir returns the persistence directory.
func (m *Manager) PersistDir() string { return m.persistDir }

// Profiles returns the embedding profile pair.
func (m *Manager) Profiles() embedding.Profiles { return m.profiles }

// LoadDocuments reads jsonPath and maps each record to a document, keeping
// input order. A missing file is logged as a warning and yields no documents.
func (m *Manager) LoadDocuments(jsonPath string) ([]vector.Document, error) {
	docs, found, err := m.readDocuments(jsonPath)
	if err != nil {
		return nil, err
	}
	if !found {
		m.logger.Warn("documents file does not exist", "path", jsonPath)
		return []vector.Document{}, nil
	}
	return docs, nil
}

func (m *Manager) readDocuments(jsonPath string) ([]vector.Document, bool, error) {
	records, err := ReadRecords(jsonPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, true, err
	}
	return ToDocuments(records), true, nil
}

// Build embeds every record in jsonPath with the document profile and
// persists them, replacing the collection. An empty jsonPath uses the source
// path configured with WithSourcePath. When the file is missing Build logs an
// error and returns a nil store without touching the persistence directory.
func (m *Manager) Build(ctx context.Context, jsonPath string) (*vector.Store, error) {
	if jsonPath == "" {
		jsonPath = m.sourcePath
	}
	m.logger.Info("building vector store", "source", jsonPath, "dir", m.persistDir)

	docs, found, err := m.readDocuments(jsonPath)
	if err != nil {
		return nil, err
	}
	if !found {
		m.logger.Error("documents file does not exist", "path", jsonPath)
		return nil, nil
	}

	profile := m.profiles.Document.Profile()
	m.logger.Info("embedding documents", "count", len(docs), "profile", profile.Name, "model", profile.Model)
	store, err := vector.FromDocuments(ctx, docs, m.profiles.Document, m.persistDir, vector.WithCollection(m.collection))
	if err != nil {
		return nil, fmt.Errorf("recipestore: build: %w", err)
	}
	m.logger.Info("vector store built", "dir", m.persistDir, "documents", store.Info().Count)
	return store, nil
}

// Load reopens the persisted store bound to the query profile so every search
// embeds its text with the query model. When nothing has been built yet, or
// the store holds no collection of the configured name, Load logs an error
// and returns a nil store. Load never writes.
func (m *Manager) Load(ctx context.Context) (*vector.Store, error) {
	if _, err := os.Stat(m.persistDir); err != nil || !vector.Exists(m.persistDir) {
		m.logger.Error("no persisted vector store; build it first", "dir", m.persistDir)
		return nil, nil
	}
	profile := m.profiles.Query.Profile()
	m.logger.Info("loading vector store", "dir", m.persistDir, "profile", profile.Name, "model", profile.Model)
	store, err := vector.Open(ctx, m.persistDir, m.profiles.Query, vector.WithCollection(m.collection))
	if errors.Is(err, vector.ErrCollectionNotFound) {
		m.logger.Error("no persisted collection; build it first", "dir", m.persistDir, "collection", m.collection)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("recipestore: load: %w", err)
	}
	return store, nil
}
