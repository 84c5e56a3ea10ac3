package vector

import (
	"errors"
	"time"
)

// FileName is the database file created inside a persistence directory.
const FileName = "vectors.sqlite"

// DefaultCollection names the collection used when none is configured.
const DefaultCollection = "recipes"

var (
	// ErrStoreNotFound is returned by Open when the directory has no store file.
	ErrStoreNotFound = errors.New("vector: no persisted store")
	// ErrCollectionNotFound is returned by Open when the collection was never built.
	ErrCollectionNotFound = errors.New("vector: collection not found")
	// ErrIncompatibleProfile is returned when the query profile cannot search vectors
	// produced by the profile the collection was built with.
	ErrIncompatibleProfile = errors.New("vector: incompatible embedding profile")
)

// Document is a unit of content stored in a collection.
type Document struct {
	// ID is the row key. FromDocuments generates one when empty.
	ID string

	// Content is the embedded text.
	Content string

	// Metadata is stored alongside the content and returned with matches.
	Metadata map[string]string

	// Embedding is the vector computed from Content.
	Embedding []float32
}

// Match is a search hit.
type Match struct {
	Document
	Score float64
}

// CollectionInfo describes a built collection.
type CollectionInfo struct {
	Name      string
	Profile   string
	Model     string
	Family    string
	Dimension int
	Count     int
	CreatedAt time.Time
}
