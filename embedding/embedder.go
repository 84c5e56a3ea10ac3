package embedding

import (
	"context"
	"errors"
)

var (
	// ErrEmptyResponse is returned when the API answers without vectors.
	ErrEmptyResponse = errors.New("embedding: no embedding in response")
	// ErrCountMismatch is returned when the API returns a different number of vectors than inputs.
	ErrCountMismatch = errors.New("embedding: embedding count mismatch")
)

// Embedder turns texts into vectors under one profile.
type Embedder interface {
	// Embed returns one vector per text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Profile reports the profile the embedder is bound to.
	Profile() Profile
}

// Profiles is the {document, query} pair a manager holds.
type Profiles struct {
	Document Embedder
	Query    Embedder
}

// Validate checks both embedders are set, distinct and correctly tagged.
func (p Profiles) Validate() error {
	if p.Document == nil || p.Query == nil {
		return errors.New("embedding: both document and query embedders are required")
	}
	if p.Document == p.Query {
		return errors.New("embedding: document and query embedders must be distinct")
	}
	if r := p.Document.Profile().Role; r != RoleDocument {
		return errors.New("embedding: document embedder has role " + string(r))
	}
	if r := p.Query.Profile().Role; r != RoleQuery {
		return errors.New("embedding: query embedder has role " + string(r))
	}
	return nil
}

// EmbedQuery embeds a single text.
func EmbedQuery(ctx context.Context, e Embedder, text string) ([]float32, error) {
	vecs, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) != 1 {
		return nil, ErrEmptyResponse
	}
	return vecs[0], nil
}
