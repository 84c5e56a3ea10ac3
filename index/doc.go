// Package index defines the kNN index abstraction used by vector stores: built
// once from (id, embedding) pairs, queried by cosine similarity and
// serialized next to the documents it covers.
package index
