// Package vector implements the persisted vector store: a SQLite file inside a
// persistence directory holding one or more collections of documents, their
// embeddings and a serialized kNN index.
//
// A Store is always bound to exactly one embedding.Embedder. FromDocuments
// writes a collection with a document embedder; Open reopens it read-only
// with a query embedder whose model family must match the one recorded at
// build time.
package vector
