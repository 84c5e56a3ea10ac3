// Package bruteforce provides a vector index that answers kNN queries by
// scanning all vectors and scoring via cosine similarity. Its compact binary
// form is what stores persist in their vector_storage table.
package bruteforce
