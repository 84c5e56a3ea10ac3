// Package recipestore turns a JSON recipe corpus into a persisted vector store
// and reopens that store for retrieval.
//
// A Manager holds the two embedding profiles. Build embeds every recipe with
// the document profile and writes the store; Load reopens it with the query
// profile. Missing inputs are logged and reported as a nil result, never as
// an error; malformed JSON and backend failures are returned.
package recipestore
