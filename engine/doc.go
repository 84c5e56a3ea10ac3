// Package engine opens SQLite databases through the modernc.org/sqlite driver
// and registers the vec_cosine SQL scalar function before
// the first connection is made. Every store in this module goes through it so
// all connections share the same driver registration.
package engine
