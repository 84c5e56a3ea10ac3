// Package embedding binds embedding profiles to the remote embedding API.
//
// A Profile names one model and the role it plays: "document" profiles embed
// content at write time and "query" profiles embed search text at read time.
// Stores receive an Embedder explicitly, so the write/read asymmetry stays
// visible at every call site.
package embedding
