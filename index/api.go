package index

// Hit is a single kNN result. Higher Score means more similar.
type Hit struct {
	ID    string
	Score float64
}

// Index defines a generic vector index with basic lifecycle methods.
type Index interface {
	// Build constructs the index from the given ids and vectors.
	// ids and vectors must have the same length and share one dimension.
	Build(ids []string, vectors [][]float32) error

	// Query runs a kNN search and returns up to k hits ordered by
	// decreasing score. k <= 0 returns every scored entry.
	Query(query []float32, k int) ([]Hit, error)

	// Len reports the number of indexed vectors.
	Len() int

	// Dimension reports the vector dimension, 0 for an empty index.
	Dimension() int

	// MarshalBinary serializes the index into a byte slice.
	MarshalBinary() ([]byte, error)

	// UnmarshalBinary reconstructs the index from a serialized byte slice.
	UnmarshalBinary(data []byte) error
}
