package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
	"sync"
)

// HashEmbedder produces deterministic unit vectors derived from the sha256 of
// each text. Identical texts map to identical vectors regardless of profile
// role, so a document embedded by one HashEmbedder is found by a query with
// the same text through another. It records every text it embeds.
type HashEmbedder struct {
	profile    Profile
	dimensions int

	mu    sync.Mutex
	calls [][]string
}

var _ Embedder = (*HashEmbedder)(nil)

// NewHashEmbedder returns a HashEmbedder for profile with the given dimension.
func NewHashEmbedder(profile Profile, dimensions int) *HashEmbedder {
	if dimensions <= 0 {
		dimensions = 32
	}
	return &HashEmbedder{profile: profile, dimensions: dimensions}
}

// Profile reports the bound profile.
func (h *HashEmbedder) Profile() Profile { return h.profile }

// Embed returns one deterministic vector per text.
func (h *HashEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h.mu.Lock()
	h.calls = append(h.calls, append([]string(nil), texts...))
	h.mu.Unlock()

	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = h.vector(t)
	}
	return out, nil
}

// Calls returns the text batches passed to Embed so far.
func (h *HashEmbedder) Calls() [][]string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([][]string(nil), h.calls...)
}

func (h *HashEmbedder) vector(text string) []float32 {
	vec := make([]float32, h.dimensions)
	var sum float64
	block := sha256.Sum256([]byte(text))
	for i := range vec {
		if i > 0 && i%8 == 0 {
			block = sha256.Sum256(block[:])
		}
		bits := binary.LittleEndian.Uint32(block[(i%8)*4:])
		v := float64(bits)/float64(math.MaxUint32)*2 - 1
		vec[i] = float32(v)
		sum += v * v
	}
	if sum == 0 {
		return vec
	}
	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}
