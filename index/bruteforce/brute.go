package bruteforce

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/viant/recipevec/index"
	"github.com/viant/vec/search"
)

// magic prefixes every serialized index; the trailing byte is the format version.
var magic = [4]byte{'R', 'V', 'B', 1}

var (
	errTruncated = errors.New("bruteforce: truncated data")
	errMagic     = errors.New("bruteforce: unrecognized data header")
)

// Index is a brute-force cosine index. It is immutable after Build and safe
// for concurrent queries.
type Index struct {
	ids  []string
	vecs [][]float32
	mags []float32
	dim  int
}

var _ index.Index = (*Index)(nil)

// Build loads ids and vectors and precomputes magnitudes.
func (i *Index) Build(ids []string, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("bruteforce: ids and vectors length mismatch: %d != %d", len(ids), len(vectors))
	}
	if len(ids) == 0 {
		i.ids, i.vecs, i.mags, i.dim = nil, nil, nil, 0
		return nil
	}
	dim := len(vectors[0])
	if dim == 0 {
		return errors.New("bruteforce: empty vector")
	}
	mags := make([]float32, len(vectors))
	for j, v := range vectors {
		if len(v) != dim {
			return fmt.Errorf("bruteforce: inconsistent vector dims %d vs %d (id %q)", len(v), dim, ids[j])
		}
		mags[j] = search.Float32s(v).Magnitude()
	}
	i.ids = append([]string(nil), ids...)
	i.vecs = append([][]float32(nil), vectors...)
	i.dim = dim
	i.mags = mags
	return nil
}

// Len reports the number of indexed vectors.
func (i *Index) Len() int { return len(i.ids) }

// Dimension reports the vector dimension.
func (i *Index) Dimension() int { return i.dim }

// Query returns top-k by cosine similarity. Zero-magnitude vectors never match.
func (i *Index) Query(query []float32, k int) ([]index.Hit, error) {
	if i.dim == 0 || len(i.vecs) == 0 {
		return nil, nil
	}
	if len(query) != i.dim {
		return nil, fmt.Errorf("bruteforce: query dim %d != index dim %d", len(query), i.dim)
	}
	qm := float64(search.Float32s(query).Magnitude())
	if qm == 0 {
		return nil, nil
	}
	hits := make([]index.Hit, 0, len(i.vecs))
	for j, v := range i.vecs {
		if i.mags[j] == 0 {
			continue
		}
		s := dot(query, v) / (qm * float64(i.mags[j]))
		if math.IsNaN(s) {
			continue
		}
		hits = append(hits, index.Hit{ID: i.ids[j], Score: s})
	}
	// Stable keeps insertion order among equal scores.
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].Score > hits[b].Score })
	if k > 0 && k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// MarshalBinary stores: magic[4], dim(uint32), n(uint32), then for each item
// idLen(uint32), id bytes, vec(float32[dim]).
func (i *Index) MarshalBinary() ([]byte, error) {
	size := len(magic) + 8
	for _, id := range i.ids {
		size += 4 + len(id) + 4*i.dim
	}
	out := make([]byte, 0, size)
	out = append(out, magic[:]...)
	out = binary.LittleEndian.AppendUint32(out, uint32(i.dim))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(i.ids)))
	for j, id := range i.ids {
		out = binary.LittleEndian.AppendUint32(out, uint32(len(id)))
		out = append(out, id...)
		for _, f := range i.vecs[j] {
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(f))
		}
	}
	return out, nil
}

// UnmarshalBinary restores the index from bytes.
func (i *Index) UnmarshalBinary(data []byte) error {
	if len(data) < len(magic)+8 {
		return errTruncated
	}
	if [4]byte(data[:4]) != magic {
		return errMagic
	}
	off := len(magic)
	u32 := func() (uint32, bool) {
		if off+4 > len(data) {
			return 0, false
		}
		v := binary.LittleEndian.Uint32(data[off:])
		off += 4
		return v, true
	}
	dim, _ := u32()
	n, _ := u32()
	// Every item carries at least its id length and dim floats.
	rest := uint64(len(data) - off)
	if 4*uint64(dim) > rest || uint64(n)*(4+4*uint64(dim)) > rest {
		return errTruncated
	}
	ids := make([]string, 0, n)
	vecs := make([][]float32, 0, n)
	for j := uint32(0); j < n; j++ {
		idLen, ok := u32()
		if !ok || uint64(idLen)+4*uint64(dim) > uint64(len(data)-off) {
			return errTruncated
		}
		ids = append(ids, string(data[off:off+int(idLen)]))
		off += int(idLen)
		vec := make([]float32, dim)
		for d := range vec {
			bits, ok := u32()
			if !ok {
				return errTruncated
			}
			vec[d] = math.Float32frombits(bits)
		}
		vecs = append(vecs, vec)
	}
	return i.Build(ids, vecs)
}

func dot(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}
