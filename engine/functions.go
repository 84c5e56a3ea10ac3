package engine

import (
	"database/sql/driver"
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/viant/vec/search"
	sqlite "modernc.org/sqlite"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterVectorFunctions registers vec_cosine with the driver so it is
// available on every connection opened afterwards. Only the first call does
// any work.
func RegisterVectorFunctions() error {
	registerOnce.Do(func() {
		if err := sqlite.RegisterDeterministicScalarFunction("vec_cosine", 2, vecCosine); err != nil {
			registerErr = fmt.Errorf("engine: register vec_cosine: %w", err)
		}
	})
	return registerErr
}

// vecCosine scores two embedding BLOBs; NULL on either side yields NULL.
func vecCosine(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("vec_cosine: expected 2 arguments, got %d", len(args))
	}
	var pair [2][]float32
	for i, arg := range args {
		switch v := arg.(type) {
		case nil:
			return nil, nil
		case []byte:
			if len(v)%4 != 0 {
				return nil, fmt.Errorf("vec_cosine: argument %d: blob length %d is not a multiple of 4", i+1, len(v))
			}
			pair[i] = floats(v)
		default:
			return nil, fmt.Errorf("vec_cosine: argument %d: unsupported type %T, want BLOB", i+1, arg)
		}
	}
	return cosineSimilarity(pair[0], pair[1])
}

func floats(b []byte) []float32 {
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out
}

func cosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vec_cosine: dimension mismatch %d vs %d", len(a), len(b))
	}
	if len(a) == 0 {
		return 0, fmt.Errorf("vec_cosine: empty embedding")
	}
	ma, mb := search.Float32s(a).Magnitude(), search.Float32s(b).Magnitude()
	// Zero vectors score 0 instead of failing the whole ORDER BY.
	if ma == 0 || mb == 0 {
		return 0, nil
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (float64(ma) * float64(mb)), nil
}
