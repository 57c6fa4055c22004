package noise

import (
	"fmt"
	"math"
	"strings"

	"github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"
)

// Source is a deterministic 2-D gradient or value noise primitive returning
// values in roughly [-1, 1]. Implementations must be safe for concurrent
// reads.
type Source interface {
	Eval2(x, y float64) float64
}

// SourceFunc adapts a plain function to Source.
type SourceFunc func(x, y float64) float64

// Eval2 calls f(x, y).
func (f SourceFunc) Eval2(x, y float64) float64 { return f(x, y) }

// Kind names a Source implementation.
type Kind string

const (
	KindSimplex Kind = "simplex"
	KindPerlin  Kind = "perlin"
	KindValue   Kind = "value"
)

// ParseKind accepts a case-insensitive kind name. The empty string selects
// simplex.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return KindSimplex, nil
	case KindSimplex, KindPerlin, KindValue:
		return k, nil
	default:
		return "", fmt.Errorf("unknown noise kind %q", s)
	}
}

// NewSource builds the primitive for kind, seeded with seed.
func NewSource(kind Kind, seed int64) (Source, error) {
	switch kind {
	case KindSimplex, "":
		return NewSimplex(seed), nil
	case KindPerlin:
		return NewPerlin(seed), nil
	case KindValue:
		return NewValue(seed), nil
	default:
		return nil, fmt.Errorf("unknown noise kind %q", kind)
	}
}

// NewSimplex returns OpenSimplex noise.
func NewSimplex(seed int64) Source {
	return opensimplex.New(seed)
}

type perlinSource struct {
	p *perlin.Perlin
}

// NewPerlin returns classic Perlin noise with a single internal octave; the
// fractal layering is done by Field.
func NewPerlin(seed int64) Source {
	return perlinSource{p: perlin.NewPerlin(2, 2, 1, seed)}
}

func (s perlinSource) Eval2(x, y float64) float64 { return s.p.Noise2D(x, y) }

// valueSource is lattice value noise with smoothstep interpolation.
type valueSource struct{ seed int64 }

// NewValue returns hashed value noise. It is cheaper than the gradient
// sources and blockier.
func NewValue(seed int64) Source { return valueSource{seed: seed} }

func (s valueSource) hashInt(x, y int64) int64 {
	h := x*374761393 + y*668265263 + s.seed*1274126177
	h = (h ^ (h >> 13)) * 1274126177
	return h
}

func (s valueSource) val(ix, iy int64) float64 {
	v := s.hashInt(ix, iy)
	return float64(v&0x7fffffff)/float64(0x7fffffff)*2 - 1
}

func (s valueSource) Eval2(x, y float64) float64 {
	xi := int64(math.Floor(x))
	yi := int64(math.Floor(y))
	tx := x - float64(xi)
	ty := y - float64(yi)
	v00 := s.val(xi, yi)
	v10 := s.val(xi+1, yi)
	v01 := s.val(xi, yi+1)
	v11 := s.val(xi+1, yi+1)
	sx := tx * tx * (3 - 2*tx)
	sy := ty * ty * (3 - 2*ty)
	ix0 := v00 + (v10-v00)*sx
	ix1 := v01 + (v11-v01)*sx
	return ix0 + (ix1-ix0)*sy
}
