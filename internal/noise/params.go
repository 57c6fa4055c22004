package noise

import (
	"fmt"
	"math/bits"
)

// Params shapes the fractal sum.
//   - Octaves is the number of layers summed.
//   - Period is the wavelength of the first octave. Larger periods give
//     broader features.
//   - Lacunarity multiplies the frequency between octaves.
//   - Gain multiplies the amplitude between octaves. Higher gains give more
//     contrast.
//
// A lacunarity of 2 and a gain of 0.5 produce 1/f noise.
type Params struct {
	Octaves    int     `json:"octaves"`
	Period     float64 `json:"period"`
	Lacunarity float64 `json:"lacunarity"`
	Gain       float64 `json:"gain"`
}

// DefaultParams returns the parameters used when nothing is derived or
// configured.
func DefaultParams() Params {
	return Params{Octaves: 16, Period: 256, Lacunarity: 2, Gain: 0.5}
}

// ParamsForLength derives parameters for rows of n samples: one octave per
// halving of the row (ceil(log2(n)), at least one) and a period of half the
// row.
func ParamsForLength(n int) Params {
	if n < 1 {
		n = 1
	}
	octaves := bits.Len(uint(n - 1))
	if octaves < 1 {
		octaves = 1
	}
	p := DefaultParams()
	p.Octaves = octaves
	p.Period = 0.5 * float64(n)
	return p
}

// Validate reports whether p is usable for generation.
func (p Params) Validate() error {
	switch {
	case p.Octaves <= 0:
		return fmt.Errorf("octaves must be positive, got %d", p.Octaves)
	case !(p.Period > 0):
		return fmt.Errorf("period must be positive, got %g", p.Period)
	case !(p.Lacunarity > 1):
		return fmt.Errorf("lacunarity must be greater than 1, got %g", p.Lacunarity)
	case !(p.Gain > 0 && p.Gain < 1):
		return fmt.Errorf("gain must be in (0,1), got %g", p.Gain)
	}
	return nil
}

// Overrides pins individual parameters regardless of the row length. Zero
// fields are unset.
type Overrides struct {
	Octaves    int     `json:"octaves,omitempty"`
	Period     float64 `json:"period,omitempty"`
	Lacunarity float64 `json:"lacunarity,omitempty"`
	Gain       float64 `json:"gain,omitempty"`
}

// Apply returns p with every valid override substituted. Out-of-range
// overrides are skipped.
func (o Overrides) Apply(p Params) Params {
	if o.Octaves > 0 {
		p.Octaves = o.Octaves
	}
	if o.Period > 0 {
		p.Period = o.Period
	}
	if o.Lacunarity > 1 {
		p.Lacunarity = o.Lacunarity
	}
	if o.Gain > 0 && o.Gain < 1 {
		p.Gain = o.Gain
	}
	return p
}

// Empty reports whether no override is set.
func (o Overrides) Empty() bool {
	return o == Overrides{}
}
