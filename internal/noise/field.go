// Package noise produces the streamed signal: fractal Brownian motion over a
// pluggable 2-D primitive, optionally domain warped.
package noise

// Field evaluates fractal noise over a Source. It holds no mutable state and
// may be shared between sessions.
type Field struct {
	src Source
}

// New returns a Field over src.
func New(src Source) *Field {
	return &Field{src: src}
}

// Sample returns the fBm sum at (x, y).
func (f *Field) Sample(x, y float64, p Params) float64 {
	frequency := 1 / p.Period
	amplitude := p.Gain

	sum := 0.0
	for i := 0; i < p.Octaves; i++ {
		sum += amplitude * f.src.Eval2(x*frequency, y*frequency)
		frequency *= p.Lacunarity
		amplitude *= p.Gain
	}
	return sum
}

// Warped returns fbm(p + fbm(p + fbm(p))), after Inigo Quilez's domain
// warping article. All inner evaluations share p.
func (f *Field) Warped(x, y float64, p Params) float64 {
	qx := f.Sample(x, y, p)
	qy := f.Sample(x+5.2, y+1.3, p)

	tx := x + p.Period*qx
	ty := y + p.Period*qy

	rx := f.Sample(tx+1.7, ty+9.2, p)
	ry := f.Sample(tx+8.3, ty+2.8, p)

	return f.Sample(x+p.Period*rx, y+p.Period*ry, p)
}

// Row fills a new row of length samples for tick index: sample i is taken at
// (index, i).
func (f *Field) Row(index int64, length int, p Params, warp bool) []float32 {
	if length <= 0 {
		return nil
	}
	row := make([]float32, length)
	x := float64(index)
	for i := range row {
		if warp {
			row[i] = float32(f.Warped(x, float64(i), p))
		} else {
			row[i] = float32(f.Sample(x, float64(i), p))
		}
	}
	return row
}
