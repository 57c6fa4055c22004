package noise

import (
	"math"
	"slices"
	"testing"
)

func identity() Params {
	return Params{Octaves: 1, Period: 1, Lacunarity: 2, Gain: 1}
}

func TestParamsForLength(t *testing.T) {
	cases := []struct {
		n       int
		octaves int
		period  float64
	}{
		{n: 0, octaves: 1, period: 0.5},
		{n: 1, octaves: 1, period: 0.5},
		{n: 2, octaves: 1, period: 1},
		{n: 4, octaves: 2, period: 2},
		{n: 64, octaves: 6, period: 32},
		{n: 128, octaves: 7, period: 64},
		{n: 129, octaves: 8, period: 64.5},
		{n: 1024, octaves: 10, period: 512},
	}
	for _, c := range cases {
		p := ParamsForLength(c.n)
		if p.Octaves != c.octaves || p.Period != c.period {
			t.Fatalf("ParamsForLength(%d) = %+v, want octaves=%d period=%g", c.n, p, c.octaves, c.period)
		}
		if p.Lacunarity != 2 || p.Gain != 0.5 {
			t.Fatalf("ParamsForLength(%d) changed lacunarity/gain: %+v", c.n, p)
		}
		if err := p.Validate(); err != nil {
			t.Fatalf("ParamsForLength(%d) invalid: %v", c.n, err)
		}
	}
}

func TestValidateRejectsOutOfRange(t *testing.T) {
	bad := []Params{
		{Octaves: 0, Period: 1, Lacunarity: 2, Gain: 0.5},
		{Octaves: 1, Period: 0, Lacunarity: 2, Gain: 0.5},
		{Octaves: 1, Period: math.NaN(), Lacunarity: 2, Gain: 0.5},
		{Octaves: 1, Period: 1, Lacunarity: 1, Gain: 0.5},
		{Octaves: 1, Period: 1, Lacunarity: 2, Gain: 1},
		{Octaves: 1, Period: 1, Lacunarity: 2, Gain: 0},
	}
	for _, p := range bad {
		if err := p.Validate(); err == nil {
			t.Fatalf("Validate(%+v) = nil, want error", p)
		}
	}
}

func TestOverridesApply(t *testing.T) {
	base := ParamsForLength(128)
	if got := (Overrides{}).Apply(base); got != base {
		t.Fatalf("empty overrides changed params: %+v", got)
	}
	got := Overrides{Octaves: 3, Gain: 0.7, Lacunarity: 0.5}.Apply(base)
	want := base
	want.Octaves = 3
	want.Gain = 0.7
	if got != want {
		t.Fatalf("Apply = %+v, want %+v", got, want)
	}
}

func TestSampleWithIdentityStub(t *testing.T) {
	f := New(SourceFunc(func(x, y float64) float64 { return x + y }))
	p := identity()
	for i := 0; i < 4; i++ {
		if got := f.Sample(0, float64(i), p); got != float64(i) {
			t.Fatalf("Sample(0,%d) = %g, want %d", i, got, i)
		}
	}
	if got := f.Row(0, 4, p, false); !slices.Equal(got, []float32{0, 1, 2, 3}) {
		t.Fatalf("Row(0,4) = %v, want [0 1 2 3]", got)
	}
	if got := f.Row(2, 3, p, false); !slices.Equal(got, []float32{2, 3, 4}) {
		t.Fatalf("Row(2,3) = %v, want [2 3 4]", got)
	}
}

func TestSampleOctaveWeights(t *testing.T) {
	f := New(SourceFunc(func(x, y float64) float64 { return 1 }))
	p := Params{Octaves: 3, Period: 8, Lacunarity: 2, Gain: 0.5}
	// 0.5 + 0.25 + 0.125
	if got := f.Sample(3, 7, p); got != 0.875 {
		t.Fatalf("Sample = %g, want 0.875", got)
	}

	var freqs []float64
	rec := New(SourceFunc(func(x, y float64) float64 {
		freqs = append(freqs, x)
		return 0
	}))
	rec.Sample(1, 0, p)
	if !slices.Equal(freqs, []float64{0.125, 0.25, 0.5}) {
		t.Fatalf("frequencies = %v, want [0.125 0.25 0.5]", freqs)
	}
}

func TestWarpedOffsets(t *testing.T) {
	var xs, ys []float64
	f := New(SourceFunc(func(x, y float64) float64 {
		xs = append(xs, x)
		ys = append(ys, y)
		return 0
	}))
	p := identity()
	if got := f.Warped(10, 20, p); got != 0 {
		t.Fatalf("Warped = %g, want 0", got)
	}
	wantX := []float64{10, 15.2, 11.7, 18.3, 10}
	wantY := []float64{20, 21.3, 29.2, 22.8, 20}
	if !near(xs, wantX) || !near(ys, wantY) {
		t.Fatalf("warp evaluations at x=%v y=%v, want x=%v y=%v", xs, ys, wantX, wantY)
	}
}

func near(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(a[i]-b[i]) > 1e-9 {
			return false
		}
	}
	return true
}

func TestDeterministicAcrossCalls(t *testing.T) {
	for _, kind := range []Kind{KindSimplex, KindPerlin, KindValue} {
		src, err := NewSource(kind, 42)
		if err != nil {
			t.Fatalf("NewSource(%s): %v", kind, err)
		}
		twin, _ := NewSource(kind, 42)
		f, g := New(src), New(twin)
		p := ParamsForLength(128)
		for _, pt := range [][2]float64{{0, 0}, {17, 3}, {1e3, 127}, {-5.5, 64.25}} {
			a := f.Sample(pt[0], pt[1], p)
			b := f.Sample(pt[0], pt[1], p)
			c := g.Sample(pt[0], pt[1], p)
			if math.Float64bits(a) != math.Float64bits(b) || math.Float64bits(a) != math.Float64bits(c) {
				t.Fatalf("%s: Sample%v not deterministic: %v %v %v", kind, pt, a, b, c)
			}
			wa := f.Warped(pt[0], pt[1], p)
			wb := g.Warped(pt[0], pt[1], p)
			if math.Float64bits(wa) != math.Float64bits(wb) {
				t.Fatalf("%s: Warped%v not deterministic: %v %v", kind, pt, wa, wb)
			}
		}
		if !slices.Equal(f.Row(9, 64, p, true), g.Row(9, 64, p, true)) {
			t.Fatalf("%s: warped rows differ for equal seeds", kind)
		}
	}
}

func TestValueSourceBounded(t *testing.T) {
	f := New(NewValue(7))
	p := ParamsForLength(256)
	for x := 0; x < 50; x++ {
		row := f.Row(int64(x), 256, p, false)
		for i, v := range row {
			if v < -1 || v > 1 {
				t.Fatalf("row %d sample %d = %g out of [-1,1]", x, i, v)
			}
		}
	}
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{"": KindSimplex, "Simplex": KindSimplex, " perlin ": KindPerlin, "VALUE": KindValue} {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Fatalf("ParseKind(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseKind("worley"); err == nil {
		t.Fatal("ParseKind(worley) should fail")
	}
	if _, err := NewSource("worley", 1); err == nil {
		t.Fatal("NewSource(worley) should fail")
	}
}

func TestRowEmpty(t *testing.T) {
	if got := New(NewValue(1)).Row(0, 0, ParamsForLength(4), false); got != nil {
		t.Fatalf("Row with zero length = %v, want nil", got)
	}
}
