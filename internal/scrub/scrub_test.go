package scrub

import (
	"errors"
	"math"
	"slices"
	"testing"

	"noise-stream/internal/ringstore"
)

func TestStartRow(t *testing.T) {
	w, err := NewWindow(4)
	if err != nil {
		t.Fatal(err)
	}
	cases := map[float64]int{-10: 0, 0: 0, 3.9: 0, 4: 1, 17: 4, 400: 100}
	for pos, want := range cases {
		if got := w.StartRow(pos); got != want {
			t.Fatalf("StartRow(%g) = %d, want %d", pos, got, want)
		}
	}
	if w.StartRow(math.NaN()) != 0 {
		t.Fatal("NaN scroll position should map to row 0")
	}
}

func TestStartRowSaturates(t *testing.T) {
	w, _ := NewWindow(1)
	for _, pos := range []float64{1e19, math.MaxFloat64, math.Inf(1)} {
		if got := w.StartRow(pos); got != math.MaxInt {
			t.Fatalf("StartRow(%g) = %d, want MaxInt", pos, got)
		}
	}

	store, err := ringstore.New(64, 16, 8)
	if err != nil {
		t.Fatal(err)
	}
	for r := 0; r < 40; r++ {
		if _, err := store.Append(make([]float32, 8)); err != nil {
			t.Fatal(err)
		}
	}
	for _, pos := range []float64{1e6, 1e19, math.MaxFloat64, math.Inf(1)} {
		v, err := w.Query(store, pos, 4)
		if err != nil {
			t.Fatal(err)
		}
		if v.Start != 36 {
			t.Fatalf("Query(%g) start = %d, want 36", pos, v.Start)
		}
	}
}

func TestNewWindowRejectsBadHeight(t *testing.T) {
	for _, h := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if _, err := NewWindow(h); err == nil {
			t.Fatalf("NewWindow(%g) should fail", h)
		}
	}
}

func TestQueryTracksStore(t *testing.T) {
	store, err := ringstore.New(64, 16, 8)
	if err != nil {
		t.Fatal(err)
	}
	w, _ := NewWindow(2)

	if _, err := w.Query(store, 0, 4); !errors.Is(err, ringstore.ErrNoView) {
		t.Fatalf("empty store query error = %v, want ErrNoView", err)
	}

	row := func(r int) []float32 {
		out := make([]float32, 8)
		for i := range out {
			out[i] = float32(r)
		}
		return out
	}
	for r := 0; r < 10; r++ {
		if _, err := store.Append(row(r)); err != nil {
			t.Fatal(err)
		}
	}

	a, err := w.Query(store, 6, 4)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := w.Query(store, 6, 4)
	if a.Start != 3 || !slices.Equal(a.Data, b.Data) {
		t.Fatalf("query start=%d, repeated query equal=%v", a.Start, slices.Equal(a.Data, b.Data))
	}

	// scrolled past the end: window ends at the newest row
	c, _ := w.Query(store, 1000, 4)
	if c.Start != 6 || c.Row(3)[0] != 9 {
		t.Fatalf("clamped query start=%d last=%g", c.Start, c.Row(3)[0])
	}

	if _, err := store.Append(row(10)); err != nil {
		t.Fatal(err)
	}
	d, _ := w.Query(store, 1000, 4)
	if d.Start != 7 || d.Row(3)[0] != 10 {
		t.Fatalf("query after append start=%d last=%g", d.Start, d.Row(3)[0])
	}
}

func TestScrollerClampsAtZero(t *testing.T) {
	var s Scroller
	if got := s.Scroll(-5); got != 0 {
		t.Fatalf("Scroll(-5) = %g, want 0", got)
	}
	s.Scroll(30)
	s.Scroll(-10)
	if got := s.Position(); got != 20 {
		t.Fatalf("Position = %g, want 20", got)
	}
	if got := s.Scroll(math.NaN()); got != 20 {
		t.Fatalf("Scroll(NaN) = %g, want 20", got)
	}
	if got := s.Scroll(-100); got != 0 {
		t.Fatalf("Scroll(-100) = %g, want 0", got)
	}
}
