// Package scrub projects a scroll position onto a window of rows in a
// ringstore.Store.
package scrub

import (
	"fmt"
	"math"
	"sync"

	"noise-stream/internal/ringstore"
)

// Reader is the part of ringstore.Store a Window reads from.
type Reader interface {
	ReadWindow(startRow, height int) (ringstore.View, error)
}

// Window maps scroll positions to row windows. RowPixelHeight is how many
// scroll units one row occupies.
type Window struct {
	RowPixelHeight float64
}

// NewWindow returns a Window with the given row pixel height.
func NewWindow(rowPixelHeight float64) (Window, error) {
	if !(rowPixelHeight > 0) || math.IsInf(rowPixelHeight, 0) {
		return Window{}, fmt.Errorf("scrub: row pixel height must be positive, got %g", rowPixelHeight)
	}
	return Window{RowPixelHeight: rowPixelHeight}, nil
}

// StartRow returns floor(scrollPosition / RowPixelHeight); negative positions
// clamp to row 0 and positions past the int range to math.MaxInt.
func (w Window) StartRow(scrollPosition float64) int {
	if !(scrollPosition > 0) {
		return 0
	}
	q := math.Floor(scrollPosition / w.RowPixelHeight)
	if q >= math.MaxInt {
		return math.MaxInt
	}
	return int(q)
}

// Query reads the window for scrollPosition from store. Nothing is cached:
// every call reflects the rows appended so far.
func (w Window) Query(store Reader, scrollPosition float64, height int) (ringstore.View, error) {
	return store.ReadWindow(w.StartRow(scrollPosition), height)
}

// Scroller accumulates wheel deltas into a scroll position that never goes
// below zero.
type Scroller struct {
	mu  sync.Mutex
	pos float64
}

// Scroll applies delta and returns the new position.
func (s *Scroller) Scroll(delta float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if math.IsNaN(delta) {
		return s.pos
	}
	s.pos = math.Max(s.pos+delta, 0)
	return s.pos
}

// Position returns the current scroll position.
func (s *Scroller) Position() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos
}
