// Package ringstore keeps the most recent rows of an unbounded stream in a
// fixed arena and serves rectangular windows over them.
package ringstore

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrNoView is returned when fewer rows than the window height have been
	// appended. Callers should keep whatever they displayed before.
	ErrNoView = errors.New("ringstore: not enough rows for window")
	// ErrRowLength is returned by Append for a row that does not match the
	// configured row length.
	ErrRowLength = errors.New("ringstore: row length mismatch")
	// ErrRowWidth is returned by New and Reset for a row length outside
	// [1, width]. The error also carries an *InvalidWindowError.
	ErrRowWidth = errors.New("ringstore: row length does not fit store width")
)

// InvalidWindowError reports a window or row that cannot fit in the arena.
type InvalidWindowError struct {
	Width, Height       int
	MaxWidth, MaxHeight int
}

func (e *InvalidWindowError) Error() string {
	return fmt.Sprintf("ringstore: window %dx%d does not fit backing store %dx%d",
		e.Width, e.Height, e.MaxWidth, e.MaxHeight)
}

// Store is a circular 2-D buffer of float32 samples. Appends and reads are
// serialized; a read never observes a partially written row.
type Store struct {
	mu     sync.RWMutex
	layout Layout
	data   []float32
	next   int
}

// New allocates a width x height arena for rows of rowLength samples.
func New(width, height, rowLength int) (*Store, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("ringstore: invalid backing size %dx%d", width, height)
	}
	s := &Store{data: make([]float32, width*height)}
	s.layout = Layout{Width: width, Height: height}
	if err := s.setRowLength(rowLength); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) setRowLength(n int) error {
	if n <= 0 || n > s.layout.Width {
		return fmt.Errorf("%w: %w", ErrRowWidth,
			&InvalidWindowError{Width: n, Height: 1, MaxWidth: s.layout.Width, MaxHeight: s.layout.Height})
	}
	s.layout.RowLength = n
	return nil
}

// Reset clears the store and re-blocks it for rows of rowLength samples. The
// logical row counter restarts at zero.
func (s *Store) Reset(rowLength int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.setRowLength(rowLength); err != nil {
		return err
	}
	clear(s.data)
	s.next = 0
	return nil
}

// Append writes row into the slot of the next logical row, overwriting the
// oldest retained row once the store has wrapped, and returns its logical
// index.
func (s *Store) Append(row []float32) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(row) != s.layout.RowLength {
		return 0, fmt.Errorf("%w: got %d samples, want %d", ErrRowLength, len(row), s.layout.RowLength)
	}
	r := s.next
	x, y := s.layout.Locate(r)
	copy(s.data[s.layout.offset(x, y):], row)
	s.next++
	return r, nil
}

// ReadWindow materializes rows [startRow, startRow+height) oldest first.
//
// A window reaching past the newest row is shifted back so it ends at the
// newest row; a window starting before the oldest retained row is shifted
// forward to it. The height is never truncated: if fewer than height rows
// were ever appended ErrNoView is returned.
func (s *Store) ReadWindow(startRow, height int) (View, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l := s.layout
	if height <= 0 || height > l.Height || l.RowLength > l.Width {
		return View{}, &InvalidWindowError{Width: l.RowLength, Height: height, MaxWidth: l.Width, MaxHeight: l.Height}
	}
	if s.next < height {
		return View{}, ErrNoView
	}

	start := clampStart(startRow, height, s.next, l.Capacity())
	v := View{
		Start:  start,
		Width:  l.RowLength,
		Height: height,
		Data:   make([]float32, l.RowLength*height),
	}
	dst := v.Data
	for _, seg := range l.Segments(start, height) {
		for y := seg.Y; y < seg.Y+seg.H; y++ {
			off := l.offset(seg.X, y)
			n := copy(dst, s.data[off:off+seg.W])
			dst = dst[n:]
		}
	}
	return v, nil
}

func clampStart(start, height, total, capacity int) int {
	if start < 0 {
		start = 0
	}
	if start > total-height {
		start = total - height
	}
	if oldest := total - capacity; start < oldest {
		start = oldest
	}
	return start
}

// Rows returns how many rows have ever been appended.
func (s *Store) Rows() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.next
}

// Retained returns how many rows are currently readable.
func (s *Store) Retained() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return min(s.next, s.layout.Capacity())
}

// Layout returns the current arena layout.
func (s *Store) Layout() Layout {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.layout
}

// RowLength returns the configured row length.
func (s *Store) RowLength() int { return s.Layout().RowLength }

// Capacity returns the number of rows the store retains.
func (s *Store) Capacity() int { return s.Layout().Capacity() }

// Width returns the backing arena width in samples.
func (s *Store) Width() int { return s.Layout().Width }

// Height returns the backing arena height in rows.
func (s *Store) Height() int { return s.Layout().Height }

// Locate maps logical row r to the arena position of its first sample.
func (s *Store) Locate(r int) (x, y int) { return s.Layout().Locate(r) }
