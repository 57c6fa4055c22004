package ringstore

// Layout describes how logical rows are packed into the backing arena. The
// arena is Width columns by Height rows; it is split into column blocks of
// RowLength columns and rows fill one block top to bottom before moving to
// the next block to the right. After the last block the sequence wraps to
// the first.
type Layout struct {
	Width     int
	Height    int
	RowLength int
}

// Rect is a rectangle of the arena in cells.
type Rect struct {
	X, Y int
	W, H int
}

// Blocks returns the number of whole column blocks.
func (l Layout) Blocks() int {
	if l.RowLength <= 0 {
		return 0
	}
	return l.Width / l.RowLength
}

// Capacity returns how many rows the arena retains.
func (l Layout) Capacity() int {
	return l.Blocks() * l.Height
}

// Locate maps logical row r to the arena position of its first sample.
func (l Layout) Locate(r int) (x, y int) {
	slot := r % l.Capacity()
	return (slot / l.Height) * l.RowLength, slot % l.Height
}

// Segments returns the arena rectangles holding logical rows
// [start, start+height), in logical order. A window that runs past the
// bottom of its column block is split in two: the tail of the starting block
// and the head of the next one. height must not exceed l.Height.
func (l Layout) Segments(start, height int) []Rect {
	x, y := l.Locate(start)
	first := height
	if y+first > l.Height {
		first = l.Height - y
	}
	segs := []Rect{{X: x, Y: y, W: l.RowLength, H: first}}
	if rest := height - first; rest > 0 {
		nx, _ := l.Locate(start + first)
		segs = append(segs, Rect{X: nx, Y: 0, W: l.RowLength, H: rest})
	}
	return segs
}

func (l Layout) offset(x, y int) int { return y*l.Width + x }
