// Package arena implements an offset-based allocator over one contiguous
// cell space, modeling a host that exposes a flat addressable buffer
// instead of a heap. Offsets returned by Alloc index into that space and
// stay valid until freed; dependent tables store rows as cell triples.
package arena

// Each block is a two-cell header (capacity, in-use size) followed by its
// payload. Blocks are laid out contiguously from cell 0; top marks the end
// of the last block.
const headerSize = 2

// NotFound is the sentinel offset returned when a lookup fails.
const NotFound = -1

type Arena struct {
	cells []float64
	top   int
}

// New creates an arena with an initial backing capacity of the given
// number of cells. The backing store grows as needed; allocation must
// still stay out of the per-sample hot path.
func New(capacity int) *Arena {
	if capacity < 0 {
		capacity = 0
	}
	return &Arena{cells: make([]float64, capacity)}
}

// Top returns the end of the last block.
func (a *Arena) Top() int { return a.top }

// Alloc returns the offset of a payload of at least size cells. It reuses
// the first free block large enough, otherwise appends a new block at top.
// Alloc(0) is a query: it returns the current top without allocating.
func (a *Arena) Alloc(size int) int {
	if size <= 0 {
		return a.top
	}
	for b := 0; b < a.top; b = a.next(b) {
		if a.inUse(b) == 0 && a.capacity(b) >= size {
			a.cells[b+1] = float64(size)
			return b + headerSize
		}
	}
	return a.appendBlock(size)
}

// AllocAligned allocates like Alloc but guarantees the returned block
// never straddles a 65536-cell boundary: the low 16 bits of the offset
// plus size never exceed 65536. Padding needed to reach the boundary
// becomes its own free block when it can carry a header, otherwise it is
// absorbed into the previous block's capacity.
func (a *Arena) AllocAligned(size int) int {
	if size <= 0 {
		return a.top
	}
	off := a.top + headerSize
	if (off&0xFFFF)+size > 0x10000 {
		pad := 0x10000 - off&0xFFFF
		a.ensure(a.top + pad)
		if pad > headerSize {
			// Free block filling the remainder of the 64k page.
			a.cells[a.top] = float64(pad - headerSize)
			a.cells[a.top+1] = 0
		} else if last := a.lastBlock(); last != NotFound {
			// Too small to carry a header; widen the previous block.
			a.cells[last] = float64(a.capacity(last) + pad)
		}
		a.top += pad
	}
	return a.appendBlock(size)
}

// Calloc allocates count*size cells and zero-fills the payload. Alloc may
// hand back a previously freed block, so the explicit clear matters.
func (a *Arena) Calloc(count, size int) int {
	n := count * size
	if n <= 0 {
		return a.top
	}
	off := a.Alloc(n)
	for i := 0; i < n; i++ {
		a.cells[off+i] = 0
	}
	return off
}

// Realloc resizes the block at off to newSize cells and returns its
// possibly new offset. Shrinking and growing within capacity happen in
// place; the last block extends top; anything else moves (alloc, copy,
// free). An offset the arena does not own is returned unchanged.
func (a *Arena) Realloc(off, newSize int) int {
	b := a.blockAt(off)
	if b == NotFound || newSize < 0 {
		return off
	}
	if newSize <= a.capacity(b) {
		a.cells[b+1] = float64(newSize)
		return off
	}
	if a.next(b) == a.top {
		a.ensure(b + headerSize + newSize)
		a.cells[b] = float64(newSize)
		a.cells[b+1] = float64(newSize)
		a.top = b + headerSize + newSize
		return off
	}
	moved := a.Alloc(newSize)
	n := a.inUse(b)
	if n > newSize {
		n = newSize
	}
	copy(a.cells[moved:moved+n], a.cells[off:off+n])
	a.cells[b+1] = 0
	return moved
}

// Free releases the block at off. Freeing the last block rolls top back
// past it and past any free blocks now left trailing; freeing an interior
// block only marks it unused until it becomes trailing. Offsets the arena
// does not own are ignored.
func (a *Arena) Free(off int) {
	b := a.blockAt(off)
	if b == NotFound {
		return
	}
	wasLast := a.next(b) == a.top
	a.cells[b+1] = 0
	if !wasLast {
		return
	}
	// Compact from the tail inward: top lands after the last in-use block.
	end := 0
	for c := 0; c < a.top; c = a.next(c) {
		if a.inUse(c) > 0 {
			end = a.next(c)
		}
	}
	a.top = end
}

// At returns the value of one cell; out-of-range reads yield 0.
func (a *Arena) At(i int) float64 {
	if i < 0 || i >= len(a.cells) {
		return 0
	}
	return a.cells[i]
}

// Set writes one cell; out-of-range writes are dropped.
func (a *Arena) Set(i int, v float64) {
	if i < 0 || i >= len(a.cells) {
		return
	}
	a.cells[i] = v
}

// Copy moves n cells from src to dst within the arena, handling overlap.
func (a *Arena) Copy(dst, src, n int) {
	if n <= 0 || dst < 0 || src < 0 || dst+n > len(a.cells) || src+n > len(a.cells) {
		return
	}
	copy(a.cells[dst:dst+n], a.cells[src:src+n])
}

func (a *Arena) capacity(b int) int { return int(a.cells[b]) }
func (a *Arena) inUse(b int) int    { return int(a.cells[b+1]) }
func (a *Arena) next(b int) int     { return b + headerSize + a.capacity(b) }

// blockAt walks the block list and returns the header offset of the block
// whose payload starts at off, or NotFound.
func (a *Arena) blockAt(off int) int {
	for b := 0; b < a.top; b = a.next(b) {
		if b+headerSize == off {
			return b
		}
	}
	return NotFound
}

func (a *Arena) lastBlock() int {
	last := NotFound
	for b := 0; b < a.top; b = a.next(b) {
		last = b
	}
	return last
}

func (a *Arena) appendBlock(size int) int {
	a.ensure(a.top + headerSize + size)
	a.cells[a.top] = float64(size)
	a.cells[a.top+1] = float64(size)
	off := a.top + headerSize
	a.top += headerSize + size
	return off
}

func (a *Arena) ensure(n int) {
	for len(a.cells) < n {
		a.cells = append(a.cells, make([]float64, n-len(a.cells))...)
	}
}
