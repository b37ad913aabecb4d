// Package voicetab keeps the ordered table of sounding notes. Rows live
// contiguously inside a single arena block; the table owns the logical
// row count. Row offsets are raw arena offsets and are invalidated by any
// structural mutation of the table, like iterators.
package voicetab

import "github.com/mft14/fwerk/internal/arena"

// NotFound is returned by lookups that run off the end of the table.
const NotFound = -1

// Row layout inside the arena block.
const (
	ColNote      = 0
	ColPhase     = 1
	ColIncrement = 2
	RowCells     = 3
)

type Table struct {
	mem  *arena.Arena
	base int
	cap  int
	size int
}

// New allocates a table of up to capacity rows from the arena. The block
// is claimed once here and never resized; exceeding capacity is the
// caller's responsibility to avoid.
func New(mem *arena.Arena, capacity int) *Table {
	if capacity < 1 {
		capacity = 1
	}
	return &Table{
		mem:  mem,
		base: mem.Calloc(capacity, RowCells),
		cap:  capacity,
	}
}

func (t *Table) Size() int     { return t.size }
func (t *Table) Capacity() int { return t.cap }

// Get returns the offset of the given row index, or NotFound.
func (t *Table) Get(row int) int {
	if row < 0 || row >= t.size {
		return NotFound
	}
	return t.base + row*RowCells
}

// Append grows the table by one row and returns its offset. The payload
// is left as-is; callers overwrite every column.
func (t *Table) Append() int {
	off := t.base + t.size*RowCells
	t.size++
	return off
}

// Insert opens a slot at off, shifting later rows up by one, and returns
// off. The new row's payload is undefined until written.
func (t *Table) Insert(off int) int {
	end := t.base + t.size*RowCells
	if off < t.base || off > end {
		return NotFound
	}
	t.mem.Copy(off+RowCells, off, end-off)
	t.size++
	return off
}

// Remove deletes the row at off, shifting later rows down to close the
// gap, and returns off (now addressing the following row).
func (t *Table) Remove(off int) int {
	end := t.base + t.size*RowCells
	if off < t.base || off >= end {
		return NotFound
	}
	t.mem.Copy(off, off+RowCells, end-off-RowCells)
	t.size--
	return off
}

// First returns the offset of row 0, or NotFound when empty.
func (t *Table) First() int {
	if t.size == 0 {
		return NotFound
	}
	return t.base
}

// Last returns the offset of the final row, or NotFound when empty.
func (t *Table) Last() int {
	if t.size == 0 {
		return NotFound
	}
	return t.base + (t.size-1)*RowCells
}

// Next returns the offset of the row after off, or NotFound.
func (t *Table) Next(off int) int {
	off += RowCells
	if off < t.base || off >= t.base+t.size*RowCells {
		return NotFound
	}
	return off
}

// Find scans from start for a row whose column equals value. Pass
// start=First() (or NotFound to begin at the first row).
func (t *Table) Find(value float64, column, start int) int {
	if start == NotFound {
		start = t.First()
	}
	for off := start; off != NotFound; off = t.Next(off) {
		if t.mem.At(off+column) == value {
			return off
		}
	}
	return NotFound
}

// Clear drops every row.
func (t *Table) Clear() { t.size = 0 }

// Note reads the note column of the row at off.
func (t *Table) Note(off int) int { return int(t.mem.At(off + ColNote)) }

// Phase reads the oscillator phase column.
func (t *Table) Phase(off int) float64 { return t.mem.At(off + ColPhase) }

// Increment reads the phase increment column.
func (t *Table) Increment(off int) float64 { return t.mem.At(off + ColIncrement) }

// SetRow writes all three columns of the row at off.
func (t *Table) SetRow(off, note int, phase, increment float64) {
	t.mem.Set(off+ColNote, float64(note))
	t.mem.Set(off+ColPhase, phase)
	t.mem.Set(off+ColIncrement, increment)
}

// SetPhase stores the oscillator phase back into the row.
func (t *Table) SetPhase(off int, phase float64) { t.mem.Set(off+ColPhase, phase) }

// SetIncrement stores a new phase increment (retune) into the row.
func (t *Table) SetIncrement(off int, inc float64) { t.mem.Set(off+ColIncrement, inc) }
