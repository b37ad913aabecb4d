package arena

import "testing"

func TestAllocZeroIsTopQuery(t *testing.T) {
	a := New(64)
	if got := a.Alloc(0); got != 0 {
		t.Fatalf("Alloc(0) on empty arena = %d, want 0", got)
	}
	if a.Top() != 0 {
		t.Fatalf("Alloc(0) moved top to %d", a.Top())
	}
	a.Alloc(10)
	if got := a.Alloc(0); got != a.Top() {
		t.Fatalf("Alloc(0) = %d, want top %d", got, a.Top())
	}
}

func TestAllocAdvancesTopBysizePlusHeader(t *testing.T) {
	a := New(128)
	off := a.Alloc(100)
	if off != headerSize {
		t.Fatalf("first Alloc = %d, want %d", off, headerSize)
	}
	if a.Top() != 100+headerSize {
		t.Fatalf("top = %d, want %d", a.Top(), 100+headerSize)
	}
}

func TestFreeLastBlockRestoresTop(t *testing.T) {
	a := New(64)
	a.Alloc(8)
	before := a.Top()
	off := a.Alloc(16)
	a.Free(off)
	if a.Top() != before {
		t.Fatalf("top = %d after freeing last block, want %d", a.Top(), before)
	}
}

func TestFreeInteriorBlockKeepsTopThenCompactsTrailing(t *testing.T) {
	a := New(128)
	first := a.Alloc(4)
	second := a.Alloc(4)
	top := a.Top()

	a.Free(first)
	if a.Top() != top {
		t.Fatalf("interior free moved top to %d, want %d", a.Top(), top)
	}
	// Freeing the last block must now reclaim the interior hole too.
	a.Free(second)
	if a.Top() != 0 {
		t.Fatalf("top = %d after freeing trailing blocks, want 0", a.Top())
	}
}

func TestAllocReusesFreeBlock(t *testing.T) {
	a := New(128)
	first := a.Alloc(8)
	a.Alloc(8) // keeps first from becoming trailing
	a.Free(first)
	if got := a.Alloc(6); got != first {
		t.Fatalf("Alloc after interior free = %d, want reuse of %d", got, first)
	}
}

func TestCallocZeroFillsReusedBlock(t *testing.T) {
	a := New(128)
	off := a.Alloc(4)
	for i := 0; i < 4; i++ {
		a.Set(off+i, 1)
	}
	a.Alloc(4)
	a.Free(off)
	got := a.Calloc(2, 2)
	if got != off {
		t.Fatalf("Calloc = %d, want reused block %d", got, off)
	}
	for i := 0; i < 4; i++ {
		if a.At(got+i) != 0 {
			t.Fatalf("cell %d = %v, want 0", i, a.At(got+i))
		}
	}
}

func TestReallocInPlaceAndExtendLast(t *testing.T) {
	a := New(128)
	off := a.Alloc(10)
	if got := a.Realloc(off, 6); got != off {
		t.Fatalf("shrink moved block to %d", got)
	}
	if got := a.Realloc(off, 40); got != off {
		t.Fatalf("extending the last block moved it to %d", got)
	}
	if a.Top() != off+40 {
		t.Fatalf("top = %d after extend, want %d", a.Top(), off+40)
	}
}

func TestReallocMovesInteriorBlock(t *testing.T) {
	a := New(256)
	off := a.Alloc(4)
	a.Set(off, 7)
	a.Set(off+3, 9)
	a.Alloc(4) // pins off as interior
	moved := a.Realloc(off, 32)
	if moved == off {
		t.Fatalf("interior grow should move the block")
	}
	if a.At(moved) != 7 || a.At(moved+3) != 9 {
		t.Fatalf("payload not copied: got %v, %v", a.At(moved), a.At(moved+3))
	}
	// The old block is free again.
	if got := a.Alloc(4); got != off {
		t.Fatalf("old block not reusable: Alloc = %d, want %d", got, off)
	}
}

func TestFreeUnknownOffsetIgnored(t *testing.T) {
	a := New(64)
	a.Alloc(8)
	top := a.Top()
	a.Free(1)
	a.Free(-5)
	a.Free(10_000)
	if a.Top() != top {
		t.Fatalf("bogus Free changed top to %d, want %d", a.Top(), top)
	}
}

func TestAllocAlignedNeverStraddles64K(t *testing.T) {
	a := New(1 << 17)
	// March top close to the 64k boundary, then ask for a block that
	// would straddle it.
	a.Alloc(0xFFE0)
	off := a.AllocAligned(64)
	if (off&0xFFFF)+64 > 0x10000 {
		t.Fatalf("aligned block straddles boundary: off=%#x", off)
	}
	// Accounting invariant still holds: walking the blocks reaches top.
	b := 0
	for b < a.Top() {
		b += headerSize + int(a.At(b))
	}
	if b != a.Top() {
		t.Fatalf("block walk ends at %d, top is %d", b, a.Top())
	}
}

func TestAllocAlignedWithoutBoundaryIsPlainAppend(t *testing.T) {
	a := New(64)
	off := a.AllocAligned(16)
	if off != headerSize {
		t.Fatalf("AllocAligned = %d, want %d", off, headerSize)
	}
	if a.Top() != 16+headerSize {
		t.Fatalf("top = %d, want %d", a.Top(), 16+headerSize)
	}
}
