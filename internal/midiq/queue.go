// Package midiq buffers timestamped note events for one audio block and
// hands them out sample-accurately: an event recorded at offset N stays
// invisible to Pop until the per-sample counter has advanced N times
// since the last Rewind.
package midiq

import "github.com/mft14/fwerk/internal/arena"

// MIDI status bytes (channel stripped) and the derived filter bits.
const (
	StatusNoteOff        = 0x80
	StatusNoteOn         = 0x90
	StatusControlChange  = 0xB0
	CCAllNotesOff        = 123
	MaskNoteOff          = 1 << 0
	MaskNoteOn           = 1 << 1
	MaskControlChange    = 1 << 5
	MaskAll              = 0xFF
	// AnyChannel accepts events from every channel during Collect.
	AnyChannel = -1
)

// Event cells inside the arena block.
const (
	cellOffset = 0
	cellStatus = 1
	cellData   = 2
	eventCells = 3
)

// Event is one dequeued note event.
type Event struct {
	Offset int // sample offset within the block
	Status int // status byte including channel
	Data1  int
	Data2  int
}

// Raw is a host event triple as delivered at block rate.
type Raw struct {
	Offset int
	Status int
	Data   int // data1 | data2<<8
}

type Queue struct {
	mem     *arena.Arena
	base    int
	cap     int
	head    int
	tail    int
	counter int
}

// New allocates a queue of up to capacity events from the arena, claimed
// once and never resized.
func New(mem *arena.Arena, capacity int) *Queue {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue{
		mem:  mem,
		base: mem.Calloc(capacity, eventCells),
		cap:  capacity,
	}
}

// Rewind resets head and tail to the buffer start and clears the sample
// counter. Called once per audio block before collection.
func (q *Queue) Rewind() {
	q.head = 0
	q.tail = 0
	q.counter = 0
}

// Push appends an event. Beyond capacity events are silently dropped.
func (q *Queue) Push(offset, status, data1, data2 int) {
	if q.tail >= q.cap {
		return
	}
	e := q.base + q.tail*eventCells
	q.mem.Set(e+cellOffset, float64(offset))
	q.mem.Set(e+cellStatus, float64(status))
	q.mem.Set(e+cellData, float64(data1|data2<<8))
	q.tail++
}

// Pop returns the next event whose recorded offset has arrived. When no
// event is due it advances the sample counter by one and reports none:
// one Pop models one sample of elapsed time.
func (q *Queue) Pop() (Event, bool) {
	if q.head < q.tail {
		e := q.base + q.head*eventCells
		if int(q.mem.At(e+cellOffset)) <= q.counter {
			q.head++
			data := int(q.mem.At(e + cellData))
			return Event{
				Offset: int(q.mem.At(e + cellOffset)),
				Status: int(q.mem.At(e + cellStatus)),
				Data1:  data & 0xFF,
				Data2:  data >> 8 & 0xFF,
			}, true
		}
	}
	q.counter++
	return Event{}, false
}

// Pending reports how many pushed events have not been popped yet.
func (q *Queue) Pending() int { return q.tail - q.head }

// Collect runs the block-rate side: it filters the raw host events by
// channel (AnyChannel accepts all) and message-type bitmask, pushes the
// accepted ones, and forwards every raw event unmodified through send.
// The pass-through is mandatory; filtering never removes an event from
// the host's own stream.
func (q *Queue) Collect(events []Raw, channel, typeMask int, send func(Raw)) {
	for _, ev := range events {
		if send != nil {
			send(ev)
		}
		if channel != AnyChannel && ev.Status&0x0F != channel {
			continue
		}
		if typeMask&maskFor(ev.Status) == 0 {
			continue
		}
		q.Push(ev.Offset, ev.Status, ev.Data&0xFF, ev.Data>>8&0xFF)
	}
}

func maskFor(status int) int {
	switch status & 0xF0 {
	case StatusNoteOff:
		return MaskNoteOff
	case StatusNoteOn:
		return MaskNoteOn
	case StatusControlChange:
		return MaskControlChange
	default:
		return 0
	}
}
