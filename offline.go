package fwerk

import (
	"encoding/binary"
	"math"
)

// NoteEvent schedules one note for offline rendering: it starts At
// seconds into the render and releases Duration seconds later.
type NoteEvent struct {
	At       float64
	Duration float64
	Note     int
	Velocity int
}

// renderBlock is the block size used for offline rendering. Events land
// on their exact sample via in-block offsets, so the choice only bounds
// how many events one block can carry.
const renderBlock = 512

// RenderSamples renders the note events through a freshly configured
// Synth and returns interleaved stereo float32 samples.
func RenderSamples(sampleRate int, seconds float64, notes []NoteEvent, opts ...Option) ([]float32, error) {
	s, err := New(sampleRate, opts...)
	if err != nil {
		return nil, err
	}
	type edge struct {
		frame int
		on    bool
		note  int
		vel   int
	}
	edges := make([]edge, 0, len(notes)*2)
	for _, n := range notes {
		on := int(n.At * float64(sampleRate))
		off := int((n.At + n.Duration) * float64(sampleRate))
		edges = append(edges,
			edge{frame: on, on: true, note: n.Note, vel: n.Velocity},
			edge{frame: off, note: n.Note})
	}
	// Insertion sort by frame, note-offs before note-ons at the same
	// frame so retriggers restart cleanly.
	for i := 1; i < len(edges); i++ {
		for j := i; j > 0; j-- {
			a, b := edges[j-1], edges[j]
			if a.frame < b.frame || (a.frame == b.frame && !(a.on && !b.on)) {
				break
			}
			edges[j-1], edges[j] = b, a
		}
	}

	frames := int(float64(sampleRate) * seconds)
	out := make([]float32, frames*2)
	next := 0
	for start := 0; start < frames; start += renderBlock {
		n := renderBlock
		if start+n > frames {
			n = frames - start
		}
		for next < len(edges) && edges[next].frame < start+n {
			e := edges[next]
			if e.on {
				s.NoteOnAt(e.frame-start, e.note, e.vel)
			} else {
				s.NoteOffAt(e.frame-start, e.note)
			}
			next++
		}
		s.Process(out[start*2 : (start+n)*2])
	}
	return out, nil
}

// EncodeWAVFloat32LE wraps interleaved float32 samples in a WAV
// container (format 3, IEEE float).
func EncodeWAVFloat32LE(samples []float32, sampleRate int, channels int) []byte {
	dataSize := len(samples) * 4
	byteRate := sampleRate * channels * 4
	blockAlign := channels * 4
	chunkSize := 36 + dataSize
	out := make([]byte, 44+dataSize)
	copy(out[0:], []byte("RIFF"))
	binary.LittleEndian.PutUint32(out[4:], uint32(chunkSize))
	copy(out[8:], []byte("WAVE"))
	copy(out[12:], []byte("fmt "))
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 3)
	binary.LittleEndian.PutUint16(out[22:], uint16(channels))
	binary.LittleEndian.PutUint32(out[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:], 32)
	copy(out[36:], []byte("data"))
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[44+i*4:], math.Float32bits(s))
	}
	return out
}
