// Package lfo provides the low-rate modulation source used for vibrato.
// One LFO is shared by all voices; its output is a pitch offset in cents
// that the engine folds into each voice's phase increment.
package lfo

import "math"

// Waveform shapes for the modulation cycle.
const (
	WaveTriangle = iota
	WaveSine
	WaveSaw
	WaveSquare
)

type LFO struct {
	depthCents float64
	rateHz     float64
	waveform   int
	phase      float64 // [0,1)
}

// Configure sets depth (cents), rate (Hz) and waveform. Zero depth or
// rate disables the LFO.
func (l *LFO) Configure(depthCents, rateHz float64, waveform int) {
	l.depthCents = depthCents
	l.rateHz = rateHz
	if waveform < WaveTriangle || waveform > WaveSquare {
		waveform = WaveTriangle
	}
	l.waveform = waveform
}

// Active reports whether the LFO modulates at all.
func (l *LFO) Active() bool {
	return l.depthCents != 0 && l.rateHz != 0
}

// Reset zeros the cycle phase.
func (l *LFO) Reset() { l.phase = 0 }

// Next advances one sample and returns the pitch offset in cents, in
// [-depth, +depth].
func (l *LFO) Next(sampleRate float64) float64 {
	if !l.Active() || sampleRate <= 0 {
		return 0
	}
	var v float64
	switch l.waveform {
	case WaveSine:
		v = math.Sin(2 * math.Pi * l.phase)
	case WaveSaw:
		v = 1 - 2*l.phase
	case WaveSquare:
		if l.phase < 0.5 {
			v = 1
		} else {
			v = -1
		}
	default: // triangle
		if l.phase < 0.5 {
			v = 4*l.phase - 1
		} else {
			v = 3 - 4*l.phase
		}
	}
	l.phase += l.rateHz / sampleRate
	for l.phase >= 1 {
		l.phase--
	}
	return v * l.depthCents
}
