// Package envelope implements the four-segment exponential amplitude
// shaper. Each segment is a first-order IIR step toward its target;
// small epsilon thresholds end the segments in finite time instead of
// asymptotically.
package envelope

import "math"

// State values are bit flags, preserved from the host parameter surface.
type State int

const (
	Idle    State = 0
	Attack  State = 1
	Decay   State = 2
	Sustain State = 4
	Release State = 8
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Attack:
		return "attack"
	case Decay:
		return "decay"
	case Sustain:
		return "sustain"
	case Release:
		return "release"
	}
	return "unknown"
}

// Segment-end thresholds, relative to the velocity scale.
var (
	attackEps = math.Exp(-5)
	settleEps = 1e-6
)

type ADSR struct {
	sampleRate float64

	a float64 // attack coefficient
	d float64 // decay coefficient
	r float64 // release coefficient
	s float64 // sustain target gain

	state State
	env   float64 // current output amplitude
	scale float64 // velocity-derived ceiling
}

// New creates an envelope with instantaneous segments and full sustain;
// hosts overwrite these from the parameter surface.
func New(sampleRate float64) *ADSR {
	e := &ADSR{sampleRate: sampleRate, s: 1}
	e.SetAttackMs(0)
	e.SetDecayMs(0)
	e.SetReleaseMs(0)
	return e
}

// coef converts a segment time to a one-pole coefficient whose 99.3%
// settle time equals the requested time.
func (e *ADSR) coef(timeSeconds float64) float64 {
	return 1 / (0.2*timeSeconds*e.sampleRate + 1)
}

// SetAttackMs sets the attack time in milliseconds.
func (e *ADSR) SetAttackMs(ms float64) { e.a = e.coef(ms / 1000) }

// SetDecayMs sets the decay time in milliseconds.
func (e *ADSR) SetDecayMs(ms float64) { e.d = e.coef(ms / 1000) }

// SetReleaseMs sets the release time in milliseconds.
func (e *ADSR) SetReleaseMs(ms float64) { e.r = e.coef(ms / 1000) }

// SetSustainDB sets the sustain level from a decibel value.
func (e *ADSR) SetSustainDB(db float64) { e.s = math.Pow(10, 0.05*db) }

// SetSustain sets the sustain level as a plain gain.
func (e *ADSR) SetSustain(gain float64) { e.s = gain }

func (e *ADSR) State() State   { return e.state }
func (e *ADSR) Env() float64   { return e.env }
func (e *ADSR) Scale() float64 { return e.scale }

// Active reports whether the envelope contributes output.
func (e *ADSR) Active() bool { return e.state != Idle }

// TriggerAttack starts a note with the given velocity-derived ceiling.
// A zero attack time (coefficient >= 1) jumps straight to Decay at full
// scale.
func (e *ADSR) TriggerAttack(scale float64) {
	e.scale = scale
	if e.a >= 1 {
		e.env = scale
		e.state = Decay
		e.stepDecay()
		return
	}
	e.state = Attack
}

// TriggerRelease starts the release segment; a zero release time resets
// to Idle immediately.
func (e *ADSR) TriggerRelease() {
	if e.state == Idle {
		return
	}
	if e.r >= 1 {
		e.reset()
		return
	}
	e.state = Release
}

// Reset forces the envelope silent without a release tail.
func (e *ADSR) Reset() { e.reset() }

func (e *ADSR) reset() {
	e.state = Idle
	e.env = 0
}

// Next advances the envelope by one sample and returns the amplitude.
func (e *ADSR) Next() float64 {
	switch e.state {
	case Attack:
		e.env += e.a * (e.scale - e.env)
		if math.Abs(e.env-e.scale) <= e.scale*attackEps {
			e.state = Decay
		}
	case Decay:
		e.stepDecay()
	case Sustain:
		// holds env
	case Release:
		e.env += e.r * (0 - e.env)
		if math.Abs(e.env) <= e.scale*settleEps {
			e.reset()
		}
	}
	return e.env
}

func (e *ADSR) stepDecay() {
	target := e.scale * e.s
	e.env += e.d * (target - e.env)
	if math.Abs(e.env-target) <= e.scale*settleEps {
		e.env = target
		e.state = Sustain
	}
}
