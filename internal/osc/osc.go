// Package osc is the band-limited oscillator bank. One Osc holds a phase
// accumulator; each shape computes a naive closed-form sample from the
// phase, then cancels the aliasing of its discontinuities with polynomial
// residuals: PolyBLEP where the value jumps, PolyBLAMP where the slope
// has a corner. Near the Nyquist limit the output fades out smoothly via
// a per-increment gain factor instead of cutting off hard.
package osc

import "math"

type Shape int

const (
	Sine Shape = iota
	Triangle
	Square
	Saw
	Ramp
	Rectangle
	Trapezoid
	TrapezoidNarrow
	TriPulse
	HalfSine
	FullSine
	Circle
	Hammond
	Staircase

	NumShapes
)

var shapeNames = [NumShapes]string{
	"sine", "triangle", "square", "saw", "ramp", "rectangle",
	"trapezoid", "trapezoid2", "tripulse", "halfsine", "fullsine",
	"circle", "hammond", "staircase",
}

func (s Shape) String() string {
	if s < 0 || s >= NumShapes {
		return "unknown"
	}
	return shapeNames[s]
}

// ShapeByName resolves a CLI/parameter name to a Shape. The second result
// is false for unknown names.
func ShapeByName(name string) (Shape, bool) {
	for i, n := range shapeNames {
		if n == name {
			return Shape(i), true
		}
	}
	return Sine, false
}

const twoPi = 2 * math.Pi

type Osc struct {
	t     float64 // phase in [0,1)
	dt    float64 // phase increment per sample
	a     float64 // gain fade toward Nyquist
	pw    float64 // pulse width for width-dependent shapes
	shape Shape
}

func New() *Osc {
	return &Osc{a: 1, pw: 0.5}
}

// SetShape selects the waveform and refreshes the gain fade, since the
// fade thresholds depend on the waveform family.
func (o *Osc) SetShape(s Shape) {
	if s < 0 || s >= NumShapes {
		s = Sine
	}
	o.shape = s
	o.a = gain(o.dt, sineFamily(s))
}

func (o *Osc) Shape() Shape { return o.shape }

// Sync sets the phase, wrapping into [0,1) with floor-toward-negative-
// infinity semantics so that negative phases land correctly.
func (o *Osc) Sync(phase float64) {
	o.t = phase - math.Floor(phase)
	if o.t >= 1 { // phase was an exact negative integer
		o.t = 0
	}
}

func (o *Osc) Phase() float64 { return o.t }

// SetFrequency derives the phase increment from a frequency in Hz.
func (o *Osc) SetFrequency(freq, sampleRate float64) {
	o.SetIncrement(freq / sampleRate)
}

// SetIncrement sets the per-sample phase increment and recomputes the
// Nyquist gain fade for the current shape family.
func (o *Osc) SetIncrement(dt float64) {
	o.dt = dt
	o.a = gain(dt, sineFamily(o.shape))
}

func (o *Osc) Increment() float64 { return o.dt }

// Gain reports the current Nyquist fade factor in [0,1].
func (o *Osc) Gain() float64 { return o.a }

// SetPulseWidth clamps the width away from the exact 0/1 edges, which
// would otherwise divide by zero in the width-dependent shapes.
func (o *Osc) SetPulseWidth(pw float64) {
	if pw < 0.05 {
		pw = 0.05
	}
	if pw > 0.95 {
		pw = 0.95
	}
	o.pw = pw
}

// Next advances the phase by dt, wrapping into [0,1), and produces one
// sample from the new (t, dt, pw, a). Advancing first keeps a freshly
// synced oscillator off the exact discontinuity at phase 0.
func (o *Osc) Next() float64 {
	o.t += o.dt
	o.t -= math.Floor(o.t)
	return o.sample()
}

func (o *Osc) sample() float64 {
	t, dt := o.t, o.dt
	switch o.shape {
	case Sine:
		return o.a * math.Sin(twoPi*t)

	case Triangle:
		s := 2*math.Abs(2*t-1) - 1
		s += 4 * dt * (polyBLAMP(t, dt) - polyBLAMP(wrap(t-0.5), dt))
		return o.a * s

	case Square:
		s := -1.0
		if t < 0.5 {
			s = 1
		}
		s += polyBLEP(t, dt) - polyBLEP(wrap(t-0.5), dt)
		return o.a * s

	case Saw:
		s := 2*t - 1
		s -= polyBLEP(t, dt)
		return o.a * s

	case Ramp:
		s := 1 - 2*t
		s += polyBLEP(t, dt)
		return o.a * s

	case Rectangle:
		s := -1.0
		if t < o.pw {
			s = 1
		}
		s += polyBLEP(t, dt) - polyBLEP(wrap(t-o.pw), dt)
		return o.a * s

	case Trapezoid:
		return o.a * trapezoid(t, dt, 0.25)

	case TrapezoidNarrow:
		return o.a * trapezoid(t, dt, 0.125)

	case TriPulse:
		pw := o.pw
		var s float64
		if t < pw {
			s = 1 - math.Abs(2*t/pw-1)
		}
		half := 1 / pw * dt
		s += half * polyBLAMP(t, dt)
		s -= 2 * half * polyBLAMP(wrap(t-pw/2), dt)
		s += half * polyBLAMP(wrap(t-pw), dt)
		return o.a * s

	case HalfSine:
		var s float64
		if t < 0.5 {
			s = math.Sin(twoPi * t)
		}
		s += math.Pi * dt * (polyBLAMP(t, dt) + polyBLAMP(wrap(t-0.5), dt))
		return o.a * s

	case FullSine:
		s := 2*math.Sin(math.Pi*t) - 1
		s += 2 * math.Pi * dt * polyBLAMP(t, dt)
		return o.a * s

	case Circle:
		// Semicircle arcs; the vertical tangents carry no polynomial
		// correction, only the Nyquist fade.
		if t < 0.5 {
			return o.a * math.Sqrt(1-sq(4*t-1))
		}
		return -o.a * math.Sqrt(1-sq(4*t-3))

	case Hammond:
		// Drawbar-style partials at ratios 1:2:3, each with its own
		// Nyquist fade.
		s := 0.4 * gain(dt, true) * math.Sin(twoPi*t)
		s += 0.3 * gain(2*dt, true) * math.Sin(2*twoPi*t)
		s += 0.3 * gain(3*dt, true) * math.Sin(3*twoPi*t)
		return s

	case Staircase:
		// Two squares an octave apart, each band-limited and faded on
		// its own increment.
		s := gain(dt, false) * blepSquare(t, dt)
		s += 0.5 * gain(2*dt, false) * blepSquare(wrap(2*t), 2*dt)
		return s * (2.0 / 3.0)
	}
	return 0
}

func trapezoid(t, dt, rise float64) float64 {
	slope := 2 / rise
	var s float64
	switch {
	case t < rise:
		s = slope*t - 1
	case t < 0.5:
		s = 1
	case t < 0.5+rise:
		s = 1 - slope*(t-0.5)
	default:
		s = -1
	}
	half := slope / 2 * dt
	s += half * polyBLAMP(t, dt)
	s -= half * polyBLAMP(wrap(t-rise), dt)
	s -= half * polyBLAMP(wrap(t-0.5), dt)
	s += half * polyBLAMP(wrap(t-0.5-rise), dt)
	return s
}

func blepSquare(t, dt float64) float64 {
	s := -1.0
	if t < 0.5 {
		s = 1
	}
	return s + polyBLEP(t, dt) - polyBLEP(wrap(t-0.5), dt)
}

// gain fades the output toward zero as the increment approaches the
// Nyquist limit. Corrected (BLEP-family) shapes start fading at dt=0.2
// and are silent by 0.25; pure-sine shapes hold until 0.25 and fade out
// by 0.5.
func gain(dt float64, sine bool) float64 {
	lo, hi := 0.2, 0.25
	if sine {
		lo, hi = 0.25, 0.5
	}
	switch {
	case dt <= lo:
		return 1
	case dt >= hi:
		return 0
	default:
		return 1 - (dt-lo)/(hi-lo)
	}
}

func sineFamily(s Shape) bool {
	switch s {
	case Sine, Circle, Hammond:
		return true
	}
	return false
}

// polyBLEP is the two-sample polynomial residual for a value step of
// height 2 centered at phase 0.
func polyBLEP(t, dt float64) float64 {
	if dt <= 0 {
		return 0
	}
	if t < dt {
		t /= dt
		return t + t - t*t - 1
	}
	if t > 1-dt {
		t = (t - 1) / dt
		return t*t + t + t + 1
	}
	return 0
}

// polyBLAMP is the cubic antiderivative residual for a slope corner at
// phase 0. Callers scale it by slopeChange*dt/2.
func polyBLAMP(t, dt float64) float64 {
	if dt <= 0 {
		return 0
	}
	if t < dt {
		x := t / dt
		return -x*x*x/3 + x*x - x + 1.0/3.0
	}
	if t > 1-dt {
		x := (t - 1) / dt
		return x*x*x/3 + x*x + x + 1.0/3.0
	}
	return 0
}

func wrap(t float64) float64 { return t - math.Floor(t) }

func sq(x float64) float64 { return x * x }
