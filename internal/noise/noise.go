// Package noise implements a Lehmer pseudorandom generator and the
// spectral shaping filters derived from it (pink, brown, blue, violet,
// grey, black). The generator is an explicit state object owned by its
// caller; two generators seeded identically produce identical streams.
package noise

import "math"

// Lehmer generator constants: seed' = seed*48271 mod (2^31 - 1).
const (
	lcgMultiplier = 48271
	lcgModulus    = 1<<31 - 1
	seedMin       = 1
	seedMax       = lcgModulus - 1 // 2^31 - 2
)

// Color selects the spectral shaping applied on top of the raw stream.
type Color int

const (
	Off Color = iota
	White
	Pink
	Brown
	Blue
	Violet
	Grey
	Black

	NumColors
)

var colorNames = [NumColors]string{
	"off", "white", "pink", "brown", "blue", "violet", "grey", "black",
}

func (c Color) String() string {
	if c < 0 || c >= NumColors {
		return "unknown"
	}
	return colorNames[c]
}

// ColorByName resolves a parameter name to a Color.
func ColorByName(name string) (Color, bool) {
	for i, n := range colorNames {
		if n == name {
			return Color(i), true
		}
	}
	return Off, false
}

// defaultBrownRC is the leaky-integrator time constant used when the
// caller never sets one.
const defaultBrownRC = 0.0082

type Generator struct {
	sampleRate float64
	seed       uint64

	// pink: Paul Kellet's three-pole economy filter memories
	b0, b1, b2 float64

	// brown: leaky integrator state and coefficient
	lp     float64
	brownA float64

	// blue/violet: previous-sample memories for first differences
	prevPink  float64
	prevWhite float64

	// grey: low-shelf + peaking filter cascade
	shelf biquad
	peak  biquad

	// black: gate threshold is 1-density
	density float64
}

// New creates a generator at the given sample rate. Seed 0 (or any value
// outside the legal range) is clamped into [1, 2^31-2].
func New(sampleRate float64, seed int64) *Generator {
	g := &Generator{sampleRate: sampleRate, density: 0.1}
	g.Seed(seed)
	g.SetBrownRC(defaultBrownRC)
	// Inverse A-weighting approximation: boost the bottom end with a
	// low shelf and carve the ear's most sensitive band with a peak cut.
	g.shelf = lowShelf(sampleRate, 250, 8)
	g.peak = peaking(sampleRate, 3000, -8)
	return g
}

// Seed resets the LCG state, clamped into the legal domain.
func (g *Generator) Seed(seed int64) {
	if seed < seedMin {
		seed = seedMin
	}
	if seed > seedMax {
		seed = seedMax
	}
	g.seed = uint64(seed)
}

// SetBrownRC sets the brown-noise integrator time constant in seconds.
func (g *Generator) SetBrownRC(seconds float64) {
	if seconds <= 0 {
		seconds = defaultBrownRC
	}
	dt := 1 / g.sampleRate
	g.brownA = dt / (seconds + dt)
}

// SetDensity sets the black-noise impulse density in [0,1]; samples with
// magnitude below 1-density are gated to zero.
func (g *Generator) SetDensity(d float64) {
	if d < 0 {
		d = 0
	}
	if d > 1 {
		d = 1
	}
	g.density = d
}

// Step advances the raw Lehmer generator and returns the new seed.
func (g *Generator) Step() uint64 {
	g.seed = g.seed * lcgMultiplier % lcgModulus
	return g.seed
}

// White returns the next uniform sample, mapped into (-1, 1).
func (g *Generator) White() float64 {
	return float64(g.Step()-1)/float64(lcgModulus-2)*2 - 1
}

// Pink applies Paul Kellet's economy three-pole filter to the white
// stream.
func (g *Generator) Pink() float64 {
	w := g.White()
	g.b0 = 0.99765*g.b0 + w*0.0990460
	g.b1 = 0.96300*g.b1 + w*0.2965164
	g.b2 = 0.57000*g.b2 + w*1.0526913
	return (g.b0 + g.b1 + g.b2 + w*0.1848) * 0.11
}

// Brown integrates the white stream through a leaky one-pole.
func (g *Generator) Brown() float64 {
	g.lp += g.brownA * (g.White() - g.lp)
	return g.lp * 3.5
}

// Blue is the first difference of successive pink samples.
func (g *Generator) Blue() float64 {
	p := g.Pink()
	d := p - g.prevPink
	g.prevPink = p
	return d * 4
}

// Violet is the first difference of successive white samples.
func (g *Generator) Violet() float64 {
	w := g.White()
	d := w - g.prevWhite
	g.prevWhite = w
	return d * 0.5
}

// Grey runs white through the inverse-A-weighting filter cascade.
func (g *Generator) Grey() float64 {
	return g.peak.process(g.shelf.process(g.White())) * 0.5
}

// Black passes white samples through only when their magnitude reaches
// 1-density, producing sparse impulses.
func (g *Generator) Black() float64 {
	w := g.White()
	if math.Abs(w) < 1-g.density {
		return 0
	}
	return w
}

// Sample returns one sample of the requested color; Off yields silence.
func (g *Generator) Sample(c Color) float64 {
	switch c {
	case White:
		return g.White()
	case Pink:
		return g.Pink()
	case Brown:
		return g.Brown()
	case Blue:
		return g.Blue()
	case Violet:
		return g.Violet()
	case Grey:
		return g.Grey()
	case Black:
		return g.Black()
	}
	return 0
}

// biquad is a direct form I second-order section.
type biquad struct {
	b0, b1, b2, a1, a2 float64
	x1, x2, y1, y2     float64
}

func (f *biquad) process(x float64) float64 {
	y := f.b0*x + f.b1*f.x1 + f.b2*f.x2 - f.a1*f.y1 - f.a2*f.y2
	f.x2, f.x1 = f.x1, x
	f.y2, f.y1 = f.y1, y
	return y
}

func lowShelf(sampleRate, freq, gainDB float64) biquad {
	a := math.Pow(10, gainDB/40)
	w0 := 2 * math.Pi * freq / sampleRate
	cosw, sinw := math.Cos(w0), math.Sin(w0)
	alpha := sinw / 2 * math.Sqrt2
	sqrtA := math.Sqrt(a)

	b0 := a * ((a + 1) - (a-1)*cosw + 2*sqrtA*alpha)
	b1 := 2 * a * ((a - 1) - (a+1)*cosw)
	b2 := a * ((a + 1) - (a-1)*cosw - 2*sqrtA*alpha)
	a0 := (a + 1) + (a-1)*cosw + 2*sqrtA*alpha
	a1 := -2 * ((a - 1) + (a+1)*cosw)
	a2 := (a + 1) + (a-1)*cosw - 2*sqrtA*alpha
	return biquad{b0: b0 / a0, b1: b1 / a0, b2: b2 / a0, a1: a1 / a0, a2: a2 / a0}
}

func peaking(sampleRate, freq, gainDB float64) biquad {
	a := math.Pow(10, gainDB/40)
	w0 := 2 * math.Pi * freq / sampleRate
	cosw, sinw := math.Cos(w0), math.Sin(w0)
	const q = 0.8
	alpha := sinw / (2 * q)

	b0 := 1 + alpha*a
	b1 := -2 * cosw
	b2 := 1 - alpha*a
	a0 := 1 + alpha/a
	a1 := -2 * cosw
	a2 := 1 - alpha/a
	return biquad{b0: b0 / a0, b1: b1 / a0, b2: b2 / a0, a1: a1 / a0, a2: a2 / a0}
}
