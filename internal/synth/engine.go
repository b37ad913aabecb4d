// Package synth is the core engine: it drains the sample-accurate event
// queue, keeps the voice table in step, and sums band-limited oscillator
// output shaped by the shared envelope and optional noise coloring.
//
// The host drives it cooperatively: BeginBlock/Collect once per audio
// block, then RenderFrame once per sample. Nothing in the per-sample
// path allocates; arena traffic happens only during construction.
package synth

import (
	"math"
	"sync/atomic"

	"github.com/mft14/fwerk/internal/arena"
	"github.com/mft14/fwerk/internal/envelope"
	"github.com/mft14/fwerk/internal/lfo"
	"github.com/mft14/fwerk/internal/midiq"
	"github.com/mft14/fwerk/internal/noise"
	"github.com/mft14/fwerk/internal/osc"
	"github.com/mft14/fwerk/internal/voicetab"
)

// Mode selects how the voice table is rendered.
type Mode int

const (
	// Poly sums every active voice.
	Poly Mode = iota
	// MonoNewest renders only the most recent note; earlier held notes
	// come back when it is released.
	MonoNewest
	// MonoOldest renders only the longest-held note.
	MonoOldest
)

type Params struct {
	Voices     int
	QueueCap   int
	Waveform   osc.Shape
	Mode       Mode
	Volume     float64 // 0..1 slider, mapped through 2^(v/6)
	AttackMs   float64
	DecayMs    float64
	ReleaseMs  float64
	SustainDB  float64
	NoiseColor noise.Color
	NoiseLevel float64 // 0..1 amplitude-modulation depth
	NoiseSeed  int64
	TuneCents  float64 // pitch shift applied at note-on
	PulseWidth float64
	Channel    int // MIDI channel filter; midiq.AnyChannel accepts all
}

func DefaultParams() Params {
	return Params{
		Voices:     16,
		QueueCap:   64,
		Waveform:   osc.Saw,
		Volume:     0.5,
		AttackMs:   5,
		DecayMs:    100,
		ReleaseMs:  200,
		SustainDB:  -6,
		NoiseLevel: 0.5,
		NoiseSeed:  1,
		PulseWidth: 0.5,
		Channel:    midiq.AnyChannel,
	}
}

const midiEventMask = midiq.MaskNoteOn | midiq.MaskNoteOff | midiq.MaskControlChange

type Engine struct {
	sampleRate float64
	params     Params

	mem    *arena.Arena
	voices *voicetab.Table
	queue  *midiq.Queue

	osc     *osc.Osc
	env     *envelope.ADSR
	noise   *noise.Generator
	vibrato lfo.LFO

	gain    uint64 // output gain as float bits, written from control paths
	tuneMul float64
}

func New(sampleRate int, params Params) *Engine {
	if params.Voices <= 0 {
		params.Voices = 16
	}
	if params.QueueCap <= 0 {
		params.QueueCap = 64
	}
	mem := arena.New((params.Voices + params.QueueCap) * 4)
	e := &Engine{
		sampleRate: float64(sampleRate),
		params:     params,
		mem:        mem,
		voices:     voicetab.New(mem, params.Voices),
		queue:      midiq.New(mem, params.QueueCap),
		osc:        osc.New(),
		env:        envelope.New(float64(sampleRate)),
		noise:      noise.New(float64(sampleRate), params.NoiseSeed),
		tuneMul:    1,
	}
	e.osc.SetShape(params.Waveform)
	e.osc.SetPulseWidth(params.PulseWidth)
	e.env.SetAttackMs(params.AttackMs)
	e.env.SetDecayMs(params.DecayMs)
	e.env.SetReleaseMs(params.ReleaseMs)
	e.env.SetSustainDB(params.SustainDB)
	e.SetVolume(params.Volume)
	e.SetTuneCents(params.TuneCents)
	return e
}

// BeginBlock resets the queue for a new audio block. Call before Collect.
func (e *Engine) BeginBlock() { e.queue.Rewind() }

// Collect filters the raw host events into the queue and forwards every
// one of them, accepted or not, through send.
func (e *Engine) Collect(events []midiq.Raw, send func(midiq.Raw)) {
	e.queue.Collect(events, e.params.Channel, midiEventMask, send)
}

// NoteOn queues a note-on at the given sample offset of the current block.
func (e *Engine) NoteOn(offset, note, velocity int) {
	e.queue.Push(offset, midiq.StatusNoteOn, note, velocity)
}

// NoteOff queues a note-off at the given sample offset.
func (e *Engine) NoteOff(offset, note int) {
	e.queue.Push(offset, midiq.StatusNoteOff, note, 0)
}

// AllNotesOff queues CC 123 at the given sample offset.
func (e *Engine) AllNotesOff(offset int) {
	e.queue.Push(offset, midiq.StatusControlChange, midiq.CCAllNotesOff, 0)
}

// RenderFrame drains every event due this sample, then renders one
// stereo pair: the sum over rendered voices of envelope*waveform,
// amplitude-modulated by the noise color and scaled by the volume gain.
func (e *Engine) RenderFrame() (float32, float32) {
	for {
		ev, ok := e.queue.Pop()
		if !ok {
			break
		}
		e.handleEvent(ev)
	}

	env := e.env.Next()
	if env == 0 {
		return 0, 0
	}

	vibMul := 1.0
	if e.vibrato.Active() {
		vibMul = centsToRatio(e.vibrato.Next(e.sampleRate))
	}

	noiseFactor := 1.0
	if e.params.NoiseColor != noise.Off {
		noiseFactor = 1 + e.params.NoiseLevel*e.noise.Sample(e.params.NoiseColor)
	}

	var sum float64
	switch {
	case e.voices.Size() == 0:
		// Release tail: the rows are gone but the oscillator still
		// carries the last voice's phase and increment.
		sum = e.osc.Next()
	case e.params.Mode == MonoNewest:
		sum = e.renderVoice(e.voices.Last(), vibMul)
	case e.params.Mode == MonoOldest:
		sum = e.renderVoice(e.voices.First(), vibMul)
	default:
		for off := e.voices.First(); off != voicetab.NotFound; off = e.voices.Next(off) {
			sum += e.renderVoice(off, vibMul)
		}
	}

	s := float32(sum * env * noiseFactor * e.gainValue())
	return s, s
}

// renderVoice pulls one oscillator sample for the row at off, storing
// the advanced phase back into the table.
func (e *Engine) renderVoice(off int, vibMul float64) float64 {
	if off == voicetab.NotFound {
		return 0
	}
	e.osc.Sync(e.voices.Phase(off))
	e.osc.SetIncrement(e.voices.Increment(off) * vibMul)
	s := e.osc.Next()
	e.voices.SetPhase(off, e.osc.Phase())
	return s
}

func (e *Engine) handleEvent(ev midiq.Event) {
	switch ev.Status & 0xF0 {
	case midiq.StatusNoteOn:
		if ev.Data2 == 0 {
			e.noteOff(ev.Data1)
			return
		}
		e.noteOn(ev.Data1, ev.Data2)
	case midiq.StatusNoteOff:
		e.noteOff(ev.Data1)
	case midiq.StatusControlChange:
		if ev.Data1 == midiq.CCAllNotesOff {
			e.voices.Clear()
			e.env.TriggerRelease()
		}
	}
}

func (e *Engine) noteOn(note, velocity int) {
	// Retrigger an already-sounding note in place instead of stacking a
	// duplicate row.
	off := e.voices.Find(float64(note), voicetab.ColNote, voicetab.NotFound)
	if off == voicetab.NotFound {
		if e.voices.Size() >= e.voices.Capacity() {
			e.voices.Remove(e.voices.First())
		}
		off = e.voices.Append()
	}
	dt := midiToFreq(note) * e.tuneMul / e.sampleRate
	e.voices.SetRow(off, note, 0, dt)
	e.env.TriggerAttack(float64(velocity) / 127)
}

func (e *Engine) noteOff(note int) {
	off := e.voices.Find(float64(note), voicetab.ColNote, voicetab.NotFound)
	if off != voicetab.NotFound {
		e.voices.Remove(off)
	}
	if e.voices.Size() == 0 {
		e.env.TriggerRelease()
	}
}

// Active reports whether the engine still produces sound, including the
// envelope's release tail.
func (e *Engine) Active() bool {
	return e.voices.Size() > 0 || e.env.Active()
}

// ActiveVoiceCount returns the number of rows in the voice table.
func (e *Engine) ActiveVoiceCount() int { return e.voices.Size() }

// EnvelopeState exposes the shared envelope state for hosts and tests.
func (e *Engine) EnvelopeState() envelope.State { return e.env.State() }

// EnvelopeLevel exposes the shared envelope output amplitude.
func (e *Engine) EnvelopeLevel() float64 { return e.env.Env() }

// VoiceIncrement returns the phase increment of voice row i, or 0.
func (e *Engine) VoiceIncrement(i int) float64 {
	off := e.voices.Get(i)
	if off == voicetab.NotFound {
		return 0
	}
	return e.voices.Increment(off)
}

// SetVolume maps the 0..1 slider through the 2^(v/6) gain curve. Safe to
// call from a control goroutine while audio renders.
func (e *Engine) SetVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	// Host gain curve: v=0 is unity, the top of the slider adds a bit of
	// headroom boost.
	gain := math.Pow(2, v/6)
	atomic.StoreUint64(&e.gain, math.Float64bits(gain))
}

func (e *Engine) gainValue() float64 {
	return math.Float64frombits(atomic.LoadUint64(&e.gain))
}

// SetWaveform selects the oscillator shape.
func (e *Engine) SetWaveform(s osc.Shape) {
	e.params.Waveform = s
	e.osc.SetShape(s)
}

// SetMode switches between polyphonic and the two monophonic renderings.
func (e *Engine) SetMode(m Mode) { e.params.Mode = m }

// SetPulseWidth adjusts the width-dependent shapes.
func (e *Engine) SetPulseWidth(pw float64) {
	e.params.PulseWidth = pw
	e.osc.SetPulseWidth(pw)
}

// SetADSR updates the envelope segment times (ms) and sustain (dB).
func (e *Engine) SetADSR(attackMs, decayMs, releaseMs, sustainDB float64) {
	e.env.SetAttackMs(attackMs)
	e.env.SetDecayMs(decayMs)
	e.env.SetReleaseMs(releaseMs)
	e.env.SetSustainDB(sustainDB)
}

// SetNoise selects the noise color and its modulation depth.
func (e *Engine) SetNoise(c noise.Color, level float64) {
	e.params.NoiseColor = c
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}
	e.params.NoiseLevel = level
}

// SetTuneCents sets the pitch shift applied to subsequent note-ons and
// retunes the rows already in the table.
func (e *Engine) SetTuneCents(cents float64) {
	e.params.TuneCents = cents
	e.tuneMul = centsToRatio(cents)
	for off := e.voices.First(); off != voicetab.NotFound; off = e.voices.Next(off) {
		note := e.voices.Note(off)
		e.voices.SetIncrement(off, midiToFreq(note)*e.tuneMul/e.sampleRate)
	}
}

// SetVibrato configures the shared pitch LFO (depth in cents).
func (e *Engine) SetVibrato(depthCents, rateHz float64, waveform int) {
	e.vibrato.Configure(depthCents, rateHz, waveform)
}

// SetChannel restricts Collect to one MIDI channel (AnyChannel = all).
func (e *Engine) SetChannel(ch int) { e.params.Channel = ch }

func midiToFreq(note int) float64 {
	return 440 * math.Pow(2, float64(note-69)/12)
}

func centsToRatio(cents float64) float64 {
	return math.Pow(2, cents/1200)
}
