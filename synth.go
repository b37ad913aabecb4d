// Package fwerk is a realtime polyphonic subtractive synthesizer. The
// public surface is the Synth type: configure it with options, feed it
// note events, and pull stereo float32 audio out of Process — or hand it
// to Play for live output.
package fwerk

import (
	"errors"
	"fmt"
	"sync"

	intaudio "github.com/mft14/fwerk/internal/audio"
	"github.com/mft14/fwerk/internal/midiq"
	"github.com/mft14/fwerk/internal/noise"
	"github.com/mft14/fwerk/internal/osc"
	"github.com/mft14/fwerk/internal/synth"
)

type Option func(*config)

type config struct {
	params       synth.Params
	waveformName string
	noiseName    string
	vibratoDepth float64
	vibratoRate  float64
}

func defaultConfig() config {
	return config{params: synth.DefaultParams()}
}

// WithWaveform selects the oscillator shape by name ("sine", "saw",
// "square", "triangle", ...). Unknown names fail New.
func WithWaveform(name string) Option {
	return func(cfg *config) { cfg.waveformName = name }
}

// WithVoices sets the polyphony limit. When all voices are busy the
// longest-held note is evicted.
func WithVoices(n int) Option {
	return func(cfg *config) { cfg.params.Voices = n }
}

// WithMono switches to monophonic rendering. When newestPriority is
// true the latest note wins; otherwise the first-held note does.
func WithMono(newestPriority bool) Option {
	return func(cfg *config) {
		if newestPriority {
			cfg.params.Mode = synth.MonoNewest
		} else {
			cfg.params.Mode = synth.MonoOldest
		}
	}
}

// WithVolume sets the 0..1 volume slider.
func WithVolume(v float64) Option {
	return func(cfg *config) { cfg.params.Volume = v }
}

// WithEnvelope sets the ADSR times in milliseconds and the sustain
// level in decibels (0 dB sustains at full note amplitude).
func WithEnvelope(attackMs, decayMs, releaseMs, sustainDB float64) Option {
	return func(cfg *config) {
		cfg.params.AttackMs = attackMs
		cfg.params.DecayMs = decayMs
		cfg.params.ReleaseMs = releaseMs
		cfg.params.SustainDB = sustainDB
	}
}

// WithNoise amplitude-modulates the output with a colored noise source
// ("white", "pink", "brown", "blue", "violet", "grey", "black").
// Level 0 leaves the signal untouched, 1 is full modulation depth.
// Unknown color names fail New.
func WithNoise(color string, level float64) Option {
	return func(cfg *config) {
		cfg.noiseName = color
		cfg.params.NoiseLevel = level
	}
}

// WithNoiseSeed fixes the noise generator seed for reproducible output.
func WithNoiseSeed(seed int64) Option {
	return func(cfg *config) { cfg.params.NoiseSeed = seed }
}

// WithTuning detunes every note by the given amount in cents.
func WithTuning(cents float64) Option {
	return func(cfg *config) { cfg.params.TuneCents = cents }
}

// WithPulseWidth sets the duty cycle for the pulse-family shapes,
// clamped to [0.05, 0.95].
func WithPulseWidth(pw float64) Option {
	return func(cfg *config) { cfg.params.PulseWidth = pw }
}

// WithVibrato enables a triangle pitch LFO with the given depth in
// cents and rate in Hz.
func WithVibrato(depthCents, rateHz float64) Option {
	return func(cfg *config) {
		cfg.vibratoDepth = depthCents
		cfg.vibratoRate = rateHz
	}
}

// WithChannel restricts event collection to one MIDI channel (0-15).
// By default events from every channel are accepted.
func WithChannel(ch int) Option {
	return func(cfg *config) { cfg.params.Channel = ch }
}

// Synth is the public synthesizer facade. It is safe to call the note
// and parameter methods from any goroutine while audio is running:
// events are staged under a mutex and drained at the start of the next
// Process block.
type Synth struct {
	mu         sync.Mutex
	engine     *synth.Engine
	sampleRate int
	pending    []midiq.Raw
	audio      *intaudio.Player
}

func New(sampleRate int, opts ...Option) (*Synth, error) {
	if sampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.waveformName != "" {
		shape, ok := osc.ShapeByName(cfg.waveformName)
		if !ok {
			return nil, fmt.Errorf("unknown waveform %q", cfg.waveformName)
		}
		cfg.params.Waveform = shape
	}
	if cfg.noiseName != "" {
		color, ok := noise.ColorByName(cfg.noiseName)
		if !ok {
			return nil, fmt.Errorf("unknown noise color %q", cfg.noiseName)
		}
		cfg.params.NoiseColor = color
	}
	s := &Synth{
		engine:     synth.New(sampleRate, cfg.params),
		sampleRate: sampleRate,
		pending:    make([]midiq.Raw, 0, cfg.params.QueueCap),
	}
	if cfg.vibratoDepth > 0 {
		s.engine.SetVibrato(cfg.vibratoDepth, cfg.vibratoRate, 0)
	}
	return s, nil
}

func (s *Synth) SampleRate() int { return s.sampleRate }

// NoteOn triggers a MIDI note (0-127) at the start of the next block.
// Velocity 0 is treated as a note-off.
func (s *Synth) NoteOn(note, velocity int) {
	s.push(midiq.Raw{Status: midiq.StatusNoteOn, Data: note&0x7F | velocity&0x7F<<8})
}

// NoteOff releases a held note at the start of the next block.
func (s *Synth) NoteOff(note int) {
	s.push(midiq.Raw{Status: midiq.StatusNoteOff, Data: note & 0x7F})
}

// AllNotesOff releases everything at the start of the next block.
func (s *Synth) AllNotesOff() {
	s.push(midiq.Raw{Status: midiq.StatusControlChange, Data: midiq.CCAllNotesOff})
}

// NoteOnAt schedules a note-on at an exact sample offset within the
// next block. Offsets past the block end fire on its last sample.
func (s *Synth) NoteOnAt(offset, note, velocity int) {
	s.push(midiq.Raw{Offset: offset, Status: midiq.StatusNoteOn, Data: note&0x7F | velocity&0x7F<<8})
}

// NoteOffAt schedules a note-off at an exact sample offset within the
// next block.
func (s *Synth) NoteOffAt(offset, note int) {
	s.push(midiq.Raw{Offset: offset, Status: midiq.StatusNoteOff, Data: note & 0x7F})
}

func (s *Synth) push(ev midiq.Raw) {
	s.mu.Lock()
	s.pending = append(s.pending, ev)
	s.mu.Unlock()
}

// Process fills dst with interleaved stereo frames, draining staged
// events sample-accurately. It implements the audio.SampleSource the
// playback backend pulls from, and can equally be called directly for
// offline rendering.
func (s *Synth) Process(dst []float32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	frames := len(dst) / 2
	if frames == 0 {
		return
	}
	s.engine.BeginBlock()
	for i := range s.pending {
		if s.pending[i].Offset >= frames {
			s.pending[i].Offset = frames - 1
		}
	}
	s.engine.Collect(s.pending, nil)
	s.pending = s.pending[:0]
	for i := 0; i < frames; i++ {
		dst[2*i], dst[2*i+1] = s.engine.RenderFrame()
	}
}

// Active reports whether any voice is held or the envelope is still
// releasing.
func (s *Synth) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Active()
}

// ActiveVoices returns the number of held notes.
func (s *Synth) ActiveVoices() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.ActiveVoiceCount()
}

// SetVolume adjusts the 0..1 volume slider. Lock-free; safe to call
// while audio is running.
func (s *Synth) SetVolume(v float64) { s.engine.SetVolume(v) }

// SetWaveform switches the oscillator shape by name.
func (s *Synth) SetWaveform(name string) error {
	shape, ok := osc.ShapeByName(name)
	if !ok {
		return fmt.Errorf("unknown waveform %q", name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.SetWaveform(shape)
	return nil
}

// SetEnvelope adjusts the ADSR parameters.
func (s *Synth) SetEnvelope(attackMs, decayMs, releaseMs, sustainDB float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.SetADSR(attackMs, decayMs, releaseMs, sustainDB)
}

// SetNoise switches the noise color and modulation depth.
func (s *Synth) SetNoise(color string, level float64) error {
	c, ok := noise.ColorByName(color)
	if !ok {
		return fmt.Errorf("unknown noise color %q", color)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.SetNoise(c, level)
	return nil
}

// SetTuning retunes held and future notes by the given cents offset.
func (s *Synth) SetTuning(cents float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.SetTuneCents(cents)
}

// SetPulseWidth adjusts the pulse duty cycle.
func (s *Synth) SetPulseWidth(pw float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.SetPulseWidth(pw)
}

// Play starts live output through the system audio device.
func (s *Synth) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.audio != nil {
		s.audio.Play()
		return nil
	}
	backend, err := intaudio.NewPlayer(s.sampleRate, s)
	if err != nil {
		return err
	}
	s.audio = backend
	s.audio.Play()
	return nil
}

// Pause suspends live output; Play resumes it.
func (s *Synth) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.audio != nil {
		s.audio.Pause()
	}
}

// Stop tears down live output. The Synth itself stays usable.
func (s *Synth) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.audio == nil {
		return nil
	}
	err := s.audio.Stop()
	s.audio = nil
	return err
}
