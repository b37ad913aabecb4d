package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mft14/fwerk"
)

const defaultNotes = "60,64,67,72" // C major arpeggio

func main() {
	var (
		sampleRate = flag.Int("sample-rate", 48000, "output sample rate")
		waveform   = flag.String("wave", "saw", "oscillator shape: sine|triangle|square|saw|ramp|rectangle|trapezoid|halfsine|fullsine|circle|hammond|staircase")
		notesArg   = flag.String("notes", defaultNotes, "comma-separated MIDI notes to step through")
		bpm        = flag.Float64("bpm", 120, "step rate in beats per minute")
		seconds    = flag.Float64("seconds", 4, "total render/playback length")
		volume     = flag.Float64("volume", 0.5, "volume slider (0..1)")
		noiseColor = flag.String("noise", "", "noise color: white|pink|brown|blue|violet|grey|black")
		noiseLevel = flag.Float64("noise-level", 0.5, "noise modulation depth (0..1)")
		tuneCents  = flag.Float64("tune", 0, "detune in cents")
		mono       = flag.Bool("mono", false, "monophonic, newest note wins")
		wavPath    = flag.String("wav", "", "render to a WAV file instead of playing live")
	)
	flag.Parse()

	notes, err := parseNotes(*notesArg)
	if err != nil {
		log.Fatal(err)
	}

	opts := []fwerk.Option{
		fwerk.WithWaveform(*waveform),
		fwerk.WithVolume(*volume),
		fwerk.WithTuning(*tuneCents),
	}
	if *noiseColor != "" {
		opts = append(opts, fwerk.WithNoise(*noiseColor, *noiseLevel))
	}
	if *mono {
		opts = append(opts, fwerk.WithMono(true))
	}

	beat := 60 / *bpm
	if *wavPath != "" {
		events := stepPattern(notes, beat, *seconds)
		samples, err := fwerk.RenderSamples(*sampleRate, *seconds, events, opts...)
		if err != nil {
			log.Fatal(err)
		}
		wav := fwerk.EncodeWAVFloat32LE(samples, *sampleRate, 2)
		if err := os.WriteFile(*wavPath, wav, 0o644); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("wrote %s (%.1fs, %d Hz)\n", *wavPath, *seconds, *sampleRate)
		return
	}

	s, err := fwerk.New(*sampleRate, opts...)
	if err != nil {
		log.Fatal(err)
	}
	if err := s.Play(); err != nil {
		log.Fatal(err)
	}
	deadline := time.Now().Add(time.Duration(*seconds * float64(time.Second)))
	for i := 0; time.Now().Before(deadline); i++ {
		note := notes[i%len(notes)]
		s.NoteOn(note, 100)
		time.Sleep(time.Duration(beat * 0.9 * float64(time.Second)))
		s.NoteOff(note)
		time.Sleep(time.Duration(beat * 0.1 * float64(time.Second)))
	}
	s.AllNotesOff()
	time.Sleep(500 * time.Millisecond) // let the release tail play out
	if err := s.Stop(); err != nil {
		log.Fatal(err)
	}
}

// stepPattern lays the note list out as equal steps of one beat each,
// cycling until the render length runs out.
func stepPattern(notes []int, beat, seconds float64) []fwerk.NoteEvent {
	var events []fwerk.NoteEvent
	for i := 0; ; i++ {
		at := float64(i) * beat
		if at >= seconds {
			return events
		}
		events = append(events, fwerk.NoteEvent{
			At:       at,
			Duration: beat * 0.9,
			Note:     notes[i%len(notes)],
			Velocity: 100,
		})
	}
}

func parseNotes(arg string) ([]int, error) {
	var notes []int
	for _, part := range strings.Split(arg, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || n > 127 {
			return nil, fmt.Errorf("invalid -notes entry %q (expected MIDI note 0-127)", part)
		}
		notes = append(notes, n)
	}
	if len(notes) == 0 {
		return nil, fmt.Errorf("no notes given")
	}
	return notes, nil
}
