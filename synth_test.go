package fwerk

import "testing"

func TestNewRejectsBadConfig(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
	if _, err := New(44100, WithWaveform("sine2")); err == nil {
		t.Fatal("expected error for unknown waveform")
	}
	if _, err := New(44100, WithNoise("beige", 0.5)); err == nil {
		t.Fatal("expected error for unknown noise color")
	}
}

func TestProcessSilentUntilNoteOn(t *testing.T) {
	s, err := New(44100)
	if err != nil {
		t.Fatalf("new synth: %v", err)
	}
	buf := make([]float32, 256)
	s.Process(buf)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("sample %d = %v before any note", i, v)
		}
	}

	s.NoteOn(69, 100)
	s.Process(buf)
	heard := false
	for _, v := range buf {
		if v != 0 {
			heard = true
			break
		}
	}
	if !heard {
		t.Fatal("no output after note-on")
	}
	if got := s.ActiveVoices(); got != 1 {
		t.Fatalf("active voices = %d, want 1", got)
	}
}

func TestNoteOnAtFiresMidBlock(t *testing.T) {
	s, err := New(44100)
	if err != nil {
		t.Fatalf("new synth: %v", err)
	}
	const at = 32
	s.NoteOnAt(at, 69, 100)
	buf := make([]float32, 128)
	s.Process(buf)
	for i := 0; i < at*2; i++ {
		if buf[i] != 0 {
			t.Fatalf("sample %d nonzero before the scheduled offset", i)
		}
	}
	heard := false
	for i := at * 2; i < len(buf); i++ {
		if buf[i] != 0 {
			heard = true
			break
		}
	}
	if !heard {
		t.Fatal("no output after the scheduled offset")
	}
}

func TestStereoChannelsMatch(t *testing.T) {
	s, err := New(44100, WithWaveform("square"))
	if err != nil {
		t.Fatalf("new synth: %v", err)
	}
	s.NoteOn(60, 127)
	buf := make([]float32, 512)
	s.Process(buf)
	for i := 0; i+1 < len(buf); i += 2 {
		if buf[i] != buf[i+1] {
			t.Fatalf("frame %d: left %v != right %v", i/2, buf[i], buf[i+1])
		}
	}
}

func TestNoteOffReleasesToSilence(t *testing.T) {
	s, err := New(44100, WithEnvelope(1, 10, 50, -6))
	if err != nil {
		t.Fatalf("new synth: %v", err)
	}
	s.NoteOn(69, 100)
	buf := make([]float32, 2*4410)
	s.Process(buf) // 100 ms held
	s.NoteOff(69)
	if got := s.ActiveVoices(); got != 1 {
		t.Fatalf("active voices = %d before the off event is drained", got)
	}
	for i := 0; i < 10; i++ { // 1 s of release headroom
		s.Process(buf)
	}
	if s.Active() {
		t.Fatal("synth still active long after release")
	}
	s.Process(buf)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("sample %d = %v after envelope settled", i, v)
		}
	}
}

func TestAllNotesOffClearsVoices(t *testing.T) {
	s, err := New(44100)
	if err != nil {
		t.Fatalf("new synth: %v", err)
	}
	s.NoteOn(60, 100)
	s.NoteOn(64, 100)
	s.NoteOn(67, 100)
	buf := make([]float32, 64)
	s.Process(buf)
	if got := s.ActiveVoices(); got != 3 {
		t.Fatalf("active voices = %d, want 3", got)
	}
	s.AllNotesOff()
	s.Process(buf)
	if got := s.ActiveVoices(); got != 0 {
		t.Fatalf("active voices = %d after all-notes-off", got)
	}
}

func TestSetWaveformValidatesName(t *testing.T) {
	s, err := New(44100)
	if err != nil {
		t.Fatalf("new synth: %v", err)
	}
	if err := s.SetWaveform("hammond"); err != nil {
		t.Fatalf("set waveform: %v", err)
	}
	if err := s.SetWaveform("dubstep"); err == nil {
		t.Fatal("expected error for unknown waveform")
	}
}
