package lfo

import (
	"math"
	"testing"
)

func TestTriangleShape(t *testing.T) {
	var l LFO
	l.Configure(50, 1, WaveTriangle) // 50 cents depth, 1 Hz

	sr := 100.0 // 100 samples per cycle
	samples := make([]float64, 100)
	for i := range samples {
		samples[i] = l.Next(sr)
	}
	if math.Abs(samples[0]-(-50)) > 2.5 {
		t.Errorf("phase 0: got %f, want -50", samples[0])
	}
	if math.Abs(samples[25]) > 2.5 {
		t.Errorf("phase 0.25: got %f, want ~0", samples[25])
	}
	if math.Abs(samples[50]-50) > 2.5 {
		t.Errorf("phase 0.5: got %f, want 50", samples[50])
	}
}

func TestSquareShape(t *testing.T) {
	var l LFO
	l.Configure(10, 1, WaveSquare)
	sr := 100.0
	if v := l.Next(sr); math.Abs(v-10) > 0.01 {
		t.Errorf("first half: got %f, want 10", v)
	}
	for i := 1; i < 50; i++ {
		l.Next(sr)
	}
	if v := l.Next(sr); math.Abs(v-(-10)) > 0.01 {
		t.Errorf("second half: got %f, want -10", v)
	}
}

func TestSineShapeStartsAtZero(t *testing.T) {
	var l LFO
	l.Configure(100, 1, WaveSine)
	if v := l.Next(100); math.Abs(v) > 0.01 {
		t.Errorf("sine at phase 0: got %f, want 0", v)
	}
}

func TestDepthBoundsOutput(t *testing.T) {
	var l LFO
	l.Configure(25, 7, WaveSaw)
	for i := 0; i < 1000; i++ {
		if v := l.Next(44100); math.Abs(v) > 25 {
			t.Fatalf("output %f exceeds depth 25", v)
		}
	}
}

func TestZeroDepthOrRateDisables(t *testing.T) {
	var l LFO
	l.Configure(0, 5, WaveTriangle)
	if l.Active() || l.Next(44100) != 0 {
		t.Error("zero depth should disable the LFO")
	}
	l.Configure(50, 0, WaveTriangle)
	if l.Active() || l.Next(44100) != 0 {
		t.Error("zero rate should disable the LFO")
	}
}

func TestResetRestartsCycle(t *testing.T) {
	var l LFO
	l.Configure(50, 10, WaveTriangle)
	first := l.Next(1000)
	for i := 0; i < 37; i++ {
		l.Next(1000)
	}
	l.Reset()
	if v := l.Next(1000); v != first {
		t.Errorf("after Reset: got %f, want %f", v, first)
	}
}
