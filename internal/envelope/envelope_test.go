package envelope

import (
	"math"
	"testing"
)

func TestZeroAttackJumpsToDecayInSameCall(t *testing.T) {
	e := New(44100)
	e.SetAttackMs(0)
	e.SetDecayMs(50)
	e.SetSustain(0.5)
	e.TriggerAttack(1.0)
	if e.State() != Decay {
		t.Fatalf("state after zero-attack trigger = %v, want decay", e.State())
	}
	if e.Env() < 0.9 {
		t.Fatalf("env = %v, want ~scale after instant attack", e.Env())
	}
}

func TestZeroAttackDecayFullSustainLandsInSustain(t *testing.T) {
	e := New(44100)
	e.SetAttackMs(0)
	e.SetDecayMs(0)
	e.SetSustainDB(0)
	e.TriggerAttack(100.0 / 127.0)
	if e.State() != Sustain {
		t.Fatalf("state = %v, want sustain", e.State())
	}
	if e.Env() != e.Scale() {
		t.Fatalf("env = %v, want scale %v", e.Env(), e.Scale())
	}
}

func TestAttackReachesScaleThenDecays(t *testing.T) {
	e := New(44100)
	e.SetAttackMs(5)
	e.SetDecayMs(20)
	e.SetSustain(0.6)
	e.TriggerAttack(1.0)
	if e.State() != Attack {
		t.Fatalf("state = %v, want attack", e.State())
	}
	var peak float64
	for i := 0; i < 44100; i++ {
		v := e.Next()
		if v > peak {
			peak = v
		}
		if e.State() == Sustain {
			break
		}
	}
	if e.State() != Sustain {
		t.Fatalf("never settled into sustain (state %v)", e.State())
	}
	if peak < 0.9 {
		t.Fatalf("attack peak = %v, want near scale 1.0", peak)
	}
	if math.Abs(e.Env()-0.6) > 1e-6 {
		t.Fatalf("sustain env = %v, want 0.6", e.Env())
	}
}

func TestReleaseConvergesToIdleInBoundedTime(t *testing.T) {
	e := New(44100)
	e.SetAttackMs(0)
	e.SetDecayMs(0)
	e.SetSustainDB(0)
	e.SetReleaseMs(100)
	e.TriggerAttack(1.0)
	e.TriggerRelease()
	if e.State() != Release {
		t.Fatalf("state = %v, want release", e.State())
	}
	// 100 ms release, one-pole settle: well inside one second.
	for i := 0; i < 44100; i++ {
		e.Next()
		if e.State() == Idle {
			break
		}
	}
	if e.State() != Idle {
		t.Fatal("release never reached idle")
	}
	if e.Env() != 0 {
		t.Fatalf("idle env = %v, want 0", e.Env())
	}
}

func TestZeroReleaseResetsImmediately(t *testing.T) {
	e := New(44100)
	e.SetReleaseMs(0)
	e.TriggerAttack(1.0)
	e.TriggerRelease()
	if e.State() != Idle || e.Env() != 0 {
		t.Fatalf("state %v env %v, want immediate idle", e.State(), e.Env())
	}
}

func TestReleaseFromIdleIsNoOp(t *testing.T) {
	e := New(44100)
	e.SetReleaseMs(50)
	e.TriggerRelease()
	if e.State() != Idle {
		t.Fatalf("state = %v, want idle", e.State())
	}
}

func TestCoefficientMatchesSettleTimeFormula(t *testing.T) {
	e := New(48000)
	e.SetAttackMs(10)
	want := 1 / (0.2*0.010*48000 + 1)
	if math.Abs(e.a-want) > 1e-12 {
		t.Fatalf("attack coef = %v, want %v", e.a, want)
	}
}

func TestSustainDBConversion(t *testing.T) {
	e := New(44100)
	e.SetSustainDB(-6)
	if math.Abs(e.s-math.Pow(10, -0.3)) > 1e-12 {
		t.Fatalf("sustain gain = %v", e.s)
	}
	e.SetSustainDB(0)
	if e.s != 1 {
		t.Fatalf("0 dB sustain = %v, want 1", e.s)
	}
}

func TestStateBitValuesPreserved(t *testing.T) {
	if Idle != 0 || Attack != 1 || Decay != 2 || Sustain != 4 || Release != 8 {
		t.Fatal("envelope state bit values changed")
	}
}
