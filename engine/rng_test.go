package engine

import (
	"testing"

	"github.com/nathoo/regioncore/types"
)

func TestRNG_Deterministic(t *testing.T) {
	rng1 := NewRNG(42)
	rng2 := NewRNG(42)

	for i := 0; i < 20; i++ {
		a := rng1.Roll(6)
		b := rng2.Roll(6)
		if a != b {
			t.Fatalf("roll %d: got %d and %d from same seed", i, a, b)
		}
	}
}

func TestRNG_Roll_Range(t *testing.T) {
	rng := NewRNG(99)

	for i := 0; i < 1000; i++ {
		r := rng.Roll(6)
		if r < 1 || r > 6 {
			t.Fatalf("roll out of range [1,6]: got %d", r)
		}
	}
}

func TestRNG_Direction_AllFourReachable(t *testing.T) {
	rng := NewRNG(7)
	seen := map[types.Direction]bool{}

	for i := 0; i < 200; i++ {
		d := rng.Direction()
		if d.Reverse().Reverse() != d || d == types.DirNone {
			t.Fatalf("unexpected direction %v", d)
		}
		seen[d] = true
	}
	if len(seen) != 4 {
		t.Errorf("saw %d directions, want 4", len(seen))
	}
}

func TestRNG_Position_Tracks(t *testing.T) {
	rng := NewRNG(42)

	if rng.Position() != 0 {
		t.Fatalf("expected position 0, got %d", rng.Position())
	}
	rng.Roll(6)
	if rng.Position() < 1 {
		t.Fatalf("expected position to advance, got %d", rng.Position())
	}
}

func TestRNG_Restore_MatchesPosition(t *testing.T) {
	rng := NewRNG(42)
	for i := 0; i < 10; i++ {
		rng.Roll(6)
	}
	pos := rng.Position()

	var expected [5]int
	for i := range expected {
		expected[i] = rng.Roll(6)
	}

	restored := RestoreRNG(42, pos)
	if restored.Position() != pos {
		t.Fatalf("expected position %d, got %d", pos, restored.Position())
	}
	for i, want := range expected {
		if got := restored.Roll(6); got != want {
			t.Fatalf("roll %d: expected %d, got %d", i, want, got)
		}
	}
}

func TestRNG_DifferentSeeds_DifferentResults(t *testing.T) {
	rng1 := NewRNG(1)
	rng2 := NewRNG(2)

	differs := false
	for i := 0; i < 20; i++ {
		if rng1.Roll(100) != rng2.Roll(100) {
			differs = true
			break
		}
	}
	if !differs {
		t.Error("expected different seeds to produce different results")
	}
}
