package partition

import (
	"strconv"
	"testing"
)

func TestFor_Determinism(t *testing.T) {
	// Same input must always produce the same stripe.
	id := For("P1|steps|hour|2024-01-01T09:00:00Z")
	for i := 0; i < 100; i++ {
		if got := For("P1|steps|hour|2024-01-01T09:00:00Z"); got != id {
			t.Fatalf("For() = %d on iteration %d, want %d", got, i, id)
		}
	}
}

func TestFor_Range(t *testing.T) {
	inputs := []string{"", "a", "P1|steps", "P2|heart_rate", "very-long-bucket-key-that-should-still-hash-correctly"}
	for _, s := range inputs {
		p := For(s)
		if p < 0 || p >= Count {
			t.Errorf("For(%q) = %d, want [0, %d)", s, p, Count)
		}
	}
}

func TestFor_Distribution(t *testing.T) {
	// 1000 bucket keys should hit at least 100 distinct stripes.
	seen := make(map[int]struct{})
	for i := 0; i < 1000; i++ {
		seen[For("patient-"+strconv.Itoa(i))] = struct{}{}
	}
	if len(seen) < 100 {
		t.Errorf("only %d distinct stripes from 1000 inputs, want >= 100", len(seen))
	}
}

func TestLockKey_Determinism(t *testing.T) {
	a := LockKey("P1|spo2|day|2024-01-01T00:00:00Z")
	if b := LockKey("P1|spo2|day|2024-01-01T00:00:00Z"); a != b {
		t.Fatalf("LockKey not deterministic: %d != %d", a, b)
	}
	if c := LockKey("P1|spo2|hour|2024-01-01T00:00:00Z"); a == c {
		t.Fatalf("LockKey collided for distinct granularities")
	}
}
