package vm

import (
	"testing"

	"github.com/embedpy/pycore/pkg/kind"
)

func TestSpawnSwitchAndMaxVMs(t *testing.T) {
	g := NewGroup()
	if g.Current() != nil {
		t.Fatalf("expected no current VM in an empty group")
	}

	first, err := g.Spawn(NewOptions())
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	if g.Current() != first {
		t.Fatalf("first spawned VM should become current")
	}

	second, err := g.Spawn(NewOptions())
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	if g.Current() != second {
		t.Fatalf("second spawned VM should become current")
	}

	if err := g.Switch(0); err != nil {
		t.Fatalf("Switch(0): %v", err)
	}
	if g.Current() != first {
		t.Fatalf("Switch(0) did not select the first VM")
	}

	if err := g.Switch(99); err == nil {
		t.Fatalf("expected out-of-range Switch to fail")
	}
}

func TestGroupSharesNamePoolNotHeap(t *testing.T) {
	g := NewGroup()
	a, _ := g.Spawn(NewOptions())
	b, _ := g.Spawn(NewOptions())
	if a.Names != b.Names {
		t.Fatalf("expected VMs in a group to share one name pool")
	}
	if a.Heap == b.Heap {
		t.Fatalf("expected each VM to own an independent heap")
	}
}

func TestGroupRejectsBeyondMaxVMs(t *testing.T) {
	g := NewGroup()
	for i := 0; i < kind.MaxVMs; i++ {
		if _, err := g.Spawn(NewOptions()); err != nil {
			t.Fatalf("Spawn #%d: %v", i, err)
		}
	}
	if _, err := g.Spawn(NewOptions()); err == nil {
		t.Fatalf("expected Spawn to fail once MaxVMs is reached")
	}
}
