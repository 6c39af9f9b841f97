package vm

import (
	"testing"

	"github.com/embedpy/pycore/heap"
	"github.com/embedpy/pycore/internal/fault"
)

func TestPushPopPeek(t *testing.T) {
	s := newStack(4)
	if err := s.Push(heap.Int(1)); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if err := s.Push(heap.Int(2)); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if got := s.Peek(-1); got.I != 2 {
		t.Fatalf("Peek(-1) = %v, want top (2)", got)
	}
	if got := s.Peek(-2); got.I != 1 {
		t.Fatalf("Peek(-2) = %v, want bottom (1)", got)
	}
	if got := s.Pop(); got.I != 2 {
		t.Fatalf("Pop() = %v, want 2", got)
	}
	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}
}

func TestPushOverflow(t *testing.T) {
	s := newStack(2)
	if err := s.Push(heap.Int(1)); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if err := s.Push(heap.Int(2)); err != nil {
		t.Fatalf("Push: %v", err)
	}
	err := s.Push(heap.Int(3))
	if err == nil {
		t.Fatalf("expected overflow error")
	}
	f, ok := err.(*fault.Fault)
	if !ok || f.Kind != fault.KindStackOverflow {
		t.Fatalf("expected a KindStackOverflow fault, got %v", err)
	}
}

func TestShrinkToClearsVacatedCells(t *testing.T) {
	s := newStack(4)
	s.Push(heap.Int(1))
	s.Push(heap.Int(2))
	s.Push(heap.Int(3))
	s.ShrinkTo(1)
	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}
	if !s.cells[1].IsNil() || !s.cells[2].IsNil() {
		t.Fatalf("ShrinkTo left stale cells behind the new stack pointer")
	}
}
