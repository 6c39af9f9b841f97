package vm

import (
	"testing"

	"github.com/embedpy/pycore/heap"
	"github.com/embedpy/pycore/pkg/kind"
)

func newExceptionCell(t *testing.T, v *VM, ty string) heap.Cell {
	t.Helper()
	typ := v.Types.ByKind(kind.KindException)
	if ty != "" {
		var err error
		typ, err = v.Types.Register(v.Types.ByKind(kind.KindException), "", ty, nil, nil)
		if err != nil {
			t.Fatalf("Register(%s): %v", ty, err)
		}
	}
	obj, err := v.Heap.Alloc(&typ.TypeInfo, 0)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	return heap.Cell{Kind: typ.Kind, Obj: obj}
}

func TestRaiseMatchClear(t *testing.T) {
	v := newTestVM(t)
	exc := newExceptionCell(t, v, "ValueError")

	if v.ExcState() != ExcClear {
		t.Fatalf("initial state = %v, want clear", v.ExcState())
	}
	v.Raise(exc)
	if v.ExcState() != ExcRaised {
		t.Fatalf("state after Raise = %v, want raised", v.ExcState())
	}
	if !v.Raised() {
		t.Fatalf("Raised() = false, want true")
	}

	valueErrorType, _ := v.Types.Lookup("", "ValueError")
	if !v.MatchExc(valueErrorType) {
		t.Fatalf("MatchExc(ValueError) = false, want true")
	}
	if v.ExcState() != ExcHandled {
		t.Fatalf("state after MatchExc = %v, want handled", v.ExcState())
	}
	if v.Register(RegLastReturn).Obj != exc.Obj {
		t.Fatalf("RegLastReturn not populated with matched exception")
	}

	v.ClearExc(-1)
	if v.ExcState() != ExcClear {
		t.Fatalf("state after ClearExc = %v, want clear", v.ExcState())
	}
	if !v.CurrentException().IsNil() {
		t.Fatalf("exception slot not cleared")
	}
}

func TestMatchExcWrongTypeLeavesRaised(t *testing.T) {
	v := newTestVM(t)
	exc := newExceptionCell(t, v, "TypeMismatch")
	v.Raise(exc)

	other, err := v.Types.Register(v.Types.ByKind(kind.KindException), "", "Unrelated", nil, nil)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if v.MatchExc(other) {
		t.Fatalf("MatchExc matched an unrelated exception type")
	}
	if v.ExcState() != ExcRaised {
		t.Fatalf("state = %v, want still raised after a non-matching MatchExc", v.ExcState())
	}
}

func TestClearExcUnwindsStack(t *testing.T) {
	v := newTestVM(t)
	v.Stack().Push(heap.Int(1))
	v.Stack().Push(heap.Int(2))
	mark := v.Stack().Len()
	v.Stack().Push(heap.Int(3))

	v.Raise(newExceptionCell(t, v, "RuntimeFailure"))
	v.ClearExc(mark)
	if v.Stack().Len() != mark {
		t.Fatalf("Stack().Len() = %d, want %d after unwind", v.Stack().Len(), mark)
	}
}
