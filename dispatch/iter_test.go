package dispatch

import (
	"testing"

	"github.com/embedpy/pycore/heap"
	"github.com/embedpy/pycore/namepool"
	"github.com/embedpy/pycore/pkg/kind"
)

func TestIterInvokesIterMagic(t *testing.T) {
	v := newTestVM(t)
	object := v.Types.Object()
	rang, _ := v.Types.Register(object, "", "Range3", nil, nil)
	rangIter, _ := v.Types.Register(object, "", "Range3Iterator", nil, nil)

	iterObj, _ := v.Heap.Alloc(&rangIter.TypeInfo, 1)
	iterObj.Slots[0] = heap.Int(0)
	iterCell := heap.Cell{Kind: rangIter.Kind, Obj: iterObj}

	*rang.GetMagic(namepool.MagicIter) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return iterCell, nil
	})

	rangObj, _ := v.Heap.Alloc(&rang.TypeInfo, 0)
	x := heap.Cell{Kind: rang.Kind, Obj: rangObj}

	got, err := Iter(v, x)
	if err != nil {
		t.Fatalf("Iter: %v", err)
	}
	if got.Obj != iterObj {
		t.Fatalf("Iter did not return the __iter__ result")
	}
}

func TestIterNotIterableRaisesTypeError(t *testing.T) {
	v := newTestVM(t)
	_, err := Iter(v, heap.Int(5))
	if err != ErrExceptionRaised {
		t.Fatalf("err = %v, want ErrExceptionRaised", err)
	}
	typeErr, _ := v.Types.Lookup("", "TypeError")
	if !v.MatchExc(typeErr) {
		t.Fatalf("expected TypeError")
	}
}

func TestNextYieldsThreeThenStopIteration(t *testing.T) {
	v := newTestVM(t)
	object := v.Types.Object()
	baseExc := v.Types.ByKind(kind.KindBaseException)
	if _, err := v.Types.Register(baseExc, "", "StopIteration", nil, nil); err != nil {
		t.Fatalf("Register(StopIteration): %v", err)
	}
	counter, _ := v.Types.Register(object, "", "Counter3", nil, nil)

	*counter.GetMagic(namepool.MagicNext) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		self := f.Arg(0)
		n := self.Obj.Slots[0].I
		if n >= 3 {
			return raiseStopIteration(v)
		}
		self.Obj.Slots[0] = heap.Int(n + 1)
		return heap.Int(n), nil
	})

	obj, _ := v.Heap.Alloc(&counter.TypeInfo, 1)
	obj.Slots[0] = heap.Int(0)
	it := heap.Cell{Kind: counter.Kind, Obj: obj}

	for expect := int64(0); expect < 3; expect++ {
		val, outcome, err := Next(v, it)
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if outcome != NextValue {
			t.Fatalf("outcome = %v, want NextValue", outcome)
		}
		if val.I != expect {
			t.Fatalf("val = %v, want %v", val.I, expect)
		}
	}

	_, outcome, err := Next(v, it)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if outcome != NextStopIteration {
		t.Fatalf("outcome = %v, want NextStopIteration", outcome)
	}
	if v.Raised() {
		t.Fatalf("StopIteration must be cleared from the exception channel, not left raised")
	}
}

func TestNextOnNonIteratorRaisesTypeError(t *testing.T) {
	v := newTestVM(t)
	_, outcome, err := Next(v, heap.Int(5))
	if outcome != NextError {
		t.Fatalf("outcome = %v, want NextError", outcome)
	}
	if err != ErrExceptionRaised {
		t.Fatalf("err = %v, want ErrExceptionRaised", err)
	}
}
