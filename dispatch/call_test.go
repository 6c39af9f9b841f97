package dispatch

import (
	"testing"

	"github.com/embedpy/pycore/heap"
	"github.com/embedpy/pycore/namepool"
	"github.com/embedpy/pycore/pkg/kind"
	"github.com/embedpy/pycore/vm"
)

func newTestVM(t *testing.T) *vm.VM {
	t.Helper()
	return vm.New(namepool.New(), vm.NewOptions())
}

func nativeCell(fn heap.NativeFunc) heap.Cell {
	return heap.Cell{Kind: kind.KindNativeFunc, Native: fn}
}

func TestCallNativeFunc(t *testing.T) {
	v := newTestVM(t)
	double := nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return heap.Int(f.Arg(0).I * 2), nil
	})

	result, err := Call(v, double, []heap.Cell{heap.Int(21)}, nil)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if result.I != 42 {
		t.Fatalf("result = %v, want 42", result.I)
	}
	if v.Stack().Len() != 0 {
		t.Fatalf("stack not restored: len=%d", v.Stack().Len())
	}
}

func TestCallForwardsKeywordArgs(t *testing.T) {
	v := newTestVM(t)
	nameID, err := v.Names.Intern([]byte("scale"))
	if err != nil {
		t.Fatalf("Intern: %v", err)
	}
	fn := nativeCell(func(f heap.Frame) (heap.Cell, error) {
		scale, ok := f.Kwarg(nameID)
		if !ok {
			t.Fatalf("kwarg scale missing")
		}
		return heap.Int(f.Arg(0).I * scale.I), nil
	})

	result, err := Call(v, fn, []heap.Cell{heap.Int(5)}, []KWArg{{Name: nameID, Value: heap.Int(3)}})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if result.I != 15 {
		t.Fatalf("result = %v, want 15", result.I)
	}
}

func TestCallUncallableRaisesTypeError(t *testing.T) {
	v := newTestVM(t)
	_, err := Call(v, heap.Int(5), nil, nil)
	if err != ErrExceptionRaised {
		t.Fatalf("err = %v, want ErrExceptionRaised", err)
	}
	typeErr, _ := v.Types.Lookup("", "TypeError")
	if !v.MatchExc(typeErr) {
		t.Fatalf("expected TypeError raised")
	}
}

func TestCallPyFunctionWithoutHookRaisesNotImplemented(t *testing.T) {
	v := newTestVM(t)
	fnType := v.Types.ByKind(kind.KindFunction)
	obj, err := v.Heap.Alloc(&fnType.TypeInfo, 0)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	fn := heap.Cell{Kind: kind.KindFunction, Obj: obj}

	_, err = Call(v, fn, nil, nil)
	if err != ErrExceptionRaised {
		t.Fatalf("err = %v, want ErrExceptionRaised", err)
	}
	notImpl, _ := v.Types.Lookup("", "NotImplementedError")
	if !v.MatchExc(notImpl) {
		t.Fatalf("expected NotImplementedError raised")
	}
}

func TestCallPyFunctionWithHook(t *testing.T) {
	v := newTestVM(t)
	SetPyFunctionHook(func(v *vm.VM, fn heap.Cell, frame *vm.Frame) (heap.Cell, error) {
		return heap.Int(99), nil
	})
	defer SetPyFunctionHook(nil)

	fnType := v.Types.ByKind(kind.KindFunction)
	obj, _ := v.Heap.Alloc(&fnType.TypeInfo, 0)
	fn := heap.Cell{Kind: kind.KindFunction, Obj: obj}

	result, err := Call(v, fn, nil, nil)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if result.I != 99 {
		t.Fatalf("result = %v, want 99", result.I)
	}
}

func TestConstructCallsNewThenInit(t *testing.T) {
	v := newTestVM(t)
	object := v.Types.Object()
	widget, err := v.Types.Register(object, "", "Widget", nil, nil)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	var sawInit bool
	*widget.GetMagic(namepool.MagicInit) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		sawInit = true
		return heap.None, nil
	})

	typeCell := v.TypeCell(widget)
	instance, err := Call(v, typeCell, nil, nil)
	if err != nil {
		t.Fatalf("Call(type): %v", err)
	}
	if !sawInit {
		t.Fatalf("__init__ was not invoked")
	}
	if v.TypeOf(instance) != widget {
		t.Fatalf("constructed instance has wrong type: %v", v.TypeOf(instance))
	}
}

func TestConstructHonorsCustomNew(t *testing.T) {
	v := newTestVM(t)
	object := v.Types.Object()
	singleton, _ := v.Types.Register(object, "", "Singleton", nil, nil)

	sentinelObj, _ := v.Heap.Alloc(&singleton.TypeInfo, 0)
	sentinel := heap.Cell{Kind: singleton.Kind, Obj: sentinelObj}

	*singleton.GetMagic(namepool.MagicNew) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return sentinel, nil
	})

	typeCell := v.TypeCell(singleton)
	instance, err := Call(v, typeCell, nil, nil)
	if err != nil {
		t.Fatalf("Call(type): %v", err)
	}
	if instance.Obj != sentinelObj {
		t.Fatalf("construct did not return the __new__ result")
	}
}

func TestBindMethodAndCall(t *testing.T) {
	v := newTestVM(t)
	object := v.Types.Object()
	counter, _ := v.Types.Register(object, "", "Counter", nil, nil)
	obj, _ := v.Heap.Alloc(&counter.TypeInfo, 0)
	self := heap.Cell{Kind: counter.Kind, Obj: obj}

	method := nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return heap.Int(f.Arg(0).I + f.Arg(1).I), nil
	})

	bound := BindMethod(v, self, method)
	if bound.Kind != kind.KindBoundMethod {
		t.Fatalf("BindMethod returned kind %v", bound.Kind)
	}

	result, err := Call(v, bound, []heap.Cell{heap.Int(10)}, nil)
	if err != nil {
		t.Fatalf("Call(bound): %v", err)
	}
	// method sees f.Arg(0)=self (I=0, a plain object) and f.Arg(1)=10.
	if result.I != 10 {
		t.Fatalf("result = %v, want 10", result.I)
	}
}
