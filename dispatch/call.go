package dispatch

import (
	"github.com/embedpy/pycore/heap"
	"github.com/embedpy/pycore/namepool"
	"github.com/embedpy/pycore/pkg/kind"
	"github.com/embedpy/pycore/vm"
)

// KWArg is one keyword argument for Call.
type KWArg struct {
	Name  namepool.Name
	Value heap.Cell
}

// PyFunctionHook executes a Python function's bytecode (out of scope for
// this core — spec.md §1 excludes "the bytecode interpreter loop
// itself"). Call returns a NotImplementedError for KindFunction values
// unless a host has installed a hook via SetPyFunctionHook.
type PyFunctionHook func(v *vm.VM, fn heap.Cell, frame *vm.Frame) (heap.Cell, error)

var pyFunctionHook PyFunctionHook

// SetPyFunctionHook installs the callback an external bytecode
// interpreter uses to actually run a `function` object's body. Without
// one, calling a `function` value raises NotImplementedError — the core
// can set up the frame (spec.md §4.6) but not execute it.
func SetPyFunctionHook(hook PyFunctionHook) { pyFunctionHook = hook }

// Call is the native-code entry point for invoking any callable cell:
// it lays out the stack window itself (spec.md §6's "[callable | arg0 …
// | kw_name_0 | kw_val_0 | …]"), runs VectorCall, and restores the
// stack to its prior height regardless of outcome.
func Call(v *vm.VM, callable heap.Cell, args []heap.Cell, kwargs []KWArg) (heap.Cell, error) {
	base := v.Stack().Len()
	if err := v.Stack().Push(callable); err != nil {
		return heap.Cell{}, err
	}
	for _, a := range args {
		if err := v.Stack().Push(a); err != nil {
			v.Stack().ShrinkTo(base)
			return heap.Cell{}, err
		}
	}
	for _, kw := range kwargs {
		if err := v.Stack().Push(heap.NameCell(kw.Name)); err != nil {
			v.Stack().ShrinkTo(base)
			return heap.Cell{}, err
		}
		if err := v.Stack().Push(kw.Value); err != nil {
			v.Stack().ShrinkTo(base)
			return heap.Cell{}, err
		}
	}

	err := VectorCall(v, base, len(args), len(kwargs))
	result := v.Register(vm.RegLastReturn)
	v.Stack().ShrinkTo(base)
	return result, err
}

// VectorCall implements spec.md §4.5/§4.6's vectorcall: the stack window
// [callee@calleeIdx | arg0..argc-1 | kw_name_0 kw_val_0 ... ] is already
// laid out; on success the result is written to RegLastReturn and the
// stack shrinks back to calleeIdx; on failure the exception slot holds
// the raised exception and the stack still unwinds to calleeIdx (spec.md
// §4.5 "failure ... shrinks to a recorded unwind point").
func VectorCall(v *vm.VM, calleeIdx, argc, kwargc int) error {
	callable := v.Stack().At(calleeIdx)
	frame := v.PushFrame(calleeIdx, argc, kwargc)
	result, err := dispatchCall(v, callable, frame)
	v.PopFrame()
	if err != nil {
		v.Stack().ShrinkTo(calleeIdx)
		return err
	}
	v.SetRegister(vm.RegLastReturn, result)
	v.Stack().ShrinkTo(calleeIdx)
	return nil
}

func dispatchCall(v *vm.VM, callable heap.Cell, frame *vm.Frame) (heap.Cell, error) {
	if v.Raised() {
		return heap.Cell{}, ErrExceptionRaised
	}
	switch callable.Kind {
	case kind.KindNativeFunc:
		return callable.Native(frame)
	case kind.KindBoundMethod:
		self := callable.Obj.Slots[0]
		underlying := callable.Obj.Slots[1]
		return callForwarding(v, self, underlying, frame)
	case kind.KindType:
		return construct(v, callable, frame)
	case kind.KindFunction:
		if pyFunctionHook == nil {
			return raiseNotImplementedError(v, "calling a Python function requires an interpreter loop, which is outside this core")
		}
		return pyFunctionHook(v, callable, frame)
	default:
		t := typeOf(v, callable)
		if t == nil {
			return raiseTypeError(v, "object is not callable")
		}
		magic, ok := t.FindMagic(namepool.MagicCall)
		if !ok {
			return raiseTypeError(v, "%q object is not callable", t.Name)
		}
		return callForwarding(v, callable, magic, frame)
	}
}

// callForwarding re-invokes callable with self prepended to frame's
// positional args and every keyword argument forwarded verbatim — used
// for bound_method dispatch and __call__.
func callForwarding(v *vm.VM, self, callable heap.Cell, frame *vm.Frame) (heap.Cell, error) {
	args := make([]heap.Cell, 0, frame.Argc()+1)
	args = append(args, self)
	for i := 0; i < frame.Argc(); i++ {
		args = append(args, frame.Arg(i))
	}
	var kwargs []KWArg
	if n := frame.Kwargc(); n > 0 {
		kwargs = make([]KWArg, n)
		for i := 0; i < n; i++ {
			name, val := frame.KwargAt(i)
			kwargs[i] = KWArg{Name: name, Value: val}
		}
	}
	return Call(v, callable, args, kwargs)
}

// construct implements spec.md §4.6's "type object (construct: call
// __new__ then __init__)".
func construct(v *vm.VM, typeCell heap.Cell, frame *vm.Frame) (heap.Cell, error) {
	t := vm.TypeOfTypeCell(typeCell)
	if t == nil {
		return raiseTypeError(v, "not a constructible type")
	}

	var instance heap.Cell
	if newMagic, ok := t.FindMagic(namepool.MagicNew); ok {
		result, err := callForwarding(v, typeCell, newMagic, frame)
		if err != nil {
			return heap.Cell{}, err
		}
		instance = result
	} else {
		obj, err := v.Heap.Alloc(&t.TypeInfo, 0)
		if err != nil {
			return heap.Cell{}, err
		}
		heap.Populate(obj)
		instance = heap.Cell{Kind: t.Kind, Obj: obj}
	}

	if initMagic, ok := t.FindMagic(namepool.MagicInit); ok {
		if _, err := callForwarding(v, instance, initMagic, frame); err != nil {
			return heap.Cell{}, err
		}
	}
	return instance, nil
}

// BindMethod wraps an unbound callable member together with self into a
// bound_method value (spec.md §4.6 getattr step 3: "return a
// bound_method binding self").
func BindMethod(v *vm.VM, self, callable heap.Cell) heap.Cell {
	boundType := v.Types.ByKind(kind.KindBoundMethod)
	obj, _ := v.Heap.Alloc(&boundType.TypeInfo, 2)
	obj.Slots[0] = self
	obj.Slots[1] = callable
	heap.Populate(obj)
	return heap.Cell{Kind: kind.KindBoundMethod, Obj: obj}
}
