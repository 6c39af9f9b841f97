package dispatch

import (
	"errors"
	"fmt"

	"github.com/embedpy/pycore/attrstore"
	"github.com/embedpy/pycore/heap"
	"github.com/embedpy/pycore/pkg/kind"
	"github.com/embedpy/pycore/typeregistry"
	"github.com/embedpy/pycore/vm"
)

// ErrExceptionRaised is returned by every dispatch function alongside a
// zero Cell once it has deposited a Python exception into the VM's
// exception slot (spec.md §7 "every dispatch operation checks the
// exception slot on return and propagates by failing"). Callers compare
// against this sentinel rather than inspecting the Go error's text.
var ErrExceptionRaised = errors.New("dispatch: exception raised")

// raise looks up excName in v's type registry (falling back to the
// generic Exception type if the builtins package has not registered it
// yet — keeps dispatch usable standalone, e.g. in this package's own
// tests), allocates a bare instance carrying msg as its human-readable
// payload, and raises it.
func raise(v *vm.VM, excName, msg string) (heap.Cell, error) {
	t, ok := v.Types.Lookup("", excName)
	if !ok {
		t = v.Types.ByKind(kind.KindException)
	}
	obj, _ := v.Heap.Alloc(&t.TypeInfo, 0)
	obj.UserData = msg
	cell := heap.Cell{Kind: t.Kind, Obj: obj}
	v.Raise(cell)
	return heap.Cell{}, ErrExceptionRaised
}

func raiseTypeError(v *vm.VM, format string, args ...any) (heap.Cell, error) {
	return raise(v, "TypeError", fmt.Sprintf(format, args...))
}

func raiseAttributeError(v *vm.VM, format string, args ...any) (heap.Cell, error) {
	return raise(v, "AttributeError", fmt.Sprintf(format, args...))
}

func raiseStopIteration(v *vm.VM) (heap.Cell, error) {
	return raise(v, "StopIteration", "")
}

func raiseIndexError(v *vm.VM, format string, args ...any) (heap.Cell, error) {
	return raise(v, "IndexError", fmt.Sprintf(format, args...))
}

func raiseKeyError(v *vm.VM, format string, args ...any) (heap.Cell, error) {
	return raise(v, "KeyError", fmt.Sprintf(format, args...))
}

func raiseNotImplementedError(v *vm.VM, format string, args ...any) (heap.Cell, error) {
	return raise(v, "NotImplementedError", fmt.Sprintf(format, args...))
}

// instanceAttrs returns obj's instance attribute store as a concrete
// *attrstore.Store, lazily creating one at kind.InstanceLoadFactor on
// first use. heap.Object.Attrs is typed heap.AttributeStore (only
// ForEach/Len — all the GC needs) precisely so the heap package does
// not import attrstore; dispatch sits downstream of both and is where
// the widening back to the concrete type happens.
func instanceAttrs(obj *heap.Object) *attrstore.Store {
	if obj.Attrs == nil {
		obj.Attrs = attrstore.New(kind.InstanceLoadFactor)
	}
	return obj.Attrs.(*attrstore.Store)
}

// typeOf is a package-local alias kept short for readability across this
// package's many call sites.
func typeOf(v *vm.VM, c heap.Cell) *typeregistry.Type { return v.TypeOf(c) }
