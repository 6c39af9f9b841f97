package builtins

import (
	"fmt"

	"github.com/embedpy/pycore/dispatch"
	"github.com/embedpy/pycore/heap"
	"github.com/embedpy/pycore/vm"
)

// raise mirrors dispatch's own internal raise helper (the two packages
// cannot share it directly without dispatch exporting an
// implementation-detail function): look the named exception type up by
// (module="", name), allocate a bare instance carrying msg as its
// human-readable payload, and deposit it into v's exception channel.
func raise(v *vm.VM, name, msg string) (heap.Cell, error) {
	t, ok := v.Types.Lookup("", name)
	if !ok {
		t, ok = v.Types.Lookup("", "Exception")
		if !ok {
			panic("builtins: Exception type not registered — installExceptions must run before any raise")
		}
	}
	obj, _ := v.Heap.Alloc(&t.TypeInfo, 0)
	obj.UserData = msg
	cell := heap.Cell{Kind: t.Kind, Obj: obj}
	v.Raise(cell)
	return heap.Cell{}, dispatch.ErrExceptionRaised
}

func raiseTypeError(v *vm.VM, format string, args ...any) (heap.Cell, error) {
	return raise(v, "TypeError", fmt.Sprintf(format, args...))
}

func raiseValueError(v *vm.VM, format string, args ...any) (heap.Cell, error) {
	return raise(v, "ValueError", fmt.Sprintf(format, args...))
}

func raiseIndexError(v *vm.VM, format string, args ...any) (heap.Cell, error) {
	return raise(v, "IndexError", fmt.Sprintf(format, args...))
}

func raiseKeyError(v *vm.VM, format string, args ...any) (heap.Cell, error) {
	return raise(v, "KeyError", fmt.Sprintf(format, args...))
}

func raiseZeroDivisionError(v *vm.VM, format string, args ...any) (heap.Cell, error) {
	return raise(v, "ZeroDivisionError", fmt.Sprintf(format, args...))
}
