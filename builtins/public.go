package builtins

import (
	"fmt"

	"github.com/embedpy/pycore/heap"
	"github.com/embedpy/pycore/vm"
)

// This file is the seam pkg/capi calls through: every lowercase
// constructor above (newStr, newTuple, ...) is private to this package
// because the magic-slot installers need no wider audience, but a host
// embedding the core needs a way to hand the VM a Go string, []byte, or
// slice of Cells and get back a value it can push onto the stack or
// store in a module namespace (the original header's py_newint/
// py_newtuple/py_newlist family — see SPEC_FULL.md "SUPPLEMENTED
// FEATURES").

// NewStr wraps a Go string as a str cell.
func NewStr(v *vm.VM, s string) heap.Cell { return newStr(v, s) }

// NewBytes wraps a Go []byte as a bytes cell. The slice is copied.
func NewBytes(v *vm.VM, b []byte) heap.Cell { return newBytes(v, append([]byte(nil), b...)) }

// NewTuple builds a tuple cell from elems (copied).
func NewTuple(v *vm.VM, elems []heap.Cell) heap.Cell { return newTuple(v, elems) }

// NewList builds a list cell from items (copied).
func NewList(v *vm.VM, items []heap.Cell) heap.Cell { return newList(v, items) }

// NewDict builds an empty dict cell.
func NewDict(v *vm.VM) heap.Cell { return newDict(v) }

// DictSet sets key->value on a dict cell built by NewDict, running the
// same hash/equality protocol a bytecode STORE_SUBSCR would.
func DictSet(v *vm.VM, d, key, value heap.Cell) error { return dictSet(v, d, key, value) }

// NewException builds an instance of the named exception type (already
// registered by installExceptions) carrying args as its constructor
// arguments, without raising it — the original header's
// py_exception-adjacent helper for a host that wants to construct an
// exception value to inspect or return, rather than immediately
// unwinding the VM's exception channel.
func NewException(v *vm.VM, name string, args ...heap.Cell) (heap.Cell, error) {
	t, ok := v.Types.Lookup("", name)
	if !ok {
		return heap.Cell{}, fmt.Errorf("builtins: no such exception type %q", name)
	}
	obj, err := v.Heap.Alloc(&t.TypeInfo, 2)
	if err != nil {
		return heap.Cell{}, err
	}
	obj.Slots[0] = newTuple(v, args)
	obj.Slots[1] = heap.None
	heap.Populate(obj)
	return heap.Cell{Kind: t.Kind, Obj: obj}, nil
}
