package builtins

import (
	"github.com/embedpy/pycore/heap"
	"github.com/embedpy/pycore/namepool"
	"github.com/embedpy/pycore/pkg/kind"
	"github.com/embedpy/pycore/vm"
)

// installFunctionKinds wires __repr__ for the three callable kinds
// dispatch/call.go already knows how to invoke structurally (function,
// nativefunc, bound_method) without any magic-slot lookup — they need
// nothing here to be called, only something to print. function's own
// name/qualname live in whatever a future bytecode compiler populates
// its object with (out of scope here, spec.md §1); this core only
// promises a recognizable, non-crashing repr in the meantime.
func installFunctionKinds(v *vm.VM) {
	*v.Types.ByKind(kind.KindNativeFunc).GetMagic(namepool.MagicRepr) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return newStr(v, "<built-in function>"), nil
	})
	*v.Types.ByKind(kind.KindFunction).GetMagic(namepool.MagicRepr) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return newStr(v, "<function>"), nil
	})
	*v.Types.ByKind(kind.KindBoundMethod).GetMagic(namepool.MagicRepr) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		underlying, err := Repr(v, f.Arg(0).Obj.Slots[1])
		if err != nil {
			return heap.Cell{}, err
		}
		return newStr(v, "<bound method "+underlying+">"), nil
	})
}
