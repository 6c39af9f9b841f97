package builtins

import (
	"github.com/embedpy/pycore/dispatch"
	"github.com/embedpy/pycore/heap"
	"github.com/embedpy/pycore/namepool"
	"github.com/embedpy/pycore/vm"
)

// elemHash computes hash(c) via its type's __hash__ magic, raising
// TypeError for types that opted out of hashing by leaving it
// uninstalled (spec.md §4.7 "mutable containers do not install
// __hash__"). Shared by tuple's own __hash__ and dict's key hashing.
func elemHash(v *vm.VM, c heap.Cell) (int64, error) {
	t := v.TypeOf(c)
	if t == nil {
		return 0, nil
	}
	magic, ok := t.FindMagic(namepool.MagicHash)
	if !ok {
		_, err := raiseTypeError(v, "unhashable type: %q", t.Name)
		return 0, err
	}
	result, err := dispatch.Call(v, magic, []heap.Cell{c}, nil)
	if err != nil {
		return 0, err
	}
	return result.I, nil
}
