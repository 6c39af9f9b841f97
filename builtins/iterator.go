package builtins

import (
	"github.com/embedpy/pycore/dispatch"
	"github.com/embedpy/pycore/heap"
	"github.com/embedpy/pycore/namepool"
	"github.com/embedpy/pycore/pkg/kind"
	"github.com/embedpy/pycore/vm"
)

// newSeqIterator builds the one list_iterator shape shared by list,
// tuple, and bytes (the locked canonical bootstrap order in
// typeregistry.Registry has no room for a separate tuple_iterator or
// bytes_iterator kind). Slots[0] is the next index, Slots[1] holds the
// source cell; __next__ drives __len__/__getitem__ on the source
// through dispatch rather than assuming list-specific internals, so any
// sequence type that implements those two magics can be iterated this
// way for free.
func newSeqIterator(v *vm.VM, source heap.Cell) heap.Cell {
	t := v.Types.ByKind(kind.KindListIterator)
	obj, _ := v.Heap.Alloc(&t.TypeInfo, 2)
	obj.Slots[0] = heap.Int(0)
	obj.Slots[1] = source
	heap.Populate(obj)
	return heap.Cell{Kind: kind.KindListIterator, Obj: obj}
}

func installListIterator(v *vm.VM) {
	t := v.Types.ByKind(kind.KindListIterator)

	*t.GetMagic(namepool.MagicIter) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return f.Arg(0), nil
	})
	*t.GetMagic(namepool.MagicNext) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		self := f.Arg(0)
		source := self.Obj.Slots[1]
		length, err := seqLen(v, source)
		if err != nil {
			return heap.Cell{}, err
		}
		i := self.Obj.Slots[0].I
		if i >= length {
			return raise(v, "StopIteration", "")
		}
		item, err := dispatch.GetItem(v, source, heap.Int(i))
		if err != nil {
			return heap.Cell{}, err
		}
		self.Obj.Slots[0] = heap.Int(i + 1)
		return item, nil
	})
}

// collectIterable drains any iterable cell into a Go slice by driving
// its __iter__/__next__ protocol through dispatch — used by the
// container __new__s below to build a list/tuple from an arbitrary
// source (spec.md §4.6's iterator protocol, not just this package's own
// sequence types).
func collectIterable(v *vm.VM, iterable heap.Cell) ([]heap.Cell, error) {
	it, err := dispatch.Iter(v, iterable)
	if err != nil {
		return nil, err
	}
	var out []heap.Cell
	for {
		item, outcome, err := dispatch.Next(v, it)
		if err != nil {
			return nil, err
		}
		if outcome == dispatch.NextStopIteration {
			return out, nil
		}
		out = append(out, item)
	}
}

// seqLen calls a cell's __len__ magic directly (dispatch has no
// standalone Len helper of its own — the interpreter loop that would
// otherwise own the `len()` builtin is out of scope for this core).
func seqLen(v *vm.VM, c heap.Cell) (int64, error) {
	t := v.TypeOf(c)
	if t == nil {
		_, err := raiseTypeError(v, "object has no len()")
		return 0, err
	}
	magic, ok := t.FindMagic(namepool.MagicLen)
	if !ok {
		_, err := raiseTypeError(v, "object of type %q has no len()", t.Name)
		return 0, err
	}
	result, err := dispatch.Call(v, magic, []heap.Cell{c}, nil)
	if err != nil {
		return 0, err
	}
	return result.I, nil
}
