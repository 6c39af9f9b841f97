package builtins

import (
	"strings"

	"github.com/embedpy/pycore/heap"
	"github.com/embedpy/pycore/namepool"
	"github.com/embedpy/pycore/pkg/kind"
	"github.com/embedpy/pycore/vm"
)

// newTuple allocates a tuple cell with one slot per element (spec.md §3
// "tuple: N slots, one per element, fixed at construction").
func newTuple(v *vm.VM, elems []heap.Cell) heap.Cell {
	t := v.Types.ByKind(kind.KindTuple)
	obj, _ := v.Heap.Alloc(&t.TypeInfo, len(elems))
	copy(obj.Slots, elems)
	heap.Populate(obj)
	return heap.Cell{Kind: kind.KindTuple, Obj: obj}
}

func installTuple(v *vm.VM) {
	t := v.Types.ByKind(kind.KindTuple)

	*t.GetMagic(namepool.MagicLen) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return heap.Int(int64(len(f.Arg(0).Obj.Slots))), nil
	})
	*t.GetMagic(namepool.MagicBool) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return heap.Bool(len(f.Arg(0).Obj.Slots) != 0), nil
	})
	*t.GetMagic(namepool.MagicGetItem) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return tupleGetItem(v, f.Arg(0), f.Arg(1))
	})
	*t.GetMagic(namepool.MagicContains) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		item := f.Arg(1)
		for _, elem := range f.Arg(0).Obj.Slots {
			eq, err := cellsEqual(v, elem, item)
			if err != nil {
				return heap.Cell{}, err
			}
			if eq {
				return heap.True, nil
			}
		}
		return heap.False, nil
	})
	*t.GetMagic(namepool.MagicIter) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return newSeqIterator(v, f.Arg(0)), nil
	})
	*t.GetMagic(namepool.MagicEq) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		a, b := f.Arg(0), f.Arg(1)
		if b.Kind != kind.KindTuple {
			return heap.NotImplemented, nil
		}
		if len(a.Obj.Slots) != len(b.Obj.Slots) {
			return heap.False, nil
		}
		for i := range a.Obj.Slots {
			eq, err := cellsEqual(v, a.Obj.Slots[i], b.Obj.Slots[i])
			if err != nil {
				return heap.Cell{}, err
			}
			if !eq {
				return heap.False, nil
			}
		}
		return heap.True, nil
	})
	*t.GetMagic(namepool.MagicHash) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return tupleHash(v, f.Arg(0))
	})
	*t.GetMagic(namepool.MagicRepr) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		s, err := tupleRepr(v, f.Arg(0))
		if err != nil {
			return heap.Cell{}, err
		}
		return newStr(v, s), nil
	})
	*t.GetMagic(namepool.MagicStr) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		s, err := tupleRepr(v, f.Arg(0))
		if err != nil {
			return heap.Cell{}, err
		}
		return newStr(v, s), nil
	})
	*t.GetMagic(namepool.MagicNew) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		if f.Argc() < 2 {
			return newTuple(v, nil), nil
		}
		elems, err := collectIterable(v, f.Arg(1))
		if err != nil {
			return heap.Cell{}, err
		}
		return newTuple(v, elems), nil
	})
}

func tupleGetItem(v *vm.VM, self, key heap.Cell) (heap.Cell, error) {
	elems := self.Obj.Slots
	if key.Kind == kind.KindInt {
		i := int(key.I)
		if i < 0 {
			i += len(elems)
		}
		if i < 0 || i >= len(elems) {
			return raiseIndexError(v, "tuple index out of range")
		}
		return elems[i], nil
	}
	if key.Kind == kind.KindSlice {
		start, stop, step := sliceIndices(key, len(elems))
		out := make([]heap.Cell, 0, sliceLen(start, stop, step))
		if step > 0 {
			for i := start; i < stop; i += step {
				out = append(out, elems[i])
			}
		} else {
			for i := start; i > stop; i += step {
				out = append(out, elems[i])
			}
		}
		return newTuple(v, out), nil
	}
	return raiseTypeError(v, "tuple indices must be integers or slices")
}

// tupleHash combines element hashes the way CPython's tuplehash does:
// order-sensitive, so (1, 2) and (2, 1) hash differently.
func tupleHash(v *vm.VM, self heap.Cell) (heap.Cell, error) {
	h := uint64(0x345678)
	for _, elem := range self.Obj.Slots {
		eh, err := elemHash(v, elem)
		if err != nil {
			return heap.Cell{}, err
		}
		h = (h ^ uint64(eh)) * 1000003
	}
	return heap.Int(int64(h)), nil
}

func tupleRepr(v *vm.VM, self heap.Cell) (string, error) {
	elems := self.Obj.Slots
	parts := make([]string, len(elems))
	for i, e := range elems {
		s, err := Repr(v, e)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	if len(parts) == 1 {
		return "(" + parts[0] + ",)", nil
	}
	return "(" + strings.Join(parts, ", ") + ")", nil
}
