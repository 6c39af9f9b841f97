package builtins

import (
	"github.com/embedpy/pycore/heap"
	"github.com/embedpy/pycore/namepool"
	"github.com/embedpy/pycore/pkg/kind"
	"github.com/embedpy/pycore/vm"
)

// newRange allocates an immutable range cell (spec.md §3 "range: 3
// slots — start, stop, step, all ints, immutable after construction").
func newRange(v *vm.VM, start, stop, step int64) heap.Cell {
	t := v.Types.ByKind(kind.KindRange)
	obj, _ := v.Heap.Alloc(&t.TypeInfo, 3)
	obj.Slots[0] = heap.Int(start)
	obj.Slots[1] = heap.Int(stop)
	obj.Slots[2] = heap.Int(step)
	heap.Populate(obj)
	return heap.Cell{Kind: kind.KindRange, Obj: obj}
}

func rangeLen(self heap.Cell) int64 {
	start, stop, step := self.Obj.Slots[0].I, self.Obj.Slots[1].I, self.Obj.Slots[2].I
	if step > 0 {
		if stop <= start {
			return 0
		}
		return (stop - start + step - 1) / step
	}
	if stop >= start {
		return 0
	}
	return (start - stop - step - 1) / (-step)
}

func installRange(v *vm.VM) {
	t := v.Types.ByKind(kind.KindRange)

	*t.GetMagic(namepool.MagicLen) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return heap.Int(rangeLen(f.Arg(0))), nil
	})
	*t.GetMagic(namepool.MagicBool) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return heap.Bool(rangeLen(f.Arg(0)) != 0), nil
	})
	*t.GetMagic(namepool.MagicGetItem) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return rangeGetItem(v, f.Arg(0), f.Arg(1))
	})
	*t.GetMagic(namepool.MagicContains) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		item := f.Arg(1)
		if item.Kind != kind.KindInt && item.Kind != kind.KindBool {
			return heap.False, nil
		}
		n, _ := asInt(item)
		self := f.Arg(0)
		start, stop, step := self.Obj.Slots[0].I, self.Obj.Slots[1].I, self.Obj.Slots[2].I
		if step > 0 {
			if n < start || n >= stop || (n-start)%step != 0 {
				return heap.False, nil
			}
		} else {
			if n > start || n <= stop || (start-n)%(-step) != 0 {
				return heap.False, nil
			}
		}
		return heap.True, nil
	})
	*t.GetMagic(namepool.MagicEq) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		a, b := f.Arg(0), f.Arg(1)
		if b.Kind != kind.KindRange {
			return heap.NotImplemented, nil
		}
		al, bl := rangeLen(a), rangeLen(b)
		if al != bl {
			return heap.False, nil
		}
		if al == 0 {
			return heap.True, nil
		}
		if a.Obj.Slots[0].I != b.Obj.Slots[0].I {
			return heap.False, nil
		}
		if al == 1 {
			return heap.True, nil
		}
		return heap.Bool(a.Obj.Slots[2].I == b.Obj.Slots[2].I), nil
	})
	*t.GetMagic(namepool.MagicIter) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return newRangeIterator(v, f.Arg(0)), nil
	})
	*t.GetMagic(namepool.MagicRepr) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		self := f.Arg(0)
		start, stop, step := self.Obj.Slots[0].I, self.Obj.Slots[1].I, self.Obj.Slots[2].I
		if step == 1 {
			return newStr(v, "range("+fallbackRepr(heap.Int(start))+", "+fallbackRepr(heap.Int(stop))+")"), nil
		}
		return newStr(v, "range("+fallbackRepr(heap.Int(start))+", "+fallbackRepr(heap.Int(stop))+", "+fallbackRepr(heap.Int(step))+")"), nil
	})
	*t.GetMagic(namepool.MagicNew) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		switch f.Argc() {
		case 2:
			return newRange(v, 0, f.Arg(1).I, 1), nil
		case 3:
			return newRange(v, f.Arg(1).I, f.Arg(2).I, 1), nil
		case 4:
			step := f.Arg(3).I
			if step == 0 {
				return raiseValueError(v, "range() arg 3 must not be zero")
			}
			return newRange(v, f.Arg(1).I, f.Arg(2).I, step), nil
		default:
			return raiseTypeError(v, "range expected 1 to 3 arguments, got %d", f.Argc()-1)
		}
	})
}

func rangeGetItem(v *vm.VM, self, key heap.Cell) (heap.Cell, error) {
	n := rangeLen(self)
	start, _, step := self.Obj.Slots[0].I, self.Obj.Slots[1].I, self.Obj.Slots[2].I
	if key.Kind == kind.KindInt {
		i := key.I
		if i < 0 {
			i += n
		}
		if i < 0 || i >= n {
			return raiseIndexError(v, "range object index out of range")
		}
		return heap.Int(start + i*step), nil
	}
	return raiseTypeError(v, "range indices must be integers")
}

// range_iterator: KindRangeIterator, 2 slots — the index of the next
// element (its value is start+index*step), and the
// source range cell (so stepping direction/bound stay in one place
// rather than duplicated into the iterator).
func newRangeIterator(v *vm.VM, r heap.Cell) heap.Cell {
	t := v.Types.ByKind(kind.KindRangeIterator)
	obj, _ := v.Heap.Alloc(&t.TypeInfo, 2)
	obj.Slots[0] = heap.Int(0)
	obj.Slots[1] = r
	heap.Populate(obj)
	return heap.Cell{Kind: kind.KindRangeIterator, Obj: obj}
}

func installRangeIterator(v *vm.VM) {
	t := v.Types.ByKind(kind.KindRangeIterator)
	*t.GetMagic(namepool.MagicIter) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return f.Arg(0), nil
	})
	*t.GetMagic(namepool.MagicNext) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		self := f.Arg(0)
		r := self.Obj.Slots[1]
		i := self.Obj.Slots[0].I
		if i >= rangeLen(r) {
			return raise(v, "StopIteration", "")
		}
		self.Obj.Slots[0] = heap.Int(i + 1)
		start, _, step := r.Obj.Slots[0].I, r.Obj.Slots[1].I, r.Obj.Slots[2].I
		return heap.Int(start + i*step), nil
	})
}
