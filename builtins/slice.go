package builtins

import (
	"github.com/embedpy/pycore/dispatch"
	"github.com/embedpy/pycore/heap"
	"github.com/embedpy/pycore/namepool"
	"github.com/embedpy/pycore/pkg/kind"
	"github.com/embedpy/pycore/vm"
)

// newSlice allocates a slice cell; each component is heap.Nil for an
// omitted bound (spec.md §3 "slice: 3 slots (start, stop, step)").
func newSlice(v *vm.VM, start, stop, step heap.Cell) heap.Cell {
	t := v.Types.ByKind(kind.KindSlice)
	obj, _ := v.Heap.Alloc(&t.TypeInfo, 3)
	obj.Slots[0] = start
	obj.Slots[1] = stop
	obj.Slots[2] = step
	heap.Populate(obj)
	return heap.Cell{Kind: kind.KindSlice, Obj: obj}
}

// sliceIndices normalizes a slice cell against a sequence of length n
// into concrete (start, stop, step), following CPython's
// PySlice_GetIndicesEx clamping rules. step == 0 is rejected with
// ValueError by the caller of this function, not here.
func sliceIndices(s heap.Cell, n int) (start, stop, step int) {
	step = 1
	if !s.Obj.Slots[2].IsNil() {
		step = int(s.Obj.Slots[2].I)
	}

	if step > 0 {
		start, stop = 0, n
	} else {
		start, stop = n-1, -1
	}

	if !s.Obj.Slots[0].IsNil() {
		start = clampIndex(int(s.Obj.Slots[0].I), n, step)
	}
	if !s.Obj.Slots[1].IsNil() {
		stop = clampIndex(int(s.Obj.Slots[1].I), n, step)
	}
	return start, stop, step
}

func clampIndex(i, n, step int) int {
	if i < 0 {
		i += n
		if i < 0 {
			if step < 0 {
				return -1
			}
			return 0
		}
	}
	if i >= n {
		if step < 0 {
			return n - 1
		}
		return n
	}
	return i
}

// sliceLen reports how many elements a normalized (start, stop, step)
// triple selects.
func sliceLen(start, stop, step int) int {
	if step > 0 {
		if stop <= start {
			return 0
		}
		return (stop-start+step-1)/step
	}
	if stop >= start {
		return 0
	}
	return (start-stop-step-1) / (-step)
}

func installSlice(v *vm.VM) {
	t := v.Types.ByKind(kind.KindSlice)

	*t.GetMagic(namepool.MagicRepr) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		self := f.Arg(0)
		parts := [3]string{"None", "None", "None"}
		for i, c := range self.Obj.Slots {
			if !c.IsNil() {
				s, err := Repr(v, c)
				if err != nil {
					return heap.Cell{}, err
				}
				parts[i] = s
			}
		}
		return newStr(v, "slice("+parts[0]+", "+parts[1]+", "+parts[2]+")"), nil
	})

	*t.GetMagic(namepool.MagicEq) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		a, b := f.Arg(0), f.Arg(1)
		if b.Kind != kind.KindSlice {
			return heap.NotImplemented, nil
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
}

// cellsEqual is the shared "a == b" helper every container's __eq__ and
// __contains__ reduces to: dispatch.BinaryOp with __eq__, interpreted
// as a bool via dispatch.Truthy.
func cellsEqual(v *vm.VM, a, b heap.Cell) (bool, error) {
	result, err := dispatch.BinaryOp(v, a, b, namepool.MagicEq)
	if err != nil {
		return false, err
	}
	return dispatch.Truthy(v, result)
}
