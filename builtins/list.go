package builtins

import (
	"strings"

	"github.com/embedpy/pycore/heap"
	"github.com/embedpy/pycore/namepool"
	"github.com/embedpy/pycore/pkg/kind"
	"github.com/embedpy/pycore/vm"
)

// pyList is list's UserData payload: a plain growable Go slice. Kept
// behind a named type (rather than a bare []heap.Cell) so TraceUserData
// below has something unambiguous to type-assert.
type pyList struct {
	items []heap.Cell
}

func newList(v *vm.VM, items []heap.Cell) heap.Cell {
	t := v.Types.ByKind(kind.KindList)
	obj, _ := v.Heap.Alloc(&t.TypeInfo, 0)
	cp := append([]heap.Cell{}, items...)
	obj.UserData = &pyList{items: cp}
	heap.Populate(obj)
	return heap.Cell{Kind: kind.KindList, Obj: obj}
}

func listOf(c heap.Cell) *pyList {
	if !c.IsPointer() {
		return nil
	}
	l, _ := c.Obj.UserData.(*pyList)
	return l
}

func installList(v *vm.VM) {
	t := v.Types.ByKind(kind.KindList)

	// list_swap/list_insert/list_delitem/list_emplace (spec.md §4.7) are
	// exercised through __setitem__/__delitem__/append below rather than
	// exposed as their own magics — Python has no dunder for them either.
	t.TraceUserData = func(obj *heap.Object, mark func(heap.Cell)) {
		l, _ := obj.UserData.(*pyList)
		if l == nil {
			return
		}
		for _, c := range l.items {
			mark(c)
		}
	}

	*t.GetMagic(namepool.MagicLen) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return heap.Int(int64(len(listOf(f.Arg(0)).items))), nil
	})
	*t.GetMagic(namepool.MagicBool) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return heap.Bool(len(listOf(f.Arg(0)).items) != 0), nil
	})
	*t.GetMagic(namepool.MagicGetItem) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return listGetItem(v, f.Arg(0), f.Arg(1))
	})
	*t.GetMagic(namepool.MagicSetItem) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return heap.Cell{}, listSetItem(v, f.Arg(0), f.Arg(1), f.Arg(2))
	})
	*t.GetMagic(namepool.MagicDelItem) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return heap.Cell{}, listDelItem(v, f.Arg(0), f.Arg(1))
	})
	*t.GetMagic(namepool.MagicContains) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		item := f.Arg(1)
		for _, elem := range listOf(f.Arg(0)).items {
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
		if b.Kind != kind.KindList {
			return heap.NotImplemented, nil
		}
		la, lb := listOf(a).items, listOf(b).items
		if len(la) != len(lb) {
			return heap.False, nil
		}
		for i := range la {
			eq, err := cellsEqual(v, la[i], lb[i])
			if err != nil {
				return heap.Cell{}, err
			}
			if !eq {
				return heap.False, nil
			}
		}
		return heap.True, nil
	})
	*t.GetMagic(namepool.MagicAdd) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		rhs := f.Arg(1)
		if rhs.Kind != kind.KindList {
			return heap.NotImplemented, nil
		}
		out := append(append([]heap.Cell{}, listOf(f.Arg(0)).items...), listOf(rhs).items...)
		return newList(v, out), nil
	})
	*t.GetMagic(namepool.MagicRepr) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		s, err := listRepr(v, f.Arg(0))
		if err != nil {
			return heap.Cell{}, err
		}
		return newStr(v, s), nil
	})
	*t.GetMagic(namepool.MagicStr) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		s, err := listRepr(v, f.Arg(0))
		if err != nil {
			return heap.Cell{}, err
		}
		return newStr(v, s), nil
	})

	*t.GetMagic(namepool.MagicNew) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		if f.Argc() < 2 {
			return newList(v, nil), nil
		}
		elems, err := collectIterable(v, f.Arg(1))
		if err != nil {
			return heap.Cell{}, err
		}
		return newList(v, elems), nil
	})

	appendName := internName(v, "append")
	t.Attrs.Set(appendName, nativeCell(func(f heap.Frame) (heap.Cell, error) {
		listOf(f.Arg(0)).items = append(listOf(f.Arg(0)).items, f.Arg(1))
		return heap.None, nil
	}))
}

func listGetItem(v *vm.VM, self, key heap.Cell) (heap.Cell, error) {
	items := listOf(self).items
	if key.Kind == kind.KindInt {
		i := int(key.I)
		if i < 0 {
			i += len(items)
		}
		if i < 0 || i >= len(items) {
			return raiseIndexError(v, "list index out of range")
		}
		return items[i], nil
	}
	if key.Kind == kind.KindSlice {
		start, stop, step := sliceIndices(key, len(items))
		out := make([]heap.Cell, 0, sliceLen(start, stop, step))
		if step > 0 {
			for i := start; i < stop; i += step {
				out = append(out, items[i])
			}
		} else {
			for i := start; i > stop; i += step {
				out = append(out, items[i])
			}
		}
		return newList(v, out), nil
	}
	return raiseTypeError(v, "list indices must be integers or slices")
}

// listSetItem implements list_swap for int keys (replace one element in
// place) and a slice-assignment splice for slice keys (spec.md §4.7
// list_swap/list_emplace).
func listSetItem(v *vm.VM, self, key, value heap.Cell) error {
	l := listOf(self)
	if key.Kind == kind.KindInt {
		i := int(key.I)
		if i < 0 {
			i += len(l.items)
		}
		if i < 0 || i >= len(l.items) {
			_, err := raiseIndexError(v, "list assignment index out of range")
			return err
		}
		l.items[i] = value
		return nil
	}
	if key.Kind == kind.KindSlice {
		if value.Kind != kind.KindList {
			_, err := raiseTypeError(v, "can only assign a list to a list slice")
			return err
		}
		start, stop, step := sliceIndices(key, len(l.items))
		if step != 1 {
			_, err := raiseValueError(v, "extended slice assignment requires step 1")
			return err
		}
		if start > stop {
			stop = start
		}
		replacement := listOf(value).items
		out := make([]heap.Cell, 0, len(l.items)-(stop-start)+len(replacement))
		out = append(out, l.items[:start]...)
		out = append(out, replacement...)
		out = append(out, l.items[stop:]...)
		l.items = out
		return nil
	}
	_, err := raiseTypeError(v, "list indices must be integers or slices")
	return err
}

// listDelItem implements list_delitem: remove one element (int key) or
// splice out a contiguous range (slice key, step 1 only).
func listDelItem(v *vm.VM, self, key heap.Cell) error {
	l := listOf(self)
	if key.Kind == kind.KindInt {
		i := int(key.I)
		if i < 0 {
			i += len(l.items)
		}
		if i < 0 || i >= len(l.items) {
			_, err := raiseIndexError(v, "list assignment index out of range")
			return err
		}
		l.items = append(l.items[:i], l.items[i+1:]...)
		return nil
	}
	if key.Kind == kind.KindSlice {
		start, stop, step := sliceIndices(key, len(l.items))
		if step != 1 {
			_, err := raiseValueError(v, "extended slice deletion requires step 1")
			return err
		}
		if start > stop {
			stop = start
		}
		l.items = append(l.items[:start], l.items[stop:]...)
		return nil
	}
	_, err := raiseTypeError(v, "list indices must be integers or slices")
	return err
}

func listRepr(v *vm.VM, self heap.Cell) (string, error) {
	items := listOf(self).items
	parts := make([]string, len(items))
	for i, e := range items {
		s, err := Repr(v, e)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return "[" + strings.Join(parts, ", ") + "]", nil
}
