package builtins

import (
	"strings"

	"github.com/embedpy/pycore/heap"
	"github.com/embedpy/pycore/namepool"
	"github.com/embedpy/pycore/pkg/kind"
	"github.com/embedpy/pycore/vm"
)

// newStr allocates a str cell. Per spec.md §3 "str: heap object with
// length-prefixed UTF-8 byte buffer in user-data", the buffer is a
// plain Go string (already length-prefixed, already UTF-8); indexing
// is resolved to code points at call time rather than by storing a
// parallel []rune, matching the Open Question (c) decision recorded in
// the design ledger.
func newStr(v *vm.VM, s string) heap.Cell {
	t := v.Types.ByKind(kind.KindStr)
	obj, _ := v.Heap.Alloc(&t.TypeInfo, 0)
	obj.UserData = s
	heap.Populate(obj)
	return heap.Cell{Kind: kind.KindStr, Obj: obj}
}

func strOf(c heap.Cell) string {
	if !c.IsPointer() {
		return ""
	}
	s, _ := c.Obj.UserData.(string)
	return s
}

func installStr(v *vm.VM) {
	t := v.Types.ByKind(kind.KindStr)

	*t.GetMagic(namepool.MagicRepr) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return newStr(v, quoteStr(strOf(f.Arg(0)))), nil
	})
	*t.GetMagic(namepool.MagicStr) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return f.Arg(0), nil
	})
	*t.GetMagic(namepool.MagicLen) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return heap.Int(int64(len([]rune(strOf(f.Arg(0)))))), nil
	})
	*t.GetMagic(namepool.MagicBool) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return heap.Bool(strOf(f.Arg(0)) != ""), nil
	})
	*t.GetMagic(namepool.MagicHash) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return heap.Int(int64(fnv1a(strOf(f.Arg(0))))), nil
	})
	*t.GetMagic(namepool.MagicAdd) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		rhs := f.Arg(1)
		if rhs.Kind != kind.KindStr {
			return heap.NotImplemented, nil
		}
		return newStr(v, strOf(f.Arg(0))+strOf(rhs)), nil
	})
	*t.GetMagic(namepool.MagicMul) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		rhs := f.Arg(1)
		if rhs.Kind != kind.KindInt {
			return heap.NotImplemented, nil
		}
		if rhs.I <= 0 {
			return newStr(v, ""), nil
		}
		return newStr(v, strings.Repeat(strOf(f.Arg(0)), int(rhs.I))), nil
	})
	*t.GetMagic(namepool.MagicEq) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		rhs := f.Arg(1)
		if rhs.Kind != kind.KindStr {
			return heap.NotImplemented, nil
		}
		return heap.Bool(strOf(f.Arg(0)) == strOf(rhs)), nil
	})
	*t.GetMagic(namepool.MagicLt) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		rhs := f.Arg(1)
		if rhs.Kind != kind.KindStr {
			return heap.NotImplemented, nil
		}
		return heap.Bool(strOf(f.Arg(0)) < strOf(rhs)), nil
	})
	*t.GetMagic(namepool.MagicLe) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		rhs := f.Arg(1)
		if rhs.Kind != kind.KindStr {
			return heap.NotImplemented, nil
		}
		return heap.Bool(strOf(f.Arg(0)) <= strOf(rhs)), nil
	})
	*t.GetMagic(namepool.MagicGt) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		rhs := f.Arg(1)
		if rhs.Kind != kind.KindStr {
			return heap.NotImplemented, nil
		}
		return heap.Bool(strOf(f.Arg(0)) > strOf(rhs)), nil
	})
	*t.GetMagic(namepool.MagicGe) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		rhs := f.Arg(1)
		if rhs.Kind != kind.KindStr {
			return heap.NotImplemented, nil
		}
		return heap.Bool(strOf(f.Arg(0)) >= strOf(rhs)), nil
	})
	*t.GetMagic(namepool.MagicContains) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		needle := f.Arg(1)
		if needle.Kind != kind.KindStr {
			return heap.Cell{}, typeErrNotStr(v)
		}
		return heap.Bool(strings.Contains(strOf(f.Arg(0)), strOf(needle))), nil
	})
	*t.GetMagic(namepool.MagicGetItem) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return strGetItem(v, f.Arg(0), f.Arg(1))
	})
	*t.GetMagic(namepool.MagicIter) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return newStrIterator(v, strOf(f.Arg(0))), nil
	})
	*t.GetMagic(namepool.MagicNew) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		if f.Argc() < 2 {
			return newStr(v, ""), nil
		}
		s, err := Str(v, f.Arg(1))
		if err != nil {
			return heap.Cell{}, err
		}
		return newStr(v, s), nil
	})
}

func typeErrNotStr(v *vm.VM) error {
	_, err := raiseTypeError(v, "'in <string>' requires string as left operand")
	return err
}

func strGetItem(v *vm.VM, self, key heap.Cell) (heap.Cell, error) {
	runes := []rune(strOf(self))
	if key.Kind == kind.KindInt {
		i := int(key.I)
		if i < 0 {
			i += len(runes)
		}
		if i < 0 || i >= len(runes) {
			return raiseIndexError(v, "string index out of range")
		}
		return newStr(v, string(runes[i])), nil
	}
	if key.Kind == kind.KindSlice {
		start, stop, step := sliceIndices(key, len(runes))
		var b strings.Builder
		if step > 0 {
			for i := start; i < stop; i += step {
				b.WriteRune(runes[i])
			}
		} else {
			for i := start; i > stop; i += step {
				b.WriteRune(runes[i])
			}
		}
		return newStr(v, b.String()), nil
	}
	return raiseTypeError(v, "string indices must be integers or slices")
}

// str_iterator: KindStrIterator, Slots[0]=index cell, UserData=[]rune
// snapshot taken at iter() time (spec.md §4.7 "iteration snapshots
// length at iterator creation").
func newStrIterator(v *vm.VM, s string) heap.Cell {
	t := v.Types.ByKind(kind.KindStrIterator)
	obj, _ := v.Heap.Alloc(&t.TypeInfo, 1)
	obj.Slots[0] = heap.Int(0)
	obj.UserData = []rune(s)
	heap.Populate(obj)
	return heap.Cell{Kind: kind.KindStrIterator, Obj: obj}
}

func installStrIterator(v *vm.VM) {
	t := v.Types.ByKind(kind.KindStrIterator)
	*t.GetMagic(namepool.MagicIter) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return f.Arg(0), nil
	})
	*t.GetMagic(namepool.MagicNext) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		self := f.Arg(0)
		runes := self.Obj.UserData.([]rune)
		i := int(self.Obj.Slots[0].I)
		if i >= len(runes) {
			return raise(v, "StopIteration", "")
		}
		self.Obj.Slots[0] = heap.Int(int64(i + 1))
		return newStr(v, string(runes[i])), nil
	})
}

// fnv1a is the 64-bit FNV-1a hash used for str/bytes __hash__ — chosen
// over Go's maphash for a deterministic, dependency-free hash whose
// value is stable across runs (spec.md §8 "hash(x) == hash(x)").
func fnv1a(s string) uint64 {
	const offset = 14695981039346656037
	const prime = 1099511628211
	h := uint64(offset)
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime
	}
	return h
}
