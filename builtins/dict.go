package builtins

import (
	"strings"

	"github.com/embedpy/pycore/heap"
	"github.com/embedpy/pycore/namepool"
	"github.com/embedpy/pycore/pkg/kind"
	"github.com/embedpy/pycore/vm"
)

// dictEntry is one occupied slot in pyDict's open-addressed table.
// tombstone marks a deleted slot that still participates in probing
// until the next rehash (spec.md §4.7 "during rehash, user callbacks
// are not invoked — cells are moved by bitwise copy").
type dictEntry struct {
	key, value heap.Cell
	hash       int64
	used       bool
	tombstone  bool
}

// pyDict is dict's UserData payload: an open-addressed table plus an
// insertion-ordered key list, so iteration preserves insertion order
// the way spec.md §4.7 requires of list (and, by the same rule this
// core extends to dict, consistent with CPython's dict since 3.7).
type pyDict struct {
	table      []dictEntry
	order      []heap.Cell // insertion order, keys only; entries removed on delete
	count      int
	tombstones int
}

const dictMinCap = 8

func newDict(v *vm.VM) heap.Cell {
	t := v.Types.ByKind(kind.KindDict)
	obj, _ := v.Heap.Alloc(&t.TypeInfo, 0)
	obj.UserData = &pyDict{table: make([]dictEntry, dictMinCap)}
	heap.Populate(obj)
	return heap.Cell{Kind: kind.KindDict, Obj: obj}
}

func dictOf(c heap.Cell) *pyDict {
	if !c.IsPointer() {
		return nil
	}
	d, _ := c.Obj.UserData.(*pyDict)
	return d
}

// dictFind probes d's table for key, returning the slot index key
// belongs in (an occupied slot holding an equal key, or the first free
// slot a new entry should take) and whether an equal key was found.
func dictFind(v *vm.VM, d *pyDict, key heap.Cell, hash int64) (int, bool, error) {
	mask := len(d.table) - 1
	i := int(uint64(hash)) & mask
	firstFree := -1
	for probe := 0; probe < len(d.table); probe++ {
		e := &d.table[i]
		if !e.used {
			if e.tombstone {
				if firstFree < 0 {
					firstFree = i
				}
			} else {
				if firstFree >= 0 {
					return firstFree, false, nil
				}
				return i, false, nil
			}
		} else if e.hash == hash {
			eq, err := cellsEqual(v, e.key, key)
			if err != nil {
				return 0, false, err
			}
			if eq {
				return i, true, nil
			}
		}
		i = (i + 1) & mask
	}
	return firstFree, false, nil
}

func dictRehash(v *vm.VM, d *pyDict, newCap int) error {
	old := d.table
	d.table = make([]dictEntry, newCap)
	d.tombstones = 0
	for _, e := range old {
		if !e.used {
			continue
		}
		// Bitwise copy into the new table; no __hash__/__eq__ callback
		// runs here since e.hash was already computed.
		idx, _, err := dictFind(v, d, e.key, e.hash)
		if err != nil {
			return err
		}
		d.table[idx] = dictEntry{key: e.key, value: e.value, hash: e.hash, used: true}
	}
	return nil
}

func dictSet(v *vm.VM, self, key, value heap.Cell) error {
	d := dictOf(self)
	hash, err := elemHash(v, key)
	if err != nil {
		return err
	}
	if (d.count+d.tombstones)*2 >= len(d.table) {
		newCap := len(d.table)
		if d.count*2 >= newCap {
			newCap *= 2
		}
		if err := dictRehash(v, d, newCap); err != nil {
			return err
		}
	}
	idx, found, err := dictFind(v, d, key, hash)
	if err != nil {
		return err
	}
	if found {
		d.table[idx].value = value
		return nil
	}
	d.table[idx] = dictEntry{key: key, value: value, hash: hash, used: true}
	d.count++
	d.order = append(d.order, key)
	return nil
}

func dictGet(v *vm.VM, self, key heap.Cell) (heap.Cell, bool, error) {
	d := dictOf(self)
	hash, err := elemHash(v, key)
	if err != nil {
		return heap.Cell{}, false, err
	}
	idx, found, err := dictFind(v, d, key, hash)
	if err != nil {
		return heap.Cell{}, false, err
	}
	if !found {
		return heap.Cell{}, false, nil
	}
	return d.table[idx].value, true, nil
}

func dictDelete(v *vm.VM, self, key heap.Cell) (bool, error) {
	d := dictOf(self)
	hash, err := elemHash(v, key)
	if err != nil {
		return false, err
	}
	idx, found, err := dictFind(v, d, key, hash)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	d.table[idx] = dictEntry{used: false, tombstone: true}
	d.count--
	d.tombstones++
	for i, k := range d.order {
		if eq, _ := cellsEqual(v, k, key); eq {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	return true, nil
}

func installDict(v *vm.VM) {
	t := v.Types.ByKind(kind.KindDict)

	t.TraceUserData = func(obj *heap.Object, mark func(heap.Cell)) {
		d, _ := obj.UserData.(*pyDict)
		if d == nil {
			return
		}
		for _, e := range d.table {
			if e.used {
				mark(e.key)
				mark(e.value)
			}
		}
	}

	*t.GetMagic(namepool.MagicLen) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return heap.Int(int64(dictOf(f.Arg(0)).count)), nil
	})
	*t.GetMagic(namepool.MagicBool) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return heap.Bool(dictOf(f.Arg(0)).count != 0), nil
	})
	*t.GetMagic(namepool.MagicGetItem) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		value, ok, err := dictGet(v, f.Arg(0), f.Arg(1))
		if err != nil {
			return heap.Cell{}, err
		}
		if !ok {
			s, err := Repr(v, f.Arg(1))
			if err != nil {
				return heap.Cell{}, err
			}
			return raiseKeyError(v, "%s", s)
		}
		return value, nil
	})
	*t.GetMagic(namepool.MagicSetItem) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return heap.Cell{}, dictSet(v, f.Arg(0), f.Arg(1), f.Arg(2))
	})
	*t.GetMagic(namepool.MagicDelItem) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		ok, err := dictDelete(v, f.Arg(0), f.Arg(1))
		if err != nil {
			return heap.Cell{}, err
		}
		if !ok {
			s, err := Repr(v, f.Arg(1))
			if err != nil {
				return heap.Cell{}, err
			}
			return raiseKeyError(v, "%s", s)
		}
		return heap.Cell{}, nil
	})
	*t.GetMagic(namepool.MagicContains) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		_, ok, err := dictGet(v, f.Arg(0), f.Arg(1))
		if err != nil {
			return heap.Cell{}, err
		}
		return heap.Bool(ok), nil
	})
	*t.GetMagic(namepool.MagicIter) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return newDictIterator(v, f.Arg(0)), nil
	})
	*t.GetMagic(namepool.MagicEq) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		a, b := f.Arg(0), f.Arg(1)
		if b.Kind != kind.KindDict {
			return heap.NotImplemented, nil
		}
		da, db := dictOf(a), dictOf(b)
		if da.count != db.count {
			return heap.False, nil
		}
		for _, k := range da.order {
			av, _, _ := dictGet(v, a, k)
			bv, ok, err := dictGet(v, b, k)
			if err != nil {
				return heap.Cell{}, err
			}
			if !ok {
				return heap.False, nil
			}
			eq, err := cellsEqual(v, av, bv)
			if err != nil {
				return heap.Cell{}, err
			}
			if !eq {
				return heap.False, nil
			}
		}
		return heap.True, nil
	})
	*t.GetMagic(namepool.MagicRepr) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		s, err := dictRepr(v, f.Arg(0))
		if err != nil {
			return heap.Cell{}, err
		}
		return newStr(v, s), nil
	})
	*t.GetMagic(namepool.MagicStr) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		s, err := dictRepr(v, f.Arg(0))
		if err != nil {
			return heap.Cell{}, err
		}
		return newStr(v, s), nil
	})

	*t.GetMagic(namepool.MagicNew) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return newDict(v), nil
	})

	getName := internName(v, "get")
	t.Attrs.Set(getName, nativeCell(func(f heap.Frame) (heap.Cell, error) {
		value, ok, err := dictGet(v, f.Arg(0), f.Arg(1))
		if err != nil {
			return heap.Cell{}, err
		}
		if !ok {
			if f.Argc() > 2 {
				return f.Arg(2), nil
			}
			return heap.None, nil
		}
		return value, nil
	}))
}

func dictRepr(v *vm.VM, self heap.Cell) (string, error) {
	d := dictOf(self)
	parts := make([]string, 0, len(d.order))
	for _, k := range d.order {
		ks, err := Repr(v, k)
		if err != nil {
			return "", err
		}
		value, _, err := dictGet(v, self, k)
		if err != nil {
			return "", err
		}
		vs, err := Repr(v, value)
		if err != nil {
			return "", err
		}
		parts = append(parts, ks+": "+vs)
	}
	return "{" + strings.Join(parts, ", ") + "}", nil
}

// dict_iterator: KindDictIterator, Slots[0]=index into the source
// dict's insertion-order key list, Slots[1]=the dict cell itself.
// Yields keys, matching `for k in d` (spec.md §4.7's iteration
// protocol names no dict-specific variant).
func newDictIterator(v *vm.VM, d heap.Cell) heap.Cell {
	t := v.Types.ByKind(kind.KindDictIterator)
	obj, _ := v.Heap.Alloc(&t.TypeInfo, 2)
	obj.Slots[0] = heap.Int(0)
	obj.Slots[1] = d
	heap.Populate(obj)
	return heap.Cell{Kind: kind.KindDictIterator, Obj: obj}
}

func installDictIterator(v *vm.VM) {
	t := v.Types.ByKind(kind.KindDictIterator)
	*t.GetMagic(namepool.MagicIter) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return f.Arg(0), nil
	})
	*t.GetMagic(namepool.MagicNext) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		self := f.Arg(0)
		d := dictOf(self.Obj.Slots[1])
		i := self.Obj.Slots[0].I
		if i >= int64(len(d.order)) {
			return raise(v, "StopIteration", "")
		}
		self.Obj.Slots[0] = heap.Int(i + 1)
		return d.order[i], nil
	})
}
