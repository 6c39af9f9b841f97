package dispatch

import (
	"testing"

	"github.com/embedpy/pycore/heap"
	"github.com/embedpy/pycore/namepool"
)

func TestGetItemInvokesGetItemMagic(t *testing.T) {
	v := newTestVM(t)
	object := v.Types.Object()
	box, _ := v.Types.Register(object, "", "Box", nil, nil)
	*box.GetMagic(namepool.MagicGetItem) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return heap.Int(f.Arg(1).I * 10), nil
	})
	obj, _ := v.Heap.Alloc(&box.TypeInfo, 0)
	self := heap.Cell{Kind: box.Kind, Obj: obj}

	got, err := GetItem(v, self, heap.Int(4))
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got.I != 40 {
		t.Fatalf("GetItem = %v, want 40", got.I)
	}
}

func TestGetItemMissingRaisesTypeError(t *testing.T) {
	v := newTestVM(t)
	_, err := GetItem(v, heap.Int(5), heap.Int(0))
	if err != ErrExceptionRaised {
		t.Fatalf("err = %v, want ErrExceptionRaised", err)
	}
	typeErr, _ := v.Types.Lookup("", "TypeError")
	if !v.MatchExc(typeErr) {
		t.Fatalf("expected TypeError")
	}
}

func TestSetItemInvokesSetItemMagic(t *testing.T) {
	v := newTestVM(t)
	object := v.Types.Object()
	box, _ := v.Types.Register(object, "", "Box", nil, nil)
	var sawKey, sawValue heap.Cell
	*box.GetMagic(namepool.MagicSetItem) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		sawKey = f.Arg(1)
		sawValue = f.Arg(2)
		return heap.None, nil
	})
	obj, _ := v.Heap.Alloc(&box.TypeInfo, 0)
	self := heap.Cell{Kind: box.Kind, Obj: obj}

	if err := SetItem(v, self, heap.Int(1), heap.Int(9)); err != nil {
		t.Fatalf("SetItem: %v", err)
	}
	if sawKey.I != 1 || sawValue.I != 9 {
		t.Fatalf("SetItem forwarded key=%v value=%v, want 1, 9", sawKey.I, sawValue.I)
	}
}

func TestDelItemInvokesDelItemMagic(t *testing.T) {
	v := newTestVM(t)
	object := v.Types.Object()
	box, _ := v.Types.Register(object, "", "Box", nil, nil)
	var called bool
	*box.GetMagic(namepool.MagicDelItem) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		called = true
		return heap.None, nil
	})
	obj, _ := v.Heap.Alloc(&box.TypeInfo, 0)
	self := heap.Cell{Kind: box.Kind, Obj: obj}

	if err := DelItem(v, self, heap.Int(1)); err != nil {
		t.Fatalf("DelItem: %v", err)
	}
	if !called {
		t.Fatalf("__delitem__ was not invoked")
	}
}

func TestDelItemMissingRaisesTypeError(t *testing.T) {
	v := newTestVM(t)
	object := v.Types.Object()
	plain, _ := v.Types.Register(object, "", "Plain", nil, nil)
	obj, _ := v.Heap.Alloc(&plain.TypeInfo, 0)
	self := heap.Cell{Kind: plain.Kind, Obj: obj}

	err := DelItem(v, self, heap.Int(0))
	if err != ErrExceptionRaised {
		t.Fatalf("err = %v, want ErrExceptionRaised", err)
	}
	typeErr, _ := v.Types.Lookup("", "TypeError")
	if !v.MatchExc(typeErr) {
		t.Fatalf("expected TypeError")
	}
}

func TestContainsUsesContainsMagic(t *testing.T) {
	v := newTestVM(t)
	object := v.Types.Object()
	bag, _ := v.Types.Register(object, "", "Bag", nil, nil)
	*bag.GetMagic(namepool.MagicContains) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return heap.Bool(f.Arg(1).I == 7), nil
	})
	obj, _ := v.Heap.Alloc(&bag.TypeInfo, 0)
	self := heap.Cell{Kind: bag.Kind, Obj: obj}

	got, err := Contains(v, self, heap.Int(7))
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if !got {
		t.Fatalf("Contains = false, want true")
	}

	got, err = Contains(v, self, heap.Int(8))
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if got {
		t.Fatalf("Contains = true, want false")
	}
}
