package heap

import "testing"

func strType() *TypeInfo {
	return &TypeInfo{Name: "str"}
}

type fakeRoots struct {
	cells []Cell
}

func (f fakeRoots) EachRoot(yield func(Cell)) {
	for _, c := range f.cells {
		yield(c)
	}
}

func TestAllocAndCollectReclaimsUnrooted(t *testing.T) {
	h := NewHeap()
	destroyed := 0
	ty := &TypeInfo{Name: "thing", Destructor: func(*Object) { destroyed++ }}

	var rooted *Object
	for i := 0; i < 1000; i++ {
		obj, err := h.Alloc(ty, 0)
		if err != nil {
			t.Fatalf("alloc: %v", err)
		}
		if i == 500 {
			rooted = obj
		}
	}

	roots := fakeRoots{cells: []Cell{{Kind: rooted.Type.Kind, Obj: rooted}}}
	h.Collect(roots)

	if destroyed != 999 {
		t.Fatalf("destroyed = %d, want 999", destroyed)
	}
	stats := h.Stats()
	if stats.LiveObjects != 1 {
		t.Fatalf("LiveObjects = %d, want 1", stats.LiveObjects)
	}
	if stats.Frees != 999 {
		t.Fatalf("Frees = %d, want 999", stats.Frees)
	}
}

func TestCollectHandlesCycles(t *testing.T) {
	h := NewHeap()
	destroyed := 0
	ty := &TypeInfo{
		Name:       "node",
		Destructor: func(*Object) { destroyed++ },
	}
	a, _ := h.Alloc(ty, 1)
	b, _ := h.Alloc(ty, 1)
	a.Slots[0] = Cell{Obj: b}
	b.Slots[0] = Cell{Obj: a} // cycle, no external root

	h.Collect(fakeRoots{})

	if destroyed != 2 {
		t.Fatalf("destroyed = %d, want 2 (cycle must be collected)", destroyed)
	}
}

func TestAllocRejectsBadSize(t *testing.T) {
	h := NewHeap()
	if _, err := h.Alloc(strType(), -1); err != ErrBadSize {
		t.Fatalf("expected ErrBadSize for negative slot count, got %v", err)
	}
	if _, err := h.Alloc(strType(), maxSlots+1); err != ErrBadSize {
		t.Fatalf("expected ErrBadSize for oversized slot count, got %v", err)
	}
}

func TestShouldCollectRespectsAutoGCToggle(t *testing.T) {
	h := NewHeap()
	h.bytesSinceGC = h.threshold + 1
	if !h.ShouldCollect() {
		t.Fatalf("expected ShouldCollect true once threshold exceeded")
	}
	h.SetAutoGC(false)
	if h.ShouldCollect() {
		t.Fatalf("expected ShouldCollect false once auto-GC disabled")
	}
}

func TestFreeListRecyclesObjects(t *testing.T) {
	h := NewHeap()
	ty := &TypeInfo{Name: "recyclable"}
	obj, _ := h.Alloc(ty, 2)
	h.Collect(fakeRoots{})
	if h.Stats().Frees != 1 {
		t.Fatalf("expected the unrooted object to be freed")
	}
	obj2, _ := h.Alloc(ty, 2)
	if h.Stats().RecycledObjects != 1 {
		t.Fatalf("expected allocation to come from the free list")
	}
	if obj2 == nil {
		t.Fatalf("expected a valid recycled object")
	}
	_ = obj
}
