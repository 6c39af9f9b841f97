package attrstore

import (
	"testing"

	"github.com/embedpy/pycore/heap"
	"github.com/embedpy/pycore/namepool"
)

func TestSetGetDelete(t *testing.T) {
	s := New(0.67)
	n1, n2 := namepool.Name(1), namepool.Name(2)

	s.Set(n1, heap.Int(10))
	s.Set(n2, heap.Int(20))

	v, ok := s.Get(n1)
	if !ok || v.I != 10 {
		t.Fatalf("Get(n1) = %v, %v; want 10, true", v, ok)
	}

	if !s.Delete(n1) {
		t.Fatalf("Delete(n1) = false, want true")
	}
	if _, ok := s.Get(n1); ok {
		t.Fatalf("Get(n1) after delete should fail")
	}
	if _, ok := s.Get(n2); !ok {
		t.Fatalf("Get(n2) should still succeed after unrelated delete")
	}
	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}

	// re-insert after delete must succeed, exercising tombstone reuse
	s.Set(n1, heap.Int(99))
	v, ok = s.Get(n1)
	if !ok || v.I != 99 {
		t.Fatalf("re-Get(n1) = %v, %v; want 99, true", v, ok)
	}
}

func TestRehashPreservesAllPairs(t *testing.T) {
	s := New(0.5)
	const n = 500
	for i := 0; i < n; i++ {
		s.Set(namepool.Name(i+1), heap.Int(int64(i)))
	}
	if s.Len() != n {
		t.Fatalf("Len() = %d, want %d", s.Len(), n)
	}
	for i := 0; i < n; i++ {
		v, ok := s.Get(namepool.Name(i + 1))
		if !ok || v.I != int64(i) {
			t.Fatalf("Get(%d) = %v, %v; want %d, true", i+1, v, ok, i)
		}
	}
}

func TestRehashAtExactLoadFactorTriggersBeforePlacement(t *testing.T) {
	// capacity 8, loadFactor 0.5 => rehash must occur once count+1 > 4.
	s := New(0.5)
	for i := 0; i < 4; i++ {
		s.Set(namepool.Name(i+1), heap.Int(int64(i)))
	}
	capBefore := len(s.entries)
	s.Set(namepool.Name(5), heap.Int(5))
	if len(s.entries) <= capBefore {
		t.Fatalf("expected rehash to grow capacity once load factor threshold reached")
	}
	for i := 0; i < 5; i++ {
		if _, ok := s.Get(namepool.Name(i + 1)); !ok {
			t.Fatalf("entry %d lost across rehash", i+1)
		}
	}
}

func TestForEachVisitsAllLive(t *testing.T) {
	s := New(0.67)
	want := map[namepool.Name]int64{1: 10, 2: 20, 3: 30}
	for n, v := range want {
		s.Set(n, heap.Int(v))
	}
	s.Delete(namepool.Name(2))
	delete(want, 2)

	got := map[namepool.Name]int64{}
	s.ForEachName(func(n namepool.Name, c heap.Cell) {
		got[n] = c.I
	})
	if len(got) != len(want) {
		t.Fatalf("ForEachName visited %d entries, want %d", len(got), len(want))
	}
	for n, v := range want {
		if got[n] != v {
			t.Fatalf("ForEachName[%d] = %d, want %d", n, got[n], v)
		}
	}
}
