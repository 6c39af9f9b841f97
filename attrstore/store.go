// Package attrstore implements the per-object attribute store: an
// open-addressed hash table from interned name to value cell, with
// tombstone deletion and load-factor-triggered rehashing (spec.md
// §4.4). Every heap.Object's Attrs field and every typeregistry.Type's
// general member table is one of these.
package attrstore

import (
	"github.com/embedpy/pycore/heap"
	"github.com/embedpy/pycore/namepool"
)

type slotState uint8

const (
	slotEmpty slotState = iota
	slotFilled
	slotTombstone
)

type entry struct {
	state slotState
	name  namepool.Name
	value heap.Cell
}

// Store is an open-addressed, linear-probing hash table keyed by
// namepool.Name. It implements heap.AttributeStore so the collector can
// trace it without importing this package.
type Store struct {
	entries    []entry
	count      int // live (slotFilled) entries
	tombstones int
	loadFactor float64
}

const initialCapacity = 8

// New creates an empty Store that rehashes once (live+tombstone)/cap
// exceeds loadFactor. Instance stores use kind.InstanceLoadFactor
// (~0.67); type stores use kind.TypeLoadFactor (~0.5) — spec.md §3.
func New(loadFactor float64) *Store {
	return &Store{
		entries:    make([]entry, initialCapacity),
		loadFactor: loadFactor,
	}
}

// hashName spreads a namepool.Name (already a dense small integer, not
// raw bytes — unlike hive/index's string-keyed FNV hashing, there is no
// byte string left to hash by the time a name reaches the attribute
// store) across the table via Fibonacci multiplicative hashing, the
// integer-keyed analogue of hive/index/numeric_index.go's fnv32Lower.
func hashName(n namepool.Name, capMask uint32) uint32 {
	const fib64 = 2654435769 // 2^32 / golden ratio, truncated to 32 bits
	return (uint32(n) * fib64) & capMask
}

// Len returns the number of live attributes.
func (s *Store) Len() int { return s.count }

// Occupancy returns the live-plus-tombstone count, the table capacity,
// and the configured load factor, for internal/integrity's load-factor
// invariant check: (live+tombstones)/capacity must never exceed
// loadFactor between inserts (spec.md §4.4, §8).
func (s *Store) Occupancy() (used, capacity int, loadFactor float64) {
	return s.count + s.tombstones, len(s.entries), s.loadFactor
}

// Get returns the value stored for name, if any (spec.md §4.4).
func (s *Store) Get(name namepool.Name) (heap.Cell, bool) {
	if len(s.entries) == 0 {
		return heap.Cell{}, false
	}
	mask := uint32(len(s.entries) - 1)
	i := hashName(name, mask)
	for probes := 0; probes < len(s.entries); probes++ {
		e := &s.entries[i]
		switch e.state {
		case slotEmpty:
			return heap.Cell{}, false
		case slotFilled:
			if e.name == name {
				return e.value, true
			}
		}
		i = (i + 1) & mask
	}
	return heap.Cell{}, false
}

// Set inserts or overwrites the value for name.
func (s *Store) Set(name namepool.Name, value heap.Cell) {
	if s.needsRehash() {
		s.rehash(s.growCapacity())
	}
	s.insert(name, value)
}

// needsRehash reports whether (live+tombstones)/capacity has reached
// the configured load factor (spec.md §4.4 and §8's boundary case:
// "Attribute store at load factor exactly equal to the threshold:
// subsequent insert triggers rehash before placement").
func (s *Store) needsRehash() bool {
	used := s.count + s.tombstones
	return float64(used+1) > s.loadFactor*float64(len(s.entries))
}

func (s *Store) growCapacity() int {
	// Rehashing also evicts tombstones; only double capacity when the
	// live set itself (not the tombstone-inflated count) is pressing
	// against the threshold.
	if float64(s.count+1) <= s.loadFactor*float64(len(s.entries)) {
		return len(s.entries)
	}
	return len(s.entries) * 2
}

func (s *Store) insert(name namepool.Name, value heap.Cell) {
	mask := uint32(len(s.entries) - 1)
	i := hashName(name, mask)
	firstTomb := -1
	for probes := 0; probes < len(s.entries); probes++ {
		e := &s.entries[i]
		switch e.state {
		case slotEmpty:
			if firstTomb >= 0 {
				i = uint32(firstTomb)
				e = &s.entries[i]
			}
			e.state = slotFilled
			e.name = name
			e.value = value
			s.count++
			if firstTomb >= 0 {
				s.tombstones--
			}
			return
		case slotTombstone:
			if firstTomb < 0 {
				firstTomb = int(i)
			}
		case slotFilled:
			if e.name == name {
				e.value = value
				return
			}
		}
		i = (i + 1) & mask
	}
	// Unreachable when needsRehash is honored before every insert.
	panic("attrstore: table full despite rehash")
}

// Delete removes name's entry, if present, replacing it with a
// tombstone so later probe chains through this slot stay intact
// (spec.md §4.4 "Deletion uses tombstones").
func (s *Store) Delete(name namepool.Name) bool {
	if len(s.entries) == 0 {
		return false
	}
	mask := uint32(len(s.entries) - 1)
	i := hashName(name, mask)
	for probes := 0; probes < len(s.entries); probes++ {
		e := &s.entries[i]
		switch e.state {
		case slotEmpty:
			return false
		case slotFilled:
			if e.name == name {
				e.state = slotTombstone
				e.value = heap.Cell{}
				s.count--
				s.tombstones++
				return true
			}
		}
		i = (i + 1) & mask
	}
	return false
}

// rehash rebuilds the table at newCap, dropping tombstones.
func (s *Store) rehash(newCap int) {
	old := s.entries
	s.entries = make([]entry, newCap)
	s.count = 0
	s.tombstones = 0
	for _, e := range old {
		if e.state == slotFilled {
			s.insert(e.name, e.value)
		}
	}
}

// ForEach visits every live (name, value) pair. Iteration order is
// unspecified but stable between mutations (spec.md §4.4), satisfying
// heap.AttributeStore for GC tracing.
func (s *Store) ForEach(visit func(name uint16, c heap.Cell)) {
	for _, e := range s.entries {
		if e.state == slotFilled {
			visit(uint16(e.name), e.value)
		}
	}
}

// ForEachName is the namepool.Name-typed sibling of ForEach, used by
// typeregistry/dispatch so callers don't re-wrap uint16 back into a Name.
func (s *Store) ForEachName(visit func(name namepool.Name, c heap.Cell)) {
	for _, e := range s.entries {
		if e.state == slotFilled {
			visit(e.name, e.value)
		}
	}
}

var _ heap.AttributeStore = (*Store)(nil)
