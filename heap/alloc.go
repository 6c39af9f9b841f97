package heap

import (
	"errors"

	"github.com/embedpy/pycore/internal/diag"
	"github.com/embedpy/pycore/pkg/kind"
)

// ErrBadSize is returned by Alloc for a pathological (negative or
// absurdly large) slot count. Callers pass it up as a plain Go error
// (or discard it where the slot count is a small constant); no Python
// exception is raised for it.
var ErrBadSize = errors.New("heap: invalid allocation size")

// maxSlots bounds a single allocation request so a corrupt or hostile
// size computation cannot wedge the allocator into requesting an
// unreasonable Go slice; it is far above any real tuple/list/string the
// runtime itself would construct.
const maxSlots = 1 << 28

// sizeClassBoundaries mirrors hive/alloc/size_classes.go's small-object
// strategy (linear buckets up to a cutover, grown here in slot counts
// rather than bytes since Go objects are not byte-addressed the way an
// on-disk HBIN cell is).
var sizeClassBoundaries = buildSizeClasses()

func buildSizeClasses() []int {
	var b []int
	for n := 0; n <= 16; n++ {
		b = append(b, n)
	}
	for n := 24; n <= 256; n += 8 {
		b = append(b, n)
	}
	return b
}

// classOf returns the smallest size class index whose boundary is >=
// slotCount, or len(sizeClassBoundaries) (the "large" bucket) if none
// fits — the same linear-scan-then-overflow-bucket shape as
// sizeClassTable.getSizeClass.
func classOf(slotCount int) int {
	for i, b := range sizeClassBoundaries {
		if slotCount <= b {
			return i
		}
	}
	return len(sizeClassBoundaries)
}

// Heap is the managed heap of a single VM (spec.md §4.2). It owns every
// object the VM allocates, tracks bytes allocated since the last
// collection for the GC trigger, and recycles freed objects through
// segregated per-size-class free lists instead of relying solely on the
// host Go runtime's allocator/GC for reuse (hive/alloc's segregated
// free-list allocator, re-targeted from byte-addressed HBIN cells to an
// in-process object graph).
type Heap struct {
	allObjects *Object // intrusive singly linked list of every live object
	freeLists  [][]*Object

	bytesSinceGC int64
	threshold    int64
	noAutoGC     bool

	stats Stats
}

// Stats reports allocator/GC counters, surfaced by pkg/capi and
// cmd/pycore's `stats` subcommand.
type Stats struct {
	Allocations     int64
	Frees           int64
	DestructorRuns  int64
	Collections     int64
	BytesSinceGC    int64
	Threshold       int64
	LiveObjects     int64
	RecycledObjects int64
}

// NewHeap creates an empty heap with the default GC threshold
// (kind.GCMinThreshold).
func NewHeap() *Heap {
	return &Heap{
		freeLists: make([][]*Object, len(sizeClassBoundaries)+1),
		threshold: kind.GCMinThreshold,
	}
}

// SetAutoGC enables or disables automatic collection triggering
// (spec.md §4.2 "A debug mode may disable auto-GC for determinism").
func (h *Heap) SetAutoGC(enabled bool) { h.noAutoGC = !enabled }

// estimatedBytes approximates an object's cost for the GC trigger
// counter: one Cell (24 bytes on a 64-bit Go build, close enough to the
// spec's 16-byte cell for budgeting purposes) per slot, plus a flat
// header cost.
func estimatedBytes(slotCount int) int64 {
	const cellBytes = 24
	const headerBytes = 32
	return headerBytes + int64(slotCount)*cellBytes
}

// Alloc allocates a heap object of type t with slotCount positional
// slots, all initialized to Nil, and no user-data (spec.md §4.2
// "alloc(type, slot_count, user_data_size)"; user-data is attached
// separately via Object.UserData since Go has no fixed trailing byte
// region to size up front).
func (h *Heap) Alloc(t *TypeInfo, slotCount int) (*Object, error) {
	if slotCount < 0 || slotCount > maxSlots {
		return nil, ErrBadSize
	}
	return h.alloc(t, slotCount), nil
}

func (h *Heap) alloc(t *TypeInfo, slotCount int) *Object {
	class := classOf(slotCount)
	var obj *Object
	if n := len(h.freeLists[class]); n > 0 && class < len(sizeClassBoundaries) {
		obj = h.freeLists[class][n-1]
		h.freeLists[class] = h.freeLists[class][:n-1]
		h.stats.RecycledObjects++
		if cap(obj.Slots) >= slotCount {
			obj.Slots = obj.Slots[:slotCount]
			clear(obj.Slots)
		} else {
			obj.Slots = make([]Cell, slotCount)
		}
		obj.Type = t
		obj.marked = false
		obj.Attrs = nil
		obj.UserData = nil
	} else {
		obj = &Object{Type: t, Slots: make([]Cell, slotCount)}
	}

	obj.nextAll = h.allObjects
	h.allObjects = obj

	h.bytesSinceGC += estimatedBytes(slotCount)
	h.stats.Allocations++
	if diag.GCTraceEnabled() {
		diag.L.Debug("heap: alloc", "type", t.Name, "slots", slotCount, "bytesSinceGC", h.bytesSinceGC)
	}
	return obj
}

// Threshold returns the current bytes-since-collection trigger point.
func (h *Heap) Threshold() int64 { return h.threshold }

// ShouldCollect reports whether bytes allocated since the last
// collection exceed the current threshold and auto-GC is enabled
// (spec.md §4.2 "Trigger").
func (h *Heap) ShouldCollect() bool {
	return !h.noAutoGC && h.bytesSinceGC >= h.threshold
}

// Stats returns a snapshot of the heap's counters.
func (h *Heap) Stats() Stats {
	s := h.stats
	s.BytesSinceGC = h.bytesSinceGC
	s.Threshold = h.threshold
	for o := h.allObjects; o != nil; o = o.nextAll {
		s.LiveObjects++
	}
	return s
}

// EachObject visits every currently live object, in no particular
// order. Used by internal/integrity to check per-object invariants
// outside of a collection pass.
func (h *Heap) EachObject(yield func(*Object)) {
	for o := h.allObjects; o != nil; o = o.nextAll {
		yield(o)
	}
}
