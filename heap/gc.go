package heap

import "github.com/embedpy/pycore/internal/diag"

// RootSource is implemented by a VM: it yields every cell the collector
// must treat as definitely live (spec.md §4.2 "Roots"). Collect calls
// EachRoot exactly once per collection.
type RootSource interface {
	EachRoot(yield func(Cell))
}

// Collect runs one full tri-color-equivalent mark-sweep pass over this
// heap (spec.md §4.2 "Algorithm"). Because collection is stop-the-world
// and single-threaded (spec.md §5), two colors (marked/unmarked) are
// sufficient — there is no concurrent mutator to need a third,
// "grey/in-progress" color for.
//
// Marking is iterative with an explicit work stack rather than
// recursive function calls, so a long list/attribute chain cannot blow
// the Go call stack (the same tradeoff hive/walker/core.go documents
// for its HBIN traversal: "Iterative traversal eliminates recursion
// overhead").
func (h *Heap) Collect(roots RootSource) {
	h.stats.Collections++
	work := make([]*Object, 0, 64)

	mark := func(obj *Object) {
		if obj == nil || obj.marked {
			return
		}
		obj.marked = true
		work = append(work, obj)
	}

	roots.EachRoot(func(c Cell) {
		if c.IsPointer() {
			mark(c.Obj)
		}
	})

	for len(work) > 0 {
		obj := work[len(work)-1]
		work = work[:len(work)-1]

		for _, s := range obj.Slots {
			if s.IsPointer() {
				mark(s.Obj)
			}
		}
		if obj.Attrs != nil {
			obj.Attrs.ForEach(func(_ uint16, c Cell) {
				if c.IsPointer() {
					mark(c.Obj)
				}
			})
		}
		if obj.Type != nil && obj.Type.TraceUserData != nil {
			obj.Type.TraceUserData(obj, func(c Cell) {
				if c.IsPointer() {
					mark(c.Obj)
				}
			})
		}
	}

	h.sweep()
}

// sweep walks every allocated object; unmarked ones are destroyed
// (destructor invoked, then recycled into the matching size-class free
// list), marked ones survive with their mark bit cleared for the next
// cycle.
func (h *Heap) sweep() {
	var survivors *Object
	var freed, survived int64

	for obj := h.allObjects; obj != nil; {
		next := obj.nextAll
		if obj.marked {
			obj.marked = false
			obj.nextAll = survivors
			survivors = obj
			survived++
		} else {
			if obj.Type != nil && obj.Type.Destructor != nil {
				obj.Type.Destructor(obj)
				h.stats.DestructorRuns++
			}
			class := classOf(cap(obj.Slots))
			if class < len(sizeClassBoundaries) {
				h.freeLists[class] = append(h.freeLists[class], obj)
			}
			h.stats.Frees++
			freed++
		}
		obj = next
	}

	h.allObjects = survivors
	h.bytesSinceGC = 0
	h.adaptThreshold(survived)

	if diag.GCTraceEnabled() {
		diag.L.Debug("heap: collect", "freed", freed, "survived", survived, "threshold", h.threshold)
	}
}

// adaptThreshold grows the trigger point when the surviving set is
// large, so a VM with a genuinely big live heap does not thrash on
// every few allocations (spec.md §4.2 "adapting upward if the surviving
// set is large").
func (h *Heap) adaptThreshold(survivors int64) {
	survivorBytes := survivors * 64 // rough per-object cost, header + a few slots
	if survivorBytes*2 > h.threshold {
		h.threshold = survivorBytes * 2
	}
}
