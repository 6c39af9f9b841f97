// Package integrity implements the debug-mode invariant checker spec.md
// §8 calls for: a set of post-hoc checks over a running VM's heap, type
// registry, and name pool that a host can run after any batch of
// mutation to catch a broken invariant close to its cause rather than
// at the eventual crash site.
//
// Grounded on the teacher repo's internal/repair.Validator: a struct
// that accumulates ValidationError values from a fixed battery of
// structure-specific checks rather than failing fast on the first one,
// so a single run surfaces everything wrong at once. Checker plays the
// same role here, over Go heap objects instead of REGF/HBIN/NK/VK
// on-disk structures.
package integrity

import (
	"fmt"
	"strings"

	"github.com/embedpy/pycore/attrstore"
	"github.com/embedpy/pycore/heap"
	"github.com/embedpy/pycore/namepool"
	"github.com/embedpy/pycore/typeregistry"
)

// Violation is one failed invariant. Component names the subsystem the
// check belongs to (heap, typeregistry, namepool, attrstore) so a host
// can filter or count by area; Message is a human-readable description.
type Violation struct {
	Component string
	Message   string
}

func (v Violation) String() string {
	return fmt.Sprintf("[%s] %s", v.Component, v.Message)
}

// Report is the result of a Checker run: zero or more Violations, in
// the order the checks that produced them ran.
type Report struct {
	Violations []Violation
}

// OK reports whether the run found nothing wrong.
func (r Report) OK() bool { return len(r.Violations) == 0 }

func (r Report) String() string {
	if r.OK() {
		return "integrity: no violations"
	}
	lines := make([]string, 0, len(r.Violations)+1)
	lines = append(lines, fmt.Sprintf("integrity: %d violation(s)", len(r.Violations)))
	for _, v := range r.Violations {
		lines = append(lines, "  "+v.String())
	}
	return strings.Join(lines, "\n")
}

// Checker accumulates Violations across one run of the invariant
// battery. The zero value is ready to use.
type Checker struct {
	violations []Violation
}

func (c *Checker) fail(component, format string, args ...any) {
	c.violations = append(c.violations, Violation{Component: component, Message: fmt.Sprintf(format, args...)})
}

// Report returns everything accumulated so far.
func (c *Checker) Report() Report {
	return Report{Violations: append([]Violation(nil), c.violations...)}
}

// CheckAll runs the full battery (heap, type registry, attribute
// stores, name pool) and returns the combined Report. This is what
// vm.VM.CheckInvariants calls (and through it pkg/capi's
// Context.CheckInvariants and `pycore exec`).
func CheckAll(h *heap.Heap, types *typeregistry.Registry, names *namepool.Pool) Report {
	var c Checker
	c.CheckHeap(h, types)
	c.CheckTypeRegistry(types)
	c.CheckAttrStores(h, types)
	c.CheckNamePool(names)
	return c.Report()
}

// CheckHeap walks every live object on h and checks the invariants
// spec.md §4.2/§4.3 assume hold between a collection and the next:
// every object's embedded TypeInfo resolves back to a registered Type
// (cell/object type agreement, spec.md §8), and every slot holding a
// pointer-kind cell points at an object still reachable from h itself
// (no dangling reference past a sweep).
func (c *Checker) CheckHeap(h *heap.Heap, types *typeregistry.Registry) {
	live := make(map[*heap.Object]bool)
	h.EachObject(func(obj *heap.Object) { live[obj] = true })

	h.EachObject(func(obj *heap.Object) {
		if obj.Type == nil {
			c.fail("heap", "object has nil TypeInfo")
			return
		}
		if t := types.TypeOfObject(obj); t == nil {
			c.fail("heap", "object of kind %d has no registered Type (cell/object type disagreement)", obj.Type.Kind)
		}
		for i, s := range obj.Slots {
			if s.IsPointer() && !live[s.Obj] {
				c.fail("heap", "slot %d of a %s object points at an object not in the live set", i, obj.Type.Name)
			}
		}
	})
}

// CheckTypeRegistry verifies every registered type's single-inheritance
// chain terminates at object within a bounded number of steps (spec.md
// §4.3 "issubclass(D, B) walks the single-inheritance chain from D
// upward") — a cycle here would turn Ancestors/IsSubclass into an
// infinite loop instead of the false/true answer the spec requires.
func (c *Checker) CheckTypeRegistry(types *typeregistry.Registry) {
	object := types.Object()
	if object == nil {
		c.fail("typeregistry", "registry has no object root")
		return
	}
	// A well-formed registry's longest chain is bounded by how many
	// types have ever been registered; anything walking further than
	// that without reaching object has looped.
	var total int
	types.EachType(func(*typeregistry.Type) { total++ })

	types.EachType(func(t *typeregistry.Type) {
		steps := 0
		for cur := t; cur != nil; cur = cur.Base {
			if cur == object {
				return
			}
			steps++
			if steps > total {
				c.fail("typeregistry", "inheritance chain from %q does not reach object within %d steps (cycle)", t.Name, total)
				return
			}
		}
		c.fail("typeregistry", "inheritance chain from %q terminates without reaching object", t.Name)
	})
}

// checkStore enforces the load-factor invariant on a single store:
// (live+tombstones)/capacity must never have been left above
// loadFactor, since Set rehashes before, not after, crossing it.
func (c *Checker) checkStore(label string, s *attrstore.Store) {
	used, capacity, loadFactor := s.Occupancy()
	if capacity == 0 {
		return
	}
	if float64(used) > loadFactor*float64(capacity) {
		c.fail("attrstore", "%s: occupancy %d/%d exceeds load factor %.2f", label, used, capacity, loadFactor)
	}
}

// CheckAttrStores walks every type's class-level store and every live
// object's instance store on h, applying checkStore to each (spec.md §8
// "attribute-store load-factor invariants").
func (c *Checker) CheckAttrStores(h *heap.Heap, types *typeregistry.Registry) {
	types.EachType(func(t *typeregistry.Type) {
		c.checkStore("type "+t.Name, t.Attrs)
	})
	h.EachObject(func(obj *heap.Object) {
		if s, ok := obj.Attrs.(*attrstore.Store); ok {
			name := "object"
			if obj.Type != nil {
				name = obj.Type.Name
			}
			c.checkStore("instance of "+name, s)
		}
	})
}

// CheckNamePool verifies the pool's forward (bytes -> id) and reverse
// (id -> bytes) mappings agree for every currently interned name
// (spec.md §8 "name-pool bijectivity"): Lookup(Intern(b)) == b for
// every name the pool has ever handed out.
func (c *Checker) CheckNamePool(p *namepool.Pool) {
	n := p.Len()
	for id := 1; id <= n; id++ {
		b, ok := p.Lookup(namepool.Name(id))
		if !ok {
			c.fail("namepool", "id %d in [1, %d] has no backing bytes", id, n)
			continue
		}
		got, err := p.Intern(b)
		if err != nil {
			c.fail("namepool", "re-interning id %d's bytes failed: %v", id, err)
			continue
		}
		if got != namepool.Name(id) {
			c.fail("namepool", "id %d's bytes re-intern to a different id %d (not bijective)", id, got)
		}
	}
}
