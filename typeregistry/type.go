package typeregistry

import (
	"github.com/embedpy/pycore/attrstore"
	"github.com/embedpy/pycore/heap"
	"github.com/embedpy/pycore/namepool"
	"github.com/embedpy/pycore/pkg/kind"
)

// magicSlotCount sizes every Type's Magic vector. It is one past the
// highest id namepool reserves for magic names, so Magic[m] addresses
// magic id m directly with 0 left unused (namepool ids are 1-based).
var magicSlotCount = len(namepool.MagicNames) + 1

// Type is a registered class: a heap.TypeInfo (what the collector and
// allocator need) plus the inheritance edge, the per-type magic-method
// slot vector, and a general attribute store for class-level members
// (plain class attributes, classmethod/staticmethod/property wrappers,
// plain functions installed as methods).
type Type struct {
	heap.TypeInfo

	Module string
	Base   *Type // nil only for object

	// Magic is indexed by namepool.Name (a magic id); a nil (Kind ==
	// KindNil) cell means "not installed on this type directly" — walk
	// Base to find an inherited one (spec.md §4.3 find_magic).
	Magic []heap.Cell

	// Attrs holds everything that is not a magic slot: methods,
	// classmethods, staticmethods, properties, plain class attributes.
	Attrs *attrstore.Store
}

// newType allocates a Type with an empty magic vector and a fresh,
// type-load-factor attribute store (spec.md §3: type stores use
// kind.TypeLoadFactor, instances use kind.InstanceLoadFactor).
func newType(id kind.Kind, module, name string, base *Type, destructor heap.Destructor, tracer heap.UserDataTracer) *Type {
	return &Type{
		TypeInfo: heap.TypeInfo{
			Kind:          id,
			Name:          name,
			Destructor:    destructor,
			TraceUserData: tracer,
		},
		Module: module,
		Base:   base,
		Magic:  make([]heap.Cell, magicSlotCount),
		Attrs:  attrstore.New(kind.TypeLoadFactor),
	}
}

// GetMagic returns a writable reference to T's own magic slot for name
// — never walking Base — so bindings can install (or overwrite) a
// magic method (spec.md §4.3 get_magic). The returned cell is heap.Nil
// until something is installed.
func (t *Type) GetMagic(name namepool.Name) *heap.Cell {
	return &t.Magic[name]
}

// FindMagic walks T, then Base, then Base.Base, … and returns the first
// installed (non-nil) magic slot for name (spec.md §4.3 find_magic).
// The bool reports whether any ancestor had it installed.
func (t *Type) FindMagic(name namepool.Name) (heap.Cell, bool) {
	for cur := t; cur != nil; cur = cur.Base {
		if c := cur.Magic[name]; !c.IsNil() {
			return c, true
		}
	}
	return heap.Nil, false
}

// FindName is find_magic's sibling over the general attribute store:
// walk T, then Base, … , returning the first store that has name set
// (spec.md §4.3 find_name).
func (t *Type) FindName(name namepool.Name) (heap.Cell, bool) {
	for cur := t; cur != nil; cur = cur.Base {
		if c, ok := cur.Attrs.Get(name); ok {
			return c, true
		}
	}
	return heap.Cell{}, false
}
