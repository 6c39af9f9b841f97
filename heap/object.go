package heap

import "github.com/embedpy/pycore/pkg/kind"

// AttributeStore is the minimal view the heap needs of an object's
// per-instance attribute store to run GC (trace every live cell it
// holds) and destruction. attrstore.Store implements this; heap itself
// never depends on the attrstore package, keeping the dependency
// one-directional (attrstore -> heap, not heap -> attrstore).
type AttributeStore interface {
	ForEach(func(name uint16, c Cell))
	Len() int
}

// Destructor runs once, at sweep time, on an object the collector
// determined is unreachable (spec.md §3 "optional destructor callback
// for user-data").
type Destructor func(obj *Object)

// UserDataTracer lets a type walk GC references hidden inside its
// user-data region (e.g. list's dynamic cell array, dict's hash table)
// by calling mark for every Cell it finds (spec.md §4.2).
type UserDataTracer func(obj *Object, mark func(Cell))

// TypeInfo is the slice of a registered type the heap needs to
// allocate, trace, and destroy its instances. typeregistry.Type embeds
// one of these; the heap package never imports typeregistry (same
// one-directional rule as AttributeStore above).
type TypeInfo struct {
	Kind          kind.Kind
	Name          string
	Destructor    Destructor
	TraceUserData UserDataTracer
}

// Object is the heap object header plus its positional slots (spec.md
// §3 "Heap object header"). UserData holds the type-specific payload:
// a Go string for str, a []byte for bytes, a *pyList for list, a
// *pyDict for dict, and so on — any cells held there are reached
// through TraceUserData so the collector need not know concrete
// built-in types.
type Object struct {
	Type     *TypeInfo
	marked   bool
	nextAll  *Object // intrusive link in Heap.allObjects
	Slots    []Cell
	Attrs    AttributeStore // nil until an attribute is first set
	UserData any
}

// NewUninitialized allocates an object with n slots set to Nil and no
// user-data, matching the "obtain uninitialized, populate, then cross a
// GC boundary" discipline spec.md §4.2 requires of native callbacks
// that build tuples/lists/strings in place (mirrors src/public/values.c's
// py_newtuple/py_newlist pattern — see original_source).
func (h *Heap) NewUninitialized(t *TypeInfo, slotCount int) *Object {
	obj := h.alloc(t, slotCount)
	for i := range obj.Slots {
		obj.Slots[i] = Nil
	}
	return obj
}

// Populate is a no-op marker documenting the end of the "obtain then
// populate" window: call it once every slot/user-data field has been
// written, before triggering anything that might run GC (e.g. a further
// allocation). It exists so call sites read the same way the spec's
// native-callback discipline does, even though this Go heap has no
// implicit GC safepoints to guard against.
func Populate(obj *Object) {}
