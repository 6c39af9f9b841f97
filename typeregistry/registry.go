package typeregistry

import (
	"fmt"

	"github.com/embedpy/pycore/heap"
	"github.com/embedpy/pycore/internal/fault"
	"github.com/embedpy/pycore/pkg/kind"
)

// qualName is the lookup key for Registry.Lookup: (module, name). A
// plain struct key into a Go map, the same "let the native map do the
// work" choice hive/index/string_index.go makes over a hashed index —
// type registration is rare (once per type, ever) so there is no
// build-throughput case for anything fancier.
type qualName struct {
	module string
	name   string
}

// Registry is the per-VM-group type table (spec.md §4.3). Built-in
// types are registered once, in canonical order, by NewRegistry; host
// applications and the builtins package register further types
// afterward via Register.
type Registry struct {
	byID     []*Type // index by kind.Kind; byID[0] is always nil (KindNil)
	byQual   map[qualName]*Type
	byInfo   map[*heap.TypeInfo]*Type // reverse lookup from a heap.Object's embedded TypeInfo
	nextUser kind.Kind

	object *Type // every type but object itself chains to this by default
}

// NewRegistry creates a Registry with the canonical built-in types
// already installed at the ids pkg/kind.Kind fixes for them, so
// "object=1, type, int, float, bool, str, str_iterator, list, tuple, …"
// (spec.md §4.3) holds from the moment a VM boots.
func NewRegistry() *Registry {
	r := &Registry{
		byID:     make([]*Type, kind.FirstUserKind),
		byQual:   make(map[qualName]*Type, int(kind.FirstUserKind)*2),
		byInfo:   make(map[*heap.TypeInfo]*Type, int(kind.FirstUserKind)*2),
		nextUser: kind.FirstUserKind,
	}
	r.bootstrap()
	return r
}

func (r *Registry) registerBuiltin(id kind.Kind, name string, base *Type) *Type {
	t := newType(id, "", name, base, nil, nil)
	r.byID[id] = t
	r.byQual[qualName{module: "", name: name}] = t
	r.byInfo[&t.TypeInfo] = t
	return t
}

// bootstrap installs every type pkg/kind.Kind enumerates, in order,
// wiring single inheritance to object except where Python itself
// specifies a different base (bool < int, Exception < BaseException).
func (r *Registry) bootstrap() {
	object := r.registerBuiltin(kind.KindObject, "object", nil)
	r.object = object

	r.registerBuiltin(kind.KindType, "type", object)
	intType := r.registerBuiltin(kind.KindInt, "int", object)
	r.registerBuiltin(kind.KindFloat, "float", object)
	r.registerBuiltin(kind.KindBool, "bool", intType)
	r.registerBuiltin(kind.KindStr, "str", object)
	r.registerBuiltin(kind.KindStrIterator, "str_iterator", object)
	r.registerBuiltin(kind.KindList, "list", object)
	r.registerBuiltin(kind.KindListIterator, "list_iterator", object)
	r.registerBuiltin(kind.KindTuple, "tuple", object)
	r.registerBuiltin(kind.KindDict, "dict", object)
	r.registerBuiltin(kind.KindDictIterator, "dict_iterator", object)
	r.registerBuiltin(kind.KindBytes, "bytes", object)
	r.registerBuiltin(kind.KindSlice, "slice", object)
	r.registerBuiltin(kind.KindRange, "range", object)
	r.registerBuiltin(kind.KindRangeIterator, "range_iterator", object)
	r.registerBuiltin(kind.KindNone, "NoneType", object)
	r.registerBuiltin(kind.KindNotImplemented, "NotImplementedType", object)
	r.registerBuiltin(kind.KindEllipsis, "ellipsis", object)
	r.registerBuiltin(kind.KindFunction, "function", object)
	r.registerBuiltin(kind.KindNativeFunc, "nativefunc", object)
	r.registerBuiltin(kind.KindBoundMethod, "bound_method", object)
	r.registerBuiltin(kind.KindSuper, "super", object)
	r.registerBuiltin(kind.KindProperty, "property", object)
	r.registerBuiltin(kind.KindClassMethod, "classmethod", object)
	r.registerBuiltin(kind.KindStaticMethod, "staticmethod", object)
	r.registerBuiltin(kind.KindStarWrapper, "star_wrapper", object)
	r.registerBuiltin(kind.KindModule, "module", object)
	baseExc := r.registerBuiltin(kind.KindBaseException, "BaseException", object)
	r.registerBuiltin(kind.KindException, "Exception", baseExc)
}

// Object returns the root of every inheritance chain.
func (r *Registry) Object() *Type { return r.object }

// EachType visits every registered type, built-in and host-registered
// alike, in id order. Used by internal/integrity's inheritance-cycle
// check and by cmd/pycore's `types` subcommand.
func (r *Registry) EachType(yield func(*Type)) {
	for _, t := range r.byID {
		if t != nil {
			yield(t)
		}
	}
}

// ByKind returns the Type registered at id, or nil if none has been
// registered there yet.
func (r *Registry) ByKind(id kind.Kind) *Type {
	if int(id) < 0 || int(id) >= len(r.byID) {
		return nil
	}
	return r.byID[id]
}

// Register installs a new type above kind.FirstUserKind, returning it
// or an error if the id space (int16) is exhausted. base may not be
// nil — only object itself has no base (spec.md §4.3 "register a new
// type (base, module, optional destructor) → new id").
func (r *Registry) Register(base *Type, module, name string, destructor heap.Destructor, tracer heap.UserDataTracer) (*Type, error) {
	if base == nil {
		return nil, fault.New(fault.KindConfig, "typeregistry: Register requires a non-nil base")
	}
	if _, exists := r.byQual[qualName{module: module, name: name}]; exists {
		return nil, fault.New(fault.KindConfig, fmt.Sprintf("typeregistry: type %q already registered in module %q", name, module))
	}
	if r.nextUser < 0 { // wrapped past the int16 id space
		return nil, fault.New(fault.KindConfig, "typeregistry: type id space exhausted")
	}
	id := r.nextUser
	r.nextUser++

	t := newType(id, module, name, base, destructor, tracer)
	r.byID = append(r.byID, t)
	r.byQual[qualName{module: module, name: name}] = t
	r.byInfo[&t.TypeInfo] = t
	return t, nil
}

// TypeOfObject maps a heap object back to its registered Type by the
// identity of its embedded heap.TypeInfo. heap.Object only carries a
// *heap.TypeInfo (so the heap package need not import typeregistry);
// this is the one place that pointer gets widened back to a full Type.
func (r *Registry) TypeOfObject(obj *heap.Object) *Type {
	if obj == nil {
		return nil
	}
	return r.byInfo[obj.Type]
}

// Lookup finds a previously registered type by (module, name). module
// is "" for built-ins.
func (r *Registry) Lookup(module, name string) (*Type, bool) {
	t, ok := r.byQual[qualName{module: module, name: name}]
	return t, ok
}

// Ancestors enumerates t, t.Base, t.Base.Base, … up to and including
// object (spec.md §4.3 "enumerate ancestors").
func (r *Registry) Ancestors(t *Type) []*Type {
	var chain []*Type
	for cur := t; cur != nil; cur = cur.Base {
		chain = append(chain, cur)
	}
	return chain
}

// IsSubclass reports whether b appears in d's single-inheritance chain,
// d included (spec.md §4.3 "issubclass(D, B) walks the single-
// inheritance chain from D upward; true iff B appears").
func IsSubclass(d, b *Type) bool {
	for cur := d; cur != nil; cur = cur.Base {
		if cur == b {
			return true
		}
	}
	return false
}

// IsInstance reports whether an object whose runtime type is objType is
// considered an instance of t (spec.md §4.3 "isinstance(obj, T) is
// issubclass(type_of(obj), T)").
func IsInstance(objType, t *Type) bool {
	return IsSubclass(objType, t)
}
