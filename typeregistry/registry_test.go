package typeregistry

import (
	"testing"

	"github.com/embedpy/pycore/heap"
	"github.com/embedpy/pycore/namepool"
	"github.com/embedpy/pycore/pkg/kind"
)

func TestBootstrapCanonicalOrder(t *testing.T) {
	r := NewRegistry()
	want := []struct {
		id   kind.Kind
		name string
	}{
		{kind.KindObject, "object"},
		{kind.KindType, "type"},
		{kind.KindInt, "int"},
		{kind.KindFloat, "float"},
		{kind.KindBool, "bool"},
		{kind.KindStr, "str"},
		{kind.KindStrIterator, "str_iterator"},
		{kind.KindList, "list"},
		{kind.KindTuple, "tuple"},
	}
	for _, w := range want {
		ty := r.ByKind(w.id)
		if ty == nil || ty.Name != w.name {
			t.Fatalf("ByKind(%v) = %+v, want name %q", w.id, ty, w.name)
		}
	}
}

func TestBoolSubclassesInt(t *testing.T) {
	r := NewRegistry()
	boolType := r.ByKind(kind.KindBool)
	intType := r.ByKind(kind.KindInt)
	objectType := r.ByKind(kind.KindObject)

	if !IsSubclass(boolType, intType) {
		t.Fatalf("expected bool to be a subclass of int")
	}
	if !IsSubclass(boolType, objectType) {
		t.Fatalf("expected bool to be a subclass of object (transitively)")
	}
	if IsSubclass(intType, boolType) {
		t.Fatalf("int must not be a subclass of bool")
	}
}

func TestExceptionChain(t *testing.T) {
	r := NewRegistry()
	exc := r.ByKind(kind.KindException)
	baseExc := r.ByKind(kind.KindBaseException)
	if exc.Base != baseExc {
		t.Fatalf("Exception.Base = %v, want BaseException", exc.Base)
	}
}

func TestRegisterUserType(t *testing.T) {
	r := NewRegistry()
	object := r.Object()

	widget, err := r.Register(object, "mymodule", "Widget", nil, nil)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if widget.Kind < kind.FirstUserKind {
		t.Fatalf("user type got builtin-range id %v", widget.Kind)
	}

	got, ok := r.Lookup("mymodule", "Widget")
	if !ok || got != widget {
		t.Fatalf("Lookup did not find just-registered type")
	}

	if _, err := r.Register(object, "mymodule", "Widget", nil, nil); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}

	if _, err := r.Register(nil, "mymodule", "Orphan", nil, nil); err == nil {
		t.Fatalf("expected nil-base registration to fail")
	}
}

func TestAncestorsEnumeratesUpToObject(t *testing.T) {
	r := NewRegistry()
	boolType := r.ByKind(kind.KindBool)
	chain := r.Ancestors(boolType)
	if len(chain) != 3 {
		t.Fatalf("Ancestors(bool) = %d entries, want 3 (bool, int, object)", len(chain))
	}
	if chain[0].Name != "bool" || chain[1].Name != "int" || chain[2].Name != "object" {
		t.Fatalf("Ancestors(bool) order = %v, %v, %v", chain[0].Name, chain[1].Name, chain[2].Name)
	}
}

func TestFindMagicWalksBaseChain(t *testing.T) {
	r := NewRegistry()
	object := r.Object()
	child, err := r.Register(object, "", "Child", nil, nil)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, ok := child.FindMagic(namepool.MagicRepr); ok {
		t.Fatalf("expected no __repr__ installed anywhere yet")
	}

	sentinel := heap.Int(42)
	*object.GetMagic(namepool.MagicRepr) = sentinel

	got, ok := child.FindMagic(namepool.MagicRepr)
	if !ok || got.I != 42 {
		t.Fatalf("FindMagic did not inherit object's __repr__: got %v, ok=%v", got, ok)
	}

	// GetMagic never walks: child's own slot is still unset.
	if c := *child.GetMagic(namepool.MagicRepr); !c.IsNil() {
		t.Fatalf("GetMagic(child) should be nil (own slot), got %v", c)
	}
}

func TestFindNameWalksBaseChain(t *testing.T) {
	r := NewRegistry()
	object := r.Object()
	child, _ := r.Register(object, "", "Child", nil, nil)

	greeting := namepool.Name(1000)
	object.Attrs.Set(greeting, heap.Int(7))

	got, ok := child.FindName(greeting)
	if !ok || got.I != 7 {
		t.Fatalf("FindName did not inherit from object's attribute store")
	}

	if _, ok := child.Attrs.Get(greeting); ok {
		t.Fatalf("FindName must not have mutated child's own store")
	}
}
