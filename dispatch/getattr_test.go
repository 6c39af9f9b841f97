package dispatch

import (
	"testing"

	"github.com/embedpy/pycore/heap"
	"github.com/embedpy/pycore/namepool"
	"github.com/embedpy/pycore/pkg/kind"
)

func internOrFatal(t *testing.T, v interface{ Intern([]byte) (namepool.Name, error) }, s string) namepool.Name {
	t.Helper()
	n, err := v.Intern([]byte(s))
	if err != nil {
		t.Fatalf("Intern(%q): %v", s, err)
	}
	return n
}

func TestGetAttrInstanceStoreWins(t *testing.T) {
	v := newTestVM(t)
	object := v.Types.Object()
	widget, _ := v.Types.Register(object, "", "Widget", nil, nil)
	obj, _ := v.Heap.Alloc(&widget.TypeInfo, 0)
	self := heap.Cell{Kind: widget.Kind, Obj: obj}

	name := internOrFatal(t, v.Names, "x")
	instanceAttrs(obj).Set(name, heap.Int(7))

	got, err := GetAttr(v, self, name)
	if err != nil {
		t.Fatalf("GetAttr: %v", err)
	}
	if got.I != 7 {
		t.Fatalf("GetAttr = %v, want 7", got.I)
	}
}

func TestGetAttrMethodIsBound(t *testing.T) {
	v := newTestVM(t)
	object := v.Types.Object()
	widget, _ := v.Types.Register(object, "", "Widget", nil, nil)
	obj, _ := v.Heap.Alloc(&widget.TypeInfo, 0)
	self := heap.Cell{Kind: widget.Kind, Obj: obj}

	greet := internOrFatal(t, v.Names, "greet")
	widget.Attrs.Set(greet, nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return heap.Int(1), nil
	}))

	got, err := GetAttr(v, self, greet)
	if err != nil {
		t.Fatalf("GetAttr: %v", err)
	}
	if got.Kind != kind.KindBoundMethod {
		t.Fatalf("GetAttr(method) = kind %v, want bound_method", got.Kind)
	}
}

func TestGetAttrOnTypeReturnsUnbound(t *testing.T) {
	v := newTestVM(t)
	object := v.Types.Object()
	widget, _ := v.Types.Register(object, "", "Widget", nil, nil)

	greet := internOrFatal(t, v.Names, "greet")
	fn := nativeCell(func(f heap.Frame) (heap.Cell, error) { return heap.None, nil })
	widget.Attrs.Set(greet, fn)

	typeCell := v.TypeCell(widget)
	got, err := GetAttr(v, typeCell, greet)
	if err != nil {
		t.Fatalf("GetAttr: %v", err)
	}
	if got.Kind == kind.KindBoundMethod {
		t.Fatalf("GetAttr on a type must not bind the method")
	}
}

func TestGetAttrMissingRaisesAttributeError(t *testing.T) {
	v := newTestVM(t)
	object := v.Types.Object()
	obj, _ := v.Heap.Alloc(&object.TypeInfo, 0)
	self := heap.Cell{Kind: object.Kind, Obj: obj}

	missing := internOrFatal(t, v.Names, "nope")
	_, err := GetAttr(v, self, missing)
	if err != ErrExceptionRaised {
		t.Fatalf("err = %v, want ErrExceptionRaised", err)
	}
	attrErr, _ := v.Types.Lookup("", "AttributeError")
	if !v.MatchExc(attrErr) {
		t.Fatalf("expected AttributeError raised")
	}
}

func TestGetAttrFallsBackToGetAttrMagic(t *testing.T) {
	v := newTestVM(t)
	object := v.Types.Object()
	widget, _ := v.Types.Register(object, "", "Widget", nil, nil)
	obj, _ := v.Heap.Alloc(&widget.TypeInfo, 0)
	self := heap.Cell{Kind: widget.Kind, Obj: obj}

	var sawName namepool.Name
	*widget.GetMagic(namepool.MagicGetAttr) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		sawName = f.Arg(1).Name
		return heap.Int(123), nil
	})

	missing := internOrFatal(t, v.Names, "dynamic")
	got, err := GetAttr(v, self, missing)
	if err != nil {
		t.Fatalf("GetAttr: %v", err)
	}
	if got.I != 123 {
		t.Fatalf("GetAttr = %v, want 123", got.I)
	}
	if sawName != missing {
		t.Fatalf("__getattr__ saw name %v, want %v", sawName, missing)
	}
}

func TestSetAttrAndDelAttr(t *testing.T) {
	v := newTestVM(t)
	object := v.Types.Object()
	widget, _ := v.Types.Register(object, "", "Widget", nil, nil)
	obj, _ := v.Heap.Alloc(&widget.TypeInfo, 0)
	self := heap.Cell{Kind: widget.Kind, Obj: obj}

	name := internOrFatal(t, v.Names, "y")
	if err := SetAttr(v, self, name, heap.Int(5)); err != nil {
		t.Fatalf("SetAttr: %v", err)
	}
	got, err := GetAttr(v, self, name)
	if err != nil || got.I != 5 {
		t.Fatalf("GetAttr after SetAttr = %v, %v", got, err)
	}

	if err := DelAttr(v, self, name); err != nil {
		t.Fatalf("DelAttr: %v", err)
	}
	if _, err := GetAttr(v, self, name); err != ErrExceptionRaised {
		t.Fatalf("expected attribute gone after DelAttr")
	}
}

func TestGetAttrDataDescriptorWinsOverInstanceStore(t *testing.T) {
	v := newTestVM(t)
	object := v.Types.Object()
	widget, _ := v.Types.Register(object, "", "Widget", nil, nil)
	obj, _ := v.Heap.Alloc(&widget.TypeInfo, 0)
	self := heap.Cell{Kind: widget.Kind, Obj: obj}

	propType := v.Types.ByKind(kind.KindProperty)
	propObj, _ := v.Heap.Alloc(&propType.TypeInfo, 2)
	propObj.Slots[0] = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return heap.Int(999), nil
	})
	propObj.Slots[1] = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return heap.None, nil
	})
	prop := heap.Cell{Kind: kind.KindProperty, Obj: propObj}

	name := internOrFatal(t, v.Names, "z")
	widget.Attrs.Set(name, prop)
	instanceAttrs(obj).Set(name, heap.Int(1)) // would win if descriptor check were skipped

	got, err := GetAttr(v, self, name)
	if err != nil {
		t.Fatalf("GetAttr: %v", err)
	}
	if got.I != 999 {
		t.Fatalf("GetAttr = %v, want 999 (descriptor getter)", got.I)
	}
}
