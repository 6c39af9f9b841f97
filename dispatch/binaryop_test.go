package dispatch

import (
	"testing"

	"github.com/embedpy/pycore/heap"
	"github.com/embedpy/pycore/namepool"
)

func TestBinaryOpPlainAddition(t *testing.T) {
	v := newTestVM(t)
	object := v.Types.Object()
	vec, _ := v.Types.Register(object, "", "Vec", nil, nil)
	*vec.GetMagic(namepool.MagicAdd) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return heap.Int(f.Arg(0).I + f.Arg(1).I), nil
	})

	obj, _ := v.Heap.Alloc(&vec.TypeInfo, 0)
	lhs := heap.Cell{Kind: vec.Kind, Obj: obj, I: 3}
	rhs := heap.Cell{Kind: vec.Kind, Obj: obj, I: 4}

	result, err := BinaryOp(v, lhs, rhs, namepool.MagicAdd)
	if err != nil {
		t.Fatalf("BinaryOp: %v", err)
	}
	if result.I != 7 {
		t.Fatalf("result = %v, want 7", result.I)
	}
}

func TestBinaryOpReflectedSubclassTriesReflectedFirst(t *testing.T) {
	v := newTestVM(t)
	object := v.Types.Object()
	base, _ := v.Types.Register(object, "", "Base", nil, nil)
	derived, _ := v.Types.Register(base, "", "Derived", nil, nil)

	var order []string
	*base.GetMagic(namepool.MagicAdd) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		order = append(order, "add")
		return heap.Int(1), nil
	})
	*derived.GetMagic(namepool.MagicRAdd) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		order = append(order, "radd")
		return heap.Int(2), nil
	})

	baseObj, _ := v.Heap.Alloc(&base.TypeInfo, 0)
	derivedObj, _ := v.Heap.Alloc(&derived.TypeInfo, 0)
	lhs := heap.Cell{Kind: base.Kind, Obj: baseObj}
	rhs := heap.Cell{Kind: derived.Kind, Obj: derivedObj}

	result, err := BinaryOp(v, lhs, rhs, namepool.MagicAdd)
	if err != nil {
		t.Fatalf("BinaryOp: %v", err)
	}
	if result.I != 2 {
		t.Fatalf("result = %v, want 2 (reflected __radd__ on the subclass rhs wins)", result.I)
	}
	if len(order) != 1 || order[0] != "radd" {
		t.Fatalf("call order = %v, want [radd] only", order)
	}
}

func TestBinaryOpNotImplementedFallsThroughToTypeError(t *testing.T) {
	v := newTestVM(t)
	object := v.Types.Object()
	a, _ := v.Types.Register(object, "", "A", nil, nil)
	b, _ := v.Types.Register(object, "", "B", nil, nil)

	*a.GetMagic(namepool.MagicAdd) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return heap.NotImplemented, nil
	})

	aObj, _ := v.Heap.Alloc(&a.TypeInfo, 0)
	bObj, _ := v.Heap.Alloc(&b.TypeInfo, 0)
	lhs := heap.Cell{Kind: a.Kind, Obj: aObj}
	rhs := heap.Cell{Kind: b.Kind, Obj: bObj}

	_, err := BinaryOp(v, lhs, rhs, namepool.MagicAdd)
	if err != ErrExceptionRaised {
		t.Fatalf("err = %v, want ErrExceptionRaised", err)
	}
	typeErr, _ := v.Types.Lookup("", "TypeError")
	if !v.MatchExc(typeErr) {
		t.Fatalf("expected TypeError when both operands return NotImplemented/are absent")
	}
}

func TestUnaryOpInvokesMagic(t *testing.T) {
	v := newTestVM(t)
	object := v.Types.Object()
	num, _ := v.Types.Register(object, "", "Num", nil, nil)
	*num.GetMagic(namepool.MagicNeg) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return heap.Int(-f.Arg(0).I), nil
	})

	obj, _ := v.Heap.Alloc(&num.TypeInfo, 0)
	operand := heap.Cell{Kind: num.Kind, Obj: obj, I: 5}

	result, err := UnaryOp(v, operand, namepool.MagicNeg)
	if err != nil {
		t.Fatalf("UnaryOp: %v", err)
	}
	if result.I != -5 {
		t.Fatalf("result = %v, want -5", result.I)
	}
}

func TestTruthyImmediateFastPath(t *testing.T) {
	v := newTestVM(t)
	truthy, err := Truthy(v, heap.Int(0))
	if err != nil || truthy {
		t.Fatalf("Truthy(0) = %v, %v, want false, nil", truthy, err)
	}
	truthy, err = Truthy(v, heap.None)
	if err != nil || truthy {
		t.Fatalf("Truthy(None) = %v, %v, want false, nil", truthy, err)
	}
}

func TestTruthyUsesBoolMagic(t *testing.T) {
	v := newTestVM(t)
	object := v.Types.Object()
	box, _ := v.Types.Register(object, "", "Box", nil, nil)
	*box.GetMagic(namepool.MagicBool) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return heap.False, nil
	})
	obj, _ := v.Heap.Alloc(&box.TypeInfo, 0)
	cell := heap.Cell{Kind: box.Kind, Obj: obj}

	truthy, err := Truthy(v, cell)
	if err != nil {
		t.Fatalf("Truthy: %v", err)
	}
	if truthy {
		t.Fatalf("Truthy = true, want false (per __bool__)")
	}
}

func TestTruthyFallsBackToLen(t *testing.T) {
	v := newTestVM(t)
	object := v.Types.Object()
	bag, _ := v.Types.Register(object, "", "Bag", nil, nil)
	*bag.GetMagic(namepool.MagicLen) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return heap.Int(0), nil
	})
	obj, _ := v.Heap.Alloc(&bag.TypeInfo, 0)
	cell := heap.Cell{Kind: bag.Kind, Obj: obj}

	truthy, err := Truthy(v, cell)
	if err != nil {
		t.Fatalf("Truthy: %v", err)
	}
	if truthy {
		t.Fatalf("Truthy = true, want false (len()==0)")
	}
}

func TestTruthyDefaultsTrueWithoutProtocolMethods(t *testing.T) {
	v := newTestVM(t)
	object := v.Types.Object()
	obj, _ := v.Heap.Alloc(&object.TypeInfo, 0)
	cell := heap.Cell{Kind: object.Kind, Obj: obj}

	truthy, err := Truthy(v, cell)
	if err != nil {
		t.Fatalf("Truthy: %v", err)
	}
	if !truthy {
		t.Fatalf("Truthy = false, want true (no __bool__/__len__)")
	}
}
