package dispatch

import (
	"github.com/embedpy/pycore/heap"
	"github.com/embedpy/pycore/namepool"
	"github.com/embedpy/pycore/pkg/kind"
	"github.com/embedpy/pycore/typeregistry"
	"github.com/embedpy/pycore/vm"
)

// BinaryOp implements spec.md §4.6's binaryop(lhs, rhs, op, rop):
//   - if type_of(rhs) is a strict subtype of type_of(lhs), the reflected
//     method is tried first;
//   - otherwise op is tried on lhs first, then rop on rhs if op was
//     absent or returned NotImplemented;
//   - both absent or NotImplemented raises TypeError.
func BinaryOp(v *vm.VM, lhs, rhs heap.Cell, op namepool.Name) (heap.Cell, error) {
	rop, hasReflected := namepool.ReflectedOf(op)

	lt := typeOf(v, lhs)
	rt := typeOf(v, rhs)
	if lt == nil || rt == nil {
		return raiseTypeError(v, "unsupported operand type")
	}

	reflectedFirst := hasReflected && rt != lt && typeregistry.IsSubclass(rt, lt)

	tryOp := func(t *typeregistry.Type, magicName namepool.Name, a, b heap.Cell) (heap.Cell, bool, error) {
		magic, ok := t.FindMagic(magicName)
		if !ok {
			return heap.Cell{}, false, nil
		}
		result, err := Call(v, magic, []heap.Cell{a, b}, nil)
		if err != nil {
			return heap.Cell{}, false, err
		}
		if result.Kind == kind.KindNotImplemented {
			return heap.Cell{}, false, nil
		}
		return result, true, nil
	}

	if reflectedFirst {
		if result, ok, err := tryOp(rt, rop, rhs, lhs); err != nil {
			return heap.Cell{}, err
		} else if ok {
			return result, nil
		}
		if result, ok, err := tryOp(lt, op, lhs, rhs); err != nil {
			return heap.Cell{}, err
		} else if ok {
			return result, nil
		}
	} else {
		if result, ok, err := tryOp(lt, op, lhs, rhs); err != nil {
			return heap.Cell{}, err
		} else if ok {
			return result, nil
		}
		if hasReflected {
			if result, ok, err := tryOp(rt, rop, rhs, lhs); err != nil {
				return heap.Cell{}, err
			} else if ok {
				return result, nil
			}
		}
	}

	return raiseTypeError(v, "unsupported operand type(s) for %s: %q and %q", v.Names.LookupString(op), lt.Name, rt.Name)
}

// UnaryOp implements the single-operand magic methods (__neg__, __pos__,
// __abs__, __invert__, __bool__, __int__, __float__, __index__, …).
func UnaryOp(v *vm.VM, operand heap.Cell, op namepool.Name) (heap.Cell, error) {
	t := typeOf(v, operand)
	if t == nil {
		return raiseTypeError(v, "unsupported operand type")
	}
	magic, ok := t.FindMagic(op)
	if !ok {
		return raiseTypeError(v, "bad operand type for unary op: %q", t.Name)
	}
	return Call(v, magic, []heap.Cell{operand}, nil)
}

// Truthy implements the full bool() coercion protocol: the immediate
// fast path (heap.Cell.Truthy), then __bool__, then __len__ != 0,
// defaulting to true (spec.md §4.7 "Lists preserve insertion order" —
// and, by the general Python rule this spec inherits, any object
// without __bool__/__len__ is truthy).
func Truthy(v *vm.VM, c heap.Cell) (bool, error) {
	if !c.IsPointer() {
		return c.Truthy(), nil
	}
	t := typeOf(v, c)
	if t == nil {
		return true, nil
	}
	if magic, ok := t.FindMagic(namepool.MagicBool); ok {
		result, err := Call(v, magic, []heap.Cell{c}, nil)
		if err != nil {
			return false, err
		}
		return result.Truthy(), nil
	}
	if magic, ok := t.FindMagic(namepool.MagicLen); ok {
		result, err := Call(v, magic, []heap.Cell{c}, nil)
		if err != nil {
			return false, err
		}
		return result.I != 0, nil
	}
	return true, nil
}
