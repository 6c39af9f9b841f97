package builtins

import (
	"math"
	"strconv"
	"strings"

	"github.com/embedpy/pycore/dispatch"
	"github.com/embedpy/pycore/heap"
	"github.com/embedpy/pycore/namepool"
	"github.com/embedpy/pycore/pkg/kind"
	"github.com/embedpy/pycore/typeregistry"
	"github.com/embedpy/pycore/vm"
)

// asFloat widens an int, bool, or float cell to a float64. bool reaches
// here through int's magics via the base-chain walk (bool's Base is
// int, spec.md §4.3 find_magic), never through a bool-specific magic.
func asFloat(c heap.Cell) (float64, bool) {
	switch c.Kind {
	case kind.KindInt, kind.KindBool:
		return float64(c.I), true
	case kind.KindFloat:
		return c.F, true
	default:
		return 0, false
	}
}

func asInt(c heap.Cell) (int64, bool) {
	switch c.Kind {
	case kind.KindInt, kind.KindBool:
		return c.I, true
	default:
		return 0, false
	}
}

func isNumeric(c heap.Cell) bool {
	return c.Kind == kind.KindInt || c.Kind == kind.KindBool || c.Kind == kind.KindFloat
}

// numericBinOp installs op on intType such that: if either operand is a
// float, both are widened to float64 and onFloat runs; otherwise both
// are taken as (possibly bool-carried) int64 and onInt runs. Overflow
// in onInt wraps silently per Go's two's-complement int64 — a
// documented deviation from CPython's arbitrary-precision int (spec.md
// Open Question (a)).
func numericBinOp(t *typeregistry.Type, name namepool.Name, onInt func(a, b int64) heap.Cell, onFloat func(a, b float64) heap.Cell) {
	*t.GetMagic(name) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		lhs, rhs := f.Arg(0), f.Arg(1)
		if !isNumeric(rhs) {
			return heap.NotImplemented, nil
		}
		if lhs.Kind == kind.KindFloat || rhs.Kind == kind.KindFloat {
			a, _ := asFloat(lhs)
			b, _ := asFloat(rhs)
			return onFloat(a, b), nil
		}
		a, _ := asInt(lhs)
		b, _ := asInt(rhs)
		return onInt(a, b), nil
	})
}

func installInt(v *vm.VM) {
	t := v.Types.ByKind(kind.KindInt)

	numericBinOp(t, namepool.MagicAdd,
		func(a, b int64) heap.Cell { return heap.Int(a + b) },
		func(a, b float64) heap.Cell { return heap.Float(a + b) })
	numericBinOp(t, namepool.MagicRAdd,
		func(a, b int64) heap.Cell { return heap.Int(a + b) },
		func(a, b float64) heap.Cell { return heap.Float(a + b) })
	numericBinOp(t, namepool.MagicSub,
		func(a, b int64) heap.Cell { return heap.Int(a - b) },
		func(a, b float64) heap.Cell { return heap.Float(a - b) })
	numericBinOp(t, namepool.MagicRSub,
		func(a, b int64) heap.Cell { return heap.Int(b - a) },
		func(a, b float64) heap.Cell { return heap.Float(b - a) })
	numericBinOp(t, namepool.MagicMul,
		func(a, b int64) heap.Cell { return heap.Int(a * b) },
		func(a, b float64) heap.Cell { return heap.Float(a * b) })
	numericBinOp(t, namepool.MagicRMul,
		func(a, b int64) heap.Cell { return heap.Int(a * b) },
		func(a, b float64) heap.Cell { return heap.Float(a * b) })

	*t.GetMagic(namepool.MagicTrueDiv) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return intTrueDiv(v, f.Arg(0), f.Arg(1))
	})
	*t.GetMagic(namepool.MagicRTrueDiv) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return intTrueDiv(v, f.Arg(1), f.Arg(0))
	})
	*t.GetMagic(namepool.MagicFloorDiv) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return intFloorDiv(v, f.Arg(0), f.Arg(1))
	})
	*t.GetMagic(namepool.MagicRFloorDiv) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return intFloorDiv(v, f.Arg(1), f.Arg(0))
	})
	*t.GetMagic(namepool.MagicMod) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return intMod(v, f.Arg(0), f.Arg(1))
	})
	*t.GetMagic(namepool.MagicRMod) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return intMod(v, f.Arg(1), f.Arg(0))
	})
	*t.GetMagic(namepool.MagicPow) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return intPow(v, f.Arg(0), f.Arg(1))
	})
	*t.GetMagic(namepool.MagicRPow) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return intPow(v, f.Arg(1), f.Arg(0))
	})

	numericCompare(t, namepool.MagicEq, func(a, b float64) bool { return a == b })
	numericCompare(t, namepool.MagicNe, func(a, b float64) bool { return a != b })
	numericCompare(t, namepool.MagicLt, func(a, b float64) bool { return a < b })
	numericCompare(t, namepool.MagicLe, func(a, b float64) bool { return a <= b })
	numericCompare(t, namepool.MagicGt, func(a, b float64) bool { return a > b })
	numericCompare(t, namepool.MagicGe, func(a, b float64) bool { return a >= b })

	*t.GetMagic(namepool.MagicNeg) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		n, _ := asInt(f.Arg(0))
		return heap.Int(-n), nil
	})
	*t.GetMagic(namepool.MagicPos) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		n, _ := asInt(f.Arg(0))
		return heap.Int(n), nil
	})
	*t.GetMagic(namepool.MagicAbs) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		n, _ := asInt(f.Arg(0))
		if n < 0 {
			n = -n
		}
		return heap.Int(n), nil
	})
	*t.GetMagic(namepool.MagicInvert) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		n, _ := asInt(f.Arg(0))
		return heap.Int(^n), nil
	})

	bitwiseBinOp(t, namepool.MagicAnd, func(a, b int64) int64 { return a & b })
	bitwiseBinOp(t, namepool.MagicRAnd, func(a, b int64) int64 { return a & b })
	bitwiseBinOp(t, namepool.MagicOr, func(a, b int64) int64 { return a | b })
	bitwiseBinOp(t, namepool.MagicROr, func(a, b int64) int64 { return a | b })
	bitwiseBinOp(t, namepool.MagicXor, func(a, b int64) int64 { return a ^ b })
	bitwiseBinOp(t, namepool.MagicRXor, func(a, b int64) int64 { return a ^ b })

	*t.GetMagic(namepool.MagicLShift) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return intShift(v, f.Arg(0), f.Arg(1), true)
	})
	*t.GetMagic(namepool.MagicRLShift) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return intShift(v, f.Arg(1), f.Arg(0), true)
	})
	*t.GetMagic(namepool.MagicRShift) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return intShift(v, f.Arg(0), f.Arg(1), false)
	})
	*t.GetMagic(namepool.MagicRRShift) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return intShift(v, f.Arg(1), f.Arg(0), false)
	})

	*t.GetMagic(namepool.MagicHash) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		n, _ := asInt(f.Arg(0))
		return heap.Int(n), nil
	})
	*t.GetMagic(namepool.MagicBool) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		n, _ := asInt(f.Arg(0))
		return heap.Bool(n != 0), nil
	})
	*t.GetMagic(namepool.MagicInt) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return f.Arg(0), nil
	})
	*t.GetMagic(namepool.MagicIndex) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		n, _ := asInt(f.Arg(0))
		return heap.Int(n), nil
	})
	*t.GetMagic(namepool.MagicFloat) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		n, _ := asInt(f.Arg(0))
		return heap.Float(float64(n)), nil
	})
	*t.GetMagic(namepool.MagicRepr) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		n, _ := asInt(f.Arg(0))
		return newStr(v, fallbackRepr(heap.Int(n))), nil
	})
	*t.GetMagic(namepool.MagicStr) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		n, _ := asInt(f.Arg(0))
		return newStr(v, fallbackRepr(heap.Int(n))), nil
	})
	*t.GetMagic(namepool.MagicNew) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		if f.Argc() < 2 {
			return heap.Int(0), nil
		}
		return intFromValue(v, f.Arg(1))
	})
}

func intFromValue(v *vm.VM, c heap.Cell) (heap.Cell, error) {
	switch c.Kind {
	case kind.KindInt, kind.KindBool:
		n, _ := asInt(c)
		return heap.Int(n), nil
	case kind.KindFloat:
		return heap.Int(int64(c.F)), nil
	case kind.KindStr:
		n, err := strconv.ParseInt(strings.TrimSpace(strOf(c)), 10, 64)
		if err != nil {
			return raiseValueError(v, "invalid literal for int(): %s", quoteStr(strOf(c)))
		}
		return heap.Int(n), nil
	default:
		return raiseTypeError(v, "int() argument must be a string or a number, not %q", typeName(v, c))
	}
}

func numericCompare(t *typeregistry.Type, name namepool.Name, cmp func(a, b float64) bool) {
	*t.GetMagic(name) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		lhs, rhs := f.Arg(0), f.Arg(1)
		if !isNumeric(rhs) {
			return heap.NotImplemented, nil
		}
		a, _ := asFloat(lhs)
		b, _ := asFloat(rhs)
		return heap.Bool(cmp(a, b)), nil
	})
}

func bitwiseBinOp(t *typeregistry.Type, name namepool.Name, op func(a, b int64) int64) {
	*t.GetMagic(name) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		lhs, rhs := f.Arg(0), f.Arg(1)
		a, ok1 := asInt(lhs)
		b, ok2 := asInt(rhs)
		if !ok1 || !ok2 {
			return heap.NotImplemented, nil
		}
		return heap.Int(op(a, b)), nil
	})
}

func intTrueDiv(v *vm.VM, lhs, rhs heap.Cell) (heap.Cell, error) {
	if !isNumeric(rhs) {
		return heap.NotImplemented, nil
	}
	b, _ := asFloat(rhs)
	if b == 0 {
		return raiseZeroDivisionError(v, "division by zero")
	}
	a, _ := asFloat(lhs)
	return heap.Float(a / b), nil
}

func intFloorDiv(v *vm.VM, lhs, rhs heap.Cell) (heap.Cell, error) {
	if !isNumeric(rhs) {
		return heap.NotImplemented, nil
	}
	if lhs.Kind == kind.KindFloat || rhs.Kind == kind.KindFloat {
		a, _ := asFloat(lhs)
		b, _ := asFloat(rhs)
		if b == 0 {
			return raiseZeroDivisionError(v, "float floor division by zero")
		}
		return heap.Float(math.Floor(a / b)), nil
	}
	a, _ := asInt(lhs)
	b, _ := asInt(rhs)
	if b == 0 {
		return raiseZeroDivisionError(v, "integer division or modulo by zero")
	}
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return heap.Int(q), nil
}

func intMod(v *vm.VM, lhs, rhs heap.Cell) (heap.Cell, error) {
	if !isNumeric(rhs) {
		return heap.NotImplemented, nil
	}
	if lhs.Kind == kind.KindFloat || rhs.Kind == kind.KindFloat {
		a, _ := asFloat(lhs)
		b, _ := asFloat(rhs)
		if b == 0 {
			return raiseZeroDivisionError(v, "float modulo")
		}
		return heap.Float(math.Mod(math.Mod(a, b)+b, b)), nil
	}
	a, _ := asInt(lhs)
	b, _ := asInt(rhs)
	if b == 0 {
		return raiseZeroDivisionError(v, "integer division or modulo by zero")
	}
	r := a % b
	if r != 0 && (r < 0) != (b < 0) {
		r += b
	}
	return heap.Int(r), nil
}

func intPow(v *vm.VM, lhs, rhs heap.Cell) (heap.Cell, error) {
	if !isNumeric(rhs) {
		return heap.NotImplemented, nil
	}
	if lhs.Kind == kind.KindFloat || rhs.Kind == kind.KindFloat {
		a, _ := asFloat(lhs)
		b, _ := asFloat(rhs)
		return heap.Float(math.Pow(a, b)), nil
	}
	a, _ := asInt(lhs)
	b, _ := asInt(rhs)
	if b < 0 {
		return heap.Float(math.Pow(float64(a), float64(b))), nil
	}
	result := int64(1)
	for i := int64(0); i < b; i++ {
		result *= a
	}
	return heap.Int(result), nil
}

func intShift(v *vm.VM, lhs, rhs heap.Cell, left bool) (heap.Cell, error) {
	a, ok1 := asInt(lhs)
	b, ok2 := asInt(rhs)
	if !ok1 || !ok2 {
		return heap.NotImplemented, nil
	}
	if b < 0 {
		return raiseValueError(v, "negative shift count")
	}
	if left {
		return heap.Int(a << uint(b)), nil
	}
	return heap.Int(a >> uint(b)), nil
}

func installFloat(v *vm.VM) {
	t := v.Types.ByKind(kind.KindFloat)

	numericBinOp(t, namepool.MagicAdd, nil,
		func(a, b float64) heap.Cell { return heap.Float(a + b) })
	numericBinOp(t, namepool.MagicRAdd, nil,
		func(a, b float64) heap.Cell { return heap.Float(a + b) })
	numericBinOp(t, namepool.MagicSub, nil,
		func(a, b float64) heap.Cell { return heap.Float(a - b) })
	numericBinOp(t, namepool.MagicRSub, nil,
		func(a, b float64) heap.Cell { return heap.Float(b - a) })
	numericBinOp(t, namepool.MagicMul, nil,
		func(a, b float64) heap.Cell { return heap.Float(a * b) })
	numericBinOp(t, namepool.MagicRMul, nil,
		func(a, b float64) heap.Cell { return heap.Float(a * b) })

	*t.GetMagic(namepool.MagicTrueDiv) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return intTrueDiv(v, f.Arg(0), f.Arg(1))
	})
	*t.GetMagic(namepool.MagicRTrueDiv) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return intTrueDiv(v, f.Arg(1), f.Arg(0))
	})
	*t.GetMagic(namepool.MagicFloorDiv) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return intFloorDiv(v, f.Arg(0), f.Arg(1))
	})
	*t.GetMagic(namepool.MagicMod) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return intMod(v, f.Arg(0), f.Arg(1))
	})
	*t.GetMagic(namepool.MagicPow) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return intPow(v, f.Arg(0), f.Arg(1))
	})

	numericCompare(t, namepool.MagicEq, func(a, b float64) bool { return a == b })
	numericCompare(t, namepool.MagicNe, func(a, b float64) bool { return a != b })
	numericCompare(t, namepool.MagicLt, func(a, b float64) bool { return a < b })
	numericCompare(t, namepool.MagicLe, func(a, b float64) bool { return a <= b })
	numericCompare(t, namepool.MagicGt, func(a, b float64) bool { return a > b })
	numericCompare(t, namepool.MagicGe, func(a, b float64) bool { return a >= b })

	*t.GetMagic(namepool.MagicNeg) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		n, _ := asFloat(f.Arg(0))
		return heap.Float(-n), nil
	})
	*t.GetMagic(namepool.MagicPos) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		n, _ := asFloat(f.Arg(0))
		return heap.Float(n), nil
	})
	*t.GetMagic(namepool.MagicAbs) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		n, _ := asFloat(f.Arg(0))
		return heap.Float(math.Abs(n)), nil
	})
	*t.GetMagic(namepool.MagicHash) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		n, _ := asFloat(f.Arg(0))
		return heap.Int(int64(math.Float64bits(n))), nil
	})
	*t.GetMagic(namepool.MagicBool) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		n, _ := asFloat(f.Arg(0))
		return heap.Bool(n != 0), nil
	})
	*t.GetMagic(namepool.MagicFloat) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return f.Arg(0), nil
	})
	*t.GetMagic(namepool.MagicInt) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		n, _ := asFloat(f.Arg(0))
		return heap.Int(int64(n)), nil
	})
	*t.GetMagic(namepool.MagicRepr) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		n, _ := asFloat(f.Arg(0))
		return newStr(v, formatFloat(n)), nil
	})
	*t.GetMagic(namepool.MagicStr) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		n, _ := asFloat(f.Arg(0))
		return newStr(v, formatFloat(n)), nil
	})
	*t.GetMagic(namepool.MagicNew) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		if f.Argc() < 2 {
			return heap.Float(0), nil
		}
		arg := f.Arg(1)
		switch arg.Kind {
		case kind.KindInt, kind.KindBool, kind.KindFloat:
			n, _ := asFloat(arg)
			return heap.Float(n), nil
		case kind.KindStr:
			n, err := strconv.ParseFloat(strings.TrimSpace(strOf(arg)), 64)
			if err != nil {
				return raiseValueError(v, "could not convert string to float: %s", quoteStr(strOf(arg)))
			}
			return heap.Float(n), nil
		default:
			return raiseTypeError(v, "float() argument must be a string or a number, not %q", typeName(v, arg))
		}
	})
}

// installBool overrides repr/str ("True"/"False") and __new__ (bool(x)
// is the truthiness of x, False with no argument) on top of the
// magics bool inherits from int via the base-chain walk. Bitwise ops
// (__and__/__or__/__xor__) are left inherited, so they return an
// int-typed result even when both operands are bool — a documented
// simplification versus CPython, which special-cases bool there to
// keep the result bool-typed (spec.md §4.7).
func installBool(v *vm.VM) {
	t := v.Types.ByKind(kind.KindBool)

	*t.GetMagic(namepool.MagicRepr) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		if f.Arg(0).I != 0 {
			return newStr(v, "True"), nil
		}
		return newStr(v, "False"), nil
	})
	*t.GetMagic(namepool.MagicStr) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		if f.Arg(0).I != 0 {
			return newStr(v, "True"), nil
		}
		return newStr(v, "False"), nil
	})
	*t.GetMagic(namepool.MagicNew) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		if f.Argc() < 2 {
			return heap.False, nil
		}
		truthy, err := dispatch.Truthy(v, f.Arg(1))
		if err != nil {
			return heap.Cell{}, err
		}
		return heap.Bool(truthy), nil
	})
}
