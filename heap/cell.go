// Package heap implements the managed heap and its garbage collector
// (spec.md §4.2), and defines Cell, the uniform value carrier every
// other subsystem (type registry, attribute store, VM, dispatch) passes
// around (spec.md §3 "Value cell").
package heap

import (
	"github.com/embedpy/pycore/namepool"
	"github.com/embedpy/pycore/pkg/kind"
)

// Cell is the universal value carrier (spec.md §3). Go has no portable
// 16-byte tagged union, so Cell is a small struct instead: Kind selects
// which payload field is meaningful, matching the source's "type tag +
// payload" contract without the raw byte layout (see Design Notes §9).
type Cell struct {
	Kind kind.Kind

	I      int64          // KindInt, KindBool (0/1)
	F      float64        // KindFloat
	Name   namepool.Name  // the interned-name payload used on the call stack's kw_name slots (spec.md §6)
	Native NativeFunc     // KindNativeFunc
	Obj    *Object        // any pointer-kind cell
}

// Nil is the distinguished non-value. It must never be handed to user
// code (spec.md §3 invariant).
var Nil = Cell{Kind: kind.KindNil}

// None, True, False, and NotImplemented/Ellipsis are built once and
// copied by value everywhere they are needed; they carry no heap
// pointer (spec.md §3: "immediate-kind cells ... never carry a heap
// pointer").
var (
	None           = Cell{Kind: kind.KindNone}
	NotImplemented = Cell{Kind: kind.KindNotImplemented}
	Ellipsis       = Cell{Kind: kind.KindEllipsis}
	True           = Cell{Kind: kind.KindBool, I: 1}
	False          = Cell{Kind: kind.KindBool, I: 0}
)

// Bool returns True or False.
func Bool(b bool) Cell {
	if b {
		return True
	}
	return False
}

// Int wraps an int64 as an immediate int cell.
func Int(v int64) Cell { return Cell{Kind: kind.KindInt, I: v} }

// Float wraps a float64 as an immediate float cell.
func Float(v float64) Cell { return Cell{Kind: kind.KindFloat, F: v} }

// NameCell wraps an interned name id as a kw_name stack-convention cell
// (spec.md §6 "Names are pushed as name-id cells").
func NameCell(n namepool.Name) Cell { return Cell{Kind: kind.KindName, Name: n} }

// IsNil reports whether c is the distinguished non-value.
func (c Cell) IsNil() bool { return c.Kind == kind.KindNil }

// IsPointer reports whether c carries a heap object reference.
func (c Cell) IsPointer() bool { return c.Obj != nil }

// Truthy implements Python's bool() coercion for the cell kinds that
// dispatch never needs a __bool__ lookup for (dispatch.Truthy handles
// the full protocol, including __bool__/__len__; this is the immediate
// fast path it falls back to).
func (c Cell) Truthy() bool {
	switch c.Kind {
	case kind.KindNone:
		return false
	case kind.KindBool, kind.KindInt:
		return c.I != 0
	case kind.KindFloat:
		return c.F != 0
	default:
		return true
	}
}
