// Package kind defines the value-cell type tag and the hard numeric limits
// of the runtime (stack size, GC threshold, name-pool width).
package kind

import "fmt"

// Kind is the 16-bit type tag carried by every value cell (spec.md §3).
// Zero is the distinguished non-value, never observable from user code.
type Kind int16

const (
	KindNil Kind = iota // the non-value; never escapes to user code

	KindObject // base type, id=1 in the type registry's canonical order
	KindType
	KindInt
	KindFloat
	KindBool
	KindStr
	KindStrIterator
	KindList
	KindTuple
	KindListIterator
	KindDict
	KindDictIterator
	KindBytes
	KindSlice
	KindRange
	KindRangeIterator
	KindNone
	KindNotImplemented
	KindEllipsis
	KindFunction
	KindNativeFunc
	KindBoundMethod
	KindSuper
	KindProperty
	KindClassMethod
	KindStaticMethod
	KindStarWrapper
	KindModule
	KindBaseException
	KindException

	// KindName is not a Python-visible type: it tags the name-id cells
	// pushed onto the value stack's kw_name slots in a call (spec.md §6
	// "Names are pushed as name-id cells"). It never appears in the type
	// registry and is never handed to user code as an object.
	KindName

	// firstUserKind is the first id a host application's own registered
	// type receives; everything below is reserved for the canonical
	// built-in order spec.md §4.3 requires to be test-observable.
	firstUserKind
)

// FirstUserKind is the smallest Kind a host-registered type may receive.
const FirstUserKind = firstUserKind

// Immediate reports whether cells of this kind never carry a heap pointer.
func (k Kind) Immediate() bool {
	switch k {
	case KindInt, KindFloat, KindBool, KindNone, KindNotImplemented, KindEllipsis, KindNativeFunc, KindName:
		return true
	default:
		return false
	}
}

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindObject:
		return "object"
	case KindType:
		return "type"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindStr:
		return "str"
	case KindStrIterator:
		return "str_iterator"
	case KindList:
		return "list"
	case KindListIterator:
		return "list_iterator"
	case KindTuple:
		return "tuple"
	case KindDict:
		return "dict"
	case KindDictIterator:
		return "dict_iterator"
	case KindBytes:
		return "bytes"
	case KindSlice:
		return "slice"
	case KindRange:
		return "range"
	case KindRangeIterator:
		return "range_iterator"
	case KindNone:
		return "NoneType"
	case KindNotImplemented:
		return "NotImplementedType"
	case KindEllipsis:
		return "ellipsis"
	case KindFunction:
		return "function"
	case KindNativeFunc:
		return "nativefunc"
	case KindBoundMethod:
		return "bound_method"
	case KindSuper:
		return "super"
	case KindProperty:
		return "property"
	case KindClassMethod:
		return "classmethod"
	case KindStaticMethod:
		return "staticmethod"
	case KindStarWrapper:
		return "star_wrapper"
	case KindModule:
		return "module"
	case KindBaseException:
		return "BaseException"
	case KindException:
		return "Exception"
	case KindName:
		return "<name>"
	default:
		return fmt.Sprintf("kind(%d)", int16(k))
	}
}
