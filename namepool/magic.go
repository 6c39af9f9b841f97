package namepool

// MagicNames enumerates the magic method names in the fixed order the
// name pool reserves them (spec.md §4.1). An external compiler is
// expected to know this same order so it can emit magic-name ids
// directly into bytecode rather than interning at run time.
//
// Named magic-id constants below are 1-based into this slice, i.e.
// Name(i+1) == the Pool id for MagicNames[i].
var MagicNames = []string{
	"__new__", "__init__", "__del__",
	"__repr__", "__str__", "__hash__", "__eq__", "__ne__",
	"__lt__", "__le__", "__gt__", "__ge__",
	"__add__", "__radd__", "__sub__", "__rsub__",
	"__mul__", "__rmul__", "__truediv__", "__rtruediv__",
	"__floordiv__", "__rfloordiv__", "__mod__", "__rmod__",
	"__pow__", "__rpow__", "__neg__", "__pos__", "__abs__",
	"__invert__", "__and__", "__rand__", "__or__", "__ror__",
	"__xor__", "__rxor__", "__lshift__", "__rlshift__",
	"__rshift__", "__rrshift__", "__matmul__", "__rmatmul__",
	"__iter__", "__next__", "__len__",
	"__getitem__", "__setitem__", "__delitem__", "__contains__",
	"__call__", "__get__", "__set__", "__set_name__",
	"__enter__", "__exit__",
	"__bool__", "__int__", "__float__", "__index__",
	"__getattr__", "__setattr__", "__delattr__",
	"__name__", "__module__", "__qualname__", "__class__", "__doc__",
	"__bases__", "__dict__",
}

// Well-known magic ids, exported for the dispatch layer. Declared in
// MagicNames order starting at 1 (see namepool.New, which reserves them
// in this exact sequence).
const (
	MagicNew Name = 1 + iota
	MagicInit
	MagicDel
	MagicRepr
	MagicStr
	MagicHash
	MagicEq
	MagicNe
	MagicLt
	MagicLe
	MagicGt
	MagicGe
	MagicAdd
	MagicRAdd
	MagicSub
	MagicRSub
	MagicMul
	MagicRMul
	MagicTrueDiv
	MagicRTrueDiv
	MagicFloorDiv
	MagicRFloorDiv
	MagicMod
	MagicRMod
	MagicPow
	MagicRPow
	MagicNeg
	MagicPos
	MagicAbs
	MagicInvert
	MagicAnd
	MagicRAnd
	MagicOr
	MagicROr
	MagicXor
	MagicRXor
	MagicLShift
	MagicRLShift
	MagicRShift
	MagicRRShift
	MagicMatmul
	MagicRMatmul
	MagicIter
	MagicNext
	MagicLen
	MagicGetItem
	MagicSetItem
	MagicDelItem
	MagicContains
	MagicCall
	MagicGet
	MagicSet
	MagicSetName
	MagicEnter
	MagicExit
	MagicBool
	MagicInt
	MagicFloat
	MagicIndex
	MagicGetAttr
	MagicSetAttr
	MagicDelAttr
	MagicDunderName
	MagicDunderModule
	MagicDunderQualname
	MagicDunderClass
	MagicDunderDoc
	MagicDunderBases
	MagicDunderDict
)

// ReflectedOf returns the reflected-operator counterpart of a binary
// magic method (spec.md §4.6), and ok=false if op has none (unary ops,
// or ops with no reflected pair).
func ReflectedOf(op Name) (Name, bool) {
	switch op {
	case MagicAdd:
		return MagicRAdd, true
	case MagicSub:
		return MagicRSub, true
	case MagicMul:
		return MagicRMul, true
	case MagicTrueDiv:
		return MagicRTrueDiv, true
	case MagicFloorDiv:
		return MagicRFloorDiv, true
	case MagicMod:
		return MagicRMod, true
	case MagicPow:
		return MagicRPow, true
	case MagicAnd:
		return MagicRAnd, true
	case MagicOr:
		return MagicROr, true
	case MagicXor:
		return MagicRXor, true
	case MagicLShift:
		return MagicRLShift, true
	case MagicRShift:
		return MagicRRShift, true
	case MagicMatmul:
		return MagicRMatmul, true
	// Comparisons swap lt<->gt, le<->ge (spec.md §4.6).
	case MagicLt:
		return MagicGt, true
	case MagicGt:
		return MagicLt, true
	case MagicLe:
		return MagicGe, true
	case MagicGe:
		return MagicLe, true
	case MagicEq:
		return MagicEq, true
	case MagicNe:
		return MagicNe, true
	default:
		return 0, false
	}
}
