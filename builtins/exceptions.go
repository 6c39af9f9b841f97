package builtins

import (
	"github.com/embedpy/pycore/heap"
	"github.com/embedpy/pycore/namepool"
	"github.com/embedpy/pycore/pkg/kind"
	"github.com/embedpy/pycore/typeregistry"
	"github.com/embedpy/pycore/vm"
)

// installExceptions registers the exception taxonomy (spec.md §7) under
// module "" and wires BaseException's construction protocol and string
// conversion. Every other magic-slot installer in this package assumes
// the taxonomy already exists — raise() panics if even "Exception" is
// missing — so Install calls this first.
func installExceptions(v *vm.VM) {
	base := v.Types.ByKind(kind.KindBaseException)
	exc := v.Types.ByKind(kind.KindException)

	*base.GetMagic(namepool.MagicNew) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		t := vm.TypeOfTypeCell(f.Arg(0))
		obj, err := v.Heap.Alloc(&t.TypeInfo, 2)
		if err != nil {
			return heap.Cell{}, err
		}
		obj.Slots[0] = newTuple(v, nil)
		obj.Slots[1] = heap.None
		heap.Populate(obj)
		return heap.Cell{Kind: t.Kind, Obj: obj}, nil
	})
	*base.GetMagic(namepool.MagicInit) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		self := f.Arg(0)
		args := make([]heap.Cell, 0, f.Argc()-1)
		for i := 1; i < f.Argc(); i++ {
			args = append(args, f.Arg(i))
		}
		self.Obj.Slots[0] = newTuple(v, args)
		return heap.None, nil
	})
	*base.GetMagic(namepool.MagicStr) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		s, err := excMessage(v, f.Arg(0))
		if err != nil {
			return heap.Cell{}, err
		}
		return newStr(v, s), nil
	})
	*base.GetMagic(namepool.MagicRepr) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		s, err := excRepr(v, f.Arg(0))
		if err != nil {
			return heap.Cell{}, err
		}
		return newStr(v, s), nil
	})

	// Direct children of BaseException: control-flow and process-level
	// signals that a bare `except Exception` must not catch.
	mustRegister(v, base, "StopIteration")
	mustRegister(v, base, "SystemExit")
	mustRegister(v, base, "KeyboardInterrupt")

	// Exception and its ordinary descendants. CPython groups IndexError
	// and KeyError under LookupError, and ZeroDivisionError under
	// ArithmeticError; this core flattens these to direct children of
	// Exception since nothing here dispatches on the intermediate class
	// (a documented simplification, not an oversight). OverflowError is
	// not registered.
	mustRegister(v, exc, "TypeError")
	mustRegister(v, exc, "ValueError")
	mustRegister(v, exc, "AttributeError")
	nameError := mustRegister(v, exc, "NameError")
	mustRegister(v, nameError, "UnboundLocalError")
	mustRegister(v, exc, "IndexError")
	mustRegister(v, exc, "KeyError")
	mustRegister(v, exc, "ZeroDivisionError")
	runtimeError := mustRegister(v, exc, "RuntimeError")
	mustRegister(v, runtimeError, "NotImplementedError")
	mustRegister(v, runtimeError, "StackOverflowError")
	mustRegister(v, exc, "ImportError")
	mustRegister(v, exc, "SyntaxError")
	mustRegister(v, exc, "AssertionError")
	osError := mustRegister(v, exc, "OSError")
	mustRegister(v, osError, "IOError") // alias, no behavior of its own
}

// mustRegister installs a plain exception subtype with no slots of its
// own (it inherits BaseException's 2-slot instance layout and every
// magic method through the base chain). Registration only fails on a
// duplicate (module, name) or an exhausted id space, neither of which
// can happen from this fixed, one-time call list — a failure here is a
// programming error in this file, not a runtime condition to recover
// from.
func mustRegister(v *vm.VM, base *typeregistry.Type, name string) *typeregistry.Type {
	t, err := v.Types.Register(base, "", name, nil, nil)
	if err != nil {
		panic("builtins: " + err.Error())
	}
	return t
}

// excMessage renders the payload raise() and user construction leave
// behind. VM-internal raises (raise(), raiseTypeError(), …) stash a
// plain Go string in UserData; exceptions built through __init__ carry
// their positional constructor args as a tuple in Slots[0] instead —
// CPython's own str(exc) rule: empty args -> "", one arg -> str(arg),
// more than one -> repr of the args tuple.
func excMessage(v *vm.VM, c heap.Cell) (string, error) {
	if !c.IsPointer() {
		return "", nil
	}
	if s, ok := c.Obj.UserData.(string); ok {
		return s, nil
	}
	if len(c.Obj.Slots) == 0 {
		return "", nil
	}
	args := c.Obj.Slots[0]
	if args.Kind != kind.KindTuple {
		return "", nil
	}
	switch len(args.Obj.Slots) {
	case 0:
		return "", nil
	case 1:
		return Str(v, args.Obj.Slots[0])
	default:
		return tupleRepr(v, args)
	}
}

// excRepr renders TypeName(args...) the way CPython's BaseException.__repr__
// does, reusing excMessage's args-tuple access for the constructor-arg
// case and falling back to TypeName('message') for the VM-internal one.
func excRepr(v *vm.VM, c heap.Cell) (string, error) {
	name := typeName(v, c)
	if !c.IsPointer() {
		return name + "()", nil
	}
	if s, ok := c.Obj.UserData.(string); ok {
		if s == "" {
			return name + "()", nil
		}
		return name + "(" + quoteStr(s) + ")", nil
	}
	if len(c.Obj.Slots) == 0 {
		return name + "()", nil
	}
	args := c.Obj.Slots[0]
	if args.Kind != kind.KindTuple {
		return name + "()", nil
	}
	// tupleRepr adds a trailing comma for a single-element tuple (x,);
	// repr(exc) wants plain parens around the argument list instead, so
	// the one-element case is rendered directly rather than reused.
	if len(args.Obj.Slots) == 1 {
		s, err := Repr(v, args.Obj.Slots[0])
		if err != nil {
			return "", err
		}
		return name + "(" + s + ")", nil
	}
	inner, err := tupleRepr(v, args)
	if err != nil {
		return "", err
	}
	return name + inner, nil
}
