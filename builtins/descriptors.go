package builtins

import (
	"github.com/embedpy/pycore/dispatch"
	"github.com/embedpy/pycore/heap"
	"github.com/embedpy/pycore/namepool"
	"github.com/embedpy/pycore/pkg/kind"
	"github.com/embedpy/pycore/vm"
)

// callHelper invokes a wrapped callable with a plain positional argument
// list, for the wrapper kinds below whose __call__ just forwards to
// Slots[0] after adjusting the argument list.
func callHelper(v *vm.VM, callable heap.Cell, args []heap.Cell) (heap.Cell, error) {
	return dispatch.Call(v, callable, args, nil)
}

// installDescriptors wires the thin wrapper kinds spec.md §4.7 leaves
// to "semantics defined by the dispatch layer": super, property,
// classmethod, staticmethod, star_wrapper. None of these carry their
// own storage beyond a couple of slots — all the interesting behavior
// already lives in dispatch/descriptor.go and dispatch/getattr.go;
// these installers only supply __new__ plus whatever magic that
// dispatch logic actually consults.
func installDescriptors(v *vm.VM) {
	installSuper(v)
	installProperty(v)
	installClassMethod(v)
	installStaticMethod(v)
	installStarWrapper(v)
}

// super: Slots[0] = the bound instance, Slots[1] = a type cell for the
// class one step above the class super() was invoked with — attribute
// lookups against a super proxy start there instead of at
// type_of(instance), skipping the subclass's own overrides (spec.md
// §4.6's getattr is otherwise unaware of super; __getattr__ is the hook
// that makes a super cell participate in getattr at all).
func installSuper(v *vm.VM) {
	t := v.Types.ByKind(kind.KindSuper)

	*t.GetMagic(namepool.MagicNew) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		if f.Argc() != 3 {
			return raiseTypeError(v, "super() expects (type, obj)")
		}
		owner := vm.TypeOfTypeCell(f.Arg(1))
		if owner == nil || owner.Base == nil {
			return raiseTypeError(v, "super(): bad argument 1")
		}
		obj := f.Arg(2)
		tt := vm.TypeOfTypeCell(f.Arg(0))
		sobj, err := v.Heap.Alloc(&tt.TypeInfo, 2)
		if err != nil {
			return heap.Cell{}, err
		}
		sobj.Slots[0] = obj
		sobj.Slots[1] = v.TypeCell(owner.Base)
		heap.Populate(sobj)
		return heap.Cell{Kind: tt.Kind, Obj: sobj}, nil
	})

	*t.GetMagic(namepool.MagicGetAttr) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		self := f.Arg(0)
		obj := self.Obj.Slots[0]
		searchFrom := vm.TypeOfTypeCell(self.Obj.Slots[1])
		name := f.Arg(1).Name
		member, ok := searchFrom.FindName(name)
		if !ok {
			return raiseAttributeError(v, "%q object has no attribute %q", searchFrom.Name, v.Names.LookupString(name))
		}
		if isCallableKind(member.Kind) {
			return dispatch.BindMethod(v, obj, member), nil
		}
		return member, nil
	})
}

// isCallableKind mirrors dispatch's private helper of the same name —
// duplicated rather than exported, since super's __getattr__ needs the
// identical "should this be bound?" test dispatch.GetAttr already
// applies to every other attribute access.
func isCallableKind(k kind.Kind) bool {
	switch k {
	case kind.KindFunction, kind.KindNativeFunc, kind.KindBoundMethod, kind.KindClassMethod, kind.KindStaticMethod:
		return true
	default:
		return false
	}
}

// property: Slots[0] = getter (or Nil), Slots[1] = setter (or Nil),
// Slots[2] = deleter (or Nil). dispatch/descriptor.go special-cases
// KindProperty directly rather than routing through __get__/__set__, so
// this installer only needs __new__ plus the familiar
// getter/setter/deleter chaining methods.
func installProperty(v *vm.VM) {
	t := v.Types.ByKind(kind.KindProperty)

	*t.GetMagic(namepool.MagicNew) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		tt := vm.TypeOfTypeCell(f.Arg(0))
		obj, err := v.Heap.Alloc(&tt.TypeInfo, 3)
		if err != nil {
			return heap.Cell{}, err
		}
		for i, slot := range []int{0, 1, 2} {
			if f.Argc() > i+1 {
				obj.Slots[slot] = f.Arg(i + 1)
			} else {
				obj.Slots[slot] = heap.Nil
			}
		}
		heap.Populate(obj)
		return heap.Cell{Kind: tt.Kind, Obj: obj}, nil
	})

	chain := func(slot int) heap.NativeFunc {
		return func(f heap.Frame) (heap.Cell, error) {
			self := f.Arg(0)
			out := []heap.Cell{self.Obj.Slots[0], self.Obj.Slots[1], self.Obj.Slots[2]}
			out[slot] = f.Arg(1)
			obj, err := v.Heap.Alloc(&t.TypeInfo, 3)
			if err != nil {
				return heap.Cell{}, err
			}
			copy(obj.Slots, out)
			heap.Populate(obj)
			return heap.Cell{Kind: t.Kind, Obj: obj}, nil
		}
	}
	t.Attrs.Set(internName(v, "getter"), nativeCell(chain(0)))
	t.Attrs.Set(internName(v, "setter"), nativeCell(chain(1)))
	t.Attrs.Set(internName(v, "deleter"), nativeCell(chain(2)))
}

// classmethod: Slots[0] = the wrapped callable. dispatch.GetAttr binds
// classmethod the same way it binds a plain method (isCallableKind
// includes KindClassMethod), so __call__ below sees Arg(1) as whatever
// dispatch bound self to — the instance, for instance-level access.
// Deriving cls from that covers the common case; a classmethod invoked
// directly off its class with no prior attribute binding has no bound
// context to recover a class from; dispatch itself has no hook for
// that case, so this is the boundary of what the current layer makes
// representable, not a gap in this installer.
func installClassMethod(v *vm.VM) {
	t := v.Types.ByKind(kind.KindClassMethod)

	*t.GetMagic(namepool.MagicNew) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		tt := vm.TypeOfTypeCell(f.Arg(0))
		obj, err := v.Heap.Alloc(&tt.TypeInfo, 1)
		if err != nil {
			return heap.Cell{}, err
		}
		obj.Slots[0] = f.Arg(1)
		heap.Populate(obj)
		return heap.Cell{Kind: tt.Kind, Obj: obj}, nil
	})

	*t.GetMagic(namepool.MagicCall) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		self := f.Arg(0)
		wrapped := self.Obj.Slots[0]
		if f.Argc() < 2 {
			return raiseTypeError(v, "classmethod requires a bound instance or class")
		}
		bound := f.Arg(1)
		var clsCell heap.Cell
		if bound.Kind == kind.KindType {
			clsCell = bound
		} else if owner := v.TypeOf(bound); owner != nil {
			clsCell = v.TypeCell(owner)
		} else {
			return raiseTypeError(v, "classmethod: cannot determine class")
		}
		args := make([]heap.Cell, 0, f.Argc())
		args = append(args, clsCell)
		for i := 2; i < f.Argc(); i++ {
			args = append(args, f.Arg(i))
		}
		return callHelper(v, wrapped, args)
	})
}

// staticmethod: Slots[0] = the wrapped callable, invoked with no
// implicit first argument. Mirrors classmethod's Arg(1)-is-the-bound-
// context shape, but drops it instead of promoting it to cls.
func installStaticMethod(v *vm.VM) {
	t := v.Types.ByKind(kind.KindStaticMethod)

	*t.GetMagic(namepool.MagicNew) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		tt := vm.TypeOfTypeCell(f.Arg(0))
		obj, err := v.Heap.Alloc(&tt.TypeInfo, 1)
		if err != nil {
			return heap.Cell{}, err
		}
		obj.Slots[0] = f.Arg(1)
		heap.Populate(obj)
		return heap.Cell{Kind: tt.Kind, Obj: obj}, nil
	})

	*t.GetMagic(namepool.MagicCall) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		self := f.Arg(0)
		wrapped := self.Obj.Slots[0]
		// Arg(1), like classmethod's, is whatever dispatch bound self to
		// on instance-level access — dropped here rather than promoted.
		args := make([]heap.Cell, 0, f.Argc())
		for i := 2; i < f.Argc(); i++ {
			args = append(args, f.Arg(i))
		}
		return callHelper(v, wrapped, args)
	})
}

// star_wrapper marks a callable as one whose trailing positional
// parameter collects *args (spec.md names it without specifying a
// shape beyond "thin wrapper"). Slots[0] = the wrapped callable;
// calling it simply forwards every argument straight through — the
// *args/**kwargs collection itself happens in the (out-of-scope)
// bytecode interpreter when it lays out the callee's frame, not here.
func installStarWrapper(v *vm.VM) {
	t := v.Types.ByKind(kind.KindStarWrapper)

	*t.GetMagic(namepool.MagicNew) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		tt := vm.TypeOfTypeCell(f.Arg(0))
		obj, err := v.Heap.Alloc(&tt.TypeInfo, 1)
		if err != nil {
			return heap.Cell{}, err
		}
		obj.Slots[0] = f.Arg(1)
		heap.Populate(obj)
		return heap.Cell{Kind: tt.Kind, Obj: obj}, nil
	})

	*t.GetMagic(namepool.MagicCall) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		self := f.Arg(0)
		wrapped := self.Obj.Slots[0]
		args := make([]heap.Cell, 0, f.Argc()-1)
		for i := 1; i < f.Argc(); i++ {
			args = append(args, f.Arg(i))
		}
		return callHelper(v, wrapped, args)
	})
}
