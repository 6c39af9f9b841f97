package dispatch

import (
	"github.com/embedpy/pycore/heap"
	"github.com/embedpy/pycore/namepool"
	"github.com/embedpy/pycore/pkg/kind"
	"github.com/embedpy/pycore/vm"
)

// GetAttr implements spec.md §4.6's getattr(self, name):
//  1. a data descriptor found via find_name(type_of(self), name) wins
//     outright — its __get__ is invoked.
//  2. else self's own instance store, if it has name, wins.
//  3. else a found member: bound as a bound_method if self is not a
//     type and the member is callable; returned as-is for a plain
//     value; invoked if it is a non-data descriptor.
//  4. else __getattr__ if the type defines it; else AttributeError.
//
// When self is itself a type cell (class attribute access, e.g.
// Widget.greet), step 1-3's find_name walks the class the cell wraps,
// not the "type" metatype every type cell also carries.
func GetAttr(v *vm.VM, self heap.Cell, name namepool.Name) (heap.Cell, error) {
	selfType := typeOf(v, self)
	if self.Kind == kind.KindType {
		if wrapped := vm.TypeOfTypeCell(self); wrapped != nil {
			selfType = wrapped
		}
	}
	if selfType == nil {
		return raiseTypeError(v, "cannot access attributes on this value")
	}

	if member, ok := selfType.FindName(name); ok && isDataDescriptor(v, member) {
		return invokeGet(v, member, self, selfType)
	}

	if self.IsPointer() && self.Obj.Attrs != nil {
		if c, ok := instanceAttrs(self.Obj).Get(name); ok {
			return c, nil
		}
	}

	if member, ok := selfType.FindName(name); ok {
		switch {
		case self.Kind == kind.KindType:
			return member, nil
		case isCallableKind(member.Kind):
			return BindMethod(v, self, member), nil
		case isNonDataGetDescriptor(v, member):
			return invokeGet(v, member, self, selfType)
		default:
			return member, nil
		}
	}

	if magic, ok := selfType.FindMagic(namepool.MagicGetAttr); ok {
		return Call(v, magic, []heap.Cell{self, heap.NameCell(name)}, nil)
	}

	return raiseAttributeError(v, "%q object has no attribute %q", selfType.Name, v.Names.LookupString(name))
}

func isCallableKind(k kind.Kind) bool {
	switch k {
	case kind.KindFunction, kind.KindNativeFunc, kind.KindBoundMethod, kind.KindClassMethod, kind.KindStaticMethod:
		return true
	default:
		return false
	}
}

// SetAttr implements spec.md §4.6's "setattr ... consult data
// descriptors first, then mutate the instance store, else raise".
func SetAttr(v *vm.VM, self heap.Cell, name namepool.Name, value heap.Cell) error {
	selfType := typeOf(v, self)
	if selfType == nil {
		_, err := raiseTypeError(v, "cannot set attributes on this value")
		return err
	}
	if member, ok := selfType.FindName(name); ok && isDataDescriptor(v, member) {
		_, err := invokeSet(v, member, self, value)
		return err
	}
	if !self.IsPointer() {
		_, err := raiseAttributeError(v, "%q object has no attribute %q", selfType.Name, v.Names.LookupString(name))
		return err
	}
	instanceAttrs(self.Obj).Set(name, value)
	return nil
}

// DelAttr implements spec.md §4.6's delattr: same descriptor-first
// consultation, then removal from the instance store, else raise.
func DelAttr(v *vm.VM, self heap.Cell, name namepool.Name) error {
	selfType := typeOf(v, self)
	if selfType == nil {
		_, err := raiseTypeError(v, "cannot delete attributes on this value")
		return err
	}
	if member, ok := selfType.FindName(name); ok && isDataDescriptor(v, member) {
		t := typeOf(v, member)
		magic, ok := t.FindMagic(namepool.MagicDelAttr)
		if !ok {
			_, err := raiseAttributeError(v, "can't delete attribute")
			return err
		}
		_, err := Call(v, magic, []heap.Cell{member, self}, nil)
		return err
	}
	if self.IsPointer() && self.Obj.Attrs != nil && instanceAttrs(self.Obj).Delete(name) {
		return nil
	}
	_, err := raiseAttributeError(v, "%q object has no attribute %q", selfType.Name, v.Names.LookupString(name))
	return err
}
