package dispatch

import (
	"github.com/embedpy/pycore/heap"
	"github.com/embedpy/pycore/namepool"
	"github.com/embedpy/pycore/pkg/kind"
	"github.com/embedpy/pycore/typeregistry"
	"github.com/embedpy/pycore/vm"
)

// Slot layout for the built-in property type: Slots[0] is the getter
// callable (or Nil), Slots[1] the setter callable (or Nil).
const (
	propertyGetterSlot = 0
	propertySetterSlot = 1
)

// isDataDescriptor reports whether member — something found on a type
// via find_name — is a data descriptor: a built-in property with both
// getter and setter, or any object whose type defines __set__ (spec.md
// §4.6 "If name is a data descriptor (property with both getter/setter,
// or an object with __set__) ...").
func isDataDescriptor(v *vm.VM, member heap.Cell) bool {
	if member.Kind == kind.KindProperty && member.IsPointer() {
		slots := member.Obj.Slots
		return len(slots) > propertySetterSlot && !slots[propertyGetterSlot].IsNil() && !slots[propertySetterSlot].IsNil()
	}
	t := typeOf(v, member)
	if t == nil {
		return false
	}
	_, ok := t.FindMagic(namepool.MagicSet)
	return ok
}

// isNonDataGetDescriptor reports whether member defines __get__ (or is a
// property with only a getter) without being a full data descriptor —
// spec.md §4.6 step 3's "non-data descriptor with __get__".
func isNonDataGetDescriptor(v *vm.VM, member heap.Cell) bool {
	if isDataDescriptor(v, member) {
		return false
	}
	if member.Kind == kind.KindProperty && member.IsPointer() {
		return !member.Obj.Slots[propertyGetterSlot].IsNil()
	}
	t := typeOf(v, member)
	if t == nil {
		return false
	}
	_, ok := t.FindMagic(namepool.MagicGet)
	return ok
}

// invokeGet runs member's getter against instance, following the
// built-in property special case or the general __get__(descriptor,
// instance, owner) protocol.
func invokeGet(v *vm.VM, member, instance heap.Cell, owner *typeregistry.Type) (heap.Cell, error) {
	if member.Kind == kind.KindProperty && member.IsPointer() {
		getter := member.Obj.Slots[propertyGetterSlot]
		if getter.IsNil() {
			return raiseAttributeError(v, "unreadable attribute")
		}
		return Call(v, getter, []heap.Cell{instance}, nil)
	}
	t := typeOf(v, member)
	magic, ok := t.FindMagic(namepool.MagicGet)
	if !ok {
		return raiseTypeError(v, "%q object is not a descriptor", t.Name)
	}
	return Call(v, magic, []heap.Cell{member, instance, v.TypeCell(owner)}, nil)
}

// invokeSet runs member's setter against (instance, value), following
// the built-in property special case or the general __set__ protocol.
func invokeSet(v *vm.VM, member, instance, value heap.Cell) (heap.Cell, error) {
	if member.Kind == kind.KindProperty && member.IsPointer() {
		setter := member.Obj.Slots[propertySetterSlot]
		if setter.IsNil() {
			return raiseAttributeError(v, "can't set attribute")
		}
		return Call(v, setter, []heap.Cell{instance, value}, nil)
	}
	t := typeOf(v, member)
	magic, ok := t.FindMagic(namepool.MagicSet)
	if !ok {
		return raiseTypeError(v, "%q object has no __set__", t.Name)
	}
	return Call(v, magic, []heap.Cell{member, instance, value}, nil)
}
