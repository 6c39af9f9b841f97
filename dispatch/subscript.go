package dispatch

import (
	"github.com/embedpy/pycore/heap"
	"github.com/embedpy/pycore/namepool"
	"github.com/embedpy/pycore/vm"
)

// GetItem implements spec.md §4.6's getitem: invoke __getitem__.
func GetItem(v *vm.VM, self, key heap.Cell) (heap.Cell, error) {
	t := typeOf(v, self)
	if t == nil {
		return raiseTypeError(v, "value is not subscriptable")
	}
	magic, ok := t.FindMagic(namepool.MagicGetItem)
	if !ok {
		return raiseTypeError(v, "%q object is not subscriptable", t.Name)
	}
	return Call(v, magic, []heap.Cell{self, key}, nil)
}

// SetItem implements spec.md §4.6's setitem: invoke __setitem__.
func SetItem(v *vm.VM, self, key, value heap.Cell) error {
	t := typeOf(v, self)
	if t == nil {
		_, err := raiseTypeError(v, "value does not support item assignment")
		return err
	}
	magic, ok := t.FindMagic(namepool.MagicSetItem)
	if !ok {
		_, err := raiseTypeError(v, "%q object does not support item assignment", t.Name)
		return err
	}
	_, err := Call(v, magic, []heap.Cell{self, key, value}, nil)
	return err
}

// DelItem implements spec.md §4.6's delitem: invoke __delitem__.
func DelItem(v *vm.VM, self, key heap.Cell) error {
	t := typeOf(v, self)
	if t == nil {
		_, err := raiseTypeError(v, "value does not support item deletion")
		return err
	}
	magic, ok := t.FindMagic(namepool.MagicDelItem)
	if !ok {
		_, err := raiseTypeError(v, "%q object does not support item deletion", t.Name)
		return err
	}
	_, err := Call(v, magic, []heap.Cell{self, key}, nil)
	return err
}

// Contains implements the `in` operator via __contains__.
func Contains(v *vm.VM, self, item heap.Cell) (bool, error) {
	t := typeOf(v, self)
	if t == nil {
		_, err := raiseTypeError(v, "argument is not iterable")
		return false, err
	}
	magic, ok := t.FindMagic(namepool.MagicContains)
	if !ok {
		_, err := raiseTypeError(v, "argument of type %q is not iterable", t.Name)
		return false, err
	}
	result, err := Call(v, magic, []heap.Cell{self, item}, nil)
	if err != nil {
		return false, err
	}
	return result.Truthy(), nil
}
