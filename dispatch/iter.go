package dispatch

import (
	"github.com/embedpy/pycore/heap"
	"github.com/embedpy/pycore/namepool"
	"github.com/embedpy/pycore/vm"
)

// Iter implements spec.md §4.6's iter(x): invoke __iter__.
func Iter(v *vm.VM, x heap.Cell) (heap.Cell, error) {
	t := typeOf(v, x)
	if t == nil {
		return raiseTypeError(v, "value is not iterable")
	}
	magic, ok := t.FindMagic(namepool.MagicIter)
	if !ok {
		return raiseTypeError(v, "%q object is not iterable", t.Name)
	}
	return Call(v, magic, []heap.Cell{x}, nil)
}

// NextOutcome classifies the result of Next (spec.md §4.6 "next(it)
// invokes __next__ and reports one of {value, StopIteration, error}").
type NextOutcome int

const (
	NextValue NextOutcome = iota
	NextStopIteration
	NextError
)

// Next implements spec.md §4.6's next(it). A StopIteration raised by
// __next__ is consumed here and reported as NextStopIteration rather
// than left in the VM's exception slot, since it is documented as a
// non-error control signal (spec.md §7), not a propagating failure.
func Next(v *vm.VM, it heap.Cell) (heap.Cell, NextOutcome, error) {
	t := typeOf(v, it)
	if t == nil {
		_, err := raiseTypeError(v, "value is not an iterator")
		return heap.Cell{}, NextError, err
	}
	magic, ok := t.FindMagic(namepool.MagicNext)
	if !ok {
		_, err := raiseTypeError(v, "%q object is not an iterator", t.Name)
		return heap.Cell{}, NextError, err
	}
	result, err := Call(v, magic, []heap.Cell{it}, nil)
	if err == nil {
		return result, NextValue, nil
	}
	if err == ErrExceptionRaised {
		stopIteration, ok := v.Types.Lookup("", "StopIteration")
		if ok && v.MatchExc(stopIteration) {
			v.ClearExc(-1)
			return heap.Cell{}, NextStopIteration, nil
		}
	}
	return heap.Cell{}, NextError, err
}
