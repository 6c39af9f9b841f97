package vm

import (
	"github.com/embedpy/pycore/heap"
	"github.com/embedpy/pycore/typeregistry"
)

// ExcState is a state in the exception channel's clear/raised/handled
// machine (spec.md §4.6 "State machine (exception channel)").
type ExcState int

const (
	ExcClear ExcState = iota
	ExcRaised
	ExcHandled
)

func (s ExcState) String() string {
	switch s {
	case ExcClear:
		return "clear"
	case ExcRaised:
		return "raised"
	case ExcHandled:
		return "handled"
	default:
		return "invalid"
	}
}

// exceptionChannel holds the current-exception slot and its state.
type exceptionChannel struct {
	state ExcState
	cell  heap.Cell
}

// Raise moves clear -> raised, depositing exc in the exception slot
// (spec.md §4.6). Raising while already raised replaces the pending
// exception — the interpreter loop is responsible for unwinding before
// raising again in practice, but the channel itself does not forbid it.
func (vmState *VM) Raise(exc heap.Cell) {
	vmState.exc.state = ExcRaised
	vmState.exc.cell = exc
}

// ExcState reports the exception channel's current state.
func (vmState *VM) ExcState() ExcState { return vmState.exc.state }

// CurrentException returns the cell in the exception slot (valid in
// both Raised and Handled states; heap.Nil in Clear).
func (vmState *VM) CurrentException() heap.Cell { return vmState.exc.cell }

// MatchExc implements spec.md §4.6's match_exc(T): while raised, if the
// pending exception is an instance of t, the channel moves to handled,
// the exception is copied into the RegLastReturn register, and true is
// returned. Otherwise the channel is left untouched and false is
// returned (the caller's handler does not match; propagation continues).
func (vmState *VM) MatchExc(t *typeregistry.Type) bool {
	if vmState.exc.state != ExcRaised {
		return false
	}
	excType := vmState.TypeOf(vmState.exc.cell)
	if excType == nil || !typeregistry.IsInstance(excType, t) {
		return false
	}
	vmState.exc.state = ExcHandled
	vmState.registers[RegLastReturn] = vmState.exc.cell
	return true
}

// ClearExc moves the channel to Clear from any state, optionally
// unwinding the value stack to a previously recorded marker (spec.md
// §4.6 "clearexc moves any state to clear and optionally unwinds the
// stack to a saved marker"). Pass a negative unwindTo to skip unwinding.
func (vmState *VM) ClearExc(unwindTo int) {
	vmState.exc.state = ExcClear
	vmState.exc.cell = heap.Nil
	if unwindTo >= 0 {
		vmState.stack.ShrinkTo(unwindTo)
	}
}

// Raised reports whether dispatch operations must short-circuit (spec.md
// §4.6 "While raised, every dispatch operation short-circuits with
// failure until handled or cleared").
func (vmState *VM) Raised() bool { return vmState.exc.state == ExcRaised }
