package vm

import "github.com/embedpy/pycore/heap"

// Register indices into the VM's fixed register bank (spec.md §4.5:
// "known singletons (True, False, None, nil, last return value) at
// fixed indices and general-purpose scratch slots"). External code
// (an eventual bytecode interpreter, or tests) addresses these by name
// rather than a magic integer.
const (
	RegTrue Register = iota
	RegFalse
	RegNone
	RegNil
	RegLastReturn

	regFixedCount
)

// scratchRegisters is the number of general-purpose slots following the
// fixed singleton registers, for cross-call scratch communication.
const scratchRegisters = 16

// registerCount is the full width of a VM's register bank.
const registerCount = int(regFixedCount) + scratchRegisters

// Register is an index into a VM's register bank.
type Register int

// Scratch returns the register index for scratch slot i (0-based).
func Scratch(i int) Register { return regFixedCount + Register(i) }

func newRegisterBank() [registerCount]heap.Cell {
	var r [registerCount]heap.Cell
	r[RegTrue] = heap.True
	r[RegFalse] = heap.False
	r[RegNone] = heap.None
	r[RegNil] = heap.Nil
	r[RegLastReturn] = heap.Nil
	return r
}
