package vm

import (
	"github.com/embedpy/pycore/heap"
	"github.com/embedpy/pycore/namepool"
	"github.com/embedpy/pycore/pkg/kind"
)

// Frame is one call activation record, pointing into the value stack
// rather than owning a copy of the arguments (spec.md §4.5 "a frame
// chain (call activation records pointing into the value stack)").
// Frame implements heap.Frame, the decoded view a NativeFunc sees.
type Frame struct {
	Parent   *Frame
	Callable heap.Cell

	stack  *Stack
	base   int // stack index of arg0
	argc   int
	kwargc int
}

var _ heap.Frame = (*Frame)(nil)

// Argc implements heap.Frame.
func (f *Frame) Argc() int { return f.argc }

// Arg implements heap.Frame.
func (f *Frame) Arg(i int) heap.Cell {
	if i < 0 || i >= f.argc {
		panic("vm: Frame.Arg index out of range")
	}
	return f.stack.At(f.base + i)
}

// Kwarg implements heap.Frame by scanning the kw_name/kw_val pairs that
// follow the positional arguments in the stack window (spec.md §6's
// "[callable | arg0 … | kw_name_0 | kw_val_0 | …]" layout).
func (f *Frame) Kwarg(name namepool.Name) (heap.Cell, bool) {
	kwBase := f.base + f.argc
	for i := 0; i < f.kwargc; i++ {
		nameCell := f.stack.At(kwBase + i*2)
		if nameCell.Kind == kind.KindName && nameCell.Name == name {
			return f.stack.At(kwBase + i*2 + 1), true
		}
	}
	return heap.Cell{}, false
}

// Kwargc reports how many keyword arguments this frame carries. Used by
// the dispatch layer to forward a call's full keyword set (e.g. binding
// a bound_method's receiver) without knowing the names in advance.
func (f *Frame) Kwargc() int { return f.kwargc }

// KwargAt returns the i'th keyword argument's name and value, in the
// order they were pushed.
func (f *Frame) KwargAt(i int) (namepool.Name, heap.Cell) {
	if i < 0 || i >= f.kwargc {
		panic("vm: Frame.KwargAt index out of range")
	}
	kwBase := f.base + f.argc
	nameCell := f.stack.At(kwBase + i*2)
	return nameCell.Name, f.stack.At(kwBase + i*2 + 1)
}

// pushFrame builds the frame for a call whose stack window is already
// laid out at [callable | arg0..argc-1 | kw_name_0 kw_val_0 ... ], and
// links it onto the VM's frame chain.
func (vmState *VM) pushFrame(callableIdx, argc, kwargc int) *Frame {
	f := &Frame{
		Parent:   vmState.top,
		Callable: vmState.stack.At(callableIdx),
		stack:    vmState.stack,
		base:     callableIdx + 1,
		argc:     argc,
		kwargc:   kwargc,
	}
	vmState.top = f
	return f
}

// popFrame unlinks the current top frame, restoring its parent.
func (vmState *VM) popFrame() {
	if vmState.top == nil {
		panic("vm: popFrame on empty frame chain")
	}
	vmState.top = vmState.top.Parent
}
