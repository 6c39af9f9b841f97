package heap

import "github.com/embedpy/pycore/namepool"

// Frame is the minimal view of a call activation a NativeFunc needs:
// positional/keyword argument access without reaching into the VM's
// value-stack internals (spec.md §4.5/§6's "[callable | arg0 … |
// kw_name_0 | kw_val_0 | …]" convention, pre-decoded for the callee).
type Frame interface {
	Argc() int
	Arg(i int) Cell
	Kwarg(name namepool.Name) (Cell, bool)
}

// NativeFunc is a host-implemented callable (spec.md §3 "nativefunc").
// It returns the call's result, or an error — in which case the caller
// is responsible for depositing a Python exception into the VM's
// exception slot (spec.md §7 "Native callbacks are responsible for
// propagating the false return up their own call chain").
type NativeFunc func(f Frame) (Cell, error)
