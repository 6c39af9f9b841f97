package builtins

import (
	"github.com/embedpy/pycore/heap"
	"github.com/embedpy/pycore/namepool"
	"github.com/embedpy/pycore/pkg/kind"
	"github.com/embedpy/pycore/vm"
)

// nativeCell wraps fn as a callable native-function cell — every
// built-in magic method installed by this package is one of these.
func nativeCell(fn heap.NativeFunc) heap.Cell {
	return heap.Cell{Kind: kind.KindNativeFunc, Native: fn}
}

// internName interns a built-in attribute name once at Install time;
// the pool never rejects a plain ASCII identifier, so a failure here
// means Install itself is wired wrong.
func internName(v *vm.VM, s string) namepool.Name {
	n, err := v.Names.Intern([]byte(s))
	if err != nil {
		panic("builtins: failed to intern " + s + ": " + err.Error())
	}
	return n
}
