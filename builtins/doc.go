// Package builtins installs the canonical magic-slot set spec.md §4.7
// requires of every built-in value kind (int, float, bool, str, bytes,
// tuple, list, dict, slice, range, and the thin wrapper kinds) plus the
// full exception taxonomy of spec.md §7, onto a freshly constructed
// vm.VM's type registry.
//
// Every magic method here is a closure over the installing *vm.VM
// rather than a free function: heap.NativeFunc's signature
// (func(heap.Frame) (heap.Cell, error)) carries no VM reference, yet a
// built-in like list's __repr__ must recurse into dispatch.Repr on its
// elements, and dict's hashing must invoke the dispatch layer's
// __hash__/__eq__ protocol on arbitrary keys. Since each VM bootstraps
// its own type registry (vm.New calls typeregistry.NewRegistry fresh
// every time — spec.md §5 "None are shared across VMs"), installing
// per-VM closures is the natural fit, not a workaround: Install must be
// called once per VM, exactly the way a host embeds the core.
package builtins

import "github.com/embedpy/pycore/vm"

// Install registers every built-in type's magic-slot set and the
// exception taxonomy on v. Called once, right after vm.New.
func Install(v *vm.VM) error {
	// Exceptions first: raise() (and every raiseXxx wrapper below it)
	// panics if even "Exception" is unregistered, and every iterator's
	// __next__ raises StopIteration.
	installExceptions(v)

	installInt(v)
	installFloat(v)
	installBool(v)
	installStr(v)
	installStrIterator(v)
	installBytes(v)
	installTuple(v)
	installList(v)
	installListIterator(v)
	installDict(v)
	installDictIterator(v)
	installSlice(v)
	installRange(v)
	installRangeIterator(v)
	installDescriptors(v)
	installFunctionKinds(v)
	return nil
}
