// Package dispatch implements spec.md §4.6: every user-visible
// operation (attribute access, binary/unary operators, iteration,
// subscripting, calls) reduced to magic-method lookups on the runtime
// type graph built by typeregistry and vm.
//
// Grounded on hive/edit's mutation shape (validate -> locate -> mutate
// -> reindex, here: descriptor check -> instance store -> inherited
// member -> __getattr__ fallback) and hive/walker/validator.go's
// post-operation invariant style (every operation here ends by either
// returning a value or depositing an exception and failing, mirroring
// validator's issue-collection-over-panic discipline).
//
// Every function in this package that can fail at the Python level
// returns (zero Cell, ErrExceptionRaised) and leaves the VM's exception
// channel in state Raised; Go-level errors (a Fault) only ever escape
// for host-level failures dispatch cannot express as a Python exception.
package dispatch
