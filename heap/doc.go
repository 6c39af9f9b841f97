// Package heap implements the managed heap described in spec.md §4.2:
// a segregated-free-list allocator (grounded on hive/alloc/fastalloc.go)
// feeding a tri-color-equivalent mark-sweep collector whose traversal is
// iterative and bitmap-style per-object (grounded on
// hive/walker/core.go's Bitmap-tracked, stack-based HBIN walk).
//
// heap depends on nothing else in this module (pkg/kind, namepool, and
// internal/fault/diag aside) so that attrstore, typeregistry, vm, and
// dispatch can all depend on it without a cycle.
package heap
