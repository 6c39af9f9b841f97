// Package typeregistry implements the type table described in spec.md
// §4.3: single-inheritance classes with a fixed-width magic-method slot
// vector (grounded on hive/index/index.go's ReadOnlyIndex/Index split —
// lookups never mutate, registration is the one write path) and a
// general attribute store per type built from attrstore.Store.
//
// Built-in types are registered in the canonical, test-observable order
// spec.md §4.3 requires (object=1, type, int, float, bool, str, …),
// which is why pkg/kind.Kind doubles as the type registry's id space:
// both orderings were written to agree, the way pkg/types/api.go's
// NodeID/ValueID handles are just the on-disk offset dressed in a named
// type.
package typeregistry
