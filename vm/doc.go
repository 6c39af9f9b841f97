// Package vm implements the per-VM runtime state described in spec.md
// §4.5: register bank, value stack, frame chain, exception channel,
// module table, and sys.argv, plus the Group that multiplexes up to
// kind.MaxVMs VMs with an explicit "current" switch (spec.md §5).
//
// Grounded on hive.Hive (hive/hive.go) as the single "opened resource"
// struct that owns backing storage plus derived state, and on
// hive/tx/tx.go's explicit Begin/Commit state tracking for the
// exception channel's clear/raised/handled machinery.
package vm
