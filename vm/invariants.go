package vm

import "github.com/embedpy/pycore/internal/integrity"

// CheckInvariants runs internal/integrity's full invariant battery over
// this VM's heap, type registry, and name pool (spec.md §8). Intended
// for debug builds and test harnesses, not the hot path — a collection
// pass and a name-pool bijectivity scan both walk every live object.
func (vmState *VM) CheckInvariants() integrity.Report {
	return integrity.CheckAll(vmState.Heap, vmState.Types, vmState.Names)
}
