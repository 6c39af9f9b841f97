package kind

// ============================================================================
// Runtime Limits Constants
// ============================================================================
// These constants define the hard configuration limits of the embeddable
// core, named after the conceptual C header's PK_ prefix (spec.md §3-§4)
// so that porting notes and the original header stay easy to cross-reference.

const (
	// VMStackSize is the default maximum value-stack height per VM
	// (spec.md §3 "PK_VM_STACK_SIZE, default 16384").
	VMStackSize = 16384

	// GCMinThreshold is the bytes-allocated-since-last-collection at
	// which a collection may first be triggered (spec.md §4.2
	// "PK_GC_MIN_THRESHOLD (16 KiB)").
	GCMinThreshold = 16 << 10

	// MaxVMs is the number of VMs the multi-VM facility may multiplex
	// (spec.md §3 "Up to 16 VMs coexist").
	MaxVMs = 16

	// MaxNames is the size of the 16-bit name-pool id space (spec.md
	// §4.1: "if the pool exhausts 16-bit space the VM aborts startup").
	MaxNames = 1 << 16

	// InstanceLoadFactor is the rehash threshold used by instance
	// attribute stores (spec.md §3 "≈0.67 for instance dicts").
	InstanceLoadFactor = 0.67

	// TypeLoadFactor is the rehash threshold used by type attribute
	// stores (spec.md §3 "≈0.5 for type dicts").
	TypeLoadFactor = 0.5
)
