package vm

import (
	"github.com/embedpy/pycore/internal/fault"
	"github.com/embedpy/pycore/namepool"
	"github.com/embedpy/pycore/pkg/kind"
)

// Group multiplexes up to kind.MaxVMs independent VMs sharing one name
// pool, exactly one of which is "current" at any moment (spec.md §4.5
// "Up to 16 VMs coexist; exactly one is 'current' at any moment;
// switching is explicit"). Grounded on the teacher's single-resource
// hive.Hive pattern scaled up to a slice of resources plus an explicit
// selector, rather than a pool of interchangeable workers — switching
// here is a deliberate user action, never load-balanced.
type Group struct {
	names   *namepool.Pool
	members []*VM
	current int // index into members; -1 if the group is empty
}

// NewGroup creates an empty Group with a fresh, shared name pool.
func NewGroup() *Group {
	return &Group{
		names:   namepool.New(),
		current: -1,
	}
}

// Spawn creates a new VM in the group and makes it current. It fails
// once kind.MaxVMs members already exist.
func (g *Group) Spawn(opts Options) (*VM, error) {
	if len(g.members) >= kind.MaxVMs {
		return nil, fault.New(fault.KindConfig, "vm: group already holds the maximum of 16 VMs")
	}
	member := New(g.names, opts)
	g.members = append(g.members, member)
	g.current = len(g.members) - 1
	return member, nil
}

// Current returns the presently selected VM, or nil if the group is
// empty.
func (g *Group) Current() *VM {
	if g.current < 0 {
		return nil
	}
	return g.members[g.current]
}

// Switch makes the VM at index i current (spec.md §4.5 "switching is
// explicit"). It is the only way control transfers between VMs in a
// group (spec.md §5).
func (g *Group) Switch(i int) error {
	if i < 0 || i >= len(g.members) {
		return fault.New(fault.KindConfig, "vm: group switch index out of range")
	}
	g.current = i
	return nil
}

// Len reports how many VMs are in the group.
func (g *Group) Len() int { return len(g.members) }

// Members returns every VM in the group, index-ordered (spawn order).
func (g *Group) Members() []*VM { return append([]*VM(nil), g.members...) }
