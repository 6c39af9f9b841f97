package vm

import (
	"github.com/google/uuid"

	"github.com/embedpy/pycore/attrstore"
	"github.com/embedpy/pycore/heap"
	"github.com/embedpy/pycore/namepool"
	"github.com/embedpy/pycore/pkg/kind"
	"github.com/embedpy/pycore/typeregistry"
)

// VM is a self-contained runtime universe (spec.md §4.5): its own heap
// and type registry, a fixed register bank, a value stack, a frame
// chain, an exception channel, a module table, and sys.argv. Several
// VMs share a namepool.Pool (names are logically per-process) but
// nothing else.
type VM struct {
	ID uuid.UUID

	Heap  *heap.Heap
	Types *typeregistry.Registry
	Names *namepool.Pool

	registers [registerCount]heap.Cell
	stack     *Stack
	top       *Frame
	exc       exceptionChannel

	modules   map[string]*heap.Object
	typeCells map[*typeregistry.Type]*heap.Object
	argv      []string
}

var _ heap.RootSource = (*VM)(nil)

// New creates a VM sharing the given name pool (spec.md §5 "shared
// resources ... none are shared across VMs" except the name pool).
// Each VM gets its own heap and a freshly bootstrapped type registry.
func New(names *namepool.Pool, opts Options) *VM {
	h := heap.NewHeap()
	h.SetAutoGC(opts.AutoGC)

	vmState := &VM{
		ID:        uuid.New(),
		Heap:      h,
		Types:     typeregistry.NewRegistry(),
		Names:     names,
		registers: newRegisterBank(),
		stack:     newStack(opts.StackSize),
		modules:   make(map[string]*heap.Object),
		typeCells: make(map[*typeregistry.Type]*heap.Object),
		argv:      append([]string(nil), opts.Argv...),
	}
	return vmState
}

// Register returns the cell currently in register r.
func (vmState *VM) Register(r Register) heap.Cell { return vmState.registers[r] }

// SetRegister overwrites register r. The four singleton registers
// (RegTrue/RegFalse/RegNone/RegNil) are conventionally never
// overwritten, but nothing below the dispatch layer enforces that.
func (vmState *VM) SetRegister(r Register, c heap.Cell) { vmState.registers[r] = c }

// Stack exposes the value stack for the dispatch/interpreter layers.
func (vmState *VM) Stack() *Stack { return vmState.stack }

// TopFrame returns the innermost active call frame, or nil outside any
// call.
func (vmState *VM) TopFrame() *Frame { return vmState.top }

// PushFrame and PopFrame manage the frame chain around a call (spec.md
// §4.5); dispatch's call/vectorcall path uses these directly.
func (vmState *VM) PushFrame(callableIdx, argc, kwargc int) *Frame {
	return vmState.pushFrame(callableIdx, argc, kwargc)
}

func (vmState *VM) PopFrame() { vmState.popFrame() }

// Argv returns sys.argv as set at construction (spec.md §4.5).
func (vmState *VM) Argv() []string { return vmState.argv }

// SetArgv replaces sys.argv.
func (vmState *VM) SetArgv(argv []string) { vmState.argv = append([]string(nil), argv...) }

// TypeOf returns c's runtime type: for a pointer-kind cell, the type
// recorded on its heap object; for an immediate kind, the built-in type
// registered at that Kind (spec.md §4.3).
func (vmState *VM) TypeOf(c heap.Cell) *typeregistry.Type {
	if c.IsPointer() {
		return vmState.Types.TypeOfObject(c.Obj)
	}
	return vmState.Types.ByKind(c.Kind)
}

// TypeCell returns t wrapped as a first-class callable value (spec.md
// §4.6 "type object (construct: call __new__ then __init__)" requires
// types to be ordinary callable cells). The wrapper object is cached so
// every reference to the same Type yields the same heap object, making
// `x is type(x)` comparisons meaningful.
func (vmState *VM) TypeCell(t *typeregistry.Type) heap.Cell {
	if t == nil {
		return heap.Nil
	}
	if obj, ok := vmState.typeCells[t]; ok {
		return heap.Cell{Kind: kind.KindType, Obj: obj}
	}
	typeType := vmState.Types.ByKind(kind.KindType)
	obj, _ := vmState.Heap.Alloc(&typeType.TypeInfo, 0) // slotCount 0 never fails ErrBadSize
	obj.UserData = t
	vmState.typeCells[t] = obj
	return heap.Cell{Kind: kind.KindType, Obj: obj}
}

// TypeOfTypeCell recovers the Type a TypeCell wraps, or nil if c is not
// one (e.g. it is a plain instance, not a type object).
func TypeOfTypeCell(c heap.Cell) *typeregistry.Type {
	if !c.IsPointer() || c.Kind != kind.KindType {
		return nil
	}
	t, _ := c.Obj.UserData.(*typeregistry.Type)
	return t
}

// Module returns the module registered at path, if any.
func (vmState *VM) Module(path string) (*heap.Object, bool) {
	m, ok := vmState.modules[path]
	return m, ok
}

// NewModule creates an empty module namespace and registers it in the
// module table at path (spec.md §4.5 "the module table (path->module
// object, each module being a namespace with an attribute store)").
func (vmState *VM) NewModule(path string) (*heap.Object, error) {
	moduleType := vmState.Types.ByKind(kind.KindModule)
	obj, err := vmState.Heap.Alloc(&moduleType.TypeInfo, 0)
	if err != nil {
		return nil, err
	}
	obj.Attrs = attrstore.New(kind.InstanceLoadFactor)
	heap.Populate(obj)
	vmState.modules[path] = obj
	return obj, nil
}

// Collect runs one GC pass over this VM's heap, using this VM itself as
// the root source (spec.md §4.2 "Roots: every cell in the active
// register bank, every cell below the current stack pointer ..., every
// module in the module table, the current exception cell").
func (vmState *VM) Collect() { vmState.Heap.Collect(vmState) }

// EachRoot implements heap.RootSource. Besides the roots listed on
// Collect, it yields every cached TypeCell object, so the cache never
// hands out an object the collector has freed.
func (vmState *VM) EachRoot(yield func(heap.Cell)) {
	for _, r := range vmState.registers {
		yield(r)
	}
	for _, obj := range vmState.typeCells {
		yield(heap.Cell{Kind: kind.KindType, Obj: obj})
	}
	vmState.stack.eachRoot(yield)
	for _, m := range vmState.modules {
		yield(heap.Cell{Kind: kind.KindModule, Obj: m})
	}
	if !vmState.exc.cell.IsNil() {
		yield(vmState.exc.cell)
	}
}
