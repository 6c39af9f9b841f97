// Package capi is the public embedding surface (spec.md §6): the set
// of calls a host application makes to create VMs, move values in and
// out of them, and inspect the type system, without reaching into
// vm/heap/typeregistry's internals directly.
//
// It is a pure-Go package — no cgo — but its function shapes mirror
// the conceptual C header this runtime's spec was distilled from
// (original_source/include/pocketpy/pocketpy.h) closely enough to pin
// down semantics: every fallible operation returns a Go error instead
// of the header's `bool` + "check py_checkexc" convention, but the
// underlying rule is the same one spec.md §4.6 states for the dispatch
// layer — a non-nil error means a Python exception is sitting in the
// VM's exception slot, not that the Go call itself malfunctioned.
//
// Go name below, for readers cross-referencing the header -> original C name:
//
//	Context.NewInt/NewFloat/NewBool/NewStr/NewBytes/NewTuple/NewList/NewDict -> py_newint/py_newfloat/py_newbool/py_newstr/py_newbytes/py_newtuple/py_newlist/py_newdict
//	Context.NewObject   -> py_newobject
//	ToType              -> py_totype
//	TypeOf              -> py_typeof
//	Context.GetType     -> py_gettype
//	IsType              -> py_istype
//	IsInstance          -> py_isinstance
//	IsSubclass          -> py_issubclass
//	TypeName            -> py_tpname
//	Context.CheckType   -> py_checktype
//	Context.BindMethod  -> py_bindmethod
//	Context.Raise       -> py_exception
//	Context.CheckExc    -> py_checkexc
//	Context.MatchExc    -> py_matchexc
//	Context.VectorCall  -> py_vectorcall
package capi

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/embedpy/pycore/builtins"
	"github.com/embedpy/pycore/dispatch"
	"github.com/embedpy/pycore/heap"
	"github.com/embedpy/pycore/internal/integrity"
	"github.com/embedpy/pycore/namepool"
	"github.com/embedpy/pycore/pkg/kind"
	"github.com/embedpy/pycore/typeregistry"
	"github.com/embedpy/pycore/vm"
)

// Ref is a value cell, the unit every Context function passes or
// returns (the header's py_Ref/py_OutRef, minus the out-parameter
// convention C needs and Go does not).
type Ref = heap.Cell

// Type is a registered type (the header's py_Type, an int16 id; here
// the Type itself, since nothing in this Go API needs the bare integer
// a C caller would store in a struct field).
type Type = *typeregistry.Type

// Context is one embedded VM, already bootstrapped with every built-in
// type and the exception taxonomy installed (spec.md §4.5, §7) — the
// header's implicit "the VM" the whole C API operates against, made
// explicit here since this runtime supports more than one (§5, §3 "Up
// to 16 VMs coexist"; see vm.Group for multiplexing several Contexts).
type Context struct {
	vm *vm.VM
}

// New creates a Context: a fresh VM plus every built-in type and
// exception registered on it.
func New(opts ...vm.Option) (*Context, error) {
	return NewWithOptions(vm.NewOptions(opts...))
}

// NewWithOptions is New for a caller (cmd/pycore's --config/--stack-size
// flags) that has already resolved a full vm.Options rather than a list
// of functional overrides.
func NewWithOptions(o vm.Options) (*Context, error) {
	v := vm.New(names, o)
	if err := builtins.Install(v); err != nil {
		return nil, fmt.Errorf("capi: failed to install builtins: %w", err)
	}
	return &Context{vm: v}, nil
}

// names is the process-wide name pool shared by every Context this
// package creates (spec.md §5 "several VMs share a namepool.Pool").
var names = namepool.New()

// VM exposes the underlying *vm.VM for callers that need a layer this
// package does not wrap (the dispatch/vm packages themselves).
func (ctx *Context) VM() *vm.VM { return ctx.vm }

// ID returns the VM's session id (py_vm_id — not part of the original
// header; added so multiple embedded VMs can be told apart in host
// logs/metrics without relying on a process-local slice index).
func (ctx *Context) ID() uuid.UUID { return ctx.vm.ID }

// NewInt, NewFloat, and NewBool wrap immediate-kind values; these never
// allocate (spec.md §3 "immediate-kind cells... never carry a heap
// pointer").
func (ctx *Context) NewInt(i int64) Ref     { return heap.Int(i) }
func (ctx *Context) NewFloat(f float64) Ref { return heap.Float(f) }
func (ctx *Context) NewBool(b bool) Ref     { return heap.Bool(b) }

// NewStr, NewBytes, NewTuple, NewList, and NewDict allocate a heap
// object of the corresponding built-in kind (py_newstr/py_newbytes/
// py_newtuple/py_newlist/py_newdict).
func (ctx *Context) NewStr(s string) Ref            { return builtins.NewStr(ctx.vm, s) }
func (ctx *Context) NewBytes(b []byte) Ref          { return builtins.NewBytes(ctx.vm, b) }
func (ctx *Context) NewTuple(elems ...Ref) Ref      { return builtins.NewTuple(ctx.vm, elems) }
func (ctx *Context) NewList(items ...Ref) Ref       { return builtins.NewList(ctx.vm, items) }
func (ctx *Context) NewDict() Ref                   { return builtins.NewDict(ctx.vm) }
func (ctx *Context) DictSet(d, key, value Ref) error { return builtins.DictSet(ctx.vm, d, key, value) }

// NewObject allocates a bare instance of t with slotCount positional
// slots (py_newobject), left uninitialized (Nil) per spec.md §4.2's
// "obtain uninitialized, populate, then cross a GC boundary" rule — the
// caller must fill every slot before triggering any further allocation.
func (ctx *Context) NewObject(t Type, slotCount int) (Ref, error) {
	obj, err := ctx.vm.Heap.Alloc(&t.TypeInfo, slotCount)
	if err != nil {
		return Ref{}, err
	}
	return heap.Cell{Kind: t.Kind, Obj: obj}, nil
}

// Populate marks the end of an uninitialized object's fill window (see
// NewObject); forwards to heap.Populate.
func Populate(c Ref) {
	if c.IsPointer() {
		heap.Populate(c.Obj)
	}
}

// TypeOf returns c's runtime type (py_typeof).
func (ctx *Context) TypeOf(c Ref) Type { return ctx.vm.TypeOf(c) }

// ToType recovers the Type a type cell wraps, or nil if c is not one
// (py_totype).
func ToType(c Ref) Type { return vm.TypeOfTypeCell(c) }

// TypeObject returns t wrapped as a first-class, callable type cell
// (py_tpobject).
func (ctx *Context) TypeObject(t Type) Ref { return ctx.vm.TypeCell(t) }

// GetType looks up a registered type by (module, name) (py_gettype).
func (ctx *Context) GetType(module, name string) (Type, bool) {
	return ctx.vm.Types.Lookup(module, name)
}

// IsType reports whether c's runtime type is exactly t (py_istype).
func IsType(ctxVM *vm.VM, c Ref, t Type) bool { return ctxVM.TypeOf(c) == t }

// IsInstance reports whether c is an instance of t, following single
// inheritance (py_isinstance).
func IsInstance(ctxVM *vm.VM, c Ref, t Type) bool {
	return typeregistry.IsInstance(ctxVM.TypeOf(c), t)
}

// IsSubclass reports whether d's chain includes b (py_issubclass).
func IsSubclass(d, b Type) bool { return typeregistry.IsSubclass(d, b) }

// TypeName returns a type's registered name (py_tpname).
func TypeName(t Type) string {
	if t == nil {
		return ""
	}
	return t.Name
}

// CheckType raises TypeError and returns dispatch.ErrExceptionRaised if
// c is not an instance of t (py_checktype).
func (ctx *Context) CheckType(c Ref, t Type) error {
	if IsInstance(ctx.vm, c, t) {
		return nil
	}
	got := ctx.vm.TypeOf(c)
	gotName := "?"
	if got != nil {
		gotName = got.Name
	}
	return ctx.Raise("TypeError", "expected %s, got %s", TypeName(t), gotName)
}

// BindMethod installs fn as a native method named name on t
// (py_bindmethod). argc is documentation only here — Go closures are
// already arity-fixed — but is accepted to keep the signature
// recognizable next to the original py_bindmethod(type, name, f).
func (ctx *Context) BindMethod(t Type, name string, argc int, fn heap.NativeFunc) error {
	id, err := ctx.vm.Names.Intern([]byte(name))
	if err != nil {
		return err
	}
	t.Attrs.Set(id, heap.Cell{Kind: kind.KindNativeFunc, Native: fn})
	return nil
}

// GetAttr, SetAttr, and DelAttr forward to the dispatch layer's
// attribute protocol (spec.md §4.6).
func (ctx *Context) GetAttr(self Ref, name string) (Ref, error) {
	n, err := ctx.vm.Names.Intern([]byte(name))
	if err != nil {
		return Ref{}, err
	}
	return dispatch.GetAttr(ctx.vm, self, n)
}

func (ctx *Context) SetAttr(self Ref, name string, value Ref) error {
	n, err := ctx.vm.Names.Intern([]byte(name))
	if err != nil {
		return err
	}
	return dispatch.SetAttr(ctx.vm, self, n, value)
}

// Call invokes a callable cell with positional args (a thin wrapper
// over dispatch.Call; py_vectorcall's stack-based calling convention is
// the VM-internal path an interpreter loop uses instead).
func (ctx *Context) Call(callable Ref, args ...Ref) (Ref, error) {
	return dispatch.Call(ctx.vm, callable, args, nil)
}

// Raise deposits a new exception of the named type into the VM's
// exception slot and returns dispatch.ErrExceptionRaised (py_exception).
func (ctx *Context) Raise(typeName, format string, args ...any) error {
	exc, err := builtins.NewException(ctx.vm, typeName, builtins.NewStr(ctx.vm, fmt.Sprintf(format, args...)))
	if err != nil {
		return err
	}
	ctx.vm.Raise(exc)
	return dispatch.ErrExceptionRaised
}

// CheckExc reports whether the VM's exception channel is currently
// raised (py_checkexc). ignoreHandled, when true, also treats a
// previously-handled-but-not-yet-cleared exception as "no exception" —
// mirroring the header's bool parameter of the same name.
func (ctx *Context) CheckExc(ignoreHandled bool) bool {
	switch ctx.vm.ExcState() {
	case vm.ExcRaised:
		return true
	case vm.ExcHandled:
		return !ignoreHandled
	default:
		return false
	}
}

// MatchExc implements py_matchexc: while raised, if the pending
// exception is an instance of t, moves the channel to handled and
// returns true.
func (ctx *Context) MatchExc(t Type) bool { return ctx.vm.MatchExc(t) }

// CurrentException returns the cell in the exception slot.
func (ctx *Context) CurrentException() Ref { return ctx.vm.CurrentException() }

// ClearExc clears the exception channel.
func (ctx *Context) ClearExc() { ctx.vm.ClearExc(-1) }

// Collect runs one GC pass over the Context's heap.
func (ctx *Context) Collect() { ctx.vm.Collect() }

// Stats reports allocator/GC counters for the Context's heap.
func (ctx *Context) Stats() heap.Stats { return ctx.vm.Heap.Stats() }

// CheckInvariants runs the full internal/integrity battery over this
// Context (spec.md §8), for a host's debug builds or test harnesses.
func (ctx *Context) CheckInvariants() integrity.Report { return ctx.vm.CheckInvariants() }
