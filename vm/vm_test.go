package vm

import (
	"testing"

	"github.com/embedpy/pycore/heap"
	"github.com/embedpy/pycore/namepool"
	"github.com/embedpy/pycore/pkg/kind"
)

func newTestVM(t *testing.T) *VM {
	t.Helper()
	return New(namepool.New(), NewOptions())
}

func TestNewVMSeedsSingletonRegisters(t *testing.T) {
	v := newTestVM(t)
	if v.Register(RegTrue).Kind != kind.KindBool || v.Register(RegTrue).I != 1 {
		t.Fatalf("RegTrue = %v, want True", v.Register(RegTrue))
	}
	if v.Register(RegFalse).I != 0 {
		t.Fatalf("RegFalse = %v, want False", v.Register(RegFalse))
	}
	if v.Register(RegNone).Kind != kind.KindNone {
		t.Fatalf("RegNone = %v, want None", v.Register(RegNone))
	}
	if !v.Register(RegNil).IsNil() {
		t.Fatalf("RegNil = %v, want Nil", v.Register(RegNil))
	}
}

func TestTypeOfImmediateAndPointer(t *testing.T) {
	v := newTestVM(t)
	intType := v.TypeOf(heap.Int(5))
	if intType == nil || intType.Name != "int" {
		t.Fatalf("TypeOf(5) = %v, want int", intType)
	}

	objType := v.Types.ByKind(kind.KindObject)
	obj, err := v.Heap.Alloc(&objType.TypeInfo, 0)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	cell := heap.Cell{Kind: kind.KindObject, Obj: obj}
	got := v.TypeOf(cell)
	if got != objType {
		t.Fatalf("TypeOf(pointer cell) = %v, want %v", got, objType)
	}
}

func TestNewModuleRegistersInTable(t *testing.T) {
	v := newTestVM(t)
	mod, err := v.NewModule("__main__")
	if err != nil {
		t.Fatalf("NewModule: %v", err)
	}
	got, ok := v.Module("__main__")
	if !ok || got != mod {
		t.Fatalf("Module(__main__) did not return the just-created module")
	}
}

func TestEachRootCoversRegistersStackAndModules(t *testing.T) {
	v := newTestVM(t)
	if err := v.Stack().Push(heap.Int(7)); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if _, err := v.NewModule("m"); err != nil {
		t.Fatalf("NewModule: %v", err)
	}

	var seenInt, seenModule bool
	v.EachRoot(func(c heap.Cell) {
		if c.Kind == kind.KindInt && c.I == 7 {
			seenInt = true
		}
		if c.Kind == kind.KindModule {
			seenModule = true
		}
	})
	if !seenInt {
		t.Fatalf("EachRoot did not yield the pushed stack cell")
	}
	if !seenModule {
		t.Fatalf("EachRoot did not yield the module table entry")
	}
}
