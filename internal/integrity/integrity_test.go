package integrity_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/embedpy/pycore/builtins"
	"github.com/embedpy/pycore/internal/integrity"
	"github.com/embedpy/pycore/namepool"
	"github.com/embedpy/pycore/vm"
)

func newVM(t *testing.T) *vm.VM {
	t.Helper()
	v := vm.New(namepool.New(), vm.NewOptions())
	require.NoError(t, builtins.Install(v))
	return v
}

func TestCheckAllCleanVM(t *testing.T) {
	v := newVM(t)
	report := integrity.CheckAll(v.Heap, v.Types, v.Names)
	require.True(t, report.OK(), "unexpected violations: %s", report)
}

func TestCheckTypeRegistryDetectsCycle(t *testing.T) {
	v := newVM(t)
	// Construct a standalone two-type cycle disconnected from object,
	// the shape CheckTypeRegistry must flag rather than loop forever on.
	a, err := v.Types.Register(v.Types.Object(), "test", "A", nil, nil)
	require.NoError(t, err)
	b, err := v.Types.Register(a, "test", "B", nil, nil)
	require.NoError(t, err)
	a.Base = b // closes the cycle: A -> B -> A, never reaching object

	var c integrity.Checker
	c.CheckTypeRegistry(v.Types)
	report := c.Report()
	require.False(t, report.OK())
}

func TestCheckNamePoolBijective(t *testing.T) {
	v := newVM(t)
	_, err := v.Names.Intern([]byte("some_attribute"))
	require.NoError(t, err)

	var c integrity.Checker
	c.CheckNamePool(v.Names)
	require.True(t, c.Report().OK())
}
