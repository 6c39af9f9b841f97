package capi_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/embedpy/pycore/pkg/capi"
)

func TestNewContextBootstrapsBuiltins(t *testing.T) {
	ctx, err := capi.New()
	require.NoError(t, err)

	intType, ok := ctx.GetType("", "int")
	require.True(t, ok)
	require.Equal(t, "int", capi.TypeName(intType))

	five := ctx.NewInt(5)
	require.True(t, capi.IsInstance(ctx.VM(), five, intType))
}

func TestNewStrHasStrType(t *testing.T) {
	ctx, err := capi.New()
	require.NoError(t, err)

	s := ctx.NewStr("hello")
	strType, ok := ctx.GetType("", "str")
	require.True(t, ok)
	require.Equal(t, strType, ctx.TypeOf(s))
}

func TestRaiseAndCheckExc(t *testing.T) {
	ctx, err := capi.New()
	require.NoError(t, err)

	require.False(t, ctx.CheckExc(false))
	raiseErr := ctx.Raise("ValueError", "bad value: %d", 7)
	require.Error(t, raiseErr)
	require.True(t, ctx.CheckExc(false))

	valueErrorType, ok := ctx.GetType("", "ValueError")
	require.True(t, ok)
	require.True(t, ctx.MatchExc(valueErrorType))
	ctx.ClearExc()
	require.False(t, ctx.CheckExc(false))
}

func TestTupleAndDictConstruction(t *testing.T) {
	ctx, err := capi.New()
	require.NoError(t, err)

	tup := ctx.NewTuple(ctx.NewInt(1), ctx.NewInt(2), ctx.NewInt(3))
	tupleType, ok := ctx.GetType("", "tuple")
	require.True(t, ok)
	require.Equal(t, tupleType, ctx.TypeOf(tup))

	d := ctx.NewDict()
	require.NoError(t, ctx.DictSet(d, ctx.NewStr("key"), ctx.NewInt(42)))
}

func TestCheckInvariantsCleanAfterConstruction(t *testing.T) {
	ctx, err := capi.New()
	require.NoError(t, err)

	ctx.NewTuple(ctx.NewInt(1), ctx.NewStr("x"))
	report := ctx.CheckInvariants()
	require.True(t, report.OK(), "%s", report)
}
