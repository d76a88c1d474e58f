package preimage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dauphin-lang/dauphin/internal/commands/core"
	"github.com/dauphin-lang/dauphin/internal/gen"
	"github.com/dauphin-lang/dauphin/internal/ir"
	"github.com/dauphin-lang/dauphin/internal/passes/preimage"
	"github.com/dauphin-lang/dauphin/internal/registry"
)

func coreSuite(t *testing.T) *registry.Suite {
	t.Helper()
	set, err := core.Build()
	require.NoError(t, err)
	suite, err := registry.NewSuite(set)
	require.NoError(t, err)
	return suite
}

func TestKnownAddIsFoldedToAConstant(t *testing.T) {
	suite := coreSuite(t)

	ctx := gen.New()
	x := ctx.Allocate(nil)
	y := ctx.Allocate(nil)
	ctx.Add(ir.NumberConstInstr(x, 2))
	ctx.Add(ir.NumberConstInstr(y, 3))
	ctx.Add(ir.AddInstr(x, y))
	ctx.PhaseFinished()

	require.NoError(t, preimage.Run(ctx, suite, true))
	instrs := ctx.Instructions()
	for _, in := range instrs {
		assert.NotEqual(t, ir.Add, in.Op, "a fully-known Add is replaced with a constant")
	}
	last := instrs[len(instrs)-1]
	assert.Equal(t, ir.NumberConst, last.Op)
	assert.Equal(t, x, last.Operands[0])
	assert.Equal(t, 5.0, last.Number)
}

func TestUnknownOperandKeepsInstructionAndInvalidatesOutput(t *testing.T) {
	suite := coreSuite(t)
	ctx := gen.New()
	arg := ctx.Allocate(nil)
	dst := ctx.Allocate(nil)
	ctx.Add(ir.LengthInstr(dst, arg)) // arg is never assigned a known value
	ctx.PhaseFinished()

	require.NoError(t, preimage.Run(ctx, suite, true))
	instrs := ctx.Instructions()
	require.Len(t, instrs, 1)
	assert.Equal(t, ir.Length, instrs[0].Op)
}

func TestReplaceForbiddenAfterReuseRejectsAFoldableInstruction(t *testing.T) {
	suite := coreSuite(t)
	ctx := gen.New()
	a := ctx.Allocate(nil)
	b := ctx.Allocate(nil)
	ctx.Add(ir.NumberConstInstr(a, 1))
	ctx.Add(ir.NumberConstInstr(b, 2))
	ctx.Add(ir.AddInstr(a, b))
	ctx.PhaseFinished()

	err := preimage.Run(ctx, suite, false)
	assert.Error(t, err)
}
