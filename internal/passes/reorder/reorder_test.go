package reorder_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dauphin-lang/dauphin/internal/gen"
	"github.com/dauphin-lang/dauphin/internal/ir"
	"github.com/dauphin-lang/dauphin/internal/passes/reorder"
)

func TestAdjacentUnforcedPausesCollapse(t *testing.T) {
	ctx := gen.New()
	ctx.Add(ir.PauseInstr(false))
	ctx.Add(ir.PauseInstr(false))
	ctx.PhaseFinished()

	require.NoError(t, reorder.Run(ctx))
	assert.Len(t, ctx.Instructions(), 1)
}

func TestForcedPauseIsNeverCollapsed(t *testing.T) {
	ctx := gen.New()
	ctx.Add(ir.PauseInstr(true))
	ctx.Add(ir.PauseInstr(true))
	ctx.PhaseFinished()

	require.NoError(t, reorder.Run(ctx))
	assert.Len(t, ctx.Instructions(), 2)
}

func TestEveryInstructionIsStampedWithACost(t *testing.T) {
	ctx := gen.New()
	dst := ctx.Allocate(nil)
	ctx.Add(ir.NumberConstInstr(dst, 1))
	ctx.PhaseFinished()

	require.NoError(t, reorder.Run(ctx))
	instrs := ctx.Instructions()
	require.Len(t, instrs, 1)
	assert.NotZero(t, instrs[0].Cost)
}
