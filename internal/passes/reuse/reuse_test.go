package reuse_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dauphin-lang/dauphin/internal/gen"
	"github.com/dauphin-lang/dauphin/internal/ir"
	"github.com/dauphin-lang/dauphin/internal/passes/reuse"
	"github.com/dauphin-lang/dauphin/internal/regs"
)

func TestIdenticalConstantsAreDeduped(t *testing.T) {
	ctx := gen.New()
	a := ctx.Allocate(nil)
	b := ctx.Allocate(nil)
	ctx.Add(ir.NumberConstInstr(a, 1))
	ctx.Add(ir.NumberConstInstr(b, 1))
	ctx.PhaseFinished()

	require.NoError(t, reuse.Run(ctx))
	instrs := ctx.Instructions()
	require.Len(t, instrs, 2)
	assert.Equal(t, ir.NumberConst, instrs[0].Op)
	assert.Equal(t, ir.Copy, instrs[1].Op, "second identical constant becomes a copy of the first")
	assert.Equal(t, a, instrs[1].Operands[1])
}

func TestCopyChainCollapsesToEarliestRegister(t *testing.T) {
	ctx := gen.New()
	a := ctx.Allocate(nil)
	b := ctx.Allocate(nil)
	c := ctx.Allocate(nil)
	dst := ctx.Allocate(nil)

	ctx.Add(ir.NumberConstInstr(a, 1))
	ctx.Add(ir.CopyInstr(b, a))
	ctx.Add(ir.CopyInstr(c, b))
	ctx.Add(ir.CopyInstr(dst, c))
	ctx.PhaseFinished()

	require.NoError(t, reuse.Run(ctx))
	instrs := ctx.Instructions()
	last := instrs[len(instrs)-1]
	assert.Equal(t, a, last.Operands[1], "reads of the chain collapse to the earliest-allocated register")
}

func TestImpureCallIsNeverDeduped(t *testing.T) {
	ctx := gen.New()
	arg := ctx.Allocate(nil)
	sig := &ir.RegisterSignature{Args: []ir.ArgSig{{Mode: ir.In, FlatPositions: []int{0}}}}

	ctx.Add(ir.NumberConstInstr(arg, 1))
	ctx.Add(ir.CallInstr("print", true, []regs.Register{arg}, sig))
	ctx.Add(ir.CallInstr("print", true, []regs.Register{arg}, sig))
	ctx.PhaseFinished()

	require.NoError(t, reuse.Run(ctx))
	instrs := ctx.Instructions()
	count := 0
	for _, in := range instrs {
		if in.Op == ir.Call {
			count++
		}
	}
	assert.Equal(t, 2, count, "impure calls are never collapsed into one another")
}
