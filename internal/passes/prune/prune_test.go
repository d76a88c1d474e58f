package prune_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dauphin-lang/dauphin/internal/gen"
	"github.com/dauphin-lang/dauphin/internal/ir"
	"github.com/dauphin-lang/dauphin/internal/passes/prune"
	"github.com/dauphin-lang/dauphin/internal/regs"
)

func TestDeadComputationIsDropped(t *testing.T) {
	ctx := gen.New()
	dead := ctx.Allocate(nil)
	live := ctx.Allocate(nil)

	ctx.Add(ir.NumberConstInstr(dead, 1))
	ctx.Add(ir.NumberConstInstr(live, 2))
	ctx.Add(ir.PauseInstr(false))
	ctx.PhaseFinished()

	// live is never read by anything kept, so only the Pause (self-
	// justifying) survives; both NumberConsts are dead.
	require.NoError(t, prune.Run(ctx))
	instrs := ctx.Instructions()
	require.Len(t, instrs, 1)
	assert.Equal(t, ir.Pause, instrs[0].Op)
}

func TestTransitiveLivenessKeepsWholeChain(t *testing.T) {
	ctx := gen.New()
	a := ctx.Allocate(nil)
	b := ctx.Allocate(nil)
	c := ctx.Allocate(nil)

	ctx.Add(ir.NumberConstInstr(a, 1))
	ctx.Add(ir.CopyInstr(b, a))
	ctx.Add(ir.CopyInstr(c, b))
	sig := &ir.RegisterSignature{Args: []ir.ArgSig{{Mode: ir.In, FlatPositions: []int{0}}}}
	ctx.Add(ir.CallInstr("print", true, []regs.Register{c}, sig))
	ctx.PhaseFinished()

	// print is impure so it's self-justifying, which makes c live, which
	// makes b live, which makes a live: every instruction in the chain
	// survives even though nothing but the final impure call forced it.
	require.NoError(t, prune.Run(ctx))
	instrs := ctx.Instructions()
	require.Len(t, instrs, 4)
}

func TestImpureCallIsSelfJustifying(t *testing.T) {
	ctx := gen.New()
	arg := ctx.Allocate(nil)
	ctx.Add(ir.NumberConstInstr(arg, 1))
	sig := &ir.RegisterSignature{Args: []ir.ArgSig{{Mode: ir.In, FlatPositions: []int{0}}}}
	ctx.Add(ir.CallInstr("print", true, []regs.Register{arg}, sig))
	ctx.PhaseFinished()

	require.NoError(t, prune.Run(ctx))
	instrs := ctx.Instructions()
	require.Len(t, instrs, 2, "the impure call and the const feeding it both survive")
}
