package call_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dauphin-lang/dauphin/internal/defs"
	"github.com/dauphin-lang/dauphin/internal/gen"
	"github.com/dauphin-lang/dauphin/internal/ir"
	"github.com/dauphin-lang/dauphin/internal/passes/call"
	"github.com/dauphin-lang/dauphin/internal/regs"
)

func TestOperatorAlwaysExpandsToAPureLibraryCall(t *testing.T) {
	store, err := defs.NewStore([]defs.RawDecl{&defs.Operator{Symbol: "plus", Ident: "plus"}})
	require.NoError(t, err)

	ctx := gen.New()
	a := ctx.Allocate(nil)
	b := ctx.Allocate(nil)
	dst := ctx.Allocate(nil)
	ctx.Add(ir.NumberConstInstr(a, 1))
	ctx.Add(ir.NumberConstInstr(b, 2))
	ctx.Add(ir.OperatorInstr("plus", dst, []regs.Register{a, b}))
	ctx.PhaseFinished()

	require.NoError(t, call.Run(ctx, store))

	var found *ir.Instruction
	for _, in := range ctx.Instructions() {
		if in.Op == ir.Call {
			found = in
		}
		assert.NotEqual(t, ir.Operator, in.Op)
	}
	require.NotNil(t, found)
	assert.False(t, found.Impure, "operator calls are always expanded as pure")
}

func TestProcWithNoMatchingDeclExpandsToAnImpureLibraryCall(t *testing.T) {
	store, err := defs.NewStore(nil)
	require.NoError(t, err)

	ctx := gen.New()
	arg := ctx.Allocate(nil)
	ctx.Add(ir.NumberConstInstr(arg, 1))
	ctx.Add(ir.ProcInstr("sink", []regs.Register{arg}, []ir.ArgMode{ir.In}))
	ctx.PhaseFinished()

	require.NoError(t, call.Run(ctx, store))

	var found *ir.Instruction
	for _, in := range ctx.Instructions() {
		if in.Op == ir.Call {
			found = in
		}
	}
	require.NotNil(t, found)
	assert.True(t, found.Impure, "a proc with no body falls through to an impure library call")
}

func TestProcWithBodyIsInlinedAndRenamedToCallerRegisters(t *testing.T) {
	bodyArg := regs.Register(0)
	bodyOut := regs.Register(1)
	store, err := defs.NewStore([]defs.RawDecl{
		&defs.ProcDecl{
			Name:   "double",
			Params: []defs.Param{{Name: "x"}},
			Body: func() (any, error) {
				return []*ir.Instruction{
					ir.OperatorInstr("plus", bodyOut, []regs.Register{bodyArg, bodyArg}),
				}, nil
			},
		},
	})
	require.NoError(t, err)

	ctx := gen.New()
	callerArg := ctx.Allocate(nil)
	ctx.Add(ir.NumberConstInstr(callerArg, 21))
	ctx.Add(ir.ProcInstr("double", []regs.Register{callerArg}, []ir.ArgMode{ir.In}))
	ctx.PhaseFinished()

	require.NoError(t, call.Run(ctx, store))

	var sawCall bool
	for _, in := range ctx.Instructions() {
		assert.NotEqual(t, ir.Proc, in.Op)
		assert.NotEqual(t, ir.Operator, in.Op)
		if in.Op == ir.Call {
			sawCall = true
			assert.Contains(t, in.Operands, callerArg, "the inlined body's formal parameter is renamed to the caller's register")
		}
	}
	assert.True(t, sawCall)
}
