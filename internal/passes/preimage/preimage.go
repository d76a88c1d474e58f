// Package preimage implements the compile-run / pre-image pass (spec
// §4.8): walk the instruction stream in order, and for every instruction
// whose triggered command can be evaluated with fully-known inputs,
// replace it with the constants its execution produced (Replace);
// otherwise keep it as-is and mark its outputs unknown from here on
// (Keep). Values flow through a preimagevm.Store; errors raised during
// evaluation are annotated with the most recently seen LineNumber,
// mirroring how a runtime failure would be reported.
package preimage

import (
	"github.com/dauphin-lang/dauphin/internal/dtypes"
	"github.com/dauphin-lang/dauphin/internal/errors"
	"github.com/dauphin-lang/dauphin/internal/gen"
	"github.com/dauphin-lang/dauphin/internal/ir"
	"github.com/dauphin-lang/dauphin/internal/preimagevm"
	"github.com/dauphin-lang/dauphin/internal/registry"
	"github.com/dauphin-lang/dauphin/internal/regs"
)

// Run evaluates every instruction it can against suite, given the
// register types ctx already carries, and commits the rewritten stream
// via PhaseFinished. allowReplace gates whether folding is permitted at
// all: the pipeline calls preimage once with allowReplace=true before
// reuse-regs, and must never call it again afterwards (spec §4.8:
// folding after reuse-regs has already coalesced registers would corrupt
// the coalescing); a second, disallowed attempt is a pass-logic error
// rather than a silent no-op.
func Run(ctx *gen.Context, suite *registry.Suite, allowReplace bool) error {
	store := preimagevm.New()
	var out []*ir.Instruction

	for _, in := range ctx.Instructions() {
		emitted, err := step(ctx, suite, store, in, allowReplace)
		if err != nil {
			return err
		}
		out = append(out, emitted...)
	}

	for _, in := range out {
		ctx.Add(in)
	}
	ctx.PhaseFinished()
	return nil
}

func step(ctx *gen.Context, suite *registry.Suite, store *preimagevm.Store, in *ir.Instruction, allowReplace bool) ([]*ir.Instruction, error) {
	switch in.Op {
	case ir.LineNumber:
		store.NoteLine(in.Pos.Line)
		return []*ir.Instruction{in}, nil

	case ir.NumberConst:
		store.SetOne(in.Out[0], []any{in.Number})
		return []*ir.Instruction{in}, nil
	case ir.BooleanConst:
		store.SetOne(in.Out[0], []any{in.Boolean})
		return []*ir.Instruction{in}, nil
	case ir.StringConst:
		store.SetOne(in.Out[0], []any{in.Str})
		return []*ir.Instruction{in}, nil
	case ir.BytesConst:
		store.SetOne(in.Out[0], []any{in.Bin})
		return []*ir.Instruction{in}, nil
	case ir.Const:
		vals := make([]any, len(in.Indexes))
		for i, n := range in.Indexes {
			vals[i] = float64(n)
		}
		store.SetOne(in.Out[0], vals)
		return []*ir.Instruction{in}, nil

	case ir.Pause:
		return []*ir.Instruction{in}, nil
	}

	ct, found := lookup(suite, in)
	if !found || (in.Op == ir.Call && in.Impure) {
		store.Invalidate(in.Out...)
		return []*ir.Instruction{in}, nil
	}

	writeOnly := make(map[regs.Register]bool, len(in.OutOnly))
	for _, r := range in.OutOnly {
		writeOnly[r] = true
	}
	var reads []regs.Register
	for _, r := range in.Operands {
		if !writeOnly[r] {
			reads = append(reads, r)
		}
	}

	if !store.Known(reads...) {
		store.Invalidate(in.Out...)
		return []*ir.Instruction{in}, nil
	}

	results, ok, err := ct.Eval(store.Args(reads...))
	if err != nil {
		ce := errors.New(errors.KindPreImage, "%s: %v", in.Op, err)
		return nil, store.Annotate(ce)
	}
	if !ok {
		store.Invalidate(in.Out...)
		return []*ir.Instruction{in}, nil
	}
	if !allowReplace {
		return nil, store.Annotate(errors.New(errors.KindPassLogic,
			"%s could be folded but replacement is no longer permitted at this point in the pipeline", in.Op))
	}

	store.Set(in.Out, results)

	var emitted []*ir.Instruction
	for i, dst := range in.Out {
		base := dtypes.Base{Kind: dtypes.Number}
		if t, ok := ctx.TypeOf(dst); ok {
			base = t.BaseOf()
		}
		emitted = append(emitted, emitConst(ctx, dst, base, results[i])...)
	}
	return emitted, nil
}

// lookup resolves the CommandType an instruction triggers: built-ins by
// their wire supertype, library Calls by name.
func lookup(suite *registry.Suite, in *ir.Instruction) (registry.CommandType, bool) {
	if in.Op == ir.Call {
		ct, _, ok := suite.ForIdentifier(in.Name)
		return ct, ok
	}
	super, ok := in.Op.SuperType()
	if !ok {
		return nil, false
	}
	ct, _, ok := suite.ForInstruction(super)
	return ct, ok
}

// emitConst rebuilds a folded value as a Nil+Append sequence for
// anything but a single scalar. It never emits Const(dst,indexes), even
// when every value is a non-negative integer.
func emitConst(ctx *gen.Context, dst regs.Register, base dtypes.Base, vals []any) []*ir.Instruction {
	if len(vals) == 0 {
		return []*ir.Instruction{ir.NilInstr(dst)}
	}
	if len(vals) == 1 {
		return []*ir.Instruction{singleConst(dst, base, vals[0])}
	}

	hint := dtypes.NewBase(base)
	out := []*ir.Instruction{ir.NilInstr(dst)}
	for _, v := range vals {
		tmp := ctx.Allocate(&hint)
		out = append(out, singleConst(tmp, base, v), ir.AppendInstr(dst, tmp))
	}
	return out
}

func singleConst(dst regs.Register, base dtypes.Base, v any) *ir.Instruction {
	switch base.Kind {
	case dtypes.Boolean:
		return ir.BooleanConstInstr(dst, v.(bool))
	case dtypes.String:
		return ir.StringConstInstr(dst, v.(string))
	case dtypes.Bytes:
		return ir.BytesConstInstr(dst, v.([]byte))
	default:
		return ir.NumberConstInstr(dst, v.(float64))
	}
}
