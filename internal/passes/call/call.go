// Package call implements the call-expansion pass (spec §4.4): it
// replaces each Proc/Operator instruction with either an inlined
// procedure body (register-renamed to the caller's registers) or, when
// no user-defined body exists, a library Call targeting the command
// registry. After this pass no Proc or Operator instruction remains.
package call

import (
	"fmt"

	"github.com/dauphin-lang/dauphin/internal/defs"
	"github.com/dauphin-lang/dauphin/internal/gen"
	"github.com/dauphin-lang/dauphin/internal/ir"
	"github.com/dauphin-lang/dauphin/internal/regs"
)

// Run expands every Proc/Operator in ctx.Instructions() and commits the
// result via ctx.PhaseFinished().
func Run(ctx *gen.Context, store *defs.Store) error {
	out, err := expand(ctx, store, ctx.Instructions(), 0)
	if err != nil {
		return err
	}
	for _, in := range out {
		ctx.Add(in)
	}
	ctx.PhaseFinished()
	return nil
}

func expand(ctx *gen.Context, store *defs.Store, instrs []*ir.Instruction, depth int) ([]*ir.Instruction, error) {
	if depth > 10000 {
		return nil, fmt.Errorf("call: procedure expansion too deep (possible recursion)")
	}
	var out []*ir.Instruction
	for _, in := range instrs {
		switch in.Op {
		case ir.Proc:
			expanded, err := expandProc(ctx, store, in, depth)
			if err != nil {
				return nil, err
			}
			out = append(out, expanded...)
		case ir.Operator:
			out = append(out, toLibraryCall(in, false))
		default:
			out = append(out, in)
		}
	}
	return out, nil
}

func expandProc(ctx *gen.Context, store *defs.Store, in *ir.Instruction, depth int) ([]*ir.Instruction, error) {
	decl, ok := store.Proc(in.Name)
	if !ok {
		return []*ir.Instruction{toLibraryCall(in, true)}, nil
	}
	if decl.Body == nil {
		return []*ir.Instruction{toLibraryCall(in, true)}, nil
	}
	raw, err := decl.Body()
	if err != nil {
		return nil, fmt.Errorf("call: expanding %q: %w", in.Name, err)
	}
	body, ok := raw.([]*ir.Instruction)
	if !ok {
		return nil, fmt.Errorf("call: procedure %q body is not an instruction list", in.Name)
	}
	if len(decl.Params) != len(in.Operands) {
		return nil, fmt.Errorf("call: %q expects %d arguments, got %d", in.Name, len(decl.Params), len(in.Operands))
	}
	// Map formal parameter registers directly to the caller's actual
	// argument registers, then renumber the body to use them.
	rename := make(map[regs.Register]regs.Register, len(decl.Params)+8)
	for i := range decl.Params {
		rename[regs.Register(i)] = in.Operands[i]
	}
	renamed := make([]*ir.Instruction, 0, len(body))
	for _, b := range body {
		renamed = append(renamed, renameInstruction(ctx, b, rename))
	}
	return expand(ctx, store, renamed, depth+1)
}

// renameInstruction rewrites operand registers through rename, minting a
// fresh register (and extending rename) for any register not already
// mapped, so nested procedure bodies never collide with caller registers.
func renameInstruction(ctx *gen.Context, in *ir.Instruction, rename map[regs.Register]regs.Register) *ir.Instruction {
	out := *in
	out.Operands = renameSlice(ctx, in.Operands, rename)
	out.Out = renameSlice(ctx, in.Out, rename)
	out.OutOnly = renameSlice(ctx, in.OutOnly, rename)
	return &out
}

func renameSlice(ctx *gen.Context, regsIn []regs.Register, rename map[regs.Register]regs.Register) []regs.Register {
	if regsIn == nil {
		return nil
	}
	out := make([]regs.Register, len(regsIn))
	for i, r := range regsIn {
		out[i] = renameReg(ctx, r, rename)
	}
	return out
}

func renameReg(ctx *gen.Context, r regs.Register, rename map[regs.Register]regs.Register) regs.Register {
	if mapped, ok := rename[r]; ok {
		return mapped
	}
	fresh := ctx.Allocate(nil)
	rename[r] = fresh
	return fresh
}

// toLibraryCall converts a surviving Proc/Operator into a Call targeting
// the command registry by name, with a trivial one-register-per-argument
// signature (linearize refines this once vector depths are known).
func toLibraryCall(in *ir.Instruction, impure bool) *ir.Instruction {
	sig := &ir.RegisterSignature{Args: make([]ir.ArgSig, len(in.Operands))}
	for i := range in.Operands {
		mode := ir.In
		for _, o := range in.Out {
			if o == in.Operands[i] {
				mode = ir.Out
			}
		}
		sig.Args[i] = ir.ArgSig{Mode: mode, FlatPositions: []int{i}}
	}
	return ir.CallInstr(in.Name, impure, in.Operands, sig)
}
