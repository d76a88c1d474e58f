// Package prune implements the prune pass (spec §4.9): liveness is
// computed backwards from the final Pause, from every self-justifying
// (impure Call) instruction, and from every LineNumber/forced Pause. An
// instruction is kept iff any of its outputs is live or it is itself
// self-justifying; the sweep repeats to a fixed point.
package prune

import (
	"github.com/dauphin-lang/dauphin/internal/gen"
	"github.com/dauphin-lang/dauphin/internal/ir"
	"github.com/dauphin-lang/dauphin/internal/regs"
)

// Run drops dead instructions and commits via PhaseFinished.
func Run(ctx *gen.Context) error {
	instrs := ctx.Instructions()
	for {
		kept := sweep(instrs)
		if len(kept) == len(instrs) {
			instrs = kept
			break
		}
		instrs = kept
	}
	for _, in := range instrs {
		ctx.Add(in)
	}
	ctx.PhaseFinished()
	return nil
}

func sweep(instrs []*ir.Instruction) []*ir.Instruction {
	live := make(map[regs.Register]bool)
	keep := make([]bool, len(instrs))

	for i := len(instrs) - 1; i >= 0; i-- {
		in := instrs[i]
		anyOutLive := false
		for _, r := range in.Out {
			if live[r] {
				anyOutLive = true
				break
			}
		}
		if !in.SelfJustifying() && !anyOutLive {
			keep[i] = false
			continue
		}
		keep[i] = true

		for _, r := range in.Out {
			delete(live, r)
		}

		writeOnly := make(map[regs.Register]bool, len(in.OutOnly))
		for _, r := range in.OutOnly {
			writeOnly[r] = true
		}
		for _, r := range in.Operands {
			if !writeOnly[r] {
				live[r] = true
			}
		}
	}

	out := make([]*ir.Instruction, 0, len(instrs))
	for i, in := range instrs {
		if keep[i] {
			out = append(out, in)
		}
	}
	return out
}
