// Package dealias implements the dealias pass (spec §4.7): every
// Alias(a,b) instruction is dropped and every subsequent read of a is
// rewritten to a's representative (b, or b's own representative).
// Writes are never rewritten — a register being written to is a
// location, not a value, and linearize already allocated its replacement
// correctly.
package dealias

import (
	"github.com/dauphin-lang/dauphin/internal/gen"
	"github.com/dauphin-lang/dauphin/internal/ir"
	"github.com/dauphin-lang/dauphin/internal/regs"
)

// Run eliminates every Alias instruction and commits via PhaseFinished.
func Run(ctx *gen.Context) error {
	rep := make(map[regs.Register]regs.Register)
	resolve := func(r regs.Register) regs.Register {
		for {
			next, ok := rep[r]
			if !ok {
				return r
			}
			r = next
		}
	}

	var out []*ir.Instruction
	for _, in := range ctx.Instructions() {
		if in.Op == ir.Alias {
			rep[in.Operands[0]] = resolve(in.Operands[1])
			continue
		}

		writeOnly := make(map[regs.Register]bool, len(in.OutOnly))
		for _, r := range in.OutOnly {
			writeOnly[r] = true
		}

		rewritten := *in
		if len(in.Operands) > 0 {
			operands := make([]regs.Register, len(in.Operands))
			for i, r := range in.Operands {
				if writeOnly[r] {
					operands[i] = r
				} else {
					operands[i] = resolve(r)
				}
			}
			rewritten.Operands = operands
		}
		out = append(out, &rewritten)
	}

	for _, in := range out {
		ctx.Add(in)
	}
	ctx.PhaseFinished()
	return nil
}
