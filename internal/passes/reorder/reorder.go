// Package reorder implements the optional final pause/reorder step (spec
// §9's "timing trials"): it stamps every instruction with internal/timing's
// flat per-instruction cost estimate and collapses a Pause that is
// immediately followed by another Pause with no intervening work, since
// the second adds nothing an interpreter would observe.
package reorder

import (
	"github.com/dauphin-lang/dauphin/internal/gen"
	"github.com/dauphin-lang/dauphin/internal/ir"
	"github.com/dauphin-lang/dauphin/internal/timing"
)

// Run stamps costs and merges redundant adjacent Pauses, committing via
// PhaseFinished.
func Run(ctx *gen.Context) error {
	instrs := ctx.Instructions()
	var out []*ir.Instruction
	for i, in := range instrs {
		if in.Op == ir.Pause && i > 0 && instrs[i-1].Op == ir.Pause && !in.Forced && !instrs[i-1].Forced {
			continue
		}
		stamped := *in
		stamped.Cost = timing.Estimate(timing.SizeHints{})
		out = append(out, &stamped)
	}
	for _, in := range out {
		ctx.Add(in)
	}
	ctx.PhaseFinished()
	return nil
}
