// Package reuse implements the register-reuse pass (spec §4.10): two
// subpasses — replace-with-copies (common subexpression elimination via
// a value-identity cache) and use-earliest (collapsing Copy-chains to
// their earliest-allocated representative) — iterated until neither
// changes the program.
package reuse

import (
	"fmt"

	"github.com/dauphin-lang/dauphin/internal/gen"
	"github.com/dauphin-lang/dauphin/internal/ir"
	"github.com/dauphin-lang/dauphin/internal/regs"
)

// Run iterates the two subpasses to a fixed point and commits via
// PhaseFinished.
func Run(ctx *gen.Context) error {
	instrs := ctx.Instructions()
	for i := 0; i < 64; i++ {
		next, changed1 := replaceWithCopies(instrs)
		next, changed2 := useEarliest(next)
		instrs = next
		if !changed1 && !changed2 {
			break
		}
	}
	for _, in := range instrs {
		ctx.Add(in)
	}
	ctx.PhaseFinished()
	return nil
}

// replaceWithCopies gives every pure instruction's output a value
// identity (itype + payload + input identities); an instruction whose
// sole output's identity was already computed by a still-assigned
// register is replaced with a Copy from that register. Impure Calls and
// line-dependent instructions always get a fresh, never-matching
// identity (original_source's UnknownValue).
func replaceWithCopies(instrs []*ir.Instruction) ([]*ir.Instruction, bool) {
	valueOf := make(map[regs.Register]string)
	seen := make(map[string]regs.Register)
	counter := 0
	changed := false

	out := make([]*ir.Instruction, 0, len(instrs))
	for _, in := range instrs {
		writeOnly := make(map[regs.Register]bool, len(in.OutOnly))
		for _, r := range in.OutOnly {
			writeOnly[r] = true
		}

		if !pureSingleOutput(in) {
			out = append(out, in)
			for _, r := range in.Out {
				valueOf[r] = fmt.Sprintf("unknown#%d", counter)
				counter++
			}
			continue
		}

		var inputs []string
		for _, r := range in.Operands {
			if writeOnly[r] {
				continue
			}
			if id, ok := valueOf[r]; ok {
				inputs = append(inputs, id)
			} else {
				inputs = append(inputs, fmt.Sprintf("reg%d", r))
			}
		}
		key := fmt.Sprintf("%s|%g|%v|%q|%x|%v|%s|%d|%s|%v", in.Op, in.Number, in.Boolean, in.Str, in.Bin, in.Indexes, in.Name, in.Branch, in.Field, inputs)

		dst := in.Out[0]
		if existing, ok := seen[key]; ok && existing != dst && valueOf[existing] == key {
			out = append(out, ir.CopyInstr(dst, existing))
			valueOf[dst] = key
			changed = true
			continue
		}
		seen[key] = dst
		valueOf[dst] = key
		out = append(out, in)
	}
	return out, changed
}

// pureSingleOutput reports whether in is side-effect-free (not an
// impure Call, not line-dependent) and has exactly one, write-only
// output, the shape replace-with-copies can safely dedup.
func pureSingleOutput(in *ir.Instruction) bool {
	switch in.Op {
	case ir.LineNumber, ir.Pause:
		return false
	case ir.Call:
		if in.Impure {
			return false
		}
	}
	if len(in.Out) != 1 || len(in.OutOnly) != 1 || in.Out[0] != in.OutOnly[0] {
		return false
	}
	return true
}

// useEarliest maintains register equivalence classes joined by Copy;
// every read is rewritten to its class's earliest-allocated
// representative, and a class is invalidated (its members revert to
// themselves) the instant any of its representatives is written.
func useEarliest(instrs []*ir.Instruction) ([]*ir.Instruction, bool) {
	repOf := make(map[regs.Register]regs.Register)
	members := make(map[regs.Register][]regs.Register)
	changed := false

	find := func(r regs.Register) regs.Register {
		if rep, ok := repOf[r]; ok {
			return rep
		}
		return r
	}
	invalidate := func(w regs.Register) {
		for _, m := range members[w] {
			delete(repOf, m)
		}
		delete(members, w)
		if rep, ok := repOf[w]; ok {
			list := members[rep]
			for i, m := range list {
				if m == w {
					members[rep] = append(list[:i], list[i+1:]...)
					break
				}
			}
			delete(repOf, w)
		}
	}

	out := make([]*ir.Instruction, 0, len(instrs))
	for _, in := range instrs {
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
					rep := find(r)
					if rep != r {
						changed = true
					}
					operands[i] = rep
				}
			}
			rewritten.Operands = operands
		}

		for _, w := range in.Out {
			invalidate(w)
		}

		if rewritten.Op == ir.Copy {
			dst, src := rewritten.Operands[0], rewritten.Operands[1]
			rep := src
			if dst < rep {
				rep = dst
			}
			repOf[dst] = rep
			if rep != src {
				repOf[src] = rep
				members[rep] = append(members[rep], src)
			}
			members[rep] = append(members[rep], dst)
		}

		out = append(out, &rewritten)
	}
	return out, changed
}
