// Package linearize implements the linearize pass (spec §4.6): it
// eliminates vec(...) nesting, replacing every register of depth d with
// 2d+1 flat registers (one (offset,length) pair per level plus one data
// register holding the base type), so every later pass only ever
// operates on depth-0 registers.
//
// The per-itype transform rules below follow the original
// implementation's generate/linearize.rs; a few of them (Square's
// re-gather step, FilterSquare, and At, which becomes one SeqAt over the
// top length register at every depth) are under-specified at the
// instruction-count level, so this file commits to one concrete,
// internally consistent encoding for each.
package linearize

import (
	"fmt"

	"github.com/dauphin-lang/dauphin/internal/dtypes"
	"github.com/dauphin-lang/dauphin/internal/gen"
	"github.com/dauphin-lang/dauphin/internal/ir"
	"github.com/dauphin-lang/dauphin/internal/regs"
)

type level struct{ offset, length regs.Register }

// linearization is the flat register group backing one depth>=1 register:
// one (offset,length) pair per level (levels[0] is outermost/top) plus
// one data register holding the base type's values.
type linearization struct {
	levels []level
	data   regs.Register
}

func numberType() dtypes.MemberType {
	return dtypes.NewBase(dtypes.Base{Kind: dtypes.Number})
}

// Run replaces every depth>=1 register with its linearization and
// rewrites every instruction accordingly, committing via PhaseFinished.
func Run(ctx *gen.Context) error {
	lins := make(map[regs.Register]*linearization)
	for r, t := range ctx.Types() {
		if t.Depth() >= 1 {
			lins[r] = allocate(ctx, t)
		}
	}

	var out []*ir.Instruction
	for _, in := range ctx.Instructions() {
		rewritten, err := rewriteInstr(ctx, lins, in)
		if err != nil {
			return err
		}
		out = append(out, rewritten...)
	}
	for _, in := range out {
		ctx.Add(in)
	}
	ctx.PhaseFinished()
	return nil
}

func allocate(ctx *gen.Context, t dtypes.MemberType) *linearization {
	depth := t.Depth()
	lin := &linearization{levels: make([]level, depth)}
	numT := numberType()
	for i := 0; i < depth; i++ {
		lin.levels[i] = level{offset: ctx.Allocate(&numT), length: ctx.Allocate(&numT)}
	}
	baseT := dtypes.NewBase(t.BaseOf())
	lin.data = ctx.Allocate(&baseT)
	return lin
}

// lowerLenReg returns the register whose runtime length represents the
// size of the next level down from lvl: the (lvl+1)'s length register,
// or the data register when lvl is the bottommost level.
func lowerLenReg(lin *linearization, lvl int) regs.Register {
	if lvl+1 < len(lin.levels) {
		return lin.levels[lvl+1].length
	}
	return lin.data
}

func rewriteInstr(ctx *gen.Context, lins map[regs.Register]*linearization, in *ir.Instruction) ([]*ir.Instruction, error) {
	switch in.Op {
	case ir.Nil:
		if lin, ok := lins[in.Operands[0]]; ok {
			return nilLinear(lin), nil
		}

	case ir.Copy, ir.Alias:
		dstLin, dstOK := lins[in.Operands[0]]
		srcLin, srcOK := lins[in.Operands[1]]
		if dstOK && srcOK {
			mk := ir.CopyInstr
			if in.Op == ir.Alias {
				mk = ir.AliasInstr
			}
			return copyLikeLinear(dstLin, srcLin, mk), nil
		}

	case ir.Append:
		dstLin, dstOK := lins[in.Operands[0]]
		srcLin, srcOK := lins[in.Operands[1]]
		if dstOK && srcOK {
			return appendLinear(ctx, dstLin, srcLin), nil
		}

	case ir.RefSquare:
		dstLin, dstOK := lins[in.Operands[0]]
		srcLin, srcOK := lins[in.Operands[1]]
		if dstOK && srcOK {
			return copyLikeLinear(dstLin, srcLin, ir.AliasInstr), nil
		}

	case ir.Square:
		if srcLin, ok := lins[in.Operands[1]]; ok {
			return squareLinear(ctx, lins, in.Operands[0], srcLin)
		}

	case ir.Star:
		if dstLin, ok := lins[in.Operands[0]]; ok {
			return starLinear(ctx, lins, dstLin, in.Operands[1]), nil
		}

	case ir.Filter:
		dstLin, dstOK := lins[in.Operands[0]]
		srcLin, srcOK := lins[in.Operands[1]]
		if dstOK && srcOK {
			return filterLinear(dstLin, srcLin, in.Operands[2]), nil
		}

	case ir.At:
		if srcLin, ok := lins[in.Operands[1]]; ok {
			return []*ir.Instruction{ir.SeqAtInstr(in.Operands[0], topCountReg(srcLin))}, nil
		}

	case ir.FilterSquare:
		if srcLin, ok := lins[in.Operands[1]]; ok {
			return filterSquareLinear(ctx, srcLin, in.Operands[0], in.Operands[2]), nil
		}

	case ir.Length:
		if srcLin, ok := lins[in.Operands[1]]; ok {
			return []*ir.Instruction{ir.LengthInstr(in.Operands[0], topCountReg(srcLin))}, nil
		}

	case ir.Call:
		if callTouchesLinear(in, lins) {
			return flattenCall(in, lins), nil
		}
		return []*ir.Instruction{in}, nil

	case ir.List:
		if dstLin, ok := lins[in.Operands[0]]; ok {
			return listLinear(ctx, dstLin, in.Operands[1:], lins), nil
		}
	}

	if instructionTouchesLinear(in, lins) {
		return nil, fmt.Errorf("linearize: no transform rule for %s on a composite register", in.Op)
	}
	return []*ir.Instruction{in}, nil
}

func instructionTouchesLinear(in *ir.Instruction, lins map[regs.Register]*linearization) bool {
	for _, r := range in.Operands {
		if _, ok := lins[r]; ok {
			return true
		}
	}
	return false
}

func callTouchesLinear(in *ir.Instruction, lins map[regs.Register]*linearization) bool {
	return instructionTouchesLinear(in, lins)
}

// topCountReg returns lin's top-level length register (or lin's data
// register when lin has no levels); its element count is the number of
// top-level groups, which callers read with Length.
func topCountReg(lin *linearization) regs.Register {
	if len(lin.levels) > 0 {
		return lin.levels[0].length
	}
	return lin.data
}

func nilLinear(lin *linearization) []*ir.Instruction {
	var out []*ir.Instruction
	for _, lv := range lin.levels {
		out = append(out, ir.NilInstr(lv.offset), ir.NilInstr(lv.length))
	}
	out = append(out, ir.NilInstr(lin.data))
	return out
}

func copyLikeLinear(dst, src *linearization, mk func(a, b regs.Register) *ir.Instruction) []*ir.Instruction {
	var out []*ir.Instruction
	for i := range dst.levels {
		out = append(out, mk(dst.levels[i].offset, src.levels[i].offset))
		out = append(out, mk(dst.levels[i].length, src.levels[i].length))
	}
	out = append(out, mk(dst.data, src.data))
	return out
}

// appendLinear implements Append(dst,src): every level, from the top
// down, appends src's whole (offset,length) array onto dst's, with
// src's offsets shifted by the current size of the corresponding
// lower layer in dst (so they keep pointing into the right place once
// the data arrays below are concatenated); lengths carry over
// unshifted. Finally the data registers themselves are appended. This
// mirrors push_top/push_copy_level's copy-and-shift-the-whole-array
// approach, applied uniformly to every level rather than synthesizing
// a single new entry at the top.
func appendLinear(ctx *gen.Context, dst, src *linearization) []*ir.Instruction {
	var out []*ir.Instruction
	numT := numberType()

	for lvl := 0; lvl < len(dst.levels); lvl++ {
		shift := ctx.Allocate(&numT)
		out = append(out, ir.LengthInstr(shift, lowerLenReg(dst, lvl)))

		shiftedOff := ctx.Allocate(&numT)
		out = append(out, ir.CopyInstr(shiftedOff, src.levels[lvl].offset))
		out = append(out, ir.AddInstr(shiftedOff, shift))

		out = append(out, ir.AppendInstr(dst.levels[lvl].offset, shiftedOff))
		out = append(out, ir.AppendInstr(dst.levels[lvl].length, src.levels[lvl].length))
	}

	out = append(out, ir.AppendInstr(dst.data, src.data))
	return out
}

// squareLinear implements Square(dst,src) (unwrap one level): every
// layer below the top is copied down by one position, and the new top
// layer is re-gathered from what was src's second layer (or data, at
// depth 1) using src's original top (offset,length) pair as the
// selector.
func squareLinear(ctx *gen.Context, lins map[regs.Register]*linearization, dst regs.Register, src *linearization) ([]*ir.Instruction, error) {
	d := len(src.levels)
	if d == 0 {
		return nil, fmt.Errorf("linearize: Square on a depth-0 register")
	}
	if d == 1 {
		return []*ir.Instruction{ir.SeqFilterInstr(dst, src.data, src.levels[0].offset, src.levels[0].length)}, nil
	}
	dstLin, ok := lins[dst]
	if !ok {
		return nil, fmt.Errorf("linearize: Square destination has no linearization")
	}
	var out []*ir.Instruction
	for k := 0; k < d-1; k++ {
		out = append(out, ir.CopyInstr(dstLin.levels[k].offset, src.levels[k+1].offset))
		out = append(out, ir.CopyInstr(dstLin.levels[k].length, src.levels[k+1].length))
	}
	out = append(out, ir.CopyInstr(dstLin.data, src.data))
	out = append(out, ir.SeqFilterInstr(dstLin.levels[0].offset, dstLin.levels[0].offset, src.levels[0].offset, src.levels[0].length))
	out = append(out, ir.SeqFilterInstr(dstLin.levels[0].length, dstLin.levels[0].length, src.levels[0].offset, src.levels[0].length))
	return out, nil
}

// starLinear implements Star(dst,src) (wrap one level): src's layers
// shift up by one position, and the new top layer gets a single
// (0, len(src)) entry spanning the whole of src.
func starLinear(ctx *gen.Context, lins map[regs.Register]*linearization, dst *linearization, src regs.Register) []*ir.Instruction {
	var out []*ir.Instruction
	numT := numberType()

	if srcLin, ok := lins[src]; ok {
		for k := 1; k < len(dst.levels); k++ {
			out = append(out, ir.CopyInstr(dst.levels[k].offset, srcLin.levels[k-1].offset))
			out = append(out, ir.CopyInstr(dst.levels[k].length, srcLin.levels[k-1].length))
		}
		out = append(out, ir.CopyInstr(dst.data, srcLin.data))
		cnt := ctx.Allocate(&numT)
		out = append(out, ir.LengthInstr(cnt, topCountReg(srcLin)))
		out = append(out, ir.NumberConstInstr(dst.levels[0].offset, 0))
		out = append(out, ir.CopyInstr(dst.levels[0].length, cnt))
		return out
	}

	out = append(out, ir.CopyInstr(dst.data, src))
	cnt := ctx.Allocate(&numT)
	out = append(out, ir.LengthInstr(cnt, src))
	out = append(out, ir.NumberConstInstr(dst.levels[0].offset, 0))
	out = append(out, ir.CopyInstr(dst.levels[0].length, cnt))
	return out
}

// filterLinear implements Filter(dst,src,mask): only the top
// (offset,length) pair is filtered; lower layers and data are copied
// verbatim (spec §4.6).
func filterLinear(dst, src *linearization, mask regs.Register) []*ir.Instruction {
	var out []*ir.Instruction
	for i := 1; i < len(dst.levels); i++ {
		out = append(out, ir.CopyInstr(dst.levels[i].offset, src.levels[i].offset))
		out = append(out, ir.CopyInstr(dst.levels[i].length, src.levels[i].length))
	}
	out = append(out, ir.CopyInstr(dst.data, src.data))
	out = append(out, ir.FilterInstr(dst.levels[0].offset, src.levels[0].offset, mask))
	out = append(out, ir.FilterInstr(dst.levels[0].length, src.levels[0].length, mask))
	return out
}

// filterSquareLinear implements FilterSquare(dst,src,mask): the top
// (offset,length) pair is filtered by mask, then gathered with Run into
// a flat position list.
func filterSquareLinear(ctx *gen.Context, src *linearization, dst, mask regs.Register) []*ir.Instruction {
	numT := numberType()
	filteredOff := ctx.Allocate(&numT)
	filteredLen := ctx.Allocate(&numT)
	return []*ir.Instruction{
		ir.FilterInstr(filteredOff, src.levels[0].offset, mask),
		ir.FilterInstr(filteredLen, src.levels[0].length, mask),
		ir.RunInstr(dst, filteredOff, filteredLen),
	}
}

// listLinear implements List(dst, elems): a vector literal. dst starts
// nil, then each element is pushed on in turn as a single new group,
// one depth shallower than dst itself (spec's vec(...) construction;
// original_source's codegen builds the same shape as Nil followed by a
// run of single-item Push instructions).
func listLinear(ctx *gen.Context, dst *linearization, elems []regs.Register, lins map[regs.Register]*linearization) []*ir.Instruction {
	out := nilLinear(dst)
	for _, e := range elems {
		out = append(out, pushOneLinear(ctx, dst, e, lins)...)
	}
	return out
}

// pushOneLinear pushes a single element (one level shallower than dst)
// onto dst as one new top-level group: ports push_top/push_copy_level
// from original_source's generate/linearize.rs, specialized to a single
// pushed item rather than appendLinear's whole-array merge.
func pushOneLinear(ctx *gen.Context, dst *linearization, elem regs.Register, lins map[regs.Register]*linearization) []*ir.Instruction {
	var out []*ir.Instruction
	numT := numberType()

	if elemLin, ok := lins[elem]; ok {
		newOff := ctx.Allocate(&numT)
		out = append(out, ir.LengthInstr(newOff, lowerLenReg(dst, 0)))
		newLen := ctx.Allocate(&numT)
		out = append(out, ir.LengthInstr(newLen, topCountReg(elemLin)))
		out = append(out, ir.AppendInstr(dst.levels[0].offset, newOff))
		out = append(out, ir.AppendInstr(dst.levels[0].length, newLen))

		for lvl := 1; lvl < len(dst.levels); lvl++ {
			shift := ctx.Allocate(&numT)
			out = append(out, ir.LengthInstr(shift, lowerLenReg(dst, lvl)))

			shiftedOff := ctx.Allocate(&numT)
			out = append(out, ir.CopyInstr(shiftedOff, elemLin.levels[lvl-1].offset))
			out = append(out, ir.AddInstr(shiftedOff, shift))

			out = append(out, ir.AppendInstr(dst.levels[lvl].offset, shiftedOff))
			out = append(out, ir.AppendInstr(dst.levels[lvl].length, elemLin.levels[lvl-1].length))
		}

		out = append(out, ir.AppendInstr(dst.data, elemLin.data))
		return out
	}

	// elem is a depth-0 scalar: it contributes exactly one value to
	// dst.data and a matching single-length group at the top.
	newOff := ctx.Allocate(&numT)
	out = append(out, ir.LengthInstr(newOff, lowerLenReg(dst, 0)))
	out = append(out, ir.AppendInstr(dst.levels[0].offset, newOff))
	one := ctx.Allocate(&numT)
	out = append(out, ir.NumberConstInstr(one, 1))
	out = append(out, ir.AppendInstr(dst.levels[0].length, one))
	out = append(out, ir.AppendInstr(dst.data, elem))
	return out
}

// flattenCall rewrites a Call's operand list in signature order: for
// every linearized argument, its data register first, then each level's
// (offset,length) pair (spec §4.6's "Call: flatten operand registers").
func flattenCall(in *ir.Instruction, lins map[regs.Register]*linearization) []*ir.Instruction {
	var operands []regs.Register
	var args []ir.ArgSig
	pos := 0
	for i, r := range in.Operands {
		old := in.Signature.Args[i]
		if lin, ok := lins[r]; ok {
			flat := []int{pos}
			operands = append(operands, lin.data)
			pos++
			for _, lv := range lin.levels {
				operands = append(operands, lv.offset, lv.length)
				flat = append(flat, pos, pos+1)
				pos += 2
			}
			args = append(args, ir.ArgSig{Mode: old.Mode, Base: old.Base, Depth: old.Depth, FlatPositions: flat})
		} else {
			operands = append(operands, r)
			args = append(args, ir.ArgSig{Mode: old.Mode, Base: old.Base, Depth: old.Depth, FlatPositions: []int{pos}})
			pos++
		}
	}
	sig := &ir.RegisterSignature{Args: args}
	return []*ir.Instruction{ir.CallInstr(in.Name, in.Impure, operands, sig)}
}
