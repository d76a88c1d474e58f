// Package simplify implements the simplify pass (spec §4.5): it
// eliminates user-defined structs and enums, processed in reverse
// topological order (most composite first), so later passes only ever
// see primitive types and vectors thereof.
package simplify

import (
	"fmt"

	"github.com/dauphin-lang/dauphin/internal/defs"
	"github.com/dauphin-lang/dauphin/internal/dtypes"
	"github.com/dauphin-lang/dauphin/internal/gen"
	"github.com/dauphin-lang/dauphin/internal/ir"
	"github.com/dauphin-lang/dauphin/internal/regs"
)

// replacement records the fresh registers a composite register was split
// into: one per struct member, or [discriminant, branch0, branch1, ...]
// for an enum.
type replacement struct {
	members []regs.Register
}

// Run eliminates every struct/enum name in store's topological order,
// reversed (largest composite first), then commits via PhaseFinished.
func Run(ctx *gen.Context, store *defs.Store) error {
	order := store.TopoOrder()
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}

	for _, name := range order {
		if err := processName(ctx, store, name); err != nil {
			return err
		}
	}
	return nil
}

func processName(ctx *gen.Context, store *defs.Store, name string) error {
	structDecl, isStruct := store.Struct(name)
	enumDecl, isEnum := store.Enum(name)
	if !isStruct && !isEnum {
		return nil
	}

	repl := make(map[regs.Register]*replacement)
	for r, t := range ctx.Types() {
		b := t.BaseOf()
		if !b.Kind.IsNamed() || b.Name != name {
			continue
		}
		if isStruct && b.Kind != dtypes.Struct {
			continue
		}
		if isEnum && b.Kind != dtypes.Enum {
			continue
		}
		depth := t.Depth()
		wrap := func(m dtypes.MemberType) dtypes.MemberType {
			for i := 0; i < depth; i++ {
				m = dtypes.NewVec(m)
			}
			return m
		}
		var members []regs.Register
		if isStruct {
			members = make([]regs.Register, len(structDecl.Members))
			for i, m := range structDecl.Members {
				wt := wrap(m.Type)
				members[i] = ctx.Allocate(&wt)
			}
		} else {
			members = make([]regs.Register, 1+len(enumDecl.Branches))
			numT := wrap(dtypes.NewBase(dtypes.Base{Kind: dtypes.Number}))
			members[0] = ctx.Allocate(&numT)
			for i, br := range enumDecl.Branches {
				wt := wrap(br.Type)
				members[1+i] = ctx.Allocate(&wt)
			}
		}
		repl[r] = &replacement{members: members}
	}
	if len(repl) == 0 {
		return nil
	}

	var out []*ir.Instruction
	for _, in := range ctx.Instructions() {
		rewritten, err := rewrite(ctx, name, structDecl, enumDecl, isEnum, repl, in)
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

func rewrite(ctx *gen.Context, name string, structDecl *defs.StructDecl, enumDecl *defs.EnumDecl, isEnum bool, repl map[regs.Register]*replacement, in *ir.Instruction) ([]*ir.Instruction, error) {
	switch in.Op {
	case ir.CtorStruct:
		if in.Name != name {
			break
		}
		rep := repl[in.Operands[0]]
		var out []*ir.Instruction
		for i, member := range rep.members {
			out = append(out, ir.CopyInstr(member, in.Operands[1+i]))
		}
		return out, nil

	case ir.SValue, ir.RefSValue:
		src := in.Operands[1]
		rep, ok := repl[src]
		if !ok || in.Name != name {
			break
		}
		idx := fieldIndex(structDecl, in.Field)
		if idx < 0 {
			return nil, fmt.Errorf("simplify: struct %q has no field %q", name, in.Field)
		}
		if in.Op == ir.SValue {
			return []*ir.Instruction{ir.CopyInstr(in.Operands[0], rep.members[idx])}, nil
		}
		return []*ir.Instruction{ir.AliasInstr(in.Operands[0], rep.members[idx])}, nil

	case ir.CtorEnum:
		if in.Name != name {
			break
		}
		rep := repl[in.Operands[0]]
		var out []*ir.Instruction
		discReg, payloadReg := rep.members[0], in.Operands[1]
		out = append(out, ir.NumberConstInstr(discReg, float64(in.Branch)))
		for i, br := range enumDecl.Branches {
			branchReg := rep.members[1+i]
			if i == in.Branch {
				out = append(out, ir.CopyInstr(branchReg, payloadReg))
			} else {
				out = append(out, buildNil(ctx, branchReg, br.Type)...)
			}
		}
		return out, nil

	case ir.EValue:
		src := in.Operands[1]
		rep, ok := repl[src]
		if !ok || in.Name != name {
			break
		}
		lit := ctx.Allocate(nil)
		mask := ctx.Allocate(nil)
		return []*ir.Instruction{
			ir.NumberConstInstr(lit, float64(in.Branch)),
			ir.NumEqInstr(mask, rep.members[0], lit),
			ir.FilterInstr(in.Operands[0], rep.members[1+in.Branch], mask),
		}, nil

	case ir.RefEValue:
		src := in.Operands[1]
		rep, ok := repl[src]
		if !ok || in.Name != name {
			break
		}
		return []*ir.Instruction{ir.AliasInstr(in.Operands[0], rep.members[1+in.Branch])}, nil

	case ir.FilterEValue:
		src := in.Operands[1]
		rep, ok := repl[src]
		if !ok || in.Name != name {
			break
		}
		lit := ctx.Allocate(nil)
		mask := ctx.Allocate(nil)
		positions := ctx.Allocate(nil)
		return []*ir.Instruction{
			ir.NumberConstInstr(lit, float64(in.Branch)),
			ir.AtInstr(positions, rep.members[0]),
			ir.NumEqInstr(mask, rep.members[0], lit),
			ir.FilterInstr(in.Operands[0], positions, mask),
		}, nil

	case ir.ETest:
		src := in.Operands[1]
		rep, ok := repl[src]
		if !ok || in.Name != name {
			break
		}
		lit := ctx.Allocate(nil)
		return []*ir.Instruction{
			ir.NumberConstInstr(lit, float64(in.Branch)),
			ir.NumEqInstr(in.Operands[0], rep.members[0], lit),
		}, nil
	}

	return verticalExtend(in, repl)
}

func fieldIndex(decl *defs.StructDecl, field string) int {
	for i, m := range decl.Members {
		if m.Name == field {
			return i
		}
	}
	return -1
}

// verticalExtend is the common fallback (spec §4.5 step 2, last bullet):
// any instruction mentioning a replaced register, not matched by a
// struct/enum-specific rule above, is duplicated once per replacement,
// substituting the kth replacement register for every occurrence in the
// kth copy.
func verticalExtend(in *ir.Instruction, repl map[regs.Register]*replacement) ([]*ir.Instruction, error) {
	n := -1
	for _, r := range in.Operands {
		if rep, ok := repl[r]; ok {
			if n == -1 {
				n = len(rep.members)
			} else if n != len(rep.members) {
				return nil, fmt.Errorf("simplify: mismatched replacement arity in %s", in.Op)
			}
		}
	}
	if n == -1 {
		return []*ir.Instruction{in}, nil
	}
	switch in.Op {
	case ir.Run, ir.Length, ir.Add, ir.SeqFilter, ir.SeqAt, ir.Pause, ir.Proc, ir.Operator, ir.At, ir.ReFilter:
		return nil, fmt.Errorf("simplify: impossible instruction %s operating on a struct/enum-typed register", in.Op)
	}
	out := make([]*ir.Instruction, n)
	for k := 0; k < n; k++ {
		cp := *in
		cp.Operands = substitute(in.Operands, repl, k)
		cp.Out = substitute(in.Out, repl, k)
		cp.OutOnly = substitute(in.OutOnly, repl, k)
		out[k] = &cp
	}
	return out, nil
}

func substitute(rs []regs.Register, repl map[regs.Register]*replacement, k int) []regs.Register {
	if rs == nil {
		return nil
	}
	out := make([]regs.Register, len(rs))
	for i, r := range rs {
		if rep, ok := repl[r]; ok {
			out[i] = rep.members[k]
		} else {
			out[i] = r
		}
	}
	return out
}

// buildNil constructs the default value of t into dst, following the
// original implementation's build_nil: vec types are an empty element
// wrapped by Star and scalars get their zero constant. Struct and enum
// types get a single Nil(dst); it does not recurse into their members.
func buildNil(ctx *gen.Context, dst regs.Register, t dtypes.MemberType) []*ir.Instruction {
	if t.IsVec() {
		elem := t.Elem()
		inner := ctx.Allocate(&elem)
		return []*ir.Instruction{ir.NilInstr(inner), ir.StarInstr(dst, inner)}
	}
	b := t.Base()
	switch b.Kind {
	case dtypes.Boolean:
		return []*ir.Instruction{ir.BooleanConstInstr(dst, false)}
	case dtypes.String:
		return []*ir.Instruction{ir.StringConstInstr(dst, "")}
	case dtypes.Bytes:
		return []*ir.Instruction{ir.BytesConstInstr(dst, nil)}
	case dtypes.Number:
		return []*ir.Instruction{ir.NumberConstInstr(dst, 0)}
	default:
		return []*ir.Instruction{ir.NilInstr(dst)}
	}
}
