// Package codegen lowers a fixture.Program (spec §1's "already-parsed,
// type-checked abstract program", here a .dhpir fixture) into Dauphin's
// initial structured IR, implementing spec §4.3.
package codegen

import (
	"fmt"

	"github.com/dauphin-lang/dauphin/internal/defs"
	"github.com/dauphin-lang/dauphin/internal/dtypes"
	"github.com/dauphin-lang/dauphin/internal/errors"
	"github.com/dauphin-lang/dauphin/internal/fixture"
	"github.com/dauphin-lang/dauphin/internal/gen"
	"github.com/dauphin-lang/dauphin/internal/ir"
	"github.com/dauphin-lang/dauphin/internal/regs"
)

type generator struct {
	store *defs.Store
	ctx   *gen.Context

	env map[string]regs.Register

	dollar *regs.Register // in scope inside a filter's mask expression
	at     *regs.Register // in scope inside a bracket index expression

	errs []*errors.CompilerError
}

// Generate lowers every statement in prog, accumulating every statement-
// level error instead of stopping at the first (spec §7).
func Generate(prog *fixture.Program, store *defs.Store, ctx *gen.Context, includeLineNumbers bool) []*errors.CompilerError {
	g := &generator{store: store, ctx: ctx, env: make(map[string]regs.Register)}
	for _, stmt := range prog.Statements {
		if includeLineNumbers {
			ctx.Add(ir.LineNumberInstr(fixture.Pos(stmt.Pos)))
		}
		g.statement(stmt)
	}
	return g.errs
}

func (g *generator) fail(pos errors.Position, format string, args ...any) {
	g.errs = append(g.errs, errors.At(errors.KindParseType, pos, format, args...))
}

func (g *generator) statement(stmt *fixture.Stmt) {
	pos := fixture.Pos(stmt.Pos)
	switch {
	case stmt.Assign != nil:
		src, err := g.expr(stmt.Assign.Value)
		if err != nil {
			g.fail(pos, "%s", err)
			return
		}
		target := stmt.Assign.Target
		if _, bound := g.env[target.Base]; !bound && len(target.Ops) == 0 {
			// first assignment to this name declares it: `let`-style
			// binding, not a write through an existing reference.
			g.env[target.Base] = src
			return
		}
		loc, _, err := g.lvalue(target)
		if err != nil {
			g.fail(pos, "%s", err)
			return
		}
		// Writing through an existing reference aliases the location to
		// the new value; dealias resolves every subsequent read of loc
		// once linearize has expanded any filter/vector structure.
		g.ctx.Add(ir.AliasInstr(loc, src))
	case stmt.Bare != nil:
		if stmt.Bare.Call == nil {
			g.fail(pos, "expression statement must be a procedure call")
			return
		}
		if _, err := g.call(stmt.Bare.Call, false); err != nil {
			g.fail(pos, "%s", err)
		}
	}
}

// lvalue expands a Path in reference position into a location register
// (the write target) and an optional filter register, per spec §4.3.
func (g *generator) lvalue(p *fixture.Path) (loc regs.Register, filter *regs.Register, err error) {
	base, ok := g.env[p.Base]
	if !ok {
		return 0, nil, fmt.Errorf("reference to unset identifier %q", p.Base)
	}
	loc = base
	for _, step := range p.Ops {
		switch {
		case step.Field != "":
			name := g.structNameOf(loc)
			next := g.ctx.Allocate(nil)
			g.ctx.Add(ir.RefSValueInstr(name, step.Field, next, loc))
			loc = next
		case step.Branch != "":
			name := g.enumNameOf(loc)
			branch := g.branchIndex(name, step.Branch)
			next := g.ctx.Allocate(nil)
			g.ctx.Add(ir.RefEValueInstr(name, branch, next, loc))
			loc = next
		case step.TestOnly != "":
			return 0, nil, fmt.Errorf("?branch test is not a valid assignment target")
		case step.Index != nil:
			next, mask, err := g.bracketFilter(loc, step.Index)
			if err != nil {
				return 0, nil, err
			}
			loc = next
			filter = &mask
		}
	}
	return loc, filter, nil
}

// bracketFilter implements spec §4.3's "[...]" narrowing: it runs the
// index expression with @ bound to the natural position sequence (via
// At), builds a boolean mask (numeric literals become an equality test
// against that position, anything else is used as a mask directly), and
// emits RefSquare+Filter to narrow the lvalue path.
func (g *generator) bracketFilter(src regs.Register, idx *fixture.Expr) (regs.Register, regs.Register, error) {
	// ref and the eventual filtered result carry src's own type (RefSquare
	// aliases the whole of src; Filter narrows it without changing its
	// shape), so linearize can find their linearizations when src is a
	// vector.
	var srcHint *dtypes.MemberType
	if t, ok := g.ctx.TypeOf(src); ok {
		srcHint = typePtr(t)
	}

	ref := g.ctx.Allocate(srcHint)
	g.ctx.Add(ir.RefSquareInstr(ref, src))

	positions := g.ctx.Allocate(nil)
	g.ctx.Add(ir.AtInstr(positions, src))

	prevAt := g.at
	g.at = &positions
	defer func() { g.at = prevAt }()

	var mask regs.Register
	if idx.Number != nil {
		lit := g.ctx.Allocate(nil)
		g.ctx.Add(ir.NumberConstInstr(lit, *idx.Number))
		mask = g.ctx.Allocate(nil)
		g.ctx.Add(ir.NumEqInstr(mask, positions, lit))
	} else {
		m, err := g.expr(idx)
		if err != nil {
			return 0, 0, err
		}
		mask = m
	}

	filtered := g.ctx.Allocate(srcHint)
	g.ctx.Add(ir.FilterInstr(filtered, ref, mask))
	return filtered, mask, nil
}

// expr lowers a Path/literal/call/constructor expression to an rvalue
// register.
func (g *generator) expr(e *fixture.Expr) (regs.Register, error) {
	switch {
	case e.Number != nil:
		r := g.ctx.Allocate(nil)
		g.ctx.Add(ir.NumberConstInstr(r, *e.Number))
		return r, nil
	case e.Boolean != nil:
		r := g.ctx.Allocate(nil)
		g.ctx.Add(ir.BooleanConstInstr(r, *e.Boolean == "true"))
		return r, nil
	case e.Str != nil:
		r := g.ctx.Allocate(nil)
		unquoted := (*e.Str)[1 : len(*e.Str)-1]
		g.ctx.Add(ir.StringConstInstr(r, unquoted))
		return r, nil
	case e.Dollar:
		if g.dollar == nil {
			return 0, fmt.Errorf("$ used outside a filter expression")
		}
		return *g.dollar, nil
	case e.At:
		if g.at == nil {
			return 0, fmt.Errorf("@ used outside a bracket index expression")
		}
		return *g.at, nil
	case e.Struct != nil:
		return g.structLit(e.Struct)
	case e.Enum != nil:
		return g.enumLit(e.Enum)
	case e.Vec != nil:
		return g.vecLit(e.Vec)
	case e.Call != nil:
		return g.call(e.Call, true)
	case e.Path != nil:
		return g.rvaluePath(e.Path)
	}
	return 0, fmt.Errorf("empty expression")
}

func (g *generator) structLit(s *fixture.StructLit) (regs.Register, error) {
	decl, ok := g.store.Struct(s.Name)
	if !ok {
		return 0, fmt.Errorf("unknown struct %q", s.Name)
	}
	if len(s.Fields) != len(decl.Members) {
		return 0, fmt.Errorf("struct %q expects %d fields, got %d", s.Name, len(decl.Members), len(s.Fields))
	}
	byName := make(map[string]*fixture.Expr, len(s.Fields))
	for _, f := range s.Fields {
		byName[f.Name] = f.Value
	}
	members := make([]regs.Register, len(decl.Members))
	for i, m := range decl.Members {
		fe, ok := byName[m.Name]
		if !ok {
			return 0, fmt.Errorf("struct %q missing field %q", s.Name, m.Name)
		}
		r, err := g.expr(fe)
		if err != nil {
			return 0, err
		}
		members[i] = r
	}
	dst := g.ctx.Allocate(typePtr(dtypes.NewBase(dtypes.Base{Kind: dtypes.Struct, Name: s.Name})))
	g.ctx.Add(ir.CtorStructInstr(s.Name, dst, members))
	return dst, nil
}

func (g *generator) enumLit(e *fixture.EnumLit) (regs.Register, error) {
	decl, ok := g.store.Enum(e.Enum)
	if !ok {
		return 0, fmt.Errorf("unknown enum %q", e.Enum)
	}
	branch := g.branchIndex(e.Enum, e.Branch)
	if branch < 0 {
		return 0, fmt.Errorf("enum %q has no branch %q", e.Enum, e.Branch)
	}
	var payload regs.Register
	if e.Payload != nil {
		r, err := g.expr(e.Payload)
		if err != nil {
			return 0, err
		}
		payload = r
	} else {
		payload = g.ctx.Allocate(nil)
		g.ctx.Add(ir.NilInstr(payload))
	}
	dst := g.ctx.Allocate(typePtr(dtypes.NewBase(dtypes.Base{Kind: dtypes.Enum, Name: e.Enum})))
	g.ctx.Add(ir.CtorEnumInstr(e.Enum, branch, dst, payload))
	return dst, nil
}

// vecLit lowers a [e1, e2, ...] literal to a List instruction, one level
// deeper than its elements' common type. The member type is taken from
// the first element whose type is known (typed constructors carry a
// type hint; bare scalar literals don't, so the literal's own kind is
// used as a fallback), defaulting to number for an empty vector.
func (g *generator) vecLit(v *fixture.VecLit) (regs.Register, error) {
	elems := make([]regs.Register, len(v.Elems))
	member := dtypes.NewBase(dtypes.Base{Kind: dtypes.Number})
	haveType := false
	for i, el := range v.Elems {
		r, err := g.expr(el)
		if err != nil {
			return 0, err
		}
		elems[i] = r
		if haveType {
			continue
		}
		if t, ok := g.ctx.TypeOf(r); ok {
			member = t
			haveType = true
			continue
		}
		switch {
		case el.Boolean != nil:
			member = dtypes.NewBase(dtypes.Base{Kind: dtypes.Boolean})
			haveType = true
		case el.Str != nil:
			member = dtypes.NewBase(dtypes.Base{Kind: dtypes.String})
			haveType = true
		case el.Number != nil:
			haveType = true
		}
	}
	dst := g.ctx.Allocate(typePtr(dtypes.NewVec(member)))
	g.ctx.Add(ir.ListInstr(dst, elems))
	return dst, nil
}

func (g *generator) call(c *fixture.CallExpr, wantsResult bool) (regs.Register, error) {
	args := make([]regs.Register, len(c.Args))
	for i, a := range c.Args {
		r, err := g.expr(a)
		if err != nil {
			return 0, err
		}
		args[i] = r
	}
	if op, ok := g.store.Operator(c.Name); ok {
		dst := g.ctx.Allocate(nil)
		g.ctx.Add(ir.OperatorInstr(op.Ident, dst, args))
		return dst, nil
	}
	if _, ok := g.store.Proc(c.Name); ok {
		modes := make([]ir.ArgMode, len(args))
		for i := range modes {
			modes[i] = ir.In
		}
		g.ctx.Add(ir.ProcInstr(c.Name, args, modes))
		return 0, nil
	}
	if wantsResult {
		return 0, fmt.Errorf("unknown operator %q", c.Name)
	}
	return 0, fmt.Errorf("unknown procedure %q", c.Name)
}

func (g *generator) rvaluePath(p *fixture.Path) (regs.Register, error) {
	base, ok := g.env[p.Base]
	if !ok {
		return 0, fmt.Errorf("reference to unset identifier %q", p.Base)
	}
	cur := base
	for _, step := range p.Ops {
		switch {
		case step.Field != "":
			name := g.structNameOf(cur)
			next := g.ctx.Allocate(nil)
			g.ctx.Add(ir.SValueInstr(name, step.Field, next, cur))
			cur = next
		case step.Branch != "":
			name := g.enumNameOf(cur)
			branch := g.branchIndex(name, step.Branch)
			next := g.ctx.Allocate(nil)
			g.ctx.Add(ir.EValueInstr(name, branch, next, cur))
			cur = next
		case step.TestOnly != "":
			name := g.enumNameOf(cur)
			branch := g.branchIndex(name, step.TestOnly)
			next := g.ctx.Allocate(nil)
			g.ctx.Add(ir.ETestInstr(name, branch, next, cur))
			cur = next
		case step.Index != nil:
			next, _, err := g.bracketFilter(cur, step.Index)
			if err != nil {
				return 0, err
			}
			cur = next
		}
	}
	return cur, nil
}

// structNameOf/enumNameOf recover the declaration name backing a
// register's current type, used to stamp SValue/RefSValue/EValue/etc.
// instructions (simplify keys on these names).
func (g *generator) structNameOf(r regs.Register) string {
	if t, ok := g.ctx.TypeOf(r); ok && !t.IsVec() {
		return t.Base().Name
	}
	return ""
}

func (g *generator) enumNameOf(r regs.Register) string {
	return g.structNameOf(r)
}

func (g *generator) branchIndex(enumName, branch string) int {
	decl, ok := g.store.Enum(enumName)
	if !ok {
		return -1
	}
	for i, m := range decl.Branches {
		if m.Name == branch {
			return i
		}
	}
	return -1
}

func typePtr(t dtypes.MemberType) *dtypes.MemberType { return &t }
