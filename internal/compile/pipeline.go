// Package compile wires the full pipeline together (spec §4.1): parse a
// .dhpir fixture, lower it to IR, then run call expansion, simplify,
// linearize, dealias, prune, pre-image, and register reuse in order,
// producing a final ir.Program ready for serialization.
package compile

import (
	"github.com/dauphin-lang/dauphin/internal/commands/core"
	"github.com/dauphin-lang/dauphin/internal/commands/std"
	"github.com/dauphin-lang/dauphin/internal/codegen"
	"github.com/dauphin-lang/dauphin/internal/defs"
	"github.com/dauphin-lang/dauphin/internal/errors"
	"github.com/dauphin-lang/dauphin/internal/fixture"
	"github.com/dauphin-lang/dauphin/internal/gen"
	"github.com/dauphin-lang/dauphin/internal/ir"
	"github.com/dauphin-lang/dauphin/internal/passes/call"
	"github.com/dauphin-lang/dauphin/internal/passes/dealias"
	"github.com/dauphin-lang/dauphin/internal/passes/linearize"
	"github.com/dauphin-lang/dauphin/internal/passes/preimage"
	"github.com/dauphin-lang/dauphin/internal/passes/prune"
	"github.com/dauphin-lang/dauphin/internal/passes/reorder"
	"github.com/dauphin-lang/dauphin/internal/passes/reuse"
	"github.com/dauphin-lang/dauphin/internal/passes/simplify"
	"github.com/dauphin-lang/dauphin/internal/registry"
)

// Pipeline bundles the command registry every compilation targets. Build
// it once and reuse it across many Compile calls: the registry's traces
// never change at runtime (spec §9).
type Pipeline struct {
	Suite *registry.Suite
}

// NewPipeline builds the always-present core set and the std operator
// library, and concatenates them into one Suite (core first, so its
// fixed opcodes 0-18 occupy the lowest global numbers, matching
// original_source's registration order).
func NewPipeline() (*Pipeline, error) {
	coreSet, err := core.Build()
	if err != nil {
		return nil, err
	}
	stdSet, err := std.Build()
	if err != nil {
		return nil, err
	}
	suite, err := registry.NewSuite(coreSet, stdSet)
	if err != nil {
		return nil, err
	}
	return &Pipeline{Suite: suite}, nil
}

// stdDefs declares every std command as a nameless-body operator, so
// codegen accepts a call to it and call-expansion's "no body" fallback
// turns it into a library Call (spec §4.4's "library call" path).
func stdDefs() (*defs.Store, error) {
	var decls []defs.RawDecl
	for _, e := range std.Types() {
		decls = append(decls, &defs.Operator{Symbol: e.Type.Name(), Ident: e.Type.Name()})
	}
	return defs.NewStore(decls)
}

// Compile parses source (named filename, for diagnostics) and runs it
// through the full pipeline, returning the resulting program or the
// first error encountered at any stage.
func (p *Pipeline) Compile(filename, source string) (*ir.Program, error) {
	prog, err := fixture.ParseString(filename, source)
	if err != nil {
		return nil, err
	}

	store, err := stdDefs()
	if err != nil {
		return nil, err
	}

	ctx := gen.New()
	if errs := codegen.Generate(prog, store, ctx, true); len(errs) > 0 {
		return nil, aggregate(errs)
	}
	ctx.PhaseFinished()

	if err := call.Run(ctx, store); err != nil {
		return nil, err
	}
	if err := simplify.Run(ctx, store); err != nil {
		return nil, err
	}
	if err := linearize.Run(ctx); err != nil {
		return nil, err
	}
	if err := dealias.Run(ctx); err != nil {
		return nil, err
	}
	if err := prune.Run(ctx); err != nil {
		return nil, err
	}
	if err := preimage.Run(ctx, p.Suite, true); err != nil {
		return nil, err
	}
	if err := reuse.Run(ctx); err != nil {
		return nil, err
	}
	if err := prune.Run(ctx); err != nil {
		return nil, err
	}
	if err := reorder.Run(ctx); err != nil {
		return nil, err
	}

	out := ir.NewProgram()
	out.Entries["main"] = ctx.Instructions()
	for r, t := range ctx.Types() {
		out.Types[r] = t
	}
	return out, nil
}

// aggregate folds multiple statement-level errors (spec §7) into the
// first one, noting how many more were suppressed.
func aggregate(errs []*errors.CompilerError) error {
	first := errs[0]
	if len(errs) > 1 {
		first.Notes = append(first.Notes, errors.New(errors.KindParseType, "%d further error(s) suppressed", len(errs)-1).Message)
	}
	return first
}
