// Package core implements the always-present "core" command set (spec
// §4.11/§4.13/§6): the built-in instruction supertypes, each wrapped as
// a CommandType with a fixed, spec-mandated local opcode so
// CommandSetID("core",(0,0),...) 's trace matches original_source's
// core.rs registration.
//
// Every command here also implements pre-image evaluation directly
// (Eval), grounded on original_source/dauphin-compile/src/commands/core.rs's
// execute() semantics: Add/NumEq broadcast their second argument modulo
// its own length, Filter/SeqFilter/Run/At/SeqAt/ReFilter gather or
// generate index sequences the same way the original interpreter does.
package core

import (
	"fmt"

	"github.com/dauphin-lang/dauphin/internal/ir"
	"github.com/dauphin-lang/dauphin/internal/registry"
)

// SetID is the core command set's identity: name, version, and the
// trace checksum the original implementation's registration order
// produces (original_source: CommandSetId::new("core",(0,0),0x6131BA5737E6EAE0)).
var SetID = registry.CommandSetID{Name: "core", Major: 0, Minor: 0, Trace: 0x6131BA5737E6EAE0}

type builtin struct {
	name   string
	opcode int
	values int
	super  ir.SuperType
	eval   func(args [][]any) ([][]any, bool, error)
}

func (b *builtin) Name() string { return b.name }
func (b *builtin) Schema() registry.Schema {
	return registry.Schema{Values: b.values, Trigger: registry.InstructionTrigger{Super: b.super}}
}
func (b *builtin) DontSerialize() bool { return false }
func (b *builtin) FromInstruction(in *ir.Instruction) (registry.Command, error) {
	return &command{typ: b, in: in}, nil
}
func (b *builtin) Eval(args [][]any) ([][]any, bool, error) {
	if b.eval == nil {
		return nil, false, nil
	}
	return b.eval(args)
}

type command struct {
	typ registry.CommandType
	in  *ir.Instruction
}

func (c *command) CommandType() registry.CommandType { return c.typ }
func (c *command) Serialize() ([]any, bool) {
	switch c.in.Op {
	case ir.NumberConst:
		return []any{c.in.Number}, true
	case ir.BooleanConst:
		return []any{c.in.Boolean}, true
	case ir.StringConst:
		return []any{c.in.Str}, true
	case ir.BytesConst:
		return []any{c.in.Bin}, true
	default:
		args := make([]any, len(c.in.Operands))
		for i, r := range c.in.Operands {
			args[i] = int(r)
		}
		return args, true
	}
}

func num(v float64) []any { return []any{v} }

func broadcastAdd(args [][]any) ([][]any, bool, error) {
	a, b := args[0], args[1]
	if len(b) == 0 {
		return nil, false, fmt.Errorf("core: add by empty register")
	}
	out := make([]any, len(a))
	for i, av := range a {
		out[i] = av.(float64) + b[i%len(b)].(float64)
	}
	return [][]any{out}, true, nil
}

func broadcastNumEq(args [][]any) ([][]any, bool, error) {
	a, b := args[0], args[1]
	if len(b) == 0 {
		return nil, false, fmt.Errorf("core: numeq against empty register")
	}
	out := make([]any, len(a))
	for i, av := range a {
		out[i] = av.(float64) == b[i%len(b)].(float64)
	}
	return [][]any{out}, true, nil
}

func filterEval(args [][]any) ([][]any, bool, error) {
	src, mask := args[0], args[1]
	if len(mask) == 0 {
		return [][]any{{}}, true, nil
	}
	var out []any
	for i, v := range src {
		if mask[i%len(mask)].(bool) {
			out = append(out, v)
		}
	}
	return [][]any{out}, true, nil
}

func lengthEval(args [][]any) ([][]any, bool, error) {
	return [][]any{num(float64(len(args[0])))}, true, nil
}

func atEval(args [][]any) ([][]any, bool, error) {
	src := args[0]
	out := make([]any, len(src))
	for i := range src {
		out[i] = float64(i)
	}
	return [][]any{out}, true, nil
}

func seqAtEval(args [][]any) ([][]any, bool, error) {
	var out []any
	for _, v := range args[0] {
		n := int(v.(float64))
		for j := 0; j < n; j++ {
			out = append(out, float64(j))
		}
	}
	return [][]any{out}, true, nil
}

func runEval(args [][]any) ([][]any, bool, error) {
	starts, lens := args[0], args[1]
	if len(lens) == 0 {
		return nil, false, fmt.Errorf("core: run with zero-length run register")
	}
	var out []any
	for i, s := range starts {
		n := int(lens[i%len(lens)].(float64))
		start := s.(float64)
		for j := 0; j < n; j++ {
			out = append(out, start+float64(j))
		}
	}
	return [][]any{out}, true, nil
}

func seqFilterEval(args [][]any) ([][]any, bool, error) {
	src, starts, lens := args[0], args[1], args[2]
	if len(starts) == 0 || len(lens) == 0 || len(src) == 0 {
		return [][]any{{}}, true, nil
	}
	var out []any
	for i := range starts {
		start := int(starts[i%len(starts)].(float64))
		n := int(lens[i%len(lens)].(float64))
		for j := 0; j < n; j++ {
			out = append(out, src[(start+j)%len(src)])
		}
	}
	return [][]any{out}, true, nil
}

func reFilterEval(args [][]any) ([][]any, bool, error) {
	src, idx := args[0], args[1]
	if len(src) == 0 {
		return [][]any{{}}, true, nil
	}
	out := make([]any, len(idx))
	for i, v := range idx {
		out[i] = src[int(v.(float64))%len(src)]
	}
	return [][]any{out}, true, nil
}

func copyEval(args [][]any) ([][]any, bool, error) { return [][]any{args[0]}, true, nil }

func appendEval(args [][]any) ([][]any, bool, error) {
	out := append(append([]any{}, args[0]...), args[1]...)
	return [][]any{out}, true, nil
}

func nilEval(args [][]any) ([][]any, bool, error) { return [][]any{{}}, true, nil }

// Types returns the core command set's entries in original_source's
// registration order (const_commands, Nil, Copy, Append, Length, Add,
// NumEq, Filter, Run, SeqFilter, SeqAt, At, ReFilter, LineNumber, Pause), each
// carrying the fixed opcode spec §6 assigns it.
func Types() []registry.SetEntry {
	op := func(n int) *int { return &n }
	entries := []registry.SetEntry{
		{Opcode: op(0), Type: &builtin{name: "number", opcode: 0, values: 1, super: ir.STNumberConst, eval: passthroughConst}},
		{Opcode: op(1), Type: &builtin{name: "const", opcode: 1, values: 1, super: ir.STConst, eval: nil}},
		{Opcode: op(2), Type: &builtin{name: "boolean", opcode: 2, values: 1, super: ir.STBooleanConst, eval: passthroughConst}},
		{Opcode: op(3), Type: &builtin{name: "string", opcode: 3, values: 1, super: ir.STStringConst, eval: passthroughConst}},
		{Opcode: op(4), Type: &builtin{name: "bytes", opcode: 4, values: 1, super: ir.STBytesConst, eval: passthroughConst}},
		{Opcode: op(5), Type: &builtin{name: "nil", opcode: 5, values: 0, super: ir.STNil, eval: nilEval}},
		{Opcode: op(6), Type: &builtin{name: "copy", opcode: 6, values: 1, super: ir.STCopy, eval: copyEval}},
		{Opcode: op(7), Type: &builtin{name: "append", opcode: 7, values: 1, super: ir.STAppend, eval: appendEval}},
		{Opcode: op(8), Type: &builtin{name: "length", opcode: 8, values: 1, super: ir.STLength, eval: lengthEval}},
		{Opcode: op(9), Type: &builtin{name: "add", opcode: 9, values: 1, super: ir.STAdd, eval: broadcastAdd}},
		{Opcode: op(10), Type: &builtin{name: "numeq", opcode: 10, values: 2, super: ir.STNumEq, eval: broadcastNumEq}},
		{Opcode: op(11), Type: &builtin{name: "filter", opcode: 11, values: 2, super: ir.STFilter, eval: filterEval}},
		{Opcode: op(12), Type: &builtin{name: "run", opcode: 12, values: 2, super: ir.STRun, eval: runEval}},
		{Opcode: op(13), Type: &builtin{name: "seqfilter", opcode: 13, values: 3, super: ir.STSeqFilter, eval: seqFilterEval}},
		{Opcode: op(14), Type: &builtin{name: "seqat", opcode: 14, values: 1, super: ir.STSeqAt, eval: seqAtEval}},
		{Opcode: op(15), Type: &builtin{name: "at", opcode: 15, values: 1, super: ir.STAt, eval: atEval}},
		{Opcode: op(16), Type: &builtin{name: "refilter", opcode: 16, values: 2, super: ir.STReFilter, eval: reFilterEval}},
		{Opcode: op(17), Type: &builtin{name: "linenumber", opcode: 17, values: 1, super: ir.STLineNumber, eval: nil}},
		{Opcode: op(18), Type: &builtin{name: "pause", opcode: 18, values: 0, super: ir.STPause, eval: nil}},
	}
	return entries
}

func passthroughConst(args [][]any) ([][]any, bool, error) { return args, true, nil }

// Build constructs the core set, verifying its trace against SetID.
func Build() (*registry.Set, error) {
	return registry.BuildSet(SetID, Types(), false)
}
