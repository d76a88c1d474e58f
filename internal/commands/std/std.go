// Package std implements the "std" command set: the library-level
// operators and procedures spec §6 assigns fixed local opcodes to
// (_eq_shallow, lt, lteq, gt, gteq, _vector_copy_shallow, _vector_append,
// incr, plus, _vector_append_indexes, _vector_update_indexes,
// _eq_compare, _eq_all). Unlike core, these are triggered by identifier
// (a Call's Name), not by a built-in instruction supertype, matching
// call expansion's toLibraryCall fallback for any Proc/Operator without
// a user-defined body.
package std

import (
	"github.com/dauphin-lang/dauphin/internal/ir"
	"github.com/dauphin-lang/dauphin/internal/registry"
)

type builtin struct {
	name   string
	opcode int
	values int
	eval   func(args [][]any) ([][]any, bool, error)
}

func (b *builtin) Name() string { return b.name }
func (b *builtin) Schema() registry.Schema {
	return registry.Schema{Values: b.values, Trigger: registry.CommandTrigger{Identifier: b.name}}
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
	args := make([]any, len(c.in.Operands))
	for i, r := range c.in.Operands {
		args[i] = int(r)
	}
	return args, true
}

func cmp(op func(a, b float64) bool) func([][]any) ([][]any, bool, error) {
	return func(args [][]any) ([][]any, bool, error) {
		a, b := args[0], args[1]
		if len(b) == 0 {
			return nil, false, nil
		}
		out := make([]any, len(a))
		for i, av := range a {
			out[i] = op(av.(float64), b[i%len(b)].(float64))
		}
		return [][]any{out}, true, nil
	}
}

func eqShallow(args [][]any) ([][]any, bool, error) {
	a, b := args[0], args[1]
	if len(a) != len(b) {
		return [][]any{{false}}, true, nil
	}
	for i := range a {
		if a[i] != b[i] {
			return [][]any{{false}}, true, nil
		}
	}
	return [][]any{{true}}, true, nil
}

func vectorCopyShallow(args [][]any) ([][]any, bool, error) {
	return [][]any{append([]any{}, args[0]...)}, true, nil
}

func vectorAppend(args [][]any) ([][]any, bool, error) {
	return [][]any{append(append([]any{}, args[0]...), args[1]...)}, true, nil
}

func incr(args [][]any) ([][]any, bool, error) {
	out := make([]any, len(args[0]))
	for i, v := range args[0] {
		out[i] = v.(float64) + 1
	}
	return [][]any{out}, true, nil
}

func plus(args [][]any) ([][]any, bool, error) {
	a, b := args[0], args[1]
	if len(b) == 0 {
		return nil, false, nil
	}
	out := make([]any, len(a))
	for i, av := range a {
		out[i] = av.(float64) + b[i%len(b)].(float64)
	}
	return [][]any{out}, true, nil
}

// Types returns the std command set's entries with the local opcodes
// spec §6 fixes; unnamed opcodes (1-4, 13-16) are reserved for commands
// outside this spec's scope and are left unassigned.
func Types() []registry.SetEntry {
	op := func(n int) *int { return &n }
	return []registry.SetEntry{
		{Opcode: op(0), Type: &builtin{name: "_eq_shallow", opcode: 0, values: 2, eval: eqShallow}},
		{Opcode: op(5), Type: &builtin{name: "lt", opcode: 5, values: 2, eval: cmp(func(a, b float64) bool { return a < b })}},
		{Opcode: op(6), Type: &builtin{name: "lteq", opcode: 6, values: 2, eval: cmp(func(a, b float64) bool { return a <= b })}},
		{Opcode: op(7), Type: &builtin{name: "gt", opcode: 7, values: 2, eval: cmp(func(a, b float64) bool { return a > b })}},
		{Opcode: op(8), Type: &builtin{name: "gteq", opcode: 8, values: 2, eval: cmp(func(a, b float64) bool { return a >= b })}},
		{Opcode: op(9), Type: &builtin{name: "_vector_copy_shallow", opcode: 9, values: 1, eval: vectorCopyShallow}},
		{Opcode: op(10), Type: &builtin{name: "_vector_append", opcode: 10, values: 2, eval: vectorAppend}},
		{Opcode: op(11), Type: &builtin{name: "incr", opcode: 11, values: 1, eval: incr}},
		{Opcode: op(12), Type: &builtin{name: "plus", opcode: 12, values: 2, eval: plus}},
		{Opcode: op(17), Type: &builtin{name: "_vector_append_indexes", opcode: 17, values: 2, eval: nil}},
		{Opcode: op(18), Type: &builtin{name: "_vector_update_indexes", opcode: 18, values: 3, eval: nil}},
		{Opcode: op(19), Type: &builtin{name: "_eq_compare", opcode: 19, values: 2, eval: eqShallow}},
		{Opcode: op(20), Type: &builtin{name: "_eq_all", opcode: 20, values: 1, eval: nil}},
	}
}

// ID computes the std set's CommandSetID. Unlike core's, no external
// checksum for std survives in original_source, so its trace is derived
// directly from Types() rather than pinned to a mined constant. Because
// Build recomputes the trace from the same Types(), the trace check in
// BuildSet always passes for this set and cannot detect a reordering.
func ID() (registry.CommandSetID, error) {
	assignments := make([]registry.OpcodeAssignment, len(Types()))
	for i, e := range Types() {
		assignments[i] = registry.OpcodeAssignment{Opcode: *e.Opcode, Type: e.Type}
	}
	trace, err := registry.ComputeTrace(assignments)
	if err != nil {
		return registry.CommandSetID{}, err
	}
	return registry.CommandSetID{Name: "std", Major: 0, Minor: 0, Trace: trace}, nil
}

// Build constructs the std set.
func Build() (*registry.Set, error) {
	id, err := ID()
	if err != nil {
		return nil, err
	}
	return registry.BuildSet(id, Types(), false)
}
