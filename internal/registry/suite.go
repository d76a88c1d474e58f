package registry

import (
	"fmt"

	"github.com/dauphin-lang/dauphin/internal/ir"
)

// SetEntry pairs a CommandType with an optional explicit local opcode;
// when Opcode is nil the set assigns the next unused local opcode in
// registration order (spec §4.11's "ordered (opcode?,CommandType)
// pairs").
type SetEntry struct {
	Opcode *int
	Type   CommandType
}

// Set is one registered, opcode-assigned command set (a CompLibRegister
// instance bound to a CommandSetID).
type Set struct {
	ID            CommandSetID
	Entries       []SetEntry
	DontSerialize bool // spec §4.12: occupies opcode space, omitted from the shipped map

	opcodes map[string]int // command name -> local opcode
	byOp    map[int]CommandType
}

// BuildSet assigns local opcodes to entries (dense, in registration
// order, honoring any explicit override) and verifies the set's
// declared trace, failing fast on a mismatch (spec §4.11: "mismatch
// fatal"). dontSerialize marks a set the interpreter already hosts by
// identity, per spec §4.12.
func BuildSet(id CommandSetID, entries []SetEntry, dontSerialize bool) (*Set, error) {
	s := &Set{ID: id, Entries: entries, DontSerialize: dontSerialize, opcodes: make(map[string]int, len(entries)), byOp: make(map[int]CommandType, len(entries))}

	next := 0
	assignments := make([]OpcodeAssignment, len(entries))
	for i, e := range entries {
		op := next
		if e.Opcode != nil {
			op = *e.Opcode
		}
		if op >= next {
			next = op + 1
		}
		if _, dup := s.byOp[op]; dup {
			return nil, fmt.Errorf("registry: command set %q assigns opcode %d twice", id.Name, op)
		}
		s.opcodes[e.Type.Name()] = op
		s.byOp[op] = e.Type
		assignments[i] = OpcodeAssignment{Opcode: op, Type: e.Type}
	}

	trace, err := ComputeTrace(assignments)
	if err != nil {
		return nil, fmt.Errorf("registry: computing trace for %q: %w", id.Name, err)
	}
	if trace != id.Trace {
		return nil, fmt.Errorf("registry: command set %q trace mismatch: declared %016x, computed %016x", id.Name, id.Trace, trace)
	}
	return s, nil
}

// LocalOpcode returns the opcode a command type was assigned within
// this set.
func (s *Set) LocalOpcode(name string) (int, bool) {
	op, ok := s.opcodes[name]
	return op, ok
}

// Size is the number of opcodes this set occupies in the global suite.
func (s *Set) Size() int {
	n := 0
	for op := range s.byOp {
		if op+1 > n {
			n = op + 1
		}
	}
	return n
}

// Suite concatenates every registered set's opcode space, in
// registration order, into one dense global opcode numbering (spec
// §4.11: "global OpcodeMapping concatenating per-set opcode spaces IN
// REGISTRATION ORDER").
type Suite struct {
	sets       []*Set
	setBase    map[string]int // command-set name -> base global opcode
	byTrigger  map[triggerKey]globalEntry
	byIdentifier map[string]globalEntry
}

type globalEntry struct {
	setName string
	local   int
	global  int
	typ     CommandType
}

type triggerKey struct {
	isInstr bool
	super   ir.SuperType
	ident   string
}

// NewSuite concatenates sets in the order given.
func NewSuite(sets ...*Set) (*Suite, error) {
	su := &Suite{
		setBase:      make(map[string]int, len(sets)),
		byTrigger:    make(map[triggerKey]globalEntry),
		byIdentifier: make(map[string]globalEntry),
	}
	base := 0
	for _, s := range sets {
		if _, dup := su.setBase[s.ID.Name]; dup {
			return nil, fmt.Errorf("registry: command set %q registered twice", s.ID.Name)
		}
		su.sets = append(su.sets, s)
		su.setBase[s.ID.Name] = base
		for _, e := range s.Entries {
			local := s.opcodes[e.Type.Name()]
			g := globalEntry{setName: s.ID.Name, local: local, global: base + local, typ: e.Type}
			switch trig := e.Type.Schema().Trigger.(type) {
			case InstructionTrigger:
				su.byTrigger[triggerKey{isInstr: true, super: trig.Super}] = g
			case CommandTrigger:
				su.byTrigger[triggerKey{ident: trig.Identifier}] = g
			}
			su.byIdentifier[e.Type.Name()] = g
		}
		base += s.Size()
	}
	return su, nil
}

// GlobalOpcode returns the global opcode assigned to a command type by
// name, and whether it should appear in the serialized opcode map
// (false for dont_serialize sets, spec §4.12).
func (su *Suite) GlobalOpcode(name string) (opcode int, serialize bool, ok bool) {
	e, ok := su.byIdentifier[name]
	if !ok {
		return 0, false, false
	}
	for _, s := range su.sets {
		if s.ID.Name == e.setName {
			return e.global, !s.DontSerialize, true
		}
	}
	return e.global, true, true
}

// ForInstruction resolves the CommandType triggered by a built-in
// instruction supertype.
func (su *Suite) ForInstruction(super ir.SuperType) (CommandType, int, bool) {
	e, ok := su.byTrigger[triggerKey{isInstr: true, super: super}]
	if !ok {
		return nil, 0, false
	}
	return e.typ, e.global, true
}

// ForIdentifier resolves the CommandType a library Call names.
func (su *Suite) ForIdentifier(name string) (CommandType, int, bool) {
	e, ok := su.byIdentifier[name]
	if !ok {
		return nil, 0, false
	}
	return e.typ, e.global, true
}

// OpcodeMapping returns the [opcode, commandSetID] pairs for every
// opcode that should appear in a serialized program's "suite" map
// (omitting dont_serialize sets; spec §4.12, §6).
func (su *Suite) OpcodeMapping() []OpcodeMapEntry {
	var out []OpcodeMapEntry
	for _, s := range su.sets {
		if s.DontSerialize {
			continue
		}
		base := su.setBase[s.ID.Name]
		for _, e := range s.Entries {
			local := s.opcodes[e.Type.Name()]
			out = append(out, OpcodeMapEntry{Opcode: base + local, Set: s.ID})
		}
	}
	return out
}

// OpcodeMapEntry is one row of the serialized opcode-mapping array.
type OpcodeMapEntry struct {
	Opcode int
	Set    CommandSetID
}
