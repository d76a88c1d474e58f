// Package serialize implements program serialization (spec §4.12, §6):
// a CBOR map of the global opcode mapping, the per-entry-point encoded
// instruction sequences, and a string header table.
package serialize

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/dauphin-lang/dauphin/internal/ir"
	"github.com/dauphin-lang/dauphin/internal/registry"
)

// wireOpcodeEntry is one [opcode, command-set-id] row of the "suite"
// array; the set id encodes through CommandSetID's own MarshalCBOR.
type wireOpcodeEntry struct {
	_      struct{} `cbor:",toarray"`
	Opcode int
	Set    registry.CommandSetID
}

// wireInstruction's Args holds either register numbers (int) for
// ordinary operand-taking commands, or the literal payload (float64,
// bool, string, []byte) for const-carrying ones — cbor marshals either
// shape without a wrapper type.
type wireInstruction struct {
	_      struct{} `cbor:",toarray"`
	Opcode int
	Args   []any
}

type wireDocument struct {
	Suite   []wireOpcodeEntry          `cbor:"suite"`
	Entries map[string][]wireInstruction `cbor:"entries"`
	Headers map[string]string          `cbor:"headers"`
}

// Program encodes p against suite's global opcode numbering.
func Program(p *ir.Program, suite *registry.Suite) ([]byte, error) {
	doc := wireDocument{
		Entries: make(map[string][]wireInstruction, len(p.Entries)),
		Headers: p.Headers,
	}
	for _, e := range suite.OpcodeMapping() {
		doc.Suite = append(doc.Suite, wireOpcodeEntry{Opcode: e.Opcode, Set: e.Set})
	}

	for name, instrs := range p.Entries {
		encoded := make([]wireInstruction, 0, len(instrs))
		for _, in := range instrs {
			w, skip, err := encodeInstruction(in, suite)
			if err != nil {
				return nil, err
			}
			if skip {
				continue
			}
			encoded = append(encoded, w)
		}
		doc.Entries[name] = encoded
	}

	return cbor.Marshal(doc)
}

// encodeInstruction resolves the global opcode an instruction triggers
// and its serialized operand list; skip is true for instructions with no
// wire supertype (e.g. Alias) and for commands whose Serialize reports
// nothing to ship.
func encodeInstruction(in *ir.Instruction, suite *registry.Suite) (w wireInstruction, skip bool, err error) {
	var name string
	switch in.Op {
	case ir.Call:
		name = in.Name
	default:
		super, ok := in.Op.SuperType()
		if !ok {
			return wireInstruction{}, true, nil
		}
		ct, _, found := suite.ForInstruction(super)
		if !found {
			return wireInstruction{}, false, fmt.Errorf("serialize: no command registered for instruction %s", in.Op)
		}
		name = ct.Name()
	}

	ct, global, found := suite.ForIdentifier(name)
	if !found {
		return wireInstruction{}, false, fmt.Errorf("serialize: no command registered for %q", name)
	}
	cmd, err := ct.FromInstruction(in)
	if err != nil {
		return wireInstruction{}, false, fmt.Errorf("serialize: building command %q: %w", name, err)
	}
	args, ok := cmd.Serialize()
	if !ok {
		return wireInstruction{}, true, nil
	}
	return wireInstruction{Opcode: global, Args: args}, false, nil
}
