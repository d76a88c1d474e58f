// Package registry implements the command registry (spec §4.11): command
// sets are named, versioned, content-hashed bundles of commands; a Suite
// assigns dense global opcodes by concatenating each registered set's
// opcode space in registration order, and verifies every set's declared
// trace against a canonical CRC-64 recomputed from its own commands.
package registry

import (
	"fmt"
	"hash/crc64"
	"sort"

	"github.com/fxamacker/cbor/v2"
)

var isoTable = crc64.MakeTable(crc64.ISO)

// CommandSetID identifies a command set: a name, a (major,minor) version,
// and a trace checksum over its command schema (spec §3, §4.11).
type CommandSetID struct {
	Name    string
	Major   int
	Minor   int
	Trace   uint64
}

func (id CommandSetID) String() string {
	return fmt.Sprintf("%s(%d.%d)#%016x", id.Name, id.Major, id.Minor, id.Trace)
}

// wireCommandSetID is CommandSetID's CBOR wire shape: [name, [major,minor], trace].
type wireCommandSetID struct {
	_       struct{} `cbor:",toarray"`
	Name    string
	Version [2]int
	Trace   uint64
}

func (id CommandSetID) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(wireCommandSetID{Name: id.Name, Version: [2]int{id.Major, id.Minor}, Trace: id.Trace})
}

func (id *CommandSetID) UnmarshalCBOR(data []byte) error {
	var w wireCommandSetID
	if err := cbor.Unmarshal(data, &w); err != nil {
		return err
	}
	id.Name, id.Major, id.Minor, id.Trace = w.Name, w.Version[0], w.Version[1], w.Trace
	return nil
}

// traceEntry is one [opcode, name, operand-count] row of the canonical
// trace encoding, sorted by local opcode before hashing.
type traceEntry struct {
	_            struct{} `cbor:",toarray"`
	Opcode       int
	Name         string
	OperandCount int
}

// OpcodeAssignment pairs a command type with the local opcode a set
// assigned it, the input ComputeTrace needs.
type OpcodeAssignment struct {
	Opcode int
	Type   CommandType
}

// ComputeTrace recomputes the ISO CRC-64 over the canonical CBOR encoding
// of [opcode, name, operand-count] triples, sorted by opcode, for the
// given command types (spec §3's "Command set id").
func ComputeTrace(assignments []OpcodeAssignment) (uint64, error) {
	entries := make([]traceEntry, len(assignments))
	for i, a := range assignments {
		entries[i] = traceEntry{Opcode: a.Opcode, Name: a.Type.Name(), OperandCount: a.Type.Schema().Values}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Opcode < entries[j].Opcode })

	enc := make([][]byte, len(entries))
	for i, e := range entries {
		b, err := cbor.Marshal(e)
		if err != nil {
			return 0, err
		}
		enc[i] = b
	}
	var buf []byte
	for _, b := range enc {
		buf = append(buf, b...)
	}
	return crc64.Checksum(buf, isoTable), nil
}
