package registry

import (
	"github.com/dauphin-lang/dauphin/internal/ir"
)

// Trigger is what causes call expansion / pre-image to target a given
// CommandType: either a built-in instruction supertype, or a named
// library call identifier (spec §4.11's "trigger:Instruction(supertype)
// | Command(identifier)").
type Trigger interface{ isTrigger() }

type InstructionTrigger struct{ Super ir.SuperType }

func (InstructionTrigger) isTrigger() {}

type CommandTrigger struct{ Identifier string }

func (CommandTrigger) isTrigger() {}

// Schema describes a command type's arity and what triggers it.
type Schema struct {
	Values  int
	Trigger Trigger
}

// CommandType is a compile-time command descriptor: it knows its schema,
// can build a concrete Command from an instruction, and can pre-
// image-evaluate itself when every input is known.
type CommandType interface {
	Name() string
	Schema() Schema
	DontSerialize() bool
	FromInstruction(in *ir.Instruction) (Command, error)

	// Eval attempts to compute this command's outputs given fully-known
	// flat register values (spec §4.8's PreImagePrepare::Replace path).
	// ok is false if this command type cannot be pre-image-evaluated
	// (e.g. it has no useful constant folding, or genuinely needs
	// runtime-only state).
	Eval(args [][]any) (results [][]any, ok bool, err error)
}

// Command is one concrete, argument-bound instance of a CommandType,
// ready for serialization (spec §4.12).
type Command interface {
	CommandType() CommandType
	// Serialize returns the CBOR-ready argument sequence for this
	// command, or ok=false for a compile-side-only placeholder that is
	// never shipped to the interpreter.
	Serialize() (args []any, ok bool)
}

// DynamicDataProvider is implemented by command types that generate or
// ingest timing coefficients (spec §4.13); it is optional, so most
// CommandType implementations need not implement it.
type DynamicDataProvider interface {
	GenerateDynamicData() ([]byte, error)
	UseDynamicData([]byte) error
}
