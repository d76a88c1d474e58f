package ir

import (
	"fmt"
	"strings"

	"github.com/dauphin-lang/dauphin/internal/dtypes"
	"github.com/dauphin-lang/dauphin/internal/errors"
	"github.com/dauphin-lang/dauphin/internal/regs"
)

// ArgMode is the direction of an argument in a RegisterSignature.
type ArgMode int

const (
	In ArgMode = iota
	Out
	InOut
	FilterMode
)

func (m ArgMode) String() string {
	switch m {
	case In:
		return "in"
	case Out:
		return "out"
	case InOut:
		return "inout"
	case FilterMode:
		return "filter"
	default:
		return "?"
	}
}

// ArgSig describes one Call argument: its data-flow mode, its base type,
// its pre-linearization vector depth, and the flat register positions
// (within Instruction.Operands) it occupies after linearize has run.
type ArgSig struct {
	Mode          ArgMode
	Base          dtypes.Base
	Depth         int
	FlatPositions []int
}

// RegisterSignature is attached to every Call instruction (spec §3,
// "Register signature").
type RegisterSignature struct {
	Args []ArgSig
}

// Instruction is Dauphin's IR instruction record. Rather than one Go type
// per ITYPE, every instruction is a single tagged record: the fields used
// depend on Op. This mirrors the "small record, not a deep hierarchy"
// guidance for command types, and keeps every pass's rewriting code
// (which mostly just builds new Instructions of known Op) uncluttered by
// per-type boilerplate.
type Instruction struct {
	Op ITYPE

	// Operands is the full, positional operand list; its layout and
	// meaning are defined per Op by the pass or command that produced it.
	Operands []regs.Register

	// Out is the subset of Operands this instruction writes; OutOnly is
	// the subset it writes without also reading (drives prune/reuse
	// liveness). Both are populated by the constructors below so callers
	// never have to recompute them by hand.
	Out     []regs.Register
	OutOnly []regs.Register

	// Immediate payloads. Only the fields relevant to Op are meaningful.
	Number  float64
	Boolean bool
	Str     string
	Bin     []byte
	Indexes []int // Const(seq of index)

	Name   string // struct/enum/proc/operator/library-call identifier
	Branch int    // CtorEnum/EValue/RefEValue/FilterEValue/ETest branch index
	Field  string // SValue/RefSValue field name

	Forced bool // Pause(forced)
	Impure bool // Call impure flag

	Signature *RegisterSignature // Call
	ArgModes  []ArgMode          // Proc(id, arg-modes)

	Pos errors.Position // LineNumber's source position
	Cost float64        // pre-image execution-time estimate, if computed
}

func (in *Instruction) String() string {
	var b strings.Builder
	b.WriteString(in.Op.String())
	if len(in.Operands) > 0 {
		parts := make([]string, len(in.Operands))
		for i, r := range in.Operands {
			parts[i] = r.String()
		}
		fmt.Fprintf(&b, "(%s)", strings.Join(parts, ", "))
	}
	switch in.Op {
	case NumberConst:
		fmt.Fprintf(&b, " = %g", in.Number)
	case BooleanConst:
		fmt.Fprintf(&b, " = %v", in.Boolean)
	case StringConst:
		fmt.Fprintf(&b, " = %q", in.Str)
	case BytesConst:
		fmt.Fprintf(&b, " = %dB", len(in.Bin))
	case Const:
		fmt.Fprintf(&b, " = %v", in.Indexes)
	case Call, Proc, Operator, CtorStruct, CtorEnum, SValue, RefSValue:
		fmt.Fprintf(&b, " %s", in.Name)
	}
	return b.String()
}

// SelfJustifying reports whether an instruction must be kept by prune
// regardless of whether its outputs are live: impure Call, every
// LineNumber, and every Pause.
func (in *Instruction) SelfJustifying() bool {
	switch in.Op {
	case LineNumber, Pause:
		return true
	case Call:
		return in.Impure
	default:
		return false
	}
}

// simple builds an instruction whose first operand is its sole output,
// write-only (OutOnly = [dst]), and whose remaining operands are read-only
// inputs. Constructors whose destination is also read (Append, Add, and
// the alias/reference ones) clear OutOnly after calling it.
func simple(op ITYPE, dst regs.Register, rest ...regs.Register) *Instruction {
	operands := append([]regs.Register{dst}, rest...)
	return &Instruction{
		Op:       op,
		Operands: operands,
		Out:      []regs.Register{dst},
		OutOnly:  []regs.Register{dst},
	}
}

// NilInstr: Nil(r) resets r to the empty/zero value of its type.
func NilInstr(r regs.Register) *Instruction { return simple(Nil, r) }

// AliasInstr: Alias(a, b) makes a and b the same storage (dealias's job
// is to resolve reads of a to b and then remove this instruction).
func AliasInstr(a, b regs.Register) *Instruction {
	in := simple(Alias, a, b)
	in.OutOnly = nil // Alias does not overwrite b's prior value semantics; conservative
	return in
}

// CopyInstr: Copy(dst, src).
func CopyInstr(dst, src regs.Register) *Instruction { return simple(Copy, dst, src) }

// AppendInstr: Append(dst, src) is read-modify-write on dst, so dst is
// not out-only (original_source: out_only_registers is empty for Append).
func AppendInstr(dst, src regs.Register) *Instruction {
	in := simple(Append, dst, src)
	in.OutOnly = nil
	return in
}

// AddInstr: Add(dst, src), also read-modify-write on dst.
func AddInstr(dst, src regs.Register) *Instruction {
	in := simple(Add, dst, src)
	in.OutOnly = nil
	return in
}

// LengthInstr: Length(dst, src).
func LengthInstr(dst, src regs.Register) *Instruction { return simple(Length, dst, src) }

// FilterInstr: Filter(dst, src, mask).
func FilterInstr(dst, src, mask regs.Register) *Instruction { return simple(Filter, dst, src, mask) }

// AtInstr: At(dst, src).
func AtInstr(dst, src regs.Register) *Instruction { return simple(At, dst, src) }

// RunInstr: Run(dst, start, len).
func RunInstr(dst, start, length regs.Register) *Instruction { return simple(Run, dst, start, length) }

// SeqFilterInstr: SeqFilter(dst, src, start, len).
func SeqFilterInstr(dst, src, start, length regs.Register) *Instruction {
	return simple(SeqFilter, dst, src, start, length)
}

// SeqAtInstr: SeqAt(dst, src).
func SeqAtInstr(dst, src regs.Register) *Instruction { return simple(SeqAt, dst, src) }

// ReFilterInstr: ReFilter(dst, src, indexes).
func ReFilterInstr(dst, src, indexes regs.Register) *Instruction {
	return simple(ReFilter, dst, src, indexes)
}

// NumEqInstr: NumEq(dst, a, b).
func NumEqInstr(dst, a, b regs.Register) *Instruction { return simple(NumEq, dst, a, b) }

// ConstInstr: Const(dst, indexes).
func ConstInstr(dst regs.Register, indexes []int) *Instruction {
	in := simple(Const, dst)
	in.Indexes = indexes
	return in
}

// NumberConstInstr: NumberConst(dst, value).
func NumberConstInstr(dst regs.Register, value float64) *Instruction {
	in := simple(NumberConst, dst)
	in.Number = value
	return in
}

// BooleanConstInstr: BooleanConst(dst, value).
func BooleanConstInstr(dst regs.Register, value bool) *Instruction {
	in := simple(BooleanConst, dst)
	in.Boolean = value
	return in
}

// StringConstInstr: StringConst(dst, value).
func StringConstInstr(dst regs.Register, value string) *Instruction {
	in := simple(StringConst, dst)
	in.Str = value
	return in
}

// BytesConstInstr: BytesConst(dst, value).
func BytesConstInstr(dst regs.Register, value []byte) *Instruction {
	in := simple(BytesConst, dst)
	in.Bin = value
	return in
}

// LineNumberInstr: LineNumber(pos). Self-justifying, no outputs.
func LineNumberInstr(pos errors.Position) *Instruction {
	return &Instruction{Op: LineNumber, Pos: pos}
}

// PauseInstr: Pause(forced). Self-justifying, no outputs.
func PauseInstr(forced bool) *Instruction {
	return &Instruction{Op: Pause, Forced: forced}
}

// CallInstr builds a library Call. Out registers are every FlatPositions
// entry whose ArgSig.Mode is Out or InOut; OutOnly registers are only
// those whose mode is Out (matching original_source: Call follows
// dataflow=Out only, not InOut, for out-only).
func CallInstr(name string, impure bool, operands []regs.Register, sig *RegisterSignature) *Instruction {
	in := &Instruction{
		Op:        Call,
		Name:      name,
		Impure:    impure,
		Operands:  operands,
		Signature: sig,
	}
	for _, arg := range sig.Args {
		switch arg.Mode {
		case Out:
			for _, p := range arg.FlatPositions {
				in.Out = append(in.Out, operands[p])
				in.OutOnly = append(in.OutOnly, operands[p])
			}
		case InOut:
			for _, p := range arg.FlatPositions {
				in.Out = append(in.Out, operands[p])
			}
		}
	}
	return in
}

// ProcInstr builds a Proc(id, arg-modes) call, eliminated by call
// expansion before any later pass sees it.
func ProcInstr(name string, operands []regs.Register, modes []ArgMode) *Instruction {
	return &Instruction{Op: Proc, Name: name, Operands: operands, ArgModes: modes}
}

// OperatorInstr builds an Operator(id) rvalue call; the first operand is
// its result register, remaining operands are arguments.
func OperatorInstr(name string, dst regs.Register, args []regs.Register) *Instruction {
	operands := append([]regs.Register{dst}, args...)
	return &Instruction{Op: Operator, Name: name, Operands: operands, Out: []regs.Register{dst}, OutOnly: []regs.Register{dst}}
}

// CtorStructInstr builds a struct constructor; operands are the member
// values in declaration order, dst is the struct-typed register.
func CtorStructInstr(name string, dst regs.Register, members []regs.Register) *Instruction {
	operands := append([]regs.Register{dst}, members...)
	return &Instruction{Op: CtorStruct, Name: name, Operands: operands, Out: []regs.Register{dst}, OutOnly: []regs.Register{dst}}
}

// CtorEnumInstr builds an enum constructor for a single branch's payload.
func CtorEnumInstr(name string, branch int, dst, payload regs.Register) *Instruction {
	return &Instruction{Op: CtorEnum, Name: name, Branch: branch, Operands: []regs.Register{dst, payload}, Out: []regs.Register{dst}, OutOnly: []regs.Register{dst}}
}

// SValueInstr reads a struct field (rvalue).
func SValueInstr(name, field string, dst, src regs.Register) *Instruction {
	in := simple(SValue, dst, src)
	in.Name, in.Field = name, field
	return in
}

// RefSValueInstr aliases a struct field (lvalue path).
func RefSValueInstr(name, field string, dst, src regs.Register) *Instruction {
	in := simple(RefSValue, dst, src)
	in.OutOnly = nil
	in.Name, in.Field = name, field
	return in
}

// EValueInstr reads an enum branch's payload, filtered by discriminant.
func EValueInstr(name string, branch int, dst, src regs.Register) *Instruction {
	in := simple(EValue, dst, src)
	in.Name, in.Branch = name, branch
	return in
}

// RefEValueInstr aliases an enum branch payload (lvalue path).
func RefEValueInstr(name string, branch int, dst, src regs.Register) *Instruction {
	in := simple(RefEValue, dst, src)
	in.OutOnly = nil
	in.Name, in.Branch = name, branch
	return in
}

// FilterEValueInstr produces the index set of positions matching branch.
func FilterEValueInstr(name string, branch int, dst, src regs.Register) *Instruction {
	in := simple(FilterEValue, dst, src)
	in.Name, in.Branch = name, branch
	return in
}

// ETestInstr tests whether the discriminant equals branch.
func ETestInstr(name string, branch int, dst, src regs.Register) *Instruction {
	in := simple(ETest, dst, src)
	in.Name, in.Branch = name, branch
	return in
}

// ListInstr, SquareInstr, RefSquareInstr, FilterSquareInstr, StarInstr:
// pre-linearize vector-of-vector operations.
func ListInstr(dst regs.Register, elems []regs.Register) *Instruction {
	operands := append([]regs.Register{dst}, elems...)
	return &Instruction{Op: List, Operands: operands, Out: []regs.Register{dst}, OutOnly: []regs.Register{dst}}
}
func SquareInstr(dst, src regs.Register) *Instruction { return simple(Square, dst, src) }
func RefSquareInstr(dst, src regs.Register) *Instruction {
	in := simple(RefSquare, dst, src)
	in.OutOnly = nil
	return in
}
func FilterSquareInstr(dst, src, mask regs.Register) *Instruction {
	return simple(FilterSquare, dst, src, mask)
}
func StarInstr(dst, src regs.Register) *Instruction { return simple(Star, dst, src) }
