package ir

import "fmt"

// ITYPE is the closed set of instruction tags used across the whole
// compile pipeline, from code generation through register reuse. Not
// every ITYPE survives every pass: CtorStruct/CtorEnum/*Value/*Test are
// eliminated by simplify, Square/RefSquare/FilterSquare/Star/List by
// linearize, Alias by dealias, and Proc/Operator by call expansion.
type ITYPE int

const (
	// lifetime
	Nil ITYPE = iota
	Alias
	Copy
	Append

	// vector ops
	List
	Square
	RefSquare
	FilterSquare
	Star
	Filter
	At
	Run
	SeqFilter
	SeqAt
	ReFilter
	Length

	// arithmetic
	Add
	NumEq

	// constants
	Const
	NumberConst
	BooleanConst
	StringConst
	BytesConst

	// structured (pre-simplify)
	CtorStruct
	CtorEnum
	SValue
	RefSValue
	EValue
	RefEValue
	FilterEValue
	ETest

	// calls
	Proc
	Operator
	Call

	// debug
	LineNumber
	Pause
)

var itypeNames = map[ITYPE]string{
	Nil: "Nil", Alias: "Alias", Copy: "Copy", Append: "Append",
	List: "List", Square: "Square", RefSquare: "RefSquare", FilterSquare: "FilterSquare",
	Star: "Star", Filter: "Filter", At: "At", Run: "Run", SeqFilter: "SeqFilter",
	SeqAt: "SeqAt", ReFilter: "ReFilter", Length: "Length",
	Add: "Add", NumEq: "NumEq",
	Const: "Const", NumberConst: "NumberConst", BooleanConst: "BooleanConst",
	StringConst: "StringConst", BytesConst: "BytesConst",
	CtorStruct: "CtorStruct", CtorEnum: "CtorEnum", SValue: "SValue", RefSValue: "RefSValue",
	EValue: "EValue", RefEValue: "RefEValue", FilterEValue: "FilterEValue", ETest: "ETest",
	Proc: "Proc", Operator: "Operator", Call: "Call",
	LineNumber: "LineNumber", Pause: "Pause",
}

func (t ITYPE) String() string {
	if n, ok := itypeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("itype(%d)", int(t))
}

// SuperType is the wire-format instruction supertype used by the command
// registry's trigger table and by CBOR serialization. These integers are
// part of the wire format (spec §6) and must never be reordered.
type SuperType int

const (
	STPause SuperType = iota
	STNil
	STCopy
	STAppend
	STFilter
	STRun
	STAt
	STNumEq
	STReFilter
	STLength
	STAdd
	STSeqFilter
	STSeqAt
	STConst
	STNumberConst
	STBooleanConst
	STStringConst
	STBytesConst
	STCall
	STLineNumber
)

var superTypeOf = map[ITYPE]SuperType{
	Pause:        STPause,
	Nil:          STNil,
	Copy:         STCopy,
	Append:       STAppend,
	Filter:       STFilter,
	Run:          STRun,
	At:           STAt,
	NumEq:        STNumEq,
	ReFilter:     STReFilter,
	Length:       STLength,
	Add:          STAdd,
	SeqFilter:    STSeqFilter,
	SeqAt:        STSeqAt,
	Const:        STConst,
	NumberConst:  STNumberConst,
	BooleanConst: STBooleanConst,
	StringConst:  STStringConst,
	BytesConst:   STBytesConst,
	Call:         STCall,
	LineNumber:   STLineNumber,
}

// SuperType reports the wire supertype of an instruction's ITYPE, and
// whether one exists. Instructions eliminated before serialization
// (Alias, List, Square/RefSquare/FilterSquare/Star, the structured
// Ctor*/ *Value/ *Test family, Proc/Operator) have none.
func (t ITYPE) SuperType() (SuperType, bool) {
	st, ok := superTypeOf[t]
	return st, ok
}
