// Package defs holds Dauphin's definition store: the read-only catalog of
// struct/enum/function/procedure declarations, the inline operator table,
// and macro bodies built once by the parser and shared-immutable for the
// rest of the pipeline (spec §3, "Definition store").
package defs

import (
	"fmt"
	"sort"

	"github.com/dauphin-lang/dauphin/internal/dtypes"
)

// Member is one struct field or enum branch: a name and its declared
// member type.
type Member struct {
	Name string
	Type dtypes.MemberType
}

// StructDecl is a user-defined struct declaration.
type StructDecl struct {
	Name    string
	Members []Member
}

// EnumDecl is a user-defined enum (tagged union) declaration.
type EnumDecl struct {
	Name     string
	Branches []Member
}

// Param is one formal parameter of a procedure or function.
type Param struct {
	Name string
	Type dtypes.MemberType
}

// ProcDecl is a user-defined procedure or function body, referenced by
// Proc(id, arg-modes) instructions and inlined by call expansion.
type ProcDecl struct {
	Name   string
	Params []Param
	// Body is left as an opaque hook: call expansion is handed the decl
	// and asks the code generator that produced it (or a cached IR body)
	// for the instructions to splice in. Modeled as a func to avoid a
	// import cycle with internal/ir/internal/gen.
	Body func() (instructions any, err error)
}

// Associativity of an inline operator.
type Associativity int

const (
	LeftAssoc Associativity = iota
	RightAssoc
)

// Position of an inline operator relative to its operands.
type Position int

const (
	Infix Position = iota
	Prefix
	Postfix
)

// Operator is one entry in the inline operator table: a surface symbol
// mapped to the library identifier that implements it, plus parsing
// metadata.
type Operator struct {
	Symbol     string
	Ident      string
	Precedence int
	Assoc      Associativity
	Pos        Position
}

// Macro is an expression or statement macro body, substituted in place of
// its call site during call expansion.
type Macro struct {
	Name   string
	IsExpr bool
	Params []string
	Body   any // opaque: an expression or statement-list AST node
}

// RawDecl marks a declaration value produced by the upstream parser, fed
// into NewStore. The parser/fixture package constructs concrete
// *StructDecl/*EnumDecl/*ProcDecl/*Operator/*Macro values; the definition
// store only needs to recognize which concrete type each one is.
type RawDecl interface {
	isRawDecl()
}

func (*StructDecl) isRawDecl() {}
func (*EnumDecl) isRawDecl()   {}
func (*ProcDecl) isRawDecl()   {}
func (*Operator) isRawDecl()   {}
func (*Macro) isRawDecl()      {}

// Store is the read-only, shared-immutable definition catalog.
type Store struct {
	structs   map[string]*StructDecl
	enums     map[string]*EnumDecl
	procs     map[string]*ProcDecl
	operators map[string]*Operator
	macros    map[string]*Macro

	// topo is the topological order of struct/enum names, leaves first,
	// computed once at construction for use by simplify (processed in
	// reverse: largest composite first).
	topo []string
}

// NewStore builds a Store from a flat list of raw declarations.
func NewStore(decls []RawDecl) (*Store, error) {
	s := &Store{
		structs:   make(map[string]*StructDecl),
		enums:     make(map[string]*EnumDecl),
		procs:     make(map[string]*ProcDecl),
		operators: make(map[string]*Operator),
		macros:    make(map[string]*Macro),
	}
	for _, d := range decls {
		switch v := d.(type) {
		case *StructDecl:
			if _, dup := s.structs[v.Name]; dup {
				return nil, fmt.Errorf("defs: duplicate struct %q", v.Name)
			}
			s.structs[v.Name] = v
		case *EnumDecl:
			if _, dup := s.enums[v.Name]; dup {
				return nil, fmt.Errorf("defs: duplicate enum %q", v.Name)
			}
			s.enums[v.Name] = v
		case *ProcDecl:
			s.procs[v.Name] = v
		case *Operator:
			s.operators[v.Symbol] = v
		case *Macro:
			s.macros[v.Name] = v
		}
	}
	topo, err := s.computeTopoOrder()
	if err != nil {
		return nil, err
	}
	s.topo = topo
	return s, nil
}

// Struct looks up a struct declaration by name.
func (s *Store) Struct(name string) (*StructDecl, bool) { d, ok := s.structs[name]; return d, ok }

// Enum looks up an enum declaration by name.
func (s *Store) Enum(name string) (*EnumDecl, bool) { d, ok := s.enums[name]; return d, ok }

// Proc looks up a procedure/function declaration by name.
func (s *Store) Proc(name string) (*ProcDecl, bool) { d, ok := s.procs[name]; return d, ok }

// Operator looks up an inline operator by its surface symbol.
func (s *Store) Operator(symbol string) (*Operator, bool) { d, ok := s.operators[symbol]; return d, ok }

// Macro looks up a macro body by name.
func (s *Store) Macro(name string) (*Macro, bool) { d, ok := s.macros[name]; return d, ok }

// TopoOrder returns struct-and-enum names in topological order, leaves
// (members/branches with no further struct/enum nesting) first. Simplify
// processes this in reverse, most composite first, per spec §4.5.
func (s *Store) TopoOrder() []string {
	out := make([]string, len(s.topo))
	copy(out, s.topo)
	return out
}

func (s *Store) computeTopoOrder() ([]string, error) {
	deps := make(map[string][]string)
	addDeps := func(name string, members []Member) {
		for _, m := range members {
			if b := m.Type.BaseOf(); b.Kind.IsNamed() {
				deps[name] = append(deps[name], b.Name)
			}
		}
	}
	names := make([]string, 0, len(s.structs)+len(s.enums))
	for name, d := range s.structs {
		names = append(names, name)
		addDeps(name, d.Members)
	}
	for name, d := range s.enums {
		names = append(names, name)
		addDeps(name, d.Branches)
	}
	sort.Strings(names) // stable starting order before the topological sort

	const (
		white = iota
		gray
		black
	)
	color := make(map[string]int, len(names))
	var order []string
	var visit func(string) error
	visit = func(n string) error {
		switch color[n] {
		case black:
			return nil
		case gray:
			return fmt.Errorf("defs: recursive type declaration involving %q", n)
		}
		color[n] = gray
		for _, dep := range deps[n] {
			if err := visit(dep); err != nil {
				return err
			}
		}
		color[n] = black
		order = append(order, n)
		return nil
	}
	for _, n := range names {
		if err := visit(n); err != nil {
			return nil, err
		}
	}
	return order, nil
}
