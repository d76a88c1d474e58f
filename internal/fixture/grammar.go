package fixture

import "github.com/alecthomas/participle/v2/lexer"

// Program is the root of a parsed .dhpir fixture: a flat statement list,
// matching the "already-resolved statement AST" the surrounding parser
// is modeled as an interface for (spec §1).
type Program struct {
	Statements []*Stmt `@@*`
}

// Stmt is either an assignment to an lvalue path or a bare expression
// statement (e.g. a procedure call for its side effects).
type Stmt struct {
	Pos    lexer.Position
	Assign *AssignStmt `  @@`
	Bare   *Expr       `| @@ ";"`
}

// AssignStmt is target := value;
type AssignStmt struct {
	Target *Path `@@ ":="`
	Value  *Expr `@@ ";"`
}

// Path is an lvalue/rvalue path: a base identifier followed by field
// access (".name"), enum-branch access ("!name" / "?name"), or bracket
// indexing/filtering ("[expr]").
type Path struct {
	Base string      `@Ident`
	Ops  []*PathStep `@@*`
}

// PathStep is one element of a Path tail.
type PathStep struct {
	Field    string `  "." @Ident`
	Branch   string `| "!" @Ident`
	TestOnly string `| "?" @Ident`
	Index    *Expr  `| "[" @@ "]"`
}

// Expr is an rvalue expression.
type Expr struct {
	Number  *float64   `  @Number`
	Boolean *string    `| @("true" | "false")`
	Str     *string    `| @String`
	Dollar  bool       `| @Dollar`
	At      bool       `| @At`
	Struct  *StructLit `| @@`
	Enum    *EnumLit   `| @@`
	Vec     *VecLit    `| @@`
	Call    *CallExpr  `| @@`
	Path    *Path      `| @@`
}

// VecLit constructs a vector value: [e1, e2, ...].
type VecLit struct {
	Elems []*Expr `"[" [ @@ { "," @@ } ] "]"`
}

// CallExpr is an operator or procedure call: name(args...).
type CallExpr struct {
	Name string  `@Ident "("`
	Args []*Expr `[ @@ { "," @@ } ] ")"`
}

// StructLit constructs a struct value: Name{field: expr, ...}.
type StructLit struct {
	Name   string       `@Ident "{"`
	Fields []*FieldInit `[ @@ { "," @@ } ] "}"`
}

// FieldInit is one field: value pair inside a StructLit.
type FieldInit struct {
	Name  string `@Ident ":"`
	Value *Expr  `@@`
}

// EnumLit constructs an enum value: Enum:Branch(payload).
type EnumLit struct {
	Enum    string `@Ident ":"`
	Branch  string `@Ident`
	Payload *Expr  `[ "(" @@ ")" ]`
}
