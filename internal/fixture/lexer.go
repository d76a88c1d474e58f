// Package fixture implements the textual .dhpir format: a small,
// already-resolved statement language used by tests and the CLI to drive
// the compile pipeline without a full Dauphin surface-language parser
// (surface parsing is explicitly out of scope, spec §1). It describes
// identifiers, literals, operator/procedure calls, struct/enum
// constructors, and lvalue paths directly — the shape code generation
// expects after name resolution, not Dauphin's real concrete syntax.
package fixture

import "github.com/alecthomas/participle/v2/lexer"

// Lexer tokenizes .dhpir source, in the same stateful-lexer style the
// teacher's grammar.KansoLexer uses.
var Lexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Comment", `//[^\n]*`, nil},
		{"Number", `[0-9]+(\.[0-9]+)?`, nil},
		{"String", `"(\\.|[^"\\])*"`, nil},
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*`, nil},
		{"Assign", `:=`, nil},
		{"Dollar", `\$`, nil},
		{"At", `@`, nil},
		{"Punct", `[.\[\]!(),;{}:?]`, nil},
		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})
