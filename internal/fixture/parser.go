package fixture

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	dauphinerrors "github.com/dauphin-lang/dauphin/internal/errors"
)

var parser = participle.MustBuild[Program](
	participle.Lexer(Lexer),
	participle.Elide("Whitespace", "Comment"),
	participle.UseLookahead(4),
)

// ParseString parses .dhpir source text, returning a *dauphinerrors.CompilerError
// (formattable via errors.Reporter) on syntax errors instead of participle's
// own error type, so the CLI and tests handle one error shape throughout.
func ParseString(filename, source string) (*Program, error) {
	prog, err := parser.ParseString(filename, source)
	if err != nil {
		if pe, ok := err.(participle.Error); ok {
			pos := pe.Position()
			return nil, dauphinerrors.At(dauphinerrors.KindParseType,
				dauphinerrors.Position{Line: pos.Line, Column: pos.Column},
				"%s", pe.Message())
		}
		return nil, dauphinerrors.New(dauphinerrors.KindParseType, "%s", err)
	}
	return prog, nil
}

// Pos converts a participle-captured lexer.Position into a dauphinerrors.Position.
func Pos(p lexer.Position) dauphinerrors.Position {
	return dauphinerrors.Position{Line: p.Line, Column: p.Column}
}
