// Package errors implements Dauphin's single-kind string diagnostics and
// the Rust-like terminal formatter used to report them.
package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Kind classifies a CompilerError. These are logical groupings, not
// distinct Go types: every CompilerError has the same shape.
type Kind string

const (
	// KindParseType covers unknown identifiers, arity mismatches, type
	// clashes, reference/non-reference mismatches, and recursive types.
	KindParseType Kind = "parse/type"
	// KindPassLogic covers invariant violations surfaced by a later pass:
	// missing register info, an impossible instruction surviving simplify,
	// malformed CBOR.
	KindPassLogic Kind = "pass-logic"
	// KindPreImage covers a value that failed to compute during pre-image
	// evaluation; annotated with the last LineNumber position once one
	// has been seen.
	KindPreImage Kind = "pre-image"
	// KindRegistry covers duplicate opcodes/names, trace mismatches,
	// unknown triggers, and opcodes out of range.
	KindRegistry Kind = "library/registry"
)

// Position is a 1-based line/column location in some named source text
// (normally a .dhpir fixture file).
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// CompilerError is the single diagnostic shape used throughout the
// pipeline. Code generation accumulates many of these per compilation;
// pre-image stops at the first one and returns it as an error. The call,
// simplify and linearize passes return plain errors instead.
type CompilerError struct {
	Kind     Kind
	Message  string
	Position Position
	Length   int      // width of the offending region, for the caret marker
	Notes    []string // additional context, e.g. the pass-supplied line number
}

func (e *CompilerError) Error() string {
	if e.Position.Line == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s (at %s)", e.Kind, e.Message, e.Position)
}

// New builds a CompilerError with no position information, for errors
// raised away from any source text (registry mismatches, CBOR decoding).
func New(kind Kind, format string, args ...any) *CompilerError {
	return &CompilerError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// At builds a CompilerError anchored to a source position.
func At(kind Kind, pos Position, format string, args ...any) *CompilerError {
	return &CompilerError{Kind: kind, Message: fmt.Sprintf(format, args...), Position: pos, Length: 1}
}

// WithLineNumber appends an "at source line N" note, used by pre-image to annotate
// an inner pass error with the most recently seen LineNumber instruction.
func (e *CompilerError) WithLineNumber(line int) *CompilerError {
	e.Notes = append(e.Notes, fmt.Sprintf("at source line %d", line))
	return e
}

// Reporter formats CompilerErrors against a named source text, producing
// Rust-like multi-line diagnostics with colorized carets.
type Reporter struct {
	filename string
	lines    []string
}

// NewReporter builds a Reporter for filename/source. source may be empty
// when no fixture text is available (e.g. registry-level errors).
func NewReporter(filename, source string) *Reporter {
	return &Reporter{filename: filename, lines: strings.Split(source, "\n")}
}

// Format renders a single CompilerError as a caret-annotated diagnostic.
func (r *Reporter) Format(err *CompilerError) string {
	var b strings.Builder

	kindColor := color.New(color.FgRed, color.Bold).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	b.WriteString(fmt.Sprintf("%s: %s\n", kindColor(string(err.Kind)), err.Message))

	if err.Position.Line <= 0 || err.Position.Line > len(r.lines) {
		for _, n := range err.Notes {
			b.WriteString(fmt.Sprintf("%s %s\n", dim("note:"), n))
		}
		return b.String()
	}

	width := len(fmt.Sprintf("%d", err.Position.Line))
	if width < 3 {
		width = 3
	}
	indent := strings.Repeat(" ", width)

	b.WriteString(fmt.Sprintf("%s %s %s:%s\n", indent, dim("-->"), r.filename, err.Position))
	b.WriteString(fmt.Sprintf("%s %s\n", indent, dim("│")))

	line := r.lines[err.Position.Line-1]
	b.WriteString(fmt.Sprintf("%s %s %s\n", bold(fmt.Sprintf("%*d", width, err.Position.Line)), dim("│"), line))

	length := err.Length
	if length <= 0 {
		length = 1
	}
	spaces := strings.Repeat(" ", max0(err.Position.Column-1))
	marker := kindColor(strings.Repeat("^", length))
	b.WriteString(fmt.Sprintf("%s %s %s%s\n", indent, dim("│"), spaces, marker))

	for _, n := range err.Notes {
		b.WriteString(fmt.Sprintf("%s %s %s %s\n", indent, dim("│"), dim("note:"), n))
	}
	b.WriteString("\n")
	return b.String()
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
