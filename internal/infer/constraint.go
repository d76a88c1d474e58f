package infer

import (
	"fmt"

	"github.com/dauphin-lang/dauphin/internal/dtypes"
)

type exprKind int

const (
	ecBase exprKind = iota
	ecVec
	ecPlaceholder
)

// ExpressionConstraint is base, vec(...), or a placeholder keyed by
// register or temporary identity (spec §3, "Expression constraints").
type ExpressionConstraint struct {
	kind        exprKind
	base        dtypes.Base
	vec         *ExpressionConstraint
	placeholder Key
}

// Base constructs a base-type constraint.
func Base(b dtypes.Base) ExpressionConstraint {
	return ExpressionConstraint{kind: ecBase, base: b}
}

// Vec constructs vec(member).
func Vec(member ExpressionConstraint) ExpressionConstraint {
	m := member
	return ExpressionConstraint{kind: ecVec, vec: &m}
}

// Placeholder constructs a constraint standing in for whatever key is
// eventually bound.
func Placeholder(k Key) ExpressionConstraint {
	return ExpressionConstraint{kind: ecPlaceholder, placeholder: k}
}

func (e ExpressionConstraint) IsPlaceholder() bool { return e.kind == ecPlaceholder }
func (e ExpressionConstraint) IsVec() bool         { return e.kind == ecVec }
func (e ExpressionConstraint) IsBase() bool        { return e.kind == ecBase }

func (e ExpressionConstraint) PlaceholderKey() Key {
	if e.kind != ecPlaceholder {
		panic("infer: PlaceholderKey of non-placeholder constraint")
	}
	return e.placeholder
}

func (e ExpressionConstraint) BaseType() dtypes.Base {
	if e.kind != ecBase {
		panic("infer: BaseType of non-base constraint")
	}
	return e.base
}

func (e ExpressionConstraint) VecMember() ExpressionConstraint {
	if e.kind != ecVec {
		panic("infer: VecMember of non-vec constraint")
	}
	return *e.vec
}

func (e ExpressionConstraint) String() string {
	switch e.kind {
	case ecBase:
		return e.base.String()
	case ecVec:
		return fmt.Sprintf("vec(%s)", e.vec)
	case ecPlaceholder:
		return fmt.Sprintf("?%s", e.placeholder)
	default:
		return "?"
	}
}

// substitute replaces every occurrence of placeholder(key) within e with
// repl, recursively through vec(...) layers.
func substitute(e ExpressionConstraint, key Key, repl ExpressionConstraint) ExpressionConstraint {
	switch e.kind {
	case ecPlaceholder:
		if e.placeholder == key {
			return repl
		}
		return e
	case ecVec:
		m := substitute(*e.vec, key, repl)
		return Vec(m)
	default:
		return e
	}
}

// containsPlaceholder reports whether e references key as a placeholder
// anywhere within it, used to reject direct self-recursion.
func containsPlaceholder(e ExpressionConstraint, key Key) bool {
	switch e.kind {
	case ecPlaceholder:
		return e.placeholder == key
	case ecVec:
		return containsPlaceholder(*e.vec, key)
	default:
		return false
	}
}

// TypeConstraint wraps an ExpressionConstraint with reference/non-
// reference polarity (spec §3: lvalue origin vs rvalue).
type TypeConstraint struct {
	Reference bool
	Expr      ExpressionConstraint
}

// NonReference builds a value (rvalue) constraint.
func NonReference(e ExpressionConstraint) TypeConstraint { return TypeConstraint{Expr: e} }

// AsReference builds a reference (lvalue) constraint.
func AsReference(e ExpressionConstraint) TypeConstraint {
	return TypeConstraint{Reference: true, Expr: e}
}

func (t TypeConstraint) String() string {
	if t.Reference {
		return fmt.Sprintf("&%s", t.Expr)
	}
	return t.Expr.String()
}
