// Package dtypes implements Dauphin's base and member type system: the
// finite closed set of primitive types plus named structs/enums, and the
// inductive vec(...) wrapping used before linearize eliminates it.
package dtypes

import "fmt"

// BaseType is the finite, closed set of primitive kinds. The numeric
// values match the wire-format ordering and must never be reordered:
// number=0, boolean=1, string=2, bytes=3, struct=4, enum=5, invalid=6.
type BaseType int

const (
	Number BaseType = iota
	Boolean
	String
	Bytes
	Struct
	Enum
	Invalid
)

func (b BaseType) String() string {
	switch b {
	case Number:
		return "number"
	case Boolean:
		return "boolean"
	case String:
		return "string"
	case Bytes:
		return "bytes"
	case Struct:
		return "struct"
	case Enum:
		return "enum"
	case Invalid:
		return "invalid"
	default:
		return fmt.Sprintf("basetype(%d)", int(b))
	}
}

// IsNamed reports whether this base type carries a declaration name
// (struct or enum).
func (b BaseType) IsNamed() bool {
	return b == Struct || b == Enum
}

// Base is a fully-formed base-type value: the tag plus, for Struct/Enum,
// the name of the declaration it refers to in the definition store.
type Base struct {
	Kind BaseType
	Name string // only meaningful when Kind.IsNamed()
}

func (b Base) String() string {
	if b.Kind.IsNamed() {
		return fmt.Sprintf("%s(%s)", b.Kind, b.Name)
	}
	return b.Kind.String()
}

// MemberType is either a Base or a Vec wrapping another MemberType, to
// arbitrary depth. Recursive member types (a struct/enum containing
// itself, directly or through a cycle) are rejected at construction time
// by the definition store, never by MemberType itself.
type MemberType struct {
	base Base        // valid only when vec == nil
	vec  *MemberType // non-nil for vec(...) types
}

// NewBase constructs a base member type.
func NewBase(b Base) MemberType {
	return MemberType{base: b}
}

// NewVec constructs vec(member).
func NewVec(member MemberType) MemberType {
	m := member
	return MemberType{vec: &m}
}

// IsVec reports whether this type is a vec(...) wrapper.
func (m MemberType) IsVec() bool {
	return m.vec != nil
}

// Elem returns the element type of a vec(...); panics if !IsVec().
func (m MemberType) Elem() MemberType {
	if m.vec == nil {
		panic("dtypes: Elem of non-vec MemberType")
	}
	return *m.vec
}

// Base returns the base type; panics if IsVec().
func (m MemberType) Base() Base {
	if m.vec != nil {
		panic("dtypes: Base of vec MemberType")
	}
	return m.base
}

// Depth counts vec(...) nesting: 0 for a bare base type, 1 for vec(base),
// and so on.
func (m MemberType) Depth() int {
	d := 0
	for cur := m; cur.IsVec(); cur = cur.Elem() {
		d++
	}
	return d
}

// BaseOf walks through every vec(...) layer and returns the innermost
// base type.
func (m MemberType) BaseOf() Base {
	cur := m
	for cur.IsVec() {
		cur = cur.Elem()
	}
	return cur.base
}

func (m MemberType) String() string {
	if m.IsVec() {
		return fmt.Sprintf("vec(%s)", m.Elem())
	}
	return m.base.String()
}

// Equal reports structural equality.
func (m MemberType) Equal(o MemberType) bool {
	if m.IsVec() != o.IsVec() {
		return false
	}
	if m.IsVec() {
		return m.Elem().Equal(o.Elem())
	}
	return m.base == o.base
}
