package infer

import "fmt"

// ErrCannotUnify is returned when two expression constraints have
// incompatible shapes (different bases, vec vs non-vec).
type ErrCannotUnify struct {
	A, B ExpressionConstraint
}

func (e *ErrCannotUnify) Error() string {
	return fmt.Sprintf("cannot unify %s with %s", e.A, e.B)
}

// ErrRecursiveType is returned when adding a constraint for key would
// make key reference itself as a placeholder, directly or through a
// vec(...) layer.
type ErrRecursiveType struct {
	Key Key
}

func (e *ErrRecursiveType) Error() string {
	return fmt.Sprintf("recursive type constraint on %s", e.Key)
}

// ErrReferenceMismatch is returned when a reference constraint is unified
// against a non-reference constraint for the same key.
type ErrReferenceMismatch struct {
	A, B TypeConstraint
}

func (e *ErrReferenceMismatch) Error() string {
	return fmt.Sprintf("reference/non-reference mismatch: %s vs %s", e.A, e.B)
}
