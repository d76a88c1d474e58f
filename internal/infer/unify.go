package infer

// Subst is one placeholder-to-constraint binding produced by Unify.
type Subst struct {
	Key  Key
	Expr ExpressionConstraint
}

// Unify implements spec §4.2's unification rules over a pair of
// expression constraints: equal bases are compatible with no
// substitution; vec(a)~vec(b) recurses; placeholder(p)~x binds p to x;
// anything else is ErrCannotUnify.
func Unify(a, b ExpressionConstraint) ([]Subst, error) {
	if a.IsPlaceholder() {
		return []Subst{{a.PlaceholderKey(), b}}, nil
	}
	if b.IsPlaceholder() {
		return []Subst{{b.PlaceholderKey(), a}}, nil
	}
	if a.IsVec() && b.IsVec() {
		return Unify(a.VecMember(), b.VecMember())
	}
	if a.IsBase() && b.IsBase() && a.BaseType() == b.BaseType() {
		return nil, nil
	}
	return nil, &ErrCannotUnify{A: a, B: b}
}
