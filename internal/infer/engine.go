package infer

// Engine owns the permanent constraint store: every key ever committed.
// Only External (register-backed) keys are ever present here — Internal
// keys are scratch temporaries scoped to one transaction and are dropped
// at Commit, mirroring the original implementation's typeinf.rs (its
// commit() filters on is_perm() before persisting).
type Engine struct {
	store map[Key]TypeConstraint
}

// NewEngine returns an empty inference engine.
func NewEngine() *Engine {
	return &Engine{store: make(map[Key]TypeConstraint)}
}

// Lookup returns the committed constraint for key, if any.
func (e *Engine) Lookup(key Key) (TypeConstraint, bool) {
	tc, ok := e.store[key]
	return tc, ok
}

// Txn stages constraint additions for a single instruction. Begin/Commit/
// Rollback bracket each instruction so a failed Call constraint never
// poisons the permanent store (spec §4.2).
type Txn struct {
	eng     *Engine
	overlay map[Key]TypeConstraint
}

// Begin opens a transaction against the engine's current committed
// state; staged Add calls are visible to later Add calls within the same
// transaction but invisible to anyone else until Commit.
func (e *Engine) Begin() *Txn {
	return &Txn{eng: e, overlay: make(map[Key]TypeConstraint)}
}

func (t *Txn) lookup(key Key) (TypeConstraint, bool) {
	if tc, ok := t.overlay[key]; ok {
		return tc, true
	}
	return t.eng.Lookup(key)
}

// Add implements spec §4.2's add(key, constraint) operation.
func (t *Txn) Add(key Key, tc TypeConstraint) error {
	resolved := t.substituteKnown(tc)

	if existing, ok := t.lookup(key); ok {
		if existing.Reference != resolved.Reference {
			return &ErrReferenceMismatch{A: existing, B: resolved}
		}
		substs, err := Unify(existing.Expr, resolved.Expr)
		if err != nil {
			return err
		}
		for _, s := range substs {
			t.applySubst(s)
		}
		return nil
	}

	if containsPlaceholder(resolved.Expr, key) {
		return &ErrRecursiveType{Key: key}
	}

	t.applySubst(Subst{Key: key, Expr: resolved.Expr})
	// the new binding's reference polarity is recorded directly since
	// applySubst only ever rewrites Expr fields of existing entries.
	cur := t.overlay[key]
	cur.Reference = resolved.Reference
	t.overlay[key] = cur
	return nil
}

// substituteKnown replaces every placeholder in tc.Expr that already has
// a binding (in this transaction or committed) with that binding,
// recursively, before the constraint is unified or inserted.
func (t *Txn) substituteKnown(tc TypeConstraint) TypeConstraint {
	return TypeConstraint{Reference: tc.Reference, Expr: t.substituteExpr(tc.Expr)}
}

func (t *Txn) substituteExpr(e ExpressionConstraint) ExpressionConstraint {
	switch {
	case e.IsPlaceholder():
		if bound, ok := t.lookup(e.PlaceholderKey()); ok {
			return t.substituteExpr(bound.Expr)
		}
		return e
	case e.IsVec():
		return Vec(t.substituteExpr(e.VecMember()))
	default:
		return e
	}
}

// applySubst substitutes s.Expr for every placeholder(s.Key) in every
// currently staged or committed-and-overlaid constraint, then records
// s itself as a binding.
func (t *Txn) applySubst(s Subst) {
	for k, v := range t.overlay {
		t.overlay[k] = TypeConstraint{Reference: v.Reference, Expr: substitute(v.Expr, s.Key, s.Expr)}
	}
	if cur, ok := t.overlay[s.Key]; ok {
		cur.Expr = s.Expr
		t.overlay[s.Key] = cur
	} else {
		t.overlay[s.Key] = TypeConstraint{Expr: s.Expr}
	}
}

// Commit persists every External-keyed staged binding into the engine's
// permanent store. Internal-keyed bindings are discarded: they were
// scoped to this instruction's constraint gathering only.
func (t *Txn) Commit() {
	for k, v := range t.overlay {
		if k.IsExternal() {
			t.eng.store[k] = v
		}
	}
}

// Rollback discards every staged binding; the permanent store is
// untouched.
func (t *Txn) Rollback() {
	t.overlay = nil
}
