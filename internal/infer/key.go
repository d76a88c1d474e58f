// Package infer implements Dauphin's transactional type-inference engine:
// unification of expression-level type constraints over register
// placeholders, with commit/rollback bracketing each instruction's
// contribution (spec §4.2).
package infer

import (
	"fmt"

	"github.com/dauphin-lang/dauphin/internal/regs"
)

// Key identifies a constrained quantity: either a register ("external",
// permanent across phases) or a compiler-internal temporary ("internal",
// scoped to a single instruction's constraint gathering and never
// persisted past commit).
type Key struct {
	isExternal bool
	reg        regs.Register
	temp       int
}

// External builds a register-backed key.
func External(r regs.Register) Key { return Key{isExternal: true, reg: r} }

// Internal builds a temporary key, identified by an id unique within the
// instruction currently being processed.
func Internal(id int) Key { return Key{isExternal: false, temp: id} }

// IsExternal reports whether this key is register-backed (survives
// commit) as opposed to a scratch temporary (discarded on commit).
func (k Key) IsExternal() bool { return k.isExternal }

func (k Key) String() string {
	if k.isExternal {
		return fmt.Sprintf("ext(%s)", k.reg)
	}
	return fmt.Sprintf("tmp(%d)", k.temp)
}
