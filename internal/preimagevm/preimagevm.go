// Package preimagevm implements the compile-time value store the
// pre-image pass uses to fold instructions whose inputs are fully known
// (spec §4.8). It tracks knowledge explicitly (a register absent from
// the store is unknown, never defaulted to a zero value) and carries the
// most recently seen source line so pre-image failures can be annotated
// the same way a runtime error would be.
package preimagevm

import (
	"github.com/dauphin-lang/dauphin/internal/errors"
	"github.com/dauphin-lang/dauphin/internal/regs"
)

// Store holds the flat runtime values pre-image has computed so far, one
// []any per register, matching registry.CommandType.Eval's [][]any
// argument shape.
type Store struct {
	values   map[regs.Register][]any
	lastLine int
	haveLine bool
}

// New returns an empty store.
func New() *Store {
	return &Store{values: make(map[regs.Register][]any)}
}

// Known reports whether every register in rs currently has a tracked
// value.
func (s *Store) Known(rs ...regs.Register) bool {
	for _, r := range rs {
		if _, ok := s.values[r]; !ok {
			return false
		}
	}
	return true
}

// Args collects the flat values of rs, in order.
func (s *Store) Args(rs ...regs.Register) [][]any {
	out := make([][]any, len(rs))
	for i, r := range rs {
		out[i] = s.values[r]
	}
	return out
}

// Get returns a single register's known value.
func (s *Store) Get(r regs.Register) ([]any, bool) {
	v, ok := s.values[r]
	return v, ok
}

// SetOne records a single register's known value directly, for literal-
// carrying instructions (NumberConst and friends) whose value lives in
// the instruction itself rather than in an operand register.
func (s *Store) SetOne(r regs.Register, v []any) {
	s.values[r] = v
}

// Set records the result of a successfully pre-image-evaluated
// instruction: every output register becomes known at once.
func (s *Store) Set(rs []regs.Register, vals [][]any) {
	for i, r := range rs {
		if i < len(vals) {
			s.values[r] = vals[i]
		}
	}
}

// Invalidate drops registers whose value can no longer be predicted at
// compile time, once any contributing operand turned out unknown.
func (s *Store) Invalidate(rs ...regs.Register) {
	for _, r := range rs {
		delete(s.values, r)
	}
}

// NoteLine records the most recently seen LineNumber position.
func (s *Store) NoteLine(line int) {
	s.lastLine, s.haveLine = line, true
}

// Annotate wraps err with the most recently seen source line, if any
// LineNumber has been observed yet.
func (s *Store) Annotate(err *errors.CompilerError) *errors.CompilerError {
	if s.haveLine {
		return err.WithLineNumber(s.lastLine)
	}
	return err
}
