// Package gen implements the generation context: the mutable container
// that owns the current instruction list, register allocator, and
// register-to-type map threaded through every pass (spec §4.1).
package gen

import (
	"github.com/dauphin-lang/dauphin/internal/dtypes"
	"github.com/dauphin-lang/dauphin/internal/infer"
	"github.com/dauphin-lang/dauphin/internal/ir"
	"github.com/dauphin-lang/dauphin/internal/regs"
)

// Context is passed by exclusive reference to every pass. Passes never
// share it across goroutines (spec §5: single-threaded cooperative).
type Context struct {
	alloc *regs.Allocator
	types map[regs.Register]dtypes.MemberType

	working   []*ir.Instruction
	committed []*ir.Instruction

	infer *infer.Engine
	txn   *infer.Txn
}

// New returns a fresh, empty generation context.
func New() *Context {
	return &Context{
		alloc: regs.NewAllocator(),
		types: make(map[regs.Register]dtypes.MemberType),
		infer: infer.NewEngine(),
	}
}

// Allocate returns a fresh register, recording hint in the type map when
// provided.
func (c *Context) Allocate(hint *dtypes.MemberType) regs.Register {
	r := c.alloc.Allocate()
	if hint != nil {
		c.types[r] = *hint
	}
	return r
}

// Add appends an instruction to the working buffer.
func (c *Context) Add(in *ir.Instruction) {
	c.working = append(c.working, in)
}

// AddTimed appends an instruction to the working buffer with a pre-image
// execution-time cost estimate attached.
func (c *Context) AddTimed(in *ir.Instruction, cost float64) {
	in.Cost = cost
	c.working = append(c.working, in)
}

// Instructions returns the last committed instruction list (i.e. the
// input every pass operates on, until it calls PhaseFinished).
func (c *Context) Instructions() []*ir.Instruction {
	return c.committed
}

// PhaseFinished atomically replaces the committed list with the working
// buffer, clears the working buffer, and preserves the allocator and type
// map (spec §4.1).
func (c *Context) PhaseFinished() {
	c.committed = c.working
	c.working = nil
}

// SetType records the member type of a register.
func (c *Context) SetType(r regs.Register, t dtypes.MemberType) {
	c.types[r] = t
}

// TypeOf looks up a register's member type.
func (c *Context) TypeOf(r regs.Register) (dtypes.MemberType, bool) {
	t, ok := c.types[r]
	return t, ok
}

// Types exposes the full register-to-type map for passes (linearize,
// simplify) that must mutate it wholesale as they replace registers.
func (c *Context) Types() map[regs.Register]dtypes.MemberType {
	return c.types
}

// Allocator exposes the underlying allocator for passes that need to mint
// many registers in a batch (simplify, linearize).
func (c *Context) Allocator() *regs.Allocator {
	return c.alloc
}

// Infer exposes the type-inference engine.
func (c *Context) Infer() *infer.Engine {
	return c.infer
}

// BeginConstraint opens a transaction on the inference engine, bracketing
// one instruction's constraint addition (spec §4.2).
func (c *Context) BeginConstraint() *infer.Txn {
	return c.infer.Begin()
}
