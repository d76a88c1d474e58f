package ir

import (
	"github.com/dauphin-lang/dauphin/internal/dtypes"
	"github.com/dauphin-lang/dauphin/internal/regs"
)

// Program is the pipeline's final artifact: one instruction sequence per
// entry point, the register-to-type map inherited from generation, and
// any library-declared headers to carry into serialization (spec §6).
type Program struct {
	Entries map[string][]*Instruction
	Types   map[regs.Register]dtypes.MemberType
	Headers map[string]string
}

// NewProgram returns an empty Program ready to receive entries.
func NewProgram() *Program {
	return &Program{
		Entries: make(map[string][]*Instruction),
		Types:   make(map[regs.Register]dtypes.MemberType),
		Headers: make(map[string]string),
	}
}

// Clone produces a deep-enough copy for idempotence testing: each pass
// receiving a fresh []*Instruction slice per entry, though Instruction
// values themselves are treated as immutable once built.
func (p *Program) Clone() *Program {
	out := NewProgram()
	for name, instrs := range p.Entries {
		cp := make([]*Instruction, len(instrs))
		copy(cp, instrs)
		out.Entries[name] = cp
	}
	for r, t := range p.Types {
		out.Types[r] = t
	}
	for k, v := range p.Headers {
		out.Headers[k] = v
	}
	return out
}
