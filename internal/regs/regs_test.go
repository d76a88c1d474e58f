package regs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dauphin-lang/dauphin/internal/regs"
)

func TestAllocatorMonotonic(t *testing.T) {
	a := regs.NewAllocator()
	r0 := a.Allocate()
	r1 := a.Allocate()
	r2 := a.Allocate()
	assert.Equal(t, regs.Register(0), r0)
	assert.Equal(t, regs.Register(1), r1)
	assert.Equal(t, regs.Register(2), r2)
	assert.Equal(t, 3, a.Len())
}

func TestAllocateN(t *testing.T) {
	a := regs.NewAllocator()
	rs := a.AllocateN(4)
	assert.Equal(t, []regs.Register{0, 1, 2, 3}, rs)
	assert.Equal(t, 4, a.Len())

	next := a.Allocate()
	assert.Equal(t, regs.Register(4), next)
}

func TestInvalidString(t *testing.T) {
	assert.Equal(t, "r?", regs.Invalid.String())
	assert.Equal(t, "r5", regs.Register(5).String())
}
