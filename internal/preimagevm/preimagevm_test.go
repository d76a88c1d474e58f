package preimagevm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dauphin-lang/dauphin/internal/errors"
	"github.com/dauphin-lang/dauphin/internal/preimagevm"
	"github.com/dauphin-lang/dauphin/internal/regs"
)

func TestUnknownRegisterIsNotDefaultedToZero(t *testing.T) {
	s := preimagevm.New()
	assert.False(t, s.Known(regs.Register(0)))
	_, ok := s.Get(regs.Register(0))
	assert.False(t, ok)
}

func TestSetOneThenKnownAndArgs(t *testing.T) {
	s := preimagevm.New()
	s.SetOne(regs.Register(1), []any{1.0, 2.0})
	require.True(t, s.Known(regs.Register(1)))
	args := s.Args(regs.Register(1))
	assert.Equal(t, [][]any{{1.0, 2.0}}, args)
}

func TestSetIsAllOrNothingPerOutputList(t *testing.T) {
	s := preimagevm.New()
	s.Set([]regs.Register{10, 11}, [][]any{{1.0}, {2.0}})
	assert.True(t, s.Known(10, 11))
	v, ok := s.Get(11)
	require.True(t, ok)
	assert.Equal(t, []any{2.0}, v)
}

func TestInvalidateDropsKnowledge(t *testing.T) {
	s := preimagevm.New()
	s.SetOne(regs.Register(1), []any{1.0})
	s.Invalidate(regs.Register(1))
	assert.False(t, s.Known(regs.Register(1)))
}

func TestAnnotateOnlyWrapsAfterALineIsSeen(t *testing.T) {
	s := preimagevm.New()
	base := errors.New(errors.KindPreImage, "boom")
	unannotated := s.Annotate(base)
	assert.Equal(t, base, unannotated)

	s.NoteLine(7)
	annotated := s.Annotate(errors.New(errors.KindPreImage, "boom"))
	require.Len(t, annotated.Notes, 1)
	assert.Contains(t, annotated.Notes[0], "7")
}
