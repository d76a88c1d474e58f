package dtypes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dauphin-lang/dauphin/internal/dtypes"
)

func TestDepthAndBaseOf(t *testing.T) {
	num := dtypes.NewBase(dtypes.Base{Kind: dtypes.Number})
	assert.Equal(t, 0, num.Depth())
	assert.Equal(t, dtypes.Number, num.BaseOf().Kind)

	vec2 := dtypes.NewVec(dtypes.NewVec(num))
	assert.Equal(t, 2, vec2.Depth())
	assert.True(t, vec2.IsVec())
	assert.Equal(t, dtypes.Number, vec2.BaseOf().Kind)
}

func TestElemAndBasePanicOnWrongShape(t *testing.T) {
	num := dtypes.NewBase(dtypes.Base{Kind: dtypes.Boolean})
	assert.Panics(t, func() { num.Elem() })

	vec := dtypes.NewVec(num)
	assert.Panics(t, func() { vec.Base() })
}

func TestEqual(t *testing.T) {
	a := dtypes.NewVec(dtypes.NewBase(dtypes.Base{Kind: dtypes.String}))
	b := dtypes.NewVec(dtypes.NewBase(dtypes.Base{Kind: dtypes.String}))
	c := dtypes.NewVec(dtypes.NewBase(dtypes.Base{Kind: dtypes.Number}))
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestNamedBaseString(t *testing.T) {
	s := dtypes.Base{Kind: dtypes.Struct, Name: "Point"}
	assert.Equal(t, "struct(Point)", s.String())
	assert.True(t, s.Kind.IsNamed())
}
