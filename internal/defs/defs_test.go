package defs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dauphin-lang/dauphin/internal/defs"
	"github.com/dauphin-lang/dauphin/internal/dtypes"
)

func numberType() dtypes.MemberType {
	return dtypes.NewBase(dtypes.Base{Kind: dtypes.Number})
}

func named(kind dtypes.BaseType, name string) dtypes.MemberType {
	return dtypes.NewBase(dtypes.Base{Kind: kind, Name: name})
}

func TestTopoOrderPutsLeavesBeforeComposites(t *testing.T) {
	store, err := defs.NewStore([]defs.RawDecl{
		&defs.StructDecl{Name: "Leaf", Members: []defs.Member{{Name: "x", Type: numberType()}}},
		&defs.StructDecl{Name: "Outer", Members: []defs.Member{{Name: "inner", Type: named(dtypes.Struct, "Leaf")}}},
	})
	require.NoError(t, err)

	order := store.TopoOrder()
	leafIdx, outerIdx := -1, -1
	for i, n := range order {
		switch n {
		case "Leaf":
			leafIdx = i
		case "Outer":
			outerIdx = i
		}
	}
	require.NotEqual(t, -1, leafIdx)
	require.NotEqual(t, -1, outerIdx)
	assert.Less(t, leafIdx, outerIdx, "Leaf must come before Outer, which contains it")
}

func TestRecursiveTypeDeclarationIsRejected(t *testing.T) {
	_, err := defs.NewStore([]defs.RawDecl{
		&defs.StructDecl{Name: "Node", Members: []defs.Member{
			{Name: "next", Type: named(dtypes.Struct, "Node")},
		}},
	})
	assert.Error(t, err)
}

func TestDuplicateStructNameIsRejected(t *testing.T) {
	decl := &defs.StructDecl{Name: "Point", Members: []defs.Member{{Name: "x", Type: numberType()}}}
	_, err := defs.NewStore([]defs.RawDecl{decl, decl})
	assert.Error(t, err)
}

func TestLookupsByNameAndSymbol(t *testing.T) {
	store, err := defs.NewStore([]defs.RawDecl{
		&defs.StructDecl{Name: "Point", Members: []defs.Member{{Name: "x", Type: numberType()}}},
		&defs.Operator{Symbol: "+", Ident: "plus"},
	})
	require.NoError(t, err)

	s, ok := store.Struct("Point")
	require.True(t, ok)
	assert.Equal(t, "Point", s.Name)

	op, ok := store.Operator("+")
	require.True(t, ok)
	assert.Equal(t, "plus", op.Ident)

	_, ok = store.Enum("Nope")
	assert.False(t, ok)
}
