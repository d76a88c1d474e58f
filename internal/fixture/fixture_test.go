package fixture_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dauphin-lang/dauphin/internal/fixture"
)

func TestParseStringParsesAssignmentsAndCalls(t *testing.T) {
	src := `
x := 1;
y := add(x, 2);
flag := true;
name := "hi";
`
	prog, err := fixture.ParseString("t.dhpir", src)
	require.NoError(t, err)
	require.Len(t, prog.Statements, 4)

	first := prog.Statements[0]
	require.NotNil(t, first.Assign)
	assert.Equal(t, "x", first.Assign.Target.Base)
	require.NotNil(t, first.Assign.Value.Number)
	assert.Equal(t, 1.0, *first.Assign.Value.Number)

	second := prog.Statements[1]
	require.NotNil(t, second.Assign.Value.Call)
	assert.Equal(t, "add", second.Assign.Value.Call.Name)
	require.Len(t, second.Assign.Value.Call.Args, 2)
}

func TestParseStringReportsSyntaxErrorsAsCompilerErrors(t *testing.T) {
	_, err := fixture.ParseString("t.dhpir", "x := ;")
	require.Error(t, err)
}

func TestParseStringParsesStructAndEnumLiterals(t *testing.T) {
	src := `
p := Point{x: 1, y: 2};
m := Maybe:some(3);
`
	prog, err := fixture.ParseString("t.dhpir", src)
	require.NoError(t, err)
	require.Len(t, prog.Statements, 2)

	require.NotNil(t, prog.Statements[0].Assign.Value.Struct)
	assert.Equal(t, "Point", prog.Statements[0].Assign.Value.Struct.Name)
	require.Len(t, prog.Statements[0].Assign.Value.Struct.Fields, 2)

	require.NotNil(t, prog.Statements[1].Assign.Value.Enum)
	assert.Equal(t, "Maybe", prog.Statements[1].Assign.Value.Enum.Enum)
	assert.Equal(t, "some", prog.Statements[1].Assign.Value.Enum.Branch)
}

func TestParseStringParsesFieldAndBracketPaths(t *testing.T) {
	src := `
p := Point{x: 1, y: 2};
v := p.x;
q := p[0];
`
	prog, err := fixture.ParseString("t.dhpir", src)
	require.NoError(t, err)
	require.Len(t, prog.Statements, 3)

	pathExpr := prog.Statements[1].Assign.Value.Path
	require.NotNil(t, pathExpr)
	assert.Equal(t, "p", pathExpr.Base)
	require.Len(t, pathExpr.Ops, 1)
	assert.Equal(t, "x", pathExpr.Ops[0].Field)

	bracketExpr := prog.Statements[2].Assign.Value.Path
	require.NotNil(t, bracketExpr)
	require.Len(t, bracketExpr.Ops, 1)
	require.NotNil(t, bracketExpr.Ops[0].Index)
}

func TestParseStringParsesVectorLiterals(t *testing.T) {
	src := `
v := [1, 2, 3];
empty := [];
nested := [[1, 2], [3]];
`
	prog, err := fixture.ParseString("t.dhpir", src)
	require.NoError(t, err)
	require.Len(t, prog.Statements, 3)

	v := prog.Statements[0].Assign.Value.Vec
	require.NotNil(t, v)
	require.Len(t, v.Elems, 3)
	assert.Equal(t, 2.0, *v.Elems[1].Number)

	empty := prog.Statements[1].Assign.Value.Vec
	require.NotNil(t, empty)
	assert.Len(t, empty.Elems, 0)

	nested := prog.Statements[2].Assign.Value.Vec
	require.NotNil(t, nested)
	require.Len(t, nested.Elems, 2)
	require.NotNil(t, nested.Elems[0].Vec)
	assert.Len(t, nested.Elems[0].Vec.Elems, 2)
}
