package serialize_test

import (
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dauphin-lang/dauphin/internal/commands/core"
	"github.com/dauphin-lang/dauphin/internal/errors"
	"github.com/dauphin-lang/dauphin/internal/gen"
	"github.com/dauphin-lang/dauphin/internal/ir"
	"github.com/dauphin-lang/dauphin/internal/registry"
	"github.com/dauphin-lang/dauphin/internal/serialize"
)

func TestProgramEncodesToACBORMapWithSuiteEntriesAndHeaders(t *testing.T) {
	set, err := core.Build()
	require.NoError(t, err)
	suite, err := registry.NewSuite(set)
	require.NoError(t, err)

	ctx := gen.New()
	dst := ctx.Allocate(nil)
	ctx.Add(ir.NumberConstInstr(dst, 1))
	ctx.Add(ir.LineNumberInstr(errors.Position{Line: 1, Column: 1}))
	ctx.PhaseFinished()

	prog := ir.NewProgram()
	prog.Entries["main"] = ctx.Instructions()
	prog.Headers["name"] = "test"

	data, err := serialize.Program(prog, suite)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	var decoded map[string]any
	require.NoError(t, cbor.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "suite")
	assert.Contains(t, decoded, "entries")
	assert.Contains(t, decoded, "headers")
}
