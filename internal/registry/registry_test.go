package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dauphin-lang/dauphin/internal/commands/core"
	"github.com/dauphin-lang/dauphin/internal/commands/std"
	"github.com/dauphin-lang/dauphin/internal/registry"
)

func TestCoreSetTraceMatchesOriginal(t *testing.T) {
	set, err := core.Build()
	require.NoError(t, err)
	assert.Equal(t, uint64(0x6131BA5737E6EAE0), set.ID.Trace)
	assert.Equal(t, 19, set.Size())
}

func TestCoreSetFixedOpcodes(t *testing.T) {
	set, err := core.Build()
	require.NoError(t, err)

	fixed := map[string]int{
		"number": 0, "const": 1, "boolean": 2, "string": 3, "bytes": 4,
		"nil": 5, "copy": 6, "append": 7, "length": 8, "add": 9,
		"numeq": 10, "filter": 11, "run": 12, "seqfilter": 13, "seqat": 14,
		"at": 15, "refilter": 16, "linenumber": 17, "pause": 18,
	}
	for name, opcode := range fixed {
		got, ok := set.LocalOpcode(name)
		require.True(t, ok, "missing opcode for %s", name)
		assert.Equal(t, opcode, got, "opcode mismatch for %s", name)
	}
}

func TestTraceMismatchIsFatal(t *testing.T) {
	entries := core.Types()
	bad := registry.CommandSetID{Name: "core", Major: 0, Minor: 0, Trace: 0xDEADBEEF}
	_, err := registry.BuildSet(bad, entries, false)
	assert.Error(t, err)
}

func TestSuiteConcatenatesInRegistrationOrder(t *testing.T) {
	coreSet, err := core.Build()
	require.NoError(t, err)
	stdSet, err := std.Build()
	require.NoError(t, err)

	suite, err := registry.NewSuite(coreSet, stdSet)
	require.NoError(t, err)

	_, coreGlobal, ok := suite.ForIdentifier("add")
	require.True(t, ok)
	assert.Equal(t, 9, coreGlobal)

	_, stdGlobal, ok := suite.ForIdentifier("plus")
	require.True(t, ok)
	assert.Equal(t, coreSet.Size()+12, stdGlobal)
}

func TestDuplicateSetNameRejected(t *testing.T) {
	coreSet, err := core.Build()
	require.NoError(t, err)
	coreSet2, err := core.Build()
	require.NoError(t, err)
	_, err = registry.NewSuite(coreSet, coreSet2)
	assert.Error(t, err)
}
