package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dauphin-lang/dauphin/internal/commands/core"
)

func evalOf(t *testing.T, name string) func(args [][]any) ([][]any, bool, error) {
	t.Helper()
	for _, e := range core.Types() {
		if e.Type.Name() == name {
			ct := e.Type
			return ct.Eval
		}
	}
	t.Fatalf("no core command named %q", name)
	return nil
}

func TestAddBroadcasts(t *testing.T) {
	add := evalOf(t, "add")
	out, ok, err := add([][]any{{1.0, 2.0, 3.0}, {10.0}})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []any{11.0, 12.0, 13.0}, out[0])
}

func TestAddByEmptyIsError(t *testing.T) {
	add := evalOf(t, "add")
	_, _, err := add([][]any{{1.0}, {}})
	assert.Error(t, err)
}

func TestNumEqBroadcasts(t *testing.T) {
	numeq := evalOf(t, "numeq")
	out, ok, err := numeq([][]any{{1.0, 2.0, 1.0}, {1.0}})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []any{true, false, true}, out[0])
}

func TestFilterBroadcastsMask(t *testing.T) {
	filter := evalOf(t, "filter")
	out, ok, err := filter([][]any{{10.0, 20.0, 30.0, 40.0}, {true, false}})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []any{10.0, 30.0}, out[0])
}

func TestAtEmitsPositions(t *testing.T) {
	at := evalOf(t, "at")
	out, ok, err := at([][]any{{"a", "b", "c"}})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []any{0.0, 1.0, 2.0}, out[0])
}

func TestSeqAtExpandsEachLength(t *testing.T) {
	seqat := evalOf(t, "seqat")
	out, ok, err := seqat([][]any{{2.0, 0.0, 3.0}})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []any{0.0, 1.0, 0.0, 1.0, 2.0}, out[0])
}

func TestRunExpandsStartsAndLengths(t *testing.T) {
	run := evalOf(t, "run")
	out, ok, err := run([][]any{{10.0, 20.0}, {2.0, 3.0}})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []any{10.0, 11.0, 20.0, 21.0, 22.0}, out[0])
}

func TestRunZeroLengthErrors(t *testing.T) {
	run := evalOf(t, "run")
	_, _, err := run([][]any{{10.0}, {}})
	assert.Error(t, err)
}

func TestSeqFilterWrapsAround(t *testing.T) {
	seqfilter := evalOf(t, "seqfilter")
	out, ok, err := seqfilter([][]any{{"a", "b", "c"}, {1.0}, {4.0}})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []any{"b", "c", "a", "b"}, out[0])
}

func TestReFilterGathersModulo(t *testing.T) {
	refilter := evalOf(t, "refilter")
	out, ok, err := refilter([][]any{{"x", "y", "z"}, {0.0, 4.0}})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []any{"x", "y"}, out[0])
}

func TestConstKindsCannotBeFoldedFurther(t *testing.T) {
	for _, name := range []string{"const", "linenumber", "pause"} {
		eval := evalOf(t, name)
		_, ok, err := eval(nil)
		require.NoError(t, err)
		assert.False(t, ok)
	}
}
