package infer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dauphin-lang/dauphin/internal/dtypes"
	"github.com/dauphin-lang/dauphin/internal/infer"
	"github.com/dauphin-lang/dauphin/internal/regs"
)

func numberBase() dtypes.Base { return dtypes.Base{Kind: dtypes.Number} }
func stringBase() dtypes.Base { return dtypes.Base{Kind: dtypes.String} }

func TestUnifyEqualBasesSucceedWithNoSubstitution(t *testing.T) {
	substs, err := infer.Unify(infer.Base(numberBase()), infer.Base(numberBase()))
	require.NoError(t, err)
	assert.Empty(t, substs)
}

func TestUnifyMismatchedBasesFails(t *testing.T) {
	_, err := infer.Unify(infer.Base(numberBase()), infer.Base(stringBase()))
	assert.Error(t, err)
}

func TestUnifyPlaceholderBindsToConcreteType(t *testing.T) {
	key := infer.Internal(1)
	substs, err := infer.Unify(infer.Placeholder(key), infer.Base(numberBase()))
	require.NoError(t, err)
	require.Len(t, substs, 1)
	assert.Equal(t, key, substs[0].Key)
	assert.True(t, substs[0].Expr.IsBase())
}

func TestTxnCommitPersistsExternalKeysOnly(t *testing.T) {
	eng := infer.NewEngine()
	txn := eng.Begin()

	ext := infer.External(regs.Register(1))
	internalKey := infer.Internal(7)

	require.NoError(t, txn.Add(ext, infer.NonReference(infer.Base(numberBase()))))
	require.NoError(t, txn.Add(internalKey, infer.NonReference(infer.Base(stringBase()))))
	txn.Commit()

	_, ok := eng.Lookup(ext)
	assert.True(t, ok, "external keys survive commit")
	_, ok = eng.Lookup(internalKey)
	assert.False(t, ok, "internal keys are scoped to the transaction and dropped at commit")
}

func TestTxnRollbackDiscardsEverything(t *testing.T) {
	eng := infer.NewEngine()
	txn := eng.Begin()
	ext := infer.External(regs.Register(2))
	require.NoError(t, txn.Add(ext, infer.NonReference(infer.Base(numberBase()))))
	txn.Rollback()

	_, ok := eng.Lookup(ext)
	assert.False(t, ok)
}

func TestAddDetectsReferenceMismatch(t *testing.T) {
	eng := infer.NewEngine()
	txn := eng.Begin()
	key := infer.External(regs.Register(3))
	require.NoError(t, txn.Add(key, infer.NonReference(infer.Base(numberBase()))))
	err := txn.Add(key, infer.AsReference(infer.Base(numberBase())))
	assert.Error(t, err)
}

func TestAddDetectsRecursiveType(t *testing.T) {
	eng := infer.NewEngine()
	txn := eng.Begin()
	key := infer.External(regs.Register(4))
	self := infer.Vec(infer.Placeholder(key))
	err := txn.Add(key, infer.NonReference(self))
	assert.Error(t, err)
}
