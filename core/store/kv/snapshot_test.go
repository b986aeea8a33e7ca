package kv

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/raffle/internal/testing/fake"
)

func TestBucketSnapshot_Get_Set_Delete(t *testing.T) {
	db := newTestDB(t)

	var kept []byte

	err := db.Update(func(txn WritableTx) error {
		b, err := txn.GetBucketOrCreate([]byte("state"))
		require.NoError(t, err)

		snap := NewSnapshot(b)

		value, err := snap.Get([]byte("A"))
		require.NoError(t, err)
		require.Nil(t, value)

		require.NoError(t, snap.Set([]byte("A"), []byte("B")))

		kept, err = snap.Get([]byte("A"))
		require.NoError(t, err)

		require.NoError(t, snap.Delete([]byte("C")))

		return nil
	})
	require.NoError(t, err)

	// The value is a copy that is still valid after the transaction.
	require.Equal(t, []byte("B"), kept)
}

func TestBucketSnapshot_Errors(t *testing.T) {
	snap := NewSnapshot(badBucket{})

	err := snap.Set([]byte{1}, []byte{2})
	require.EqualError(t, err, fake.Err("failed to set key '01'"))

	err = snap.Delete([]byte{1})
	require.EqualError(t, err, fake.Err("failed to delete key '01'"))
}

func TestNewReadable(t *testing.T) {
	r := NewReadable(nil)

	value, err := r.Get([]byte("A"))
	require.NoError(t, err)
	require.Nil(t, value)

	db := newTestDB(t)

	err = db.Update(func(txn WritableTx) error {
		b, err := txn.GetBucketOrCreate([]byte("state"))
		require.NoError(t, err)

		require.NoError(t, b.Set([]byte("A"), []byte("B")))

		value, err := NewReadable(b).Get([]byte("A"))
		require.NoError(t, err)
		require.Equal(t, []byte("B"), value)

		return nil
	})
	require.NoError(t, err)
}

// -----------------------------------------------------------------------------
// Utility functions

type badBucket struct {
	Bucket
}

func (badBucket) Set(key, value []byte) error {
	return fake.GetError()
}

func (badBucket) Delete(key []byte) error {
	return fake.GetError()
}
