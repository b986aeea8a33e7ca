package prefixed

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/raffle/internal/testing/fake"
)

func TestSnapshot_Isolation(t *testing.T) {
	root := fake.NewSnapshot()

	a := NewSnapshot("A", root)
	b := NewSnapshot("B", root)

	require.NoError(t, a.Set([]byte("key"), []byte("from A")))
	require.NoError(t, b.Set([]byte("key"), []byte("from B")))

	value, err := a.Get([]byte("key"))
	require.NoError(t, err)
	require.Equal(t, []byte("from A"), value)

	value, err = NewReadable("B", root).Get([]byte("key"))
	require.NoError(t, err)
	require.Equal(t, []byte("from B"), value)

	value, err = root.Get([]byte("key"))
	require.NoError(t, err)
	require.Nil(t, value)

	require.NoError(t, a.Delete([]byte("key")))

	value, err = a.Get([]byte("key"))
	require.NoError(t, err)
	require.Nil(t, value)
	require.Equal(t, 1, root.Len())
}

func TestSnapshot_Errors(t *testing.T) {
	snap := NewSnapshot("A", fake.NewBadSnapshot())

	_, err := snap.Get([]byte("key"))
	require.Equal(t, fake.GetError(), err)

	err = snap.Set([]byte("key"), nil)
	require.Equal(t, fake.GetError(), err)

	err = snap.Delete([]byte("key"))
	require.Equal(t, fake.GetError(), err)
}

func TestNewPrefixedKey(t *testing.T) {
	key := NewPrefixedKey([]byte("A"), []byte("B"))
	require.Len(t, key, 32)

	require.Equal(t, key, NewPrefixedKey([]byte("A"), []byte("B")))
	require.NotEqual(t, key, NewPrefixedKey([]byte("AB"), nil))
	require.NotEqual(t, key, NewPrefixedKey(nil, []byte("AB")))
}
