package lottery

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/raffle/internal/testing/fake"
	"golang.org/x/xerrors"
)

func TestKind_String(t *testing.T) {
	require.Equal(t, "unauthorized", Unauthorized.String())
	require.Equal(t, "empty pool", EmptyPool.String())
	require.Equal(t, "transfer failed", TransferFailed.String())
	require.Equal(t, "kind(42)", Kind(42).String())
}

func TestRejectedError_Is(t *testing.T) {
	err := reject(DuplicateEntry, "'%s' already entered", "bob")

	require.True(t, xerrors.Is(err, ErrDuplicateEntry))
	require.False(t, xerrors.Is(err, ErrEmptyPool))
	require.False(t, xerrors.Is(err, fake.GetError()))

	wrapped := xerrors.Errorf("failed to ENTER: %w", err)
	require.True(t, xerrors.Is(wrapped, ErrDuplicateEntry))

	require.EqualError(t, ErrEmptyPool, "rejected: empty pool")
}

func TestKindOf(t *testing.T) {
	kind, ok := KindOf(xerrors.Errorf("oops: %w", reject(EmptyPool, "no player")))
	require.True(t, ok)
	require.Equal(t, EmptyPool, kind)

	_, ok = KindOf(fake.GetError())
	require.False(t, ok)

	_, ok = KindOf(nil)
	require.False(t, ok)
}
