package lottery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/raffle/core/execution"
)

func TestBlockSource_Index(t *testing.T) {
	src := NewBlockSource()

	step := makeStep(t, "alice", 0)
	step.Block = execution.Block{
		Index:     3,
		Timestamp: time.Unix(1600000000, 0),
		Previous:  []byte{0xaa},
	}

	first, err := src.Index(step, 7)
	require.NoError(t, err)
	require.GreaterOrEqual(t, first, 0)
	require.Less(t, first, 7)

	// The same block gives the same index.
	again, err := src.Index(step, 7)
	require.NoError(t, err)
	require.Equal(t, first, again)

	seen := map[int]struct{}{}
	for i := uint64(0); i < 64; i++ {
		step.Block.Index = i

		index, err := src.Index(step, 3)
		require.NoError(t, err)
		require.GreaterOrEqual(t, index, 0)
		require.Less(t, index, 3)

		seen[index] = struct{}{}
	}

	require.Len(t, seen, 3)

	_, err = src.Index(step, 0)
	require.EqualError(t, err, "invalid bound 0")

	index, err := src.Index(execution.Step{}, 1)
	require.NoError(t, err)
	require.Equal(t, 0, index)
}

func TestFixedSource_Index(t *testing.T) {
	index, err := FixedSource(5).Index(execution.Step{}, 3)
	require.NoError(t, err)
	require.Equal(t, 2, index)

	_, err = FixedSource(0).Index(execution.Step{}, -1)
	require.EqualError(t, err, "invalid bound -1")
}
