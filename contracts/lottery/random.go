package lottery

import (
	"encoding/binary"
	"math/big"

	"go.dedis.ch/kyber/v3/suites"
	"go.dedis.ch/kyber/v3/util/random"
	"go.dedis.ch/raffle/core/access"
	"go.dedis.ch/raffle/core/execution"
	"golang.org/x/xerrors"
)

// RandomSource produces the index of the winner of a draw.
type RandomSource interface {
	// Index returns an index in [0, n) for the step.
	Index(step execution.Step, n int) (int, error)
}

// BlockSource derives the index from the block of the execution and the
// identity of the caller. The result is unknown to the submitter of the
// transaction but anyone in control of the block production can bias it.
//
// - implements lottery.RandomSource
type BlockSource struct {
	suite suites.Suite
}

// NewBlockSource returns a new source seeded by the blocks.
func NewBlockSource() BlockSource {
	return BlockSource{
		suite: suites.MustFind("Ed25519"),
	}
}

// Index implements lottery.RandomSource. It seeds an extendable-output function
// with the block header, the caller and the number of players, and draws a
// uniform integer below n.
func (s BlockSource) Index(step execution.Step, n int) (int, error) {
	if n <= 0 {
		return 0, xerrors.Errorf("invalid bound %d", n)
	}

	seed := make([]byte, 24)
	binary.LittleEndian.PutUint64(seed, step.Block.Index)
	binary.LittleEndian.PutUint64(seed[8:], uint64(step.Block.Timestamp.UnixNano()))
	binary.LittleEndian.PutUint64(seed[16:], uint64(n))

	seed = append(seed, step.Block.Previous...)

	if step.Current != nil {
		seed = append(seed, access.Text(step.Current.GetIdentity())...)
	}

	xof := s.suite.XOF(seed)

	index := random.Int(big.NewInt(int64(n)), xof)

	return int(index.Int64()), nil
}

// FixedSource always returns the same index, modulo the bound.
//
// - implements lottery.RandomSource
type FixedSource int

// Index implements lottery.RandomSource.
func (s FixedSource) Index(step execution.Step, n int) (int, error) {
	if n <= 0 {
		return 0, xerrors.Errorf("invalid bound %d", n)
	}

	return int(s) % n, nil
}
