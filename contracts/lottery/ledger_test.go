package lottery

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/raffle/core/access"
	"go.dedis.ch/raffle/core/bank"
	"go.dedis.ch/raffle/core/execution"
	"go.dedis.ch/raffle/core/execution/native"
	"go.dedis.ch/raffle/core/ledger"
	"go.dedis.ch/raffle/core/store"
	"go.dedis.ch/raffle/core/store/kv"
	"go.dedis.ch/raffle/core/txn"
	"go.dedis.ch/raffle/core/txn/signed"
	"go.dedis.ch/raffle/crypto/ed25519"
	"golang.org/x/xerrors"
)

func TestLottery_Scenario(t *testing.T) {
	env := newEnvironment(t, NewContract())

	operator := env.newUser(t, 0)
	players := []*user{
		env.newUser(t, 100),
		env.newUser(t, 100),
		env.newUser(t, 100),
	}

	env.requireAccepted(t, operator, 0, CmdDeploy)

	stakes := []uint64{10, 20, 30}
	for i, p := range players {
		res := env.requireAccepted(t, p, stakes[i], CmdEnter)

		expected := make([]string, i+1)
		for j := range expected {
			expected[j] = players[j].account
		}

		require.Equal(t, []execution.Event{EnterEvent{Players: expected}}, res.Events)
	}

	current := env.players(t)
	require.Len(t, current, 3)
	require.Equal(t, []string{players[0].account, players[1].account, players[2].account}, current)
	env.requireBalance(t, bank.EscrowAccount(ContractName), 60)

	res := env.requireAccepted(t, operator, 0, CmdPickWinner)
	require.Len(t, res.Events, 1)

	draw := res.Events[0].(DrawEvent)
	require.Equal(t, uint64(60), draw.Amount)
	require.Equal(t, uint64(1), draw.Round)

	require.Empty(t, env.players(t))
	env.requireBalance(t, bank.EscrowAccount(ContractName), 0)

	var winner string
	err := env.ledger.View(func(r store.Readable) error {
		var found bool
		var err error

		winner, found, err = LastWinner(r)
		require.True(t, found)
		return err
	})
	require.NoError(t, err)
	require.Equal(t, draw.Winner, winner)

	var total uint64
	for i, p := range players {
		balance, err := env.ledger.Balance(p.account)
		require.NoError(t, err)

		expected := 100 - stakes[i]
		if p.account == winner {
			expected += 60
		}

		require.Equal(t, expected, balance)
		total += balance
	}

	require.Equal(t, uint64(300), total)
	require.Contains(t, current, winner)

	// A new round starts right away.
	env.requireAccepted(t, players[0], 10, CmdEnter)
	require.Len(t, env.players(t), 1)
}

func TestLottery_Rejections(t *testing.T) {
	env := newEnvironment(t, NewContract(WithMinStake(10)))

	operator := env.newUser(t, 100)
	alice := env.newUser(t, 100)
	bob := env.newUser(t, 100)

	env.requireRejected(t, alice, 10, CmdEnter, ErrNotDeployed)

	env.requireAccepted(t, operator, 0, CmdDeploy)
	env.requireRejected(t, alice, 0, CmdDeploy, ErrAlreadyDeployed)

	env.requireRejected(t, alice, 9, CmdEnter, ErrInsufficientValue)
	env.requireRejected(t, operator, 50, CmdEnter, ErrUnauthorized)
	env.requireRejected(t, operator, 0, CmdPickWinner, ErrEmptyPool)

	env.requireAccepted(t, alice, 10, CmdEnter)
	env.requireRejected(t, alice, 10, CmdEnter, ErrDuplicateEntry)
	env.requireRejected(t, bob, 0, CmdPickWinner, ErrUnauthorized)
	env.requireRejected(t, operator, 5, CmdPickWinner, ErrUnexpectedValue)

	// Rejected commands never move value.
	require.Equal(t, []string{alice.account}, env.players(t))
	env.requireBalance(t, alice.account, 90)
	env.requireBalance(t, bob.account, 100)
	env.requireBalance(t, operator.account, 100)
	env.requireBalance(t, bank.EscrowAccount(ContractName), 10)
}

func TestLottery_RefusedTransferRollsBack(t *testing.T) {
	env := newEnvironment(t, NewContract(WithRandomSource(FixedSource(0))))

	operator := env.newUser(t, 0)
	alice := env.newUser(t, 50)
	bob := env.newUser(t, 50)

	env.requireAccepted(t, operator, 0, CmdDeploy)
	env.requireAccepted(t, alice, 10, CmdEnter)
	env.requireAccepted(t, bob, 10, CmdEnter)

	require.NoError(t, env.ledger.SetRefuse(alice.account, true))

	env.requireRejected(t, operator, 0, CmdPickWinner, ErrTransferFailed)

	require.Equal(t, []string{alice.account, bob.account}, env.players(t))
	env.requireBalance(t, bank.EscrowAccount(ContractName), 20)
	env.requireBalance(t, alice.account, 40)

	err := env.ledger.View(func(r store.Readable) error {
		state, _, err := ReadState(r)
		require.Equal(t, uint64(20), state.Pool)
		require.Equal(t, "", state.LastWinner)
		require.Equal(t, uint64(0), state.Round)
		return err
	})
	require.NoError(t, err)

	require.NoError(t, env.ledger.SetRefuse(alice.account, false))

	env.requireAccepted(t, operator, 0, CmdPickWinner)
	env.requireBalance(t, alice.account, 60)
}

func TestLottery_EscrowIsNotAdministrable(t *testing.T) {
	env := newEnvironment(t, NewContract(WithRandomSource(FixedSource(0))))

	operator := env.newUser(t, 0)
	alice := env.newUser(t, 100)

	env.requireAccepted(t, operator, 0, CmdDeploy)
	env.requireAccepted(t, alice, 10, CmdEnter)

	escrow := bank.EscrowAccount(ContractName)

	err := env.ledger.Fund(escrow, 1)
	require.True(t, xerrors.Is(err, bank.ErrEscrow))

	err = env.ledger.SetRefuse(escrow, true)
	require.True(t, xerrors.Is(err, bank.ErrEscrow))

	env.requireBalance(t, escrow, 10)

	env.requireAccepted(t, operator, 0, CmdPickWinner)
	env.requireBalance(t, alice.account, 100)
	env.requireBalance(t, escrow, 0)
}

// -----------------------------------------------------------------------------
// Utility functions

type environment struct {
	ledger *ledger.Ledger
}

type user struct {
	account string
	mgr     txn.Manager
}

func newEnvironment(t *testing.T, contract Contract) environment {
	db, err := kv.New(filepath.Join(t.TempDir(), "raffle.db"))
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })

	exec := native.NewExecution()
	RegisterContract(exec, contract)

	var index int64
	clock := func() time.Time {
		index++
		return time.Unix(1600000000+index, 0)
	}

	return environment{
		ledger: ledger.NewLedger(db, exec, ledger.WithClock(clock)),
	}
}

func (env environment) newUser(t *testing.T, funds uint64) *user {
	signer := ed25519.NewSigner()

	u := &user{
		account: access.Text(signer.GetPublicKey()),
		mgr:     signed.NewManager(signer, env.ledger),
	}

	if funds > 0 {
		require.NoError(t, env.ledger.Fund(u.account, funds))
	}

	return u
}

func (env environment) submit(t *testing.T, u *user, value uint64, cmd Command) execution.Result {
	require.NoError(t, u.mgr.Sync())

	tx, err := u.mgr.Make(value,
		txn.Arg{Key: native.ContractArg, Value: []byte(ContractName)},
		txn.Arg{Key: CmdArg, Value: []byte(cmd)})
	require.NoError(t, err)

	res, err := env.ledger.Apply(context.Background(), tx)
	require.NoError(t, err)

	return res
}

func (env environment) requireAccepted(t *testing.T, u *user, value uint64, cmd Command) execution.Result {
	res := env.submit(t, u, value, cmd)
	require.True(t, res.Accepted, res.Message)

	return res
}

func (env environment) requireRejected(t *testing.T, u *user, value uint64, cmd Command, kind error) {
	res := env.submit(t, u, value, cmd)
	require.False(t, res.Accepted)
	require.True(t, xerrors.Is(res.Cause, kind), res.Message)
}

func (env environment) players(t *testing.T) []string {
	var players []string

	err := env.ledger.View(func(r store.Readable) error {
		var err error
		players, err = Players(r)
		return err
	})
	require.NoError(t, err)

	return players
}

func (env environment) requireBalance(t *testing.T, account string, expected uint64) {
	balance, err := env.ledger.Balance(account)
	require.NoError(t, err)
	require.Equal(t, expected, balance)
}
