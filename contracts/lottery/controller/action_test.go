package controller

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/raffle/cli/node"
	"go.dedis.ch/raffle/contracts/lottery"
	"go.dedis.ch/raffle/core/access"
	"go.dedis.ch/raffle/core/execution/native"
	"go.dedis.ch/raffle/core/ledger"
	"go.dedis.ch/raffle/core/store/kv"
	"go.dedis.ch/raffle/crypto"
	"go.dedis.ch/raffle/crypto/ed25519"
	"go.dedis.ch/raffle/internal/testing/fake"
)

func TestSubmitAction_Execute(t *testing.T) {
	l := makeLedger(t)

	operator := ed25519.NewSigner()
	player := ed25519.NewSigner()

	require.NoError(t, l.Fund(access.Text(player.GetPublicKey()), 100))

	out := new(bytes.Buffer)

	deploy := submitAction{command: lottery.CmdDeploy, loadSigner: signerOf(operator)}
	err := deploy.Execute(makeContext(l, out, fake.Flags{}))
	require.NoError(t, err)
	require.Equal(t, "DEPLOY accepted\n", out.String())

	out.Reset()

	enter := submitAction{command: lottery.CmdEnter, loadSigner: signerOf(player)}
	err = enter.Execute(makeContext(l, out, fake.Flags{"value": uint64(15)}))
	require.NoError(t, err)
	require.Contains(t, out.String(), "ENTER accepted\n")
	require.Contains(t, out.String(), `Enter {"players":["`+access.Text(player.GetPublicKey())+`"]}`)

	err = enter.Execute(makeContext(l, out, fake.Flags{"value": uint64(15)}))
	require.Error(t, err)
	require.Contains(t, err.Error(), "transaction refused: failed to ENTER: rejected: duplicate entry")

	out.Reset()

	err = showAction{}.Execute(makeContext(l, out, fake.Flags{}))
	require.NoError(t, err)
	require.Contains(t, out.String(), "pool: 15\n")
	require.Contains(t, out.String(), "last winner: none\n")

	out.Reset()

	draw := submitAction{command: lottery.CmdPickWinner, loadSigner: signerOf(operator)}
	err = draw.Execute(makeContext(l, out, fake.Flags{}))
	require.NoError(t, err)
	require.Contains(t, out.String(), "PICK_WINNER accepted\n")
	require.Contains(t, out.String(), `"amount":15`)

	out.Reset()

	err = showAction{}.Execute(makeContext(l, out, fake.Flags{}))
	require.NoError(t, err)
	require.Contains(t, out.String(), "players: []\n")
	require.Contains(t, out.String(), "round: 1\n")
	require.Contains(t, out.String(), "last winner: "+access.Text(player.GetPublicKey()))
}

func TestSubmitAction_Failures(t *testing.T) {
	out := new(bytes.Buffer)

	action := submitAction{command: lottery.CmdDeploy, loadSigner: badSigner}

	ctx := node.Context{Injector: node.NewInjector(), Flags: fake.Flags{}, Out: out}

	err := action.Execute(ctx)
	require.EqualError(t, err,
		"failed to resolve ledger: couldn't find dependency for '*ledger.Ledger'")

	err = showAction{}.Execute(ctx)
	require.EqualError(t, err,
		"failed to resolve ledger: couldn't find dependency for '*ledger.Ledger'")

	l := makeLedger(t)

	err = action.Execute(makeContext(l, out, fake.Flags{}))
	require.EqualError(t, err, fake.Err("failed to load signer"))

	action.loadSigner = signerOf(fake.NewBadSigner())

	err = action.Execute(makeContext(l, out, fake.Flags{}))
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to make tx: failed to sign: ")
}

func TestShowAction_NotDeployed(t *testing.T) {
	out := new(bytes.Buffer)

	err := showAction{}.Execute(makeContext(makeLedger(t), out, fake.Flags{}))
	require.NoError(t, err)
	require.Equal(t, "lottery is not deployed\n", out.String())
}

// -----------------------------------------------------------------------------
// Utility functions

func makeLedger(t *testing.T) *ledger.Ledger {
	db, err := kv.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })

	exec := native.NewExecution()
	lottery.RegisterContract(exec, lottery.NewContract())

	return ledger.NewLedger(db, exec)
}

func makeContext(l *ledger.Ledger, out *bytes.Buffer, flags fake.Flags) node.Context {
	inj := node.NewInjector()
	inj.Inject(l)

	return node.Context{
		Injector: inj,
		Flags:    flags,
		Out:      out,
	}
}

func signerOf(signer crypto.Signer) func(string) (crypto.Signer, error) {
	return func(string) (crypto.Signer, error) {
		return signer, nil
	}
}

func badSigner(string) (crypto.Signer, error) {
	return nil, fake.GetError()
}
