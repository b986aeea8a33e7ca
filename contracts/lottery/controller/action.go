package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.dedis.ch/raffle/cli/node"
	"go.dedis.ch/raffle/contracts/lottery"
	"go.dedis.ch/raffle/core/execution"
	"go.dedis.ch/raffle/core/execution/native"
	"go.dedis.ch/raffle/core/ledger"
	"go.dedis.ch/raffle/core/store"
	"go.dedis.ch/raffle/core/txn"
	"go.dedis.ch/raffle/core/txn/signed"
	"go.dedis.ch/raffle/crypto"
	"golang.org/x/xerrors"
)

// submitAction is an action to submit a lottery command signed by the key of
// the caller.
//
// - implements node.ActionTemplate
type submitAction struct {
	command    lottery.Command
	loadSigner func(path string) (crypto.Signer, error)
}

// Execute implements node.ActionTemplate. It signs and applies the
// transaction, then prints the events.
func (a submitAction) Execute(ctx node.Context) error {
	var l *ledger.Ledger
	err := ctx.Injector.Resolve(&l)
	if err != nil {
		return xerrors.Errorf("failed to resolve ledger: %v", err)
	}

	signer, err := a.loadSigner(ctx.Flags.Path("key"))
	if err != nil {
		return xerrors.Errorf("failed to load signer: %v", err)
	}

	mgr := signed.NewManager(signer, l)

	err = mgr.Sync()
	if err != nil {
		return xerrors.Errorf("failed to sync manager: %v", err)
	}

	tx, err := mgr.Make(ctx.Flags.Uint64("value"),
		txn.Arg{Key: native.ContractArg, Value: []byte(lottery.ContractName)},
		txn.Arg{Key: lottery.CmdArg, Value: []byte(a.command)},
	)
	if err != nil {
		return xerrors.Errorf("failed to make tx: %v", err)
	}

	res, err := l.Apply(context.Background(), tx)
	if err != nil {
		return xerrors.Errorf("failed to apply tx: %v", err)
	}

	if !res.Accepted {
		return xerrors.Errorf("transaction refused: %s", res.Message)
	}

	fmt.Fprintf(ctx.Out, "%s accepted\n", a.command)

	return printEvents(ctx, res.Events)
}

// showAction is an action to display the state of the lottery.
//
// - implements node.ActionTemplate
type showAction struct{}

// Execute implements node.ActionTemplate.
func (showAction) Execute(ctx node.Context) error {
	var l *ledger.Ledger
	err := ctx.Injector.Resolve(&l)
	if err != nil {
		return xerrors.Errorf("failed to resolve ledger: %v", err)
	}

	var state lottery.State
	var found bool

	err = l.View(func(r store.Readable) error {
		state, found, err = lottery.ReadState(r)
		return err
	})
	if err != nil {
		return xerrors.Errorf("failed to read state: %v", err)
	}

	if !found {
		fmt.Fprintln(ctx.Out, "lottery is not deployed")
		return nil
	}

	lastWinner := state.LastWinner
	if lastWinner == "" {
		lastWinner = "none"
	}

	fmt.Fprintf(ctx.Out, "manager: %s\n", state.Manager)
	fmt.Fprintf(ctx.Out, "players: [%s]\n", strings.Join(state.Players, ", "))
	fmt.Fprintf(ctx.Out, "pool: %d\n", state.Pool)
	fmt.Fprintf(ctx.Out, "min stake: %d\n", state.MinStake)
	fmt.Fprintf(ctx.Out, "round: %d\n", state.Round)
	fmt.Fprintf(ctx.Out, "last winner: %s\n", lastWinner)

	return nil
}

func printEvents(ctx node.Context, events []execution.Event) error {
	for _, event := range events {
		data, err := json.Marshal(event)
		if err != nil {
			return xerrors.Errorf("failed to marshal event: %v", err)
		}

		fmt.Fprintf(ctx.Out, "%s %s\n", event.Name(), data)
	}

	return nil
}
