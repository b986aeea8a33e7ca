package controller

import (
	"fmt"

	"go.dedis.ch/raffle/cli/node"
	"go.dedis.ch/raffle/core/ledger"
	"golang.org/x/xerrors"
)

// fundAction is an action to credit an account.
//
// - implements node.ActionTemplate
type fundAction struct{}

// Execute implements node.ActionTemplate.
func (fundAction) Execute(ctx node.Context) error {
	l, err := resolveLedger(ctx)
	if err != nil {
		return err
	}

	account := ctx.Flags.String("identity")

	err = l.Fund(account, ctx.Flags.Uint64("amount"))
	if err != nil {
		return xerrors.Errorf("failed to fund: %v", err)
	}

	return printBalance(ctx, l, account)
}

// balanceAction is an action to print the balance of an account.
//
// - implements node.ActionTemplate
type balanceAction struct{}

// Execute implements node.ActionTemplate.
func (balanceAction) Execute(ctx node.Context) error {
	l, err := resolveLedger(ctx)
	if err != nil {
		return err
	}

	return printBalance(ctx, l, ctx.Flags.String("identity"))
}

// refuseAction is an action to change whether an account refuses deposits.
//
// - implements node.ActionTemplate
type refuseAction struct{}

// Execute implements node.ActionTemplate.
func (refuseAction) Execute(ctx node.Context) error {
	l, err := resolveLedger(ctx)
	if err != nil {
		return err
	}

	account := ctx.Flags.String("identity")
	enabled := ctx.Flags.Bool("enabled")

	err = l.SetRefuse(account, enabled)
	if err != nil {
		return xerrors.Errorf("failed to set flag: %v", err)
	}

	fmt.Fprintf(ctx.Out, "%s refuses deposits: %t\n", account, enabled)

	return nil
}

func resolveLedger(ctx node.Context) (*ledger.Ledger, error) {
	var l *ledger.Ledger
	err := ctx.Injector.Resolve(&l)
	if err != nil {
		return nil, xerrors.Errorf("failed to resolve ledger: %v", err)
	}

	return l, nil
}

func printBalance(ctx node.Context, l *ledger.Ledger, account string) error {
	balance, err := l.Balance(account)
	if err != nil {
		return xerrors.Errorf("failed to read balance: %v", err)
	}

	fmt.Fprintf(ctx.Out, "%s: %d\n", account, balance)

	return nil
}
