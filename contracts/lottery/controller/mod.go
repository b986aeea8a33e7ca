// Package controller implements the CLI of the lottery contract. It registers
// the contract to the execution service of the ledger and provides the
// commands to submit the transactions and display the state.
package controller

import (
	"go.dedis.ch/raffle/cli"
	"go.dedis.ch/raffle/cli/node"
	"go.dedis.ch/raffle/config"
	"go.dedis.ch/raffle/contracts/lottery"
	"go.dedis.ch/raffle/core/execution/native"
	"go.dedis.ch/raffle/crypto/ed25519/command"
	"golang.org/x/xerrors"
)

// miniController is a CLI initializer to register the lottery contract.
//
// - implements node.Initializer
type miniController struct{}

// NewController creates a new controller for the lottery contract.
func NewController() node.Initializer {
	return miniController{}
}

// SetCommands implements node.Initializer. It sets the lottery commands.
func (miniController) SetCommands(builder node.Builder) {
	keyFlag := cli.PathFlag{
		Name:     "key",
		Usage:    "path to the private key of the caller",
		Required: true,
	}

	cmd := builder.SetCommand("lottery")
	cmd.SetDescription("Interact with the lottery contract")

	sub := cmd.SetSubCommand("deploy")
	sub.SetDescription("Deploy the lottery, the caller becomes the operator")
	sub.SetFlags(keyFlag)
	sub.SetAction(builder.MakeAction(newSubmitAction(lottery.CmdDeploy)))

	sub = cmd.SetSubCommand("enter")
	sub.SetDescription("Enter the current round with a stake")
	sub.SetFlags(keyFlag, cli.Uint64Flag{
		Name:     "value",
		Usage:    "value attached to the entry",
		Required: true,
	})
	sub.SetAction(builder.MakeAction(newSubmitAction(lottery.CmdEnter)))

	sub = cmd.SetSubCommand("draw")
	sub.SetDescription("Pick the winner of the round and pay the pool")
	sub.SetFlags(keyFlag)
	sub.SetAction(builder.MakeAction(newSubmitAction(lottery.CmdPickWinner)))

	sub = cmd.SetSubCommand("show")
	sub.SetDescription("Display the state of the lottery")
	sub.SetAction(builder.MakeAction(showAction{}))
}

// OnStart implements node.Initializer. It registers the lottery contract.
func (miniController) OnStart(flags cli.Flags, inj node.Injector) error {
	var cfg config.Config
	err := inj.Resolve(&cfg)
	if err != nil {
		return xerrors.Errorf("failed to resolve config: %v", err)
	}

	var exec *native.Service
	err = inj.Resolve(&exec)
	if err != nil {
		return xerrors.Errorf("failed to resolve native service: %v", err)
	}

	contract := lottery.NewContract(lottery.WithMinStake(cfg.MinStake))

	lottery.RegisterContract(exec, contract)

	return nil
}

// OnStop implements node.Initializer.
func (miniController) OnStop(inj node.Injector) error {
	return nil
}

func newSubmitAction(cmd lottery.Command) submitAction {
	return submitAction{
		command:    cmd,
		loadSigner: command.LoadSigner,
	}
}
