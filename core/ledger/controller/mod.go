// Package controller implements the initializer of the local ledger. It opens
// the database, creates the execution service and injects the ledger for the
// other controllers. It also provides the account administration commands.
package controller

import (
	"go.dedis.ch/raffle"
	"go.dedis.ch/raffle/cli"
	"go.dedis.ch/raffle/cli/node"
	"go.dedis.ch/raffle/config"
	"go.dedis.ch/raffle/core/execution/native"
	"go.dedis.ch/raffle/core/ledger"
	"go.dedis.ch/raffle/core/store/kv"
	"golang.org/x/xerrors"
)

// dbOpener opens the database of the ledger.
var dbOpener = kv.New

// miniController is a CLI initializer for the ledger.
//
// - implements node.Initializer
type miniController struct{}

// NewController creates a new controller for the ledger.
func NewController() node.Initializer {
	return miniController{}
}

// SetCommands implements node.Initializer. It sets the account commands.
func (miniController) SetCommands(builder node.Builder) {
	cmd := builder.SetCommand("account")
	cmd.SetDescription("Account administration of the local ledger")

	sub := cmd.SetSubCommand("fund")
	sub.SetDescription("Credit an account from the faucet")
	sub.SetFlags(
		cli.StringFlag{
			Name:     "identity",
			Usage:    "identity of the account",
			Required: true,
		},
		cli.Uint64Flag{
			Name:     "amount",
			Usage:    "amount to credit",
			Required: true,
		},
	)
	sub.SetAction(builder.MakeAction(fundAction{}))

	sub = cmd.SetSubCommand("balance")
	sub.SetDescription("Print the balance of an account")
	sub.SetFlags(
		cli.StringFlag{
			Name:     "identity",
			Usage:    "identity of the account",
			Required: true,
		},
	)
	sub.SetAction(builder.MakeAction(balanceAction{}))

	sub = cmd.SetSubCommand("refuse")
	sub.SetDescription("Change whether an account refuses deposits")
	sub.SetFlags(
		cli.StringFlag{
			Name:     "identity",
			Usage:    "identity of the account",
			Required: true,
		},
		cli.BoolFlag{
			Name:  "enabled",
			Usage: "refuse the deposits",
		},
	)
	sub.SetAction(builder.MakeAction(refuseAction{}))
}

// OnStart implements node.Initializer. It loads the configuration, opens the
// database and injects the ledger.
func (miniController) OnStart(flags cli.Flags, inj node.Injector) error {
	cfg, err := config.Load(flags.Path("config"))
	if err != nil {
		return xerrors.Errorf("failed to load config: %v", err)
	}

	if flags.String("db") != "" {
		cfg.DB = flags.String("db")
	}

	if cfg.LogLevel != "" {
		raffle.SetLevel(cfg.LogLevel)
	}

	db, err := dbOpener(cfg.DB)
	if err != nil {
		return xerrors.Errorf("failed to open db: %v", err)
	}

	exec := native.NewExecution()

	inj.Inject(cfg)
	inj.Inject(db)
	inj.Inject(exec)
	inj.Inject(ledger.NewLedger(db, exec))

	return nil
}

// OnStop implements node.Initializer. It closes the database.
func (miniController) OnStop(inj node.Injector) error {
	var db kv.DB
	err := inj.Resolve(&db)
	if err != nil {
		return xerrors.Errorf("failed to resolve db: %v", err)
	}

	err = db.Close()
	if err != nil {
		return xerrors.Errorf("failed to close db: %v", err)
	}

	return nil
}
