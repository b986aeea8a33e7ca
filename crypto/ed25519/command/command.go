// Package command defines the cli commands to manage the ed25519 keys of the
// identities.
package command

import (
	"os"

	"go.dedis.ch/raffle/cli"
	"go.dedis.ch/raffle/cli/node"
)

// Initializer implements the key commands.
//
// - implements node.Initializer
type Initializer struct{}

// SetCommands implements node.Initializer. The commands do not need the
// ledger, therefore they are plain actions.
func (i Initializer) SetCommands(builder node.Builder) {
	action := action{
		printer: os.Stdout,
		load:    LoadSigner,
		create:  createSigner,
	}

	keygen := builder.SetCommand("keygen")
	keygen.SetDescription("create a new identity, or print the existing one")
	keygen.SetFlags(cli.PathFlag{
		Name:     "key",
		Usage:    "path to the private key file",
		Required: true,
	})
	keygen.SetAction(action.keygenAction)

	identity := builder.SetCommand("identity")
	identity.SetDescription("print the identity of a key")
	identity.SetFlags(cli.PathFlag{
		Name:     "key",
		Usage:    "path to the private key file",
		Required: true,
	})
	identity.SetAction(action.identityAction)
}

// OnStart implements node.Initializer.
func (i Initializer) OnStart(cli.Flags, node.Injector) error {
	return nil
}

// OnStop implements node.Initializer.
func (i Initializer) OnStop(node.Injector) error {
	return nil
}
