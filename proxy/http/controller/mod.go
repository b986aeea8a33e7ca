// Package controller implements the CLI to run the HTTP proxy of the ledger.
package controller

import (
	"go.dedis.ch/raffle/cli"
	"go.dedis.ch/raffle/cli/node"
	"go.dedis.ch/raffle/proxy"
)

// NewController returns a new initializer for the proxy.
func NewController() node.Initializer {
	return minimal{}
}

// minimal is an initializer with the minimum set of commands. The proxy is
// created and injected by the start action.
//
// - implements node.Initializer
type minimal struct{}

// SetCommands implements node.Initializer.
func (m minimal) SetCommands(builder node.Builder) {
	cmd := builder.SetCommand("proxy")
	cmd.SetDescription("Serve the ledger over HTTP")

	sub := cmd.SetSubCommand("start")
	sub.SetDescription("start the proxy http server until interrupted")
	sub.SetFlags(cli.StringFlag{
		Name:     "addr",
		Required: false,
		Usage:    "listen address, defaults to the address of the configuration",
	})
	sub.SetAction(builder.MakeAction(newStartAction()))
}

// OnStart implements node.Initializer.
func (m minimal) OnStart(flags cli.Flags, inj node.Injector) error {
	return nil
}

// OnStop implements node.Initializer. It stops the http server if any.
func (m minimal) OnStop(inj node.Injector) error {
	var srv proxy.Proxy
	err := inj.Resolve(&srv)
	if err == nil {
		srv.Stop()
	}

	return nil
}
