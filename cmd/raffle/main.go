// Package main implements the raffle node: a local ledger running the lottery
// contract.
//
//	raffle keygen --key operator.key
//	raffle --db raffle.db lottery deploy --key operator.key
//	raffle --db raffle.db account fund --identity schnorr:XX --amount 100
//	raffle --db raffle.db lottery enter --key player.key --value 10
//	raffle --db raffle.db lottery draw --key operator.key
//	raffle --db raffle.db lottery show
//	raffle --config raffle.yaml proxy start --addr 127.0.0.1:8080
package main

import (
	"fmt"
	"io"
	"os"

	"go.dedis.ch/raffle/cli"
	"go.dedis.ch/raffle/cli/node"
	lottery "go.dedis.ch/raffle/contracts/lottery/controller"
	ledger "go.dedis.ch/raffle/core/ledger/controller"
	"go.dedis.ch/raffle/crypto/ed25519/command"
	proxy "go.dedis.ch/raffle/proxy/http/controller"
)

func main() {
	err := run(os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	return runWithCfg(args, config{Writer: os.Stdout})
}

type config struct {
	Channel chan os.Signal
	Writer  io.Writer
}

func runWithCfg(args []string, cfg config) error {
	flags := []cli.Flag{
		cli.PathFlag{
			Name:  "config",
			Usage: "path to the YAML configuration file",
		},
		cli.PathFlag{
			Name:  "db",
			Usage: "path to the database, overrides the configuration",
		},
	}

	builder := node.NewBuilderWithCfg(
		"raffle",
		cfg.Channel,
		cfg.Writer,
		flags,
		ledger.NewController(),
		command.Initializer{},
		lottery.NewController(),
		proxy.NewController(),
	)

	app := builder.Build()

	return app.Run(args)
}
