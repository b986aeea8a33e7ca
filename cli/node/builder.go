package node

import (
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.dedis.ch/raffle"
	"go.dedis.ch/raffle/cli"
	"go.dedis.ch/raffle/cli/ucli"
	"golang.org/x/xerrors"
)

// CLIBuilder is an application builder that builds a CLI where the actions run
// against the components started by the initializers.
//
// - implements node.Builder
// - implements cli.Builder
type CLIBuilder struct {
	cli.Builder

	inits  []Initializer
	writer io.Writer

	// In production, the actions are interrupted via SIGINT or SIGTERM. In
	// case of testing, the channel is provided instead.
	enableSignal bool
	sigs         chan os.Signal
}

// NewBuilder returns a new builder with the global flags.
func NewBuilder(name string, flags []cli.Flag, inits ...Initializer) *CLIBuilder {
	return NewBuilderWithCfg(name, nil, nil, flags, inits...)
}

// NewBuilderWithCfg returns a new builder with specific configurations.
func NewBuilderWithCfg(name string, sigs chan os.Signal, out io.Writer,
	flags []cli.Flag, inits ...Initializer) *CLIBuilder {

	if out == nil {
		out = os.Stdout
	}

	enabled := false

	if sigs == nil {
		sigs = make(chan os.Signal, 1)
		enabled = true
	}

	return &CLIBuilder{
		Builder:      ucli.NewBuilder(name, nil, flags...),
		inits:        inits,
		writer:       out,
		enableSignal: enabled,
		sigs:         sigs,
	}
}

// MakeAction implements node.Builder. It creates a CLI action that starts the
// initializers, executes the template and stops the initializers.
func (b *CLIBuilder) MakeAction(tmpl ActionTemplate) cli.Action {
	return func(flags cli.Flags) error {
		if b.enableSignal {
			signal.Notify(b.sigs, syscall.SIGINT, syscall.SIGTERM)

			defer signal.Stop(b.sigs)
		}

		injector := NewInjector()

		started := 0

		for _, controller := range b.inits {
			err := controller.OnStart(flags, injector)
			if err != nil {
				b.stop(injector, started)
				return xerrors.Errorf("couldn't run the controller: %v", err)
			}

			started++
		}

		ctx := Context{
			Injector: injector,
			Flags:    flags,
			Out:      b.writer,
			Signals:  b.sigs,
		}

		err := tmpl.Execute(ctx)
		if err != nil {
			b.stop(injector, started)
			return xerrors.Opaque(err)
		}

		err = b.stop(injector, started)
		if err != nil {
			return err
		}

		return nil
	}
}

// stop stops the initializers in reverse order so that high level components
// are stopped before lower level ones (i.e. stop a service before the database
// to avoid errors).
func (b *CLIBuilder) stop(injector Injector, n int) error {
	var res error

	for i := n - 1; i >= 0; i-- {
		err := b.inits[i].OnStop(injector)
		if err != nil {
			raffle.Logger.Warn().Err(err).Msg("failed to stop controller")

			if res == nil {
				res = xerrors.Errorf("couldn't stop controller: %v", err)
			}
		}
	}

	return res
}

// Build implements cli.Builder. It returns the application.
func (b *CLIBuilder) Build() cli.Application {
	for _, controller := range b.inits {
		controller.SetCommands(b)
	}

	return b.Builder.Build()
}
