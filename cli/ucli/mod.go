// Package ucli implements the cli builder with the urfave/cli library.
package ucli

import (
	"fmt"

	urfave "github.com/urfave/cli/v2"
	"go.dedis.ch/raffle/cli"
)

// Builder assembles the commands into a urfave application.
//
// - implements cli.Builder
type Builder struct {
	name     string
	usage    string
	action   cli.Action
	flags    []cli.Flag
	commands []*cmdBuilder
}

// NewBuilder returns a builder for the application of the given name. The
// action runs when no command is given and can be nil. The flags are global
// and available to every command.
func NewBuilder(name string, action cli.Action, flags ...cli.Flag) cli.Builder {
	return &Builder{
		name:   name,
		action: action,
		flags:  flags,
	}
}

// SetUsage sets the description of the application.
func (b *Builder) SetUsage(value string) {
	b.usage = value
}

// SetCommand implements cli.Builder.
func (b *Builder) SetCommand(name string) cli.CommandBuilder {
	cmd := &cmdBuilder{name: name}
	b.commands = append(b.commands, cmd)

	return cmd
}

// Build implements cli.Builder. It panics if a flag has an unsupported type.
func (b *Builder) Build() cli.Application {
	app := &urfave.App{
		Name:        b.name,
		Usage:       b.usage,
		HideVersion: true,
		Flags:       convertFlags(b.flags),
		Action:      convertAction(b.action),
		Commands:    make([]*urfave.Command, len(b.commands)),
	}

	for i, cmd := range b.commands {
		app.Commands[i] = cmd.build()
	}

	app.Setup()

	return app
}

// cmdBuilder collects the properties of a command until the application is
// built.
//
// - implements cli.CommandBuilder
type cmdBuilder struct {
	name        string
	description string
	action      cli.Action
	flags       []cli.Flag
	subcommands []*cmdBuilder
}

// SetDescription implements cli.CommandBuilder.
func (b *cmdBuilder) SetDescription(value string) {
	b.description = value
}

// SetFlags implements cli.CommandBuilder. It replaces the previous flags.
func (b *cmdBuilder) SetFlags(flags ...cli.Flag) {
	b.flags = flags
}

// SetAction implements cli.CommandBuilder.
func (b *cmdBuilder) SetAction(action cli.Action) {
	b.action = action
}

// SetSubCommand implements cli.CommandBuilder.
func (b *cmdBuilder) SetSubCommand(name string) cli.CommandBuilder {
	sub := &cmdBuilder{name: name}
	b.subcommands = append(b.subcommands, sub)

	return sub
}

func (b *cmdBuilder) build() *urfave.Command {
	cmd := &urfave.Command{
		Name:   b.name,
		Usage:  b.description,
		Flags:  convertFlags(b.flags),
		Action: convertAction(b.action),
	}

	for _, sub := range b.subcommands {
		cmd.Subcommands = append(cmd.Subcommands, sub.build())
	}

	return cmd
}

func convertFlags(flags []cli.Flag) []urfave.Flag {
	res := make([]urfave.Flag, len(flags))
	for i, f := range flags {
		res[i] = convertFlag(f)
	}

	return res
}

func convertFlag(f cli.Flag) urfave.Flag {
	switch e := f.(type) {
	case cli.StringFlag:
		return &urfave.StringFlag{Name: e.Name, Usage: e.Usage, Required: e.Required, Value: e.Value}
	case cli.PathFlag:
		return &urfave.PathFlag{Name: e.Name, Usage: e.Usage, Required: e.Required, Value: e.Value}
	case cli.Uint64Flag:
		return &urfave.Uint64Flag{Name: e.Name, Usage: e.Usage, Required: e.Required, Value: e.Value}
	case cli.BoolFlag:
		return &urfave.BoolFlag{Name: e.Name, Usage: e.Usage, Value: e.Value}
	default:
		panic(fmt.Sprintf("flag type '%T' not supported", f))
	}
}

// convertAction wraps the action so that the urfave context is read through
// the cli.Flags interface.
func convertAction(action cli.Action) urfave.ActionFunc {
	if action == nil {
		return nil
	}

	return func(ctx *urfave.Context) error {
		return action(ctx)
	}
}
