// Package node assembles a command-line application out of modules.
//
// A module contributes an Initializer. Running a command starts every
// initializer in order, executes the action with the components they injected,
// then stops them the other way round.
package node

import (
	"io"
	"os"

	"go.dedis.ch/raffle/cli"
)

// Builder is handed to the initializers to declare their commands.
type Builder interface {
	SetCommand(name string) cli.CommandBuilder

	// MakeAction wraps the template so that it runs after the initializers
	// have started.
	MakeAction(ActionTemplate) cli.Action
}

// ActionTemplate is an action that resolves its components from the context.
type ActionTemplate interface {
	Execute(Context) error
}

// Context is passed to a running action.
type Context struct {
	Injector Injector
	Flags    cli.Flags
	Out      io.Writer

	// Signals receives the interruptions of the process. A long-running action
	// returns when it is notified.
	Signals <-chan os.Signal
}

// Injector shares the components between the modules.
type Injector interface {
	// Resolve sets the pointer to the latest injected component assignable to
	// its element type.
	Resolve(interface{}) error

	Inject(interface{})
}

// Initializer is implemented by every module of the application.
type Initializer interface {
	SetCommands(Builder)

	// OnStart builds the components of the module out of the global flags and
	// injects them.
	OnStart(cli.Flags, Injector) error

	// OnStop releases what OnStart acquired.
	OnStop(Injector) error
}
