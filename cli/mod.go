// Package cli defines the primitives to build the command line of the node one
// component at a time. Each component declares its commands and flags, and the
// implementation of the builder assembles them into one application.
//
//	builder := ucli.NewBuilder("raffle", nil)
//
//	cmd := builder.SetCommand("lottery")
//	sub := cmd.SetSubCommand("show")
//	sub.SetFlags(cli.PathFlag{Name: "db", Value: "raffle.db"})
//	sub.SetAction(func(flags cli.Flags) error {
//		fmt.Println("reading", flags.Path("db"))
//		return nil
//	})
//
//	builder.Build().Run(os.Args)
package cli

// Builder is the builder of an application.
type Builder interface {
	// SetCommand creates a new command with the given name and returns its
	// builder.
	SetCommand(name string) CommandBuilder

	// Build returns the application.
	Build() Application
}

// Application is an application ready to parse the arguments and run the
// matching action.
type Application interface {
	Run(arguments []string) error
}

// CommandBuilder is the builder of a command, or a subcommand.
type CommandBuilder interface {
	// SetDescription sets the text displayed in the help of the command.
	SetDescription(value string)

	// SetFlags sets the flags of the command.
	SetFlags(...Flag)

	// SetAction sets the function to execute when the command is invoked.
	SetAction(Action)

	// SetSubCommand creates a subcommand and returns its builder.
	SetSubCommand(name string) CommandBuilder
}

// Action is a function that will be executed when a command is invoked.
type Action func(Flags) error

// Flag is the definition of a flag of a command.
type Flag interface {
	// GetName returns the name of the flag, as typed after the dashes.
	GetName() string
}

// Flags provides the primitives to an action to read the parsed flags. A
// missing flag returns the zero value.
type Flags interface {
	String(name string) string

	Path(name string) string

	Uint64(name string) uint64

	Bool(name string) bool
}
