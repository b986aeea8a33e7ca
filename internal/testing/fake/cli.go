package fake

import "go.dedis.ch/raffle/cli"

// Flags is a fake implementation of cli.Flags backed by a map.
//
// - implements cli.Flags
type Flags map[string]interface{}

// String implements cli.Flags.
func (f Flags) String(name string) string {
	value, _ := f[name].(string)
	return value
}

// Path implements cli.Flags.
func (f Flags) Path(name string) string {
	return f.String(name)
}

// Uint64 implements cli.Flags.
func (f Flags) Uint64(name string) uint64 {
	value, _ := f[name].(uint64)
	return value
}

// Bool implements cli.Flags.
func (f Flags) Bool(name string) bool {
	value, _ := f[name].(bool)
	return value
}

var _ cli.Flags = Flags{}
