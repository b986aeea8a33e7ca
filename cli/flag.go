package cli

// StringFlag is a flag parsed as a string.
//
// - implements cli.Flag
type StringFlag struct {
	Name     string
	Usage    string
	Required bool
	Value    string
}

// GetName implements cli.Flag.
func (flag StringFlag) GetName() string {
	return flag.Name
}

// PathFlag is a flag parsed as the path of a file.
//
// - implements cli.Flag
type PathFlag struct {
	Name     string
	Usage    string
	Required bool
	Value    string
}

// GetName implements cli.Flag.
func (flag PathFlag) GetName() string {
	return flag.Name
}

// Uint64Flag is a flag parsed as an unsigned integer, typically an amount.
//
// - implements cli.Flag
type Uint64Flag struct {
	Name     string
	Usage    string
	Required bool
	Value    uint64
}

// GetName implements cli.Flag.
func (flag Uint64Flag) GetName() string {
	return flag.Name
}

// BoolFlag is a flag set to true when present.
//
// - implements cli.Flag
type BoolFlag struct {
	Name  string
	Usage string
	Value bool
}

// GetName implements cli.Flag.
func (flag BoolFlag) GetName() string {
	return flag.Name
}
