// Package loader defines how the private keys of the identities are kept
// between two invocations of the node.
package loader

// Generator creates the bytes of a new key.
type Generator interface {
	Generate() ([]byte, error)
}

// Loader reads a key from a storage, and creates it on demand.
type Loader interface {
	// LoadOrCreate returns the stored key. When there is none, it generates a
	// new one with the generator and stores it first.
	LoadOrCreate(Generator) ([]byte, error)

	// Load returns the stored key, or an error when there is none.
	Load() ([]byte, error)
}
