// Package store defines the key/value primitives the ledger components read
// and write their state with.
package store

// Readable is a store that can be read. A missing key returns a nil value and
// no error.
type Readable interface {
	Get(key []byte) ([]byte, error)
}

// Writable is a store that can be written.
type Writable interface {
	Set(key []byte, value []byte) error

	Delete(key []byte) error
}

// Snapshot is a view of the store that a single transaction reads and writes.
// Whether the writes become durable is decided by the owner of the snapshot.
type Snapshot interface {
	Readable
	Writable
}
