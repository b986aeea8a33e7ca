// Package prefixed implements the namespaces of the ledger state. The keys of
// a namespace are hashed with its name, so that the bank, the nonces and each
// contract share a store without colliding.
package prefixed

import (
	"encoding/binary"

	"go.dedis.ch/raffle/core/store"
	"go.dedis.ch/raffle/crypto"
)

var hashFactory = crypto.Sha256

// namespace translates the keys before they reach the parent store.
//
// - implements store.Snapshot
type namespace struct {
	prefix []byte
	r      store.Readable
	w      store.Writable
}

// NewSnapshot returns a snapshot of the namespace in the parent snapshot.
func NewSnapshot(prefix string, parent store.Snapshot) store.Snapshot {
	return namespace{prefix: []byte(prefix), r: parent, w: parent}
}

// NewReadable returns a read-only view of the namespace in the parent store.
func NewReadable(prefix string, parent store.Readable) store.Readable {
	return namespace{prefix: []byte(prefix), r: parent}
}

// Get implements store.Readable.
func (ns namespace) Get(key []byte) ([]byte, error) {
	return ns.r.Get(NewPrefixedKey(ns.prefix, key))
}

// Set implements store.Writable.
func (ns namespace) Set(key []byte, value []byte) error {
	return ns.w.Set(NewPrefixedKey(ns.prefix, key), value)
}

// Delete implements store.Writable.
func (ns namespace) Delete(key []byte) error {
	return ns.w.Delete(NewPrefixedKey(ns.prefix, key))
}

// NewPrefixedKey returns the 32 bytes key of the base key inside the
// namespace. Both parts are length-prefixed so that two different pairs never
// produce the same digest input.
func NewPrefixedKey(prefix, key []byte) []byte {
	h := hashFactory.New()

	var length [2]byte

	for _, part := range [][]byte{prefix, key} {
		binary.LittleEndian.PutUint16(length[:], uint16(len(part)))
		h.Write(length[:])
		h.Write(part)
	}

	return h.Sum(nil)
}
