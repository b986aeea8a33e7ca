package crypto

import (
	"crypto/sha256"
	"hash"
)

// HashFunc turns a hash constructor into a factory.
//
// - implements crypto.HashFactory
type HashFunc func() hash.Hash

// New implements crypto.HashFactory.
func (fn HashFunc) New() hash.Hash {
	return fn()
}

// Sha256 is the factory of the digests of the ledger.
var Sha256 HashFactory = HashFunc(sha256.New)
