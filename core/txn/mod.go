// Package txn defines the inputs submitted to the ledger.
//
// A transaction names the contract to run through its arguments, attaches an
// amount escrowed before the contract runs, and carries the nonce of its
// author so that it cannot be replayed.
package txn

import "go.dedis.ch/raffle/core/access"

// Transaction is a signed request of an identity to execute a contract.
type Transaction interface {
	// GetID returns the digest identifying the transaction.
	GetID() []byte

	// GetNonce returns the sequence number of the author. The ledger expects
	// exactly one more than the last accepted nonce.
	GetNonce() uint64

	// GetIdentity returns the author.
	GetIdentity() access.Identity

	GetValue() uint64

	// GetArg returns the argument or nil when it is not set.
	GetArg(key string) []byte
}

// Arg is a key-value pair of an argument.
type Arg struct {
	Key   string
	Value []byte
}

// Manager creates the transactions of a single identity and keeps track of its
// nonce.
type Manager interface {
	// Make returns the next transaction with the value and the arguments.
	Make(value uint64, args ...Arg) (Transaction, error)

	// Sync reads the nonce from the ledger. It must be called again after a
	// transaction has been refused.
	Sync() error
}
