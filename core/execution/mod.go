// Package execution defines the primitives to execute a transaction against
// the state of the ledger.
package execution

import (
	"time"

	"go.dedis.ch/raffle/core/store"
	"go.dedis.ch/raffle/core/txn"
)

// Block is the header of the block the transaction is executed in. It is the
// source of entropy available to a contract: it is unknown to the submitter of
// the transaction but identical for every execution of the same block.
type Block struct {
	// Index is the height of the block.
	Index uint64

	// Timestamp is the time the block has been created.
	Timestamp time.Time

	// Previous is the digest of the previous block.
	Previous []byte
}

// Event is an observable fact emitted by a contract while it executes a
// transaction. Events are only published when the transaction is accepted.
type Event interface {
	// Name returns the name of the event.
	Name() string
}

// Recorder collects the events of an execution.
type Recorder interface {
	Record(Event)
}

// Step is a context of execution. It contains the transaction being executed
// and the block it belongs to.
type Step struct {
	Previous []txn.Transaction
	Current  txn.Transaction
	Block    Block

	// Recorder receives the events of the execution. It can be nil.
	Recorder Recorder
}

// Emit records the event if the step has a recorder.
func (s Step) Emit(event Event) {
	if s.Recorder != nil {
		s.Recorder.Record(event)
	}
}

// Result is the result of a transaction execution.
type Result struct {
	// Accepted is the success state of the transaction.
	Accepted bool

	// Message gives a change to the execution to explain why a transaction has
	// failed.
	Message string

	// Cause is the error returned by the contract when the transaction is
	// refused.
	Cause error

	// Events is the list of events emitted by an accepted transaction.
	Events []Event
}

// Service is the execution service that defines the primitives to execute a
// transaction.
type Service interface {
	// Execute must apply the transaction to the snapshot and return the result
	// of it.
	Execute(snap store.Snapshot, step Step) (Result, error)
}
