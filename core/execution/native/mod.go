// Package native runs the contracts compiled into the application.
package native

import (
	"go.dedis.ch/raffle/core/execution"
	"go.dedis.ch/raffle/core/store"
	"golang.org/x/xerrors"
)

const (
	// ContractArg is the argument key in the transaction to look up a contract.
	ContractArg = "go.dedis.ch/raffle.ContractArg"
)

// Contract is a contract of the application. Returning an error refuses the
// transaction.
type Contract interface {
	Execute(store.Snapshot, execution.Step) error
}

// Service dispatches the transactions to the registered contracts, which
// read and write the snapshot directly.
//
// - implements execution.Service
type Service struct {
	contracts map[string]Contract
}

// NewExecution returns a service without any contract.
func NewExecution() *Service {
	return &Service{
		contracts: map[string]Contract{},
	}
}

// Set registers the contract under the name that transactions give as their
// contract argument.
func (ns *Service) Set(name string, contract Contract) {
	ns.contracts[name] = contract
}

// Has returns true if a contract is registered with the name.
func (ns *Service) Has(name string) bool {
	_, found := ns.contracts[name]
	return found
}

// Execute implements execution.Service. A refusal of the contract is reported
// in the result whereas an unknown contract is an error.
func (ns *Service) Execute(snap store.Snapshot, step execution.Step) (execution.Result, error) {
	name := string(step.Current.GetArg(ContractArg))

	contract := ns.contracts[name]
	if contract == nil {
		return execution.Result{}, xerrors.Errorf("unknown contract '%s'", name)
	}

	rec := &recorder{}
	step.Recorder = rec

	err := contract.Execute(snap, step)
	if err != nil {
		return execution.Result{Message: err.Error(), Cause: err}, nil
	}

	return execution.Result{Accepted: true, Events: rec.events}, nil
}

// recorder keeps the events in the order they are emitted.
//
// - implements execution.Recorder
type recorder struct {
	events []execution.Event
}

// Record implements execution.Recorder. It appends the event.
func (r *recorder) Record(event execution.Event) {
	r.events = append(r.events, event)
}
