// Package bank implements the account balances of the ledger.
//
// An account is named by the text form of an identity. Contracts custody the
// value attached to their transactions in an escrow account derived from their
// name. Balances live in the ledger state so that they are committed or rolled
// back with the rest of a transaction.
package bank

import (
	"encoding/binary"
	"math"
	"strings"

	"go.dedis.ch/raffle/core/store"
	"go.dedis.ch/raffle/core/store/prefixed"
	"golang.org/x/xerrors"
)

// Prefix is the namespace of the accounts in the ledger state.
const Prefix = "bank"

const (
	balanceKey = "balance:"
	refuseKey  = "refuse:"
)

var (
	// ErrInsufficientFunds is returned when an account is debited more than
	// its balance.
	ErrInsufficientFunds = xerrors.New("insufficient funds")

	// ErrRefused is returned when an account refuses a deposit.
	ErrRefused = xerrors.New("account refuses deposits")

	// ErrOverflow is returned when a credit would overflow the balance.
	ErrOverflow = xerrors.New("balance overflow")

	// ErrEscrow is returned when an administrative operation targets the
	// escrow account of a contract.
	ErrEscrow = xerrors.New("escrow accounts are managed by their contract")
)

const escrowPrefix = "contract:"

// EscrowAccount returns the name of the account that custodies the value
// attached to the transactions of a contract.
func EscrowAccount(contract string) string {
	return escrowPrefix + contract
}

// IsEscrow returns true when the account is the escrow of a contract.
func IsEscrow(account string) bool {
	return strings.HasPrefix(account, escrowPrefix)
}

// Accounts provides the primitives to move value between accounts on top of a
// snapshot.
type Accounts struct {
	snap store.Snapshot
}

// NewAccounts returns the accounts stored in the snapshot.
func NewAccounts(snap store.Snapshot) Accounts {
	return Accounts{
		snap: prefixed.NewSnapshot(Prefix, snap),
	}
}

// Balance returns the balance of the account, which is zero when the account
// has never been credited.
func (a Accounts) Balance(account string) (uint64, error) {
	return readBalance(a.snap, account)
}

// Refuses returns true if the account refuses deposits.
func (a Accounts) Refuses(account string) (bool, error) {
	return readRefuse(a.snap, account)
}

// SetRefuse changes whether the account refuses deposits.
func (a Accounts) SetRefuse(account string, enabled bool) error {
	key := []byte(refuseKey + account)

	if !enabled {
		err := a.snap.Delete(key)
		if err != nil {
			return xerrors.Errorf("failed to delete flag: %v", err)
		}

		return nil
	}

	err := a.snap.Set(key, []byte{1})
	if err != nil {
		return xerrors.Errorf("failed to set flag: %v", err)
	}

	return nil
}

// Credit adds the amount to the account. It fails if the account refuses
// deposits or if the balance would overflow.
func (a Accounts) Credit(account string, amount uint64) error {
	refused, err := a.Refuses(account)
	if err != nil {
		return xerrors.Errorf("failed to read flag: %v", err)
	}

	if refused {
		return xerrors.Errorf("account '%s': %w", account, ErrRefused)
	}

	balance, err := a.Balance(account)
	if err != nil {
		return xerrors.Errorf("failed to read balance: %v", err)
	}

	if amount > math.MaxUint64-balance {
		return xerrors.Errorf("account '%s': %w", account, ErrOverflow)
	}

	return a.write(account, balance+amount)
}

// Debit removes the amount from the account. It fails if the balance is too
// low.
func (a Accounts) Debit(account string, amount uint64) error {
	balance, err := a.Balance(account)
	if err != nil {
		return xerrors.Errorf("failed to read balance: %v", err)
	}

	if balance < amount {
		return xerrors.Errorf("account '%s' has %d < %d: %w",
			account, balance, amount, ErrInsufficientFunds)
	}

	return a.write(account, balance-amount)
}

// Transfer moves the amount from one account to the other. The snapshot may be
// left with the debit applied when the credit fails, therefore the caller must
// discard it on error.
func (a Accounts) Transfer(from, to string, amount uint64) error {
	err := a.Debit(from, amount)
	if err != nil {
		return xerrors.Errorf("failed to debit: %w", err)
	}

	err = a.Credit(to, amount)
	if err != nil {
		return xerrors.Errorf("failed to credit: %w", err)
	}

	return nil
}

func (a Accounts) write(account string, balance uint64) error {
	buffer := make([]byte, 8)
	binary.LittleEndian.PutUint64(buffer, balance)

	err := a.snap.Set([]byte(balanceKey+account), buffer)
	if err != nil {
		return xerrors.Errorf("failed to write balance: %v", err)
	}

	return nil
}

// Balance reads the balance of an account from a read-only view of the
// ledger state.
func Balance(r store.Readable, account string) (uint64, error) {
	return readBalance(prefixed.NewReadable(Prefix, r), account)
}

// Refuses reads the deposit flag of an account from a read-only view of the
// ledger state.
func Refuses(r store.Readable, account string) (bool, error) {
	return readRefuse(prefixed.NewReadable(Prefix, r), account)
}

func readBalance(r store.Readable, account string) (uint64, error) {
	value, err := r.Get([]byte(balanceKey + account))
	if err != nil {
		return 0, xerrors.Errorf("failed to read store: %v", err)
	}

	if len(value) == 0 {
		return 0, nil
	}

	if len(value) != 8 {
		return 0, xerrors.Errorf("invalid balance of size %d", len(value))
	}

	return binary.LittleEndian.Uint64(value), nil
}

func readRefuse(r store.Readable, account string) (bool, error) {
	value, err := r.Get([]byte(refuseKey + account))
	if err != nil {
		return false, xerrors.Errorf("failed to read store: %v", err)
	}

	return len(value) > 0, nil
}
