package lottery

import (
	"fmt"

	"golang.org/x/xerrors"
)

// Kind is the kind of a rejection of the lottery contract.
type Kind int

const (
	// Unauthorized is the kind of a command submitted by the wrong identity.
	Unauthorized Kind = iota + 1

	// InsufficientValue is the kind of an entry below the minimum stake.
	InsufficientValue

	// DuplicateEntry is the kind of a second entry of the same identity in a
	// round.
	DuplicateEntry

	// EmptyPool is the kind of a draw without any player.
	EmptyPool

	// UnexpectedValue is the kind of a command that does not accept an
	// attached value.
	UnexpectedValue

	// NotDeployed is the kind of a command submitted before the deployment.
	NotDeployed

	// AlreadyDeployed is the kind of a second deployment.
	AlreadyDeployed

	// TransferFailed is the kind of a draw that cannot pay the winner.
	TransferFailed
)

var kindNames = map[Kind]string{
	Unauthorized:      "unauthorized",
	InsufficientValue: "insufficient value",
	DuplicateEntry:    "duplicate entry",
	EmptyPool:         "empty pool",
	UnexpectedValue:   "unexpected value",
	NotDeployed:       "not deployed",
	AlreadyDeployed:   "already deployed",
	TransferFailed:    "transfer failed",
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	name, found := kindNames[k]
	if !found {
		return fmt.Sprintf("kind(%d)", int(k))
	}

	return name
}

var (
	// ErrUnauthorized matches the rejections of kind Unauthorized.
	ErrUnauthorized = &RejectedError{Kind: Unauthorized}

	// ErrInsufficientValue matches the rejections of kind InsufficientValue.
	ErrInsufficientValue = &RejectedError{Kind: InsufficientValue}

	// ErrDuplicateEntry matches the rejections of kind DuplicateEntry.
	ErrDuplicateEntry = &RejectedError{Kind: DuplicateEntry}

	// ErrEmptyPool matches the rejections of kind EmptyPool.
	ErrEmptyPool = &RejectedError{Kind: EmptyPool}

	// ErrUnexpectedValue matches the rejections of kind UnexpectedValue.
	ErrUnexpectedValue = &RejectedError{Kind: UnexpectedValue}

	// ErrNotDeployed matches the rejections of kind NotDeployed.
	ErrNotDeployed = &RejectedError{Kind: NotDeployed}

	// ErrAlreadyDeployed matches the rejections of kind AlreadyDeployed.
	ErrAlreadyDeployed = &RejectedError{Kind: AlreadyDeployed}

	// ErrTransferFailed matches the rejections of kind TransferFailed.
	ErrTransferFailed = &RejectedError{Kind: TransferFailed}
)

// RejectedError is the error returned when a command of the contract is
// rejected. A rejection leaves the state untouched.
type RejectedError struct {
	Kind   Kind
	Reason string
}

func reject(kind Kind, format string, args ...interface{}) error {
	return &RejectedError{
		Kind:   kind,
		Reason: fmt.Sprintf(format, args...),
	}
}

// Error implements error.
func (e *RejectedError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("rejected: %v", e.Kind)
	}

	return fmt.Sprintf("rejected: %v: %s", e.Kind, e.Reason)
}

// Is returns true when the target is a rejection of the same kind.
func (e *RejectedError) Is(target error) bool {
	other, ok := target.(*RejectedError)
	return ok && other.Kind == e.Kind
}

// KindOf returns the kind of the rejection in the chain of the error. The
// boolean is false if the error is not a rejection.
func KindOf(err error) (Kind, bool) {
	var rejected *RejectedError
	if !xerrors.As(err, &rejected) {
		return 0, false
	}

	return rejected.Kind, true
}
