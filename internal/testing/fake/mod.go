// Package fake provides fake implementations for interfaces commonly used in
// the repository.
// The implementations offer configuration to return errors when it is needed by
// the unit test and it is also possible to record the call of functions of an
// object in some cases.
package fake

import (
	"hash"
	"sync"

	"go.dedis.ch/raffle/crypto"
	"golang.org/x/xerrors"
)

var fakeErr = xerrors.New("fake error")

// GetError returns the fake error.
func GetError() error {
	return fakeErr
}

// Err returns the error message of the fake error with the prefix, as the
// repository formats wrapped errors.
func Err(msg string) string {
	return msg + ": " + fakeErr.Error()
}

// Call is a tool to keep track of a function calls.
type Call struct {
	sync.Mutex
	calls [][]interface{}
}

// NewCall returns a new empty call record.
func NewCall() *Call {
	return &Call{}
}

// Get returns the nth call ith parameter.
func (c *Call) Get(n, i int) interface{} {
	c.Lock()
	defer c.Unlock()

	return c.calls[n][i]
}

// Len returns the number of calls.
func (c *Call) Len() int {
	c.Lock()
	defer c.Unlock()

	return len(c.calls)
}

// Add adds a call to the list.
func (c *Call) Add(args ...interface{}) {
	c.Lock()
	defer c.Unlock()

	c.calls = append(c.calls, args)
}

// PublicKey is a fake implementation of crypto.PublicKey.
//
// - implements crypto.PublicKey
type PublicKey struct {
	name      string
	err       error
	verifyErr error
}

// NewPublicKey returns a fake public key with the name as its text form.
func NewPublicKey(name string) PublicKey {
	return PublicKey{name: name}
}

// NewBadPublicKey returns a fake public key that returns errors.
func NewBadPublicKey() PublicKey {
	return PublicKey{name: "bad", err: fakeErr, verifyErr: fakeErr}
}

// NewInvalidPublicKey returns a fake public key that refuses any signature.
func NewInvalidPublicKey(name string) PublicKey {
	return PublicKey{name: name, verifyErr: fakeErr}
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (pk PublicKey) MarshalBinary() ([]byte, error) {
	return []byte(pk.name), pk.err
}

// MarshalText implements encoding.TextMarshaler.
func (pk PublicKey) MarshalText() ([]byte, error) {
	return []byte("fake." + pk.name), pk.err
}

// Verify implements crypto.PublicKey.
func (pk PublicKey) Verify([]byte, crypto.Signature) error {
	return pk.verifyErr
}

// Equal implements crypto.PublicKey.
func (pk PublicKey) Equal(other interface{}) bool {
	o, ok := other.(PublicKey)
	return ok && o.name == pk.name
}

// String implements fmt.Stringer.
func (pk PublicKey) String() string {
	return "fake." + pk.name
}

// Signature is a fake implementation of crypto.Signature.
//
// - implements crypto.Signature
type Signature struct {
	err error
}

// NewBadSignature returns a signature that returns errors.
func NewBadSignature() Signature {
	return Signature{err: fakeErr}
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (s Signature) MarshalBinary() ([]byte, error) {
	return []byte("fake sig"), s.err
}

// Equal implements crypto.Signature.
func (s Signature) Equal(other crypto.Signature) bool {
	_, ok := other.(Signature)
	return ok
}

// Signer is a fake implementation of crypto.Signer.
//
// - implements crypto.Signer
type Signer struct {
	pubkey PublicKey
	err    error
}

// NewSigner returns a fake signer for the named identity.
func NewSigner(name string) Signer {
	return Signer{pubkey: NewPublicKey(name)}
}

// NewBadSigner returns a fake signer that fails to sign.
func NewBadSigner() Signer {
	return Signer{pubkey: NewPublicKey("bad"), err: fakeErr}
}

// GetPublicKeyFactory implements crypto.Signer.
func (s Signer) GetPublicKeyFactory() crypto.PublicKeyFactory {
	return nil
}

// GetSignatureFactory implements crypto.Signer.
func (s Signer) GetSignatureFactory() crypto.SignatureFactory {
	return nil
}

// GetPublicKey implements crypto.Signer.
func (s Signer) GetPublicKey() crypto.PublicKey {
	return s.pubkey
}

// Sign implements crypto.Signer.
func (s Signer) Sign([]byte) (crypto.Signature, error) {
	return Signature{}, s.err
}

// HashFactory is a fake implementation of crypto.HashFactory.
//
// - implements crypto.HashFactory
type HashFactory struct {
	hash *Hash
}

// NewHashFactory returns a fake hash factory.
func NewHashFactory(h *Hash) HashFactory {
	return HashFactory{hash: h}
}

// New implements crypto.HashFactory.
func (f HashFactory) New() hash.Hash {
	return f.hash
}

// Hash is a fake implementation of hash.Hash.
//
// - implements hash.Hash
type Hash struct {
	hash.Hash
	delay int
	err   error
}

// NewBadHash returns a fake hash that returns an error after a given amount of
// write calls.
func NewBadHash(delay int) *Hash {
	return &Hash{delay: delay, err: fakeErr}
}

// Write implements hash.Hash.
func (h *Hash) Write([]byte) (int, error) {
	if h.delay > 0 {
		h.delay--
		return 0, nil
	}

	return 0, h.err
}

// Sum implements hash.Hash.
func (h *Hash) Sum([]byte) []byte {
	return []byte{}
}
