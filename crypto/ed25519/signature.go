package ed25519

import (
	"bytes"

	"go.dedis.ch/raffle/crypto"
	"golang.org/x/xerrors"
)

// Signature is a Schnorr signature.
//
// - implements crypto.Signature
type Signature struct {
	data []byte
}

// NewSignature returns the signature of the data.
func NewSignature(data []byte) Signature {
	return Signature{data: data}
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (sig Signature) MarshalBinary() ([]byte, error) {
	return sig.data, nil
}

// Equal implements crypto.Signature.
func (sig Signature) Equal(other crypto.Signature) bool {
	o, ok := other.(Signature)

	return ok && bytes.Equal(sig.data, o.data)
}

// signatureFactory decodes the signatures of the transactions.
//
// - implements crypto.SignatureFactory
type signatureFactory struct{}

// NewSignatureFactory returns a new instance of the factory.
func NewSignatureFactory() crypto.SignatureFactory {
	return signatureFactory{}
}

// SignatureOf implements crypto.SignatureFactory. It rejects data which does
// not have the size of a signature.
func (signatureFactory) SignatureOf(data []byte) (crypto.Signature, error) {
	if len(data) != SignatureSize {
		return nil, xerrors.Errorf("invalid signature size %d", len(data))
	}

	return NewSignature(data), nil
}
