// Package crypto defines the cryptographic primitives used to identify the
// participants of the ledger and to sign their transactions.
package crypto

import (
	"encoding"
	"hash"
)

// HashFactory creates the hashes of the digests.
type HashFactory interface {
	New() hash.Hash
}

// PublicKey is the identity of a participant. Its text form names the
// account of the participant.
type PublicKey interface {
	encoding.BinaryMarshaler
	encoding.TextMarshaler

	// Verify returns an error unless the signature was made by the private key
	// over the message.
	Verify(msg []byte, signature Signature) error

	Equal(other interface{}) bool
}

// PublicKeyFactory decodes public keys from their binary form.
type PublicKeyFactory interface {
	FromBytes(data []byte) (PublicKey, error)
}

// Signature is the proof that a message was approved by an identity.
type Signature interface {
	encoding.BinaryMarshaler

	Equal(other Signature) bool
}

// SignatureFactory decodes signatures from their binary form.
type SignatureFactory interface {
	SignatureOf(data []byte) (Signature, error)
}

// Signer holds a private key. It signs the transactions of its identity.
type Signer interface {
	GetPublicKeyFactory() PublicKeyFactory
	GetSignatureFactory() SignatureFactory
	GetPublicKey() PublicKey
	Sign(msg []byte) (Signature, error)
}
