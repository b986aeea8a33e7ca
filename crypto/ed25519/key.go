package ed25519

import (
	"encoding/hex"
	"strings"

	"go.dedis.ch/kyber/v3"
	"go.dedis.ch/kyber/v3/sign/schnorr"
	"go.dedis.ch/raffle/crypto"
	"golang.org/x/xerrors"
)

// PublicKey is a point of the curve.
//
// - implements crypto.PublicKey
type PublicKey struct {
	point kyber.Point
}

// NewPublicKey returns the public key of the marshaled point.
func NewPublicKey(data []byte) (PublicKey, error) {
	point := suite.Point()

	err := point.UnmarshalBinary(data)
	if err != nil {
		return PublicKey{}, xerrors.Errorf("couldn't unmarshal point: %v", err)
	}

	return PublicKey{point: point}, nil
}

// ParsePublicKey returns the public key of the identity text produced by
// MarshalText.
func ParsePublicKey(text string) (PublicKey, error) {
	encoded, found := strings.CutPrefix(text, textPrefix)
	if !found {
		return PublicKey{}, xerrors.Errorf("missing prefix in '%s'", text)
	}

	data, err := hex.DecodeString(encoded)
	if err != nil {
		return PublicKey{}, xerrors.Errorf("malformed hex: %v", err)
	}

	return NewPublicKey(data)
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (pk PublicKey) MarshalBinary() ([]byte, error) {
	return pk.point.MarshalBinary()
}

// MarshalText implements encoding.TextMarshaler. It returns the identity of
// the key.
func (pk PublicKey) MarshalText() ([]byte, error) {
	data, err := pk.point.MarshalBinary()
	if err != nil {
		return nil, xerrors.Errorf("couldn't marshal: %v", err)
	}

	return []byte(textPrefix + hex.EncodeToString(data)), nil
}

// Verify implements crypto.PublicKey.
func (pk PublicKey) Verify(msg []byte, sig crypto.Signature) error {
	signature, ok := sig.(Signature)
	if !ok {
		return xerrors.Errorf("invalid signature type '%T'", sig)
	}

	err := schnorr.Verify(suite, pk.point, msg, signature.data)
	if err != nil {
		return xerrors.Errorf("schnorr verify failed: %v", err)
	}

	return nil
}

// Equal implements crypto.PublicKey.
func (pk PublicKey) Equal(other interface{}) bool {
	o, ok := other.(PublicKey)

	return ok && o.point.Equal(pk.point)
}

// String implements fmt.Stringer. It returns a shortened identity for the
// logs.
func (pk PublicKey) String() string {
	text, err := pk.MarshalText()
	if err != nil {
		return textPrefix + "malformed_point"
	}

	return string(text[:len(textPrefix)+16])
}

// publicKeyFactory decodes the public keys of the transactions.
//
// - implements crypto.PublicKeyFactory
type publicKeyFactory struct{}

// NewPublicKeyFactory returns a new instance of the factory.
func NewPublicKeyFactory() crypto.PublicKeyFactory {
	return publicKeyFactory{}
}

// FromBytes implements crypto.PublicKeyFactory.
func (publicKeyFactory) FromBytes(data []byte) (crypto.PublicKey, error) {
	pk, err := NewPublicKey(data)
	if err != nil {
		return nil, xerrors.Errorf("failed to unmarshal the key: %v", err)
	}

	return pk, nil
}
