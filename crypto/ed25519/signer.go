package ed25519

import (
	"go.dedis.ch/kyber/v3"
	"go.dedis.ch/kyber/v3/sign/schnorr"
	"go.dedis.ch/raffle/crypto"
	"golang.org/x/xerrors"
)

// Signer holds a private key of the curve.
//
// - implements crypto.Signer
type Signer struct {
	private kyber.Scalar
	public  kyber.Point
}

// NewSigner returns a signer with a random private key.
func NewSigner() Signer {
	return newSigner(suite.Scalar().Pick(suite.RandomStream()))
}

// NewSignerFromBytes restores the signer of the private key marshaled by
// MarshalBinary.
func NewSignerFromBytes(data []byte) (Signer, error) {
	scalar := suite.Scalar()

	err := scalar.UnmarshalBinary(data)
	if err != nil {
		return Signer{}, xerrors.Errorf("couldn't unmarshal scalar: %v", err)
	}

	return newSigner(scalar), nil
}

func newSigner(private kyber.Scalar) Signer {
	return Signer{
		private: private,
		public:  suite.Point().Mul(private, nil),
	}
}

// GetPublicKeyFactory implements crypto.Signer.
func (s Signer) GetPublicKeyFactory() crypto.PublicKeyFactory {
	return publicKeyFactory{}
}

// GetSignatureFactory implements crypto.Signer.
func (s Signer) GetSignatureFactory() crypto.SignatureFactory {
	return signatureFactory{}
}

// GetPublicKey implements crypto.Signer.
func (s Signer) GetPublicKey() crypto.PublicKey {
	return PublicKey{point: s.public}
}

// MarshalBinary implements encoding.BinaryMarshaler. It returns the private
// key.
func (s Signer) MarshalBinary() ([]byte, error) {
	return s.private.MarshalBinary()
}

// Sign implements crypto.Signer.
func (s Signer) Sign(msg []byte) (crypto.Signature, error) {
	sig, err := schnorr.Sign(suite, s.private, msg)
	if err != nil {
		return nil, xerrors.Errorf("couldn't make schnorr signature: %v", err)
	}

	return Signature{data: sig}, nil
}
