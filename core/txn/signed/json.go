package signed

import (
	"encoding/json"

	"go.dedis.ch/raffle/crypto"
	"golang.org/x/xerrors"
)

// TransactionJSON is the JSON message of a transaction.
type TransactionJSON struct {
	Nonce     uint64
	Value     uint64
	Args      map[string][]byte
	PublicKey []byte
	Signature []byte
}

// Serialize returns the JSON data of the transaction.
func (t *Transaction) Serialize() ([]byte, error) {
	args := map[string][]byte{}
	for _, arg := range t.GetArgs() {
		args[arg] = t.GetArg(arg)
	}

	pubkey, err := t.pubkey.MarshalBinary()
	if err != nil {
		return nil, xerrors.Errorf("failed to encode public key: %v", err)
	}

	m := TransactionJSON{
		Nonce:     t.nonce,
		Value:     t.value,
		Args:      args,
		PublicKey: pubkey,
	}

	if t.sig != nil {
		m.Signature, err = t.sig.MarshalBinary()
		if err != nil {
			return nil, xerrors.Errorf("failed to encode signature: %v", err)
		}
	}

	data, err := json.Marshal(m)
	if err != nil {
		return nil, xerrors.Errorf("failed to marshal: %v", err)
	}

	return data, nil
}

// TransactionFactory is a factory to deserialize transactions.
type TransactionFactory struct {
	pubkeyFac crypto.PublicKeyFactory
	sigFac    crypto.SignatureFactory
}

// NewTransactionFactory returns a new factory using the key and signature
// factories of the signature scheme.
func NewTransactionFactory(pkFac crypto.PublicKeyFactory, sigFac crypto.SignatureFactory) TransactionFactory {
	return TransactionFactory{
		pubkeyFac: pkFac,
		sigFac:    sigFac,
	}
}

// TransactionOf populates the transaction from the JSON data if appropriate,
// otherwise it returns an error. A signature, when present, must be valid.
func (f TransactionFactory) TransactionOf(data []byte) (*Transaction, error) {
	m := TransactionJSON{}
	err := json.Unmarshal(data, &m)
	if err != nil {
		return nil, xerrors.Errorf("failed to unmarshal: %v", err)
	}

	pubkey, err := f.pubkeyFac.FromBytes(m.PublicKey)
	if err != nil {
		return nil, xerrors.Errorf("failed to decode public key: %v", err)
	}

	opts := make([]TransactionOption, 0, len(m.Args)+2)
	for key, value := range m.Args {
		opts = append(opts, WithArg(key, value))
	}

	opts = append(opts, WithValue(m.Value))

	if len(m.Signature) > 0 {
		sig, err := f.sigFac.SignatureOf(m.Signature)
		if err != nil {
			return nil, xerrors.Errorf("failed to decode signature: %v", err)
		}

		opts = append(opts, WithSignature(sig))
	}

	tx, err := NewTransaction(m.Nonce, pubkey, opts...)
	if err != nil {
		return nil, xerrors.Errorf("failed to create tx: %v", err)
	}

	return tx, nil
}
