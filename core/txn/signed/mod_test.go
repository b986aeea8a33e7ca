package signed

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/raffle/core/access"
	"go.dedis.ch/raffle/core/txn"
	"go.dedis.ch/raffle/crypto/ed25519"
	"go.dedis.ch/raffle/internal/testing/fake"
)

func TestTransaction_New(t *testing.T) {
	signer := ed25519.NewSigner()

	tx, err := NewTransaction(0, signer.GetPublicKey())
	require.NoError(t, err)
	require.NotNil(t, tx)

	require.NoError(t, tx.Sign(signer))

	tx, err = NewTransaction(0, signer.GetPublicKey(), WithSignature(tx.GetSignature()))
	require.NoError(t, err)
	require.NotNil(t, tx.GetSignature())

	_, err = NewTransaction(0, fake.PublicKey{}, WithHashFactory(fake.NewHashFactory(fake.NewBadHash(0))))
	require.EqualError(t, err, fake.Err("couldn't fingerprint tx: couldn't write header"))

	_, err = NewTransaction(1, signer.GetPublicKey(), WithSignature(tx.GetSignature()))
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid signature: schnorr verify failed: ")
}

func TestTransaction_GetID(t *testing.T) {
	tx, err := NewTransaction(0, fake.PublicKey{})
	require.NoError(t, err)

	id := tx.GetID()
	require.Len(t, id, 32)

	other, err := NewTransaction(0, fake.PublicKey{}, WithValue(1))
	require.NoError(t, err)
	require.NotEqual(t, id, other.GetID())

	// The boundary between the key and the value of an argument matters.
	first, err := NewTransaction(0, fake.PublicKey{}, WithArg("AB", []byte("C")))
	require.NoError(t, err)

	second, err := NewTransaction(0, fake.PublicKey{}, WithArg("A", []byte("BC")))
	require.NoError(t, err)
	require.NotEqual(t, first.GetID(), second.GetID())
}

func TestTransaction_GetNonce(t *testing.T) {
	tx, err := NewTransaction(123, fake.PublicKey{})
	require.NoError(t, err)

	nonce := tx.GetNonce()
	require.Equal(t, uint64(123), nonce)
}

func TestTransaction_GetIdentity(t *testing.T) {
	tx, err := NewTransaction(1, fake.PublicKey{})
	require.NoError(t, err)
	require.Equal(t, fake.PublicKey{}, tx.GetIdentity())
	require.Equal(t, fake.PublicKey{}, tx.GetPublicKey())
}

func TestTransaction_GetValue(t *testing.T) {
	tx, err := NewTransaction(1, fake.PublicKey{}, WithValue(42))
	require.NoError(t, err)
	require.Equal(t, uint64(42), tx.GetValue())
}

func TestTransaction_GetArgs(t *testing.T) {
	tx, err := NewTransaction(5, fake.PublicKey{}, WithArg("B", []byte{2}), WithArg("A", []byte{1}))
	require.NoError(t, err)

	require.Equal(t, []string{"A", "B"}, tx.GetArgs())
	require.Equal(t, []byte{1}, tx.GetArg("A"))
	require.Equal(t, []byte{2}, tx.GetArg("B"))
	require.Nil(t, tx.GetArg("C"))
}

func TestTransaction_Sign(t *testing.T) {
	signer := ed25519.NewSigner()

	tx, err := NewTransaction(0, signer.GetPublicKey())
	require.NoError(t, err)

	err = tx.Sign(signer)
	require.NoError(t, err)
	require.NoError(t, tx.Verify())

	err = tx.Sign(ed25519.NewSigner())
	require.EqualError(t, err, "mismatch signer and identity")

	err = tx.Sign(fake.NewBadSigner())
	require.EqualError(t, err, "mismatch signer and identity")

	tx.pubkey = fake.NewPublicKey("bad")
	err = tx.Sign(fake.NewBadSigner())
	require.EqualError(t, err, fake.Err("signer"))

	tx.hash = nil
	err = tx.Sign(signer)
	require.EqualError(t, err, "missing digest in transaction")
}

func TestTransaction_Verify(t *testing.T) {
	tx, err := NewTransaction(0, fake.PublicKey{})
	require.NoError(t, err)

	err = tx.Verify()
	require.EqualError(t, err, "missing signature")

	tx.sig = fake.Signature{}
	tx.pubkey = fake.NewInvalidPublicKey("alice")
	err = tx.Verify()
	require.EqualError(t, err, fake.Err("invalid signature"))
}

func TestTransaction_Fingerprint(t *testing.T) {
	tx, err := NewTransaction(2, fake.PublicKey{}, WithArg("A", []byte{1, 2, 3}), WithValue(1))
	require.NoError(t, err)

	buffer := new(bytes.Buffer)

	err = tx.Fingerprint(buffer)
	require.NoError(t, err)
	require.Equal(t, "\x02\x00\x00\x00\x00\x00\x00\x00\x01\x00\x00\x00\x00\x00\x00\x00"+
		"\x01\x00A\x03\x00\x00\x00\x01\x02\x03", buffer.String())

	err = tx.Fingerprint(fake.NewBadHash(0))
	require.EqualError(t, err, fake.Err("couldn't write header"))

	err = tx.Fingerprint(fake.NewBadHash(1))
	require.EqualError(t, err, fake.Err("couldn't write arg 'A'"))

	err = tx.Fingerprint(fake.NewBadHash(2))
	require.EqualError(t, err, fake.Err("couldn't write public key"))

	tx.pubkey = fake.NewBadPublicKey()
	err = tx.Fingerprint(buffer)
	require.EqualError(t, err, fake.Err("failed to marshal public key"))
}

func TestTransaction_Serialize(t *testing.T) {
	signer := ed25519.NewSigner()

	tx, err := NewTransaction(3, signer.GetPublicKey(), WithArg("A", []byte("B")), WithValue(7))
	require.NoError(t, err)
	require.NoError(t, tx.Sign(signer))

	data, err := tx.Serialize()
	require.NoError(t, err)

	factory := NewTransactionFactory(signer.GetPublicKeyFactory(), signer.GetSignatureFactory())

	decoded, err := factory.TransactionOf(data)
	require.NoError(t, err)
	require.Equal(t, tx.GetID(), decoded.GetID())
	require.Equal(t, uint64(7), decoded.GetValue())
	require.Equal(t, uint64(3), decoded.GetNonce())
	require.NoError(t, decoded.Verify())

	tx.pubkey = fake.NewBadPublicKey()
	_, err = tx.Serialize()
	require.EqualError(t, err, fake.Err("failed to encode public key"))

	tx.pubkey = fake.PublicKey{}
	tx.sig = fake.NewBadSignature()
	_, err = tx.Serialize()
	require.EqualError(t, err, fake.Err("failed to encode signature"))
}

func TestTransactionFactory_TransactionOf(t *testing.T) {
	signer := ed25519.NewSigner()
	factory := NewTransactionFactory(signer.GetPublicKeyFactory(), signer.GetSignatureFactory())

	_, err := factory.TransactionOf([]byte("{"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to unmarshal: ")

	_, err = factory.TransactionOf([]byte(`{"PublicKey":""}`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to decode public key: ")

	pk, err := signer.GetPublicKey().MarshalBinary()
	require.NoError(t, err)

	data, err := json.Marshal(TransactionJSON{PublicKey: pk, Signature: []byte{1}})
	require.NoError(t, err)

	_, err = factory.TransactionOf(data)
	require.EqualError(t, err, "failed to decode signature: invalid signature size 1")

	data, err = json.Marshal(TransactionJSON{PublicKey: pk, Signature: make([]byte, 64)})
	require.NoError(t, err)

	_, err = factory.TransactionOf(data)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to create tx: invalid signature: ")

	data, err = json.Marshal(TransactionJSON{PublicKey: pk, Value: 5})
	require.NoError(t, err)

	tx, err := factory.TransactionOf(data)
	require.NoError(t, err)
	require.Equal(t, uint64(5), tx.GetValue())
	require.Nil(t, tx.GetSignature())
}

func TestManager_Make(t *testing.T) {
	signer := ed25519.NewSigner()
	mgr := NewManager(signer, fakeClient{})

	tx, err := mgr.Make(10, txn.Arg{Key: "a", Value: []byte{1}})
	require.NoError(t, err)
	require.Equal(t, uint64(0), tx.GetNonce())
	require.Equal(t, uint64(10), tx.GetValue())
	require.Equal(t, []byte{1}, tx.GetArg("a"))
	require.NoError(t, tx.(*Transaction).Verify())

	tx, err = mgr.Make(0)
	require.NoError(t, err)
	require.Equal(t, uint64(1), tx.GetNonce())

	mgr.hashFac = fake.NewHashFactory(fake.NewBadHash(0))
	_, err = mgr.Make(0)
	require.EqualError(t, err,
		fake.Err("failed to create tx: couldn't fingerprint tx: couldn't write header"))

	mgr = NewManager(fake.NewBadSigner(), fakeClient{})
	_, err = mgr.Make(0)
	require.EqualError(t, err, fake.Err("failed to sign: signer"))
}

func TestManager_Sync(t *testing.T) {
	signer := ed25519.NewSigner()
	mgr := NewManager(signer, fakeClient{nonce: 42})

	err := mgr.Sync()
	require.NoError(t, err)
	require.Equal(t, uint64(42), mgr.nonce)

	mgr.client = fakeClient{err: fake.GetError()}
	err = mgr.Sync()
	require.EqualError(t, err, fake.Err("client"))
}

// -----------------------------------------------------------------------------
// Utility functions

type fakeClient struct {
	nonce uint64
	err   error
}

func (c fakeClient) GetNonce(access.Identity) (uint64, error) {
	return c.nonce, c.err
}
