// Package signed implements the transactions of the ledger authenticated by
// the signature of their identity.
//
// The nonce is the sequence number of the identity. The ledger accepts a
// transaction only if its nonce is the next one expected, so that a signed
// transaction cannot be replayed.
package signed

import (
	"encoding/binary"
	"io"
	"sort"

	"go.dedis.ch/raffle"
	"go.dedis.ch/raffle/core/access"
	"go.dedis.ch/raffle/core/txn"
	"go.dedis.ch/raffle/crypto"
	"golang.org/x/xerrors"
)

// Transaction is a transaction signed by the owner of the public key.
//
// - implements txn.Transaction
type Transaction struct {
	nonce  uint64
	value  uint64
	args   map[string][]byte
	pubkey crypto.PublicKey
	sig    crypto.Signature
	hash   []byte
}

type txConfig struct {
	value       uint64
	args        map[string][]byte
	sig         crypto.Signature
	hashFactory crypto.HashFactory
}

// TransactionOption is the type of options to create a transaction.
type TransactionOption func(*txConfig)

// WithArg is an option to set an argument with the key and the value.
func WithArg(key string, value []byte) TransactionOption {
	return func(cfg *txConfig) {
		cfg.args[key] = value
	}
}

// WithValue is an option to attach an amount to the transaction.
func WithValue(value uint64) TransactionOption {
	return func(cfg *txConfig) {
		cfg.value = value
	}
}

// WithSignature is an option to set the signature of a transaction received
// from a client. The signature is verified against the public key.
func WithSignature(sig crypto.Signature) TransactionOption {
	return func(cfg *txConfig) {
		cfg.sig = sig
	}
}

// WithHashFactory is an option to set the hash of the transaction digest.
func WithHashFactory(f crypto.HashFactory) TransactionOption {
	return func(cfg *txConfig) {
		cfg.hashFactory = f
	}
}

// NewTransaction creates a new transaction for the nonce of the public key.
func NewTransaction(nonce uint64, pk crypto.PublicKey, opts ...TransactionOption) (*Transaction, error) {
	cfg := txConfig{
		args:        make(map[string][]byte),
		hashFactory: crypto.Sha256,
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	tx := &Transaction{
		nonce:  nonce,
		value:  cfg.value,
		args:   cfg.args,
		pubkey: pk,
		sig:    cfg.sig,
	}

	h := cfg.hashFactory.New()

	err := tx.Fingerprint(h)
	if err != nil {
		return nil, xerrors.Errorf("couldn't fingerprint tx: %v", err)
	}

	tx.hash = h.Sum(nil)

	if tx.sig != nil {
		err = tx.Verify()
		if err != nil {
			return nil, err
		}
	}

	return tx, nil
}

// GetID implements txn.Transaction. It returns the digest of the transaction.
func (t *Transaction) GetID() []byte {
	return t.hash
}

// GetNonce implements txn.Transaction.
func (t *Transaction) GetNonce() uint64 {
	return t.nonce
}

// GetIdentity implements txn.Transaction. It returns the public key of the
// signer.
func (t *Transaction) GetIdentity() access.Identity {
	return t.pubkey
}

// GetPublicKey returns the public key of the signer.
func (t *Transaction) GetPublicKey() crypto.PublicKey {
	return t.pubkey
}

// GetValue implements txn.Transaction.
func (t *Transaction) GetValue() uint64 {
	return t.value
}

// GetSignature returns the signature, or nil if the transaction is not signed.
func (t *Transaction) GetSignature() crypto.Signature {
	return t.sig
}

// GetArgs returns the sorted keys of the arguments.
func (t *Transaction) GetArgs() []string {
	keys := make([]string, 0, len(t.args))
	for key := range t.args {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

// GetArg implements txn.Transaction. It returns nil for a missing argument.
func (t *Transaction) GetArg(key string) []byte {
	return t.args[key]
}

// Sign signs the digest with the signer, which must own the public key of the
// transaction.
func (t *Transaction) Sign(signer crypto.Signer) error {
	if len(t.hash) == 0 {
		return xerrors.New("missing digest in transaction")
	}

	if !signer.GetPublicKey().Equal(t.pubkey) {
		return xerrors.New("mismatch signer and identity")
	}

	sig, err := signer.Sign(t.hash)
	if err != nil {
		return xerrors.Errorf("signer: %v", err)
	}

	t.sig = sig

	return nil
}

// Verify returns nil if the transaction carries a valid signature for its
// public key, otherwise an error.
func (t *Transaction) Verify() error {
	if t.sig == nil {
		return xerrors.New("missing signature")
	}

	err := t.pubkey.Verify(t.hash, t.sig)
	if err != nil {
		return xerrors.Errorf("invalid signature: %v", err)
	}

	return nil
}

// Fingerprint writes the deterministic binary form of the transaction: the
// nonce and the value, then every argument sorted by key, then the public key.
// The keys and the values of the arguments are length-prefixed.
func (t *Transaction) Fingerprint(w io.Writer) error {
	header := make([]byte, 16)
	binary.LittleEndian.PutUint64(header, t.nonce)
	binary.LittleEndian.PutUint64(header[8:], t.value)

	_, err := w.Write(header)
	if err != nil {
		return xerrors.Errorf("couldn't write header: %v", err)
	}

	for _, key := range t.GetArgs() {
		_, err = w.Write(encodeArg(key, t.args[key]))
		if err != nil {
			return xerrors.Errorf("couldn't write arg '%s': %v", key, err)
		}
	}

	pubkey, err := t.pubkey.MarshalBinary()
	if err != nil {
		return xerrors.Errorf("failed to marshal public key: %v", err)
	}

	_, err = w.Write(pubkey)
	if err != nil {
		return xerrors.Errorf("couldn't write public key: %v", err)
	}

	return nil
}

func encodeArg(key string, value []byte) []byte {
	buffer := make([]byte, 2, 6+len(key)+len(value))
	binary.LittleEndian.PutUint16(buffer, uint16(len(key)))
	buffer = append(buffer, key...)
	buffer = binary.LittleEndian.AppendUint32(buffer, uint32(len(value)))

	return append(buffer, value...)
}

// Client is the source of the nonces of the manager, typically the ledger.
type Client interface {
	GetNonce(access.Identity) (uint64, error)
}

// TransactionManager creates the transactions of a signer. It increments the
// nonce after each transaction, which means that it must be synchronized again
// when the ledger refuses one.
//
// - implements txn.Manager
type TransactionManager struct {
	client  Client
	signer  crypto.Signer
	nonce   uint64
	hashFac crypto.HashFactory
}

// NewManager creates a new transaction manager. It starts at the nonce zero
// until it is synchronized.
func NewManager(signer crypto.Signer, client Client) *TransactionManager {
	return &TransactionManager{
		client:  client,
		signer:  signer,
		hashFac: crypto.Sha256,
	}
}

// Make implements txn.Manager. It creates and signs a transaction with the
// value and the arguments.
func (mgr *TransactionManager) Make(value uint64, args ...txn.Arg) (txn.Transaction, error) {
	opts := []TransactionOption{WithValue(value), WithHashFactory(mgr.hashFac)}
	for _, arg := range args {
		opts = append(opts, WithArg(arg.Key, arg.Value))
	}

	tx, err := NewTransaction(mgr.nonce, mgr.signer.GetPublicKey(), opts...)
	if err != nil {
		return nil, xerrors.Errorf("failed to create tx: %v", err)
	}

	err = tx.Sign(mgr.signer)
	if err != nil {
		return nil, xerrors.Errorf("failed to sign: %v", err)
	}

	mgr.nonce++

	return tx, nil
}

// Sync implements txn.Manager. It reads the next nonce of the signer from the
// client.
func (mgr *TransactionManager) Sync() error {
	nonce, err := mgr.client.GetNonce(mgr.signer.GetPublicKey())
	if err != nil {
		return xerrors.Errorf("client: %v", err)
	}

	mgr.nonce = nonce

	raffle.Logger.Debug().Uint64("nonce", nonce).Msg("manager synchronized")

	return nil
}
