// Package ledger implements a local ledger that executes signed transactions
// one after each other.
//
// Each transaction is applied inside a single read-write transaction of the
// database: the signature and the nonce are verified, the attached value is
// moved to the escrow account of the contract, and the contract is executed.
// A refused transaction discards every write, the nonce increment included.
// An accepted transaction is stored as a new block whose header provides the
// entropy of the next executions.
package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.dedis.ch/raffle"
	"go.dedis.ch/raffle/core"
	"go.dedis.ch/raffle/core/access"
	"go.dedis.ch/raffle/core/bank"
	"go.dedis.ch/raffle/core/execution"
	"go.dedis.ch/raffle/core/execution/native"
	"go.dedis.ch/raffle/core/store"
	"go.dedis.ch/raffle/core/store/kv"
	"go.dedis.ch/raffle/core/store/prefixed"
	"go.dedis.ch/raffle/core/txn"
	"go.dedis.ch/raffle/crypto"
	"golang.org/x/xerrors"
)

const (
	stateBucket  = "state"
	blocksBucket = "blocks"
	noncePrefix  = "nonce"
)

var (
	promTxs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "raffle_ledger_transactions_total",
		Help: "total number of transactions applied to the ledger",
	}, []string{"status"})

	promBlocks = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "raffle_ledger_blocks",
		Help: "number of blocks in the chain",
	})
)

func init() {
	raffle.PromCollectors = append(raffle.PromCollectors, promTxs, promBlocks)
}

// errRefused is returned by the database transaction to discard the writes
// of a refused transaction.
var errRefused = xerrors.New("transaction refused")

// Verifiable is the interface of a transaction that can prove that it has been
// signed by its identity.
type Verifiable interface {
	Verify() error
}

// Event is the event notified to the watchers after a block is committed.
type Event struct {
	Header Header
	Result execution.Result
}

// Ledger is a single-node ledger storing its state in a key/value database.
// It serializes the transactions.
type Ledger struct {
	sync.Mutex

	db          kv.DB
	exec        execution.Service
	watcher     *core.Watcher
	hashFactory crypto.HashFactory
	clock       func() time.Time
	logger      zerolog.Logger
}

// Option is the type of options to create a ledger.
type Option func(*Ledger)

// WithClock is an option to set the clock used to timestamp the blocks.
func WithClock(clock func() time.Time) Option {
	return func(l *Ledger) {
		l.clock = clock
	}
}

// WithHashFactory is an option to set the hash factory of the block digests.
func WithHashFactory(fac crypto.HashFactory) Option {
	return func(l *Ledger) {
		l.hashFactory = fac
	}
}

// NewLedger creates a new ledger on top of the database. The execution service
// runs the transactions.
func NewLedger(db kv.DB, exec execution.Service, opts ...Option) *Ledger {
	l := &Ledger{
		db:          db,
		exec:        exec,
		watcher:     core.NewWatcher(),
		hashFactory: crypto.Sha256,
		clock:       time.Now,
		logger:      raffle.Logger.With().Str("component", "ledger").Logger(),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Apply executes the transaction and commits the result if it is accepted. A
// refused transaction returns a result that explains why, and the state is left
// untouched. An error is returned when the transaction cannot be processed.
func (l *Ledger) Apply(ctx context.Context, tx txn.Transaction) (execution.Result, error) {
	if ctx.Err() != nil {
		return execution.Result{}, xerrors.Errorf("context error: %v", ctx.Err())
	}

	l.Lock()
	defer l.Unlock()

	var res execution.Result

	err := l.db.Update(func(wtx kv.WritableTx) error {
		var header Header
		var err error

		res, header, err = l.process(wtx, tx)
		if err != nil {
			return err
		}

		if !res.Accepted {
			return errRefused
		}

		event := Event{Header: header, Result: res}

		wtx.OnCommit(func() {
			promBlocks.Set(float64(header.Index + 1))
			l.watcher.Notify(event)
		})

		return nil
	})

	if xerrors.Is(err, errRefused) {
		promTxs.WithLabelValues("refused").Inc()

		l.logger.Debug().
			Str("identity", access.Text(tx.GetIdentity())).
			Str("reason", res.Message).
			Msg("transaction refused")

		return res, nil
	}

	if err != nil {
		promTxs.WithLabelValues("failed").Inc()
		return res, xerrors.Errorf("failed to apply: %v", err)
	}

	promTxs.WithLabelValues("accepted").Inc()

	l.logger.Info().
		Str("identity", access.Text(tx.GetIdentity())).
		Int("events", len(res.Events)).
		Msg("transaction accepted")

	return res, nil
}

func (l *Ledger) process(wtx kv.WritableTx, tx txn.Transaction) (execution.Result, Header, error) {
	state, err := wtx.GetBucketOrCreate([]byte(stateBucket))
	if err != nil {
		return execution.Result{}, Header{}, xerrors.Errorf("failed to open state: %v", err)
	}

	blocks, err := wtx.GetBucketOrCreate([]byte(blocksBucket))
	if err != nil {
		return execution.Result{}, Header{}, xerrors.Errorf("failed to open blocks: %v", err)
	}

	snap := kv.NewSnapshot(state)

	reason, err := l.admit(snap, tx)
	if err != nil {
		return execution.Result{}, Header{}, err
	}

	if reason != nil {
		return execution.Result{Message: reason.Error(), Cause: reason}, Header{}, nil
	}

	block, err := nextBlock(blocks, l.clock())
	if err != nil {
		return execution.Result{}, Header{}, err
	}

	step := execution.Step{
		Current: tx,
		Block:   block,
	}

	res, err := l.exec.Execute(snap, step)
	if err != nil {
		return res, Header{}, xerrors.Errorf("failed to execute tx: %v", err)
	}

	if !res.Accepted {
		return res, Header{}, nil
	}

	header, err := newHeader(l.hashFactory, block, tx.GetID())
	if err != nil {
		return res, header, xerrors.Errorf("failed to create header: %v", err)
	}

	err = writeHeader(blocks, header)
	if err != nil {
		return res, header, err
	}

	return res, header, nil
}

// admit verifies the signature and the nonce of the transaction, then escrows
// the attached value. It returns the reason of a refusal, or an error if the
// state cannot be processed.
func (l *Ledger) admit(snap store.Snapshot, tx txn.Transaction) (refusal error, err error) {
	verifiable, ok := tx.(Verifiable)
	if !ok {
		return xerrors.New("transaction is not signed"), nil
	}

	err = verifiable.Verify()
	if err != nil {
		return xerrors.Errorf("failed to verify: %v", err), nil
	}

	account := access.Text(tx.GetIdentity())
	if account == "" {
		return xerrors.New("invalid identity"), nil
	}

	nonces := prefixed.NewSnapshot(noncePrefix, snap)

	expected, err := readNonce(nonces, account)
	if err != nil {
		return nil, err
	}

	if tx.GetNonce() != expected {
		return xerrors.Errorf("nonce '%d' != '%d'", tx.GetNonce(), expected), nil
	}

	err = writeNonce(nonces, account, expected+1)
	if err != nil {
		return nil, err
	}

	if tx.GetValue() == 0 {
		return nil, nil
	}

	contract := string(tx.GetArg(native.ContractArg))
	if contract == "" {
		return xerrors.New("value attached without a contract"), nil
	}

	err = bank.NewAccounts(snap).Transfer(account, bank.EscrowAccount(contract), tx.GetValue())
	if err != nil {
		if xerrors.Is(err, bank.ErrInsufficientFunds) || xerrors.Is(err, bank.ErrOverflow) ||
			xerrors.Is(err, bank.ErrRefused) {
			return xerrors.Errorf("failed to escrow: %w", err), nil
		}

		return nil, xerrors.Errorf("failed to escrow: %v", err)
	}

	return nil, nil
}

// Fund credits the account with the amount. It is the faucet of the local
// ledger. Escrow accounts only move through their contract.
func (l *Ledger) Fund(account string, amount uint64) error {
	if bank.IsEscrow(account) {
		return xerrors.Errorf("account '%s': %w", account, bank.ErrEscrow)
	}

	return l.update(func(snap store.Snapshot) error {
		return bank.NewAccounts(snap).Credit(account, amount)
	})
}

// SetRefuse changes whether the account refuses deposits. Escrow accounts
// always accept them.
func (l *Ledger) SetRefuse(account string, enabled bool) error {
	if bank.IsEscrow(account) {
		return xerrors.Errorf("account '%s': %w", account, bank.ErrEscrow)
	}

	return l.update(func(snap store.Snapshot) error {
		return bank.NewAccounts(snap).SetRefuse(account, enabled)
	})
}

func (l *Ledger) update(fn func(store.Snapshot) error) error {
	l.Lock()
	defer l.Unlock()

	err := l.db.Update(func(wtx kv.WritableTx) error {
		state, err := wtx.GetBucketOrCreate([]byte(stateBucket))
		if err != nil {
			return xerrors.Errorf("failed to open state: %v", err)
		}

		return fn(kv.NewSnapshot(state))
	})
	if err != nil {
		return xerrors.Errorf("failed to update: %w", err)
	}

	return nil
}

// View executes the function with a read-only view of the committed state.
func (l *Ledger) View(fn func(store.Readable) error) error {
	return l.db.View(func(rtx kv.ReadableTx) error {
		return fn(kv.NewReadable(rtx.GetBucket([]byte(stateBucket))))
	})
}

// Balance returns the balance of the account.
func (l *Ledger) Balance(account string) (uint64, error) {
	var balance uint64

	err := l.View(func(r store.Readable) error {
		var err error
		balance, err = bank.Balance(r, account)
		return err
	})
	if err != nil {
		return 0, xerrors.Errorf("failed to read balance: %v", err)
	}

	return balance, nil
}

// GetNonce implements signed.Client. It returns the nonce expected for the
// next transaction of the identity.
func (l *Ledger) GetNonce(ident access.Identity) (uint64, error) {
	account := access.Text(ident)
	if account == "" {
		return 0, xerrors.New("invalid identity")
	}

	var nonce uint64

	err := l.View(func(r store.Readable) error {
		var err error
		nonce, err = readNonce(prefixed.NewReadable(noncePrefix, r), account)
		return err
	})
	if err != nil {
		return 0, xerrors.Errorf("failed to read nonce: %v", err)
	}

	return nonce, nil
}

// GetHead returns the header of the latest block. The boolean is false when the
// chain is empty.
func (l *Ledger) GetHead() (Header, bool, error) {
	var header Header
	var found bool

	err := l.db.View(func(rtx kv.ReadableTx) error {
		var err error
		header, found, err = readHead(rtx.GetBucket([]byte(blocksBucket)))
		return err
	})
	if err != nil {
		return header, false, xerrors.Errorf("failed to read head: %v", err)
	}

	return header, found, nil
}

// GetBlock returns the header of the block at the index.
func (l *Ledger) GetBlock(index uint64) (Header, error) {
	var header Header

	err := l.db.View(func(rtx kv.ReadableTx) error {
		bucket := rtx.GetBucket([]byte(blocksBucket))
		if bucket == nil {
			return xerrors.Errorf("block at index '%d' not found", index)
		}

		var err error
		header, err = readHeader(bucket, indexKey(index))
		return err
	})
	if err != nil {
		return header, xerrors.Errorf("failed to read block: %v", err)
	}

	return header, nil
}

// Watch returns a channel populated with the events of the committed blocks
// until the context is done. A watcher which falls behind by more than a few
// blocks misses the events in between, as the ledger never waits for it.
func (l *Ledger) Watch(ctx context.Context) <-chan Event {
	obs := observer{ch: make(chan Event, watchBuffer)}
	l.watcher.Add(obs)

	go func() {
		<-ctx.Done()
		l.watcher.Remove(obs)
	}()

	return obs.ch
}

func readNonce(r store.Readable, account string) (uint64, error) {
	value, err := r.Get([]byte(account))
	if err != nil {
		return 0, xerrors.Errorf("failed to read nonce: %v", err)
	}

	if len(value) != 8 {
		return 0, nil
	}

	return decodeUint64(value), nil
}

func writeNonce(w store.Writable, account string, nonce uint64) error {
	err := w.Set([]byte(account), encodeUint64(nonce))
	if err != nil {
		return xerrors.Errorf("failed to write nonce: %v", err)
	}

	return nil
}
