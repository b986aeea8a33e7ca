package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.dedis.ch/raffle"
	"go.dedis.ch/raffle/contracts/lottery"
	"go.dedis.ch/raffle/core/execution"
	"go.dedis.ch/raffle/core/ledger"
	"go.dedis.ch/raffle/core/store"
	"go.dedis.ch/raffle/core/txn"
	"go.dedis.ch/raffle/core/txn/signed"
	"go.dedis.ch/raffle/crypto/ed25519"
	"golang.org/x/xerrors"
)

const maxBodySize = 1 << 20

// Ledger is the subset of the ledger primitives used by the handlers.
type Ledger interface {
	View(fn func(store.Readable) error) error
	Balance(account string) (uint64, error)
	Apply(ctx context.Context, tx txn.Transaction) (execution.Result, error)
	GetHead() (ledger.Header, bool, error)
	GetBlock(index uint64) (ledger.Header, error)
	Watch(ctx context.Context) <-chan ledger.Event
}

// LotteryJSON is the reply of the lottery state.
type LotteryJSON struct {
	Manager    string   `json:"manager"`
	Players    []string `json:"players"`
	LastWinner string   `json:"lastWinner,omitempty"`
	Pool       uint64   `json:"pool"`
	MinStake   uint64   `json:"minStake"`
	Round      uint64   `json:"round"`
}

// AccountJSON is the reply of an account balance.
type AccountJSON struct {
	Identity string `json:"identity"`
	Balance  uint64 `json:"balance"`
}

// EventJSON is an event emitted by an accepted transaction.
type EventJSON struct {
	Name string          `json:"name"`
	Data json.RawMessage `json:"data"`
}

// ResultJSON is the reply of a transaction submission.
type ResultJSON struct {
	Accepted bool        `json:"accepted"`
	Message  string      `json:"message,omitempty"`
	Events   []EventJSON `json:"events"`
}

// ErrorJSON is the reply of a failed request.
type ErrorJSON struct {
	Error string `json:"error"`
}

// Service provides the handlers of the lottery and the accounts.
type Service struct {
	ledger Ledger
	txFac  signed.TransactionFactory
}

// NewService creates the handlers for the ledger. Transactions are expected
// to be signed with ed25519 keys.
func NewService(l Ledger) Service {
	return Service{
		ledger: l,
		txFac: signed.NewTransactionFactory(ed25519.NewPublicKeyFactory(),
			ed25519.NewSignatureFactory()),
	}
}

// Register registers the handlers of the service, and the metrics handler
// with the registry.
func (s Service) Register(h *HTTP, reg *prometheus.Registry) {
	h.RegisterHandler("/lottery", s.handleLottery)
	h.RegisterHandler("/accounts", s.handleAccount)
	h.RegisterHandler("/transactions", s.handleTransaction)
	h.RegisterHandler("/blocks", s.handleBlock)
	h.RegisterHandler("/events", s.handleEvents)
	h.RegisterHandler("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}).ServeHTTP)
}

// NewRegistry returns a registry populated with the collectors of the
// components.
func NewRegistry() (*prometheus.Registry, error) {
	reg := prometheus.NewRegistry()

	for _, c := range raffle.PromCollectors {
		err := reg.Register(c)
		if err != nil {
			return nil, xerrors.Errorf("failed to register: %v", err)
		}
	}

	return reg, nil
}

func (s Service) handleLottery(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	var state lottery.State
	var found bool

	err := s.ledger.View(func(rd store.Readable) error {
		var err error
		state, found, err = lottery.ReadState(rd)
		return err
	})
	if err != nil {
		replyError(w, http.StatusInternalServerError, "failed to read state: %v", err)
		return
	}

	if !found {
		replyError(w, http.StatusNotFound, "lottery is not deployed")
		return
	}

	players := state.Players
	if players == nil {
		players = []string{}
	}

	reply(w, http.StatusOK, LotteryJSON{
		Manager:    state.Manager,
		Players:    players,
		LastWinner: state.LastWinner,
		Pool:       state.Pool,
		MinStake:   state.MinStake,
		Round:      state.Round,
	})
}

func (s Service) handleAccount(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	identity := r.URL.Query().Get("identity")
	if identity == "" {
		replyError(w, http.StatusBadRequest, "missing identity")
		return
	}

	balance, err := s.ledger.Balance(identity)
	if err != nil {
		replyError(w, http.StatusInternalServerError, "failed to get balance: %v", err)
		return
	}

	reply(w, http.StatusOK, AccountJSON{Identity: identity, Balance: balance})
}

func (s Service) handleTransaction(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		replyError(w, http.StatusBadRequest, "failed to read body: %v", err)
		return
	}

	tx, err := s.txFac.TransactionOf(data)
	if err != nil {
		replyError(w, http.StatusBadRequest, "failed to decode tx: %v", err)
		return
	}

	res, err := s.ledger.Apply(r.Context(), tx)
	if err != nil {
		replyError(w, http.StatusInternalServerError, "failed to apply tx: %v", err)
		return
	}

	events, err := encodeEvents(res.Events)
	if err != nil {
		replyError(w, http.StatusInternalServerError, "%v", err)
		return
	}

	reply(w, http.StatusOK, ResultJSON{
		Accepted: res.Accepted,
		Message:  res.Message,
		Events:   events,
	})
}

func encodeEvents(events []execution.Event) ([]EventJSON, error) {
	msgs := make([]EventJSON, 0, len(events))

	for _, event := range events {
		raw, err := json.Marshal(event)
		if err != nil {
			return nil, xerrors.Errorf("failed to marshal event: %v", err)
		}

		msgs = append(msgs, EventJSON{Name: event.Name(), Data: raw})
	}

	return msgs, nil
}

func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}

	w.Header().Set("Allow", method)
	replyError(w, http.StatusMethodNotAllowed, "only %s is allowed", method)

	return false
}

func replyError(w http.ResponseWriter, code int, format string, args ...interface{}) {
	reply(w, code, ErrorJSON{Error: xerrors.Errorf(format, args...).Error()})
}

func reply(w http.ResponseWriter, code int, msg interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	_ = json.NewEncoder(w).Encode(msg)
}
