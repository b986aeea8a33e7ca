package lottery

import (
	"encoding/json"

	"go.dedis.ch/raffle/core/store"
	"go.dedis.ch/raffle/core/store/prefixed"
	"golang.org/x/xerrors"
)

var stateKey = []byte("state")

// State is the state of the lottery instance.
type State struct {
	Manager    string   `json:"manager"`
	Players    []string `json:"players"`
	LastWinner string   `json:"lastWinner,omitempty"`
	Pool       uint64   `json:"pool"`
	MinStake   uint64   `json:"minStake"`
	Round      uint64   `json:"round"`
}

// HasPlayer returns true if the identity has entered the current round.
func (s State) HasPlayer(identity string) bool {
	for _, player := range s.Players {
		if player == identity {
			return true
		}
	}

	return false
}

func loadState(r store.Readable) (State, bool, error) {
	var state State

	data, err := r.Get(stateKey)
	if err != nil {
		return state, false, xerrors.Errorf("failed to read state: %v", err)
	}

	if len(data) == 0 {
		return state, false, nil
	}

	err = json.Unmarshal(data, &state)
	if err != nil {
		return state, false, xerrors.Errorf("failed to unmarshal state: %v", err)
	}

	return state, true, nil
}

func storeState(w store.Writable, state State) error {
	if state.Players == nil {
		state.Players = []string{}
	}

	data, err := json.Marshal(state)
	if err != nil {
		return xerrors.Errorf("failed to marshal state: %v", err)
	}

	err = w.Set(stateKey, data)
	if err != nil {
		return xerrors.Errorf("failed to write state: %v", err)
	}

	return nil
}

// ReadState returns the state of the instance from a read-only view of the
// ledger state. The boolean is false if the contract is not deployed.
func ReadState(r store.Readable) (State, bool, error) {
	return loadState(prefixed.NewReadable(ContractName, r))
}

// Players returns the players of the current round in the order they entered.
func Players(r store.Readable) ([]string, error) {
	state, _, err := ReadState(r)
	if err != nil {
		return nil, err
	}

	return append([]string{}, state.Players...), nil
}

// Manager returns the identity of the operator. The boolean is false if the
// contract is not deployed.
func Manager(r store.Readable) (string, bool, error) {
	state, found, err := ReadState(r)
	if err != nil {
		return "", false, err
	}

	return state.Manager, found, nil
}

// LastWinner returns the winner of the latest draw. The boolean is false
// before the first draw.
func LastWinner(r store.Readable) (string, bool, error) {
	state, _, err := ReadState(r)
	if err != nil {
		return "", false, err
	}

	return state.LastWinner, state.LastWinner != "", nil
}

// Pool returns the value collected in the current round.
func Pool(r store.Readable) (uint64, error) {
	state, _, err := ReadState(r)
	if err != nil {
		return 0, err
	}

	return state.Pool, nil
}

// MinStake returns the minimum value to enter the lottery.
func MinStake(r store.Readable) (uint64, error) {
	state, _, err := ReadState(r)
	if err != nil {
		return 0, err
	}

	return state.MinStake, nil
}

// Round returns the number of draws completed.
func Round(r store.Readable) (uint64, error) {
	state, _, err := ReadState(r)
	if err != nil {
		return 0, err
	}

	return state.Round, nil
}
