package http

import (
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.dedis.ch/raffle/core/ledger"
)

// BlockJSON is the reply of a block header. Digests are hex-encoded.
type BlockJSON struct {
	Index       uint64    `json:"index"`
	Timestamp   time.Time `json:"timestamp"`
	Previous    string    `json:"previous"`
	Transaction string    `json:"transaction"`
	Hash        string    `json:"hash"`
}

// BlockEventJSON is a line of the event stream, sent for every committed
// block.
type BlockEventJSON struct {
	Block  BlockJSON   `json:"block"`
	Events []EventJSON `json:"events"`
}

func newBlockJSON(header ledger.Header) BlockJSON {
	return BlockJSON{
		Index:       header.Index,
		Timestamp:   header.Timestamp,
		Previous:    hex.EncodeToString(header.Previous),
		Transaction: hex.EncodeToString(header.Transaction),
		Hash:        hex.EncodeToString(header.Hash),
	}
}

// handleBlock replies with the head of the chain, or with the block of the
// index query parameter.
func (s Service) handleBlock(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	head, found, err := s.ledger.GetHead()
	if err != nil {
		replyError(w, http.StatusInternalServerError, "failed to read head: %v", err)
		return
	}

	if !found {
		replyError(w, http.StatusNotFound, "chain is empty")
		return
	}

	param := r.URL.Query().Get("index")
	if param == "" {
		reply(w, http.StatusOK, newBlockJSON(head))
		return
	}

	index, err := strconv.ParseUint(param, 10, 64)
	if err != nil {
		replyError(w, http.StatusBadRequest, "invalid index '%s'", param)
		return
	}

	if index > head.Index {
		replyError(w, http.StatusNotFound, "block %d not found", index)
		return
	}

	header, err := s.ledger.GetBlock(index)
	if err != nil {
		replyError(w, http.StatusInternalServerError, "failed to read block: %v", err)
		return
	}

	reply(w, http.StatusOK, newBlockJSON(header))
}

// handleEvents streams one JSON line per committed block until the client
// goes away.
func (s Service) handleEvents(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		replyError(w, http.StatusInternalServerError, "streaming is not supported")
		return
	}

	events := s.ledger.Watch(r.Context())

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	enc := json.NewEncoder(w)

	for {
		select {
		case <-r.Context().Done():
			return
		case evt := <-events:
			msgs, err := encodeEvents(evt.Result.Events)
			if err != nil {
				return
			}

			err = enc.Encode(BlockEventJSON{Block: newBlockJSON(evt.Header), Events: msgs})
			if err != nil {
				return
			}

			flusher.Flush()
		}
	}
}
