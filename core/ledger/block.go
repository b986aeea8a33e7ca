package ledger

import (
	"encoding/binary"
	"encoding/json"
	"time"

	"go.dedis.ch/raffle/core/execution"
	"go.dedis.ch/raffle/core/store/kv"
	"go.dedis.ch/raffle/crypto"
	"golang.org/x/xerrors"
)

var headKey = []byte("head")

// Header is the header of a block of the ledger. A block contains exactly one
// accepted transaction.
type Header struct {
	Index       uint64    `json:"index"`
	Timestamp   time.Time `json:"timestamp"`
	Previous    []byte    `json:"previous"`
	Transaction []byte    `json:"transaction"`
	Hash        []byte    `json:"hash"`
}

// GetBlock returns the execution view of the header.
func (h Header) GetBlock() execution.Block {
	return execution.Block{
		Index:     h.Index,
		Timestamp: h.Timestamp,
		Previous:  h.Previous,
	}
}

// newHeader creates the header of the next block after the previous one and
// computes its digest.
func newHeader(fac crypto.HashFactory, block execution.Block, txID []byte) (Header, error) {
	header := Header{
		Index:       block.Index,
		Timestamp:   block.Timestamp,
		Previous:    block.Previous,
		Transaction: txID,
	}

	h := fac.New()

	buffer := make([]byte, 16)
	binary.LittleEndian.PutUint64(buffer, header.Index)
	binary.LittleEndian.PutUint64(buffer[8:], uint64(header.Timestamp.UnixNano()))

	_, err := h.Write(buffer)
	if err != nil {
		return header, xerrors.Errorf("failed to write index: %v", err)
	}

	_, err = h.Write(header.Previous)
	if err != nil {
		return header, xerrors.Errorf("failed to write previous: %v", err)
	}

	_, err = h.Write(header.Transaction)
	if err != nil {
		return header, xerrors.Errorf("failed to write transaction: %v", err)
	}

	header.Hash = h.Sum(nil)

	return header, nil
}

// nextBlock returns the block that follows the head of the chain, or the
// genesis block when the chain is empty.
func nextBlock(bucket kv.Bucket, now time.Time) (execution.Block, error) {
	block := execution.Block{
		Timestamp: now,
		Previous:  make([]byte, 32),
	}

	head, found, err := readHead(bucket)
	if err != nil {
		return block, xerrors.Errorf("failed to read head: %v", err)
	}

	if found {
		block.Index = head.Index + 1
		block.Previous = head.Hash
	}

	return block, nil
}

func readHead(bucket kv.Bucket) (Header, bool, error) {
	if bucket == nil {
		return Header{}, false, nil
	}

	key := bucket.Get(headKey)
	if key == nil {
		return Header{}, false, nil
	}

	header, err := readHeader(bucket, key)
	if err != nil {
		return header, false, err
	}

	return header, true, nil
}

func readHeader(bucket kv.Bucket, key []byte) (Header, error) {
	var header Header

	data := bucket.Get(key)
	if data == nil {
		return header, xerrors.Errorf("block at key '%x' not found", key)
	}

	err := json.Unmarshal(data, &header)
	if err != nil {
		return header, xerrors.Errorf("failed to unmarshal header: %v", err)
	}

	return header, nil
}

func writeHeader(bucket kv.Bucket, header Header) error {
	data, err := json.Marshal(header)
	if err != nil {
		return xerrors.Errorf("failed to marshal header: %v", err)
	}

	key := indexKey(header.Index)

	err = bucket.Set(key, data)
	if err != nil {
		return xerrors.Errorf("failed to store header: %v", err)
	}

	err = bucket.Set(headKey, key)
	if err != nil {
		return xerrors.Errorf("failed to store head: %v", err)
	}

	return nil
}

func indexKey(index uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, index)

	return key
}

func encodeUint64(value uint64) []byte {
	buffer := make([]byte, 8)
	binary.LittleEndian.PutUint64(buffer, value)

	return buffer
}

func decodeUint64(buffer []byte) uint64 {
	return binary.LittleEndian.Uint64(buffer)
}
