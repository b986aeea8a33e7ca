package kv

import (
	"go.dedis.ch/raffle/core/store"
	"golang.org/x/xerrors"
)

// bucketSnapshot adapts a bucket of an ongoing transaction to the store
// snapshot interface. The values returned are copies so that they outlive the
// transaction.
//
// - implements store.Snapshot
type bucketSnapshot struct {
	bucket Bucket
}

// NewSnapshot returns a snapshot that reads and writes the bucket.
func NewSnapshot(bucket Bucket) store.Snapshot {
	return bucketSnapshot{bucket: bucket}
}

// Get implements store.Readable. It returns a copy of the value, or nil if the
// key is not set.
func (s bucketSnapshot) Get(key []byte) ([]byte, error) {
	value := s.bucket.Get(key)
	if value == nil {
		return nil, nil
	}

	return append([]byte{}, value...), nil
}

// Set implements store.Writable. It sets the value of the key.
func (s bucketSnapshot) Set(key, value []byte) error {
	err := s.bucket.Set(key, value)
	if err != nil {
		return xerrors.Errorf("failed to set key '%x': %v", key, err)
	}

	return nil
}

// Delete implements store.Writable. It deletes the key.
func (s bucketSnapshot) Delete(key []byte) error {
	err := s.bucket.Delete(key)
	if err != nil {
		return xerrors.Errorf("failed to delete key '%x': %v", key, err)
	}

	return nil
}

// emptyReadable is the readable of a bucket that does not exist yet.
//
// - implements store.Readable
type emptyReadable struct{}

// NewReadable returns a readable of the bucket. A nil bucket reads as empty.
func NewReadable(bucket Bucket) store.Readable {
	if bucket == nil {
		return emptyReadable{}
	}

	return bucketSnapshot{bucket: bucket}
}

// Get implements store.Readable. It always returns nil.
func (emptyReadable) Get([]byte) ([]byte, error) {
	return nil, nil
}
