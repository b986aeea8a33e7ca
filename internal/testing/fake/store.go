package fake

import "go.dedis.ch/raffle/core/store"

// InMemorySnapshot is a snapshot backed by a map. The errors, when set, are
// returned after the operation is applied so that a test can observe a
// partial write.
//
// - implements store.Snapshot
type InMemorySnapshot struct {
	values    map[string][]byte
	ErrRead   error
	ErrWrite  error
	ErrDelete error
}

// NewSnapshot returns an empty snapshot.
func NewSnapshot() *InMemorySnapshot {
	return &InMemorySnapshot{values: map[string][]byte{}}
}

// NewBadSnapshot returns an empty snapshot failing every operation.
func NewBadSnapshot() *InMemorySnapshot {
	snap := NewSnapshot()
	snap.ErrRead = fakeErr
	snap.ErrWrite = fakeErr
	snap.ErrDelete = fakeErr

	return snap
}

// Get implements store.Readable.
func (snap *InMemorySnapshot) Get(key []byte) ([]byte, error) {
	return snap.values[string(key)], snap.ErrRead
}

// Set implements store.Writable. It stores a copy of the value.
func (snap *InMemorySnapshot) Set(key, value []byte) error {
	snap.values[string(key)] = append([]byte{}, value...)

	return snap.ErrWrite
}

// Delete implements store.Writable.
func (snap *InMemorySnapshot) Delete(key []byte) error {
	delete(snap.values, string(key))

	return snap.ErrDelete
}

// Len returns the number of keys set.
func (snap *InMemorySnapshot) Len() int {
	return len(snap.values)
}

var _ store.Snapshot = (*InMemorySnapshot)(nil)
