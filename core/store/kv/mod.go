// Package kv defines the database the ledger is persisted to, made of named
// buckets of keys. The implementation uses bbolt
// (https://github.com/etcd-io/bbolt).
package kv

// Bucket is a set of keys of the database.
type Bucket interface {
	// Get returns the value of the key, or nil when the key is not set. The
	// value is only valid during the transaction.
	Get(key []byte) []byte

	Set(key, value []byte) error

	Delete(key []byte) error
}

// ReadableTx is a read-only transaction.
type ReadableTx interface {
	// GetBucket returns the bucket of the given name, or nil when it does not
	// exist.
	GetBucket(name []byte) Bucket
}

// WritableTx is a read-write transaction. Either every write is committed, or
// none.
type WritableTx interface {
	ReadableTx

	// GetBucketOrCreate returns the bucket of the given name, and creates it if
	// necessary.
	GetBucketOrCreate(name []byte) (Bucket, error)

	// OnCommit registers a callback executed after the transaction is
	// committed. It is never called when the transaction is rolled back.
	OnCommit(func())
}

// DB is the database.
type DB interface {
	// View runs the function in a read-only transaction.
	View(fn func(ReadableTx) error) error

	// Update runs the function in a read-write transaction. The transaction is
	// rolled back when the function returns an error, and the error returned
	// as is.
	Update(fn func(WritableTx) error) error

	Close() error
}
