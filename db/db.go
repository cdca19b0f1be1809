// Package db defines the key-value storage the registry and the token ledger
// persist into, together with the transaction contract every backend honours.
package db

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
)

const (
	TypePebble   = "pebble"
	TypeLevelDB  = "leveldb"
	TypeBadger   = "badger"
	TypeInMemory = "inmemory"
)

var (
	// ErrKeyNotFound is returned by Get when the key is absent.
	ErrKeyNotFound = errors.New("key not found")
	// ErrKeyExists is returned by PutIfAbsent when the key is already set.
	ErrKeyExists = errors.New("key already exists")
	// ErrConflict is returned by Commit when a concurrent transaction touched
	// the same keys first.
	ErrConflict = errors.New("transaction conflict")
	// ErrTxClosed is returned when a committed or discarded transaction is used.
	ErrTxClosed = errors.New("transaction already committed or discarded")
)

// Options configures a backend. Path is ignored by in-memory databases.
type Options struct {
	Path string
}

// Getter reads single keys.
type Getter interface {
	Get(key []byte) ([]byte, error)
}

type Setter interface {
	Set(key, value []byte) error
}

// Reader reads committed state.
type Reader interface {
	Getter
	// Iterate calls callback for each key with the given prefix, in
	// ascending key order, until it returns false. Keys are passed in full.
	Iterate(prefix []byte, callback func(key, value []byte) bool) error
}

// WriteTx buffers writes until Commit. Get observes the transaction's own
// pending writes. Discard is safe to call after Commit.
type WriteTx interface {
	Getter
	Setter
	// PutIfAbsent sets key only if it holds no value, returning ErrKeyExists
	// otherwise.
	PutIfAbsent(key, value []byte) error
	Delete(key []byte) error
	Commit() error
	Discard()
}

type Database interface {
	Reader
	WriteTx() WriteTx
	Close() error
}

// PutIfAbsent implements WriteTx.PutIfAbsent on top of Get and Set. Backends
// that cannot check and set atomically rely on the caller serializing writers.
func PutIfAbsent(tx interface {
	Getter
	Setter
}, key, value []byte) error {
	_, err := tx.Get(key)
	switch {
	case err == nil:
		return ErrKeyExists
	case !errors.Is(err, ErrKeyNotFound):
		return err
	}
	return tx.Set(key, value)
}

// PrefixEnd returns the smallest key greater than every key with the given
// prefix, or nil if no such key exists.
func PrefixEnd(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}

// GetUint64 reads an RLP encoded counter. A missing key reads as zero.
func GetUint64(r Getter, key []byte) (uint64, error) {
	bz, err := r.Get(key)
	if errors.Is(err, ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var v uint64
	if err := rlp.DecodeBytes(bz, &v); err != nil {
		return 0, fmt.Errorf("failed to decode counter %q: %w", key, err)
	}
	return v, nil
}

func SetUint64(w Setter, key []byte, v uint64) error {
	bz, err := rlp.EncodeToBytes(v)
	if err != nil {
		return err
	}
	return w.Set(key, bz)
}
