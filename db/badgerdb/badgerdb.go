package badgerdb

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v3"
	"github.com/kysee/zknft/db"
)

// BadgerDB implements db.Database on top of badger. Its transactions are
// serializable and Commit reports db.ErrConflict.
type BadgerDB struct {
	db *badger.DB
}

var _ db.Database = (*BadgerDB)(nil)

func New(opts db.Options) (*BadgerDB, error) {
	if err := os.MkdirAll(opts.Path, os.ModePerm); err != nil {
		return nil, fmt.Errorf("cannot create badger dir: %w", err)
	}
	bopts := badger.DefaultOptions(opts.Path).
		WithSyncWrites(true).
		WithLogger(nil)
	bdb, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("cannot open badger db: %w", err)
	}
	return &BadgerDB{db: bdb}, nil
}

func (d *BadgerDB) Close() error {
	return d.db.Close()
}

func (d *BadgerDB) Get(key []byte) ([]byte, error) {
	var val []byte
	err := d.db.View(func(txn *badger.Txn) error {
		var err error
		val, err = get(txn, key)
		return err
	})
	return val, err
}

func (d *BadgerDB) Iterate(prefix []byte, callback func(key, value []byte) bool) error {
	return d.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if !callback(item.KeyCopy(nil), val) {
				break
			}
		}
		return nil
	})
}

func (d *BadgerDB) WriteTx() db.WriteTx {
	return &WriteTx{txn: d.db.NewTransaction(true)}
}

type WriteTx struct {
	txn    *badger.Txn
	closed bool
}

var _ db.WriteTx = (*WriteTx)(nil)

func (tx *WriteTx) Get(key []byte) ([]byte, error) {
	if tx.closed {
		return nil, db.ErrTxClosed
	}
	return get(tx.txn, key)
}

// Set copies key and value; badger keeps references until commit.
func (tx *WriteTx) Set(key, value []byte) error {
	if tx.closed {
		return db.ErrTxClosed
	}
	return tx.txn.Set(bytes.Clone(key), bytes.Clone(value))
}

func (tx *WriteTx) PutIfAbsent(key, value []byte) error {
	if tx.closed {
		return db.ErrTxClosed
	}
	return db.PutIfAbsent(tx, key, value)
}

func (tx *WriteTx) Delete(key []byte) error {
	if tx.closed {
		return db.ErrTxClosed
	}
	return tx.txn.Delete(bytes.Clone(key))
}

func (tx *WriteTx) Commit() error {
	if tx.closed {
		return db.ErrTxClosed
	}
	tx.closed = true
	if err := tx.txn.Commit(); err != nil {
		if errors.Is(err, badger.ErrConflict) {
			return db.ErrConflict
		}
		return err
	}
	return nil
}

func (tx *WriteTx) Discard() {
	tx.closed = true
	tx.txn.Discard()
}

func get(txn *badger.Txn, key []byte) ([]byte, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, db.ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}
