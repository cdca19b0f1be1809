package leveldb

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/kysee/zknft/db"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// LevelDB implements db.Database on top of goleveldb.
type LevelDB struct {
	db *leveldb.DB
}

var _ db.Database = (*LevelDB)(nil)

func New(opts db.Options) (*LevelDB, error) {
	if err := os.MkdirAll(opts.Path, os.ModePerm); err != nil {
		return nil, fmt.Errorf("cannot create leveldb dir: %w", err)
	}
	ldb, err := leveldb.OpenFile(opts.Path, nil)
	if err != nil {
		return nil, fmt.Errorf("cannot open leveldb: %w", err)
	}
	return &LevelDB{db: ldb}, nil
}

func (d *LevelDB) Close() error {
	return d.db.Close()
}

func (d *LevelDB) Get(key []byte) ([]byte, error) {
	v, err := d.db.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, db.ErrKeyNotFound
	}
	return v, err
}

func (d *LevelDB) Iterate(prefix []byte, callback func(key, value []byte) bool) error {
	iter := d.db.NewIterator(util.BytesPrefix(prefix), nil)
	defer iter.Release()
	for iter.Next() {
		if !callback(bytes.Clone(iter.Key()), bytes.Clone(iter.Value())) {
			break
		}
	}
	return iter.Error()
}

// WriteTx buffers writes in a leveldb.Batch and keeps an overlay so Get sees
// them. Like the pebble backend it does not detect conflicts.
func (d *LevelDB) WriteTx() db.WriteTx {
	return &WriteTx{
		db:      d,
		batch:   new(leveldb.Batch),
		pending: make(map[string]*[]byte),
	}
}

type WriteTx struct {
	db      *LevelDB
	batch   *leveldb.Batch
	pending map[string]*[]byte
	closed  bool
}

var _ db.WriteTx = (*WriteTx)(nil)

func (tx *WriteTx) Get(key []byte) ([]byte, error) {
	if tx.closed {
		return nil, db.ErrTxClosed
	}
	if v, ok := tx.pending[string(key)]; ok {
		if v == nil {
			return nil, db.ErrKeyNotFound
		}
		return bytes.Clone(*v), nil
	}
	return tx.db.Get(key)
}

func (tx *WriteTx) Set(key, value []byte) error {
	if tx.closed {
		return db.ErrTxClosed
	}
	v := bytes.Clone(value)
	tx.pending[string(key)] = &v
	tx.batch.Put(key, v)
	return nil
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
	tx.pending[string(key)] = nil
	tx.batch.Delete(key)
	return nil
}

func (tx *WriteTx) Commit() error {
	if tx.closed {
		return db.ErrTxClosed
	}
	tx.closed = true
	return tx.db.db.Write(tx.batch, &opt.WriteOptions{Sync: true})
}

func (tx *WriteTx) Discard() {
	tx.closed = true
	tx.batch.Reset()
	tx.pending = map[string]*[]byte{}
}
