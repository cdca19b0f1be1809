package inmemory

import (
	"bytes"
	"slices"
	"sync"

	"github.com/kysee/zknft/db"
)

type entry struct {
	value   []byte
	version uint64
	deleted bool
}

// InMemoryDB implements an ephemeral db.Database with optimistic
// transactions.
type InMemoryDB struct {
	mu          sync.RWMutex
	data        map[string]entry
	nextVersion uint64
}

var _ db.Database = (*InMemoryDB)(nil)

// New returns a new in-memory database. Options are ignored.
func New(_ db.Options) (*InMemoryDB, error) {
	return &InMemoryDB{
		data: make(map[string]entry),
	}, nil
}

func (d *InMemoryDB) Close() error {
	return nil
}

func (d *InMemoryDB) WriteTx() db.WriteTx {
	return &WriteTx{
		db:     d,
		writes: make(map[string]*[]byte),
		reads:  make(map[string]uint64),
	}
}

func (d *InMemoryDB) Get(key []byte) ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ent, ok := d.data[string(key)]
	if !ok || ent.deleted {
		return nil, db.ErrKeyNotFound
	}
	return bytes.Clone(ent.value), nil
}

func (d *InMemoryDB) Iterate(prefix []byte, callback func(key, value []byte) bool) error {
	d.mu.RLock()
	keys := make([]string, 0)
	entries := make(map[string][]byte)
	for k, ent := range d.data {
		if ent.deleted || !bytes.HasPrefix([]byte(k), prefix) {
			continue
		}
		keys = append(keys, k)
		entries[k] = bytes.Clone(ent.value)
	}
	d.mu.RUnlock()

	slices.Sort(keys)
	for _, k := range keys {
		if !callback([]byte(k), entries[k]) {
			break
		}
	}
	return nil
}

// version returns 0 for absent keys. Callers hold d.mu.
func (d *InMemoryDB) version(key string) uint64 {
	return d.data[key].version
}

type WriteTx struct {
	db     *InMemoryDB
	writes map[string]*[]byte
	reads  map[string]uint64
	closed bool
}

var _ db.WriteTx = (*WriteTx)(nil)

func (tx *WriteTx) recordRead(key string) {
	if _, ok := tx.reads[key]; ok {
		return
	}
	tx.db.mu.RLock()
	tx.reads[key] = tx.db.version(key)
	tx.db.mu.RUnlock()
}

func (tx *WriteTx) Get(key []byte) ([]byte, error) {
	if tx.closed {
		return nil, db.ErrTxClosed
	}
	k := string(key)
	if pending, ok := tx.writes[k]; ok {
		if pending == nil {
			return nil, db.ErrKeyNotFound
		}
		return bytes.Clone(*pending), nil
	}
	tx.recordRead(k)
	return tx.db.Get(key)
}

func (tx *WriteTx) Set(key, value []byte) error {
	if tx.closed {
		return db.ErrTxClosed
	}
	k := string(key)
	tx.recordRead(k)
	v := bytes.Clone(value)
	tx.writes[k] = &v
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
	k := string(key)
	tx.recordRead(k)
	tx.writes[k] = nil
	return nil
}

// Commit applies the writes unless a key this transaction observed changed
// since it was first read.
func (tx *WriteTx) Commit() error {
	if tx.closed {
		return db.ErrTxClosed
	}
	tx.closed = true

	tx.db.mu.Lock()
	defer tx.db.mu.Unlock()
	for k, ver := range tx.reads {
		if tx.db.version(k) != ver {
			return db.ErrConflict
		}
	}
	for k, v := range tx.writes {
		tx.db.nextVersion++
		if v == nil {
			tx.db.data[k] = entry{version: tx.db.nextVersion, deleted: true}
			continue
		}
		tx.db.data[k] = entry{value: *v, version: tx.db.nextVersion}
	}
	return nil
}

func (tx *WriteTx) Discard() {
	tx.writes = map[string]*[]byte{}
	tx.reads = map[string]uint64{}
	tx.closed = true
}
