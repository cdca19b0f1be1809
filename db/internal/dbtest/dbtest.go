// Package dbtest holds the behaviour every db.Database backend must share.
package dbtest

import (
	"fmt"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/kysee/zknft/db"
)

func TestWriteTx(t *testing.T, database db.Database) {
	c := qt.New(t)

	wTx := database.WriteTx()
	defer wTx.Discard()

	_, err := wTx.Get([]byte("a"))
	c.Assert(err, qt.ErrorIs, db.ErrKeyNotFound)

	c.Assert(wTx.Set([]byte("a"), []byte("b")), qt.IsNil)
	v, err := wTx.Get([]byte("a"))
	c.Assert(err, qt.IsNil)
	c.Assert(v, qt.DeepEquals, []byte("b"))

	// not visible before commit
	_, err = database.Get([]byte("a"))
	c.Assert(err, qt.ErrorIs, db.ErrKeyNotFound)

	c.Assert(wTx.Commit(), qt.IsNil)
	v, err = database.Get([]byte("a"))
	c.Assert(err, qt.IsNil)
	c.Assert(v, qt.DeepEquals, []byte("b"))

	c.Assert(wTx.Commit(), qt.ErrorIs, db.ErrTxClosed)
	c.Assert(wTx.Set([]byte("c"), []byte("d")), qt.ErrorIs, db.ErrTxClosed)

	// delete
	wTx = database.WriteTx()
	c.Assert(wTx.Delete([]byte("a")), qt.IsNil)
	_, err = wTx.Get([]byte("a"))
	c.Assert(err, qt.ErrorIs, db.ErrKeyNotFound)
	c.Assert(wTx.Commit(), qt.IsNil)
	_, err = database.Get([]byte("a"))
	c.Assert(err, qt.ErrorIs, db.ErrKeyNotFound)
}

func TestDiscard(t *testing.T, database db.Database) {
	c := qt.New(t)

	wTx := database.WriteTx()
	c.Assert(wTx.Set([]byte("discarded"), []byte("1")), qt.IsNil)
	wTx.Discard()
	// discarding twice is harmless
	wTx.Discard()

	_, err := database.Get([]byte("discarded"))
	c.Assert(err, qt.ErrorIs, db.ErrKeyNotFound)
	c.Assert(wTx.Commit(), qt.ErrorIs, db.ErrTxClosed)
}

func TestPutIfAbsent(t *testing.T, database db.Database) {
	c := qt.New(t)

	wTx := database.WriteTx()
	c.Assert(wTx.PutIfAbsent([]byte("k"), []byte("first")), qt.IsNil)
	// pending writes count
	c.Assert(wTx.PutIfAbsent([]byte("k"), []byte("second")), qt.ErrorIs, db.ErrKeyExists)
	c.Assert(wTx.Commit(), qt.IsNil)

	wTx = database.WriteTx()
	defer wTx.Discard()
	c.Assert(wTx.PutIfAbsent([]byte("k"), []byte("third")), qt.ErrorIs, db.ErrKeyExists)

	v, err := database.Get([]byte("k"))
	c.Assert(err, qt.IsNil)
	c.Assert(v, qt.DeepEquals, []byte("first"))
}

func TestIterate(t *testing.T, database db.Database) {
	c := qt.New(t)

	wTx := database.WriteTx()
	for i := 9; i >= 0; i-- {
		c.Assert(wTx.Set([]byte(fmt.Sprintf("p/%d", i)), []byte{byte(i)}), qt.IsNil)
	}
	c.Assert(wTx.Set([]byte("q/0"), []byte{0xff}), qt.IsNil)
	c.Assert(wTx.Set([]byte("o"), []byte{0xff}), qt.IsNil)
	c.Assert(wTx.Commit(), qt.IsNil)

	var keys []string
	var values []byte
	err := database.Iterate([]byte("p/"), func(k, v []byte) bool {
		keys = append(keys, string(k))
		values = append(values, v...)
		return true
	})
	c.Assert(err, qt.IsNil)
	c.Assert(keys, qt.HasLen, 10)
	c.Assert(keys[0], qt.Equals, "p/0")
	c.Assert(keys[9], qt.Equals, "p/9")
	c.Assert(values, qt.DeepEquals, []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9})

	// stop early
	count := 0
	err = database.Iterate([]byte("p/"), func(_, _ []byte) bool {
		count++
		return count < 3
	})
	c.Assert(err, qt.IsNil)
	c.Assert(count, qt.Equals, 3)
}

func TestCounters(t *testing.T, database db.Database) {
	c := qt.New(t)

	v, err := db.GetUint64(database, []byte("counter"))
	c.Assert(err, qt.IsNil)
	c.Assert(v, qt.Equals, uint64(0))

	wTx := database.WriteTx()
	c.Assert(db.SetUint64(wTx, []byte("counter"), 42), qt.IsNil)
	c.Assert(wTx.Commit(), qt.IsNil)

	v, err = db.GetUint64(database, []byte("counter"))
	c.Assert(err, qt.IsNil)
	c.Assert(v, qt.Equals, uint64(42))
}

// TestConcurrentWriteTx only applies to backends that detect conflicts.
func TestConcurrentWriteTx(t *testing.T, database db.Database) {
	c := qt.New(t)

	tx1 := database.WriteTx()
	tx2 := database.WriteTx()
	defer tx2.Discard()

	_, err := tx1.Get([]byte("race"))
	c.Assert(err, qt.ErrorIs, db.ErrKeyNotFound)
	_, err = tx2.Get([]byte("race"))
	c.Assert(err, qt.ErrorIs, db.ErrKeyNotFound)

	c.Assert(tx1.Set([]byte("race"), []byte("1")), qt.IsNil)
	c.Assert(tx2.Set([]byte("race"), []byte("2")), qt.IsNil)

	c.Assert(tx1.Commit(), qt.IsNil)
	c.Assert(tx2.Commit(), qt.ErrorIs, db.ErrConflict)

	v, err := database.Get([]byte("race"))
	c.Assert(err, qt.IsNil)
	c.Assert(v, qt.DeepEquals, []byte("1"))
}

func TestAll(t *testing.T, database db.Database) {
	t.Run("WriteTx", func(t *testing.T) { TestWriteTx(t, database) })
	t.Run("Discard", func(t *testing.T) { TestDiscard(t, database) })
	t.Run("PutIfAbsent", func(t *testing.T) { TestPutIfAbsent(t, database) })
	t.Run("Iterate", func(t *testing.T) { TestIterate(t, database) })
	t.Run("Counters", func(t *testing.T) { TestCounters(t, database) })
}
