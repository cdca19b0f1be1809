package leveldb

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/kysee/zknft/db"
	"github.com/kysee/zknft/db/internal/dbtest"
)

func newTestDB(t *testing.T) db.Database {
	database, err := New(db.Options{Path: t.TempDir()})
	qt.Assert(t, err, qt.IsNil)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func TestDatabase(t *testing.T) {
	dbtest.TestAll(t, newTestDB(t))
}
