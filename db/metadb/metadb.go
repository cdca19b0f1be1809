// Package metadb opens any of the supported db backends by name.
package metadb

import (
	"fmt"

	"github.com/kysee/zknft/db"
	"github.com/kysee/zknft/db/badgerdb"
	"github.com/kysee/zknft/db/inmemory"
	"github.com/kysee/zknft/db/leveldb"
	"github.com/kysee/zknft/db/pebbledb"
)

func New(typ, dir string) (db.Database, error) {
	opts := db.Options{Path: dir}
	var database db.Database
	var err error
	switch typ {
	case db.TypePebble:
		database, err = pebbledb.New(opts)
	case db.TypeLevelDB:
		database, err = leveldb.New(opts)
	case db.TypeBadger:
		database, err = badgerdb.New(opts)
	case db.TypeInMemory:
		database, err = inmemory.New(opts)
	default:
		return nil, fmt.Errorf("invalid dbType: %q. Available types: %q %q %q %q",
			typ, db.TypePebble, db.TypeLevelDB, db.TypeBadger, db.TypeInMemory)
	}
	if err != nil {
		return nil, err
	}
	return database, nil
}

// ForTest returns the in-memory backend.
func ForTest() db.Database {
	database, err := inmemory.New(db.Options{})
	if err != nil {
		panic(err)
	}
	return database
}
