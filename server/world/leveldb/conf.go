package leveldb

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/df-mc/goleveldb/leveldb"
	"github.com/df-mc/goleveldb/leveldb/opt"
	"github.com/df-mc/goleveldb/leveldb/storage"
)

// Config holds the optional parameters of a DB.
type Config struct {
	// Log is the Logger that will be used to log errors and debug messages to.
	// If set to nil, Log is set to slog.Default().
	Log *slog.Logger
	// ReadOnly opens the database without ever writing to it. Save returns an error for a read-only DB.
	ReadOnly bool
	// BlockSize is the size of the blocks of the leveldb tables. Defaults to 16KiB.
	BlockSize int
}

// Open creates a new provider reading and writing from/to files under the path passed using default options. If a
// database does not yet exist at the path, it is created.
func Open(dir string) (*DB, error) {
	var conf Config
	return conf.Open(dir)
}

// Open creates a new DB reading and writing from/to files under the path passed. If no database exists at the path,
// one is created.
func (conf Config) Open(dir string) (*DB, error) {
	conf.withDefaults()
	if err := os.MkdirAll(dir, 0777); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	ldb, err := leveldb.OpenFile(dir, conf.options())
	if err != nil {
		return nil, fmt.Errorf("open db: leveldb: %w", err)
	}
	conf.Log.Debug("Opened world database.", "dir", dir)
	return &DB{conf: conf, ldb: ldb, dir: dir}, nil
}

// OpenMemory creates a DB that keeps its data in memory only. It is mostly useful in tests.
func (conf Config) OpenMemory() (*DB, error) {
	conf.withDefaults()
	ldb, err := leveldb.Open(storage.NewMemStorage(), conf.options())
	if err != nil {
		return nil, fmt.Errorf("open db: leveldb: %w", err)
	}
	return &DB{conf: conf, ldb: ldb}, nil
}

func (conf *Config) withDefaults() {
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	if conf.BlockSize <= 0 {
		conf.BlockSize = 16 * opt.KiB
	}
}

func (conf Config) options() *opt.Options {
	return &opt.Options{BlockSize: conf.BlockSize, ReadOnly: conf.ReadOnly}
}
