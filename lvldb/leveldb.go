// Copyright (c) 2025 The StakeHaven developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package lvldb implements the kv.Store interface on top of goleveldb.
package lvldb

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/stakehaven/haven/kv"
)

var _ kv.Store = (*LevelDB)(nil)

// flush bulk writes automatically when exceeding this size.
const bulkFlushThreshold = 128 * 1024

// Options options for creating level db instance.
type Options struct {
	CacheSize              int
	OpenFilesCacheCapacity int
}

var writeOpt = opt.WriteOptions{}
var readOpt = opt.ReadOptions{}

// LevelDB wraps level db impls.
type LevelDB struct {
	db *leveldb.DB
}

// New create a persistent level db instance.
// Create an empty one if not exists, or open if already there.
func New(path string, opts Options) (*LevelDB, error) {
	stg, err := storage.OpenFile(path, false)
	if err != nil {
		return nil, errors.Wrap(err, "new persistent level db")
	}
	return openLevelDB(stg, opts.CacheSize, opts.OpenFilesCacheCapacity)
}

// NewMem create a level db in memory.
func NewMem() (*LevelDB, error) {
	return openLevelDB(storage.NewMemStorage(), 0, 0)
}

func openLevelDB(stg storage.Storage, cacheSize, openFilesCacheCapacity int) (*LevelDB, error) {
	if cacheSize < 16 {
		cacheSize = 16
	}

	if openFilesCacheCapacity < 16 {
		openFilesCacheCapacity = 16
	}

	db, err := leveldb.Open(stg, &opt.Options{
		OpenFilesCacheCapacity: openFilesCacheCapacity,
		BlockCacheCapacity:     cacheSize / 2 * opt.MiB,
		WriteBuffer:            cacheSize / 4 * opt.MiB, // Two of these are used internally
		Filter:                 filter.NewBloomFilter(10),
	})

	if err != nil {
		return nil, errors.Wrap(err, "open level db")
	}
	return &LevelDB{db: db}, nil
}

// IsNotFound to check if the error returned by Get indicates key not found.
func (ldb *LevelDB) IsNotFound(err error) bool {
	return err == leveldb.ErrNotFound
}

// Get retrieve value for given key.
// It returns an error if key not found. The error can be checked via IsNotFound.
func (ldb *LevelDB) Get(key []byte) (value []byte, err error) {
	return ldb.db.Get(key, &readOpt)
}

// Has returns whether a key exists.
func (ldb *LevelDB) Has(key []byte) (bool, error) {
	return ldb.db.Has(key, &readOpt)
}

// Put save value fo give key.
func (ldb *LevelDB) Put(key, value []byte) error {
	return ldb.db.Put(key, value, &writeOpt)
}

// Delete deletes the give key and its value.
func (ldb *LevelDB) Delete(key []byte) error {
	return ldb.db.Delete(key, &writeOpt)
}

// Close close the level db.
// Later operations will all fail.
func (ldb *LevelDB) Close() error {
	return ldb.db.Close()
}

// Snapshot takes a read-only snapshot of the current db state.
func (ldb *LevelDB) Snapshot() kv.Snapshot {
	snapshot, err := ldb.db.GetSnapshot()
	return &levelDBSnapshot{snapshot, err, ldb.IsNotFound}
}

// Bulk creates a bulk putter. Writes are buffered until Write, or flushed
// earlier when auto-flush is enabled.
func (ldb *LevelDB) Bulk() kv.Bulk {
	return &levelDBBulk{
		db:    ldb.db,
		batch: &leveldb.Batch{},
	}
}

// Iterate create an iterator by range.
func (ldb *LevelDB) Iterate(r kv.Range) kv.Iterator {
	return ldb.db.NewIterator(&util.Range{
		Start: r.Start,
		Limit: r.Limit,
	}, &readOpt)
}

//////

type levelDBSnapshot struct {
	snapshot   *leveldb.Snapshot
	err        error
	isNotFound func(error) bool
}

func (s *levelDBSnapshot) Get(key []byte) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.snapshot.Get(key, &readOpt)
}

func (s *levelDBSnapshot) Has(key []byte) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.snapshot.Has(key, &readOpt)
}

func (s *levelDBSnapshot) IsNotFound(err error) bool {
	return s.isNotFound(err)
}

func (s *levelDBSnapshot) Release() {
	if s.err == nil {
		s.snapshot.Release()
	}
}

// levelDBBulk wraps batched write operations.
type levelDBBulk struct {
	db        *leveldb.DB
	batch     *leveldb.Batch
	autoFlush bool
	err       error
}

// Put adds a put operation.
func (b *levelDBBulk) Put(key, value []byte) error {
	if b.err != nil {
		return b.err
	}
	b.batch.Put(key, value)
	return b.flushIfNeeded()
}

// Delete adds a delete operation.
func (b *levelDBBulk) Delete(key []byte) error {
	if b.err != nil {
		return b.err
	}
	b.batch.Delete(key)
	return b.flushIfNeeded()
}

// EnableAutoFlush makes the bulk non-atomic, to cap memory usage of large writes.
func (b *levelDBBulk) EnableAutoFlush() {
	b.autoFlush = true
}

// Write perform all buffered ops in this bulk.
func (b *levelDBBulk) Write() error {
	if b.err != nil {
		return b.err
	}
	if err := b.db.Write(b.batch, &writeOpt); err != nil {
		b.err = err
		return err
	}
	b.batch.Reset()
	return nil
}

func (b *levelDBBulk) flushIfNeeded() error {
	if b.autoFlush && len(b.batch.Dump()) >= bulkFlushThreshold {
		return b.Write()
	}
	return nil
}
