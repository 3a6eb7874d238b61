// Package rdbstore implements a game.EpisodeStore that keeps episodes
// in a RocksDB database, rather than in memory.
//
// It is slower than game.EpisodeMap but can hold evaluation runs whose
// full pull histories do not fit in memory.
package rdbstore

import (
	rocksdb "github.com/tecbot/gorocksdb"
)

// Params bundle the database location with its RocksDB options.
type Params struct {
	Path         string
	Options      *rocksdb.Options
	ReadOptions  *rocksdb.ReadOptions
	WriteOptions *rocksdb.WriteOptions
}

// DefaultParams creates the database at path if it does not exist.
// Episodes are written once and read rarely, so they are compressed.
func DefaultParams(path string) Params {
	opts := rocksdb.NewDefaultOptions()
	opts.SetCreateIfMissing(true)
	opts.SetCompression(rocksdb.SnappyCompression)

	return Params{
		Path:         path,
		Options:      opts,
		ReadOptions:  rocksdb.NewDefaultReadOptions(),
		WriteOptions: rocksdb.NewDefaultWriteOptions(),
	}
}

// Close releases the C-allocated options.
func (p Params) Close() {
	p.Options.Destroy()
	p.ReadOptions.Destroy()
	p.WriteOptions.Destroy()
}
