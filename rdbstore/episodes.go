package rdbstore

import (
	"github.com/golang/glog"
	"github.com/pkg/errors"
	rocksdb "github.com/tecbot/gorocksdb"

	"github.com/timpalpant/go-mab/game"
)

// EpisodeStore implements game.EpisodeStore with all episodes stored
// in a RocksDB database, keyed by seed.
type EpisodeStore struct {
	params Params
	db     *rocksdb.DB
}

var _ game.EpisodeStore = (*EpisodeStore)(nil)

// NewEpisodeStore opens a RocksDB database with the given params.
// The store takes ownership of params and releases them on Close.
func NewEpisodeStore(params Params) (*EpisodeStore, error) {
	db, err := rocksdb.OpenDb(params.Options, params.Path)
	if err != nil {
		params.Close()
		return nil, errors.Wrapf(err, "opening episode store %s", params.Path)
	}

	return &EpisodeStore{params: params, db: db}, nil
}

// Close implements io.Closer.
func (s *EpisodeStore) Close() error {
	s.db.Close()
	s.params.Close()
	return nil
}

// Put implements game.EpisodeStore.
func (s *EpisodeStore) Put(ep *game.Episode) error {
	buf, err := ep.MarshalBinary()
	if err != nil {
		return err
	}

	glog.V(3).Infof("Saving episode %d (%d bytes) to %s", ep.Seed, len(buf), s.params.Path)
	return s.db.Put(s.params.WriteOptions, game.SeedKey(ep.Seed), buf)
}

// Get implements game.EpisodeStore.
func (s *EpisodeStore) Get(seed int64) (*game.Episode, error) {
	result, err := s.db.Get(s.params.ReadOptions, game.SeedKey(seed))
	if err != nil {
		return nil, err
	}
	defer result.Free()

	if !result.Exists() {
		return nil, errors.Wrapf(game.ErrEpisodeNotFound, "seed %d", seed)
	}

	ep := &game.Episode{}
	if err := ep.UnmarshalBinary(result.Data()); err != nil {
		return nil, errors.Wrapf(err, "decoding episode %d", seed)
	}

	return ep, nil
}

// Seeds implements game.EpisodeStore.
func (s *EpisodeStore) Seeds() ([]int64, error) {
	it := s.db.NewIterator(s.params.ReadOptions)
	defer it.Close()

	var seeds []int64
	for it.SeekToFirst(); it.Valid(); it.Next() {
		key := it.Key()
		seed, err := game.SeedFromKey(key.Data())
		key.Free()
		if err != nil {
			return nil, err
		}

		seeds = append(seeds, seed)
	}

	return seeds, it.Err()
}
