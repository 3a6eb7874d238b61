package ldbstore

import (
	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/timpalpant/go-mab/game"
)

// EpisodeStore implements game.EpisodeStore with all episodes stored
// in a LevelDB database, keyed by seed.
type EpisodeStore struct {
	path string
	db   *leveldb.DB

	rOpts *opt.ReadOptions
	wOpts *opt.WriteOptions
}

var _ game.EpisodeStore = (*EpisodeStore)(nil)

// NewEpisodeStore opens (or creates) a LevelDB database at the given path.
func NewEpisodeStore(path string, opts *opt.Options) (*EpisodeStore, error) {
	db, err := leveldb.OpenFile(path, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "opening episode store %s", path)
	}

	return &EpisodeStore{path: path, db: db}, nil
}

// Close implements io.Closer.
func (s *EpisodeStore) Close() error {
	return s.db.Close()
}

// Put implements game.EpisodeStore.
func (s *EpisodeStore) Put(ep *game.Episode) error {
	buf, err := ep.MarshalBinary()
	if err != nil {
		return err
	}

	glog.V(3).Infof("Saving episode %d (%d bytes) to %s", ep.Seed, len(buf), s.path)
	return s.db.Put(game.SeedKey(ep.Seed), buf, s.wOpts)
}

// Get implements game.EpisodeStore.
func (s *EpisodeStore) Get(seed int64) (*game.Episode, error) {
	buf, err := s.db.Get(game.SeedKey(seed), s.rOpts)
	if err == leveldb.ErrNotFound {
		return nil, errors.Wrapf(game.ErrEpisodeNotFound, "seed %d", seed)
	} else if err != nil {
		return nil, err
	}

	ep := &game.Episode{}
	if err := ep.UnmarshalBinary(buf); err != nil {
		return nil, errors.Wrapf(err, "decoding episode %d", seed)
	}

	return ep, nil
}

// Seeds implements game.EpisodeStore.
func (s *EpisodeStore) Seeds() ([]int64, error) {
	iter := s.db.NewIterator(nil, s.rOpts)
	defer iter.Release()

	var seeds []int64
	for iter.Next() {
		seed, err := game.SeedFromKey(iter.Key())
		if err != nil {
			return nil, err
		}

		seeds = append(seeds, seed)
	}

	return seeds, iter.Error()
}
