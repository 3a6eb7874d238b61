package game

import (
	"encoding/binary"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// ErrEpisodeNotFound is returned by an EpisodeStore that has no episode
// for the requested seed.
var ErrEpisodeNotFound = errors.New("episode not found")

// EpisodeStore persists finished episodes, keyed by seed.
// Implementations must be safe for concurrent use.
type EpisodeStore interface {
	Put(ep *Episode) error
	// Get returns an error whose cause is ErrEpisodeNotFound if
	// no episode with the given seed has been stored.
	Get(seed int64) (*Episode, error)
	// Seeds lists the stored seeds in increasing order.
	Seeds() ([]int64, error)
	Close() error
}

// SeedKey encodes seed as a fixed-width database key whose byte order
// matches the numeric order of seeds.
func SeedKey(seed int64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(seed)^(1<<63))
	return key
}

// SeedFromKey decodes a key produced by SeedKey.
func SeedFromKey(key []byte) (int64, error) {
	if len(key) != 8 {
		return 0, errors.Errorf("invalid episode key: %x", key)
	}

	return int64(binary.BigEndian.Uint64(key) ^ (1 << 63)), nil
}

// EpisodeMap implements EpisodeStore in memory.
type EpisodeMap struct {
	mx sync.Mutex
	m  map[int64]*Episode
}

// NewEpisodeMap returns an empty EpisodeMap.
func NewEpisodeMap() *EpisodeMap {
	return &EpisodeMap{m: make(map[int64]*Episode)}
}

// Put implements EpisodeStore.
func (m *EpisodeMap) Put(ep *Episode) error {
	m.mx.Lock()
	defer m.mx.Unlock()
	m.m[ep.Seed] = ep
	return nil
}

// Get implements EpisodeStore.
func (m *EpisodeMap) Get(seed int64) (*Episode, error) {
	m.mx.Lock()
	defer m.mx.Unlock()
	ep, ok := m.m[seed]
	if !ok {
		return nil, errors.Wrapf(ErrEpisodeNotFound, "seed %d", seed)
	}

	return ep, nil
}

// Seeds implements EpisodeStore.
func (m *EpisodeMap) Seeds() ([]int64, error) {
	m.mx.Lock()
	defer m.mx.Unlock()
	seeds := make([]int64, 0, len(m.m))
	for seed := range m.m {
		seeds = append(seeds, seed)
	}

	sort.Slice(seeds, func(i, j int) bool { return seeds[i] < seeds[j] })
	return seeds, nil
}

// Len returns the number of stored episodes.
func (m *EpisodeMap) Len() int {
	m.mx.Lock()
	defer m.mx.Unlock()
	return len(m.m)
}

// Close implements io.Closer.
func (m *EpisodeMap) Close() error {
	return nil
}
