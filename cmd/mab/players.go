package main

import (
	"math/rand"

	"github.com/pkg/errors"

	"github.com/timpalpant/go-mab"
	"github.com/timpalpant/go-mab/agents"
	"github.com/timpalpant/go-mab/game"
	"github.com/timpalpant/go-mab/ldbstore"
	"github.com/timpalpant/go-mab/match"
	"github.com/timpalpant/go-mab/rdbstore"
)

// newFactory pits the engine (player 0) against the named opponent.
// Player randomness is derived from the match seed so matches are reproducible.
func newFactory(opponent string, params mab.Params) (match.Factory, [2]string, error) {
	names := [2]string{"engine", opponent}
	newOpponent := func(seed int64) (mab.Agent, error) {
		return mab.NewEngine(params, rand.New(rand.NewSource(2*seed+1)))
	}

	switch opponent {
	case "engine":
	case "random":
		newOpponent = func(seed int64) (mab.Agent, error) {
			return agents.NewRandom(params.NumArms, rand.New(rand.NewSource(2*seed+1))), nil
		}
	case "round_robin":
		newOpponent = func(seed int64) (mab.Agent, error) {
			return agents.NewRoundRobin(params.NumArms, int(seed)), nil
		}
	default:
		return nil, names, errors.Errorf("unknown opponent: %q", opponent)
	}

	factory := func(seed int64) ([2]mab.Agent, error) {
		var players [2]mab.Agent
		e, err := mab.NewEngine(params, rand.New(rand.NewSource(2*seed)))
		if err != nil {
			return players, err
		}

		players[0] = e
		players[1], err = newOpponent(seed)
		return players, err
	}

	return factory, names, nil
}

// openStore opens the episode database selected by --store and --backend.
// It returns a nil store if no --store was given.
func openStore() (game.EpisodeStore, error) {
	if storePath == "" {
		return nil, nil
	}

	switch backend {
	case "leveldb":
		return ldbstore.NewEpisodeStore(storePath, nil)
	case "rocksdb":
		return rdbstore.NewEpisodeStore(rdbstore.DefaultParams(storePath))
	default:
		return nil, errors.Errorf("unknown store backend: %q", backend)
	}
}
