// Package match runs games between agents and scores the results.
package match

import (
	"context"
	"math/rand"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/timpalpant/go-mab"
	"github.com/timpalpant/go-mab/game"
)

// Play runs a complete game with the given rules between the two players.
// The game's randomness (thresholds and pull outcomes) is determined by seed.
func Play(ctx context.Context, cfg game.Config, seed int64, players [2]mab.Agent) (*game.Episode, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	g := game.New(cfg, rand.New(rand.NewSource(seed)))
	for !g.Done() {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(err, "match %d interrupted at step %d", seed, g.Turn())
		}

		var actions [2]int
		for i, p := range players {
			actions[i] = p.Act(g.Observation(i))
		}

		if err := g.Step(actions); err != nil {
			return nil, errors.Wrapf(err, "match %d", seed)
		}

		if g.Turn()%500 == 0 {
			records := g.Records()
			glog.V(2).Infof("[match=%d] step %d: rewards %v",
				seed, g.Turn(), records[len(records)-1].Rewards)
		}
	}

	return &game.Episode{
		Seed:    seed,
		Config:  cfg,
		Records: g.Records(),
	}, nil
}
