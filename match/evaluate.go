package match

import (
	"context"
	"runtime"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/timpalpant/go-mab"
	"github.com/timpalpant/go-mab/game"
)

// Factory creates fresh players for the match with the given seed.
// Players must not be shared between matches.
type Factory func(seed int64) ([2]mab.Agent, error)

// Options configure a batch evaluation.
type Options struct {
	Game       game.Config
	Matches    int   // Number of matches to play
	Workers    int   // Matches played concurrently; defaults to GOMAXPROCS
	SeedOffset int64 // Seed of the first match; match i uses SeedOffset + i
	Names      [2]string

	// If non-nil, every finished episode is saved to Store.
	Store game.EpisodeStore
}

// Result is the outcome of a single match.
type Result struct {
	Seed           int64
	RawScores      [2]int
	ExpectedScores [2]float64
}

// NewResult scores a finished episode.
func NewResult(ep *game.Episode) Result {
	return Result{
		Seed:           ep.Seed,
		RawScores:      ep.RawScores(),
		ExpectedScores: ep.ExpectedScores(),
	}
}

// Evaluate plays opts.Matches independent matches, in parallel, between
// players created by newPlayers. Results are returned in seed order.
func Evaluate(ctx context.Context, opts Options, newPlayers Factory) ([]Result, error) {
	if opts.Matches < 1 {
		return nil, errors.Errorf("invalid number of matches: %d", opts.Matches)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	glog.Infof("Running %d matches (%s vs. %s) with %d workers",
		opts.Matches, opts.Names[0], opts.Names[1], workers)
	results := make([]Result, opts.Matches)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < opts.Matches; i++ {
		seed := opts.SeedOffset + int64(i)
		g.Go(func() error {
			players, err := newPlayers(seed)
			if err != nil {
				return errors.Wrapf(err, "creating players for match %d", seed)
			}

			ep, err := Play(ctx, opts.Game, seed, players)
			if err != nil {
				return err
			}

			ep.Names = opts.Names
			if opts.Store != nil {
				if err := opts.Store.Put(ep); err != nil {
					return errors.Wrapf(err, "saving match %d", seed)
				}
			}

			results[i] = NewResult(ep)
			glog.V(1).Infof("[match=%d] raw scores: %v, expected scores: %.1f",
				seed, results[i].RawScores, results[i].ExpectedScores)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
