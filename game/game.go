// Package game implements the decaying-threshold bandit game that the
// engine is designed to play, so that matches can be run and scored offline.
package game

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"

	"github.com/timpalpant/go-mab"
)

// Config describes the rules of a game.
type Config struct {
	NumArms   int     `json:"banditCount"`  // Arms available to both players
	Steps     int     `json:"episodeSteps"` // Turns in a match
	DecayRate float64 `json:"decayRate"`    // Threshold multiplier applied on every pull
	// A pull succeeds if a uniform draw from [0, SampleResolution] falls
	// below the ceiling of the arm's threshold.
	SampleResolution int `json:"sampleResolution"`
}

// DefaultConfig returns the competition rules.
func DefaultConfig() Config {
	return Config{
		NumArms:          100,
		Steps:            2000,
		DecayRate:        0.97,
		SampleResolution: 100,
	}
}

// Validate checks that the Config describes a playable game.
func (c Config) Validate() error {
	switch {
	case c.NumArms < 1:
		return errors.Errorf("invalid number of arms: %d", c.NumArms)
	case c.Steps < 1:
		return errors.Errorf("invalid number of steps: %d", c.Steps)
	case c.DecayRate <= 0 || c.DecayRate > 1:
		return errors.Errorf("decay rate must be in (0, 1], got %v", c.DecayRate)
	case c.SampleResolution < 1:
		return errors.Errorf("invalid sample resolution: %d", c.SampleResolution)
	}

	return nil
}

// Record is the state of the game at one step, as seen by an omniscient observer.
type Record struct {
	Actions [2]int `json:"actions"` // Arm pulled by each player
	Rewards [2]int `json:"rewards"` // Cumulative reward of each player after the step
	// Every arm's true threshold before the step's pulls decayed it.
	Thresholds []float64 `json:"thresholds"`
}

// Game is a single match in progress. It is not safe for concurrent use.
type Game struct {
	cfg Config
	rng *rand.Rand

	thresholds  []float64
	step        int
	lastActions [2]int
	rewards     [2]int
	records     []Record
}

// New starts a new game with every arm's threshold drawn uniformly from [0, 100).
func New(cfg Config, rng *rand.Rand) *Game {
	thresholds := make([]float64, cfg.NumArms)
	for i := range thresholds {
		thresholds[i] = 100 * rng.Float64()
	}

	return &Game{
		cfg:        cfg,
		rng:        rng,
		thresholds: thresholds,
		records:    make([]Record, 0, cfg.Steps),
	}
}

// Config returns the rules of the game.
func (g *Game) Config() Config {
	return g.cfg
}

// Turn returns the number of steps played so far.
func (g *Game) Turn() int {
	return g.step
}

// Done returns true once every step has been played.
func (g *Game) Done() bool {
	return g.step >= g.cfg.Steps
}

// Observation returns what the given player is allowed to see before acting.
func (g *Game) Observation(player int) mab.Observation {
	return mab.Observation{
		Step:        g.step,
		AgentIndex:  player,
		LastActions: g.lastActions,
		Reward:      g.rewards[player],
	}
}

// Thresholds returns a copy of every arm's current true threshold.
func (g *Game) Thresholds() []float64 {
	return append([]float64(nil), g.thresholds...)
}

// Step plays one turn with the given arm for each player. Both pulls are
// rewarded against the thresholds as they stood at the start of the turn,
// then each pull decays its arm.
func (g *Game) Step(actions [2]int) error {
	if g.Done() {
		return errors.Errorf("game is over after %d steps", g.step)
	}

	for player, arm := range actions {
		if arm < 0 || arm >= g.cfg.NumArms {
			return errors.Errorf("player %d pulled arm %d out of range [0, %d) at step %d",
				player, arm, g.cfg.NumArms, g.step)
		}
	}

	record := Record{
		Actions:    actions,
		Thresholds: g.Thresholds(),
	}

	for player, arm := range actions {
		if g.pull(arm) {
			g.rewards[player]++
		}
	}

	for _, arm := range actions {
		g.thresholds[arm] *= g.cfg.DecayRate
	}

	record.Rewards = g.rewards
	g.records = append(g.records, record)
	g.lastActions = actions
	g.step++
	return nil
}

func (g *Game) pull(arm int) bool {
	x := g.rng.Intn(g.cfg.SampleResolution + 1)
	return x < int(math.Ceil(g.thresholds[arm]))
}

// Records returns the history of the game so far.
func (g *Game) Records() []Record {
	return g.records
}
