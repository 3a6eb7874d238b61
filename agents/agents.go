// Package agents implements simple baseline opponents for the engine.
package agents

import (
	"math/rand"

	"github.com/timpalpant/go-mab"
)

// Random pulls an arm uniformly at random on every turn.
type Random struct {
	numArms int
	rng     *rand.Rand
}

// NewRandom returns a Random agent for a game with the given number of arms.
func NewRandom(numArms int, rng *rand.Rand) *Random {
	return &Random{numArms: numArms, rng: rng}
}

// Act implements mab.Agent.
func (r *Random) Act(obs mab.Observation) int {
	return r.rng.Intn(r.numArms)
}

// RoundRobin cycles through the arms in order, one per turn.
type RoundRobin struct {
	numArms int
	offset  int
}

// NewRoundRobin returns a RoundRobin agent that pulls arm offset on the first turn.
func NewRoundRobin(numArms, offset int) *RoundRobin {
	offset %= numArms
	if offset < 0 {
		offset += numArms
	}

	return &RoundRobin{numArms: numArms, offset: offset}
}

// Act implements mab.Agent.
func (r *RoundRobin) Act(obs mab.Observation) int {
	return (obs.Step + r.offset) % r.numArms
}
